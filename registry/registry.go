// Package registry provides a concurrency-safe collection of named bloom
// filters. All filters live behind a single reader/writer lock: operations
// that change the key set or mutate a filter's bits take the write lock,
// pure observers take the read lock. The registry is the sole owner of
// every filter it holds; nothing outside it touches a filter without going
// through the lock.
package registry

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/probitech/bloomd"
)

// record is one registered filter together with its creation parameters.
// The parameters are kept so List can describe the filter and so the
// record fully reconstructs its configuration.
type record struct {
	id       string
	name     string
	capacity uint64
	mode     Mode
	filter   *bloomd.Filter
}

// Info is a point-in-time snapshot of one registered filter, as returned
// by List.
type Info struct {
	ID       string
	Name     string
	Capacity uint64
	Config   string
}

// Registry maps display names to filters. The zero value is not usable;
// call New.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*record
	log    *slog.Logger
}

// New creates an empty Registry. A nil logger disables logging.
func New(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{
		byName: make(map[string]*record),
		log:    log,
	}
}

// Create registers a new filter under name, sized for capacity expected
// items per mode, and returns its generated identifier.
//
// It returns ErrInvalidRequest if name is empty, capacity is zero, or mode
// is nil (checked before anything is allocated), and ErrNameConflict if
// the name is already taken.
func (r *Registry) Create(name string, capacity uint64, mode Mode) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: name must not be empty", ErrInvalidRequest)
	}
	if capacity == 0 {
		return "", fmt.Errorf("%w: item count must be at least 1", ErrInvalidRequest)
	}
	if mode == nil {
		return "", fmt.Errorf("%w: a sizing mode is required", ErrInvalidRequest)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[name]; ok {
		return "", fmt.Errorf("%w: %q", ErrNameConflict, name)
	}

	filter, err := mode.build(capacity)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	id := uuid.NewString()
	r.byName[name] = &record{
		id:       id,
		name:     name,
		capacity: capacity,
		mode:     mode,
		filter:   filter,
	}

	r.log.Info("filter created",
		"name", name,
		"id", id,
		"capacity", capacity,
		"config", mode.Describe(),
		"m", filter.M(),
		"k", filter.K(),
	)
	return id, nil
}

// Delete removes a filter by display name or, failing an exact name match,
// by identifier. It returns the display name of the removed filter, or
// ErrNotFound. Lookup by identifier is a linear scan; the registry is not
// built for large fleets of filters.
func (r *Registry) Delete(nameOrID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := nameOrID
	if _, ok := r.byName[name]; !ok {
		name = ""
		for _, rec := range r.byName {
			if rec.id == nameOrID {
				name = rec.name
				break
			}
		}
		if name == "" {
			return "", fmt.Errorf("%w: %q", ErrNotFound, nameOrID)
		}
	}

	delete(r.byName, name)
	r.log.Info("filter deleted", "name", name)
	return name, nil
}

// List returns a snapshot of every registered filter, sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.byName))
	for _, rec := range r.byName {
		infos = append(infos, Info{
			ID:       rec.id,
			Name:     rec.name,
			Capacity: rec.capacity,
			Config:   rec.mode.Describe(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Insert adds an item to the named filter. Returns ErrNotFound if no
// filter has that name.
func (r *Registry) Insert(name string, item []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	rec.filter.Insert(item)
	r.log.Debug("item inserted", "name", name, "count", rec.filter.Count())
	return nil
}

// Contains reports whether the named filter might contain the item.
// Returns ErrNotFound if no filter has that name.
func (r *Registry) Contains(name string, item []byte) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byName[name]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return rec.filter.Contains(item), nil
}

// Clear resets the named filter's membership state. The filter keeps its
// size and hash count. Returns ErrNotFound if no filter has that name.
func (r *Registry) Clear(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	rec.filter.Clear()
	r.log.Info("filter cleared", "name", name)
	return nil
}

// Len returns the number of registered filters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}
