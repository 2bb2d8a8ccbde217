package registry

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/sync/errgroup"
)

func TestCreateValidation(t *testing.T) {
	r := New(nil)

	_, err := r.Create("", 100, FalsePositiveRate(0.01))
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = r.Create("f", 0, FalsePositiveRate(0.01))
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = r.Create("f", 100, nil)
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = r.Create("f", 100, FalsePositiveRate(1.5))
	require.ErrorIs(t, err, ErrInvalidRequest)

	// Nothing was registered by any of the failed creates.
	assert.Zero(t, r.Len())
	assert.Empty(t, r.List())
}

func TestCreateNameConflict(t *testing.T) {
	r := New(nil)

	_, err := r.Create("dedup", 100, HashCount(4))
	require.NoError(t, err)

	_, err = r.Create("dedup", 200, FalsePositiveRate(0.05))
	require.ErrorIs(t, err, ErrNameConflict)
	assert.Equal(t, 1, r.Len())
}

func TestCreateAssignsUniqueIDs(t *testing.T) {
	r := New(nil)

	seen := make(map[string]bool)
	for i := range 50 {
		id, err := r.Create(fmt.Sprintf("f-%d", i), 10, HashCount(3))
		require.NoError(t, err)
		require.NotEmpty(t, id)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestDeleteByNameAndByID(t *testing.T) {
	r := New(nil)

	_, err := r.Create("by-name", 100, HashCount(4))
	require.NoError(t, err)
	id2, err := r.Create("by-id", 100, HashCount(4))
	require.NoError(t, err)

	// Exact name match wins.
	name, err := r.Delete("by-name")
	require.NoError(t, err)
	assert.Equal(t, "by-name", name)

	// Fall back to the identifier scan.
	name, err = r.Delete(id2)
	require.NoError(t, err)
	assert.Equal(t, "by-id", name)

	assert.Empty(t, r.List())
}

func TestDeleteGhost(t *testing.T) {
	r := New(nil)

	_, err := r.Delete("ghost")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListSnapshot(t *testing.T) {
	r := New(nil)

	idB, err := r.Create("bravo", 500, HashCount(5))
	require.NoError(t, err)
	idA, err := r.Create("alpha", 1000, FalsePositiveRate(0.01))
	require.NoError(t, err)

	infos := r.List()
	require.Len(t, infos, 2)

	assert.Equal(t, "alpha", infos[0].Name)
	assert.Equal(t, idA, infos[0].ID)
	assert.Equal(t, uint64(1000), infos[0].Capacity)
	assert.Equal(t, "False positive rate: 0.01", infos[0].Config)

	assert.Equal(t, "bravo", infos[1].Name)
	assert.Equal(t, idB, infos[1].ID)
	assert.Equal(t, "Hash count: 5", infos[1].Config)
}

func TestOperationsOnMissingFilter(t *testing.T) {
	r := New(nil)

	require.ErrorIs(t, r.Insert("missing", []byte("x")), ErrNotFound)
	require.ErrorIs(t, r.Clear("missing"), ErrNotFound)

	_, err := r.Contains("missing", []byte("x"))
	require.ErrorIs(t, err, ErrNotFound)
}

// Walks the full lifecycle of one filter: create, lookup, insert, lookup,
// clear, lookup, delete by identifier, list.
func TestFilterLifecycle(t *testing.T) {
	r := New(nil)

	id, err := r.Create("logins", 1000, FalsePositiveRate(0.01))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	ok, err := r.Contains("logins", []byte("user_123"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Insert("logins", []byte("user_123")))

	ok, err = r.Contains("logins", []byte("user_123"))
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, r.Clear("logins"))

	ok, err = r.Contains("logins", []byte("user_123"))
	require.NoError(t, err)
	assert.False(t, ok)

	name, err := r.Delete(id)
	require.NoError(t, err)
	assert.Equal(t, "logins", name)

	assert.Empty(t, r.List())
}

// Concurrent creates of the same name: exactly one must win, the rest must
// observe the conflict, and the registry must end up with a single record.
func TestConcurrentCreateSameName(t *testing.T) {
	r := New(nil)

	const workers = 32
	var created, conflicted sync.Map
	var g errgroup.Group
	for w := range workers {
		g.Go(func() error {
			id, err := r.Create("contested", 100, HashCount(4))
			switch {
			case err == nil:
				created.Store(w, id)
			case errors.Is(err, ErrNameConflict):
				conflicted.Store(w, struct{}{})
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var winners, losers int
	created.Range(func(any, any) bool { winners++; return true })
	conflicted.Range(func(any, any) bool { losers++; return true })

	assert.Equal(t, 1, winners)
	assert.Equal(t, workers-1, losers)
	assert.Equal(t, 1, r.Len())
}

// Hammers one filter with parallel inserts, lookups, and clears to shake
// out data races under the registry lock. Run with -race.
func TestConcurrentMixedOperations(t *testing.T) {
	r := New(nil)

	_, err := r.Create("busy", 10000, FalsePositiveRate(0.01))
	require.NoError(t, err)

	var g errgroup.Group
	for w := range 8 {
		g.Go(func() error {
			for i := range 200 {
				item := fmt.Appendf(nil, "w%d-i%d", w, i)
				if err := r.Insert("busy", item); err != nil {
					return err
				}
				if _, err := r.Contains("busy", item); err != nil {
					return err
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		for range 20 {
			if err := r.Clear("busy"); err != nil {
				return err
			}
			r.List()
		}
		return nil
	})
	require.NoError(t, g.Wait())
	assert.Equal(t, 1, r.Len())
}
