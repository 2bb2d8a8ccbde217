package registry

import "errors"

var (
	// ErrNotFound is returned when no filter matches the given name or
	// identifier.
	ErrNotFound = errors.New("registry: filter not found")

	// ErrNameConflict is returned when creating a filter whose name is
	// already registered.
	ErrNameConflict = errors.New("registry: filter name already in use")

	// ErrInvalidRequest is returned when a create request is malformed:
	// empty name, zero capacity, or no sizing mode.
	ErrInvalidRequest = errors.New("registry: invalid create request")
)
