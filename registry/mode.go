package registry

import (
	"fmt"

	"github.com/probitech/bloomd"
)

// Mode selects how a filter is sized at creation: either by target false
// positive rate or by explicit hash count. Exactly one of the two cases is
// ever active; the interface is sealed so no further cases can exist.
type Mode interface {
	// Describe returns the human-readable configuration shown by List.
	Describe() string

	build(capacity uint64) (*bloomd.Filter, error)
}

// FalsePositiveRate sizes a filter for a target false positive probability
// in (0, 1).
type FalsePositiveRate float64

// Describe implements Mode.
func (p FalsePositiveRate) Describe() string {
	return fmt.Sprintf("False positive rate: %v", float64(p))
}

func (p FalsePositiveRate) build(capacity uint64) (*bloomd.Filter, error) {
	return bloomd.NewWithRate(capacity, float64(p))
}

// HashCount sizes a filter for an explicit number of hash functions.
type HashCount uint64

// Describe implements Mode.
func (k HashCount) Describe() string {
	return fmt.Sprintf("Hash count: %d", uint64(k))
}

func (k HashCount) build(capacity uint64) (*bloomd.Filter, error) {
	return bloomd.NewWithHashCount(capacity, uint64(k))
}
