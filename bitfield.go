package bloomd

import (
	"errors"
	"math/bits"
)

// ErrZeroSize is returned when a BitField of zero bits is requested.
var ErrZeroSize = errors.New("bloomd: bit field size must be at least 1")

// BitField is a fixed-length array of single-bit slots backed by 64-bit
// words. It is the raw storage under a Filter and performs no bounds or
// concurrency checks of its own: the owning Filter guarantees indices are
// in range and the registry serializes access.
type BitField struct {
	words []uint64
	size  uint64
}

// NewBitField returns a BitField of size bits, all zero.
func NewBitField(size uint64) (*BitField, error) {
	if size == 0 {
		return nil, ErrZeroSize
	}
	return &BitField{
		words: make([]uint64, (size+63)/64),
		size:  size,
	}, nil
}

// Set sets the bit at index i to 1. Idempotent.
func (b *BitField) Set(i uint64) {
	b.words[i>>6] |= 1 << (i & 63)
}

// Test reports whether the bit at index i is 1.
func (b *BitField) Test(i uint64) bool {
	return b.words[i>>6]&(1<<(i&63)) != 0
}

// ClearAll resets every bit to 0 in place, keeping the same storage and size.
func (b *BitField) ClearAll() {
	clear(b.words)
}

// Size returns the number of bits in the field.
func (b *BitField) Size() uint64 {
	return b.size
}

// OnesCount returns the number of bits currently set.
func (b *BitField) OnesCount() uint64 {
	var n uint64
	for _, w := range b.words {
		n += uint64(bits.OnesCount64(w))
	}
	return n
}
