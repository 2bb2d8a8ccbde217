package bloomd

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrInvalidCapacity is returned when the expected item count is zero.
	ErrInvalidCapacity = errors.New("bloomd: expected item count must be at least 1")

	// ErrInvalidRate is returned when the target false positive rate is
	// outside the open interval (0, 1).
	ErrInvalidRate = errors.New("bloomd: false positive rate must be in (0, 1)")

	// ErrInvalidHashCount is returned when an explicit hash count of zero
	// is requested.
	ErrInvalidHashCount = errors.New("bloomd: hash count must be at least 1")
)

// Filter is a non-thread-safe bloom filter: a fixed-size BitField plus a
// deterministic double-hashing scheme. Once constructed, the bit-array size
// m and hash count k never change for the lifetime of the instance; Clear
// zeroes the bits in place but preserves both.
//
// Items inserted into a Filter are always reported as present (no false
// negatives). Items never inserted may be reported present with a
// probability that approaches the configured rate as insertions approach
// the capacity the filter was sized for, and exceeds it beyond that point.
type Filter struct {
	bits  *BitField
	m     uint64 // bit-array size
	k     uint64 // hash function count
	count uint64 // insertions since construction or last Clear
}

// NewWithRate creates a Filter sized for n expected items at target false
// positive rate p. The bit-array size and hash count are derived with
// OptimalBits and OptimalHashCount.
func NewWithRate(n uint64, p float64) (*Filter, error) {
	if n == 0 {
		return nil, ErrInvalidCapacity
	}
	if p <= 0 || p >= 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidRate, p)
	}
	m := OptimalBits(n, p)
	return newFilter(m, OptimalHashCount(m, n))
}

// NewWithHashCount creates a Filter for n expected items using exactly k
// hash functions, with the bit-array size that is optimal for that k
// (BitsForHashCount).
func NewWithHashCount(n, k uint64) (*Filter, error) {
	if n == 0 {
		return nil, ErrInvalidCapacity
	}
	if k == 0 {
		return nil, ErrInvalidHashCount
	}
	return newFilter(BitsForHashCount(n, k), k)
}

func newFilter(m, k uint64) (*Filter, error) {
	bits, err := NewBitField(m)
	if err != nil {
		return nil, err
	}
	return &Filter{bits: bits, m: m, k: k}, nil
}

// Insert adds an item's byte representation to the filter.
func (f *Filter) Insert(data []byte) {
	h1, h2 := hashPair(data)
	f.insertHashed(h1, h2)
}

// InsertString adds a string item without allocating.
func (f *Filter) InsertString(s string) {
	h1, h2 := hashPairString(s)
	f.insertHashed(h1, h2)
}

func (f *Filter) insertHashed(h1, h2 uint64) {
	for i := uint64(0); i < f.k; i++ {
		f.bits.Set(probe(h1, h2, i, f.m))
	}
	f.count++
}

// Contains reports whether an item might be in the filter. A false result
// is definitive; a true result may be a false positive.
func (f *Filter) Contains(data []byte) bool {
	h1, h2 := hashPair(data)
	return f.containsHashed(h1, h2)
}

// ContainsString is the string variant of Contains.
func (f *Filter) ContainsString(s string) bool {
	h1, h2 := hashPairString(s)
	return f.containsHashed(h1, h2)
}

func (f *Filter) containsHashed(h1, h2 uint64) bool {
	for i := uint64(0); i < f.k; i++ {
		if !f.bits.Test(probe(h1, h2, i, f.m)) {
			return false
		}
	}
	return true
}

// Clear resets every bit to zero in place, fully resetting membership
// state. m and k are unchanged.
func (f *Filter) Clear() {
	f.bits.ClearAll()
	f.count = 0
}

// M returns the bit-array size.
func (f *Filter) M() uint64 {
	return f.m
}

// K returns the number of hash functions.
func (f *Filter) K() uint64 {
	return f.k
}

// Count returns the number of insertions since construction or the last
// Clear. Re-inserting the same item counts every time.
func (f *Filter) Count() uint64 {
	return f.count
}

// EstimatedFillRatio returns the proportion of bits currently set.
func (f *Filter) EstimatedFillRatio() float64 {
	return float64(f.bits.OnesCount()) / float64(f.m)
}

// EstimatedFalsePositiveRate estimates the current false positive rate
// from m, k, and the number of insertions.
func (f *Filter) EstimatedFalsePositiveRate() float64 {
	return EstimateFalsePositiveRate(f.m, f.k, f.count)
}

// Serialization constants and errors.
const (
	// snapshotVersion is the current snapshot format version.
	snapshotVersion byte = 1

	// snapshotHeaderSize is the size of the snapshot header in bytes.
	// Version (1) + M (8) + K (8) + Count (8) = 25 bytes
	snapshotHeaderSize = 25
)

var (
	// ErrInvalidSnapshot is returned when snapshot data is invalid or corrupted.
	ErrInvalidSnapshot = errors.New("bloomd: invalid snapshot data")

	// ErrUnsupportedVersion is returned when the snapshot version is not supported.
	ErrUnsupportedVersion = errors.New("bloomd: unsupported snapshot version")
)

// MarshalBinary serializes the filter. The format is:
//   - Version (1 byte)
//   - M (8 bytes): bit-array size (little-endian uint64)
//   - K (8 bytes): hash function count (little-endian uint64)
//   - Count (8 bytes): insertions since last clear (little-endian uint64)
//   - Words (ceil(M/64) * 8 bytes): the bit array (little-endian uint64s)
func (f *Filter) MarshalBinary() ([]byte, error) {
	buf := make([]byte, snapshotHeaderSize+len(f.bits.words)*8)

	buf[0] = snapshotVersion
	binary.LittleEndian.PutUint64(buf[1:9], f.m)
	binary.LittleEndian.PutUint64(buf[9:17], f.k)
	binary.LittleEndian.PutUint64(buf[17:25], f.count)

	off := snapshotHeaderSize
	for _, w := range f.bits.words {
		binary.LittleEndian.PutUint64(buf[off:off+8], w)
		off += 8
	}
	return buf, nil
}

// UnmarshalBinary deserializes a filter produced by MarshalBinary.
func UnmarshalBinary(data []byte) (*Filter, error) {
	if len(data) < snapshotHeaderSize {
		return nil, fmt.Errorf("%w: data too short (got %d bytes, need at least %d)",
			ErrInvalidSnapshot, len(data), snapshotHeaderSize)
	}
	if v := data[0]; v != snapshotVersion {
		return nil, fmt.Errorf("%w: got version %d, expected %d", ErrUnsupportedVersion, v, snapshotVersion)
	}

	m := binary.LittleEndian.Uint64(data[1:9])
	k := binary.LittleEndian.Uint64(data[9:17])
	count := binary.LittleEndian.Uint64(data[17:25])

	if m == 0 {
		return nil, fmt.Errorf("%w: bit-array size cannot be zero", ErrInvalidSnapshot)
	}
	if k == 0 {
		return nil, fmt.Errorf("%w: hash count cannot be zero", ErrInvalidSnapshot)
	}
	// Bound m so the word-count arithmetic below cannot overflow.
	const maxBits = uint64(1) << 50
	if m > maxBits {
		return nil, fmt.Errorf("%w: bit-array size too large (%d)", ErrInvalidSnapshot, m)
	}

	words := (m + 63) / 64
	if want := uint64(snapshotHeaderSize) + words*8; uint64(len(data)) != want {
		return nil, fmt.Errorf("%w: data length mismatch (got %d bytes, expected %d)",
			ErrInvalidSnapshot, len(data), want)
	}

	f, err := newFilter(m, k)
	if err != nil {
		return nil, err
	}
	f.count = count

	off := snapshotHeaderSize
	for i := range f.bits.words {
		f.bits.words[i] = binary.LittleEndian.Uint64(data[off : off+8])
		off += 8
	}
	return f, nil
}
