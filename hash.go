package bloomd

import "github.com/zeebo/xxh3"

// Two fixed, distinct seeds give two independent 64-bit hashes per item.
// Changing either seed changes every filter's bit layout, so they are part
// of the on-the-wire identity of a filter and must never be altered.
const (
	seedLow  = 0x9e3779b97f4a7c15
	seedHigh = 0xc2b2ae3d27d4eb4f
)

// hashPair computes the two base hashes of an item's byte representation.
func hashPair(data []byte) (h1, h2 uint64) {
	return xxh3.HashSeed(data, seedLow), xxh3.HashSeed(data, seedHigh)
}

// hashPairString is the string variant of hashPair. It avoids the
// allocation of converting the string to []byte.
func hashPairString(s string) (h1, h2 uint64) {
	return xxh3.HashStringSeed(s, seedLow), xxh3.HashStringSeed(s, seedHigh)
}

// probe derives the i-th bit index from the two base hashes via double
// hashing: (h1 + i*h2) mod m.
func probe(h1, h2, i, m uint64) uint64 {
	return (h1 + i*h2) % m
}
