// Package bloomd implements the probabilistic set core of the bloomd
// daemon: a classic bloom filter over a fixed-size bit array.
//
// A bloom filter answers "possibly present" or "definitely absent" for set
// membership, trading a tunable false positive rate for compactness. False
// negatives never occur: once an item is inserted, Contains reports it
// present until the next Clear.
//
// # Construction
//
// A Filter is parameterized in one of two ways, chosen at creation time:
//
// By target false positive rate, which derives both the bit-array size and
// the hash count:
//
//	f, err := bloomd.NewWithRate(10_000, 0.01)
//
// By explicit hash count, which derives the bit-array size that is optimal
// for that count:
//
//	f, err := bloomd.NewWithHashCount(10_000, 5)
//
// Both derivations are deterministic: identical inputs always produce an
// identical (m, k) pairing, so two filters created with the same parameters
// compute the same bit positions for the same items.
//
// # Hashing
//
// Each item is hashed twice with seeded xxh3, and the k bit positions are
// derived by double hashing: position i is (h1 + i*h2) mod m. A single pass
// over the input feeds all k probes regardless of k.
//
// # Thread safety
//
// Filter and BitField are NOT thread-safe. The registry package serializes
// all access to a filter under its reader/writer lock; standalone users
// need their own synchronization.
package bloomd
