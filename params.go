package bloomd

import "math"

const (
	// ln2 is the natural logarithm of 2.
	ln2 = 0.6931471805599453
	// ln2Squared is ln(2)^2.
	ln2Squared = 0.4804530139182014
)

// OptimalBits returns the bit-array size m for a filter expected to hold n
// items at target false positive rate p:
//
//	m = ceil(-(n * ln(p)) / ln(2)^2)
//
// The result is never below 1, even for degenerate inputs. Values of p very
// close to 0 or 1 are accepted and simply yield very large or very small
// arrays.
func OptimalBits(n uint64, p float64) uint64 {
	m := uint64(math.Ceil(-(float64(n) * math.Log(p)) / ln2Squared))
	if m == 0 {
		m = 1
	}
	return m
}

// OptimalHashCount returns the hash function count k that minimizes the
// false positive rate for m bits and n items:
//
//	k = round((m / n) * ln(2))
//
// clamped to a minimum of 1.
func OptimalHashCount(m, n uint64) uint64 {
	k := uint64(math.Round(float64(m) / float64(n) * ln2))
	if k == 0 {
		k = 1
	}
	return k
}

// BitsForHashCount returns the bit-array size m for which an explicitly
// chosen hash count k is optimal given n expected items:
//
//	m = ceil(k * n / ln(2))
//
// The result is never below 1.
func BitsForHashCount(n, k uint64) uint64 {
	m := uint64(math.Ceil(float64(k) * float64(n) / ln2))
	if m == 0 {
		m = 1
	}
	return m
}

// EstimateFalsePositiveRate estimates the false positive rate of a filter
// with m bits and k hash functions after count insertions:
//
//	(1 - e^(-k*count/m))^k
func EstimateFalsePositiveRate(m, k, count uint64) float64 {
	if m == 0 || count == 0 {
		return 0
	}
	kf := float64(k)
	return math.Pow(1-math.Exp(-kf*float64(count)/float64(m)), kf)
}
