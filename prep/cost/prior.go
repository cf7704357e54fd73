// Package cost implements the universal-prior codelength primitives and
// the deterministic multinomial sampling helpers the rest of the module
// draws on: the natural-number prior used to regularise tree depth and
// rule counts, log-factorial/log-Bell for partition counting, and the
// family of "best sample" functions that turn a continuous drawing
// budget into an integer allocation without breaking reproducibility.
//
// Every function here is pure: same inputs, same outputs, no access to
// global state. The caller owns any randomness (see prep.Context.RNG);
// nothing in this package reads from or seeds a global generator.
package cost

import "math"

// c0 is the normalising constant of the universal prior for the
// natural numbers, so that sum_{n=1}^{inf} 2^-naturalNumbersCodeLength(n) <= 1.
const c0 = 2.865064

// NaturalNumbersCodeLength returns log*(n), the universal codelength
// (in nats) of encoding the positive integer n, per Rissanen's
// universal prior for the integers:
//
//	log*(n) = log(c0) + log(n) + log(log(n)) + ... (iterated log, summed
//	while the term stays positive)
//
// n must be >= 1; the function panics on n <= 0 since no
// caller in this module ever needs to encode zero or negative counts.
func NaturalNumbersCodeLength(n int) float64 {
	if n < 1 {
		panic("cost: NaturalNumbersCodeLength requires n >= 1")
	}
	sum := math.Log(c0)
	term := float64(n)
	for {
		l := math.Log(term)
		if l <= 0 {
			break
		}
		sum += l
		term = l
	}
	return sum
}

// lnFactorialCache memoises ln(k!) for small k; the data-grid cost
// function (prep/gridcost) calls LnFactorial repeatedly on small cell
// frequencies, so a cache avoids recomputation without needing a global
// mutable singleton (the cache is read-only after init and safe for
// concurrent reads).
var lnFactorialCache = buildLnFactorialCache(256)

func buildLnFactorialCache(n int) []float64 {
	cache := make([]float64, n+1)
	for i := 1; i <= n; i++ {
		cache[i] = cache[i-1] + math.Log(float64(i))
	}
	return cache
}

// LnFactorial returns ln(n!) using math.Lgamma(n+1) beyond the small
// precomputed range, and the exact cached sum within it.
func LnFactorial(n int) float64 {
	if n < 0 {
		panic("cost: LnFactorial requires n >= 0")
	}
	if n < len(lnFactorialCache) {
		return lnFactorialCache[n]
	}
	v, _ := math.Lgamma(float64(n) + 1)
	return v
}

// LnBell returns ln(B(n, k)), the log of the number of ways to
// partition n distinguishable items into at most k non-empty,
// unordered groups (the Stirling-number-of-the-second-kind sum used by
// the data-grid cost function to regularise part assignment). It is
// computed by dynamic programming over the Stirling recurrence, each
// row rescaled once it grows large, so that large n does not overflow.
func LnBell(n, k int) float64 {
	if n < 0 || k < 0 {
		panic("cost: LnBell requires n, k >= 0")
	}
	if n == 0 {
		return 0
	}
	if k == 0 {
		return math.Inf(1)
	}
	// Stirling2(n, k) recurrence: S(n,k) = k*S(n-1,k) + S(n-1,k-1).
	// Kept in linear (not log) space with rescaling: a row whose largest
	// value exceeds 1e100 is divided by that value and its log added to
	// logScale, so every value stays within float64 range; this mirrors
	// the additive codelength style used throughout the cost function
	// (§4.H) rather than a more exotic log-space recurrence.
	prev := make([]float64, k+1)
	prev[0] = 1
	logScale := 0.0
	for i := 1; i <= n; i++ {
		curr := make([]float64, k+1)
		upper := k
		if i < upper {
			upper = i
		}
		rowMax := 0.0
		for j := 1; j <= upper; j++ {
			curr[j] = float64(j)*prev[j] + prev[j-1]
			if curr[j] > rowMax {
				rowMax = curr[j]
			}
		}
		if rowMax > 1e100 {
			for j := range curr {
				curr[j] /= rowMax
			}
			logScale += math.Log(rowMax)
		}
		prev = curr
	}
	total := 0.0
	for j := 1; j <= k; j++ {
		total += prev[j]
	}
	if total <= 0 {
		return math.Inf(1)
	}
	return math.Log(total) + logScale
}
