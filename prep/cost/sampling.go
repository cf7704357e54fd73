package cost

import (
	"math"
	"sort"
)

// BestEquidistributedSample distributes N draws into k cells as evenly
// as possible, minimising squared error against the uniform target
// N/k. The allocation is fully deterministic (no randomness): largest
// remainder first, ties broken by ascending cell index, so repeated
// calls with the same (N, k) always return the same vector.
//
// out must have length k; it is overwritten in place.
func BestEquidistributedSample(n, k int, out []int) {
	if k <= 0 {
		return
	}
	if len(out) != k {
		panic("cost: BestEquidistributedSample: out must have length k")
	}
	base := n / k
	remainder := n - base*k
	for i := range out {
		out[i] = base
	}
	// Largest-remainder allocation for the leftover N - base*k draws;
	// with an equidistributed target every cell has the same fractional
	// remainder so ties are broken by index, giving a stable,
	// reproducible vector.
	for i := 0; i < remainder; i++ {
		out[i]++
	}
}

// BestSample performs deterministic multinomial rounding of N draws
// against the probability vector p (which need not be normalised),
// guaranteeing sum(out) == N. It uses the largest-remainder method:
// each cell first receives floor(N*p_i/sum(p)), then the leftover
// draws go to the cells with the largest fractional remainder,
// breaking ties by ascending index for reproducibility.
//
// out must have the same length as p.
func BestSample(n int, p []float64, out []int) {
	if len(out) != len(p) {
		panic("cost: BestSample: out must have len(p) entries")
	}
	if len(p) == 0 {
		return
	}
	total := 0.0
	for _, pi := range p {
		total += pi
	}
	if total <= 0 {
		// Degenerate distribution: fall back to equidistribution so
		// the sum(out) == N invariant still holds.
		BestEquidistributedSample(n, len(p), out)
		return
	}

	type remainder struct {
		idx  int
		frac float64
	}
	remainders := make([]remainder, len(p))
	assigned := 0
	for i, pi := range p {
		share := float64(n) * pi / total
		floor := math.Floor(share)
		out[i] = int(floor)
		assigned += out[i]
		remainders[i] = remainder{idx: i, frac: share - floor}
	}

	leftover := n - assigned
	sort.SliceStable(remainders, func(a, b int) bool {
		if remainders[a].frac != remainders[b].frac {
			return remainders[a].frac > remainders[b].frac
		}
		return remainders[a].idx < remainders[b].idx
	})
	for i := 0; i < leftover && i < len(remainders); i++ {
		out[remainders[i].idx]++
	}
}

// BestSelectionSample enumerates the C(size, k) subsets of a `size`-
// element operand universe, each weighted by the product of the
// operands' individual probabilities p, and allocates N draws across
// them with the same deterministic largest-remainder rule as BestSample.
// Only subsets that receive at least one draw are returned, ordered by
// descending weight then ascending lexicographic subset (so ties are
// always broken the same way).
//
// k is the selection size (the "s" of spec §4.E); p must have length
// `size`.
func BestSelectionSample(n, size, k int, p []float64) []Subset {
	subsets := enumerateSubsets(size, k)
	weights := make([]float64, len(subsets))
	for i, s := range subsets {
		w := 1.0
		for _, idx := range s {
			w *= p[idx]
		}
		weights[i] = w
	}
	counts := make([]int, len(subsets))
	BestSample(n, weights, counts)

	out := make([]Subset, 0, len(subsets))
	for i, s := range subsets {
		if counts[i] > 0 {
			out = append(out, Subset{Indices: s, Draws: counts[i], Weight: weights[i]})
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Weight != out[b].Weight {
			return out[a].Weight > out[b].Weight
		}
		return lexLess(out[a].Indices, out[b].Indices)
	})
	return out
}

// Subset is one weighted, drawn-from subset produced by
// BestSelectionSample: Indices are positions into the operand universe
// passed to it, Draws is the number of samples allocated, and Weight
// is the product of the operands' probabilities (kept for tie-break
// and downstream pruning).
type Subset struct {
	Indices []int
	Draws   int
	Weight  float64
}

// BestMultipleProductSample independently best-samples each probability
// vector in vecs against its own share of N (split equidistributedly
// across the len(vecs) positions, then each position's share is
// best-sampled against its own vector), returning one draw count per
// (position, value) pair. This backs the per-operand
// granularity+partile joint sampling of the selection-rule builder
// (§4.E): one vecs[i] per operand, indices into vecs[i] are the
// granularity choices, and each granularity's own partile distribution
// is assumed uniform by the caller (handled by BestEquidistributedSample
// upstream).
func BestMultipleProductSample(n int, vecs [][]float64) [][]int {
	shares := make([]int, len(vecs))
	BestEquidistributedSample(n, len(vecs), shares)

	out := make([][]int, len(vecs))
	for i, v := range vecs {
		out[i] = make([]int, len(v))
		BestSample(shares[i], v, out[i])
	}
	return out
}

func enumerateSubsets(size, k int) [][]int {
	if k <= 0 || k > size {
		return nil
	}
	var out [][]int
	combo := make([]int, k)
	var rec func(start, depth int)
	rec = func(start, depth int) {
		if depth == k {
			cp := make([]int, k)
			copy(cp, combo)
			out = append(out, cp)
			return
		}
		for i := start; i < size; i++ {
			combo[depth] = i
			rec(i+1, depth+1)
		}
	}
	rec(0, 0)
	return out
}

func lexLess(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
