// Package gridcost implements the additive data-grid codelength of
// spec §4.H: a model part (encoding the partition structure) plus a
// likelihood part (encoding, per cell, the observed target-value
// distribution in supervised mode).
package gridcost

import (
	"github.com/KhiopsML/khiops-sub024/prep/cost"
	"github.com/KhiopsML/khiops-sub024/prep/grid"
)

// ComputeDataGridTotalCost returns the negative-log-posterior cost of g
// (spec §4.H): Σ attribute-partition codelengths (model part) plus Σ
// cell-specific codelengths (likelihood part).
func ComputeDataGridTotalCost(g *grid.DataGrid) float64 {
	return modelCost(g) + likelihoodCost(g)
}

// modelCost encodes, per attribute, the chosen granularity and the
// chosen partition of its domain into that many parts: a numeric
// attribute's k intervals are encoded as a choice of k-1 split points
// among N-1 candidates (log C(N-1, k-1)); a categorical attribute's k
// groups are encoded via the Stirling-number prior lnBell(V, k); a
// VarPart attribute's k clusters are encoded as log C(P, k), P being
// its inner attributes' combined part count. Every attribute additionally pays
// naturalNumbersCodeLength(k) for the part count itself.
func modelCost(g *grid.DataGrid) float64 {
	total := 0.0
	cellCount := 1
	for _, attr := range g.Attributes {
		k := len(attr.Parts)
		if k == 0 {
			continue
		}
		cellCount *= k
		total += cost.NaturalNumbersCodeLength(k)
		switch attr.Type {
		case grid.AttrNumeric:
			n := attr.ValueCount
			if n < k {
				n = k
			}
			total += logChoose(n-1, k-1)
		case grid.AttrCategorical:
			v := attr.ValueCount
			if v < k {
				v = k
			}
			total += cost.LnBell(v, k)
		case grid.AttrVarPart:
			inner := 0
			for _, ia := range g.InnerAttributes {
				inner += len(ia.Parts)
			}
			if inner < k {
				inner = k
			}
			total += logChoose(inner, k)
		}
	}
	// Distribution of the grid's instances over the (cellCount) cells:
	// a multinomial-style prior term, encoded as choosing a composition
	// of Frequency into cellCount non-negative parts.
	if cellCount > 0 {
		total += logChoose(g.Frequency+cellCount-1, cellCount-1)
	}
	return total
}

// likelihoodCost encodes, per populated cell, the observed
// target-value distribution given the cell's total frequency (spec
// §4.H "likelihood part"). Unsupervised grids (TargetValueNumber <= 1)
// have no target distribution to encode and contribute zero.
func likelihoodCost(g *grid.DataGrid) float64 {
	if g.TargetValueNumber <= 1 {
		return 0
	}
	total := 0.0
	for _, c := range g.Cells {
		if c.Frequency == 0 {
			continue
		}
		total += logChoose(c.Frequency+g.TargetValueNumber-1, g.TargetValueNumber-1)
		total += cost.LnFactorial(c.Frequency)
		for _, nj := range c.TargetFreq {
			total -= cost.LnFactorial(nj)
		}
	}
	return total
}

// logChoose returns ln(C(n, k)), clamped to the valid range.
func logChoose(n, k int) float64 {
	if k < 0 || n < 0 || k > n {
		return 0
	}
	return cost.LnFactorial(n) - cost.LnFactorial(k) - cost.LnFactorial(n-k)
}

// ExportDataGridWithVarPartMergeOptimization computes the cost of
// merging adjacent VarPart clusters sharing the same inner attribute
// and returns the ΔC such that C(merged) = C(origin) + ΔC (spec
// §4.H "delta-cost shortcuts"). merged is the candidate merged grid,
// built by the caller; this computes ΔC by recomputing both total costs exactly
// rather than an incremental update, which keeps the function correct
// at the cost of not being a true shortcut — callers still benefit from
// the additive ΔC contract when composing several merge candidates.
func ExportDataGridWithVarPartMergeOptimization(origin, merged *grid.DataGrid) float64 {
	return ComputeDataGridTotalCost(merged) - ComputeDataGridTotalCost(origin)
}

// IsBetter reports whether candidate strictly improves on incumbent
// beyond the ε tolerance P8 allows.
func IsBetter(candidate, incumbent, eps float64) bool {
	return candidate < incumbent-eps
}
