package optimize

import (
	"github.com/KhiopsML/khiops-sub024/prep/grid"
	"github.com/KhiopsML/khiops-sub024/prep/gridcost"
)

// greedyMergeOptimize repeatedly merges whichever adjacent part pair,
// across every attribute, yields the best cost improvement, stopping
// when no merge improves on the incumbent (spec §4.I "post-optimise:
// greedy bottom-up merge pass").
func (o *Optimizer) greedyMergeOptimize(g *grid.DataGrid, cost float64, deadline deadlineFunc) (*grid.DataGrid, float64) {
	incumbent, incumbentCost := g, cost
	for {
		if o.interrupted(deadline) {
			return incumbent, incumbentCost
		}
		bestCandidate, bestCost := incumbent, incumbentCost
		improved := false
		for ai, attr := range incumbent.Attributes {
			for i := 0; i < len(attr.Parts)-1; i++ {
				candidate := cloneGrid(incumbent)
				if !mergeAdjacentAt(candidate, ai, i) {
					continue
				}
				candCost := o.Cost(candidate)
				if gridcost.IsBetter(candCost, bestCost, epsilon) {
					bestCandidate, bestCost = candidate, candCost
					improved = true
				}
			}
		}
		if !improved {
			return incumbent, incumbentCost
		}
		incumbent, incumbentCost = bestCandidate, bestCost
	}
}

// mergeAdjacentAt merges the parts at canonical positions i and i+1 of
// attribute ai, assuming g's attribute parts are already sorted.
func mergeAdjacentAt(g *grid.DataGrid, ai, i int) bool {
	attr := g.Attributes[ai]
	if i+1 >= len(attr.Parts) {
		return false
	}
	j := i + 1
	a, b := attr.Parts[i], attr.Parts[j]
	switch attr.Type {
	case grid.AttrNumeric:
		a.UpperBound = b.UpperBound
	case grid.AttrCategorical:
		a.Values = append(a.Values, b.Values...)
	case grid.AttrVarPart:
		a.Inner = append(a.Inner, b.Inner...)
	}
	attr.Parts = append(attr.Parts[:j], attr.Parts[j+1:]...)
	rebuildGridCells(g, func(idx []int) []int {
		out := append([]int(nil), idx...)
		switch {
		case out[ai] == j:
			out[ai] = i
		case out[ai] > j:
			out[ai]--
		}
		return out
	})
	recomputePartFrequencies(g)
	return true
}

// varPartPostMerge repeatedly merges the first two clusters of each
// VarPart attribute, accepting a merge while gridcost's delta-cost
// shortcut reports a strict improvement (ΔC < -epsilon) and stopping at
// the first merge that does not; other adjacent pairs are not tried and
// the clusters' inner attributes are not compared
// (spec §4.H/§4.I "VarPart post-merge").
func (o *Optimizer) varPartPostMerge(g *grid.DataGrid, cost float64) (*grid.DataGrid, float64) {
	incumbent, incumbentCost := g, cost
	for ai, attr := range incumbent.Attributes {
		if attr.Type != grid.AttrVarPart {
			continue
		}
		for {
			merged := cloneGrid(incumbent)
			if len(merged.Attributes[ai].Parts) < 2 || !mergeAdjacentAt(merged, ai, 0) {
				break
			}
			delta := gridcost.ExportDataGridWithVarPartMergeOptimization(incumbent, merged)
			if delta >= -epsilon {
				break
			}
			incumbent, incumbentCost = merged, incumbentCost+delta
		}
	}
	return incumbent, incumbentCost
}

// enforceMaxPartNumber greedily merges parts on whichever attribute has
// the most parts until every attribute respects maxPartNumber (spec §5
// "maxPartNumber caps the per-attribute part count").
func (o *Optimizer) enforceMaxPartNumber(g *grid.DataGrid, deadline deadlineFunc) *grid.DataGrid {
	if o.Params.MaxPartNumber <= 0 {
		return g
	}
	incumbent := g
	for incumbent.ComputeMaxPartNumber() > o.Params.MaxPartNumber {
		if o.interrupted(deadline) {
			break
		}
		worst := -1
		for i, attr := range incumbent.Attributes {
			if len(attr.Parts) > o.Params.MaxPartNumber && (worst == -1 || len(attr.Parts) > len(incumbent.Attributes[worst].Parts)) {
				worst = i
			}
		}
		if worst == -1 {
			break
		}
		next := cloneGrid(incumbent)
		if !mergeAdjacentAt(next, worst, 0) {
			break
		}
		incumbent = next
	}
	return incumbent
}

// EvaluateOnHoldout scores an already-optimised grid's structure
// against a fresh sample of cells (supplementing spec §6's optimizer
// surface, spec §12 "holdout evaluation" per SPEC_FULL §12 item 5): it
// reuses trained's attributes and parts unchanged and recomputes total
// cost purely from the holdout cell counts, so no degrees of freedom
// from the training data leak into the estimate.
func EvaluateOnHoldout(trained *grid.DataGrid, holdoutCells []*grid.Cell, holdoutFrequency int) float64 {
	eval := &grid.DataGrid{
		Attributes:        trained.Attributes,
		InnerAttributes:   trained.InnerAttributes,
		TargetValueNumber: trained.TargetValueNumber,
		Frequency:         holdoutFrequency,
		Cells:             make(map[string]*grid.Cell, len(holdoutCells)),
	}
	for _, c := range holdoutCells {
		eval.AddCell(c.PartIndices, c.Frequency, c.TargetFreq)
	}
	return gridcost.ComputeDataGridTotalCost(eval)
}
