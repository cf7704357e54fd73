package optimize

import (
	"math"

	"github.com/KhiopsML/khiops-sub024/prep/grid"
	"github.com/KhiopsML/khiops-sub024/prep/gridcost"
)

const maxVNSTrialsPerNeighbourhood = 20

// vnsOptimizeDataGrid runs a variable-neighbourhood-search descent from
// start: the neighbourhood index h steps from 1 to nNeighbourhoods and
// the noise rate shrinks geometrically with it, from 1 towards
// 3/(3+gridFrequency) by the factor (1/minNoise)^(1/(nNeighbourhoods+1)),
// h resetting to 1 on every accepted improvement (spec §4.I
// "vnsOptimizeDataGrid(nNeighbourhoods)"). initial is the finest grid
// the whole sweep started from: every generated neighbour re-exports
// its cells from initial, and every neighbour is itself run through
// optimizeSolution (here, greedyMergeOptimize) before its cost is
// compared to the incumbent, matching spec.md:142's
// "generateNeighbourSolution(noiseRate) -> optimizeSolution".
func (o *Optimizer) vnsOptimizeDataGrid(initial, start *grid.DataGrid, nNeighbourhoods int, deadline deadlineFunc) *grid.DataGrid {
	incumbent := start
	incumbentCost := o.Cost(incumbent)

	minNoise := 3.0 / (3.0 + float64(initial.Frequency))
	decrease := math.Pow(1/minNoise, 1/float64(nNeighbourhoods+1))

	h := 1
	for h <= nNeighbourhoods {
		if o.interrupted(deadline) {
			break
		}
		noiseRate := math.Pow(decrease, -float64(h-1))
		improved := false
		for trial := 0; trial < maxVNSTrialsPerNeighbourhood; trial++ {
			if o.interrupted(deadline) {
				break
			}
			candidate := generateNeighbourSolution(initial, incumbent, o.Ctx.RNG, noiseRate)
			candidate, candCost := o.greedyMergeOptimize(candidate, o.Cost(candidate), deadline)
			if gridcost.IsBetter(candCost, incumbentCost, epsilon) {
				incumbent, incumbentCost = candidate, candCost
				improved = true
				break
			}
		}
		if improved {
			h = 1
			continue
		}
		h++
	}
	return incumbent
}

// iterativeVNSOptimizeDataGrid runs vnsOptimizeDataGrid once per level
// L = 0..optimizationLevel-1 with neighbourhood count 2^L, keeping the
// best incumbent seen across levels (spec §4.I
// "iterativeVNSOptimizeDataGrid").
func (o *Optimizer) iterativeVNSOptimizeDataGrid(initial, granularized *grid.DataGrid, deadline deadlineFunc) *grid.DataGrid {
	best := granularized
	bestCost := o.Cost(best)
	for level := 0; level < o.Params.OptimizationLevel; level++ {
		if o.interrupted(deadline) {
			break
		}
		nNeighbourhoods := 1 << uint(level)
		candidate := o.vnsOptimizeDataGrid(initial, best, nNeighbourhoods, deadline)
		candCost := o.Cost(candidate)
		if gridcost.IsBetter(candCost, bestCost, epsilon) {
			best, bestCost = candidate, candCost
		}
	}
	return best
}

// slightOptimizeGranularizedDataGrid is the optimizationLevel=0 ("auto")
// path: a single light VNS pass bounded to one neighbourhood, matching
// spec §4.I's "auto" default of a lightweight local search rather than
// the full iterative schedule.
func (o *Optimizer) slightOptimizeGranularizedDataGrid(initial, granularized *grid.DataGrid, deadline deadlineFunc) *grid.DataGrid {
	return o.vnsOptimizeDataGrid(initial, granularized, 1, deadline)
}
