// Package optimize implements the Data-Grid Optimizer of spec §4.I: a
// granularity sweep around a variable-neighbourhood-search descent,
// followed by greedy merge post-optimisation.
package optimize

import (
	"math"
	"time"

	"github.com/KhiopsML/khiops-sub024/prep"
	"github.com/KhiopsML/khiops-sub024/prep/grid"
	"github.com/KhiopsML/khiops-sub024/prep/gridcost"
)

// epsilon is the cost-improvement tolerance P8 allows: a candidate
// must beat the incumbent by more than epsilon to be accepted, so
// floating-point noise never causes an infinite improve/revert cycle.
const epsilon = 1e-6

// CostFunc scores a candidate grid; gridcost.ComputeDataGridTotalCost
// is the default, but spec §6 names costFunction as a caller-supplied
// input, so callers may substitute their own (e.g. to weigh model vs.
// likelihood cost differently).
type CostFunc func(*grid.DataGrid) float64

// Optimizer runs DataGridOptimizer (spec §6) against a *grid.DataGrid
// built by an upstream discretiser/grouper; it owns no state across
// calls beyond Ctx, Params and Cost.
type Optimizer struct {
	Ctx    *prep.Context
	Params Params
	Cost   CostFunc
}

// NewOptimizer returns an Optimizer bound to ctx (RNG, Progress, Clock)
// and params, scoring grids with costFunc (gridcost.ComputeDataGridTotalCost
// if nil).
func NewOptimizer(ctx *prep.Context, params Params, costFunc CostFunc) *Optimizer {
	if costFunc == nil {
		costFunc = gridcost.ComputeDataGridTotalCost
	}
	return &Optimizer{Ctx: ctx, Params: params, Cost: costFunc}
}

// deadlineFunc reports the absolute time optimisation must stop by; the
// zero time means "no deadline" (spec §5 "optimizationTime=0 is
// unbounded").
type deadlineFunc time.Time

func (o *Optimizer) interrupted(deadline deadlineFunc) bool {
	if o.Ctx.Progress.IsInterruptionRequested() {
		return true
	}
	if time.Time(deadline).IsZero() {
		return false
	}
	return !o.Ctx.Clock.Now().Before(time.Time(deadline))
}

// maxExploredGranularity returns spec §4.I's ceil(log2(n)) granularity
// ceiling, where n is the grid's instance count; a grid of 0 or 1
// instances has nothing to granularise.
func maxExploredGranularity(g *grid.DataGrid) int {
	if g.Frequency <= 1 {
		return 0
	}
	return int(math.Ceil(math.Log2(float64(g.Frequency))))
}

// OptimizeDataGrid runs the full pipeline of spec §4.I against fine
// (the grid at its finest available granularity) and returns the best
// grid found together with its codelength.
//
// An unsupervised grid with at most one attribute carries no interaction
// to discover: splitting it can never reduce the unsupervised
// model-only cost (gridcost pays strictly more for more parts with
// nothing to offset it), so optimisation is skipped and the terminal
// grid is returned unchanged — spec §4.I's "no optimisation needed"
// short-circuit.
func (o *Optimizer) OptimizeDataGrid(fine *grid.DataGrid) (*grid.DataGrid, float64) {
	terminal := buildTerminalGrid(fine)
	terminalCost := o.Cost(terminal)

	if len(fine.Attributes) <= 1 && fine.TargetValueNumber <= 1 {
		return terminal, terminalCost
	}

	var deadline deadlineFunc
	if o.Params.OptimizationTime > 0 {
		deadline = deadlineFunc(o.Ctx.Clock.Now().Add(o.Params.OptimizationTime))
	}

	incumbent, incumbentCost := terminal, terminalCost

	maxGranularity := maxExploredGranularity(fine)
	reachedMax := maxGranularity <= 0
	for g := 1; g <= maxGranularity; g++ {
		if o.interrupted(deadline) {
			break
		}
		granularized := granularize(fine, g)

		var candidate *grid.DataGrid
		if o.Params.OptimizationLevel > 0 {
			candidate = o.iterativeVNSOptimizeDataGrid(fine, granularized, deadline)
		} else {
			candidate = o.slightOptimizeGranularizedDataGrid(fine, granularized, deadline)
		}
		candidate, candCost := o.greedyMergeOptimize(candidate, o.Cost(candidate), deadline)

		if gridcost.IsBetter(candCost, incumbentCost, epsilon) {
			incumbent, incumbentCost = candidate, candCost
		}
		reachedMax = g == maxGranularity
	}
	if !reachedMax {
		o.Ctx.Log.Warnf("data grid optimization stopped at granularity below max (%d): optimizationTime budget exhausted", maxGranularity)
	}

	if o.Params.VarPartPostMerge {
		incumbent, incumbentCost = o.varPartPostMerge(incumbent, incumbentCost)
	}

	if o.Params.VarPartPostOptimize && !o.interrupted(deadline) {
		incumbent, incumbentCost = o.greedyMergeOptimize(incumbent, incumbentCost, deadline)
	}

	if o.Params.MaxPartNumber > 0 {
		incumbent = o.enforceMaxPartNumber(incumbent, deadline)
		incumbentCost = o.Cost(incumbent)
	}

	return incumbent, incumbentCost
}
