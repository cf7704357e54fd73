// Package khiops is the top-level facade binding every subpackage into
// the two public entry points of spec §6: MultiTableFeatureConstructor
// and DataGridOptimizer.
package khiops

import (
	"time"

	"github.com/KhiopsML/khiops-sub024/prep"
	"github.com/KhiopsML/khiops-sub024/prep/classbuilder"
	"github.com/KhiopsML/khiops-sub024/prep/compliance"
	"github.com/KhiopsML/khiops-sub024/prep/construct"
	"github.com/KhiopsML/khiops-sub024/prep/grid"
	"github.com/KhiopsML/khiops-sub024/prep/optimize"
	"github.com/KhiopsML/khiops-sub024/prep/rule"
	"github.com/KhiopsML/khiops-sub024/prep/selection"
)

// FeatureConstructor bundles the external collaborators
// MultiTableFeatureConstructor needs (spec §6): a schema store, a rule
// catalogue, and the ambient Context, plus the caller's Params.
type FeatureConstructor struct {
	Store     prep.SchemaStore
	Catalogue *rule.Catalogue
	Ctx       *prep.Context
	Params    prep.Params
}

// NewFeatureConstructor wires store and catalogue against ctx/params.
func NewFeatureConstructor(store prep.SchemaStore, catalogue *rule.Catalogue, ctx *prep.Context, params prep.Params) *FeatureConstructor {
	return &FeatureConstructor{Store: store, Catalogue: catalogue, Ctx: ctx, Params: params}
}

// ConstructionResult is MultiTableFeatureConstructor's output tuple
// (spec §6): the derived schema, the wall-clock time spent, and the
// number of attributes actually constructed.
type ConstructionResult struct {
	DerivedSchema    classbuilder.DerivedClass
	ConstructionTime time.Duration
	ConstructedCount int
}

// Construct runs the full pipeline against rootClass: compliance
// analysis (spec §4.C), randomised rule-tree generation (spec §4.E),
// and class-building into named derived attributes (spec §4.F). It
// returns an error only when rootClass isn't in Store.
func (f *FeatureConstructor) Construct(rootClass string) (ConstructionResult, error) {
	start := f.Ctx.Clock.Now()
	f.Ctx.Progress.BeginTask("MultiTableFeatureConstructor")
	defer f.Ctx.Progress.EndTask()

	domain, ok := compliance.ComputeAllClassesCompliantRules(f.Store, rootClass, f.Catalogue.Active())
	if !ok {
		return ConstructionResult{}, unknownClassError(rootClass)
	}

	gen := &construct.Generator{
		Domain: domain,
		Stats:  selection.NewSelectionOperandStats(),
		Ctx:    f.Ctx,
		Params: construct.Params{
			MaxRuleNumber:            f.Params.MaxRuleNumber,
			MaxRuleDepth:             f.Params.MaxRuleDepth,
			MaxRuleCost:              f.Params.MaxRuleCost,
			IsSelectionRuleForbidden: f.Params.IsSelectionRuleForbidden,
			SelectionMaxLevel:        construct.DefaultParams().SelectionMaxLevel,
		},
	}

	nodes, err := gen.Construct(rootClass, f.Params.MaxRuleNumber, 0)
	if err != nil {
		return ConstructionResult{}, err
	}

	derived := classbuilder.Build(rootClass, nodes, classbuilder.Params{InterpretableNames: f.Params.InterpretableNames})

	return ConstructionResult{
		DerivedSchema:    derived,
		ConstructionTime: f.Ctx.Clock.Now().Sub(start),
		ConstructedCount: len(derived.Attributes),
	}, nil
}

type unknownClassError string

func (e unknownClassError) Error() string { return "khiops: unknown root class " + string(e) }

// DataGridOptimizer bundles the optimizer's Context, Params and
// costFunction (spec §6 DataGridOptimizer inputs: initialGrid,
// costFunction, params).
type DataGridOptimizer struct {
	opt *optimize.Optimizer
}

// NewDataGridOptimizer returns a DataGridOptimizer bound to ctx/params,
// scoring candidate grids with costFunc (optimize's default,
// gridcost.ComputeDataGridTotalCost, if nil).
func NewDataGridOptimizer(ctx *prep.Context, params optimize.Params, costFunc optimize.CostFunc) *DataGridOptimizer {
	return &DataGridOptimizer{opt: optimize.NewOptimizer(ctx, params, costFunc)}
}

// OptimizeResult is DataGridOptimizer's output tuple (spec §6): the
// optimized grid and its total codelength.
type OptimizeResult struct {
	OptimizedGrid *grid.DataGrid
	Cost          float64
}

// Optimize runs the full data-grid optimization pipeline of spec §4.I
// against initial.
func (d *DataGridOptimizer) Optimize(initial *grid.DataGrid) OptimizeResult {
	optimized, cost := d.opt.OptimizeDataGrid(initial)
	return OptimizeResult{OptimizedGrid: optimized, Cost: cost}
}
