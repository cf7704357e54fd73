package optimize

import "time"

// Params bundles the optimizer's per-call knobs (spec §6
// DataGridOptimizer inputs, the params sub-struct).
type Params struct {
	OptimizationLevel   int
	OptimizationTime    time.Duration
	MaxPartNumber       int
	VarPartPostMerge    bool
	VarPartPostOptimize bool
}

// DefaultParams mirrors spec §6's defaults: optimizationLevel=0 (auto),
// optimizationTime=0 (unbounded), maxPartNumber=0 (no cap),
// varPartPostMerge=true, varPartPostOptimize=true.
func DefaultParams() Params {
	return Params{
		OptimizationLevel:   0,
		OptimizationTime:    0,
		MaxPartNumber:       0,
		VarPartPostMerge:    true,
		VarPartPostOptimize: true,
	}
}
