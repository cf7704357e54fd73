package construct

// Params bundles the per-call enumeration budget (spec §6
// MultiTableFeatureConstructor inputs, minus the schema/catalogue
// collaborators which the Generator takes separately).
type Params struct {
	MaxRuleNumber            int
	MaxRuleDepth             int
	MaxRuleCost              float64
	IsSelectionRuleForbidden bool

	// SelectionMaxLevel bounds the granularity levels pass 1 considers
	// for a selection operand (spec §4.D: g in {2,4,...,2^k}).
	SelectionMaxLevel int
}

// DefaultParams mirrors spec §6's defaults for the fields relevant to
// the generator.
func DefaultParams() Params {
	return Params{
		MaxRuleNumber:            1_000_000,
		MaxRuleDepth:             100,
		MaxRuleCost:              1000,
		IsSelectionRuleForbidden: false,
		SelectionMaxLevel:        6,
	}
}
