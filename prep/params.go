package prep

import (
	"gopkg.in/yaml.v2"

	"github.com/KhiopsML/khiops-sub024/prep/errs"
)

// SelectionCriterion names the regularisation criterion for constructed
// rules whose second operand is a selection predicate; it is validated
// and stored, but no construction code in this module reads it. The
// three values are the ones named in spec §7's worked
// InvalidParameter example.
type SelectionCriterion string

const (
	CriterionCMA SelectionCriterion = "CMA"
	CriterionMA  SelectionCriterion = "MA"
	CriterionMAP SelectionCriterion = "MAP"
)

// SelectionParameters bundles the selection criterion with the
// continuous trade-off weight named alongside it in
// KWSelectionParameters.h (SPEC_FULL §12.1).
type SelectionParameters struct {
	Criterion SelectionCriterion `yaml:"criterion"`
	Parameter float64            `yaml:"parameter"`
}

// SetCriterion validates and sets c; an out-of-domain value is
// rejected at setter time with ErrInvalidParameter (spec §7), never
// silently clamped.
func (s *SelectionParameters) SetCriterion(c SelectionCriterion) error {
	switch c {
	case CriterionCMA, CriterionMA, CriterionMAP:
		s.Criterion = c
		return nil
	default:
		return errs.ErrInvalidParameter.New("selectionCriterion", "must be one of CMA, MA, MAP")
	}
}

// Params holds every tunable of the multi-table feature constructor,
// with defaults matching spec §6 exactly. Zero-value Params is not
// usable directly; call DefaultParams() or ParamsFromYAML.
type Params struct {
	MaxRuleNumber          int  `yaml:"max_rule_number"`
	MaxRuleDepth            int  `yaml:"max_rule_depth"`
	MaxRuleCost            float64 `yaml:"max_rule_cost"`
	IsSelectionRuleForbidden bool `yaml:"is_selection_rule_forbidden"`
	InterpretableNames     bool `yaml:"interpretable_names"`

	// MaxMemoryMB and MaxCoreCount are informational system-level
	// limits (SPEC_FULL §12.2, grounded on KWSystemParametersView);
	// both are recorded but unused: NewContext's default MemoryProbe is
	// UnboundedMemoryProbe (HostMemoryProbe carries its own ceiling), and
	// the core is single-threaded (spec §5).
	MaxMemoryMB int `yaml:"max_memory_mb"`
	MaxCoreCount int `yaml:"max_core_count"`

	Selection SelectionParameters `yaml:"selection"`
}

// DefaultParams returns the parameter defaults enumerated in spec §6.
func DefaultParams() Params {
	return Params{
		MaxRuleNumber:            1_000_000,
		MaxRuleDepth:             100,
		MaxRuleCost:              1000,
		IsSelectionRuleForbidden: false,
		InterpretableNames:       true,
		Selection: SelectionParameters{
			Criterion: CriterionMAP,
			Parameter: 1.0,
		},
	}
}

// ParamsFromYAML parses a YAML parameter block into Params, starting
// from DefaultParams so a caller only needs to specify overrides
// (SPEC_FULL §10.3, grounded on the teacher's Config struct plus
// KWSystemParametersView's externalised system-parameter block).
func ParamsFromYAML(data []byte) (Params, error) {
	p := DefaultParams()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Params{}, err
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Validate rejects out-of-domain parameter values at load time, per
// spec §7's InvalidParameter error kind.
func (p Params) Validate() error {
	if p.MaxRuleNumber <= 0 {
		return errs.ErrInvalidParameter.New("maxRuleNumber", "must be positive")
	}
	if p.MaxRuleDepth <= 0 {
		return errs.ErrInvalidParameter.New("maxRuleDepth", "must be positive")
	}
	if p.MaxRuleCost <= 0 {
		return errs.ErrInvalidParameter.New("maxRuleCost", "must be positive")
	}
	switch p.Selection.Criterion {
	case CriterionCMA, CriterionMA, CriterionMAP, "":
	default:
		return errs.ErrInvalidParameter.New("selectionCriterion", "must be one of CMA, MA, MAP")
	}
	return nil
}
