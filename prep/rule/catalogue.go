// Package rule defines the static catalogue of construction-rule
// templates (Count, Mean, Selection, ...): their operand signatures,
// family, recursion level, and the selection-rule flag. Clients never
// mutate a Rule — they Clone it when embedding it in a constructed
// rule tree (see prep/construct).
package rule

import (
	"fmt"
	"sort"

	"github.com/KhiopsML/khiops-sub024/prep/errs"
)

// Type is the primitive or relation type an operand or return value
// can take. It mirrors the Attribute primitive types of the external
// schema (spec §3) plus the two relation kinds.
type Type int

const (
	Unknown Type = iota
	Numeric
	Categorical
	Date
	Time
	Timestamp
	Text
	Object      // 1:1 relation
	ObjectArray // 1:N relation
	Structure   // return type of a non-scalar sub-rule (e.g. TableSelection)
)

func (t Type) String() string {
	switch t {
	case Numeric:
		return "Numeric"
	case Categorical:
		return "Categorical"
	case Date:
		return "Date"
	case Time:
		return "Time"
	case Timestamp:
		return "Timestamp"
	case Text:
		return "Text"
	case Object:
		return "Object"
	case ObjectArray:
		return "ObjectArray"
	case Structure:
		return "Structure"
	default:
		return "Unknown"
	}
}

// Family groups rules sharing the same derivation flavour; the active
// subset of the catalogue is most often toggled per family (see
// SPEC_FULL §12.4, grounded on KDConstructionDomainView).
type Family string

const (
	FamilyAggregate  Family = "Aggregate"
	FamilySelection  Family = "Selection"
	FamilyArithmetic Family = "Arithmetic"
	FamilyDate       Family = "Date"
	FamilyText       Family = "Text"
)

// Operand describes one positional operand of a construction rule.
type Operand struct {
	// Type is the operand's required type; the compliance solver and the
	// generator match it exactly against attribute types and rule
	// return types.
	Type Type
	// Supplement is set for Relation operands: the operand is filled by
	// an Object/ObjectArray attribute (or rule) of the rule's own class,
	// the one whose referenced class Secondary operands are resolved in.
	Supplement bool
	// Secondary marks that this operand is evaluated in the scope of a
	// sub-entity (e.g. the predicate operand of a Selection rule)
	// rather than the rule's own class.
	Secondary bool
}

// Rule is an immutable construction-rule template. Construct one via
// Register; never mutate a Rule obtained from a Catalogue — Clone it
// into a construct.Node instead.
type Rule struct {
	Name            string
	Family          Family
	Operands        []Operand
	ReturnType      Type
	RecursionLevel  int
	IsSelectionRule bool
}

// Clone returns a value copy of r, safe to embed in a constructed-rule
// tree without aliasing the catalogue's operand slice.
func (r Rule) Clone() Rule {
	cp := r
	cp.Operands = append([]Operand(nil), r.Operands...)
	return cp
}

// Catalogue is the static, name-indexed set of construction rules
// known to the generator, with a per-family enable bit (SPEC_FULL
// §12.4).
type Catalogue struct {
	byName  map[string]Rule
	order   []string // insertion order, for deterministic Rules() iteration
	enabled map[Family]bool
}

// NewCatalogue returns an empty catalogue with every family enabled by
// default.
func NewCatalogue() *Catalogue {
	return &Catalogue{
		byName:  make(map[string]Rule),
		enabled: make(map[Family]bool),
	}
}

// Register adds rule to the catalogue. It panics via errs.Invariant on
// a duplicate name: the catalogue is built once at program start and a
// name collision is a programming bug, never a runtime condition.
func (c *Catalogue) Register(r Rule) {
	if _, exists := c.byName[r.Name]; exists {
		errs.Invariant(false, "rule %q already registered", r.Name)
	}
	c.byName[r.Name] = r.Clone()
	c.order = append(c.order, r.Name)
	if _, seen := c.enabled[r.Family]; !seen {
		c.enabled[r.Family] = true
	}
}

// SetFamilyEnabled toggles whether rules of family f participate in
// Active(). Disabling a family does not remove its rules from Lookup.
func (c *Catalogue) SetFamilyEnabled(f Family, on bool) {
	c.enabled[f] = on
}

// Lookup returns the rule registered under name, cloned so the caller
// can't mutate the catalogue.
func (c *Catalogue) Lookup(name string) (Rule, bool) {
	r, ok := c.byName[name]
	if !ok {
		return Rule{}, false
	}
	return r.Clone(), true
}

// Rules returns every registered rule, cloned, in deterministic
// registration order.
func (c *Catalogue) Rules() []Rule {
	out := make([]Rule, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.byName[name].Clone())
	}
	return out
}

// Active returns the rules whose family is currently enabled, sorted
// by name for reproducible downstream iteration (the compliance solver
// and generator both require a total order over the active catalogue).
func (c *Catalogue) Active() []Rule {
	out := make([]Rule, 0, len(c.order))
	for _, name := range c.order {
		r := c.byName[name]
		if c.enabled[r.Family] {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// IsSelectionRule reports whether the named rule is a selection rule.
// Unknown names report false: callers that need to distinguish
// "unknown" from "not a selection rule" should use Lookup directly.
func (c *Catalogue) IsSelectionRule(name string) bool {
	r, ok := c.byName[name]
	return ok && r.IsSelectionRule
}

// Validate checks every registered rule for a well-formed signature:
// a selection rule's operand at index 1 must be Secondary (it predicates
// over the sub-entity), and Supplement operands must be of relation
// type. It is meant to run once at catalogue-build time.
func (c *Catalogue) Validate() error {
	for _, name := range c.order {
		r := c.byName[name]
		if r.IsSelectionRule {
			if len(r.Operands) < 2 || !r.Operands[1].Secondary {
				return fmt.Errorf("rule %q: selection rules require a secondary operand at index 1", name)
			}
		}
		for i, op := range r.Operands {
			if op.Supplement && op.Type != Object && op.Type != ObjectArray {
				return fmt.Errorf("rule %q: operand %d marked Supplement but type is %s, not a relation", name, i, op.Type)
			}
		}
	}
	return nil
}
