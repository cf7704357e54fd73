// Package prep is the top-level facade of the multi-table feature
// construction and data-grid optimizer core: it defines the external
// collaborator interfaces (SchemaStore, RuleCatalogue, QuantileBuilder,
// Progress, MemoryProbe — spec §6), the ambient Context threaded
// through every component. The two public entry points
// (MultiTableFeatureConstructor and DataGridOptimizer) live in the
// module's root package, which wires the subpackages together; this
// package does not import them.
package prep

import "github.com/KhiopsML/khiops-sub024/prep/rule"

// Attribute describes one column of a Class: its name, primitive or
// relation type and, for Relation types, the class it points to. Key
// and target attributes are called out explicitly so the compliance
// solver can forbid them without re-deriving the notion of "key" from
// naming conventions.
type Attribute interface {
	Name() string
	Type() rule.Type
	// ReferencedClass returns the class name a Relation-typed attribute
	// points to; empty for scalar attributes.
	ReferencedClass() string
	IsKey() bool
	IsTarget() bool
}

// Class is a node of the entity schema: an ordered list of attributes,
// a subset of which forms the key (spec §3).
type Class interface {
	Name() string
	Attributes() []Attribute
	KeyAttributes() []Attribute
}

// SchemaStore is the external dictionary/schema collaborator (spec
// §6): the core looks up classes by name and never mutates what it
// gets back.
type SchemaStore interface {
	LookupClass(name string) (Class, bool)
}

// RuleCatalogue is the external construction-rule collaborator the
// core consumes; prep/rule.Catalogue implements it directly.
type RuleCatalogue interface {
	Lookup(name string) (rule.Rule, bool)
	Rules() []rule.Rule
	IsSelectionRule(name string) bool
}

// Partile is one interval (numeric) or group (categorical) of a
// quantile-based partition at a given granularity, as produced by a
// QuantileBuilder.
type Partile struct {
	// LastIndex is, for a numeric interval, the index (into the sorted
	// sample) of the last value the interval covers.
	LastIndex int
	// FirstValueIndex is, for a categorical group, the index of the
	// first value (in frequency order) the group covers.
	FirstValueIndex int
}

// QuantileBuilder is the external collaborator that turns a secondary
// class's operand values into actual quantile-based partiles at a
// requested granularity (spec §4.D pass 2).
type QuantileBuilder interface {
	ComputeQuantiles(granularity int) []Partile
	IntervalLastIndex(k int) int
	GroupFirstValueIndex(k int) int
}

// Progress is the external progress-reporting/interruption collaborator
// (spec §5/§6). Every long-running builder or optimizer consults it at
// well-defined suspension points only; it is never consulted mid-mutation.
type Progress interface {
	BeginTask(name string)
	EndTask()
	DisplayProgression(pct int)
	IsInterruptionRequested() bool
}

// MemoryProbe is the external best-effort memory collaborator (spec
// §5/§7): RemainingAvailable returns an estimate of bytes still
// available to the process.
type MemoryProbe interface {
	RemainingAvailable() uint64
}
