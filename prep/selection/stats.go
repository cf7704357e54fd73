// Package selection implements the two-pass selection-operand analyser
// of spec §4.D: a conceptual, data-free pass over the granularities a
// selection predicate might use, followed by a data-driven pass that
// materialises actual quantile partitions via the external
// QuantileBuilder collaborator.
package selection

import (
	"math"
	"sort"

	"github.com/mitchellh/hashstructure"

	"github.com/KhiopsML/khiops-sub024/prep/cost"
)

// OperandKind distinguishes a univariate selection operand that is a
// plain attribute from one that is a simple nested rule (spec §4.D:
// "an attribute or a simple rule").
type OperandKind int

const (
	OperandAttribute OperandKind = iota
	OperandRule
)

// Operand is one candidate univariate selection operand: either a bare
// attribute name or the signature of a simple nested rule, scoped to a
// secondary class.
type Operand struct {
	Kind OperandKind
	Name string // attribute name, or a canonical rule-signature string
}

// Less gives the total order operands must be sorted by before any
// random draw (spec §4.D "Reproducibility"): by kind, then by name.
func (o Operand) Less(other Operand) bool {
	if o.Kind != other.Kind {
		return o.Kind < other.Kind
	}
	return o.Name < other.Name
}

// GranularityProb is one (granularity, probability) pair of the
// conceptual distribution pass 1 assigns an operand: probability
// proportional to exp(-log*(log2(g))), restricted to powers of two.
type GranularityProb struct {
	Granularity int
	Prob        float64
}

// ConceptualGranularities returns the distribution over granularities
// g in {2, 4, 8, ..., 2^maxLevel}, each weighted by exp(-log*(log2 g))
// and normalised to sum to 1 (spec §4.D pass 1). maxLevel must be >= 1.
func ConceptualGranularities(maxLevel int) []GranularityProb {
	out := make([]GranularityProb, 0, maxLevel)
	total := 0.0
	for level := 1; level <= maxLevel; level++ {
		g := 1 << uint(level)
		w := math.Exp(-cost.NaturalNumbersCodeLength(level))
		out = append(out, GranularityProb{Granularity: g, Prob: w})
		total += w
	}
	if total > 0 {
		for i := range out {
			out[i].Prob /= total
		}
	}
	return out
}

// OperandStats is the pass-1 record for one candidate operand: its
// conceptual granularity distribution and, once Materialize has run,
// the partiles per granularity. The uniform spread of draws across a
// granularity's partiles (spec §4.D) is done by the generator when it
// builds Parts, not stored here.
type OperandStats struct {
	Operand       Operand
	Granularities []GranularityProb
	// Partiles holds materialised quantile partiles per granularity,
	// filled in by pass 2 (Materialize). Empty until then.
	Partiles map[int][]PartileStat
}

// PartileStat is one partile (numeric interval or categorical group)
// at a given granularity. Materialize fills only Index and leaves
// Frequency at zero; the generator sets Frequency to the number of
// draws it assigns to the partile.
type PartileStat struct {
	Index     int
	Frequency int
}

// SelectionOperandStats accumulates, per secondary class, the set of
// candidate operands discovered during pass 1 of enumeration.
type SelectionOperandStats struct {
	byClass map[string]map[Operand]*OperandStats
}

// NewSelectionOperandStats returns an empty accumulator.
func NewSelectionOperandStats() *SelectionOperandStats {
	return &SelectionOperandStats{byClass: make(map[string]map[Operand]*OperandStats)}
}

// RecordCandidate registers op as a candidate selection operand for
// class, with a conceptual granularity distribution up to maxLevel
// levels. Calling it again for the same (class, operand) is a no-op:
// the first recorded distribution wins, matching the "record each
// candidate... together with a conceptual distribution" wording (the
// distribution only depends on maxLevel, which callers keep constant
// for the lifetime of one enumeration).
func (s *SelectionOperandStats) RecordCandidate(class string, op Operand, maxLevel int) {
	byOp, ok := s.byClass[class]
	if !ok {
		byOp = make(map[Operand]*OperandStats)
		s.byClass[class] = byOp
	}
	if _, exists := byOp[op]; exists {
		return
	}
	byOp[op] = &OperandStats{
		Operand:       op,
		Granularities: ConceptualGranularities(maxLevel),
		Partiles:      make(map[int][]PartileStat),
	}
}

// Operands returns the candidate operands recorded for class, sorted
// by the total order of spec §4.D so any subsequent random draw over
// them is reproducible.
func (s *SelectionOperandStats) Operands(class string) []*OperandStats {
	byOp := s.byClass[class]
	out := make([]*OperandStats, 0, len(byOp))
	for _, os := range byOp {
		out = append(out, os)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operand.Less(out[j].Operand) })
	return out
}

// Classes returns the secondary class names with at least one recorded
// candidate, sorted for deterministic iteration.
func (s *SelectionOperandStats) Classes() []string {
	out := make([]string, 0, len(s.byClass))
	for c := range s.byClass {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Partition is a tuple of (operand, granularity) pairs; operands
// within a Partition are ordered by the total order of spec §4.D,
// guaranteeing canonical uniqueness.
type Partition struct {
	Operands      []Operand
	Granularities []int
}

// Signature returns a stable structural hash of the partition,
// canonicalised by construction (NewPartition sorts operands), used to
// dedupe Parts sharing the same (partition, index-vector) (spec §4.E).
func (p Partition) Signature() (uint64, error) {
	return hashstructure.Hash(p, nil)
}

// NewPartition builds a canonical Partition from parallel operand and
// granularity slices, sorting both by the operand total order so two
// logically identical partitions always compare equal.
func NewPartition(operands []Operand, granularities []int) Partition {
	type pair struct {
		op Operand
		g  int
	}
	pairs := make([]pair, len(operands))
	for i := range operands {
		pairs[i] = pair{op: operands[i], g: granularities[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].op.Less(pairs[j].op) })
	p := Partition{
		Operands:      make([]Operand, len(pairs)),
		Granularities: make([]int, len(pairs)),
	}
	for i, pr := range pairs {
		p.Operands[i] = pr.op
		p.Granularities[i] = pr.g
	}
	return p
}

// Part is an index vector into a Partition's per-operand partiles: one
// index per operand, in the same order as Partition.Operands.
type Part struct {
	Partition Partition
	Indices   []int
}

// Signature hashes (Partition, Indices) together, giving the canonical
// key the generator dedupes Parts by (spec §4.E: "Parts are deduplicated
// by their (partition, index-vector) signature").
func (p Part) Signature() (uint64, error) {
	return hashstructure.Hash(p, nil)
}
