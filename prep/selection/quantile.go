package selection

import (
	"sort"

	"github.com/KhiopsML/khiops-sub024/prep"
)

// QuantileBuilders maps an operand recorded in pass 1 to the external
// QuantileBuilder that can materialise its actual partiles; callers
// build one per (class, operand) pair before calling Materialize.
type QuantileBuilders map[Operand]prep.QuantileBuilder

// Materialize runs pass 2 of spec §4.D for one secondary class: for
// each recorded operand, compute actual quantile-based partitions at
// each granularity present in pass 1. Operands for which builders has
// no entry are skipped (they simply get no Partiles, which disables
// them for partition construction, same as an operand whose
// granularity list goes empty).
//
// It returns the Partition objects built, one per (operand, granularity)
// that yielded at least one partile, sorted by operand order then
// granularity for reproducibility (spec §4.D "Reproducibility").
func (s *SelectionOperandStats) Materialize(class string, builders QuantileBuilders) []Partition {
	var partitions []Partition
	for _, os := range s.Operands(class) {
		qb, ok := builders[os.Operand]
		if !ok {
			continue
		}
		var survivingGranularities []GranularityProb
		for _, gp := range os.Granularities {
			partiles := qb.ComputeQuantiles(gp.Granularity)
			if len(partiles) == 0 {
				continue
			}
			stats := make([]PartileStat, len(partiles))
			for i := range partiles {
				stats[i] = PartileStat{Index: i}
			}
			os.Partiles[gp.Granularity] = stats
			survivingGranularities = append(survivingGranularities, gp)
			partitions = append(partitions, NewPartition([]Operand{os.Operand}, []int{gp.Granularity}))
		}
		// Partitions with empty granularity lists after pass 2 disable
		// the operand for pass-2 generation (spec §4.D).
		os.Granularities = survivingGranularities
	}
	sort.Slice(partitions, func(i, j int) bool {
		return partitionLess(partitions[i], partitions[j])
	})
	return partitions
}

func partitionLess(a, b Partition) bool {
	for i := 0; i < len(a.Operands) && i < len(b.Operands); i++ {
		if a.Operands[i] != b.Operands[i] {
			return a.Operands[i].Less(b.Operands[i])
		}
		if a.Granularities[i] != b.Granularities[i] {
			return a.Granularities[i] < b.Granularities[i]
		}
	}
	return len(a.Operands) < len(b.Operands)
}

// CrossProduct builds the Cartesian-product Partition combining every
// operand in ops at its given granularity, in canonical order. It
// backs the multi-operand selection composites of spec §4.E ("for each
// subset, independently sample granularity + partile per operand").
func CrossProduct(ops []Operand, granularities []int) Partition {
	return NewPartition(ops, granularities)
}
