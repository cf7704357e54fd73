package selection

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KhiopsML/khiops-sub024/prep"
)

func TestConceptualGranularitiesSumToOneAndDecrease(t *testing.T) {
	req := require.New(t)
	gs := ConceptualGranularities(5)
	req.Len(gs, 5)

	sum := 0.0
	for _, g := range gs {
		sum += g.Prob
	}
	req.InDelta(1.0, sum, 1e-9)

	for i := 1; i < len(gs); i++ {
		req.Less(gs[i].Prob, gs[i-1].Prob, "finer granularities must receive strictly less conceptual mass")
		req.Equal(gs[i-1].Granularity*2, gs[i].Granularity)
	}
}

func TestOperandTotalOrderIsDeterministic(t *testing.T) {
	req := require.New(t)
	a := Operand{Kind: OperandAttribute, Name: "price"}
	b := Operand{Kind: OperandAttribute, Name: "qty"}
	r := Operand{Kind: OperandRule, Name: "Diff(price,qty)"}

	req.True(a.Less(b))
	req.False(b.Less(a))
	req.True(a.Less(r))
}

func TestRecordCandidateIsIdempotentPerOperand(t *testing.T) {
	req := require.New(t)
	s := NewSelectionOperandStats()
	op := Operand{Kind: OperandAttribute, Name: "price"}
	s.RecordCandidate("Item", op, 3)
	s.RecordCandidate("Item", op, 10) // should not replace the first distribution

	got := s.Operands("Item")
	req.Len(got, 1)
	req.Len(got[0].Granularities, 3)
}

func TestOperandsSortedByTotalOrder(t *testing.T) {
	req := require.New(t)
	s := NewSelectionOperandStats()
	s.RecordCandidate("Item", Operand{Kind: OperandAttribute, Name: "qty"}, 2)
	s.RecordCandidate("Item", Operand{Kind: OperandAttribute, Name: "price"}, 2)
	s.RecordCandidate("Item", Operand{Kind: OperandRule, Name: "Diff"}, 2)

	got := s.Operands("Item")
	req.Equal("price", got[0].Operand.Name)
	req.Equal("qty", got[1].Operand.Name)
	req.Equal(OperandRule, got[2].Operand.Kind)
}

func TestPartitionSignatureIsOrderIndependent(t *testing.T) {
	req := require.New(t)
	opA := Operand{Kind: OperandAttribute, Name: "a"}
	opB := Operand{Kind: OperandAttribute, Name: "b"}

	p1 := NewPartition([]Operand{opA, opB}, []int{4, 8})
	p2 := NewPartition([]Operand{opB, opA}, []int{8, 4})

	sig1, err := p1.Signature()
	req.NoError(err)
	sig2, err := p2.Signature()
	req.NoError(err)
	req.Equal(sig1, sig2)
}

func TestPartSignatureDedup(t *testing.T) {
	req := require.New(t)
	op := Operand{Kind: OperandAttribute, Name: "a"}
	part := NewPartition([]Operand{op}, []int{4})

	p1 := Part{Partition: part, Indices: []int{2}}
	p2 := Part{Partition: part, Indices: []int{2}}
	p3 := Part{Partition: part, Indices: []int{3}}

	sig1, _ := p1.Signature()
	sig2, _ := p2.Signature()
	sig3, _ := p3.Signature()
	req.Equal(sig1, sig2)
	req.NotEqual(sig1, sig3)
}

// fakeQuantileBuilder is a minimal QuantileBuilder stub for pass-2 tests.
type fakeQuantileBuilder struct {
	partilesByGranularity map[int][]prep.Partile
}

func (f fakeQuantileBuilder) ComputeQuantiles(g int) []prep.Partile {
	return f.partilesByGranularity[g]
}
func (f fakeQuantileBuilder) IntervalLastIndex(k int) int      { return k }
func (f fakeQuantileBuilder) GroupFirstValueIndex(k int) int   { return k }

func TestMaterializeDisablesEmptyGranularities(t *testing.T) {
	req := require.New(t)
	s := NewSelectionOperandStats()
	op := Operand{Kind: OperandAttribute, Name: "price"}
	s.RecordCandidate("Item", op, 3) // granularities 2, 4, 8

	qb := fakeQuantileBuilder{partilesByGranularity: map[int][]prep.Partile{
		2: {{LastIndex: 5}, {LastIndex: 10}},
		// granularity 4 and 8 yield nothing (disabled)
	}}

	partitions := s.Materialize("Item", QuantileBuilders{op: qb})
	req.Len(partitions, 1)
	req.Equal(2, partitions[0].Granularities[0])

	got := s.Operands("Item")
	req.Len(got[0].Granularities, 1)
}

func TestMaterializeSkipsOperandsWithoutBuilder(t *testing.T) {
	req := require.New(t)
	s := NewSelectionOperandStats()
	op := Operand{Kind: OperandAttribute, Name: "price"}
	s.RecordCandidate("Item", op, 2)

	partitions := s.Materialize("Item", QuantileBuilders{})
	req.Empty(partitions)
}
