package grid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func twoByTwoGrid() *DataGrid {
	g := NewDataGrid()
	a := &DGAttribute{Name: "price", Type: AttrNumeric}
	b := &DGAttribute{Name: "flag", Type: AttrCategorical}
	g.AddAttribute(a)
	g.AddAttribute(b)
	g.AddPart(a, &Part{Kind: PartInterval, LowerBound: 0, UpperBound: 10})
	g.AddPart(a, &Part{Kind: PartInterval, LowerBound: 10, UpperBound: 20})
	g.AddPart(b, &Part{Kind: PartValueGroup, Values: []string{"x"}})
	g.AddPart(b, &Part{Kind: PartValueGroup, Values: []string{"y"}})

	g.AddCell([]int{0, 0}, 10, nil)
	g.AddCell([]int{0, 1}, 5, nil)
	g.AddCell([]int{1, 0}, 3, nil)
	g.AddCell([]int{1, 1}, 2, nil)
	g.Frequency = 20
	return g
}

// P7: Σ(cell.freq) = grid.frequency.
func TestCheckPassesOnConsistentGrid(t *testing.T) {
	g := twoByTwoGrid()
	require.NotPanics(t, func() { g.Check() })
}

func TestCheckPanicsOnFrequencyMismatch(t *testing.T) {
	g := twoByTwoGrid()
	g.Frequency = 999
	require.Panics(t, func() { g.Check() })
}

func TestAddCellMergesDuplicateIndices(t *testing.T) {
	req := require.New(t)
	g := NewDataGrid()
	a := &DGAttribute{Name: "price", Type: AttrNumeric}
	g.AddAttribute(a)
	g.AddPart(a, &Part{Kind: PartInterval})

	g.AddCell([]int{0}, 3, nil)
	g.AddCell([]int{0}, 4, nil)
	req.Len(g.Cells, 1)
	req.Equal(7, g.Cells["0"].Frequency)
}

func TestComputeMaxPartNumber(t *testing.T) {
	g := twoByTwoGrid()
	require.Equal(t, 2, g.ComputeMaxPartNumber())
}

func TestCopyInformativeDataGridDropsSinglePartAttributes(t *testing.T) {
	req := require.New(t)
	g := NewDataGrid()
	a := &DGAttribute{Name: "price", Type: AttrNumeric}
	b := &DGAttribute{Name: "constant", Type: AttrCategorical}
	g.AddAttribute(a)
	g.AddAttribute(b)
	g.AddPart(a, &Part{Kind: PartInterval, LowerBound: 0})
	g.AddPart(a, &Part{Kind: PartInterval, LowerBound: 1})
	g.AddPart(b, &Part{Kind: PartValueGroup, Values: []string{"only"}})
	g.AddCell([]int{0, 0}, 5, nil)
	g.AddCell([]int{1, 0}, 5, nil)
	g.Frequency = 10

	out := g.CopyInformativeDataGrid()
	req.Len(out.Attributes, 1)
	req.Equal("price", out.Attributes[0].Name)
	total := 0
	for _, c := range out.Cells {
		total += c.Frequency
		req.Len(c.PartIndices, 1)
	}
	req.Equal(10, total)
}

func TestSortAttributePartsOrdersNumericAscending(t *testing.T) {
	req := require.New(t)
	g := NewDataGrid()
	a := &DGAttribute{Name: "price", Type: AttrNumeric}
	g.AddAttribute(a)
	g.AddPart(a, &Part{Kind: PartInterval, LowerBound: 10})
	g.AddPart(a, &Part{Kind: PartInterval, LowerBound: 0})
	g.SortAttributeParts()
	req.Equal(0.0, a.Parts[0].LowerBound)
	req.Equal(10.0, a.Parts[1].LowerBound)
}
