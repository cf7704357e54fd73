// Package grid implements the DataGrid model of spec §4.G: attribute
// partitions, sparse cells, and the invariants the optimizer must
// preserve at every step.
package grid

import (
	"sort"
	"strconv"
	"strings"

	"github.com/KhiopsML/khiops-sub024/prep/errs"
)

// PartKind distinguishes what a Part's value range looks like.
type PartKind int

const (
	PartInterval PartKind = iota
	PartValueGroup
	PartVarPartCluster
)

// InnerPartRef is one member of a VarPart cluster: a reference to a
// part of one of the DataGrid's shared InnerAttributes (spec §3
// "VarPart DataGrid additionally owns a shared InnerAttributes
// structure").
type InnerPartRef struct {
	AttributeIndex int
	PartIndex      int
}

// Part is one part of a DGAttribute.
type Part struct {
	Kind       PartKind
	LowerBound float64
	UpperBound float64
	Values     []string
	Inner      []InnerPartRef
	Frequency  int
}

// AttributeType is the kind of domain a DGAttribute partitions.
type AttributeType int

const (
	AttrNumeric AttributeType = iota
	AttrCategorical
	AttrVarPart
)

// DGAttribute is one axis of a DataGrid: a type, a granularity value, a
// granularised value count, and an ordered list of Parts.
type DGAttribute struct {
	Name        string
	Type        AttributeType
	Granularity int
	ValueCount  int
	Parts       []*Part
}

// Cell is a tuple of part-indices (one per attribute, in DataGrid
// attribute order) with a frequency and, in supervised mode, a
// per-target-value frequency vector.
type Cell struct {
	PartIndices []int
	Frequency   int
	TargetFreq  []int
}

// DataGrid is an ordered list of DGAttributes plus a sparse set of
// Cells keyed by part-index tuple.
type DataGrid struct {
	Attributes        []*DGAttribute
	Cells             map[string]*Cell
	Frequency         int
	TargetValueNumber int
	InnerAttributes   []*DGAttribute
}

// NewDataGrid returns an empty grid ready for addAttribute/addCell
// calls.
func NewDataGrid() *DataGrid {
	return &DataGrid{Cells: make(map[string]*Cell)}
}

// AddAttribute appends attr to the grid and returns its index.
func (g *DataGrid) AddAttribute(attr *DGAttribute) int {
	g.Attributes = append(g.Attributes, attr)
	return len(g.Attributes) - 1
}

// AddPart appends part to attr's part list and returns its index.
func (g *DataGrid) AddPart(attr *DGAttribute, part *Part) int {
	attr.Parts = append(attr.Parts, part)
	return len(attr.Parts) - 1
}

func cellKey(indices []int) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ",")
}

// AddCell registers a cell at partIndices with the given frequency and
// (optional, may be nil) per-target-value frequency vector. Adding a
// cell at an index tuple that already exists accumulates the frequency
// (spec §4.G "no duplicate cells" is enforced by merging instead of
// erroring, matching addCell-during-export semantics used throughout
// §4.I).
func (g *DataGrid) AddCell(partIndices []int, freq int, targetFreq []int) *Cell {
	key := cellKey(partIndices)
	if c, ok := g.Cells[key]; ok {
		c.Frequency += freq
		for i := range targetFreq {
			if i < len(c.TargetFreq) {
				c.TargetFreq[i] += targetFreq[i]
			}
		}
		return c
	}
	c := &Cell{
		PartIndices: append([]int(nil), partIndices...),
		Frequency:   freq,
		TargetFreq:  append([]int(nil), targetFreq...),
	}
	g.Cells[key] = c
	return c
}

// SortAttributeParts orders each attribute's parts canonically: numeric
// intervals ascending by LowerBound, categorical groups by their first
// value, VarPart clusters by their first inner reference — matching
// spec §3's "inner attributes sorted when VarPart" invariant.
func (g *DataGrid) SortAttributeParts() {
	for _, attr := range g.Attributes {
		parts := attr.Parts
		switch attr.Type {
		case AttrNumeric:
			sort.Slice(parts, func(i, j int) bool { return parts[i].LowerBound < parts[j].LowerBound })
		case AttrCategorical:
			sort.Slice(parts, func(i, j int) bool {
				return firstValue(parts[i]) < firstValue(parts[j])
			})
		case AttrVarPart:
			sort.Slice(parts, func(i, j int) bool {
				return innerLess(parts[i].Inner, parts[j].Inner)
			})
		}
	}
}

func firstValue(p *Part) string {
	if len(p.Values) == 0 {
		return ""
	}
	return p.Values[0]
}

func innerLess(a, b []InnerPartRef) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].AttributeIndex != b[i].AttributeIndex {
			return a[i].AttributeIndex < b[i].AttributeIndex
		}
		if a[i].PartIndex != b[i].PartIndex {
			return a[i].PartIndex < b[i].PartIndex
		}
	}
	return len(a) < len(b)
}

// ComputeMaxPartNumber returns the largest part count across every
// attribute, the quantity spec §4.I's `maxPartNumber` param bounds.
func (g *DataGrid) ComputeMaxPartNumber() int {
	max := 0
	for _, attr := range g.Attributes {
		if len(attr.Parts) > max {
			max = len(attr.Parts)
		}
	}
	return max
}

// CopyInformativeDataGrid returns a copy of g with every
// single-part attribute dropped (spec §4.G "copyInformativeDataGrid
// (drops attributes with a single part)"): such an attribute carries no
// information, since every instance lands in its one part.
func (g *DataGrid) CopyInformativeDataGrid() *DataGrid {
	keep := make([]int, 0, len(g.Attributes))
	out := &DataGrid{
		Cells:             make(map[string]*Cell),
		Frequency:         g.Frequency,
		TargetValueNumber: g.TargetValueNumber,
		InnerAttributes:   g.InnerAttributes,
	}
	for i, attr := range g.Attributes {
		if len(attr.Parts) > 1 {
			keep = append(keep, i)
			out.Attributes = append(out.Attributes, attr)
		}
	}
	if len(keep) == len(g.Attributes) {
		for key, c := range g.Cells {
			cp := *c
			out.Cells[key] = &cp
		}
		return out
	}
	for _, c := range g.Cells {
		newIndices := make([]int, len(keep))
		for pos, orig := range keep {
			newIndices[pos] = c.PartIndices[orig]
		}
		out.AddCell(newIndices, c.Frequency, c.TargetFreq)
	}
	return out
}

// Check verifies the invariants of spec §3/§4.G: no duplicate cells (a
// map already guarantees this structurally), Σ(cell freq) = grid
// frequency, parts are pairwise disjoint and cover the domain (checked
// via each attribute's part-frequency sum equalling the grid
// frequency), and every part with a non-zero Frequency equals the
// marginal sum of its cells (a part whose Frequency is 0 is not
// compared). It panics via errs.Invariant on the first violation found,
// matching spec §4.I's "Fatal: invariant violation in Check()
// (assertion)".
func (g *DataGrid) Check() {
	total := 0
	for _, c := range g.Cells {
		total += c.Frequency
	}
	errs.Invariant(total == g.Frequency, "grid: cell frequencies sum to %d, want %d", total, g.Frequency)

	for ai, attr := range g.Attributes {
		marginal := make([]int, len(attr.Parts))
		for _, c := range g.Cells {
			marginal[c.PartIndices[ai]] += c.Frequency
		}
		partsTotal := 0
		for pi, p := range attr.Parts {
			errs.Invariant(p.Frequency == 0 || p.Frequency == marginal[pi],
				"grid: attribute %q part %d frequency %d does not match cell marginal %d", attr.Name, pi, p.Frequency, marginal[pi])
			partsTotal += marginal[pi]
		}
		errs.Invariant(partsTotal == g.Frequency, "grid: attribute %q parts do not cover the domain (%d != %d)", attr.Name, partsTotal, g.Frequency)
	}
}
