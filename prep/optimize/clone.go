package optimize

import "github.com/KhiopsML/khiops-sub024/prep/grid"

// cloneGrid deep-copies g so neighbourhood exploration can mutate a
// candidate without disturbing the incumbent (spec §4.I "neighbour
// generation starts from a copy of the current solution").
func cloneGrid(g *grid.DataGrid) *grid.DataGrid {
	out := &grid.DataGrid{
		Cells:             make(map[string]*grid.Cell, len(g.Cells)),
		Frequency:         g.Frequency,
		TargetValueNumber: g.TargetValueNumber,
	}
	out.Attributes = make([]*grid.DGAttribute, len(g.Attributes))
	for i, a := range g.Attributes {
		out.Attributes[i] = cloneAttribute(a)
	}
	out.InnerAttributes = make([]*grid.DGAttribute, len(g.InnerAttributes))
	for i, a := range g.InnerAttributes {
		out.InnerAttributes[i] = cloneAttribute(a)
	}
	for key, c := range g.Cells {
		out.Cells[key] = &grid.Cell{
			PartIndices: append([]int(nil), c.PartIndices...),
			Frequency:   c.Frequency,
			TargetFreq:  append([]int(nil), c.TargetFreq...),
		}
	}
	return out
}

func cloneAttribute(a *grid.DGAttribute) *grid.DGAttribute {
	out := &grid.DGAttribute{
		Name:        a.Name,
		Type:        a.Type,
		Granularity: a.Granularity,
		ValueCount:  a.ValueCount,
		Parts:       make([]*grid.Part, len(a.Parts)),
	}
	for i, p := range a.Parts {
		cp := *p
		cp.Values = append([]string(nil), p.Values...)
		cp.Inner = append([]grid.InnerPartRef(nil), p.Inner...)
		out.Parts[i] = &cp
	}
	return out
}

// recomputePartFrequencies refreshes every part's Frequency field from
// the grid's current cells, after a neighbour-generation step changed
// the cell-to-part assignment.
func recomputePartFrequencies(g *grid.DataGrid) {
	for ai, attr := range g.Attributes {
		for _, p := range attr.Parts {
			p.Frequency = 0
		}
		for _, c := range g.Cells {
			attr.Parts[c.PartIndices[ai]].Frequency += c.Frequency
		}
	}
}
