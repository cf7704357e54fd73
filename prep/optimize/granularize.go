package optimize

import "github.com/KhiopsML/khiops-sub024/prep/grid"

// cloneAttributeShell copies attr's name/type/value-count but not its
// parts, so callers can rebuild a fresh part list for it.
func cloneAttributeShell(attr *grid.DGAttribute) *grid.DGAttribute {
	return &grid.DGAttribute{
		Name:       attr.Name,
		Type:       attr.Type,
		ValueCount: attr.ValueCount,
	}
}

// mergeMap groups the oldK parts of one attribute into at most newK
// parts by contiguous chunks, preserving the canonical (sorted) part
// order every DGAttribute is assumed to already carry. It returns, per
// old part index, the new part index it maps to.
func mergeMap(oldK, newK int) []int {
	if newK <= 0 {
		newK = 1
	}
	if newK > oldK {
		newK = oldK
	}
	out := make([]int, oldK)
	for i := 0; i < oldK; i++ {
		out[i] = i * newK / oldK
	}
	return out
}

// buildMergedAttribute constructs a new DGAttribute of at most newK
// parts from src by merging contiguous runs of src's parts, using
// mapping (old index -> new index).
func buildMergedAttribute(src *grid.DGAttribute, mapping []int, newK int) *grid.DGAttribute {
	attr := cloneAttributeShell(src)
	attr.Parts = make([]*grid.Part, newK)
	for i := range attr.Parts {
		attr.Parts[i] = &grid.Part{Kind: partKindFor(src)}
	}
	for oldIdx, p := range src.Parts {
		newIdx := mapping[oldIdx]
		np := attr.Parts[newIdx]
		switch src.Type {
		case grid.AttrNumeric:
			if np.Frequency == 0 && len(np.Values) == 0 && np.UpperBound == 0 && np.LowerBound == 0 {
				np.LowerBound = p.LowerBound
			}
			np.UpperBound = p.UpperBound
		case grid.AttrCategorical:
			np.Values = append(np.Values, p.Values...)
		case grid.AttrVarPart:
			np.Inner = append(np.Inner, p.Inner...)
		}
	}
	return attr
}

func partKindFor(attr *grid.DGAttribute) grid.PartKind {
	switch attr.Type {
	case grid.AttrCategorical:
		return grid.PartValueGroup
	case grid.AttrVarPart:
		return grid.PartVarPartCluster
	default:
		return grid.PartInterval
	}
}

// reassignCells rebuilds g's cells onto a grid whose attributes are
// newAttrs (same order, same count), given one old-to-new part-index
// mapping per attribute, by remapping every existing cell's index tuple
// and summing frequencies that land on the same new tuple.
func reassignCells(src *grid.DataGrid, newAttrs []*grid.DGAttribute, mappings [][]int) *grid.DataGrid {
	out := &grid.DataGrid{
		Attributes:        newAttrs,
		Cells:             make(map[string]*grid.Cell),
		Frequency:         src.Frequency,
		TargetValueNumber: src.TargetValueNumber,
		InnerAttributes:   src.InnerAttributes,
	}
	for _, c := range src.Cells {
		newIndices := make([]int, len(c.PartIndices))
		for ai, idx := range c.PartIndices {
			newIndices[ai] = mappings[ai][idx]
		}
		out.AddCell(newIndices, c.Frequency, c.TargetFreq)
	}
	for ai, attr := range newAttrs {
		for pi, p := range attr.Parts {
			freq := 0
			for _, c := range out.Cells {
				if c.PartIndices[ai] == pi {
					freq += c.Frequency
				}
			}
			p.Frequency = freq
		}
	}
	return out
}

// granularize coarsens fine (assumed the finest available partition —
// one part per observed value, per spec §4.I step 4a "Granularise the
// initial grid at level g") so that every attribute has at most 2^level
// parts.
func granularize(fine *grid.DataGrid, level int) *grid.DataGrid {
	target := 1 << uint(level)
	newAttrs := make([]*grid.DGAttribute, len(fine.Attributes))
	mappings := make([][]int, len(fine.Attributes))
	for i, attr := range fine.Attributes {
		k := len(attr.Parts)
		newK := target
		if newK > k {
			newK = k
		}
		if newK < 1 {
			newK = 1
		}
		mappings[i] = mergeMap(k, newK)
		merged := buildMergedAttribute(attr, mappings[i], newK)
		merged.Granularity = level
		newAttrs[i] = merged
	}
	return reassignCells(fine, newAttrs, mappings)
}

// buildTerminalGrid collapses every attribute of fine to a single part
// (spec §4.I step 1 "the terminal grid (one part per attribute)"),
// giving the baseline incumbent the optimizer starts from.
func buildTerminalGrid(fine *grid.DataGrid) *grid.DataGrid {
	return granularize(fine, 0)
}
