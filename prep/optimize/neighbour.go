package optimize

import (
	"math"
	"math/rand"

	"github.com/KhiopsML/khiops-sub024/prep/grid"
)

// rebuildGridCells replaces g's cell map by re-deriving every cell's
// index tuple through mutate, merging frequencies that collide onto
// the same new tuple (as grid.AddCell already does).
func rebuildGridCells(g *grid.DataGrid, mutate func(idx []int) []int) {
	type entry struct {
		idx  []int
		freq int
		tf   []int
	}
	entries := make([]entry, 0, len(g.Cells))
	for _, c := range g.Cells {
		entries = append(entries, entry{
			idx:  append([]int(nil), c.PartIndices...),
			freq: c.Frequency,
			tf:   append([]int(nil), c.TargetFreq...),
		})
	}
	g.Cells = make(map[string]*grid.Cell, len(entries))
	for _, e := range entries {
		g.AddCell(mutate(e.idx), e.freq, e.tf)
	}
}

// maxPartsBound returns spec §4.I's type-dependent nParts ceiling for a
// neighbourhood draw: ⌊gridSize/log(gridSize+1)⌋ for numeric attributes,
// √gridSize for categorical and VarPart attributes (the spec names no
// separate VarPart bound, so it shares the categorical one).
func maxPartsBound(attrType grid.AttributeType, gridSize float64) float64 {
	if attrType == grid.AttrNumeric {
		return gridSize / math.Log(gridSize+1)
	}
	return math.Sqrt(gridSize)
}

// drawPartCount samples nParts uniformly in [1, bound], bound being
// maxPartsBound inflated by noiseRate (spec §4.I "inflated by the
// noiseRate"), capped to the number of atoms available to group so the
// draw never asks for more parts than the initial grid can supply.
func drawPartCount(rng *rand.Rand, attrType grid.AttributeType, gridSize, noiseRate float64, atomCount int) int {
	if atomCount <= 0 {
		return 0
	}
	bound := int(math.Ceil(maxPartsBound(attrType, gridSize) * noiseRate))
	if bound < 1 {
		bound = 1
	}
	if bound > atomCount {
		bound = atomCount
	}
	return rng.Intn(bound) + 1
}

// partIndexForAtom finds which of parts contains atom's value (interval
// midpoint for numeric, first value for categorical, first inner
// reference for VarPart) — the lookup that lets a kept (unperturbed)
// attribute's existing partition still absorb the initial grid's atoms.
func partIndexForAtom(attrType grid.AttributeType, parts []*grid.Part, atom *grid.Part) int {
	switch attrType {
	case grid.AttrNumeric:
		mid := (atom.LowerBound + atom.UpperBound) / 2
		for i, p := range parts {
			if mid < p.UpperBound || i == len(parts)-1 {
				return i
			}
		}
	case grid.AttrCategorical:
		if len(atom.Values) > 0 {
			v := atom.Values[0]
			for i, p := range parts {
				for _, pv := range p.Values {
					if pv == v {
						return i
					}
				}
			}
		}
	case grid.AttrVarPart:
		if len(atom.Inner) > 0 {
			ref := atom.Inner[0]
			for i, p := range parts {
				for _, pr := range p.Inner {
					if pr == ref {
						return i
					}
				}
			}
		}
	}
	return 0
}

// keptAttributeMapping maps every atom of initial's attribute onto
// kept's existing (unperturbed) partition by value, so initial's cells
// can still be re-exported through an attribute this round didn't pick
// for randomisation.
func keptAttributeMapping(kept *grid.DGAttribute, atoms []*grid.Part) []int {
	mapping := make([]int, len(atoms))
	for i, atom := range atoms {
		mapping[i] = partIndexForAtom(kept.Type, kept.Parts, atom)
	}
	return mapping
}

// generateNeighbourSolution draws one VNS neighbour of incumbent (spec
// §4.I "generateNeighbourSolution(noiseRate)"): nAttr = max(2,
// ⌊noiseRate·(1+log2(gridSize))⌋) attributes are picked; a (1-noiseRate)
// fraction of them are kept mandatory (their partition carried over
// unchanged from incumbent) and the rest are redrawn with a fresh
// nParts partition (within the type-dependent bound, inflated by
// noiseRate) built from initial's own parts. Every cell of initial is
// then re-exported onto the resulting attribute set, so the candidate
// reflects the true data rather than incumbent's already-coarsened
// cells (spec §4.I "Export cells from the initial grid onto this new
// partition").
func generateNeighbourSolution(initial, incumbent *grid.DataGrid, rng *rand.Rand, noiseRate float64) *grid.DataGrid {
	total := len(incumbent.Attributes)
	if total == 0 {
		return cloneGrid(incumbent)
	}

	gridSize := float64(incumbent.Frequency)
	if gridSize < 1 {
		gridSize = 1
	}

	nAttr := int(noiseRate * (1 + math.Log2(gridSize)))
	if nAttr < 2 {
		nAttr = 2
	}
	if nAttr > total {
		nAttr = total
	}
	nKept := int((1 - noiseRate) * float64(nAttr))
	if nKept > nAttr {
		nKept = nAttr
	}

	order := rng.Perm(total)
	randomized := make(map[int]bool, nAttr-nKept)
	for _, ai := range order[nKept:nAttr] {
		randomized[ai] = true
	}

	newAttrs := make([]*grid.DGAttribute, total)
	mappings := make([][]int, total)
	for ai, attr := range incumbent.Attributes {
		atoms := initial.Attributes[ai].Parts
		if randomized[ai] {
			nParts := drawPartCount(rng, attr.Type, gridSize, noiseRate, len(atoms))
			mappings[ai] = mergeMap(len(atoms), nParts)
			newAttrs[ai] = buildMergedAttribute(initial.Attributes[ai], mappings[ai], nParts)
		} else {
			mappings[ai] = keptAttributeMapping(attr, atoms)
			newAttrs[ai] = cloneAttribute(attr)
		}
	}

	candidate := reassignCells(initial, newAttrs, mappings)
	candidate.SortAttributeParts()
	recomputePartFrequencies(candidate)
	return candidate
}
