package classbuilder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KhiopsML/khiops-sub024/prep/construct"
	"github.com/KhiopsML/khiops-sub024/prep/rule"
)

func countNode(attr string) *construct.Node {
	return &construct.Node{
		Class: "Customer",
		Rule:  rule.Rule{Name: "Count"},
		Operands: []construct.Operand{
			{Origin: construct.OriginAttribute, AttrName: attr},
		},
		Cost: 0.1,
	}
}

func TestBuildAssignsInterpretableNames(t *testing.T) {
	req := require.New(t)
	dc := Build("Customer", []*construct.Node{countNode("items")}, Params{InterpretableNames: true})
	req.Len(dc.Attributes, 1)
	req.Equal("Count_items_", dc.Attributes[0].Name)
	req.InDelta(0.1, dc.Attributes[0].Cost, 1e-9)
}

func TestBuildDisambiguatesDuplicateNames(t *testing.T) {
	req := require.New(t)
	dc := Build("Customer", []*construct.Node{countNode("items"), countNode("items")}, Params{InterpretableNames: true})
	req.Len(dc.Attributes, 2)
	req.NotEqual(dc.Attributes[0].Name, dc.Attributes[1].Name)
}

func TestBuildOpaqueNamesAreUniqueAndStable(t *testing.T) {
	req := require.New(t)
	dc := Build("Customer", []*construct.Node{countNode("items"), countNode("price")}, Params{InterpretableNames: false})
	req.Len(dc.Attributes, 2)
	req.NotEqual(dc.Attributes[0].Name, dc.Attributes[1].Name)
	req.Contains(dc.Attributes[0].Name, "Var")
}

func TestSanitizeNameStripsUnsafeCharacters(t *testing.T) {
	req := require.New(t)
	req.Equal("Mean_items_price_", SanitizeName("Mean(items,price)"))
}
