// Package classbuilder implements the class builder of spec §4.F: it
// takes the accepted ConstructedRule trees and materialises a derived
// schema, with stable interpretable or opaque attribute names.
package classbuilder

import (
	"fmt"
	"strings"

	uuid "github.com/satori/go.uuid"

	"github.com/KhiopsML/khiops-sub024/prep/construct"
	"github.com/KhiopsML/khiops-sub024/prep/selection"
)

// Params controls derived-attribute naming (spec §6: interpretableNames
// defaults to true).
type Params struct {
	InterpretableNames bool
}

// DerivedAttribute is one materialised output attribute: a stable name
// attached to the accepted tree, its prior cost (attribute meta-datum
// per spec §4.F), and the selection Parts its tree depends on.
type DerivedAttribute struct {
	Name           string
	Rule           *construct.Node
	Cost           float64
	UsedPartitions []*selection.Part
}

// DerivedClass groups every derived attribute built for one input class.
type DerivedClass struct {
	ClassName  string
	Attributes []DerivedAttribute
}

// Build instantiates derived attributes for every accepted
// ConstructedRule node (spec §4.F). Ownership of nodes transfers to the
// returned DerivedClass (spec §3 "Lifecycles": the generator's copies
// are considered consumed once Build returns); selection-partition
// attributes a tree depends on are installed alongside it so the output
// schema is self-contained.
func Build(className string, nodes []*construct.Node, params Params) DerivedClass {
	dc := DerivedClass{ClassName: className}
	seen := make(map[string]int)
	for _, n := range nodes {
		dc.Attributes = append(dc.Attributes, DerivedAttribute{
			Name:           nameFor(n, params, seen),
			Rule:           n,
			Cost:           n.TotalCost(),
			UsedPartitions: collectParts(n),
		})
	}
	return dc
}

func nameFor(n *construct.Node, params Params, seen map[string]int) string {
	if !params.InterpretableNames {
		id := uuid.NewV4()
		return "Var" + strings.ReplaceAll(id.String(), "-", "")
	}
	name := SanitizeName(interpretableName(n))
	seen[name]++
	if seen[name] > 1 {
		name = fmt.Sprintf("%s_%d", name, seen[name])
	}
	return name
}

// interpretableName builds a name from the rule and operand names,
// e.g. "Mean(items,price)", recursing through nested-rule operands.
func interpretableName(n *construct.Node) string {
	var b strings.Builder
	b.WriteString(n.Rule.Name)
	b.WriteByte('(')
	for i, op := range n.Operands {
		if i > 0 {
			b.WriteByte(',')
		}
		switch op.Origin {
		case construct.OriginAttribute:
			b.WriteString(op.AttrName)
		case construct.OriginRule:
			if op.SubRule != nil {
				b.WriteString(interpretableName(op.SubRule))
			}
		case construct.OriginPart:
			b.WriteString("Part")
		}
	}
	b.WriteByte(')')
	return b.String()
}

func collectParts(n *construct.Node) []*selection.Part {
	var out []*selection.Part
	for _, op := range n.Operands {
		switch op.Origin {
		case construct.OriginPart:
			if op.Part != nil {
				out = append(out, op.Part)
			}
		case construct.OriginRule:
			if op.SubRule != nil {
				out = append(out, collectParts(op.SubRule)...)
			}
		}
	}
	return out
}

// SanitizeName restricts s to filesystem-safe characters (alnum, '_',
// '.'), bounded to 255 bytes, matching KWResultFilePathBuilder's
// character class (SPEC_FULL §12.3): derived-attribute names must stay
// safe for any downstream report/export layer even though the core
// itself never writes a file.
func SanitizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if len(out) > 255 {
		out = out[:255]
	}
	return out
}
