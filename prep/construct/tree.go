// Package construct implements the randomised recursive enumeration of
// feature expressions (spec §4.E): the constructed-rule generator that
// samples from the Bayesian prior over rule trees subject to a depth,
// cost and rule-count budget.
package construct

import (
	"github.com/mitchellh/hashstructure"

	"github.com/KhiopsML/khiops-sub024/prep/rule"
	"github.com/KhiopsML/khiops-sub024/prep/selection"
)

// OperandOrigin is the sum type tag for where a constructed-rule
// operand's value comes from (spec §9 "replace raw owning pointers...
// with value-typed trees (sum types for operand origin)").
type OperandOrigin int

const (
	OriginAttribute OperandOrigin = iota
	OriginRule
	OriginPart
)

// Operand is one bound operand of a ConstructedRule node: exactly one
// of AttrName, SubRule or Part is meaningful, selected by Origin.
type Operand struct {
	Origin   OperandOrigin
	AttrName string
	SubRule  *Node
	Part     *selection.Part
}

// Node is a ConstructedRule: a tagged tree whose root carries a
// construction-rule reference and a vector of bound operands. Cost is
// the node's own non-negative log-prior contribution; RandomIndex is
// the temporary tie-breaking key assigned during post-processing (spec
// §4.E "Post-processing").
type Node struct {
	Class       string
	Rule        rule.Rule
	Operands    []Operand
	Cost        float64
	Depth       int
	RandomIndex float64
}

// TotalCost sums this node's own cost with every operand sub-rule's
// TotalCost, giving the additive prior cost of the whole tree (spec
// §3 "Each node carries a scalar cost").
func (n *Node) TotalCost() float64 {
	total := n.Cost
	for _, op := range n.Operands {
		if op.Origin == OriginRule && op.SubRule != nil {
			total += op.SubRule.TotalCost()
		}
	}
	return total
}

// MaxDepth returns the deepest nested-rule chain under n (inclusive of
// n itself at depth 1), used to check the maxRuleDepth budget (spec §8
// P2).
func (n *Node) MaxDepth() int {
	max := 1
	for _, op := range n.Operands {
		if op.Origin == OriginRule && op.SubRule != nil {
			if d := op.SubRule.MaxDepth() + 1; d > max {
				max = d
			}
		}
	}
	return max
}

// ContainsSelectionRule reports whether n or any nested operand rule is
// a selection rule; Construct uses it to decide whether a selection
// rule survived the first generation.
func (n *Node) ContainsSelectionRule() bool {
	if n.Rule.IsSelectionRule {
		return true
	}
	for _, op := range n.Operands {
		if op.Origin == OriginRule && op.SubRule != nil && op.SubRule.ContainsSelectionRule() {
			return true
		}
	}
	return false
}

// CountSelectionRules counts selection-rule nodes in the tree rooted
// at n, used by the recursion guard's own test coverage (spec §4.E
// "Recursion guard").
func (n *Node) CountSelectionRules() int {
	count := 0
	if n.Rule.IsSelectionRule {
		count++
	}
	for _, op := range n.Operands {
		if op.Origin == OriginRule && op.SubRule != nil {
			count += op.SubRule.CountSelectionRules()
		}
	}
	return count
}

// Signature returns a stable structural hash of the tree, used for
// P3's "byte-identical modulo pointer" reproducibility check: two
// Nodes built from identical inputs and RNG seed hash identically
// regardless of their in-memory addresses.
func (n *Node) Signature() (uint64, error) {
	return hashstructure.Hash(signatureView(n), nil)
}

// signatureView strips RandomIndex (an internal tie-break, not part of
// the tree's logical identity) before hashing.
type sigNode struct {
	Class    string
	RuleName string
	Depth    int
	Cost     float64
	Operands []sigOperand
}

type sigOperand struct {
	Origin   OperandOrigin
	AttrName string
	SubRule  *sigNode
	PartSig  uint64
}

func signatureView(n *Node) sigNode {
	s := sigNode{Class: n.Class, RuleName: n.Rule.Name, Depth: n.Depth, Cost: n.Cost}
	for _, op := range n.Operands {
		so := sigOperand{Origin: op.Origin, AttrName: op.AttrName}
		if op.Origin == OriginRule && op.SubRule != nil {
			v := signatureView(op.SubRule)
			so.SubRule = &v
		}
		if op.Origin == OriginPart && op.Part != nil {
			sig, _ := op.Part.Signature()
			so.PartSig = sig
		}
		s.Operands = append(s.Operands, so)
	}
	return s
}
