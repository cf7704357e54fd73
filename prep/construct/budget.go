package construct

import (
	"math"
	"sort"

	"github.com/KhiopsML/khiops-sub024/prep/cost"
	"github.com/KhiopsML/khiops-sub024/prep/rule"
)

// DispatchAttributeRandomDrawingNumbers splits an integer drawing
// budget N between nAttr attribute choices and the rule sub-space
// (spec §4.E): conceptually N is divided into nAttr+1 equal shares, one
// per attribute plus one for the whole rule sub-space, via
// BestEquidistributedSample so the split is exact and deterministic
// (P5: sum(attrShares) + ruleShare == N).
//
// When budget <= nAttr, attributes are preferred entirely: the budget
// is spread only across attributes (equidistributed) and the rule
// sub-space receives zero, matching spec §4.E's explicit tie-break.
func DispatchAttributeRandomDrawingNumbers(n, nAttr int) (attrShares []int, ruleShare int) {
	if nAttr <= 0 {
		return nil, n
	}
	if n <= nAttr {
		attrShares = make([]int, nAttr)
		cost.BestEquidistributedSample(n, nAttr, attrShares)
		return attrShares, 0
	}
	shares := make([]int, nAttr+1)
	cost.BestEquidistributedSample(n, nAttr+1, shares)
	return shares[:nAttr], shares[nAttr]
}

// ComputeConstructionRuleProbs returns a probability per rule in rules,
// decreasing in RecursionLevel and normalised to sum to 1 (spec §4.E
// "Compute rule probabilities via computeConstructionRuleProbs
// (decreasing in recursion level, normalised)"). Rules are assumed
// already in the caller's canonical order; the returned slice is
// parallel to rules.
func ComputeConstructionRuleProbs(rules []rule.Rule) []float64 {
	weights := make([]float64, len(rules))
	total := 0.0
	for i, r := range rules {
		w := math.Exp(-float64(r.RecursionLevel))
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return weights
	}
	for i := range weights {
		weights[i] /= total
	}
	return weights
}

// RuleSubspaceShares splits ruleShare across the matching rules
// proportionally to their normalised probability (spec §4.E: "the
// rule sub-space... then split among recursive rule choices
// proportionally to normalised rule probabilities"), via BestSample so
// the integer allocation conserves ruleShare exactly.
func RuleSubspaceShares(ruleShare int, rules []rule.Rule) []int {
	probs := ComputeConstructionRuleProbs(rules)
	out := make([]int, len(rules))
	cost.BestSample(ruleShare, probs, out)
	return out
}

// OperandRegularizationCost implements spec §4.E's rule of thumb: if no
// rule is matching an operand position, the regularisation cost is
// log(nAttr); if at least one rule also matches, both attribute and
// rule choices pay log(nAttr+1) (the extra "+1" accounts for the rule
// sub-space as one more choice in the prior).
func OperandRegularizationCost(nAttr, nMatchingRules int) float64 {
	if nMatchingRules == 0 {
		if nAttr == 0 {
			return 0
		}
		return math.Log(float64(nAttr))
	}
	return math.Log(float64(nAttr + 1))
}

// SortNodesForOutput implements the post-processing pass of spec
// §4.E: shuffle with seed 1, assign random indices, sort by (cost asc,
// randomIndex asc), then truncate to maxCount. rng must already be
// seeded deterministically by the caller (the "shuffle with seed 1" is
// the caller's responsibility via a dedicated RNG instance so this
// function stays pure with respect to any ambient RNG state).
func SortNodesForOutput(nodes []*Node, rng interface{ Float64() float64 }, maxCount int) []*Node {
	// Fisher-Yates shuffle using the supplied deterministic source,
	// then assign each node a random index for stable tie-breaking.
	shuffled := append([]*Node(nil), nodes...)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := int(rng.Float64() * float64(i+1))
		if j > i {
			j = i
		}
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	for _, n := range shuffled {
		n.RandomIndex = rng.Float64()
	}

	sort.SliceStable(shuffled, func(i, j int) bool {
		ci, cj := shuffled[i].TotalCost(), shuffled[j].TotalCost()
		if ci != cj {
			return ci < cj
		}
		return shuffled[i].RandomIndex < shuffled[j].RandomIndex
	})

	if maxCount >= 0 && len(shuffled) > maxCount {
		shuffled = shuffled[:maxCount]
	}
	return shuffled
}
