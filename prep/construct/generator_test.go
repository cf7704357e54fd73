package construct

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KhiopsML/khiops-sub024/prep"
	"github.com/KhiopsML/khiops-sub024/prep/compliance"
	"github.com/KhiopsML/khiops-sub024/prep/rule"
	"github.com/KhiopsML/khiops-sub024/prep/selection"
)

type fakeAttr struct {
	name     string
	typ      rule.Type
	ref      string
	isKey    bool
	isTarget bool
}

func (a fakeAttr) Name() string            { return a.name }
func (a fakeAttr) Type() rule.Type         { return a.typ }
func (a fakeAttr) ReferencedClass() string { return a.ref }
func (a fakeAttr) IsKey() bool             { return a.isKey }
func (a fakeAttr) IsTarget() bool          { return a.isTarget }

type fakeClass struct {
	name  string
	attrs []prep.Attribute
}

func (c fakeClass) Name() string                 { return c.name }
func (c fakeClass) Attributes() []prep.Attribute { return c.attrs }
func (c fakeClass) KeyAttributes() []prep.Attribute {
	var out []prep.Attribute
	for _, a := range c.attrs {
		if a.IsKey() {
			out = append(out, a)
		}
	}
	return out
}

type fakeStore map[string]fakeClass

func (s fakeStore) LookupClass(name string) (prep.Class, bool) {
	c, ok := s[name]
	return c, ok
}

func oneTableAggregationSchema() fakeStore {
	item := fakeClass{
		name: "Item",
		attrs: []prep.Attribute{
			fakeAttr{name: "id", typ: rule.Categorical, isKey: true},
			fakeAttr{name: "price", typ: rule.Numeric},
		},
	}
	root := fakeClass{
		name: "Customer",
		attrs: []prep.Attribute{
			fakeAttr{name: "id", typ: rule.Categorical, isKey: true},
			fakeAttr{name: "target", typ: rule.Categorical, isTarget: true},
			fakeAttr{name: "items", typ: rule.ObjectArray, ref: "Item"},
		},
	}
	return fakeStore{"Customer": root, "Item": item}
}

func newTestContext() *prep.Context {
	return prep.NewContext(1, nil, nil, nil)
}

// Scenario 2 (spec §8): single-table class with rules = {Count, Mean},
// maxRuleNumber=2. Expected: exactly two rules, Count(items) and
// Mean(items.price), both with cost equal to log(2) + log(1) = log(2).
func TestOneTableAggregationScenario(t *testing.T) {
	req := require.New(t)
	store := oneTableAggregationSchema()

	narrow := rule.NewCatalogue()
	full := rule.DefaultCatalogue()
	for _, name := range []string{"Count", "Mean"} {
		r, ok := full.Lookup(name)
		req.True(ok)
		narrow.Register(r)
	}

	domain, ok := compliance.ComputeAllClassesCompliantRules(store, "Customer", narrow.Active())
	req.True(ok)

	g := &Generator{
		Domain: domain,
		Stats:  selection.NewSelectionOperandStats(),
		Ctx:    newTestContext(),
		Params: Params{MaxRuleNumber: 2, MaxRuleDepth: 100, MaxRuleCost: 1000},
	}

	nodes, err := g.Construct("Customer", 2, 0)
	req.NoError(err)
	req.Len(nodes, 2)

	names := map[string]*Node{}
	for _, n := range nodes {
		names[n.Rule.Name] = n
	}
	req.Contains(names, "Count")
	req.Contains(names, "Mean")

	expected := math.Log(2)
	req.InDelta(expected, names["Count"].TotalCost(), 1e-9)
	req.InDelta(expected, names["Mean"].TotalCost(), 1e-9)
}

func selectionForbiddingSchema() fakeStore {
	item := fakeClass{
		name: "Item",
		attrs: []prep.Attribute{
			fakeAttr{name: "id", typ: rule.Categorical, isKey: true},
			fakeAttr{name: "flag", typ: rule.Categorical},
		},
	}
	root := fakeClass{
		name: "Customer",
		attrs: []prep.Attribute{
			fakeAttr{name: "id", typ: rule.Categorical, isKey: true},
			fakeAttr{name: "target", typ: rule.Categorical, isTarget: true},
			fakeAttr{name: "items", typ: rule.ObjectArray, ref: "Item"},
		},
	}
	return fakeStore{"Customer": root, "Item": item}
}

// Scenario 3 (spec §8): rules = {Count, Selection}. No produced tree
// may contain two Selection nodes.
func TestSelectionForbiddingRecursionScenario(t *testing.T) {
	req := require.New(t)
	store := selectionForbiddingSchema()

	narrow := rule.NewCatalogue()
	full := rule.DefaultCatalogue()
	for _, name := range []string{"Count", "Selection"} {
		r, ok := full.Lookup(name)
		req.True(ok)
		narrow.Register(r)
	}

	domain, ok := compliance.ComputeAllClassesCompliantRules(store, "Customer", narrow.Active())
	req.True(ok)

	stats := selection.NewSelectionOperandStats()
	stats.RecordCandidate("Item", selection.Operand{Kind: selection.OperandAttribute, Name: "flag"}, 3)

	g := &Generator{
		Domain: domain,
		Stats:  stats,
		Ctx:    newTestContext(),
		Params: Params{MaxRuleNumber: 100, MaxRuleDepth: 3, MaxRuleCost: 1000, SelectionMaxLevel: 3},
	}

	nodes, err := g.Construct("Customer", 100, 0)
	req.NoError(err)

	for _, n := range nodes {
		req.LessOrEqual(n.CountSelectionRules(), 1)
	}
}

// P1: the produced rule set size never exceeds maxRuleNumber.
func TestProducedRuleCountRespectsMaxRuleNumber(t *testing.T) {
	req := require.New(t)
	store := oneTableAggregationSchema()
	cat := rule.DefaultCatalogue().Active()

	domain, ok := compliance.ComputeAllClassesCompliantRules(store, "Customer", cat)
	req.True(ok)

	g := &Generator{
		Domain: domain,
		Stats:  selection.NewSelectionOperandStats(),
		Ctx:    newTestContext(),
		Params: Params{MaxRuleNumber: 3, MaxRuleDepth: 100, MaxRuleCost: 1000},
	}

	nodes, err := g.Construct("Customer", 3, 0)
	req.NoError(err)
	req.LessOrEqual(len(nodes), 3)
}

// P2: every produced rule has cost in [0, maxRuleCost] and depth <= maxRuleDepth.
func TestProducedRulesRespectCostAndDepthBounds(t *testing.T) {
	req := require.New(t)
	store := oneTableAggregationSchema()
	cat := rule.DefaultCatalogue().Active()

	domain, ok := compliance.ComputeAllClassesCompliantRules(store, "Customer", cat)
	req.True(ok)

	g := &Generator{
		Domain: domain,
		Stats:  selection.NewSelectionOperandStats(),
		Ctx:    newTestContext(),
		Params: Params{MaxRuleNumber: 5, MaxRuleDepth: 2, MaxRuleCost: 10},
	}

	nodes, err := g.Construct("Customer", 5, 0)
	req.NoError(err)
	for _, n := range nodes {
		req.GreaterOrEqual(n.TotalCost(), 0.0)
		req.LessOrEqual(n.TotalCost(), 10.0)
		req.LessOrEqual(n.MaxDepth(), 2)
	}
}

// P3: two runs with the same inputs and initial RNG seed produce
// byte-identical (signature-equal) rule lists.
func TestConstructIsReproducibleGivenSameSeed(t *testing.T) {
	req := require.New(t)
	store := oneTableAggregationSchema()
	cat := rule.DefaultCatalogue().Active()

	run := func() []*Node {
		domain, _ := compliance.ComputeAllClassesCompliantRules(store, "Customer", cat)
		g := &Generator{
			Domain: domain,
			Stats:  selection.NewSelectionOperandStats(),
			Ctx:    newTestContext(),
			Params: Params{MaxRuleNumber: 3, MaxRuleDepth: 100, MaxRuleCost: 1000},
		}
		nodes, _ := g.Construct("Customer", 3, 0)
		return nodes
	}

	a := run()
	b := run()
	req.Equal(len(a), len(b))
	for i := range a {
		sigA, err := a[i].Signature()
		req.NoError(err)
		sigB, err := b[i].Signature()
		req.NoError(err)
		req.Equal(sigA, sigB)
	}
}

// SortNodesForOutput must conserve every input node and truncate to
// maxCount, sorted by (cost asc, randomIndex asc).
func TestSortNodesForOutputOrdersByCostThenRandomIndex(t *testing.T) {
	req := require.New(t)
	rng := rand.New(rand.NewSource(1))
	nodes := []*Node{
		{Cost: 2},
		{Cost: 0},
		{Cost: 1},
	}
	out := SortNodesForOutput(nodes, rng, 10)
	req.Len(out, 3)
	req.InDelta(0.0, out[0].TotalCost(), 1e-9)
	req.InDelta(1.0, out[1].TotalCost(), 1e-9)
	req.InDelta(2.0, out[2].TotalCost(), 1e-9)
}
