package compliance

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KhiopsML/khiops-sub024/prep"
	"github.com/KhiopsML/khiops-sub024/prep/rule"
)

// fakeAttr / fakeClass / fakeStore give the solver a minimal, in-test
// SchemaStore without pulling in the real schema layer (which is an
// external collaborator per spec §1/§6).

type fakeAttr struct {
	name    string
	typ     rule.Type
	ref     string
	isKey   bool
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

func (c fakeClass) Name() string               { return c.name }
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

func twoTableSchema() fakeStore {
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

func TestComputeAllClassesCompliantRulesDiscoversSubEntity(t *testing.T) {
	req := require.New(t)
	store := twoTableSchema()
	cat := rule.DefaultCatalogue().Active()

	domain, ok := ComputeAllClassesCompliantRules(store, "Customer", cat)
	req.True(ok)
	req.Contains(domain.ByClass, "Customer")
	req.Contains(domain.ByClass, "Item")
}

func TestComputeAllClassesCompliantRulesFindsCountAndMean(t *testing.T) {
	req := require.New(t)
	store := twoTableSchema()
	cat := rule.DefaultCatalogue().Active()

	domain, _ := ComputeAllClassesCompliantRules(store, "Customer", cat)
	root := domain.Get("Customer")

	req.True(hasRule(root, "Count"))
	req.True(hasRule(root, "Mean"))
	req.True(hasRule(root, "Sum"))
}

func TestComputeAllClassesCompliantRulesForbidsKeyAndTarget(t *testing.T) {
	req := require.New(t)
	store := twoTableSchema()
	cat := rule.DefaultCatalogue().Active()

	domain, _ := ComputeAllClassesCompliantRules(store, "Customer", cat)
	root := domain.Get("Customer")
	req.True(root.Forbidden["id"])
	req.True(root.Forbidden["target"])
}

// P4: re-running the solver on its own output adds zero rules — here
// witnessed as: running the fixpoint twice over the same inputs
// produces the same rule count (the fixpoint already converged).
func TestFixpointIsIdempotent(t *testing.T) {
	req := require.New(t)
	store := twoTableSchema()
	cat := rule.DefaultCatalogue().Active()

	d1, _ := ComputeAllClassesCompliantRules(store, "Customer", cat)
	d2, _ := ComputeAllClassesCompliantRules(store, "Customer", cat)

	req.Equal(len(d1.Get("Customer").Rules), len(d2.Get("Customer").Rules))
}

func TestUnknownRootReturnsFalse(t *testing.T) {
	req := require.New(t)
	store := twoTableSchema()
	_, ok := ComputeAllClassesCompliantRules(store, "NoSuchClass", nil)
	req.False(ok)
}
