package khiops

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/KhiopsML/khiops-sub024/prep"
	"github.com/KhiopsML/khiops-sub024/prep/rule"
	"github.com/KhiopsML/khiops-sub024/prepmem"
)

func oneTableAggregationStore() prepmem.Schema {
	store := prepmem.NewSchema()
	store.AddClass(prepmem.Class{
		ClassName: "Item",
		Attrs: []prep.Attribute{
			prepmem.Attribute{AttrName: "itemId", AttrType: rule.Categorical, AttrIsKey: true},
			prepmem.Attribute{AttrName: "price", AttrType: rule.Numeric},
		},
	})
	store.AddClass(prepmem.Class{
		ClassName: "Customer",
		Attrs: []prep.Attribute{
			prepmem.Attribute{AttrName: "customerId", AttrType: rule.Categorical, AttrIsKey: true},
			prepmem.Attribute{AttrName: "churned", AttrType: rule.Categorical, AttrIsTarget: true},
			prepmem.Attribute{AttrName: "items", AttrType: rule.ObjectArray, AttrReference: "Item"},
		},
	})
	return store
}

// attributeNames extracts just the derived-attribute names, since
// go-cmp can't meaningfully diff construct.Node trees (self-referential
// Rule/Operand values the teacher's cmp usage never tries to compare).
func attributeNames(result ConstructionResult) []string {
	names := make([]string, len(result.DerivedSchema.Attributes))
	for i, a := range result.DerivedSchema.Attributes {
		names[i] = a.Name
	}
	return names
}

func TestConstructProducesCountAndMeanForOneTableAggregation(t *testing.T) {
	req := require.New(t)
	store := oneTableAggregationStore()
	catalogue := rule.DefaultCatalogue()
	catalogue.SetFamilyEnabled(rule.FamilySelection, false)

	ctx := prep.NewContext(42, nil, nil, nil)
	fc := NewFeatureConstructor(store, catalogue, ctx, prep.DefaultParams())

	result, err := fc.Construct("Customer")
	req.NoError(err)
	req.Equal("Customer", result.DerivedSchema.ClassName)
	req.NotEmpty(result.DerivedSchema.Attributes)
	req.Equal(result.ConstructedCount, len(result.DerivedSchema.Attributes))
}

func TestConstructIsReproducibleAcrossIndependentRuns(t *testing.T) {
	req := require.New(t)
	store := oneTableAggregationStore()
	catalogue := rule.DefaultCatalogue()
	catalogue.SetFamilyEnabled(rule.FamilySelection, false)
	params := prep.DefaultParams()

	fc1 := NewFeatureConstructor(store, catalogue, prep.NewContext(9, nil, nil, nil), params)
	fc2 := NewFeatureConstructor(store, catalogue, prep.NewContext(9, nil, nil, nil), params)

	r1, err1 := fc1.Construct("Customer")
	r2, err2 := fc2.Construct("Customer")
	req.NoError(err1)
	req.NoError(err2)

	if diff := cmp.Diff(attributeNames(r1), attributeNames(r2)); diff != "" {
		t.Errorf("construction diverged across identically seeded runs (-run1 +run2):\n%s", diff)
	}
}

func TestConstructReturnsErrorForUnknownRootClass(t *testing.T) {
	store := oneTableAggregationStore()
	catalogue := rule.DefaultCatalogue()
	ctx := prep.NewContext(1, nil, nil, nil)
	fc := NewFeatureConstructor(store, catalogue, ctx, prep.DefaultParams())

	_, err := fc.Construct("DoesNotExist")
	require.Error(t, err)
}
