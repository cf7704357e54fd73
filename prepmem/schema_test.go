package prepmem

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KhiopsML/khiops-sub024/prep"
	"github.com/KhiopsML/khiops-sub024/prep/rule"
)

func TestSchemaLookupClassReturnsRegisteredClass(t *testing.T) {
	req := require.New(t)
	store := NewSchema()
	store.AddClass(Class{
		ClassName: "Item",
		Attrs: []prep.Attribute{
			Attribute{AttrName: "id", AttrType: rule.Categorical, AttrIsKey: true},
			Attribute{AttrName: "price", AttrType: rule.Numeric},
		},
	})

	cls, ok := store.LookupClass("Item")
	req.True(ok)
	req.Equal("Item", cls.Name())
	req.Len(cls.Attributes(), 2)
	req.Len(cls.KeyAttributes(), 1)
	req.Equal("id", cls.KeyAttributes()[0].Name())
}

func TestSchemaLookupClassReportsMissingClass(t *testing.T) {
	store := NewSchema()
	_, ok := store.LookupClass("Nope")
	require.False(t, ok)
}

func TestQuantileBuilderComputeQuantilesSplitsSampleEvenly(t *testing.T) {
	req := require.New(t)
	qb := &QuantileBuilder{SampleSize: 100}

	partiles := qb.ComputeQuantiles(2)
	req.Len(partiles, 4)
	req.Equal(24, partiles[0].LastIndex)
	req.Equal(75, partiles[3].FirstValueIndex)
}

func TestQuantileBuilderCapsAtSampleSize(t *testing.T) {
	qb := &QuantileBuilder{SampleSize: 3}
	partiles := qb.ComputeQuantiles(10)
	require.Len(t, partiles, 3)
}
