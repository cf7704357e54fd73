// Package prepmem is a minimal in-memory reference implementation of
// the prep package's external collaborator interfaces (SchemaStore,
// QuantileBuilder): a plain dictionary callers can populate
// programmatically, for demos and tests (the root package's
// engine_test.go uses it), without pulling in a real schema/data backend. The core
// packages never import prepmem — it sits on the caller side of the
// boundary, same as a real dictionary or warehouse adapter would.
package prepmem

import (
	"github.com/KhiopsML/khiops-sub024/prep"
	"github.com/KhiopsML/khiops-sub024/prep/rule"
)

// Attribute is a plain-data prep.Attribute.
type Attribute struct {
	AttrName       string
	AttrType       rule.Type
	AttrReference  string
	AttrIsKey      bool
	AttrIsTarget   bool
}

func (a Attribute) Name() string            { return a.AttrName }
func (a Attribute) Type() rule.Type         { return a.AttrType }
func (a Attribute) ReferencedClass() string { return a.AttrReference }
func (a Attribute) IsKey() bool             { return a.AttrIsKey }
func (a Attribute) IsTarget() bool          { return a.AttrIsTarget }

// Class is a plain-data prep.Class.
type Class struct {
	ClassName  string
	Attrs      []prep.Attribute
}

func (c Class) Name() string                 { return c.ClassName }
func (c Class) Attributes() []prep.Attribute { return c.Attrs }

func (c Class) KeyAttributes() []prep.Attribute {
	var out []prep.Attribute
	for _, a := range c.Attrs {
		if a.IsKey() {
			out = append(out, a)
		}
	}
	return out
}

// Schema is an in-memory prep.SchemaStore: a name-indexed map of
// Class, populated directly by the caller (no file or database
// backing, unlike a production dictionary).
type Schema map[string]Class

// NewSchema returns an empty Schema ready for AddClass calls.
func NewSchema() Schema { return make(Schema) }

// AddClass registers cls under its own name, overwriting any existing
// class of that name.
func (s Schema) AddClass(cls Class) {
	s[cls.ClassName] = cls
}

// LookupClass implements prep.SchemaStore.
func (s Schema) LookupClass(name string) (prep.Class, bool) {
	c, ok := s[name]
	return c, ok
}
