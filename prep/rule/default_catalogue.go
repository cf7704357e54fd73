package rule

// DefaultCatalogue returns the standard rule set used by the worked
// examples of spec §8: table-level aggregates over an ObjectArray
// relation, a Selection rule restricting an ObjectArray by a predicate
// over its own sub-entity, and a handful of scalar arithmetic/date
// rules. Callers needing a narrower catalogue should build their own
// with Register.
func DefaultCatalogue() *Catalogue {
	c := NewCatalogue()

	c.Register(Rule{
		Name:   "Count",
		Family: FamilyAggregate,
		Operands: []Operand{
			{Type: ObjectArray, Supplement: true},
		},
		ReturnType: Numeric,
	})
	c.Register(Rule{
		Name:   "Mean",
		Family: FamilyAggregate,
		Operands: []Operand{
			{Type: ObjectArray, Supplement: true},
			{Type: Numeric, Secondary: true},
		},
		ReturnType: Numeric,
	})
	c.Register(Rule{
		Name:   "Sum",
		Family: FamilyAggregate,
		Operands: []Operand{
			{Type: ObjectArray, Supplement: true},
			{Type: Numeric, Secondary: true},
		},
		ReturnType: Numeric,
	})
	c.Register(Rule{
		Name:   "Min",
		Family: FamilyAggregate,
		Operands: []Operand{
			{Type: ObjectArray, Supplement: true},
			{Type: Numeric, Secondary: true},
		},
		ReturnType: Numeric,
	})
	c.Register(Rule{
		Name:   "Max",
		Family: FamilyAggregate,
		Operands: []Operand{
			{Type: ObjectArray, Supplement: true},
			{Type: Numeric, Secondary: true},
		},
		ReturnType: Numeric,
	})
	c.Register(Rule{
		Name:   "CountDistinct",
		Family: FamilyAggregate,
		Operands: []Operand{
			{Type: ObjectArray, Supplement: true},
			{Type: Categorical, Secondary: true},
		},
		ReturnType: Numeric,
	})
	c.Register(Rule{
		Name:   "Selection",
		Family: FamilySelection,
		Operands: []Operand{
			{Type: ObjectArray, Supplement: true},
			{Type: Categorical, Secondary: true}, // boolean predicate over the sub-entity
		},
		ReturnType:      ObjectArray,
		IsSelectionRule: true,
	})
	c.Register(Rule{
		Name:   "Diff",
		Family: FamilyArithmetic,
		Operands: []Operand{
			{Type: Numeric},
			{Type: Numeric},
		},
		ReturnType: Numeric,
	})
	c.Register(Rule{
		Name:   "Product",
		Family: FamilyArithmetic,
		Operands: []Operand{
			{Type: Numeric},
			{Type: Numeric},
		},
		ReturnType: Numeric,
	})
	c.Register(Rule{
		Name:   "YearOf",
		Family: FamilyDate,
		Operands: []Operand{
			{Type: Date},
		},
		ReturnType: Numeric,
	})
	c.Register(Rule{
		Name:   "MonthOf",
		Family: FamilyDate,
		Operands: []Operand{
			{Type: Date},
		},
		ReturnType: Numeric,
	})
	c.Register(Rule{
		Name:   "TextLength",
		Family: FamilyText,
		Operands: []Operand{
			{Type: Text},
		},
		ReturnType: Numeric,
	})

	return c
}
