// Package compliance computes, for every class reachable from a root
// entity, the fixpoint set of construction rules whose operands can be
// satisfied by that class's own attributes or by rules already known
// compliant for it (spec §4.C).
package compliance

import (
	"sort"

	"github.com/KhiopsML/khiops-sub024/prep"
	"github.com/KhiopsML/khiops-sub024/prep/rule"
)

// ClassCompliantRules is the per-class result of the solver: the
// fixpoint set of applicable rules (each tagged with the recursion
// level it was first found applicable at), the attributes forbidden
// from further construction (keys and the target), and a cache of
// attributes to skip as redundant. The solver leaves that cache empty:
// it does not detect or collect pre-existing derived attributes.
type ClassCompliantRules struct {
	Class      prep.Class
	Rules      []CompliantRule
	Forbidden  map[string]bool
	Redundant  map[string]bool
}

// CompliantRule pairs a cloned rule with the recursion level at which
// it first became applicable.
type CompliantRule struct {
	Rule  rule.Rule
	Level int
}

// ClassDomainCompliantRules is the transitive closure of
// ClassCompliantRules over the relation graph starting at the root
// class (spec §4.C): every class referenced by a Relation attribute of
// a member class is itself a member.
type ClassDomainCompliantRules struct {
	ByClass map[string]*ClassCompliantRules
	Root    string
}

// Get returns the compliant-rules record for a class name, or nil if
// the class is not part of the domain.
func (d *ClassDomainCompliantRules) Get(className string) *ClassCompliantRules {
	return d.ByClass[className]
}

// ComputeAllClassesCompliantRules runs the full algorithm of spec
// §4.C: seed, BFS expansion over Relation attributes, then an
// applicability fixpoint over (class, rule) pairs. catalogue should
// already reflect the caller's active subset (prep/rule.Catalogue.Active).
func ComputeAllClassesCompliantRules(store prep.SchemaStore, rootName string, catalogue []rule.Rule) (*ClassDomainCompliantRules, bool) {
	root, ok := store.LookupClass(rootName)
	if !ok {
		return nil, false
	}

	domain := &ClassDomainCompliantRules{ByClass: make(map[string]*ClassCompliantRules), Root: rootName}
	seedClass(domain, root)

	// BFS expansion: every class referenced by a Relation attribute of
	// a member class must itself become a member.
	queue := []prep.Class{root}
	for len(queue) > 0 {
		cls := queue[0]
		queue = queue[1:]
		for _, attr := range cls.Attributes() {
			if attr.Type() != rule.Object && attr.Type() != rule.ObjectArray {
				continue
			}
			refName := attr.ReferencedClass()
			if _, seen := domain.ByClass[refName]; seen {
				continue
			}
			ref, ok := store.LookupClass(refName)
			if !ok {
				continue
			}
			seedClass(domain, ref)
			queue = append(queue, ref)
		}
	}

	runFixpoint(domain, catalogue, store)
	return domain, true
}

// seedClass registers cls in the domain with its key attributes (and,
// for the root, the target attribute too) forbidden, and an empty
// redundant cache.
func seedClass(domain *ClassDomainCompliantRules, cls prep.Class) {
	forbidden := make(map[string]bool)
	redundant := make(map[string]bool)
	for _, a := range cls.Attributes() {
		if a.IsKey() || a.IsTarget() {
			forbidden[a.Name()] = true
		}
	}
	domain.ByClass[cls.Name()] = &ClassCompliantRules{
		Class:     cls,
		Forbidden: forbidden,
		Redundant: redundant,
	}
}

// runFixpoint repeatedly sweeps every (class, rule) pair, attaching any
// rule whose operands are all satisfiable, until a full pass adds
// nothing. Rules are processed in a deterministic order (class name,
// then rule name) so two runs produce byte-identical CompliantRule
// lists (P3/P4).
func runFixpoint(domain *ClassDomainCompliantRules, catalogue []rule.Rule, store prep.SchemaStore) {
	classNames := sortedClassNames(domain)
	sortedCatalogue := append([]rule.Rule(nil), catalogue...)
	sort.Slice(sortedCatalogue, func(i, j int) bool { return sortedCatalogue[i].Name < sortedCatalogue[j].Name })

	level := 1
	for {
		added := false
		for _, className := range classNames {
			ccr := domain.ByClass[className]
			for _, r := range sortedCatalogue {
				if hasRule(ccr, r.Name) {
					continue
				}
				if isApplicable(domain, store, ccr, r) {
					ccr.Rules = append(ccr.Rules, CompliantRule{Rule: r.Clone(), Level: level})
					added = true
				}
			}
		}
		if !added {
			return
		}
		level++
	}
}

func sortedClassNames(domain *ClassDomainCompliantRules) []string {
	names := make([]string, 0, len(domain.ByClass))
	for name := range domain.ByClass {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func hasRule(ccr *ClassCompliantRules, name string) bool {
	for _, cr := range ccr.Rules {
		if cr.Rule.Name == name {
			return true
		}
	}
	return false
}

// isApplicable implements IsConstructionRuleApplicable (spec §4.C
// step 3): every operand of r can be satisfied either by a
// non-forbidden attribute of ccr's class (type-compatible) or by a
// rule already compliant for it (secondary-scope operands recurse into
// the sub-entity's compliant set).
func isApplicable(domain *ClassDomainCompliantRules, store prep.SchemaStore, ccr *ClassCompliantRules, r rule.Rule) bool {
	for _, op := range r.Operands {
		if !operandSatisfiable(domain, store, ccr, op) {
			return false
		}
	}
	return true
}

func operandSatisfiable(domain *ClassDomainCompliantRules, store prep.SchemaStore, ccr *ClassCompliantRules, op rule.Operand) bool {
	if op.Secondary {
		// A secondary-scope operand is satisfied within the sub-entity
		// reached by some ObjectArray/Object attribute of ccr's class;
		// we require at least one such relation whose target class can
		// itself satisfy an operand of this type (attribute or already
		// compliant rule).
		for _, attr := range ccr.Class.Attributes() {
			if attr.Type() != rule.Object && attr.Type() != rule.ObjectArray {
				continue
			}
			sub := domain.Get(attr.ReferencedClass())
			if sub == nil {
				continue
			}
			if classHasTypeAttribute(sub, op.Type) || classHasCompliantReturnType(sub, op.Type) {
				return true
			}
		}
		return false
	}

	if op.Supplement {
		// A Supplement operand is a Relation attribute of ccr's own
		// class matching the operand's relation type.
		for _, attr := range ccr.Class.Attributes() {
			if attr.Type() == op.Type && !ccr.Forbidden[attr.Name()] {
				return true
			}
		}
		return false
	}

	return classHasTypeAttribute(ccr, op.Type) || classHasCompliantReturnType(ccr, op.Type)
}

func classHasTypeAttribute(ccr *ClassCompliantRules, t rule.Type) bool {
	for _, a := range ccr.Class.Attributes() {
		if a.Type() == t && !ccr.Forbidden[a.Name()] && !ccr.Redundant[a.Name()] {
			return true
		}
	}
	return false
}

func classHasCompliantReturnType(ccr *ClassCompliantRules, t rule.Type) bool {
	for _, cr := range ccr.Rules {
		if cr.Rule.ReturnType == t {
			return true
		}
	}
	return false
}
