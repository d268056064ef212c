package pattern

import (
	"github.com/hashicorp/go-set/v3"
)

// ValidateIsBoundedBy checks that every named variable used as a constraint
// argument inside p is a member of bounds. A statement's own variable is
// not checked here; ValidateScope covers it.
//
// Conjunctions and disjunctions pass bounds through unchanged. A negation
// directly wrapping a negation is an ILLEGAL_STATE error.
func ValidateIsBoundedBy(p Pattern, bounds set.Collection[Variable]) error {
	return checkBounded(p, bounds, false)
}

func checkBounded(p Pattern, bounds set.Collection[Variable], ownVariable bool) error {
	switch p.Kind() {
	case KindStatement:
		s := p.(*Statement)
		if ownVariable && s.ref.IsNamed() && !bounds.Contains(s.ref) {
			return newOutOfScope(s.ref, s)
		}
		for _, c := range s.constraints {
			for _, v := range c.Variables() {
				if v.IsNamed() && !bounds.Contains(v) {
					return newOutOfScope(v, s)
				}
			}
		}
		return nil

	case KindNegation:
		inner := p.Patterns()[0]
		if inner.Kind() == KindNegation {
			return newIllegalState(p, "negation directly wraps a negation")
		}
		return checkBounded(inner, bounds, ownVariable)

	default:
		for _, child := range p.Patterns() {
			if err := checkBounded(child, bounds, ownVariable); err != nil {
				return err
			}
		}
		return nil
	}
}

// Bounds collects the named variables introduced unconditionally by p:
// those of statements reachable through conjunctions alone. Variables that
// appear only under a disjunction or a negation are not included.
func Bounds(p Pattern) *set.Set[Variable] {
	bounds := set.New[Variable](0)
	for _, s := range unconditionalStatements(p) {
		bounds.InsertSlice(s.NamedVariables())
	}
	return bounds
}

// NamedVariables collects every named variable anywhere in p, including
// under disjunctions and negations.
func NamedVariables(p Pattern) *set.Set[Variable] {
	out := set.New[Variable](0)
	var walk func(Pattern)
	walk = func(p Pattern) {
		if s, ok := p.(*Statement); ok {
			out.InsertSlice(s.NamedVariables())
			return
		}
		for _, child := range p.Patterns() {
			walk(child)
		}
	}
	walk(p)
	return out
}

// ValidateScope runs the bound-collection pass over p and then checks each
// nested disjunction and negation against the collected bounds. Nested
// statements must use only bound named variables, including their own
// variable.
//
// A pattern that nests a disjunction or negation but binds no named
// variable at all fails with NO_BOUNDING_VARIABLE.
func ValidateScope(p Pattern) error {
	if p == nil {
		return newIllegalState(nil, "validate scope of nil pattern")
	}
	nested := nestedPatterns(p)
	if len(nested) == 0 {
		return nil
	}
	bounds := Bounds(p)
	if bounds.Size() == 0 {
		return &Error{
			Code:    CodeNoBoundingVariable,
			Message: "nested pattern has no bounding variable in the enclosing conjunction",
			Pattern: nested[0],
		}
	}
	for _, n := range nested {
		if err := checkBounded(n, bounds, true); err != nil {
			return err
		}
	}
	return nil
}

// unconditionalStatements returns statements reachable through
// conjunctions only, in tree order.
func unconditionalStatements(p Pattern) []*Statement {
	var out []*Statement
	var walk func(Pattern)
	walk = func(p Pattern) {
		switch p.Kind() {
		case KindStatement:
			out = append(out, p.(*Statement))
		case KindConjunction:
			for _, child := range p.Patterns() {
				walk(child)
			}
		}
	}
	walk(p)
	return out
}

// nestedPatterns returns the outermost disjunctions and negations reachable
// through conjunctions, in tree order.
func nestedPatterns(p Pattern) []Pattern {
	var out []Pattern
	var walk func(Pattern)
	walk = func(p Pattern) {
		switch p.Kind() {
		case KindDisjunction, KindNegation:
			out = append(out, p)
		case KindConjunction:
			for _, child := range p.Patterns() {
				walk(child)
			}
		}
	}
	walk(p)
	return out
}
