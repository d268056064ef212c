package pattern

import (
	"strings"

	"github.com/typedb/typeql-sub003/internal/ir"
)

// Statement is a variable reference together with its constraints. It is
// the atomic pattern.
type Statement struct {
	memo
	ref         Variable
	constraints []Constraint
}

// NewStatement builds a statement about ref. Duplicate constraints are
// dropped, keeping the first occurrence.
func NewStatement(ref Variable, constraints ...Constraint) *Statement {
	mustValid(ref, "statement variable")
	kept := make([]Constraint, 0, len(constraints))
	seen := make(map[string]struct{}, len(constraints))
	for _, c := range constraints {
		if c == nil {
			panic("pattern: nil constraint")
		}
		key := constraintKey(c)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, c)
	}
	return &Statement{ref: ref, constraints: kept}
}

func constraintKey(c Constraint) string {
	b, err := ir.MarshalCanonical(c.encode())
	if err != nil {
		panic("pattern: " + err.Error())
	}
	return string(b)
}

func (s *Statement) Kind() Kind           { return KindStatement }
func (s *Statement) Patterns() []Pattern  { return nil }
func (s *Statement) Reference() Variable  { return s.ref }
func (s *Statement) conjunctable()        {}
func (s *Statement) base() *memo          { return &s.memo }
func (s *Statement) Equal(o Pattern) bool { return equal(s, o) }
func (s *Statement) Hash() string         { return hashOf(s) }

func (s *Statement) Normalise() (*Normalised, error) { return normalise(s) }

// Constraints returns a copy of the constraint list.
func (s *Statement) Constraints() []Constraint {
	return append([]Constraint(nil), s.constraints...)
}

// ConstraintsOf returns the constraints of the given kind, in order.
func (s *Statement) ConstraintsOf(kind ConstraintKind) []Constraint {
	var out []Constraint
	for _, c := range s.constraints {
		if c.Kind() == kind {
			out = append(out, c)
		}
	}
	return out
}

// Variables returns the statement's own reference followed by every
// reference its constraints mention, without repeats.
func (s *Statement) Variables() []Variable {
	out := []Variable{s.ref}
	seen := map[Variable]struct{}{s.ref: {}}
	for _, c := range s.constraints {
		for _, v := range c.Variables() {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// NamedVariables is Variables restricted to named references.
func (s *Statement) NamedVariables() []Variable {
	var out []Variable
	for _, v := range s.Variables() {
		if v.IsNamed() {
			out = append(out, v)
		}
	}
	return out
}

func (s *Statement) equalStatement(o *Statement) bool {
	if s.ref != o.ref || len(s.constraints) != len(o.constraints) {
		return false
	}
	for i := range s.constraints {
		if constraintKey(s.constraints[i]) != constraintKey(o.constraints[i]) {
			return false
		}
	}
	return true
}

// String renders the statement in query syntax, relation first:
// $m (spouse: $x, spouse: $y) isa marriage;
func (s *Statement) String() string {
	var b strings.Builder
	b.WriteString(s.ref.String())
	var rest []string
	for _, c := range s.constraints {
		if c.Kind() == ConstraintRelation {
			b.WriteString(" ")
			b.WriteString(c.String())
			continue
		}
		rest = append(rest, c.String())
	}
	if len(rest) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(rest, ", "))
	}
	b.WriteString(";")
	return b.String()
}

func (s *Statement) encode() ir.IRObject {
	cs := make(ir.IRArray, len(s.constraints))
	for i, c := range s.constraints {
		cs[i] = c.encode()
	}
	return ir.IRObject{
		"kind":        ir.IRString(KindStatement.String()),
		"var":         s.ref.encode(),
		"constraints": cs,
	}
}
