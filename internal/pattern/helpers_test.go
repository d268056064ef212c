package pattern

import (
	"testing"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/typedb/typeql-sub003/internal/ir"
	"github.com/typedb/typeql-sub003/internal/testutil"
)

var (
	x = Named("x")
	y = Named("y")
	w = Named("w")
)

func isa(v Variable, typ string) *Statement {
	return NewStatement(v, Isa(Label(typ, "")))
}

func hasInt(v Variable, typ string, n int64) *Statement {
	return NewStatement(v, HasValue(typ, Value(Eq, ir.IRInt(n))))
}

func hasVar(v Variable, typ string, attr Variable) *Statement {
	return NewStatement(v, Has(typ, attr))
}

func and(ps ...Pattern) *Conjunction { return NewConjunction(ps...) }
func or(ps ...Pattern) *Disjunction  { return NewDisjunction(ps...) }
func not(p Pattern) *Negation        { return MustNegation(p) }

// stableIDs makes anonymous variables deterministic for one test.
func stableIDs(t *testing.T) {
	t.Helper()
	restore := SetIDGenerator(testutil.NewSequenceGenerator("t"))
	t.Cleanup(restore)
}

// circuit translates patterns into a propositional formula where each
// distinct statement is an atom.
type circuit struct {
	c     *logic.C
	atoms map[string]z.Lit
}

func newCircuit() *circuit {
	return &circuit{c: logic.NewC(), atoms: make(map[string]z.Lit)}
}

func (b *circuit) build(p Pattern) z.Lit {
	switch p.Kind() {
	case KindStatement:
		key := p.Hash()
		lit, ok := b.atoms[key]
		if !ok {
			lit = b.c.Lit()
			b.atoms[key] = lit
		}
		return lit
	case KindNegation:
		return b.build(p.Patterns()[0]).Not()
	case KindConjunction:
		children := p.Patterns()
		if len(children) == 0 {
			return b.c.T
		}
		lits := make([]z.Lit, len(children))
		for i, ch := range children {
			lits[i] = b.build(ch)
		}
		return b.c.Ands(lits...)
	default:
		children := p.Patterns()
		lits := make([]z.Lit, len(children))
		for i, ch := range children {
			lits[i] = b.build(ch)
		}
		return b.c.Ors(lits...)
	}
}

// equivalent reports whether a and b agree under every truth assignment
// to their statements: (a and not b) or (not a and b) must be unsat.
func equivalent(a, b Pattern) bool {
	cb := newCircuit()
	la := cb.build(a)
	lb := cb.build(b)
	differ := cb.c.Ors(cb.c.Ands(la, lb.Not()), cb.c.Ands(la.Not(), lb))

	g := gini.New()
	cb.c.ToCnf(g)
	g.Assume(differ)
	return g.Solve() == -1
}
