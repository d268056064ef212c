package pattern

import (
	"fmt"
	"slices"
)

// Branch is one conjunction of a normal form. Its members are statements
// and negations; each negation wraps a *Normalised.
type Branch struct {
	memo
	members []Conjunctable
}

func (b *Branch) Kind() Kind                      { return KindConjunction }
func (b *Branch) Equal(o Pattern) bool            { return equal(b, o) }
func (b *Branch) Hash() string                    { return hashOf(b) }
func (b *Branch) Normalise() (*Normalised, error) { return normalise(b) }
func (b *Branch) String() string                  { return renderConjunction(b.Patterns()) }
func (b *Branch) base() *memo                     { return &b.memo }

// Members returns a copy of the branch members.
func (b *Branch) Members() []Conjunctable { return slices.Clone(b.members) }

func (b *Branch) Patterns() []Pattern {
	out := make([]Pattern, len(b.members))
	for i, m := range b.members {
		out[i] = m
	}
	return out
}

// Statements returns the statement members, in order.
func (b *Branch) Statements() []*Statement {
	var out []*Statement
	for _, m := range b.members {
		if s, ok := m.(*Statement); ok {
			out = append(out, s)
		}
	}
	return out
}

// Negations returns the negation members, in order.
func (b *Branch) Negations() []*Negation {
	var out []*Negation
	for _, m := range b.members {
		if n, ok := m.(*Negation); ok {
			out = append(out, n)
		}
	}
	return out
}

// Normalised is a pattern in disjunctive normal form: a disjunction of
// branches. It always has at least one branch.
type Normalised struct {
	memo
	branches []*Branch
}

func (n *Normalised) Kind() Kind           { return KindDisjunction }
func (n *Normalised) Equal(o Pattern) bool { return equal(n, o) }
func (n *Normalised) Hash() string         { return hashOf(n) }
func (n *Normalised) String() string       { return renderDisjunction(n.Patterns()) }
func (n *Normalised) base() *memo          { return &n.memo }

// Normalise returns n itself; a normal form is a fixpoint.
func (n *Normalised) Normalise() (*Normalised, error) { return n, nil }

// Branches returns a copy of the branch list.
func (n *Normalised) Branches() []*Branch { return slices.Clone(n.branches) }

func (n *Normalised) Patterns() []Pattern {
	out := make([]Pattern, len(n.branches))
	for i, b := range n.branches {
		out[i] = b
	}
	return out
}

// Normalise rewrites p into disjunctive normal form:
//
//	statement s        -> [[s]]
//	not p              -> [[not N(p)]]
//	p1 or ... or pk    -> N(p1) ++ ... ++ N(pk)
//	p1 and ... and pk  -> cartesian product of N(p1) ... N(pk)
//
// Branch order follows child order, with the leftmost child varying
// slowest. A negation directly wrapping a negation is an error.
func Normalise(p Pattern) (*Normalised, error) {
	if p == nil {
		return nil, fmt.Errorf("pattern: normalise nil pattern")
	}
	return p.Normalise()
}

// MustNormalise is like Normalise but panics on error.
func MustNormalise(p Pattern) *Normalised {
	n, err := Normalise(p)
	if err != nil {
		panic(err)
	}
	return n
}

func normalise(p Pattern) (*Normalised, error) {
	m := p.base()
	if n := m.normal.Load(); n != nil {
		return n, nil
	}
	n, err := rewrite(p)
	if err != nil {
		return nil, err
	}
	m.normal.Store(n)
	return n, nil
}

func rewrite(p Pattern) (*Normalised, error) {
	switch v := p.(type) {
	case *Normalised:
		return v, nil

	case *Statement:
		return single(v), nil

	case *Negation:
		if v.pattern.Kind() == KindNegation {
			return nil, newRedundantNegation(v.pattern)
		}
		inner, err := normalise(v.pattern)
		if err != nil {
			return nil, err
		}
		return single(&Negation{pattern: inner}), nil

	case *Disjunction:
		var branches []*Branch
		for _, child := range v.patterns {
			n, err := normalise(child)
			if err != nil {
				return nil, err
			}
			branches = append(branches, n.branches...)
		}
		return &Normalised{branches: branches}, nil

	case *Conjunction, *Branch:
		acc := [][]Conjunctable{{}}
		for _, child := range p.Patterns() {
			n, err := normalise(child)
			if err != nil {
				return nil, err
			}
			acc = crossProduct(acc, n.branches)
		}
		branches := make([]*Branch, len(acc))
		for i, members := range acc {
			branches[i] = &Branch{members: members}
		}
		return &Normalised{branches: branches}, nil

	default:
		return nil, newIllegalState(p, fmt.Sprintf("unexpected pattern type %T", p))
	}
}

func single(c Conjunctable) *Normalised {
	return &Normalised{branches: []*Branch{{members: []Conjunctable{c}}}}
}

// crossProduct pairs every accumulated branch with every branch of the
// next child, left operand outermost.
func crossProduct(acc [][]Conjunctable, next []*Branch) [][]Conjunctable {
	out := make([][]Conjunctable, 0, len(acc)*len(next))
	for _, left := range acc {
		for _, right := range next {
			out = append(out, slices.Concat(left, right.members))
		}
	}
	return out
}
