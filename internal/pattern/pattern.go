package pattern

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/typedb/typeql-sub003/internal/ir"
)

// Kind is the node kind of a pattern.
type Kind uint8

const (
	KindStatement Kind = iota + 1
	KindConjunction
	KindDisjunction
	KindNegation
)

func (k Kind) String() string {
	switch k {
	case KindStatement:
		return "statement"
	case KindConjunction:
		return "conjunction"
	case KindDisjunction:
		return "disjunction"
	case KindNegation:
		return "negation"
	default:
		return "unknown"
	}
}

// Pattern is a node of a pattern tree. Implementations are *Statement,
// *Conjunction, *Disjunction and *Negation, plus the normal-form carriers
// *Branch (a conjunction) and *Normalised (a disjunction).
type Pattern interface {
	Kind() Kind

	// Patterns returns the direct children: the members of a conjunction
	// or disjunction, the inner pattern of a negation, nothing for a
	// statement. The slice is a copy.
	Patterns() []Pattern

	// Equal reports deep structural equality: same kinds, same children
	// in the same order, same statements.
	Equal(other Pattern) bool

	// Hash is a content hash consistent with Equal.
	Hash() string

	// Normalise returns the disjunctive normal form. The result is cached
	// on the node.
	Normalise() (*Normalised, error)

	String() string

	base() *memo
}

// Conjunctable is a pattern allowed as a member of a normal-form branch.
type Conjunctable interface {
	Pattern
	conjunctable()
}

// memo caches derived values on a node. Nodes are immutable, so a racing
// recomputation stores an identical value.
type memo struct {
	hashOnce sync.Once
	hash     string
	normal   atomic.Pointer[Normalised]
}

// Conjunction holds when all of its children hold.
type Conjunction struct {
	memo
	patterns []Pattern
}

// NewConjunction builds a conjunction. An empty conjunction is allowed and
// is trivially true.
func NewConjunction(patterns ...Pattern) *Conjunction {
	mustChildren(patterns, "conjunction")
	return &Conjunction{patterns: append([]Pattern(nil), patterns...)}
}

func (c *Conjunction) Kind() Kind                      { return KindConjunction }
func (c *Conjunction) Patterns() []Pattern             { return append([]Pattern(nil), c.patterns...) }
func (c *Conjunction) Equal(o Pattern) bool            { return equal(c, o) }
func (c *Conjunction) Hash() string                    { return hashOf(c) }
func (c *Conjunction) Normalise() (*Normalised, error) { return normalise(c) }
func (c *Conjunction) String() string                  { return renderConjunction(c.patterns) }
func (c *Conjunction) base() *memo                     { return &c.memo }

// Disjunction holds when at least one child holds.
type Disjunction struct {
	memo
	patterns []Pattern
}

// NewDisjunction builds a disjunction. It panics on an empty list.
func NewDisjunction(patterns ...Pattern) *Disjunction {
	if len(patterns) == 0 {
		panic("pattern: disjunction requires at least one pattern")
	}
	mustChildren(patterns, "disjunction")
	return &Disjunction{patterns: append([]Pattern(nil), patterns...)}
}

func (d *Disjunction) Kind() Kind                      { return KindDisjunction }
func (d *Disjunction) Patterns() []Pattern             { return append([]Pattern(nil), d.patterns...) }
func (d *Disjunction) Equal(o Pattern) bool            { return equal(d, o) }
func (d *Disjunction) Hash() string                    { return hashOf(d) }
func (d *Disjunction) Normalise() (*Normalised, error) { return normalise(d) }
func (d *Disjunction) String() string                  { return renderDisjunction(d.patterns) }
func (d *Disjunction) base() *memo                     { return &d.memo }

// Negation holds when its inner pattern does not.
type Negation struct {
	memo
	pattern Pattern
}

// NewNegation wraps p. A negation of a negation is rejected with a
// REDUNDANT_NEGATION error.
func NewNegation(p Pattern) (*Negation, error) {
	if p == nil {
		panic("pattern: negation of nil pattern")
	}
	if p.Kind() == KindNegation {
		return nil, newRedundantNegation(p)
	}
	return &Negation{pattern: p}, nil
}

// MustNegation is like NewNegation but panics on error.
func MustNegation(p Pattern) *Negation {
	n, err := NewNegation(p)
	if err != nil {
		panic(err)
	}
	return n
}

func (n *Negation) Kind() Kind                      { return KindNegation }
func (n *Negation) Patterns() []Pattern             { return []Pattern{n.pattern} }
func (n *Negation) Pattern() Pattern                { return n.pattern }
func (n *Negation) Equal(o Pattern) bool            { return equal(n, o) }
func (n *Negation) Hash() string                    { return hashOf(n) }
func (n *Negation) Normalise() (*Normalised, error) { return normalise(n) }
func (n *Negation) String() string                  { return "not " + braced(n.pattern) + ";" }
func (n *Negation) base() *memo                     { return &n.memo }
func (n *Negation) conjunctable()                   {}

func mustChildren(ps []Pattern, what string) {
	for _, p := range ps {
		if p == nil {
			panic("pattern: nil child in " + what)
		}
	}
}

func IsStatement(p Pattern) bool   { return p != nil && p.Kind() == KindStatement }
func IsConjunction(p Pattern) bool { return p != nil && p.Kind() == KindConjunction }
func IsDisjunction(p Pattern) bool { return p != nil && p.Kind() == KindDisjunction }
func IsNegation(p Pattern) bool    { return p != nil && p.Kind() == KindNegation }

// AsStatement narrows p to a statement.
func AsStatement(p Pattern) (*Statement, bool) {
	s, ok := p.(*Statement)
	return s, ok
}

// AsConjunction narrows p to a general conjunction. A *Branch is not a
// *Conjunction; use Patterns for kind-generic access.
func AsConjunction(p Pattern) (*Conjunction, bool) {
	c, ok := p.(*Conjunction)
	return c, ok
}

// AsDisjunction narrows p to a general disjunction.
func AsDisjunction(p Pattern) (*Disjunction, bool) {
	d, ok := p.(*Disjunction)
	return d, ok
}

// AsNegation narrows p to a negation.
func AsNegation(p Pattern) (*Negation, bool) {
	n, ok := p.(*Negation)
	return n, ok
}

func equal(a, b Pattern) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a == b {
		return true
	}
	if a.Kind() != b.Kind() {
		return false
	}
	if a.Kind() == KindStatement {
		sa, okA := a.(*Statement)
		sb, okB := b.(*Statement)
		return okA && okB && sa.equalStatement(sb)
	}
	ca, cb := a.Patterns(), b.Patterns()
	if len(ca) != len(cb) {
		return false
	}
	for i := range ca {
		if !equal(ca[i], cb[i]) {
			return false
		}
	}
	return true
}

func hashOf(p Pattern) string {
	m := p.base()
	m.hashOnce.Do(func() {
		m.hash = ir.MustPatternHash(Encode(p))
	})
	return m.hash
}

// Encode lowers p to its canonical IR object. Normal-form carriers encode
// like the general conjunction and disjunction, so Encode agrees with Equal.
func Encode(p Pattern) ir.IRObject {
	if s, ok := p.(*Statement); ok {
		return s.encode()
	}
	if p.Kind() == KindNegation {
		return ir.IRObject{
			"kind":    ir.IRString(KindNegation.String()),
			"pattern": Encode(p.Patterns()[0]),
		}
	}
	children := p.Patterns()
	arr := make(ir.IRArray, len(children))
	for i, c := range children {
		arr[i] = Encode(c)
	}
	return ir.IRObject{
		"kind":     ir.IRString(p.Kind().String()),
		"patterns": arr,
	}
}

// MarshalCanonical returns the canonical JSON of Encode(p).
func MarshalCanonical(p Pattern) ([]byte, error) {
	return ir.MarshalCanonical(Encode(p))
}

func renderConjunction(ps []Pattern) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	if len(parts) == 0 {
		return "{ }"
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

func renderDisjunction(ps []Pattern) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = braced(p)
	}
	return strings.Join(parts, " or ") + ";"
}

// braced renders p as a block: conjunctions already are one.
func braced(p Pattern) string {
	if p.Kind() == KindConjunction {
		return p.String()
	}
	return "{ " + p.String() + " }"
}
