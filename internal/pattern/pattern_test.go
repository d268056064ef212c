package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNegationRejectsNegation(t *testing.T) {
	inner := not(isa(x, "person"))

	n, err := NewNegation(inner)
	require.Error(t, err)
	assert.Nil(t, n)
	assert.True(t, IsRedundantNegation(err))
	assert.Equal(t, CodeRedundantNegation, CodeOf(err))

	assert.Panics(t, func() { MustNegation(inner) })
}

func TestNegationOfConjunctionOfNegationIsAllowed(t *testing.T) {
	n, err := NewNegation(and(not(isa(x, "person"))))
	require.NoError(t, err)
	assert.Equal(t, KindConjunction, n.Pattern().Kind())
}

func TestConstructorPanics(t *testing.T) {
	assert.Panics(t, func() { NewDisjunction() })
	assert.Panics(t, func() { NewDisjunction(isa(x, "a"), nil) })
	assert.Panics(t, func() { NewConjunction(nil) })
	assert.Panics(t, func() { _, _ = NewNegation(nil) })
	assert.NotPanics(t, func() { NewConjunction() })
}

func TestPatternsReturnsCopy(t *testing.T) {
	c := and(isa(x, "person"), isa(y, "person"))
	ps := c.Patterns()
	ps[0] = isa(w, "dog")
	assert.True(t, c.Patterns()[0].Equal(isa(x, "person")))
}

func TestPatternsByKind(t *testing.T) {
	s := isa(x, "person")
	n := not(s)

	assert.Empty(t, s.Patterns())
	assert.Len(t, n.Patterns(), 1)
	assert.Len(t, or(s, s, s).Patterns(), 3)
}

func TestKindDiscriminators(t *testing.T) {
	s := isa(x, "person")
	c := and(s)
	d := or(s)
	n := not(s)

	tests := []struct {
		name string
		p    Pattern
		kind Kind
	}{
		{"statement", s, KindStatement},
		{"conjunction", c, KindConjunction},
		{"disjunction", d, KindDisjunction},
		{"negation", n, KindNegation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.p.Kind())
			assert.Equal(t, tt.name, tt.p.Kind().String())
			assert.Equal(t, tt.kind == KindStatement, IsStatement(tt.p))
			assert.Equal(t, tt.kind == KindConjunction, IsConjunction(tt.p))
			assert.Equal(t, tt.kind == KindDisjunction, IsDisjunction(tt.p))
			assert.Equal(t, tt.kind == KindNegation, IsNegation(tt.p))
		})
	}

	_, ok := AsStatement(s)
	assert.True(t, ok)
	_, ok = AsConjunction(c)
	assert.True(t, ok)
	_, ok = AsDisjunction(d)
	assert.True(t, ok)
	_, ok = AsNegation(n)
	assert.True(t, ok)
	_, ok = AsNegation(s)
	assert.False(t, ok)
	assert.False(t, IsStatement(nil))
}

func TestStructuralEquality(t *testing.T) {
	build := func() Pattern {
		return and(
			isa(x, "person"),
			or(hasInt(x, "age", 30), hasInt(x, "age", 40)),
			not(hasVar(x, "name", y)),
		)
	}

	a, b := build(), build()
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())

	tests := []struct {
		name  string
		other Pattern
	}{
		{"child order", and(or(hasInt(x, "age", 30), hasInt(x, "age", 40)), isa(x, "person"), not(hasVar(x, "name", y)))},
		{"literal", and(isa(x, "person"), or(hasInt(x, "age", 31), hasInt(x, "age", 40)), not(hasVar(x, "name", y)))},
		{"kind", or(isa(x, "person"), or(hasInt(x, "age", 30), hasInt(x, "age", 40)), not(hasVar(x, "name", y)))},
		{"missing child", and(isa(x, "person"), or(hasInt(x, "age", 30), hasInt(x, "age", 40)))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, a.Equal(tt.other))
			assert.NotEqual(t, a.Hash(), tt.other.Hash())
		})
	}
}

func TestEqualityOfAnonymousStatements(t *testing.T) {
	stableIDs(t)
	a := NewStatement(Anonymous(false), Isa(Label("person", "")))
	b := NewStatement(Anonymous(false), Isa(Label("person", "")))
	assert.False(t, a.Equal(b), "each anonymous variable is its own reference")
	assert.True(t, a.Equal(a))
}

func TestHashIsCachedAndStable(t *testing.T) {
	p := and(isa(x, "person"), not(hasInt(x, "age", 3)))
	h := p.Hash()
	assert.Len(t, h, 64)
	for range 5 {
		assert.Equal(t, h, p.Hash())
	}
}

func TestEncode(t *testing.T) {
	b, err := MarshalCanonical(and(isa(x, "person"), not(hasInt(x, "age", 3))))
	require.NoError(t, err)

	want := `{"kind":"conjunction","patterns":[` +
		`{"constraints":[{"explicit":false,"kind":"isa","type":{"label":"person"}}],"kind":"statement","var":{"named":"x"}},` +
		`{"kind":"negation","pattern":{"constraints":[{"kind":"has","type":"age","value":{"kind":"value","literal":3,"op":"=="}}],"kind":"statement","var":{"named":"x"}}}` +
		`]}`
	assert.Equal(t, want, string(b))
}

func TestPatternString(t *testing.T) {
	p := and(
		isa(x, "person"),
		or(hasInt(x, "age", 30), and(hasInt(x, "age", 40), isa(y, "dog"))),
		not(hasVar(x, "name", y)),
	)
	assert.Equal(t,
		"{ $x isa person; { $x has age 30; } or { $x has age 40; $y isa dog; }; not { $x has name $y; }; }",
		p.String(),
	)
	assert.Equal(t, "{ }", and().String())
}
