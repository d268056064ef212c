package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typedb/typeql-sub003/internal/ir"
)

func TestStatementDropsDuplicateConstraints(t *testing.T) {
	s := NewStatement(x,
		Isa(Label("person", "")),
		HasValue("name", Value(Eq, ir.IRString("bob"))),
		Isa(Label("person", "")),
		HasValue("name", Value(Eq, ir.IRString("bob"))),
		HasValue("name", Value(Eq, ir.IRString("alice"))),
	)

	cs := s.Constraints()
	require.Len(t, cs, 3)
	assert.Equal(t, ConstraintIsa, cs[0].Kind())
	assert.Equal(t, `has name "bob"`, cs[1].String())
	assert.Equal(t, `has name "alice"`, cs[2].String())
}

func TestStatementConstraintsIsCopy(t *testing.T) {
	s := isa(x, "person")
	cs := s.Constraints()
	cs[0] = nil
	assert.NotNil(t, s.Constraints()[0])
}

func TestStatementVariables(t *testing.T) {
	m := Named("m")
	s := NewStatement(m,
		Relation(Player("spouse", x), Player("spouse", y)),
		Isa(Label("marriage", "")),
		HasValue("since", ValueRef(Gt, w)),
	)

	assert.Equal(t, []Variable{
		m,
		Label("spouse", ""),
		x,
		y,
		Label("marriage", ""),
		w,
	}, s.Variables())
	assert.Equal(t, []Variable{m, x, y, w}, s.NamedVariables())
}

func TestStatementVariablesSkipsAbsentSlots(t *testing.T) {
	stableIDs(t)
	anon := Anonymous(false)
	s := NewStatement(anon, HasValue("age", Value(Gte, ir.IRInt(18))), Relation(Player("", x)))

	assert.Equal(t, []Variable{anon, x}, s.Variables())
	assert.Equal(t, []Variable{x}, s.NamedVariables())
}

func TestStatementConstraintsOf(t *testing.T) {
	s := NewStatement(x, Isa(Label("person", "")), Has("name", y), Has("email", w))
	assert.Len(t, s.ConstraintsOf(ConstraintHas), 2)
	assert.Len(t, s.ConstraintsOf(ConstraintIsa), 1)
	assert.Empty(t, s.ConstraintsOf(ConstraintRelation))
}

func TestStatementString(t *testing.T) {
	tests := []struct {
		name     string
		stmt     *Statement
		expected string
	}{
		{"isa", isa(x, "person"), "$x isa person;"},
		{"isa explicit", NewStatement(x, IsaExplicit(Label("person", ""))), "$x isa! person;"},
		{"has value", hasInt(x, "age", 30), "$x has age 30;"},
		{"has var", hasVar(x, "name", y), "$x has name $y;"},
		{"has untyped var", NewStatement(x, Has("", y)), "$x has $y;"},
		{"has comparison", NewStatement(x, HasValue("age", Value(Gt, ir.IRInt(18)))), "$x has age > 18;"},
		{
			"relation",
			NewStatement(Named("m"), Relation(Player("spouse", x), Player("", y)), Isa(Label("marriage", ""))),
			"$m (spouse: $x, $y) isa marriage;",
		},
		{"type label", NewStatement(Named("t"), TypeLabel("spouse", "marriage")), "$t type marriage:spouse;"},
		{"sub", NewStatement(Label("man", ""), Sub(Label("person", ""))), "man sub person;"},
		{"value", NewStatement(x, Value(Like, ir.IRString("^a"))), `$x like "^a";`},
		{"bare", NewStatement(x), "$x;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.stmt.String())
		})
	}
}

func TestConstraintConstructorsPanic(t *testing.T) {
	var zero Variable
	assert.Panics(t, func() { Isa(zero) })
	assert.Panics(t, func() { Sub(zero) })
	assert.Panics(t, func() { Has("age", zero) })
	assert.Panics(t, func() { HasValue("", Value(Eq, ir.IRInt(1))) })
	assert.Panics(t, func() { HasValue("age", nil) })
	assert.Panics(t, func() { Relation() })
	assert.Panics(t, func() { Value(Eq, ir.IRArray{}) })
	assert.Panics(t, func() { Value("~", ir.IRInt(1)) })
	assert.Panics(t, func() { ValueRef(Eq, zero) })
	assert.Panics(t, func() { TypeLabel("", "") })
	assert.Panics(t, func() { NewStatement(zero) })
	assert.Panics(t, func() { NewStatement(x, nil) })
}

func TestParseComparator(t *testing.T) {
	for _, s := range []string{"==", "!=", ">", ">=", "<", "<=", "contains", "like"} {
		c, err := ParseComparator(s)
		require.NoError(t, err)
		assert.Equal(t, Comparator(s), c)
	}
	c, err := ParseComparator("=")
	require.NoError(t, err)
	assert.Equal(t, Eq, c)

	_, err = ParseComparator("=~")
	assert.Error(t, err)
}

func TestHasAccessors(t *testing.T) {
	h := Has("name", y)
	attr, ok := h.Attribute()
	assert.True(t, ok)
	assert.Equal(t, y, attr)
	assert.Nil(t, h.Value())

	hv := HasValue("age", Value(Eq, ir.IRInt(3)))
	_, ok = hv.Attribute()
	assert.False(t, ok)
	assert.Equal(t, ir.IRInt(3), hv.Value().Literal())
	_, ok = hv.Value().Ref()
	assert.False(t, ok)
}
