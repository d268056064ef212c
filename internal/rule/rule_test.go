package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typedb/typeql-sub003/internal/ir"
	p "github.com/typedb/typeql-sub003/internal/pattern"
)

func TestRecord(t *testing.T) {
	r := New("named",
		p.NewConjunction(isa(x, "person"), p.MustNegation(hasVar(x, "banned", v))),
		hasString(x, "nickname", "z"),
	)

	rec, err := Record(r)
	require.NoError(t, err)

	assert.Equal(t, "named", rec.Label)
	assert.Equal(t, int64(1), rec.Branches)
	assert.Equal(t, ir.IRVersion, rec.IRVersion)
	assert.Len(t, rec.Hash, 64)

	when, err := ir.UnmarshalIRObject([]byte(rec.When))
	require.NoError(t, err)
	assert.Equal(t, ir.IRString("conjunction"), when["kind"])

	nf, err := ir.UnmarshalIRObject([]byte(rec.Normalised))
	require.NoError(t, err)
	assert.Equal(t, ir.IRString("disjunction"), nf["kind"])

	again, err := Record(New("named",
		p.NewConjunction(isa(x, "person"), p.MustNegation(hasVar(x, "banned", v))),
		hasString(x, "nickname", "z"),
	))
	require.NoError(t, err)
	assert.Equal(t, rec, again, "records are deterministic")
}

func TestRecordRejectsInvalidRule(t *testing.T) {
	_, err := Record(New("bad", p.NewConjunction(), hasString(x, "n", "z")))
	assert.True(t, HasCode(err, ErrMissingPatterns))
}

func TestRuleHashDependsOnLabel(t *testing.T) {
	when := p.NewConjunction(isa(x, "person"))
	then := hasString(x, "n", "z")

	h1, err := New("a", when, then).Hash()
	require.NoError(t, err)
	h2, err := New("b", when, then).Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestRuleContentHashIgnoresLabel(t *testing.T) {
	when := p.NewConjunction(isa(x, "person"))
	then := hasString(x, "n", "z")

	a, err := Record(New("adult", when, then))
	require.NoError(t, err)
	b, err := Record(New("grown-up", when, then))
	require.NoError(t, err)

	assert.NotEqual(t, a.Hash, b.Hash)
	assert.Equal(t, a.ContentHash, b.ContentHash)
	assert.Len(t, a.ContentHash, 64)

	other, err := Record(New("adult", when, hasString(x, "n", "y")))
	require.NoError(t, err)
	assert.NotEqual(t, a.ContentHash, other.ContentHash)
}

func TestRuleHashMissingParts(t *testing.T) {
	tests := []struct {
		name string
		rule *Rule
		code string
	}{
		{"no body", New("r", nil, hasString(x, "n", "z")), ErrMissingPatterns},
		{"no head", New("r", p.NewConjunction(isa(x, "person")), nil), ErrMissingThen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() { _, err = tt.rule.Hash() })
			assert.True(t, HasCode(err, tt.code), "got %v", err)

			require.NotPanics(t, func() { _, err = tt.rule.ContentHash() })
			assert.True(t, HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestRuleString(t *testing.T) {
	r := New("r", p.NewConjunction(isa(x, "person")), hasString(x, "n", "z"))
	assert.Equal(t, `rule r: when { $x isa person; } then { $x has n "z"; }`, r.String())
}
