package pattern

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shape renders a normal form as branch lists of member strings.
func shape(n *Normalised) [][]string {
	out := make([][]string, 0, len(n.Branches()))
	for _, b := range n.Branches() {
		row := []string{}
		for _, m := range b.Members() {
			row = append(row, m.String())
		}
		out = append(out, row)
	}
	return out
}

func TestNormaliseStatement(t *testing.T) {
	s := isa(x, "person")
	n, err := Normalise(s)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"$x isa person;"}}, shape(n))
}

func TestNormaliseDistributesConjunctionOverDisjunction(t *testing.T) {
	a, b, c := isa(x, "a"), isa(x, "b"), isa(x, "c")

	n, err := Normalise(and(a, or(b, c)))
	require.NoError(t, err)

	want := [][]string{
		{"$x isa a;", "$x isa b;"},
		{"$x isa a;", "$x isa c;"},
	}
	if diff := cmp.Diff(want, shape(n)); diff != "" {
		t.Errorf("normal form mismatch (-want +got):\n%s", diff)
	}
}

func TestNormaliseCrossProductOrder(t *testing.T) {
	a, b, c, d := isa(x, "a"), isa(x, "b"), isa(x, "c"), isa(x, "d")

	n := MustNormalise(and(or(a, b), or(c, d)))

	want := [][]string{
		{"$x isa a;", "$x isa c;"},
		{"$x isa a;", "$x isa d;"},
		{"$x isa b;", "$x isa c;"},
		{"$x isa b;", "$x isa d;"},
	}
	assert.Equal(t, want, shape(n))
}

func TestNormaliseFlattensNesting(t *testing.T) {
	a, b, c, d := isa(x, "a"), isa(x, "b"), isa(x, "c"), isa(x, "d")

	t.Run("conjunctions", func(t *testing.T) {
		n := MustNormalise(and(a, and(b, and(c)), d))
		assert.Equal(t, [][]string{{"$x isa a;", "$x isa b;", "$x isa c;", "$x isa d;"}}, shape(n))
	})

	t.Run("disjunctions", func(t *testing.T) {
		n := MustNormalise(or(a, or(b, or(c)), d))
		assert.Equal(t, [][]string{{"$x isa a;"}, {"$x isa b;"}, {"$x isa c;"}, {"$x isa d;"}}, shape(n))
	})
}

func TestNormaliseLeftNestedDisjunction(t *testing.T) {
	a, b, c := isa(x, "a"), isa(x, "b"), isa(x, "c")

	nested := MustNormalise(or(or(a, b), c))
	flat := MustNormalise(or(a, b, c))

	require.Len(t, nested.Branches(), 3)
	assert.Equal(t, shape(flat), shape(nested))
	assert.True(t, nested.Equal(flat))
	assert.Equal(t, flat.Hash(), nested.Hash())
}

func TestNormaliseNegation(t *testing.T) {
	a, b, c := isa(x, "a"), isa(x, "b"), isa(x, "c")

	n := MustNormalise(and(a, not(and(b, or(c, a)))))
	branches := n.Branches()
	require.Len(t, branches, 1)

	negs := branches[0].Negations()
	require.Len(t, negs, 1)
	assert.Len(t, branches[0].Statements(), 1)

	inner, ok := negs[0].Pattern().(*Normalised)
	require.True(t, ok, "negation in a normal form wraps a normal form")
	assert.Equal(t, [][]string{
		{"$x isa b;", "$x isa c;"},
		{"$x isa b;", "$x isa a;"},
	}, shape(inner))
}

func TestNormaliseEmptyConjunction(t *testing.T) {
	n := MustNormalise(and())
	branches := n.Branches()
	require.Len(t, branches, 1)
	assert.Empty(t, branches[0].Members())

	// The empty branch is the unit of the cross product.
	a := isa(x, "a")
	assert.True(t, MustNormalise(and(and(), a)).Equal(MustNormalise(a)))
}

func TestNormaliseRejectsNestedNegation(t *testing.T) {
	// Only reachable by bypassing NewNegation.
	bad := &Negation{pattern: &Negation{pattern: isa(x, "a")}}

	_, err := Normalise(bad)
	require.Error(t, err)
	assert.True(t, IsRedundantNegation(err))

	_, err = Normalise(and(isa(x, "b"), or(isa(x, "c"), bad)))
	assert.True(t, IsRedundantNegation(err), "error surfaces from any depth")

	assert.Panics(t, func() { MustNormalise(bad) })
}

func TestNormaliseNil(t *testing.T) {
	_, err := Normalise(nil)
	assert.Error(t, err)
}

func TestNormalFormShape(t *testing.T) {
	for name, p := range corpus() {
		t.Run(name, func(t *testing.T) {
			n := MustNormalise(p)
			assertNormalForm(t, n)
		})
	}
}

func assertNormalForm(t *testing.T, n *Normalised) {
	t.Helper()
	require.NotEmpty(t, n.Branches())
	assert.Equal(t, KindDisjunction, n.Kind())
	for _, b := range n.Branches() {
		assert.Equal(t, KindConjunction, b.Kind())
		for _, m := range b.Members() {
			switch v := m.(type) {
			case *Statement:
			case *Negation:
				inner, ok := v.Pattern().(*Normalised)
				require.True(t, ok, "negated pattern must be normalised, got %T", v.Pattern())
				assertNormalForm(t, inner)
			default:
				t.Fatalf("unexpected branch member %T", m)
			}
		}
	}
}

func TestNormaliseIdempotent(t *testing.T) {
	for name, p := range corpus() {
		t.Run(name, func(t *testing.T) {
			once := MustNormalise(p)
			twice := MustNormalise(once)
			assert.True(t, once.Equal(twice))
			assert.Equal(t, once.Hash(), twice.Hash())

			// Re-normalising the branches through the general algorithm
			// reaches the same fixpoint.
			rebuilt := make([]Pattern, 0, len(once.Branches()))
			for _, b := range once.Branches() {
				rebuilt = append(rebuilt, NewConjunction(b.Patterns()...))
			}
			again := MustNormalise(NewDisjunction(rebuilt...))
			assert.True(t, once.Equal(again), "got %s, want %s", again, once)
		})
	}
}

func TestNormalisePreservesMeaning(t *testing.T) {
	for name, p := range corpus() {
		t.Run(name, func(t *testing.T) {
			n := MustNormalise(p)
			assert.True(t, equivalent(p, n), "normal form %s is not equivalent to %s", n, p)
		})
	}
}

func TestEquivalenceOracleDetectsDifference(t *testing.T) {
	a, b := isa(x, "a"), isa(x, "b")
	assert.False(t, equivalent(and(a, b), or(a, b)))
	assert.False(t, equivalent(a, not(a)))
	assert.True(t, equivalent(not(or(a, b)), and(not(a), not(b))))
}

func TestNormaliseMemoised(t *testing.T) {
	p := and(isa(x, "a"), or(isa(x, "b"), isa(x, "c")))

	first := MustNormalise(p)
	second := MustNormalise(p)
	assert.Same(t, first, second)

	d := MustNormalise(first)
	assert.Same(t, first, d, "a normal form is its own normal form")
}

func TestNormaliseConcurrent(t *testing.T) {
	p := and(isa(x, "a"), or(isa(x, "b"), isa(x, "c")), not(or(isa(y, "d"), isa(y, "e"))))
	want := MustNormalise(and(isa(x, "a"), or(isa(x, "b"), isa(x, "c")), not(or(isa(y, "d"), isa(y, "e")))))

	var wg sync.WaitGroup
	results := make([]*Normalised, 16)
	hashes := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := p.Normalise()
			if err == nil {
				results[i] = n
				hashes[i] = n.Hash()
			}
		}()
	}
	wg.Wait()

	for i, n := range results {
		require.NotNil(t, n)
		assert.True(t, want.Equal(n))
		assert.Equal(t, want.Hash(), hashes[i])
	}
}

func TestNormalisedAsPattern(t *testing.T) {
	n := MustNormalise(or(isa(x, "a"), and(isa(x, "b"), not(isa(x, "c")))))

	assert.Equal(t, "{ $x isa a; } or { $x isa b; not { { $x isa c; }; }; };", n.String())

	// A normal form equals the general tree with the same structure.
	general := or(and(isa(x, "a")), and(isa(x, "b"), not(or(and(isa(x, "c"))))))
	assert.True(t, n.Equal(general))
	assert.Equal(t, n.Hash(), general.Hash())
}

// corpus is a set of trees exercising every combinator at several depths.
func corpus() map[string]Pattern {
	a, b, c, d := isa(x, "a"), isa(x, "b"), hasInt(x, "age", 3), hasVar(y, "name", w)
	return map[string]Pattern{
		"statement":                   a,
		"empty conjunction":           and(),
		"conjunction":                 and(a, b),
		"disjunction":                 or(a, b, c),
		"distribution":                and(a, or(b, c)),
		"double distribution":         and(or(a, b), or(c, d)),
		"nested disjunction":          or(a, or(b, or(c, d))),
		"negation":                    not(a),
		"negated disjunction":         and(a, not(or(b, c))),
		"deep negation":               and(a, not(and(b, not(or(c, and(d, not(a))))))),
		"disjunction of conjunctions": or(and(a, b), and(c, or(d, a))),
		"conjunction inside negation inside disjunction": or(not(and(a, or(b, c))), d),
		"mixed": and(
			or(a, and(b, not(c))),
			or(d, and()),
			not(or(a, b)),
		),
	}
}
