package compiler

import (
	"strings"

	"cuelang.org/go/cue"

	"github.com/typedb/typeql-sub003/internal/pattern"
	"github.com/typedb/typeql-sub003/internal/rule"
)

// Query is a named match clause.
type Query struct {
	Name  string
	Match *pattern.Conjunction
}

// CompileQuery compiles `query: <name>: {match: [...]}`. The name is taken
// from the last path selector.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`query: adults: match: [{var: "x", isa: "person"}]`)
//	q, err := CompileQuery(v.LookupPath(cue.ParsePath("query.adults")))
func CompileQuery(v cue.Value) (*Query, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	q := &Query{Name: selectorName(v)}

	match := field(v, "match")
	if !match.Exists() {
		return nil, &CompileError{Field: "match", Message: "match is required", Pos: v.Pos()}
	}
	if match.IncompleteKind() != cue.ListKind {
		return nil, &CompileError{Field: "match", Message: "match must be a list of patterns", Pos: match.Pos()}
	}
	conj, err := CompileConjunction(match)
	if err != nil {
		return nil, err
	}
	q.Match = conj
	return q, nil
}

// CompileRule compiles `rule: <label>: {when: [...], then: {...}}`. The
// rule is returned unvalidated.
func CompileRule(v cue.Value) (*rule.Rule, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	label := selectorName(v)

	whenVal := field(v, "when")
	if !whenVal.Exists() {
		return nil, &CompileError{Field: "when", Message: "when is required", Pos: v.Pos()}
	}
	if whenVal.IncompleteKind() != cue.ListKind {
		return nil, &CompileError{Field: "when", Message: "when must be a list of patterns", Pos: whenVal.Pos()}
	}
	when, err := CompileConjunction(whenVal)
	if err != nil {
		return nil, err
	}

	thenVal := field(v, "then")
	if !thenVal.Exists() {
		return nil, &CompileError{Field: "then", Message: "then is required", Pos: v.Pos()}
	}
	if thenVal.IncompleteKind() != cue.StructKind {
		return nil, &CompileError{Field: "then", Message: "then must be a single statement", Pos: thenVal.Pos()}
	}
	for _, key := range []string{"all", "either", "not"} {
		if field(thenVal, key).Exists() {
			return nil, &CompileError{Field: "then", Message: "then must be a single statement", Pos: thenVal.Pos()}
		}
	}
	then, err := CompileStatement(thenVal)
	if err != nil {
		return nil, err
	}

	return rule.New(label, when, then), nil
}

func selectorName(v cue.Value) string {
	sels := v.Path().Selectors()
	if len(sels) == 0 {
		return ""
	}
	return strings.Trim(sels[len(sels)-1].String(), `"`)
}
