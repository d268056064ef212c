package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"

	"github.com/typedb/typeql-sub003/internal/ir"
	"github.com/typedb/typeql-sub003/internal/pattern"
)

// Pattern documents are CUE lists and structs:
//
//	[...]                          conjunction of the elements
//	{all: [...]}                   conjunction
//	{either: [[...], [...]]}       disjunction; each element a list or a pattern
//	{not: [...]} / {not: {...}}    negation
//	{var: "x", isa: "person"}      statement about $x ("_" is anonymous)
//	{type: "person", sub: "thing"} statement about the type person
//
// Statement keys: isa, "isa!", sub, "sub!", label, has, rel, value.
// Type-valued keys take a label ("person", "marriage:spouse") or a
// variable ("$t").

var statementKeys = map[string]bool{
	"var": true, "type": true,
	"isa": true, "isa!": true, "sub": true, "sub!": true,
	"label": true, "has": true, "rel": true, "value": true,
}

// CompilePattern compiles a list or struct into a pattern tree.
func CompilePattern(v cue.Value) (pattern.Pattern, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	switch v.IncompleteKind() {
	case cue.ListKind:
		return CompileConjunction(v)
	case cue.StructKind:
		return compileStruct(v)
	default:
		return nil, &CompileError{
			Field:   "pattern",
			Message: fmt.Sprintf("expected list or struct, got %s", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileConjunction compiles a list of patterns into a conjunction.
func CompileConjunction(v cue.Value) (*pattern.Conjunction, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var children []pattern.Pattern
	for iter.Next() {
		p, err := CompilePattern(iter.Value())
		if err != nil {
			return nil, err
		}
		children = append(children, p)
	}
	return pattern.NewConjunction(children...), nil
}

func compileStruct(v cue.Value) (pattern.Pattern, error) {
	combinators := 0
	for _, key := range []string{"all", "either", "not"} {
		if v.LookupPath(cue.MakePath(cue.Str(key))).Exists() {
			combinators++
		}
	}
	if combinators > 1 {
		return nil, &CompileError{Field: "pattern", Message: "only one of all, either, not may be given", Pos: v.Pos()}
	}

	if all := v.LookupPath(cue.MakePath(cue.Str("all"))); all.Exists() {
		if err := onlyKey(v, "all"); err != nil {
			return nil, err
		}
		return CompileConjunction(all)
	}
	if either := v.LookupPath(cue.MakePath(cue.Str("either"))); either.Exists() {
		if err := onlyKey(v, "either"); err != nil {
			return nil, err
		}
		return compileDisjunction(either)
	}
	if not := v.LookupPath(cue.MakePath(cue.Str("not"))); not.Exists() {
		if err := onlyKey(v, "not"); err != nil {
			return nil, err
		}
		inner, err := CompilePattern(not)
		if err != nil {
			return nil, err
		}
		neg, err := pattern.NewNegation(inner)
		if err != nil {
			return nil, &CompileError{Field: "not", Message: err.Error(), Pos: not.Pos()}
		}
		return neg, nil
	}
	return CompileStatement(v)
}

func compileDisjunction(v cue.Value) (pattern.Pattern, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var branches []pattern.Pattern
	for iter.Next() {
		p, err := CompilePattern(iter.Value())
		if err != nil {
			return nil, err
		}
		branches = append(branches, p)
	}
	if len(branches) == 0 {
		return nil, &CompileError{Field: "either", Message: "disjunction requires at least one branch", Pos: v.Pos()}
	}
	return pattern.NewDisjunction(branches...), nil
}

func onlyKey(v cue.Value, key string) error {
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		if iter.Selector().Unquoted() != key {
			return &CompileError{
				Field:   key,
				Message: fmt.Sprintf("unexpected field %q next to %s", iter.Selector().Unquoted(), key),
				Pos:     iter.Value().Pos(),
			}
		}
	}
	return nil
}

// CompileStatement compiles a statement struct. Constraints are emitted in
// the order rel, isa, sub, label, has, value.
func CompileStatement(v cue.Value) (*pattern.Statement, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		key := iter.Selector().Unquoted()
		if !statementKeys[key] {
			return nil, &CompileError{
				Field:   key,
				Message: fmt.Sprintf("unknown statement field %q", key),
				Pos:     iter.Value().Pos(),
			}
		}
	}

	ref, err := statementRef(v)
	if err != nil {
		return nil, err
	}

	var cs []pattern.Constraint
	if rel := field(v, "rel"); rel.Exists() {
		c, err := compileRelation(rel)
		if err != nil {
			return nil, err
		}
		cs = append(cs, c)
	}
	for _, key := range []string{"isa", "isa!", "sub", "sub!"} {
		f := field(v, key)
		if !f.Exists() {
			continue
		}
		typ, err := typeRef(f, key)
		if err != nil {
			return nil, err
		}
		switch key {
		case "isa":
			cs = append(cs, pattern.Isa(typ))
		case "isa!":
			cs = append(cs, pattern.IsaExplicit(typ))
		case "sub":
			cs = append(cs, pattern.Sub(typ))
		case "sub!":
			cs = append(cs, pattern.SubExplicit(typ))
		}
	}
	if f := field(v, "label"); f.Exists() {
		s, err := stringField(f, "label")
		if err != nil {
			return nil, err
		}
		scope, name := splitScope(s)
		if name == "" {
			return nil, &CompileError{Field: "label", Message: "type label must be non-empty", Pos: f.Pos()}
		}
		cs = append(cs, pattern.TypeLabel(name, scope))
	}
	if f := field(v, "has"); f.Exists() {
		hs, err := compileHas(f)
		if err != nil {
			return nil, err
		}
		cs = append(cs, hs...)
	}
	if f := field(v, "value"); f.Exists() {
		vc, err := compileValue(f, "value")
		if err != nil {
			return nil, err
		}
		cs = append(cs, vc)
	}

	return pattern.NewStatement(ref, cs...), nil
}

func statementRef(v cue.Value) (pattern.Variable, error) {
	varVal, typeVal := field(v, "var"), field(v, "type")
	switch {
	case varVal.Exists() && typeVal.Exists():
		return pattern.Variable{}, &CompileError{Field: "var", Message: "statement takes var or type, not both", Pos: v.Pos()}
	case varVal.Exists():
		name, err := stringField(varVal, "var")
		if err != nil {
			return pattern.Variable{}, err
		}
		return variable(name, varVal)
	case typeVal.Exists():
		s, err := stringField(typeVal, "type")
		if err != nil {
			return pattern.Variable{}, err
		}
		scope, name := splitScope(s)
		if name == "" {
			return pattern.Variable{}, &CompileError{Field: "type", Message: "type label must be non-empty", Pos: typeVal.Pos()}
		}
		return pattern.Label(name, scope), nil
	default:
		return pattern.Variable{}, &CompileError{Field: "var", Message: "statement requires var or type", Pos: v.Pos()}
	}
}

// variable maps "_" to a fresh anonymous variable and anything else, with
// or without a leading "$", to a named one.
func variable(name string, at cue.Value) (pattern.Variable, error) {
	name = strings.TrimPrefix(name, "$")
	switch {
	case name == "_":
		return pattern.Anonymous(false), nil
	case name == "":
		return pattern.Variable{}, &CompileError{Field: "var", Message: "variable name must be non-empty", Pos: at.Pos()}
	case strings.ContainsAny(name, " \t:$"):
		return pattern.Variable{}, &CompileError{Field: "var", Message: fmt.Sprintf("invalid variable name %q", name), Pos: at.Pos()}
	default:
		return pattern.Named(name), nil
	}
}

// typeRef reads a type-valued field: "$t" is a variable, anything else a
// label with optional "scope:" prefix.
func typeRef(v cue.Value, key string) (pattern.Variable, error) {
	s, err := stringField(v, key)
	if err != nil {
		return pattern.Variable{}, err
	}
	if strings.HasPrefix(s, "$") {
		return variable(s, v)
	}
	scope, name := splitScope(s)
	if name == "" {
		return pattern.Variable{}, &CompileError{Field: key, Message: "type label must be non-empty", Pos: v.Pos()}
	}
	return pattern.Label(name, scope), nil
}

func splitScope(s string) (scope, name string) {
	if i := strings.LastIndex(s, ":"); i >= 0 {
		return s[:i], s[i+1:]
	}
	return "", s
}

func compileRelation(v cue.Value) (*pattern.RelationConstraint, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: "rel", Message: "rel must be a list of role players", Pos: v.Pos()}
	}
	var players []pattern.RolePlayer
	for iter.Next() {
		entry := iter.Value()
		playerVal := field(entry, "player")
		if !playerVal.Exists() {
			return nil, &CompileError{Field: "rel", Message: "role player requires player", Pos: entry.Pos()}
		}
		name, err := stringField(playerVal, "rel.player")
		if err != nil {
			return nil, err
		}
		player, err := variable(name, playerVal)
		if err != nil {
			return nil, err
		}
		rp := pattern.RolePlayer{Player: player}
		if roleVal := field(entry, "role"); roleVal.Exists() {
			role, err := typeRef(roleVal, "rel.role")
			if err != nil {
				return nil, err
			}
			rp.Role = role
		}
		players = append(players, rp)
	}
	if len(players) == 0 {
		return nil, &CompileError{Field: "rel", Message: "relation requires at least one role player", Pos: v.Pos()}
	}
	return pattern.Relation(players...), nil
}

// compileHas accepts one has entry or a list of them.
func compileHas(v cue.Value) ([]pattern.Constraint, error) {
	if v.IncompleteKind() == cue.ListKind {
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		var out []pattern.Constraint
		for iter.Next() {
			c, err := compileHasEntry(iter.Value())
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, nil
	}
	c, err := compileHasEntry(v)
	if err != nil {
		return nil, err
	}
	return []pattern.Constraint{c}, nil
}

func compileHasEntry(v cue.Value) (*pattern.HasConstraint, error) {
	if v.IncompleteKind() != cue.StructKind {
		return nil, &CompileError{Field: "has", Message: "has entry must be a struct", Pos: v.Pos()}
	}
	typ := ""
	if t := field(v, "type"); t.Exists() {
		s, err := stringField(t, "has.type")
		if err != nil {
			return nil, err
		}
		typ = s
	}
	varVal, valueVal := field(v, "var"), field(v, "value")
	switch {
	case varVal.Exists() && valueVal.Exists():
		return nil, &CompileError{Field: "has", Message: "has takes var or value, not both", Pos: v.Pos()}
	case varVal.Exists():
		name, err := stringField(varVal, "has.var")
		if err != nil {
			return nil, err
		}
		attr, err := variable(name, varVal)
		if err != nil {
			return nil, err
		}
		return pattern.Has(typ, attr), nil
	case valueVal.Exists():
		if typ == "" {
			return nil, &CompileError{Field: "has", Message: "has with a value requires type", Pos: v.Pos()}
		}
		op := pattern.Eq
		if o := field(v, "op"); o.Exists() {
			s, err := stringField(o, "has.op")
			if err != nil {
				return nil, err
			}
			if op, err = pattern.ParseComparator(s); err != nil {
				return nil, &CompileError{Field: "has.op", Message: err.Error(), Pos: o.Pos()}
			}
		}
		lit, err := literal(valueVal)
		if err != nil {
			return nil, err
		}
		return pattern.HasValue(typ, pattern.Value(op, lit)), nil
	default:
		return nil, &CompileError{Field: "has", Message: "has requires var or value", Pos: v.Pos()}
	}
}

// compileValue accepts a bare literal (equality) or {op, value} / {op, var}.
func compileValue(v cue.Value, fieldName string) (*pattern.ValueConstraint, error) {
	if v.IncompleteKind() != cue.StructKind {
		lit, err := literal(v)
		if err != nil {
			return nil, err
		}
		return pattern.Value(pattern.Eq, lit), nil
	}

	op := pattern.Eq
	if o := field(v, "op"); o.Exists() {
		s, err := stringField(o, fieldName+".op")
		if err != nil {
			return nil, err
		}
		if op, err = pattern.ParseComparator(s); err != nil {
			return nil, &CompileError{Field: fieldName + ".op", Message: err.Error(), Pos: o.Pos()}
		}
	}
	varVal, valueVal := field(v, "var"), field(v, "value")
	switch {
	case varVal.Exists() && !valueVal.Exists():
		name, err := stringField(varVal, fieldName+".var")
		if err != nil {
			return nil, err
		}
		ref, err := variable(name, varVal)
		if err != nil {
			return nil, err
		}
		return pattern.ValueRef(op, ref), nil
	case valueVal.Exists() && !varVal.Exists():
		lit, err := literal(valueVal)
		if err != nil {
			return nil, err
		}
		return pattern.Value(op, lit), nil
	default:
		return nil, &CompileError{Field: fieldName, Message: "value requires exactly one of var or value", Pos: v.Pos()}
	}
}

// literal reads a string, int or bool. Floats are rejected.
func literal(v cue.Value) (ir.IRValue, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRString(s), nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRInt(n), nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRBool(b), nil
	case cue.FloatKind, cue.NumberKind:
		return nil, &CompileError{Field: "value", Message: "float literals are not supported", Pos: v.Pos()}
	default:
		return nil, &CompileError{
			Field:   "value",
			Message: fmt.Sprintf("unsupported literal kind %s", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

func field(v cue.Value, name string) cue.Value {
	return v.LookupPath(cue.MakePath(cue.Str(name)))
}

func stringField(v cue.Value, name string) (string, error) {
	s, err := v.String()
	if err != nil {
		return "", &CompileError{Field: name, Message: "must be a string", Pos: v.Pos()}
	}
	return s, nil
}
