package pattern

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/typedb/typeql-sub003/internal/ir"
)

// VariableKind distinguishes the three kinds of variable reference.
type VariableKind uint8

const (
	VariableNamed VariableKind = iota + 1
	VariableAnonymous
	VariableLabel
)

func (k VariableKind) String() string {
	switch k {
	case VariableNamed:
		return "named"
	case VariableAnonymous:
		return "anonymous"
	case VariableLabel:
		return "label"
	default:
		return "invalid"
	}
}

// Variable is a reference to a concept or a type. It is a comparable value:
// two references are equal when they have the same kind and identity.
//
// The zero Variable is invalid and is used to mean "absent" in optional
// constraint slots.
type Variable struct {
	kind    VariableKind
	name    string // identifier, type label, or generated id
	scope   string // label scope only
	visible bool   // anonymous only
}

// Named returns the named variable $name.
func Named(name string) Variable {
	if name == "" {
		panic("pattern: named variable requires a name")
	}
	return Variable{kind: VariableNamed, name: name}
}

// Anonymous returns a fresh anonymous variable. Each call yields a
// reference distinct from every other.
func Anonymous(visible bool) Variable {
	return Variable{kind: VariableAnonymous, name: nextID(), visible: visible}
}

// Label returns a type label reference such as person or marriage:spouse.
// Labels are never bound and never count as named variables.
func Label(name, scope string) Variable {
	if name == "" {
		panic("pattern: label requires a name")
	}
	return Variable{kind: VariableLabel, name: name, scope: scope}
}

func (v Variable) Kind() VariableKind { return v.kind }
func (v Variable) IsZero() bool       { return v.kind == 0 }
func (v Variable) IsNamed() bool      { return v.kind == VariableNamed }
func (v Variable) IsAnonymous() bool  { return v.kind == VariableAnonymous }
func (v Variable) IsLabel() bool      { return v.kind == VariableLabel }

// IsVisible reports whether an anonymous variable is returned in answers.
// Named variables are always visible; labels never are.
func (v Variable) IsVisible() bool {
	switch v.kind {
	case VariableNamed:
		return true
	case VariableAnonymous:
		return v.visible
	default:
		return false
	}
}

// Name is the identifier of a named variable or the label of a type.
// For anonymous variables it is the generated id.
func (v Variable) Name() string { return v.name }

// Scope is the relation scope of a role label, empty otherwise.
func (v Variable) Scope() string { return v.scope }

func (v Variable) String() string {
	switch v.kind {
	case VariableNamed:
		return "$" + v.name
	case VariableAnonymous:
		return "$_"
	case VariableLabel:
		if v.scope != "" {
			return v.scope + ":" + v.name
		}
		return v.name
	default:
		return "<invalid>"
	}
}

func (v Variable) encode() ir.IRObject {
	switch v.kind {
	case VariableNamed:
		return ir.IRObject{"named": ir.IRString(v.name)}
	case VariableAnonymous:
		return ir.IRObject{"anonymous": ir.IRString(v.name), "visible": ir.IRBool(v.visible)}
	case VariableLabel:
		obj := ir.IRObject{"label": ir.IRString(v.name)}
		if v.scope != "" {
			obj["scope"] = ir.IRString(v.scope)
		}
		return obj
	default:
		panic(fmt.Sprintf("pattern: encode of invalid variable %#v", v))
	}
}

// IDGenerator produces identities for anonymous variables. Implementations
// must be safe for concurrent use and never repeat an id.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator is the default IDGenerator.
type UUIDv7Generator struct{}

// Generate returns a hyphenated UUIDv7.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

var (
	genMu sync.RWMutex
	gen   IDGenerator = UUIDv7Generator{}
)

// SetIDGenerator replaces the anonymous id source and returns a function
// restoring the previous one. Intended for tests that need stable encodings.
func SetIDGenerator(g IDGenerator) (restore func()) {
	genMu.Lock()
	prev := gen
	gen = g
	genMu.Unlock()
	return func() {
		genMu.Lock()
		gen = prev
		genMu.Unlock()
	}
}

func nextID() string {
	genMu.RLock()
	g := gen
	genMu.RUnlock()
	return g.Generate()
}
