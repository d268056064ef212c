package pattern

import (
	"fmt"
	"strings"

	"github.com/typedb/typeql-sub003/internal/ir"
)

// ConstraintKind names a constraint variant.
type ConstraintKind string

const (
	ConstraintIsa      ConstraintKind = "isa"
	ConstraintSub      ConstraintKind = "sub"
	ConstraintLabel    ConstraintKind = "label"
	ConstraintHas      ConstraintKind = "has"
	ConstraintRelation ConstraintKind = "relation"
	ConstraintValue    ConstraintKind = "value"
)

// Constraint is one clause of a statement. The set of implementations is
// closed: *IsaConstraint, *SubConstraint, *LabelConstraint, *HasConstraint,
// *RelationConstraint and *ValueConstraint.
type Constraint interface {
	Kind() ConstraintKind

	// Variables returns the references this constraint mentions, in order.
	Variables() []Variable

	String() string
	encode() ir.IRObject
}

// IsaConstraint assigns a type: isa T, or isa! T when explicit.
type IsaConstraint struct {
	typ      Variable
	explicit bool
}

// Isa builds "isa typ". typ is a label or a variable.
func Isa(typ Variable) *IsaConstraint {
	mustValid(typ, "isa type")
	return &IsaConstraint{typ: typ}
}

// IsaExplicit builds "isa! typ", matching the exact type only.
func IsaExplicit(typ Variable) *IsaConstraint {
	mustValid(typ, "isa! type")
	return &IsaConstraint{typ: typ, explicit: true}
}

func (c *IsaConstraint) Kind() ConstraintKind  { return ConstraintIsa }
func (c *IsaConstraint) Type() Variable        { return c.typ }
func (c *IsaConstraint) Explicit() bool        { return c.explicit }
func (c *IsaConstraint) Variables() []Variable { return []Variable{c.typ} }

func (c *IsaConstraint) String() string {
	if c.explicit {
		return "isa! " + c.typ.String()
	}
	return "isa " + c.typ.String()
}

func (c *IsaConstraint) encode() ir.IRObject {
	return ir.IRObject{
		"kind":     ir.IRString(ConstraintIsa),
		"type":     c.typ.encode(),
		"explicit": ir.IRBool(c.explicit),
	}
}

// SubConstraint places a type in the hierarchy: sub T, or sub! T.
type SubConstraint struct {
	typ      Variable
	explicit bool
}

// Sub builds "sub typ".
func Sub(typ Variable) *SubConstraint {
	mustValid(typ, "sub type")
	return &SubConstraint{typ: typ}
}

// SubExplicit builds "sub! typ", the direct supertype only.
func SubExplicit(typ Variable) *SubConstraint {
	mustValid(typ, "sub! type")
	return &SubConstraint{typ: typ, explicit: true}
}

func (c *SubConstraint) Kind() ConstraintKind  { return ConstraintSub }
func (c *SubConstraint) Type() Variable        { return c.typ }
func (c *SubConstraint) Explicit() bool        { return c.explicit }
func (c *SubConstraint) Variables() []Variable { return []Variable{c.typ} }

func (c *SubConstraint) String() string {
	if c.explicit {
		return "sub! " + c.typ.String()
	}
	return "sub " + c.typ.String()
}

func (c *SubConstraint) encode() ir.IRObject {
	return ir.IRObject{
		"kind":     ir.IRString(ConstraintSub),
		"type":     c.typ.encode(),
		"explicit": ir.IRBool(c.explicit),
	}
}

// LabelConstraint binds a type variable to a label: $t type person.
type LabelConstraint struct {
	label string
	scope string
}

// TypeLabel builds "type scope:label". scope may be empty.
func TypeLabel(label, scope string) *LabelConstraint {
	if label == "" {
		panic("pattern: type constraint requires a label")
	}
	return &LabelConstraint{label: label, scope: scope}
}

func (c *LabelConstraint) Kind() ConstraintKind  { return ConstraintLabel }
func (c *LabelConstraint) Label() string         { return c.label }
func (c *LabelConstraint) Scope() string         { return c.scope }
func (c *LabelConstraint) Variables() []Variable { return nil }

func (c *LabelConstraint) String() string {
	if c.scope != "" {
		return "type " + c.scope + ":" + c.label
	}
	return "type " + c.label
}

func (c *LabelConstraint) encode() ir.IRObject {
	obj := ir.IRObject{
		"kind":  ir.IRString(ConstraintLabel),
		"label": ir.IRString(c.label),
	}
	if c.scope != "" {
		obj["scope"] = ir.IRString(c.scope)
	}
	return obj
}

// HasConstraint states ownership of an attribute. Three forms exist:
//
//	has age $a    type and attribute variable
//	has $a        attribute variable only
//	has age 30    type and value
type HasConstraint struct {
	typ   string
	attr  Variable
	value *ValueConstraint
}

// Has builds "has typ attr". typ may be empty for "has $a".
func Has(typ string, attr Variable) *HasConstraint {
	mustValid(attr, "has attribute")
	return &HasConstraint{typ: typ, attr: attr}
}

// HasValue builds "has typ <op> value", for example has age > 18.
func HasValue(typ string, value *ValueConstraint) *HasConstraint {
	if typ == "" {
		panic("pattern: has with a value requires an attribute type")
	}
	if value == nil {
		panic("pattern: has with nil value")
	}
	return &HasConstraint{typ: typ, value: value}
}

func (c *HasConstraint) Kind() ConstraintKind { return ConstraintHas }

// Type is the attribute type label, empty when not given.
func (c *HasConstraint) Type() string { return c.typ }

// Attribute returns the attribute variable when one was given.
func (c *HasConstraint) Attribute() (Variable, bool) { return c.attr, !c.attr.IsZero() }

// Value returns the value predicate, or nil.
func (c *HasConstraint) Value() *ValueConstraint { return c.value }

func (c *HasConstraint) Variables() []Variable {
	var vs []Variable
	if !c.attr.IsZero() {
		vs = append(vs, c.attr)
	}
	if c.value != nil {
		vs = append(vs, c.value.Variables()...)
	}
	return vs
}

func (c *HasConstraint) String() string {
	parts := []string{"has"}
	if c.typ != "" {
		parts = append(parts, c.typ)
	}
	if !c.attr.IsZero() {
		parts = append(parts, c.attr.String())
	}
	if c.value != nil {
		parts = append(parts, c.value.operand())
	}
	return strings.Join(parts, " ")
}

func (c *HasConstraint) encode() ir.IRObject {
	obj := ir.IRObject{"kind": ir.IRString(ConstraintHas)}
	if c.typ != "" {
		obj["type"] = ir.IRString(c.typ)
	}
	if !c.attr.IsZero() {
		obj["attribute"] = c.attr.encode()
	}
	if c.value != nil {
		obj["value"] = c.value.encode()
	}
	return obj
}

// RolePlayer is one "role: $player" entry of a relation. Role is a label,
// a variable, or zero when the role is left unspecified.
type RolePlayer struct {
	Role   Variable
	Player Variable
}

// RelationConstraint lists the role players of a relation.
type RelationConstraint struct {
	players []RolePlayer
}

// Relation builds "(role: $p, ...)". At least one player is required.
func Relation(players ...RolePlayer) *RelationConstraint {
	if len(players) == 0 {
		panic("pattern: relation requires at least one role player")
	}
	for _, rp := range players {
		mustValid(rp.Player, "role player")
	}
	return &RelationConstraint{players: append([]RolePlayer(nil), players...)}
}

// Player is shorthand for a RolePlayer with a labelled role. An empty role
// leaves the role unspecified.
func Player(role string, player Variable) RolePlayer {
	if role == "" {
		return RolePlayer{Player: player}
	}
	return RolePlayer{Role: Label(role, ""), Player: player}
}

func (c *RelationConstraint) Kind() ConstraintKind { return ConstraintRelation }

func (c *RelationConstraint) Players() []RolePlayer {
	return append([]RolePlayer(nil), c.players...)
}

func (c *RelationConstraint) Variables() []Variable {
	vs := make([]Variable, 0, 2*len(c.players))
	for _, rp := range c.players {
		if !rp.Role.IsZero() {
			vs = append(vs, rp.Role)
		}
		vs = append(vs, rp.Player)
	}
	return vs
}

func (c *RelationConstraint) String() string {
	parts := make([]string, len(c.players))
	for i, rp := range c.players {
		if rp.Role.IsZero() {
			parts[i] = rp.Player.String()
		} else {
			parts[i] = rp.Role.String() + ": " + rp.Player.String()
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (c *RelationConstraint) encode() ir.IRObject {
	arr := make(ir.IRArray, len(c.players))
	for i, rp := range c.players {
		entry := ir.IRObject{"player": rp.Player.encode()}
		if !rp.Role.IsZero() {
			entry["role"] = rp.Role.encode()
		}
		arr[i] = entry
	}
	return ir.IRObject{
		"kind":    ir.IRString(ConstraintRelation),
		"players": arr,
	}
}

// Comparator is a value predicate operator.
type Comparator string

const (
	Eq       Comparator = "=="
	Neq      Comparator = "!="
	Gt       Comparator = ">"
	Gte      Comparator = ">="
	Lt       Comparator = "<"
	Lte      Comparator = "<="
	Contains Comparator = "contains"
	Like     Comparator = "like"
)

// ParseComparator accepts the operator spellings above plus "=".
func ParseComparator(s string) (Comparator, error) {
	switch c := Comparator(s); c {
	case Eq, Neq, Gt, Gte, Lt, Lte, Contains, Like:
		return c, nil
	case "=":
		return Eq, nil
	default:
		return "", fmt.Errorf("unknown comparator %q", s)
	}
}

// ValueConstraint compares a concept's value with a literal or with
// another variable.
type ValueConstraint struct {
	op      Comparator
	literal ir.IRValue
	ref     Variable
}

// Value builds "<op> literal". Only string, int and bool literals are
// allowed.
func Value(op Comparator, literal ir.IRValue) *ValueConstraint {
	switch literal.(type) {
	case ir.IRString, ir.IRInt, ir.IRBool:
	default:
		panic(fmt.Sprintf("pattern: unsupported value literal %T", literal))
	}
	if _, err := ParseComparator(string(op)); err != nil {
		panic("pattern: " + err.Error())
	}
	return &ValueConstraint{op: op, literal: literal}
}

// ValueRef builds "<op> $ref".
func ValueRef(op Comparator, ref Variable) *ValueConstraint {
	mustValid(ref, "value operand")
	if _, err := ParseComparator(string(op)); err != nil {
		panic("pattern: " + err.Error())
	}
	return &ValueConstraint{op: op, ref: ref}
}

func (c *ValueConstraint) Kind() ConstraintKind   { return ConstraintValue }
func (c *ValueConstraint) Comparator() Comparator { return c.op }

// Literal returns the compared literal, or nil for a variable comparison.
func (c *ValueConstraint) Literal() ir.IRValue { return c.literal }

// Ref returns the compared variable when there is one.
func (c *ValueConstraint) Ref() (Variable, bool) { return c.ref, !c.ref.IsZero() }

func (c *ValueConstraint) Variables() []Variable {
	if c.ref.IsZero() {
		return nil
	}
	return []Variable{c.ref}
}

func (c *ValueConstraint) String() string { return c.operand() }

// operand renders the predicate; "== 30" reads as the bare literal.
func (c *ValueConstraint) operand() string {
	rhs := c.ref.String()
	if c.ref.IsZero() {
		rhs = ir.Format(c.literal)
	}
	if c.op == Eq {
		return rhs
	}
	return string(c.op) + " " + rhs
}

func (c *ValueConstraint) encode() ir.IRObject {
	obj := ir.IRObject{
		"kind": ir.IRString(ConstraintValue),
		"op":   ir.IRString(c.op),
	}
	if c.ref.IsZero() {
		obj["literal"] = c.literal
	} else {
		obj["ref"] = c.ref.encode()
	}
	return obj
}

func mustValid(v Variable, what string) {
	if v.IsZero() {
		panic("pattern: " + what + " is the zero Variable")
	}
}
