package rule

import (
	"errors"
	"fmt"

	"github.com/typedb/typeql-sub003/internal/pattern"
)

// Rule validation error codes (E200-E299).
const (
	ErrMissingLabel    = "E200" // rule label is empty
	ErrMissingPatterns = "E201" // body has no top-level patterns
	ErrNestedNegation  = "E202" // negation inside a negation
	ErrDisjunction     = "E203" // disjunction anywhere in the body
	ErrInvalidThen     = "E204" // head is neither one has nor isa + relation
	ErrConflictingHas  = "E205" // head has names both a type and a variable
	ErrUnboundThenVar  = "E206" // head variable absent from the body
	ErrMissingThen     = "E207" // rule has no head
)

// ValidationError is a rule legality failure.
type ValidationError struct {
	Code     string `json:"code"`
	Rule     string `json:"rule,omitempty"`
	Field    string `json:"field"` // "label", "when" or "then"
	Message  string `json:"message"`
	Variable string `json:"variable,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("[%s] rule %q: %s: %s", e.Code, e.Rule, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// HasCode reports whether err is, or wraps, a ValidationError with code.
func HasCode(err error, code string) bool {
	var ve ValidationError
	if errors.As(err, &ve) {
		return ve.Code == code
	}
	return false
}

// CodeOf returns the code of a rule validation error, or "".
func CodeOf(err error) string {
	var ve ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return ""
}

// ValidateWhen checks a rule body. In order it fails when the body is
// empty, when a negation contains another negation, and when a
// disjunction appears at any depth. Both searches cover the whole tree,
// negated parts included.
func ValidateWhen(when *pattern.Conjunction) error {
	if when == nil || len(when.Patterns()) == 0 {
		return ValidationError{
			Code:    ErrMissingPatterns,
			Field:   "when",
			Message: "rule body must contain at least one pattern",
		}
	}

	for _, neg := range collect(when, pattern.KindNegation) {
		if inner := collect(neg.Patterns()[0], pattern.KindNegation); len(inner) > 0 {
			return ValidationError{
				Code:    ErrNestedNegation,
				Field:   "when",
				Message: fmt.Sprintf("negation nested inside a negation: %s", neg),
			}
		}
	}

	if ds := collect(when, pattern.KindDisjunction); len(ds) > 0 {
		return ValidationError{
			Code:    ErrDisjunction,
			Field:   "when",
			Message: fmt.Sprintf("disjunction is not permitted in a rule body: %s", ds[0]),
		}
	}
	return nil
}

// ValidateThen checks a rule head. The head must be either a single has
// constraint or exactly an isa plus a relation. A has may identify the
// attribute by type or by variable but not both. When when is non-nil,
// every named variable of the head must appear somewhere in the body.
func ValidateThen(then *pattern.Statement, when *pattern.Conjunction) error {
	if then == nil {
		return ValidationError{Code: ErrMissingThen, Field: "then", Message: "rule head is required"}
	}

	cs := then.Constraints()
	has, ok := headShape(cs)
	if !ok {
		return ValidationError{
			Code:    ErrInvalidThen,
			Field:   "then",
			Message: fmt.Sprintf("head must be a single has or an isa with a relation, got %s", then),
		}
	}

	if has != nil {
		if attr, named := has.Attribute(); named && attr.IsNamed() && has.Type() != "" {
			return ValidationError{
				Code:     ErrConflictingHas,
				Field:    "then",
				Message:  fmt.Sprintf("has assigns attribute type %s and variable %s at once", has.Type(), attr),
				Variable: attr.String(),
			}
		}
	}

	if when == nil {
		return nil
	}
	bodyVars := pattern.NamedVariables(when)
	for _, v := range then.NamedVariables() {
		if !bodyVars.Contains(v) {
			return ValidationError{
				Code:     ErrUnboundThenVar,
				Field:    "then",
				Message:  fmt.Sprintf("head variable %s does not appear in the body", v),
				Variable: v.String(),
			}
		}
	}
	return nil
}

// headShape returns the has constraint of a has-head, nil for a relation
// head, and false for anything else.
func headShape(cs []pattern.Constraint) (*pattern.HasConstraint, bool) {
	switch len(cs) {
	case 1:
		has, ok := cs[0].(*pattern.HasConstraint)
		return has, ok
	case 2:
		var isa, rel int
		for _, c := range cs {
			switch c.Kind() {
			case pattern.ConstraintIsa:
				isa++
			case pattern.ConstraintRelation:
				rel++
			}
		}
		return nil, isa == 1 && rel == 1
	default:
		return nil, false
	}
}

// collect returns every node of kind k in p's subtree, p included, in
// pre-order.
func collect(p pattern.Pattern, k pattern.Kind) []pattern.Pattern {
	var out []pattern.Pattern
	var walk func(pattern.Pattern)
	walk = func(p pattern.Pattern) {
		if p.Kind() == k {
			out = append(out, p)
		}
		for _, child := range p.Patterns() {
			walk(child)
		}
	}
	walk(p)
	return out
}
