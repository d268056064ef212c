package pattern

import (
	"errors"
	"fmt"
)

// ErrorCode categorises pattern errors.
type ErrorCode string

const (
	// CodeRedundantNegation: a negation directly wraps another negation.
	CodeRedundantNegation ErrorCode = "REDUNDANT_NEGATION"

	// CodeIllegalState: a tree reached a state construction forbids.
	CodeIllegalState ErrorCode = "ILLEGAL_STATE"

	// CodeVariableOutOfScope: a nested pattern mentions a named variable
	// its enclosing conjunction never introduces.
	CodeVariableOutOfScope ErrorCode = "VARIABLE_OUT_OF_SCOPE"

	// CodeNoBoundingVariable: a conjunction with nested patterns introduces
	// no named variable at all.
	CodeNoBoundingVariable ErrorCode = "NO_BOUNDING_VARIABLE"
)

// Error is returned by construction, normalisation and scope checks.
type Error struct {
	Code    ErrorCode
	Message string

	// Pattern is the offending pattern, when known.
	Pattern Pattern

	// Variable is the offending variable for scope errors.
	Variable Variable
}

func (e *Error) Error() string {
	if e.Pattern != nil {
		return fmt.Sprintf("%s: %s (in %s)", e.Code, e.Message, e.Pattern)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newRedundantNegation(inner Pattern) *Error {
	return &Error{
		Code:    CodeRedundantNegation,
		Message: "negation of a negation is redundant",
		Pattern: inner,
	}
}

func newIllegalState(p Pattern, msg string) *Error {
	return &Error{Code: CodeIllegalState, Message: msg, Pattern: p}
}

func newOutOfScope(v Variable, p Pattern) *Error {
	return &Error{
		Code:     CodeVariableOutOfScope,
		Message:  fmt.Sprintf("variable %s is out of scope", v),
		Pattern:  p,
		Variable: v,
	}
}

func hasCode(err error, code ErrorCode) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

// IsRedundantNegation reports whether err, or anything it wraps, is a
// redundant negation error.
func IsRedundantNegation(err error) bool { return hasCode(err, CodeRedundantNegation) }

// IsIllegalState reports whether err is an illegal state error.
func IsIllegalState(err error) bool { return hasCode(err, CodeIllegalState) }

// IsOutOfScope reports whether err is a variable scope error.
func IsOutOfScope(err error) bool {
	return hasCode(err, CodeVariableOutOfScope) || hasCode(err, CodeNoBoundingVariable)
}

// CodeOf returns the code of a pattern error, or "" for other errors.
func CodeOf(err error) ErrorCode {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
