// Package rule models logical inference rules and enforces their legality:
// a body ("when") that is a conjunction with at most one level of negation
// and no disjunction, and a head ("then") that is a single statement.
package rule

import (
	"fmt"
	"strings"

	"github.com/typedb/typeql-sub003/internal/ir"
	"github.com/typedb/typeql-sub003/internal/pattern"
)

// Rule is a labelled when/then pair.
type Rule struct {
	Label string
	When  *pattern.Conjunction
	Then  *pattern.Statement
}

// New builds a rule. It does not validate.
func New(label string, when *pattern.Conjunction, then *pattern.Statement) *Rule {
	return &Rule{Label: label, When: when, Then: then}
}

// Validate checks the label, then the body, then the head, stopping at the
// first failure. Errors carry the rule label.
func (r *Rule) Validate() error {
	if strings.TrimSpace(r.Label) == "" {
		return ValidationError{Code: ErrMissingLabel, Field: "label", Message: "rule label is required"}
	}
	if err := ValidateWhen(r.When); err != nil {
		return withRule(err, r.Label)
	}
	if err := ValidateThen(r.Then, r.When); err != nil {
		return withRule(err, r.Label)
	}
	return nil
}

func withRule(err error, label string) error {
	if ve, ok := err.(ValidationError); ok {
		ve.Rule = label
		return ve
	}
	return err
}

func (r *Rule) String() string {
	return fmt.Sprintf("rule %s: when %s then { %s }", r.Label, r.When, r.Then)
}

// Hash is the content hash of label, body and head. It does not validate
// r but fails on a missing body or head.
func (r *Rule) Hash() (string, error) {
	when, then, err := r.encode()
	if err != nil {
		return "", err
	}
	return ir.RuleHash(r.Label, when, then)
}

// ContentHash hashes body and head only. Two labels for the same rule
// share it.
func (r *Rule) ContentHash() (string, error) {
	when, then, err := r.encode()
	if err != nil {
		return "", err
	}
	return ir.RuleContentHash(when, then)
}

func (r *Rule) encode() (when, then ir.IRObject, err error) {
	if r.When == nil {
		return nil, nil, withRule(ValidationError{Code: ErrMissingPatterns, Field: "when", Message: "rule has no body"}, r.Label)
	}
	if r.Then == nil {
		return nil, nil, withRule(ValidationError{Code: ErrMissingThen, Field: "then", Message: "rule has no head"}, r.Label)
	}
	return pattern.Encode(r.When), pattern.Encode(r.Then), nil
}

// Record validates r, normalises its body and returns the storable form.
func Record(r *Rule) (ir.RuleRecord, error) {
	if err := r.Validate(); err != nil {
		return ir.RuleRecord{}, err
	}
	normal, err := r.When.Normalise()
	if err != nil {
		return ir.RuleRecord{}, fmt.Errorf("normalise body of %s: %w", r.Label, err)
	}

	when, err := pattern.MarshalCanonical(r.When)
	if err != nil {
		return ir.RuleRecord{}, fmt.Errorf("encode body of %s: %w", r.Label, err)
	}
	then, err := pattern.MarshalCanonical(r.Then)
	if err != nil {
		return ir.RuleRecord{}, fmt.Errorf("encode head of %s: %w", r.Label, err)
	}
	nf, err := pattern.MarshalCanonical(normal)
	if err != nil {
		return ir.RuleRecord{}, fmt.Errorf("encode normal form of %s: %w", r.Label, err)
	}
	hash, err := r.Hash()
	if err != nil {
		return ir.RuleRecord{}, err
	}
	content, err := r.ContentHash()
	if err != nil {
		return ir.RuleRecord{}, err
	}

	return ir.RuleRecord{
		Hash:        hash,
		ContentHash: content,
		Label:       r.Label,
		When:        string(when),
		Then:        string(then),
		Normalised:  string(nf),
		Branches:    int64(len(normal.Branches())),
		IRVersion:   ir.IRVersion,
	}, nil
}
