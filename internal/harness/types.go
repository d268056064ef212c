package harness

import "github.com/typedb/typeql-sub003/internal/pattern"

// QueryOutcome is what the harness observed for one query.
type QueryOutcome struct {
	Name     string
	Branches int
	Members  []int
	Scope    string
	Normal   *pattern.Normalised
}

// RuleOutcome is what the harness observed for one rule. Code is empty
// for a valid rule; Hash and Stored are set only for valid rules.
type RuleOutcome struct {
	Label  string
	Code   string
	Error  string
	Hash   string
	Stored bool
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Queries and Rules are in label order.
	Queries []QueryOutcome `json:"-"`
	Rules   []RuleOutcome  `json:"-"`

	// StoredRules is the number of rules recorded in the store.
	StoredRules int `json:"stored_rules"`

	// Errors contains failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Query returns the outcome of the named query.
func (r *Result) Query(name string) (QueryOutcome, bool) {
	for _, q := range r.Queries {
		if q.Name == name {
			return q, true
		}
	}
	return QueryOutcome{}, false
}

// Rule returns the outcome of the labelled rule.
func (r *Result) Rule(label string) (RuleOutcome, bool) {
	for _, o := range r.Rules {
		if o.Label == label {
			return o, true
		}
	}
	return RuleOutcome{}, false
}
