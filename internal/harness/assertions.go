package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Context  []string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Context) > 0 {
		fmt.Fprintf(&buf, "\nNormal forms:\n")
		for _, line := range e.Context {
			fmt.Fprintf(&buf, "  %s\n", line)
		}
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failures.
func EvaluateAssertions(result *Result, assertions []Assertion) []error {
	var errs []error
	for _, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion) error {
	switch a.Type {
	case AssertEquivalent:
		return assertEquivalent(result, a, true)
	case AssertDistinct:
		return assertEquivalent(result, a, false)
	case AssertStored:
		return assertStored(result, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

// assertEquivalent compares the normal forms of two queries. Normal forms
// are ordered, so queries that differ only in branch order are distinct.
func assertEquivalent(result *Result, a Assertion, want bool) error {
	left, ok := result.Query(a.Queries[0])
	if !ok {
		return &AssertionError{Type: a.Type, Expected: "query " + a.Queries[0], Actual: "not found"}
	}
	right, ok := result.Query(a.Queries[1])
	if !ok {
		return &AssertionError{Type: a.Type, Expected: "query " + a.Queries[1], Actual: "not found"}
	}

	if left.Normal.Equal(right.Normal) == want {
		return nil
	}

	expected, actual := "equal normal forms", "normal forms differ"
	if !want {
		expected, actual = "different normal forms", "normal forms are equal"
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s for %s and %s", expected, left.Name, right.Name),
		Actual:   actual,
		Context: []string{
			left.Name + ": " + left.Normal.String(),
			right.Name + ": " + right.Normal.String(),
		},
	}
}

func assertStored(result *Result, a Assertion) error {
	if result.StoredRules == a.Count {
		return nil
	}
	var labels []string
	for _, r := range result.Rules {
		if r.Stored {
			labels = append(labels, r.Label)
		}
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%d stored rules", a.Count),
		Actual:   fmt.Sprintf("%d stored rules %v", result.StoredRules, labels),
	}
}
