package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/typedb/typeql-sub003/internal/compiler"
	"github.com/typedb/typeql-sub003/internal/pattern"
	"github.com/typedb/typeql-sub003/internal/rule"
	"github.com/typedb/typeql-sub003/internal/store"
	"github.com/typedb/typeql-sub003/internal/testutil"
)

// Harness evaluates one scenario against a fresh store.
type Harness struct {
	store  *store.Store
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation, and
// anonymous variables are numbered from a fresh sequence.
//
// Execution flow:
// 1. Compile the scenario's CUE specs
// 2. Normalise and scope-check every query
// 3. Validate every rule and record the valid ones
// 4. Compare outcomes with expectations and assertions
//
// An error is returned only when the scenario cannot be run at all; failed
// expectations are reported in the result.
func Run(scenario *Scenario) (*Result, error) {
	restore := pattern.SetIDGenerator(testutil.NewSequenceGenerator("anon"))
	defer restore()

	loaded, errs := compiler.LoadFiles(scenario.Specs, compiler.LoadModeCollectAll)
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to load specs: %w", errors.Join(errs...))
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.Open(":memory:", store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{store: st, logger: logger}
	ctx := context.Background()

	result := NewResult()
	for _, q := range loaded.Queries {
		outcome, err := h.evaluateQuery(q)
		if err != nil {
			return nil, err
		}
		result.Queries = append(result.Queries, outcome)
	}
	for _, r := range loaded.Rules {
		outcome, err := h.evaluateRule(ctx, r)
		if err != nil {
			return nil, err
		}
		result.Rules = append(result.Rules, outcome)
	}

	stored, err := st.CountRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count stored rules: %w", err)
	}
	result.StoredRules = stored

	for _, msg := range checkExpectations(result, scenario) {
		result.AddError(msg)
	}
	for _, err := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(err.Error())
	}

	return result, nil
}

func (h *Harness) evaluateQuery(q *compiler.Query) (QueryOutcome, error) {
	normal, err := q.Match.Normalise()
	if err != nil {
		return QueryOutcome{}, fmt.Errorf("query %s: normalise: %w", q.Name, err)
	}

	outcome := QueryOutcome{
		Name:     q.Name,
		Branches: len(normal.Branches()),
		Scope:    ScopeOK,
		Normal:   normal,
	}
	for _, b := range normal.Branches() {
		outcome.Members = append(outcome.Members, len(b.Members()))
	}
	if err := pattern.ValidateScope(q.Match); err != nil {
		code := pattern.CodeOf(err)
		if code == "" {
			return QueryOutcome{}, fmt.Errorf("query %s: scope: %w", q.Name, err)
		}
		outcome.Scope = string(code)
	}

	h.logger.Info("query evaluated",
		"query", q.Name,
		"branches", outcome.Branches,
		"scope", outcome.Scope,
	)
	return outcome, nil
}

func (h *Harness) evaluateRule(ctx context.Context, r *rule.Rule) (RuleOutcome, error) {
	outcome := RuleOutcome{Label: r.Label}

	rec, err := rule.Record(r)
	if err != nil {
		code := rule.CodeOf(err)
		if code == "" {
			return RuleOutcome{}, fmt.Errorf("rule %s: %w", r.Label, err)
		}
		outcome.Code = code
		outcome.Error = err.Error()
		h.logger.Info("rule rejected", "rule", r.Label, "code", code)
		return outcome, nil
	}

	inserted, err := h.store.WriteRule(ctx, rec)
	if err != nil {
		return RuleOutcome{}, fmt.Errorf("rule %s: store: %w", r.Label, err)
	}
	outcome.Hash = rec.Hash
	outcome.Stored = inserted

	h.logger.Info("rule recorded", "rule", r.Label, "hash", rec.Hash, "inserted", inserted)
	return outcome, nil
}

// checkExpectations compares per-query and per-rule expectations with the
// observed outcomes.
func checkExpectations(result *Result, scenario *Scenario) []string {
	var errs []string

	for _, want := range scenario.Queries {
		got, ok := result.Query(want.Name)
		if !ok {
			errs = append(errs, fmt.Sprintf("query %s: not found in specs", want.Name))
			continue
		}
		if want.Branches != nil && got.Branches != *want.Branches {
			errs = append(errs, fmt.Sprintf("query %s: expected %d branches, got %d", want.Name, *want.Branches, got.Branches))
		}
		if want.Members != nil && !equalInts(want.Members, got.Members) {
			errs = append(errs, fmt.Sprintf("query %s: expected members %v, got %v", want.Name, want.Members, got.Members))
		}
		if want.Scope != "" && got.Scope != want.Scope {
			errs = append(errs, fmt.Sprintf("query %s: expected scope %s, got %s", want.Name, want.Scope, got.Scope))
		}
	}

	for _, want := range scenario.Rules {
		got, ok := result.Rule(want.Label)
		if !ok {
			errs = append(errs, fmt.Sprintf("rule %s: not found in specs", want.Label))
			continue
		}
		wantValid := want.Code == "" && (want.Valid == nil || *want.Valid)
		switch {
		case wantValid && got.Code != "":
			errs = append(errs, fmt.Sprintf("rule %s: expected valid, got %s", want.Label, got.Error))
		case !wantValid && got.Code == "":
			errs = append(errs, fmt.Sprintf("rule %s: expected invalid, got valid", want.Label))
		case want.Code != "" && got.Code != want.Code:
			errs = append(errs, fmt.Sprintf("rule %s: expected code %s, got %s", want.Label, want.Code, got.Code))
		}
	}

	return errs
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
