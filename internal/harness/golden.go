package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/typedb/typeql-sub003/internal/ir"
	"github.com/typedb/typeql-sub003/internal/pattern"
)

// Snapshot captures every normal form and rule outcome of a run.
// It serialises to canonical JSON for deterministic comparison.
type Snapshot struct {
	ScenarioName string
	Queries      []QueryOutcome
	Rules        []RuleOutcome
}

// toIR converts the snapshot into an IR object. Errors other than the
// code are omitted; their wording is not part of the contract.
func (s *Snapshot) toIR() ir.IRObject {
	queries := make(ir.IRArray, len(s.Queries))
	for i, q := range s.Queries {
		queries[i] = ir.IRObject{
			"name":       ir.IRString(q.Name),
			"branches":   ir.IRInt(q.Branches),
			"scope":      ir.IRString(q.Scope),
			"normalised": pattern.Encode(q.Normal),
		}
	}

	rules := make(ir.IRArray, len(s.Rules))
	for i, r := range s.Rules {
		obj := ir.IRObject{"label": ir.IRString(r.Label)}
		if r.Code != "" {
			obj["code"] = ir.IRString(r.Code)
		} else {
			obj["hash"] = ir.IRString(r.Hash)
		}
		rules[i] = obj
	}

	return ir.IRObject{
		"scenario_name": ir.IRString(s.ScenarioName),
		"queries":       queries,
		"rules":         rules,
	}
}

// MarshalSnapshot returns the canonical JSON of a run.
func MarshalSnapshot(name string, result *Result) ([]byte, error) {
	snapshot := Snapshot{ScenarioName: name, Queries: result.Queries, Rules: result.Rules}
	return ir.MarshalCanonical(snapshot.toIR())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
