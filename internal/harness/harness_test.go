package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadScenario(t *testing.T, path string) *Scenario {
	t.Helper()
	s, err := LoadScenarioWithBasePath(path, filepath.Dir(path))
	require.NoError(t, err)
	return s
}

func TestRunScenarios(t *testing.T) {
	files, err := FindScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			result, err := Run(loadScenario(t, path))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRunBasicGolden(t *testing.T) {
	result, err := RunWithGolden(t, loadScenario(t, "testdata/scenarios/basic.yaml"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRunOutcomes(t *testing.T) {
	result, err := Run(loadScenario(t, "testdata/scenarios/basic.yaml"))
	require.NoError(t, err)

	adults, ok := result.Query("adults")
	require.True(t, ok)
	assert.Equal(t, 2, adults.Branches)
	assert.Equal(t, []int{2, 2}, adults.Members)
	assert.Equal(t, ScopeOK, adults.Scope)
	assert.Equal(t, `{ $x isa person; $x has age 30; } or { $x isa person; $x has age 40; };`, adults.Normal.String())

	named, ok := result.Rule("named")
	require.True(t, ok)
	assert.Empty(t, named.Code)
	assert.True(t, named.Stored)
	assert.Len(t, named.Hash, 64)

	choice, ok := result.Rule("choice")
	require.True(t, ok)
	assert.Equal(t, "E203", choice.Code)
	assert.False(t, choice.Stored)
	assert.Contains(t, choice.Error, "disjunction")

	assert.Equal(t, 1, result.StoredRules)
}

func TestRunIsDeterministic(t *testing.T) {
	scenario := loadScenario(t, "testdata/scenarios/rules.yaml")

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := MarshalSnapshot(scenario.Name, first)
	require.NoError(t, err)
	b, err := MarshalSnapshot(scenario.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRunReportsFailedExpectations(t *testing.T) {
	result, err := Run(loadScenario(t, "testdata/invalid/failing.yaml"))
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 6)
	assert.Contains(t, result.Errors[0], "expected 3 branches, got 2")
	assert.Contains(t, result.Errors[1], "expected scope NO_BOUNDING_VARIABLE, got ok")
	assert.Contains(t, result.Errors[2], "query missing: not found")
	assert.Contains(t, result.Errors[3], "rule named: expected invalid, got valid")
	assert.Contains(t, result.Errors[4], "rule choice: expected valid")
	assert.Contains(t, result.Errors[5], "1 stored rules")
}

func TestRunSpecLoadFailure(t *testing.T) {
	s := &Scenario{
		Name:  "broken",
		Specs: []string{"testdata/does-not-exist.cue"},
	}
	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load specs")
}
