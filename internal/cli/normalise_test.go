package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormaliseText(t *testing.T) {
	out, err := execute(NewNormaliseCommand(&RootOptions{Format: "text"}), validSpecsDir)
	require.NoError(t, err)

	assert.Contains(t, out, "query adults (2 branches)")
	assert.Contains(t, out, "rule named (1 branch)")
	assert.Contains(t, out, " or ")
}

func TestNormaliseJSON(t *testing.T) {
	out, err := execute(NewNormaliseCommand(&RootOptions{Format: "json"}), validSpecsDir)
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   []struct {
			Kind     string          `json:"kind"`
			Name     string          `json:"name"`
			Branches int             `json:"branches"`
			Pattern  json.RawMessage `json:"pattern"`
			Hash     string          `json:"hash"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 2)

	adults := resp.Data[0]
	assert.Equal(t, "query", adults.Kind)
	assert.Equal(t, "adults", adults.Name)
	assert.Equal(t, 2, adults.Branches)
	assert.Len(t, adults.Hash, 64)
	var encoded map[string]any
	require.NoError(t, json.Unmarshal(adults.Pattern, &encoded))
	assert.Equal(t, "disjunction", encoded["kind"])

	named := resp.Data[1]
	assert.Equal(t, "rule", named.Kind)
	assert.Equal(t, 1, named.Branches)
}

func TestNormaliseIsDeterministic(t *testing.T) {
	first, err := execute(NewNormaliseCommand(&RootOptions{Format: "json"}), validSpecsDir)
	require.NoError(t, err)
	second, err := execute(NewNormaliseCommand(&RootOptions{Format: "json"}), validSpecsDir)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormaliseSingleFile(t *testing.T) {
	out, err := execute(NewNormaliseCommand(&RootOptions{Format: "text"}), filepath.Join(validSpecsDir, "library.cue"))
	require.NoError(t, err)
	assert.Contains(t, out, "query adults")
}

func TestNormaliseMissingPath(t *testing.T) {
	out, err := execute(NewNormaliseCommand(&RootOptions{Format: "text"}), "/nonexistent/specs")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005")
	assert.Contains(t, out, "not found")
}

func TestNormaliseRequiresArgs(t *testing.T) {
	_, err := execute(NewNormaliseCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
}
