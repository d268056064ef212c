package cli

import (
	"bytes"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	validSpecsDir   = filepath.Join("testdata", "specs", "valid")
	invalidSpecsDir = filepath.Join("testdata", "specs", "invalid")
	passScenarios   = filepath.Join("testdata", "scenarios", "pass")
	failScenarios   = filepath.Join("testdata", "scenarios", "fail")
)

// execute runs cmd with args and returns what it wrote to stdout.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
