package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/typedb/typeql-sub003/internal/compiler"
	"github.com/typedb/typeql-sub003/internal/pattern"
)

// NormalForm is the normal form of one query or rule body.
type NormalForm struct {
	Kind     string          `json:"kind"` // "query" or "rule"
	Name     string          `json:"name"`
	Branches int             `json:"branches"`
	Text     string          `json:"text"`
	Pattern  jsonPassthrough `json:"pattern"`
	Hash     string          `json:"hash"`
}

// jsonPassthrough embeds already canonical JSON in an encoded response.
type jsonPassthrough []byte

func (j jsonPassthrough) MarshalJSON() ([]byte, error) { return j, nil }

// NewNormaliseCommand creates the normalise command.
func NewNormaliseCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "normalise <specs-dir | file.cue...>",
		Aliases: []string{"normalize"},
		Short:   "Print the disjunctive normal form of every query and rule body",
		Long: `Compile CUE specs and print the disjunctive normal form of every query
and every rule body, in name order.

Examples:
  typeql normalise ./specs
  typeql normalise ./specs/people.cue --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalise(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runNormalise(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loaded, specErrs, err := loadSpecs(paths, compiler.LoadModeFailFast, formatter)
	if err != nil {
		return err
	}
	if len(specErrs) > 0 {
		_ = formatter.Error(specErrs[0].Code, specErrs[0].Error(), nil)
		return WrapExitError(ExitCommandError, "invalid spec", specErrs[0])
	}

	var forms []NormalForm
	for _, q := range loaded.Queries {
		nf, err := normalForm("query", q.Name, q.Match)
		if err != nil {
			_ = formatter.Error(string(pattern.CodeOf(err)), err.Error(), nil)
			return WrapExitError(ExitFailure, "normalise failed", err)
		}
		forms = append(forms, nf)
	}
	for _, r := range loaded.Rules {
		nf, err := normalForm("rule", r.Label, r.When)
		if err != nil {
			_ = formatter.Error(string(pattern.CodeOf(err)), err.Error(), nil)
			return WrapExitError(ExitFailure, "normalise failed", err)
		}
		forms = append(forms, nf)
	}

	if formatter.Format == "json" {
		return formatter.Success(forms)
	}

	marks := formatter.marks()
	w := formatter.Writer
	for _, nf := range forms {
		fmt.Fprintf(w, "%s (%d %s)\n", marks.Heading("%s %s", nf.Kind, nf.Name), nf.Branches, plural(nf.Branches, "branch", "branches"))
		fmt.Fprintf(w, "  %s\n", nf.Text)
	}
	return nil
}

func normalForm(kind, name string, p pattern.Pattern) (NormalForm, error) {
	normal, err := pattern.Normalise(p)
	if err != nil {
		return NormalForm{}, fmt.Errorf("%s %s: %w", kind, name, err)
	}
	data, err := pattern.MarshalCanonical(normal)
	if err != nil {
		return NormalForm{}, fmt.Errorf("%s %s: %w", kind, name, err)
	}
	return NormalForm{
		Kind:     kind,
		Name:     name,
		Branches: len(normal.Branches()),
		Text:     normal.String(),
		Pattern:  data,
		Hash:     normal.Hash(),
	}, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
