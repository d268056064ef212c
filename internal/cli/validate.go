package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/typedb/typeql-sub003/internal/compiler"
	"github.com/typedb/typeql-sub003/internal/pattern"
	"github.com/typedb/typeql-sub003/internal/rule"
)

// Issue is one failed check.
type Issue struct {
	Kind     string `json:"kind"` // "spec", "query" or "rule"
	Name     string `json:"name,omitempty"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Variable string `json:"variable,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool    `json:"valid"`
	Queries int     `json:"queries"`
	Rules   int     `json:"rules"`
	Issues  []Issue `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <specs-dir | file.cue...>",
		Short: "Check query scope and rule legality",
		Long: `Compile CUE specs, check that every query's nested patterns only use
variables bound by their enclosing conjunction, and check every rule
against the rule legality conditions.

Every problem is reported; nothing stops at the first failure.

Exit codes:
  0 - All specs valid
  1 - One or more checks failed
  2 - Command error (invalid paths, CUE syntax errors, etc.)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loaded, specErrs, err := loadSpecs(paths, compiler.LoadModeCollectAll, formatter)
	if err != nil {
		return err
	}

	result := ValidationResult{Queries: len(loaded.Queries), Rules: len(loaded.Rules)}
	for _, e := range specErrs {
		result.Issues = append(result.Issues, Issue{Kind: "spec", Code: e.Code, Message: e.Error()})
	}
	for _, q := range loaded.Queries {
		formatter.VerboseLog("Validating query: %s", q.Name)
		if err := pattern.ValidateScope(q.Match); err != nil {
			issue := Issue{Kind: "query", Name: q.Name, Code: string(pattern.CodeOf(err)), Message: err.Error()}
			if pe, ok := err.(*pattern.Error); ok && !pe.Variable.IsZero() {
				issue.Variable = pe.Variable.String()
			}
			result.Issues = append(result.Issues, issue)
		}
	}
	for _, r := range loaded.Rules {
		formatter.VerboseLog("Validating rule: %s", r.Label)
		if err := r.Validate(); err != nil {
			issue := Issue{Kind: "rule", Name: r.Label, Code: rule.CodeOf(err), Message: err.Error()}
			if ve, ok := err.(rule.ValidationError); ok {
				issue.Message = ve.Message
				issue.Variable = ve.Variable
			}
			result.Issues = append(result.Issues, issue)
		}
	}
	result.Valid = len(result.Issues) == 0

	return outputValidation(formatter, result)
}

func outputValidation(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		if result.Valid {
			return formatter.Success(result)
		}
		if err := formatter.Failure(result, result.Issues[0].Code, result.Issues[0].Message); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d issue(s)", len(result.Issues)))
	}

	marks := formatter.marks()
	w := formatter.Writer
	if result.Valid {
		fmt.Fprintln(w, marks.OK("✓ All specs valid (%d queries, %d rules)", result.Queries, result.Rules))
		return nil
	}

	fmt.Fprintln(w, marks.Fail("✗ Validation failed"))
	fmt.Fprintln(w)
	for _, issue := range result.Issues {
		if issue.Name != "" {
			fmt.Fprintf(w, "%s %s\n", issue.Kind, issue.Name)
		}
		fmt.Fprintf(w, "  %s: %s\n\n", issue.Code, issue.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d issue(s)", len(result.Issues)))
}
