package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/typedb/typeql-sub003/internal/compiler"
	"github.com/typedb/typeql-sub003/internal/ir"
	"github.com/typedb/typeql-sub003/internal/rule"
	"github.com/typedb/typeql-sub003/internal/store"
)

// RulesOptions holds flags shared by the rules subcommands.
type RulesOptions struct {
	*RootOptions
	Database string
}

// RuleEntry is one catalogue row in command output.
type RuleEntry struct {
	Label    string `json:"label"`
	Hash     string `json:"hash"`
	Branches int64  `json:"branches"`
	Inserted *bool  `json:"inserted,omitempty"`
}

// NewRulesCommand creates the rules command group.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RulesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage the rule catalogue",
		Long: `Record validated rules in a SQLite catalogue and inspect it.

Examples:
  typeql rules add ./specs --db rules.db
  typeql rules list --db rules.db
  typeql rules verify --db rules.db`,
	}
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(newRulesAddCommand(opts))
	cmd.AddCommand(newRulesListCommand(opts))
	cmd.AddCommand(newRulesRemoveCommand(opts))
	cmd.AddCommand(newRulesVerifyCommand(opts))
	return cmd
}

func newRulesAddCommand(opts *RulesOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "add <specs-dir | file.cue...>",
		Short:         "Validate rules and record them",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesAdd(opts, args, cmd)
		},
	}
}

func newRulesListCommand(opts *RulesOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List recorded rules by label",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesList(opts, cmd)
		},
	}
}

func newRulesRemoveCommand(opts *RulesOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <label>",
		Short:         "Remove a recorded rule",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesRemove(opts, args[0], cmd)
		},
	}
}

func newRulesVerifyCommand(opts *RulesOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "verify",
		Short:         "Recompute every stored hash from its stored content",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesVerify(opts, cmd)
		},
	}
}

func openStore(opts *RulesOptions, formatter *OutputFormatter) (*store.Store, error) {
	if opts.Database == "" {
		_ = formatter.Error(compiler.ErrCodeNotFound, "--db is required", nil)
		return nil, NewExitError(ExitCommandError, "--db is required")
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(compiler.ErrCodeNotFound, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

func runRulesAdd(opts *RulesOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loaded, specErrs, err := loadSpecs(paths, compiler.LoadModeFailFast, formatter)
	if err != nil {
		return err
	}
	if len(specErrs) > 0 {
		_ = formatter.Error(specErrs[0].Code, specErrs[0].Error(), nil)
		return WrapExitError(ExitCommandError, "invalid spec", specErrs[0])
	}
	if len(loaded.Rules) == 0 {
		_ = formatter.Error(compiler.ErrCodeEmpty, "no rules found in specs", nil)
		return NewExitError(ExitCommandError, "no rules found in specs")
	}

	// Every rule must be valid before anything is written.
	records := make([]ir.RuleRecord, 0, len(loaded.Rules))
	for _, r := range loaded.Rules {
		rec, err := rule.Record(r)
		if err != nil {
			_ = formatter.Error(rule.CodeOf(err), err.Error(), nil)
			return WrapExitError(ExitFailure, "rule validation failed", err)
		}
		records = append(records, rec)
	}

	st, err := openStore(opts, formatter)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := commandContext(cmd)
	entries := make([]RuleEntry, 0, len(records))
	for _, rec := range records {
		inserted, err := st.WriteRule(ctx, rec)
		if err != nil {
			code := "E300"
			if errors.Is(err, store.ErrLabelConflict) || errors.Is(err, store.ErrHashConflict) {
				code = "E301"
			}
			_ = formatter.Error(code, err.Error(), nil)
			return WrapExitError(ExitFailure, "failed to record rule", err)
		}
		slog.Debug("rule recorded", "label", rec.Label, "inserted", inserted)
		entries = append(entries, RuleEntry{Label: rec.Label, Hash: rec.Hash, Branches: rec.Branches, Inserted: &inserted})
	}

	if formatter.Format == "json" {
		return formatter.Success(entries)
	}
	marks := formatter.marks()
	for _, e := range entries {
		status := "unchanged"
		if *e.Inserted {
			status = "added"
		}
		fmt.Fprintf(formatter.Writer, "%s %s %s\n", marks.OK("✓"), e.Label, status)
	}
	return nil
}

func runRulesList(opts *RulesOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(opts, formatter)
	if err != nil {
		return err
	}
	defer closeStore(st)

	records, err := st.ListRules(commandContext(cmd))
	if err != nil {
		_ = formatter.Error("E300", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list rules", err)
	}

	entries := make([]RuleEntry, len(records))
	for i, rec := range records {
		entries[i] = RuleEntry{Label: rec.Label, Hash: rec.Hash, Branches: rec.Branches}
	}

	if formatter.Format == "json" {
		return formatter.Success(entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(formatter.Writer, "No rules recorded.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(formatter.Writer, "%s  %s  %d %s\n", e.Hash[:12], e.Label, e.Branches, plural(int(e.Branches), "branch", "branches"))
	}
	return nil
}

func runRulesRemove(opts *RulesOptions, label string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(opts, formatter)
	if err != nil {
		return err
	}
	defer closeStore(st)

	removed, err := st.DeleteRule(commandContext(cmd), label)
	if err != nil {
		_ = formatter.Error("E300", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to remove rule", err)
	}
	if !removed {
		_ = formatter.Error("E302", fmt.Sprintf("rule %q not found", label), nil)
		return NewExitError(ExitFailure, fmt.Sprintf("rule %q not found", label))
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"removed": label})
	}
	fmt.Fprintf(formatter.Writer, "%s %s removed\n", formatter.marks().OK("✓"), label)
	return nil
}

// VerifyReport is the outcome of rules verify.
type VerifyReport struct {
	Checked    int      `json:"checked"`
	Mismatched []string `json:"mismatched,omitempty"`
}

func runRulesVerify(opts *RulesOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(opts, formatter)
	if err != nil {
		return err
	}
	defer closeStore(st)

	result, err := st.Verify(commandContext(cmd))
	if err != nil {
		_ = formatter.Error("E300", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to verify rules", err)
	}

	report := VerifyReport{Checked: result.Checked}
	for _, m := range result.Mismatches {
		report.Mismatched = append(report.Mismatched, m.Label)
		formatter.VerboseLog("mismatch %s: stored %s computed %s err %v", m.Label, m.Stored, m.Computed, m.Err)
	}

	if formatter.Format == "json" {
		if result.OK() {
			return formatter.Success(report)
		}
		if err := formatter.Failure(report, "E303", fmt.Sprintf("%d rule(s) do not match their hash", len(report.Mismatched))); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "hash verification failed")
	}

	marks := formatter.marks()
	if result.OK() {
		fmt.Fprintln(formatter.Writer, marks.OK("✓ %d rule(s) verified", report.Checked))
		return nil
	}
	for _, label := range report.Mismatched {
		fmt.Fprintf(formatter.Writer, "%s %s\n", marks.Fail("✗"), label)
	}
	return NewExitError(ExitFailure, "hash verification failed")
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
