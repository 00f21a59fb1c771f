package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tidy/internal/diagfmt"
	"tidy/internal/driver"
	"tidy/internal/fix"
	"tidy/internal/replacements"
)

func newApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <directory>",
		Short: "Apply change descriptions exported with --export-fixes",
		Long: `Gather every *.yaml change description under the directory (hidden
directories are skipped), deduplicate their edits, report conflicting ones
and apply the rest.`,
		Args: cobra.ExactArgs(1),
		RunE: runApply,
	}
}

func runApply(cmd *cobra.Command, args []string) error {
	jobs, err := cmd.Root().PersistentFlags().GetInt("jobs")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	color, err := useColor(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	stderr := cmd.ErrOrStderr()

	out, err := driver.Apply(ctx, args[0], jobs, diagfmt.NewReporter(stderr, color))
	switch {
	case errors.Is(err, replacements.ErrNoChanges), errors.Is(err, fix.ErrNoFixes):
		if !quiet {
			fmt.Fprintln(stderr, "No fixes to apply.")
		}
		return nil
	case err != nil:
		return err
	}
	changes, err := out.Plan.Write(ctx, "")
	if err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(stderr, "read %d change description(s), skipped %d\n", len(out.Collection.Units), len(out.Collection.Skipped))
		printFixSummary(stderr, out.Plan, changes)
	}
	return out.Plan.Err()
}
