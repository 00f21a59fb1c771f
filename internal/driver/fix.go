package driver

import (
	"context"
	"fmt"

	"tidy/internal/fix"
	"tidy/internal/progress"
	"tidy/internal/replacements"
	"tidy/internal/source"
)

// Fix resolves and applies the edits of the kept diagnostics in memory.
// The returned plan is written with (*fix.Result).Write.
func Fix(ctx context.Context, res *Result, rep fix.Reporter, sink progress.Sink) (*fix.Result, error) {
	progress.Emit(sink, progress.Event{Stage: progress.StageFix, Status: progress.StatusWorking})
	plan, err := fix.Plan(ctx, res.FileSet, res.Edits(), rep)
	progress.Emit(sink, progress.Event{Stage: progress.StageFix, Status: progress.StatusDone})
	return plan, err
}

// ExportFixes writes the edits of the kept diagnostics as a change
// description. MainSourceFile is set only when one file was analyzed.
func ExportFixes(path string, res *Result) error {
	main := ""
	if len(res.Units) == 1 {
		main = res.Units[0].Path
	}
	return replacements.Export(path, main, res.Edits())
}

// ApplyResult is the outcome of applying change descriptions.
type ApplyResult struct {
	Collection *replacements.Collection
	Plan       *fix.Result
}

// Apply gathers the change descriptions under dir and plans their edits
// against the files on disk.
func Apply(ctx context.Context, dir string, jobs int, rep fix.Reporter) (*ApplyResult, error) {
	col, err := replacements.Collect(ctx, dir, jobs)
	if err != nil {
		return &ApplyResult{Collection: col}, err
	}
	plan, err := fix.Plan(ctx, source.NewFileSet(), col.Edits(), rep)
	if err != nil {
		return &ApplyResult{Collection: col, Plan: plan}, fmt.Errorf("apply %s: %w", dir, err)
	}
	return &ApplyResult{Collection: col, Plan: plan}, nil
}
