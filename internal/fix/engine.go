package fix

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"tidy/internal/diag"
	"tidy/internal/source"
	"tidy/internal/trace"
)

var (
	// ErrNoFixes is returned when there was nothing to apply.
	ErrNoFixes = errors.New("no applicable fixes found")
	// ErrConflictDetected marks a run where at least one file had conflicting
	// edits. The rest of the run is still carried out.
	ErrConflictDetected = errors.New("conflicting fixes detected")
)

// EditStatus is the fate of one suggested edit.
type EditStatus uint8

const (
	EditPending EditStatus = iota
	EditApplied
	EditConflict
	EditFailed
	EditMissingFile
)

func (s EditStatus) String() string {
	switch s {
	case EditPending:
		return "pending"
	case EditApplied:
		return "applied"
	case EditConflict:
		return "conflict"
	case EditFailed:
		return "failed"
	case EditMissingFile:
		return "missing_file"
	}
	return "unknown"
}

// Reporter receives recoverable problems while a plan is built. Any method
// may be called from the goroutine that calls Plan only.
type Reporter interface {
	Conflict(g ConflictGroup)
	MissingFile(path string, err error)
	EditFailed(f EditFailure)
}

// MissingFile records a target file that could not be read.
type MissingFile struct {
	Path string
	Err  error
}

// FileResult summarises the planned changes of one file.
type FileResult struct {
	Path      string
	Original  []byte
	Text      []byte
	Applied   int
	Attempted int
	Conflicts []ConflictGroup
	Failures  []EditFailure
	virtual   bool
}

// Changed reports whether the new text differs from the original.
func (f *FileResult) Changed() bool {
	return f.Applied > 0 && string(f.Text) != string(f.Original)
}

// FileChange summarises modifications written to a file.
type FileChange struct {
	Path      string
	EditCount int
}

// Result aggregates the plan of every file.
type Result struct {
	Files     []*FileResult
	Missing   []MissingFile
	Conflicts []ConflictGroup
	Applied   int
	Attempted int
	// Suggested counts distinct edits before conflict resolution.
	Suggested int
	status    map[diag.Edit]EditStatus
}

// Status returns what happened to edit e.
func (r *Result) Status(e diag.Edit) EditStatus {
	e.Path = source.NormalizePath(e.Path)
	return r.status[e]
}

// DiagnosticStatus folds the statuses of d's edits: conflict wins over
// failure, failure over success. A diagnostic without edits is pending.
func (r *Result) DiagnosticStatus(d diag.Diagnostic) EditStatus {
	if len(d.Edits) == 0 {
		return EditPending
	}
	worst := EditApplied
	for _, e := range d.Edits {
		switch st := r.Status(e); st {
		case EditConflict:
			return EditConflict
		case EditFailed, EditMissingFile, EditPending:
			worst = EditFailed
		}
	}
	return worst
}

// NewTexts maps every file with at least one accepted edit to its new text.
func (r *Result) NewTexts() map[string][]byte {
	out := make(map[string][]byte)
	for _, f := range r.Files {
		if f.Attempted > 0 {
			out[f.Path] = f.Text
		}
	}
	return out
}

// Err returns ErrConflictDetected when any file had conflicts.
func (r *Result) Err() error {
	if len(r.Conflicts) > 0 {
		return fmt.Errorf("%w in %d group(s)", ErrConflictDetected, len(r.Conflicts))
	}
	return nil
}

// Plan resolves conflicts and applies edits in memory. Files already present
// in fs are used as they are; others are loaded from disk. Nothing is written.
func Plan(ctx context.Context, fs *source.FileSet, edits []diag.Edit, rep Reporter) (*Result, error) {
	if fs == nil {
		return nil, fmt.Errorf("fix: FileSet is nil")
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "resolve", 0)

	byFile, paths := Collect(edits)
	res := &Result{status: make(map[diag.Edit]EditStatus)}
	for _, path := range paths {
		fileEdits := byFile[path]
		file, err := lookup(fs, path)
		if err != nil {
			res.Missing = append(res.Missing, MissingFile{Path: path, Err: err})
			for _, e := range fileEdits {
				res.mark(e, EditMissingFile)
			}
			res.Suggested += len(dedupEdits(fileEdits))
			if rep != nil {
				rep.MissingFile(path, err)
			}
			continue
		}

		resolution := Resolve(path, fileEdits)
		res.Suggested += len(fileEdits) - resolution.Duplicates
		for i := range resolution.Conflicts {
			g := &resolution.Conflicts[i]
			g.locate(file)
			for _, e := range g.Edits {
				res.mark(e, EditConflict)
			}
			if rep != nil {
				rep.Conflict(*g)
			}
		}
		res.Conflicts = append(res.Conflicts, resolution.Conflicts...)

		applied := ApplyEdits(file.Content, resolution.Accepted)
		for _, e := range resolution.Accepted {
			res.mark(e, EditApplied)
		}
		for _, failure := range applied.Failures {
			res.mark(failure.Edit, EditFailed)
			if rep != nil {
				rep.EditFailed(failure)
			}
		}
		res.Applied += applied.Applied
		res.Attempted += applied.Attempted
		res.Files = append(res.Files, &FileResult{
			Path:      path,
			Original:  file.Content,
			Text:      applied.Text,
			Applied:   applied.Applied,
			Attempted: applied.Attempted,
			Conflicts: resolution.Conflicts,
			Failures:  applied.Failures,
			virtual:   file.Flags&source.FileVirtual != 0,
		})
	}

	span.WithExtra("files", fmt.Sprint(len(res.Files))).
		WithExtra("conflicts", fmt.Sprint(len(res.Conflicts))).
		End(fmt.Sprintf("applied %d of %d", res.Applied, res.Attempted))
	if res.Suggested == 0 {
		return res, ErrNoFixes
	}
	return res, nil
}

func lookup(fs *source.FileSet, path string) (*source.File, error) {
	if f, ok := fs.GetByPath(path); ok {
		return f, nil
	}
	id, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	return fs.Get(id), nil
}

func (r *Result) mark(e diag.Edit, st EditStatus) {
	e.Path = source.NormalizePath(e.Path)
	r.status[e] = st
}

// Write stores every changed, non-virtual file, keeping its permissions.
// Files are processed in path order; the first write error stops the loop.
func (r *Result) Write(ctx context.Context, baseDir string) ([]FileChange, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "write", 0)
	defer span.End("")

	changes := make([]FileChange, 0, len(r.Files))
	for _, f := range r.Files {
		if !f.Changed() || f.virtual {
			continue
		}
		mode := os.FileMode(0o644)
		if info, err := os.Stat(f.Path); err == nil {
			mode = info.Mode()
		}
		if err := os.WriteFile(f.Path, f.Text, mode); err != nil {
			return changes, fmt.Errorf("write %s: %w", f.Path, err)
		}
		display := f.Path
		if baseDir != "" {
			if rel, err := source.RelativePath(f.Path, baseDir); err == nil {
				display = rel
			}
		}
		changes = append(changes, FileChange{Path: display, EditCount: f.Applied})
	}
	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Path < changes[j].Path
	})
	return changes, nil
}
