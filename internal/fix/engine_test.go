package fix

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tidy/internal/diag"
	"tidy/internal/source"
)

type recordingReporter struct {
	conflicts []ConflictGroup
	missing   []string
	failed    []EditFailure
}

func (r *recordingReporter) Conflict(g ConflictGroup) { r.conflicts = append(r.conflicts, g) }
func (r *recordingReporter) MissingFile(path string, _ error) { r.missing = append(r.missing, path) }
func (r *recordingReporter) EditFailed(f EditFailure) { r.failed = append(r.failed, f) }

func TestPlanConflictsKeepOtherEdits(t *testing.T) {
	fs := source.NewFileSet()
	fs.AddVirtual("f.txt", []byte("0123456789abcdefghijklmnopqrstuvwxyz"))

	keep := edit(20, 5, "#")
	edits := []diag.Edit{edit(10, 5, "A"), edit(12, 8, "B"), keep}
	rep := &recordingReporter{}
	res, err := Plan(context.Background(), fs, edits, rep)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if got := string(res.NewTexts()["f.txt"]); got != "0123456789abcdefghij#pqrstuvwxyz" {
		t.Fatalf("new text = %q", got)
	}
	if res.Applied != 1 || res.Attempted != 1 || res.Suggested != 3 {
		t.Errorf("Applied/Attempted/Suggested = %d/%d/%d", res.Applied, res.Attempted, res.Suggested)
	}
	if len(rep.conflicts) != 1 || len(rep.conflicts[0].Spans) != 2 {
		t.Fatalf("conflict not reported with spans: %+v", rep.conflicts)
	}
	if span := rep.conflicts[0].Spans[1]; span.Start.Col != 13 || span.End.Col != 20 {
		t.Errorf("second span = %+v", span)
	}
	if res.Status(keep) != EditApplied || res.Status(edits[0]) != EditConflict {
		t.Errorf("statuses: keep=%s first=%s", res.Status(keep), res.Status(edits[0]))
	}
	if !errors.Is(res.Err(), ErrConflictDetected) {
		t.Errorf("Err() = %v, want ErrConflictDetected", res.Err())
	}
}

func TestPlanMissingFile(t *testing.T) {
	fs := source.NewFileSet()
	fs.AddVirtual("present.txt", []byte("abc"))
	missingPath := filepath.Join(t.TempDir(), "gone.txt")

	rep := &recordingReporter{}
	res, err := Plan(context.Background(), fs, []diag.Edit{
		{Path: missingPath, Offset: 0, Length: 1, NewText: "x"},
		{Path: "present.txt", Offset: 0, Length: 1, NewText: "A"},
	}, rep)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(res.Missing) != 1 || len(rep.missing) != 1 {
		t.Fatalf("missing file not reported: %+v", res.Missing)
	}
	if got := string(res.NewTexts()["present.txt"]); got != "Abc" {
		t.Errorf("other files must proceed, got %q", got)
	}
	if res.Err() != nil {
		t.Errorf("missing file is not a conflict: %v", res.Err())
	}
}

func TestPlanStaleEdit(t *testing.T) {
	fs := source.NewFileSet()
	fs.AddVirtual("f.txt", []byte("tiny"))
	rep := &recordingReporter{}
	res, err := Plan(context.Background(), fs, []diag.Edit{edit(100, 1, "x"), edit(0, 1, "T")}, rep)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if res.Applied != 1 || res.Attempted != 2 || len(rep.failed) != 1 {
		t.Fatalf("Applied=%d Attempted=%d failed=%v", res.Applied, res.Attempted, rep.failed)
	}
	d := diag.NewWarning("c", diag.Message{Text: "m"}).WithEdits(edit(100, 1, "x"))
	if st := res.DiagnosticStatus(d); st != EditFailed {
		t.Errorf("DiagnosticStatus = %s, want failed", st)
	}
}

func TestPlanNoEdits(t *testing.T) {
	res, err := Plan(context.Background(), source.NewFileSet(), nil, nil)
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("Plan = %v, want ErrNoFixes", err)
	}
	if len(res.NewTexts()) != 0 {
		t.Fatal("no file may change")
	}
}

func TestWriteKeepsMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.sh")
	if err := os.WriteFile(path, []byte("echo hi  \n"), 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}
	fs := source.NewFileSetWithBase(dir)
	if _, err := fs.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	res, err := Plan(context.Background(), fs, []diag.Edit{{Path: path, Offset: 7, Length: 2}}, nil)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	changes, err := res.Write(context.Background(), dir)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(changes) != 1 || changes[0].Path != "script.sh" || changes[0].EditCount != 1 {
		t.Fatalf("changes = %+v", changes)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "echo hi\n" {
		t.Errorf("file = %q", got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Errorf("mode = %v, want 0755", info.Mode().Perm())
	}
}

func TestWriteSkipsVirtualFiles(t *testing.T) {
	fs := source.NewFileSet()
	fs.AddVirtual("virtual.txt", []byte("abc"))
	res, err := Plan(context.Background(), fs, []diag.Edit{{Path: "virtual.txt", Length: 1, NewText: "A"}}, nil)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	changes, err := res.Write(context.Background(), "")
	if err != nil || len(changes) != 0 {
		t.Fatalf("Write = %v, %v", changes, err)
	}
}
