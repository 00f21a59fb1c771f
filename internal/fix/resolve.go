package fix

import (
	"sort"

	"tidy/internal/diag"
	"tidy/internal/source"
)

// EditSpan is the human-readable extent of an edit. For insertions End equals
// Start; otherwise End is the position of the last replaced byte.
type EditSpan struct {
	Start source.LineCol
	End   source.LineCol
}

// ConflictGroup is a maximal run of two or more edits of one file whose
// ranges overlap directly or through each other.
type ConflictGroup struct {
	Path  string
	Edits []diag.Edit
	// Spans parallels Edits once the file text is known; nil otherwise.
	Spans []EditSpan
}

// Resolution is the outcome of conflict resolution for one file.
type Resolution struct {
	Path string
	// Accepted edits are sorted by offset and pairwise non-overlapping.
	Accepted   []diag.Edit
	Conflicts  []ConflictGroup
	Duplicates int
}

// HasConflicts reports whether any group was found.
func (r Resolution) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// Collect groups edits by normalized target path. Paths are returned sorted.
func Collect(edits []diag.Edit) (map[string][]diag.Edit, []string) {
	byFile := make(map[string][]diag.Edit)
	for _, e := range edits {
		e.Path = source.NormalizePath(e.Path)
		byFile[e.Path] = append(byFile[e.Path], e)
	}
	paths := make([]string, 0, len(byFile))
	for p := range byFile {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return byFile, paths
}

// CollectFromDiagnostics gathers the edits of every diagnostic.
func CollectFromDiagnostics(diags []diag.Diagnostic) (map[string][]diag.Edit, []string) {
	var all []diag.Edit
	for i := range diags {
		all = append(all, diags[i].Edits...)
	}
	return Collect(all)
}

// Resolve deduplicates the edits of one file, sorts them by offset and length,
// and splits them into accepted edits and conflict groups. An edit joins the
// current run when it starts before the run ends, or at the same offset as
// the previous edit (this catches insertions that coincide with another
// edit's start). Edits outside conflicting runs stay accepted.
func Resolve(path string, edits []diag.Edit) Resolution {
	res := Resolution{Path: path}
	if len(edits) == 0 {
		return res
	}

	unique := dedupEdits(edits)
	res.Duplicates = len(edits) - len(unique)
	sortEdits(unique)

	runStart := 0
	runEnd := unique[0].Limit()
	flush := func(end int) {
		run := unique[runStart:end]
		if len(run) == 1 {
			res.Accepted = append(res.Accepted, run[0])
			return
		}
		res.Conflicts = append(res.Conflicts, ConflictGroup{
			Path:  path,
			Edits: append([]diag.Edit(nil), run...),
		})
	}
	for i := 1; i < len(unique); i++ {
		e, prev := unique[i], unique[i-1]
		if uint64(e.Offset) < runEnd || e.Offset == prev.Offset {
			runEnd = max(runEnd, e.Limit())
			continue
		}
		flush(i)
		runStart, runEnd = i, e.Limit()
	}
	flush(len(unique))
	return res
}

func dedupEdits(edits []diag.Edit) []diag.Edit {
	seen := make(map[diag.Edit]struct{}, len(edits))
	out := make([]diag.Edit, 0, len(edits))
	for _, e := range edits {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

// sortEdits orders by offset, then length; the replacement text breaks the
// remaining ties so the order does not depend on arrival.
func sortEdits(edits []diag.Edit) {
	sort.SliceStable(edits, func(i, j int) bool {
		a, b := edits[i], edits[j]
		if a.Offset != b.Offset {
			return a.Offset < b.Offset
		}
		if a.Length != b.Length {
			return a.Length < b.Length
		}
		return a.NewText < b.NewText
	})
}

// SpanOf computes the line/column extent of e in f.
func SpanOf(f *source.File, e diag.Edit) EditSpan {
	start := f.Position(e.Offset)
	if e.Length == 0 {
		return EditSpan{Start: start, End: start}
	}
	return EditSpan{Start: start, End: f.Position(e.End() - 1)}
}

func (g *ConflictGroup) locate(f *source.File) {
	if f == nil {
		return
	}
	g.Spans = make([]EditSpan, len(g.Edits))
	for i, e := range g.Edits {
		g.Spans[i] = SpanOf(f, e)
	}
}
