package diagfmt

import (
	"path/filepath"

	"tidy/internal/diag"
	"tidy/internal/fix"
	"tidy/internal/source"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto shows paths relative to the base directory when they lie
	// inside it.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// ParsePathMode accepts "auto", "absolute", "relative" and "basename".
func ParsePathMode(s string) (PathMode, bool) {
	switch s {
	case "", "auto":
		return PathModeAuto, true
	case "absolute":
		return PathModeAbsolute, true
	case "relative":
		return PathModeRelative, true
	case "basename":
		return PathModeBasename, true
	}
	return PathModeAuto, false
}

// FixStatusFunc tells what happened to the edits of a diagnostic. Nil means
// fixes were not applied.
type FixStatusFunc func(d diag.Diagnostic) fix.EditStatus

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	ShowNotes bool
	// Context prints the source line under each message with a caret.
	Context   bool
	FixStatus FixStatusFunc
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // добавить line/col
	PathMode         PathMode
	Max              int // обрезка вывода
	IncludeNotes     bool
	IncludeFixes     bool
	IncludePreviews  bool
	FixStatus        FixStatusFunc
}

func displayPath(fs *source.FileSet, path string, mode PathMode) string {
	if path == "" {
		return ""
	}
	base := ""
	if fs != nil {
		base = fs.BaseDir()
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return source.NormalizePath(abs)
		}
	case PathModeBasename:
		return filepath.Base(path)
	case PathModeRelative:
		if base == "" {
			return path
		}
		absPath, err1 := filepath.Abs(path)
		absBase, err2 := filepath.Abs(base)
		if err1 == nil && err2 == nil {
			if rel, err := filepath.Rel(absBase, absPath); err == nil {
				return filepath.ToSlash(rel)
			}
		}
	case PathModeAuto:
		if base == "" {
			return path
		}
		if rel, err := source.RelativePath(path, base); err == nil {
			return rel
		}
	}
	return path
}
