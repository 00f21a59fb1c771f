package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"tidy/internal/aggregate"
	"tidy/internal/fix"
)

// Reporter prints the recoverable problems of fix planning. It implements
// fix.Reporter.
type Reporter struct {
	W     io.Writer
	Color bool

	lastConflictPath string
	warn             *color.Color
}

var _ fix.Reporter = (*Reporter)(nil)

// NewReporter returns a Reporter writing to w.
func NewReporter(w io.Writer, useColor bool) *Reporter {
	warn := color.New(color.FgYellow, color.Bold)
	if useColor {
		warn.EnableColor()
	} else {
		warn.DisableColor()
	}
	return &Reporter{W: w, Color: useColor, warn: warn}
}

// Conflict prints g. Groups of one file are printed under a single header.
func (r *Reporter) Conflict(g fix.ConflictGroup) {
	var b strings.Builder
	if g.Path != r.lastConflictPath {
		fmt.Fprintf(&b, "There are conflicting changes to %s:\n", g.Path)
		r.lastConflictPath = g.Path
	}
	WriteConflictGroup(&b, g)
	_, _ = io.WriteString(r.W, b.String())
}

// MissingFile reports a described file that could not be read.
func (r *Reporter) MissingFile(path string, err error) {
	_, _ = fmt.Fprintf(r.W, "Described file '%s' doesn't exist. Ignoring...\n", path)
}

// EditFailed reports an edit that no longer fits its file.
func (r *Reporter) EditFailed(f fix.EditFailure) {
	_, _ = fmt.Fprintf(r.W, "%s %v\n", r.warn.Sprint("warning:"), f)
}

// WriteConflictGroup renders one group:
//
//	The following changes conflict:
//	  Replace 1:11-1:15 with "text"
//	  Remove 1:13-1:20
//	  Insert at 2:1 text
//
// Positions are taken from g.Spans; without them byte offsets are shown.
func WriteConflictGroup(b *strings.Builder, g fix.ConflictGroup) {
	b.WriteString("The following changes conflict:\n")
	for i, e := range g.Edits {
		var span fix.EditSpan
		located := i < len(g.Spans)
		if located {
			span = g.Spans[i]
		}
		pos := func(line, col uint32, off uint32) string {
			if located {
				return fmt.Sprintf("%d:%d", line, col)
			}
			return fmt.Sprintf("@%d", off)
		}
		start := pos(span.Start.Line, span.Start.Col, e.Offset)
		if e.Length == 0 {
			fmt.Fprintf(b, "  Insert at %s %s\n", start, e.NewText)
			continue
		}
		end := pos(span.End.Line, span.End.Col, e.End()-1)
		if e.NewText == "" {
			fmt.Fprintf(b, "  Remove %s-%s\n", start, end)
			continue
		}
		fmt.Fprintf(b, "  Replace %s-%s with %q\n", start, end, e.NewText)
	}
}

// WriteStats prints the suppression summary. Nothing is written when no
// diagnostic was dropped. Zero categories are left out.
func WriteStats(w io.Writer, s aggregate.Snapshot) error {
	ignored := s.Ignored()
	if ignored == 0 {
		return nil
	}
	var parts []string
	if s.IgnoredByLocality > 0 {
		parts = append(parts, fmt.Sprintf("%d in non-user code", s.IgnoredByLocality))
	}
	if s.IgnoredBySuppression > 0 {
		parts = append(parts, fmt.Sprintf("%d NOLINT", s.IgnoredBySuppression))
	}
	if s.IgnoredByFilter > 0 {
		parts = append(parts, fmt.Sprintf("%d with check filters", s.IgnoredByFilter))
	}
	if s.IgnoredByLineRange > 0 {
		parts = append(parts, fmt.Sprintf("%d due to line filter", s.IgnoredByLineRange))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Suppressed %d warnings (%s).\n", ignored, strings.Join(parts, ", "))
	if s.IgnoredByLocality > 0 {
		b.WriteString("Use --header-filter='.*' to display errors from all non-system headers.\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
