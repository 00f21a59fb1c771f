// Package aggregate turns the per-unit event stream produced by checks into
// finalized diagnostics.
//
// Each primary event opens a diagnostic; following note events attach to it.
// When the next primary arrives, or the unit finishes, the open diagnostic is
// finalized: it is dropped if its line carries a suppression marker, if its
// check is disabled, if it points outside the unit's main file and the header
// filter, or if it falls outside the configured line ranges. Every outcome is
// counted in Stats.
package aggregate

import (
	"regexp"

	"tidy/internal/diag"
	"tidy/internal/glob"
	"tidy/internal/source"
	"tidy/internal/suppress"
)

// LineSource gives the aggregator read access to analyzed text.
// *source.FileSet implements it.
type LineSource interface {
	RestOfLine(path string, off uint32) ([]byte, bool)
	Position(path string, off uint32) (source.LineCol, bool)
}

// Options configure the finalization of one unit.
type Options struct {
	Unit string // display name used in errors
	// MainFile is the path of the file the unit analyzes.
	MainFile string
	Checks   *glob.Chain
	// HeaderFilter selects other files whose diagnostics are kept. Nil keeps
	// none.
	HeaderFilter *regexp.Regexp
	LineFilter   LineFilter
	Lines        LineSource
}

// Outcome tells what finalization did with a diagnostic.
type Outcome uint8

const (
	Displayed Outcome = iota
	Suppressed
	Filtered
	OutOfScope
	OutsideLines
)

func (o Outcome) String() string {
	switch o {
	case Displayed:
		return "displayed"
	case Suppressed:
		return "suppressed"
	case Filtered:
		return "filtered"
	case OutOfScope:
		return "out_of_scope"
	case OutsideLines:
		return "outside_lines"
	}
	return "unknown"
}

// Aggregator is the Consumer for one unit. It is not safe for concurrent use;
// only the Stats it updates may be shared.
type Aggregator struct {
	opts  Options
	stats *Stats
	out   *diag.Bag

	mainFile string
	cur      diag.Diagnostic
	building bool
}

var _ Consumer = (*Aggregator)(nil)

// New returns an Aggregator writing kept diagnostics to out.
func New(opts Options, stats *Stats, out *diag.Bag) *Aggregator {
	if stats == nil {
		stats = &Stats{}
	}
	return &Aggregator{
		opts:     opts,
		stats:    stats,
		out:      out,
		mainFile: source.NormalizePath(opts.MainFile),
	}
}

// Primary finalizes the open diagnostic, if any, and opens a new one.
func (a *Aggregator) Primary(sev diag.Severity, check string, msg diag.Message, edits ...diag.Edit) {
	a.finalize()
	a.cur = diag.New(sev, check, msg).WithEdits(edits...)
	a.building = true
}

// Note attaches msg and its edits to the open diagnostic.
func (a *Aggregator) Note(msg diag.Message, edits ...diag.Edit) error {
	if !a.building {
		return &InvariantViolation{Unit: a.opts.Unit, Note: msg}
	}
	a.cur = a.cur.WithNote(msg).WithEdits(edits...)
	return nil
}

// Finish finalizes the open diagnostic. The aggregator can be reused.
func (a *Aggregator) Finish() {
	a.finalize()
}

// Handle dispatches a raw event.
func (a *Aggregator) Handle(ev Event) error {
	return Dispatch(a, ev)
}

func (a *Aggregator) finalize() {
	if !a.building {
		return
	}
	d := a.cur
	a.cur = diag.Diagnostic{}
	a.building = false

	switch a.Classify(d) {
	case Suppressed:
		a.stats.ignoredBySuppression.Add(1)
	case Filtered:
		a.stats.ignoredByFilter.Add(1)
	case OutOfScope:
		a.stats.ignoredByLocality.Add(1)
	case OutsideLines:
		a.stats.ignoredByLineRange.Add(1)
	default:
		a.stats.displayed.Add(1)
		if a.out != nil {
			a.out.Add(d)
		}
	}
}

// Classify runs the finalization checks in order; the first failing one
// decides. It does not touch Stats.
func (a *Aggregator) Classify(d diag.Diagnostic) Outcome {
	msg := d.Message
	if a.suppressed(msg) {
		return Suppressed
	}
	if !a.opts.Checks.IsEnabled(d.Check) {
		return Filtered
	}
	if !a.local(msg) {
		return OutOfScope
	}
	if !a.withinLines(msg) {
		return OutsideLines
	}
	return Displayed
}

func (a *Aggregator) suppressed(msg diag.Message) bool {
	if !msg.HasLocation() || a.opts.Lines == nil {
		return false
	}
	line, ok := a.opts.Lines.RestOfLine(msg.Path, msg.Offset)
	return ok && suppress.Contains(line)
}

func (a *Aggregator) local(msg diag.Message) bool {
	if !msg.HasLocation() {
		return true
	}
	path := source.NormalizePath(msg.Path)
	if path == a.mainFile {
		return true
	}
	return a.opts.HeaderFilter != nil && a.opts.HeaderFilter.MatchString(path)
}

func (a *Aggregator) withinLines(msg diag.Message) bool {
	if !msg.HasLocation() || !a.opts.LineFilter.Restricts(msg.Path) {
		return true
	}
	if a.opts.Lines == nil {
		return true
	}
	pos, ok := a.opts.Lines.Position(msg.Path, msg.Offset)
	if !ok {
		return true
	}
	return a.opts.LineFilter.Allows(msg.Path, pos.Line)
}

// Merge concatenates per-unit results in unit order, sorts them by path,
// offset and text, and removes duplicates keeping the first. The returned
// count is the number of duplicates dropped.
func Merge(units []*diag.Bag) ([]diag.Diagnostic, int) {
	total := 0
	for _, b := range units {
		if b != nil {
			total += b.Len()
		}
	}
	all := diag.NewBag(total)
	for _, b := range units {
		all.Merge(b)
	}
	all.Sort()
	removed := all.Dedup()
	return all.Items(), removed
}
