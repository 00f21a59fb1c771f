package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"tidy/internal/diag"
	"tidy/internal/fix"
	"tidy/internal/source"
)

type palette struct {
	path    *color.Color
	warning *color.Color
	err     *color.Color
	note    *color.Color
	check   *color.Color
	caret   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		path:    color.New(color.Bold),
		warning: color.New(color.FgMagenta, color.Bold),
		err:     color.New(color.FgRed, color.Bold),
		note:    color.New(color.FgCyan, color.Bold),
		check:   color.New(color.FgHiBlack),
		caret:   color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.path, p.warning, p.err, p.note, p.check, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	if sev == diag.SevError {
		return p.err
	}
	return p.warning
}

// Pretty writes diagnostics in compiler style, in the order given:
//
//	<path>:<line>:<col>: warning: <message> [<check>]
//
// followed, when enabled, by the source line with a caret, the notes, and a
// FIX-IT note telling what happened to the suggested edits.
func Pretty(w io.Writer, diags []diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	var b strings.Builder
	for _, d := range diags {
		sev := p.severity(d.Severity)
		writeLine(&b, fs, opts, p, d.Message, sev.Sprint(d.Severity.Label()+":"), " "+p.check.Sprint("["+d.Check+"]"))
		if opts.ShowNotes {
			for _, n := range d.Notes {
				writeLine(&b, fs, opts, p, n, p.note.Sprint("note:"), "")
			}
		}
		if opts.FixStatus != nil && len(d.Edits) > 0 {
			at := diag.Message{Path: d.Edits[0].Path, Offset: d.Edits[0].Offset}
			at.Text = fixNote(opts.FixStatus(d))
			writeLine(&b, fs, PrettyOpts{PathMode: opts.PathMode}, p, at, p.note.Sprint("note:"), "")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func fixNote(st fix.EditStatus) string {
	switch st {
	case fix.EditApplied:
		return "FIX-IT applied suggested code changes"
	case fix.EditConflict:
		return "FIX-IT detected conflicts with other changes"
	default:
		return "FIX-IT failed"
	}
}

func writeLine(b *strings.Builder, fs *source.FileSet, opts PrettyOpts, p palette, msg diag.Message, label, suffix string) {
	var file *source.File
	var pos source.LineCol
	if msg.HasLocation() && fs != nil {
		if f, ok := fs.GetByPath(msg.Path); ok {
			file = f
			pos = f.Position(msg.Offset)
		}
	}
	switch {
	case file != nil:
		b.WriteString(p.path.Sprintf("%s:%d:%d:", displayPath(fs, file.Path, opts.PathMode), pos.Line, pos.Col))
		b.WriteByte(' ')
	case msg.HasLocation():
		b.WriteString(p.path.Sprint(displayPath(fs, msg.Path, opts.PathMode) + ":"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(b, "%s %s%s\n", label, msg.Text, suffix)
	if opts.Context && file != nil {
		writeContext(b, file, pos, p)
	}
}

// writeContext prints the line at pos and a caret under its column. Tabs in
// the prefix are kept so the caret lines up in any tab width.
func writeContext(b *strings.Builder, f *source.File, pos source.LineCol, p palette) {
	line := f.GetLine(pos.Line)
	b.WriteString(line)
	b.WriteByte('\n')
	col := int(pos.Col) - 1
	if col > len(line) {
		col = len(line)
	}
	var pad strings.Builder
	for _, r := range line[:col] {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	b.WriteString(pad.String())
	b.WriteString(p.caret.Sprint("^"))
	b.WriteByte('\n')
}
