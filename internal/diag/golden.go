package diag

import (
	"fmt"
	"strings"

	"tidy/internal/source"
)

type goldenDiagnostic struct {
	Severity string
	Check    string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatShortDiagnostics renders diagnostics one per line in the order given:
//
//	warning check-name path:line:col message
//
// Paths are shown relative to the FileSet base directory. Messages without a
// location render as "-" in place of the position.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	rendered := make([]goldenDiagnostic, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		rendered = append(rendered, resolve(fs, d.Severity.Label(), d.Check, d.Message))
		if includeNotes {
			for _, note := range d.Notes {
				rendered = append(rendered, resolve(fs, "note", d.Check, note))
			}
		}
	}

	var b strings.Builder
	for i, d := range rendered {
		if d.Path == "" {
			fmt.Fprintf(&b, "%s %s - %s", d.Severity, d.Check, d.Message)
		} else {
			fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Check, d.Path, d.Line, d.Column, d.Message)
		}
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func resolve(fs *source.FileSet, sev, check string, msg Message) goldenDiagnostic {
	g := goldenDiagnostic{Severity: sev, Check: check, Message: sanitizeMessage(msg.Text)}
	if !msg.HasLocation() {
		return g
	}
	g.Path = msg.Path
	if fs == nil {
		return g
	}
	if f, ok := fs.GetByPath(msg.Path); ok {
		pos := f.Position(msg.Offset)
		g.Path = f.DisplayPath(fs.BaseDir())
		g.Line, g.Column = pos.Line, pos.Col
	}
	return g
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
