package diagfmt

import (
	"encoding/json"
	"io"

	"tidy/internal/aggregate"
	"tidy/internal/diag"
	"tidy/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File   string `json:"file"`
	Offset uint32 `json:"offset"`
	Line   uint32 `json:"line,omitempty"`
	Col    uint32 `json:"col,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string        `json:"message"`
	Location *LocationJSON `json:"location,omitempty"`
}

// EditJSON представляет одно редактирование для JSON
type EditJSON struct {
	Location    LocationJSON `json:"location"`
	Length      uint32       `json:"length"`
	NewText     string       `json:"new_text"`
	BeforeLines []string     `json:"before_lines,omitempty"`
	AfterLines  []string     `json:"after_lines,omitempty"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity  string        `json:"severity"`
	Check     string        `json:"check"`
	Message   string        `json:"message"`
	Location  *LocationJSON `json:"location,omitempty"`
	Notes     []NoteJSON    `json:"notes,omitempty"`
	Edits     []EditJSON    `json:"edits,omitempty"`
	FixStatus string        `json:"fix_status,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON    `json:"diagnostics"`
	Count       int                 `json:"count"`
	Stats       *aggregate.Snapshot `json:"stats,omitempty"`
}

func makeLocation(msg diag.Message, fs *source.FileSet, opts JSONOpts) *LocationJSON {
	if !msg.HasLocation() {
		return nil
	}
	loc := &LocationJSON{File: displayPath(fs, msg.Path, opts.PathMode), Offset: msg.Offset}
	if opts.IncludePositions && fs != nil {
		if pos, ok := fs.Position(msg.Path, msg.Offset); ok {
			loc.Line, loc.Col = pos.Line, pos.Col
		}
	}
	return loc
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(diags []diag.Diagnostic, fs *source.FileSet, stats *aggregate.Snapshot, opts JSONOpts) DiagnosticsOutput {
	maxItems := len(diags)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}
	out := make([]DiagnosticJSON, 0, maxItems)
	for _, d := range diags[:maxItems] {
		dj := DiagnosticJSON{
			Severity: d.Severity.Label(),
			Check:    d.Check,
			Message:  d.Message.Text,
			Location: makeLocation(d.Message, fs, opts),
		}
		if opts.IncludeNotes && len(d.Notes) > 0 {
			dj.Notes = make([]NoteJSON, len(d.Notes))
			for j, n := range d.Notes {
				dj.Notes[j] = NoteJSON{Message: n.Text, Location: makeLocation(n, fs, opts)}
			}
		}
		if opts.IncludeFixes && len(d.Edits) > 0 {
			dj.Edits = make([]EditJSON, len(d.Edits))
			for k, e := range d.Edits {
				ej := EditJSON{Length: e.Length, NewText: e.NewText}
				if loc := makeLocation(diag.Message{Path: e.Path, Offset: e.Offset}, fs, opts); loc != nil {
					ej.Location = *loc
				}
				if opts.IncludePreviews {
					if preview, err := buildEditPreview(fs, e); err == nil {
						ej.BeforeLines = preview.before
						ej.AfterLines = preview.after
					}
				}
				dj.Edits[k] = ej
			}
		}
		if opts.FixStatus != nil && len(d.Edits) > 0 {
			dj.FixStatus = opts.FixStatus(d).String()
		}
		out = append(out, dj)
	}
	return DiagnosticsOutput{Diagnostics: out, Count: len(out), Stats: stats}
}

// JSON writes diagnostics as one indented JSON document.
func JSON(w io.Writer, diags []diag.Diagnostic, fs *source.FileSet, stats *aggregate.Snapshot, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(diags, fs, stats, opts))
}

// Short writes one line per diagnostic: "warning check path:line:col message".
func Short(w io.Writer, diags []diag.Diagnostic, fs *source.FileSet, includeNotes bool) error {
	text := diag.FormatShortDiagnostics(diags, fs, includeNotes)
	if text == "" {
		return nil
	}
	_, err := io.WriteString(w, text+"\n")
	return err
}
