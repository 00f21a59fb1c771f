package checks

import (
	"context"
	"errors"
	"testing"

	"tidy/internal/aggregate"
	"tidy/internal/source"
)

func runCheck(t *testing.T, c Check, text string, options map[string]string) []aggregate.Event {
	t.Helper()
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("t.go", []byte(text)))
	rec := &aggregate.Recorder{}
	if err := Run(context.Background(), c, f, rec, options); err != nil {
		t.Fatalf("Run(%s): %v", c.Name(), err)
	}
	return rec.Events
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if err := r.AddModules(Builtin()...); err != nil {
		t.Fatalf("AddModules: %v", err)
	}
	want := []string{TodoCommentName, NFCName, TabIndentName, TrailingWhitespaceName}
	got := r.Names()
	if len(got) != len(want) {
		t.Fatalf("Names = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names = %v, want %v", got, want)
		}
	}
	if m, ok := r.Module(TabIndentName); !ok || m != "whitespace" {
		t.Errorf("Module(%s) = %q, %v", TabIndentName, m, ok)
	}
	if err := r.Add(NFCName, func() Check { return &nfc{} }); err == nil {
		t.Error("duplicate registration must fail")
	}

	created := r.Create(func(name string) bool { return name == TodoCommentName })
	if len(created) != 1 || created[0].Name() != TodoCommentName {
		t.Fatalf("Create = %v", created)
	}
}

func TestTrailingWhitespace(t *testing.T) {
	text := "clean\nspaces  \r\ntab\t\n"
	events := runCheck(t, &trailingWhitespace{}, text, nil)
	if len(events) != 4 {
		t.Fatalf("got %d events, want 2 primaries with notes: %+v", len(events), events)
	}
	first := events[0]
	if first.Note || first.Message.Offset != 6 || len(first.Edits) != 1 {
		t.Fatalf("unexpected first primary: %+v", first)
	}
	if e := first.Edits[0]; e.Offset != 12 || e.Length != 2 || e.NewText != "" {
		t.Errorf("unexpected edit: %+v", e)
	}
	if !events[1].Note || events[1].Message.Offset != 12 {
		t.Errorf("expected note at whitespace start: %+v", events[1])
	}
}

func TestTodoComment(t *testing.T) {
	text := "x := 1 // TODO: fix\n# TODO(ann): owned\ny // nothing to do\n/* TODO later */\n"
	events := runCheck(t, &todoComment{}, text, map[string]string{TodoCommentName + ".User": "bob"})
	if len(events) != 1 {
		t.Fatalf("got %d events: %+v", len(events), events)
	}
	if events[0].Message.Offset != 10 || events[0].Message.Text != "missing username/bug in TODO" {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if e := events[0].Edits[0]; e.Offset != 14 || e.Length != 0 || e.NewText != "(bob)" {
		t.Errorf("unexpected fix: %+v", e)
	}
}

func TestTodoCommentWithoutUser(t *testing.T) {
	t.Setenv("USER", "")
	events := runCheck(t, &todoComment{}, "// TODO: x\n", nil)
	if len(events) != 1 || len(events[0].Edits) != 0 {
		t.Fatalf("expected a finding without fix: %+v", events)
	}
}

func TestTodoCommentGlobalUser(t *testing.T) {
	events := runCheck(t, &todoComment{}, "# TODO fix\n", map[string]string{"User": "ann"})
	if len(events) != 1 || len(events[0].Edits) != 1 || events[0].Edits[0].NewText != "(ann)" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestTabIndent(t *testing.T) {
	events := runCheck(t, &tabIndent{}, "\t\tx\n  y\n", map[string]string{TabIndentName + ".IndentWidth": "2"})
	if len(events) != 1 {
		t.Fatalf("got %d events", len(events))
	}
	if e := events[0].Edits[0]; e.Offset != 0 || e.Length != 2 || e.NewText != "    " {
		t.Errorf("unexpected edit: %+v", e)
	}
}

func TestTabIndentBadOption(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("t.go", []byte("\tx\n")))
	err := Run(context.Background(), &tabIndent{}, f, &aggregate.Recorder{}, map[string]string{TabIndentName + ".IndentWidth": "wide"})
	var optErr *OptionError
	if !errors.As(err, &optErr) {
		t.Fatalf("Run = %v, want *OptionError", err)
	}
}

func TestNFC(t *testing.T) {
	text := "plain\ncafe\u0301\n"
	events := runCheck(t, &nfc{}, text, nil)
	if len(events) != 2 || events[0].Note || !events[1].Note {
		t.Fatalf("expected primary and note: %+v", events)
	}
	e := events[0].Edits[0]
	if e.Offset != 6 || e.NewText != "caf\u00e9" {
		t.Errorf("unexpected edit: %+v", e)
	}
}

type noteFirst struct{}

func (noteFirst) Name() string { return "broken" }

func (noteFirst) Check(c *Context) error {
	return c.consumer.Note(c.Report(0, "x").msg)
}

func TestRunPropagatesInvariantViolation(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("t.go", []byte("x")))
	agg := aggregate.New(aggregate.Options{Unit: "t.go"}, nil, nil)
	err := Run(context.Background(), noteFirst{}, f, agg, nil)
	var iv *aggregate.InvariantViolation
	if !errors.As(err, &iv) {
		t.Fatalf("Run = %v, want *InvariantViolation", err)
	}
}

type noteEdits struct{}

func (noteEdits) Name() string { return "note-edits" }

func (noteEdits) Check(c *Context) error {
	c.Report(0, "primary").Note(2, "see here").Replace(0, 1, "P").NoteFix(2, 1, "N").Emit()
	return nil
}

func TestNoteFixAttachesToNote(t *testing.T) {
	events := runCheck(t, noteEdits{}, "abc\n", nil)
	if len(events) != 2 || !events[1].Note {
		t.Fatalf("unexpected events: %+v", events)
	}
	// Replace после Note остаётся у основного сообщения
	if len(events[0].Edits) != 1 || events[0].Edits[0].NewText != "P" {
		t.Errorf("primary edits = %+v", events[0].Edits)
	}
	if len(events[1].Edits) != 1 || events[1].Edits[0].NewText != "N" {
		t.Errorf("note edits = %+v", events[1].Edits)
	}
}
