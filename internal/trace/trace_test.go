package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "error", "phase", "detail", "DEBUG"} {
		if _, err := ParseLevel(s); err != nil {
			t.Errorf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestShouldEmit(t *testing.T) {
	if LevelPhase.ShouldEmit(ScopeUnit) {
		t.Error("phase level must skip unit events")
	}
	if !LevelDetail.ShouldEmit(ScopeUnit) || LevelDetail.ShouldEmit(ScopeCheck) {
		t.Error("detail level must stop at unit scope")
	}
	if !LevelDebug.ShouldEmit(ScopeCheck) {
		t.Error("debug level emits everything")
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)

	span := Begin(tr, ScopePass, "resolve", 0)
	span.WithExtra("files", "2").WithExtra("conflicts", "1").End("applied 3 of 4")
	Begin(tr, ScopeUnit, "unit:skipped.go", span.ID()).End("")

	out := buf.String()
	if !strings.Contains(out, "→ resolve") {
		t.Errorf("missing begin line:\n%s", out)
	}
	if !strings.Contains(out, "← resolve (applied 3 of 4) {conflicts=1, files=2}") {
		t.Errorf("missing end line with sorted extras:\n%s", out)
	}
	if strings.Contains(out, "skipped.go") {
		t.Errorf("unit span emitted at phase level:\n%s", out)
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeDriver, "missing_file", "gone.go", 0)

	var ev map[string]any
	if err := json.Unmarshal(buf.Bytes(), &ev); err != nil {
		t.Fatalf("invalid NDJSON %q: %v", buf.String(), err)
	}
	if ev["kind"] != "point" || ev["name"] != "missing_file" || ev["detail"] != "gone.go" {
		t.Errorf("unexpected event: %v", ev)
	}
}

func TestRingTracerWraps(t *testing.T) {
	r := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(r, ScopeDriver, name, "", 0)
	}
	snap := r.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap[0].Seq >= snap[1].Seq {
		t.Error("sequence numbers must increase")
	}
}

func TestNewBothModeExposesRing(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Begin(tr, ScopeDriver, "run", 0).End("")
	ring := RingOf(tr)
	if ring == nil {
		t.Fatal("expected a ring tracer")
	}
	if len(ring.Snapshot()) != 2 || buf.Len() == 0 {
		t.Fatalf("events not fanned out: ring=%d stream=%d", len(ring.Snapshot()), buf.Len())
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatal("expected Nop without tracer")
	}
	r := NewRingTracer(4, LevelDebug)
	ctx := WithParent(WithTracer(context.Background(), r), 42)
	if FromContext(ctx) != Tracer(r) || ParentFrom(ctx) != 42 {
		t.Fatal("tracer or parent lost")
	}
}

func TestDisabledSpanIsSafe(t *testing.T) {
	span := Begin(Nop, ScopeDriver, "run", 0)
	if d := span.WithExtra("k", "v").End("x"); d != 0 {
		t.Fatalf("disabled span reported duration %v", d)
	}
}

func TestParseEnums(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatAuto {
		t.Errorf("ParseFormat(\"\") = %v, %v", f, err)
	}
	if f, err := ParseFormat("json"); err != nil || f != FormatNDJSON {
		t.Errorf("ParseFormat(json) = %v, %v", f, err)
	}
	if m, err := ParseMode(" Both "); err != nil || m != ModeBoth {
		t.Errorf("ParseMode(Both) = %v, %v", m, err)
	}
	_, err := ParseMode("disk")
	if err == nil || !strings.Contains(err.Error(), "stream|ring|both") {
		t.Errorf("ParseMode(disk) error = %v", err)
	}
}

func TestSpanFieldsLastWins(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Begin(tr, ScopeUnit, "unit", 0).WithExtra("path", "a.go").WithExtra("path", "b.go").End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want begin and end events, got %q", buf.String())
	}
	var ev struct {
		Kind   string            `json:"kind"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal([]byte(lines[1]), &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Kind != "end" || ev.Fields["path"] != "b.go" {
		t.Errorf("unexpected end event: %+v", ev)
	}
}
