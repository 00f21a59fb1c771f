package observ

import (
	"errors"
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("load")
	tm.End(idx, "3 files")
	_ = tm.Measure("check", func() error { return errors.New("boom") })

	rep := tm.Report()
	if len(rep.Phases) != 2 {
		t.Fatalf("phases = %+v", rep.Phases)
	}
	if rep.Phases[0].Note != "3 files" || rep.Phases[1].Note != "failed" {
		t.Errorf("notes = %q, %q", rep.Phases[0].Note, rep.Phases[1].Note)
	}
	sum := tm.Summary()
	for _, want := range []string{"timings:", "load", "check", "total"} {
		if !strings.Contains(sum, want) {
			t.Errorf("summary lacks %q:\n%s", want, sum)
		}
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	if rep := tm.Report(); len(rep.Phases) != 0 {
		t.Errorf("nil timer recorded %+v", rep)
	}
}

func TestTimerFoldsRepeatedPhases(t *testing.T) {
	tm := NewTimer()
	for range 3 {
		tm.End(tm.Begin("unit"), "")
	}
	open := tm.Begin("write")
	tm.End(open, "2 files")
	tm.End(open, "again")
	tm.Begin("never_closed")

	rep := tm.Report()
	if len(rep.Phases) != 2 {
		t.Fatalf("phases = %+v", rep.Phases)
	}
	if rep.Phases[0].Name != "unit" || rep.Phases[0].Count != 3 {
		t.Errorf("unit row = %+v", rep.Phases[0])
	}
	if rep.Phases[1].Note != "2 files" {
		t.Errorf("closed phase note overwritten: %+v", rep.Phases[1])
	}
	if !strings.Contains(tm.Summary(), "unit x3") {
		t.Errorf("summary:\n%s", tm.Summary())
	}
}
