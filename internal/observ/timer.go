// Package observ measures the phases of a tidy run for --timings.
package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

type span struct {
	name    string
	started time.Time
	dur     time.Duration
	note    string
	open    bool
}

// Timer records phase durations. It is safe for concurrent use; a nil
// Timer records nothing.
type Timer struct {
	mu    sync.Mutex
	spans []span
}

func NewTimer() *Timer { return &Timer{} }

// Begin opens phase name and returns the handle passed to End.
func (t *Timer) Begin(name string) int {
	if t == nil {
		return -1
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.spans = append(t.spans, span{name: name, started: time.Now(), open: true})
	return len(t.spans) - 1
}

// End closes the phase opened by Begin. Unknown or closed handles are
// ignored.
func (t *Timer) End(idx int, note string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || idx >= len(t.spans) || !t.spans[idx].open {
		return
	}
	s := &t.spans[idx]
	s.dur = time.Since(s.started)
	s.note = note
	s.open = false
}

// Measure runs fn as phase name and notes a failure.
func (t *Timer) Measure(name string, fn func() error) error {
	idx := t.Begin(name)
	err := fn()
	note := ""
	if err != nil {
		note = "failed"
	}
	t.End(idx, note)
	return err
}

// PhaseReport is one row of a Report. Phases begun more than once under
// the same name are folded into one row.
type PhaseReport struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report lists the closed phases in order of first appearance.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	var rep Report
	rows := make(map[string]int)
	var total time.Duration
	for _, s := range t.spans {
		if s.open {
			continue
		}
		i, seen := rows[s.name]
		if !seen {
			i = len(rep.Phases)
			rows[s.name] = i
			rep.Phases = append(rep.Phases, PhaseReport{Name: s.name})
		}
		row := &rep.Phases[i]
		row.Count++
		row.DurationMS += millis(s.dur)
		if s.note != "" {
			row.Note = s.note
		}
		total += s.dur
	}
	rep.TotalMS = millis(total)
	return rep
}

// Summary renders the report as the --timings table.
func (t *Timer) Summary() string {
	rep := t.Report()
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range rep.Phases {
		name := p.Name
		if p.Count > 1 {
			name = fmt.Sprintf("%s x%d", p.Name, p.Count)
		}
		share := 0.0
		if rep.TotalMS > 0 {
			share = 100 * p.DurationMS / rep.TotalMS
		}
		fmt.Fprintf(&b, "  %-20s %9.2f ms %5.1f%%", name, p.DurationMS, share)
		if p.Note != "" {
			b.WriteString("  // " + p.Note)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-20s %9.2f ms\n", "total", rep.TotalMS)
	return b.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
