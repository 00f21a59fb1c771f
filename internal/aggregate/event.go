package aggregate

import (
	"fmt"
	"slices"

	"tidy/internal/diag"
)

// Event is one item of the stream a check produces for an analysis unit.
// A primary event opens a diagnostic; a note event extends the open one.
// Severity and Check are meaningful only for primary events.
type Event struct {
	Note     bool
	Severity diag.Severity
	Check    string
	Message  diag.Message
	Edits    []diag.Edit
}

// Consumer receives the event stream of one analysis unit.
type Consumer interface {
	Primary(sev diag.Severity, check string, msg diag.Message, edits ...diag.Edit)
	Note(msg diag.Message, edits ...diag.Edit) error
	Finish()
}

// InvariantViolation is returned when a note arrives while no diagnostic is
// open. It signals a broken producer and must abort the run.
type InvariantViolation struct {
	Unit string
	Note diag.Message
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("%s: note %q emitted without a primary diagnostic", e.Unit, e.Note.Text)
}

// Dispatch feeds ev to c.
func Dispatch(c Consumer, ev Event) error {
	if ev.Note {
		return c.Note(ev.Message, ev.Edits...)
	}
	c.Primary(ev.Severity, ev.Check, ev.Message, ev.Edits...)
	return nil
}

// Replay feeds a recorded stream to c and finishes it. It stops at the first
// error.
func Replay(c Consumer, events []Event) error {
	for _, ev := range events {
		if err := Dispatch(c, ev); err != nil {
			return err
		}
	}
	c.Finish()
	return nil
}

// Recorder forwards events to Next and keeps a copy of the stream.
type Recorder struct {
	Next   Consumer
	Events []Event
}

func (r *Recorder) Primary(sev diag.Severity, check string, msg diag.Message, edits ...diag.Edit) {
	r.Events = append(r.Events, Event{Severity: sev, Check: check, Message: msg, Edits: slices.Clone(edits)})
	if r.Next != nil {
		r.Next.Primary(sev, check, msg, edits...)
	}
}

func (r *Recorder) Note(msg diag.Message, edits ...diag.Edit) error {
	r.Events = append(r.Events, Event{Note: true, Message: msg, Edits: slices.Clone(edits)})
	if r.Next != nil {
		return r.Next.Note(msg, edits...)
	}
	return nil
}

func (r *Recorder) Finish() {
	if r.Next != nil {
		r.Next.Finish()
	}
}
