// Package progress carries per-file status events from the driver to
// whatever renders them.
package progress

import "time"

// Stage describes a phase of a run.
type Stage string

const (
	// StageLoad is reading and configuring input files.
	StageLoad Stage = "load"
	// StageCheck is running checks on a file.
	StageCheck Stage = "check"
	// StageFix is resolving and applying edits.
	StageFix Stage = "fix"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the file is being processed.
	StatusWorking Status = "working"
	// StatusDone indicates the file is done.
	StatusDone Status = "done"
	// StatusError indicates the file encountered an error.
	StatusError Status = "error"
)

// Event reports progress for a file, or for the whole run when File is empty.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
	// Findings is the number of diagnostics kept for File, set on StatusDone.
	Findings int
	Cached   bool
}

// Sink consumes progress events. Implementations must be safe for
// concurrent use.
type Sink interface {
	OnEvent(Event)
}

// Emit sends ev to s when s is non-nil.
func Emit(s Sink, ev Event) {
	if s != nil {
		s.OnEvent(ev)
	}
}
