package trace

import (
	"sync/atomic"
	"time"
)

var (
	seq       atomic.Uint64
	spanIDs   atomic.Uint64
	startTime = time.Now()
)

// NextSeq returns the next event sequence number.
func NextSeq() uint64 { return seq.Add(1) }

// NextSpanID returns a fresh span ID.
func NextSpanID() uint64 { return spanIDs.Add(1) }

func accepts(t Tracer, scope Scope) bool {
	return t != nil && t.Enabled() && t.Level().ShouldEmit(scope)
}

// Span is one operation between Begin and End. A span created for a
// disabled tracer records nothing.
type Span struct {
	tracer  Tracer
	event   Event // template for the end event
	started time.Time
}

// Begin emits the begin event of a span under parent (0 for a root span).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if !accepts(t, scope) {
		return &Span{}
	}
	s := &Span{
		tracer:  t,
		started: time.Now(),
		event: Event{
			Scope:    scope,
			SpanID:   NextSpanID(),
			ParentID: parent,
			Name:     name,
		},
	}
	begin := s.event
	begin.Time = s.started
	begin.Kind = KindSpanBegin
	t.Emit(&begin)
	return s
}

// WithExtra attaches a field to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s != nil && s.tracer != nil {
		s.event.Fields = append(s.event.Fields, Field{Key: key, Value: value})
	}
	return s
}

// End emits the end event and returns the span duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil {
		return 0
	}
	end := s.event
	end.Time = time.Now()
	end.Kind = KindSpanEnd
	end.Detail = detail
	s.tracer.Emit(&end)
	return end.Time.Sub(s.started)
}

// ID returns the span ID, 0 for a disabled span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.event.SpanID
}

// Point emits an instant event such as a skipped file.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if !accepts(t, scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent,
		Name:     name,
		Detail:   detail,
	})
}
