package trace

import (
	"sort"
	"time"
)

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd
	// KindPoint represents an instant event.
	KindPoint
)

var kindNames = []string{KindSpanBegin: "begin", KindSpanEnd: "end", KindPoint: "point"}

func (k Kind) String() string { return nameOf(kindNames, k) }

// Scope indicates the granularity of the event. Coarser scopes have lower
// values.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // the run
	ScopePass                    // resolve, apply, write
	ScopeUnit                    // one analyzed file
	ScopeCheck                   // one check on one file
)

var scopeNames = []string{ScopeDriver: "driver", ScopePass: "pass", ScopeUnit: "unit", ScopeCheck: "check"}

func (s Scope) String() string { return nameOf(scopeNames, s) }

// Field is one key/value attached to a span end.
type Field struct {
	Key   string
	Value string
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time
	Seq      uint64 // stamped by the tracer that stores the event
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 if root
	Name     string // "run", "unit", "resolve", a check name
	Detail   string
	Fields   []Field
}

// SortedFields returns the fields of ev ordered by key. A key set twice
// keeps its last value.
func (ev *Event) SortedFields() []Field {
	if len(ev.Fields) == 0 {
		return nil
	}
	last := make(map[string]string, len(ev.Fields))
	for _, f := range ev.Fields {
		last[f.Key] = f.Value
	}
	out := make([]Field, 0, len(last))
	for k, v := range last {
		out = append(out, Field{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
