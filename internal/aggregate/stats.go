package aggregate

import "sync/atomic"

// Stats counts how diagnostics were finalized during a run. Counters are
// shared by concurrently running units; only Reset clears them.
type Stats struct {
	displayed            atomic.Int64
	ignoredByFilter      atomic.Int64
	ignoredBySuppression atomic.Int64
	ignoredByLocality    atomic.Int64
	ignoredByLineRange   atomic.Int64
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Displayed            int64 `json:"displayed"`
	IgnoredByFilter      int64 `json:"ignored_by_filter"`
	IgnoredBySuppression int64 `json:"ignored_by_suppression"`
	IgnoredByLocality    int64 `json:"ignored_by_locality"`
	IgnoredByLineRange   int64 `json:"ignored_by_line_range"`
}

// Ignored returns the number of discarded diagnostics.
func (s Snapshot) Ignored() int64 {
	return s.IgnoredByFilter + s.IgnoredBySuppression + s.IgnoredByLocality + s.IgnoredByLineRange
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Displayed:            s.displayed.Load(),
		IgnoredByFilter:      s.ignoredByFilter.Load(),
		IgnoredBySuppression: s.ignoredBySuppression.Load(),
		IgnoredByLocality:    s.ignoredByLocality.Load(),
		IgnoredByLineRange:   s.ignoredByLineRange.Load(),
	}
}

func (s *Stats) Reset() {
	s.displayed.Store(0)
	s.ignoredByFilter.Store(0)
	s.ignoredBySuppression.Store(0)
	s.ignoredByLocality.Store(0)
	s.ignoredByLineRange.Store(0)
}
