package diag

import (
	"sort"
	"sync"
)

// Bag collects diagnostics from concurrent producers. Order of Add calls is
// not meaningful: call Sort before reading.
type Bag struct {
	mu    sync.Mutex
	items []Diagnostic
}

func NewBag(capacity int) *Bag {
	return &Bag{items: make([]Diagnostic, 0, capacity)}
}

// Add appends a diagnostic.
func (b *Bag) Add(d Diagnostic) {
	b.mu.Lock()
	b.items = append(b.items, d)
	b.mu.Unlock()
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// длина
func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез!
func (b *Bag) Items() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.items
}

// Merge appends the diagnostics of other, keeping their relative order.
func (b *Bag) Merge(other *Bag) {
	if other == nil || other == b {
		return
	}
	items := other.Items()
	b.mu.Lock()
	b.items = append(b.items, items...)
	b.mu.Unlock()
}

// Sort orders diagnostics by path, offset and message text. Ties keep their
// merge order; invalid locations sort first.
func (b *Bag) Sort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	sort.SliceStable(b.items, func(i, j int) bool {
		return Less(b.items[i], b.items[j])
	})
}

// Less is the report order: path, offset, message text.
func Less(di, dj Diagnostic) bool {
	mi, mj := di.Message, dj.Message
	if mi.Path != mj.Path {
		return mi.Path < mj.Path
	}
	if mi.Offset != mj.Offset {
		return mi.Offset < mj.Offset
	}
	return mi.Text < mj.Text
}

type dedupKey struct {
	path   string
	offset uint32
	text   string
}

// Dedup drops every diagnostic whose (path, offset, primary text) was already
// seen, keeping the first. Call after Sort for a deterministic survivor.
// Returns the number of removed entries.
func (b *Bag) Dedup() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	seen := make(map[dedupKey]struct{}, len(b.items))
	kept := b.items[:0]
	for _, d := range b.items {
		key := dedupKey{path: d.Message.Path, offset: d.Message.Offset, text: d.Message.Text}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, d)
	}
	removed := len(b.items) - len(kept)
	for i := len(kept); i < len(b.items); i++ {
		b.items[i] = Diagnostic{}
	}
	b.items = kept
	return removed
}

// Edits returns every edit attached to the collected diagnostics in report
// order.
func (b *Bag) Edits() []Edit {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Edit
	for i := range b.items {
		out = append(out, b.items[i].Edits...)
	}
	return out
}
