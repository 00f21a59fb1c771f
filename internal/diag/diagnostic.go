package diag

import "fmt"

// Edit replaces the half-open byte range [Offset, Offset+Length) of Path
// with NewText. Length == 0 is a pure insertion. Edits are values: two edits
// are identical iff all fields are equal.
type Edit struct {
	Path    string
	Offset  uint32
	Length  uint32
	NewText string
}

// End returns the exclusive end offset. It wraps when Offset+Length does not
// fit in uint32; use Limit to compare ranges.
func (e Edit) End() uint32 {
	return e.Offset + e.Length
}

// Limit returns the exclusive end offset without wrapping.
func (e Edit) Limit() uint64 {
	return uint64(e.Offset) + uint64(e.Length)
}

// IsInsertion reports whether the edit removes nothing.
func (e Edit) IsInsertion() bool {
	return e.Length == 0
}

func (e Edit) String() string {
	return fmt.Sprintf("%s:[%d,%d)=%q", e.Path, e.Offset, e.Limit(), e.NewText)
}

// Message is a location-tagged text. The location is valid only when Path is
// set; Offset is meaningless otherwise.
type Message struct {
	Text   string
	Path   string
	Offset uint32
}

// HasLocation reports whether the message points into a file.
func (m Message) HasLocation() bool {
	return m.Path != ""
}

// Diagnostic is a finalized finding: one primary message, its notes in
// emission order and the edits proposed to resolve it.
type Diagnostic struct {
	Check    string
	Severity Severity
	Message  Message
	Notes    []Message
	Edits    []Edit
}
