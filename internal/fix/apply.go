package fix

import (
	"fmt"
	"sort"

	"fortio.org/safecast"

	"tidy/internal/diag"
)

// EditFailure is an accepted edit whose range does not fit the text it was
// applied to, typically because the file changed since analysis.
type EditFailure struct {
	Edit diag.Edit
	Size uint32 // length of the text at the time of the attempt
}

func (f EditFailure) Error() string {
	return fmt.Sprintf("edit [%d,%d) out of range for %s (%d bytes)", f.Edit.Offset, f.Edit.Limit(), f.Edit.Path, f.Size)
}

// Applied is the outcome of ApplyEdits.
type Applied struct {
	Text      []byte
	Applied   int
	Attempted int
	Failures  []EditFailure
}

// ApplyEdits splices edits into a copy of text, largest offset first, so that
// earlier offsets stay valid. edits must be pairwise non-overlapping; their
// order does not matter. With no edits the result is a byte-for-byte copy of
// text. Out-of-range edits are skipped and reported in Failures.
func ApplyEdits(text []byte, edits []diag.Edit) Applied {
	out := Applied{Text: append([]byte(nil), text...)}
	if len(edits) == 0 {
		return out
	}

	ordered := append([]diag.Edit(nil), edits...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Offset != ordered[j].Offset {
			return ordered[i].Offset > ordered[j].Offset
		}
		return ordered[i].Length > ordered[j].Length
	})

	for _, e := range ordered {
		out.Attempted++
		size, err := safecast.Conv[uint32](len(out.Text))
		if err != nil {
			panic(fmt.Errorf("text length overflow: %w", err))
		}
		if e.Offset > size || e.Length > size-e.Offset {
			out.Failures = append(out.Failures, EditFailure{Edit: e, Size: size})
			continue
		}
		start, end := int(e.Offset), int(e.End())
		spliced := make([]byte, 0, len(out.Text)-(end-start)+len(e.NewText))
		spliced = append(spliced, out.Text[:start]...)
		spliced = append(spliced, e.NewText...)
		spliced = append(spliced, out.Text[end:]...)
		out.Text = spliced
		out.Applied++
	}
	return out
}
