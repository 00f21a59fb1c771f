package aggregate

import (
	"encoding/json"
	"fmt"

	"tidy/internal/source"
)

// LineRange is an inclusive 1-based range of lines.
type LineRange struct {
	First uint32
	Last  uint32
}

// Contains reports whether line lies inside the range.
func (r LineRange) Contains(line uint32) bool {
	return r.First <= line && line <= r.Last
}

// UnmarshalJSON decodes the two-element form [first, last].
func (r *LineRange) UnmarshalJSON(data []byte) error {
	var pair []uint32
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("line range must have two elements, got %d", len(pair))
	}
	if pair[0] == 0 || pair[0] > pair[1] {
		return fmt.Errorf("line range [%d,%d] is empty or not 1-based", pair[0], pair[1])
	}
	r.First, r.Last = pair[0], pair[1]
	return nil
}

func (r LineRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]uint32{r.First, r.Last})
}

// FileLines restricts diagnostics of files whose path ends with Name.
type FileLines struct {
	Name  string      `json:"name"`
	Lines []LineRange `json:"lines"`
}

// LineFilter restricts diagnostics to configured line ranges. Files without
// any configured range are unrestricted.
type LineFilter []FileLines

// LineFilterError reports a malformed line filter.
type LineFilterError struct {
	Input string
	Err   error
}

func (e *LineFilterError) Error() string {
	return fmt.Sprintf("invalid line filter %q: %v", e.Input, e.Err)
}

func (e *LineFilterError) Unwrap() error { return e.Err }

// ParseLineFilter decodes the JSON form
//
//	[{"name":"file.go","lines":[[1,3],[5,7]]}, ...]
//
// An empty input yields no filter.
func ParseLineFilter(input string) (LineFilter, error) {
	if input == "" {
		return nil, nil
	}
	var lf LineFilter
	if err := json.Unmarshal([]byte(input), &lf); err != nil {
		return nil, &LineFilterError{Input: input, Err: err}
	}
	for _, f := range lf {
		if f.Name == "" {
			return nil, &LineFilterError{Input: input, Err: fmt.Errorf("entry without name")}
		}
	}
	return lf, nil
}

// Allows reports whether a diagnostic at line of path passes. Ranges of every
// entry matching path are combined.
func (lf LineFilter) Allows(path string, line uint32) bool {
	restricted := false
	for _, f := range lf {
		if !source.HasPathSuffix(path, f.Name) {
			continue
		}
		for _, r := range f.Lines {
			restricted = true
			if r.Contains(line) {
				return true
			}
		}
	}
	return !restricted
}

// Restricts reports whether path has at least one configured range.
func (lf LineFilter) Restricts(path string) bool {
	for _, f := range lf {
		if len(f.Lines) > 0 && source.HasPathSuffix(path, f.Name) {
			return true
		}
	}
	return false
}
