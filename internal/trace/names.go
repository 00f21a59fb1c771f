package trace

import (
	"fmt"
	"strings"
)

// enum is any of the small named types of this package.
type enum interface {
	~uint8
}

func nameOf[T enum](names []string, v T) string {
	if int(v) < len(names) && names[v] != "" {
		return names[v]
	}
	return "unknown"
}

// parseName finds s (case-insensitively) in names. aliases maps extra
// spellings to values.
func parseName[T enum](kind string, names []string, aliases map[string]T, s string) (T, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n != "" && n == s {
			return T(i), nil
		}
	}
	if v, ok := aliases[s]; ok {
		return v, nil
	}
	var valid []string
	for _, n := range names {
		if n != "" {
			valid = append(valid, n)
		}
	}
	return 0, fmt.Errorf("invalid trace %s: %q (expected: %s)", kind, s, strings.Join(valid, "|"))
}
