package checks

import "fmt"

// OptionError reports an unusable check option value.
type OptionError struct {
	Check  string
	Option string
	Value  string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("invalid value %q for option %s.%s", e.Value, e.Check, e.Option)
}
