package checks

import (
	"strconv"
	"strings"
)

const (
	TrailingWhitespaceName = "whitespace-trailing"
	TabIndentName          = "whitespace-tab-indent"
)

type trailingWhitespace struct{}

func (*trailingWhitespace) Name() string { return TrailingWhitespaceName }

// Check reports lines ending in spaces or tabs. The diagnostic sits at the
// start of the line so a suppression marker anywhere on it applies.
func (*trailingWhitespace) Check(c *Context) error {
	content := c.File().Content
	lines(c, func(start, end uint32) {
		trimmed := end
		for trimmed > start && (content[trimmed-1] == ' ' || content[trimmed-1] == '\t') {
			trimmed--
		}
		if trimmed == end {
			return
		}
		c.Report(start, "trailing whitespace").
			Remove(trimmed, end-trimmed).
			Note(trimmed, "whitespace starts here").
			Emit()
	})
	return nil
}

type tabIndent struct{}

func (*tabIndent) Name() string { return TabIndentName }

// Check reports tab indentation and replaces each leading tab with
// IndentWidth spaces (default 4).
func (*tabIndent) Check(c *Context) error {
	width, err := strconv.Atoi(c.Option("IndentWidth", "4"))
	if err != nil || width < 1 || width > 16 {
		return &OptionError{Check: TabIndentName, Option: "IndentWidth", Value: c.Option("IndentWidth", "4")}
	}
	indent := strings.Repeat(" ", width)
	content := c.File().Content
	lines(c, func(start, end uint32) {
		n := start
		for n < end && content[n] == '\t' {
			n++
		}
		if n == start {
			return
		}
		c.Report(start, "tab used for indentation").
			Replace(start, n-start, strings.Repeat(indent, int(n-start))).
			Emit()
	})
	return nil
}
