// Package glob implements the check-name filter: a comma-separated list of
// glob patterns where a leading '-' excludes and the last matching pattern
// decides.
package glob

import (
	"fmt"
	"regexp"
	"strings"
)

// ConfigError reports a malformed filter list.
type ConfigError struct {
	List    string
	Pattern string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid glob %q in %q: %s", e.Pattern, e.List, e.Reason)
}

// Rule is one compiled item of the list.
type Rule struct {
	Exclude bool
	Pattern string
	re      *regexp.Regexp
}

// Match reports whether the rule's pattern matches the whole name.
func (r Rule) Match(name string) bool {
	return r.re.MatchString(name)
}

// Chain is an ordered list of include/exclude rules.
type Chain struct {
	source string
	rules  []Rule
}

// Compile parses list left to right. Blanks around items are trimmed and
// empty items are skipped, so an empty list yields a chain that enables
// nothing. In a pattern '*' matches any run of characters, '\' escapes the
// next character and everything else is literal.
func Compile(list string) (*Chain, error) {
	c := &Chain{source: list}
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		rule := Rule{}
		if strings.HasPrefix(item, "-") {
			rule.Exclude = true
			item = strings.TrimSpace(item[1:])
			if item == "" {
				return nil, &ConfigError{List: list, Pattern: "-", Reason: "exclusion without pattern"}
			}
		}
		expr, err := translate(item)
		if err != nil {
			return nil, &ConfigError{List: list, Pattern: item, Reason: err.Error()}
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, &ConfigError{List: list, Pattern: item, Reason: err.Error()}
		}
		rule.Pattern = item
		rule.re = re
		c.rules = append(c.rules, rule)
	}
	return c, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and
// package-level defaults.
func MustCompile(list string) *Chain {
	c, err := Compile(list)
	if err != nil {
		panic(err)
	}
	return c
}

func translate(pattern string) (string, error) {
	var b strings.Builder
	b.WriteString(`^(?:`)
	for i := 0; i < len(pattern); i++ {
		switch ch := pattern[i]; ch {
		case '*':
			b.WriteString(`.*`)
		case '\\':
			if i+1 == len(pattern) {
				return "", fmt.Errorf("unterminated escape")
			}
			i++
			b.WriteString(regexp.QuoteMeta(pattern[i : i+1]))
		default:
			b.WriteString(regexp.QuoteMeta(pattern[i : i+1]))
		}
	}
	b.WriteString(`)$`)
	return b.String(), nil
}

// IsEnabled evaluates every rule in order; the last one that matches decides.
func (c *Chain) IsEnabled(name string) bool {
	if c == nil {
		return false
	}
	enabled := false
	for _, r := range c.rules {
		if r.Match(name) {
			enabled = !r.Exclude
		}
	}
	return enabled
}

// Rules returns the compiled rules in list order.
func (c *Chain) Rules() []Rule {
	return c.rules
}

// String returns the list the chain was compiled from.
func (c *Chain) String() string {
	return c.source
}
