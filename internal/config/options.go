// Package config loads .tidy.toml files and computes the options in effect
// for each analyzed file.
package config

import (
	"bytes"
	"fmt"
	"maps"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"tidy/internal/glob"
)

// FileName is the per-directory configuration file.
const FileName = ".tidy.toml"

// DefaultChecks enables every check except the opt-in tab indent check.
const DefaultChecks = "*,-whitespace-tab-indent"

// Options is one layer of configuration. Nil fields are unset and leave the
// lower layer in effect.
type Options struct {
	Checks       *string           `toml:"checks"`
	HeaderFilter *string           `toml:"header_filter"`
	User         *string           `toml:"user"`
	CheckOptions map[string]string `toml:"check_options"`
}

// Error reports an unusable configuration value or file.
type Error struct {
	Path string // file the value came from, empty for defaults and flags
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Defaults returns the built-in bottom layer.
func Defaults() Options {
	checks := DefaultChecks
	empty := ""
	return Options{
		Checks:       &checks,
		HeaderFilter: &empty,
		CheckOptions: map[string]string{},
	}
}

// String returns a pointer to s, for building layers in code.
func String(s string) *string { return &s }

// MergeWith returns o overlaid with other. Check lists are appended so the
// later layer's rules are evaluated last; other scalar values replace; option
// maps are merged key by key.
func (o Options) MergeWith(other Options) Options {
	out := Options{
		Checks:       o.Checks,
		HeaderFilter: o.HeaderFilter,
		User:         o.User,
		CheckOptions: maps.Clone(o.CheckOptions),
	}
	if other.Checks != nil {
		merged := *other.Checks
		if o.Checks != nil && *o.Checks != "" {
			merged = *o.Checks + "," + *other.Checks
		}
		out.Checks = &merged
	}
	if other.HeaderFilter != nil {
		out.HeaderFilter = other.HeaderFilter
	}
	if other.User != nil {
		out.User = other.User
	}
	if len(other.CheckOptions) > 0 {
		if out.CheckOptions == nil {
			out.CheckOptions = make(map[string]string, len(other.CheckOptions))
		}
		maps.Copy(out.CheckOptions, other.CheckOptions)
	}
	return out
}

// Parse decodes TOML text. origin names the text in errors.
func Parse(origin, text string) (Options, error) {
	var opts Options
	meta, err := toml.Decode(text, &opts)
	if err != nil {
		return Options{}, &Error{Path: origin, Err: fmt.Errorf("failed to parse TOML: %w", err)}
	}
	if err := checkUndecoded(meta); err != nil {
		return Options{}, &Error{Path: origin, Err: err}
	}
	return opts, nil
}

// Load decodes the file at path.
func Load(path string) (Options, error) {
	var opts Options
	meta, err := toml.DecodeFile(path, &opts)
	if err != nil {
		return Options{}, &Error{Path: path, Err: fmt.Errorf("failed to parse TOML: %w", err)}
	}
	if err := checkUndecoded(meta); err != nil {
		return Options{}, &Error{Path: path, Err: err}
	}
	return opts, nil
}

func checkUndecoded(meta toml.MetaData) error {
	undecoded := meta.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, k := range undecoded {
		keys[i] = k.String()
	}
	sort.Strings(keys)
	return fmt.Errorf("unknown key(s): %s", strings.Join(keys, ", "))
}

// Text renders the options as TOML, the form printed by dump-config.
func (o Options) Text() (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(o); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Compiled is the validated form of an effective Options value.
type Compiled struct {
	Checks       *glob.Chain
	HeaderFilter *regexp.Regexp // nil when the filter is empty
	CheckOptions map[string]string
}

// Compile validates the check list and header filter. origin names the
// configuration in errors.
func (o Options) Compile(origin string) (*Compiled, error) {
	checks := ""
	if o.Checks != nil {
		checks = *o.Checks
	}
	chain, err := glob.Compile(checks)
	if err != nil {
		return nil, &Error{Path: origin, Err: err}
	}
	c := &Compiled{Checks: chain, CheckOptions: maps.Clone(o.CheckOptions)}
	if c.CheckOptions == nil {
		c.CheckOptions = make(map[string]string)
	}
	if o.HeaderFilter != nil && *o.HeaderFilter != "" {
		re, err := regexp.Compile(*o.HeaderFilter)
		if err != nil {
			return nil, &Error{Path: origin, Err: fmt.Errorf("invalid header filter: %w", err)}
		}
		c.HeaderFilter = re
	}
	if o.User != nil {
		if _, set := c.CheckOptions["User"]; !set {
			c.CheckOptions["User"] = *o.User
		}
	}
	return c, nil
}
