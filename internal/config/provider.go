package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Provider resolves the options in effect for a file: defaults, then the
// nearest .tidy.toml above the file, then command-line overrides.
type Provider struct {
	defaults  Options
	overrides Options

	mu    sync.Mutex
	byDir map[string]*located // nil entry: no file above this directory
}

type located struct {
	path string
	opts Options
}

// Effective is the result of a lookup.
type Effective struct {
	Options Options
	// Source is the configuration file used, empty when none was found.
	Source string
}

// NewProvider returns a Provider layering overrides over defaults.
func NewProvider(defaults, overrides Options) *Provider {
	return &Provider{
		defaults:  defaults,
		overrides: overrides,
		byDir:     make(map[string]*located),
	}
}

// For returns the options in effect for file. Lookups are cached per
// directory and safe for concurrent use.
func (p *Provider) For(file string) (Effective, error) {
	return p.ForDir(filepath.Dir(file))
}

// ForDir returns the options in effect for files directly inside dir.
func (p *Provider) ForDir(dir string) (Effective, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Effective{}, fmt.Errorf("failed to resolve %q: %w", dir, err)
	}
	loc, err := p.find(abs)
	if err != nil {
		return Effective{}, err
	}
	opts := p.defaults
	eff := Effective{}
	if loc != nil {
		opts = opts.MergeWith(loc.opts)
		eff.Source = loc.path
	}
	eff.Options = opts.MergeWith(p.overrides)
	return eff, nil
}

func (p *Provider) find(dir string) (*located, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var visited []string
	var found *located
	for {
		if loc, ok := p.byDir[dir]; ok {
			found = loc
			break
		}
		visited = append(visited, dir)
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			opts, err := Load(candidate)
			if err != nil {
				return nil, err
			}
			found = &located{path: candidate, opts: opts}
			break
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	for _, d := range visited {
		p.byDir[d] = found
	}
	return found, nil
}
