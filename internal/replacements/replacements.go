// Package replacements reads and writes change descriptions: YAML documents
// listing the edits proposed for one analyzed file.
package replacements

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"tidy/internal/diag"
	"tidy/internal/trace"
)

// ErrNoChanges is returned by Collect when no change description was found.
var ErrNoChanges = errors.New("no change descriptions found")

// Replacement is one edit in a change description.
type Replacement struct {
	FilePath        string `yaml:"FilePath"`
	Offset          uint32 `yaml:"Offset"`
	Length          uint32 `yaml:"Length"`
	ReplacementText string `yaml:"ReplacementText"`
}

// TranslationUnit is the change description produced by one analyzed file.
type TranslationUnit struct {
	MainSourceFile string        `yaml:"MainSourceFile"`
	Replacements   []Replacement `yaml:"Replacements"`
}

// FromEdits builds a change description for mainFile.
func FromEdits(mainFile string, edits []diag.Edit) TranslationUnit {
	tu := TranslationUnit{MainSourceFile: mainFile, Replacements: make([]Replacement, 0, len(edits))}
	for _, e := range edits {
		tu.Replacements = append(tu.Replacements, Replacement{
			FilePath:        e.Path,
			Offset:          e.Offset,
			Length:          e.Length,
			ReplacementText: e.NewText,
		})
	}
	return tu
}

// Edits converts the description back to edits.
func (tu TranslationUnit) Edits() []diag.Edit {
	edits := make([]diag.Edit, 0, len(tu.Replacements))
	for _, r := range tu.Replacements {
		edits = append(edits, diag.Edit{
			Path:    r.FilePath,
			Offset:  r.Offset,
			Length:  r.Length,
			NewText: r.ReplacementText,
		})
	}
	return edits
}

// Marshal encodes tu as a YAML document.
func Marshal(tu TranslationUnit) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(tu); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteString("...\n")
	return buf.Bytes(), nil
}

// Unmarshal decodes a change description. Documents with unknown keys or
// with neither a MainSourceFile nor replacements are rejected.
func Unmarshal(data []byte) (TranslationUnit, error) {
	var tu TranslationUnit
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tu); err != nil {
		if errors.Is(err, io.EOF) {
			return TranslationUnit{}, errors.New("empty document")
		}
		return TranslationUnit{}, err
	}
	if tu.MainSourceFile == "" && len(tu.Replacements) == 0 {
		return TranslationUnit{}, errors.New("not a change description")
	}
	return tu, nil
}

// Export writes the description of mainFile's edits to path. mainFile may be
// empty when the edits come from several analyzed files.
func Export(path, mainFile string, edits []diag.Edit) error {
	data, err := Marshal(FromEdits(mainFile, edits))
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // exported fixes are not secret
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Skipped is a .yaml file that was not a change description.
type Skipped struct {
	Path string
	Err  error
}

// Collection is the result of scanning a directory.
type Collection struct {
	Units   []TranslationUnit
	Skipped []Skipped
}

// Edits returns all edits of all units in unit order.
func (c *Collection) Edits() []diag.Edit {
	var out []diag.Edit
	for _, tu := range c.Units {
		out = append(out, tu.Edits()...)
	}
	return out
}

// Collect finds every *.yaml file under dir, without descending into
// directories whose name starts with '.', and decodes them in parallel.
// Files that do not parse are skipped. Units are returned in path order.
func Collect(ctx context.Context, dir string, jobs int) (*Collection, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "collect_replacements", trace.ParentFrom(ctx))
	defer span.End("")

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if path != dir && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && filepath.Ext(name) == ".yaml" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(paths)
	span.WithExtra("files", fmt.Sprint(len(paths)))

	units := make([]*TranslationUnit, len(paths))
	skipped := make([]error, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	if jobs <= 0 {
		jobs = 1
	}
	g.SetLimit(min(jobs, max(len(paths), 1)))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				skipped[i] = err
				return nil
			}
			tu, err := Unmarshal(data)
			if err != nil {
				skipped[i] = err
				return nil
			}
			units[i] = &tu
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Collection{}
	for i, path := range paths {
		if units[i] != nil {
			out.Units = append(out.Units, *units[i])
			continue
		}
		out.Skipped = append(out.Skipped, Skipped{Path: path, Err: skipped[i]})
	}
	if len(out.Units) == 0 {
		return out, ErrNoChanges
	}
	return out, nil
}
