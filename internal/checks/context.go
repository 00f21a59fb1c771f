package checks

import (
	"context"
	"fmt"
	"slices"

	"tidy/internal/aggregate"
	"tidy/internal/diag"
	"tidy/internal/source"
	"tidy/internal/trace"
)

// Context is what a check sees while it runs on one file.
type Context struct {
	check    string
	file     *source.File
	consumer aggregate.Consumer
	options  map[string]string
	err      error
}

// Run executes c on file, feeding findings to consumer. Options are looked up
// as "<check>.<name>", then as plain "<name>". The consumer is not finished: several checks share one
// stream per unit.
func Run(ctx context.Context, c Check, file *source.File, consumer aggregate.Consumer, options map[string]string) error {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeCheck, c.Name(), trace.ParentFrom(ctx))
	cc := &Context{
		check:    c.Name(),
		file:     file,
		consumer: consumer,
		options:  options,
	}
	err := c.Check(cc)
	if err == nil {
		err = cc.err
	}
	span.End(errDetail(err))
	if err != nil {
		return fmt.Errorf("%s: %w", c.Name(), err)
	}
	return nil
}

func errDetail(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// File returns the analyzed file.
func (c *Context) File() *source.File { return c.file }

// Name returns the name of the running check.
func (c *Context) Name() string { return c.check }

// Option returns the value configured for this check, falling back to the
// global option of the same name, then to def.
func (c *Context) Option(name, def string) string {
	if v, ok := c.options[c.check+"."+name]; ok {
		return v
	}
	if v, ok := c.options[name]; ok {
		return v
	}
	return def
}

// Report starts a warning at off of the analyzed file.
func (c *Context) Report(off uint32, msg string) *Builder {
	return &Builder{
		ctx:  c,
		sev:  diag.SevWarning,
		msg:  diag.Message{Text: msg, Path: c.file.Path, Offset: off},
		path: c.file.Path,
	}
}

type note struct {
	msg   diag.Message
	edits []diag.Edit
}

// Builder accumulates one finding before it is emitted.
type Builder struct {
	ctx     *Context
	sev     diag.Severity
	msg     diag.Message
	path    string
	edits   []diag.Edit
	notes   []note
	emitted bool
}

// AsError raises the severity to error.
func (b *Builder) AsError() *Builder {
	b.sev = diag.SevError
	return b
}

// Replace proposes replacing [off, off+length) with text.
func (b *Builder) Replace(off, length uint32, text string) *Builder {
	b.edits = append(b.edits, diag.Edit{Path: b.path, Offset: off, Length: length, NewText: text})
	return b
}

// Insert proposes inserting text at off.
func (b *Builder) Insert(off uint32, text string) *Builder {
	return b.Replace(off, 0, text)
}

// Remove proposes deleting [off, off+length).
func (b *Builder) Remove(off, length uint32) *Builder {
	return b.Replace(off, length, "")
}

// Note attaches a secondary message at off. Replace, Insert and Remove still
// add to the primary; use NoteFix to attach an edit to the note.
func (b *Builder) Note(off uint32, msg string) *Builder {
	b.notes = append(b.notes, note{msg: diag.Message{Text: msg, Path: b.path, Offset: off}})
	return b
}

// NoteFix attaches an edit to the most recent note.
func (b *Builder) NoteFix(off, length uint32, text string) *Builder {
	if len(b.notes) == 0 {
		return b.Replace(off, length, text)
	}
	last := &b.notes[len(b.notes)-1]
	last.edits = append(last.edits, diag.Edit{Path: b.path, Offset: off, Length: length, NewText: text})
	return b
}

// Emit sends the primary event and its notes exactly once.
func (b *Builder) Emit() {
	if b == nil || b.emitted {
		return
	}
	b.emitted = true
	c := b.ctx
	c.consumer.Primary(b.sev, c.check, b.msg, slices.Clone(b.edits)...)
	for _, n := range b.notes {
		if err := c.consumer.Note(n.msg, n.edits...); err != nil && c.err == nil {
			c.err = err
		}
	}
}
