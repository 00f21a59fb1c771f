package checks

import (
	"bytes"
	"os"
)

// TodoCommentName is the name of the TODO owner check.
const TodoCommentName = "readability-todo-comment"

// todoComment flags TODO comments without an owner: "// TODO: x" should read
// "// TODO(user): x". The fix inserts the configured User option, falling
// back to $USER; without either no fix is offered.
type todoComment struct{}

func (*todoComment) Name() string { return TodoCommentName }

func (t *todoComment) Check(c *Context) error {
	user := c.Option("User", os.Getenv("USER"))
	content := c.File().Content
	lines(c, func(start, end uint32) {
		line := content[start:end]
		commentAt := commentStart(line)
		if commentAt < 0 {
			return
		}
		body := line[commentAt:]
		lead := len(body) - len(bytes.TrimLeft(body, "/#* \t"))
		body = body[lead:]
		if !bytes.HasPrefix(body, []byte("TODO")) {
			return
		}
		if rest := body[len("TODO"):]; len(rest) > 0 && rest[0] == '(' {
			return
		}
		todoAt := start + uint32(commentAt+lead) // #nosec G115 -- within line bounds
		b := c.Report(todoAt, "missing username/bug in TODO")
		if user != "" {
			b.Insert(todoAt+uint32(len("TODO")), "("+user+")")
		}
		b.Emit()
	})
	return nil
}

// commentStart returns the index of the first "//" or "#" in line, or -1.
func commentStart(line []byte) int {
	slash := bytes.Index(line, []byte("//"))
	hash := bytes.IndexByte(line, '#')
	switch {
	case slash < 0:
		return hash
	case hash < 0:
		return slash
	default:
		return min(slash, hash)
	}
}
