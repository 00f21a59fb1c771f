package checks

// Builtin returns the modules shipped with tidy.
func Builtin() []Module {
	return []Module{
		readabilityModule{},
		whitespaceModule{},
		unicodeModule{},
	}
}

type readabilityModule struct{}

func (readabilityModule) Name() string { return "readability" }

func (readabilityModule) Register(r ModuleRegistry) error {
	return r.Add(TodoCommentName, func() Check { return &todoComment{} })
}

type whitespaceModule struct{}

func (whitespaceModule) Name() string { return "whitespace" }

func (whitespaceModule) Register(r ModuleRegistry) error {
	if err := r.Add(TrailingWhitespaceName, func() Check { return &trailingWhitespace{} }); err != nil {
		return err
	}
	return r.Add(TabIndentName, func() Check { return &tabIndent{} })
}

type unicodeModule struct{}

func (unicodeModule) Name() string { return "unicode" }

func (unicodeModule) Register(r ModuleRegistry) error {
	return r.Add(NFCName, func() Check { return &nfc{} })
}

// lines calls fn for every line of the file with the byte range of its
// content, terminator excluded.
func lines(c *Context, fn func(start, end uint32)) {
	f := c.File()
	n := f.LineCount()
	for line := uint32(1); line <= n; line++ {
		start, end, ok := f.LineBounds(line)
		if !ok {
			return
		}
		fn(start, end)
	}
}
