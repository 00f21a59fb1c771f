package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota // добавлен не с диска
	// FileHasBOM marks a file that starts with a UTF-8 byte order mark.
	// The mark is kept in Content: edits address the bytes as they are on disk.
	FileHasBOM
	// FileHasCRLF marks a file that uses \r\n line terminators.
	FileHasCRLF
)

// File captures metadata and content for a single source file.
// Content is the canonical text every edit offset refers to.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}
