package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"sync"

	"fortio.org/safecast"

	"tidy/internal/suppress"
)

// FileSet manages a collection of source files and resolves byte offsets
// into line/column positions. It is safe for concurrent use.
type FileSet struct {
	mu      sync.RWMutex
	files   []*File
	index   map[string]FileID // path -> id
	baseDir string
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]*File, 0),
		index: make(map[string]FileID),
	}
}

// NewFileSetWithBase создаёт FileSet с заданной базовой директорией.
func NewFileSetWithBase(baseDir string) *FileSet {
	fs := NewFileSet()
	fs.baseDir = baseDir
	return fs
}

// BaseDir returns the directory used for relative display paths.
func (fileSet *FileSet) BaseDir() string {
	if fileSet.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fileSet.baseDir
}

// Add stores a file, computes LineIdx and Hash, and returns its FileID.
// Adding a path twice replaces the index entry with the newer version.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		panic(fmt.Errorf("file %s too large: %w", path, err))
	}
	if hasBOM(content) {
		flags |= FileHasBOM
	}
	if hasCRLF(content) {
		flags |= FileHasCRLF
	}
	f := &File{
		Path:    NormalizePath(path),
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	}

	fileSet.mu.Lock()
	defer fileSet.mu.Unlock()
	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	f.ID = FileID(lenFiles)
	fileSet.files = append(fileSet.files, f)
	fileSet.index[f.Path] = f.ID
	return f.ID
}

// Load reads a file from disk and calls Add. The content is not normalized.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return fileSet.Add(path, content, 0), nil
}

// AddVirtual adds a virtual file (stdin, test, or generated) with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file metadata for the given ID.
func (fileSet *FileSet) Get(id FileID) *File {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	return fileSet.files[id]
}

// Len returns the number of stored file versions.
func (fileSet *FileSet) Len() int {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	return len(fileSet.files)
}

// GetByPath returns the latest version of path, if it was loaded.
func (fileSet *FileSet) GetByPath(path string) (*File, bool) {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	if id, ok := fileSet.index[NormalizePath(path)]; ok {
		return fileSet.files[id], true
	}
	return nil, false
}

// Position resolves an offset inside path. It reports false when the file is
// unknown.
func (fileSet *FileSet) Position(path string, off uint32) (LineCol, bool) {
	f, ok := fileSet.GetByPath(path)
	if !ok {
		return LineCol{}, false
	}
	return f.Position(off), true
}

// RestOfLine returns the bytes of path from off up to the next line
// terminator. It reports false when the file is unknown or off is past the end.
func (fileSet *FileSet) RestOfLine(path string, off uint32) ([]byte, bool) {
	f, ok := fileSet.GetByPath(path)
	if !ok || int(off) > len(f.Content) {
		return nil, false
	}
	return suppress.Line(f.Content, off), true
}

// Position converts a byte offset into a 1-based line and column.
func (f *File) Position(off uint32) LineCol {
	return toLineCol(f.LineIdx, off)
}

// GetLine возвращает строку с заданным номером (1-based) без терминатора.
// Если строка не существует, возвращает пустую строку.
func (f *File) GetLine(lineNum uint32) string {
	start, end, ok := f.LineBounds(lineNum)
	if !ok {
		return ""
	}
	return string(f.Content[start:end])
}

// LineBounds returns the byte range of line lineNum (1-based) excluding its
// terminator ("\n" or "\r\n").
func (f *File) LineBounds(lineNum uint32) (start, end uint32, ok bool) {
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	lines := f.LineCount()
	if lineNum == 0 || lineNum > lines {
		return 0, 0, false
	}
	if lineNum > 1 {
		start = f.LineIdx[lineNum-2] + 1
	}
	end = lenContent
	if int(lineNum-1) < len(f.LineIdx) {
		end = f.LineIdx[lineNum-1]
	}
	if end > start && f.Content[end-1] == '\r' {
		end--
	}
	return start, end, true
}

// LineCount returns the number of lines. A trailing newline does not start a
// new line.
func (f *File) LineCount() uint32 {
	n := uint32(len(f.LineIdx)) // #nosec G115 -- bounded by content length
	if len(f.Content) == 0 {
		return 0
	}
	if f.Content[len(f.Content)-1] != '\n' {
		n++
	}
	return n
}

// DisplayPath returns Path relative to baseDir when it lies inside it.
func (f *File) DisplayPath(baseDir string) string {
	if baseDir == "" {
		return f.Path
	}
	if rel, err := RelativePath(f.Path, baseDir); err == nil {
		return rel
	}
	return f.Path
}
