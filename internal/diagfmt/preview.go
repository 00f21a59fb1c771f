package diagfmt

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"tidy/internal/diag"
	"tidy/internal/source"
)

type editPreview struct {
	before []string
	after  []string
}

// buildEditPreview returns the lines touched by e before and after applying
// it alone.
func buildEditPreview(fs *source.FileSet, e diag.Edit) (editPreview, error) {
	if fs == nil {
		return editPreview{}, fmt.Errorf("nil FileSet")
	}
	file, ok := fs.GetByPath(e.Path)
	if !ok {
		return editPreview{}, fmt.Errorf("file %s not found in FileSet", e.Path)
	}
	lenFileContent, err := safecast.Conv[uint32](len(file.Content))
	if err != nil {
		return editPreview{}, fmt.Errorf("len file content overflow: %w", err)
	}
	if e.Limit() > uint64(lenFileContent) {
		return editPreview{}, fmt.Errorf("edit end %d out of range", e.Limit())
	}

	startLine := file.Position(e.Offset).Line
	endLine := startLine
	if e.Length > 0 {
		endLine = file.Position(e.End() - 1).Line
	}

	blockStart := lineStartOffset(file, startLine)
	blockEnd := min(max(lineEndOffsetInclusive(file, endLine), blockStart), lenFileContent)

	original := file.Content[blockStart:blockEnd]
	relStart := e.Offset - blockStart
	relEnd := e.End() - blockStart

	after := make([]byte, 0, len(original)+len(e.NewText))
	after = append(after, original[:relStart]...)
	after = append(after, e.NewText...)
	after = append(after, original[relEnd:]...)

	return editPreview{
		before: splitPreviewLines(original),
		after:  splitPreviewLines(after),
	}, nil
}

func splitPreviewLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	// последний \n не порождает пустую строку
	return strings.Split(strings.TrimRight(string(content), "\n"), "\n")
}

func lineStartOffset(f *source.File, line uint32) uint32 {
	if line <= 1 {
		return 0
	}
	idx := line - 2
	if int(idx) < len(f.LineIdx) {
		return f.LineIdx[idx] + 1
	}
	lenFileContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return lenFileContent
}

func lineEndOffsetInclusive(f *source.File, line uint32) uint32 {
	if line == 0 {
		return 0
	}
	idx := line - 1
	if int(idx) < len(f.LineIdx) {
		return f.LineIdx[idx] + 1
	}
	lenFileContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return lenFileContent
}
