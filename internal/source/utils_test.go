package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRelativePathOutsideBaseFallsBackToAbsolute(t *testing.T) {
	tmp := t.TempDir()

	baseDir := filepath.Join(tmp, "base")
	otherDir := filepath.Join(tmp, "other")
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		t.Fatalf("failed to create base dir: %v", err)
	}
	if err := os.MkdirAll(otherDir, 0o755); err != nil {
		t.Fatalf("failed to create other dir: %v", err)
	}

	target := filepath.Join(otherDir, "file.go")
	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}
	if want := NormalizePath(target); got != want {
		t.Fatalf("expected absolute fallback %q, got %q", want, got)
	}
}

func TestRelativePathInsideBaseStaysRelative(t *testing.T) {
	baseDir := t.TempDir()
	target := filepath.Join(baseDir, "nested", "file.go")

	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}
	if want := "nested/file.go"; got != want {
		t.Fatalf("expected relative path %q, got %q", want, got)
	}
}

func TestHasPathSuffix(t *testing.T) {
	tests := []struct {
		path, name string
		want       bool
	}{
		{"src/main.go", "main.go", true},
		{"src/main.go", "src/main.go", true},
		{"src/xmain.go", "main.go", false},
		{"main.go", "main.go", true},
		{"main.go", "", false},
		{"a/b/c.go", "b/c.go", true},
	}
	for _, tt := range tests {
		if got := HasPathSuffix(tt.path, tt.name); got != tt.want {
			t.Errorf("HasPathSuffix(%q, %q) = %v, want %v", tt.path, tt.name, got, tt.want)
		}
	}
}
