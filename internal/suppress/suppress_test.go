package suppress

import "testing"

func TestSuppressed(t *testing.T) {
	text := []byte("a := 1 // NOLINT\nb := 2\nc := 3 // NOLINT(whitespace-trailing)\r\nd := 4 /* NOLINTNEXTLINE */")

	tests := []struct {
		name string
		off  uint32
		want bool
	}{
		{"marker at end of line", 0, true},
		{"offset just before marker", 10, true},
		{"offset after marker start", 11, false},
		{"next line is not scanned", 17, false},
		{"arguments are ignored", 24, true},
		{"marker as prefix of a longer word", 63, true},
		{"past the end", 200, false},
	}
	for _, tt := range tests {
		if got := Suppressed(text, tt.off); got != tt.want {
			t.Errorf("%s: Suppressed(%d) = %v, want %v", tt.name, tt.off, got, tt.want)
		}
	}
}

func TestLineStopsAtCR(t *testing.T) {
	got := Line([]byte("abc\rNOLINT"), 0)
	if string(got) != "abc" {
		t.Fatalf("Line = %q, want %q", got, "abc")
	}
	if Contains(got) {
		t.Fatal("marker after \\r must not count")
	}
}

func TestLineAtEnd(t *testing.T) {
	text := []byte("x")
	if got := Line(text, 1); len(got) != 0 || got == nil {
		t.Fatalf("Line at len = %q (nil=%v), want empty non-nil", got, got == nil)
	}
}
