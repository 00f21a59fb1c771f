package aggregate

import (
	"errors"
	"testing"
)

func TestParseLineFilter(t *testing.T) {
	lf, err := ParseLineFilter(`[{"name":"file.go","lines":[[1,3],[5,7]]},{"name":"other.go"}]`)
	if err != nil {
		t.Fatalf("ParseLineFilter: %v", err)
	}
	if len(lf) != 2 || len(lf[0].Lines) != 2 || lf[0].Lines[1] != (LineRange{First: 5, Last: 7}) {
		t.Fatalf("unexpected filter: %+v", lf)
	}

	tests := []struct {
		path string
		line uint32
		want bool
	}{
		{"src/file.go", 1, true},
		{"src/file.go", 3, true},
		{"src/file.go", 4, false},
		{"src/file.go", 7, true},
		{"src/file.go", 8, false},
		{"other.go", 100, true},
		{"unlisted.go", 100, true},
		{"myfile.go", 4, true},
	}
	for _, tt := range tests {
		if got := lf.Allows(tt.path, tt.line); got != tt.want {
			t.Errorf("Allows(%q, %d) = %v, want %v", tt.path, tt.line, got, tt.want)
		}
	}
}

func TestParseLineFilterEmpty(t *testing.T) {
	lf, err := ParseLineFilter("")
	if err != nil || lf != nil {
		t.Fatalf("ParseLineFilter(\"\") = %v, %v", lf, err)
	}
	if !lf.Allows("x.go", 1) {
		t.Fatal("nil filter must allow everything")
	}
}

func TestParseLineFilterErrors(t *testing.T) {
	for _, input := range []string{
		`{"name":"x"}`,
		`[{"name":"x","lines":[[1]]}]`,
		`[{"name":"x","lines":[[5,1]]}]`,
		`[{"name":"x","lines":[[0,1]]}]`,
		`[{"lines":[[1,2]]}]`,
	} {
		_, err := ParseLineFilter(input)
		var lfErr *LineFilterError
		if !errors.As(err, &lfErr) {
			t.Errorf("ParseLineFilter(%s) = %v, want *LineFilterError", input, err)
		}
	}
}
