package fix

import (
	"testing"

	"tidy/internal/diag"
	"tidy/internal/source"
)

func TestResolveOverlapGroup(t *testing.T) {
	res := Resolve("f.txt", []diag.Edit{edit(20, 5, "c"), edit(12, 8, "b"), edit(10, 5, "a")})

	if len(res.Conflicts) != 1 {
		t.Fatalf("got %d conflict groups, want 1", len(res.Conflicts))
	}
	g := res.Conflicts[0]
	if len(g.Edits) != 2 || g.Edits[0] != edit(10, 5, "a") || g.Edits[1] != edit(12, 8, "b") {
		t.Fatalf("unexpected group: %v", g.Edits)
	}
	if len(res.Accepted) != 1 || res.Accepted[0] != edit(20, 5, "c") {
		t.Fatalf("unexpected accepted set: %v", res.Accepted)
	}
}

func TestResolveTransitiveRun(t *testing.T) {
	// [0,10) и [8,12) пересекаются, [11,15) пересекается только со вторым
	res := Resolve("f.txt", []diag.Edit{edit(0, 10, "a"), edit(8, 4, "b"), edit(11, 4, "c"), edit(15, 1, "d")})
	if len(res.Conflicts) != 1 || len(res.Conflicts[0].Edits) != 3 {
		t.Fatalf("want one group of 3, got %+v", res.Conflicts)
	}
	if len(res.Accepted) != 1 || res.Accepted[0].Offset != 15 {
		t.Fatalf("touching edit must stay accepted: %v", res.Accepted)
	}
}

func TestResolveDeduplicates(t *testing.T) {
	res := Resolve("f.txt", []diag.Edit{edit(3, 2, "x"), edit(3, 2, "x"), edit(0, 0, "i"), edit(0, 0, "i")})
	if res.HasConflicts() {
		t.Fatalf("identical edits must not conflict: %+v", res.Conflicts)
	}
	if res.Duplicates != 2 || len(res.Accepted) != 2 {
		t.Fatalf("Duplicates=%d Accepted=%v", res.Duplicates, res.Accepted)
	}
	if res.Accepted[0].Offset != 0 || res.Accepted[1].Offset != 3 {
		t.Errorf("accepted set not sorted: %v", res.Accepted)
	}
}

func TestResolveInsertions(t *testing.T) {
	tests := []struct {
		name     string
		edits    []diag.Edit
		conflict bool
	}{
		{"different insertions at one offset", []diag.Edit{edit(4, 0, "a"), edit(4, 0, "b")}, true},
		{"insertion at replacement start", []diag.Edit{edit(4, 3, "r"), edit(4, 0, "i")}, true},
		{"insertion inside replacement", []diag.Edit{edit(4, 3, "r"), edit(5, 0, "i")}, true},
		{"insertion at replacement end", []diag.Edit{edit(4, 3, "r"), edit(7, 0, "i")}, false},
		{"adjacent replacements", []diag.Edit{edit(0, 2, "a"), edit(2, 2, "b")}, false},
	}
	for _, tt := range tests {
		res := Resolve("f.txt", tt.edits)
		if res.HasConflicts() != tt.conflict {
			t.Errorf("%s: HasConflicts = %v, want %v", tt.name, res.HasConflicts(), tt.conflict)
		}
		accepted := len(res.Accepted)
		if tt.conflict && accepted != 0 || !tt.conflict && accepted != len(tt.edits) {
			t.Errorf("%s: accepted %d edits", tt.name, accepted)
		}
	}
}

func TestResolveDeterministicOrder(t *testing.T) {
	a := Resolve("f.txt", []diag.Edit{edit(1, 0, "z"), edit(1, 0, "a")})
	b := Resolve("f.txt", []diag.Edit{edit(1, 0, "a"), edit(1, 0, "z")})
	if a.Conflicts[0].Edits[0] != b.Conflicts[0].Edits[0] {
		t.Fatal("group order depends on input order")
	}
}

func TestResolveEmpty(t *testing.T) {
	res := Resolve("f.txt", nil)
	if res.HasConflicts() || len(res.Accepted) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestCollectGroupsByNormalizedPath(t *testing.T) {
	byFile, paths := Collect([]diag.Edit{
		{Path: "b/x.go", Offset: 1},
		{Path: "./a.go", Offset: 2},
		{Path: "a.go", Offset: 3},
	})
	if len(paths) != 2 || paths[0] != "a.go" || paths[1] != "b/x.go" {
		t.Fatalf("paths = %v", paths)
	}
	if len(byFile["a.go"]) != 2 {
		t.Fatalf("a.go edits = %v", byFile["a.go"])
	}
}

func TestSpanOf(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("s.go", []byte("abc\ndefg\n")))

	ins := SpanOf(f, diag.Edit{Offset: 4})
	if ins.Start != (source.LineCol{Line: 2, Col: 1}) || ins.End != ins.Start {
		t.Errorf("insertion span = %+v", ins)
	}
	rep := SpanOf(f, diag.Edit{Offset: 1, Length: 5})
	if rep.Start != (source.LineCol{Line: 1, Col: 2}) || rep.End != (source.LineCol{Line: 2, Col: 2}) {
		t.Errorf("replacement span = %+v", rep)
	}
}

func TestResolveEndPastUint32(t *testing.T) {
	// Offset+Length не помещается в uint32: конец не должен заворачиваться
	huge := edit(10, 0xFFFFFFFF, "x")
	res := Resolve("f.txt", []diag.Edit{huge, edit(20, 5, "y")})
	if len(res.Accepted) != 0 {
		t.Fatalf("overlapping edits accepted: %v", res.Accepted)
	}
	if len(res.Conflicts) != 1 || len(res.Conflicts[0].Edits) != 2 {
		t.Fatalf("want one group of 2, got %+v", res.Conflicts)
	}
	if huge.Limit() != 0x100000009 {
		t.Errorf("Limit = %#x", huge.Limit())
	}

	applied := ApplyEdits(make([]byte, 40), []diag.Edit{huge})
	if applied.Applied != 0 || len(applied.Failures) != 1 {
		t.Errorf("Applied = %d, failures = %v", applied.Applied, applied.Failures)
	}
}
