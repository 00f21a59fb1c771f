package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tidy/internal/aggregate"
	"tidy/internal/checks"
	"tidy/internal/config"
	"tidy/internal/glob"
	"tidy/internal/progress"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, text := range files {
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func newRegistry(t *testing.T) *checks.Registry {
	t.Helper()
	reg := checks.NewRegistry()
	if err := reg.AddModules(checks.Builtin()...); err != nil {
		t.Fatal(err)
	}
	return reg
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestCheckAndFix(t *testing.T) {
	t.Setenv("USER", "tester")
	root := writeTree(t, map[string]string{
		"a.go":         "x := 1  \n// TODO: y\n",
		"b.go":         "ok\t \n// NOLINT  \n",
		".git/head.go": "ignored  \n",
		"bin.dat":      "\x00\x01  \n",
	})
	col := &progress.Collector{}
	res, err := Check(context.Background(), Options{
		Paths:    []string{root},
		BaseDir:  root,
		Registry: newRegistry(t),
		Jobs:     2,
		Progress: col,
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(res.Units) != 2 {
		t.Fatalf("units = %d, want 2", len(res.Units))
	}
	if len(res.Skipped) != 1 {
		t.Errorf("skipped = %v", res.Skipped)
	}
	if len(res.Diagnostics) != 3 {
		t.Fatalf("diagnostics = %+v", res.Diagnostics)
	}
	want := aggregate.Snapshot{Displayed: 3, IgnoredBySuppression: 1}
	if res.Stats != want {
		t.Errorf("stats = %+v, want %+v", res.Stats, want)
	}
	if len(col.Events()) == 0 {
		t.Error("no progress events")
	}

	plan, err := Fix(context.Background(), res, nil, nil)
	if err != nil {
		t.Fatalf("Fix: %v", err)
	}
	if plan.Applied != 3 || len(plan.Conflicts) != 0 {
		t.Errorf("applied %d of %d, conflicts %d", plan.Applied, plan.Attempted, len(plan.Conflicts))
	}
	changes, err := plan.Write(context.Background(), root)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(changes) != 2 {
		t.Errorf("changes = %+v", changes)
	}
	if got := readFile(t, filepath.Join(root, "a.go")); got != "x := 1\n// TODO(tester): y\n" {
		t.Errorf("a.go = %q", got)
	}
	if got := readFile(t, filepath.Join(root, "b.go")); got != "ok\n// NOLINT  \n" {
		t.Errorf("b.go = %q", got)
	}
}

func TestCheckLineFilter(t *testing.T) {
	root := writeTree(t, map[string]string{"a.go": "one \ntwo \nthree \n"})
	lf, err := aggregate.ParseLineFilter(`[{"name":"a.go","lines":[[2,2]]}]`)
	if err != nil {
		t.Fatal(err)
	}
	res, err := Check(context.Background(), Options{
		Paths:      []string{filepath.Join(root, "a.go")},
		Registry:   newRegistry(t),
		LineFilter: lf,
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(res.Diagnostics) != 1 || res.Stats.IgnoredByLineRange != 2 {
		t.Errorf("diagnostics %d, stats %+v", len(res.Diagnostics), res.Stats)
	}
}

func TestCheckConfigErrorIsFatal(t *testing.T) {
	root := writeTree(t, map[string]string{
		config.FileName: "checks = \"foo,-\"\n",
		"a.go":          "x \n",
	})
	col := &progress.Collector{}
	_, err := Check(context.Background(), Options{
		Paths:    []string{root},
		Registry: newRegistry(t),
		Config:   config.NewProvider(config.Defaults(), config.Options{}),
		Progress: col,
	})
	var globErr *glob.ConfigError
	if !errors.As(err, &globErr) {
		t.Fatalf("Check = %v, want *glob.ConfigError", err)
	}
	if n := len(col.Events()); n != 0 {
		t.Errorf("%d progress events before a fatal setup error", n)
	}
}

func TestCheckDiskCacheReplay(t *testing.T) {
	t.Setenv("USER", "tester")
	root := writeTree(t, map[string]string{"a.go": "x  \n// TODO: later\n"})
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Paths: []string{root}, Registry: newRegistry(t), Cache: cache}

	first, err := Check(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Check: %v", err)
	}
	second, err := Check(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Check: %v", err)
	}
	if first.Units[0].Cached || !second.Units[0].Cached {
		t.Errorf("cached flags: %v, %v", first.Units[0].Cached, second.Units[0].Cached)
	}
	if first.Stats != second.Stats {
		t.Errorf("stats differ: %+v vs %+v", first.Stats, second.Stats)
	}
	if len(first.Diagnostics) != len(second.Diagnostics) {
		t.Fatalf("diagnostics differ: %d vs %d", len(first.Diagnostics), len(second.Diagnostics))
	}
	for i := range first.Diagnostics {
		a, b := first.Diagnostics[i], second.Diagnostics[i]
		if a.Check != b.Check || a.Message != b.Message || len(a.Edits) != len(b.Edits) {
			t.Errorf("diagnostic %d differs: %+v vs %+v", i, a, b)
		}
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	third, err := Check(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.Units[0].Cached {
		t.Error("hit after DropAll")
	}
}

func TestExpandPaths(t *testing.T) {
	root := writeTree(t, map[string]string{
		"b.go":          "",
		"sub/a.go":      "",
		".hidden/c.go":  "",
		"sub/.d/e.go":   "",
		"sub/.keep.txt": "",
	})
	got, err := ExpandPaths([]string{root, filepath.Join(root, "b.go")})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("ExpandPaths = %v", got)
	}
	if filepath.Base(got[0]) != "b.go" || filepath.Base(got[1]) != "a.go" {
		t.Errorf("order = %v", got)
	}
	if _, err := ExpandPaths([]string{filepath.Join(root, "missing")}); err == nil {
		t.Error("expected error for a missing path")
	}
}

func TestApply(t *testing.T) {
	root := writeTree(t, map[string]string{"src/a.txt": "hello world\n"})
	target := filepath.Join(root, "src", "a.txt")
	yaml := "MainSourceFile: a.txt\nReplacements:\n" +
		"  - FilePath: " + target + "\n    Offset: 0\n    Length: 5\n    ReplacementText: HELLO\n" +
		"  - FilePath: " + filepath.Join(root, "gone.txt") + "\n    Offset: 0\n    Length: 1\n    ReplacementText: x\n"
	fixes := writeTree(t, map[string]string{"fixes/a.yaml": yaml})

	out, err := Apply(context.Background(), fixes, 2, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(out.Plan.Missing) != 1 {
		t.Errorf("missing = %+v", out.Plan.Missing)
	}
	if _, err := out.Plan.Write(context.Background(), ""); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, target); got != "HELLO world\n" {
		t.Errorf("a.txt = %q", got)
	}
}
