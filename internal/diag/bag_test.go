package diag

import "testing"

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(4)
	// два независимых юнита сообщили одно и то же
	b.Add(NewWarning("a-check", Message{Text: "zeta", Path: "b.go", Offset: 4}))
	b.Add(NewWarning("a-check", Message{Text: "dup", Path: "a.go", Offset: 7}))
	other := NewBag(2)
	other.Add(NewWarning("b-check", Message{Text: "dup", Path: "a.go", Offset: 7}))
	other.Add(NewWarning("a-check", Message{Text: "alpha", Path: "b.go", Offset: 4}))
	b.Merge(other)

	b.Sort()
	if removed := b.Dedup(); removed != 1 {
		t.Fatalf("Dedup removed %d, want 1", removed)
	}

	items := b.Items()
	want := []struct {
		path, text, check string
	}{
		{"a.go", "dup", "a-check"},
		{"b.go", "alpha", "a-check"},
		{"b.go", "zeta", "a-check"},
	}
	if len(items) != len(want) {
		t.Fatalf("got %d diagnostics, want %d", len(items), len(want))
	}
	for i, w := range want {
		m := items[i].Message
		if m.Path != w.path || m.Text != w.text || items[i].Check != w.check {
			t.Errorf("item %d = %s %s %q, want %s %s %q", i, items[i].Check, m.Path, m.Text, w.check, w.path, w.text)
		}
	}

	// повторная дедупликация ничего не меняет
	if removed := b.Dedup(); removed != 0 {
		t.Errorf("second Dedup removed %d", removed)
	}
}

func TestBagInvalidLocationSortsFirst(t *testing.T) {
	b := NewBag(2)
	b.Add(NewWarning("x", Message{Text: "located", Path: "a.go"}))
	b.Add(NewWarning("x", Message{Text: "from command line"}))
	b.Sort()
	if b.Items()[0].Message.HasLocation() {
		t.Fatal("expected the diagnostic without location first")
	}
}

func TestWithEditsSkipsIdentical(t *testing.T) {
	e := Edit{Path: "a.go", Offset: 1, Length: 2, NewText: "x"}
	d := NewWarning("x", Message{Text: "m"}).WithEdits(e, e, Edit{Path: "a.go", Offset: 1, Length: 2, NewText: "y"})
	if len(d.Edits) != 2 {
		t.Fatalf("got %d edits, want 2", len(d.Edits))
	}
}

func TestBagHasErrors(t *testing.T) {
	b := NewBag(1)
	b.Add(NewWarning("x", Message{Text: "w"}))
	if b.HasErrors() {
		t.Fatal("warning counted as error")
	}
	b.Add(New(SevError, "x", Message{Text: "e"}))
	if !b.HasErrors() {
		t.Fatal("error not detected")
	}
}
