package reval

import (
	"errors"
	"testing"
)

func TestPropReadWrite(t *testing.T) {
	src := New(map[string]int{"a": 1, "b": 2})
	a := Prop(src, "a")

	if got := a.Get(); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}

	if err := a.Set(10); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	m := src.Get()
	if m["a"] != 10 || m["b"] != 2 {
		t.Errorf("expected {a:10 b:2}, got %v", m)
	}
}

func TestPropWriteDoesNotMutateSnapshot(t *testing.T) {
	orig := map[string]int{"a": 1}
	src := New(orig)
	a := Prop(src, "a")

	if err := a.Set(10); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if orig["a"] != 1 {
		t.Errorf("write must copy, not mutate the published map; got %v", orig)
	}
}

func TestPropMissingKeyReadsZero(t *testing.T) {
	src := New(map[string]int{"a": 1})
	missing := Prop(src, "nope")
	if got := missing.Get(); got != 0 {
		t.Errorf("expected zero for missing key, got %d", got)
	}

	// Writing a missing key inserts it.
	if err := missing.Set(7); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := src.Get()["nope"]; got != 7 {
		t.Errorf("expected inserted 7, got %d", got)
	}
}

func TestPropPushesOnSourceChange(t *testing.T) {
	src := New(map[string]int{"a": 1})
	a := Prop(src, "a")
	rec := &recorder[int]{}
	a.AddObserver(rec.fn, UpdatesOnly())

	m := copyMap(src.Get())
	m["a"] = 5
	src.Set(m)

	if len(rec.calls) != 1 || rec.calls[0].new != 5 || rec.calls[0].old != 1 {
		t.Errorf("expected (5, 1), got %v", rec.calls)
	}
}

func TestPropAtFollowsKeyCell(t *testing.T) {
	src := New(map[string]int{"x": 1, "y": 2})
	key := New("x")
	sel := PropAt(src, key)
	rec := &recorder[int]{}
	sel.AddObserver(rec.fn)

	if rec.calls[0].new != 1 {
		t.Fatalf("expected initial 1, got %d", rec.calls[0].new)
	}

	// Re-pointing the key is itself a change.
	key.Set("y")
	if len(rec.calls) != 2 || rec.calls[1].new != 2 || rec.calls[1].old != 1 {
		t.Fatalf("expected (2, 1) after re-point, got %v", rec.calls)
	}

	// Writes go to the entry the key currently selects.
	if err := sel.Set(20); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	m := src.Get()
	if m["x"] != 1 || m["y"] != 20 {
		t.Errorf("expected {x:1 y:20}, got %v", m)
	}
}

func TestPropOnReadOnlySource(t *testing.T) {
	src := New(map[string]int{"a": 1})
	view := Map(src, func(m, _ map[string]int) map[string]int { return m })
	a := Prop[string, int](view, "a")

	if err := a.Set(5); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly through a read-only source, got %v", err)
	}
}

func TestIndexReadWrite(t *testing.T) {
	src := New([]string{"a", "b", "c"})
	mid := Index(src, 1)

	if got := mid.Get(); got != "b" {
		t.Errorf("expected b, got %q", got)
	}
	if err := mid.Set("B"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	s := src.Get()
	if s[0] != "a" || s[1] != "B" || s[2] != "c" {
		t.Errorf("expected [a B c], got %v", s)
	}
}

func TestIndexOutOfRange(t *testing.T) {
	src := New([]int{1, 2})
	far := Index(src, 10)

	if got := far.Get(); got != 0 {
		t.Errorf("expected zero for out-of-range read, got %d", got)
	}
	if err := far.Set(9); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("expected ErrLengthMismatch for out-of-range write, got %v", err)
	}
}

func TestIndexAtFollowsIndexCell(t *testing.T) {
	src := New([]int{10, 20, 30})
	idx := New(0)
	sel := IndexAt(src, idx)
	rec := &recorder[int]{}
	sel.AddObserver(rec.fn)

	if rec.calls[0].new != 10 {
		t.Fatalf("expected initial 10, got %d", rec.calls[0].new)
	}

	idx.Set(2)
	if len(rec.calls) != 2 || rec.calls[1].new != 30 {
		t.Fatalf("expected 30 after re-point, got %v", rec.calls)
	}

	// Write lands at the current index, not the one at construction.
	if err := sel.Set(99); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	s := src.Get()
	if s[0] != 10 || s[2] != 99 {
		t.Errorf("expected [10 20 99], got %v", s)
	}
}
