package reval

import (
	"errors"
	"testing"
)

func TestMergeMirrorsSources(t *testing.T) {
	name := New("ada")
	age := New(36)
	m := Merge(map[string]any{
		"name": name,
		"age":  age,
		"kind": "person", // literal
	})

	got := m.Get()
	if got["name"] != "ada" || got["age"] != 36 || got["kind"] != "person" {
		t.Errorf("unexpected record %v", got)
	}

	if keys := m.Keys(); len(keys) != 3 || keys[0] != "age" || keys[1] != "kind" || keys[2] != "name" {
		t.Errorf("expected sorted keys [age kind name], got %v", keys)
	}
}

func TestMergePushesSourceChanges(t *testing.T) {
	name := New("ada")
	m := Merge(map[string]any{"name": name, "kind": "person"})
	rec := &recorder[map[string]any]{}
	m.AddObserver(rec.fn)

	name.Set("grace")
	if len(rec.calls) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(rec.calls))
	}
	if rec.calls[1].new["name"] != "grace" || rec.calls[1].old["name"] != "ada" {
		t.Errorf("expected name ada -> grace, got %v", rec.calls)
	}
}

func TestMergeWriteDispatchesToCells(t *testing.T) {
	name := New("ada")
	age := New(36)
	m := Merge(map[string]any{"name": name, "age": age})

	err := m.Set(map[string]any{"name": "grace", "age": 36})
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := name.Get(); got != "grace" {
		t.Errorf("expected grace, got %q", got)
	}
	// Unchanged keys are not re-set on their source cells.
	if got := age.Get(); got != 36 {
		t.Errorf("expected 36, got %d", got)
	}
}

func TestMergeWriteUpdatesLiterals(t *testing.T) {
	name := New("ada")
	m := Merge(map[string]any{"name": name, "kind": "person"})

	if err := m.Set(map[string]any{"kind": "robot"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := m.Get()["kind"]; got != "robot" {
		t.Errorf("expected robot, got %v", got)
	}
	// The literal lives in the record only; no cell was involved.
	if got := name.Get(); got != "ada" {
		t.Errorf("name must be untouched, got %q", got)
	}
}

func TestMergeWriteUnknownKey(t *testing.T) {
	m := Merge(map[string]any{"a": New(1)})
	err := m.Set(map[string]any{"b": 2})
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch for unknown key, got %v", err)
	}
}

func TestMergeWriteWrongValueType(t *testing.T) {
	age := New(36)
	m := Merge(map[string]any{"age": age})
	err := m.Set(map[string]any{"age": "old"})
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
	if got := age.Get(); got != 36 {
		t.Errorf("failed write must not touch the cell, got %d", got)
	}
}

func TestMergeSkipsNoOpRefresh(t *testing.T) {
	a := New(1)
	b := New([]int{1, 2})
	m := Merge(map[string]any{"a": a, "b": b})
	rec := &recorder[map[string]any]{}
	m.AddObserver(rec.fn, UpdatesOnly())

	// Re-setting the same values produces no record change.
	a.Set(1)
	if len(rec.calls) != 0 {
		t.Errorf("no-op source set must not notify, got %d calls", len(rec.calls))
	}

	a.Set(2)
	if len(rec.calls) != 1 || rec.calls[0].new["a"] != 2 {
		t.Errorf("expected one delivery with a=2, got %v", rec.calls)
	}
}

func TestBooleanCombinators(t *testing.T) {
	a, b := New(true), New(false)

	and := And(a, b)
	or := Or(a, b)
	not := Not(b)

	if and.Get() {
		t.Error("true AND false must be false")
	}
	if !or.Get() {
		t.Error("true OR false must be true")
	}
	if !not.Get() {
		t.Error("NOT false must be true")
	}

	rec := &recorder[bool]{}
	and.AddObserver(rec.fn, UpdatesOnly())
	b.Set(true)
	if len(rec.calls) != 1 || !rec.calls[0].new {
		t.Errorf("expected AND to flip true, got %v", rec.calls)
	}
}

func TestComparisonCombinators(t *testing.T) {
	a, b := New(3), New(5)

	if Eq(a, b).Get() {
		t.Error("3 == 5 must be false")
	}
	if !Ne(a, b).Get() {
		t.Error("3 != 5 must be true")
	}
	if Gt(a, b).Get() {
		t.Error("3 > 5 must be false")
	}
	if !Lt(a, b).Get() {
		t.Error("3 < 5 must be true")
	}
	if !Le(a, a).Get() {
		t.Error("3 <= 3 must be true")
	}
	if !Ge(b, a).Get() {
		t.Error("5 >= 3 must be true")
	}

	gt := Gt(a, b)
	rec := &recorder[bool]{}
	gt.AddObserver(rec.fn, UpdatesOnly())
	a.Set(10)
	if len(rec.calls) != 1 || !rec.calls[0].new {
		t.Errorf("expected Gt to flip true, got %v", rec.calls)
	}
}
