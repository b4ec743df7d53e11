package reval

import (
	"fmt"
	"sort"
	"sync"
)

// SliceTransform is a derived array cell that projects a subset (or
// reordering, or element-wise mapping) of a slice-valued source. Each
// refresh recomputes which source indices are alive; a write must supply
// exactly one element per alive index and is scattered back to those
// indices in a single source Set. The transform can never grow or shrink
// the source; length changes go through the source cell itself.
type SliceTransform[S, T any] struct {
	*Derived[[]T]

	src      Readable[[]S]
	selectFn func([]S) []int
	mapFn    func(S) T
	inv      func(T) S

	mu     sync.Mutex
	alive  []int
	prevAt []S
	out    []T
	hasOut bool
}

// Filtered derives the elements of src matching pred, in source order.
// Writing a same-length slice rewrites the matching source elements in
// place (one notification); a different length fails with
// ErrLengthMismatch.
func Filtered[T any](src Readable[[]T], pred func(T) bool) *SliceTransform[T, T] {
	return newSliceTransform(src, func(s []T) []int {
		idx := make([]int, 0, len(s))
		for i, v := range s {
			if pred(v) {
				idx = append(idx, i)
			}
		}
		return idx
	}, identity[T], identity[T])
}

// Sorted derives the elements of src ordered by less. The sort is stable,
// so equal elements keep their source order. Writes scatter back to the
// source positions the sorted view currently maps to.
func Sorted[T any](src Readable[[]T], less func(a, b T) bool) *SliceTransform[T, T] {
	return newSliceTransform(src, func(s []T) []int {
		idx := make([]int, len(s))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return less(s[idx[a]], s[idx[b]])
		})
		return idx
	}, identity[T], identity[T])
}

// Sliced derives the window [start, end) of src. A negative end means the
// end of the slice; bounds are clamped to the source length on every
// refresh.
func Sliced[T any](src Readable[[]T], start, end int) *SliceTransform[T, T] {
	return newSliceTransform(src, func(s []T) []int {
		lo, hi := start, end
		if hi < 0 || hi > len(s) {
			hi = len(s)
		}
		if lo < 0 {
			lo = 0
		}
		if lo > hi {
			lo = hi
		}
		idx := make([]int, 0, hi-lo)
		for i := lo; i < hi; i++ {
			idx = append(idx, i)
		}
		return idx
	}, identity[T], identity[T])
}

// MappedSlice derives fn applied to every element of src. inv, when
// non-nil, makes the result writable: written elements pass through inv on
// their way back to the source. With a nil inv the cell is read-only.
func MappedSlice[S, T any](src Readable[[]S], fn func(S) T, inv func(T) S) *SliceTransform[S, T] {
	return newSliceTransform(src, func(s []S) []int {
		idx := make([]int, len(s))
		for i := range idx {
			idx[i] = i
		}
		return idx
	}, fn, inv)
}

func identity[T any](v T) T { return v }

func newSliceTransform[S, T any](src Readable[[]S], selectFn func([]S) []int, mapFn func(S) T, inv func(T) S) *SliceTransform[S, T] {
	t := &SliceTransform[S, T]{
		src:      src,
		selectFn: selectFn,
		mapFn:    mapFn,
		inv:      inv,
	}
	var wb func(new, old []T) error
	if inv != nil {
		wb = t.applyWrite
	}
	t.Derived = newDerived(t.computeValue, wb)
	dependOn(t.Derived, src)
	return t
}

func (t *SliceTransform[S, T]) computeValue() []T {
	cur := t.src.Get()
	alive := t.selectFn(cur)

	// When the alive set and every alive element are unchanged, reuse the
	// previous slice. Identity-equal output means the commit is a no-op,
	// so an unrelated sibling element changing does not notify observers
	// of this view.
	t.mu.Lock()
	if t.hasOut && len(alive) == len(t.alive) {
		same := true
		for i, idx := range alive {
			if idx != t.alive[i] || !defaultEquals(cur[idx], t.prevAt[i]) {
				same = false
				break
			}
		}
		if same {
			out := t.out
			t.mu.Unlock()
			return out
		}
	}
	t.mu.Unlock()

	prevAt := make([]S, len(alive))
	out := make([]T, len(alive))
	for i, idx := range alive {
		prevAt[i] = cur[idx]
		out[i] = t.mapFn(cur[idx])
	}

	t.mu.Lock()
	t.alive = alive
	t.prevAt = prevAt
	t.out = out
	t.hasOut = true
	t.mu.Unlock()
	return out
}

func (t *SliceTransform[S, T]) applyWrite(v, _ []T) error {
	w, ok := t.src.(Writable[[]S])
	if !ok {
		return ErrReadOnly
	}

	t.mu.Lock()
	alive := make([]int, len(t.alive))
	copy(alive, t.alive)
	t.mu.Unlock()

	if len(v) != len(alive) {
		return fmt.Errorf("reval: write of %d elements to view of %d: %w", len(v), len(alive), ErrLengthMismatch)
	}

	cp := copySlice(t.src.Get())
	for i, idx := range alive {
		if idx < 0 || idx >= len(cp) {
			return fmt.Errorf("reval: source shrank under view: %w", ErrLengthMismatch)
		}
		cp[idx] = t.inv(v[i])
	}
	return w.Set(cp)
}
