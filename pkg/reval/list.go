package reval

// List wraps a slice-valued cell with copy-on-write array mutators. These
// are the only operations that may change the length of the backing array;
// derived array views (Filtered, Sorted, Sliced, MappedSlice) can only
// rewrite elements in place.
type List[T any] struct {
	*Cell[[]T]
}

// NewList creates a list cell. A nil initial value becomes an empty slice.
func NewList[T any](initial []T) List[T] {
	if initial == nil {
		initial = []T{}
	}
	return List[T]{New(initial)}
}

// Push appends items to the end.
func (l List[T]) Push(items ...T) {
	_ = l.Update(func(cur []T) []T {
		out := make([]T, 0, len(cur)+len(items))
		out = append(out, cur...)
		return append(out, items...)
	})
}

// Pop removes and returns the last item. The second result is false on an
// empty list.
func (l List[T]) Pop() (T, bool) {
	var out T
	var ok bool
	_ = l.Update(func(cur []T) []T {
		if len(cur) == 0 {
			return cur
		}
		out, ok = cur[len(cur)-1], true
		return cur[:len(cur)-1]
	})
	return out, ok
}

// Shift removes and returns the first item. The second result is false on
// an empty list.
func (l List[T]) Shift() (T, bool) {
	var out T
	var ok bool
	_ = l.Update(func(cur []T) []T {
		if len(cur) == 0 {
			return cur
		}
		out, ok = cur[0], true
		return cur[1:]
	})
	return out, ok
}

// Unshift prepends items to the front.
func (l List[T]) Unshift(items ...T) {
	_ = l.Update(func(cur []T) []T {
		out := make([]T, 0, len(cur)+len(items))
		out = append(out, items...)
		return append(out, cur...)
	})
}

// Splice removes deleteCount items starting at start and inserts items in
// their place. Bounds are clamped.
func (l List[T]) Splice(start, deleteCount int, items ...T) {
	_ = l.Update(func(cur []T) []T {
		if start < 0 {
			start = 0
		}
		if start > len(cur) {
			start = len(cur)
		}
		end := start + deleteCount
		if end < start {
			end = start
		}
		if end > len(cur) {
			end = len(cur)
		}
		out := make([]T, 0, len(cur)-(end-start)+len(items))
		out = append(out, cur[:start]...)
		out = append(out, items...)
		return append(out, cur[end:]...)
	})
}

// SetAt replaces the item at index i. Out-of-bounds writes are ignored.
func (l List[T]) SetAt(i int, v T) {
	_ = l.Update(func(cur []T) []T {
		if i < 0 || i >= len(cur) {
			return cur
		}
		out := copySlice(cur)
		out[i] = v
		return out
	})
}

// At returns the item at index i. The second result is false when i is out
// of bounds.
func (l List[T]) At(i int) (T, bool) {
	cur := l.Get()
	if i < 0 || i >= len(cur) {
		var zero T
		return zero, false
	}
	return cur[i], true
}

// Len returns the current length.
func (l List[T]) Len() int { return len(l.Get()) }

// Filtered derives the elements matching pred. See the package-level
// Filtered for write-back semantics.
func (l List[T]) Filtered(pred func(T) bool) *SliceTransform[T, T] {
	return Filtered[T](l.Cell, pred)
}

// Sorted derives the elements ordered by less.
func (l List[T]) Sorted(less func(a, b T) bool) *SliceTransform[T, T] {
	return Sorted[T](l.Cell, less)
}

// Sliced derives the window [start, end); negative end means the end of
// the list.
func (l List[T]) Sliced(start, end int) *SliceTransform[T, T] {
	return Sliced[T](l.Cell, start, end)
}

// Mapped derives fn applied to every element, staying within the element
// type. A nil inv makes the view read-only; cross-type mappings go through
// the package-level MappedSlice.
func (l List[T]) Mapped(fn func(T) T, inv func(T) T) *SliceTransform[T, T] {
	return MappedSlice[T, T](l.Cell, fn, inv)
}

// IndexAt projects the element the index cell currently points at.
func (l List[T]) IndexAt(idx Readable[int]) *Derived[T] {
	return IndexAt[T](l.Cell, idx)
}
