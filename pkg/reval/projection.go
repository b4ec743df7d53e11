package reval

import "fmt"

// Prop projects one key of a map-valued cell. Reading a missing key yields
// the zero value. Writing shallow-copies the source map, assigns the key
// and commits the copy in a single Set, so the published snapshot is never
// mutated in place. The write fails with ErrReadOnly if the source is not
// writable.
func Prop[K comparable, V any](src Readable[map[K]V], key K) *Derived[V] {
	return projectMap(src, func() K { return key })
}

// PropAt is Prop with a cell-valued key: the projection tracks both the
// source and the key, re-pointing at a different entry when the key cell
// changes. The key resolves at access time, for reads and writes alike.
func PropAt[K comparable, V any](src Readable[map[K]V], key Readable[K]) *Derived[V] {
	d := projectMap(src, key.Get)
	dependOn(d, key)
	return d
}

func projectMap[K comparable, V any](src Readable[map[K]V], key func() K) *Derived[V] {
	d := newDerived(func() V {
		return src.Get()[key()]
	}, func(v, _ V) error {
		w, ok := src.(Writable[map[K]V])
		if !ok {
			return ErrReadOnly
		}
		cp := copyMap(src.Get())
		if cp == nil {
			cp = make(map[K]V, 1)
		}
		cp[key()] = v
		return w.Set(cp)
	})
	dependOn(d, src)
	return d
}

// Index projects one element of a slice-valued cell. Reading an
// out-of-range index yields the zero value; writing one fails with
// ErrLengthMismatch, since it cannot be expressed without resizing the
// source.
func Index[T any](src Readable[[]T], i int) *Derived[T] {
	return projectSlice(src, func() int { return i })
}

// IndexAt is Index with a cell-valued index, resolved at access time: the
// projection follows the index cell across elements and writes back to
// whichever element it currently points at.
func IndexAt[T any](src Readable[[]T], idx Readable[int]) *Derived[T] {
	d := projectSlice(src, idx.Get)
	dependOn(d, idx)
	return d
}

func projectSlice[T any](src Readable[[]T], index func() int) *Derived[T] {
	d := newDerived(func() T {
		s := src.Get()
		i := index()
		if i < 0 || i >= len(s) {
			var zero T
			return zero
		}
		return s[i]
	}, func(v, _ T) error {
		w, ok := src.(Writable[[]T])
		if !ok {
			return ErrReadOnly
		}
		s := src.Get()
		i := index()
		if i < 0 || i >= len(s) {
			return fmt.Errorf("reval: index %d out of range for slice of %d: %w", i, len(s), ErrLengthMismatch)
		}
		cp := copySlice(s)
		cp[i] = v
		return w.Set(cp)
	})
	dependOn(d, src)
	return d
}
