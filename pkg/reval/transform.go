package reval

import "sync"

// Map derives a read-only cell from src. get receives the current source
// value and the source value of the previous computation (zero on the
// first). The computation is memoized: while the source value stays
// reference-identical, the cached result is reused, so repeated Get calls
// in one logical tick do not recompute.
func Map[S, T any](src Readable[S], get func(new, old S) T) *Derived[T] {
	return MapWritable(src, get, nil)
}

// MapWritable derives a writable cell from src. set receives the value
// being written and the previous derived value, and is responsible for
// writing into the source cell(s); the library does not copy on its
// behalf. Transforms that must not mutate a published source snapshot
// shallow-copy before committing (see Prop, Index and the array
// transforms).
func MapWritable[S, T any](src Readable[S], get func(new, old S) T, set func(new, old T) error) *Derived[T] {
	var (
		mu      sync.Mutex
		prevIn  S
		hasPrev bool
		cached  T
	)

	d := newDerived(func() T {
		cur := src.Get()

		mu.Lock()
		if hasPrev && defaultEquals(cur, prevIn) {
			out := cached
			mu.Unlock()
			return out
		}
		old := prevIn
		prevIn = cur
		hasPrev = true
		mu.Unlock()

		out := get(cur, old)

		mu.Lock()
		cached = out
		mu.Unlock()
		return out
	}, set)

	dependOn(d, src)
	return d
}

// Combine2 derives a read-only cell from two upstream cells. It is the
// substrate for the relational helpers (Eq, Ne, Gt, ...), which are plain
// comparison getters over their two operands.
func Combine2[A, B, T any](a Readable[A], b Readable[B], fn func(A, B) T) *Derived[T] {
	d := newDerived(func() T {
		return fn(a.Get(), b.Get())
	}, nil)
	dependOn(d, a)
	dependOn(d, b)
	return d
}

// Combine3 derives a read-only cell from three upstream cells.
func Combine3[A, B, C, T any](a Readable[A], b Readable[B], c Readable[C], fn func(A, B, C) T) *Derived[T] {
	d := newDerived(func() T {
		return fn(a.Get(), b.Get(), c.Get())
	}, nil)
	dependOn(d, a)
	dependOn(d, b)
	dependOn(d, c)
	return d
}
