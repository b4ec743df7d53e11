package reval

import "golang.org/x/exp/constraints"

// And derives the conjunction of boolean cells. It is lazy like every
// derived cell but not short-circuiting in its dependencies: all operands
// are observed so any change re-evaluates.
func And(cells ...Readable[bool]) *Derived[bool] {
	d := newDerived(func() bool {
		for _, c := range cells {
			if !c.Get() {
				return false
			}
		}
		return true
	}, nil)
	for _, c := range cells {
		dependOn(d, c)
	}
	return d
}

// Or derives the disjunction of boolean cells.
func Or(cells ...Readable[bool]) *Derived[bool] {
	d := newDerived(func() bool {
		for _, c := range cells {
			if c.Get() {
				return true
			}
		}
		return false
	}, nil)
	for _, c := range cells {
		dependOn(d, c)
	}
	return d
}

// Not derives the negation of a boolean cell.
func Not(c Readable[bool]) *Derived[bool] {
	return Map(c, func(v, _ bool) bool { return !v })
}

// Eq derives a == b.
func Eq[T comparable](a, b Readable[T]) *Derived[bool] {
	return Combine2(a, b, func(x, y T) bool { return x == y })
}

// Ne derives a != b.
func Ne[T comparable](a, b Readable[T]) *Derived[bool] {
	return Combine2(a, b, func(x, y T) bool { return x != y })
}

// Gt derives a > b.
func Gt[T constraints.Ordered](a, b Readable[T]) *Derived[bool] {
	return Combine2(a, b, func(x, y T) bool { return x > y })
}

// Ge derives a >= b.
func Ge[T constraints.Ordered](a, b Readable[T]) *Derived[bool] {
	return Combine2(a, b, func(x, y T) bool { return x >= y })
}

// Lt derives a < b.
func Lt[T constraints.Ordered](a, b Readable[T]) *Derived[bool] {
	return Combine2(a, b, func(x, y T) bool { return x < y })
}

// Le derives a <= b.
func Le[T constraints.Ordered](a, b Readable[T]) *Derived[bool] {
	return Combine2(a, b, func(x, y T) bool { return x <= y })
}
