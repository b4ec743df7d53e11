package reval

// copySlice returns a one-level copy of s. Element values are shared; a nil
// slice stays nil. Every write-back path copies before mutating so a
// published snapshot is never modified in place.
func copySlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// copyMap returns a one-level copy of m. Values are shared; a nil map stays
// nil.
func copyMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
