package reval

import "reflect"

// defaultEquals is the library's change-detection rule: primitives compare
// by ==, slices, maps, pointers, funcs and channels by reference identity.
// There is deliberately no deep comparison; Set stays O(1) regardless of
// value size, and publishing a structurally equal but distinct snapshot
// counts as a change.
func defaultEquals[T any](a, b T) bool {
	return anyEquals(any(a), any(b))
}

// anyEquals is the type-erased form of defaultEquals, shared with the
// merged-cell machinery.
func anyEquals(a, b any) bool {
	switch av := a.(type) {
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int8:
		bv, ok := b.(int8)
		return ok && av == bv
	case int16:
		bv, ok := b.(int16)
		return ok && av == bv
	case int32:
		bv, ok := b.(int32)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case uint:
		bv, ok := b.(uint)
		return ok && av == bv
	case uint8:
		bv, ok := b.(uint8)
		return ok && av == bv
	case uint16:
		bv, ok := b.(uint16)
		return ok && av == bv
	case uint32:
		bv, ok := b.(uint32)
		return ok && av == bv
	case uint64:
		bv, ok := b.(uint64)
		return ok && av == bv
	case float32:
		bv, ok := b.(float32)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	default:
		return identityEquals(a, b)
	}
}

// identityEquals compares reference types by identity and remaining
// comparable types by ==. Non-comparable composites are always treated as
// changed.
func identityEquals(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() != vb.Kind() {
		return false
	}
	switch va.Kind() {
	case reflect.Slice:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Map, reflect.Chan, reflect.Func, reflect.Pointer, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	default:
		if va.Type() == vb.Type() && va.Comparable() {
			return va.Equal(vb)
		}
		return false
	}
}

// neverEquals forces every delivery through. Internal dependency edges use
// it so a dormant-then-reactivated edge cannot skip a legitimate change
// against a stale baseline.
func neverEquals[T any](T, T) bool { return false }
