package reval

import "errors"

// ErrReadOnly is returned when Set is called on a derived cell that was
// built without a write-back closure. Reads stay valid; only writes are
// rejected.
var ErrReadOnly = errors.New("reval: cell is read-only")

// ErrLengthMismatch is returned when a write to a derived array cell would
// change the number of elements it projects. Array transforms map positions
// onto fixed source indices; only operations on the source cell itself
// (Push, Pop, Splice, ...) may change its length.
var ErrLengthMismatch = errors.New("reval: array write-back must preserve length")

// ErrReentrantWrite is returned when Set on a derived cell is re-entered
// while its write-back is still applying. This is the feedback guard: a
// write-back that loops back into the same cell would otherwise double-apply
// the change or recurse forever.
var ErrReentrantWrite = errors.New("reval: re-entrant write to derived cell")

// ErrTypeMismatch is returned by SetAny when the value's dynamic type does
// not match the cell's element type, and by merged-cell writes addressing a
// key that exists in neither the cell map nor the literal table.
var ErrTypeMismatch = errors.New("reval: value type does not match cell")
