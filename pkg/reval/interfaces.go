package reval

// Readable is the read capability of a cell. It is implemented by *Cell,
// *Derived and the transform types; the unexported methods keep the graph
// wiring inside this package.
type Readable[T any] interface {
	// Get returns the current value. On a derived cell without observers
	// this recomputes from upstream first.
	Get() T

	// Peek returns the cached value without triggering recomputation.
	Peek() T

	// AddObserver registers fn for change delivery.
	AddObserver(fn func(new, old T), opts ...ObserverOption) *Observer[T]

	// Pause suppresses outgoing notifications; Resume flushes at most one.
	Pause()
	Resume()

	// edgeOn returns a dormant dependency edge that runs fn after this cell
	// changes. Used by derived cells for upstream wiring.
	edgeOn(fn func()) *edge

	// observed reports whether the cell currently has active observers.
	observed() bool
}

// Writable is the write capability of a cell.
type Writable[T any] interface {
	Readable[T]

	// Set replaces the value. Fails with ErrReadOnly on a derived cell
	// without write-back, ErrLengthMismatch on an array transform whose
	// write changes length, or ErrReentrantWrite if the feedback guard
	// trips.
	Set(v T) error

	// Update replaces the value with fn(current).
	Update(fn func(T) T) error
}

// AnyReadable is the type-erased read capability, used where cells of
// different element types meet (merged cells, mixed combinators).
type AnyReadable interface {
	// GetAny returns the current value as an interface{}.
	GetAny() any

	edgeOn(fn func()) *edge
}

// AnyWritable is the type-erased write capability.
type AnyWritable interface {
	AnyReadable

	// SetAny sets the value from an interface{}. Fails with
	// ErrTypeMismatch if the dynamic type does not match.
	SetAny(v any) error
}

// observable is the minimal surface needed to register a dependency edge.
type observable interface {
	edgeOn(fn func()) *edge
}
