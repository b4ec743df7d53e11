package reval

// Bool wraps a boolean cell with a toggle mutator.
type Bool struct {
	*Cell[bool]
}

// NewBool creates a boolean cell with the given initial value.
func NewBool(initial bool) Bool {
	return Bool{New(initial)}
}

// Toggle flips the value.
func (b Bool) Toggle() { _ = b.Update(func(v bool) bool { return !v }) }
