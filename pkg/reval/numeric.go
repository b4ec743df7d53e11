package reval

import "golang.org/x/exp/constraints"

// Numeric constrains the element types the Number wrapper accepts.
type Numeric interface {
	constraints.Integer | constraints.Float
}

// Number wraps a numeric cell with arithmetic convenience mutators.
type Number[T Numeric] struct {
	*Cell[T]
}

// NewNumber creates a numeric cell with the given initial value.
func NewNumber[T Numeric](initial T) Number[T] {
	return Number[T]{New(initial)}
}

// Inc increments the value by 1.
func (n Number[T]) Inc() { _ = n.Update(func(v T) T { return v + 1 }) }

// Dec decrements the value by 1.
func (n Number[T]) Dec() { _ = n.Update(func(v T) T { return v - 1 }) }

// Add adds d to the value.
func (n Number[T]) Add(d T) { _ = n.Update(func(v T) T { return v + d }) }

// Sub subtracts d from the value.
func (n Number[T]) Sub(d T) { _ = n.Update(func(v T) T { return v - d }) }

// Mul multiplies the value by d.
func (n Number[T]) Mul(d T) { _ = n.Update(func(v T) T { return v * d }) }

// Div divides the value by d. Integer division truncates toward zero.
func (n Number[T]) Div(d T) { _ = n.Update(func(v T) T { return v / d }) }

// Int wraps an integer cell, adding the modulo mutator on top of Number.
type Int[T constraints.Integer] struct {
	Number[T]
}

// NewInt creates an integer cell with the given initial value.
func NewInt[T constraints.Integer](initial T) Int[T] {
	return Int[T]{NewNumber(initial)}
}

// Mod reduces the value modulo d.
func (n Int[T]) Mod(d T) { _ = n.Update(func(v T) T { return v % d }) }
