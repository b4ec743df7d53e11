package reval

import "fmt"

// Derived is a cell whose value is computed from one or more upstream
// cells. While unobserved it is lazy: Get recomputes from upstream on
// demand. Once observed, upstream edges keep the cached value current and
// Get is O(1).
//
// A derived cell built with a write-back closure is writable; Set hands the
// new value to the write-back, which is responsible for pushing it into the
// upstream cell(s). A feedback guard suppresses the edge-triggered refresh
// storm while the write-back applies, so the change lands exactly once.
type Derived[T any] struct {
	Cell[T]

	compute   func() T
	writeBack func(new, old T) error

	// applying is the feedback guard; guarded by Cell.mu.
	applying bool
}

// newDerived wires a derived cell around compute and an optional
// write-back. Callers register upstream edges with dependOn afterwards.
func newDerived[T any](compute func() T, writeBack func(new, old T) error) *Derived[T] {
	d := &Derived[T]{
		compute:   compute,
		writeBack: writeBack,
	}
	d.Cell.id = nextID()
	// On first observer: edges have started, sync the cache once so push
	// updates have a correct baseline.
	d.Cell.onActivate = func() { d.Refresh() }
	return d
}

// dependOn registers src as an upstream dependency of d. The edge stays
// dormant until d gains its first observer. Changes refresh d unless its
// own write-back is currently applying.
func dependOn[T any](d *Derived[T], src observable) {
	d.Cell.addUpstream(src.edgeOn(func() {
		if d.isApplying() {
			return
		}
		d.Refresh()
	}))
}

func (d *Derived[T]) isApplying() bool {
	d.Cell.mu.Lock()
	defer d.Cell.mu.Unlock()
	return d.applying
}

func (d *Derived[T]) setApplying(v bool) {
	d.Cell.mu.Lock()
	d.applying = v
	d.Cell.mu.Unlock()
}

// Get returns the derived value. If nobody observes the cell the cache may
// be stale, so Get refreshes first; an observed cell returns the cached
// value directly.
func (d *Derived[T]) Get() T {
	if !d.Cell.observed() {
		d.Refresh()
	}
	return d.Cell.Get()
}

// Peek returns the cached value without recomputing. It may be stale on an
// unobserved cell.
func (d *Derived[T]) Peek() T { return d.Cell.Get() }

// Refresh recomputes the value from upstream and notifies observers if it
// changed under the cell's equality rule.
func (d *Derived[T]) Refresh() {
	recordRefresh()
	next := d.compute()
	_ = d.Cell.Set(next)
}

// Set writes through the derived cell. Without a write-back closure it
// fails with ErrReadOnly. The write-back pushes the value into the upstream
// cell(s); edge-triggered refreshes are suppressed while it runs, then one
// refresh brings the cache (and observers) up to date in a single
// notification.
func (d *Derived[T]) Set(v T) error {
	if d.writeBack == nil {
		return ErrReadOnly
	}

	old := d.Get()
	if d.Cell.equals(old, v) {
		return nil
	}

	d.Cell.mu.Lock()
	if d.applying {
		d.Cell.mu.Unlock()
		return ErrReentrantWrite
	}
	d.applying = true
	d.Cell.mu.Unlock()

	err := d.writeBack(v, old)
	d.setApplying(false)
	if err != nil {
		return err
	}

	d.Refresh()
	return nil
}

// Update replaces the value with fn(current), writing through Set.
func (d *Derived[T]) Update(fn func(T) T) error {
	return d.Set(fn(d.Get()))
}

// GetAny implements AnyReadable with derived-cell pull semantics.
func (d *Derived[T]) GetAny() any { return d.Get() }

// SetAny implements AnyWritable, routing through the derived Set.
func (d *Derived[T]) SetAny(v any) error {
	tv, ok := v.(T)
	if !ok {
		return fmt.Errorf("reval: cannot set %T on cell of %T: %w", v, d.Peek(), ErrTypeMismatch)
	}
	return d.Set(tv)
}

var (
	_ Readable[int]  = (*Derived[int])(nil)
	_ Writable[int]  = (*Derived[int])(nil)
	_ AnyReadable    = (*Derived[int])(nil)
	_ AnyWritable    = (*Derived[int])(nil)
	_ Readable[bool] = (*Cell[bool])(nil)
	_ Writable[bool] = (*Cell[bool])(nil)
	_ AnyReadable    = (*Cell[bool])(nil)
	_ AnyWritable    = (*Cell[bool])(nil)
)
