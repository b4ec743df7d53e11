package reval

import (
	"sync"
	"time"
)

// Observer binds a callback to one cell. It remembers the last value it
// delivered so every callback invocation carries a true (new, old) pair,
// supports pausing (buffer the latest update, deliver it on resume), and
// optionally runs deliveries through a debounce or throttle stage.
type Observer[T any] struct {
	id    uint64
	owner *Cell[T]
	fn    func(new, old T)
	eq    func(T, T) bool

	mu      sync.Mutex
	last    T
	hasLast bool

	paused      bool
	buffered    T
	hasBuffered bool

	clock    Clock
	debounce time.Duration
	throttle time.Duration
	leading  bool

	timer      Timer
	pendingVal T
	hasPending bool

	removed bool
}

// ID returns the unique identifier for this observer.
func (o *Observer[T]) ID() uint64 { return o.id }

// Unsubscribe removes the observer from its cell and cancels any pending
// debounce/throttle timer so no stale delivery fires afterwards. Removing
// the cell's last observer lets its upstream chain go dormant.
func (o *Observer[T]) Unsubscribe() {
	o.mu.Lock()
	if o.removed {
		o.mu.Unlock()
		return
	}
	o.removed = true
	t := o.timer
	o.timer = nil
	o.hasPending = false
	o.mu.Unlock()

	if t != nil {
		t.Stop()
	}
	o.owner.detach(o)
}

// Pause buffers deliveries instead of invoking the callback. Only the
// latest buffered value survives.
func (o *Observer[T]) Pause() {
	o.mu.Lock()
	o.paused = true
	o.mu.Unlock()
}

// Resume delivers the buffered value, if any, as a single callback whose
// old value is the last value actually delivered.
func (o *Observer[T]) Resume() {
	o.mu.Lock()
	if !o.paused {
		o.mu.Unlock()
		return
	}
	o.paused = false
	if !o.hasBuffered {
		o.mu.Unlock()
		return
	}
	v := o.buffered
	o.hasBuffered = false
	o.mu.Unlock()

	o.fire(v)
}

// deliver routes a new value through the configured delivery stage.
func (o *Observer[T]) deliver(v T) {
	switch {
	case o.debounce > 0:
		o.deliverDebounced(v)
	case o.throttle > 0:
		o.deliverThrottled(v)
	default:
		o.fire(v)
	}
}

// fire invokes the callback with (v, last) unless the observer is paused,
// removed, or v equals the last delivered value. The callback runs outside
// the observer lock.
func (o *Observer[T]) fire(v T) {
	o.mu.Lock()
	if o.removed {
		o.mu.Unlock()
		return
	}
	if o.paused {
		o.buffered = v
		o.hasBuffered = true
		o.mu.Unlock()
		return
	}
	if o.hasLast && o.eq(v, o.last) {
		o.mu.Unlock()
		return
	}
	old := o.last
	o.last = v
	o.hasLast = true
	fn := o.fn
	o.mu.Unlock()

	fn(v, old)
}

// prime records v as the delivery baseline without invoking the callback.
// Used by UpdatesOnly so the first update's old value is the value at
// subscribe time.
func (o *Observer[T]) prime(v T) {
	o.mu.Lock()
	o.last = v
	o.hasLast = true
	o.mu.Unlock()
}

// deliverDebounced coalesces deliveries: only the latest value is
// delivered, debounce after the most recent Set. A new Set replaces the
// pending value and restarts the timer.
func (o *Observer[T]) deliverDebounced(v T) {
	o.mu.Lock()
	if o.removed {
		o.mu.Unlock()
		return
	}
	o.pendingVal = v
	o.hasPending = true
	if o.timer != nil {
		o.timer.Stop()
	}
	o.timer = o.clock.AfterFunc(o.debounce, o.debounceTick)
	o.mu.Unlock()
}

func (o *Observer[T]) debounceTick() {
	o.mu.Lock()
	o.timer = nil
	if !o.hasPending {
		o.mu.Unlock()
		return
	}
	v := o.pendingVal
	o.hasPending = false
	o.mu.Unlock()

	o.fire(v)
}

// deliverThrottled limits delivery to once per window. With leading
// enabled, the first value in a quiet window is delivered immediately;
// later values within the window coalesce into one trailing delivery when
// the window closes.
func (o *Observer[T]) deliverThrottled(v T) {
	o.mu.Lock()
	if o.removed {
		o.mu.Unlock()
		return
	}
	if o.timer == nil {
		if o.leading {
			o.timer = o.clock.AfterFunc(o.throttle, o.throttleTick)
			o.mu.Unlock()
			o.fire(v)
			return
		}
		o.pendingVal = v
		o.hasPending = true
		o.timer = o.clock.AfterFunc(o.throttle, o.throttleTick)
		o.mu.Unlock()
		return
	}
	o.pendingVal = v
	o.hasPending = true
	o.mu.Unlock()
}

func (o *Observer[T]) throttleTick() {
	o.mu.Lock()
	o.timer = nil
	if !o.hasPending {
		o.mu.Unlock()
		return
	}
	v := o.pendingVal
	o.hasPending = false
	// The flush opens a new window so a sustained burst keeps its cadence.
	o.timer = o.clock.AfterFunc(o.throttle, o.throttleTick)
	o.mu.Unlock()

	o.fire(v)
}
