package reval

import (
	"fmt"
	"sync"
)

// Cell is a reactive value container. It owns a current value, an
// insertion-ordered list of observers, and a list of upstream dependency
// edges that are live only while the cell itself is observed.
type Cell[T any] struct {
	id uint64

	mu    sync.Mutex
	value T

	// observers in insertion order; delivery order is insertion order.
	observers []*Observer[T]

	// upstream edges; started on first observer, stopped after the last.
	upstream []*edge

	// active mirrors len(observers) > 0 across the unlock window during
	// activation.
	active bool

	// pauseDepth > 0 suppresses outgoing notifications; pending remembers
	// that at least one notification was swallowed.
	pauseDepth int
	pending    bool

	// equal overrides the default change-detection rule when non-nil.
	equal func(T, T) bool

	// onActivate runs when the cell gains its first observer, after the
	// upstream edges start. Derived cells use it to refresh the cache.
	onActivate func()
}

// edge is a dormant upstream dependency. start attaches an internal
// observer to the upstream cell; stop detaches it.
type edge struct {
	start   func()
	stop    func()
	started bool
}

func (e *edge) startOnce() {
	if !e.started {
		e.started = true
		e.start()
	}
}

func (e *edge) stopOnce() {
	if e.started {
		e.started = false
		e.stop()
	}
}

// New creates a source cell holding initial.
func New[T any](initial T) *Cell[T] {
	return &Cell[T]{
		id:    nextID(),
		value: initial,
	}
}

// Wrap returns v unchanged if it is already a readable cell of T, and wraps
// it in a new source cell if it is a plain T value. Any other type is a
// programming error and panics.
func Wrap[T any](v any) Readable[T] {
	switch x := v.(type) {
	case Readable[T]:
		return x
	case T:
		return New(x)
	default:
		panic(fmt.Sprintf("reval: cannot wrap %T as a cell of %T", v, *new(T)))
	}
}

// ID returns the unique identifier for this cell.
func (c *Cell[T]) ID() uint64 { return c.id }

// Get returns the current value. It never fails.
func (c *Cell[T]) Get() T {
	c.mu.Lock()
	v := c.value
	c.mu.Unlock()
	return v
}

// Peek returns the current value. On a source cell this is identical to
// Get; it exists so callers can opt out of the recompute a derived cell's
// Get may perform.
func (c *Cell[T]) Peek() T { return c.Get() }

// Set replaces the value and notifies observers if it changed under the
// cell's equality rule. Delivery is synchronous and in observer insertion
// order. If an observer panics, the remaining observers still fire and the
// first panic is then re-raised.
//
// The returned error is always nil on a source cell; it is part of the
// Writable capability shared with derived cells, whose writes can fail.
func (c *Cell[T]) Set(v T) error {
	c.mu.Lock()
	changed := !c.equalsLocked(c.value, v)
	if changed {
		c.value = v
	}
	c.mu.Unlock()

	if changed {
		recordSet()
		c.notify()
	}
	return nil
}

// Update atomically replaces the value with fn(current).
func (c *Cell[T]) Update(fn func(T) T) error {
	c.mu.Lock()
	next := fn(c.value)
	changed := !c.equalsLocked(c.value, next)
	if changed {
		c.value = next
	}
	c.mu.Unlock()

	if changed {
		recordSet()
		c.notify()
	}
	return nil
}

// WithEquals configures a custom equality rule and returns the cell.
// Useful where identity comparison is wrong for the element type, e.g.
// treating two user structs with the same ID as unchanged.
func (c *Cell[T]) WithEquals(fn func(T, T) bool) *Cell[T] {
	c.mu.Lock()
	c.equal = fn
	c.mu.Unlock()
	return c
}

func (c *Cell[T]) equalsLocked(a, b T) bool {
	if c.equal != nil {
		return c.equal(a, b)
	}
	return defaultEquals(a, b)
}

func (c *Cell[T]) equals(a, b T) bool {
	c.mu.Lock()
	eq := c.equal
	c.mu.Unlock()
	if eq != nil {
		return eq(a, b)
	}
	return defaultEquals(a, b)
}

// AddObserver registers fn for change delivery and returns the observer
// handle. Unless UpdatesOnly is given, fn fires once synchronously with
// (current, zero) before AddObserver returns. Adding the first observer
// activates the cell's upstream chain.
func (c *Cell[T]) AddObserver(fn func(new, old T), opts ...ObserverOption) *Observer[T] {
	cfg := applyObserverOptions(opts)

	o := &Observer[T]{
		id:       nextID(),
		owner:    c,
		fn:       fn,
		eq:       c.equals,
		clock:    cfg.clock,
		debounce: cfg.debounce,
		throttle: cfg.throttle,
		leading:  cfg.leading,
	}

	c.attach(o)

	cur := c.Get()
	if cfg.updatesOnly {
		o.prime(cur)
	} else {
		// Initial delivery bypasses any debounce/throttle stage; only
		// change deliveries are coalesced.
		o.fire(cur)
	}
	return o
}

// attach appends o to the observer list, activating the cell first if this
// is its first observer. Activation runs before the append so the refresh
// it triggers does not double-deliver to o.
func (c *Cell[T]) attach(o *Observer[T]) {
	c.activate()
	c.mu.Lock()
	c.observers = append(c.observers, o)
	c.mu.Unlock()
	recordObserverAdded()
}

// detach removes o, deactivating the upstream chain if it was the last
// observer.
func (c *Cell[T]) detach(o *Observer[T]) {
	c.mu.Lock()
	found := false
	for i, existing := range c.observers {
		if existing == o {
			// Preserve insertion order for the remaining observers.
			c.observers = append(c.observers[:i], c.observers[i+1:]...)
			found = true
			break
		}
	}
	empty := len(c.observers) == 0
	c.mu.Unlock()

	if found {
		recordObserverRemoved()
	}
	if empty {
		c.deactivate()
	}
}

func (c *Cell[T]) activate() {
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return
	}
	c.active = true
	edges := make([]*edge, len(c.upstream))
	copy(edges, c.upstream)
	hook := c.onActivate
	c.mu.Unlock()

	for _, e := range edges {
		e.startOnce()
	}
	if hook != nil {
		hook()
	}
}

func (c *Cell[T]) deactivate() {
	c.mu.Lock()
	if !c.active || len(c.observers) > 0 {
		c.mu.Unlock()
		return
	}
	c.active = false
	edges := make([]*edge, len(c.upstream))
	copy(edges, c.upstream)
	c.mu.Unlock()

	for _, e := range edges {
		e.stopOnce()
	}
}

// observed reports whether the cell currently has active observers.
func (c *Cell[T]) observed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// observerCount reports the current number of attached observers,
// including internal dependency edges.
func (c *Cell[T]) observerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.observers)
}

// addUpstream registers a dependency edge; it starts immediately if the
// cell is already observed.
func (c *Cell[T]) addUpstream(e *edge) {
	c.mu.Lock()
	c.upstream = append(c.upstream, e)
	active := c.active
	c.mu.Unlock()

	if active {
		e.startOnce()
	}
}

// edgeOn returns a dormant dependency edge that runs fn after this cell
// changes. The edge is a regular observer, so it participates in the
// ref-counted activation of this cell like any other.
func (c *Cell[T]) edgeOn(fn func()) *edge {
	o := &Observer[T]{
		id:    nextID(),
		owner: c,
		fn:    func(T, T) { fn() },
		eq:    neverEquals[T],
		clock: SystemClock,
	}
	return &edge{
		start: func() { c.attach(o) },
		stop:  func() { c.detach(o) },
	}
}

// notify delivers the current value to every observer in insertion order.
// While paused it only marks a pending notification.
func (c *Cell[T]) notify() {
	c.mu.Lock()
	if c.pauseDepth > 0 {
		c.pending = true
		c.mu.Unlock()
		return
	}
	v := c.value
	obs := make([]*Observer[T], len(c.observers))
	copy(obs, c.observers)
	c.mu.Unlock()

	recordNotify(len(obs))

	// Copy-before-notify: callbacks run without holding the cell lock, so
	// an observer may re-enter Set. A panicking observer does not starve
	// the rest; the first panic is re-raised afterwards.
	var firstPanic any
	panicked := false
	for _, o := range obs {
		func() {
			defer func() {
				if r := recover(); r != nil && !panicked {
					panicked = true
					firstPanic = r
				}
			}()
			o.deliver(v)
		}()
	}
	if panicked {
		panic(firstPanic)
	}
}

// Pause suppresses this cell's outgoing notifications. Calls nest; upstream
// observation is unaffected, so a derived cell keeps its cache fresh while
// paused.
func (c *Cell[T]) Pause() {
	c.mu.Lock()
	c.pauseDepth++
	c.mu.Unlock()
}

// Resume undoes one Pause. When the last Pause is undone and at least one
// Set happened in between, exactly one notification fires, carrying the
// newest value; each observer's old value is the last value it was actually
// delivered, so intermediate Sets collapse into a single delta.
func (c *Cell[T]) Resume() {
	c.mu.Lock()
	if c.pauseDepth == 0 {
		c.mu.Unlock()
		return
	}
	c.pauseDepth--
	fire := c.pauseDepth == 0 && c.pending
	if fire {
		c.pending = false
	}
	c.mu.Unlock()

	if fire {
		c.notify()
	}
}

// GetAny implements AnyReadable.
func (c *Cell[T]) GetAny() any { return c.Get() }

// SetAny implements AnyWritable. The value must have the cell's element
// type.
func (c *Cell[T]) SetAny(v any) error {
	tv, ok := v.(T)
	if !ok {
		return fmt.Errorf("reval: cannot set %T on cell of %T: %w", v, c.Get(), ErrTypeMismatch)
	}
	return c.Set(tv)
}
