// Package reval provides reactive value containers.
//
// A Cell holds a value and notifies observers when it changes. Observers
// receive both the new and the previously delivered value, so consumers can
// compute deltas without keeping their own copies.
//
// # Core Types
//
// Cell[T] is a reactive value container:
//
//	count := reval.New(0)
//	sub := count.AddObserver(func(new, old int) { fmt.Println(new, old) })
//	count.Set(5) // delivers (5, 0)
//	sub.Unsubscribe()
//
// Derived[T] is a cell computed from one or more upstream cells. It is lazy
// while nobody observes it (Get recomputes on demand) and push-updated while
// observed (Get is O(1)):
//
//	doubled := reval.Map(count, func(n, _ int) int { return n * 2 })
//
// Derived cells built with a write-back closure are writable; writing pushes
// the change upstream through the cell(s) the value was derived from:
//
//	evens := reval.Filtered(items, func(n int) bool { return n%2 == 0 })
//	evens.Set([]int{20, 40}) // rewrites the matching source elements
//
// # Dependency lifecycle
//
// A cell's upstream subscriptions are live only while the cell itself has at
// least one observer. Adding the first observer activates the whole upstream
// chain; removing the last one lets it go dormant again, so unobserved parts
// of the graph cost nothing on writes.
//
// # Batching
//
// Pause suppresses a cell's outgoing notifications; Resume flushes at most
// one, collapsing every intermediate Set into a single delivery whose old
// value is the last value actually delivered:
//
//	c.Pause()
//	c.Set(1)
//	c.Set(2)
//	c.Set(3)
//	c.Resume() // one delivery: (3, <value before Pause>)
//
// # Equality
//
// Set compares against the current value before notifying: primitives and
// other comparable values by ==, slices, maps, pointers, funcs and channels
// by reference identity. There is no deep comparison; replacing a slice with
// an equal-valued but distinct slice notifies. WithEquals overrides the rule
// per cell.
//
// # Thread Safety
//
// Cells are safe for concurrent use. Delivery is synchronous and runs to
// completion before Set returns; callbacks run outside internal locks, so a
// callback may itself call Set.
package reval
