package reval

import (
	"errors"
	"testing"
)

func TestMapColdGet(t *testing.T) {
	src := New(3)
	dbl := Map(src, func(v, _ int) int { return v * 2 })

	if got := dbl.Get(); got != 6 {
		t.Errorf("expected 6, got %d", got)
	}
	// No observers, so the value is pulled fresh on every Get.
	src.Set(5)
	if got := dbl.Get(); got != 10 {
		t.Errorf("expected 10 after source change, got %d", got)
	}
}

func TestMapHotPush(t *testing.T) {
	src := New(3)
	dbl := Map(src, func(v, _ int) int { return v * 2 })
	rec := &recorder[int]{}
	dbl.AddObserver(rec.fn)

	if len(rec.calls) != 1 || rec.calls[0].new != 6 {
		t.Fatalf("expected initial delivery of 6, got %v", rec.calls)
	}

	src.Set(5)
	if len(rec.calls) != 2 {
		t.Fatalf("expected push delivery, got %d calls", len(rec.calls))
	}
	if rec.calls[1].new != 10 || rec.calls[1].old != 6 {
		t.Errorf("expected (10, 6), got (%d, %d)", rec.calls[1].new, rec.calls[1].old)
	}
	// Observed: Get returns the cache without recompute.
	if got := dbl.Get(); got != 10 {
		t.Errorf("expected 10, got %d", got)
	}
}

func TestMapMemoization(t *testing.T) {
	src := New(3)
	computes := 0
	dbl := Map(src, func(v, _ int) int {
		computes++
		return v * 2
	})

	dbl.Get()
	dbl.Get()
	dbl.Get()
	if computes != 1 {
		t.Errorf("unchanged source should compute once, got %d", computes)
	}

	src.Set(4)
	dbl.Get()
	if computes != 2 {
		t.Errorf("expected recompute after source change, got %d", computes)
	}
}

func TestMapReceivesPreviousInput(t *testing.T) {
	src := New(10)
	var olds []int
	d := Map(src, func(v, old int) int {
		olds = append(olds, old)
		return v
	})
	d.AddObserver(func(int, int) {})

	src.Set(20)
	src.Set(30)
	if len(olds) < 3 || olds[0] != 0 || olds[1] != 10 || olds[2] != 20 {
		t.Errorf("expected previous inputs [0 10 20 ...], got %v", olds)
	}
}

func TestReadOnlyDerivedRejectsSet(t *testing.T) {
	src := New(3)
	d := Map(src, func(v, _ int) int { return v * 2 })

	if err := d.Set(100); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
	if got := src.Get(); got != 3 {
		t.Errorf("failed write must not touch the source, got %d", got)
	}
}

func TestWritableTransformRoundTrip(t *testing.T) {
	celsius := New(0.0)
	fahrenheit := MapWritable(celsius,
		func(c, _ float64) float64 { return c*9/5 + 32 },
		func(f, _ float64) error { return celsius.Set((f - 32) * 5 / 9) },
	)
	rec := &recorder[float64]{}
	fahrenheit.AddObserver(rec.fn)

	if rec.calls[0].new != 32 {
		t.Fatalf("expected initial 32, got %v", rec.calls[0].new)
	}

	if err := fahrenheit.Set(212); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := celsius.Get(); got != 100 {
		t.Errorf("expected celsius 100, got %v", got)
	}
	// The write lands as exactly one delivery, not one per feedback hop.
	if len(rec.calls) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(rec.calls))
	}
	if rec.calls[1].new != 212 || rec.calls[1].old != 32 {
		t.Errorf("expected (212, 32), got (%v, %v)", rec.calls[1].new, rec.calls[1].old)
	}
}

func TestWritableTransformEqualWriteIsNoOp(t *testing.T) {
	src := New(5)
	sets := 0
	d := MapWritable(src,
		func(v, _ int) int { return v },
		func(v, _ int) error { sets++; return src.Set(v) },
	)

	if err := d.Set(5); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if sets != 0 {
		t.Errorf("writing the current value should not reach the write-back, got %d", sets)
	}
}

func TestReentrantWriteBackIsRejected(t *testing.T) {
	src := New(1)
	var d *Derived[int]
	d = MapWritable(src,
		func(v, _ int) int { return v },
		func(v, _ int) error {
			// A write-back looping into its own cell must trip the guard,
			// not recurse.
			return d.Set(v + 1)
		},
	)

	err := d.Set(5)
	if !errors.Is(err, ErrReentrantWrite) {
		t.Fatalf("expected ErrReentrantWrite, got %v", err)
	}
	if got := src.Get(); got != 1 {
		t.Errorf("rejected write must not touch the source, got %d", got)
	}
}

func TestObserverWriteBackDuringFanOutTerminates(t *testing.T) {
	a := New(1)
	d := MapWritable(a,
		func(v, _ int) int { return v * 2 },
		func(v, _ int) error { return a.Set(v / 2) },
	)

	// Cyclic observation: the observer of derived-of-a writes back through
	// the derived cell on every delivery until a fixpoint.
	var got []int
	d.AddObserver(func(new, _ int) {
		got = append(got, new)
		if new < 8 {
			_ = d.Set(new * 2)
		}
	})

	if len(got) != 3 || got[0] != 2 || got[1] != 4 || got[2] != 8 {
		t.Errorf("expected deliveries [2 4 8], got %v", got)
	}
	if av := a.Get(); av != 4 {
		t.Errorf("expected source 4, got %d", av)
	}
	if dv := d.Get(); dv != 8 {
		t.Errorf("expected derived 8, got %d", dv)
	}
}

func TestDerivedChain(t *testing.T) {
	src := New(1)
	a := Map(src, func(v, _ int) int { return v + 1 })
	b := Map(a, func(v, _ int) int { return v * 10 })
	rec := &recorder[int]{}
	b.AddObserver(rec.fn)

	if rec.calls[0].new != 20 {
		t.Fatalf("expected 20, got %d", rec.calls[0].new)
	}
	src.Set(4)
	if len(rec.calls) != 2 || rec.calls[1].new != 50 {
		t.Errorf("expected chained delivery of 50, got %v", rec.calls)
	}
}

func TestLazyUpstreamActivation(t *testing.T) {
	src := New(1)
	a := Map(src, func(v, _ int) int { return v + 1 })
	b := Map(a, func(v, _ int) int { return v * 10 })

	// Nothing observed: no edges anywhere.
	if n := src.observerCount(); n != 0 {
		t.Fatalf("expected 0 observers on src, got %d", n)
	}

	sub := b.AddObserver(func(int, int) {})

	// Observing the tail activates the whole chain.
	if n := src.observerCount(); n != 1 {
		t.Errorf("expected 1 edge on src, got %d", n)
	}
	if n := a.observerCount(); n != 1 {
		t.Errorf("expected 1 edge on a, got %d", n)
	}

	sub.Unsubscribe()

	// Last observer gone: the chain deactivates back to the source.
	if n := src.observerCount(); n != 0 {
		t.Errorf("expected 0 observers on src after unsubscribe, got %d", n)
	}
	if n := a.observerCount(); n != 0 {
		t.Errorf("expected 0 observers on a after unsubscribe, got %d", n)
	}
}

func TestDerivedSkipsEqualResults(t *testing.T) {
	src := New(1)
	parity := Map(src, func(v, _ int) bool { return v%2 == 0 })
	rec := &recorder[bool]{}
	parity.AddObserver(rec.fn, UpdatesOnly())

	src.Set(3) // still odd
	if len(rec.calls) != 0 {
		t.Errorf("unchanged derived value must not notify, got %d calls", len(rec.calls))
	}
	src.Set(4)
	if len(rec.calls) != 1 || rec.calls[0].new != true {
		t.Errorf("expected one delivery of true, got %v", rec.calls)
	}
}

func TestDerivedPeekIsStaleWhenUnobserved(t *testing.T) {
	src := New(1)
	d := Map(src, func(v, _ int) int { return v * 2 })

	if got := d.Get(); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	src.Set(5)
	if got := d.Peek(); got != 2 {
		t.Errorf("Peek on an unobserved cell should return the stale cache, got %d", got)
	}
	if got := d.Get(); got != 10 {
		t.Errorf("Get should refresh, got %d", got)
	}
}

func TestCombine2And3(t *testing.T) {
	a, b, c := New(1), New(2), New(3)
	sum2 := Combine2(a, b, func(x, y int) int { return x + y })
	sum3 := Combine3(a, b, c, func(x, y, z int) int { return x + y + z })

	if got := sum2.Get(); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	if got := sum3.Get(); got != 6 {
		t.Errorf("expected 6, got %d", got)
	}

	rec := &recorder[int]{}
	sum3.AddObserver(rec.fn, UpdatesOnly())
	c.Set(10)
	if len(rec.calls) != 1 || rec.calls[0].new != 13 {
		t.Errorf("expected delivery of 13, got %v", rec.calls)
	}
}
