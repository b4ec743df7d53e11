package reval

import "time"

// ObserverOption is a functional option for AddObserver.
type ObserverOption func(*observerConfig)

type observerConfig struct {
	debounce    time.Duration
	throttle    time.Duration
	leading     bool
	updatesOnly bool
	clock       Clock
}

// WithDebounce delays delivery until d has elapsed since the most recent
// change; intermediate values are dropped and only the latest is delivered.
// Mutually exclusive with WithThrottle.
func WithDebounce(d time.Duration) ObserverOption {
	return func(c *observerConfig) {
		c.debounce = d
	}
}

// WithThrottle limits delivery to at most once per window d. Values arriving
// inside a window coalesce into a single trailing delivery at window end.
// Mutually exclusive with WithDebounce.
func WithThrottle(d time.Duration) ObserverOption {
	return func(c *observerConfig) {
		c.throttle = d
	}
}

// WithLeading makes a throttled observer deliver the first value of a quiet
// window immediately instead of waiting for the window to close.
func WithLeading() ObserverOption {
	return func(c *observerConfig) {
		c.leading = true
	}
}

// UpdatesOnly suppresses the synchronous initial delivery AddObserver
// performs on subscribe; the observer fires only on subsequent changes.
func UpdatesOnly() ObserverOption {
	return func(c *observerConfig) {
		c.updatesOnly = true
	}
}

// WithClock injects the clock used for debounce/throttle timers. Tests use
// this to advance virtual time deterministically.
func WithClock(clock Clock) ObserverOption {
	return func(c *observerConfig) {
		c.clock = clock
	}
}

func applyObserverOptions(opts []ObserverOption) observerConfig {
	cfg := observerConfig{clock: SystemClock}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.debounce > 0 && cfg.throttle > 0 {
		panic("reval: debounce and throttle are mutually exclusive")
	}
	return cfg
}
