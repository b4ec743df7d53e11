package reval

import "sync/atomic"

// StatsRecorder receives engine-level counters. The default is a no-op;
// pkg/instrument installs a Prometheus-backed recorder.
type StatsRecorder interface {
	// RecordSet counts a value replacement that passed the equality gate.
	RecordSet()

	// RecordNotify counts one fan-out and the number of observers
	// (including internal dependency edges) it delivered to.
	RecordNotify(observers int)

	// RecordRefresh counts a derived-cell recomputation.
	RecordRefresh()

	// RecordObserverAdded / RecordObserverRemoved track attachment churn.
	RecordObserverAdded()
	RecordObserverRemoved()
}

var statsRecorder atomic.Pointer[StatsRecorder]

// SetStatsRecorder installs r as the engine's stats sink. Passing nil
// removes the current recorder.
func SetStatsRecorder(r StatsRecorder) {
	if r == nil {
		statsRecorder.Store(nil)
		return
	}
	statsRecorder.Store(&r)
}

func recordSet() {
	if p := statsRecorder.Load(); p != nil {
		(*p).RecordSet()
	}
}

func recordNotify(observers int) {
	if p := statsRecorder.Load(); p != nil {
		(*p).RecordNotify(observers)
	}
}

func recordRefresh() {
	if p := statsRecorder.Load(); p != nil {
		(*p).RecordRefresh()
	}
}

func recordObserverAdded() {
	if p := statsRecorder.Load(); p != nil {
		(*p).RecordObserverAdded()
	}
}

func recordObserverRemoved() {
	if p := statsRecorder.Load(); p != nil {
		(*p).RecordObserverRemoved()
	}
}
