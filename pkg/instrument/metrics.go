package instrument

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/reval-dev/reval/pkg/reval"
)

// MetricsConfig configures the Prometheus stats recorder.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "reval").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus stats recorder.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:   "reval",
		Subsystem:   "",
		ConstLabels: nil,
		Registry:    prometheus.DefaultRegisterer,
	}
}

// Recorder is a reval.StatsRecorder backed by Prometheus metrics.
type Recorder struct {
	setsTotal          prometheus.Counter
	notificationsTotal prometheus.Counter
	deliveriesTotal    prometheus.Counter
	refreshesTotal     prometheus.Counter
	activeObservers    prometheus.Gauge
}

var (
	globalRecorder   *Recorder
	globalRecorderMu sync.Mutex
)

// initRecorder registers the metrics and builds the recorder.
func initRecorder(config MetricsConfig) *Recorder {
	factory := promauto.With(config.Registry)

	return &Recorder{
		setsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "sets_total",
			Help:        "Total number of value replacements that passed the equality gate",
			ConstLabels: config.ConstLabels,
		}),

		notificationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notifications_total",
			Help:        "Total number of change fan-outs",
			ConstLabels: config.ConstLabels,
		}),

		deliveriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "deliveries_total",
			Help:        "Total number of per-observer deliveries across all fan-outs",
			ConstLabels: config.ConstLabels,
		}),

		refreshesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "refreshes_total",
			Help:        "Total number of derived cell recomputations",
			ConstLabels: config.ConstLabels,
		}),

		activeObservers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_observers",
			Help:        "Number of currently attached observers, including dependency edges",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Prometheus registers the engine metrics and installs the recorder as the
// global stats sink.
//
// Metrics collected:
//   - reval_sets_total: Counter of committed value replacements
//   - reval_notifications_total: Counter of change fan-outs
//   - reval_deliveries_total: Counter of per-observer deliveries
//   - reval_refreshes_total: Counter of derived recomputations
//   - reval_active_observers: Gauge of attached observers
//
// Example:
//
//	instrument.Prometheus(
//	    instrument.WithNamespace("myapp"),
//	)
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) *Recorder {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	// Initialize once; later calls reuse the registered metrics.
	globalRecorderMu.Lock()
	if globalRecorder == nil {
		globalRecorder = initRecorder(config)
	}
	r := globalRecorder
	globalRecorderMu.Unlock()

	reval.SetStatsRecorder(r)
	return r
}

// RecordSet implements reval.StatsRecorder.
func (r *Recorder) RecordSet() { r.setsTotal.Inc() }

// RecordNotify implements reval.StatsRecorder.
func (r *Recorder) RecordNotify(observers int) {
	r.notificationsTotal.Inc()
	r.deliveriesTotal.Add(float64(observers))
}

// RecordRefresh implements reval.StatsRecorder.
func (r *Recorder) RecordRefresh() { r.refreshesTotal.Inc() }

// RecordObserverAdded implements reval.StatsRecorder.
func (r *Recorder) RecordObserverAdded() { r.activeObservers.Inc() }

// RecordObserverRemoved implements reval.StatsRecorder.
func (r *Recorder) RecordObserverRemoved() { r.activeObservers.Dec() }
