// Package metrics exposes opt-in Prometheus instrumentation for the
// reactor engine: flush counts, pending-queue depth, cycle-panic counts
// and selector key-set sizes. Nothing in this package performs I/O on its
// own — it only updates in-memory Prometheus collectors; scraping them
// is the caller's responsibility (spec §6's "no I/O" core non-goal binds
// the engine itself, not this optional, separately-imported package).
//
// Grounded on vango-go-vango's pkg/middleware/metrics.go, whose
// promauto.With(registry)-based construction and package-level
// "Record*" functions this package follows directly.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/corebound/reactor/internal"
)

// Config mirrors vango's MetricsConfig shape: a namespace plus the
// registry to register collectors against.
type Config struct {
	Namespace string
	Registry  prometheus.Registerer
}

func defaultConfig() Config {
	return Config{Namespace: "reactor", Registry: prometheus.DefaultRegisterer}
}

// Collector holds the engine's Prometheus collectors.
type Collector struct {
	flushesTotal      prometheus.Counter
	flushIterations   prometheus.Histogram
	pendingQueueDepth prometheus.Gauge
	cyclePanicsTotal  prometheus.Counter
	selectorKeys      prometheus.Gauge
}

var global *Collector

// Init creates (once) and registers the engine's collectors against opts'
// registry, defaulting to prometheus.DefaultRegisterer under the
// "reactor" namespace. Safe to call multiple times; only the first call's
// config takes effect.
func Init(opts ...func(*Config)) *Collector {
	if global != nil {
		return global
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)

	global = &Collector{
		flushesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "flushes_total",
			Help:      "Total number of flush-sync drains run to quiescence.",
		}),
		flushIterations: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "flush_iterations",
			Help:      "Number of drain iterations a single flush-sync took.",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1000},
		}),
		pendingQueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "pending_queue_depth",
			Help:      "Number of reactions enqueued for the next flush.",
		}),
		cyclePanicsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "cycle_panics_total",
			Help:      "Total number of MaxUpdateDepthExceededError panics raised by flush-sync.",
		}),
		selectorKeys: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "selector_keys",
			Help:      "Number of per-key entries in the selector whose key set changed most recently.",
		}),
	}

	internal.OnFlushComplete = RecordFlush
	internal.OnCyclePanic = RecordCyclePanic
	internal.OnQueueDepthChanged = SetPendingQueueDepth
	internal.OnSelectorKeysChanged = SetSelectorKeyCount

	return global
}

// WithNamespace overrides the default "reactor" metrics namespace.
func WithNamespace(ns string) func(*Config) {
	return func(c *Config) { c.Namespace = ns }
}

// WithRegistry overrides the default registry (prometheus.DefaultRegisterer).
func WithRegistry(r prometheus.Registerer) func(*Config) {
	return func(c *Config) { c.Registry = r }
}

// RecordFlush records one completed flush-sync drain and how many
// iterations it took.
func RecordFlush(iterations int) {
	if global == nil {
		return
	}
	global.flushesTotal.Inc()
	global.flushIterations.Observe(float64(iterations))
}

// SetPendingQueueDepth reports the current pendingReactions queue length.
func SetPendingQueueDepth(n int) {
	if global == nil {
		return
	}
	global.pendingQueueDepth.Set(float64(n))
}

// RecordCyclePanic records a MaxUpdateDepthExceededError.
func RecordCyclePanic() {
	if global == nil {
		return
	}
	global.cyclePanicsTotal.Inc()
}

// SetSelectorKeyCount reports the number of per-key entries of one
// selector (the one whose key set just changed); counts of different
// selectors are not summed.
func SetSelectorKeyCount(n int) {
	if global == nil {
		return
	}
	global.selectorKeys.Set(float64(n))
}
