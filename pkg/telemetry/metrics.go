// Package telemetry exports Prometheus metrics and OpenTelemetry traces
// for the navigation runtime. Both are optional: the engine and caches
// accept nil hooks and skip recording entirely.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures metric registration.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "aeon").
	Namespace string

	// Subsystem is the metrics subsystem (default: "nav").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for navigation duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// Metrics holds the Prometheus collectors for one engine instance.
type Metrics struct {
	navigationsTotal   *prometheus.CounterVec
	navigationDuration prometheus.Histogram
	prefetchesTotal    *prometheus.CounterVec
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	cacheEvictions     prometheus.Counter
	cacheEntries       prometheus.Gauge
	predictionsTotal   prometheus.Counter
}

// NewMetrics registers and returns the collectors. Each engine instance
// should get its own registry (or distinct ConstLabels) so tests can run
// independent engines without collisions.
func NewMetrics(config MetricsConfig) *Metrics {
	if config.Namespace == "" {
		config.Namespace = "aeon"
	}
	if config.Subsystem == "" {
		config.Subsystem = "nav"
	}
	if config.Buckets == nil {
		config.Buckets = prometheus.DefBuckets
	}
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total navigations by status",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		navigationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Navigation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		prefetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "prefetches_total",
			Help:        "Total prefetch requests by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cache_hits_total",
			Help:        "Total session cache hits",
			ConstLabels: config.ConstLabels,
		}),

		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cache_misses_total",
			Help:        "Total session cache misses",
			ConstLabels: config.ConstLabels,
		}),

		cacheEvictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cache_evictions_total",
			Help:        "Total session cache evictions",
			ConstLabels: config.ConstLabels,
		}),

		cacheEntries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cache_entries",
			Help:        "Current session cache entry count",
			ConstLabels: config.ConstLabels,
		}),

		predictionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "predictions_total",
			Help:        "Total prediction queries",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// RecordNavigation records one completed navigation. Nil-safe.
func (m *Metrics) RecordNavigation(status string, seconds float64) {
	if m == nil {
		return
	}
	m.navigationsTotal.WithLabelValues(status).Inc()
	m.navigationDuration.Observe(seconds)
}

// RecordPrefetch records a prefetch request by kind ("session", "presence",
// "predicted"). Nil-safe.
func (m *Metrics) RecordPrefetch(kind string) {
	if m == nil {
		return
	}
	m.prefetchesTotal.WithLabelValues(kind).Inc()
}

// RecordPrediction records a prediction query. Nil-safe.
func (m *Metrics) RecordPrediction() {
	if m == nil {
		return
	}
	m.predictionsTotal.Inc()
}

// CacheMetrics adapts Metrics to the session cache's metrics hook.
// A nil receiver is a valid no-op sink.
type CacheMetrics struct {
	m *Metrics
}

// Cache returns the cache-facing adapter for these metrics.
func (m *Metrics) Cache() *CacheMetrics {
	if m == nil {
		return nil
	}
	return &CacheMetrics{m: m}
}

func (c *CacheMetrics) Hit() {
	if c != nil {
		c.m.cacheHits.Inc()
	}
}

func (c *CacheMetrics) Miss() {
	if c != nil {
		c.m.cacheMisses.Inc()
	}
}

func (c *CacheMetrics) Evict() {
	if c != nil {
		c.m.cacheEvictions.Inc()
	}
}

func (c *CacheMetrics) Size(n int) {
	if c != nil {
		c.m.cacheEntries.Set(float64(n))
	}
}
