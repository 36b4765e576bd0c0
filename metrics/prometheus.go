// Package metrics provides a Prometheus-backed implementation of the
// pipeline's metrics collector interface.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector records pipeline metrics into Prometheus.
type Collector struct {
	searchesTotal   *prometheus.CounterVec
	searchDuration  prometheus.Histogram
	compilesTotal   *prometheus.CounterVec
	compileDuration prometheus.Histogram
	bangsTotal      prometheus.Counter
	shardTimeouts   *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
// Pass prometheus.DefaultRegisterer for the process-wide registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		searchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stract",
				Name:      "searches_total",
				Help:      "Total number of search requests",
			},
			[]string{"status"},
		),
		searchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "stract",
				Name:      "search_duration_seconds",
				Help:      "End-to-end search duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
		),
		compilesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stract",
				Name:      "optic_compiles_total",
				Help:      "Total number of optic compilation attempts",
			},
			[]string{"status"},
		),
		compileDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "stract",
				Name:      "optic_compile_duration_seconds",
				Help:      "Optic compilation duration in seconds",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
		),
		bangsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "stract",
				Name:      "bang_redirects_total",
				Help:      "Total number of shortcut redirects served",
			},
		),
		shardTimeouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stract",
				Name:      "shard_timeouts_total",
				Help:      "Total number of shard deadline misses",
			},
			[]string{"shard"},
		),
	}

	reg.MustRegister(
		c.searchesTotal,
		c.searchDuration,
		c.compilesTotal,
		c.compileDuration,
		c.bangsTotal,
		c.shardTimeouts,
	)
	return c
}

// RecordSearch implements the collector interface.
func (c *Collector) RecordSearch(k int, duration time.Duration, err error) {
	c.searchesTotal.WithLabelValues(status(err)).Inc()
	c.searchDuration.Observe(duration.Seconds())
}

// RecordOpticCompile implements the collector interface.
func (c *Collector) RecordOpticCompile(duration time.Duration, err error) {
	c.compilesTotal.WithLabelValues(status(err)).Inc()
	c.compileDuration.Observe(duration.Seconds())
}

// RecordBangRedirect implements the collector interface.
func (c *Collector) RecordBangRedirect() {
	c.bangsTotal.Inc()
}

// RecordShardTimeout implements the collector interface.
func (c *Collector) RecordShardTimeout(shardIdx int) {
	c.shardTimeouts.WithLabelValues(shardLabel(shardIdx)).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func shardLabel(idx int) string {
	// Shard count is small and fixed, so per-shard labels stay bounded.
	return "shard-" + strconv.Itoa(idx)
}
