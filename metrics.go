package stract

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus; the metrics package provides a ready-made implementation.
type MetricsCollector interface {
	// RecordSearch is called after each search operation.
	// k is the requested result count, duration is the end-to-end time,
	// err is nil if successful.
	RecordSearch(k int, duration time.Duration, err error)

	// RecordOpticCompile is called after each optic compilation attempt,
	// cached or not.
	RecordOpticCompile(duration time.Duration, err error)

	// RecordBangRedirect is called when a query short-circuits into a
	// shortcut redirect.
	RecordBangRedirect()

	// RecordShardTimeout is called for each shard that missed the fan-out
	// deadline of a query.
	RecordShardTimeout(shardIdx int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSearch(int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordOpticCompile(time.Duration, error)   {}
func (NoopMetricsCollector) RecordBangRedirect()                       {}
func (NoopMetricsCollector) RecordShardTimeout(int)                    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchTotalNanos atomic.Int64
	CompileCount     atomic.Int64
	CompileErrors    atomic.Int64
	BangRedirects    atomic.Int64
	ShardTimeouts    atomic.Int64
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(k int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordOpticCompile implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOpticCompile(duration time.Duration, err error) {
	b.CompileCount.Add(1)
	if err != nil {
		b.CompileErrors.Add(1)
	}
}

// RecordBangRedirect implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBangRedirect() {
	b.BangRedirects.Add(1)
}

// RecordShardTimeout implements MetricsCollector.
func (b *BasicMetricsCollector) RecordShardTimeout(shardIdx int) {
	b.ShardTimeouts.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SearchCount:     b.SearchCount.Load(),
		SearchErrors:    b.SearchErrors.Load(),
		SearchAvgNanos:  b.getAvgSearchNanos(),
		CompileCount:    b.CompileCount.Load(),
		CompileErrors:   b.CompileErrors.Load(),
		BangRedirects:   b.BangRedirects.Load(),
		ShardTimeouts:   b.ShardTimeouts.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SearchCount    int64
	SearchErrors   int64
	SearchAvgNanos int64
	CompileCount   int64
	CompileErrors  int64
	BangRedirects  int64
	ShardTimeouts  int64
}
