package stract

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/TheIronBorn/stract/bangs"
	"github.com/TheIronBorn/stract/optics"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	opticCache       *optics.Cache
	opticStore       *optics.Store
	bangTable        *bangs.Table
	workerPool       *WorkerPool
	workers          int
	limiter          *rate.Limiter
	overFetch        int
	shardTimeout     time.Duration
	defaultK         int
	maxK             int
}

// Option configures Searcher construction.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithOpticCache configures the compiled-optic cache shared across queries.
func WithOpticCache(cache *optics.Cache) Option {
	return func(o *options) {
		o.opticCache = cache
	}
}

// WithOpticStore configures a store for named optics, enabling requests that
// reference an optic by name instead of carrying the script inline.
func WithOpticStore(store *optics.Store) Option {
	return func(o *options) {
		o.opticStore = store
	}
}

// WithBangTable configures the shortcut table used to resolve bang queries.
func WithBangTable(table *bangs.Table) Option {
	return func(o *options) {
		o.bangTable = table
	}
}

// WithWorkerPool configures a shared fan-out worker pool. The searcher does
// not close a shared pool; without this option it creates its own pool sized
// to the shard count and closes it on Close.
func WithWorkerPool(pool *WorkerPool) Option {
	return func(o *options) {
		o.workerPool = pool
	}
}

// WithWorkers sizes the searcher-owned fan-out pool. Ignored when a shared
// pool is configured via WithWorkerPool.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithOverFetch configures the per-shard over-fetch factor. Each shard is
// asked for factor*k results so the merged top-k survives deduplication and
// discards. Values below 1 are ignored.
func WithOverFetch(factor int) Option {
	return func(o *options) {
		if factor >= 1 {
			o.overFetch = factor
		}
	}
}

// WithShardTimeout configures the per-query fan-out deadline. Shards that
// miss it are excluded and the response is marked partial.
func WithShardTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.shardTimeout = timeout
		}
	}
}

// WithRateLimit configures query admission. qps <= 0 disables limiting.
func WithRateLimit(qps float64, burst int) Option {
	return func(o *options) {
		if qps <= 0 {
			o.limiter = nil
			return
		}
		if burst <= 0 {
			burst = int(qps) + 1
		}
		o.limiter = rate.NewLimiter(rate.Limit(qps), burst)
	}
}

// WithKLimits configures the default and maximum result counts. A request
// with K == 0 gets defaultK; a request with K > maxK is rejected.
func WithKLimits(defaultK, maxK int) Option {
	return func(o *options) {
		if defaultK > 0 {
			o.defaultK = defaultK
		}
		if maxK > 0 {
			o.maxK = maxK
		}
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		overFetch:        defaultOverFetch,
		shardTimeout:     defaultShardTimeout,
		defaultK:         defaultK,
		maxK:             defaultMaxK,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
