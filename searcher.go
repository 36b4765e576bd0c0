package stract

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"time"

	"github.com/TheIronBorn/stract/bangs"
	"github.com/TheIronBorn/stract/core"
	"github.com/TheIronBorn/stract/index"
	"github.com/TheIronBorn/stract/optics"
	"github.com/TheIronBorn/stract/query"
	"github.com/TheIronBorn/stract/ranking"
	"github.com/TheIronBorn/stract/signal"
)

const (
	defaultK            = 20
	defaultMaxK         = 100
	defaultOverFetch    = 2
	defaultShardTimeout = 500 * time.Millisecond

	// minShardK floors the per-shard fetch so small k still survives
	// deduplication and discard rules in the merge.
	minShardK = 16
)

// Request is one search invocation.
type Request struct {
	// Query is the raw user query.
	Query string

	// Optic is an inline optic script. Empty means no inline optic.
	Optic string

	// OpticName references a stored optic by name. Ignored when Optic is
	// set.
	OpticName string

	// AllowFallback degrades a failing optic (compile error, missing name)
	// to the empty optic instead of failing the search.
	AllowFallback bool

	// K is the requested result count. 0 selects the configured default.
	K int
}

// Response is a completed search. Exactly one of Redirect and Results is
// meaningful: a bang query short-circuits into a redirect and never ranks.
type Response struct {
	// Redirect is the shortcut target when the query carried a known bang.
	Redirect *bangs.Redirect

	// Results is the merged, globally ranked top-K.
	Results []ranking.Result

	// ShardsTotal and ShardsAnswered report fan-out coverage.
	ShardsTotal    int
	ShardsAnswered int

	// Partial is set when at least one shard missed the deadline or failed,
	// so Results may be missing documents from those shards.
	Partial bool
}

// Searcher runs the query-to-ranking pipeline: parse, shortcut resolution,
// optic compilation, shard fan-out and global merge. It is safe for
// concurrent use.
type Searcher struct {
	gens *index.Generations

	logger  *Logger
	metrics MetricsCollector

	opticCache *optics.Cache
	opticStore *optics.Store
	bangTable  *bangs.Table

	pool     *WorkerPool
	ownsPool bool

	limiter      limiter
	overFetch    int
	shardTimeout time.Duration
	defaultK     int
	maxK         int

	closed atomic.Bool
}

// limiter is the admission check. *rate.Limiter satisfies it.
type limiter interface {
	Allow() bool
}

// NewSearcher creates a searcher over the given generation holder.
func NewSearcher(gens *index.Generations, optFns ...Option) *Searcher {
	o := applyOptions(optFns)

	s := &Searcher{
		gens:         gens,
		logger:       o.logger,
		metrics:      o.metricsCollector,
		opticCache:   o.opticCache,
		opticStore:   o.opticStore,
		bangTable:    o.bangTable,
		pool:         o.workerPool,
		overFetch:    o.overFetch,
		shardTimeout: o.shardTimeout,
		defaultK:     o.defaultK,
		maxK:         o.maxK,
	}
	if o.limiter != nil {
		s.limiter = o.limiter
	}
	if s.opticCache == nil {
		s.opticCache = optics.NewCache(optics.DefaultCacheSize)
	}
	if s.pool == nil {
		workers := o.workers
		if workers <= 0 {
			workers = len(gens.Current().Shards())
		}
		s.pool = NewWorkerPool(workers)
		s.ownsPool = true
	}
	return s
}

// Search runs the full pipeline for one request.
func (s *Searcher) Search(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := s.search(ctx, req)
	s.metrics.RecordSearch(req.K, time.Since(start), err)
	if resp != nil && resp.Redirect == nil {
		s.logger.LogSearch(ctx, req.K, len(resp.Results), resp.Partial, time.Since(start), err)
	} else if err != nil {
		s.logger.LogSearch(ctx, req.K, 0, false, time.Since(start), err)
	}
	return resp, err
}

func (s *Searcher) search(ctx context.Context, req Request) (*Response, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if s.limiter != nil && !s.limiter.Allow() {
		return nil, ErrRateLimited
	}

	k := req.K
	if k == 0 {
		k = s.defaultK
	}
	if k < 0 || k > s.maxK {
		return nil, ErrInvalidK
	}

	q, err := query.Parse(req.Query)
	if err != nil {
		return nil, translateError(err)
	}

	// A recognized shortcut wins over everything else: no optic, no
	// ranking, just the redirect.
	if s.bangTable != nil {
		if redirect, ok := s.bangTable.Resolve(q); ok {
			s.metrics.RecordBangRedirect()
			s.logger.LogBang(ctx, redirect.Bang.Trigger, redirect.URL)
			return &Response{Redirect: redirect}, nil
		}
	}

	o, err := s.resolveOptic(ctx, req)
	if err != nil {
		return nil, err
	}
	if o.SchemaVersion() != signal.SchemaVersion {
		return nil, &ErrSchemaMismatch{Expected: signal.SchemaVersion, Actual: o.SchemaVersion()}
	}

	return s.fanOut(ctx, q, o, k)
}

// resolveOptic produces the compiled optic for a request: inline script
// first, then stored name, then the empty optic.
func (s *Searcher) resolveOptic(ctx context.Context, req Request) (*optics.Optic, error) {
	switch {
	case req.Optic != "":
		start := time.Now()
		o, err := s.opticCache.Compile(req.Optic)
		s.metrics.RecordOpticCompile(time.Since(start), err)
		s.logger.LogCompile(ctx, "", time.Since(start), err)
		if err != nil {
			if req.AllowFallback {
				return optics.Empty(), nil
			}
			return nil, translateError(err)
		}
		return o, nil

	case req.OpticName != "":
		if s.opticStore == nil {
			if req.AllowFallback {
				return optics.Empty(), nil
			}
			return nil, ErrInvalidOptic
		}
		start := time.Now()
		o, err := s.opticStore.Get(ctx, req.OpticName)
		s.metrics.RecordOpticCompile(time.Since(start), err)
		s.logger.LogCompile(ctx, req.OpticName, time.Since(start), err)
		if err != nil {
			if req.AllowFallback {
				return optics.Empty(), nil
			}
			return nil, translateError(err)
		}
		return o, nil

	default:
		return optics.Empty(), nil
	}
}

type shardOutcome struct {
	shardIdx int
	results  []ranking.Result
	err      error
}

// fanOut queries every shard of the current generation in parallel and
// merges the per-shard top lists into the global top-k.
func (s *Searcher) fanOut(ctx context.Context, q *query.Query, o *optics.Optic, k int) (*Response, error) {
	gen := s.gens.Current()
	shards := gen.Shards()

	shardK := k * s.overFetch
	if shardK < minShardK {
		shardK = minShardK
	}

	searchCtx, cancel := context.WithTimeout(ctx, s.shardTimeout)
	defer cancel()

	// The channel holds one slot per shard, so the workers' sends never
	// block and finished work is never dropped.
	outcomes := make(chan shardOutcome, len(shards))
	for i, shard := range shards {
		err := s.pool.Submit(ctx, func() {
			res, err := shard.Search(searchCtx, q, o, shardK)
			outcomes <- shardOutcome{shardIdx: i, results: res, err: err}
		})
		if err != nil {
			return nil, err
		}
	}

	resp := &Response{ShardsTotal: len(shards)}
	all := make([]ranking.Result, 0, shardK*len(shards))

	record := func(out shardOutcome) {
		if out.err != nil {
			resp.Partial = true
			if errors.Is(out.err, context.DeadlineExceeded) {
				s.metrics.RecordShardTimeout(out.shardIdx)
				s.logger.LogShardTimeout(ctx, out.shardIdx, s.shardTimeout)
			} else {
				s.logger.ErrorContext(ctx, "shard search failed",
					"shard", out.shardIdx,
					"error", out.err,
				)
			}
			return
		}
		resp.ShardsAnswered++
		all = append(all, out.results...)
	}

	pending := len(shards)
	for pending > 0 {
		select {
		case out := <-outcomes:
			if out.err != nil {
				// Caller cancellation aborts the whole query.
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			record(out)
			pending--
		case <-searchCtx.Done():
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			// Deadline expiry. Keep outcomes that beat the deadline but sat
			// buffered behind this branch, then stop waiting on the rest.
			for pending > 0 {
				select {
				case out := <-outcomes:
					record(out)
					pending--
				default:
					pending = 0
				}
			}
			if resp.ShardsAnswered < resp.ShardsTotal {
				resp.Partial = true
			}
		}
	}

	resp.Results = mergeTopK(all, o, k)
	return resp, nil
}

// mergeTopK sorts the concatenated shard lists globally, drops duplicate
// document IDs keeping the best-ranked occurrence and truncates to k.
func mergeTopK(all []ranking.Result, o *optics.Optic, k int) []ranking.Result {
	sort.Slice(all, func(i, j int) bool {
		return ranking.Compare(all[i], all[j], o) < 0
	})

	seen := make(map[core.DocID]struct{}, len(all))
	out := all[:0]
	for _, r := range all {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
		if len(out) == k {
			break
		}
	}
	return out
}

// Close releases the searcher's resources. Only a pool the searcher created
// itself is closed; shared pools stay open.
func (s *Searcher) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.ownsPool {
		s.pool.Close()
	}
	return nil
}
