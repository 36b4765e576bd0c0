package stract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/TheIronBorn/stract/bangs"
	"github.com/TheIronBorn/stract/blobstore"
	minioblob "github.com/TheIronBorn/stract/blobstore/minio"
	"github.com/TheIronBorn/stract/config"
	"github.com/TheIronBorn/stract/index"
	"github.com/TheIronBorn/stract/optics"
)

// NewFromConfig assembles a searcher and its supporting stores from a loaded
// configuration. The bang table is loaded eagerly; a missing bang blob is
// tolerated and leaves the table empty.
func NewFromConfig(ctx context.Context, cfg config.Config, gens *index.Generations, extra ...Option) (*Searcher, blobstore.Store, error) {
	store, err := OpenBlobStore(cfg.Storage)
	if err != nil {
		return nil, nil, err
	}

	cache := optics.NewCache(cfg.Optics.CacheSize)
	opticStore := optics.NewStore(store, cache, cfg.Optics.Prefix)

	table := bangs.NewTable(store, cfg.Bangs.Blob)
	if err := table.Reload(ctx); err != nil && !errors.Is(err, blobstore.ErrNotFound) {
		return nil, nil, fmt.Errorf("load bang table: %w", err)
	}

	opts := []Option{
		WithLogger(loggerFromConfig(cfg.Logging)),
		WithOpticCache(cache),
		WithOpticStore(opticStore),
		WithBangTable(table),
		WithOverFetch(cfg.Search.OverFetchFactor),
		WithShardTimeout(time.Duration(cfg.Search.ShardTimeoutMS) * time.Millisecond),
		WithRateLimit(cfg.Search.RateQPS, cfg.Search.RateBurst),
		WithKLimits(cfg.Search.DefaultK, cfg.Search.MaxK),
	}
	if cfg.Search.Workers > 0 {
		opts = append(opts, WithWorkers(cfg.Search.Workers))
	}
	opts = append(opts, extra...)

	return NewSearcher(gens, opts...), store, nil
}

// OpenBlobStore creates the blob store described by the storage config.
func OpenBlobStore(cfg config.StorageConfig) (blobstore.Store, error) {
	switch cfg.Kind {
	case "memory", "":
		return blobstore.NewMemoryStore(), nil
	case "local":
		return blobstore.NewLocalStore(cfg.Dir)
	case "minio":
		client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return minioblob.NewStore(client, cfg.Bucket, cfg.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown storage kind %q", cfg.Kind)
	}
}

func loggerFromConfig(cfg config.LoggingConfig) *Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if cfg.Format == "json" {
		return NewJSONLogger(level)
	}
	return NewTextLogger(level)
}
