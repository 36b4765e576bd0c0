package stract

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with pipeline-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithQuery adds the canonical query field to the logger.
func (l *Logger) WithQuery(canonical string) *Logger {
	return &Logger{
		Logger: l.Logger.With("query", canonical),
	}
}

// WithOptic adds the named-optic field to the logger.
func (l *Logger) WithOptic(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("optic", name),
	}
}

// LogSearch logs a completed search.
func (l *Logger) LogSearch(ctx context.Context, k, resultsFound int, partial bool, dur time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"k", k,
			"duration", dur,
			"error", err,
		)
		return
	}
	if partial {
		l.WarnContext(ctx, "search completed partially",
			"k", k,
			"results", resultsFound,
			"duration", dur,
		)
		return
	}
	l.DebugContext(ctx, "search completed",
		"k", k,
		"results", resultsFound,
		"duration", dur,
	)
}

// LogBang logs a shortcut redirect.
func (l *Logger) LogBang(ctx context.Context, trigger, target string) {
	l.DebugContext(ctx, "bang redirect",
		"trigger", trigger,
		"target", target,
	)
}

// LogCompile logs an optic compilation.
func (l *Logger) LogCompile(ctx context.Context, name string, dur time.Duration, err error) {
	if err != nil {
		l.WarnContext(ctx, "optic compile failed",
			"optic", name,
			"duration", dur,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "optic compiled",
		"optic", name,
		"duration", dur,
	)
}

// LogShardTimeout logs a shard that missed the fan-out deadline.
func (l *Logger) LogShardTimeout(ctx context.Context, shardIdx int, timeout time.Duration) {
	l.WarnContext(ctx, "shard missed deadline",
		"shard", shardIdx,
		"timeout", timeout,
	)
}
