package stract

import (
	"errors"
	"fmt"

	"github.com/TheIronBorn/stract/optics"
	"github.com/TheIronBorn/stract/query"
)

var (
	// ErrInvalidK is returned when the requested result count is not
	// positive or exceeds the configured maximum.
	ErrInvalidK = errors.New("k must be positive and within the configured maximum")

	// ErrInvalidQuery is returned when the raw query cannot be parsed.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrInvalidOptic is returned when an optic script fails to compile and
	// fallback is not allowed.
	ErrInvalidOptic = errors.New("invalid optic")

	// ErrRateLimited is returned when query admission rejects the request.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrClosed is returned when the searcher has been shut down.
	ErrClosed = errors.New("searcher is closed")
)

// ErrSchemaMismatch indicates an optic compiled against a different signal
// schema than the one the searcher scores with. This is an internal
// inconsistency: optics are always compiled in-process against the current
// schema, so a mismatch means a stale cached artifact slipped through.
type ErrSchemaMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrSchemaMismatch) Error() string {
	return fmt.Sprintf("signal schema mismatch: expected version %d, got %d", e.Expected, e.Actual)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var pe *query.ParseError
	if errors.As(err, &pe) {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	var ce *optics.CompileError
	if errors.As(err, &ce) {
		return fmt.Errorf("%w: %w", ErrInvalidOptic, err)
	}

	return err
}
