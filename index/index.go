package index

import (
	"context"

	"github.com/TheIronBorn/stract/optics"
	"github.com/TheIronBorn/stract/query"
	"github.com/TheIronBorn/stract/ranking"
)

// Shard is one independent partition of the inverted index. Search is
// read-only and safe to call concurrently; abandoning an in-flight Search
// (deadline expiry) never corrupts the shard.
type Shard interface {
	// ID returns the shard index used in document ID encoding.
	ID() int
	// Search retrieves candidates for q, scores them under o and returns the
	// shard-local top k in ranking order.
	Search(ctx context.Context, q *query.Query, o *optics.Optic, k int) ([]ranking.Result, error)
}
