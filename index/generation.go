package index

import (
	"sync/atomic"
	"time"
)

// Generation is one immutable index snapshot: a fixed shard set identified
// by a monotonically increasing generation number.
type Generation struct {
	id      uint64
	shards  []Shard
	created time.Time
}

// NewGeneration creates a generation over the given shards.
func NewGeneration(id uint64, shards []Shard) *Generation {
	return &Generation{id: id, shards: shards, created: time.Now()}
}

// ID returns the generation number.
func (g *Generation) ID() uint64 { return g.id }

// Shards returns the shard set. The slice must not be mutated.
func (g *Generation) Shards() []Shard { return g.shards }

// CreatedAt returns when the generation was assembled in this process.
func (g *Generation) CreatedAt() time.Time { return g.created }

// Generations publishes the serving snapshot. Updates are whole-structure
// atomic swaps under a single-writer discipline: a reader either sees the
// old generation or the new one, never a mix, and a query keeps the
// generation it grabbed for its whole lifetime.
type Generations struct {
	cur atomic.Pointer[Generation]
}

// NewGenerations creates a holder serving the initial generation.
func NewGenerations(initial *Generation) *Generations {
	g := &Generations{}
	g.cur.Store(initial)
	return g
}

// Current returns the serving generation.
func (g *Generations) Current() *Generation {
	return g.cur.Load()
}

// Swap installs the next generation and returns the previous one. New index
// generations are swapped between queries, never mutated under a live one.
func (g *Generations) Swap(next *Generation) *Generation {
	return g.cur.Swap(next)
}
