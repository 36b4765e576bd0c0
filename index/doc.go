// Package index provides the per-shard candidate lookup and local ranking
// the pipeline fans out to.
//
// A Shard serves read-only evaluation of one index partition: it retrieves
// candidate documents for a query, computes their signal vectors, scores them
// under the compiled optic and returns its own top-K. Shards never mutate
// shared state during a query, which is what makes fan-out cancellation safe.
//
// Generations model immutable index snapshots. A new generation is built (or
// loaded from a blob store) off to the side and installed with an atomic
// whole-structure swap between queries; a live query keeps scoring against
// the snapshot it started with.
package index
