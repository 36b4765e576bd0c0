package core

// DocID encodes shard routing in high bits for O(1) shard lookup.
//
// Format: [ShardID:8 bits][LocalID:56 bits]
//
//	→ 256 shards max
//	→ 2^56 documents per shard
//
// Under a correct partitioning a document lives in exactly one shard, so the
// encoding doubles as a globally unique, stable result identifier and as the
// final tie-break key for ordering.
type DocID uint64

const (
	shardBits = 8
	localBits = 56
	localMask = (1 << localBits) - 1

	// MaxShards is the maximum number of index shards supported by the encoding.
	MaxShards = 1 << shardBits
)

// NewDocID creates a document ID from a shard index and a shard-local ID.
func NewDocID(shardIdx int, localID uint64) DocID {
	return DocID((uint64(shardIdx) << localBits) | (localID & localMask))
}

// Shard extracts the shard index (high 8 bits).
func (d DocID) Shard() int {
	return int(d >> localBits)
}

// Local extracts the shard-local ID (low 56 bits).
func (d DocID) Local() uint64 {
	return uint64(d) & localMask
}

// IsValid returns true if the shard index is within bounds.
func (d DocID) IsValid(numShards int) bool {
	return d.Shard() < numShards
}
