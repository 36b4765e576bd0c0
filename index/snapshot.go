package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"golang.org/x/sync/errgroup"

	"github.com/TheIronBorn/stract/blobstore"
	"github.com/TheIronBorn/stract/signal"
)

// Codec selects the snapshot compression format.
type Codec uint8

const (
	// CodecZstd compresses snapshot segments with zstd (default).
	CodecZstd Codec = iota
	// CodecLZ4 compresses snapshot segments with lz4 frames, trading ratio
	// for decompression speed on generation reload.
	CodecLZ4
)

func (c Codec) ext() string {
	switch c {
	case CodecLZ4:
		return ".json.lz4"
	default:
		return ".json.zst"
	}
}

func snapshotPrefix(genID uint64) string {
	return fmt.Sprintf("index/gen-%06d/", genID)
}

func shardBlobName(genID uint64, shardIdx int, c Codec) string {
	return fmt.Sprintf("%sshard-%03d%s", snapshotPrefix(genID), shardIdx, c.ext())
}

// SaveSnapshot persists every shard of a generation to the blob store, one
// compressed segment per shard, written in parallel. Only MemShard-backed
// generations can be snapshotted.
func SaveSnapshot(ctx context.Context, store blobstore.Store, gen *Generation, codec Codec) error {
	g, ctx := errgroup.WithContext(ctx)

	for i, shard := range gen.Shards() {
		mem, ok := shard.(*MemShard)
		if !ok {
			return fmt.Errorf("index: shard %d does not support snapshots", i)
		}
		g.Go(func() error {
			data, err := json.Marshal(mem.Docs())
			if err != nil {
				return fmt.Errorf("shard %d: %w", i, err)
			}
			compressed, err := compress(data, codec)
			if err != nil {
				return fmt.Errorf("shard %d: %w", i, err)
			}
			return store.Put(ctx, shardBlobName(gen.ID(), i, codec), compressed)
		})
	}
	return g.Wait()
}

// LoadSnapshot rebuilds a generation from the blob store, loading shard
// segments in parallel. The codec is detected from each segment's name.
func LoadSnapshot(ctx context.Context, store blobstore.Store, genID uint64) (*Generation, error) {
	names, err := store.List(ctx, snapshotPrefix(genID))
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("index: generation %d: %w", genID, blobstore.ErrNotFound)
	}
	sort.Strings(names)

	shards := make([]Shard, len(names))
	g, ctx := errgroup.WithContext(ctx)

	for i, name := range names {
		g.Go(func() error {
			raw, err := store.Get(ctx, name)
			if err != nil {
				return fmt.Errorf("segment %s: %w", name, err)
			}
			data, err := decompress(raw, name)
			if err != nil {
				return fmt.Errorf("segment %s: %w", name, err)
			}

			var docs []signal.Document
			if err := json.Unmarshal(data, &docs); err != nil {
				return fmt.Errorf("segment %s: %w", name, err)
			}

			shard, err := NewMemShard(i)
			if err != nil {
				return err
			}
			for _, doc := range docs {
				if _, err := shard.Add(doc); err != nil {
					return fmt.Errorf("segment %s: %w", name, err)
				}
			}
			shards[i] = shard
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewGeneration(genID, shards), nil
}

func compress(data []byte, codec Codec) ([]byte, error) {
	switch codec {
	case CodecLZ4:
		var buf bytes.Buffer
		zw := lz4.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	}
}

func decompress(raw []byte, name string) ([]byte, error) {
	switch {
	case strings.HasSuffix(name, ".lz4"):
		return io.ReadAll(lz4.NewReader(bytes.NewReader(raw)))
	case strings.HasSuffix(name, ".zst"):
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(raw, nil)
	default:
		return raw, nil
	}
}
