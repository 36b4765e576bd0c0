package optics

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheIronBorn/stract/blobstore"
)

func TestCache_HitReturnsSameOptic(t *testing.T) {
	c := NewCache(4)

	first, err := c.Compile(`Like("a.com")`)
	require.NoError(t, err)
	second, err := c.Compile(`Like("a.com")`)
	require.NoError(t, err)
	assert.Same(t, first, second)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestCache_Eviction(t *testing.T) {
	c := NewCache(2)

	a, err := c.Compile(`Like("a.com")`)
	require.NoError(t, err)
	_, err = c.Compile(`Like("b.com")`)
	require.NoError(t, err)
	_, err = c.Compile(`Like("c.com")`) // evicts a.com
	require.NoError(t, err)

	again, err := c.Compile(`Like("a.com")`)
	require.NoError(t, err)
	assert.NotSame(t, a, again)
}

func TestCache_ErrorsNotCached(t *testing.T) {
	c := NewCache(4)

	_, err := c.Compile("Bogus(1)")
	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)

	_, err = c.Compile("Bogus(1)")
	require.ErrorAs(t, err, &cerr)

	_, misses := c.Stats()
	assert.Equal(t, int64(2), misses)
}

func TestCache_ConcurrentCompile(t *testing.T) {
	c := NewCache(8)
	src := `Rule { Matches: Site("a.com"), Action: Boost(1) }`

	var wg sync.WaitGroup
	optics := make([]*Optic, 16)
	for i := range optics {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o, err := c.Compile(src)
			assert.NoError(t, err)
			optics[i] = o
		}(i)
	}
	wg.Wait()

	for _, o := range optics {
		require.NotNil(t, o)
		assert.Equal(t, optics[0].Source(), o.Source())
	}
}

func TestStore_PutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemoryStore()
	store := NewStore(blobs, NewCache(4), "")

	src := `Dislike("spam.example.com")` + "\n" + `Ranking { bm25_url: 2 }`
	put, err := store.Put(ctx, "no-spam", src)
	require.NoError(t, err)

	got, err := store.Get(ctx, "no-spam")
	require.NoError(t, err)
	assert.Equal(t, put.Source(), got.Source())

	// Stored form is canonical.
	raw, err := blobs.Get(ctx, "optics/no-spam.optic")
	require.NoError(t, err)
	assert.Equal(t, put.Source(), string(raw))
}

func TestStore_GetMissing(t *testing.T) {
	store := NewStore(blobstore.NewMemoryStore(), nil, "")
	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestStore_PutRejectsInvalid(t *testing.T) {
	store := NewStore(blobstore.NewMemoryStore(), nil, "")
	_, err := store.Put(context.Background(), "bad", "Ranking { bogus_signal: 1 }")
	var cerr *CompileError
	assert.ErrorAs(t, err, &cerr)
}
