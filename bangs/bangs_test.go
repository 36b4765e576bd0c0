package bangs

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheIronBorn/stract/blobstore"
	"github.com/TheIronBorn/stract/query"
)

var testDefs = []Bang{
	{Trigger: "w", Name: "Wikipedia", Domain: "en.wikipedia.org", URLTemplate: "https://en.wikipedia.org/wiki/Special:Search?search={{{s}}}"},
	{Trigger: "gh", Name: "GitHub", Domain: "github.com", URLTemplate: "https://github.com/search?q={{{s}}}"},
}

func mustParse(t *testing.T, raw string) *query.Query {
	t.Helper()
	q, err := query.Parse(raw)
	require.NoError(t, err)
	return q
}

func TestResolve(t *testing.T) {
	table := NewStaticTable(testDefs)

	r, ok := table.Resolve(mustParse(t, "!w albert einstein"))
	require.True(t, ok)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Special:Search?search=albert+einstein", r.URL)
	assert.Equal(t, "Wikipedia", r.Bang.Name)
}

func TestResolveFullWidthPrefix(t *testing.T) {
	table := NewStaticTable(testDefs)

	r, ok := table.Resolve(mustParse(t, "！gh roaring bitmap"))
	require.True(t, ok)
	assert.Equal(t, "https://github.com/search?q=roaring+bitmap", r.URL)
}

func TestResolveUnknownTrigger(t *testing.T) {
	table := NewStaticTable(testDefs)

	_, ok := table.Resolve(mustParse(t, "!nope something"))
	assert.False(t, ok)
}

func TestResolveNoBang(t *testing.T) {
	table := NewStaticTable(testDefs)

	_, ok := table.Resolve(mustParse(t, "plain query"))
	assert.False(t, ok)
}

func TestResolveEscapesResidual(t *testing.T) {
	table := NewStaticTable(testDefs)

	r, ok := table.Resolve(mustParse(t, `!w c++ & "exact phrase"`))
	require.True(t, ok)
	assert.NotContains(t, r.URL, " ")
	assert.NotContains(t, r.URL, "&q")
	assert.Contains(t, r.URL, "%22exact+phrase%22")
}

func TestDuplicateTriggerFirstWins(t *testing.T) {
	table := NewStaticTable([]Bang{
		{Trigger: "x", URLTemplate: "https://first.example/{{{s}}}"},
		{Trigger: "x", URLTemplate: "https://second.example/{{{s}}}"},
	})

	r, ok := table.Resolve(mustParse(t, "!x q"))
	require.True(t, ok)
	assert.Contains(t, r.URL, "first.example")
}

func TestReloadPlainJSON(t *testing.T) {
	store := blobstore.NewMemoryStore()
	data, err := json.Marshal(testDefs)
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), "bangs.json", data))

	table := NewTable(store, "bangs.json")
	assert.Equal(t, 0, table.Len())

	require.NoError(t, table.Reload(context.Background()))
	assert.Equal(t, 2, table.Len())
}

func TestReloadZstd(t *testing.T) {
	store := blobstore.NewMemoryStore()
	data, err := json.Marshal(testDefs)
	require.NoError(t, err)

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	compressed := enc.EncodeAll(data, nil)
	require.NoError(t, enc.Close())
	require.NoError(t, store.Put(context.Background(), "bangs.json.zst", compressed))

	table := NewTable(store, "bangs.json.zst")
	require.NoError(t, table.Reload(context.Background()))
	assert.Equal(t, 2, table.Len())

	r, ok := table.Resolve(mustParse(t, "!w go"))
	require.True(t, ok)
	assert.Contains(t, r.URL, "wikipedia.org")
}

func TestReloadErrorKeepsOldTable(t *testing.T) {
	store := blobstore.NewMemoryStore()
	data, err := json.Marshal(testDefs)
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), "bangs.json", data))

	table := NewTable(store, "bangs.json")
	require.NoError(t, table.Reload(context.Background()))
	require.Equal(t, 2, table.Len())

	require.NoError(t, store.Put(context.Background(), "bangs.json", []byte("not json")))
	assert.Error(t, table.Reload(context.Background()))
	assert.Equal(t, 2, table.Len())

	_, ok := table.Resolve(mustParse(t, "!gh x"))
	assert.True(t, ok)
}

func TestReloadJSONStream(t *testing.T) {
	// The export format is one top-level array; trailing garbage is not
	// rejected by a streaming decoder, so verify a valid prefix parses.
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(testDefs))

	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), "bangs.json", buf.Bytes()))

	table := NewTable(store, "bangs.json")
	require.NoError(t, table.Reload(context.Background()))
	assert.Equal(t, 2, table.Len())
}
