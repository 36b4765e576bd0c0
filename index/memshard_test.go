package index

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheIronBorn/stract/optics"
	"github.com/TheIronBorn/stract/query"
	"github.com/TheIronBorn/stract/signal"
)

func mustParse(t *testing.T, raw string) *query.Query {
	t.Helper()
	q, err := query.Parse(raw)
	require.NoError(t, err)
	return q
}

func testShard(t *testing.T) *MemShard {
	t.Helper()
	s, err := NewMemShard(0)
	require.NoError(t, err)

	docs := []signal.Document{
		{
			URL:   "https://www.example.com/guide",
			Title: "Rust programming guide",
			Body:  "A practical guide to the Rust programming language.",
			Static: signal.Static{
				HostCentrality: 0.8,
			},
		},
		{
			URL:   "https://blog.example.com/posts/go",
			Title: "Go concurrency patterns",
			Body:  "Channels and goroutines for Go programming.",
			Static: signal.Static{
				HostCentrality: 0.4,
			},
		},
		{
			URL:   "https://docs.other.org/manual.pdf",
			Title: "Reference manual",
			Body:  "The complete programming reference manual.",
		},
	}
	for _, d := range docs {
		_, err := s.Add(d)
		require.NoError(t, err)
	}
	return s
}

func TestMemShardAddDerivesSiteAndPath(t *testing.T) {
	s := testShard(t)

	docs := s.Docs()
	require.Len(t, docs, 3)
	assert.Equal(t, "www.example.com", docs[0].Site)
	assert.Equal(t, "/guide", docs[0].Path)
	assert.Equal(t, 0, docs[0].ID.Shard())
	assert.Equal(t, uint64(1), docs[1].ID.Local())
}

func TestMemShardSearchSimple(t *testing.T) {
	s := testShard(t)

	results, err := s.Search(context.Background(), mustParse(t, "programming"), optics.Empty(), 10)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	// Every result must actually contain the term.
	for _, r := range results {
		assert.NotEmpty(t, r.Title)
		assert.Greater(t, r.Score, 0.0)
	}
}

func TestMemShardSearchSiteRestrict(t *testing.T) {
	s := testShard(t)

	// site: covers subdomains of the named host.
	results, err := s.Search(context.Background(), mustParse(t, "programming site:example.com"), optics.Empty(), 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Contains(t, r.Site, "example.com")
	}
}

func TestMemShardSearchIntitle(t *testing.T) {
	s := testShard(t)

	results, err := s.Search(context.Background(), mustParse(t, "intitle:concurrency"), optics.Empty(), 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Go concurrency patterns", results[0].Title)
}

func TestMemShardSearchExcluded(t *testing.T) {
	s := testShard(t)

	results, err := s.Search(context.Background(), mustParse(t, "programming -rust"), optics.Empty(), 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NotEqual(t, "Rust programming guide", r.Title)
	}
}

func TestMemShardSearchExcludedSite(t *testing.T) {
	s := testShard(t)

	results, err := s.Search(context.Background(), mustParse(t, "programming -site:example.com"), optics.Empty(), 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "docs.other.org", results[0].Site)
}

func TestMemShardSearchPhrase(t *testing.T) {
	s := testShard(t)

	results, err := s.Search(context.Background(), mustParse(t, `"programming reference manual"`), optics.Empty(), 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Reference manual", results[0].Title)

	// Same words, wrong order: per-word postings match but phrase
	// verification rejects.
	results, err = s.Search(context.Background(), mustParse(t, `"manual reference programming"`), optics.Empty(), 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemShardSearchFiletype(t *testing.T) {
	s := testShard(t)

	results, err := s.Search(context.Background(), mustParse(t, "manual filetype:pdf"), optics.Empty(), 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://docs.other.org/manual.pdf", results[0].URL)
}

func TestMemShardSearchNoPositiveSelector(t *testing.T) {
	s := testShard(t)

	results, err := s.Search(context.Background(), mustParse(t, "-rust"), optics.Empty(), 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemShardSearchDiscardRule(t *testing.T) {
	s := testShard(t)

	o := optics.MustCompile(`
		Rule {
			Matches: Site("example.com"),
			Action: Discard
		}
	`)

	results, err := s.Search(context.Background(), mustParse(t, "programming"), o, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "docs.other.org", results[0].Site)
}

func TestMemShardSearchTopK(t *testing.T) {
	s := testShard(t)

	results, err := s.Search(context.Background(), mustParse(t, "programming"), optics.Empty(), 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestMemShardSearchOrderedByScore(t *testing.T) {
	s := testShard(t)

	results, err := s.Search(context.Background(), mustParse(t, "programming"), optics.Empty(), 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score-1e-9)
	}
}

func TestMemShardSearchExpiredContext(t *testing.T) {
	s := testShard(t)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := s.Search(ctx, mustParse(t, "programming"), optics.Empty(), 10)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemShardSearchInvalidK(t *testing.T) {
	s := testShard(t)

	_, err := s.Search(context.Background(), mustParse(t, "programming"), optics.Empty(), 0)
	assert.Error(t, err)
}

func TestNewMemShardIDRange(t *testing.T) {
	_, err := NewMemShard(-1)
	assert.Error(t, err)
	_, err = NewMemShard(256)
	assert.Error(t, err)
	_, err = NewMemShard(255)
	assert.NoError(t, err)
}

func TestGenerationsSwap(t *testing.T) {
	s0, err := NewMemShard(0)
	require.NoError(t, err)
	gen1 := NewGeneration(1, []Shard{s0})

	gens := NewGenerations(gen1)
	assert.Same(t, gen1, gens.Current())

	s1, err := NewMemShard(0)
	require.NoError(t, err)
	gen2 := NewGeneration(2, []Shard{s1})

	prev := gens.Swap(gen2)
	assert.Same(t, gen1, prev)
	assert.Same(t, gen2, gens.Current())
	assert.Equal(t, uint64(2), gens.Current().ID())
}
