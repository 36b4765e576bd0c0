package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheIronBorn/stract/core"
	"github.com/TheIronBorn/stract/query"
)

// fixedStats is a minimal corpus for deterministic scoring tests.
type fixedStats struct {
	docs   int
	df     map[string]int
	avgLen float64
}

func (s fixedStats) DocCount() int { return s.docs }
func (s fixedStats) DocFreq(_ Field, term string) int {
	return s.df[term]
}
func (s fixedStats) AvgFieldLen(Field) float64 { return s.avgLen }

func testDoc() *Document {
	return &Document{
		ID:    core.NewDocID(0, 1),
		URL:   "https://example.com/rust/guide",
		Site:  "example.com",
		Path:  "/rust/guide",
		Title: "The Rust Programming Language",
		Body:  "Rust is a systems programming language focused on memory safety.",
	}
}

func TestCollect_TermRelevancePerField(t *testing.T) {
	stats := fixedStats{docs: 10, df: map[string]int{"rust": 3, "language": 5}, avgLen: 8}
	c := NewCollector(stats)

	q, err := query.Parse("rust language")
	require.NoError(t, err)

	v := c.Collect(q, testDoc())
	assert.Greater(t, v.Get(BM25Title), 0.0)
	assert.Greater(t, v.Get(BM25Body), 0.0)
	assert.Greater(t, v.Get(BM25URL), 0.0)

	// A document without the terms scores zero everywhere.
	other := testDoc()
	other.Title, other.Body, other.URL = "cooking", "recipes for dinner", "https://food.example.com/"
	v = c.Collect(q, other)
	assert.Zero(t, v.Get(BM25Title))
	assert.Zero(t, v.Get(BM25Body))
	assert.Zero(t, v.Get(BM25URL))
}

func TestCollect_FieldDirectiveScoresOnlyItsField(t *testing.T) {
	stats := fixedStats{docs: 10, df: map[string]int{"guide": 2}, avgLen: 8}
	c := NewCollector(stats)

	q, err := query.Parse("intitle:programming")
	require.NoError(t, err)

	v := c.Collect(q, testDoc())
	assert.Greater(t, v.Get(BM25Title), 0.0)
	assert.Zero(t, v.Get(BM25Body)) // "programming" is in the body too, but
	// only via the shared positive words; intitle: contributes nothing there.
}

func TestCollect_PhraseBonus(t *testing.T) {
	stats := fixedStats{docs: 10, df: map[string]int{"memory": 2, "safety": 2}, avgLen: 10}
	c := NewCollector(stats)

	qPhrase, err := query.Parse(`"memory safety"`)
	require.NoError(t, err)
	qLoose, err := query.Parse("memory safety")
	require.NoError(t, err)

	doc := testDoc()
	withPhrase := c.Collect(qPhrase, doc).Get(BM25Body)
	loose := c.Collect(qLoose, doc).Get(BM25Body)
	assert.InDelta(t, phraseBonus, withPhrase-loose, 1e-9)

	// Words present but not adjacent: no bonus.
	doc.Body = "safety of memory in systems"
	withPhrase = c.Collect(qPhrase, doc).Get(BM25Body)
	loose = c.Collect(qLoose, doc).Get(BM25Body)
	assert.InDelta(t, 0, withPhrase-loose, 1e-9)
}

func TestCollect_StaticLookupAndDefaults(t *testing.T) {
	c := NewCollector(fixedStats{docs: 1, df: map[string]int{}, avgLen: 1})
	q, err := query.Parse("anything")
	require.NoError(t, err)

	doc := testDoc()
	doc.Static = Static{HostCentrality: 0.8, TrackerPenalty: 0.3}

	v := c.Collect(q, doc)
	assert.Equal(t, 0.8, v.Get(HostCentrality))
	assert.Equal(t, 0.3, v.Get(TrackerPenalty))

	// Signals missing from the index metadata default to zero.
	assert.Zero(t, v.Get(DomainQuality))
	assert.Zero(t, v.Get(UpdateFreshness))
}

func TestCollect_Deterministic(t *testing.T) {
	stats := fixedStats{docs: 100, df: map[string]int{"rust": 10}, avgLen: 12}
	c := NewCollector(stats)
	q, err := query.Parse("rust intitle:language")
	require.NoError(t, err)

	first := c.Collect(q, testDoc())
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, c.Collect(q, testDoc()))
	}
}

func TestSchema_Lookup(t *testing.T) {
	for _, name := range Names() {
		id, ok := Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, name, id.String())
	}

	_, ok := Lookup("bogus_signal")
	assert.False(t, ok)
}

func TestVector_WeightedSum(t *testing.T) {
	var v Vector
	v.Set(BM25Title, 2.0)
	v.Set(HostCentrality, 1.0)

	w := DefaultWeights()
	assert.InDelta(t, 2.0*w[BM25Title]+1.0*w[HostCentrality], v.WeightedSum(w), 1e-9)
}
