package index

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/TheIronBorn/stract/core"
	"github.com/TheIronBorn/stract/optics"
	"github.com/TheIronBorn/stract/query"
	"github.com/TheIronBorn/stract/ranking"
	"github.com/TheIronBorn/stract/signal"
)

// ctxCheckInterval is how many candidates are scored between deadline checks.
const ctxCheckInterval = 1024

// MemShard is an in-memory shard with per-field roaring posting lists.
// Documents are added during index build; queries only read, so a built
// shard behaves as an immutable snapshot.
type MemShard struct {
	id int

	mu        sync.RWMutex
	docs      []signal.Document
	postings  [signal.NumFields]map[string]*roaring.Bitmap
	sites     map[string]*roaring.Bitmap
	filetypes map[string]*roaring.Bitmap
	fieldLens [signal.NumFields]int64

	scorer *ranking.Scorer
}

var _ Shard = (*MemShard)(nil)

// NewMemShard creates an empty shard with the given shard index.
func NewMemShard(id int) (*MemShard, error) {
	if id < 0 || id >= core.MaxShards {
		return nil, fmt.Errorf("index: shard id %d out of range [0, %d)", id, core.MaxShards)
	}
	s := &MemShard{
		id:        id,
		sites:     make(map[string]*roaring.Bitmap),
		filetypes: make(map[string]*roaring.Bitmap),
		scorer:    ranking.NewScorer(),
	}
	for f := range s.postings {
		s.postings[f] = make(map[string]*roaring.Bitmap)
	}
	return s, nil
}

// ID returns the shard index.
func (s *MemShard) ID() int { return s.id }

// Add indexes a document and returns its assigned ID. Site and Path are
// derived from the URL when empty, and the structural URL signals are
// computed here: they are static, attached at index-build time, never at
// serve time.
func (s *MemShard) Add(doc signal.Document) (core.DocID, error) {
	u, err := url.Parse(doc.URL)
	if err != nil {
		return 0, fmt.Errorf("index: document url: %w", err)
	}
	if doc.Site == "" {
		doc.Site = u.Hostname()
	}
	if doc.Path == "" {
		doc.Path = u.Path
	}
	doc.Static.URLSlashes = normalizedCount(strings.Count(u.Path, "/"))
	doc.Static.URLDigits = normalizedCount(digitCount(doc.URL))

	s.mu.Lock()
	defer s.mu.Unlock()

	local := uint32(len(s.docs))
	doc.ID = core.NewDocID(s.id, uint64(local))
	s.docs = append(s.docs, doc)

	for f := signal.Field(0); f < signal.NumFields; f++ {
		tokens := signal.Tokenize(doc.FieldText(f))
		s.fieldLens[f] += int64(len(tokens))
		for _, tok := range tokens {
			s.addPosting(s.postings[f], tok, local)
		}
	}
	s.addPosting(s.sites, doc.Site, local)
	if ft := fileType(u.Path); ft != "" {
		s.addPosting(s.filetypes, ft, local)
	}

	return doc.ID, nil
}

func (s *MemShard) addPosting(m map[string]*roaring.Bitmap, key string, local uint32) {
	bm, ok := m[key]
	if !ok {
		bm = roaring.New()
		m[key] = bm
	}
	bm.Add(local)
}

// Len returns the number of indexed documents.
func (s *MemShard) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Docs returns a copy of all indexed documents, used by snapshot save.
func (s *MemShard) Docs() []signal.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]signal.Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Search implements Shard.
func (s *MemShard) Search(ctx context.Context, q *query.Query, o *optics.Optic, k int) ([]ranking.Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("index: k must be positive, got %d", k)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	collector := signal.NewCollector(shardStats{s})
	candidates := s.retrieve(q)
	phrases := q.Phrases()

	results := make([]ranking.Result, 0, k)
	checked := 0

	it := candidates.Iterator()
	for it.HasNext() {
		if checked%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		checked++

		doc := &s.docs[it.Next()]

		if !phrasesMatch(doc, phrases) {
			continue
		}

		target := optics.Target{Site: doc.Site, Path: doc.Path, URL: doc.URL}
		vec := collector.Collect(q, doc)
		score, disp := s.scorer.Score(target, vec, o)
		if disp == ranking.Discard {
			continue
		}

		results = append(results, ranking.Result{
			ID:      doc.ID,
			Site:    doc.Site,
			URL:     doc.URL,
			Title:   doc.Title,
			Score:   score,
			Signals: vec,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return ranking.Compare(results[i], results[j], o) < 0
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// retrieve selects candidate local IDs: the intersection of all required
// selectors, minus every forbidden selector. A query with no positive
// selector yields no candidates.
func (s *MemShard) retrieve(q *query.Query) *roaring.Bitmap {
	var cand *roaring.Bitmap
	restrict := func(b *roaring.Bitmap) {
		if cand == nil {
			cand = b.Clone()
			return
		}
		cand.And(b)
	}

	for _, t := range q.Terms {
		switch t.Kind {
		case query.TermSimple, query.TermBang, query.TermPhrase:
			text, _ := t.AsText()
			for _, word := range signal.Tokenize(text) {
				restrict(s.anyField(word))
			}
		case query.TermTitle:
			for _, word := range signal.Tokenize(t.Text) {
				restrict(s.fieldBitmap(signal.FieldTitle, word))
			}
		case query.TermBody:
			for _, word := range signal.Tokenize(t.Text) {
				restrict(s.fieldBitmap(signal.FieldBody, word))
			}
		case query.TermURL:
			for _, word := range signal.Tokenize(t.Text) {
				restrict(s.fieldBitmap(signal.FieldURL, word))
			}
		case query.TermSite:
			restrict(s.siteBitmap(t.Text))
		case query.TermFiletype:
			restrict(s.lookup(s.filetypes, t.Text))
		}
	}

	if cand == nil {
		return roaring.New()
	}

	for _, excluded := range q.Excluded() {
		cand.AndNot(s.bitmapFor(excluded))
	}
	return cand
}

// bitmapFor resolves the selector bitmap of a single term, used for
// forbidden-term subtraction.
func (s *MemShard) bitmapFor(t query.Term) *roaring.Bitmap {
	switch t.Kind {
	case query.TermSite:
		return s.siteBitmap(t.Text)
	case query.TermTitle:
		return s.wordsAnd(signal.FieldTitle, t.Text)
	case query.TermBody:
		return s.wordsAnd(signal.FieldBody, t.Text)
	case query.TermURL:
		return s.wordsAnd(signal.FieldURL, t.Text)
	case query.TermFiletype:
		return s.lookup(s.filetypes, t.Text).Clone()
	default:
		text, ok := t.AsText()
		if !ok {
			return roaring.New()
		}
		out := roaring.New()
		first := true
		for _, word := range signal.Tokenize(text) {
			if first {
				out = s.anyField(word).Clone()
				first = false
				continue
			}
			out.And(s.anyField(word))
		}
		return out
	}
}

func (s *MemShard) wordsAnd(f signal.Field, text string) *roaring.Bitmap {
	out := roaring.New()
	first := true
	for _, word := range signal.Tokenize(text) {
		if first {
			out = s.fieldBitmap(f, word).Clone()
			first = false
			continue
		}
		out.And(s.fieldBitmap(f, word))
	}
	return out
}

// anyField returns the union of a word's postings across all fields.
func (s *MemShard) anyField(word string) *roaring.Bitmap {
	out := roaring.New()
	for f := range s.postings {
		if bm, ok := s.postings[f][word]; ok {
			out.Or(bm)
		}
	}
	return out
}

func (s *MemShard) fieldBitmap(f signal.Field, word string) *roaring.Bitmap {
	return s.lookup(s.postings[f], word)
}

func (s *MemShard) lookup(m map[string]*roaring.Bitmap, key string) *roaring.Bitmap {
	if bm, ok := m[key]; ok {
		return bm
	}
	return roaring.New()
}

// siteBitmap selects documents on the site or any of its subdomains.
func (s *MemShard) siteBitmap(site string) *roaring.Bitmap {
	out := roaring.New()
	suffix := "." + site
	for host, bm := range s.sites {
		if host == site || strings.HasSuffix(host, suffix) {
			out.Or(bm)
		}
	}
	return out
}

func phrasesMatch(doc *signal.Document, phrases []string) bool {
	for _, p := range phrases {
		if !signal.ContainsPhrase(doc, p) {
			return false
		}
	}
	return true
}

// shardStats adapts a shard to signal.CorpusStats. Callers hold the shard
// read lock for the duration of a search.
type shardStats struct {
	s *MemShard
}

func (st shardStats) DocCount() int {
	return len(st.s.docs)
}

func (st shardStats) DocFreq(f signal.Field, term string) int {
	if bm, ok := st.s.postings[f][term]; ok {
		return int(bm.GetCardinality())
	}
	return 0
}

func (st shardStats) AvgFieldLen(f signal.Field) float64 {
	if len(st.s.docs) == 0 {
		return 0
	}
	return float64(st.s.fieldLens[f]) / float64(len(st.s.docs))
}

func normalizedCount(n int) float64 {
	v := float64(n) / 10
	if v > 1 {
		return 1
	}
	return v
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func fileType(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 || idx == len(path)-1 {
		return ""
	}
	ext := path[idx+1:]
	if strings.ContainsAny(ext, "/") {
		return ""
	}
	return strings.ToLower(ext)
}
