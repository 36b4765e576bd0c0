package signal

import (
	"math"
	"strings"
	"unicode"

	"github.com/TheIronBorn/stract/core"
	"github.com/TheIronBorn/stract/query"
)

// BM25 parameters.
const (
	k1 = 1.2
	b  = 0.75

	// phraseBonus is added to a field's relevance score for every quoted
	// phrase that occurs verbatim in the field.
	phraseBonus = 2.0
)

// Field identifies an indexed text field.
type Field uint8

const (
	FieldTitle Field = iota
	FieldBody
	FieldURL

	// NumFields is the number of indexed text fields.
	NumFields
)

// String returns the field name.
func (f Field) String() string {
	switch f {
	case FieldTitle:
		return "title"
	case FieldBody:
		return "body"
	case FieldURL:
		return "url"
	default:
		return "unknown"
	}
}

// Static holds the precomputed per-document signals attached at index-build
// time. The collector looks these up; it never computes them. Fields absent
// from an older index generation unmarshal to zero.
type Static struct {
	HostCentrality  float64 `json:"host_centrality,omitempty"`
	UpdateFreshness float64 `json:"update_freshness,omitempty"`
	TrackerPenalty  float64 `json:"tracker_penalty,omitempty"`
	DomainQuality   float64 `json:"domain_quality,omitempty"`
	URLSlashes      float64 `json:"url_slashes,omitempty"`
	URLDigits       float64 `json:"url_digits,omitempty"`
}

// Document is a shard-local candidate: identifier, raw field contents and the
// static signals attached at index-build time.
type Document struct {
	ID     core.DocID `json:"id"`
	URL    string     `json:"url"`
	Site   string     `json:"site"`
	Path   string     `json:"path"`
	Title  string     `json:"title"`
	Body   string     `json:"body"`
	Static Static     `json:"static"`
}

// FieldText returns the raw text of an indexed field.
func (d *Document) FieldText(f Field) string {
	switch f {
	case FieldTitle:
		return d.Title
	case FieldBody:
		return d.Body
	case FieldURL:
		return d.URL
	default:
		return ""
	}
}

// CorpusStats provides the index statistics needed for inverse-document-
// frequency scoring. Implementations are backed by an immutable index
// snapshot, so repeated calls within one query observe the same corpus.
type CorpusStats interface {
	// DocCount returns the number of documents in the corpus.
	DocCount() int
	// DocFreq returns the number of documents whose field contains term.
	DocFreq(f Field, term string) int
	// AvgFieldLen returns the average token length of the field.
	AvgFieldLen(f Field) float64
}

// Collector computes a signal vector for a (query, document) pair. It is
// stateless apart from the corpus statistics and safe for concurrent use.
type Collector struct {
	stats CorpusStats
}

// NewCollector creates a collector over the given corpus statistics.
func NewCollector(stats CorpusStats) *Collector {
	return &Collector{stats: stats}
}

// Collect produces the signal vector for doc against q. The result is
// deterministic given identical (query, document, index snapshot).
func (c *Collector) Collect(q *query.Query, doc *Document) Vector {
	var v Vector

	v.Set(BM25Title, c.fieldScore(q, doc, FieldTitle, q.TitleTerms()))
	v.Set(BM25Body, c.fieldScore(q, doc, FieldBody, q.BodyTerms()))
	v.Set(BM25URL, c.fieldScore(q, doc, FieldURL, q.URLTerms()))

	v.Set(HostCentrality, doc.Static.HostCentrality)
	v.Set(UpdateFreshness, doc.Static.UpdateFreshness)
	v.Set(TrackerPenalty, doc.Static.TrackerPenalty)
	v.Set(DomainQuality, doc.Static.DomainQuality)
	v.Set(URLSlashes, doc.Static.URLSlashes)
	v.Set(URLDigits, doc.Static.URLDigits)

	return v
}

// fieldScore computes the BM25 score of one field plus phrase bonuses.
// extra carries the field-restricted directive values for this field.
func (c *Collector) fieldScore(q *query.Query, doc *Document, f Field, extra []string) float64 {
	terms := dedupe(append(q.PositiveWords(), extra...))
	if len(terms) == 0 {
		return 0
	}

	tokens := Tokenize(doc.FieldText(f))
	if len(tokens) == 0 {
		return 0
	}

	tf := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		tf[tok]++
	}

	n := c.stats.DocCount()
	avgLen := c.stats.AvgFieldLen(f)
	if avgLen <= 0 {
		avgLen = float64(len(tokens))
	}

	var score float64
	for _, term := range terms {
		freq := tf[term]
		if freq == 0 {
			continue
		}
		idf := idf(n, c.stats.DocFreq(f, term))
		num := float64(freq) * (k1 + 1)
		denom := float64(freq) + k1*(1-b+b*(float64(len(tokens))/avgLen))
		score += idf * (num / denom)
	}

	for _, phrase := range q.Phrases() {
		words := Tokenize(phrase)
		if len(words) < 2 {
			continue
		}
		if containsSeq(tokens, words) {
			score += phraseBonus
		}
	}

	return score
}

// idf computes log(1 + (N - n + 0.5) / (n + 0.5)).
func idf(docCount, docFreq int) float64 {
	n := float64(docCount)
	df := float64(docFreq)
	return math.Log(1 + (n-df+0.5)/(df+0.5))
}

// Tokenize lowercases text and splits on any non-alphanumeric rune. The same
// tokenizer runs at index-build and serve time so term statistics line up.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// ContainsPhrase reports whether any indexed field of the document contains
// the phrase words contiguously. Used by shards to verify exact-match phrase
// candidates selected via per-word postings.
func ContainsPhrase(d *Document, phrase string) bool {
	words := Tokenize(phrase)
	if len(words) == 0 {
		return true
	}
	for f := Field(0); f < NumFields; f++ {
		if containsSeq(Tokenize(d.FieldText(f)), words) {
			return true
		}
	}
	return false
}

// containsSeq reports whether words occurs as a contiguous subsequence of
// tokens.
func containsSeq(tokens, words []string) bool {
	if len(words) == 0 || len(words) > len(tokens) {
		return false
	}
outer:
	for i := 0; i+len(words) <= len(tokens); i++ {
		for j := range words {
			if tokens[i+j] != words[j] {
				continue outer
			}
		}
		return true
	}
	return false
}

func dedupe(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := terms[:0]
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
