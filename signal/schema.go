package signal

// SchemaVersion identifies the signal schema. The optics compiler stamps
// compiled rule sets with the version it validated against; a mismatch
// between a compiled optic and the serving scorer indicates deployment skew
// and is surfaced as a fatal inconsistency, never silently ignored.
const SchemaVersion = 1

// ID identifies one signal in the fixed schema.
type ID uint8

const (
	// BM25Title is the term-relevance score of the title field.
	BM25Title ID = iota
	// BM25Body is the term-relevance score of the body field.
	BM25Body
	// BM25URL is the term-relevance score of the URL field.
	BM25URL
	// HostCentrality is the precomputed link-graph authority of the host.
	HostCentrality
	// UpdateFreshness reflects how recently the page changed, in [0, 1].
	UpdateFreshness
	// TrackerPenalty grows with the number of trackers on the page, in [0, 1].
	// Its default weight is negative.
	TrackerPenalty
	// DomainQuality is a precomputed per-domain quality score, in [0, 1].
	DomainQuality
	// URLSlashes is the normalized path depth of the URL.
	URLSlashes
	// URLDigits is the normalized digit count of the URL.
	URLDigits

	numSignals
)

// Count returns the number of signals in the schema.
func Count() int { return int(numSignals) }

var names = [numSignals]string{
	BM25Title:       "bm25_title",
	BM25Body:        "bm25_body",
	BM25URL:         "bm25_url",
	HostCentrality:  "host_centrality",
	UpdateFreshness: "update_freshness",
	TrackerPenalty:  "tracker_penalty",
	DomainQuality:   "domain_quality",
	URLSlashes:      "url_slashes",
	URLDigits:       "url_digits",
}

var byName = func() map[string]ID {
	m := make(map[string]ID, numSignals)
	for id, name := range names {
		m[name] = ID(id)
	}
	return m
}()

// String returns the schema name of the signal.
func (id ID) String() string {
	if id >= numSignals {
		return "unknown"
	}
	return names[id]
}

// Lookup resolves a signal name from the schema. ok is false for names
// outside the schema.
func Lookup(name string) (ID, bool) {
	id, ok := byName[name]
	return id, ok
}

// Names returns all signal names in schema order.
func Names() []string {
	out := make([]string, numSignals)
	copy(out, names[:])
	return out
}

// Weights maps every signal to a multiplier, indexed by ID.
type Weights [numSignals]float64

// DefaultWeights returns the built-in weights: title outranks body outranks
// URL for text relevance, centrality dominates the static group, and tracker
// load and noisy URL shapes subtract.
func DefaultWeights() Weights {
	return Weights{
		BM25Title:       4.0,
		BM25Body:        2.0,
		BM25URL:         1.0,
		HostCentrality:  3.0,
		UpdateFreshness: 0.5,
		TrackerPenalty:  -0.25,
		DomainQuality:   1.0,
		URLSlashes:      -0.1,
		URLDigits:       -0.1,
	}
}
