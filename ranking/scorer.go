// Package ranking combines a document's signal vector with a compiled optic
// into one ordering score, and defines the deterministic comparator used for
// shard-local top-K selection and the global merge.
package ranking

import (
	"github.com/TheIronBorn/stract/core"
	"github.com/TheIronBorn/stract/optics"
	"github.com/TheIronBorn/stract/signal"
)

// Epsilon is the score distance within which two documents are considered
// tied and ordered by the tie-break chain instead.
const Epsilon = 1e-6

// Disposition is the scorer's verdict for one document.
type Disposition uint8

const (
	// Include keeps the document with its score.
	Include Disposition = iota
	// Discard drops the document; its score is meaningless.
	Discard
)

// Result is one scored document. The signal vector is retained for
// explainability output, not correctness.
type Result struct {
	ID      core.DocID
	Site    string
	URL     string
	Title   string
	Score   float64
	Signals signal.Vector
}

// Scorer evaluates a compiled optic over signal vectors. It holds only the
// built-in default weights and is safe for concurrent use.
type Scorer struct {
	defaults signal.Weights
}

// NewScorer creates a scorer with the built-in default weights.
func NewScorer() *Scorer {
	return &Scorer{defaults: signal.DefaultWeights()}
}

// Score produces the ordering score for a document, or Discard.
//
// Evaluation order is fixed: discard rules run first in declared order (the
// first match wins regardless of where boost rules appear); then the weighted
// signal sum is computed with the optic's replacement weights applied over
// the defaults; finally boost/downrank rules accumulate additively in
// declared order. The scorer is total over any compiled optic: unknown
// signal names were rejected at compile time.
func (s *Scorer) Score(target optics.Target, vec signal.Vector, o *optics.Optic) (float64, Disposition) {
	rules := o.Rules()

	for _, r := range rules {
		if r.Action == optics.ActionDiscard && r.Matches(target) {
			return 0, Discard
		}
	}

	weights := s.defaults
	o.ApplyWeights(&weights)
	score := vec.WeightedSum(weights)

	for _, r := range rules {
		if !r.Matches(target) {
			continue
		}
		switch r.Action {
		case optics.ActionBoost:
			score += r.Amount
		case optics.ActionDownrank:
			score -= r.Amount
		}
	}

	return score, Include
}

// Compare orders two results: higher score first; scores within Epsilon are
// tied and ordered by the optic's preference list rank, then by document ID
// ascending. The ordering is total and stable across repeated identical
// requests.
func Compare(a, b Result, o *optics.Optic) int {
	switch {
	case a.Score > b.Score+Epsilon:
		return -1
	case b.Score > a.Score+Epsilon:
		return 1
	}

	ra, rb := o.PreferenceRank(a.Site), o.PreferenceRank(b.Site)
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	}

	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}
