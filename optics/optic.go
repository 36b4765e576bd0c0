package optics

import (
	"strconv"
	"strings"

	"github.com/TheIronBorn/stract/signal"
)

// Boost amounts that Like and Dislike desugar into.
const (
	likeBoost      = 4.0
	dislikePenalty = 4.0
)

// Action is the effect of a matched rule.
type Action uint8

const (
	// ActionBoost adds Amount to the document score.
	ActionBoost Action = iota
	// ActionDownrank subtracts Amount from the document score.
	ActionDownrank
	// ActionDiscard drops the document outright. Discard rules are evaluated
	// before any boost or downrank rule regardless of declaration order.
	ActionDiscard
)

// String returns the DSL keyword for the action.
func (a Action) String() string {
	switch a {
	case ActionBoost:
		return "Boost"
	case ActionDownrank:
		return "Downrank"
	case ActionDiscard:
		return "Discard"
	default:
		return "unknown"
	}
}

// Rule is one match rule: OR-combined patterns plus an action. Rule order in
// the script is significant; the first matching discard rule wins and
// boost/downrank adjustments accumulate in declared order.
type Rule struct {
	Patterns []Pattern
	Action   Action
	// Amount is the boost or downrank magnitude. Zero for discard rules.
	Amount float64

	line int
	// sugarHost is set when the rule was desugared from Like()/Dislike();
	// canonical serialization re-emits the sugar form.
	sugarHost string
}

// Matches reports whether any pattern of the rule matches the target.
func (r Rule) Matches(t Target) bool {
	for _, p := range r.Patterns {
		if p.Matches(t) {
			return true
		}
	}
	return false
}

// Optic is a compiled, immutable rule set. Construct via Compile (or Empty
// for the default rule set); an Optic is read-only for the remainder of
// request processing and safe for concurrent use.
type Optic struct {
	rules    []Rule
	weights  map[signal.ID]float64
	prefs    []string
	prefRank map[string]int
	warnings []string
	schema   int
}

// Empty returns the compiled default rule set: no rules, no overrides, no
// preferences.
func Empty() *Optic {
	return &Optic{
		weights:  map[signal.ID]float64{},
		prefRank: map[string]int{},
		schema:   signal.SchemaVersion,
	}
}

// Rules returns the rule list in declaration order. The slice is shared and
// must not be mutated.
func (o *Optic) Rules() []Rule { return o.rules }

// Weight returns the replacement weight for a signal, if the optic overrides
// it.
func (o *Optic) Weight(id signal.ID) (float64, bool) {
	w, ok := o.weights[id]
	return w, ok
}

// ApplyWeights replaces (never adds to) the weight of every signal the optic
// mentions.
func (o *Optic) ApplyWeights(w *signal.Weights) {
	for id, v := range o.weights {
		w[id] = v
	}
}

// Preferences returns the ordered site preference list used for tie-breaking.
func (o *Optic) Preferences() []string { return o.prefs }

// PreferenceRank returns the tie-break rank of a site: its index in the
// preference list, or len(Preferences()) when the site is not listed. Lower
// rank is preferred.
func (o *Optic) PreferenceRank(site string) int {
	if rank, ok := o.prefRank[site]; ok {
		return rank
	}
	// Subdomains inherit their listed parent's rank.
	for i := strings.IndexByte(site, '.'); i >= 0; i = strings.IndexByte(site, '.') {
		site = site[i+1:]
		if rank, ok := o.prefRank[site]; ok {
			return rank
		}
	}
	return len(o.prefs)
}

// SchemaVersion returns the signal schema version this optic was validated
// against.
func (o *Optic) SchemaVersion() int { return o.schema }

// Warnings returns non-fatal compilation diagnostics, e.g. duplicate weight
// overrides.
func (o *Optic) Warnings() []string { return o.warnings }

// Source renders the canonical serialization of the optic. Compiling the
// canonical source yields an equivalent rule set, so the form is usable as a
// cache and debug representation.
func (o *Optic) Source() string {
	var b strings.Builder

	for _, r := range o.rules {
		if r.sugarHost != "" {
			if r.Action == ActionBoost {
				b.WriteString(`Like("` + r.sugarHost + `")`)
			} else {
				b.WriteString(`Dislike("` + r.sugarHost + `")`)
			}
			b.WriteByte('\n')
			continue
		}

		b.WriteString("Rule { Matches: ")
		for i, p := range r.Patterns {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(p.Kind.String() + `("` + p.Glob + `")`)
		}
		b.WriteString(", Action: ")
		switch r.Action {
		case ActionDiscard:
			b.WriteString("Discard")
		default:
			b.WriteString(r.Action.String() + "(" + formatAmount(r.Amount) + ")")
		}
		b.WriteString(" }\n")
	}

	if len(o.weights) > 0 {
		b.WriteString("Ranking { ")
		first := true
		// Schema order keeps the serialization deterministic.
		for id := signal.ID(0); int(id) < signal.Count(); id++ {
			w, ok := o.weights[id]
			if !ok {
				continue
			}
			if !first {
				b.WriteString(", ")
			}
			first = false
			b.WriteString(id.String() + ": " + formatAmount(w))
		}
		b.WriteString(" }\n")
	}

	return b.String()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
