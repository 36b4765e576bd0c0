package query

import "strings"

// Query is an ordered sequence of parsed terms. It is constructed once per
// request by Parse and is read-only afterwards.
type Query struct {
	Terms []Term
}

// Canonical renders the query in its canonical form. Re-parsing the canonical
// form yields an equivalent Query.
func (q *Query) Canonical() string {
	parts := make([]string, len(q.Terms))
	for i, t := range q.Terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// Bang returns the first bang token of the query, if any.
func (q *Query) Bang() (string, bool) {
	for _, t := range q.Terms {
		if t.Kind == TermBang {
			return t.Text, true
		}
	}
	return "", false
}

// WithoutBangs renders the query with all bang tokens removed. This is the
// text substituted into a bang redirect template.
func (q *Query) WithoutBangs() string {
	var parts []string
	for _, t := range q.Terms {
		if t.Kind == TermBang {
			continue
		}
		parts = append(parts, t.String())
	}
	return strings.Join(parts, " ")
}

// Sites returns the values of all site: directives.
func (q *Query) Sites() []string {
	return q.textsOf(TermSite)
}

// Filetypes returns the values of all filetype: directives.
func (q *Query) Filetypes() []string {
	return q.textsOf(TermFiletype)
}

// TitleTerms returns the values of all intitle: directives.
func (q *Query) TitleTerms() []string {
	return q.textsOf(TermTitle)
}

// BodyTerms returns the values of all inbody: directives.
func (q *Query) BodyTerms() []string {
	return q.textsOf(TermBody)
}

// URLTerms returns the values of all inurl: directives.
func (q *Query) URLTerms() []string {
	return q.textsOf(TermURL)
}

// Phrases returns the unquoted text of all quoted phrases.
func (q *Query) Phrases() []string {
	return q.textsOf(TermPhrase)
}

// Excluded returns the terms wrapped by a forbidden (-) prefix.
func (q *Query) Excluded() []Term {
	var out []Term
	for _, t := range q.Terms {
		if t.Kind == TermNot && t.Sub != nil {
			out = append(out, *t.Sub)
		}
	}
	return out
}

// PositiveWords returns the lowercase word tokens of all required searchable
// terms: plain terms, phrase words and unresolved bang tokens.
func (q *Query) PositiveWords() []string {
	var out []string
	for _, t := range q.Terms {
		out = append(out, t.Words()...)
	}
	return out
}

// HasPositive reports whether the query contains at least one required
// searchable term or field directive that can select candidates.
func (q *Query) HasPositive() bool {
	for _, t := range q.Terms {
		switch t.Kind {
		case TermSimple, TermPhrase, TermBang, TermSite, TermTitle, TermBody, TermURL, TermFiletype:
			return true
		}
	}
	return false
}

func (q *Query) textsOf(kind TermKind) []string {
	var out []string
	for _, t := range q.Terms {
		if t.Kind == kind {
			out = append(out, t.Text)
		}
	}
	return out
}
