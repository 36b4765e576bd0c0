package query

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// BangPrefixes are the characters that introduce a bang token. The full-width
// variant covers CJK keyboard layouts.
var BangPrefixes = []rune{'!', '！'}

// ParseError reports a malformed query. It is returned to the caller and is
// never fatal to the service.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("query parse: %s", e.Reason)
}

var fieldDirectives = []struct {
	prefix string
	kind   TermKind
}{
	{"site:", TermSite},
	{"intitle:", TermTitle},
	{"inbody:", TermBody},
	{"inurl:", TermURL},
	{"filetype:", TermFiletype},
}

// Parse tokenizes raw query text into a Query.
//
// The input is lowercased and curly quotes are normalized to ASCII quotes
// before tokenization. Whitespace outside quotes splits terms. A quote is only
// significant at the start of a token; an unterminated quote degrades to plain
// terms. No query-length limit is enforced here.
func Parse(raw string) (*Query, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ParseError{Reason: "empty query"}
	}

	q := strings.ToLower(raw)
	q = strings.NewReplacer("“", `"`, "”", `"`).Replace(q)

	var terms []Term
	i := 0
	for i < len(q) {
		r, size := utf8.DecodeRuneInString(q[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}

		if q[i] == '"' {
			if j := strings.IndexByte(q[i+1:], '"'); j >= 0 {
				terms = append(terms, Term{Kind: TermPhrase, Text: q[i+1 : i+1+j]})
				i += j + 2
				continue
			}
		}

		start := i
		for i < len(q) {
			r, size := utf8.DecodeRuneInString(q[i:])
			if unicode.IsSpace(r) {
				break
			}
			i += size
		}
		terms = append(terms, parseTerm(q[start:i]))
	}

	return &Query{Terms: terms}, nil
}

func parseTerm(tok string) Term {
	if rest, ok := strings.CutPrefix(tok, "-"); ok && rest != "" && !strings.HasPrefix(rest, "-") {
		sub := parseTerm(rest)
		return Term{Kind: TermNot, Sub: &sub}
	}

	// Plain terms are required by default, so an explicit "+" canonicalizes away.
	if rest, ok := strings.CutPrefix(tok, "+"); ok && rest != "" && !strings.HasPrefix(rest, "+") {
		return parseTerm(rest)
	}

	for _, d := range fieldDirectives {
		if rest, ok := strings.CutPrefix(tok, d.prefix); ok && rest != "" {
			return Term{Kind: d.kind, Text: rest}
		}
	}

	for _, p := range BangPrefixes {
		if rest, ok := strings.CutPrefix(tok, string(p)); ok {
			return Term{Kind: TermBang, Text: rest}
		}
	}

	return Term{Kind: TermSimple, Text: tok}
}
