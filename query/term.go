package query

import "strings"

// TermKind discriminates the term sum type.
type TermKind uint8

const (
	// TermSimple is a plain term matched against all searchable fields.
	TermSimple TermKind = iota
	// TermPhrase is a quoted phrase matched verbatim (internal whitespace preserved).
	TermPhrase
	// TermNot forbids the wrapped term.
	TermNot
	// TermSite restricts results to a site (site:example.com).
	TermSite
	// TermTitle restricts a term to the title field (intitle:).
	TermTitle
	// TermBody restricts a term to the body field (inbody:).
	TermBody
	// TermURL restricts a term to the URL field (inurl:).
	TermURL
	// TermFiletype restricts results to a file extension (filetype:pdf).
	TermFiletype
	// TermBang is a possible bang marker (!w). Whether it redirects is decided
	// by the bang table; on a miss it degrades to a plain term.
	TermBang
)

// Term is one parsed unit of a query. Exactly one of Text or Sub carries the
// payload: Sub is set only for TermNot.
type Term struct {
	Kind TermKind
	Text string
	Sub  *Term
}

// String renders the term in its canonical query form.
func (t Term) String() string {
	switch t.Kind {
	case TermSimple:
		return t.Text
	case TermPhrase:
		return `"` + t.Text + `"`
	case TermNot:
		return "-" + t.Sub.String()
	case TermSite:
		return "site:" + t.Text
	case TermTitle:
		return "intitle:" + t.Text
	case TermBody:
		return "inbody:" + t.Text
	case TermURL:
		return "inurl:" + t.Text
	case TermFiletype:
		return "filetype:" + t.Text
	case TermBang:
		return string(BangPrefixes[0]) + t.Text
	default:
		return t.Text
	}
}

// AsText returns the searchable text of a term, if any. Phrases are returned
// unquoted; bang terms are returned with their prefix so a missed bang still
// searches for the literal token the user typed.
func (t Term) AsText() (string, bool) {
	switch t.Kind {
	case TermSimple:
		return t.Text, true
	case TermPhrase:
		return t.Text, true
	case TermBang:
		return string(BangPrefixes[0]) + t.Text, true
	default:
		return "", false
	}
}

// Words splits the searchable text of a term into lowercase tokens.
func (t Term) Words() []string {
	text, ok := t.AsText()
	if !ok {
		return nil
	}
	return strings.Fields(text)
}
