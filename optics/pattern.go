package optics

import "strings"

// PatternKind selects which part of a document a pattern matches against.
type PatternKind uint8

const (
	// PatternSite matches the document's host. A pattern without wildcards
	// also matches subdomains of the named host.
	PatternSite PatternKind = iota
	// PatternPath matches the URL path.
	PatternPath
	// PatternURL matches the full URL.
	PatternURL
)

// String returns the DSL keyword for the pattern kind.
func (k PatternKind) String() string {
	switch k {
	case PatternSite:
		return "Site"
	case PatternPath:
		return "Path"
	case PatternURL:
		return "Url"
	default:
		return "unknown"
	}
}

// Target carries the matchable parts of a document. Rule evaluation builds
// one Target per candidate and runs every pattern against it without
// re-parsing globs.
type Target struct {
	Site string
	Path string
	URL  string
}

// Pattern is one pre-compiled glob over a document part.
type Pattern struct {
	Kind PatternKind
	Glob string

	m globMatcher
}

// NewPattern compiles a glob into a Pattern.
func NewPattern(kind PatternKind, glob string) Pattern {
	return Pattern{Kind: kind, Glob: glob, m: compileGlob(glob)}
}

// Matches evaluates the pattern against a target.
func (p Pattern) Matches(t Target) bool {
	switch p.Kind {
	case PatternSite:
		if p.m.match(t.Site) {
			return true
		}
		// A literal site pattern covers subdomains: "first.com" matches
		// "www.first.com" but never "notfirst.com".
		return !p.m.wildcard && strings.HasSuffix(t.Site, "."+p.Glob)
	case PatternPath:
		return p.m.match(t.Path)
	case PatternURL:
		return p.m.match(t.URL)
	default:
		return false
	}
}

// globMatcher is a pre-compiled wildcard pattern. "*" matches any run of
// characters, including none.
type globMatcher struct {
	parts    []string
	wildcard bool
}

func compileGlob(glob string) globMatcher {
	return globMatcher{
		parts:    strings.Split(glob, "*"),
		wildcard: strings.Contains(glob, "*"),
	}
}

func (g globMatcher) match(s string) bool {
	if !g.wildcard {
		return s == g.parts[0]
	}

	first, last := g.parts[0], g.parts[len(g.parts)-1]
	if !strings.HasPrefix(s, first) {
		return false
	}
	s = s[len(first):]
	if !strings.HasSuffix(s, last) || len(s) < len(last) {
		return false
	}
	s = s[:len(s)-len(last)]

	for _, part := range g.parts[1 : len(g.parts)-1] {
		if part == "" {
			continue
		}
		idx := strings.Index(s, part)
		if idx < 0 {
			return false
		}
		s = s[idx+len(part):]
	}
	return true
}
