package optics

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokLBrace
	tokRBrace
	tokLParen
	tokRParen
	tokColon
	tokComma
	tokPipe
)

type token struct {
	kind tokenKind
	text string
	line int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of script"
	case tokString:
		return `"` + t.text + `"`
	default:
		return t.text
	}
}

// lexer produces tokens with line positions. Statements may span lines; line
// numbers exist purely for error reporting.
type lexer struct {
	src  string
	pos  int
	line int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1}
}

func (l *lexer) next() (token, *CompileError) {
	l.skipSpaceAndComments()

	if l.pos >= len(l.src) {
		return token{kind: tokEOF, line: l.line}, nil
	}

	start := l.line
	c := l.src[l.pos]
	switch c {
	case '{':
		l.pos++
		return token{kind: tokLBrace, text: "{", line: start}, nil
	case '}':
		l.pos++
		return token{kind: tokRBrace, text: "}", line: start}, nil
	case '(':
		l.pos++
		return token{kind: tokLParen, text: "(", line: start}, nil
	case ')':
		l.pos++
		return token{kind: tokRParen, text: ")", line: start}, nil
	case ':':
		l.pos++
		return token{kind: tokColon, text: ":", line: start}, nil
	case ',':
		l.pos++
		return token{kind: tokComma, text: ",", line: start}, nil
	case '|':
		l.pos++
		return token{kind: tokPipe, text: "|", line: start}, nil
	case '"':
		return l.lexString()
	}

	if c == '-' || c == '+' || c >= '0' && c <= '9' {
		return l.lexNumber()
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	if unicode.IsLetter(r) || c == '_' {
		return l.lexIdent(), nil
	}

	return token{}, compileErrf(start, string(r), "unexpected character")
}

func (l *lexer) lexString() (token, *CompileError) {
	start := l.line
	end := strings.IndexByte(l.src[l.pos+1:], '"')
	if end < 0 {
		return token{}, compileErrf(start, "string", "unterminated string literal")
	}
	text := l.src[l.pos+1 : l.pos+1+end]
	l.pos += end + 2
	return token{kind: tokString, text: text, line: start}, nil
}

func (l *lexer) lexNumber() (token, *CompileError) {
	start := l.pos
	if c := l.src[l.pos]; c == '-' || c == '+' {
		l.pos++
	}
	digits := 0
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c >= '0' && c <= '9' {
			digits++
			l.pos++
			continue
		}
		if c == '.' {
			l.pos++
			continue
		}
		// Exponents may carry a sign ("1e-07" is what the canonical
		// serializer emits for small weights).
		if c == 'e' || c == 'E' {
			l.pos++
			if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
				l.pos++
			}
			continue
		}
		break
	}
	text := l.src[start:l.pos]
	if digits == 0 {
		return token{}, compileErrf(l.line, text, "malformed number")
	}
	return token{kind: tokNumber, text: text, line: l.line}, nil
}

func (l *lexer) lexIdent() token {
	start := l.pos
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '_' {
			break
		}
		l.pos += size
	}
	return token{kind: tokIdent, text: l.src[start:l.pos], line: l.line}
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '#':
			l.skipToEOL()
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			l.skipToEOL()
		default:
			return
		}
	}
}

func (l *lexer) skipToEOL() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
	}
}
