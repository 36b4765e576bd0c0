package optics

import (
	"fmt"
	"strconv"

	"github.com/TheIronBorn/stract/signal"
)

// Compile parses optic script source into an immutable Optic. Empty source
// compiles to the default rule set. Compilation is pure: equal source always
// yields an equivalent rule set.
func Compile(source string) (*Optic, error) {
	p := &parser{lex: newLexer(source), optic: Empty()}
	if err := p.advance(); err != nil {
		return nil, err
	}

	for p.tok.kind != tokEOF {
		if err := p.statement(); err != nil {
			return nil, err
		}
	}
	return p.optic, nil
}

// MustCompile is Compile for static scripts; it panics on error.
func MustCompile(source string) *Optic {
	o, err := Compile(source)
	if err != nil {
		panic(fmt.Sprintf("optics: MustCompile: %v", err))
	}
	return o
}

type parser struct {
	lex   *lexer
	tok   token
	optic *Optic
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	if p.tok.kind != kind {
		return token{}, compileErrf(p.tok.line, p.tok.String(), "expected %s", what)
	}
	tok := p.tok
	return tok, p.advance()
}

func (p *parser) statement() error {
	if p.tok.kind != tokIdent {
		return compileErrf(p.tok.line, p.tok.String(), "expected a statement (Rule, Ranking, Like or Dislike)")
	}

	switch p.tok.text {
	case "Rule":
		return p.ruleStmt()
	case "Ranking":
		return p.rankingStmt()
	case "Like":
		return p.likeStmt(ActionBoost)
	case "Dislike":
		return p.likeStmt(ActionDownrank)
	default:
		return compileErrf(p.tok.line, p.tok.text, "unknown statement")
	}
}

// ruleStmt parses
//
//	Rule { Matches: <pattern> ("|" <pattern>)*, Action: Boost(x) | Downrank(x) | Discard }
func (p *parser) ruleStmt() error {
	line := p.tok.line
	if err := p.advance(); err != nil { // consume "Rule"
		return err
	}
	if _, err := p.expect(tokLBrace, `"{"`); err != nil {
		return err
	}

	if err := p.keyword("Matches"); err != nil {
		return err
	}
	if _, err := p.expect(tokColon, `":"`); err != nil {
		return err
	}

	var patterns []Pattern
	for {
		pat, err := p.pattern()
		if err != nil {
			return err
		}
		patterns = append(patterns, pat)
		if p.tok.kind != tokPipe {
			break
		}
		if err := p.advance(); err != nil {
			return err
		}
	}

	if _, err := p.expect(tokComma, `","`); err != nil {
		return err
	}
	if err := p.keyword("Action"); err != nil {
		return err
	}
	if _, err := p.expect(tokColon, `":"`); err != nil {
		return err
	}

	action, amount, err := p.action()
	if err != nil {
		return err
	}

	// Trailing comma is tolerated.
	if p.tok.kind == tokComma {
		if err := p.advance(); err != nil {
			return err
		}
	}
	if _, err := p.expect(tokRBrace, `"}"`); err != nil {
		return err
	}

	p.optic.rules = append(p.optic.rules, Rule{
		Patterns: patterns,
		Action:   action,
		Amount:   amount,
		line:     line,
	})
	return nil
}

func (p *parser) pattern() (Pattern, error) {
	tok, err := p.expect(tokIdent, "a pattern (Site, Path or Url)")
	if err != nil {
		return Pattern{}, err
	}

	var kind PatternKind
	switch tok.text {
	case "Site":
		kind = PatternSite
	case "Path":
		kind = PatternPath
	case "Url":
		kind = PatternURL
	default:
		return Pattern{}, compileErrf(tok.line, tok.text, "unknown pattern kind")
	}

	glob, err := p.parenString()
	if err != nil {
		return Pattern{}, err
	}
	return NewPattern(kind, glob), nil
}

func (p *parser) action() (Action, float64, error) {
	tok, err := p.expect(tokIdent, "an action (Boost, Downrank or Discard)")
	if err != nil {
		return 0, 0, err
	}

	switch tok.text {
	case "Discard":
		return ActionDiscard, 0, nil
	case "Boost", "Downrank":
		amount, err := p.parenNumber()
		if err != nil {
			return 0, 0, err
		}
		if amount < 0 {
			return 0, 0, compileErrf(tok.line, tok.text, "amount must be non-negative, got %g", amount)
		}
		if tok.text == "Boost" {
			return ActionBoost, amount, nil
		}
		return ActionDownrank, amount, nil
	default:
		return 0, 0, compileErrf(tok.line, tok.text, "unknown action")
	}
}

// rankingStmt parses Ranking { <signal-name>: <float>, ... }. Signal names
// outside the schema are compile errors; a duplicate override keeps the last
// occurrence and records a warning.
func (p *parser) rankingStmt() error {
	if err := p.advance(); err != nil { // consume "Ranking"
		return err
	}
	if _, err := p.expect(tokLBrace, `"{"`); err != nil {
		return err
	}

	// An empty override block is harmless and common in generated scripts.
	if p.tok.kind == tokRBrace {
		return p.advance()
	}

	for {
		nameTok, err := p.expect(tokIdent, "a signal name")
		if err != nil {
			return err
		}
		id, ok := signal.Lookup(nameTok.text)
		if !ok {
			return compileErrf(nameTok.line, nameTok.text, "unknown signal name (schema v%d)", signal.SchemaVersion)
		}

		if _, err := p.expect(tokColon, `":"`); err != nil {
			return err
		}
		valTok, err := p.expect(tokNumber, "a weight value")
		if err != nil {
			return err
		}
		value, err2 := strconv.ParseFloat(valTok.text, 64)
		if err2 != nil {
			return compileErrf(valTok.line, valTok.text, "malformed weight value")
		}

		if _, dup := p.optic.weights[id]; dup {
			p.optic.warnings = append(p.optic.warnings,
				fmt.Sprintf("line %d: duplicate weight for %s; last occurrence wins", nameTok.line, nameTok.text))
		}
		p.optic.weights[id] = value

		if p.tok.kind != tokComma {
			break
		}
		if err := p.advance(); err != nil {
			return err
		}
		if p.tok.kind == tokRBrace {
			break // trailing comma
		}
	}

	_, err := p.expect(tokRBrace, `"}"`)
	return err
}

// likeStmt parses Like("host") / Dislike("host") and desugars it into a site
// rule. Like also appends the host to the preference list in order of
// appearance.
func (p *parser) likeStmt(action Action) error {
	line := p.tok.line
	sugar := p.tok.text
	if err := p.advance(); err != nil { // consume "Like"/"Dislike"
		return err
	}

	host, err := p.parenString()
	if err != nil {
		return err
	}
	if host == "" {
		return compileErrf(line, sugar, "empty host")
	}

	amount := likeBoost
	if action == ActionDownrank {
		amount = dislikePenalty
	}
	p.optic.rules = append(p.optic.rules, Rule{
		Patterns:  []Pattern{NewPattern(PatternSite, host)},
		Action:    action,
		Amount:    amount,
		line:      line,
		sugarHost: host,
	})

	if action == ActionBoost {
		if _, ok := p.optic.prefRank[host]; !ok {
			p.optic.prefRank[host] = len(p.optic.prefs)
			p.optic.prefs = append(p.optic.prefs, host)
		}
	}
	return nil
}

func (p *parser) keyword(name string) error {
	if p.tok.kind != tokIdent || p.tok.text != name {
		return compileErrf(p.tok.line, p.tok.String(), "expected %q", name)
	}
	return p.advance()
}

func (p *parser) parenString() (string, error) {
	if _, err := p.expect(tokLParen, `"("`); err != nil {
		return "", err
	}
	tok, err := p.expect(tokString, "a quoted string")
	if err != nil {
		return "", err
	}
	if _, err := p.expect(tokRParen, `")"`); err != nil {
		return "", err
	}
	return tok.text, nil
}

func (p *parser) parenNumber() (float64, error) {
	if _, err := p.expect(tokLParen, `"("`); err != nil {
		return 0, err
	}
	tok, err := p.expect(tokNumber, "a number")
	if err != nil {
		return 0, err
	}
	v, convErr := strconv.ParseFloat(tok.text, 64)
	if convErr != nil {
		return 0, compileErrf(tok.line, tok.text, "malformed number")
	}
	if _, err := p.expect(tokRParen, `")"`); err != nil {
		return 0, err
	}
	return v, nil
}
