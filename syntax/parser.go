// Package syntax is the grammar surface-syntax tokenizer and parser
// (spec.md §6): it turns
//
//	NT : 'lit1' REF(bind) 'lit2' `prodname` | ... ;
//
// source text into a *grammar.Grammar, ready for compiler.Compile. It
// mirrors the external grammar loader's contract: a bare identifier is a
// nonterminal reference if one is defined under that name, otherwise a
// terminal, and a quoted literal's surrounding quotes are stripped.
package syntax

import (
	"io"
	"strings"

	"github.com/halvard/parsevm/grammar"
)

// parserState names the states of the production-body state machine,
// following the shape of the original grammar loader's state enum.
type parserState int

const (
	stateNonterminal parserState = iota
	stateFirstComponent
	stateComponents
	stateComponentName
	stateComponentNameEnd
	stateEventName
	stateEventNameEnd
	stateComponentsEnd
)

// Parse reads a grammar surface-syntax document from src and returns the
// resulting Grammar, already Resolve()'d. On any malformed input it
// returns every diagnostic collected as an Errors.
func Parse(src io.Reader) (*grammar.Grammar, error) {
	lx := newLexer(src)

	g := grammar.New()
	var errs Errors

	var nonterm string
	var prod grammar.Production
	state := stateNonterminal

	emit := func() {
		g.AddProduction(nonterm, prod)
		prod = grammar.Production{}
	}

	fail := func(cause error, pos Position) {
		errs = append(errs, &Error{Cause: cause, Pos: pos})
	}

	// resync skips tokens until the next ';' (or EOF), so one malformed
	// nonterminal doesn't cascade into spurious errors for the rest of
	// the document.
	resync := func() {
		for {
			tok, err := lx.next()
			if err != nil || tok.kind == tokEOF || tok.kind == tokSemi {
				return
			}
		}
	}

	for {
		tok, err := lx.next()
		if err != nil {
			e := err.(*Error)
			fail(e.Cause, e.Pos)
			resync()
			state = stateNonterminal
			continue
		}
		if tok.kind == tokEOF {
			break
		}

		switch state {
		case stateNonterminal:
			if tok.kind != tokWord {
				fail(errUnexpectedRune, tok.pos)
				resync()
				continue
			}
			nonterm = tok.value
			prod = grammar.Production{}
			state = stateFirstComponent

		case stateFirstComponent:
			switch tok.kind {
			case tokColon:
				state = stateComponents
			case tokSemi:
				state = stateNonterminal
			default:
				fail(errExpectColon, tok.pos)
				resync()
				state = stateNonterminal
			}

		case stateComponents:
			switch tok.kind {
			case tokBacktick:
				state = stateEventName
			case tokLParen:
				if len(prod.Components) == 0 {
					fail(errUnexpectedRune, tok.pos)
					resync()
					state = stateNonterminal
					continue
				}
				state = stateComponentName
			case tokBar:
				emit()
				state = stateComponents
			case tokSemi:
				emit()
				state = stateNonterminal
			case tokWord:
				prod.Components = append(prod.Components, grammar.Component{
					Kind:  grammar.Terminal,
					Value: tok.value,
				})
			case tokQuoted:
				prod.Components = append(prod.Components, grammar.Component{
					Kind:   grammar.Terminal,
					Value:  stripQuotes(tok.value),
					Quoted: true,
				})
			default:
				fail(errUnexpectedRune, tok.pos)
				resync()
				state = stateNonterminal
			}

		case stateComponentName:
			if tok.kind != tokWord {
				fail(errUnexpectedRune, tok.pos)
				resync()
				state = stateNonterminal
				continue
			}
			prod.Components[len(prod.Components)-1].Name = tok.value
			state = stateComponentNameEnd

		case stateComponentNameEnd:
			if tok.kind != tokRParen {
				fail(errExpectRParen, tok.pos)
				resync()
				state = stateNonterminal
				continue
			}
			state = stateComponents

		case stateEventName:
			if tok.kind != tokWord {
				fail(errUnexpectedRune, tok.pos)
				resync()
				state = stateNonterminal
				continue
			}
			prod.Name = tok.value
			state = stateEventNameEnd

		case stateEventNameEnd:
			if tok.kind != tokBacktick {
				fail(errExpectBacktick, tok.pos)
				resync()
				state = stateNonterminal
				continue
			}
			state = stateComponentsEnd

		case stateComponentsEnd:
			switch tok.kind {
			case tokSemi:
				emit()
				state = stateNonterminal
			case tokBar:
				emit()
				state = stateComponents
			default:
				fail(errExpectSemiOrBar, tok.pos)
				resync()
				state = stateNonterminal
			}
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	g.Resolve()
	return g, nil
}

// ParseString is a convenience wrapper around Parse for grammar text
// already held in memory.
func ParseString(src string) (*grammar.Grammar, error) {
	return Parse(strings.NewReader(src))
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}
