package syntax

import (
	"bufio"
	"io"

	"github.com/ianlewis/runeio"
)

// tokenKind tags the handful of lexical categories the grammar surface
// syntax needs.
type tokenKind int

const (
	tokWord tokenKind = iota
	tokQuoted
	tokColon
	tokSemi
	tokBar
	tokBacktick
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind  tokenKind
	value string
	pos   Position
}

// lexer turns grammar source text into the token stream the parser
// consumes. It groups runs of non-whitespace, non-delimiter runes into a
// single word token and treats a quoted span ('...' or "...") as one
// token including its delimiting quotes, mirroring the categorization in
// the original grammar loader's tokenizer: whitespace separates, a fixed
// set of punctuation characters are always single-rune delimiter
// tokens, and everything else accumulates into a word.
//
// Unlike that tokenizer, digit runs do not start a new word on their
// own: "item1" is one word token, not "item" followed by "1". A grammar
// surface syntax whose identifiers may contain digits needs that; the
// original's split was an artifact of a categorization built for a
// different input shape.
type lexer struct {
	r    *runeio.RuneReader
	line int
	col  int
}

func newLexer(src io.Reader) *lexer {
	br, ok := src.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(src)
	}
	return &lexer{r: runeio.NewReader(br), line: 1, col: 1}
}

func isDelimiter(c rune) bool {
	switch c {
	case '(', ')', '|', ':', ';', '`':
		return true
	}
	return false
}

func isQuote(c rune) bool {
	return c == '\'' || c == '"'
}

func isSpace(c rune) bool {
	switch c {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

func (l *lexer) advance() rune {
	c, _, err := l.r.ReadRune()
	if err != nil {
		return -1
	}
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *lexer) peek() rune {
	rs, err := l.r.Peek(1)
	if err != nil || len(rs) == 0 {
		return -1
	}
	return rs[0]
}

// next returns the next token, skipping whitespace and comments are not
// supported (spec.md's surface syntax has none).
func (l *lexer) next() (token, error) {
	for isSpace(l.peek()) {
		l.advance()
	}

	pos := Position{Line: l.line, Col: l.col}
	c := l.peek()
	if c == -1 {
		return token{kind: tokEOF, pos: pos}, nil
	}

	switch {
	case c == ':':
		l.advance()
		return token{kind: tokColon, value: ":", pos: pos}, nil
	case c == ';':
		l.advance()
		return token{kind: tokSemi, value: ";", pos: pos}, nil
	case c == '|':
		l.advance()
		return token{kind: tokBar, value: "|", pos: pos}, nil
	case c == '`':
		l.advance()
		return token{kind: tokBacktick, value: "`", pos: pos}, nil
	case c == '(':
		l.advance()
		return token{kind: tokLParen, value: "(", pos: pos}, nil
	case c == ')':
		l.advance()
		return token{kind: tokRParen, value: ")", pos: pos}, nil
	case isQuote(c):
		return l.readQuoted(pos)
	default:
		return l.readWord(pos)
	}
}

func (l *lexer) readQuoted(pos Position) (token, error) {
	quote := l.advance()
	var buf []rune
	buf = append(buf, quote)
	for {
		c := l.peek()
		if c == -1 {
			return token{}, &Error{Cause: errUnterminatedQuote, Pos: pos}
		}
		l.advance()
		if c == '\\' {
			next := l.peek()
			if next == -1 {
				return token{}, &Error{Cause: errUnterminatedQuote, Pos: pos}
			}
			l.advance()
			buf = append(buf, next)
			continue
		}
		buf = append(buf, c)
		if c == quote {
			break
		}
	}
	return token{kind: tokQuoted, value: string(buf), pos: pos}, nil
}

func (l *lexer) readWord(pos Position) (token, error) {
	var buf []rune
	for {
		c := l.peek()
		if c == -1 || isSpace(c) || isDelimiter(c) || isQuote(c) {
			break
		}
		buf = append(buf, c)
		l.advance()
	}
	if len(buf) == 0 {
		return token{}, &Error{Cause: errUnexpectedRune, Pos: pos}
	}
	return token{kind: tokWord, value: string(buf), pos: pos}, nil
}
