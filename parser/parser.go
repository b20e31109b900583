package parser

import (
	"errors"
	"fmt"
	"go/token"
	"io"
	"strings"
	"text/scanner"
)

// PositionFunc maps a position in the text given to the parser onto a
// position in the original source. Annotations are usually extracted from
// comments, so the two differ.
type PositionFunc func(scanner.Position) token.Position

func identityPosition(p scanner.Position) token.Position {
	return token.Position{Filename: p.Filename, Offset: p.Offset, Line: p.Line, Column: p.Column}
}

// ParseError is a syntax error in annotation source.
type ParseError struct {
	err error
	pos token.Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.pos.Line, e.pos.Column, e.err)
}

func (e *ParseError) Underlying() error {
	return e.err
}

func (e *ParseError) Pos() token.Position {
	return e.pos
}

func newParseError(pos token.Position, format string, args ...interface{}) *ParseError {
	return &ParseError{err: fmt.Errorf(format, args...), pos: pos}
}

// ParseAnnotations parses all annotations in the given reader. Each
// annotation starts with "@" and ends at the end of its line, unless it has a
// parenthesized argument list, which may span lines.
func ParseAnnotations(filename string, r io.Reader) ([]Annotation, *ParseError) {
	return ParseAnnotationsWithPositions(filename, r, nil)
}

// ParseAnnotationsWithPositions is like ParseAnnotations, but all positions
// in the results (and in any error) are translated with the given function.
// If adjust is nil, positions are reported as-is.
func ParseAnnotationsWithPositions(filename string, r io.Reader, adjust PositionFunc) ([]Annotation, *ParseError) {
	if adjust == nil {
		adjust = identityPosition
	}
	toks, err := tokenize(filename, r, adjust)
	if err != nil {
		return nil, err
	}
	p := annoParser{toks: toks}
	return p.parseAnnotations()
}

// ParseNested parses the given tokens as exactly one annotation without a
// leading "@", such as the arguments of a list annotation that wraps another
// annotation. The end position is used to report a premature end of input.
func ParseNested(toks []Token, end token.Position) (Annotation, *ParseError) {
	p := annoParser{toks: withEOF(toks, end)}
	return p.parseNested()
}

// ParseArgs parses the given tokens as a comma-separated list of "key" or
// "key = value" entries. A trailing comma is allowed. The end position is
// used to report a premature end of input.
func ParseArgs(toks []Token, end token.Position) ([]Arg, *ParseError) {
	p := annoParser{toks: withEOF(toks, end)}
	return p.parseArgs()
}

func withEOF(toks []Token, end token.Position) []Token {
	res := make([]Token, len(toks), len(toks)+1)
	copy(res, toks)
	return append(res, Token{Kind: EOF, Pos: end})
}

type lexer struct {
	s      scanner.Scanner
	adjust PositionFunc
	err    error
	errPos scanner.Position

	pending  bool
	nextRune rune
	nextTok  string
	nextPos  scanner.Position

	lastRune rune
}

func newLexer(filename string, r io.Reader, adjust PositionFunc) *lexer {
	l := &lexer{adjust: adjust}
	l.s.Init(r)
	l.s.Filename = filename
	l.s.Mode = l.s.Mode &^ (scanner.ScanComments | scanner.SkipComments)
	l.s.Whitespace = 0
	l.s.Error = func(s *scanner.Scanner, msg string) {
		if l.err != nil {
			return
		}
		l.err = errors.New(msg)
		if s.Position.IsValid() {
			l.errPos = s.Position
		} else {
			l.errPos = s.Pos()
		}
	}
	return l
}

func tokenize(filename string, r io.Reader, adjust PositionFunc) ([]Token, *ParseError) {
	l := newLexer(filename, r, adjust)
	var toks []Token
	for {
		t, err := l.Lex()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.Kind == EOF {
			return toks, nil
		}
	}
}

var trailingRunes = map[rune]struct{}{
	',': {},
	'.': {},
	'{': {},
	'(': {},
	'[': {},
	':': {},
	'+': {},
	'-': {},
	'*': {},
	'/': {},
	'%': {},
	'^': {},
	'&': {},
	'|': {},
	'!': {},
	'>': {},
	'<': {},
	'=': {},
}

// multi-character operators, keyed by first rune
var operatorSuffixes = map[rune]string{
	'&': "^&",
	'|': "|",
	'=': "=",
	'!': "=",
	'<': "<=",
	'>': ">=",
}

// Lex returns the next token. Line breaks that follow a rune that cannot end
// an expression are skipped, so argument lists may wrap freely.
func (l *lexer) Lex() (Token, *ParseError) {
	for {
		var r rune
		var tok string
		var pos scanner.Position
		if l.pending {
			r, tok, pos = l.nextRune, l.nextTok, l.nextPos
			l.pending = false
		} else {
			// we handle whitespace ourselves so that we can easily know the
			// *start* position for a token (otherwise, scanner package only makes
			// easy to determine *end* position for a token)
			pos = l.s.Pos()
			r = l.s.Scan()
			tok = l.s.TokenText()
			if l.err != nil {
				return Token{}, &ParseError{err: l.err, pos: l.adjust(l.errPos)}
			}
		}

		if r == scanner.EOF {
			return Token{Kind: EOF, Pos: l.adjust(pos)}, nil
		}
		if r == ' ' || r == '\t' || r == '\r' {
			continue
		}
		if r == '\n' {
			if _, ok := trailingRunes[l.lastRune]; ok {
				continue
			}
		}

		t := l.classify(r, tok, pos)
		if l.err != nil {
			return Token{}, &ParseError{err: l.err, pos: l.adjust(l.errPos)}
		}
		l.lastRune = r
		return t, nil
	}
}

func (l *lexer) classify(r rune, tok string, pos scanner.Position) Token {
	p := l.adjust(pos)
	switch r {
	case '\n':
		return Token{Kind: EOL, Text: "\n", Pos: p}
	case scanner.Ident:
		return Token{Kind: Ident, Text: tok, Pos: p}
	case scanner.Int, scanner.Float:
		kind := Int
		if r == scanner.Float {
			kind = Float
		}
		if l.s.Peek() == 'i' {
			np := l.s.Pos()
			nr := l.s.Scan()
			nt := l.s.TokenText()
			if nr == scanner.Ident && nt == "i" {
				// it's an imaginary constant
				return Token{Kind: Imag, Text: tok + "i", Pos: p}
			}
			// make sure we get this token next time
			l.pending = true
			l.nextRune = nr
			l.nextTok = nt
			l.nextPos = np
		}
		return Token{Kind: kind, Text: tok, Pos: p}
	case scanner.Char:
		return Token{Kind: Char, Text: tok, Pos: p}
	case scanner.String:
		return Token{Kind: String, Text: tok, Pos: p}
	case scanner.RawString:
		return Token{Kind: RawString, Text: tok, Pos: p}
	}

	text := string(r)
	if suffixes, ok := operatorSuffixes[r]; ok {
		if next := l.s.Peek(); next != scanner.EOF && strings.ContainsRune(suffixes, next) {
			l.s.Next() // consume it
			text += string(next)
		}
	}
	return Token{Kind: Punct, Text: text, Pos: p}
}
