package parser

import (
	"fmt"
	"go/token"
)

// annoParser is a recursive-descent parser over a token slice that always
// ends with an EOF token.
type annoParser struct {
	toks []Token
	pos  int
}

func (p *annoParser) peek() Token {
	return p.toks[p.pos]
}

func (p *annoParser) next() Token {
	t := p.toks[p.pos]
	if t.Kind != EOF {
		p.pos++
	}
	return t
}

func (p *annoParser) unexpected(t Token, expecting string) *ParseError {
	return newParseError(t.Pos, "syntax error: unexpected %s, expecting %s", t.describe(), expecting)
}

func (p *annoParser) parseAnnotations() ([]Annotation, *ParseError) {
	var res []Annotation
	for {
		t := p.peek()
		switch {
		case t.Kind == EOF:
			return res, nil
		case t.Kind == EOL:
			p.next()
		case t.Is("@"):
			p.next()
			a, err := p.parseAnnotation(t.Pos, true)
			if err != nil {
				return nil, err
			}
			res = append(res, a)
			if nt := p.peek(); nt.Kind != EOL && nt.Kind != EOF && !nt.Is("@") {
				return nil, p.unexpected(nt, "end-of-line")
			}
		default:
			return nil, p.unexpected(t, `"@"`)
		}
	}
}

func (p *annoParser) parseNested() (Annotation, *ParseError) {
	t := p.peek()
	if t.Kind == EOF {
		return Annotation{}, newParseError(t.Pos, "expecting an annotation, found nothing")
	}
	a, err := p.parseAnnotation(t.Pos, false)
	if err != nil {
		return Annotation{}, err
	}
	if nt := p.peek(); nt.Kind != EOF {
		return Annotation{}, p.unexpected(nt, "end of annotation")
	}
	return a, nil
}

// parseAnnotation parses a path followed by an optional argument list or
// value. At the top level, a value runs to the end of the line; in a nested
// annotation it runs to the end of input.
func (p *annoParser) parseAnnotation(start token.Position, topLevel bool) (Annotation, *ParseError) {
	path, err := p.parseIdentifier()
	if err != nil {
		return Annotation{}, err
	}
	a := Annotation{Path: path, Pos: start}
	t := p.peek()
	switch {
	case t.Is("("):
		p.next()
		args, closer, err := p.parseGroup(t)
		if err != nil {
			return Annotation{}, err
		}
		a.Shape = ShapeList
		a.Args = args
		a.End = closer.Pos
		a.End.Column++
		a.End.Offset++
	case t.Is("="):
		p.next()
		vals, err := p.parseValue(topLevel, false)
		if err != nil {
			return Annotation{}, err
		}
		if len(vals) == 0 {
			return Annotation{}, p.unexpected(p.peek(), "value")
		}
		a.Shape = ShapeNameValue
		a.Args = vals
		a.End = p.peek().Pos
	default:
		a.Shape = ShapePath
		a.End = p.peek().Pos
	}
	return a, nil
}

func (p *annoParser) parseIdentifier() (Identifier, *ParseError) {
	t := p.next()
	if t.Kind != Ident {
		return Identifier{}, p.unexpected(t, "identifier")
	}
	id := Identifier{Name: t.Text, Pos: t.Pos}
	if p.peek().Is(".") {
		p.next()
		n := p.next()
		if n.Kind != Ident {
			return Identifier{}, p.unexpected(n, "identifier")
		}
		id.PackageAlias = id.Name
		id.Name = n.Text
	}
	return id, nil
}

var closers = map[string]string{
	"(": ")",
	"[": "]",
	"{": "}",
}

func isCloser(t Token) bool {
	return t.Is(")") || t.Is("]") || t.Is("}")
}

// parseGroup consumes tokens up to and including the closer that matches the
// given (already consumed) opener. The returned tokens exclude the opener and
// closer. Line breaks inside a group are dropped.
func (p *annoParser) parseGroup(open Token) ([]Token, Token, *ParseError) {
	stack := []string{closers[open.Text]}
	var res []Token
	for {
		t := p.next()
		switch {
		case t.Kind == EOF:
			return nil, Token{}, p.unexpected(t, fmt.Sprintf("%q", stack[len(stack)-1]))
		case t.Kind == EOL:
			continue
		case t.Kind == Punct && closers[t.Text] != "":
			stack = append(stack, closers[t.Text])
		case isCloser(t):
			want := stack[len(stack)-1]
			if t.Text != want {
				return nil, Token{}, p.unexpected(t, fmt.Sprintf("%q", want))
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return res, t, nil
			}
		}
		res = append(res, t)
	}
}

// parseValue consumes a value: tokens up to the end of the line (top-level
// only), the end of input or, when stopAtComma is set, a comma outside of
// any group. The terminator is not consumed.
func (p *annoParser) parseValue(topLevel, stopAtComma bool) ([]Token, *ParseError) {
	var res []Token
	for {
		t := p.peek()
		switch {
		case t.Kind == EOF:
			return res, nil
		case t.Kind == EOL:
			if topLevel {
				return res, nil
			}
			p.next()
			continue
		case stopAtComma && t.Is(","):
			return res, nil
		case isCloser(t):
			return nil, p.unexpected(t, "value")
		}
		p.next()
		res = append(res, t)
		if t.Kind == Punct && closers[t.Text] != "" {
			inner, closer, err := p.parseGroup(t)
			if err != nil {
				return nil, err
			}
			res = append(res, inner...)
			res = append(res, closer)
		}
	}
}

func (p *annoParser) parseArgs() ([]Arg, *ParseError) {
	var res []Arg
	for p.peek().Kind != EOF {
		key, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		arg := Arg{Key: key}
		if p.peek().Is("=") {
			p.next()
			vals, err := p.parseValue(false, true)
			if err != nil {
				return nil, err
			}
			if len(vals) == 0 {
				return nil, p.unexpected(p.peek(), "value")
			}
			arg.HasValue = true
			arg.Value = vals
		}
		res = append(res, arg)

		t := p.next()
		switch {
		case t.Kind == EOF:
			return res, nil
		case t.Is(","):
			// a trailing comma is fine
		default:
			return nil, p.unexpected(t, `"," or end of arguments`)
		}
	}
	return res, nil
}
