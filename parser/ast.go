package parser

import (
	"fmt"
	"go/token"
	"strings"
)

// TokenKind identifies the lexical class of a Token.
type TokenKind int

const (
	EOF TokenKind = iota
	EOL
	Ident
	Int
	Float
	Imag
	Char
	String
	RawString
	Punct
)

var tokenKindNames = map[TokenKind]string{
	EOF:       "end of input",
	EOL:       "end-of-line",
	Ident:     "identifier",
	Int:       "int literal",
	Float:     "float literal",
	Imag:      "imaginary literal",
	Char:      "rune literal",
	String:    "string literal",
	RawString: "raw string literal",
	Punct:     "punctuation",
}

func (k TokenKind) String() string {
	if n, ok := tokenKindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("?%d?", int(k))
}

// Token is a single lexical token of annotation source. Annotation arguments
// are kept as token sequences; they are never evaluated.
type Token struct {
	Kind TokenKind
	Text string
	Pos  token.Position
}

// Is returns true if the token is punctuation with the given text.
func (t Token) Is(punct string) bool {
	return t.Kind == Punct && t.Text == punct
}

func (t Token) describe() string {
	switch t.Kind {
	case EOF, EOL:
		return t.Kind.String()
	case Punct:
		return fmt.Sprintf("%q", t.Text)
	default:
		return fmt.Sprintf("%s %s", t.Kind, t.Text)
	}
}

// Identifier is an AST node that refers to an identifier, possibly qualified
// with a package name/alias.
type Identifier struct {
	PackageAlias string
	Name         string
	Pos          token.Position
}

func (id Identifier) String() string {
	if id.PackageAlias == "" {
		return id.Name
	}
	return fmt.Sprintf("%s.%s", id.PackageAlias, id.Name)
}

// IsIdent returns true if the identifier is unqualified and equal to name.
func (id Identifier) IsIdent(name string) bool {
	return id.PackageAlias == "" && id.Name == name
}

// Shape is the structural form of an annotation. It is fixed when the
// annotation is parsed.
type Shape int

const (
	// ShapePath is a bare annotation: @name
	ShapePath Shape = iota
	// ShapeList is an annotation with a parenthesized argument list:
	// @name(args...)
	ShapeList
	// ShapeNameValue is an annotation with a value: @name = value
	ShapeNameValue
)

func (s Shape) String() string {
	switch s {
	case ShapePath:
		return "path"
	case ShapeList:
		return "list"
	case ShapeNameValue:
		return "name-value"
	default:
		return fmt.Sprintf("?%d?", int(s))
	}
}

// Annotation is a parsed annotation. Its arguments are the raw tokens between
// the parentheses (for list shape) or after the equals sign (for name-value
// shape), with line breaks removed.
type Annotation struct {
	Shape Shape
	Path  Identifier
	Args  []Token
	// Pos is the location of the annotation: the "@" for annotations found
	// in comments, the start of the path for nested annotations.
	Pos token.Position
	// End is the location just past the annotation's last token. Parsing
	// Args reports premature end of input at this position.
	End token.Position
}

// String renders the annotation in canonical form, without the leading "@".
func (a Annotation) String() string {
	switch a.Shape {
	case ShapeList:
		return fmt.Sprintf("%s(%s)", a.Path, JoinTokens(a.Args))
	case ShapeNameValue:
		return fmt.Sprintf("%s = %s", a.Path, JoinTokens(a.Args))
	default:
		return a.Path.String()
	}
}

// Arg is one entry of a key/value argument list: "key" or "key = value".
type Arg struct {
	Key      Identifier
	HasValue bool
	Value    []Token
}

// Pos returns the location of the argument's key.
func (a Arg) Pos() token.Position {
	return a.Key.Pos
}

// JoinTokens renders a token sequence as source text, inserting spaces the
// way gofmt would for the common cases.
func JoinTokens(toks []Token) string {
	var sb strings.Builder
	for i, t := range toks {
		if i > 0 && needsSpace(toks, i) {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Text)
	}
	return sb.String()
}

func needsSpace(toks []Token, i int) bool {
	prev, cur := toks[i-1], toks[i]
	switch {
	case cur.Is(",") || cur.Is(")") || cur.Is("]") || cur.Is("}") || cur.Is(".") || cur.Is(":"):
		return false
	case prev.Is("(") || prev.Is("[") || prev.Is("{") || prev.Is(".") || prev.Is("!") || prev.Is("@"):
		return false
	case cur.Is("(") || cur.Is("["):
		// call or index
		return prev.Kind != Ident && !prev.Is(")") && !prev.Is("]")
	case (prev.Is("-") || prev.Is("+") || prev.Is("^")) && isUnaryContext(toks, i-1):
		return false
	}
	return true
}

// isUnaryContext returns true if the operator at index i is in prefix
// position.
func isUnaryContext(toks []Token, i int) bool {
	if i == 0 {
		return true
	}
	prev := toks[i-1]
	if prev.Kind != Punct {
		return false
	}
	return !prev.Is(")") && !prev.Is("]") && !prev.Is("}")
}
