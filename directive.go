package stripgo

import (
	"fmt"
	"go/token"

	"github.com/jhump/stripgo/parser"
)

const (
	// Trigger marks a sum type for stripping. Any type-level stripped or
	// stripped_meta directive does, too.
	Trigger = "strip"

	// DirectiveStripped configures the stripped type (on the sum type) or a
	// single variant (on a variant type).
	DirectiveStripped = "stripped"
	// DirectiveStrippedMeta carries one annotation to attach to the stripped
	// type. It is only recognized on the sum type.
	DirectiveStrippedMeta = "stripped_meta"

	// PropertyIdent names the stripped type.
	PropertyIdent = "ident"
	// PropertyIgnore leaves a variant out of the stripped type.
	PropertyIgnore = "ignore"

	// DefaultSuffix is appended to the source identifier to name the
	// stripped type when no ident is given.
	DefaultSuffix = "Stripped"
)

const (
	strippedHelp     = "supported properties are `ident` and `ignore`, e.g. @stripped(ident = Name) or @stripped(ignore)"
	strippedMetaHelp = "the argument must be a single annotation without the leading @, e.g. @stripped_meta(derive(String))"
)

// Scope is where an annotation is attached.
type Scope int

const (
	TypeScope Scope = iota
	VariantScope
)

func (s Scope) String() string {
	switch s {
	case TypeScope:
		return "type"
	case VariantScope:
		return "variant"
	default:
		return fmt.Sprintf("?%d?", int(s))
	}
}

// Directive is an annotation that Strip interprets. It is either a *Stripped
// or a *StrippedMeta.
type Directive interface {
	Position() token.Position
	isDirective()
}

// Stripped is a parsed @stripped(...) directive.
type Stripped struct {
	// Ident is the name given with the ident property, or empty.
	Ident    string
	IdentPos token.Position
	Ignore   bool
	Pos      token.Position
}

// Position returns the location of the directive.
func (d *Stripped) Position() token.Position { return d.Pos }
func (d *Stripped) isDirective()              {}

// StrippedMeta is a parsed @stripped_meta(...) directive.
type StrippedMeta struct {
	Nested parser.Annotation
	Pos    token.Position
}

// Position returns the location of the directive.
func (d *StrippedMeta) Position() token.Position { return d.Pos }
func (d *StrippedMeta) isDirective()              {}

// ParseDirective interprets the given annotation as a directive at the given
// scope. It returns nil and no error if the annotation is not a directive at
// that scope; such annotations are left alone.
func ParseDirective(a parser.Annotation, scope Scope) (Directive, error) {
	switch {
	case a.Path.IsIdent(DirectiveStripped):
		if err := requireList(a, "@stripped(...)", strippedHelp); err != nil {
			return nil, err
		}
		return parseStripped(a)
	case a.Path.IsIdent(DirectiveStrippedMeta) && scope == TypeScope:
		if err := requireList(a, "@stripped_meta(...)", strippedMetaHelp); err != nil {
			return nil, err
		}
		return parseStrippedMeta(a)
	default:
		return nil, nil
	}
}

func requireList(a parser.Annotation, expected, help string) error {
	switch a.Shape {
	case parser.ShapeList:
		return nil
	case parser.ShapePath, parser.ShapeNameValue:
		return errorf(MalformedDirective, a.Pos, help,
			"expected list-style annotation (i.e. %s), found %s-style annotation", expected, a.Shape)
	default:
		return errorf(MalformedDirective, a.Pos, help, "unknown annotation shape %v", a.Shape)
	}
}

func parseStripped(a parser.Annotation) (Directive, error) {
	args, perr := parser.ParseArgs(a.Args, a.End)
	if perr != nil {
		return nil, errorf(MalformedDirective, perr.Pos(), strippedHelp, "failed to parse annotation: %v", perr.Underlying())
	}
	d := &Stripped{Pos: a.Pos}
	for _, arg := range args {
		switch {
		case arg.Key.IsIdent(PropertyIdent):
			if !arg.HasValue {
				return nil, errorf(MalformedDirective, arg.Pos(), "write it as ident = Name",
					"property `%s` requires a value", PropertyIdent)
			}
			v := arg.Value[0]
			if len(arg.Value) != 1 || v.Kind != parser.Ident || !token.IsIdentifier(v.Text) || v.Text == "_" {
				return nil, errorf(MalformedDirective, v.Pos, "write it as ident = Name",
					"expected identifier, found %s", parser.JoinTokens(arg.Value))
			}
			d.Ident = v.Text
			d.IdentPos = v.Pos
		case arg.Key.IsIdent(PropertyIgnore):
			if arg.HasValue {
				return nil, errorf(MalformedDirective, arg.Value[0].Pos, "write it as @stripped(ignore)",
					"property `%s` does not take a value", PropertyIgnore)
			}
			d.Ignore = true
		default:
			return nil, errorf(UnsupportedProperty, arg.Pos(), strippedHelp, "unsupported property `%s`", arg.Key)
		}
	}
	return d, nil
}

func parseStrippedMeta(a parser.Annotation) (Directive, error) {
	nested, perr := parser.ParseNested(a.Args, a.End)
	if perr != nil {
		return nil, errorf(InvalidMetadata, perr.Pos(), strippedMetaHelp, "failed to parse specified metadata: %v", perr.Underlying())
	}
	return &StrippedMeta{Nested: nested, Pos: a.Pos}, nil
}

// extractDirectives parses every directive in annos, in order. The list is
// only read; inert annotations are skipped.
func extractDirectives(annos []parser.Annotation, scope Scope, r Reporter) ([]Directive, error) {
	var res []Directive
	for _, a := range annos {
		d, err := ParseDirective(a, scope)
		if err != nil {
			return nil, err
		}
		if d == nil {
			if scope == VariantScope && a.Path.IsIdent(DirectiveStrippedMeta) {
				warnf(r, a.Pos, "@%s has no effect on variants", DirectiveStrippedMeta)
			}
			continue
		}
		if s, ok := d.(*Stripped); ok {
			switch {
			case scope == TypeScope && s.Ignore:
				warnf(r, s.Pos, "property `%s` has no effect on a sum type; it only applies to variants", PropertyIgnore)
			case scope == VariantScope && s.Ident != "":
				warnf(r, s.IdentPos, "property `%s` has no effect on a variant; it only applies to the sum type", PropertyIdent)
			}
		}
		res = append(res, d)
	}
	return res, nil
}
