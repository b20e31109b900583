package stripgo

import (
	"github.com/jhump/stripgo/parser"
)

// Requested returns true if the given declaration asks for a stripped form:
// it has the trigger annotation, or it is a sum type with a stripped or
// stripped_meta directive. Variant types carry stripped directives, too, so
// the directives alone do not make other kinds of declarations eligible.
func Requested(src *SourceDeclaration) bool {
	for _, a := range src.Annotations {
		switch {
		case a.Path.IsIdent(Trigger):
			return true
		case src.Kind == KindEnum && (a.Path.IsIdent(DirectiveStripped) || a.Path.IsIdent(DirectiveStrippedMeta)):
			return true
		}
	}
	return false
}

// Strip derives the stripped form of the given sum type. The source
// declaration is not modified. Warnings about directives that are accepted
// but have no effect go to r, which may be nil.
//
// The first problem found is returned as an *Error and no output is produced.
// A declaration that is not a sum type is rejected before any of its
// annotations are examined.
func Strip(src *SourceDeclaration, r Reporter) (*OutputDeclaration, error) {
	if src.Kind != KindEnum {
		return nil, errorf(UnsupportedTarget, src.Pos,
			"declare it as an interface with at least one method, implemented by one named type per variant",
			"`%s` is a %s; only sum types can be stripped", src.Identifier, src.Kind)
	}

	typeDirectives, err := extractDirectives(src.Annotations, TypeScope, r)
	if err != nil {
		return nil, err
	}
	variantDirectives := make([][]Directive, len(src.Variants))
	for i, v := range src.Variants {
		if variantDirectives[i], err = extractDirectives(v.Annotations, VariantScope, r); err != nil {
			return nil, err
		}
	}

	annos := composeMetadata(typeDirectives)
	ident := resolveIdentifier(src.Identifier, typeDirectives, r)
	variants := selectVariants(src.Variants, variantDirectives)
	return emit(ident, src.Visibility, variants, annos), nil
}

// resolveIdentifier returns the name of the stripped type. The first
// type-level stripped directive decides; later ones are ignored.
func resolveIdentifier(source string, directives []Directive, r Reporter) string {
	var first *Stripped
	for _, d := range directives {
		s, ok := d.(*Stripped)
		if !ok {
			continue
		}
		if first == nil {
			first = s
		} else {
			warnf(r, s.Pos, "only the first @%s on a type is used", DirectiveStripped)
		}
	}
	if first != nil && first.Ident != "" {
		return first.Ident
	}
	return source + DefaultSuffix
}

// selectVariants returns the names of the variants that are not ignored, in
// their original order. directives[i] holds the directives of variants[i].
func selectVariants(variants []Variant, directives [][]Directive) []string {
	res := make([]string, 0, len(variants))
	for i, v := range variants {
		if !isIgnored(directives[i]) {
			res = append(res, v.Identifier)
		}
	}
	return res
}

func isIgnored(directives []Directive) bool {
	for _, d := range directives {
		if s, ok := d.(*Stripped); ok && s.Ignore {
			return true
		}
	}
	return false
}

// composeMetadata unwraps every stripped_meta directive, keeping their order.
func composeMetadata(directives []Directive) []parser.Annotation {
	var res []parser.Annotation
	for _, d := range directives {
		if m, ok := d.(*StrippedMeta); ok {
			res = append(res, m.Nested)
		}
	}
	return res
}

func emit(ident string, vis Visibility, variants []string, annos []parser.Annotation) *OutputDeclaration {
	return &OutputDeclaration{
		Identifier:  ident,
		Visibility:  vis,
		Variants:    variants,
		Annotations: annos,
	}
}
