package stripgo

import (
	"fmt"
	"go/token"

	"github.com/jhump/stripgo/parser"
)

// Kind is the kind of a declaration given to Strip. Only sum types can be
// stripped.
type Kind int

const (
	// KindOther is any declaration that is neither a sum type nor a struct,
	// such as a named basic type, function type or an empty interface.
	KindOther Kind = iota

	// KindEnum is a sum type. In Go source this is a named interface with at
	// least one method; its variants are the named types of the same package
	// that implement it.
	KindEnum

	// KindStruct is a struct type, which is a product type, not a sum type.
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindOther:
		return "non-sum type"
	case KindEnum:
		return "sum type"
	case KindStruct:
		return "struct"
	default:
		return fmt.Sprintf("?%d?", int(k))
	}
}

// Visibility is the visibility of a declaration outside of its package.
type Visibility int

const (
	Unexported Visibility = iota
	Exported
)

func (v Visibility) String() string {
	switch v {
	case Unexported:
		return "unexported"
	case Exported:
		return "exported"
	default:
		return fmt.Sprintf("?%d?", int(v))
	}
}

// VisibilityOf returns the visibility Go gives to a declaration with the
// given name.
func VisibilityOf(name string) Visibility {
	if token.IsExported(name) {
		return Exported
	}
	return Unexported
}

// SourceDeclaration is the declaration a stripped type is derived from. It is
// built by the host and is never modified by Strip.
type SourceDeclaration struct {
	Kind       Kind
	Identifier string
	Visibility Visibility
	// Variants are in declaration order.
	Variants []Variant
	// Annotations are the type-level annotations, in declaration order.
	Annotations []parser.Annotation
	// Pos is the location of the declaration's identifier.
	Pos token.Position
}

// Variant is one case of a sum type. Its payload, if any, is not represented
// since the stripped type never carries one.
type Variant struct {
	Identifier  string
	Annotations []parser.Annotation
	Pos         token.Position
}

// OutputDeclaration is a stripped sum type: a payload-free enum.
type OutputDeclaration struct {
	Identifier string
	Visibility Visibility
	// Variants is an order-preserving subsequence of the source variants.
	Variants []string
	// Annotations are the nested annotations of the source's stripped_meta
	// directives, one per directive, in declaration order.
	Annotations []parser.Annotation
}
