// Package stripgo derives payload-free "stripped" enums from sum types.
//
// Go has no sum types, so a sum type is written the usual way: a named
// interface with at least one method, implemented by one named type per
// variant. Marking the interface with the @strip annotation (in its doc
// comment) asks for a stripped counterpart to be generated:
//
//    // @strip
//    // @stripped(ident = EventKind)
//    // @stripped_meta(derive(String))
//    type Event interface {
//        isEvent()
//    }
//
//    type Create struct{ Path string }
//    type Delete struct{ Path string }
//
//    // @stripped(ignore)
//    type Rename struct{ From, To string }
//
// The generated declaration is an integer enum with one constant per variant
// that is not ignored, in declaration order:
//
//    // @derive(String)
//    type EventKind int
//
//    const (
//        EventKindCreate EventKind = iota
//        EventKindDelete
//    )
//
// Directives
//
// Two annotations control the output. Both must be list-style annotations,
// that is they must have a parenthesized argument list.
//
// @stripped may be used on the sum type or on a variant type. On the sum type
// it accepts the property "ident = Name", which names the stripped type. When
// absent, the name is the sum type's name with the suffix "Stripped". On a
// variant type it accepts the flag "ignore", which leaves that variant out.
// Any other property is an error. When the sum type has more than one
// @stripped annotation, only the first one is used.
//
// @stripped_meta may only be used on the sum type. Its argument must be
// exactly one annotation, written without the leading "@". Each one is
// attached, in order, to the stripped type. Used on a variant type it is
// inert.
//
// All other annotations are left alone and are not copied to the output.
//
// Diagnostics
//
// Strip stops at the first problem and returns it as an *Error whose Kind can
// be tested with errors.Is. Properties that are accepted but have no effect
// where they are used (such as "ignore" on the sum type) are reported as
// warnings through a Reporter.
//
// The annotation syntax itself is parsed by package
// github.com/jhump/stripgo/parser. Finding sum types and their variants in Go
// packages is done by package github.com/jhump/stripgo/processor.
package stripgo
