package stripgo

import (
	"fmt"
	"go/token"
	"strings"
)

// ErrorKind classifies the ways a declaration can fail to be stripped. An
// ErrorKind is itself an error so it can be used as the target of errors.Is:
//
//    if errors.Is(err, stripgo.UnsupportedProperty) {
//        ...
//    }
type ErrorKind int

const (
	// UnsupportedTarget means the declaration is not a sum type.
	UnsupportedTarget ErrorKind = iota + 1
	// MalformedDirective means a directive has the wrong shape, or one of its
	// properties is missing a required value or has a forbidden one.
	MalformedDirective
	// UnsupportedProperty means a stripped directive has an unknown key.
	UnsupportedProperty
	// InvalidMetadata means the argument of a stripped_meta directive is not
	// exactly one annotation.
	InvalidMetadata
)

func (k ErrorKind) String() string {
	switch k {
	case UnsupportedTarget:
		return "unsupported target"
	case MalformedDirective:
		return "malformed directive"
	case UnsupportedProperty:
		return "unsupported property"
	case InvalidMetadata:
		return "invalid metadata"
	default:
		return fmt.Sprintf("?%d?", int(k))
	}
}

func (k ErrorKind) Error() string {
	return k.String()
}

// Error is a fatal diagnostic. It is anchored at the most specific location
// available and may carry a help line that lists valid alternatives.
type Error struct {
	Kind ErrorKind
	Pos  token.Position
	Msg  string
	Help string
}

// Error implements the error interface. It includes position information and
// the help line, if any, in the returned message.
func (e *Error) Error() string {
	var sb strings.Builder
	if e.Pos.IsValid() {
		sb.WriteString(e.Pos.String())
		sb.WriteString(": ")
	}
	sb.WriteString(e.Msg)
	if e.Help != "" {
		sb.WriteString("\n\thelp: ")
		sb.WriteString(e.Help)
	}
	return sb.String()
}

// Unwrap returns the error's kind.
func (e *Error) Unwrap() error {
	return e.Kind
}

func errorf(kind ErrorKind, pos token.Position, help string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...), Help: help}
}

// Reporter receives non-fatal diagnostics. Fatal ones are returned from
// Strip as *Error instead.
type Reporter interface {
	Warn(pos token.Position, msg string)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(pos token.Position, msg string)

// Warn implements Reporter.
func (f ReporterFunc) Warn(pos token.Position, msg string) {
	f(pos, msg)
}

func warnf(r Reporter, pos token.Position, format string, args ...interface{}) {
	if r != nil {
		r.Warn(pos, fmt.Sprintf(format, args...))
	}
}
