// Package mixed has a sum type with a variant that is only declared in a
// test file.
package mixed

// Op is an arithmetic operation.
//
// @strip
type Op interface {
	apply(int) int
}

type add struct{ n int }

func (a add) apply(x int) int { return x + a.n }

// Color is a sum type whose variants are all in this file.
//
// @strip
type Color interface {
	rgb() (r, g, b uint8)
}

type Red struct{}

func (Red) rgb() (r, g, b uint8) { return 0xff, 0, 0 }
