package mixed

type fakeOp struct{ calls int }

func (f *fakeOp) apply(x int) int {
	f.calls++
	return x
}

// @new
type fixture struct {
	Name string
	Ops  []Op
}
