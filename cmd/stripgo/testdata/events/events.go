package events

import "time"

// Event is something that happened to a file.
//
// @strip
// @stripped(ident = EventKind)
// @stripped_meta(derive(String, Values))
// @stripped_meta(json = "kind")
type Event interface {
	isEvent()
}

type Create struct{ Path string }

func (Create) isEvent() {}

type Delete struct{ Path string }

func (*Delete) isEvent() {}

// @stripped(ignore)
type Rename struct{ From, To string }

func (Rename) isEvent() {}

// Stamp records when a file changed.
//
// @new
type Stamp struct {
	Path string
	At   time.Time
	Type int
}
