// Package event carries note events from control goroutines to the audio
// goroutine.
package event

import "fmt"

// Kind is the type of a note event.
type Kind uint8

const (
	NoteOn Kind = iota
	NoteOff
	AllNotesOff
)

func (k Kind) String() string {
	switch k {
	case NoteOn:
		return "note-on"
	case NoteOff:
		return "note-off"
	case AllNotesOff:
		return "all-notes-off"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Immediate marks an event that applies at the start of the next block.
const Immediate int64 = -1

// Note is a timestamped note event.
//
// For events handed to the engine alongside a block, Time is the sample
// offset from the block start. For events submitted through a Queue, Time is
// an absolute engine sample position, or Immediate.
type Note struct {
	Kind     Kind
	Key      uint8
	Velocity uint8
	Time     int64
}

// On builds a note-on. Velocity 0 is treated as a note-off by the engine.
func On(key, velocity uint8, at int64) Note {
	return Note{Kind: NoteOn, Key: key, Velocity: velocity, Time: at}
}

// Off builds a note-off.
func Off(key uint8, at int64) Note {
	return Note{Kind: NoteOff, Key: key, Time: at}
}

// AllOff builds an all-notes-off.
func AllOff(at int64) Note {
	return Note{Kind: AllNotesOff, Time: at}
}

func (n Note) String() string {
	switch n.Kind {
	case NoteOn:
		return fmt.Sprintf("%s key=%d vel=%d t=%d", n.Kind, n.Key, n.Velocity, n.Time)
	case NoteOff:
		return fmt.Sprintf("%s key=%d t=%d", n.Kind, n.Key, n.Time)
	default:
		return fmt.Sprintf("%s t=%d", n.Kind, n.Time)
	}
}
