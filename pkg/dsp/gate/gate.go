// Package gate implements the monophonic, mode-selectable note gate that turns
// sample-accurate note events into a per-sample gain.
package gate

import (
	"fmt"
	"strings"
)

// Mode selects how note events open the gate and the polarity of the gain.
type Mode int

const (
	// ModeUp mutes while a note is held.
	ModeUp Mode = iota
	// ModeToggle flips the held note on every note-on and mutes while held.
	ModeToggle
	// ModeDown passes audio only while a note is held.
	ModeDown
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeUp:
		return "up"
	case ModeToggle:
		return "toggle"
	case ModeDown:
		return "down"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return ModeUp, nil
	case "toggle":
		return ModeToggle, nil
	case "down":
		return ModeDown, nil
	}
	return ModeUp, fmt.Errorf("unknown gate mode: %q", s)
}

// Kind is the note event type.
type Kind uint8

const (
	// NoteOff releases a note.
	NoteOff Kind = iota
	// NoteOn presses a note.
	NoteOn
)

// String returns the event kind name.
func (k Kind) String() string {
	if k == NoteOn {
		return "NoteOn"
	}
	return "NoteOff"
}

// NoteEvent is a note press or release that takes effect at Offset, the
// 0-based sample index inside the current block.
type NoteEvent struct {
	Kind     Kind
	Note     uint8
	Velocity uint8
	Offset   int32
}

func (e NoteEvent) String() string {
	return fmt.Sprintf("%s{note:%d, vel:%d, offset:%d}", e.Kind, e.Note, e.Velocity, e.Offset)
}

// ActiveNote is the single held note, or NoNote.
type ActiveNote int16

// NoNote means nothing is held.
const NoNote ActiveNote = -1

// Held reports whether a note is held.
func (a ActiveNote) Held() bool {
	return a != NoNote
}

// Note returns the held note number and whether one is held.
func (a ActiveNote) Note() (uint8, bool) {
	if a == NoNote {
		return 0, false
	}
	return uint8(a), true
}

// Apply returns the held note after ev. Velocity is ignored: a note-on of any
// velocity counts as a press. In toggle mode a press while something is held
// releases it regardless of the pressed note, and releases are ignored.
// Otherwise the last pressed note wins and only its own release clears it.
func Apply(held ActiveNote, ev NoteEvent, mode Mode) ActiveNote {
	switch ev.Kind {
	case NoteOn:
		if mode == ModeToggle && held.Held() {
			return NoNote
		}
		return ActiveNote(ev.Note)
	case NoteOff:
		if mode != ModeToggle && held == ActiveNote(ev.Note) {
			return NoNote
		}
	}
	return held
}

// Gain maps an envelope value to the output multiplier for a mode.
func Gain(mode Mode, envelope float64) float64 {
	if mode == ModeDown {
		return envelope
	}
	return 1.0 - envelope
}
