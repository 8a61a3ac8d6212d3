package hush

import (
	"sync/atomic"

	"github.com/justyntemme/hush/pkg/framework/param"
)

// AnyKey is the listened key value that accepts every note.
const AnyKey = -1

// Verdict is what the key filter decided about a note event.
type Verdict int

const (
	// Drop discards the event.
	Drop Verdict = iota
	// Pass forwards the event to the gate.
	Pass
	// Learned means the event set the listened key and is consumed.
	Learned
)

func (v Verdict) String() string {
	switch v {
	case Drop:
		return "drop"
	case Pass:
		return "pass"
	case Learned:
		return "learned"
	default:
		return "unknown"
	}
}

// KeyFilter selects the note events that reach the gate: either every note
// or a single listened key, which learn mode captures from the next note.
// Accept runs on the audio thread; SetKey and ToggleLearn may be called
// from any goroutine.
type KeyFilter struct {
	key   *param.Parameter
	learn atomic.Bool
}

// NewKeyFilter binds a filter to a key parameter ranging from AnyKey to 127.
func NewKeyFilter(key *param.Parameter) *KeyFilter {
	return &KeyFilter{key: key}
}

// Key returns the listened key or AnyKey.
func (f *KeyFilter) Key() int {
	return f.key.Index()
}

// SetKey sets the listened key. Values outside AnyKey..127 are clamped.
func (f *KeyFilter) SetKey(key int) {
	f.key.SetPlainValue(float64(key))
}

// Learning reports whether the next note will be captured.
func (f *KeyFilter) Learning() bool {
	return f.learn.Load()
}

// ToggleLearn arms learn mode and returns true, or, when learn mode is
// already armed, disarms it, resets the key to AnyKey and returns false.
func (f *KeyFilter) ToggleLearn() bool {
	if f.learn.CompareAndSwap(true, false) {
		f.SetKey(AnyKey)
		return false
	}
	f.learn.Store(true)
	return true
}

// Accept decides the fate of a note-on or note-off for note.
func (f *KeyFilter) Accept(note uint8) Verdict {
	if f.learn.CompareAndSwap(true, false) {
		f.SetKey(int(note))
		return Learned
	}
	if key := f.Key(); key != AnyKey && int(note) != key {
		return Drop
	}
	return Pass
}
