package midi

import (
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/justyntemme/hush/pkg/dsp/gate"
)

func TestTranslate(t *testing.T) {
	var tr Translator

	tests := []struct {
		name     string
		msg      gomidi.Message
		expected Event
	}{
		{"note on", gomidi.NoteOn(1, 60, 100), NoteOnEvent{BaseEvent: BaseEvent{EventChannel: 1, Offset: 7}, NoteNumber: 60, Velocity: 100}},
		{"note off", gomidi.NoteOffVelocity(0, 61, 40), NoteOffEvent{BaseEvent: BaseEvent{Offset: 7}, NoteNumber: 61, Velocity: 40}},
		{"zero velocity note on", gomidi.Message{0x92, 62, 0}, NoteOffEvent{BaseEvent: BaseEvent{EventChannel: 2, Offset: 7}, NoteNumber: 62}},
		{"control change", gomidi.ControlChange(3, CCSustain, 127), ControlChangeEvent{BaseEvent: BaseEvent{EventChannel: 3, Offset: 7}, Controller: CCSustain, Value: 127}},
		{"pitch bend", gomidi.Pitchbend(0, -100), PitchBendEvent{BaseEvent: BaseEvent{Offset: 7}, Value: -100}},
		{"program change", gomidi.ProgramChange(0, 12), ProgramChangeEvent{BaseEvent: BaseEvent{Offset: 7}, Program: 12}},
		{"clock", gomidi.Message{StatusClock}, SystemEvent{BaseEvent: BaseEvent{Offset: 7}, Status: StatusClock}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tr.Translate(tt.msg, 7)
			if !ok {
				t.Fatal("Translate reported false")
			}
			if got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestTranslateRawZeroVelocity(t *testing.T) {
	tr := Translator{RawZeroVelocity: true}
	got, ok := tr.Translate(gomidi.Message{0x90, 60, 0}, 0)
	if !ok {
		t.Fatal("Translate reported false")
	}
	on, isOn := got.(NoteOnEvent)
	if !isOn || on.NoteNumber != 60 || on.Velocity != 0 {
		t.Errorf("Expected zero velocity note on, got %s", got)
	}

	// a real note off is unaffected
	got, _ = tr.Translate(gomidi.Message{0x80, 60, 0}, 0)
	if got.Type() != EventTypeNoteOff {
		t.Errorf("Expected note off, got %s", got)
	}
}

func TestTranslateRaw(t *testing.T) {
	var tr Translator
	data := []byte{0xF0, 0x7E, 0x01, 0xF7}
	got, ok := tr.Translate(gomidi.Message(data), 3)
	if !ok {
		t.Fatal("Translate reported false")
	}
	raw, isRaw := got.(RawEvent)
	if !isRaw || len(raw.Data) != 4 || raw.Offset != 3 {
		t.Fatalf("Expected raw event, got %s", got)
	}
	data[1] = 0
	if raw.Data[1] != 0x7E {
		t.Error("RawEvent must own its data")
	}

	if _, ok := tr.Translate(nil, 0); ok {
		t.Error("Expected empty message to be rejected")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	var tr Translator
	events := []Event{
		NoteOnEvent{BaseEvent: BaseEvent{EventChannel: 4}, NoteNumber: 64, Velocity: 90},
		NoteOffEvent{NoteNumber: 64, Velocity: 10},
		ControlChangeEvent{Controller: 7, Value: 100},
		ProgramChangeEvent{Program: 3},
		SystemEvent{Status: StatusStop},
	}
	for _, ev := range events {
		msg, ok := Encode(ev)
		if !ok {
			t.Fatalf("Encode(%s) failed", ev)
		}
		back, _ := tr.Translate(msg, 0)
		if back != ev {
			t.Errorf("Expected %s, got %s", ev, back)
		}
	}
}

func TestToNoteEvent(t *testing.T) {
	ne, ok := ToNoteEvent(NoteOnEvent{BaseEvent: BaseEvent{Offset: 9}, NoteNumber: 60, Velocity: 1})
	if !ok || ne != (gate.NoteEvent{Kind: gate.NoteOn, Note: 60, Velocity: 1, Offset: 9}) {
		t.Errorf("Unexpected note event %v %v", ne, ok)
	}
	ne, ok = ToNoteEvent(NoteOffEvent{BaseEvent: BaseEvent{Offset: 2}, NoteNumber: 61})
	if !ok || ne.Kind != gate.NoteOff || ne.Note != 61 || ne.Offset != 2 {
		t.Errorf("Unexpected note event %v %v", ne, ok)
	}
	if _, ok := ToNoteEvent(ControlChangeEvent{}); ok {
		t.Error("Expected control change to be rejected")
	}
}
