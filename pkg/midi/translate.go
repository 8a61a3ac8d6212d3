package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/justyntemme/hush/pkg/dsp/gate"
)

// Translator decodes wire MIDI messages into events.
type Translator struct {
	// RawZeroVelocity keeps a note-on with velocity 0 as a note-on. By default
	// it becomes a note-off, the running-status convention most devices use.
	RawZeroVelocity bool
}

// Translate decodes msg into an event at offset. Channel voice and system
// real-time messages are decoded; anything else with data becomes a RawEvent.
// It reports false for empty messages.
func (t Translator) Translate(msg gomidi.Message, offset int32) (Event, bool) {
	if len(msg) == 0 {
		return nil, false
	}

	var ch, key, vel, ctl, val uint8
	var rel int16
	var abs uint16

	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		if vel == 0 && !t.RawZeroVelocity {
			return NoteOffEvent{BaseEvent: BaseEvent{EventChannel: ch, Offset: offset}, NoteNumber: key}, true
		}
		return NoteOnEvent{BaseEvent: BaseEvent{EventChannel: ch, Offset: offset}, NoteNumber: key, Velocity: vel}, true

	case msg.GetNoteOff(&ch, &key, &vel):
		if t.RawZeroVelocity && isZeroVelocityNoteOn(msg) {
			return NoteOnEvent{BaseEvent: BaseEvent{EventChannel: ch, Offset: offset}, NoteNumber: key}, true
		}
		return NoteOffEvent{BaseEvent: BaseEvent{EventChannel: ch, Offset: offset}, NoteNumber: key, Velocity: vel}, true

	case msg.GetControlChange(&ch, &ctl, &val):
		return ControlChangeEvent{BaseEvent: BaseEvent{EventChannel: ch, Offset: offset}, Controller: ctl, Value: val}, true

	case msg.GetPitchBend(&ch, &rel, &abs):
		return PitchBendEvent{BaseEvent: BaseEvent{EventChannel: ch, Offset: offset}, Value: rel}, true

	case msg.GetProgramChange(&ch, &val):
		return ProgramChangeEvent{BaseEvent: BaseEvent{EventChannel: ch, Offset: offset}, Program: val}, true

	case msg.GetAfterTouch(&ch, &val):
		return ChannelPressureEvent{BaseEvent: BaseEvent{EventChannel: ch, Offset: offset}, Pressure: val}, true

	case msg.GetPolyAfterTouch(&ch, &key, &val):
		return PolyPressureEvent{BaseEvent: BaseEvent{EventChannel: ch, Offset: offset}, NoteNumber: key, Pressure: val}, true
	}

	switch msg[0] {
	case StatusClock, StatusStart, StatusContinue, StatusStop:
		return SystemEvent{BaseEvent: BaseEvent{Offset: offset}, Status: msg[0]}, true
	}

	data := make([]byte, len(msg))
	copy(data, msg)
	return RawEvent{BaseEvent: BaseEvent{Offset: offset}, Data: data}, true
}

func isZeroVelocityNoteOn(msg gomidi.Message) bool {
	return len(msg) == 3 && msg[0]&0xF0 == 0x90 && msg[2] == 0
}

// Encode converts an event back into a wire message.
func Encode(e Event) (gomidi.Message, bool) {
	switch ev := e.(type) {
	case NoteOnEvent:
		return gomidi.NoteOn(ev.EventChannel, ev.NoteNumber, ev.Velocity), true
	case NoteOffEvent:
		return gomidi.NoteOffVelocity(ev.EventChannel, ev.NoteNumber, ev.Velocity), true
	case ControlChangeEvent:
		return gomidi.ControlChange(ev.EventChannel, ev.Controller, ev.Value), true
	case PitchBendEvent:
		return gomidi.Pitchbend(ev.EventChannel, ev.Value), true
	case ProgramChangeEvent:
		return gomidi.ProgramChange(ev.EventChannel, ev.Program), true
	case ChannelPressureEvent:
		return gomidi.AfterTouch(ev.EventChannel, ev.Pressure), true
	case PolyPressureEvent:
		return gomidi.PolyAfterTouch(ev.EventChannel, ev.NoteNumber, ev.Pressure), true
	case SystemEvent:
		return gomidi.Message{ev.Status}, true
	case RawEvent:
		return gomidi.Message(ev.Data), len(ev.Data) > 0
	}
	return nil, false
}

// ToNoteEvent converts a note event for the gate. Other events report false.
func ToNoteEvent(e Event) (gate.NoteEvent, bool) {
	switch ev := e.(type) {
	case NoteOnEvent:
		return gate.NoteEvent{Kind: gate.NoteOn, Note: ev.NoteNumber, Velocity: ev.Velocity, Offset: ev.Offset}, true
	case NoteOffEvent:
		return gate.NoteEvent{Kind: gate.NoteOff, Note: ev.NoteNumber, Velocity: ev.Velocity, Offset: ev.Offset}, true
	}
	return gate.NoteEvent{}, false
}
