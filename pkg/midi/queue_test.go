package midi

import (
	"testing"
)

func TestEventQueueSorting(t *testing.T) {
	q := NewEventQueueSize(DefaultQueueCapacity)

	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 300}, NoteNumber: 62, Velocity: 100})
	q.Add(NoteOnEvent{BaseEvent: BaseEvent{Offset: 100}, NoteNumber: 60, Velocity: 100})
	q.Add(ControlChangeEvent{BaseEvent: BaseEvent{Offset: 200}, Controller: CCSustain, Value: 127})
	q.Add(NoteOffEvent{BaseEvent: BaseEvent{Offset: 100}, NoteNumber: 60})

	events := q.All()
	offsets := []int32{100, 100, 200, 300}
	if len(events) != len(offsets) {
		t.Fatalf("Expected %d events, got %d", len(offsets), len(events))
	}
	for i, event := range events {
		if event.SampleOffset() != offsets[i] {
			t.Errorf("Event %d: expected offset %d, got %d", i, offsets[i], event.SampleOffset())
		}
	}
	// equal offsets keep arrival order
	if events[0].Type() != EventTypeNoteOn || events[1].Type() != EventTypeNoteOff {
		t.Errorf("Expected note on before note off, got %s then %s", events[0], events[1])
	}

	q.Clear()
	if len(q.All()) != 0 {
		t.Error("Expected an empty queue after Clear")
	}
}

func TestEventQueueFull(t *testing.T) {
	for _, capacity := range []int{0, 1, 2} {
		q := NewEventQueueSize(capacity)
		want := max(capacity, 1)
		for i := 0; i < want; i++ {
			if !q.Add(NoteOnEvent{NoteNumber: uint8(i)}) {
				t.Fatalf("capacity %d: add %d rejected", capacity, i)
			}
		}
		if q.Add(NoteOnEvent{NoteNumber: 99}) {
			t.Errorf("capacity %d: add beyond capacity accepted", capacity)
		}
		if q.Dropped() != 1 {
			t.Errorf("capacity %d: expected 1 dropped event, got %d", capacity, q.Dropped())
		}

		// space comes back after a clear, the count stays
		q.Clear()
		if !q.Add(NoteOffEvent{}) || q.Dropped() != 1 {
			t.Errorf("capacity %d: add after clear failed or reset the count", capacity)
		}
	}
}

func TestEventQueueNoAllocs(t *testing.T) {
	q := NewEventQueueSize(8)
	on := Event(NoteOnEvent{BaseEvent: BaseEvent{Offset: 30}, NoteNumber: 60})
	off := Event(NoteOffEvent{BaseEvent: BaseEvent{Offset: 10}, NoteNumber: 60})
	allocs := testing.AllocsPerRun(100, func() {
		q.Add(on)
		q.Add(off)
		_ = q.All()
		q.Clear()
	})
	if allocs != 0 {
		t.Errorf("Expected 0 allocations, got %v", allocs)
	}
}
