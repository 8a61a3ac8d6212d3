package midi

// EventQueue is an offset-ordered event list for one processing block. It is
// allocated once and owned by the audio thread, so it takes no locks; events
// from other threads arrive through a Ring.
type EventQueue struct {
	events  []Event
	dropped int
}

// DefaultQueueCapacity is the number of events a block can carry.
const DefaultQueueCapacity = 512

// NewEventQueueSize creates a queue holding up to capacity events.
func NewEventQueueSize(capacity int) *EventQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &EventQueue{
		events: make([]Event, 0, capacity),
	}
}

// Add inserts event behind every queued event with the same or an earlier
// offset. It reports false and drops the event when the queue is full.
func (q *EventQueue) Add(event Event) bool {
	if len(q.events) == cap(q.events) {
		q.dropped++
		return false
	}

	i := len(q.events)
	q.events = q.events[:i+1]
	for i > 0 && q.events[i-1].SampleOffset() > event.SampleOffset() {
		q.events[i] = q.events[i-1]
		i--
	}
	q.events[i] = event
	return true
}

// All returns every queued event in order. The slice aliases the queue.
func (q *EventQueue) All() []Event {
	return q.events
}

// Clear empties the queue and releases the queued events.
func (q *EventQueue) Clear() {
	for i := range q.events {
		q.events[i] = nil
	}
	q.events = q.events[:0]
}

// Dropped returns the number of events rejected because the queue was full.
func (q *EventQueue) Dropped() int {
	return q.dropped
}
