package gate

// Queue is a fixed-capacity, offset-ordered sequence of note events for the
// block being processed. It never allocates after construction and is owned
// by the audio thread; other threads hand events over through a ring buffer.
type Queue struct {
	events  []NoteEvent
	head    int
	dropped uint64
}

// NewQueue creates a queue that holds up to capacity pending events.
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{
		events: make([]NoteEvent, 0, capacity),
	}
}

// Add inserts an event after every queued event with an offset less than or
// equal to its own, so arrival order is kept for equal offsets. It returns
// false and drops the event when the queue is full.
func (q *Queue) Add(ev NoteEvent) bool {
	if len(q.events) == cap(q.events) {
		if q.head == 0 {
			q.dropped++
			return false
		}
		q.compact()
	}

	i := len(q.events)
	q.events = q.events[:i+1]
	for i > q.head && q.events[i-1].Offset > ev.Offset {
		q.events[i] = q.events[i-1]
		i--
	}
	q.events[i] = ev
	return true
}

// Pending returns the queued events in order. The slice aliases the queue
// and is only valid until the next mutation.
func (q *Queue) Pending() []NoteEvent {
	return q.events[q.head:]
}

// Consume drops the first n pending events.
func (q *Queue) Consume(n int) {
	q.head += n
	if q.head > len(q.events) {
		q.head = len(q.events)
	}
}

// Flush shifts the offsets of the events still queued after a block of
// nFrames samples so they target the next block. Offsets never go below 0.
func (q *Queue) Flush(nFrames int32) {
	q.compact()
	for i := range q.events {
		q.events[i].Offset -= nFrames
		if q.events[i].Offset < 0 {
			q.events[i].Offset = 0
		}
	}
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	return len(q.events) - q.head
}

// Clear drops every pending event.
func (q *Queue) Clear() {
	q.events = q.events[:0]
	q.head = 0
}

// Dropped returns how many events were rejected because the queue was full.
func (q *Queue) Dropped() uint64 {
	return q.dropped
}

func (q *Queue) compact() {
	if q.head == 0 {
		return
	}
	n := copy(q.events, q.events[q.head:])
	q.events = q.events[:n]
	q.head = 0
}
