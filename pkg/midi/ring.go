package midi

import (
	"fmt"
	"sync/atomic"
)

// Ring is a lock-free single-producer single-consumer event queue. The
// producer is a MIDI or control thread and the consumer is the audio thread.
type Ring struct {
	events      []Event
	mask        uint32
	read, write atomic.Uint32
}

// NewRing creates a ring with size slots. size must be a power of two.
func NewRing(size int) (*Ring, error) {
	if size <= 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("ring size must be a power of 2, got %d", size)
	}
	return &Ring{
		events: make([]Event, size),
		mask:   uint32(size - 1),
	}, nil
}

// TryPush enqueues ev and reports false when the ring is full.
func (r *Ring) TryPush(ev Event) bool {
	write := r.write.Load()
	if write-r.read.Load() == uint32(len(r.events)) {
		return false
	}
	r.events[write&r.mask] = ev
	r.write.Store(write + 1)
	return true
}

// Drain hands every queued event to f in arrival order and returns the count.
func (r *Ring) Drain(f func(Event)) int {
	read := r.read.Load()
	write := r.write.Load()
	n := int(write - read)
	for read != write {
		slot := &r.events[read&r.mask]
		ev := *slot
		*slot = nil
		f(ev)
		read++
	}
	r.read.Store(read)
	return n
}

// Len returns the number of queued events.
func (r *Ring) Len() int {
	return int(r.write.Load() - r.read.Load())
}
