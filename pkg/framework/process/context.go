// Package process provides the per-block processing context handed to a
// processor: audio buffers and sample-accurate MIDI events.
package process

import (
	"github.com/justyntemme/hush/pkg/midi"
)

// Context provides a clean API for audio processing with zero allocations
type Context struct {
	Input      [][]float32
	Output     [][]float32
	SampleRate float64

	// Channel headers reused by SetBuffers
	inHeaders  [][]float32
	outHeaders [][]float32

	inputEvents  *midi.EventQueue
	outputEvents *midi.EventQueue
}

// EventCapacity is the number of events a block of at most maxBlockSize
// samples can carry: one per sample, and at least midi.DefaultQueueCapacity.
func EventCapacity(maxBlockSize int) int {
	return max(maxBlockSize, midi.DefaultQueueCapacity)
}

// NewContext creates a new process context with pre-allocated event queues
// of EventCapacity events.
func NewContext(maxBlockSize int) *Context {
	capacity := EventCapacity(maxBlockSize)
	return &Context{
		inputEvents:  midi.NewEventQueueSize(capacity),
		outputEvents: midi.NewEventQueueSize(capacity),
	}
}

// SetBuffers points the context at the first nFrames samples of in and out.
// Channel headers are reused, so after the first call with a given channel
// count it does not allocate.
func (c *Context) SetBuffers(in, out [][]float32, nFrames int) {
	c.inHeaders = reslice(c.inHeaders, in, nFrames)
	c.outHeaders = reslice(c.outHeaders, out, nFrames)
	c.Input = c.inHeaders
	c.Output = c.outHeaders
}

func reslice(headers, bufs [][]float32, nFrames int) [][]float32 {
	if cap(headers) < len(bufs) {
		headers = make([][]float32, len(bufs))
	}
	headers = headers[:len(bufs)]
	for ch, b := range bufs {
		n := nFrames
		if n > len(b) {
			n = len(b)
		}
		headers[ch] = b[:n]
	}
	return headers
}

// NumSamples returns the number of samples to process
func (c *Context) NumSamples() int {
	if len(c.Input) > 0 && len(c.Input[0]) > 0 {
		return len(c.Input[0])
	}
	if len(c.Output) > 0 && len(c.Output[0]) > 0 {
		return len(c.Output[0])
	}
	return 0
}

// Channels returns the number of channels with both an input and an output.
func (c *Context) Channels() int {
	return min(len(c.Input), len(c.Output))
}

// Clear zeros the output buffers
func (c *Context) Clear() {
	for _, out := range c.Output {
		clear(out)
	}
}

// AddInputEvent queues an incoming event for this block. It reports false
// when the queue is full.
func (c *Context) AddInputEvent(e midi.Event) bool {
	return c.inputEvents.Add(e)
}

// GetAllInputEvents returns the block's input events ordered by offset. The
// slice is only valid during the block.
func (c *Context) GetAllInputEvents() []midi.Event {
	return c.inputEvents.All()
}

func (c *Context) ClearInputEvents() {
	c.inputEvents.Clear()
}

// AddOutputEvent emits an event to the host at the end of the block.
func (c *Context) AddOutputEvent(e midi.Event) bool {
	return c.outputEvents.Add(e)
}

func (c *Context) GetOutputEvents() []midi.Event {
	return c.outputEvents.All()
}

func (c *Context) ClearOutputEvents() {
	c.outputEvents.Clear()
}

// ClearAllEvents empties both event queues.
func (c *Context) ClearAllEvents() {
	c.inputEvents.Clear()
	c.outputEvents.Clear()
}

// DroppedEvents returns how many input and output events overflowed their
// queues.
func (c *Context) DroppedEvents() (in, out int) {
	return c.inputEvents.Dropped(), c.outputEvents.Dropped()
}
