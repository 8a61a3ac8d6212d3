package gate

import (
	"github.com/justyntemme/hush/pkg/dsp/envelope"
)

// DefaultQueueSize is the smallest number of pending note events a
// controller holds.
const DefaultQueueSize = 512

// Controller gates a multichannel signal from queued note events. Process
// must only be called from the audio thread.
type Controller struct {
	env   *envelope.ADSR
	queue *Queue
	mode  Mode
	held  ActiveNote

	// Pre-allocated gate trace, also the largest chunk processed at once
	trace []bool

	gain     float64
	envValue float64
}

// NewController creates a controller driving env. maxBlockSize sizes the
// internal trace buffer; longer blocks are processed in chunks. The queue
// holds one event per sample of the largest block, and at least
// DefaultQueueSize.
func NewController(env *envelope.ADSR, maxBlockSize int) *Controller {
	return NewControllerSize(env, maxBlockSize, max(maxBlockSize, DefaultQueueSize))
}

// NewControllerSize is NewController with an explicit queue capacity.
func NewControllerSize(env *envelope.ADSR, maxBlockSize, queueSize int) *Controller {
	if env == nil {
		env = envelope.New(44100)
	}
	if maxBlockSize < 1 {
		maxBlockSize = 1
	}
	return &Controller{
		env:   env,
		queue: NewQueue(queueSize),
		mode:  ModeUp,
		held:  NoNote,
		trace: make([]bool, maxBlockSize),
		gain:  1.0,
	}
}

// SetMode changes the gate mode. The held note is kept; callers that want a
// mode change to drop it call Release.
func (c *Controller) SetMode(mode Mode) {
	c.mode = mode
}

// Mode returns the gate mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Held returns the held note.
func (c *Controller) Held() ActiveNote {
	return c.held
}

// Release forgets the held note. The envelope releases on the next sample.
func (c *Controller) Release() {
	c.held = NoNote
}

// Queue returns the pending event queue for the current block.
func (c *Controller) Queue() *Queue {
	return c.queue
}

// Enqueue adds a note event for the upcoming block.
func (c *Controller) Enqueue(ev NoteEvent) bool {
	return c.queue.Add(ev)
}

// Dropped returns how many note events did not fit into the queue.
func (c *Controller) Dropped() uint64 {
	return c.queue.Dropped()
}

// Gain returns the gain applied to the last processed sample.
func (c *Controller) Gain() float64 {
	return c.gain
}

// EnvelopeValue returns the raw envelope value of the last processed sample.
func (c *Controller) EnvelopeValue() float64 {
	return c.envValue
}

// Process gates nFrames samples of every channel present in both in and out.
// Events are consumed at their offsets, the remainder is shifted into the
// next block. No allocations, locks or syscalls happen here.
func (c *Controller) Process(in, out [][]float32, nFrames int) {
	channels := len(in)
	if len(out) < channels {
		channels = len(out)
	}

	for base := 0; base < nFrames; base += len(c.trace) {
		n := nFrames - base
		if n > len(c.trace) {
			n = len(c.trace)
		}
		trace := c.trace[:n]

		held, consumed := AdvanceBlock(c.held, c.mode, c.queue.Pending(), int32(base), trace)
		c.queue.Consume(consumed)
		c.held = held

		for s, open := range trace {
			c.env.SetGate(open)
			c.envValue = c.env.Update()
			c.gain = Gain(c.mode, c.envValue)

			g := float32(c.gain)
			i := base + s
			for ch := 0; ch < channels; ch++ {
				out[ch][i] = in[ch][i] * g
			}
		}
	}

	c.queue.Flush(int32(nFrames))
}

// Reset drops pending events and the held note and silences the envelope.
func (c *Controller) Reset() {
	c.queue.Clear()
	c.held = NoNote
	c.env.Reset()
	c.envValue = 0
	c.gain = Gain(c.mode, 0)
}
