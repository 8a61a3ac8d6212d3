// Package host runs a processor outside a plugin host: block by block from
// a WAV file for offline rendering, or in real time behind an oto player or
// a portaudio duplex stream, with MIDI arriving through a lock-free ring.
package host

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/justyntemme/hush/pkg/dsp/envelope"
	"github.com/justyntemme/hush/pkg/framework/bus"
	"github.com/justyntemme/hush/pkg/framework/debug"
	"github.com/justyntemme/hush/pkg/framework/plugin"
	"github.com/justyntemme/hush/pkg/framework/process"
	"github.com/justyntemme/hush/pkg/midi"
)

// Defaults for Config fields left at zero.
const (
	DefaultSampleRate = 48000
	DefaultBlockSize  = 256
	DefaultChannels   = 2
	DefaultRingSize   = 1024
)

// Config sizes an Engine.
type Config struct {
	SampleRate float64
	BlockSize  int
	Channels   int
	// RingSize is the number of MIDI events the input and output rings hold.
	// It must be a power of two.
	RingSize int
}

// WithDefaults fills zero fields.
func (c Config) WithDefaults() Config {
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.BlockSize == 0 {
		c.BlockSize = DefaultBlockSize
	}
	if c.Channels == 0 {
		c.Channels = DefaultChannels
	}
	if c.RingSize == 0 {
		c.RingSize = DefaultRingSize
	}
	return c
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if !(c.SampleRate > 0) || math.IsInf(c.SampleRate, 0) {
		errs = append(errs, fmt.Errorf("%w: %v", plugin.ErrInvalidSampleRate, c.SampleRate))
	}
	if c.BlockSize < 1 {
		errs = append(errs, fmt.Errorf("invalid block size: %d", c.BlockSize))
	}
	if c.Channels < 1 || c.Channels > 2 {
		errs = append(errs, fmt.Errorf("invalid channel count: %d (1 or 2)", c.Channels))
	}
	if c.RingSize < 1 || c.RingSize&(c.RingSize-1) != 0 {
		errs = append(errs, fmt.Errorf("ring size must be a power of 2, got %d", c.RingSize))
	}
	return errors.Join(errs...)
}

// Stats is a snapshot of the engine counters.
type Stats struct {
	Frames   int64
	Blocks   uint64
	Load     float64
	PeakLoad float64
	Overruns uint64
	// DroppedInput events never reached the processor, DroppedNotes were
	// refused by its note queue and DroppedOutput never left it.
	DroppedInput   uint64
	DroppedNotes   uint64
	DroppedOutput  uint64
	PendingMIDIIn  int
	PendingMIDIOut int
}

func (s Stats) String() string {
	return fmt.Sprintf("frames=%d blocks=%d load=%.1f%% peak=%.1f%% overruns=%d dropped_in=%d dropped_notes=%d dropped_out=%d",
		s.Frames, s.Blocks, s.Load*100, s.PeakLoad*100, s.Overruns, s.DroppedInput, s.DroppedNotes, s.DroppedOutput)
}

// Engine drives a processor in blocks of at most Config.BlockSize frames.
// Process, Read and Duplex belong to a single audio goroutine; Events,
// Level and Stats may be used from any goroutine.
type Engine struct {
	proc plugin.Processor
	cfg  Config
	ctx  *process.Context

	events    *midi.Ring
	outEvents *midi.Ring
	addEvent  func(midi.Event)

	source Source

	// Planar scratch of BlockSize frames and reusable chunk headers
	in, out       [][]float32
	inHdr, outHdr [][]float32

	profiler *debug.BlockProfiler
	meter    *envelope.Meter

	level     atomic.Uint32 // float32 bits
	frames    atomic.Int64
	droppedIn atomic.Uint64
	// Overflow counts of the block context, copied after every block
	ctxDroppedIn, ctxDroppedOut atomic.Uint64
	droppedOut                  atomic.Uint64
}

// NewEngine initializes and activates proc for cfg.
func NewEngine(proc plugin.Processor, cfg Config) (*Engine, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	buses := proc.GetBuses()
	if n := int(buses.MainChannels(bus.DirectionOutput)); n < cfg.Channels {
		return nil, fmt.Errorf("processor has %d output channels, engine needs %d", n, cfg.Channels)
	}
	if err := proc.Initialize(cfg.SampleRate, int32(cfg.BlockSize)); err != nil {
		return nil, fmt.Errorf("initialize processor: %w", err)
	}
	if err := proc.SetActive(true); err != nil {
		return nil, fmt.Errorf("activate processor: %w", err)
	}

	events, err := midi.NewRing(cfg.RingSize)
	if err != nil {
		return nil, err
	}
	outEvents, err := midi.NewRing(cfg.RingSize)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		proc:      proc,
		cfg:       cfg,
		ctx:       process.NewContext(cfg.BlockSize),
		events:    events,
		outEvents: outEvents,
		in:        planar(cfg.Channels, cfg.BlockSize),
		out:       planar(cfg.Channels, cfg.BlockSize),
		inHdr:     make([][]float32, cfg.Channels),
		outHdr:    make([][]float32, cfg.Channels),
		profiler:  debug.NewBlockProfiler(cfg.SampleRate),
		meter:     envelope.NewMeter(cfg.SampleRate, envelope.MeterPeak),
	}
	e.ctx.SampleRate = cfg.SampleRate
	e.addEvent = e.enqueueLive
	if !buses.AcceptsEvents() {
		e.addEvent = e.discard
	}
	return e, nil
}

func planar(channels, frames int) [][]float32 {
	buf := make([][]float32, channels)
	for ch := range buf {
		buf[ch] = make([]float32, frames)
	}
	return buf
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Processor returns the driven processor.
func (e *Engine) Processor() plugin.Processor {
	return e.proc
}

// Events is the ring MIDI producers push to. Events are applied at their
// offset within the next processed block, normally 0.
func (e *Engine) Events() *midi.Ring {
	return e.events
}

// Output is the ring of events the processor passed through, for a MIDI
// output goroutine to drain. Events are dropped when it is full.
func (e *Engine) Output() *midi.Ring {
	return e.outEvents
}

// SetSource sets the input for Read. A nil source plays silence. Call it
// before the audio goroutine starts.
func (e *Engine) SetSource(s Source) {
	e.source = s
}

// AddEvent queues ev for the next processed block at its own offset. It is
// for offline rendering on the goroutine that calls Process.
func (e *Engine) AddEvent(ev midi.Event) bool {
	if !e.ctx.AddInputEvent(ev) {
		e.syncDropped()
		return false
	}
	return true
}

func (e *Engine) syncDropped() {
	in, out := e.ctx.DroppedEvents()
	e.ctxDroppedIn.Store(uint64(in))
	e.ctxDroppedOut.Store(uint64(out))
}

func (e *Engine) enqueueLive(ev midi.Event) {
	e.AddEvent(ev)
}

// discard drains the ring for a processor without an event input.
func (e *Engine) discard(midi.Event) {
	e.droppedIn.Add(1)
}

// Process runs nFrames of in through the processor into out, in blocks of
// at most BlockSize frames. Missing input channels reuse the last one.
func (e *Engine) Process(in, out [][]float32, nFrames int) {
	if len(in) == 0 || len(out) == 0 {
		return
	}
	for base := 0; base < nFrames; base += e.cfg.BlockSize {
		n := min(nFrames-base, e.cfg.BlockSize)
		for ch := range e.inHdr {
			src := in[min(ch, len(in)-1)]
			e.inHdr[ch] = src[base : base+n]
		}
		outs := e.outHdr[:min(len(out), len(e.outHdr))]
		for ch := range outs {
			outs[ch] = out[ch][base : base+n]
		}
		e.processBlock(e.inHdr, outs, n)
	}
}

func (e *Engine) processBlock(in, out [][]float32, n int) {
	start := e.profiler.Begin()

	e.ctx.SetBuffers(in, out, n)
	e.events.Drain(e.addEvent)
	e.proc.ProcessAudio(e.ctx)

	for _, ev := range e.ctx.GetOutputEvents() {
		if !e.outEvents.TryPush(ev) {
			e.droppedOut.Add(1)
		}
	}
	e.ctx.ClearOutputEvents()
	e.syncDropped()

	e.level.Store(math.Float32bits(e.meter.ProcessBlock(out, n)))
	e.frames.Add(int64(n))
	e.profiler.End(start, n)
}

// Read renders the next frames from the source as interleaved little-endian
// float32, the layout oto's FormatFloat32LE expects. A trailing partial frame
// is zero filled. It never fails.
func (e *Engine) Read(p []byte) (int, error) {
	frameBytes := 4 * e.cfg.Channels
	frames := len(p) / frameBytes
	w := 0
	for frames > 0 {
		n := min(frames, e.cfg.BlockSize)
		in := e.fill(n)
		e.processBlock(in, e.out, n)
		for i := 0; i < n; i++ {
			for ch := 0; ch < e.cfg.Channels; ch++ {
				binary.LittleEndian.PutUint32(p[w:], math.Float32bits(e.out[ch][i]))
				w += 4
			}
		}
		frames -= n
	}
	clear(p[w:])
	return len(p), nil
}

func (e *Engine) fill(n int) [][]float32 {
	for ch := range e.in {
		e.inHdr[ch] = e.in[ch][:n]
		if e.source == nil {
			clear(e.inHdr[ch])
		}
	}
	if e.source != nil {
		e.source.Fill(e.inHdr)
	}
	return e.inHdr
}

// Duplex is a portaudio callback: it gates the captured in into out. A mono
// capture feeds both channels.
func (e *Engine) Duplex(in, out [][]float32) {
	if len(out) == 0 {
		return
	}
	if len(in) == 0 {
		for ch := range out {
			clear(out[ch])
		}
		return
	}
	e.Process(in, out, len(out[0]))
}

// Level returns the metered peak of the output.
func (e *Engine) Level() float32 {
	return math.Float32frombits(e.level.Load())
}

// Profiler returns the block timing counters.
func (e *Engine) Profiler() *debug.BlockProfiler {
	return e.profiler
}

// noteDropper is implemented by processors that count refused note events.
type noteDropper interface {
	DroppedNotes() uint64
}

func (e *Engine) Stats() Stats {
	var notes uint64
	if d, ok := e.proc.(noteDropper); ok {
		notes = d.DroppedNotes()
	}
	return Stats{
		Frames:         e.frames.Load(),
		Blocks:         e.profiler.Blocks(),
		Load:           e.profiler.Load(),
		PeakLoad:       e.profiler.PeakLoad(),
		Overruns:       e.profiler.Overruns(),
		DroppedInput:   e.droppedIn.Load() + e.ctxDroppedIn.Load(),
		DroppedNotes:   notes,
		DroppedOutput:  e.droppedOut.Load() + e.ctxDroppedOut.Load(),
		PendingMIDIIn:  e.events.Len(),
		PendingMIDIOut: e.outEvents.Len(),
	}
}

// Close deactivates the processor and drops events queued for a block that
// will not be processed. Call it after the audio goroutine has stopped.
func (e *Engine) Close() error {
	e.ctx.ClearAllEvents()
	return e.proc.SetActive(false)
}
