// Package hush is the MIDI-keyed gate: a processor that mutes or opens a
// stereo signal under an ADSR envelope while a listened note is held.
package hush

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/justyntemme/hush/pkg/dsp/envelope"
	"github.com/justyntemme/hush/pkg/dsp/gate"
	"github.com/justyntemme/hush/pkg/framework/bus"
	"github.com/justyntemme/hush/pkg/framework/param"
	"github.com/justyntemme/hush/pkg/framework/plugin"
	"github.com/justyntemme/hush/pkg/framework/process"
	"github.com/justyntemme/hush/pkg/midi"
)

// Info describes the processor.
func Info() plugin.Info {
	return plugin.Info{
		ID:       "com.justyntemme.hush",
		Name:     "Hush",
		Version:  "1.0.0",
		Vendor:   "justyntemme",
		Category: "Fx|Dynamics",
	}
}

// Processor gates its input with the envelope of the held note. Parameters
// are read once per block, so a change is heard from the next block on.
type Processor struct {
	*plugin.BaseProcessor

	env        *envelope.ADSR
	controller *gate.Controller
	filter     *KeyFilter
	guard      atomic.Bool
	dropped    atomic.Uint64

	key, mode, attack, decay, sustain, release *param.Parameter
	led, envelope                              *param.Parameter

	// Last key and mode seen by the audio thread
	lastKey  int
	lastMode gate.Mode
}

var _ plugin.Processor = (*Processor)(nil)

// New creates a processor with a stereo main bus and MIDI in and out. It
// must be initialized before processing.
func New() *Processor {
	p := &Processor{
		BaseProcessor: plugin.NewBaseProcessor(bus.NewGateConfiguration(2)),
		env:           envelope.New(44100),
	}
	p.initializeParameters()
	p.filter = NewKeyFilter(p.key)
	p.lastKey = p.filter.Key()
	p.lastMode = p.Mode()

	p.OnInitialize(func(sampleRate float64, maxBlockSize int32) error {
		p.env.SetSampleRate(sampleRate)
		// The note queue holds as many events as the block context.
		p.controller = gate.NewController(p.env, int(maxBlockSize))
		p.Reset()
		return nil
	})
	p.OnReset(p.Reset)
	p.State().SetCustomState(p.saveOptions, p.loadOptions)
	return p
}

// saveOptions stores the settings that are not parameters in a preset.
func (p *Processor) saveOptions(w io.Writer) error {
	var flags [1]byte
	if p.guard.Load() {
		flags[0] = 1
	}
	_, err := w.Write(flags[:])
	return err
}

func (p *Processor) loadOptions(r io.Reader) error {
	var flags [1]byte
	if _, err := io.ReadFull(r, flags[:]); err != nil {
		return fmt.Errorf("options: %w", err)
	}
	p.guard.Store(flags[0]&1 != 0)
	return nil
}

// Reset silences the gate, forgets the held note and any pending events,
// and reapplies the sample rate and envelope settings.
func (p *Processor) Reset() {
	if p.controller == nil {
		return
	}
	p.controller.Reset()
	p.env.SetSampleRate(p.SampleRate())
	p.lastKey = p.filter.Key()
	p.lastMode = p.Mode()
	p.applyParams()
	p.publish()
}

// SetGuardZeroDecay enables the finite collapse of a zero decay time. The
// change applies from the next block and is saved with presets.
func (p *Processor) SetGuardZeroDecay(on bool) {
	p.guard.Store(on)
}

// Filter returns the listened-key filter.
func (p *Processor) Filter() *KeyFilter {
	return p.filter
}

// ToggleLearn arms or disarms learn mode; see KeyFilter.ToggleLearn.
func (p *Processor) ToggleLearn() bool {
	return p.filter.ToggleLearn()
}

// Mode returns the configured gate mode.
func (p *Processor) Mode() gate.Mode {
	return gate.Mode(p.mode.Index())
}

// GuardZeroDecay reports whether the zero decay guard is on.
func (p *Processor) GuardZeroDecay() bool {
	return p.guard.Load()
}

// Gain returns the gain of the last processed sample. Safe from any
// goroutine.
func (p *Processor) Gain() float64 {
	return p.led.GetPlainValue()
}

// Envelope returns the raw envelope value of the last processed sample, 0
// when it is not a number. Safe from any goroutine.
func (p *Processor) Envelope() float64 {
	return p.envelope.GetPlainValue()
}

// DroppedNotes returns how many note events did not fit into the gate's
// queue. Safe from any goroutine.
func (p *Processor) DroppedNotes() uint64 {
	return p.dropped.Load()
}

// GetTailSamples is the length of a full release.
func (p *Processor) GetTailSamples() int32 {
	return envelope.Params{
		SampleRate: p.SampleRate(),
		ReleaseMs:  p.release.GetPlainValue(),
	}.TailSamples()
}

// ProcessAudio gates one block. Note events are filtered by the listened
// key; other events are copied to the output event list.
func (p *Processor) ProcessAudio(ctx *process.Context) {
	if p.controller == nil {
		ctx.Clear()
		return
	}

	p.applyParams()

	for _, ev := range ctx.GetAllInputEvents() {
		p.route(ctx, ev)
	}
	ctx.ClearInputEvents()

	n := ctx.NumSamples()
	p.controller.Process(ctx.Input, ctx.Output, n)
	for ch := ctx.Channels(); ch < len(ctx.Output); ch++ {
		clear(ctx.Output[ch][:n])
	}

	p.publish()
}

// publish mirrors the last sample's state into the read-only parameters.
func (p *Processor) publish() {
	p.led.SetValue(p.controller.Gain())
	p.envelope.SetValue(p.controller.EnvelopeValue())
	p.dropped.Store(p.controller.Dropped())
}

func (p *Processor) route(ctx *process.Context, ev midi.Event) {
	note, ok := midi.ToNoteEvent(ev)
	if !ok {
		ctx.AddOutputEvent(ev)
		return
	}
	switch p.filter.Accept(note.Note) {
	case Learned:
		// A learned key does not drop the held note.
		p.lastKey = int(note.Note)
	case Pass:
		p.controller.Enqueue(note)
	}
}

func (p *Processor) applyParams() {
	key, mode := p.filter.Key(), p.Mode()
	if key != p.lastKey || mode != p.lastMode {
		p.controller.Release()
		p.lastKey, p.lastMode = key, mode
	}
	p.controller.SetMode(mode)

	p.env.SetADSR(
		p.attack.GetPlainValue(),
		p.decay.GetPlainValue(),
		p.sustain.GetPlainValue(),
		p.release.GetPlainValue(),
	)
	p.env.SetGuardZeroDecay(p.guard.Load())
}
