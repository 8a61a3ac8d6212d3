package main

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/justyntemme/hush/pkg/framework/debug"
	"github.com/justyntemme/hush/pkg/host"
	"github.com/justyntemme/hush/pkg/midi"
)

type renderFlags struct {
	options
	in, midiFile, out string
	tone              float64
	length            time.Duration
	bits              int
	tail              time.Duration
}

func (r *renderFlags) validate() error {
	var errs []error
	if r.in == "" && r.tone <= 0 {
		errs = append(errs, errors.New("-in or -tone is required"))
	}
	if r.in != "" && r.tone > 0 {
		errs = append(errs, errors.New("-in and -tone are exclusive"))
	}
	if r.tone > 0 && r.length <= 0 {
		errs = append(errs, errors.New("-length must be positive"))
	}
	if r.midiFile == "" {
		errs = append(errs, errors.New("-midi is required"))
	}
	if r.out == "" {
		errs = append(errs, errors.New("-out is required"))
	}
	if r.bits != 16 && r.bits != 24 {
		errs = append(errs, fmt.Errorf("-bits %d: want 16 or 24", r.bits))
	}
	return errors.Join(errs...)
}

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	var r renderFlags
	r.register(fs)
	fs.StringVar(&r.in, "in", "", "input WAV file")
	fs.Float64Var(&r.tone, "tone", 0, "render a sine of this frequency instead of -in")
	fs.DurationVar(&r.length, "length", 5*time.Second, "length of the -tone input")
	fs.StringVar(&r.midiFile, "midi", "", "standard MIDI file with the gating notes")
	fs.StringVar(&r.out, "out", "", "output WAV file")
	fs.IntVar(&r.bits, "bits", 24, "output bit depth, 16 or 24")
	fs.DurationVar(&r.tail, "tail", -1, "silence rendered after the input (default: the release time)")

	if err := r.parse(fs, args); err != nil {
		return err
	}
	if err := r.validate(); err != nil {
		return err
	}

	log, closeLog, err := r.logger("render")
	if err != nil {
		return err
	}
	defer closeLog()

	prof := debug.NewProfiler()
	if err := r.render(log, prof); err != nil {
		return err
	}
	log.Debug("timing:\n%s", prof.Report())
	return nil
}

func (r *renderFlags) render(log *debug.Logger, prof *debug.Profiler) error {
	var (
		audio *host.Audio
		err   error
	)
	prof.Time("load audio", func() { audio, err = r.input() })
	if err != nil {
		return err
	}
	log.Info("input: %d frames, %d channels at %d Hz", audio.Frames(), audio.Channels(), audio.SampleRate)

	var events []midi.Timed
	tr := midi.Translator{RawZeroVelocity: r.rawZeroVelocity}
	prof.Time("load midi", func() { events, err = midi.LoadSMF(r.midiFile, float64(audio.SampleRate), tr) })
	if err != nil {
		return err
	}
	log.Info("midi: %d events", len(events))

	proc, err := r.newProcessor()
	if err != nil {
		return err
	}
	cfg := r.engineConfig(audio.Channels())
	cfg.SampleRate = float64(audio.SampleRate)
	eng, err := host.NewEngine(proc, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	tail := int(proc.GetTailSamples())
	if r.tail >= 0 {
		tail = int(r.tail.Seconds() * float64(audio.SampleRate))
	}

	var (
		out   [][]float32
		stats host.RenderStats
	)
	prof.Time("render", func() { out, stats, err = host.Render(eng, audio.Data, events, tail) })
	if err != nil {
		return err
	}
	log.Info("rendered %d frames, %d events", stats.Frames, stats.Events)
	if stats.Late > 0 {
		log.Warn("%d events after the end of the audio were ignored", stats.Late)
	}
	if stats.Dropped > 0 {
		log.Warn("%d events did not fit in their block and were dropped", stats.Dropped)
	}
	silent := true
	for ch := range out {
		log.LogBufferStats(out[ch], fmt.Sprintf("out[%d]", ch))
		silent = silent && debug.Analyze(out[ch]).Silent()
	}
	if silent && len(out) > 0 {
		log.Warn("the output is silent, check the input level and the gate mode")
	}
	log.Debug("engine: %s", eng.Stats())

	prof.Time("write", func() {
		err = host.WriteWAV(r.out, &host.Audio{SampleRate: audio.SampleRate, Data: out}, r.bits)
	})
	if err != nil {
		return err
	}
	log.Info("wrote %s", r.out)
	return r.save(proc, log)
}

func (r *renderFlags) input() (*host.Audio, error) {
	if r.in != "" {
		return host.ReadWAV(r.in)
	}
	rate := int(r.rate)
	buf := [][]float32{make([]float32, int(r.length.Seconds()*float64(rate)))}
	host.NewTone(float64(rate), r.tone, 0.5).Fill(buf)
	return &host.Audio{SampleRate: rate, Data: buf}, nil
}
