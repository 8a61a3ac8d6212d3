package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/justyntemme/hush/pkg/framework/debug"
	"github.com/justyntemme/hush/pkg/host"
	"github.com/justyntemme/hush/pkg/hush"
	"github.com/justyntemme/hush/pkg/midi"
)

const (
	forwardInterval = time.Millisecond
	watchInterval   = 200 * time.Millisecond
)

// liveFlags are the options of the real-time subcommands.
type liveFlags struct {
	options
	midiIn, midiOut string
	repl, meter     bool
}

func (l *liveFlags) register(fs *flag.FlagSet) {
	l.options.register(fs)
	fs.StringVar(&l.midiIn, "midi-in", "", `MIDI input port name or index, "none" to disable (default: the first port)`)
	fs.StringVar(&l.midiOut, "midi-out", portNone, "MIDI output port for passed-through events")
	fs.BoolVar(&l.repl, "repl", true, "read commands from the terminal")
	fs.BoolVar(&l.meter, "meter", false, "draw a level meter instead of the console")
}

func runPlay(args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	var l liveFlags
	l.register(fs)
	in := fs.String("in", "", "WAV file to loop")
	tone := fs.Float64("tone", 220, "sine frequency played when -in is not given")
	buffer := fs.Duration("buffer", 0, "output buffer length (default: the driver's)")
	if err := l.parse(fs, args); err != nil {
		return err
	}
	if *in == "" && !(*tone > 0) {
		return fmt.Errorf("-tone must be positive")
	}

	log, closeLog, err := l.logger("play")
	if err != nil {
		return err
	}
	defer closeLog()

	var src host.Source
	channels := host.DefaultChannels
	if *in != "" {
		audio, err := host.ReadWAV(*in)
		if err != nil {
			return err
		}
		if l.set["rate"] && int(l.rate) != audio.SampleRate {
			log.Warn("-rate %v ignored, %s is %d Hz", l.rate, *in, audio.SampleRate)
		}
		l.rate = float64(audio.SampleRate)
		src = host.NewBuffer(audio.Data, true)
	} else {
		src = host.NewTone(l.rate, *tone, 0.5)
	}

	proc, err := l.newProcessor()
	if err != nil {
		return err
	}
	eng, err := host.NewEngine(proc, l.engineConfig(channels))
	if err != nil {
		return err
	}
	defer eng.Close()
	eng.SetSource(src)

	return l.run(log, proc, eng, func() (io.Closer, error) {
		return host.OpenSpeaker(eng, *buffer)
	})
}

func runDuplex(args []string) error {
	fs := flag.NewFlagSet("duplex", flag.ContinueOnError)
	var l liveFlags
	l.register(fs)
	inputs := fs.Int("inputs", 1, "captured channels, 1 or 2")
	if err := l.parse(fs, args); err != nil {
		return err
	}
	if *inputs != 1 && *inputs != 2 {
		return fmt.Errorf("-inputs %d: want 1 or 2", *inputs)
	}

	log, closeLog, err := l.logger("duplex")
	if err != nil {
		return err
	}
	defer closeLog()

	proc, err := l.newProcessor()
	if err != nil {
		return err
	}
	eng, err := host.NewEngine(proc, l.engineConfig(host.DefaultChannels))
	if err != nil {
		return err
	}
	defer eng.Close()

	return l.run(log, proc, eng, func() (io.Closer, error) {
		return host.OpenDuplex(eng, *inputs)
	})
}

// run starts the audio output from open and serves MIDI, the console and
// the meter until a signal arrives or the user quits.
func (l *liveFlags) run(log *debug.Logger, proc *hush.Processor, eng *host.Engine, open func() (io.Closer, error)) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out, err := open()
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			log.Warn("close audio: %v", err)
		}
	}()
	cfg := eng.Config()
	log.Info("running at %v Hz, %d frames per block, mode %s, key %s",
		cfg.SampleRate, cfg.BlockSize, proc.Mode(), proc.GetParameters().Get(hush.ParamKey))

	s := &sender{ring: eng.Events()}
	g, ctx := errgroup.WithContext(ctx)

	if l.midiIn != portNone || l.midiOut != portNone {
		mio, err := openMIDI(log)
		if err != nil {
			log.Warn("%v, continuing without MIDI", err)
		} else {
			defer mio.Close()
			mio.listPorts()
			if l.midiIn != portNone {
				tr := midi.Translator{RawZeroVelocity: l.rawZeroVelocity}
				g.Go(func() error { return mio.listen(ctx, l.midiIn, tr, s) })
			}
			if l.midiOut != portNone {
				g.Go(func() error { return mio.forward(ctx, l.midiOut, eng.Output(), forwardInterval) })
			}
		}
	}

	if w, ok := out.(interface{ Err() error }); ok {
		g.Go(func() error { return watch(ctx, w.Err) })
	}

	interactive := isTerminal(os.Stdin) && isTerminal(os.Stdout)
	switch {
	case l.meter && interactive:
		g.Go(func() error { return runMeter(ctx, os.Stdout, proc, eng) })
	case l.repl && interactive:
		c := &console{proc: proc, eng: eng, send: s.send, out: os.Stdout}
		g.Go(func() error { return c.repl(ctx) })
	case l.repl || l.meter:
		log.Info("not a terminal, console disabled")
	}

	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	err = g.Wait()
	if errors.Is(err, errQuit) {
		err = nil
	}
	log.Info("stopped: %s", eng.Stats())
	if n := s.dropped.Load(); n > 0 {
		log.Warn("%d MIDI events dropped on a full queue", n)
	}
	if err != nil {
		return err
	}
	return l.save(proc, log)
}

// watch fails when errf reports an error.
func watch(ctx context.Context, errf func() error) error {
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := errf(); err != nil {
				return fmt.Errorf("audio output: %w", err)
			}
		}
	}
}
