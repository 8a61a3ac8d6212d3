package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"

	"github.com/justyntemme/hush/pkg/framework/debug"
	"github.com/justyntemme/hush/pkg/framework/param"
	"github.com/justyntemme/hush/pkg/host"
	"github.com/justyntemme/hush/pkg/hush"
)

// options are the flags every subcommand shares.
type options struct {
	// Parameter flags hold text for the parameter parsers, so "0.5s" and
	// "50%" work. Only flags given on the command line override a preset.
	attack, decay, sustain, release string
	mode, key                       string

	rate  float64
	block int

	preset     string
	savePreset string

	finiteDecay     bool
	rawZeroVelocity bool

	logLevel string
	logFile  string

	set map[string]bool
}

func (o *options) register(fs *flag.FlagSet) {
	fs.StringVar(&o.attack, "attack", "", "attack time, e.g. 30 or 0.5s (default 30 ms)")
	fs.StringVar(&o.decay, "decay", "", "decay time (default 0 ms)")
	fs.StringVar(&o.sustain, "sustain", "", "sustain level, 0-1 or a percentage (default 1)")
	fs.StringVar(&o.release, "release", "", "release time (default 30 ms)")
	fs.StringVar(&o.mode, "mode", "", "gate mode: up, toggle or down (default toggle)")
	fs.StringVar(&o.key, "key", "", `listened key: "any", a note number or a name like "C 3" (default any)`)
	fs.Float64Var(&o.rate, "rate", host.DefaultSampleRate, "sample rate in Hz")
	fs.IntVar(&o.block, "block", host.DefaultBlockSize, "maximum frames per processed block")
	fs.StringVar(&o.preset, "preset", "", "load parameters from a preset file")
	fs.StringVar(&o.savePreset, "save-preset", "", "write the final parameters to a preset file")
	fs.BoolVar(&o.finiteDecay, "finite-decay", false, "treat a zero decay with zero sustain as an instant drop instead of NaN")
	fs.BoolVar(&o.rawZeroVelocity, "raw-zero-velocity", false, "keep note-on with velocity 0 as a note-on")
	fs.StringVar(&o.logLevel, "log-level", "info", "debug, info, warn, error or off")
	fs.StringVar(&o.logFile, "log-file", "", "write logs to a file instead of stderr")
}

// parse parses args and validates the shared options.
func (o *options) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	o.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o.validate()
}

func (o *options) validate() error {
	var errs []error
	for _, t := range []struct{ name, value string }{
		{"attack", o.attack}, {"decay", o.decay}, {"release", o.release},
	} {
		if t.value == "" {
			continue
		}
		ms, err := param.TimeParser(t.value)
		if err != nil || ms < 0 || ms > hush.MaxTimeMs || math.IsNaN(ms) {
			errs = append(errs, fmt.Errorf("-%s %q: want 0 to %.0f ms", t.name, t.value, hush.MaxTimeMs))
		}
	}
	if o.sustain != "" {
		s, err := param.LevelParser(o.sustain)
		if err != nil || !(s >= 0 && s <= 1) {
			errs = append(errs, fmt.Errorf("-sustain %q: want 0 to 1", o.sustain))
		}
	}
	if o.mode != "" {
		if _, err := hush.ParseMode(o.mode); err != nil {
			errs = append(errs, fmt.Errorf("-mode: %w", err))
		}
	}
	if o.key != "" {
		if _, err := param.KeyParser(o.key); err != nil {
			errs = append(errs, fmt.Errorf("-key: %w", err))
		}
	}
	if _, err := debug.ParseLevel(o.logLevel); err != nil {
		errs = append(errs, fmt.Errorf("-log-level: %w", err))
	}
	cfg := host.Config{SampleRate: o.rate, BlockSize: o.block}.WithDefaults()
	if err := cfg.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// logger configures the global logger and returns a child for command. The
// returned func closes the log file, if any.
func (o *options) logger(command string) (*debug.Logger, func() error, error) {
	level, err := debug.ParseLevel(o.logLevel)
	if err != nil {
		return nil, nil, err
	}
	debug.SetLevel(level)
	if o.logFile == "" {
		return debug.Default().With(command), func() error { return nil }, nil
	}

	l, f, err := debug.NewFileLogger(o.logFile, "hush", debug.DefaultFlags)
	if err != nil {
		return nil, nil, err
	}
	l.SetLevel(level)
	return l.With(command), f.Close, nil
}

// newProcessor creates a processor with the preset, then the parameter
// flags, applied.
func (o *options) newProcessor() (*hush.Processor, error) {
	p := hush.New()
	if o.preset != "" {
		if err := p.State().LoadFile(o.preset); err != nil {
			return nil, err
		}
	}

	params := p.GetParameters()
	for _, f := range []struct{ flag, param, value string }{
		{"key", "key", o.key},
		{"mode", "mode", o.mode},
		{"attack", "attack", o.attack},
		{"decay", "decay", o.decay},
		{"sustain", "sustain", o.sustain},
		{"release", "release", o.release},
	} {
		if !o.set[f.flag] {
			continue
		}
		if err := params.Set(f.param, f.value); err != nil {
			return nil, fmt.Errorf("-%s: %w", f.flag, err)
		}
	}
	if o.set["finite-decay"] {
		p.SetGuardZeroDecay(o.finiteDecay)
	}
	return p, nil
}

func (o *options) engineConfig(channels int) host.Config {
	return host.Config{
		SampleRate: o.rate,
		BlockSize:  o.block,
		Channels:   channels,
	}
}

// save writes the preset named by -save-preset.
func (o *options) save(p *hush.Processor, log *debug.Logger) error {
	if o.savePreset == "" {
		return nil
	}
	if err := p.State().SaveFile(o.savePreset); err != nil {
		return err
	}
	log.Info("saved preset %s", o.savePreset)
	return nil
}

// describe lists the parameters in registry order.
func describe(w io.Writer, params *param.Registry) {
	for _, p := range params.All() {
		fmt.Fprintf(w, "%-8s %-5s %s\n", p.Name, p.ShortName, p.String())
	}
}
