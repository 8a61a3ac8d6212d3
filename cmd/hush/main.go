// Command hush gates audio with MIDI notes: an ADSR envelope opens or
// closes the signal while a key is held.
//
//	hush render -in in.wav -midi gate.mid -out out.wav [flags]
//	hush play [-in loop.wav | -tone 220] [flags]
//	hush duplex [-inputs 1] [flags]
//
// Run a subcommand with -h for its flags.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/justyntemme/hush/pkg/framework/debug"
	"github.com/justyntemme/hush/pkg/hush"
)

var subcommands = []struct {
	name, summary string
	run           func(args []string) error
}{
	{"render", "gate a WAV file with a MIDI file", runRender},
	{"play", "gate a looped WAV file or a tone to the speakers", runPlay},
	{"duplex", "gate the audio input to the audio output", runDuplex},
}

func usage(w io.Writer) {
	info := hush.Info()
	fmt.Fprintf(w, "%s %s: a MIDI-keyed ADSR gate\n\nusage: hush <command> [flags]\n\n", info.Name, info.Version)
	for _, c := range subcommands {
		fmt.Fprintf(w, "  %-7s %s\n", c.name, c.summary)
	}
}

var errUsage = errors.New("usage")

func run(args []string) error {
	if len(args) == 0 {
		usage(os.Stderr)
		return errUsage
	}
	switch args[0] {
	case "-h", "-help", "--help", "help":
		usage(os.Stdout)
		return nil
	}
	for _, c := range subcommands {
		if c.name == args[0] {
			return c.run(args[1:])
		}
	}
	usage(os.Stderr)
	return fmt.Errorf("unknown command %q", args[0])
}

func main() {
	err := run(os.Args[1:])
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		debug.Error("%v", err)
		os.Exit(1)
	}
}
