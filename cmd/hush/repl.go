package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/justyntemme/hush/pkg/dsp/envelope"
	"github.com/justyntemme/hush/pkg/framework/param"
	"github.com/justyntemme/hush/pkg/host"
	"github.com/justyntemme/hush/pkg/hush"
	"github.com/justyntemme/hush/pkg/midi"
)

var errQuit = errors.New("quit")

// console runs the interactive commands of a live session.
type console struct {
	proc *hush.Processor
	eng  *host.Engine
	send func(midi.Event) bool
	out  io.Writer
}

type command struct {
	name    string
	usage   string
	run     func(c *console, args []string) error
	minArgs int
	maxArgs int // negative for no limit
}

var commands []command

func init() {
	commands = []command{
		{"help", "list commands", (*console).help, 0, 0},
		{"get", "[param] show parameters", (*console).get, 0, -1},
		{"set", "<param> <value> set a parameter", (*console).set, 2, -1},
		{"mode", "<up|toggle|down> set the gate mode", (*console).mode, 1, 1},
		{"key", "<any|note> set the listened key", (*console).key, 1, -1},
		{"learn", "arm or cancel MIDI learn of the key", (*console).learn, 0, 0},
		{"on", "<note> [velocity] send a note-on", (*console).noteOn, 1, 2},
		{"off", "<note> send a note-off", (*console).noteOff, 1, 1},
		{"reset", "restore the default parameters", (*console).reset, 0, 0},
		{"level", "show the gain, envelope and output level", (*console).level, 0, 0},
		{"stats", "show engine counters", (*console).stats, 0, 0},
		{"save", "<file> write a preset", (*console).save, 1, 1},
		{"load", "<file> read a preset", (*console).load, 1, 1},
		{"quit", "leave", func(*console, []string) error { return errQuit }, 0, 0},
	}
}

// exec runs one command line.
func (c *console) exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]
	if name == "exit" {
		name = "quit"
	}
	for _, cmd := range commands {
		if cmd.name != name {
			continue
		}
		if len(args) < cmd.minArgs || cmd.maxArgs >= 0 && len(args) > cmd.maxArgs {
			return fmt.Errorf("%s: wrong number of arguments, usage: %s %s", name, name, cmd.usage)
		}
		return cmd.run(c, args)
	}
	return fmt.Errorf("unknown command %q, try help", name)
}

func (c *console) help([]string) error {
	for _, cmd := range commands {
		fmt.Fprintf(c.out, "  %-6s %s\n", cmd.name, cmd.usage)
	}
	return nil
}

func (c *console) get(args []string) error {
	if len(args) == 0 {
		describe(c.out, c.proc.GetParameters())
		return nil
	}
	for _, name := range args {
		p, err := c.proc.GetParameters().Lookup(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s = %s\n", p.Name, p)
	}
	return nil
}

func (c *console) set(args []string) error {
	params := c.proc.GetParameters()
	if err := params.Set(args[0], strings.Join(args[1:], " ")); err != nil {
		return err
	}
	return c.get(args[:1])
}

func (c *console) reset([]string) error {
	c.proc.GetParameters().ResetAll()
	return c.get(nil)
}

func (c *console) mode(args []string) error {
	return c.set([]string{"mode", args[0]})
}

func (c *console) key(args []string) error {
	return c.set(append([]string{"key"}, args...))
}

func (c *console) learn([]string) error {
	if c.proc.ToggleLearn() {
		fmt.Fprintln(c.out, "learning: play the key to listen to")
		return nil
	}
	fmt.Fprintln(c.out, "learn cancelled, listening to any key")
	return nil
}

func parseNote(s string) (uint8, error) {
	n, err := param.KeyParser(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("not a note: %s", s)
	}
	return uint8(n), nil
}

func (c *console) noteOn(args []string) error {
	note, err := parseNote(args[0])
	if err != nil {
		return err
	}
	vel := 100
	if len(args) > 1 {
		if vel, err = strconv.Atoi(args[1]); err != nil || vel < 0 || vel > 127 {
			return fmt.Errorf("invalid velocity %q", args[1])
		}
	}
	return c.push(midi.NoteOnEvent{NoteNumber: note, Velocity: uint8(vel)})
}

func (c *console) noteOff(args []string) error {
	note, err := parseNote(args[0])
	if err != nil {
		return err
	}
	return c.push(midi.NoteOffEvent{NoteNumber: note})
}

func (c *console) push(ev midi.Event) error {
	if !c.send(ev) {
		return errors.New("event queue full")
	}
	return nil
}

func (c *console) level([]string) error {
	lvl := c.eng.Level()
	fmt.Fprintf(c.out, "gain %.2f  envelope %.3f  output %.1f dB\n",
		c.proc.Gain(), c.proc.Envelope(), envelope.LinearToDB(float64(lvl)))
	return nil
}

func (c *console) stats([]string) error {
	fmt.Fprintln(c.out, c.eng.Stats())
	return nil
}

func (c *console) save(args []string) error {
	if err := c.proc.State().SaveFile(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "saved %s\n", args[0])
	return nil
}

func (c *console) load(args []string) error {
	if err := c.proc.State().LoadFile(args[0]); err != nil {
		return err
	}
	return c.get(nil)
}

func completer() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(commands))
	for _, cmd := range commands {
		items = append(items, readline.PcItem(cmd.name))
	}
	return readline.NewPrefixCompleter(items...)
}

// repl reads commands until quit, end of input or ctx is done. It returns
// errQuit when the user left.
func (c *console) repl(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "hush> ",
		AutoComplete: completer(),
	})
	if err != nil {
		return err
	}
	defer rl.Close()
	c.out = rl.Stdout()

	go func() {
		<-ctx.Done()
		rl.Close()
	}()

	for {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			return errQuit
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := c.exec(line); err != nil {
			if errors.Is(err, errQuit) {
				return errQuit
			}
			fmt.Fprintln(c.out, err)
		}
	}
}
