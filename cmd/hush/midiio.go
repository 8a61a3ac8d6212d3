package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/justyntemme/hush/pkg/framework/debug"
	"github.com/justyntemme/hush/pkg/midi"
)

// portNone disables a MIDI port flag.
const portNone = "none"

// sender serializes the producers of the engine's input ring: the MIDI
// driver callback and the console.
type sender struct {
	mu      sync.Mutex
	ring    *midi.Ring
	dropped atomic.Uint64
}

func (s *sender) send(ev midi.Event) bool {
	s.mu.Lock()
	ok := s.ring.TryPush(ev)
	s.mu.Unlock()
	if !ok {
		s.dropped.Add(1)
	}
	return ok
}

// findPort picks a port by index or by a case-insensitive substring of its
// name. An empty name picks the first port.
func findPort[P fmt.Stringer](ports []P, name string) (P, error) {
	var zero P
	if len(ports) == 0 {
		return zero, fmt.Errorf("no MIDI ports")
	}
	if name == "" {
		return ports[0], nil
	}
	if i, err := strconv.Atoi(name); err == nil {
		if i < 0 || i >= len(ports) {
			return zero, fmt.Errorf("MIDI port %d out of range (%d ports)", i, len(ports))
		}
		return ports[i], nil
	}
	for _, p := range ports {
		if strings.Contains(strings.ToLower(p.String()), strings.ToLower(name)) {
			return p, nil
		}
	}
	return zero, fmt.Errorf("no MIDI port matches %q", name)
}

// midiIO owns the MIDI driver for a live session.
type midiIO struct {
	drv *rtmididrv.Driver
	log *debug.Logger
}

func openMIDI(log *debug.Logger) (*midiIO, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("open MIDI driver: %w", err)
	}
	return &midiIO{drv: drv, log: log}, nil
}

func (m *midiIO) Close() error {
	return m.drv.Close()
}

// listPorts logs the available ports.
func (m *midiIO) listPorts() {
	if ins, err := m.drv.Ins(); err == nil {
		for i, in := range ins {
			m.log.Info("MIDI in %d: %s", i, in)
		}
	}
	if outs, err := m.drv.Outs(); err == nil {
		for i, out := range outs {
			m.log.Info("MIDI out %d: %s", i, out)
		}
	}
}

// listen translates messages from the named input port into the engine's
// ring until ctx is done. Live events always apply at the start of the next
// block.
func (m *midiIO) listen(ctx context.Context, name string, tr midi.Translator, s *sender) error {
	ins, err := m.drv.Ins()
	if err != nil {
		return fmt.Errorf("list MIDI inputs: %w", err)
	}
	in, err := findPort(ins, name)
	if err != nil {
		if name == "" {
			m.log.Warn("MIDI input disabled: %v", err)
			return nil
		}
		return err
	}

	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, _ int32) {
		if ev, ok := tr.Translate(msg, 0); ok && !s.send(ev) {
			m.log.Debug("MIDI input ring full, dropped %s", msg)
		}
	}, gomidi.HandleError(func(err error) {
		m.log.Warn("MIDI input: %v", err)
	}))
	if err != nil {
		return fmt.Errorf("listen to %s: %w", in, err)
	}
	m.log.Info("listening to MIDI input %s", in)

	<-ctx.Done()
	stop()
	return nil
}

// forward sends the events the processor passed through to the named
// output port until ctx is done.
func (m *midiIO) forward(ctx context.Context, name string, ring *midi.Ring, interval time.Duration) error {
	outs, err := m.drv.Outs()
	if err != nil {
		return fmt.Errorf("list MIDI outputs: %w", err)
	}
	out, err := findPort(outs, name)
	if err != nil {
		return err
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return fmt.Errorf("open %s: %w", out, err)
	}
	m.log.Info("forwarding MIDI to %s", out)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			ring.Drain(func(ev midi.Event) {
				msg, ok := midi.Encode(ev)
				if !ok {
					return
				}
				if err := send(msg); err != nil {
					m.log.Warn("MIDI output: %v", err)
				}
			})
		}
	}
}
