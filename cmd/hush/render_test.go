package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/justyntemme/hush/pkg/host"
)

// writeMIDI writes a format 0 file at 96 ticks per quarter and 120 bpm, so
// a tick is 250 samples at 48 kHz.
func writeMIDI(t *testing.T, track []byte) string {
	t.Helper()
	data := []byte{
		'M', 'T', 'h', 'd', 0, 0, 0, 6,
		0, 0, 0, 1, 0, 96,
		'M', 'T', 'r', 'k', 0, 0, 0, byte(len(track)),
	}
	data = append(data, track...)
	path := filepath.Join(t.TempDir(), "gate.mid")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunRender(t *testing.T) {
	midiPath := writeMIDI(t, []byte{
		0x06, 0x90, 60, 100, // tick 6: sample 1500
		0x04, 0x80, 60, 0, // tick 10: sample 2500
		0x00, 0xFF, 0x2F, 0x00,
	})
	out := filepath.Join(t.TempDir(), "out.wav")

	err := runRender([]string{
		"-tone", "1000", "-length", "100ms",
		"-midi", midiPath, "-out", out,
		"-mode", "down", "-attack", "0", "-release", "0",
		"-log-level", "off",
	})
	if err != nil {
		t.Fatal(err)
	}

	a, err := host.ReadWAV(out)
	if err != nil {
		t.Fatal(err)
	}
	if a.SampleRate != 48000 || a.Frames() != 4800 {
		t.Fatalf("got %d frames at %d Hz, want 4800 at 48000", a.Frames(), a.SampleRate)
	}

	loud := func(from, to int) bool {
		for _, v := range a.Data[0][from:to] {
			if v > 0.4 {
				return true
			}
		}
		return false
	}
	silent := func(from, to int) bool {
		for _, v := range a.Data[0][from:to] {
			if v != 0 {
				return false
			}
		}
		return true
	}
	if !silent(0, 1500) || !loud(1500, 2500) || !silent(2500, 4800) {
		t.Error("gate does not follow the note")
	}
}

func TestRunRenderTail(t *testing.T) {
	midiPath := writeMIDI(t, []byte{0x00, 0xFF, 0x2F, 0x00})
	out := filepath.Join(t.TempDir(), "out.wav")

	err := runRender([]string{
		"-tone", "440", "-length", "10ms", "-tail", "5ms",
		"-midi", midiPath, "-out", out, "-bits", "16", "-log-level", "off",
	})
	if err != nil {
		t.Fatal(err)
	}
	a, err := host.ReadWAV(out)
	if err != nil {
		t.Fatal(err)
	}
	if a.Frames() != 720 {
		t.Errorf("frames = %d, want 720", a.Frames())
	}
}

func TestRunRenderFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no input", []string{"-midi", "a.mid", "-out", "b.wav"}},
		{"both inputs", []string{"-in", "a.wav", "-tone", "100", "-midi", "a.mid", "-out", "b.wav"}},
		{"no midi", []string{"-tone", "100", "-out", "b.wav"}},
		{"no output", []string{"-tone", "100", "-midi", "a.mid"}},
		{"bad bits", []string{"-tone", "100", "-midi", "a.mid", "-out", "b.wav", "-bits", "12"}},
		{"missing midi", []string{"-tone", "100", "-midi", filepath.Join(t.TempDir(), "none.mid"), "-out", "b.wav", "-log-level", "off"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := runRender(tt.args); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestRunUnknownCommand(t *testing.T) {
	if err := run([]string{"dance"}); err == nil {
		t.Error("expected an error")
	}
	if err := run(nil); err == nil {
		t.Error("expected a usage error")
	}
}
