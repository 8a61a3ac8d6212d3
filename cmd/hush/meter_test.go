package main

import (
	"strings"
	"testing"

	"github.com/justyntemme/hush/pkg/hush"
)

func TestBar(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "...."},
		{0.5, "##.."},
		{1, "####"},
		{-3, "...."},
		{7, "####"},
	}
	for _, tt := range tests {
		if got := bar(tt.v, 4); got != tt.want {
			t.Errorf("bar(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestMeterLine(t *testing.T) {
	p := hush.New()
	line := meterLine(p, 1)
	if !strings.Contains(line, "0.0 dB") || !strings.Contains(line, "Any") || !strings.Contains(line, "Toggle") {
		t.Errorf("meterLine = %q", line)
	}
	if strings.Contains(line, "learning") {
		t.Errorf("meterLine shows learning: %q", line)
	}

	p.ToggleLearn()
	if line := meterLine(p, 0); !strings.Contains(line, "learning") || !strings.Contains(line, "-96.0 dB") {
		t.Errorf("meterLine = %q", line)
	}
}
