package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/justyntemme/hush/pkg/dsp/envelope"
	"github.com/justyntemme/hush/pkg/host"
	"github.com/justyntemme/hush/pkg/hush"
)

const (
	meterWidth    = 30
	meterInterval = 50 * time.Millisecond
)

// isTerminal reports whether f is an interactive terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// bar draws v in [0, 1] as width cells.
func bar(v float64, width int) string {
	n := int(v*float64(width) + 0.5)
	n = max(0, min(width, n))
	return strings.Repeat("#", n) + strings.Repeat(".", width-n)
}

// meterLine formats the gate state and output level.
func meterLine(proc *hush.Processor, level float32) string {
	db := envelope.LinearToDB(float64(level))
	// Map -60..0 dB onto the bar.
	pos := (db + 60) / 60
	learn := ""
	if proc.Filter().Learning() {
		learn = " learning"
	}
	params := proc.GetParameters()
	return fmt.Sprintf("gate [%s] out [%s] %6.1f dB  key %-4s %s%s",
		bar(proc.Gain(), 10), bar(pos, meterWidth), db,
		params.Get(hush.ParamKey), params.Get(hush.ParamType), learn)
}

// runMeter redraws a status line on w until ctx is done.
func runMeter(ctx context.Context, w io.Writer, proc *hush.Processor, eng *host.Engine) error {
	ticker := time.NewTicker(meterInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(w)
			return nil
		case <-ticker.C:
			fmt.Fprintf(w, "\r%s\x1b[K", meterLine(proc, eng.Level()))
		}
	}
}
