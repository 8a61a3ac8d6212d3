package host

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/justyntemme/hush/pkg/midi"
)

// RenderStats describes an offline render.
type RenderStats struct {
	Frames int
	Events int
	// Late events lie past the end of the rendered audio.
	Late int
	// Dropped events did not fit into a block's event queue or the
	// processor's note queue.
	Dropped int
}

// Render runs in through the engine's processor with events placed at their
// absolute sample positions, followed by tail frames of silence so releases
// can finish. Each event lands in the block containing its position at the
// matching offset, so the result does not depend on the block size. Events
// must be sorted by position; events before 0 are applied at 0.
func Render(e *Engine, in [][]float32, events []midi.Timed, tail int) ([][]float32, RenderStats, error) {
	if len(in) == 0 {
		return nil, RenderStats{}, fmt.Errorf("render: no input channels")
	}
	if tail < 0 {
		return nil, RenderStats{}, fmt.Errorf("render: negative tail %d", tail)
	}
	if !slices.IsSortedFunc(events, func(a, b midi.Timed) int {
		return cmp.Compare(a.Sample, b.Sample)
	}) {
		return nil, RenderStats{}, fmt.Errorf("render: events are not sorted by position")
	}

	cfg := e.Config()
	frames := len(in[0])
	total := frames + tail

	src := planar(cfg.Channels, total)
	for ch := range src {
		copy(src[ch], in[min(ch, len(in)-1)])
	}
	out := planar(cfg.Channels, total)

	stats := RenderStats{Frames: total}
	dropped := e.Stats().droppedEvents()
	next := 0
	for pos := 0; pos < total; pos += cfg.BlockSize {
		n := min(cfg.BlockSize, total-pos)
		end := int64(pos + n)
		for ; next < len(events) && events[next].Sample < end; next++ {
			off := max(events[next].Sample-int64(pos), 0)
			e.AddEvent(midi.WithOffset(events[next].Event, int32(off)))
			stats.Events++
		}
		e.Process(window(src, pos, n), window(out, pos, n), n)
	}
	stats.Late = len(events) - next
	stats.Dropped = int(e.Stats().droppedEvents() - dropped)
	return out, stats, nil
}

func (s Stats) droppedEvents() uint64 {
	return s.DroppedInput + s.DroppedNotes
}

func window(buf [][]float32, pos, n int) [][]float32 {
	w := make([][]float32, len(buf))
	for ch := range buf {
		w[ch] = buf[ch][pos : pos+n]
	}
	return w
}
