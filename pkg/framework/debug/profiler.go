package debug

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Profiler times named sections such as loading and rendering a file. It
// takes a lock per measurement and does not belong on the audio thread; use
// BlockProfiler there.
type Profiler struct {
	mu           sync.RWMutex
	measurements map[string]*Measurement
	enabled      atomic.Bool
}

// Measurement holds timing statistics for a profiled section.
type Measurement struct {
	Name  string
	Count uint64
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
	Last  time.Duration
}

func NewProfiler() *Profiler {
	p := &Profiler{
		measurements: make(map[string]*Measurement),
	}
	p.enabled.Store(true)
	return p
}

func (p *Profiler) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

func (p *Profiler) IsEnabled() bool {
	return p.enabled.Load()
}

// Start begins timing name and returns the function that stops it.
func (p *Profiler) Start(name string) func() {
	if !p.enabled.Load() {
		return func() {}
	}
	start := time.Now()
	return func() {
		p.record(name, time.Since(start))
	}
}

// Time runs fn and records how long it took under name.
func (p *Profiler) Time(name string, fn func()) {
	stop := p.Start(name)
	defer stop()
	fn()
}

func (p *Profiler) record(name string, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, ok := p.measurements[name]
	if !ok {
		m = &Measurement{Name: name, Min: elapsed, Max: elapsed}
		p.measurements[name] = m
	}
	m.Count++
	m.Total += elapsed
	m.Last = elapsed
	m.Min = min(m.Min, elapsed)
	m.Max = max(m.Max, elapsed)
}

// Measurement returns a copy of the statistics for name.
func (p *Profiler) Measurement(name string) (Measurement, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	m, ok := p.measurements[name]
	if !ok {
		return Measurement{}, false
	}
	return *m, true
}

// Measurements returns copies of all statistics ordered by name.
func (p *Profiler) Measurements() []Measurement {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Measurement, 0, len(p.measurements))
	for _, m := range p.measurements {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.measurements = make(map[string]*Measurement)
}

// Report formats one line per section.
func (p *Profiler) Report() string {
	ms := p.Measurements()
	if len(ms) == 0 {
		return "no measurements recorded"
	}
	var sb strings.Builder
	for _, m := range ms {
		fmt.Fprintf(&sb, "%s: count=%d total=%v avg=%v min=%v max=%v\n",
			m.Name, m.Count, m.Total, m.Average(), m.Min, m.Max)
	}
	return sb.String()
}

// Average returns the mean duration of the section.
func (m Measurement) Average() time.Duration {
	if m.Count == 0 {
		return 0
	}
	return m.Total / time.Duration(m.Count)
}

// BlockProfiler measures the time spent processing audio blocks against the
// real time those blocks represent. Begin and End only touch atomics, so
// the audio callback can call them while another goroutine reads Load.
type BlockProfiler struct {
	sampleRate atomic.Uint64 // Hz
	blocks     atomic.Uint64
	frames     atomic.Uint64
	busyNanos  atomic.Uint64
	lastNanos  atomic.Uint64
	peakLoad   atomic.Uint64 // load * 1e4
	overruns   atomic.Uint64
}

func NewBlockProfiler(sampleRate float64) *BlockProfiler {
	b := &BlockProfiler{}
	b.SetSampleRate(sampleRate)
	return b
}

func (b *BlockProfiler) SetSampleRate(sampleRate float64) {
	b.sampleRate.Store(uint64(sampleRate))
}

// Begin marks the start of a block.
func (b *BlockProfiler) Begin() time.Time {
	return time.Now()
}

// End records a block of frames that started at start. A block that took
// longer than its own duration counts as an overrun.
func (b *BlockProfiler) End(start time.Time, frames int) {
	busy := time.Since(start)
	b.blocks.Add(1)
	b.frames.Add(uint64(frames))
	b.busyNanos.Add(uint64(busy))
	b.lastNanos.Store(uint64(busy))

	budget := b.duration(uint64(frames))
	if budget <= 0 {
		return
	}
	load := uint64(float64(busy) / float64(budget) * 1e4)
	for {
		peak := b.peakLoad.Load()
		if load <= peak || b.peakLoad.CompareAndSwap(peak, load) {
			break
		}
	}
	if busy > budget {
		b.overruns.Add(1)
	}
}

func (b *BlockProfiler) duration(frames uint64) time.Duration {
	sr := b.sampleRate.Load()
	if sr == 0 {
		return 0
	}
	return time.Duration(frames * uint64(time.Second) / sr)
}

// Load returns the fraction of real time spent processing since the last
// Reset, 1.0 meaning all of it.
func (b *BlockProfiler) Load() float64 {
	budget := b.duration(b.frames.Load())
	if budget <= 0 {
		return 0
	}
	return float64(b.busyNanos.Load()) / float64(budget)
}

// PeakLoad returns the highest single-block load.
func (b *BlockProfiler) PeakLoad() float64 {
	return float64(b.peakLoad.Load()) / 1e4
}

func (b *BlockProfiler) Blocks() uint64 {
	return b.blocks.Load()
}

func (b *BlockProfiler) Overruns() uint64 {
	return b.overruns.Load()
}

func (b *BlockProfiler) Last() time.Duration {
	return time.Duration(b.lastNanos.Load())
}

// Reset clears the counters but keeps the sample rate.
func (b *BlockProfiler) Reset() {
	b.blocks.Store(0)
	b.frames.Store(0)
	b.busyNanos.Store(0)
	b.lastNanos.Store(0)
	b.peakLoad.Store(0)
	b.overruns.Store(0)
}

// String summarises the counters for a status line.
func (b *BlockProfiler) String() string {
	return fmt.Sprintf("blocks=%d load=%.1f%% peak=%.1f%% overruns=%d",
		b.Blocks(), b.Load()*100, b.PeakLoad()*100, b.Overruns())
}
