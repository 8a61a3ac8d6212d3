package envelope

import (
	"math"
)

// MeterMode selects what a Meter follows.
type MeterMode int

const (
	// MeterPeak follows the absolute sample value.
	MeterPeak MeterMode = iota
	// MeterRMS follows the RMS over a short sliding window.
	MeterRMS
)

// MinDB is the floor reported by LevelDB.
const MinDB = -96.0

// Meter follows the level of a signal for display. It rises to a new peak
// at once, holds it, then falls with an exponential release.
type Meter struct {
	sampleRate float64
	mode       MeterMode

	release     float64 // seconds
	releaseCoef float64
	holdSamples int

	level    float64
	holdLeft int

	// RMS window
	window []float64
	index  int
	sum    float64
}

// NewMeter creates a meter with a 300ms release, a 50ms hold and, in RMS
// mode, a 3ms window.
func NewMeter(sampleRate float64, mode MeterMode) *Meter {
	m := &Meter{
		sampleRate: sampleRate,
		mode:       mode,
		release:    0.300,
	}
	m.SetHold(0.050)
	m.SetRMSWindow(3)
	m.updateCoefficients()
	return m
}

// SetHold sets how long a peak is held before it starts to fall.
func (m *Meter) SetHold(seconds float64) {
	m.holdSamples = int(math.Max(0, seconds) * m.sampleRate)
}

// SetRMSWindow sets the RMS window length. It allocates and must not be
// called from the audio thread.
func (m *Meter) SetRMSWindow(ms float64) {
	n := max(int(m.sampleRate*ms/1000.0), 1)
	m.window = make([]float64, n)
	m.index = 0
	m.sum = 0
}

func (m *Meter) updateCoefficients() {
	m.releaseCoef = 1.0 - math.Exp(-1.0/(m.release*m.sampleRate))
}

// Detect feeds one sample and returns the level.
func (m *Meter) Detect(input float32) float32 {
	x := float64(input)
	if math.IsNaN(x) || math.IsInf(x, 0) {
		x = 0
	}

	var in float64
	switch m.mode {
	case MeterRMS:
		sq := x * x
		m.sum += sq - m.window[m.index]
		m.window[m.index] = sq
		m.index = (m.index + 1) % len(m.window)
		in = math.Sqrt(math.Max(m.sum, 0) / float64(len(m.window)))
	default:
		in = math.Abs(x)
	}

	switch {
	case in >= m.level:
		m.level = in
		m.holdLeft = m.holdSamples
	case m.holdLeft > 0:
		m.holdLeft--
	default:
		m.level += (in - m.level) * m.releaseCoef
	}
	return float32(m.level)
}

// ProcessBlock feeds the first n frames of every channel, taking the loudest
// channel on each frame, and returns the level.
func (m *Meter) ProcessBlock(channels [][]float32, n int) float32 {
	for i := 0; i < n; i++ {
		var peak float32
		for _, ch := range channels {
			if i < len(ch) {
				v := ch[i]
				if v < 0 {
					v = -v
				}
				peak = max(peak, v)
			}
		}
		m.Detect(peak)
	}
	return float32(m.level)
}

// Level returns the current level.
func (m *Meter) Level() float32 {
	return float32(m.level)
}

// LinearToDB converts a linear level to decibels, never below MinDB.
func LinearToDB(level float64) float64 {
	if level <= 0 {
		return MinDB
	}
	return math.Max(20.0*math.Log10(level), MinDB)
}

func (m *Meter) Reset() {
	m.level = 0
	m.holdLeft = 0
	clear(m.window)
	m.sum = 0
	m.index = 0
}
