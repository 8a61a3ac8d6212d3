package debug

import (
	"fmt"
	"math"
)

// BufferStats summarises a buffer of samples.
type BufferStats struct {
	Samples        int
	Peak           float32
	RMS            float32
	DC             float32
	ClippedSamples int
	NaNCount       int
	InfCount       int
}

// Thresholds used by Check.
const (
	ClipThreshold    = 0.999
	DCThreshold      = 0.01
	SilenceThreshold = 1e-4
)

// Silent reports whether the buffer RMS is below SilenceThreshold.
func (s BufferStats) Silent() bool {
	return s.RMS < SilenceThreshold
}

// Finite reports whether every sample was a number.
func (s BufferStats) Finite() bool {
	return s.NaNCount == 0 && s.InfCount == 0
}

func (s BufferStats) String() string {
	return fmt.Sprintf("samples=%d peak=%.3f rms=%.3f dc=%.4f clipped=%d nan=%d inf=%d",
		s.Samples, s.Peak, s.RMS, s.DC, s.ClippedSamples, s.NaNCount, s.InfCount)
}

// Analyze measures buffer. NaN and infinite samples are counted and left
// out of the level statistics.
func Analyze(buffer []float32) BufferStats {
	st := BufferStats{Samples: len(buffer)}
	var sum, sumSquares float64
	n := 0
	for _, v := range buffer {
		f := float64(v)
		switch {
		case math.IsNaN(f):
			st.NaNCount++
			continue
		case math.IsInf(f, 0):
			st.InfCount++
			continue
		}
		a := float32(math.Abs(f))
		st.Peak = max(st.Peak, a)
		if a >= ClipThreshold {
			st.ClippedSamples++
		}
		sum += f
		sumSquares += f * f
		n++
	}
	if n > 0 {
		st.RMS = float32(math.Sqrt(sumSquares / float64(n)))
		st.DC = float32(sum / float64(n))
	}
	return st
}

// Check returns one message per problem found in buffer, prefixed by name.
func Check(buffer []float32, name string) []string {
	st := Analyze(buffer)
	var issues []string
	if !st.Finite() {
		issues = append(issues, fmt.Sprintf("%s: %d NaN and %d infinite samples", name, st.NaNCount, st.InfCount))
	}
	if st.ClippedSamples > 0 {
		issues = append(issues, fmt.Sprintf("%s: %d clipped samples", name, st.ClippedSamples))
	}
	if math.Abs(float64(st.DC)) > DCThreshold {
		issues = append(issues, fmt.Sprintf("%s: DC offset %.3f", name, st.DC))
	}
	return issues
}

// LogBufferStats writes the statistics of buffer at info level and each
// problem Check finds as a warning.
func (l *Logger) LogBufferStats(buffer []float32, name string) {
	l.Info("%s: %s", name, Analyze(buffer))
	for _, issue := range Check(buffer, name) {
		l.Warn("%s", issue)
	}
}
