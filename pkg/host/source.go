package host

import (
	"math"
	"sync/atomic"
)

// Source produces the input the engine gates in real time.
type Source interface {
	// Fill overwrites every channel of buf with the next frames.
	Fill(buf [][]float32)
}

// Tone is a sine source. Frequency and amplitude may change while it plays.
type Tone struct {
	sampleRate float64
	freq       atomic.Uint64 // float64 bits
	amp        atomic.Uint64 // float64 bits
	phase      float64
}

// NewTone creates a sine at freq Hz with amplitude amp.
func NewTone(sampleRate, freq, amp float64) *Tone {
	t := &Tone{sampleRate: sampleRate}
	t.SetFrequency(freq)
	t.SetAmplitude(amp)
	return t
}

func (t *Tone) SetFrequency(freq float64) {
	t.freq.Store(math.Float64bits(freq))
}

func (t *Tone) SetAmplitude(amp float64) {
	t.amp.Store(math.Float64bits(amp))
}

// Fill writes the same sine to every channel.
func (t *Tone) Fill(buf [][]float32) {
	if len(buf) == 0 {
		return
	}
	inc := 2 * math.Pi * math.Float64frombits(t.freq.Load()) / t.sampleRate
	amp := math.Float64frombits(t.amp.Load())
	first := buf[0]
	for i := range first {
		first[i] = float32(amp * math.Sin(t.phase))
		t.phase += inc
		if t.phase >= 2*math.Pi {
			t.phase -= 2 * math.Pi
		}
	}
	for _, ch := range buf[1:] {
		copy(ch, first)
	}
}

// Buffer plays planar audio, optionally looping, then silence.
type Buffer struct {
	data [][]float32
	pos  int
	loop bool
}

// NewBuffer plays data from the start. data must not be empty.
func NewBuffer(data [][]float32, loop bool) *Buffer {
	return &Buffer{data: data, loop: loop}
}

// Done reports whether a non-looping buffer has played to the end.
func (b *Buffer) Done() bool {
	return !b.loop && b.pos >= b.frames()
}

func (b *Buffer) frames() int {
	if len(b.data) == 0 {
		return 0
	}
	return len(b.data[0])
}

// Fill copies the next frames; a mono buffer feeds every channel.
func (b *Buffer) Fill(buf [][]float32) {
	if len(buf) == 0 {
		return
	}
	total := b.frames()
	n := len(buf[0])
	for i := 0; i < n; {
		if b.pos >= total {
			if !b.loop || total == 0 {
				for _, ch := range buf {
					clear(ch[i:])
				}
				return
			}
			b.pos = 0
		}
		m := min(n-i, total-b.pos)
		for ch := range buf {
			src := b.data[min(ch, len(b.data)-1)]
			copy(buf[ch][i:i+m], src[b.pos:b.pos+m])
		}
		i += m
		b.pos += m
	}
}
