package host

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	wav "github.com/youpy/go-wav"
)

// Audio is planar PCM at a fixed sample rate.
type Audio struct {
	SampleRate int
	Data       [][]float32
}

// Frames returns the length in frames.
func (a *Audio) Frames() int {
	if len(a.Data) == 0 {
		return 0
	}
	return len(a.Data[0])
}

// Channels returns the channel count.
func (a *Audio) Channels() int {
	return len(a.Data)
}

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
	readChunk        = 4096
)

var errTooManyChannels = errors.New("at most 2 channels are supported")

// ReadWAV decodes a 16, 24 or 32 bit integer PCM WAV file of one or two
// channels.
func ReadWAV(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := wav.NewReader(f)
	format, err := r.Format()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if format.AudioFormat != formatPCM && format.AudioFormat != formatExtensible {
		return nil, fmt.Errorf("read %s: unsupported audio format %d", path, format.AudioFormat)
	}
	channels := int(format.NumChannels)
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("read %s: %w, got %d", path, errTooManyChannels, channels)
	}
	bits := int(format.BitsPerSample)
	if bits != 16 && bits != 24 && bits != 32 {
		return nil, fmt.Errorf("read %s: unsupported bit depth %d", path, bits)
	}
	scale := 1 / float64(int64(1)<<(bits-1))

	a := &Audio{
		SampleRate: int(format.SampleRate),
		Data:       make([][]float32, channels),
	}
	for {
		samples, err := r.ReadSamples(readChunk)
		for _, s := range samples {
			for ch := range a.Data {
				a.Data[ch] = append(a.Data[ch], float32(float64(s.Values[ch])*scale))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	return a, nil
}

// WriteWAV encodes a as signed PCM with 16 or 24 bits per sample. Samples
// are clamped to [-1, 1]; NaN is written as silence.
func WriteWAV(path string, a *Audio, bits int) (err error) {
	if bits != 16 && bits != 24 {
		return fmt.Errorf("write %s: unsupported bit depth %d", path, bits)
	}
	if a.Channels() < 1 || a.Channels() > 2 {
		return fmt.Errorf("write %s: %w, got %d", path, errTooManyChannels, a.Channels())
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	bw := bufio.NewWriter(f)

	frames := a.Frames()
	w := wav.NewWriter(bw, uint32(frames), uint16(a.Channels()), uint32(a.SampleRate), uint16(bits))
	scale := float64(int(1)<<(bits-1) - 1)

	chunk := make([]wav.Sample, 0, readChunk)
	for i := 0; i < frames; i++ {
		var s wav.Sample
		for ch := range a.Data {
			s.Values[ch] = quantize(a.Data[ch][i], scale)
		}
		chunk = append(chunk, s)
		if len(chunk) == cap(chunk) {
			if err := w.WriteSamples(chunk); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			chunk = chunk[:0]
		}
	}
	if len(chunk) > 0 {
		if err := w.WriteSamples(chunk); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return bw.Flush()
}

func quantize(v float32, scale float64) int {
	x := float64(v)
	if math.IsNaN(x) {
		return 0
	}
	x = math.Max(-1, math.Min(1, x))
	return int(math.Round(x * scale))
}
