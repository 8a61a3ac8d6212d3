package midi

import (
	"fmt"
	"math"
	"sort"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Timed is an event at an absolute sample position of a timeline.
type Timed struct {
	Sample int64
	Event  Event
}

const metaStatus = 0xFF

// LoadSMF reads every track of a Standard MIDI File and returns its channel
// and real-time events at absolute sample positions for sampleRate, ordered
// by position. Events on the same sample keep file order. Meta events are
// skipped; tempo changes are already applied to the timing.
func LoadSMF(path string, sampleRate float64, tr Translator) ([]Timed, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("load %s: invalid sample rate %v", path, sampleRate)
	}

	var out []Timed
	err := smf.ReadTracks(path).Do(func(ev smf.TrackEvent) {
		if len(ev.Message) == 0 || ev.Message[0] == metaStatus {
			return
		}
		e, ok := tr.Translate(gomidi.Message(ev.Message), 0)
		if !ok {
			return
		}
		out = append(out, Timed{
			Sample: MicrosToSamples(ev.AbsMicroSeconds, sampleRate),
			Event:  e,
		})
	}).Error()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Sample < out[j].Sample
	})
	return out, nil
}

// MicrosToSamples converts a time in microseconds to the nearest sample.
func MicrosToSamples(us int64, sampleRate float64) int64 {
	return int64(math.Round(float64(us) * sampleRate / 1e6))
}
