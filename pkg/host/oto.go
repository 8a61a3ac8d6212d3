package host

import (
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Speaker plays an engine on the default output device through oto. oto
// allows one context per process, so open at most one Speaker.
type Speaker struct {
	ctx    *oto.Context
	player *oto.Player
}

// OpenSpeaker starts pulling audio from e. bufferSize trades latency for
// robustness; zero picks oto's default.
func OpenSpeaker(e *Engine, bufferSize time.Duration) (*Speaker, error) {
	cfg := e.Config()
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(cfg.SampleRate),
		ChannelCount: cfg.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("open audio output: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(e)
	player.Play()
	return &Speaker{ctx: ctx, player: player}, nil
}

// Err returns the error that stopped playback, if any.
func (s *Speaker) Err() error {
	return s.player.Err()
}

// Close stops playback.
func (s *Speaker) Close() error {
	s.player.Pause()
	return s.player.Close()
}
