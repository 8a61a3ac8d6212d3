package host

import (
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Stream gates live input into live output through portaudio.
type Stream struct {
	stream *portaudio.Stream
}

// OpenDuplex opens the default input and output devices with inChannels
// captured channels and starts calling e.Duplex once per buffer of the
// engine's block size.
func OpenDuplex(e *Engine, inChannels int) (*Stream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}
	cfg := e.Config()
	stream, err := portaudio.OpenDefaultStream(inChannels, cfg.Channels, cfg.SampleRate, cfg.BlockSize, e.Duplex)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open duplex stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("start duplex stream: %w", err)
	}
	return &Stream{stream: stream}, nil
}

// Close stops the stream and releases portaudio.
func (s *Stream) Close() error {
	return errors.Join(
		s.stream.Stop(),
		s.stream.Close(),
		portaudio.Terminate(),
	)
}
