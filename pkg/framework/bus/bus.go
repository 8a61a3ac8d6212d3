// Package bus describes the audio and event ports a processor exposes.
package bus

import "fmt"

// MediaType represents the type of bus
type MediaType int32

const (
	// MediaTypeAudio represents audio bus type
	MediaTypeAudio MediaType = 0
	// MediaTypeEvent represents event/MIDI bus type
	MediaTypeEvent MediaType = 1
)

// Direction represents the bus direction
type Direction int32

const (
	// DirectionInput represents input bus
	DirectionInput Direction = 0
	// DirectionOutput represents output bus
	DirectionOutput Direction = 1
)

// Type represents the bus type
type Type int32

const (
	// TypeMain represents main bus
	TypeMain Type = 0
	// TypeAux represents auxiliary bus
	TypeAux Type = 1
)

// Info contains bus configuration
type Info struct {
	MediaType    MediaType
	Direction    Direction
	ChannelCount int32
	Name         string
	BusType      Type
	IsActive     bool
}

// Configuration manages audio and event buses
type Configuration struct {
	audioBuses []Info
	eventBuses []Info
}

// NewConfiguration creates a main audio input and output with the same
// channel count.
func NewConfiguration(channels int32) *Configuration {
	name := layoutName(channels)
	return &Configuration{
		audioBuses: []Info{
			{
				MediaType:    MediaTypeAudio,
				Direction:    DirectionInput,
				ChannelCount: channels,
				Name:         name + " In",
				BusType:      TypeMain,
				IsActive:     true,
			},
			{
				MediaType:    MediaTypeAudio,
				Direction:    DirectionOutput,
				ChannelCount: channels,
				Name:         name + " Out",
				BusType:      TypeMain,
				IsActive:     true,
			},
		},
	}
}

// NewStereoConfiguration creates a standard stereo I/O configuration
func NewStereoConfiguration() *Configuration {
	return NewConfiguration(2)
}

// NewGateConfiguration creates an audio path of the given width plus a MIDI
// input that drives the gate and a MIDI output for pass-through events.
func NewGateConfiguration(channels int32) *Configuration {
	c := NewConfiguration(channels)
	c.AddEventBus(DirectionInput, "MIDI In")
	c.AddEventBus(DirectionOutput, "MIDI Out")
	return c
}

func layoutName(channels int32) string {
	switch channels {
	case 1:
		return "Mono"
	case 2:
		return "Stereo"
	}
	return fmt.Sprintf("%d ch", channels)
}

// GetBusCount returns the number of buses for a given type and direction
func (c *Configuration) GetBusCount(mediaType MediaType, direction Direction) int32 {
	count := int32(0)
	for _, bus := range c.buses(mediaType) {
		if bus.Direction == direction {
			count++
		}
	}
	return count
}

// GetBusInfo returns information about a specific bus
func (c *Configuration) GetBusInfo(mediaType MediaType, direction Direction, index int32) *Info {
	buses := c.buses(mediaType)
	busIndex := int32(0)
	for i := range buses {
		if buses[i].Direction == direction {
			if busIndex == index {
				return &buses[i]
			}
			busIndex++
		}
	}
	return nil
}

// MainChannels returns the channel count of the main audio bus in direction,
// or 0 if there is none.
func (c *Configuration) MainChannels(direction Direction) int32 {
	for i := range c.GetBusCount(MediaTypeAudio, direction) {
		b := c.GetBusInfo(MediaTypeAudio, direction, i)
		if b.BusType == TypeMain && b.IsActive {
			return b.ChannelCount
		}
	}
	return 0
}

// AcceptsEvents reports whether an active event input bus exists.
func (c *Configuration) AcceptsEvents() bool {
	for i := range c.GetBusCount(MediaTypeEvent, DirectionInput) {
		if c.GetBusInfo(MediaTypeEvent, DirectionInput, i).IsActive {
			return true
		}
	}
	return false
}

// AddEventBus adds an event bus (for MIDI input)
func (c *Configuration) AddEventBus(direction Direction, name string) {
	c.eventBuses = append(c.eventBuses, Info{
		MediaType:    MediaTypeEvent,
		Direction:    direction,
		ChannelCount: 1,
		Name:         name,
		BusType:      TypeMain,
		IsActive:     true,
	})
}

func (c *Configuration) buses(mediaType MediaType) []Info {
	if mediaType == MediaTypeEvent {
		return c.eventBuses
	}
	return c.audioBuses
}
