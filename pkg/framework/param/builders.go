package param

import (
	"fmt"
	"math"
	"strings"
)

// ChoiceOption represents a single choice in a list parameter
type ChoiceOption struct {
	Value   float64
	Name    string
	Aliases []string
}

// Choice creates a parameter builder for a multiple choice parameter. Option
// values must be consecutive and ascending.
func Choice(id uint32, name string, options []ChoiceOption) *Builder {
	formatter := func(value float64) string {
		value = math.Round(value)
		for _, opt := range options {
			if opt.Value == value {
				return opt.Name
			}
		}
		return "Unknown"
	}

	parser := func(str string) (float64, error) {
		str = strings.TrimSpace(str)
		for _, opt := range options {
			if strings.EqualFold(str, opt.Name) {
				return opt.Value, nil
			}
			for _, alias := range opt.Aliases {
				if strings.EqualFold(str, alias) {
					return opt.Value, nil
				}
			}
		}
		return 0, fmt.Errorf("unknown option: %s", str)
	}

	minVal, maxVal := 0.0, 0.0
	if len(options) > 0 {
		minVal = options[0].Value
		maxVal = options[len(options)-1].Value
	}

	b := New(id, name).
		Range(minVal, maxVal).
		Steps(int32(len(options)-1)).
		Formatter(formatter, parser)
	b.param.Flags |= IsList
	if len(options) > 0 {
		b.Default(options[0].Value)
	}
	return b
}

// TimeParameter creates a time parameter (ms or s depending on range)
func TimeParameter(id uint32, name string, minMs, maxMs, defaultMs float64) *Builder {
	return New(id, name).
		Range(minMs, maxMs).
		Default(defaultMs).
		Unit("ms").
		Formatter(TimeFormatter, TimeParser)
}

// LevelParameter creates a linear 0-1 level shown as a percentage.
func LevelParameter(id uint32, name string, defaultLevel float64) *Builder {
	return New(id, name).
		Range(0, 1).
		Default(defaultLevel).
		Formatter(LevelFormatter, LevelParser)
}

// KeyParameter creates a MIDI key selector from -1 (any key) to 127.
func KeyParameter(id uint32, name string) *Builder {
	b := New(id, name).
		Range(-1, 127).
		Steps(128).
		Default(-1).
		Formatter(KeyFormatter, KeyParser)
	b.param.Flags |= IsList
	return b
}

// MeterParameter creates a read-only 0-1 display value.
func MeterParameter(id uint32, name string) *Builder {
	return New(id, name).
		Range(0, 1).
		Default(0).
		Formatter(func(v float64) string {
			return fmt.Sprintf("%.3f", v)
		}, nil).
		ReadOnly()
}

// Helper function to parse float with error handling
func parseFloat(s string) (float64, error) {
	var value float64
	_, err := fmt.Sscanf(s, "%f", &value)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", s)
	}
	return value, nil
}
