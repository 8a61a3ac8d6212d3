package param

import (
	"math"
	"strconv"
	"strings"
	"sync/atomic"
)

// Parameter is a named value shared between the control and audio threads.
// The normalized value is stored atomically; everything else is fixed after
// Build.
type Parameter struct {
	ID           uint32
	Name         string
	ShortName    string
	Unit         string
	Min          float64
	Max          float64
	DefaultValue float64
	StepCount    int32
	Flags        uint32

	// Normalized value as float64 bits
	value atomic.Uint64

	formatFunc func(float64) string
	parseFunc  func(string) (float64, error)
}

// Parameter flags.
const (
	CanAutomate uint32 = 1 << 0
	IsReadOnly  uint32 = 1 << 1
	IsList      uint32 = 1 << 3
)

// GetValue returns the current normalized value (0-1)
func (p *Parameter) GetValue() float64 {
	return math.Float64frombits(p.value.Load())
}

// SetValue sets the normalized value, clamped to 0-1 and snapped to the
// nearest step for discrete parameters.
func (p *Parameter) SetValue(value float64) {
	if value < 0 || math.IsNaN(value) {
		value = 0
	} else if value > 1 {
		value = 1
	}
	if p.StepCount > 0 {
		value = math.Round(value*float64(p.StepCount)) / float64(p.StepCount)
	}
	p.value.Store(math.Float64bits(value))
}

// GetPlainValue returns the current value in plain units.
func (p *Parameter) GetPlainValue() float64 {
	return p.Denormalize(p.GetValue())
}

// SetPlainValue sets the value in plain units.
func (p *Parameter) SetPlainValue(plain float64) {
	p.SetValue(p.Normalize(plain))
}

// Index returns the plain value of a discrete parameter as an integer.
func (p *Parameter) Index() int {
	return int(math.Round(p.GetPlainValue()))
}

// Reset restores the default value.
func (p *Parameter) Reset() {
	p.SetValue(p.DefaultValue)
}

// FormatValue formats a normalized value in plain units. Discrete
// parameters without a formatter print as integers.
func (p *Parameter) FormatValue(normalized float64) string {
	plain := p.Denormalize(normalized)
	switch {
	case p.formatFunc != nil:
		return p.formatFunc(plain)
	case p.StepCount > 0:
		return strconv.FormatFloat(plain, 'f', 0, 64)
	}
	return strconv.FormatFloat(plain, 'f', 2, 64)
}

// String formats the current value.
func (p *Parameter) String() string {
	return p.FormatValue(p.GetValue())
}

// ParseValue parses text in plain units and returns it normalized.
func (p *Parameter) ParseValue(text string) (float64, error) {
	parse := p.parseFunc
	if parse == nil {
		parse = parseNumber
	}
	plain, err := parse(text)
	if err != nil {
		return 0, err
	}
	return p.Normalize(plain), nil
}

func parseNumber(text string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(text), 64)
}

// Normalize maps a plain value into 0-1, clamping out-of-range input.
// An empty range normalizes to 0.
func (p *Parameter) Normalize(plain float64) float64 {
	span := p.Max - p.Min
	if !(span > 0) {
		return 0
	}
	return max(0, min(1, (plain-p.Min)/span))
}

// Denormalize maps a 0-1 value back into the plain range.
func (p *Parameter) Denormalize(normalized float64) float64 {
	return p.Min + normalized*(p.Max-p.Min)
}
