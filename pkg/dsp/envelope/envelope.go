// Package envelope provides the linear ADSR envelope that drives the note gate
// and the level meter used to display its output.
package envelope

import "math"

// msPerSecond converts a sample rate into milliseconds per sample.
const msPerSecond = 1000.0

// attackTolerance absorbs the rounding error summed over an attack, so an
// attack of exactly N samples peaks on sample N.
const attackTolerance = 1e-9

// Stage represents the current envelope stage
type Stage int

const (
	// StageIdle represents envelope idle state
	StageIdle Stage = iota
	// StageAttack represents envelope attack phase
	StageAttack
	// StageDecay represents envelope decay phase
	StageDecay
	// StageSustain represents envelope sustain phase
	StageSustain
	// StageRelease represents envelope release phase
	StageRelease
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	default:
		return "unknown"
	}
}

// Params holds the envelope configuration. Times are in milliseconds and a
// time of zero makes the stage instantaneous. SampleRate must be positive.
type Params struct {
	SampleRate float64
	AttackMs   float64
	DecayMs    float64
	Sustain    float64
	ReleaseMs  float64

	// GuardZeroDecay collapses a zero decay time straight to the sustain
	// level. Without it a zero decay with a zero sustain computes Inf*0 and
	// the envelope stays in the decay stage emitting NaN.
	GuardZeroDecay bool
}

// DefaultParams returns the power-on envelope settings for a sample rate.
func DefaultParams(sampleRate float64) Params {
	return Params{
		SampleRate: sampleRate,
		AttackMs:   0,
		DecayMs:    50,
		Sustain:    1,
		ReleaseMs:  0,
	}
}

// State is the complete envelope state between two samples.
type State struct {
	Stage Stage
	Value float64
	Gate  bool
}

// WithGate applies a gate change. A changed gate restarts the attack or the
// release stage from the current value; the value itself is never reset.
func (s State) WithGate(gate bool) State {
	if gate == s.Gate {
		return s
	}
	s.Gate = gate
	if gate {
		s.Stage = StageAttack
	} else {
		s.Stage = StageRelease
	}
	return s
}

// Advance moves the state forward by exactly one sample.
func Advance(s State, p Params) State {
	dt := msPerSecond / p.SampleRate

	switch s.Stage {
	case StageAttack:
		s.Value += dt / p.AttackMs
		if s.Value >= 1.0-attackTolerance {
			s.Value = 1.0
			s.Stage = StageDecay
		}

	case StageDecay:
		if p.GuardZeroDecay && p.DecayMs == 0 {
			s.Value = p.Sustain
			s.Stage = StageSustain
			break
		}
		s.Value -= dt / p.DecayMs * p.Sustain
		if s.Value <= p.Sustain {
			s.Value = p.Sustain
			s.Stage = StageSustain
		}

	case StageSustain:
		s.Value = p.Sustain

	case StageRelease:
		s.Value -= dt / p.ReleaseMs
		if s.Value <= 0.0 {
			s.Value = 0.0
			s.Stage = StageIdle
		}
	}

	return s
}

// Step is the full per-sample transition: the gate is applied first, then
// the state advances one sample.
func Step(s State, gate bool, p Params) State {
	return Advance(s.WithGate(gate), p)
}

// ADSR wraps Step with the mutable set-gate/update interface used by the
// audio loop.
type ADSR struct {
	params Params
	state  State
}

// New creates a new ADSR envelope
func New(sampleRate float64) *ADSR {
	return &ADSR{
		params: DefaultParams(sampleRate),
	}
}

// NewWithParams creates an envelope with explicit settings.
func NewWithParams(p Params) *ADSR {
	return &ADSR{params: p}
}

// SetSampleRate sets the processing sample rate in Hz.
func (e *ADSR) SetSampleRate(sampleRate float64) {
	e.params.SampleRate = sampleRate
}

// SetADSR sets all parameters at once
func (e *ADSR) SetADSR(attack, decay, sustain, release float64) {
	e.params.AttackMs = attack
	e.params.DecayMs = decay
	e.params.Sustain = sustain
	e.params.ReleaseMs = release
}

// SetGuardZeroDecay toggles the zero-decay NaN guard.
func (e *ADSR) SetGuardZeroDecay(on bool) {
	e.params.GuardZeroDecay = on
}

// SetParams replaces the whole configuration.
func (e *ADSR) SetParams(p Params) {
	e.params = p
}

// Params returns the current configuration.
func (e *ADSR) Params() Params {
	return e.params
}

// SetGate opens or closes the gate.
func (e *ADSR) SetGate(on bool) {
	e.state = e.state.WithGate(on)
}

// Update advances one sample and returns the new value.
func (e *ADSR) Update() float64 {
	e.state = Advance(e.state, e.params)
	return e.state.Value
}

// Value returns the most recent envelope value.
func (e *ADSR) Value() float64 {
	return e.state.Value
}

// GetStage returns the current envelope stage
func (e *ADSR) GetStage() Stage {
	return e.state.Stage
}

// Gate returns the last gate value.
func (e *ADSR) Gate() bool {
	return e.state.Gate
}

// State returns a snapshot of the envelope state.
func (e *ADSR) State() State {
	return e.state
}

// IsActive returns true if the envelope is generating output
func (e *ADSR) IsActive() bool {
	return e.state.Stage != StageIdle
}

// Reset immediately returns the envelope to idle
func (e *ADSR) Reset() {
	e.state = State{}
}

// TailSamples returns the number of samples a full release from 1.0 takes.
func (p Params) TailSamples() int32 {
	if p.ReleaseMs <= 0 || p.SampleRate <= 0 {
		return 0
	}
	return int32(math.Ceil(p.ReleaseMs * p.SampleRate / msPerSecond))
}
