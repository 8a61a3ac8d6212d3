package hush

import (
	"fmt"
	"strings"

	"github.com/justyntemme/hush/pkg/dsp/gate"
	"github.com/justyntemme/hush/pkg/framework/param"
)

// Parameter IDs. The order is part of the preset format.
const (
	ParamKey uint32 = iota
	ParamType
	ParamAttack
	ParamDecay
	ParamSustain
	ParamRelease
	ParamGateLED  // Read-only gain of the last processed sample
	ParamEnvelope // Read-only envelope value of the last processed sample
)

// Defaults of a fresh instance.
const (
	DefaultAttackMs  = 30.0
	DefaultDecayMs   = 0.0
	DefaultSustain   = 1.0
	DefaultReleaseMs = 30.0
	DefaultMode      = gate.ModeToggle
	MaxTimeMs        = 1000.0
)

var modeOptions = []param.ChoiceOption{
	{Value: float64(gate.ModeUp), Name: "Up", Aliases: []string{"mute"}},
	{Value: float64(gate.ModeToggle), Name: "Toggle"},
	{Value: float64(gate.ModeDown), Name: "Down", Aliases: []string{"open"}},
}

// ParseMode reads a gate mode by name or by one of the Type parameter's
// aliases.
func ParseMode(text string) (gate.Mode, error) {
	if m, err := gate.ParseMode(text); err == nil {
		return m, nil
	}
	text = strings.TrimSpace(text)
	for _, opt := range modeOptions {
		for _, alias := range opt.Aliases {
			if strings.EqualFold(text, alias) {
				return gate.Mode(opt.Value), nil
			}
		}
	}
	return gate.ModeUp, fmt.Errorf("unknown gate mode %q: want up, toggle or down", text)
}

func (p *Processor) initializeParameters() {
	params := p.Parameters()
	err := params.Add(
		param.KeyParameter(ParamKey, "Key").
			ShortName("key").
			Build(),

		param.Choice(ParamType, "Type", modeOptions).
			ShortName("mode").
			Default(float64(DefaultMode)).
			Build(),

		param.TimeParameter(ParamAttack, "Attack", 0, MaxTimeMs, DefaultAttackMs).
			ShortName("a").
			Build(),

		param.TimeParameter(ParamDecay, "Decay", 0, MaxTimeMs, DefaultDecayMs).
			ShortName("d").
			Build(),

		param.LevelParameter(ParamSustain, "Sustain", DefaultSustain).
			ShortName("s").
			Build(),

		param.TimeParameter(ParamRelease, "Release", 0, MaxTimeMs, DefaultReleaseMs).
			ShortName("r").
			Build(),

		param.MeterParameter(ParamGateLED, "Gate").
			ShortName("led").
			Build(),

		param.MeterParameter(ParamEnvelope, "Envelope").
			ShortName("env").
			Build(),
	)
	if err != nil {
		// IDs are constants; a clash is a programming error.
		panic(err)
	}

	p.key = params.Get(ParamKey)
	p.mode = params.Get(ParamType)
	p.attack = params.Get(ParamAttack)
	p.decay = params.Get(ParamDecay)
	p.sustain = params.Get(ParamSustain)
	p.release = params.Get(ParamRelease)
	p.led = params.Get(ParamGateLED)
	p.envelope = params.Get(ParamEnvelope)
}
