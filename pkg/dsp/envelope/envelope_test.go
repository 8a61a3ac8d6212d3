package envelope

import (
	"math"
	"testing"
)

// 1 kHz keeps dt at exactly 1 ms so stage increments are exact binary fractions.
func exactParams() Params {
	return Params{SampleRate: 1000, AttackMs: 8, DecayMs: 4, Sustain: 0.5, ReleaseMs: 16}
}

func TestAttackReachesPeak(t *testing.T) {
	env := NewWithParams(exactParams())
	env.SetGate(true)

	for i := 1; i < 8; i++ {
		v := env.Update()
		if want := float64(i) * 0.125; v != want {
			t.Fatalf("sample %d: expected %v, got %v", i, want, v)
		}
		if env.GetStage() != StageAttack {
			t.Fatalf("sample %d: expected attack, got %v", i, env.GetStage())
		}
	}

	if v := env.Update(); v != 1.0 {
		t.Errorf("Expected peak 1.0, got %v", v)
	}
	if env.GetStage() != StageDecay {
		t.Errorf("Expected decay after peak, got %v", env.GetStage())
	}
}

func TestAttackSampleCount(t *testing.T) {
	tests := []struct {
		sampleRate float64
		attackMs   float64
	}{
		{1000, 8},
		{1000, 64},
		{2000, 16},
		{8000, 1},
		{48000, 30},
		{44100, 30},
		{48000, 7},
		{44100, 7},
		{96000, 1000},
		{44100, 0.5},
	}

	for _, tt := range tests {
		p := Params{SampleRate: tt.sampleRate, AttackMs: tt.attackMs, DecayMs: 10, Sustain: 0.5, ReleaseMs: 10}
		env := NewWithParams(p)
		env.SetGate(true)

		want := int(math.Ceil(tt.attackMs / (1000.0 / tt.sampleRate)))
		for i := 0; i < want-1; i++ {
			env.Update()
			if env.GetStage() != StageAttack {
				t.Fatalf("rate=%v attack=%v: left attack early at sample %d", tt.sampleRate, tt.attackMs, i)
			}
		}
		if v := env.Update(); v != 1.0 || env.GetStage() != StageDecay {
			t.Errorf("rate=%v attack=%v: after %d samples got value %v stage %v",
				tt.sampleRate, tt.attackMs, want, v, env.GetStage())
		}
	}
}

func TestStageShapes(t *testing.T) {
	p := Params{SampleRate: 48000, AttackMs: 5, DecayMs: 10, Sustain: 0.4, ReleaseMs: 20}
	env := NewWithParams(p)

	prev := env.Value()
	check := func(gate bool, samples int) {
		env.SetGate(gate)
		for i := 0; i < samples; i++ {
			stage := env.GetStage()
			v := env.Update()
			if v < 0 || v > 1 {
				t.Fatalf("value %v out of range in %v", v, stage)
			}
			switch stage {
			case StageAttack:
				if v < prev {
					t.Fatalf("attack decreased: %v -> %v", prev, v)
				}
			case StageDecay, StageRelease:
				if v > prev {
					t.Fatalf("%v increased: %v -> %v", stage, prev, v)
				}
			case StageSustain:
				if v != p.Sustain {
					t.Fatalf("sustain moved: %v", v)
				}
			}
			prev = v
		}
	}

	check(true, 48000)
	if env.GetStage() != StageSustain {
		t.Fatalf("Expected sustain after one second, got %v", env.GetStage())
	}
	check(false, 48000)
	if env.GetStage() != StageIdle || env.Value() != 0 {
		t.Errorf("Expected idle at zero, got %v at %v", env.GetStage(), env.Value())
	}
}

func TestRetriggerContinuity(t *testing.T) {
	t.Run("SameSample", func(t *testing.T) {
		env := NewWithParams(exactParams())
		env.SetGate(true)
		env.Update()
		env.Update()
		v := env.Update() // 0.375

		env.SetGate(false)
		env.SetGate(true)
		if env.GetStage() != StageAttack {
			t.Fatalf("Expected attack after retrigger, got %v", env.GetStage())
		}
		if got := env.Update(); got != v+0.125 {
			t.Errorf("Expected attack to continue from %v, got %v", v, got)
		}
	})

	t.Run("NextSample", func(t *testing.T) {
		env := NewWithParams(exactParams())
		env.SetGate(true)
		for i := 0; i < 3; i++ {
			env.Update()
		}

		env.SetGate(false)
		released := env.Update()
		if released != 0.375-0.0625 {
			t.Fatalf("Expected release step to 0.3125, got %v", released)
		}

		env.SetGate(true)
		if got := env.Update(); got != released+0.125 {
			t.Errorf("Expected attack from %v, got %v", released, got)
		}
	})
}

func TestSustainIsStable(t *testing.T) {
	env := NewWithParams(exactParams())
	env.SetGate(true)
	for env.GetStage() != StageSustain {
		env.Update()
	}

	for i := 0; i < 100; i++ {
		if v := env.Update(); v != 0.5 {
			t.Fatalf("Expected constant sustain 0.5, got %v", v)
		}
	}

	p := env.Params()
	p.Sustain = 0.8
	env.SetParams(p)
	if v := env.Update(); v != 0.8 {
		t.Errorf("Expected sustain change to apply immediately, got %v", v)
	}

	env.SetGate(true)
	if env.GetStage() != StageSustain {
		t.Errorf("Repeating an open gate must not restart the attack")
	}
}

func TestZeroTimes(t *testing.T) {
	env := NewWithParams(Params{SampleRate: 48000, Sustain: 1.0})
	env.SetGate(true)

	if v := env.Update(); v != 1.0 || env.GetStage() != StageDecay {
		t.Fatalf("Expected instant peak, got %v in %v", v, env.GetStage())
	}
	if v := env.Update(); v != 1.0 || env.GetStage() != StageSustain {
		t.Fatalf("Expected instant decay to sustain, got %v in %v", v, env.GetStage())
	}

	env.SetGate(false)
	if v := env.Update(); v != 0 || env.GetStage() != StageIdle {
		t.Errorf("Expected instant release, got %v in %v", v, env.GetStage())
	}
}

func TestZeroDecayZeroSustain(t *testing.T) {
	p := Params{SampleRate: 48000, AttackMs: 0, DecayMs: 0, Sustain: 0, ReleaseMs: 10}

	t.Run("Unguarded", func(t *testing.T) {
		env := NewWithParams(p)
		env.SetGate(true)
		env.Update()
		for i := 0; i < 10; i++ {
			if v := env.Update(); !math.IsNaN(v) {
				t.Fatalf("Expected NaN, got %v", v)
			}
			if env.GetStage() != StageDecay {
				t.Fatalf("Expected to stay in decay, got %v", env.GetStage())
			}
		}
		if !math.IsNaN(env.Value()) {
			t.Error("Value should report the NaN")
		}
	})

	t.Run("Guarded", func(t *testing.T) {
		guarded := p
		guarded.GuardZeroDecay = true
		env := NewWithParams(guarded)
		env.SetGate(true)
		env.Update()
		if v := env.Update(); v != 0 || env.GetStage() != StageSustain {
			t.Errorf("Expected collapse to sustain 0, got %v in %v", v, env.GetStage())
		}
	})
}

func TestIdleHoldsValue(t *testing.T) {
	env := New(48000)
	for i := 0; i < 10; i++ {
		if v := env.Update(); v != 0 {
			t.Fatalf("Expected idle 0, got %v", v)
		}
	}
	if env.IsActive() {
		t.Error("Fresh envelope should be idle")
	}
}

func TestStepIsPure(t *testing.T) {
	p := exactParams()
	start := State{}

	next := Step(start, true, p)
	if start.Stage != StageIdle || start.Value != 0 || start.Gate {
		t.Fatalf("Step mutated its input: %+v", start)
	}
	if next.Stage != StageAttack || next.Value != 0.125 || !next.Gate {
		t.Errorf("Unexpected next state: %+v", next)
	}

	// the object wrapper follows the same transitions
	env := NewWithParams(p)
	s := State{}
	for i := 0; i < 40; i++ {
		gate := i < 20
		s = Step(s, gate, p)
		env.SetGate(gate)
		env.Update()
		if env.State() != s {
			t.Fatalf("sample %d: wrapper %+v != step %+v", i, env.State(), s)
		}
	}
}

func TestTailSamples(t *testing.T) {
	p := Params{SampleRate: 48000, ReleaseMs: 30}
	if got := p.TailSamples(); got != 1440 {
		t.Errorf("Expected 1440 tail samples, got %d", got)
	}
	if got := (Params{SampleRate: 48000}).TailSamples(); got != 0 {
		t.Errorf("Expected no tail for zero release, got %d", got)
	}
}

func TestStageString(t *testing.T) {
	tests := []struct {
		stage    Stage
		expected string
	}{
		{StageIdle, "idle"},
		{StageAttack, "attack"},
		{StageDecay, "decay"},
		{StageSustain, "sustain"},
		{StageRelease, "release"},
		{Stage(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.stage.String(); got != tt.expected {
			t.Errorf("Stage(%d).String() = %s, want %s", tt.stage, got, tt.expected)
		}
	}
}

func BenchmarkADSR(b *testing.B) {
	env := New(48000)
	env.SetADSR(10, 50, 0.5, 100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		env.SetGate(i%2 == 0)
		for range 512 {
			env.Update()
		}
	}
}
