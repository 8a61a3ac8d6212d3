package param

import (
	"math"
	"testing"
)

func TestChoice(t *testing.T) {
	options := []ChoiceOption{
		{Value: 0, Name: "Up", Aliases: []string{"mute"}},
		{Value: 1, Name: "Toggle", Aliases: []string{"latch"}},
		{Value: 2, Name: "Down", Aliases: []string{"open"}},
	}

	param := Choice(100, "Type", options).Default(1).Build()

	if param.StepCount != 2 {
		t.Errorf("Expected 2 steps for 3 options, got %d", param.StepCount)
	}
	if param.Index() != 1 {
		t.Errorf("Expected default index 1, got %d", param.Index())
	}

	t.Run("Formatter", func(t *testing.T) {
		tests := []struct {
			value    float64
			expected string
		}{
			{0, "Up"},
			{1, "Toggle"},
			{2, "Down"},
		}

		for _, test := range tests {
			result := param.FormatValue(param.Normalize(test.value))
			if result != test.expected {
				t.Errorf("FormatValue(%f) = %s, want %s", test.value, result, test.expected)
			}
		}
	})

	t.Run("Parser", func(t *testing.T) {
		tests := []struct {
			input         string
			expectedPlain float64
		}{
			{"Up", 0},
			{"mute", 0},
			{"toggle", 1},
			{"LATCH", 1},
			{" Down ", 2},
		}

		for _, test := range tests {
			normalized, err := param.ParseValue(test.input)
			if err != nil {
				t.Errorf("ParseValue(%s) error: %v", test.input, err)
				continue
			}
			plain := param.Denormalize(normalized)
			if math.Abs(plain-test.expectedPlain) > 0.001 {
				t.Errorf("ParseValue(%s) = %f (plain), want %f", test.input, plain, test.expectedPlain)
			}
		}

		if _, err := param.ParseValue("sideways"); err == nil {
			t.Error("Expected error for unknown option")
		}
	})

	t.Run("Snapping", func(t *testing.T) {
		param.SetValue(0.7)
		if param.Index() != 1 || param.GetValue() != 0.5 {
			t.Errorf("Expected snap to index 1, got %d (%f)", param.Index(), param.GetValue())
		}
	})
}

func TestTimeParameter(t *testing.T) {
	param := TimeParameter(500, "Attack", 0, 1000, 30).Build()

	if got := param.GetPlainValue(); math.Abs(got-30) > 1e-9 {
		t.Errorf("Expected default 30 ms, got %f", got)
	}

	t.Run("Formatter", func(t *testing.T) {
		tests := []struct {
			plainValue float64
			expected   string
		}{
			{0, "0.0 ms"},
			{10, "10.0 ms"},
			{1000, "1.00 s"},
		}

		for _, test := range tests {
			result := param.FormatValue(param.Normalize(test.plainValue))
			if result != test.expected {
				t.Errorf("FormatValue(%f ms) = %s, want %s", test.plainValue, result, test.expected)
			}
		}
	})

	t.Run("Parser", func(t *testing.T) {
		tests := []struct {
			input         string
			expectedPlain float64
		}{
			{"10 ms", 10},
			{"10ms", 10},
			{"250", 250},
			{"0.5 s", 500},
			{"1s", 1000},
			{"5 s", 1000}, // clamped
		}

		for _, test := range tests {
			normalized, err := param.ParseValue(test.input)
			if err != nil {
				t.Errorf("ParseValue(%s) error: %v", test.input, err)
				continue
			}
			plain := param.Denormalize(normalized)
			if math.Abs(plain-test.expectedPlain) > 0.1 {
				t.Errorf("ParseValue(%s) = %f ms (plain), want %f ms", test.input, plain, test.expectedPlain)
			}
		}
	})
}

func TestLevelParameter(t *testing.T) {
	param := LevelParameter(3, "Sustain", 1).Build()
	if param.GetPlainValue() != 1 {
		t.Errorf("Expected default 1, got %f", param.GetPlainValue())
	}
	if s := param.FormatValue(0.25); s != "25%" {
		t.Errorf("Expected 25%%, got %s", s)
	}
	for _, in := range []string{"30%", "0.3"} {
		v, err := param.ParseValue(in)
		if err != nil || math.Abs(v-0.3) > 1e-9 {
			t.Errorf("ParseValue(%s) = %f, %v", in, v, err)
		}
	}
}

func TestKeyParameter(t *testing.T) {
	param := KeyParameter(0, "Key").Build()

	if param.Index() != -1 || param.String() != "Any" {
		t.Errorf("Expected default Any, got %d (%s)", param.Index(), param.String())
	}

	param.SetPlainValue(60)
	if param.Index() != 60 || param.String() != "C 3" {
		t.Errorf("Expected C 3, got %d (%s)", param.Index(), param.String())
	}

	// every step maps to exactly one key
	for key := -1; key <= 127; key++ {
		param.SetPlainValue(float64(key))
		if param.Index() != key {
			t.Fatalf("key %d came back as %d", key, param.Index())
		}
	}
}

func TestKeyParser(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{"Any", -1, false},
		{"any", -1, false},
		{"C 3", 60, false},
		{"c3", 60, false},
		{"C# 3", 61, false},
		{"Db3", 61, false},
		{"C -2", 0, false},
		{"G 8", 127, false},
		{"64", 64, false},
		{"-1", -1, false},
		{"128", 0, true},
		{"H 3", 0, true},
		{"C", 0, true},
		{"A 9", 0, true},
	}

	for _, tt := range tests {
		got, err := KeyParser(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("KeyParser(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.expected {
			t.Errorf("KeyParser(%q) = %f, want %f", tt.input, got, tt.expected)
		}
	}
}

func TestKeyFormatter(t *testing.T) {
	tests := []struct {
		key      float64
		expected string
	}{
		{-1, "Any"},
		{0, "C -2"},
		{60, "C 3"},
		{59.9999, "C 3"},
		{127, "G 8"},
		{-5, ""},
		{200, ""},
	}
	for _, tt := range tests {
		if got := KeyFormatter(tt.key); got != tt.expected {
			t.Errorf("KeyFormatter(%f) = %q, want %q", tt.key, got, tt.expected)
		}
	}
}

func TestMeterParameter(t *testing.T) {
	led := MeterParameter(8, "Gate LED").Build()
	if led.Flags&IsReadOnly == 0 || led.Flags&CanAutomate != 0 {
		t.Errorf("Meter should be read-only and not automatable, flags %b", led.Flags)
	}
	led.SetValue(0.5)
	if led.String() != "0.500" {
		t.Errorf("Expected 0.500, got %s", led.String())
	}
}
