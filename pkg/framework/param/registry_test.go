package param

import (
	"errors"
	"sync"
	"testing"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	err := r.Add(
		TimeParameter(1, "Attack", 0, 1000, 30).ShortName("A").Build(),
		LevelParameter(2, "Sustain", 1).ShortName("S").Build(),
		MeterParameter(3, "Gate LED").ShortName("LED").Build(),
	)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestRegistryLookup(t *testing.T) {
	r := testRegistry(t)

	if r.Count() != 3 {
		t.Errorf("Expected 3 parameters, got %d", r.Count())
	}
	for i, p := range r.All() {
		if p.ID != uint32(i+1) {
			t.Errorf("All()[%d] = %d, want registration order", i, p.ID)
		}
	}

	for _, name := range []string{"attack", "A", "ATTACK"} {
		p, err := r.Lookup(name)
		if err != nil || p.ID != 1 {
			t.Errorf("Lookup(%s) = %v, %v", name, p, err)
		}
	}
	if _, err := r.Lookup("cutoff"); !errors.Is(err, ErrUnknownParameter) {
		t.Errorf("Expected ErrUnknownParameter, got %v", err)
	}
}

func TestRegistrySet(t *testing.T) {
	r := testRegistry(t)

	if err := r.Set("attack", "250 ms"); err != nil {
		t.Fatal(err)
	}
	if v := r.Get(1).GetPlainValue(); v < 249.99 || v > 250.01 {
		t.Errorf("Expected 250 ms, got %f", v)
	}
	if err := r.Set("attack", "fast"); err == nil {
		t.Error("Expected parse error")
	}
	if err := r.Set("led", "1"); err == nil {
		t.Error("Expected read-only error")
	}

	r.Get(3).SetValue(0.5)
	r.ResetAll()
	if v := r.Get(1).GetPlainValue(); v < 29.99 || v > 30.01 {
		t.Errorf("Expected reset to 30 ms, got %f", v)
	}
	if v := r.Get(3).GetValue(); v != 0.5 {
		t.Errorf("ResetAll changed the read-only meter to %f", v)
	}
}

func TestRegistryDuplicate(t *testing.T) {
	r := testRegistry(t)
	if err := r.Add(LevelParameter(2, "Other", 0).Build()); err == nil {
		t.Error("Expected duplicate id error")
	}
}

func TestParameterConcurrentAccess(t *testing.T) {
	p := LevelParameter(1, "Sustain", 0).Build()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			p.SetValue(float64(i % 2))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			if v := p.GetValue(); v != 0 && v != 1 {
				t.Errorf("torn read %f", v)
				return
			}
		}
	}()
	wg.Wait()
}

func TestSetValueClamps(t *testing.T) {
	p := TimeParameter(1, "Release", 0, 1000, 0).Build()
	p.SetValue(2)
	if p.GetValue() != 1 {
		t.Errorf("Expected clamp to 1, got %f", p.GetValue())
	}
	p.SetValue(-1)
	if p.GetValue() != 0 {
		t.Errorf("Expected clamp to 0, got %f", p.GetValue())
	}
	p.SetPlainValue(5000)
	if p.GetPlainValue() != 1000 {
		t.Errorf("Expected 1000 ms, got %f", p.GetPlainValue())
	}
}
