package state

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/justyntemme/hush/pkg/framework/param"
)

func newRegistry(t *testing.T) *param.Registry {
	t.Helper()
	r := param.NewRegistry()
	if err := r.Add(
		param.TimeParameter(1, "Attack", 0, 1000, 30).Build(),
		param.LevelParameter(2, "Sustain", 1).Build(),
		param.KeyParameter(3, "Key").Build(),
	); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestSaveLoadRoundTrip(t *testing.T) {
	src := newRegistry(t)
	src.Get(1).SetPlainValue(120)
	src.Get(2).SetPlainValue(0.25)
	src.Get(3).SetPlainValue(60)

	var buf bytes.Buffer
	if err := NewManager(src).Save(&buf); err != nil {
		t.Fatal(err)
	}

	dst := newRegistry(t)
	if err := NewManager(dst).Load(&buf); err != nil {
		t.Fatal(err)
	}
	for _, id := range []uint32{1, 2, 3} {
		if src.Get(id).GetValue() != dst.Get(id).GetValue() {
			t.Errorf("param %d: expected %f, got %f", id, src.Get(id).GetValue(), dst.Get(id).GetValue())
		}
	}
	if dst.Get(3).Index() != 60 {
		t.Errorf("Expected key 60, got %d", dst.Get(3).Index())
	}
}

func TestLoadIgnoresUnknownParameters(t *testing.T) {
	src := newRegistry(t)
	src.Add(param.LevelParameter(99, "Extra", 0.5).Build())

	var buf bytes.Buffer
	if err := NewManager(src).Save(&buf); err != nil {
		t.Fatal(err)
	}
	if err := NewManager(newRegistry(t)).Load(&buf); err != nil {
		t.Errorf("Unknown parameters should be skipped, got %v", err)
	}
}

func TestCustomState(t *testing.T) {
	src := NewManager(newRegistry(t))
	src.SetCustomState(func(w io.Writer) error {
		_, err := w.Write([]byte("learn"))
		return err
	}, nil)

	var buf bytes.Buffer
	if err := src.Save(&buf); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()

	var got []byte
	dst := NewManager(newRegistry(t))
	dst.SetCustomState(nil, func(r io.Reader) error {
		var err error
		got, err = io.ReadAll(r)
		return err
	})
	if err := dst.Load(bytes.NewReader(data)); err != nil {
		t.Fatal(err)
	}
	if string(got) != "learn" {
		t.Errorf("Expected custom data 'learn', got %q", got)
	}

	// skipped without a loader
	if err := NewManager(newRegistry(t)).Load(bytes.NewReader(data)); err != nil {
		t.Errorf("Expected custom data to be skipped, got %v", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	var good bytes.Buffer
	NewManager(newRegistry(t)).Save(&good)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad magic", []byte("VST3GO\x01\x00\x00\x00")},
		{"newer version", []byte("HUSH\x09\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00")},
		{"truncated", good.Bytes()[:good.Len()-6]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewManager(newRegistry(t)).Load(bytes.NewReader(tt.data))
			if !errors.Is(err, ErrInvalidState) {
				t.Errorf("Expected ErrInvalidState, got %v", err)
			}
		})
	}
}

func TestLoadTruncatedLeavesParameters(t *testing.T) {
	src := newRegistry(t)
	src.Get(1).SetPlainValue(700)
	src.Get(3).SetPlainValue(72)
	m := NewManager(src)
	m.SetCustomState(func(w io.Writer) error {
		_, err := w.Write([]byte("guard"))
		return err
	}, nil)
	var buf bytes.Buffer
	if err := m.Save(&buf); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()

	// header 12 bytes, then 12 bytes per parameter
	for _, cut := range []int{12 + 12 + 4, 12 + 3*12 + 2, len(data) - 2} {
		dst := newRegistry(t)
		before := []float64{dst.Get(1).GetValue(), dst.Get(2).GetValue(), dst.Get(3).GetValue()}
		err := NewManager(dst).Load(bytes.NewReader(data[:cut]))
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("cut at %d: expected ErrInvalidState, got %v", cut, err)
		}
		for i, id := range []uint32{1, 2, 3} {
			if got := dst.Get(id).GetValue(); got != before[i] {
				t.Errorf("cut at %d: param %d changed to %f", cut, id, got)
			}
		}
	}
}

func TestLoadSkipsReadOnly(t *testing.T) {
	src := newRegistry(t)
	src.Add(param.MeterParameter(4, "Meter").Build())
	src.Get(4).SetValue(0.75)
	var buf bytes.Buffer
	if err := NewManager(src).Save(&buf); err != nil {
		t.Fatal(err)
	}

	dst := newRegistry(t)
	dst.Add(param.MeterParameter(4, "Meter").Build())
	if err := NewManager(dst).Load(&buf); err != nil {
		t.Fatal(err)
	}
	if v := dst.Get(4).GetValue(); v != 0 {
		t.Errorf("Expected read-only meter untouched, got %f", v)
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.hush")
	src := newRegistry(t)
	src.Get(1).SetPlainValue(500)
	if err := NewManager(src).SaveFile(path); err != nil {
		t.Fatal(err)
	}

	dst := newRegistry(t)
	if err := NewManager(dst).LoadFile(path); err != nil {
		t.Fatal(err)
	}
	if dst.Get(1).GetPlainValue() != 500 {
		t.Errorf("Expected 500 ms, got %f", dst.Get(1).GetPlainValue())
	}

	if err := NewManager(dst).LoadFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for missing file")
	}
}
