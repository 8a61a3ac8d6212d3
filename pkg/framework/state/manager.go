// Package state saves and restores parameter presets.
package state

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/justyntemme/hush/pkg/framework/param"
)

// ErrInvalidState is returned when preset data is malformed or unsupported.
var ErrInvalidState = errors.New("invalid state")

const magic = "HUSH"

// maxPreallocated caps the entries reserved up front from an untrusted count.
const maxPreallocated = 256

// Manager handles plugin state saving and loading. Only parameter values
// and optional custom data are persisted.
type Manager struct {
	version  uint32
	registry *param.Registry
	save     CustomStateFunc
	load     CustomLoadFunc
}

// CustomStateFunc allows plugins to save additional state beyond parameters
type CustomStateFunc func(w io.Writer) error

// CustomLoadFunc reads back what the matching CustomStateFunc wrote.
type CustomLoadFunc func(r io.Reader) error

// NewManager creates a new state manager
func NewManager(registry *param.Registry) *Manager {
	return &Manager{
		version:  1,
		registry: registry,
	}
}

// SetCustomState sets functions for saving and loading custom state
func (m *Manager) SetCustomState(save CustomStateFunc, load CustomLoadFunc) {
	m.save = save
	m.load = load
}

// Save writes the plugin state to a writer. Layout, little endian: magic,
// version, parameter count, (id uint32, normalized value float64) pairs,
// custom data length uint32 and custom data.
func (m *Manager) Save(w io.Writer) error {
	if _, err := io.WriteString(w, magic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, m.version); err != nil {
		return err
	}

	params := m.registry.All()
	if err := binary.Write(w, binary.LittleEndian, int32(len(params))); err != nil {
		return err
	}
	for _, p := range params {
		if err := binary.Write(w, binary.LittleEndian, p.ID); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, p.GetValue()); err != nil {
			return err
		}
	}

	var custom bytes.Buffer
	if m.save != nil {
		if err := m.save(&custom); err != nil {
			return fmt.Errorf("save custom state: %w", err)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(custom.Len())); err != nil {
		return err
	}
	_, err := w.Write(custom.Bytes())
	return err
}

// Load reads the plugin state from a reader. Unknown and read-only
// parameter IDs are ignored; custom data is skipped when no loader is set.
// A malformed preset leaves every parameter untouched.
func (m *Manager) Load(r io.Reader) error {
	header := make([]byte, len(magic))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if string(header) != magic {
		return fmt.Errorf("%w: bad header %q", ErrInvalidState, header)
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if version > m.version {
		return fmt.Errorf("%w: version %d is newer than supported version %d", ErrInvalidState, version, m.version)
	}

	var paramCount int32
	if err := binary.Read(r, binary.LittleEndian, &paramCount); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if paramCount < 0 {
		return fmt.Errorf("%w: negative parameter count", ErrInvalidState)
	}

	// Nothing is applied until the whole preset has been read.
	type entry struct {
		ID    uint32
		Value float64
	}
	entries := make([]entry, 0, min(paramCount, maxPreallocated))
	for i := int32(0); i < paramCount; i++ {
		var e entry
		if err := binary.Read(r, binary.LittleEndian, &e); err != nil {
			return fmt.Errorf("%w: parameter %d: %v", ErrInvalidState, i, err)
		}
		entries = append(entries, e)
	}

	var customLen uint32
	if err := binary.Read(r, binary.LittleEndian, &customLen); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	custom, err := io.ReadAll(io.LimitReader(r, int64(customLen)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if len(custom) != int(customLen) {
		return fmt.Errorf("%w: custom data truncated at %d of %d bytes", ErrInvalidState, len(custom), customLen)
	}

	for _, e := range entries {
		if p := m.registry.Get(e.ID); p != nil && p.Flags&param.IsReadOnly == 0 {
			p.SetValue(e.Value)
		}
	}
	if m.load != nil && len(custom) > 0 {
		if err := m.load(bytes.NewReader(custom)); err != nil {
			return fmt.Errorf("load custom state: %w", err)
		}
	}
	return nil
}

// SaveFile writes a preset file.
func (m *Manager) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := m.Save(w); err != nil {
		f.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	return f.Close()
}

// LoadFile reads a preset file.
func (m *Manager) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := m.Load(bufio.NewReader(f)); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
