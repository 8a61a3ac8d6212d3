package param

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrUnknownParameter is returned for lookups of unregistered IDs or names.
var ErrUnknownParameter = errors.New("unknown parameter")

// Registry manages plugin parameters. Registration happens before audio
// starts; the audio thread only reads values through the parameters.
type Registry struct {
	params map[uint32]*Parameter
	order  []uint32 // registration order
	mu     sync.RWMutex
}

// NewRegistry creates a new parameter registry
func NewRegistry() *Registry {
	return &Registry{
		params: make(map[uint32]*Parameter),
		order:  make([]uint32, 0),
	}
}

// Add registers parameters. A duplicate ID is an error and stops
// registration at that parameter.
func (r *Registry) Add(params ...*Parameter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range params {
		if _, exists := r.params[p.ID]; exists {
			return fmt.Errorf("parameter %d (%s): duplicate id", p.ID, p.Name)
		}
		r.params[p.ID] = p
		r.order = append(r.order, p.ID)
	}

	return nil
}

// Get retrieves a parameter by ID
func (r *Registry) Get(id uint32) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.params[id]
}

// Lookup finds a parameter by name or short name, ignoring case.
func (r *Registry) Lookup(name string) (*Parameter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		p := r.params[id]
		if strings.EqualFold(p.Name, name) || strings.EqualFold(p.ShortName, name) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
}

// Set parses text for the named parameter and stores it.
func (r *Registry) Set(name, text string) error {
	p, err := r.Lookup(name)
	if err != nil {
		return err
	}
	if p.Flags&IsReadOnly != 0 {
		return fmt.Errorf("parameter %s is read-only", p.Name)
	}
	v, err := p.ParseValue(text)
	if err != nil {
		return fmt.Errorf("parameter %s: %w", p.Name, err)
	}
	p.SetValue(v)
	return nil
}

// Count returns the number of parameters
func (r *Registry) Count() int32 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int32(len(r.order))
}

// All returns all parameters in order
func (r *Registry) All() []*Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Parameter, len(r.order))
	for i, id := range r.order {
		result[i] = r.params[id]
	}

	return result
}

// ResetAll restores every writable parameter to its default.
func (r *Registry) ResetAll() {
	for _, p := range r.All() {
		if p.Flags&IsReadOnly == 0 {
			p.Reset()
		}
	}
}
