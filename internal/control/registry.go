package control

import (
	"fmt"
	"sort"
	"sync"
)

// Tag kinds understood by the default registry.
const (
	KindFile   = "file"
	KindText   = "text"
	KindSelect = "select"
)

// Factory builds a control from options.
type Factory func(opts Options) (Control, error)

// Registry maps tag kinds to control factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Default returns a registry with the file, text and select controls.
func Default() *Registry {
	r := NewRegistry()
	r.Register(KindFile, func(opts Options) (Control, error) {
		c, err := NewUploadFile(opts)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
	r.Register(KindText, func(opts Options) (Control, error) {
		c, err := NewText(opts)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
	r.Register(KindSelect, func(opts Options) (Control, error) {
		c, err := NewChoice(opts)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
	return r
}

// Register binds kind to f, replacing any previous factory.
func (r *Registry) Register(kind string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = f
}

// New builds the control registered for opts.Tag.Kind.
func (r *Registry) New(opts Options) (Control, error) {
	r.mu.RLock()
	f, ok := r.factories[opts.Tag.Kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownControl, opts.Tag.Kind)
	}
	return f(opts)
}

// Kinds lists the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
