package palette

import (
	"fmt"
	"sync"

	"shotframe/model"
)

// Registry holds color definitions in registration order.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]Definition
	order []string
}

func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds def. Registering an id twice is an error.
func (r *Registry) Register(def Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.ID]; exists {
		return fmt.Errorf("color %s already registered", def.ID)
	}
	r.defs[def.ID] = def
	r.order = append(r.order, def.ID)
	return nil
}

func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Definition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.defs[id])
	}
	return out
}

// Resolve maps each color id to its value for the appearance.
func (r *Registry) Resolve(appearance model.Appearance) map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.defs))
	for id, def := range r.defs {
		if appearance == model.AppearanceDark {
			out[id] = def.Dark
		} else {
			out[id] = def.Light
		}
	}
	return out
}

// Defaults registers the screenshot tool colors.
func Defaults() (*Registry, error) {
	builders := []*ColorBuilder{
		NewColorBuilder("screenshot-tool-background").WithLight("#f9fafb").WithDark("#0f0f11"),
		NewColorBuilder("screenshot-tool-panel").WithLight("#ffffff").WithDark("#18181b"),
		NewColorBuilder("screenshot-tool-text").WithLight("#18181b").WithDark("#f4f4f5"),
		NewColorBuilder("screenshot-tool-accent").WithLight("#6d48bf").WithDark("#a78bfa"),
		NewColorBuilder("screenshot-tool-overlay").WithLight("#000000", 0.4).WithDark("#000000", 0.6),
		NewColorBuilder("screenshot-tool-warning").WithLight("#b45309").WithDark("#fbbf24", 0.9),
	}

	r := NewRegistry()
	for _, b := range builders {
		def, err := b.Build()
		if err != nil {
			return nil, err
		}
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}
