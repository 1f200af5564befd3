// Package registry implements the driver registry and factory: a map
// from 4-char model code to constructor, and a process-wide factory
// owning the single active driver instance.
package registry

import (
	"sync"

	"vehiclecore/command"
	"vehiclecore/config"
	"vehiclecore/events"
	"vehiclecore/metrics"
)

// Services bundles the collaborators a driver constructor needs,
// avoiding a global-singleton constructor signature.
type Services struct {
	Metrics metrics.Store
	Events  events.Bus
	Config  config.Store
}

// Descriptor is an immutable registration: a 4-char code, display
// name, and constructor.
type Descriptor struct {
	Code string
	Name string
	New  func(Services) command.Driver
}

// Registry maps model codes to descriptors. Registration order is
// irrelevant; codes are unique (a later Register replaces an earlier
// one with the same code).
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Descriptor
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Descriptor)}
}

// Register inserts or replaces the descriptor for code.
func (r *Registry) Register(d Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[d.Code] = d
}

// New invokes the stored constructor for code, if present.
func (r *Registry) New(code string, svc Services) (command.Driver, bool) {
	r.mu.RLock()
	d, ok := r.entries[code]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return d.New(svc), true
}

// List returns every registered descriptor, for the "vehicle list"
// command surface.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.entries))
	for _, d := range r.entries {
		out = append(out, d)
	}
	return out
}
