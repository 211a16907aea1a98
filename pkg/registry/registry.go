package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/settsim/pkg/domain"
	"github.com/aretw0/settsim/pkg/ports"
)

// Factory builds the Provisioner for a target system.
// It must not mutate the target; funding happens later in Provision.
type Factory func(target ports.TargetSystem) (ports.Provisioner, error)

// Registry maps strategy names to provisioner factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory to the registry.
// If a factory with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = fn
}

// Resolve looks up the factory for the target's strategy name and builds its Provisioner.
// An unregistered name is a configuration error wrapping domain.ErrUnknownStrategy.
func (r *Registry) Resolve(target ports.TargetSystem) (ports.Provisioner, error) {
	name := target.StrategyName()

	r.mu.RLock()
	fn, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &domain.ConfigurationError{Field: "strategy", Value: name, Err: domain.ErrUnknownStrategy}
	}

	p, err := fn(target)
	if err != nil {
		return nil, fmt.Errorf("provisioner %s: %w", name, err)
	}
	return p, nil
}

// Names returns the registered strategy names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
