package runtime

import (
	"log/slog"

	"github.com/aretw0/settsim/pkg/actors"
	"github.com/aretw0/settsim/pkg/domain"
	"github.com/aretw0/settsim/pkg/registry"
)

// DefaultUserCount is the size of the active identity set.
const DefaultUserCount = 10

// Option configures the Manager.
type Option func(*Manager)

// WithSeed fixes the seed. Zero derives one through the SeedFunc.
func WithSeed(seed int64) Option {
	return func(m *Manager) {
		m.seed = seed
	}
}

// WithSeedFunc replaces the wall clock seed derivation.
func WithSeedFunc(fn SeedFunc) Option {
	return func(m *Manager) {
		m.seedFunc = fn
	}
}

// WithUserCount sets how many identities Provision activates.
func WithUserCount(n int) Option {
	return func(m *Manager) {
		m.userCount = n
	}
}

// WithRegistry replaces the provisioner registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(m *Manager) {
		m.registry = reg
	}
}

// WithParams replaces the toggles driven by parameter actors.
func WithParams(params []domain.ParamSpec) Option {
	return func(m *Manager) {
		m.params = params
	}
}

// WithChainOptions configures the time-advance actor.
func WithChainOptions(opts ...actors.ChainOption) Option {
	return func(m *Manager) {
		m.chainOpts = append(m.chainOpts, opts...)
	}
}

// WithMaxSampleAttempts bounds identity rejection sampling. Zero uses the pool default.
func WithMaxSampleAttempts(n int) Option {
	return func(m *Manager) {
		m.maxSampleAttempts = n
	}
}

// WithRunID labels events and logs. A random UUID is used otherwise.
func WithRunID(id string) Option {
	return func(m *Manager) {
		m.runID = id
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}
