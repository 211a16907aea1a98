package settsim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/settsim/internal/logging"
	"github.com/aretw0/settsim/internal/runtime"
	"github.com/aretw0/settsim/pkg/actors"
	"github.com/aretw0/settsim/pkg/domain"
	"github.com/aretw0/settsim/pkg/identity"
	"github.com/aretw0/settsim/pkg/ports"
	"github.com/aretw0/settsim/pkg/provision"
	"github.com/aretw0/settsim/pkg/registry"
	"github.com/aretw0/settsim/pkg/snapshot"
	"github.com/aretw0/settsim/pkg/vault"
	"github.com/ethereum/go-ethereum/common"
)

// Simulation is the high-level entry point for the settsim library.
// It wraps the internal runtime manager and provides a simplified API for consumers.
type Simulation struct {
	manager     *runtime.Manager
	runtimeOpts []runtime.Option
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
}

// Option defines a functional option for configuring the Simulation.
type Option func(*Simulation)

// WithSeed fixes the random seed. Zero derives one from the wall clock.
func WithSeed(seed int64) Option {
	return func(s *Simulation) {
		s.runtimeOpts = append(s.runtimeOpts, runtime.WithSeed(seed))
	}
}

// WithSeedFunc replaces the seed derivation used when no seed is set.
func WithSeedFunc(fn func() int64) Option {
	return func(s *Simulation) {
		s.runtimeOpts = append(s.runtimeOpts, runtime.WithSeedFunc(fn))
	}
}

// WithUserCount sets the number of active identities (default 10).
func WithUserCount(n int) Option {
	return func(s *Simulation) {
		s.runtimeOpts = append(s.runtimeOpts, runtime.WithUserCount(n))
	}
}

// WithRegistry replaces the provisioner registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(s *Simulation) {
		s.runtimeOpts = append(s.runtimeOpts, runtime.WithRegistry(reg))
	}
}

// WithMaxSampleAttempts bounds identity rejection sampling.
func WithMaxSampleAttempts(n int) Option {
	return func(s *Simulation) {
		s.runtimeOpts = append(s.runtimeOpts, runtime.WithMaxSampleAttempts(n))
	}
}

// WithAdvanceRange bounds each simulated clock advance to [lo, hi].
func WithAdvanceRange(lo, hi time.Duration) Option {
	return func(s *Simulation) {
		s.runtimeOpts = append(s.runtimeOpts, runtime.WithChainOptions(actors.WithAdvanceRange(lo, hi)))
	}
}

// WithRunID labels events and logs.
func WithRunID(id string) Option {
	return func(s *Simulation) {
		s.runtimeOpts = append(s.runtimeOpts, runtime.WithRunID(id))
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Simulation) {
		s.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the simulation.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulation) {
		s.logger = logger
	}
}

// New creates a simulation against target. It fails fast on an unknown strategy name.
func New(target ports.TargetSystem, dispatcher ports.ActionDispatcher, pool *identity.Pool, opts ...Option) (*Simulation, error) {
	sim := &Simulation{}
	for _, opt := range opts {
		opt(sim)
	}

	// Ensure logger is initialized (so we don't pass nil to runtime)
	if sim.logger == nil {
		sim.logger = logging.NewNop()
	}

	runtimeOpts := []runtime.Option{
		runtime.WithLifecycleHooks(sim.hooks),
		runtime.WithLogger(sim.logger),
	}
	runtimeOpts = append(runtimeOpts, sim.runtimeOpts...)

	m, err := runtime.NewManager(target, dispatcher, pool, runtimeOpts...)
	if err != nil {
		return nil, err
	}
	sim.manager = m
	return sim, nil
}

// Provision selects and funds the active identities.
func (s *Simulation) Provision(ctx context.Context) error {
	return s.manager.Provision(ctx)
}

// Randomize generates n actions.
func (s *Simulation) Randomize(ctx context.Context, n int) error {
	return s.manager.Randomize(ctx, n)
}

// Run executes the generated actions in order.
func (s *Simulation) Run(ctx context.Context) error {
	return s.manager.Run(ctx)
}

// Simulate runs Provision, Randomize(n) and Run in sequence.
func (s *Simulation) Simulate(ctx context.Context, n int) error {
	if err := s.Provision(ctx); err != nil {
		return err
	}
	if err := s.Randomize(ctx, n); err != nil {
		return err
	}
	return s.Run(ctx)
}

// Actions returns a copy of the recorded action sequence.
func (s *Simulation) Actions() []domain.Action { return s.manager.Actions() }

// Users returns the active identities.
func (s *Simulation) Users() []common.Address { return s.manager.Users() }

// ActorNames returns the actor roster.
func (s *Simulation) ActorNames() []string { return s.manager.ActorNames() }

// Seed returns the resolved seed.
func (s *Simulation) Seed() int64 { return s.manager.Seed() }

// State returns the lifecycle phase.
func (s *Simulation) State() domain.SimulationState { return s.manager.State() }

// Err returns the failure that closed the simulation part way through a phase, or nil.
func (s *Simulation) Err() error { return s.manager.Err() }

// RunID returns the run label.
func (s *Simulation) RunID() string { return s.manager.RunID() }

// DefaultAccounts is the size of the account list a Deployment draws identities from.
const DefaultAccounts = 40

// DeploymentConfig describes a reference vault deployment.
type DeploymentConfig struct {
	Strategy string
	Accounts int
	Reserved int
	// Namespace prefixes every ledger key; defaults to the strategy name.
	Namespace string
	Logger    *slog.Logger
}

// Deployment bundles a reference vault with the dispatcher and identity pool that drive it.
type Deployment struct {
	Ledger     *vault.Ledger
	Dispatcher *vault.Dispatcher
	Pool       *identity.Pool
}

// Deploy creates a reference vault for cfg.Strategy on store. Administrative roles are taken
// from the reserved accounts; every action is checked by a snapshot.Manager.
func Deploy(ctx context.Context, store ports.LedgerStore, cfg DeploymentConfig) (*Deployment, error) {
	want, ok := provision.WantAsset(cfg.Strategy)
	if !ok {
		return nil, &domain.ConfigurationError{Field: "strategy", Value: cfg.Strategy, Err: domain.ErrUnknownStrategy}
	}
	if cfg.Accounts <= 0 {
		cfg.Accounts = DefaultAccounts
	}
	if cfg.Reserved <= 0 {
		cfg.Reserved = identity.DefaultReserved
	}
	if cfg.Reserved < 4 {
		return nil, &domain.ConfigurationError{Field: "reserved", Value: fmt.Sprint(cfg.Reserved), Err: fmt.Errorf("need 4 role accounts")}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}

	pool, err := identity.NewPool(identity.Generate(cfg.Accounts), cfg.Reserved)
	if err != nil {
		return nil, err
	}
	admin := pool.Admin()
	roles := domain.Roles{
		Governance:     admin[0],
		Strategist:     admin[1],
		VaultKeeper:    admin[2],
		StrategyKeeper: admin[3],
	}

	vcfg := vault.DefaultConfig(cfg.Strategy, want, roles)
	if cfg.Namespace != "" {
		vcfg.Namespace = cfg.Namespace
	}
	ledger, err := vault.Deploy(ctx, store, vcfg, vault.WithLogger(cfg.Logger))
	if err != nil {
		return nil, err
	}
	comparer := snapshot.NewManager(ledger, snapshot.WithLogger(cfg.Logger))

	return &Deployment{
		Ledger:     ledger,
		Dispatcher: vault.NewDispatcher(ledger, comparer),
		Pool:       pool,
	}, nil
}
