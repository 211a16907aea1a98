package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/aretw0/settsim/internal/logging"
	"github.com/aretw0/settsim/pkg/actors"
	"github.com/aretw0/settsim/pkg/domain"
	"github.com/aretw0/settsim/pkg/identity"
	"github.com/aretw0/settsim/pkg/ports"
	"github.com/aretw0/settsim/pkg/provision"
	"github.com/aretw0/settsim/pkg/registry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Manager drives one simulation through Idle -> Provisioned -> Randomized -> Running.
// It is single-use and not safe for concurrent use.
type Manager struct {
	target      ports.TargetSystem
	dispatcher  ports.ActionDispatcher
	pool        *identity.Pool
	registry    *registry.Registry
	provisioner ports.Provisioner

	seed     int64
	seedFunc SeedFunc
	rng      *rand.Rand

	userCount         int
	maxSampleAttempts int
	params            []domain.ParamSpec
	chainOpts         []actors.ChainOption

	state   domain.SimulationState
	failed  error
	users   []common.Address
	actors  []ports.Actor
	actions []domain.Action

	runID  string
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// NewManager resolves the provisioner for target, seeds the random source and registers
// the fixed infrastructure actors. It never mutates target.
func NewManager(target ports.TargetSystem, dispatcher ports.ActionDispatcher, pool *identity.Pool, opts ...Option) (*Manager, error) {
	m := &Manager{
		target:     target,
		dispatcher: dispatcher,
		pool:       pool,
		seedFunc:   WallClockSeed,
		userCount:  DefaultUserCount,
		params:     domain.DefaultParams,
		state:      domain.StateIdle,
	}
	for _, opt := range opts {
		opt(m)
	}

	switch {
	case target == nil:
		return nil, &domain.ConfigurationError{Field: "target", Err: errors.New("required")}
	case dispatcher == nil:
		return nil, &domain.ConfigurationError{Field: "dispatcher", Err: errors.New("required")}
	case pool == nil:
		return nil, &domain.ConfigurationError{Field: "pool", Err: errors.New("required")}
	case m.userCount <= 0:
		return nil, &domain.ConfigurationError{Field: "users", Value: fmt.Sprint(m.userCount), Err: errors.New("must be positive")}
	}

	if m.registry == nil {
		m.registry = provision.DefaultRegistry()
	}
	provisioner, err := m.registry.Resolve(target)
	if err != nil {
		return nil, err
	}
	m.provisioner = provisioner

	if m.logger == nil {
		m.logger = logging.NewNop()
	}
	if m.runID == "" {
		m.runID = uuid.NewString()
	}
	m.logger = m.logger.With("run_id", m.runID, "strategy", target.StrategyName())

	m.rng, m.seed = newSeededRNG(m.seed, m.seedFunc)

	roles := target.Roles()
	m.actors = append(m.actors,
		actors.NewVaultKeeper(roles.VaultKeeper, m.rng),
		actors.NewStrategyKeeper(roles.StrategyKeeper, m.rng),
	)
	for _, spec := range m.params {
		m.actors = append(m.actors, actors.NewParam(roles.Governance, spec, m.rng))
	}
	m.actors = append(m.actors, actors.NewChain(m.rng, m.chainOpts...))

	m.logger.Info("initialized simulation manager", "seed", m.seed)
	return m, nil
}

// Provision selects the active identities, funds them and adds one user actor per identity.
func (m *Manager) Provision(ctx context.Context) error {
	if err := m.expect("provision", domain.StateIdle); err != nil {
		return err
	}

	users, err := m.pool.Sample(m.rng, m.userCount, m.maxSampleAttempts)
	if err != nil {
		err = fmt.Errorf("provision (seed=%d): %w", m.seed, err)
		// An undersized pool is rejected before any draw; anything later has consumed the rng.
		if errors.Is(err, domain.ErrPoolTooSmall) {
			return err
		}
		return m.fail(err)
	}
	if err := m.provisioner.DistributeBaseAssets(ctx, users); err != nil {
		return m.fail(fmt.Errorf("distribute base assets (seed=%d): %w", m.seed, err))
	}
	if err := m.provisioner.DistributeTargetAssets(ctx, users); err != nil {
		return m.fail(fmt.Errorf("distribute target assets (seed=%d): %w", m.seed, err))
	}

	m.users = users
	for _, id := range users {
		m.actors = append(m.actors, actors.NewUser(id, m.rng))
	}

	m.logger.Info("provisioned", "users", len(m.users), "actors", len(m.actors))
	m.advance(ctx)
	return nil
}

// Randomize appends n actions, each from an actor chosen uniformly from the roster.
// Actions are not validated here; actors are responsible for proposing legal ones.
// An actor error is terminal: actors have already updated their memory for the
// discarded actions, so the manager refuses every later phase.
func (m *Manager) Randomize(ctx context.Context, n int) error {
	if err := m.expect("randomize", domain.StateProvisioned); err != nil {
		return err
	}
	if n < 0 {
		return &domain.ConfigurationError{Field: "actions", Value: fmt.Sprint(n), Err: errors.New("must not be negative")}
	}

	generated := make([]domain.Action, 0, n)
	for i := 0; i < n; i++ {
		actor := m.actors[m.rng.Intn(len(m.actors))]
		action, err := actor.GenerateAction(ctx)
		if err != nil {
			return m.fail(fmt.Errorf("randomize (seed=%d): %w", m.seed, &domain.ActorError{Actor: actor.Name(), Err: err}))
		}
		generated = append(generated, action)
	}
	start := len(m.actions)
	m.actions = append(m.actions, generated...)

	if m.hooks.OnActionGenerated != nil {
		for i, action := range generated {
			m.hooks.OnActionGenerated(ctx, &domain.ActionEvent{
				EventBase: m.event(domain.EventActionGenerated),
				Index:     start + i,
				Action:    action,
			})
		}
	}

	m.logger.Info("randomized", "actions", n)
	m.advance(ctx)
	return nil
}

// Run executes the recorded actions in order and stops at the first failure.
// The state is Running before the first dispatch and stays Running afterwards.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.expect("run", domain.StateRandomized); err != nil {
		return err
	}
	m.advance(ctx)
	m.logger.Info("running", "actions", len(m.actions))

	for i, action := range m.actions {
		err := m.dispatcher.Dispatch(ctx, action)
		if m.hooks.OnActionExecuted != nil {
			m.hooks.OnActionExecuted(ctx, &domain.ActionEvent{
				EventBase: m.event(domain.EventActionExecuted),
				Index:     i,
				Action:    action,
				Err:       err,
			})
		}
		if err != nil {
			m.logger.Error("action failed", "index", i, "action", action.String(), "seed", m.seed, "error", err)
			return &domain.ExecutionError{Seed: m.seed, Index: i, Action: action, Err: err}
		}
	}
	return nil
}

// Actions returns a copy of the recorded sequence.
func (m *Manager) Actions() []domain.Action {
	out := make([]domain.Action, len(m.actions))
	copy(out, m.actions)
	return out
}

// Users returns the active identities in selection order.
func (m *Manager) Users() []common.Address {
	out := make([]common.Address, len(m.users))
	copy(out, m.users)
	return out
}

// ActorNames returns the roster in registration order.
func (m *Manager) ActorNames() []string {
	names := make([]string, len(m.actors))
	for i, a := range m.actors {
		names[i] = a.Name()
	}
	return names
}

// Seed is the resolved seed; pass it back through WithSeed to replay the run.
func (m *Manager) Seed() int64 { return m.seed }

// State is the current lifecycle phase.
func (m *Manager) State() domain.SimulationState { return m.state }

// RunID labels this manager's events and logs.
func (m *Manager) RunID() string { return m.runID }

// Err returns the failure that closed the manager, or nil.
func (m *Manager) Err() error { return m.failed }

func (m *Manager) expect(op string, want domain.SimulationState) error {
	if m.failed != nil {
		return fmt.Errorf("%s (seed=%d): %w: %w", op, m.seed, domain.ErrManagerFailed, m.failed)
	}
	if m.state != want {
		return &domain.StateError{Op: op, Expected: want, Actual: m.state}
	}
	return nil
}

// fail closes the manager after a phase has partly mutated the target or the rng.
func (m *Manager) fail(err error) error {
	m.failed = err
	m.logger.Error("simulation manager failed", "state", m.state, "seed", m.seed, "error", err)
	return err
}

// advance moves to the next lifecycle state. Callers have checked the current state with expect.
func (m *Manager) advance(ctx context.Context) {
	from := m.state
	to, ok := from.Next()
	if !ok {
		return
	}
	m.state = to
	m.logger.Debug("phase", "from", from, "to", to)
	if m.hooks.OnPhaseEnter != nil {
		m.hooks.OnPhaseEnter(ctx, &domain.PhaseEvent{
			EventBase: m.event(domain.EventPhaseEnter),
			From:      from,
			To:        to,
		})
	}
}

func (m *Manager) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      t,
		RunID:     m.runID,
		Seed:      m.seed,
	}
}
