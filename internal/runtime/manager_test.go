package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/settsim/internal/runtime"
	"github.com/aretw0/settsim/pkg/adapters/memory"
	"github.com/aretw0/settsim/pkg/domain"
	"github.com/aretw0/settsim/pkg/identity"
	"github.com/aretw0/settsim/pkg/ports"
	"github.com/aretw0/settsim/pkg/provision"
	"github.com/aretw0/settsim/pkg/registry"
	"github.com/aretw0/settsim/pkg/snapshot"
	"github.com/aretw0/settsim/pkg/vault"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store      *memory.Store
	ledger     *vault.Ledger
	dispatcher *vault.Dispatcher
	pool       *identity.Pool
}

func newFixture(t *testing.T, strategy string) *fixture {
	t.Helper()
	accounts := identity.Generate(40)
	pool, err := identity.NewPool(accounts, identity.DefaultReserved)
	require.NoError(t, err)

	admin := pool.Admin()
	roles := domain.Roles{Governance: admin[0], Strategist: admin[1], VaultKeeper: admin[2], StrategyKeeper: admin[3]}

	want, ok := provision.WantAsset(strategy)
	if !ok {
		want = domain.AssetDigg
	}
	store := memory.NewStore()
	ledger, err := vault.Deploy(context.Background(), store, vault.DefaultConfig(strategy, want, roles))
	require.NoError(t, err)

	return &fixture{
		store:      store,
		ledger:     ledger,
		dispatcher: vault.NewDispatcher(ledger, snapshot.NewManager(ledger)),
		pool:       pool,
	}
}

func (f *fixture) manager(t *testing.T, dispatcher ports.ActionDispatcher, opts ...runtime.Option) *runtime.Manager {
	t.Helper()
	if dispatcher == nil {
		dispatcher = f.dispatcher
	}
	m, err := runtime.NewManager(f.ledger, dispatcher, f.pool, opts...)
	require.NoError(t, err)
	return m
}

// recorder dispatches nothing and fails at failAt, if set.
type recorder struct {
	seen   []domain.Action
	failAt int
	err    error
}

func (r *recorder) Dispatch(ctx context.Context, a domain.Action) error {
	r.seen = append(r.seen, a)
	if r.err != nil && len(r.seen)-1 == r.failAt {
		return r.err
	}
	return nil
}

func prepare(t *testing.T, m *runtime.Manager, n int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, m.Provision(ctx))
	require.NoError(t, m.Randomize(ctx, n))
}

func TestManager_Seed42IsReproducible(t *testing.T) {
	run := func() *runtime.Manager {
		f := newFixture(t, provision.StrategyDiggRewards)
		m := f.manager(t, nil, runtime.WithSeed(42), runtime.WithUserCount(10))
		prepare(t, m, 50)
		require.NoError(t, m.Run(context.Background()))
		return m
	}

	a, b := run(), run()
	require.Len(t, a.Actions(), 50)
	require.Len(t, b.Actions(), 50)
	for i := range a.Actions() {
		assert.Equal(t, a.Actions()[i].Actor, b.Actions()[i].Actor, "index %d", i)
		assert.Equal(t, a.Actions()[i].Kind, b.Actions()[i].Kind, "index %d", i)
	}
	assert.Equal(t, a.Actions(), b.Actions())
	assert.Equal(t, a.Users(), b.Users())
	assert.Equal(t, int64(42), a.Seed())
}

func TestManager_AllStrategiesRun(t *testing.T) {
	for _, strategy := range provision.DefaultRegistry().Names() {
		t.Run(strategy, func(t *testing.T) {
			f := newFixture(t, strategy)
			m := f.manager(t, nil, runtime.WithSeed(7))
			prepare(t, m, 200)
			assert.NoError(t, m.Run(context.Background()))
		})
	}
}

func TestManager_RunOnIdle(t *testing.T) {
	f := newFixture(t, provision.StrategyDiggRewards)
	m := f.manager(t, nil)

	err := m.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrInvalidState)

	var stateErr *domain.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, domain.StateIdle, stateErr.Actual)
	assert.Equal(t, domain.StateRandomized, stateErr.Expected)
	assert.Equal(t, domain.StateIdle, m.State())
}

func TestManager_LifecycleOrdering(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, provision.StrategyDiggRewards)

	var phases []domain.SimulationState
	m := f.manager(t, &recorder{}, runtime.WithSeed(1), runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnPhaseEnter: func(_ context.Context, e *domain.PhaseEvent) {
			phases = append(phases, e.To)
		},
	}))
	assert.Equal(t, domain.StateIdle, m.State())

	assert.ErrorIs(t, m.Randomize(ctx, 5), domain.ErrInvalidState)

	require.NoError(t, m.Provision(ctx))
	assert.Equal(t, domain.StateProvisioned, m.State())
	assert.ErrorIs(t, m.Provision(ctx), domain.ErrInvalidState)
	assert.ErrorIs(t, m.Run(ctx), domain.ErrInvalidState)

	require.NoError(t, m.Randomize(ctx, 5))
	assert.Equal(t, domain.StateRandomized, m.State())
	assert.ErrorIs(t, m.Randomize(ctx, 5), domain.ErrInvalidState)

	require.NoError(t, m.Run(ctx))
	assert.Equal(t, domain.StateRunning, m.State())
	assert.ErrorIs(t, m.Run(ctx), domain.ErrInvalidState)

	assert.Equal(t, []domain.SimulationState{domain.StateProvisioned, domain.StateRandomized, domain.StateRunning}, phases)
}

func TestManager_RunningBeforeFirstDispatch(t *testing.T) {
	f := newFixture(t, provision.StrategyDiggRewards)

	var m *runtime.Manager
	var observed []domain.SimulationState
	dispatcher := ports.DispatcherFunc(func(context.Context, domain.Action) error {
		observed = append(observed, m.State())
		return nil
	})
	m = f.manager(t, dispatcher, runtime.WithSeed(3))
	prepare(t, m, 3)

	require.NoError(t, m.Run(context.Background()))
	assert.Equal(t, []domain.SimulationState{domain.StateRunning, domain.StateRunning, domain.StateRunning}, observed)
}

func TestManager_DeterministicForFixedSeed(t *testing.T) {
	for _, seed := range []int64{1, 99, -5, 1 << 40} {
		f1 := newFixture(t, provision.StrategyDiggLpMetaFarm)
		f2 := newFixture(t, provision.StrategyDiggLpMetaFarm)
		a := f1.manager(t, &recorder{}, runtime.WithSeed(seed))
		b := f2.manager(t, &recorder{}, runtime.WithSeed(seed))
		prepare(t, a, 100)
		prepare(t, b, 100)

		assert.Equal(t, a.Users(), b.Users(), "seed %d", seed)
		assert.Equal(t, a.Actions(), b.Actions(), "seed %d", seed)
	}
}

func TestManager_DistinctIdentities(t *testing.T) {
	f := newFixture(t, provision.StrategyDiggRewards)
	m := f.manager(t, &recorder{}, runtime.WithSeed(11), runtime.WithUserCount(34))
	require.NoError(t, m.Provision(context.Background()))

	admin := map[common.Address]bool{}
	for _, a := range f.pool.Admin() {
		admin[a] = true
	}
	seen := map[common.Address]bool{}
	for _, u := range m.Users() {
		assert.False(t, seen[u], "duplicate %s", u.Hex())
		assert.False(t, admin[u], "admin %s selected", u.Hex())
		seen[u] = true
	}
	assert.Len(t, seen, 34)
	assert.Len(t, m.ActorNames(), 6+34)
}

func TestManager_WithdrawalsFollowDeposits(t *testing.T) {
	f := newFixture(t, provision.StrategyDiggRewards)
	m := f.manager(t, &recorder{}, runtime.WithSeed(2024))
	prepare(t, m, 500)

	open := map[string]bool{}
	for i, a := range m.Actions() {
		switch {
		case a.Kind.IsDeposit():
			open[a.Actor] = true
		case a.Kind.IsWithdrawal():
			require.True(t, open[a.Actor], "action %d: %s withdraws without a deposit", i, a.Actor)
			if a.Kind == domain.ActionWithdrawAll {
				open[a.Actor] = false
			}
		}
	}
}

func TestManager_ActionsAppendOnly(t *testing.T) {
	f := newFixture(t, provision.StrategyDiggRewards)
	m := f.manager(t, &recorder{}, runtime.WithSeed(5))
	prepare(t, m, 50)

	actions := m.Actions()
	require.Len(t, actions, 50)
	actions[0].Kind = "tampered"
	assert.NotEqual(t, domain.ActionKind("tampered"), m.Actions()[0].Kind)

	require.NoError(t, m.Run(context.Background()))
	assert.Len(t, m.Actions(), 50)
}

func TestManager_RandomizeZero(t *testing.T) {
	f := newFixture(t, provision.StrategyDiggRewards)
	m := f.manager(t, &recorder{}, runtime.WithSeed(5))
	prepare(t, m, 0)

	assert.Empty(t, m.Actions())
	assert.NoError(t, m.Run(context.Background()))
}

func TestManager_RandomizeNegative(t *testing.T) {
	f := newFixture(t, provision.StrategyDiggRewards)
	m := f.manager(t, &recorder{}, runtime.WithSeed(5))
	require.NoError(t, m.Provision(context.Background()))

	var cfgErr *domain.ConfigurationError
	assert.ErrorAs(t, m.Randomize(context.Background(), -1), &cfgErr)
	assert.Equal(t, domain.StateProvisioned, m.State())
}

func TestManager_OrderAndStopAtFailure(t *testing.T) {
	f := newFixture(t, provision.StrategyDiggRewards)
	boom := errors.New("reverted")
	rec := &recorder{failAt: 3, err: boom}

	var executed []int
	m := f.manager(t, rec, runtime.WithSeed(8), runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnActionExecuted: func(_ context.Context, e *domain.ActionEvent) {
			executed = append(executed, e.Index)
		},
	}))
	prepare(t, m, 10)

	err := m.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrExecution)
	require.ErrorIs(t, err, boom)

	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, int64(8), execErr.Seed)
	assert.Equal(t, 3, execErr.Index)
	assert.Equal(t, m.Actions()[3], execErr.Action)
	assert.Contains(t, err.Error(), "seed=8")

	assert.Equal(t, m.Actions()[:4], rec.seen)
	assert.Equal(t, []int{0, 1, 2, 3}, executed)
	assert.Equal(t, domain.StateRunning, m.State())
}

func TestManager_CanceledContextFailsFirstDispatch(t *testing.T) {
	f := newFixture(t, provision.StrategyDiggRewards)
	m := f.manager(t, nil, runtime.WithSeed(9))
	prepare(t, m, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Run(ctx)
	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, 0, execErr.Index)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestManager_UnknownStrategy(t *testing.T) {
	f := newFixture(t, "StrategyUnknown")

	_, err := runtime.NewManager(f.ledger, f.dispatcher, f.pool)
	require.ErrorIs(t, err, domain.ErrUnknownStrategy)

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "StrategyUnknown", cfgErr.Value)
}

func TestManager_ConstructionDoesNotMutateTarget(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, provision.StrategyDiggRewards)

	before, err := f.store.Keys(ctx, "")
	require.NoError(t, err)
	_ = f.manager(t, nil, runtime.WithSeed(1))
	after, err := f.store.Keys(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, before, after)
}

func TestManager_InvalidConfiguration(t *testing.T) {
	f := newFixture(t, provision.StrategyDiggRewards)
	var cfgErr *domain.ConfigurationError

	_, err := runtime.NewManager(f.ledger, f.dispatcher, f.pool, runtime.WithUserCount(0))
	assert.ErrorAs(t, err, &cfgErr)

	_, err = runtime.NewManager(nil, f.dispatcher, f.pool)
	assert.ErrorAs(t, err, &cfgErr)

	_, err = runtime.NewManager(f.ledger, nil, f.pool)
	assert.ErrorAs(t, err, &cfgErr)
}

func TestManager_SeedDerivation(t *testing.T) {
	f := newFixture(t, provision.StrategyDiggRewards)

	calls := 0
	derive := func() int64 {
		calls++
		return 77
	}

	m := f.manager(t, nil, runtime.WithSeedFunc(derive))
	assert.Equal(t, int64(77), m.Seed())
	assert.Equal(t, 1, calls)

	m = f.manager(t, nil, runtime.WithSeed(5), runtime.WithSeedFunc(derive))
	assert.Equal(t, int64(5), m.Seed())
	assert.Equal(t, 1, calls, "explicit seed must not derive")
}

func TestManager_ZeroDerivedSeedIsReplayable(t *testing.T) {
	f1 := newFixture(t, provision.StrategyDiggRewards)
	first := f1.manager(t, &recorder{}, runtime.WithSeedFunc(func() int64 { return 0 }))
	require.NotZero(t, first.Seed())
	prepare(t, first, 20)

	f2 := newFixture(t, provision.StrategyDiggRewards)
	replay := f2.manager(t, &recorder{}, runtime.WithSeed(first.Seed()))
	prepare(t, replay, 20)

	assert.Equal(t, first.Actions(), replay.Actions())
}

func TestManager_DerivedSeedReplays(t *testing.T) {
	f1 := newFixture(t, provision.StrategyDiggRewards)
	first := f1.manager(t, &recorder{})
	prepare(t, first, 40)

	f2 := newFixture(t, provision.StrategyDiggRewards)
	replay := f2.manager(t, &recorder{}, runtime.WithSeed(first.Seed()))
	prepare(t, replay, 40)

	assert.Equal(t, first.Actions(), replay.Actions())
}

func TestManager_PoolTooSmall(t *testing.T) {
	f := newFixture(t, provision.StrategyDiggRewards)
	m := f.manager(t, nil, runtime.WithUserCount(f.pool.Len()+1))

	err := m.Provision(context.Background())
	assert.ErrorIs(t, err, domain.ErrPoolTooSmall)
	assert.Equal(t, domain.StateIdle, m.State())
}

func TestManager_ActorExhausted(t *testing.T) {
	f := newFixture(t, provision.StrategyDiggRewards)
	m := f.manager(t, &recorder{},
		runtime.WithSeed(1),
		runtime.WithUserCount(1),
		runtime.WithParams([]domain.ParamSpec{{Name: domain.ParamMin, Min: 10, Max: 5}}),
	)
	require.NoError(t, m.Provision(context.Background()))

	err := m.Randomize(context.Background(), 200)
	require.ErrorIs(t, err, domain.ErrActorExhausted)

	var actorErr *domain.ActorError
	require.ErrorAs(t, err, &actorErr)
	assert.Equal(t, "param:min", actorErr.Actor)
	assert.Empty(t, m.Actions(), "failed randomization must not record actions")
	assert.Equal(t, domain.StateProvisioned, m.State())
	assert.Equal(t, err, m.Err())
}

func TestManager_ActorErrorIsTerminal(t *testing.T) {
	ctx := context.Background()
	for seed := int64(1); seed <= 50; seed++ {
		f := newFixture(t, provision.StrategyDiggRewards)

		generated := 0
		m := f.manager(t, &recorder{},
			runtime.WithSeed(seed),
			runtime.WithParams([]domain.ParamSpec{{Name: domain.ParamMin, Min: 10, Max: 5}}),
			runtime.WithLifecycleHooks(domain.LifecycleHooks{
				OnActionGenerated: func(context.Context, *domain.ActionEvent) { generated++ },
			}),
		)
		require.NoError(t, m.Provision(ctx))
		require.ErrorIs(t, m.Randomize(ctx, 100), domain.ErrActorExhausted)

		// Users remember deposits from the discarded batch; a retry must not record anything.
		err := m.Randomize(ctx, 1)
		assert.ErrorIs(t, err, domain.ErrManagerFailed, "seed %d", seed)
		assert.ErrorIs(t, err, domain.ErrActorExhausted, "seed %d", seed)
		assert.ErrorIs(t, m.Run(ctx), domain.ErrManagerFailed, "seed %d", seed)
		assert.Empty(t, m.Actions(), "seed %d", seed)
		assert.Zero(t, generated, "seed %d: hooks fired for discarded actions", seed)
	}
}

// failingProvisioner funds base assets, then fails the target distribution.
type failingProvisioner struct {
	base int
}

func (p *failingProvisioner) DistributeBaseAssets(ctx context.Context, identities []common.Address) error {
	p.base++
	return nil
}

func (p *failingProvisioner) DistributeTargetAssets(ctx context.Context, identities []common.Address) error {
	return errors.New("mint reverted")
}

func TestManager_ProvisionFailureIsTerminal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, provision.StrategyDiggRewards)

	prov := &failingProvisioner{}
	reg := registry.NewRegistry()
	reg.Register(provision.StrategyDiggRewards, func(ports.TargetSystem) (ports.Provisioner, error) {
		return prov, nil
	})
	m := f.manager(t, &recorder{}, runtime.WithSeed(9), runtime.WithRegistry(reg))

	err := m.Provision(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrManagerFailed)

	err = m.Provision(ctx)
	assert.ErrorIs(t, err, domain.ErrManagerFailed)
	assert.ErrorContains(t, err, "mint reverted")
	assert.Equal(t, 1, prov.base, "identities must not be funded twice")
	assert.Equal(t, domain.StateIdle, m.State())
	assert.Empty(t, m.Users())
}

func TestManager_PoolTooSmallIsRetryable(t *testing.T) {
	f := newFixture(t, provision.StrategyDiggRewards)
	m := f.manager(t, nil, runtime.WithUserCount(f.pool.Len()+1))

	require.ErrorIs(t, m.Provision(context.Background()), domain.ErrPoolTooSmall)
	assert.NoError(t, m.Err())
}

func TestManager_GeneratedHooks(t *testing.T) {
	f := newFixture(t, provision.StrategyDiggRewards)

	var events []*domain.ActionEvent
	m := f.manager(t, &recorder{}, runtime.WithSeed(4), runtime.WithRunID("run-1"), runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnActionGenerated: func(_ context.Context, e *domain.ActionEvent) {
			events = append(events, e)
		},
	}))
	prepare(t, m, 12)

	require.Len(t, events, 12)
	for i, e := range events {
		assert.Equal(t, i, e.Index)
		assert.Equal(t, "run-1", e.RunID)
		assert.Equal(t, int64(4), e.Seed)
		assert.Equal(t, domain.EventActionGenerated, e.Type)
		assert.Equal(t, m.Actions()[i], e.Action)
	}
}
