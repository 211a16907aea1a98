package provision_test

import (
	"context"
	"testing"

	"github.com/aretw0/settsim/pkg/adapters/memory"
	"github.com/aretw0/settsim/pkg/domain"
	"github.com/aretw0/settsim/pkg/identity"
	"github.com/aretw0/settsim/pkg/provision"
	"github.com/aretw0/settsim/pkg/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deploy(t *testing.T, strategy string, want domain.Asset) *vault.Ledger {
	t.Helper()
	l, err := vault.Deploy(context.Background(), memory.NewStore(), vault.DefaultConfig(strategy, want, domain.Roles{}))
	require.NoError(t, err)
	return l
}

func TestDefaultRegistry_Names(t *testing.T) {
	assert.Equal(t, []string{
		provision.StrategyDiggLpMetaFarm,
		provision.StrategyDiggRewards,
		provision.StrategySushiDiggWbtcLpOptimizer,
	}, provision.DefaultRegistry().Names())
}

func TestProvisioners_FundWant(t *testing.T) {
	users := identity.Generate(3)

	for _, strategy := range provision.DefaultRegistry().Names() {
		t.Run(strategy, func(t *testing.T) {
			ctx := context.Background()
			want, ok := provision.WantAsset(strategy)
			require.True(t, ok)

			l := deploy(t, strategy, want)
			p, err := provision.DefaultRegistry().Resolve(l)
			require.NoError(t, err)

			require.NoError(t, p.DistributeBaseAssets(ctx, users))
			require.NoError(t, p.DistributeTargetAssets(ctx, users))

			for _, u := range users {
				bal, err := l.Balance(ctx, want, u)
				require.NoError(t, err)
				assert.False(t, bal.IsZero(), "%s holds no %s", u.Hex(), want)
			}
		})
	}
}

func TestLiquidityProvider_PoolsHalf(t *testing.T) {
	ctx := context.Background()
	l := deploy(t, provision.StrategyDiggLpMetaFarm, domain.AssetUniDiggWBTC)
	p, err := provision.NewDiggLpMetaFarm(l)
	require.NoError(t, err)

	user := identity.Generate(1)
	require.NoError(t, p.DistributeBaseAssets(ctx, user))
	require.NoError(t, p.DistributeTargetAssets(ctx, user))

	half := provision.GrantAmount.Clone()
	half.Rsh(half, 1)
	for _, asset := range []domain.Asset{domain.AssetDigg, domain.AssetWBTC, domain.AssetUniDiggWBTC} {
		bal, err := l.Balance(ctx, asset, user[0])
		require.NoError(t, err)
		assert.True(t, half.Eq(bal), "%s: %s", asset, bal.Dec())
	}
}

func TestLiquidityProvider_RequiresBaseAssets(t *testing.T) {
	l := deploy(t, provision.StrategySushiDiggWbtcLpOptimizer, domain.AssetSushiDiggWBTC)
	p, err := provision.NewSushiDiggWbtcLpOptimizer(l)
	require.NoError(t, err)

	assert.Error(t, p.DistributeTargetAssets(context.Background(), identity.Generate(1)))
}

func TestFactory_RejectsMismatchedWant(t *testing.T) {
	l := deploy(t, provision.StrategyDiggRewards, domain.AssetWBTC)
	_, err := provision.NewDiggRewards(l)

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "want", cfgErr.Field)
}

func TestWantAsset_Unknown(t *testing.T) {
	_, ok := provision.WantAsset("StrategyUnknown")
	assert.False(t, ok)
}
