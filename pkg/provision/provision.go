// Package provision funds the active identities of a simulation so that the
// actions their actors propose can succeed against the target.
//
// One provisioner variant exists per strategy name. DefaultRegistry wires all of them.
package provision

import (
	"context"
	"fmt"

	"github.com/aretw0/settsim/pkg/domain"
	"github.com/aretw0/settsim/pkg/ports"
	"github.com/aretw0/settsim/pkg/registry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Strategy names with a registered provisioner.
const (
	StrategyDiggRewards              = "StrategyDiggRewards"
	StrategyDiggLpMetaFarm           = "StrategyDiggLpMetaFarm"
	StrategySushiDiggWbtcLpOptimizer = "StrategySushiDiggWbtcLpOptimizer"
)

// GrantAmount is the quantity of each base asset minted to every identity.
var GrantAmount = new(uint256.Int).Mul(uint256.NewInt(1_000), uint256.NewInt(1e18))

// WantAsset returns the asset deposited by the vault of a registered strategy.
func WantAsset(strategy string) (domain.Asset, bool) {
	switch strategy {
	case StrategyDiggRewards:
		return domain.AssetDigg, true
	case StrategyDiggLpMetaFarm:
		return domain.AssetUniDiggWBTC, true
	case StrategySushiDiggWbtcLpOptimizer:
		return domain.AssetSushiDiggWBTC, true
	default:
		return "", false
	}
}

// DefaultRegistry returns a registry holding every provisioner variant.
func DefaultRegistry() *registry.Registry {
	reg := registry.NewRegistry()
	reg.Register(StrategyDiggRewards, NewDiggRewards)
	reg.Register(StrategyDiggLpMetaFarm, NewDiggLpMetaFarm)
	reg.Register(StrategySushiDiggWbtcLpOptimizer, NewSushiDiggWbtcLpOptimizer)
	return reg
}

// base mints a fixed grant of each asset to every identity.
type base struct {
	target ports.TargetSystem
	assets []domain.Asset
}

func (b *base) DistributeBaseAssets(ctx context.Context, identities []common.Address) error {
	for _, id := range identities {
		for _, asset := range b.assets {
			if err := b.target.Mint(ctx, asset, id, GrantAmount.Clone()); err != nil {
				return fmt.Errorf("distribute %s to %s: %w", asset, id.Hex(), err)
			}
		}
	}
	return nil
}

func requireWant(target ports.TargetSystem, want domain.Asset) error {
	if got := target.WantAsset(); got != want {
		return &domain.ConfigurationError{
			Field: "want",
			Value: string(got),
			Err:   fmt.Errorf("%s deposits %s", target.StrategyName(), want),
		}
	}
	return nil
}

// DiggRewards provisions the single-asset DIGG vault.
// Base assets are the reward and pairing tokens; the target asset is DIGG itself.
type DiggRewards struct {
	base
}

// NewDiggRewards is the Factory for StrategyDiggRewards.
func NewDiggRewards(target ports.TargetSystem) (ports.Provisioner, error) {
	if err := requireWant(target, domain.AssetDigg); err != nil {
		return nil, err
	}
	return &DiggRewards{base{target: target, assets: []domain.Asset{domain.AssetBadger, domain.AssetWBTC}}}, nil
}

func (p *DiggRewards) DistributeTargetAssets(ctx context.Context, identities []common.Address) error {
	for _, id := range identities {
		if err := p.target.Mint(ctx, domain.AssetDigg, id, GrantAmount.Clone()); err != nil {
			return fmt.Errorf("distribute want to %s: %w", id.Hex(), err)
		}
	}
	return nil
}

// LiquidityProvider provisions vaults whose want is a DIGG/WBTC pool token.
// Each identity converts half of its DIGG and WBTC into the pool token.
type LiquidityProvider struct {
	base
	lp domain.Asset
}

// NewDiggLpMetaFarm is the Factory for StrategyDiggLpMetaFarm.
func NewDiggLpMetaFarm(target ports.TargetSystem) (ports.Provisioner, error) {
	return newLiquidityProvider(target, domain.AssetUniDiggWBTC)
}

// NewSushiDiggWbtcLpOptimizer is the Factory for StrategySushiDiggWbtcLpOptimizer.
func NewSushiDiggWbtcLpOptimizer(target ports.TargetSystem) (ports.Provisioner, error) {
	return newLiquidityProvider(target, domain.AssetSushiDiggWBTC)
}

func newLiquidityProvider(target ports.TargetSystem, lp domain.Asset) (ports.Provisioner, error) {
	if err := requireWant(target, lp); err != nil {
		return nil, err
	}
	return &LiquidityProvider{
		base: base{target: target, assets: []domain.Asset{domain.AssetDigg, domain.AssetWBTC}},
		lp:   lp,
	}, nil
}

func (p *LiquidityProvider) DistributeTargetAssets(ctx context.Context, identities []common.Address) error {
	for _, id := range identities {
		digg, err := p.target.Balance(ctx, domain.AssetDigg, id)
		if err != nil {
			return err
		}
		wbtc, err := p.target.Balance(ctx, domain.AssetWBTC, id)
		if err != nil {
			return err
		}

		half := new(uint256.Int).Rsh(minInt(digg, wbtc), 1)
		if half.IsZero() {
			return fmt.Errorf("identity %s has no %s/%s to pool", id.Hex(), domain.AssetDigg, domain.AssetWBTC)
		}

		in := []domain.AssetAmount{
			{Asset: domain.AssetDigg, Amount: half.Clone()},
			{Asset: domain.AssetWBTC, Amount: half.Clone()},
		}
		// Pool tokens are minted 1:1 with the paired amount.
		out := domain.AssetAmount{Asset: p.lp, Amount: half.Clone()}
		if err := p.target.Convert(ctx, id, in, out); err != nil {
			return fmt.Errorf("add liquidity for %s: %w", id.Hex(), err)
		}
	}
	return nil
}

func minInt(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return a
	}
	return b
}
