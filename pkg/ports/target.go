package ports

import (
	"context"

	"github.com/aretw0/settsim/pkg/domain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// TargetSystem is a handle to the deployment under test.
// Implementations must not be mutated by the engine during construction; only
// provisioners and dispatchers change target state.
type TargetSystem interface {
	// StrategyName is the variant name used to resolve a Provisioner.
	StrategyName() string

	// Roles returns the privileged identities of the deployment.
	Roles() domain.Roles

	// WantAsset is the asset deposited into the vault.
	WantAsset() domain.Asset

	// Balance returns the holder's balance of asset. Unknown holders have a zero balance.
	Balance(ctx context.Context, asset domain.Asset, holder common.Address) (*uint256.Int, error)

	// Mint credits amount of asset to the holder.
	Mint(ctx context.Context, asset domain.Asset, to common.Address, amount *uint256.Int) error

	// Convert exchanges the holder's inputs for the output asset (e.g. adding liquidity).
	Convert(ctx context.Context, holder common.Address, from []domain.AssetAmount, to domain.AssetAmount) error
}

// Provisioner establishes the initial state each active identity needs before any
// action on its behalf can be legal.
type Provisioner interface {
	DistributeBaseAssets(ctx context.Context, identities []common.Address) error
	DistributeTargetAssets(ctx context.Context, identities []common.Address) error
}

// Actor proposes the next action it can legally take.
// GenerateAction is only called while the owning manager is randomizing.
type Actor interface {
	Name() string
	GenerateAction(ctx context.Context) (domain.Action, error)
}
