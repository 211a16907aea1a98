package actors

import (
	"context"
	"math/rand"

	"github.com/aretw0/settsim/pkg/domain"
	"github.com/ethereum/go-ethereum/common"
)

// Keeper runs the maintenance operations of one privileged role.
type Keeper struct {
	name  string
	id    common.Address
	kinds []domain.ActionKind
	rng   *rand.Rand
}

// NewVaultKeeper proposes earn as the vault keeper.
func NewVaultKeeper(id common.Address, rng *rand.Rand) *Keeper {
	return &Keeper{name: "vault_keeper", id: id, kinds: []domain.ActionKind{domain.ActionEarn}, rng: rng}
}

// NewStrategyKeeper proposes harvest or tend as the strategy keeper.
func NewStrategyKeeper(id common.Address, rng *rand.Rand) *Keeper {
	return &Keeper{
		name:  "strategy_keeper",
		id:    id,
		kinds: []domain.ActionKind{domain.ActionHarvest, domain.ActionTend},
		rng:   rng,
	}
}

func (k *Keeper) Name() string {
	return k.name
}

// GenerateAction picks one of the keeper's operations uniformly.
func (k *Keeper) GenerateAction(ctx context.Context) (domain.Action, error) {
	if len(k.kinds) == 0 {
		return domain.Action{}, domain.ErrActorExhausted
	}
	return domain.Action{
		Actor:    k.name,
		Identity: k.id,
		Kind:     k.kinds[k.rng.Intn(len(k.kinds))],
	}, nil
}
