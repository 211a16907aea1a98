package actors

import (
	"context"
	"math/rand"

	"github.com/aretw0/settsim/pkg/domain"
	"github.com/ethereum/go-ethereum/common"
)

// Deposit and withdraw fractions, in basis points.
const (
	MinDepositBps  = 1_000
	MinWithdrawBps = 1
	MaxWithdrawBps = domain.MaxBps - 1
)

// User deposits into and withdraws from the vault on behalf of one identity.
type User struct {
	id  common.Address
	rng *rand.Rand

	// hasPosition is true between a deposit and the next full withdrawal.
	hasPosition bool
}

// NewUser creates the actor for one active identity.
func NewUser(id common.Address, rng *rand.Rand) *User {
	return &User{id: id, rng: rng}
}

func (u *User) Name() string {
	return "user:" + u.id.Hex()
}

// Identity is the account the user acts as.
func (u *User) Identity() common.Address {
	return u.id
}

// GenerateAction proposes a deposit, or once a deposit exists, a partial or full withdrawal.
func (u *User) GenerateAction(ctx context.Context) (domain.Action, error) {
	options := []domain.ActionKind{domain.ActionDeposit}
	if u.hasPosition {
		options = append(options, domain.ActionWithdraw, domain.ActionWithdrawAll)
	}

	a := domain.Action{
		Actor:    u.Name(),
		Identity: u.id,
		Kind:     options[u.rng.Intn(len(options))],
	}
	switch a.Kind {
	case domain.ActionDeposit:
		a.Bps = MinDepositBps + uint64(u.rng.Intn(domain.MaxBps-MinDepositBps+1))
		u.hasPosition = true
	case domain.ActionWithdraw:
		// Partial withdrawals never burn every share, so the position survives.
		a.Bps = MinWithdrawBps + uint64(u.rng.Intn(MaxWithdrawBps-MinWithdrawBps+1))
	case domain.ActionWithdrawAll:
		u.hasPosition = false
	}
	return a, nil
}
