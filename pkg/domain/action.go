package domain

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ActionKind identifies the operation an Action performs against the target.
type ActionKind string

// Standard Action Kinds
const (
	// ActionDeposit moves Bps basis points of the identity's idle want into the vault.
	ActionDeposit ActionKind = "deposit"

	// ActionWithdraw burns Bps basis points of the identity's vault shares.
	ActionWithdraw ActionKind = "withdraw"

	// ActionWithdrawAll burns every vault share held by the identity.
	ActionWithdrawAll ActionKind = "withdraw_all"

	// ActionEarn pushes the vault's available balance into the strategy.
	ActionEarn ActionKind = "earn"

	// ActionHarvest realizes accrued strategy yield, minus performance fees.
	ActionHarvest ActionKind = "harvest"

	// ActionTend deploys want sitting loose in the strategy.
	ActionTend ActionKind = "tend"

	// ActionSetParam sets the privileged parameter Param to Bps.
	ActionSetParam ActionKind = "set_param"

	// ActionAdvanceTime moves the simulated clock forward by Duration.
	ActionAdvanceTime ActionKind = "advance_time"
)

// IsDeposit reports whether k adds to an identity's position.
func (k ActionKind) IsDeposit() bool {
	return k == ActionDeposit
}

// IsWithdrawal reports whether k removes from an identity's position.
func (k ActionKind) IsWithdrawal() bool {
	return k == ActionWithdraw || k == ActionWithdrawAll
}

// MaxBps is the basis point denominator.
const MaxBps = 10_000

// Action is an immutable record of one unit of work.
// Actors build Actions by value; the engine never mutates them after they are appended.
type Action struct {
	// Actor is the name of the actor that generated the action.
	Actor string

	// Identity is the account the action executes as. Zero for the chain actor.
	Identity common.Address

	// Kind is the operation to perform.
	Kind ActionKind

	// Param names the privileged parameter (ActionSetParam only).
	Param string

	// Bps is a fraction or value in basis points, depending on Kind.
	Bps uint64

	// Duration is the clock advance (ActionAdvanceTime only).
	Duration time.Duration
}

func (a Action) String() string {
	switch a.Kind {
	case ActionAdvanceTime:
		return fmt.Sprintf("%s %s %s", a.Actor, a.Kind, a.Duration)
	case ActionSetParam:
		return fmt.Sprintf("%s %s %s=%d", a.Actor, a.Kind, a.Param, a.Bps)
	case ActionDeposit, ActionWithdraw:
		return fmt.Sprintf("%s %s %dbps as %s", a.Actor, a.Kind, a.Bps, a.Identity.Hex())
	default:
		return fmt.Sprintf("%s %s as %s", a.Actor, a.Kind, a.Identity.Hex())
	}
}
