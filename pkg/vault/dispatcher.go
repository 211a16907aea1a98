package vault

import (
	"context"
	"fmt"

	"github.com/aretw0/settsim/pkg/domain"
	"github.com/aretw0/settsim/pkg/ports"
)

// Dispatcher executes recorded actions against a Ledger.
// When a comparer is set, every action runs inside its Compare.
type Dispatcher struct {
	ledger   *Ledger
	comparer ports.SnapshotComparer
}

// NewDispatcher creates a dispatcher. comparer may be nil.
func NewDispatcher(ledger *Ledger, comparer ports.SnapshotComparer) *Dispatcher {
	return &Dispatcher{ledger: ledger, comparer: comparer}
}

// Dispatch implements ports.ActionDispatcher.
func (d *Dispatcher) Dispatch(ctx context.Context, action domain.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.comparer == nil {
		return d.execute(ctx, action)
	}
	return d.comparer.Compare(ctx, action, func(ctx context.Context) error {
		return d.execute(ctx, action)
	})
}

func (d *Dispatcher) execute(ctx context.Context, a domain.Action) error {
	switch a.Kind {
	case domain.ActionDeposit:
		return d.ledger.Deposit(ctx, a.Identity, a.Bps)
	case domain.ActionWithdraw:
		return d.ledger.Withdraw(ctx, a.Identity, a.Bps)
	case domain.ActionWithdrawAll:
		return d.ledger.WithdrawAll(ctx, a.Identity)
	case domain.ActionEarn:
		return d.ledger.Earn(ctx, a.Identity)
	case domain.ActionHarvest:
		return d.ledger.Harvest(ctx, a.Identity)
	case domain.ActionTend:
		return d.ledger.Tend(ctx, a.Identity)
	case domain.ActionSetParam:
		return d.ledger.SetParam(ctx, a.Identity, a.Param, a.Bps)
	case domain.ActionAdvanceTime:
		return d.ledger.AdvanceTime(ctx, a.Duration)
	default:
		return fmt.Errorf("unsupported action kind %q", a.Kind)
	}
}
