package snapshot

import (
	"github.com/aretw0/settsim/pkg/vault"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Delta is the signed change of one quantity.
type Delta struct {
	Before *uint256.Int
	After  *uint256.Int
}

// Increased reports whether the quantity grew.
func (d Delta) Increased() bool { return d.After.Gt(d.Before) }

// Decreased reports whether the quantity shrank.
func (d Delta) Decreased() bool { return d.After.Lt(d.Before) }

// StateDiff holds only the quantities that changed between two snapshots.
type StateDiff struct {
	Balances map[common.Address]Delta
	Shares   map[common.Address]Delta
	Pool     map[string]Delta
	Params   map[string][2]uint64
}

// Diff calculates the difference between oldState and newState.
// It returns nil if nothing changed.
func Diff(oldState, newState *vault.State) *StateDiff {
	if oldState == nil || newState == nil {
		return nil
	}

	diff := &StateDiff{
		Balances: diffHolders(oldState.Balances, newState.Balances),
		Shares:   diffHolders(oldState.Shares, newState.Shares),
		Pool:     make(map[string]Delta),
		Params:   make(map[string][2]uint64),
	}

	for name, pair := range map[string][2]*uint256.Int{
		"supply":   {oldState.Supply, newState.Supply},
		"idle":     {oldState.VaultIdle, newState.VaultIdle},
		"loose":    {oldState.StrategyLoose, newState.StrategyLoose},
		"deployed": {oldState.StrategyDeployed, newState.StrategyDeployed},
		"accrued":  {oldState.Accrued, newState.Accrued},
	} {
		if !pair[0].Eq(pair[1]) {
			diff.Pool[name] = Delta{Before: pair[0], After: pair[1]}
		}
	}

	for name, v := range newState.Params {
		if old := oldState.Params[name]; old != v {
			diff.Params[name] = [2]uint64{old, v}
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffHolders(oldVals, newVals map[common.Address]*uint256.Int) map[common.Address]Delta {
	delta := make(map[common.Address]Delta)
	zero := new(uint256.Int)

	// Added or modified
	for addr, newVal := range newVals {
		oldVal, ok := oldVals[addr]
		if !ok {
			oldVal = zero
		}
		if !oldVal.Eq(newVal) {
			delta[addr] = Delta{Before: oldVal, After: newVal}
		}
	}
	// Removed
	for addr, oldVal := range oldVals {
		if _, ok := newVals[addr]; !ok && !oldVal.IsZero() {
			delta[addr] = Delta{Before: oldVal, After: zero}
		}
	}
	return delta
}

// IsEmpty checks if the diff contains any changes.
func (d *StateDiff) IsEmpty() bool {
	return len(d.Balances) == 0 &&
		len(d.Shares) == 0 &&
		len(d.Pool) == 0 &&
		len(d.Params) == 0
}
