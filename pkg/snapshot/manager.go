// Package snapshot verifies ledger invariants around every executed action.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/settsim/pkg/domain"
	"github.com/aretw0/settsim/pkg/vault"
)

// ErrInvariant is returned when the state after an action breaks an invariant.
var ErrInvariant = errors.New("invariant violated")

// Violation describes one failed check.
type Violation struct {
	Check  string
	Detail string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Check, v.Detail)
}

func (v *Violation) Is(target error) bool {
	return target == ErrInvariant
}

// Source captures the state to compare.
type Source interface {
	Snapshot(ctx context.Context) (*vault.State, error)
}

// Check inspects one action's before and after states and returns a Violation or nil.
type Check func(action domain.Action, before, after *vault.State) *Violation

// Manager implements ports.SnapshotComparer.
type Manager struct {
	src    Source
	checks []Check
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger sets the logger that receives per-action diffs at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithChecks appends checks to the defaults.
func WithChecks(checks ...Check) Option {
	return func(m *Manager) {
		m.checks = append(m.checks, checks...)
	}
}

// NewManager creates a comparer over src running DefaultChecks.
func NewManager(src Source, opts ...Option) *Manager {
	m := &Manager{
		src:    src,
		checks: DefaultChecks(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Compare snapshots, runs exec, snapshots again and runs every check.
// An exec error is returned as is and no checks run.
func (m *Manager) Compare(ctx context.Context, action domain.Action, exec func(context.Context) error) error {
	before, err := m.src.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot before %s: %w", action.Kind, err)
	}
	if err := exec(ctx); err != nil {
		return err
	}
	after, err := m.src.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot after %s: %w", action.Kind, err)
	}

	if diff := Diff(before, after); diff != nil {
		m.logger.Debug("state changed", "action", action.Kind,
			"balances", len(diff.Balances), "shares", len(diff.Shares), "pool", len(diff.Pool))
	}

	var errs []error
	for _, check := range m.checks {
		if v := check(action, before, after); v != nil {
			errs = append(errs, v)
		}
	}
	return errors.Join(errs...)
}

// DefaultChecks returns the supply, conservation and per-kind direction checks.
func DefaultChecks() []Check {
	return []Check{CheckSupply, CheckConservation, CheckDirection}
}

// CheckSupply asserts that share supply equals the sum of holder shares.
func CheckSupply(_ domain.Action, _, after *vault.State) *Violation {
	if sum := after.ShareSum(); !sum.Eq(after.Supply) {
		return &Violation{Check: "supply", Detail: fmt.Sprintf("supply %s, holders %s", after.Supply.Dec(), sum.Dec())}
	}
	return nil
}

// CheckConservation asserts that total want only grows by harvested yield.
func CheckConservation(action domain.Action, before, after *vault.State) *Violation {
	expected := before.TotalWant()
	if action.Kind == domain.ActionHarvest {
		expected.Add(expected, before.Accrued)
	}
	if got := after.TotalWant(); !got.Eq(expected) {
		return &Violation{Check: "conservation", Detail: fmt.Sprintf("total want %s, expected %s", got.Dec(), expected.Dec())}
	}
	return nil
}

// CheckDirection asserts the per-kind effect of an action on balances.
func CheckDirection(action domain.Action, before, after *vault.State) *Violation {
	fail := func(format string, args ...any) *Violation {
		return &Violation{Check: string(action.Kind), Detail: fmt.Sprintf(format, args...)}
	}
	id := action.Identity

	switch action.Kind {
	case domain.ActionDeposit:
		if after.Balance(id).Gt(before.Balance(id)) {
			return fail("balance of %s increased", id.Hex())
		}
		if after.SharesOf(id).Lt(before.SharesOf(id)) {
			return fail("shares of %s decreased", id.Hex())
		}
	case domain.ActionWithdraw, domain.ActionWithdrawAll:
		if after.Balance(id).Lt(before.Balance(id)) {
			return fail("balance of %s decreased", id.Hex())
		}
		if after.SharesOf(id).Gt(before.SharesOf(id)) {
			return fail("shares of %s increased", id.Hex())
		}
		if action.Kind == domain.ActionWithdrawAll && !after.SharesOf(id).IsZero() {
			return fail("%s still holds %s shares", id.Hex(), after.SharesOf(id).Dec())
		}
	case domain.ActionEarn:
		if after.VaultIdle.Gt(before.VaultIdle) || after.StrategyLoose.Lt(before.StrategyLoose) {
			return fail("want moved from strategy to vault")
		}
	case domain.ActionHarvest:
		if !after.Accrued.IsZero() {
			return fail("%s accrued left after harvest", after.Accrued.Dec())
		}
	case domain.ActionTend:
		if !after.StrategyLoose.IsZero() {
			return fail("%s loose left after tend", after.StrategyLoose.Dec())
		}
	case domain.ActionSetParam:
		if got := after.Params[action.Param]; got != action.Bps {
			return fail("%s is %d, expected %d", action.Param, got, action.Bps)
		}
	case domain.ActionAdvanceTime:
		if after.Clock != before.Clock+action.Duration {
			return fail("clock moved %s, expected %s", after.Clock-before.Clock, action.Duration)
		}
		if after.Accrued.Lt(before.Accrued) {
			return fail("accrued yield decreased")
		}
	}
	return nil
}
