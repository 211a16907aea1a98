package vault_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/settsim/pkg/domain"
	"github.com/aretw0/settsim/pkg/vault"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingComparer struct {
	kinds []domain.ActionKind
}

func (c *recordingComparer) Compare(ctx context.Context, action domain.Action, exec func(context.Context) error) error {
	c.kinds = append(c.kinds, action.Kind)
	return exec(ctx)
}

func TestDispatcher_RoutesEveryKind(t *testing.T) {
	ctx := context.Background()
	l := deploy(t)
	require.NoError(t, l.Mint(ctx, domain.AssetDigg, alice, uint256.NewInt(1_000)))

	cmp := &recordingComparer{}
	d := vault.NewDispatcher(l, cmp)

	actions := []domain.Action{
		{Identity: alice, Kind: domain.ActionDeposit, Bps: domain.MaxBps},
		{Identity: vaultKeeper, Kind: domain.ActionEarn},
		{Identity: strategyKeeper, Kind: domain.ActionTend},
		{Kind: domain.ActionAdvanceTime, Duration: time.Hour},
		{Identity: strategyKeeper, Kind: domain.ActionHarvest},
		{Identity: governance, Kind: domain.ActionSetParam, Param: domain.ParamMin, Bps: 9_000},
		{Identity: alice, Kind: domain.ActionWithdraw, Bps: 1},
		{Identity: alice, Kind: domain.ActionWithdrawAll},
	}
	for _, a := range actions {
		require.NoError(t, d.Dispatch(ctx, a), a.String())
	}

	assert.Len(t, cmp.kinds, len(actions))
	assert.Equal(t, uint64(0), shares(t, l, alice))
}

func TestDispatcher_UnknownKind(t *testing.T) {
	d := vault.NewDispatcher(deploy(t), nil)
	assert.Error(t, d.Dispatch(context.Background(), domain.Action{Kind: "rebase"}))
}

func TestDispatcher_CanceledContext(t *testing.T) {
	d := vault.NewDispatcher(deploy(t), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Dispatch(ctx, domain.Action{Kind: domain.ActionAdvanceTime, Duration: time.Hour})
	assert.ErrorIs(t, err, context.Canceled)
}
