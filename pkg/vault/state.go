package vault

import (
	"context"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// State is a point-in-time copy of every want-denominated quantity in the deployment.
type State struct {
	Balances         map[common.Address]*uint256.Int
	Shares           map[common.Address]*uint256.Int
	Supply           *uint256.Int
	VaultIdle        *uint256.Int
	StrategyLoose    *uint256.Int
	StrategyDeployed *uint256.Int
	Accrued          *uint256.Int
	Params           map[string]uint64
	Clock            time.Duration
}

// Pool is the want backing vault shares.
func (s *State) Pool() *uint256.Int {
	total := new(uint256.Int).Add(s.VaultIdle, s.StrategyLoose)
	return total.Add(total, s.StrategyDeployed)
}

// TotalWant is the want held by every holder plus the pool. Accrued yield is excluded
// until it is harvested.
func (s *State) TotalWant() *uint256.Int {
	total := s.Pool()
	for _, v := range s.Balances {
		total.Add(total, v)
	}
	return total
}

// ShareSum adds up every holder's shares.
func (s *State) ShareSum() *uint256.Int {
	total := new(uint256.Int)
	for _, v := range s.Shares {
		total.Add(total, v)
	}
	return total
}

// Balance returns the holder's want balance, zero if unknown.
func (s *State) Balance(holder common.Address) *uint256.Int {
	if v, ok := s.Balances[holder]; ok {
		return v
	}
	return new(uint256.Int)
}

// SharesOf returns the holder's shares, zero if unknown.
func (s *State) SharesOf(holder common.Address) *uint256.Int {
	if v, ok := s.Shares[holder]; ok {
		return v
	}
	return new(uint256.Int)
}

// Snapshot reads the current State.
func (l *Ledger) Snapshot(ctx context.Context) (*State, error) {
	b := l.begin(ctx)
	s := &State{
		Supply:           b.get(l.key("vault", "supply")),
		VaultIdle:        b.get(l.key("vault", "idle")),
		StrategyLoose:    b.get(l.key("strategy", "loose")),
		StrategyDeployed: b.get(l.key("strategy", "deployed")),
		Accrued:          b.get(l.key("strategy", "accrued")),
		Clock:            time.Duration(b.get(l.key("clock")).Uint64()),
		Params:           make(map[string]uint64, len(l.cfg.Params)),
	}
	for name := range l.cfg.Params {
		s.Params[name] = b.get(l.paramKey(name)).Uint64()
	}
	if b.err != nil {
		return nil, b.err
	}

	var err error
	if s.Balances, err = l.holders(b, l.key("bal", string(l.cfg.Want))+":"); err != nil {
		return nil, err
	}
	if s.Shares, err = l.holders(b, l.key("shares")+":"); err != nil {
		return nil, err
	}
	return s, nil
}

func (l *Ledger) holders(b *batch, prefix string) (map[common.Address]*uint256.Int, error) {
	keys, err := l.store.Keys(b.ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make(map[common.Address]*uint256.Int, len(keys))
	for _, k := range keys {
		out[common.HexToAddress(strings.TrimPrefix(k, prefix))] = b.get(k)
	}
	return out, b.err
}
