package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/settsim/pkg/domain"
	"github.com/aretw0/settsim/pkg/ports"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	// ErrUnauthorized is returned when the caller lacks the role an operation requires.
	ErrUnauthorized = errors.New("caller lacks required role")
	// ErrNoPosition is returned when withdrawing without vault shares.
	ErrNoPosition = errors.New("no vault position")
	// ErrInvalidParam is returned for unknown parameters or out of range values.
	ErrInvalidParam = errors.New("invalid parameter")
	// ErrInvalidBps is returned when a fraction is zero or above MaxBps.
	ErrInvalidBps = errors.New("bps out of range")
	// ErrInsufficientBalance is returned when a holder cannot cover a conversion.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrOverflow is returned when an amount does not fit in 256 bits.
	ErrOverflow = errors.New("amount overflow")
)

// Year is the period over which APRBps accrues.
const Year = 365 * 24 * time.Hour

// DefaultAPRBps is the yield rate applied to deployed want.
const DefaultAPRBps = 1_000

// Config describes a deployment.
type Config struct {
	Strategy  string
	Want      domain.Asset
	Roles     domain.Roles
	Namespace string
	APRBps    uint64
	Params    map[string]uint64
}

// DefaultConfig returns a deployment of strategy over want with the default parameters.
func DefaultConfig(strategy string, want domain.Asset, roles domain.Roles) Config {
	return Config{
		Strategy:  strategy,
		Want:      want,
		Roles:     roles,
		Namespace: strategy,
		APRBps:    DefaultAPRBps,
		Params: map[string]uint64{
			domain.ParamPerformanceFeeGovernance: 1_000,
			domain.ParamPerformanceFeeStrategist: 1_000,
			domain.ParamMin:                      9_500,
		},
	}
}

// Ledger implements ports.TargetSystem over a LedgerStore.
type Ledger struct {
	store  ports.LedgerStore
	cfg    Config
	logger *slog.Logger
}

// Option configures the Ledger.
type Option func(*Ledger)

// WithLogger sets the logger used for operation traces.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// Deploy writes the initial parameters of cfg to store and returns the deployment.
func Deploy(ctx context.Context, store ports.LedgerStore, cfg Config, opts ...Option) (*Ledger, error) {
	if cfg.Strategy == "" {
		return nil, &domain.ConfigurationError{Field: "strategy", Value: "", Err: errors.New("required")}
	}
	if cfg.Want == "" {
		return nil, &domain.ConfigurationError{Field: "want", Value: "", Err: errors.New("required")}
	}
	if cfg.Namespace == "" {
		cfg.Namespace = cfg.Strategy
	}

	l := &Ledger{
		store:  store,
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}

	updates := make(map[string]*uint256.Int, len(cfg.Params))
	for name, v := range cfg.Params {
		if v > domain.MaxBps {
			return nil, &domain.ConfigurationError{Field: name, Value: fmt.Sprint(v), Err: ErrInvalidParam}
		}
		updates[l.paramKey(name)] = uint256.NewInt(v)
	}
	if err := store.Apply(ctx, updates); err != nil {
		return nil, fmt.Errorf("deploy %s: %w", cfg.Strategy, err)
	}

	l.logger.Debug("deployed", "strategy", cfg.Strategy, "want", cfg.Want, "namespace", cfg.Namespace)
	return l, nil
}

func (l *Ledger) StrategyName() string    { return l.cfg.Strategy }
func (l *Ledger) Roles() domain.Roles     { return l.cfg.Roles }
func (l *Ledger) WantAsset() domain.Asset { return l.cfg.Want }

// Balance returns holder's balance of asset.
func (l *Ledger) Balance(ctx context.Context, asset domain.Asset, holder common.Address) (*uint256.Int, error) {
	return l.store.Get(ctx, l.balKey(asset, holder))
}

// Shares returns holder's vault shares.
func (l *Ledger) Shares(ctx context.Context, holder common.Address) (*uint256.Int, error) {
	return l.store.Get(ctx, l.sharesKey(holder))
}

// Param returns the current value of a privileged parameter.
func (l *Ledger) Param(ctx context.Context, name string) (uint64, error) {
	if _, ok := l.cfg.Params[name]; !ok {
		return 0, fmt.Errorf("%w: %s", ErrInvalidParam, name)
	}
	v, err := l.store.Get(ctx, l.paramKey(name))
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

// Clock returns the simulated time elapsed since deployment.
func (l *Ledger) Clock(ctx context.Context) (time.Duration, error) {
	v, err := l.store.Get(ctx, l.key("clock"))
	if err != nil {
		return 0, err
	}
	return time.Duration(v.Uint64()), nil
}

// Mint credits amount of asset to the holder.
func (l *Ledger) Mint(ctx context.Context, asset domain.Asset, to common.Address, amount *uint256.Int) error {
	b := l.begin(ctx)
	b.add(l.balKey(asset, to), amount)
	return b.commit()
}

// Convert burns the holder's inputs and credits the output.
func (l *Ledger) Convert(ctx context.Context, holder common.Address, from []domain.AssetAmount, to domain.AssetAmount) error {
	b := l.begin(ctx)
	for _, in := range from {
		key := l.balKey(in.Asset, holder)
		if b.get(key).Lt(in.Amount) {
			return fmt.Errorf("%w: %s needs %s %s", ErrInsufficientBalance, holder.Hex(), in.Amount.Dec(), in.Asset)
		}
		b.sub(key, in.Amount)
	}
	b.add(l.balKey(to.Asset, holder), to.Amount)
	return b.commit()
}

// Deposit moves bps of who's want balance into the vault in exchange for shares.
// A deposit that rounds to zero want or zero shares is a no-op.
func (l *Ledger) Deposit(ctx context.Context, who common.Address, bps uint64) error {
	if bps == 0 || bps > domain.MaxBps {
		return fmt.Errorf("%w: %d", ErrInvalidBps, bps)
	}

	b := l.begin(ctx)
	balKey := l.balKey(l.cfg.Want, who)
	amount, err := mulDiv(b.get(balKey), uint256.NewInt(bps), uint256.NewInt(domain.MaxBps))
	if err != nil {
		return err
	}
	if amount.IsZero() {
		return b.err
	}

	supply, pool := b.get(l.key("vault", "supply")), l.pool(b)
	shares := amount.Clone()
	if !supply.IsZero() && !pool.IsZero() {
		if shares, err = mulDiv(amount, supply, pool); err != nil {
			return err
		}
	}
	if shares.IsZero() {
		return b.err
	}

	b.sub(balKey, amount)
	b.add(l.key("vault", "idle"), amount)
	b.add(l.sharesKey(who), shares)
	b.add(l.key("vault", "supply"), shares)
	return b.commit()
}

// Withdraw burns bps of who's shares and pays out their share of the pool.
// Funds come from the vault first, then loose strategy want, then deployed want.
func (l *Ledger) Withdraw(ctx context.Context, who common.Address, bps uint64) error {
	if bps == 0 || bps > domain.MaxBps {
		return fmt.Errorf("%w: %d", ErrInvalidBps, bps)
	}

	b := l.begin(ctx)
	shares := b.get(l.sharesKey(who))
	if b.err != nil {
		return b.err
	}
	if shares.IsZero() {
		return fmt.Errorf("%w: %s", ErrNoPosition, who.Hex())
	}

	burn, err := mulDiv(shares, uint256.NewInt(bps), uint256.NewInt(domain.MaxBps))
	if err != nil {
		return err
	}
	if burn.IsZero() {
		return nil
	}
	value, err := mulDiv(burn, l.pool(b), b.get(l.key("vault", "supply")))
	if err != nil {
		return err
	}

	remaining := value.Clone()
	for _, src := range []string{l.key("vault", "idle"), l.key("strategy", "loose"), l.key("strategy", "deployed")} {
		if remaining.IsZero() {
			break
		}
		take := minInt(b.get(src), remaining)
		b.sub(src, take)
		remaining = new(uint256.Int).Sub(remaining, take)
	}

	b.sub(l.sharesKey(who), burn)
	b.sub(l.key("vault", "supply"), burn)
	b.add(l.balKey(l.cfg.Want, who), value)
	return b.commit()
}

// WithdrawAll burns every share who holds.
func (l *Ledger) WithdrawAll(ctx context.Context, who common.Address) error {
	return l.Withdraw(ctx, who, domain.MaxBps)
}

// Earn pushes min/MaxBps of the vault's idle want to the strategy.
func (l *Ledger) Earn(ctx context.Context, who common.Address) error {
	if err := l.authorize(who, l.cfg.Roles.VaultKeeper, l.cfg.Roles.Governance); err != nil {
		return err
	}

	b := l.begin(ctx)
	available, err := mulDiv(b.get(l.key("vault", "idle")), b.get(l.paramKey(domain.ParamMin)), uint256.NewInt(domain.MaxBps))
	if err != nil {
		return err
	}
	b.sub(l.key("vault", "idle"), available)
	b.add(l.key("strategy", "loose"), available)
	return b.commit()
}

// Harvest realizes accrued yield. Performance fees are paid in want to governance and the
// strategist; the remainder is reinvested together with any loose want.
func (l *Ledger) Harvest(ctx context.Context, who common.Address) error {
	if err := l.authorize(who, l.cfg.Roles.StrategyKeeper, l.cfg.Roles.Governance); err != nil {
		return err
	}

	b := l.begin(ctx)
	accrued := b.get(l.key("strategy", "accrued"))
	maxBps := uint256.NewInt(domain.MaxBps)

	govFee, err := mulDiv(accrued, b.get(l.paramKey(domain.ParamPerformanceFeeGovernance)), maxBps)
	if err != nil {
		return err
	}
	stratFee, err := mulDiv(accrued, b.get(l.paramKey(domain.ParamPerformanceFeeStrategist)), maxBps)
	if err != nil {
		return err
	}
	// Fees together never exceed the harvest.
	stratFee = minInt(stratFee, new(uint256.Int).Sub(accrued, govFee))
	rest := new(uint256.Int).Sub(accrued, govFee)
	rest.Sub(rest, stratFee)

	b.sub(l.key("strategy", "accrued"), accrued)
	b.add(l.balKey(l.cfg.Want, l.cfg.Roles.Governance), govFee)
	b.add(l.balKey(l.cfg.Want, l.cfg.Roles.Strategist), stratFee)
	b.add(l.key("strategy", "deployed"), rest)
	l.deployLoose(b)
	return b.commit()
}

// Tend deploys want sitting loose in the strategy.
func (l *Ledger) Tend(ctx context.Context, who common.Address) error {
	if err := l.authorize(who, l.cfg.Roles.StrategyKeeper, l.cfg.Roles.Governance); err != nil {
		return err
	}

	b := l.begin(ctx)
	l.deployLoose(b)
	return b.commit()
}

// SetParam sets a privileged parameter. Only governance may call it.
func (l *Ledger) SetParam(ctx context.Context, who common.Address, name string, value uint64) error {
	if err := l.authorize(who, l.cfg.Roles.Governance); err != nil {
		return err
	}
	if _, ok := l.cfg.Params[name]; !ok {
		return fmt.Errorf("%w: unknown %q", ErrInvalidParam, name)
	}
	if value > domain.MaxBps {
		return fmt.Errorf("%w: %s=%d above %d", ErrInvalidParam, name, value, domain.MaxBps)
	}

	b := l.begin(ctx)
	b.set(l.paramKey(name), uint256.NewInt(value))
	return b.commit()
}

// AdvanceTime moves the clock forward and accrues yield on deployed want.
func (l *Ledger) AdvanceTime(ctx context.Context, d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("cannot rewind clock by %s", d)
	}

	b := l.begin(ctx)
	num := new(uint256.Int).Mul(uint256.NewInt(l.cfg.APRBps), uint256.NewInt(uint64(d/time.Second)))
	den := new(uint256.Int).Mul(uint256.NewInt(domain.MaxBps), uint256.NewInt(uint64(Year/time.Second)))
	yield, err := mulDiv(b.get(l.key("strategy", "deployed")), num, den)
	if err != nil {
		return err
	}
	b.add(l.key("strategy", "accrued"), yield)
	b.add(l.key("clock"), uint256.NewInt(uint64(d)))
	return b.commit()
}

func (l *Ledger) deployLoose(b *batch) {
	loose := b.get(l.key("strategy", "loose"))
	b.sub(l.key("strategy", "loose"), loose)
	b.add(l.key("strategy", "deployed"), loose)
}

func (l *Ledger) pool(b *batch) *uint256.Int {
	total := new(uint256.Int).Add(b.get(l.key("vault", "idle")), b.get(l.key("strategy", "loose")))
	return total.Add(total, b.get(l.key("strategy", "deployed")))
}

func (l *Ledger) authorize(who common.Address, allowed ...common.Address) error {
	for _, a := range allowed {
		if who == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnauthorized, who.Hex())
}

func (l *Ledger) key(parts ...string) string {
	return l.cfg.Namespace + ":" + strings.Join(parts, ":")
}

func (l *Ledger) balKey(asset domain.Asset, holder common.Address) string {
	return l.key("bal", string(asset), holder.Hex())
}

func (l *Ledger) sharesKey(holder common.Address) string {
	return l.key("shares", holder.Hex())
}

func (l *Ledger) paramKey(name string) string {
	return l.key("param", name)
}

func mulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return new(uint256.Int), nil
	}
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

func minInt(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return a.Clone()
	}
	return b.Clone()
}
