package actors

import (
	"context"
	"math/rand"
	"time"

	"github.com/aretw0/settsim/pkg/domain"
)

// Default bounds for a single clock advance.
const (
	DefaultMinAdvance = time.Minute
	DefaultMaxAdvance = 24 * time.Hour
)

// Chain advances the simulated clock. Advancing time is always legal.
type Chain struct {
	rng      *rand.Rand
	min, max time.Duration
}

// ChainOption configures the Chain actor.
type ChainOption func(*Chain)

// WithAdvanceRange bounds each advance to [lo, hi].
func WithAdvanceRange(lo, hi time.Duration) ChainOption {
	return func(c *Chain) {
		c.min, c.max = lo, hi
	}
}

// NewChain creates the time-advance actor.
func NewChain(rng *rand.Rand, opts ...ChainOption) *Chain {
	c := &Chain{rng: rng, min: DefaultMinAdvance, max: DefaultMaxAdvance}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Chain) Name() string {
	return "chain"
}

// GenerateAction proposes an advance drawn uniformly from the configured range, in seconds.
func (c *Chain) GenerateAction(ctx context.Context) (domain.Action, error) {
	if c.min < 0 || c.max < c.min {
		return domain.Action{}, domain.ErrActorExhausted
	}
	span := int64((c.max - c.min) / time.Second)
	return domain.Action{
		Actor:    c.Name(),
		Kind:     domain.ActionAdvanceTime,
		Duration: c.min + time.Duration(c.rng.Int63n(span+1))*time.Second,
	}, nil
}
