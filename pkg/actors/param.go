package actors

import (
	"context"
	"math/rand"

	"github.com/aretw0/settsim/pkg/domain"
	"github.com/ethereum/go-ethereum/common"
)

// Param sets one privileged toggle to a random value within its bounds, as governance.
type Param struct {
	governance common.Address
	spec       domain.ParamSpec
	rng        *rand.Rand
}

// NewParam creates the actor for spec.
func NewParam(governance common.Address, spec domain.ParamSpec, rng *rand.Rand) *Param {
	return &Param{governance: governance, spec: spec, rng: rng}
}

func (p *Param) Name() string {
	return "param:" + p.spec.Name
}

// GenerateAction returns ErrActorExhausted when the bounds admit no value.
func (p *Param) GenerateAction(ctx context.Context) (domain.Action, error) {
	if p.spec.Min > p.spec.Max || p.spec.Max > domain.MaxBps {
		return domain.Action{}, domain.ErrActorExhausted
	}
	return domain.Action{
		Actor:    p.Name(),
		Identity: p.governance,
		Kind:     domain.ActionSetParam,
		Param:    p.spec.Name,
		Bps:      p.spec.Min + uint64(p.rng.Int63n(int64(p.spec.Max-p.spec.Min+1))),
	}, nil
}
