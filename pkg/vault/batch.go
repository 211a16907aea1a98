package vault

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
)

// batch accumulates reads and writes for one operation and commits them with a single Apply.
// The first store or arithmetic error sticks; later reads return zero and commit reports it.
type batch struct {
	ctx   context.Context
	l     *Ledger
	vals  map[string]*uint256.Int
	dirty map[string]bool
	err   error
}

func (l *Ledger) begin(ctx context.Context) *batch {
	return &batch{
		ctx:   ctx,
		l:     l,
		vals:  make(map[string]*uint256.Int),
		dirty: make(map[string]bool),
	}
}

func (b *batch) get(key string) *uint256.Int {
	if v, ok := b.vals[key]; ok {
		return v.Clone()
	}
	if b.err != nil {
		return new(uint256.Int)
	}
	v, err := b.l.store.Get(b.ctx, key)
	if err != nil {
		b.err = fmt.Errorf("read %s: %w", key, err)
		return new(uint256.Int)
	}
	b.vals[key] = v
	return v.Clone()
}

func (b *batch) set(key string, v *uint256.Int) {
	b.vals[key] = v.Clone()
	b.dirty[key] = true
}

func (b *batch) add(key string, delta *uint256.Int) {
	sum, overflow := new(uint256.Int).AddOverflow(b.get(key), delta)
	if overflow && b.err == nil {
		b.err = fmt.Errorf("%w: %s", ErrOverflow, key)
		return
	}
	b.set(key, sum)
}

func (b *batch) sub(key string, delta *uint256.Int) {
	cur := b.get(key)
	if cur.Lt(delta) {
		if b.err == nil {
			b.err = fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientBalance, key, cur.Dec(), delta.Dec())
		}
		return
	}
	b.set(key, new(uint256.Int).Sub(cur, delta))
}

func (b *batch) commit() error {
	if b.err != nil {
		return b.err
	}
	if len(b.dirty) == 0 {
		return nil
	}
	updates := make(map[string]*uint256.Int, len(b.dirty))
	for k := range b.dirty {
		updates[k] = b.vals[k]
	}
	return b.l.store.Apply(b.ctx, updates)
}
