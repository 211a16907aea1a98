// Package identity manages the addressable identities a simulation can act as.
package identity

import (
	"fmt"
	"math/big"
	"math/rand"

	"github.com/aretw0/settsim/pkg/domain"
	"github.com/ethereum/go-ethereum/common"
)

// DefaultReserved is the number of administrative accounts at the head of an account list.
const DefaultReserved = 6

// Pool is an ordered set of identities available for per-user actors.
// The first reserved accounts are administrative and never sampled.
type Pool struct {
	admin     []common.Address
	available []common.Address
}

// NewPool splits accounts into a reserved administrative prefix and the sampleable rest.
func NewPool(accounts []common.Address, reserved int) (*Pool, error) {
	if reserved < 0 || reserved > len(accounts) {
		return nil, &domain.ConfigurationError{
			Field: "reserved",
			Value: fmt.Sprint(reserved),
			Err:   fmt.Errorf("must be between 0 and %d", len(accounts)),
		}
	}

	admin := make([]common.Address, reserved)
	copy(admin, accounts[:reserved])
	available := make([]common.Address, len(accounts)-reserved)
	copy(available, accounts[reserved:])

	return &Pool{admin: admin, available: available}, nil
}

// Generate returns n deterministic, distinct addresses starting at 0x...01.
func Generate(n int) []common.Address {
	accounts := make([]common.Address, n)
	for i := range accounts {
		accounts[i] = common.BigToAddress(big.NewInt(int64(i + 1)))
	}
	return accounts
}

// Admin returns the reserved administrative accounts.
func (p *Pool) Admin() []common.Address {
	out := make([]common.Address, len(p.admin))
	copy(out, p.admin)
	return out
}

// Available returns the sampleable accounts in pool order.
func (p *Pool) Available() []common.Address {
	out := make([]common.Address, len(p.available))
	copy(out, p.available)
	return out
}

// Len is the number of sampleable accounts.
func (p *Pool) Len() int {
	return len(p.available)
}

// Sample draws count distinct identities using uniform indices from rng, rejecting duplicates.
// maxAttempts bounds the number of draws; values <= 0 default to 64 draws per identity.
// The result order is the draw order, so it is reproducible for a fixed rng seed.
func (p *Pool) Sample(rng *rand.Rand, count, maxAttempts int) ([]common.Address, error) {
	if count > len(p.available) {
		return nil, fmt.Errorf("%w: have %d, want %d", domain.ErrPoolTooSmall, len(p.available), count)
	}
	if maxAttempts <= 0 {
		maxAttempts = count * 64
	}

	chosen := make([]common.Address, 0, count)
	seen := make(map[int]struct{}, count)
	for attempts := 0; len(chosen) < count; attempts++ {
		if attempts >= maxAttempts {
			return nil, fmt.Errorf("%w: %d distinct of %d after %d draws", domain.ErrSamplingExhausted, len(chosen), count, attempts)
		}
		idx := rng.Intn(len(p.available))
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		chosen = append(chosen, p.available[idx])
	}
	return chosen, nil
}
