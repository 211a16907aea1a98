package ports

import (
	"context"

	"github.com/holiman/uint256"
)

// LedgerStore persists the reference ledger as integer values under string keys.
// Missing keys read as zero.
type LedgerStore interface {
	// Get returns the value stored under key, or zero if the key does not exist.
	Get(ctx context.Context, key string) (*uint256.Int, error)

	// Apply writes every entry atomically. A zero value is stored, not deleted.
	Apply(ctx context.Context, updates map[string]*uint256.Int) error

	// Keys returns the stored keys starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
