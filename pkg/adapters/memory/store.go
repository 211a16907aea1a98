package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/holiman/uint256"
)

// Store implements ports.LedgerStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*uint256.Int
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*uint256.Int),
	}
}

// Get returns a copy of the value under key, or zero if absent.
func (s *Store) Get(ctx context.Context, key string) (*uint256.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return new(uint256.Int), nil
	}
	// Copy on read so callers can't mutate store state through the pointer
	return v.Clone(), nil
}

// Apply writes all updates under a single lock.
func (s *Store) Apply(ctx context.Context, updates map[string]*uint256.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range updates {
		s.data[k] = v.Clone()
	}
	return nil
}

// Keys returns stored keys with the given prefix, sorted.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0)
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
