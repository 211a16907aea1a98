package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "settsim:"

// Store implements ports.LedgerStore on Redis.
// Values are stored as decimal strings; a zero-scored sorted set indexes the keys
// so prefix listing is a ZRANGEBYLEX instead of a keyspace SCAN.
type Store struct {
	client *backend.Client
	prefix string
}

// Option configures the Store.
type Option func(*Store)

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New connects to the Redis server at addr.
func New(addr string, opts ...Option) *Store {
	return NewFromClient(backend.NewClient(&backend.Options{Addr: addr}), opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Client exposes the underlying connection so a Locker can share it.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Get returns the value under key, or zero if it does not exist.
func (s *Store) Get(ctx context.Context, key string) (*uint256.Int, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, backend.Nil) {
		return new(uint256.Int), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	v, err := uint256.FromDecimal(raw)
	if err != nil {
		return nil, fmt.Errorf("corrupt value at %s: %w", key, err)
	}
	return v, nil
}

// Apply writes every update in one MULTI/EXEC transaction.
func (s *Store) Apply(ctx context.Context, updates map[string]*uint256.Int) error {
	if len(updates) == 0 {
		return nil
	}

	_, err := s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		members := make([]backend.Z, 0, len(updates))
		for k, v := range updates {
			pipe.Set(ctx, s.prefix+k, v.Dec(), 0)
			members = append(members, backend.Z{Score: 0, Member: k})
		}
		pipe.ZAdd(ctx, s.indexKey(), members...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis apply: %w", err)
	}
	return nil
}

// Keys returns indexed keys starting with prefix, in lexicographic order.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.client.ZRangeByLex(ctx, s.indexKey(), &backend.ZRangeBy{
		Min: "[" + prefix,
		Max: "[" + prefix + "\xff",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("redis keys %s: %w", prefix, err)
	}
	return keys, nil
}
