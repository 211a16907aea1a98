package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/settsim/internal/config"
	"github.com/aretw0/settsim/pkg/adapters/memory"
	"github.com/aretw0/settsim/pkg/adapters/redis"
	"github.com/aretw0/settsim/pkg/ports"
)

// openBackend opens the configured ledger store. On redis it also takes the deployment
// lock for the strategy, so two runs never drive the same deployment. release closes both.
func openBackend(ctx context.Context, cfg config.Config, lockWait time.Duration, logger *slog.Logger) (ports.LedgerStore, func(), error) {
	if strings.ToLower(cfg.Backend.Kind) != config.BackendRedis {
		logger.Debug("using in-memory ledger")
		return memory.NewStore(), func() {}, nil
	}

	prefix := cfg.Backend.Redis.Prefix
	if prefix == "" {
		prefix = redis.DefaultPrefix
	}
	store := redis.New(cfg.Backend.Redis.Addr, redis.WithPrefix(prefix))
	client := store.Client()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis unavailable at %s: %w", cfg.Backend.Redis.Addr, err)
	}

	var locker ports.DistributedLocker = redis.NewLocker(client, prefix)
	lockCtx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()
	unlock, err := locker.Lock(lockCtx, "deployment:"+cfg.Strategy, cfg.Backend.LockTTL)
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("deployment %s is busy: %w", cfg.Strategy, err)
	}
	logger.Debug("using redis ledger", "addr", cfg.Backend.Redis.Addr, "prefix", prefix)

	release := func() {
		if err := unlock(context.Background()); err != nil {
			logger.Warn("failed to release deployment lock", "error", err)
		}
		_ = client.Close()
	}
	return store, release, nil
}
