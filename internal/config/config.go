// Package config loads a simulation run profile from YAML and SETTSIM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aretw0/settsim/internal/logging"
	"github.com/aretw0/settsim/pkg/actors"
	"github.com/aretw0/settsim/pkg/domain"
	"github.com/aretw0/settsim/pkg/identity"
	"github.com/aretw0/settsim/pkg/provision"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Backend kinds.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is a complete run profile.
type Config struct {
	Strategy string  `mapstructure:"strategy" yaml:"strategy"`
	Seed     int64   `mapstructure:"seed" yaml:"seed"`
	Users    int     `mapstructure:"users" yaml:"users"`
	Actions  int     `mapstructure:"actions" yaml:"actions"`
	LogLevel string  `mapstructure:"log_level" yaml:"log_level"`
	Backend  Backend `mapstructure:"backend" yaml:"backend"`
	Metrics  Metrics `mapstructure:"metrics" yaml:"metrics"`
	Pool     Pool    `mapstructure:"pool" yaml:"pool"`
	Chain    Chain   `mapstructure:"chain" yaml:"chain"`
}

// Backend selects the ledger store.
type Backend struct {
	Kind    string        `mapstructure:"kind" yaml:"kind"`
	Redis   Redis         `mapstructure:"redis" yaml:"redis"`
	LockTTL time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl"`
}

// Redis configures the Redis ledger store.
type Redis struct {
	Addr   string `mapstructure:"addr" yaml:"addr"`
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
}

// Metrics configures the metrics server. An empty Addr disables it.
type Metrics struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// Pool sizes the account list identities are drawn from.
type Pool struct {
	Accounts int `mapstructure:"accounts" yaml:"accounts"`
	Reserved int `mapstructure:"reserved" yaml:"reserved"`
}

// Chain bounds the time-advance actor.
type Chain struct {
	MinAdvance time.Duration `mapstructure:"min_advance" yaml:"min_advance"`
	MaxAdvance time.Duration `mapstructure:"max_advance" yaml:"max_advance"`
}

// Default returns the profile used when nothing is configured.
func Default() Config {
	return Config{
		Strategy: provision.StrategyDiggRewards,
		Users:    10,
		Actions:  50,
		LogLevel: "info",
		Backend: Backend{
			Kind:    BackendMemory,
			Redis:   Redis{Addr: "localhost:6379", Prefix: "settsim:"},
			LockTTL: 5 * time.Minute,
		},
		Pool:  Pool{Accounts: 40, Reserved: identity.DefaultReserved},
		Chain: Chain{MinAdvance: actors.DefaultMinAdvance, MaxAdvance: actors.DefaultMaxAdvance},
	}
}

// envKeys maps environment variables to their path in the profile.
var envKeys = map[string][]string{
	"SETTSIM_STRATEGY":     {"strategy"},
	"SETTSIM_SEED":         {"seed"},
	"SETTSIM_USERS":        {"users"},
	"SETTSIM_ACTIONS":      {"actions"},
	"SETTSIM_LOG_LEVEL":    {"log_level"},
	"SETTSIM_BACKEND":      {"backend", "kind"},
	"SETTSIM_REDIS_ADDR":   {"backend", "redis", "addr"},
	"SETTSIM_REDIS_PREFIX": {"backend", "redis", "prefix"},
	"SETTSIM_METRICS_ADDR": {"metrics", "addr"},
}

// LookupFunc reads an environment variable, like os.LookupEnv.
type LookupFunc func(string) (string, bool)

// Load reads path (optional; "" skips the file), applies environment overrides and
// decodes the result over Default. The result is validated.
func Load(path string, lookup LookupFunc) (*Config, error) {
	raw := map[string]any{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	}

	if lookup != nil {
		for env, keyPath := range envKeys {
			if v, ok := lookup(env); ok {
				setPath(raw, keyPath, v)
			}
		}
	}

	cfg := Default()
	if err := Decode(raw, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Decode decodes raw over out. Strings convert to numbers and durations; unknown keys are errors.
func Decode(raw map[string]any, out *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func setPath(m map[string]any, path []string, v string) {
	for _, k := range path[:len(path)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[k] = next
		}
		m = next
	}
	m[path[len(path)-1]] = v
}

// Validate checks the profile for values a run cannot start with.
func (c *Config) Validate() error {
	invalid := func(field string, value any, reason string) error {
		return &domain.ConfigurationError{Field: field, Value: fmt.Sprint(value), Err: errors.New(reason)}
	}

	if _, ok := provision.WantAsset(c.Strategy); !ok {
		return &domain.ConfigurationError{Field: "strategy", Value: c.Strategy, Err: domain.ErrUnknownStrategy}
	}
	if c.Users <= 0 {
		return invalid("users", c.Users, "must be positive")
	}
	if c.Actions < 0 {
		return invalid("actions", c.Actions, "must not be negative")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return invalid("log_level", c.LogLevel, err.Error())
	}
	switch strings.ToLower(c.Backend.Kind) {
	case BackendMemory:
	case BackendRedis:
		if c.Backend.Redis.Addr == "" {
			return invalid("backend.redis.addr", "", "required for the redis backend")
		}
	default:
		return invalid("backend.kind", c.Backend.Kind, "must be memory or redis")
	}
	if c.Pool.Reserved < 4 {
		return invalid("pool.reserved", c.Pool.Reserved, "need 4 role accounts")
	}
	if available := c.Pool.Accounts - c.Pool.Reserved; available < c.Users {
		return invalid("pool.accounts", c.Pool.Accounts, fmt.Sprintf("%d available for %d users", available, c.Users))
	}
	if c.Chain.MinAdvance < 0 || c.Chain.MaxAdvance < c.Chain.MinAdvance {
		return invalid("chain.max_advance", c.Chain.MaxAdvance, "must be at least chain.min_advance")
	}
	return nil
}
