package goSession

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/MrEthical07/goSession/store"
	"github.com/MrEthical07/goSession/token"
)

// EnvPrefix is prepended to every variable read by LoadConfigFromEnv.
const EnvPrefix = "GOSESSION_"

// Config is the full Manager configuration. Start from DefaultConfig and override
// fields, or load it with LoadConfigFromEnv.
type Config struct {
	Token   TokenConfig   `envPrefix:"TOKEN_"`
	Store   StoreConfig   `envPrefix:"STORE_"`
	Refresh RefreshConfig `envPrefix:"REFRESH_"`
	Audit   AuditConfig   `envPrefix:"AUDIT_"`
	Metrics MetricsConfig `envPrefix:"METRICS_"`
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig configures minting and verification.
//
// Secret is the shared HMAC key. It is expected to ship with the client, so it
// provides tamper evidence only; see the package documentation.
type TokenConfig struct {
	Secret     string        `env:"SECRET"`
	Issuer     string        `env:"ISSUER"`
	AccessTTL  time.Duration `env:"ACCESS_TTL"`
	RefreshTTL time.Duration `env:"REFRESH_TTL"`
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreBackend names a TokenStore implementation OpenStore can construct.
type StoreBackend string

const (
	StoreMemory StoreBackend = "memory"
	StoreRedis  StoreBackend = "redis"
	StoreBadger StoreBackend = "badger"
)

// StoreConfig selects the session keys and, when the Builder is not given a store,
// the backend to open.
type StoreConfig struct {
	Keys store.Keys
	// CacheUser stores the login claim set under Keys.User.
	CacheUser bool               `env:"CACHE_USER"`
	Backend   StoreBackend       `env:"BACKEND"`
	Redis     RedisConfig        `envPrefix:"REDIS_"`
	Badger    store.BadgerConfig `envPrefix:"BADGER_"`
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string        `env:"ADDR"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB"`
	Prefix   string        `env:"PREFIX"`
	TTL      time.Duration `env:"TTL"`
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig controls which claims a refreshed access token carries.
//
// A ClaimsResolver given to the Builder always wins. Without one, UseCachedUser
// copies the cached login claims when they belong to the refresh token's user;
// otherwise the new access token carries userId only.
type RefreshConfig struct {
	UseCachedUser bool `env:"USE_CACHED_USER"`
}

/*
====================================
AUDIT + METRICS CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool `env:"ENABLED"`
	BufferSize int  `env:"BUFFER_SIZE"`
	DropIfFull bool `env:"DROP_IF_FULL"`
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool `env:"ENABLED"`
	EnableLatencyHistograms bool `env:"LATENCY_HISTOGRAMS"`
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns a config with every field except Token.Secret populated.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			Issuer:     token.DefaultIssuer,
			AccessTTL:  token.DefaultAccessTTL,
			RefreshTTL: token.DefaultRefreshTTL,
		},
		Store: StoreConfig{
			Keys:    store.DefaultKeys(),
			Backend: StoreMemory,
			Redis: RedisConfig{
				Addr:   "127.0.0.1:6379",
				Prefix: "gosession",
			},
			Badger: store.BadgerConfig{
				Prefix:     "gosession",
				SyncWrites: true,
			},
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

// LoadConfigFromEnv overlays GOSESSION_* environment variables on DefaultConfig.
// Unset variables keep their defaults. The result is not validated.
func LoadConfigFromEnv() (Config, error) {
	return loadConfig(nil)
}

func loadConfig(environ map[string]string) (Config, error) {
	cfg := DefaultConfig()
	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	}); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the config for values the Manager cannot run with.
func (c *Config) Validate() error {
	// Token
	if strings.TrimSpace(c.Token.Secret) == "" {
		return fmt.Errorf("%w: Token.Secret must be set", ErrInvalidConfig)
	}
	if c.Token.AccessTTL <= 0 {
		return fmt.Errorf("%w: Token.AccessTTL must be > 0", ErrInvalidConfig)
	}
	if c.Token.RefreshTTL <= 0 {
		return fmt.Errorf("%w: Token.RefreshTTL must be > 0", ErrInvalidConfig)
	}
	if c.Token.RefreshTTL < c.Token.AccessTTL {
		return fmt.Errorf("%w: Token.RefreshTTL must be >= Token.AccessTTL", ErrInvalidConfig)
	}

	// Store
	if err := c.Store.Keys.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Store.CacheUser && c.Store.Keys.User == "" {
		return fmt.Errorf("%w: Store.CacheUser requires Store.Keys.User", ErrInvalidConfig)
	}
	switch c.Store.Backend {
	case "", StoreMemory:
	case StoreRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("%w: Store.Redis.Addr must be set for the redis backend", ErrInvalidConfig)
		}
		if c.Store.Redis.TTL < 0 {
			return fmt.Errorf("%w: Store.Redis.TTL must be >= 0", ErrInvalidConfig)
		}
	case StoreBadger:
		if !c.Store.Badger.InMemory && c.Store.Badger.Dir == "" {
			return fmt.Errorf("%w: Store.Badger.Dir must be set for the badger backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown Store.Backend %q", ErrInvalidConfig, c.Store.Backend)
	}

	// Refresh
	if c.Refresh.UseCachedUser && !c.Store.CacheUser {
		return fmt.Errorf("%w: Refresh.UseCachedUser requires Store.CacheUser", ErrInvalidConfig)
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return fmt.Errorf("%w: Audit.BufferSize must be > 0 when audit is enabled", ErrInvalidConfig)
	}

	return nil
}
