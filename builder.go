package goSession

import (
	"io"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/store"
	"github.com/MrEthical07/goSession/token"
)

// Builder assembles a Manager. Configure it once, call Build, then discard it.
type Builder struct {
	config Config
	store  store.TokenStore
	redis  redis.UniversalClient
	clock  token.Clock
	logger *zap.Logger

	auditSink AuditSink
	resolver  ClaimsResolver

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole config.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithSecret sets Token.Secret.
func (b *Builder) WithSecret(secret string) *Builder {
	b.config.Token.Secret = secret
	return b
}

// WithStore injects a TokenStore. The Manager does not close injected stores.
func (b *Builder) WithStore(s store.TokenStore) *Builder {
	b.store = s
	return b
}

// WithRedis persists through client using Store.Redis.Prefix and Store.Redis.TTL.
// Ignored when WithStore is also used.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithClock overrides the codec clock.
func (b *Builder) WithClock(clock token.Clock) *Builder {
	b.clock = clock
	return b
}

// WithLogger sets the logger. Defaults to a no-op logger.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink sets the audit sink. Events flow only when Audit.Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClaimsResolver sets the source of claims for refreshed access tokens.
func (b *Builder) WithClaimsResolver(r ClaimsResolver) *Builder {
	b.resolver = r
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the verify latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the config and returns a ready Manager. A Builder can be built once.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}
	b.built = true

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("gosession")

	codec, err := token.NewCodec(token.Config{
		Secret:     cfg.Token.Secret,
		Issuer:     cfg.Token.Issuer,
		AccessTTL:  cfg.Token.AccessTTL,
		RefreshTTL: cfg.Token.RefreshTTL,
		Clock:      b.clock,
	})
	if err != nil {
		return nil, err
	}

	var closer io.Closer
	st := b.store
	switch {
	case st != nil:
	case b.redis != nil:
		st = store.NewRedisStore(b.redis, cfg.Store.Redis.Prefix, cfg.Store.Redis.TTL)
	default:
		st, closer, err = OpenStore(cfg.Store, logger)
		if err != nil {
			return nil, err
		}
	}

	m := &Manager{
		config:   cfg,
		codec:    codec,
		store:    st,
		closer:   closer,
		logger:   logger,
		metrics:  NewMetrics(cfg.Metrics),
		audit:    newAuditDispatcher(cfg.Audit, b.auditSink, logger),
		resolver: b.resolver,
	}
	m.flows = m.buildFlowDeps()

	logger.Debug("session manager built",
		zap.String("issuer", codec.Issuer()),
		zap.Duration("access_ttl", codec.AccessTTL()),
		zap.Duration("refresh_ttl", codec.RefreshTTL()),
		zap.String("backend", string(cfg.Store.Backend)),
		zap.Bool("cache_user", cfg.Store.CacheUser))

	return m, nil
}

func (m *Manager) buildFlowDeps() flows.Deps {
	keys := m.config.Store.Keys

	refresh := flows.RefreshDeps{
		Keys:         keys,
		Store:        m.store,
		ParseAccess:  m.parseAccess,
		ParseRefresh: m.codec.VerifyRefresh,
		MintAccess:   m.codec.MintAccess,
	}
	if m.resolver != nil {
		refresh.ResolveClaims = m.resolveClaims
	} else if m.config.Refresh.UseCachedUser {
		refresh.CachedClaims = m.CachedUser
	}

	return flows.Deps{
		Login: flows.LoginDeps{
			Keys:        keys,
			Store:       m.store,
			MintAccess:  m.codec.MintAccess,
			MintRefresh: m.codec.MintRefresh,
			CacheUser:   m.config.Store.CacheUser,
			EncodeUser:  m.codec.Seal,
		},
		Current: flows.CurrentDeps{
			AccessKey: keys.Access,
			Store:     m.store,
			Parse:     m.parseAccess,
		},
		Refresh: refresh,
		Logout: flows.LogoutDeps{
			Keys:  keys,
			Store: m.store,
		},
	}
}
