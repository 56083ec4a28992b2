package goSession

import (
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MrEthical07/goSession/store"
)

// OpenStore constructs the backend named by cfg.Backend. The returned closer releases
// the backend's resources and is nil for the memory backend.
func OpenStore(cfg StoreConfig, logger *zap.Logger) (store.TokenStore, io.Closer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case "", StoreMemory:
		return store.NewMemoryStore(), nil, nil
	case StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		logger.Debug("redis store configured",
			zap.String("addr", cfg.Redis.Addr),
			zap.Int("db", cfg.Redis.DB),
			zap.String("prefix", cfg.Redis.Prefix))
		return store.NewRedisStore(client, cfg.Redis.Prefix, cfg.Redis.TTL), client, nil
	case StoreBadger:
		s, err := store.OpenBadgerStore(cfg.Badger, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, cfg.Backend)
	}
}
