package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wms/backend/internal/application/transfer"
	"github.com/wms/backend/internal/infrastructure/config"
)

// NewOrderCache builds the order cache selected by configuration. The
// backend is chosen once at startup; "redis" fails hard when the server
// is unreachable rather than silently degrading.
func NewOrderCache(cfg *config.Config, logger *zap.Logger) (transfer.OrderCache, error) {
	switch cfg.Cache.Backend {
	case "redis":
		cache, err := NewRedisOrderCache(cfg.Redis, cfg.Cache.TTL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis order cache: %w", err)
		}
		logger.Info("using Redis order cache",
			zap.String("addr", cfg.Redis.Addr()),
			zap.Duration("ttl", cfg.Cache.TTL))
		return cache, nil
	case "memory", "":
		logger.Info("using in-memory order cache", zap.Duration("ttl", cfg.Cache.TTL))
		return NewInMemoryOrderCache(
			WithInMemoryTTL(cfg.Cache.TTL),
			WithInMemoryLogger(logger),
		), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
