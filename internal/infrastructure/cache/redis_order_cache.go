package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/application/transfer"
	"github.com/wms/backend/internal/infrastructure/config"
)

// RedisOrderCache implements transfer.OrderCache using Redis.
// This is suitable for distributed deployments where multiple instances
// need to share cached order state. Redis errors degrade to cache misses.
type RedisOrderCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewRedisOrderCache creates a new Redis-based order cache
func NewRedisOrderCache(cfg config.RedisConfig, ttl time.Duration, logger *zap.Logger) (*RedisOrderCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl <= 0 {
		ttl = defaultOrderTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RedisOrderCache{
		client:    client,
		keyPrefix: "transfer:order:",
		ttl:       ttl,
		logger:    logger,
	}, nil
}

// NewRedisOrderCacheWithClient creates a cache with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisOrderCacheWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisOrderCache {
	if ttl <= 0 {
		ttl = defaultOrderTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisOrderCache{
		client:    client,
		keyPrefix: "transfer:order:",
		ttl:       ttl,
		logger:    logger,
	}
}

func (c *RedisOrderCache) key(orderID uuid.UUID) string {
	return c.keyPrefix + orderID.String()
}

// Get retrieves a cached order response. Any Redis or decode failure is
// reported as a miss so the caller falls through to the database.
func (c *RedisOrderCache) Get(ctx context.Context, orderID uuid.UUID) (*transfer.TransferOrderResponse, bool) {
	payload, err := c.client.Get(ctx, c.key(orderID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Redis order cache read failed",
				zap.String("order_id", orderID.String()),
				zap.Error(err))
		}
		return nil, false
	}

	var response transfer.TransferOrderResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		c.logger.Warn("Failed to decode cached transfer order",
			zap.String("order_id", orderID.String()),
			zap.Error(err))
		// Drop the corrupt entry so it is not decoded again
		_ = c.client.Del(ctx, c.key(orderID)).Err()
		return nil, false
	}

	return &response, true
}

// Set stores an order response in Redis with the configured TTL
func (c *RedisOrderCache) Set(ctx context.Context, orderID uuid.UUID, response *transfer.TransferOrderResponse) {
	if response == nil {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		c.logger.Warn("Failed to encode transfer order for cache",
			zap.String("order_id", orderID.String()),
			zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, c.key(orderID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("Redis order cache write failed",
			zap.String("order_id", orderID.String()),
			zap.Error(err))
	}
}

// Invalidate removes an order from Redis
func (c *RedisOrderCache) Invalidate(ctx context.Context, orderID uuid.UUID) {
	if err := c.client.Del(ctx, c.key(orderID)).Err(); err != nil {
		c.logger.Warn("Redis order cache invalidation failed",
			zap.String("order_id", orderID.String()),
			zap.Error(err))
	}
}

// Close closes the Redis client
func (c *RedisOrderCache) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisOrderCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisOrderCache implements transfer.OrderCache
var _ transfer.OrderCache = (*RedisOrderCache)(nil)
