package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/application/transfer"
)

// Constants for in-memory cache configuration
const (
	defaultCleanupInterval = 30 * time.Second
	defaultOrderTTL        = 5 * time.Minute
)

// InMemoryOrderCache implements transfer.OrderCache using in-process storage.
// Suitable for single-instance deployments and testing.
type InMemoryOrderCache struct {
	entries sync.Map // map[uuid.UUID]*orderEntry
	ttl     time.Duration
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	// Stats for monitoring
	hits   int64
	misses int64
}

// orderEntry wraps a cached response with expiration time
type orderEntry struct {
	value     *transfer.TransferOrderResponse
	expiresAt time.Time
}

// isExpired checks if the cache entry has expired
func (e *orderEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryOrderCacheOption is a functional option for configuring the cache
type InMemoryOrderCacheOption func(*InMemoryOrderCache)

// WithInMemoryTTL sets the entry time-to-live
func WithInMemoryTTL(ttl time.Duration) InMemoryOrderCacheOption {
	return func(c *InMemoryOrderCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryOrderCacheOption {
	return func(c *InMemoryOrderCache) {
		c.logger = logger
	}
}

// NewInMemoryOrderCache creates a new in-memory order cache
func NewInMemoryOrderCache(opts ...InMemoryOrderCacheOption) *InMemoryOrderCache {
	cache := &InMemoryOrderCache{
		ttl:    defaultOrderTTL,
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	// Start background cleanup goroutine
	go cache.cleanupExpired()

	return cache
}

// Get retrieves a cached order response
func (c *InMemoryOrderCache) Get(_ context.Context, orderID uuid.UUID) (*transfer.TransferOrderResponse, bool) {
	if value, ok := c.entries.Load(orderID); ok {
		entry := value.(*orderEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			c.logger.Debug("Cache hit for transfer order", zap.String("order_id", orderID.String()))
			return entry.value, true
		}
		// Expired, remove from cache
		c.entries.Delete(orderID)
	}

	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("Cache miss for transfer order", zap.String("order_id", orderID.String()))
	return nil, false
}

// Set stores an order response in cache
func (c *InMemoryOrderCache) Set(_ context.Context, orderID uuid.UUID, response *transfer.TransferOrderResponse) {
	if response == nil {
		return
	}

	c.entries.Store(orderID, &orderEntry{
		value:     response,
		expiresAt: time.Now().Add(c.ttl),
	})
	c.logger.Debug("Cached transfer order",
		zap.String("order_id", orderID.String()),
		zap.Duration("ttl", c.ttl))
}

// Invalidate removes an order from cache
func (c *InMemoryOrderCache) Invalidate(_ context.Context, orderID uuid.UUID) {
	c.entries.Delete(orderID)
	c.logger.Debug("Invalidated cached transfer order", zap.String("order_id", orderID.String()))
}

// Close releases any resources held by the cache
func (c *InMemoryOrderCache) Close() error {
	// Only close once
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns cache statistics
func (c *InMemoryOrderCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of entries in the cache
func (c *InMemoryOrderCache) Count() int {
	var n int
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// cleanupExpired periodically removes expired entries from the cache
func (c *InMemoryOrderCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						c.logger.Error("Panic in cache cleanup", zap.Any("panic", r))
					}
				}()
				c.doCleanup()
			}()
		}
	}
}

// doCleanup removes expired entries
func (c *InMemoryOrderCache) doCleanup() {
	var removed int

	c.entries.Range(func(key, value any) bool {
		entry := value.(*orderEntry)
		if entry.isExpired() {
			c.entries.Delete(key)
			removed++
		}
		return true
	})

	if removed > 0 {
		c.logger.Debug("Cleaned up expired order cache entries", zap.Int("removed", removed))
	}
}

// Ensure InMemoryOrderCache implements transfer.OrderCache
var _ transfer.OrderCache = (*InMemoryOrderCache)(nil)
