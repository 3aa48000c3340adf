package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms/backend/internal/application/transfer"
)

func cachedResponse(orderNumber string) *transfer.TransferOrderResponse {
	return &transfer.TransferOrderResponse{
		ID:          uuid.New(),
		OrderNumber: orderNumber,
		Status:      "PENDING",
	}
}

func TestInMemoryOrderCache_SetAndGet(t *testing.T) {
	c := NewInMemoryOrderCache()
	defer c.Close()
	ctx := context.Background()

	orderID := uuid.New()
	c.Set(ctx, orderID, cachedResponse("TO-2026-00001"))

	got, ok := c.Get(ctx, orderID)
	require.True(t, ok)
	assert.Equal(t, "TO-2026-00001", got.OrderNumber)

	_, ok = c.Get(ctx, uuid.New())
	assert.False(t, ok)
}

func TestInMemoryOrderCache_NilResponseIgnored(t *testing.T) {
	c := NewInMemoryOrderCache()
	defer c.Close()
	ctx := context.Background()

	orderID := uuid.New()
	c.Set(ctx, orderID, nil)

	_, ok := c.Get(ctx, orderID)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Count())
}

func TestInMemoryOrderCache_Invalidate(t *testing.T) {
	c := NewInMemoryOrderCache()
	defer c.Close()
	ctx := context.Background()

	orderID := uuid.New()
	c.Set(ctx, orderID, cachedResponse("TO-2026-00001"))
	c.Invalidate(ctx, orderID)

	_, ok := c.Get(ctx, orderID)
	assert.False(t, ok)

	// Invalidating an absent key is a no-op
	c.Invalidate(ctx, uuid.New())
}

func TestInMemoryOrderCache_TTLExpiry(t *testing.T) {
	c := NewInMemoryOrderCache(WithInMemoryTTL(20 * time.Millisecond))
	defer c.Close()
	ctx := context.Background()

	orderID := uuid.New()
	c.Set(ctx, orderID, cachedResponse("TO-2026-00001"))

	_, ok := c.Get(ctx, orderID)
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)

	_, ok = c.Get(ctx, orderID)
	assert.False(t, ok)
	// Expired entry is dropped by the read path
	assert.Equal(t, 0, c.Count())
}

func TestInMemoryOrderCache_Stats(t *testing.T) {
	c := NewInMemoryOrderCache()
	defer c.Close()
	ctx := context.Background()

	orderID := uuid.New()
	c.Set(ctx, orderID, cachedResponse("TO-2026-00001"))

	c.Get(ctx, orderID)
	c.Get(ctx, orderID)
	c.Get(ctx, uuid.New())

	hits, misses := c.GetStats()
	assert.EqualValues(t, 2, hits)
	assert.EqualValues(t, 1, misses)
	assert.Equal(t, 1, c.Count())
}

func TestInMemoryOrderCache_CloseIsIdempotent(t *testing.T) {
	c := NewInMemoryOrderCache()
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}
