package transfer

import (
	"context"

	"github.com/google/uuid"
)

// OrderCache is a read-side cache for full order lookups. Exactly one
// implementation is selected at startup; the engine never probes for
// capabilities at runtime. A cache miss is never an error.
type OrderCache interface {
	// Get returns the cached response for an order, and whether it was present
	Get(ctx context.Context, orderID uuid.UUID) (*TransferOrderResponse, bool)
	// Set stores the response for an order
	Set(ctx context.Context, orderID uuid.UUID, response *TransferOrderResponse)
	// Invalidate drops the cached response for an order
	Invalidate(ctx context.Context, orderID uuid.UUID)
}
