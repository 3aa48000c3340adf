package transfer

import (
	"context"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// TransferOrderRepository is the persistence contract for the TransferOrder
// aggregate. All mutating methods must be called on a repository bound to the
// operation's transaction.
type TransferOrderRepository interface {
	// FindByID loads an order with its lines, or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*TransferOrder, error)
	// FindByLineID loads the order owning the given line, with all its lines
	FindByLineID(ctx context.Context, lineID uuid.UUID) (*TransferOrder, error)
	// FindAll lists order headers (without lines) matching the filter,
	// newest order date first
	FindAll(ctx context.Context, filter shared.Filter) ([]TransferOrder, error)
	// Count counts orders matching the filter, ignoring pagination
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// FindLines loads the lines of an order ordered by creation time
	FindLines(ctx context.Context, orderID uuid.UUID) ([]TransferLine, error)
	// Save persists a new order together with its lines
	Save(ctx context.Context, order *TransferOrder) error
	// SaveLine persists the shipped quantity and derived status of one line
	SaveLine(ctx context.Context, line *TransferLine) error
	// UpdateStatus persists order status, notes and completion timestamp with
	// a version check
	UpdateStatus(ctx context.Context, order *TransferOrder) error
	// GenerateOrderNumber produces the next human-readable order number
	GenerateOrderNumber(ctx context.Context) (string, error)
}
