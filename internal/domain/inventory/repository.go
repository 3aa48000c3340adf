package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// StockLevelRepository is the persistence contract for the stock ledger.
// Lock-acquiring methods must be called inside the operation's transaction so
// that concurrent decrements against the same row serialize on the database's
// row lock.
type StockLevelRepository interface {
	// FindByItemAndLocation loads a stock level, or shared.ErrNotFound
	FindByItemAndLocation(ctx context.Context, itemID, locationID uuid.UUID) (*StockLevel, error)
	// FindForUpdate loads a stock level holding a row lock until the
	// surrounding transaction ends, or shared.ErrNotFound
	FindForUpdate(ctx context.Context, itemID, locationID uuid.UUID) (*StockLevel, error)
	// GetQuantity returns the quantity on hand, zero when no row exists
	GetQuantity(ctx context.Context, itemID, locationID uuid.UUID) (decimal.Decimal, error)
	// GetOrCreate returns the stock level for the pair, creating an empty row
	// when absent
	GetOrCreate(ctx context.Context, itemID, locationID uuid.UUID) (*StockLevel, error)
	// Save creates or fully updates a stock level
	Save(ctx context.Context, level *StockLevel) error
	// SaveWithLock updates quantity with an optimistic version check
	SaveWithLock(ctx context.Context, level *StockLevel) error
}

// StockMovementRepository is the append-only persistence contract for the
// movement log.
type StockMovementRepository interface {
	// Create appends a movement record
	Create(ctx context.Context, movement *StockMovement) error
	// FindByReference lists movements carrying the given document reference
	FindByReference(ctx context.Context, reference string, filter shared.Filter) ([]StockMovement, error)
	// FindByItem lists movements for an item, optionally filtered further
	FindByItem(ctx context.Context, itemID uuid.UUID, filter shared.Filter) ([]StockMovement, error)
	// FindByLocation lists movements touching a location as origin or destination
	FindByLocation(ctx context.Context, locationID uuid.UUID, filter shared.Filter) ([]StockMovement, error)
}
