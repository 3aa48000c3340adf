package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// StockLevel holds the quantity on hand for an item at a location. It is the
// aggregate root for ledger operations; the quantity never goes negative.
type StockLevel struct {
	shared.BaseAggregateRoot
	ItemID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_item_location,priority:1"`
	LocationID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_item_location,priority:2"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (StockLevel) TableName() string {
	return "stock_levels"
}

// NewStockLevel creates an empty stock level for an item-location pair
func NewStockLevel(itemID, locationID uuid.UUID) (*StockLevel, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Item ID cannot be empty")
	}
	if locationID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Location ID cannot be empty")
	}

	return &StockLevel{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ItemID:            itemID,
		LocationID:        locationID,
		Quantity:          decimal.Zero,
	}, nil
}

// HasAtLeast reports whether the quantity on hand covers the given amount
func (s *StockLevel) HasAtLeast(quantity decimal.Decimal) bool {
	return s.Quantity.GreaterThanOrEqual(quantity)
}

// Increase adds a positive quantity to the stock level
func (s *StockLevel) Increase(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be positive")
	}

	s.Quantity = s.Quantity.Add(quantity)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// Decrease removes a positive quantity from the stock level. This is the
// authoritative guard against negative stock: any advisory availability check
// done earlier does not replace it.
func (s *StockLevel) Decrease(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be positive")
	}
	if s.Quantity.LessThan(quantity) {
		return shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Insufficient stock for item %s at location %s: have %s, need %s",
				s.ItemID, s.LocationID, s.Quantity, quantity))
	}

	s.Quantity = s.Quantity.Sub(quantity)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}
