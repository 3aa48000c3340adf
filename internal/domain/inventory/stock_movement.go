package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// MovementType represents the type of a stock movement
type MovementType string

const (
	// MovementTypeTransfer records goods moved between locations for an order
	MovementTypeTransfer MovementType = "TRANSFER"
	// MovementTypeReturn records a compensating movement after cancellation
	MovementTypeReturn MovementType = "RETURN"
	// MovementTypeAdjustment records a manual stock correction
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeTransfer, MovementTypeReturn, MovementTypeAdjustment:
		return true
	}
	return false
}

// StockMovement is an immutable audit record of a quantity change between
// locations. Movements are append-only; the ledger itself is mutated by the
// caller within the same transaction, never by the recorder.
type StockMovement struct {
	shared.BaseEntity
	MovementType          MovementType    `gorm:"type:varchar(20);not null;index"`
	ItemID                uuid.UUID       `gorm:"type:uuid;not null;index"`
	OriginLocationID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	DestinationLocationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity              decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reason                string          `gorm:"type:varchar(255)"`
	Reference             string          `gorm:"type:varchar(64);index"`
	OperatorID            uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a new movement record. Validation covers field
// presence only; business rules live with the callers.
func NewStockMovement(
	movementType MovementType,
	itemID, origin, destination uuid.UUID,
	quantity decimal.Decimal,
	reason, reference string,
	operatorID uuid.UUID,
) (*StockMovement, error) {
	if !movementType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidMovement, "Invalid movement type")
	}
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidMovement, "Item ID cannot be empty")
	}
	if origin == uuid.Nil || destination == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidMovement, "Origin and destination locations are required")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeInvalidMovement, "Movement quantity must be positive")
	}
	if operatorID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidMovement, "Operator identity is required")
	}

	return &StockMovement{
		BaseEntity:            shared.NewBaseEntity(),
		MovementType:          movementType,
		ItemID:                itemID,
		OriginLocationID:      origin,
		DestinationLocationID: destination,
		Quantity:              quantity,
		Reason:                reason,
		Reference:             reference,
		OperatorID:            operatorID,
	}, nil
}

// OccurredAt returns the append timestamp of the movement
func (m *StockMovement) OccurredAt() time.Time {
	return m.CreatedAt
}
