package transfer

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// Event types for the transfer order aggregate
const (
	EventTypeTransferOrderCreated   = "transfer_order.created"
	EventTypeTransferLineShipped    = "transfer_order.line_shipped"
	EventTypeTransferOrderCompleted = "transfer_order.completed"
	EventTypeTransferOrderCancelled = "transfer_order.cancelled"
)

const aggregateTypeTransferOrder = "TransferOrder"

// TransferOrderCreatedEvent is emitted when a new transfer order is created
type TransferOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber           string    `json:"order_number"`
	OriginLocationID      uuid.UUID `json:"origin_location_id"`
	DestinationLocationID uuid.UUID `json:"destination_location_id"`
	LineCount             int       `json:"line_count"`
}

// NewTransferOrderCreatedEvent creates a new TransferOrderCreatedEvent
func NewTransferOrderCreatedEvent(order *TransferOrder) *TransferOrderCreatedEvent {
	return &TransferOrderCreatedEvent{
		BaseDomainEvent:       shared.NewBaseDomainEvent(EventTypeTransferOrderCreated, aggregateTypeTransferOrder, order.ID),
		OrderNumber:           order.OrderNumber,
		OriginLocationID:      order.OriginLocationID,
		DestinationLocationID: order.DestinationLocationID,
		LineCount:             len(order.Lines),
	}
}

// TransferLineShippedEvent is emitted when a shipment is applied to a line
type TransferLineShippedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	LineID      uuid.UUID       `json:"line_id"`
	ItemID      uuid.UUID       `json:"item_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	LineStatus  LineStatus      `json:"line_status"`
}

// NewTransferLineShippedEvent creates a new TransferLineShippedEvent
func NewTransferLineShippedEvent(order *TransferOrder, line *TransferLine, quantity decimal.Decimal) *TransferLineShippedEvent {
	return &TransferLineShippedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferLineShipped, aggregateTypeTransferOrder, order.ID),
		OrderNumber:     order.OrderNumber,
		LineID:          line.ID,
		ItemID:          line.ItemID,
		Quantity:        quantity,
		LineStatus:      line.Status,
	}
}

// TransferOrderCompletedEvent is emitted when every line of an order completes
type TransferOrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
}

// NewTransferOrderCompletedEvent creates a new TransferOrderCompletedEvent
func NewTransferOrderCompletedEvent(order *TransferOrder) *TransferOrderCompletedEvent {
	return &TransferOrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferOrderCompleted, aggregateTypeTransferOrder, order.ID),
		OrderNumber:     order.OrderNumber,
	}
}

// TransferOrderCancelledEvent is emitted when an order is cancelled
type TransferOrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
	Reason      string `json:"reason"`
}

// NewTransferOrderCancelledEvent creates a new TransferOrderCancelledEvent
func NewTransferOrderCancelledEvent(order *TransferOrder, reason string) *TransferOrderCancelledEvent {
	return &TransferOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferOrderCancelled, aggregateTypeTransferOrder, order.ID),
		OrderNumber:     order.OrderNumber,
		Reason:          reason,
	}
}
