package transfer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/transfer"
)

// CreateTransferLineRequest is one requested line of a new transfer order
type CreateTransferLineRequest struct {
	ItemID       uuid.UUID       `json:"item_id"`
	RequestedQty decimal.Decimal `json:"requested_qty"`
}

// CreateTransferOrderRequest is the payload for creating a transfer order
type CreateTransferOrderRequest struct {
	OrderNumber           string                      `json:"order_number"` // generated when empty
	OriginLocationID      uuid.UUID                   `json:"origin_location_id"`
	DestinationLocationID uuid.UUID                   `json:"destination_location_id"`
	Notes                 string                      `json:"notes"`
	Lines                 []CreateTransferLineRequest `json:"lines"`
	CreatedBy             uuid.UUID                   `json:"created_by"`
}

// ShipLineRequest is the payload for applying a shipment against a line
type ShipLineRequest struct {
	LineID     uuid.UUID       `json:"line_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Reference  string          `json:"reference"`
	OperatorID uuid.UUID       `json:"operator_id"`
}

// CancelOrderRequest is the payload for cancelling an order
type CancelOrderRequest struct {
	OrderID          uuid.UUID `json:"order_id"`
	Reason           string    `json:"reason"`
	ReverseShipments bool      `json:"reverse_shipments"`
	OperatorID       uuid.UUID `json:"operator_id"`
}

// ListOrdersFilter narrows and pages the order listing
type ListOrdersFilter struct {
	Status                *transfer.OrderStatus
	OriginLocationID      *uuid.UUID
	DestinationLocationID *uuid.UUID
	StartDate             *time.Time
	EndDate               *time.Time
	Page                  int
	PageSize              int
}

// TransferLineResponse represents a line in API-facing results
type TransferLineResponse struct {
	ID           uuid.UUID       `json:"id"`
	ItemID       uuid.UUID       `json:"item_id"`
	RequestedQty decimal.Decimal `json:"requested_qty"`
	ShippedQty   decimal.Decimal `json:"shipped_qty"`
	RemainingQty decimal.Decimal `json:"remaining_qty"`
	Status       string          `json:"status"`
}

// OrderSummary aggregates line counts and quantities for an order
type OrderSummary struct {
	LineCount      int             `json:"line_count"`
	TotalRequested decimal.Decimal `json:"total_requested"`
	TotalShipped   decimal.Decimal `json:"total_shipped"`
}

// TransferOrderResponse represents a full order with lines and summary
type TransferOrderResponse struct {
	ID                    uuid.UUID              `json:"id"`
	OrderNumber           string                 `json:"order_number"`
	OriginLocationID      uuid.UUID              `json:"origin_location_id"`
	DestinationLocationID uuid.UUID              `json:"destination_location_id"`
	Status                string                 `json:"status"`
	Notes                 string                 `json:"notes"`
	CreatedBy             uuid.UUID              `json:"created_by"`
	CreatedAt             time.Time              `json:"created_at"`
	CompletedAt           *time.Time             `json:"completed_at,omitempty"`
	Lines                 []TransferLineResponse `json:"lines"`
	Summary               OrderSummary           `json:"summary"`
}

// TransferOrderListItem is one row of the order listing
type TransferOrderListItem struct {
	ID                    uuid.UUID       `json:"id"`
	OrderNumber           string          `json:"order_number"`
	OriginLocationID      uuid.UUID       `json:"origin_location_id"`
	DestinationLocationID uuid.UUID       `json:"destination_location_id"`
	Status                string          `json:"status"`
	CreatedAt             time.Time       `json:"created_at"`
	LineCount             int             `json:"line_count"`
	TotalRequested        decimal.Decimal `json:"total_requested"`
	TotalShipped          decimal.Decimal `json:"total_shipped"`
	Progress              decimal.Decimal `json:"progress"`
}

// ShipmentResponse echoes the outcome of a shipment
type ShipmentResponse struct {
	OrderID          uuid.UUID       `json:"order_id"`
	OrderNumber      string          `json:"order_number"`
	LineID           uuid.UUID       `json:"line_id"`
	ShippedQty       decimal.Decimal `json:"shipped_qty"`
	LineTotalShipped decimal.Decimal `json:"line_total_shipped"`
	RemainingQty     decimal.Decimal `json:"remaining_qty"`
	LineStatus       string          `json:"line_status"`
	OrderStatus      string          `json:"order_status"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
}

// CancellationResponse echoes the outcome of a cancellation
type CancellationResponse struct {
	OrderID           uuid.UUID `json:"order_id"`
	OrderNumber       string    `json:"order_number"`
	Status            string    `json:"status"`
	ReversedMovements int       `json:"reversed_movements"`
}

// ToTransferLineResponse converts a domain line to its response form
func ToTransferLineResponse(line *transfer.TransferLine) TransferLineResponse {
	return TransferLineResponse{
		ID:           line.ID,
		ItemID:       line.ItemID,
		RequestedQty: line.RequestedQty,
		ShippedQty:   line.ShippedQty,
		RemainingQty: line.RemainingQty(),
		Status:       line.Status.String(),
	}
}

// ToTransferOrderResponse converts a domain order to its response form
func ToTransferOrderResponse(order *transfer.TransferOrder) TransferOrderResponse {
	lines := make([]TransferLineResponse, 0, len(order.Lines))
	for i := range order.Lines {
		lines = append(lines, ToTransferLineResponse(&order.Lines[i]))
	}

	return TransferOrderResponse{
		ID:                    order.ID,
		OrderNumber:           order.OrderNumber,
		OriginLocationID:      order.OriginLocationID,
		DestinationLocationID: order.DestinationLocationID,
		Status:                order.Status.String(),
		Notes:                 order.Notes,
		CreatedBy:             order.CreatedBy,
		CreatedAt:             order.CreatedAt,
		CompletedAt:           order.CompletedAt,
		Lines:                 lines,
		Summary: OrderSummary{
			LineCount:      len(order.Lines),
			TotalRequested: order.TotalRequested(),
			TotalShipped:   order.TotalShipped(),
		},
	}
}
