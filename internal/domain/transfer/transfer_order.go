package transfer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// OrderStatus represents the status of a transfer order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPartial   OrderStatus = "PARTIAL"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPartial, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states that accept no further shipments or edits
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// LineStatus represents the derived status of a transfer line
type LineStatus string

const (
	LineStatusPending   LineStatus = "PENDING"
	LineStatusPartial   LineStatus = "PARTIAL"
	LineStatusCompleted LineStatus = "COMPLETED"
)

// String returns the string representation of LineStatus
func (s LineStatus) String() string {
	return string(s)
}

// DeriveLineStatus computes a line status purely from its quantities.
// COMPLETED when shipped covers requested, PARTIAL when shipment started,
// PENDING otherwise.
func DeriveLineStatus(shipped, requested decimal.Decimal) LineStatus {
	switch {
	case shipped.GreaterThanOrEqual(requested):
		return LineStatusCompleted
	case shipped.GreaterThan(decimal.Zero):
		return LineStatusPartial
	default:
		return LineStatusPending
	}
}

// TransferLine represents one (item, requested quantity) entry within a transfer order.
// ShippedQty is monotonically non-decreasing and never exceeds RequestedQty;
// Status is derived from the quantities, never set by a caller.
type TransferLine struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	RequestedQty decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ShippedQty   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status       LineStatus      `gorm:"type:varchar(20);not null;default:'PENDING'"`
	CreatedAt    time.Time       `gorm:"not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TransferLine) TableName() string {
	return "transfer_lines"
}

// RemainingQty returns the quantity still to be shipped
func (l *TransferLine) RemainingQty() decimal.Decimal {
	return l.RequestedQty.Sub(l.ShippedQty)
}

// ApplyShipment applies a positive shipment delta to the line and re-derives
// its status. The delta must not push the cumulative shipped quantity past
// the requested quantity.
func (l *TransferLine) ApplyShipment(delta decimal.Decimal) error {
	if delta.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Shipment quantity must be positive")
	}

	attempted := l.ShippedQty.Add(delta)
	if attempted.GreaterThan(l.RequestedQty) {
		return shared.NewDomainError(shared.CodeExceedsRequested,
			fmt.Sprintf("Shipment of %s would bring the line total to %s, exceeding the requested quantity of %s",
				delta, attempted, l.RequestedQty))
	}

	l.ShippedQty = attempted
	l.Status = DeriveLineStatus(l.ShippedQty, l.RequestedQty)
	l.UpdatedAt = time.Now()

	return nil
}

// TransferOrder is the aggregate root for a request to move quantities of
// items from one location to another. A location generalizes warehouse,
// seller and client sites.
type TransferOrder struct {
	shared.BaseAggregateRoot
	OrderNumber           string         `gorm:"type:varchar(32);not null;uniqueIndex"`
	OriginLocationID      uuid.UUID      `gorm:"type:uuid;not null;index"`
	DestinationLocationID uuid.UUID      `gorm:"type:uuid;not null;index"`
	Status                OrderStatus    `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Notes                 string         `gorm:"type:text"`
	CreatedBy             uuid.UUID      `gorm:"type:uuid;not null"`
	CompletedAt           *time.Time     `gorm:""`
	Lines                 []TransferLine `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (TransferOrder) TableName() string {
	return "transfer_orders"
}

// NewTransferOrder creates a new transfer order in PENDING status.
// The caller identity is mandatory; it is never defaulted.
func NewTransferOrder(orderNumber string, origin, destination, createdBy uuid.UUID, notes string) (*TransferOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Order number cannot be empty")
	}
	if origin == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Origin location cannot be empty")
	}
	if destination == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Destination location cannot be empty")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Creator identity is required")
	}

	return &TransferOrder{
		BaseAggregateRoot:     shared.NewBaseAggregateRoot(),
		OrderNumber:           orderNumber,
		OriginLocationID:      origin,
		DestinationLocationID: destination,
		Status:                OrderStatusPending,
		Notes:                 notes,
		CreatedBy:             createdBy,
		Lines:                 make([]TransferLine, 0),
	}, nil
}

// AddLine adds a line item to the order. Only valid before the order is
// persisted; line sets are fixed after creation.
func (o *TransferOrder) AddLine(itemID uuid.UUID, requested decimal.Decimal) (*TransferLine, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Item ID cannot be empty")
	}
	if requested.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Requested quantity must be positive")
	}

	now := time.Now()
	line := TransferLine{
		ID:           uuid.New(),
		OrderID:      o.ID,
		ItemID:       itemID,
		RequestedQty: requested,
		ShippedQty:   decimal.Zero,
		Status:       LineStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	o.Lines = append(o.Lines, line)

	return &o.Lines[len(o.Lines)-1], nil
}

// FindLine returns the line with the given ID, or nil
func (o *TransferOrder) FindLine(lineID uuid.UUID) *TransferLine {
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			return &o.Lines[i]
		}
	}
	return nil
}

// DeriveStatus computes the order status purely from its line statuses:
// COMPLETED when every line is COMPLETED, PARTIAL when at least one line has
// shipments but not all are complete, PENDING otherwise. A CANCELLED order
// keeps its status; cancellation is the only transition not derived from
// quantities.
func (o *TransferOrder) DeriveStatus() OrderStatus {
	if o.Status == OrderStatusCancelled {
		return OrderStatusCancelled
	}
	if len(o.Lines) == 0 {
		return OrderStatusPending
	}

	allCompleted := true
	anyProgress := false
	for i := range o.Lines {
		switch o.Lines[i].Status {
		case LineStatusCompleted:
			anyProgress = true
		case LineStatusPartial:
			anyProgress = true
			allCompleted = false
		default:
			allCompleted = false
		}
	}

	switch {
	case allCompleted:
		return OrderStatusCompleted
	case anyProgress:
		return OrderStatusPartial
	default:
		return OrderStatusPending
	}
}

// RefreshStatus re-derives the order status from the current line set and
// stamps CompletedAt when the order transitions to COMPLETED. Must be called
// inside the same transaction as the line mutation that triggered it.
func (o *TransferOrder) RefreshStatus(now time.Time) {
	derived := o.DeriveStatus()
	if derived == o.Status {
		o.UpdatedAt = now
		o.IncrementVersion()
		return
	}

	o.Status = derived
	o.UpdatedAt = now
	o.IncrementVersion()

	if derived == OrderStatusCompleted {
		completedAt := now
		o.CompletedAt = &completedAt
		o.AddDomainEvent(NewTransferOrderCompletedEvent(o))
	}
}

// Cancel moves the order to the CANCELLED terminal state, appending the
// reason to the existing notes. Line quantities and statuses are left as
// historical fact.
func (o *TransferOrder) Cancel(reason string, now time.Time) error {
	if o.Status.IsTerminal() {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot cancel order %s in %s status", o.OrderNumber, o.Status))
	}
	if reason == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Cancel reason is required")
	}

	if o.Notes == "" {
		o.Notes = "Cancelled: " + reason
	} else {
		o.Notes = o.Notes + "\nCancelled: " + reason
	}
	o.Status = OrderStatusCancelled
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewTransferOrderCancelledEvent(o, reason))

	return nil
}

// TotalRequested returns the sum of requested quantities across all lines
func (o *TransferOrder) TotalRequested() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Lines {
		total = total.Add(o.Lines[i].RequestedQty)
	}
	return total
}

// TotalShipped returns the sum of shipped quantities across all lines
func (o *TransferOrder) TotalShipped() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Lines {
		total = total.Add(o.Lines[i].ShippedQty)
	}
	return total
}

// Progress returns shipped/requested as a percentage rounded to two decimal
// places, 0 when nothing is requested.
func (o *TransferOrder) Progress() decimal.Decimal {
	requested := o.TotalRequested()
	if requested.IsZero() {
		return decimal.Zero
	}
	return o.TotalShipped().Div(requested).Mul(decimal.NewFromInt(100)).Round(2)
}
