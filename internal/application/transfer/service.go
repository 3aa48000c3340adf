package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/transfer"
)

// TransferService orchestrates transfer order creation, shipment and
// cancellation. Each operation runs inside exactly one transaction supplied
// by the TransactionScope; any failure aborts and rolls back the whole
// operation. There is no retry policy here — the caller decides whether to
// retry.
type TransferService struct {
	scope          TransactionScope
	cache          OrderCache
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewTransferService creates a new TransferService
func NewTransferService(scope TransactionScope) *TransferService {
	return &TransferService{
		scope:  scope,
		logger: zap.NewNop(),
		now:    time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *TransferService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetOrderCache sets the read-side order cache
func (s *TransferService) SetOrderCache(cache OrderCache) {
	s.cache = cache
}

// SetLogger sets the service logger
func (s *TransferService) SetLogger(logger *zap.Logger) {
	s.logger = logger
}

// SetClock overrides the time source, mainly for tests
func (s *TransferService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateOrder creates a transfer order with its lines atomically. Stock at
// the origin is validated for every line before any row is written: a single
// shortfall aborts the whole creation and no order exists afterwards.
func (s *TransferService) CreateOrder(ctx context.Context, req CreateTransferOrderRequest) (*TransferOrderResponse, error) {
	if req.CreatedBy == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Creator identity is required")
	}
	if len(req.Lines) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "At least one line is required")
	}
	for _, line := range req.Lines {
		if line.ItemID == uuid.Nil {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Line item ID cannot be empty")
		}
		if line.RequestedQty.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Line requested quantity must be positive")
		}
	}

	var order *transfer.TransferOrder

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		// Validate stock for every line before the first write
		for _, line := range req.Lines {
			available, err := repos.StockRepo().GetQuantity(ctx, line.ItemID, req.OriginLocationID)
			if err != nil {
				return err
			}
			if available.LessThan(line.RequestedQty) {
				return shared.NewDomainError(shared.CodeInsufficientStock,
					fmt.Sprintf("Insufficient stock for item %s at origin: have %s, requested %s",
						line.ItemID, available, line.RequestedQty))
			}
		}

		orderNumber := req.OrderNumber
		if orderNumber == "" {
			generated, err := repos.OrderRepo().GenerateOrderNumber(ctx)
			if err != nil {
				return err
			}
			orderNumber = generated
		}

		var err error
		order, err = transfer.NewTransferOrder(orderNumber, req.OriginLocationID, req.DestinationLocationID, req.CreatedBy, req.Notes)
		if err != nil {
			return err
		}
		for _, line := range req.Lines {
			if _, err := order.AddLine(line.ItemID, line.RequestedQty); err != nil {
				return err
			}
		}

		order.AddDomainEvent(transfer.NewTransferOrderCreatedEvent(order))

		return repos.OrderRepo().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, order)

	response := ToTransferOrderResponse(order)
	return &response, nil
}

// ShipLine applies a partial or full shipment against one line. The inline
// availability check is advisory; the ledger decrement inside the same
// transaction is the authoritative guard against concurrent over-shipment.
func (s *TransferService) ShipLine(ctx context.Context, req ShipLineRequest) (*ShipmentResponse, error) {
	if req.LineID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Line ID cannot be empty")
	}
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Shipment quantity must be positive")
	}
	if req.OperatorID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Operator identity is required")
	}

	var order *transfer.TransferOrder
	var response ShipmentResponse

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByLineID(ctx, req.LineID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return shared.NewDomainError(shared.CodeInvalidTransition,
				fmt.Sprintf("Cannot ship against order %s in %s status", order.OrderNumber, order.Status))
		}

		line := order.FindLine(req.LineID)
		if line == nil {
			return shared.ErrNotFound
		}

		if err := line.ApplyShipment(req.Quantity); err != nil {
			return err
		}

		// Lock the origin stock row for the rest of the transaction
		originStock, err := repos.StockRepo().FindForUpdate(ctx, line.ItemID, order.OriginLocationID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError(shared.CodeInsufficientStock,
					fmt.Sprintf("Insufficient stock for item %s at origin: have 0, need %s", line.ItemID, req.Quantity))
			}
			return err
		}
		if err := originStock.Decrease(req.Quantity); err != nil {
			return err
		}
		if err := repos.StockRepo().SaveWithLock(ctx, originStock); err != nil {
			return err
		}

		destStock, err := repos.StockRepo().GetOrCreate(ctx, line.ItemID, order.DestinationLocationID)
		if err != nil {
			return err
		}
		if err := destStock.Increase(req.Quantity); err != nil {
			return err
		}
		if err := repos.StockRepo().SaveWithLock(ctx, destStock); err != nil {
			return err
		}

		if err := repos.OrderRepo().SaveLine(ctx, line); err != nil {
			return err
		}

		movement, err := inventory.NewStockMovement(
			inventory.MovementTypeTransfer,
			line.ItemID,
			order.OriginLocationID,
			order.DestinationLocationID,
			req.Quantity,
			fmt.Sprintf("order %s", order.OrderNumber),
			req.Reference,
			req.OperatorID,
		)
		if err != nil {
			return err
		}
		if err := repos.MovementRepo().Create(ctx, movement); err != nil {
			return err
		}

		// Re-derive the order status from all sibling lines inside the same
		// transaction, so concurrent shipments on other lines cannot leave a
		// stale derivation behind
		now := s.now()
		order.RefreshStatus(now)
		order.AddDomainEvent(transfer.NewTransferLineShippedEvent(order, line, req.Quantity))
		if err := repos.OrderRepo().UpdateStatus(ctx, order); err != nil {
			return err
		}

		response = ShipmentResponse{
			OrderID:          order.ID,
			OrderNumber:      order.OrderNumber,
			LineID:           line.ID,
			ShippedQty:       req.Quantity,
			LineTotalShipped: line.ShippedQty,
			RemainingQty:     line.RemainingQty(),
			LineStatus:       line.Status.String(),
			OrderStatus:      order.Status.String(),
			CompletedAt:      order.CompletedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, order.ID)
	s.publishDomainEvents(ctx, order)

	return &response, nil
}

// CancelOrder cancels a non-terminal order. When reverseShipments is set, one
// compensating RETURN movement is recorded per line with shipments. Reversal
// is movement-only bookkeeping: the ledger quantities are not re-credited,
// the audit trail carries the full picture for reconciliation.
func (s *TransferService) CancelOrder(ctx context.Context, req CancelOrderRequest) (*CancellationResponse, error) {
	if req.OrderID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Order ID cannot be empty")
	}
	if req.Reason == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Cancel reason is required")
	}
	if req.OperatorID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Operator identity is required")
	}

	var order *transfer.TransferOrder
	var reversed int

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByID(ctx, req.OrderID)
		if err != nil {
			return err
		}

		if err := order.Cancel(req.Reason, s.now()); err != nil {
			return err
		}

		if req.ReverseShipments {
			for i := range order.Lines {
				line := &order.Lines[i]
				if !line.ShippedQty.GreaterThan(decimal.Zero) {
					continue
				}
				movement, err := inventory.NewStockMovement(
					inventory.MovementTypeReturn,
					line.ItemID,
					order.DestinationLocationID,
					order.OriginLocationID,
					line.ShippedQty,
					fmt.Sprintf("cancel order %s: %s", order.OrderNumber, req.Reason),
					order.OrderNumber,
					req.OperatorID,
				)
				if err != nil {
					return err
				}
				if err := repos.MovementRepo().Create(ctx, movement); err != nil {
					return err
				}
				reversed++
			}
		}

		return repos.OrderRepo().UpdateStatus(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, order.ID)
	s.publishDomainEvents(ctx, order)

	return &CancellationResponse{
		OrderID:           order.ID,
		OrderNumber:       order.OrderNumber,
		Status:            order.Status.String(),
		ReversedMovements: reversed,
	}, nil
}

// GetOrder retrieves an order with its lines and summary numbers
func (s *TransferService) GetOrder(ctx context.Context, orderID uuid.UUID) (*TransferOrderResponse, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, orderID); ok {
			return cached, nil
		}
	}

	var response TransferOrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		response = ToTransferOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, orderID, &response)
	}

	return &response, nil
}

// ListOrders lists order summaries with AND-combined filters and page/limit
// pagination, most recent first. Line detail lookups degrade to an empty set
// on persistence failure instead of failing the listing.
func (s *TransferService) ListOrders(ctx context.Context, filter ListOrdersFilter) (*shared.Paginated[TransferOrderListItem], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}
	if filter.OriginLocationID != nil {
		domainFilter.Filters["origin_location_id"] = *filter.OriginLocationID
	}
	if filter.DestinationLocationID != nil {
		domainFilter.Filters["destination_location_id"] = *filter.DestinationLocationID
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	var items []TransferOrderListItem
	var total int64

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		orders, err := repos.OrderRepo().FindAll(ctx, domainFilter)
		if err != nil {
			return err
		}
		total, err = repos.OrderRepo().Count(ctx, domainFilter)
		if err != nil {
			return err
		}

		items = make([]TransferOrderListItem, 0, len(orders))
		for i := range orders {
			order := &orders[i]
			lines := s.lineDetails(ctx, repos, order.ID)

			requested := decimal.Zero
			shipped := decimal.Zero
			for j := range lines {
				requested = requested.Add(lines[j].RequestedQty)
				shipped = shipped.Add(lines[j].ShippedQty)
			}
			progress := decimal.Zero
			if !requested.IsZero() {
				progress = shipped.Div(requested).Mul(decimal.NewFromInt(100)).Round(2)
			}

			items = append(items, TransferOrderListItem{
				ID:                    order.ID,
				OrderNumber:           order.OrderNumber,
				OriginLocationID:      order.OriginLocationID,
				DestinationLocationID: order.DestinationLocationID,
				Status:                order.Status.String(),
				CreatedAt:             order.CreatedAt,
				LineCount:             len(lines),
				TotalRequested:        requested,
				TotalShipped:          shipped,
				Progress:              progress,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// lineDetails loads the lines of an order, degrading to an empty result on
// persistence failure. Callers must treat an empty slice as possibly meaning
// "lookup failed".
func (s *TransferService) lineDetails(ctx context.Context, repos TransactionalRepositories, orderID uuid.UUID) []transfer.TransferLine {
	lines, err := repos.OrderRepo().FindLines(ctx, orderID)
	if err != nil {
		s.logger.Warn("line detail lookup failed, returning empty set",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		return nil
	}
	return lines
}

// publishDomainEvents publishes and clears the aggregate's pending events
func (s *TransferService) publishDomainEvents(ctx context.Context, order *transfer.TransferOrder) {
	if s.eventPublisher == nil || order == nil {
		return
	}
	events := order.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
	order.ClearDomainEvents()
}

func (s *TransferService) invalidateCache(ctx context.Context, orderID uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, orderID)
	}
}
