package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	transferapp "github.com/wms/backend/internal/application/transfer"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/transfer"
)

// TransferOrderService is the application surface the handler depends on
type TransferOrderService interface {
	CreateOrder(ctx context.Context, req transferapp.CreateTransferOrderRequest) (*transferapp.TransferOrderResponse, error)
	ShipLine(ctx context.Context, req transferapp.ShipLineRequest) (*transferapp.ShipmentResponse, error)
	CancelOrder(ctx context.Context, req transferapp.CancelOrderRequest) (*transferapp.CancellationResponse, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*transferapp.TransferOrderResponse, error)
	ListOrders(ctx context.Context, filter transferapp.ListOrdersFilter) (*shared.Paginated[transferapp.TransferOrderListItem], error)
}

// TransferOrderHandler handles transfer order API endpoints
type TransferOrderHandler struct {
	BaseHandler
	service TransferOrderService
}

// NewTransferOrderHandler creates a new TransferOrderHandler
func NewTransferOrderHandler(service TransferOrderService) *TransferOrderHandler {
	return &TransferOrderHandler{service: service}
}

// RegisterRoutes registers transfer order routes on the given group
func (h *TransferOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/transfer-orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.POST("/:id/cancel", h.CancelOrder)
	}
	rg.POST("/transfer-lines/:id/ship", h.ShipLine)
}

// CreateTransferOrderRequest represents a request to create a transfer order
type CreateTransferOrderRequest struct {
	OrderNumber           string                    `json:"order_number" binding:"omitempty,max=50"`
	OriginLocationID      string                    `json:"origin_location_id" binding:"required,uuid"`
	DestinationLocationID string                    `json:"destination_location_id" binding:"required,uuid"`
	Notes                 string                    `json:"notes" binding:"max=2000"`
	Lines                 []CreateTransferLineInput `json:"lines" binding:"required,min=1,dive"`
	CreatedBy             string                    `json:"created_by" binding:"required,uuid"`
}

// CreateTransferLineInput represents a line in the create order request
type CreateTransferLineInput struct {
	ItemID       string          `json:"item_id" binding:"required,uuid"`
	RequestedQty decimal.Decimal `json:"requested_qty" binding:"required"`
}

// ShipLineRequest represents a request to record a shipment against a line
type ShipLineRequest struct {
	Quantity   decimal.Decimal `json:"quantity" binding:"required"`
	Reference  string          `json:"reference" binding:"max=100"`
	OperatorID string          `json:"operator_id" binding:"required,uuid"`
}

// CancelOrderRequest represents a request to cancel a transfer order
type CancelOrderRequest struct {
	Reason           string `json:"reason" binding:"required,min=1,max=500"`
	ReverseShipments bool   `json:"reverse_shipments"`
	OperatorID       string `json:"operator_id" binding:"required,uuid"`
}

// CreateOrder handles POST /transfer-orders
func (h *TransferOrderHandler) CreateOrder(c *gin.Context) {
	var req CreateTransferOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	appReq := transferapp.CreateTransferOrderRequest{
		OrderNumber:           req.OrderNumber,
		OriginLocationID:      uuid.MustParse(req.OriginLocationID),
		DestinationLocationID: uuid.MustParse(req.DestinationLocationID),
		Notes:                 req.Notes,
		CreatedBy:             uuid.MustParse(req.CreatedBy),
		Lines:                 make([]transferapp.CreateTransferLineRequest, 0, len(req.Lines)),
	}
	for _, line := range req.Lines {
		appReq.Lines = append(appReq.Lines, transferapp.CreateTransferLineRequest{
			ItemID:       uuid.MustParse(line.ItemID),
			RequestedQty: line.RequestedQty,
		})
	}

	order, err := h.service.CreateOrder(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// ShipLine handles POST /transfer-lines/:id/ship
func (h *TransferOrderHandler) ShipLine(c *gin.Context) {
	lineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid line ID")
		return
	}

	var req ShipLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	shipment, err := h.service.ShipLine(c.Request.Context(), transferapp.ShipLineRequest{
		LineID:     lineID,
		Quantity:   req.Quantity,
		Reference:  req.Reference,
		OperatorID: uuid.MustParse(req.OperatorID),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, shipment)
}

// CancelOrder handles POST /transfer-orders/:id/cancel
func (h *TransferOrderHandler) CancelOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	cancellation, err := h.service.CancelOrder(c.Request.Context(), transferapp.CancelOrderRequest{
		OrderID:          orderID,
		Reason:           req.Reason,
		ReverseShipments: req.ReverseShipments,
		OperatorID:       uuid.MustParse(req.OperatorID),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, cancellation)
}

// GetOrder handles GET /transfer-orders/:id
func (h *TransferOrderHandler) GetOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// ListOrdersQuery represents list query parameters
type ListOrdersQuery struct {
	Status                string `form:"status" binding:"omitempty,oneof=PENDING PARTIAL COMPLETED CANCELLED"`
	OriginLocationID      string `form:"origin_location_id" binding:"omitempty,uuid"`
	DestinationLocationID string `form:"destination_location_id" binding:"omitempty,uuid"`
	StartDate             string `form:"start_date" binding:"omitempty"`
	EndDate               string `form:"end_date" binding:"omitempty"`
	Page                  int    `form:"page" binding:"omitempty,min=1"`
	PageSize              int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ListOrders handles GET /transfer-orders
func (h *TransferOrderHandler) ListOrders(c *gin.Context) {
	var query ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := transferapp.ListOrdersFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Status != "" {
		status := transfer.OrderStatus(query.Status)
		filter.Status = &status
	}
	if query.OriginLocationID != "" {
		id := uuid.MustParse(query.OriginLocationID)
		filter.OriginLocationID = &id
	}
	if query.DestinationLocationID != "" {
		id := uuid.MustParse(query.DestinationLocationID)
		filter.DestinationLocationID = &id
	}
	if query.StartDate != "" {
		start, err := time.Parse(time.RFC3339, query.StartDate)
		if err != nil {
			h.BadRequest(c, "Invalid start_date, expected RFC 3339")
			return
		}
		filter.StartDate = &start
	}
	if query.EndDate != "" {
		end, err := time.Parse(time.RFC3339, query.EndDate)
		if err != nil {
			h.BadRequest(c, "Invalid end_date, expected RFC 3339")
			return
		}
		filter.EndDate = &end
	}

	result, err := h.service.ListOrders(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
