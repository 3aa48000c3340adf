package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	transferapp "github.com/wms/backend/internal/application/transfer"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/interfaces/http/dto"
)

// stubTransferService returns canned results per method
type stubTransferService struct {
	createOrder func(ctx context.Context, req transferapp.CreateTransferOrderRequest) (*transferapp.TransferOrderResponse, error)
	shipLine    func(ctx context.Context, req transferapp.ShipLineRequest) (*transferapp.ShipmentResponse, error)
	cancelOrder func(ctx context.Context, req transferapp.CancelOrderRequest) (*transferapp.CancellationResponse, error)
	getOrder    func(ctx context.Context, orderID uuid.UUID) (*transferapp.TransferOrderResponse, error)
	listOrders  func(ctx context.Context, filter transferapp.ListOrdersFilter) (*shared.Paginated[transferapp.TransferOrderListItem], error)
}

func (s *stubTransferService) CreateOrder(ctx context.Context, req transferapp.CreateTransferOrderRequest) (*transferapp.TransferOrderResponse, error) {
	return s.createOrder(ctx, req)
}

func (s *stubTransferService) ShipLine(ctx context.Context, req transferapp.ShipLineRequest) (*transferapp.ShipmentResponse, error) {
	return s.shipLine(ctx, req)
}

func (s *stubTransferService) CancelOrder(ctx context.Context, req transferapp.CancelOrderRequest) (*transferapp.CancellationResponse, error) {
	return s.cancelOrder(ctx, req)
}

func (s *stubTransferService) GetOrder(ctx context.Context, orderID uuid.UUID) (*transferapp.TransferOrderResponse, error) {
	return s.getOrder(ctx, orderID)
}

func (s *stubTransferService) ListOrders(ctx context.Context, filter transferapp.ListOrdersFilter) (*shared.Paginated[transferapp.TransferOrderListItem], error) {
	return s.listOrders(ctx, filter)
}

func setupRouter(service TransferOrderService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	api := engine.Group("/api/v1")
	NewTransferOrderHandler(service).RegisterRoutes(api)
	return engine
}

func performJSON(t *testing.T, engine *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	return recorder
}

func decodeResponse(t *testing.T, recorder *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	return resp
}

func validCreateBody() map[string]interface{} {
	return map[string]interface{}{
		"origin_location_id":      uuid.New().String(),
		"destination_location_id": uuid.New().String(),
		"created_by":              uuid.New().String(),
		"lines": []map[string]interface{}{
			{"item_id": uuid.New().String(), "requested_qty": "10"},
		},
	}
}

// ============================================
// CreateOrder
// ============================================

func TestTransferOrderHandler_CreateOrder(t *testing.T) {
	var captured transferapp.CreateTransferOrderRequest
	service := &stubTransferService{
		createOrder: func(_ context.Context, req transferapp.CreateTransferOrderRequest) (*transferapp.TransferOrderResponse, error) {
			captured = req
			return &transferapp.TransferOrderResponse{
				ID:          uuid.New(),
				OrderNumber: "TO-2026-00001",
				Status:      "PENDING",
			}, nil
		},
	}
	engine := setupRouter(service)

	body := validCreateBody()
	recorder := performJSON(t, engine, http.MethodPost, "/api/v1/transfer-orders", body)

	assert.Equal(t, http.StatusCreated, recorder.Code)
	resp := decodeResponse(t, recorder)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data)

	require.Len(t, captured.Lines, 1)
	assert.True(t, captured.Lines[0].RequestedQty.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, body["created_by"], captured.CreatedBy.String())
}

func TestTransferOrderHandler_CreateOrder_BindingErrors(t *testing.T) {
	service := &stubTransferService{
		createOrder: func(_ context.Context, _ transferapp.CreateTransferOrderRequest) (*transferapp.TransferOrderResponse, error) {
			t.Fatal("service must not be called on binding failure")
			return nil, nil
		},
	}
	engine := setupRouter(service)

	tests := []struct {
		name   string
		mutate func(body map[string]interface{})
	}{
		{"missing origin", func(b map[string]interface{}) { delete(b, "origin_location_id") }},
		{"malformed origin UUID", func(b map[string]interface{}) { b["origin_location_id"] = "not-a-uuid" }},
		{"missing lines", func(b map[string]interface{}) { delete(b, "lines") }},
		{"empty lines", func(b map[string]interface{}) { b["lines"] = []map[string]interface{}{} }},
		{"missing creator", func(b map[string]interface{}) { delete(b, "created_by") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validCreateBody()
			tt.mutate(body)
			recorder := performJSON(t, engine, http.MethodPost, "/api/v1/transfer-orders", body)

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			resp := decodeResponse(t, recorder)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
		})
	}
}

func TestTransferOrderHandler_CreateOrder_DomainErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"insufficient stock", shared.NewDomainError(shared.CodeInsufficientStock, "have 2, requested 5"), http.StatusUnprocessableEntity, shared.CodeInsufficientStock},
		{"invalid input", shared.NewDomainError(shared.CodeInvalidInput, "bad quantity"), http.StatusBadRequest, shared.CodeInvalidInput},
		{"conflict", shared.ErrConcurrencyConflict, http.StatusConflict, shared.CodeConflict},
		{"unexpected", fmt.Errorf("connection reset"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &stubTransferService{
				createOrder: func(_ context.Context, _ transferapp.CreateTransferOrderRequest) (*transferapp.TransferOrderResponse, error) {
					return nil, tt.err
				},
			}
			engine := setupRouter(service)

			recorder := performJSON(t, engine, http.MethodPost, "/api/v1/transfer-orders", validCreateBody())

			assert.Equal(t, tt.wantStatus, recorder.Code)
			resp := decodeResponse(t, recorder)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

// ============================================
// ShipLine
// ============================================

func TestTransferOrderHandler_ShipLine(t *testing.T) {
	lineID := uuid.New()
	var captured transferapp.ShipLineRequest
	service := &stubTransferService{
		shipLine: func(_ context.Context, req transferapp.ShipLineRequest) (*transferapp.ShipmentResponse, error) {
			captured = req
			return &transferapp.ShipmentResponse{
				LineID:      req.LineID,
				OrderStatus: "PARTIAL",
			}, nil
		},
	}
	engine := setupRouter(service)

	operatorID := uuid.New()
	recorder := performJSON(t, engine, http.MethodPost, "/api/v1/transfer-lines/"+lineID.String()+"/ship", map[string]interface{}{
		"quantity":    "4.5",
		"reference":   "WAVE-7",
		"operator_id": operatorID.String(),
	})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, lineID, captured.LineID)
	assert.True(t, captured.Quantity.Equal(decimal.RequireFromString("4.5")))
	assert.Equal(t, "WAVE-7", captured.Reference)
	assert.Equal(t, operatorID, captured.OperatorID)
}

func TestTransferOrderHandler_ShipLine_InvalidLineID(t *testing.T) {
	engine := setupRouter(&stubTransferService{})

	recorder := performJSON(t, engine, http.MethodPost, "/api/v1/transfer-lines/not-a-uuid/ship", map[string]interface{}{
		"quantity":    "1",
		"operator_id": uuid.New().String(),
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestTransferOrderHandler_ShipLine_ExceedsRequested(t *testing.T) {
	service := &stubTransferService{
		shipLine: func(_ context.Context, _ transferapp.ShipLineRequest) (*transferapp.ShipmentResponse, error) {
			return nil, shared.NewDomainError(shared.CodeExceedsRequested, "total would exceed requested")
		},
	}
	engine := setupRouter(service)

	recorder := performJSON(t, engine, http.MethodPost, "/api/v1/transfer-lines/"+uuid.New().String()+"/ship", map[string]interface{}{
		"quantity":    "100",
		"operator_id": uuid.New().String(),
	})

	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	resp := decodeResponse(t, recorder)
	assert.Equal(t, shared.CodeExceedsRequested, resp.Error.Code)
}

// ============================================
// CancelOrder
// ============================================

func TestTransferOrderHandler_CancelOrder(t *testing.T) {
	orderID := uuid.New()
	var captured transferapp.CancelOrderRequest
	service := &stubTransferService{
		cancelOrder: func(_ context.Context, req transferapp.CancelOrderRequest) (*transferapp.CancellationResponse, error) {
			captured = req
			return &transferapp.CancellationResponse{
				OrderID:           req.OrderID,
				Status:            "CANCELLED",
				ReversedMovements: 1,
			}, nil
		},
	}
	engine := setupRouter(service)

	recorder := performJSON(t, engine, http.MethodPost, "/api/v1/transfer-orders/"+orderID.String()+"/cancel", map[string]interface{}{
		"reason":            "duplicate order",
		"reverse_shipments": true,
		"operator_id":       uuid.New().String(),
	})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, orderID, captured.OrderID)
	assert.Equal(t, "duplicate order", captured.Reason)
	assert.True(t, captured.ReverseShipments)
}

func TestTransferOrderHandler_CancelOrder_MissingReason(t *testing.T) {
	engine := setupRouter(&stubTransferService{})

	recorder := performJSON(t, engine, http.MethodPost, "/api/v1/transfer-orders/"+uuid.New().String()+"/cancel", map[string]interface{}{
		"operator_id": uuid.New().String(),
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestTransferOrderHandler_CancelOrder_InvalidTransition(t *testing.T) {
	service := &stubTransferService{
		cancelOrder: func(_ context.Context, _ transferapp.CancelOrderRequest) (*transferapp.CancellationResponse, error) {
			return nil, shared.NewDomainError(shared.CodeInvalidTransition, "order already completed")
		},
	}
	engine := setupRouter(service)

	recorder := performJSON(t, engine, http.MethodPost, "/api/v1/transfer-orders/"+uuid.New().String()+"/cancel", map[string]interface{}{
		"reason":      "too late",
		"operator_id": uuid.New().String(),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
}

// ============================================
// GetOrder
// ============================================

func TestTransferOrderHandler_GetOrder(t *testing.T) {
	orderID := uuid.New()
	service := &stubTransferService{
		getOrder: func(_ context.Context, id uuid.UUID) (*transferapp.TransferOrderResponse, error) {
			require.Equal(t, orderID, id)
			return &transferapp.TransferOrderResponse{ID: id, OrderNumber: "TO-2026-00001"}, nil
		},
	}
	engine := setupRouter(service)

	recorder := performJSON(t, engine, http.MethodGet, "/api/v1/transfer-orders/"+orderID.String(), nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	resp := decodeResponse(t, recorder)
	assert.True(t, resp.Success)
}

func TestTransferOrderHandler_GetOrder_NotFound(t *testing.T) {
	service := &stubTransferService{
		getOrder: func(_ context.Context, _ uuid.UUID) (*transferapp.TransferOrderResponse, error) {
			return nil, shared.ErrNotFound
		},
	}
	engine := setupRouter(service)

	recorder := performJSON(t, engine, http.MethodGet, "/api/v1/transfer-orders/"+uuid.New().String(), nil)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	resp := decodeResponse(t, recorder)
	assert.Equal(t, shared.CodeNotFound, resp.Error.Code)
}

// ============================================
// ListOrders
// ============================================

func TestTransferOrderHandler_ListOrders(t *testing.T) {
	var captured transferapp.ListOrdersFilter
	service := &stubTransferService{
		listOrders: func(_ context.Context, filter transferapp.ListOrdersFilter) (*shared.Paginated[transferapp.TransferOrderListItem], error) {
			captured = filter
			page := shared.NewPaginated([]transferapp.TransferOrderListItem{
				{OrderNumber: "TO-2026-00002", Status: "PARTIAL"},
			}, 41, 2, 10)
			return &page, nil
		},
	}
	engine := setupRouter(service)

	origin := uuid.New()
	path := "/api/v1/transfer-orders?status=PARTIAL&origin_location_id=" + origin.String() +
		"&start_date=2026-08-01T00:00:00Z&page=2&page_size=10"
	recorder := performJSON(t, engine, http.MethodGet, path, nil)

	assert.Equal(t, http.StatusOK, recorder.Code)

	require.NotNil(t, captured.Status)
	assert.Equal(t, "PARTIAL", captured.Status.String())
	require.NotNil(t, captured.OriginLocationID)
	assert.Equal(t, origin, *captured.OriginLocationID)
	require.NotNil(t, captured.StartDate)
	assert.Equal(t, 2, captured.Page)
	assert.Equal(t, 10, captured.PageSize)

	resp := decodeResponse(t, recorder)
	require.NotNil(t, resp.Meta)
	assert.EqualValues(t, 41, resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 10, resp.Meta.PageSize)
	assert.Equal(t, 5, resp.Meta.TotalPages)
}

func TestTransferOrderHandler_ListOrders_QueryValidation(t *testing.T) {
	engine := setupRouter(&stubTransferService{})

	tests := []struct {
		name  string
		query string
	}{
		{"unknown status", "?status=SHIPPED"},
		{"malformed origin", "?origin_location_id=nope"},
		{"bad start date", "?start_date=yesterday"},
		{"zero page", "?page=0"},
		{"oversized page size", "?page_size=500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := performJSON(t, engine, http.MethodGet, "/api/v1/transfer-orders"+tt.query, nil)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})
	}
}
