package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/transfer"
)

// GormTransferOrderRepository implements TransferOrderRepository using GORM
type GormTransferOrderRepository struct {
	db *gorm.DB
}

// NewGormTransferOrderRepository creates a new GormTransferOrderRepository
func NewGormTransferOrderRepository(db *gorm.DB) *GormTransferOrderRepository {
	return &GormTransferOrderRepository{db: db}
}

// FindByID finds a transfer order with its lines
func (r *GormTransferOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*transfer.TransferOrder, error) {
	var order transfer.TransferOrder
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("transfer_lines.created_at ASC")
		}).
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByLineID finds the order owning the given line, with all its lines
func (r *GormTransferOrderRepository) FindByLineID(ctx context.Context, lineID uuid.UUID) (*transfer.TransferOrder, error) {
	var line transfer.TransferLine
	if err := r.db.WithContext(ctx).First(&line, "id = ?", lineID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, line.OrderID)
}

// FindAll finds order headers matching the filter, most recent first
func (r *GormTransferOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]transfer.TransferOrder, error) {
	var orders []transfer.TransferOrder
	query := r.applyFilter(r.db.WithContext(ctx).Model(&transfer.TransferOrder{}), filter)
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Count counts orders matching the filter, ignoring pagination
func (r *GormTransferOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&transfer.TransferOrder{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindLines loads the lines of an order in creation order
func (r *GormTransferOrderRepository) FindLines(ctx context.Context, orderID uuid.UUID) ([]transfer.TransferLine, error) {
	var lines []transfer.TransferLine
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// Save persists a new order together with its lines
func (r *GormTransferOrderRepository) Save(ctx context.Context, order *transfer.TransferOrder) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// SaveLine persists the shipped quantity and derived status of one line
func (r *GormTransferOrderRepository) SaveLine(ctx context.Context, line *transfer.TransferLine) error {
	result := r.db.WithContext(ctx).
		Model(&transfer.TransferLine{}).
		Where("id = ?", line.ID).
		Updates(map[string]interface{}{
			"shipped_qty": line.ShippedQty,
			"status":      line.Status,
			"updated_at":  line.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateStatus persists order status, notes and completion timestamp with a
// version check
func (r *GormTransferOrderRepository) UpdateStatus(ctx context.Context, order *transfer.TransferOrder) error {
	result := r.db.WithContext(ctx).
		Model(&transfer.TransferOrder{}).
		Where("id = ? AND version = ?", order.ID, order.Version-1).
		Updates(map[string]interface{}{
			"status":       order.Status,
			"notes":        order.Notes,
			"completed_at": order.CompletedAt,
			"version":      order.Version,
			"updated_at":   order.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// GenerateOrderNumber generates a unique order number.
// Format: TO-YYYY-NNNNN (e.g. TO-2026-00001)
func (r *GormTransferOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("TO-%d-", year)

	var lastOrder transfer.TransferOrder
	err := r.db.WithContext(ctx).
		Model(&transfer.TransferOrder{}).
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		First(&lastOrder).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastOrder.OrderNumber != "" {
		parts := strings.Split(lastOrder.OrderNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}

// applyFilter applies filter options to the query
func (r *GormTransferOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination.
// All filters combine with AND semantics.
func (r *GormTransferOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "origin_location_id":
			query = query.Where("origin_location_id = ?", value)
		case "destination_location_id":
			query = query.Where("destination_location_id = ?", value)
		case "start_date":
			query = query.Where("created_at >= ?", value)
		case "end_date":
			query = query.Where("created_at <= ?", value)
		}
	}
	return query
}

// Ensure GormTransferOrderRepository implements TransferOrderRepository
var _ transfer.TransferOrderRepository = (*GormTransferOrderRepository)(nil)
