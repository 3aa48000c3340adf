package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/transfer"
)

// ============================================
// Test fixtures
// ============================================

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// A second pool connection would see its own empty in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&transfer.TransferOrder{},
		&transfer.TransferLine{},
		&inventory.StockLevel{},
		&inventory.StockMovement{},
	))
	return db
}

func newPersistedOrder(t *testing.T, repo *GormTransferOrderRepository, orderNumber string, lines int) *transfer.TransferOrder {
	t.Helper()
	order, err := transfer.NewTransferOrder(orderNumber, uuid.New(), uuid.New(), uuid.New(), "")
	require.NoError(t, err)
	for i := 0; i < lines; i++ {
		_, err := order.AddLine(uuid.New(), decimal.NewFromInt(int64(10*(i+1))))
		require.NoError(t, err)
	}
	require.NoError(t, repo.Save(context.Background(), order))
	return order
}

// ============================================
// FindByID / FindByLineID
// ============================================

func TestGormTransferOrderRepository_SaveAndFindByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTransferOrderRepository(db)
	ctx := context.Background()

	order := newPersistedOrder(t, repo, "TO-2026-00042", 2)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)

	assert.Equal(t, order.ID, found.ID)
	assert.Equal(t, "TO-2026-00042", found.OrderNumber)
	assert.Equal(t, transfer.OrderStatusPending, found.Status)
	require.Len(t, found.Lines, 2)
	// Lines preload in creation order
	assert.True(t, found.Lines[0].RequestedQty.Equal(decimal.NewFromInt(10)))
	assert.True(t, found.Lines[1].RequestedQty.Equal(decimal.NewFromInt(20)))
}

func TestGormTransferOrderRepository_FindByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTransferOrderRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormTransferOrderRepository_FindByLineID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTransferOrderRepository(db)
	ctx := context.Background()

	order := newPersistedOrder(t, repo, "TO-2026-00001", 2)

	found, err := repo.FindByLineID(ctx, order.Lines[1].ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	assert.Len(t, found.Lines, 2)

	_, err = repo.FindByLineID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

// ============================================
// SaveLine / UpdateStatus
// ============================================

func TestGormTransferOrderRepository_SaveLine(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTransferOrderRepository(db)
	ctx := context.Background()

	order := newPersistedOrder(t, repo, "TO-2026-00001", 1)
	line := &order.Lines[0]
	require.NoError(t, line.ApplyShipment(decimal.NewFromInt(3)))

	require.NoError(t, repo.SaveLine(ctx, line))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, found.Lines[0].ShippedQty.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, transfer.LineStatusPartial, found.Lines[0].Status)
}

func TestGormTransferOrderRepository_SaveLine_UnknownLine(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTransferOrderRepository(db)

	line := &transfer.TransferLine{}
	line.ID = uuid.New()
	err := repo.SaveLine(context.Background(), line)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormTransferOrderRepository_UpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTransferOrderRepository(db)
	ctx := context.Background()

	order := newPersistedOrder(t, repo, "TO-2026-00001", 1)
	require.NoError(t, order.Cancel("not needed", time.Now()))

	require.NoError(t, repo.UpdateStatus(ctx, order))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, transfer.OrderStatusCancelled, found.Status)
	assert.Contains(t, found.Notes, "Cancelled: not needed")
	assert.Equal(t, order.Version, found.Version)
}

func TestGormTransferOrderRepository_UpdateStatus_VersionConflict(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTransferOrderRepository(db)
	ctx := context.Background()

	order := newPersistedOrder(t, repo, "TO-2026-00001", 1)
	require.NoError(t, order.Cancel("first writer", time.Now()))
	require.NoError(t, repo.UpdateStatus(ctx, order))

	// Replaying the same write finds the row already past the expected version
	err := repo.UpdateStatus(ctx, order)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

// ============================================
// GenerateOrderNumber
// ============================================

func TestGormTransferOrderRepository_GenerateOrderNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTransferOrderRepository(db)
	ctx := context.Background()

	year := time.Now().Year()

	first, err := repo.GenerateOrderNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("TO-%d-00001", year), first)

	newPersistedOrder(t, repo, first, 0)

	second, err := repo.GenerateOrderNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("TO-%d-00002", year), second)
}

func TestGormTransferOrderRepository_GenerateOrderNumber_IgnoresForeignFormats(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTransferOrderRepository(db)
	ctx := context.Background()

	newPersistedOrder(t, repo, "LEGACY-77", 0)

	number, err := repo.GenerateOrderNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("TO-%d-00001", time.Now().Year()), number)
}

// ============================================
// FindAll / Count
// ============================================

func TestGormTransferOrderRepository_FindAllAndCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTransferOrderRepository(db)
	ctx := context.Background()

	first := newPersistedOrder(t, repo, "TO-2026-00001", 1)
	second := newPersistedOrder(t, repo, "TO-2026-00002", 1)
	require.NoError(t, second.Cancel("filtered out", time.Now()))
	require.NoError(t, repo.UpdateStatus(ctx, second))

	t.Run("no filter returns everything", func(t *testing.T) {
		orders, err := repo.FindAll(ctx, shared.Filter{})
		require.NoError(t, err)
		assert.Len(t, orders, 2)

		count, err := repo.Count(ctx, shared.Filter{})
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)
	})

	t.Run("status filter", func(t *testing.T) {
		filter := shared.Filter{Filters: map[string]interface{}{
			"status": transfer.OrderStatusPending.String(),
		}}
		orders, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, first.ID, orders[0].ID)
	})

	t.Run("origin filter", func(t *testing.T) {
		filter := shared.Filter{Filters: map[string]interface{}{
			"origin_location_id": first.OriginLocationID,
		}}
		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})

	t.Run("date range filter", func(t *testing.T) {
		future := time.Now().Add(time.Hour)
		filter := shared.Filter{Filters: map[string]interface{}{
			"start_date": future,
		}}
		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.EqualValues(t, 0, count)
	})

	t.Run("pagination ignores count", func(t *testing.T) {
		filter := shared.Filter{Page: 1, PageSize: 1}
		orders, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, orders, 1)

		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)
	})

	t.Run("explicit ordering", func(t *testing.T) {
		filter := shared.Filter{OrderBy: "order_number", OrderDir: "desc"}
		orders, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, "TO-2026-00002", orders[0].OrderNumber)
	})
}

func TestGormTransferOrderRepository_FindLines(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTransferOrderRepository(db)
	ctx := context.Background()

	order := newPersistedOrder(t, repo, "TO-2026-00001", 3)

	lines, err := repo.FindLines(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 3)

	lines, err = repo.FindLines(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, lines)
}
