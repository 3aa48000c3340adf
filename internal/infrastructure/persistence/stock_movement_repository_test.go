package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
)

func appendMovement(t *testing.T, repo *GormStockMovementRepository, movementType inventory.MovementType, itemID, origin, destination uuid.UUID, reference string) *inventory.StockMovement {
	t.Helper()
	movement, err := inventory.NewStockMovement(
		movementType, itemID, origin, destination,
		decimal.NewFromInt(3), "test movement", reference, uuid.New(),
	)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), movement))
	return movement
}

func TestGormStockMovementRepository_CreateAndFindByReference(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormStockMovementRepository(db)
	ctx := context.Background()

	itemID, origin, destination := uuid.New(), uuid.New(), uuid.New()
	appendMovement(t, repo, inventory.MovementTypeTransfer, itemID, origin, destination, "TO-2026-00001")
	appendMovement(t, repo, inventory.MovementTypeReturn, itemID, destination, origin, "TO-2026-00001")
	appendMovement(t, repo, inventory.MovementTypeTransfer, itemID, origin, destination, "TO-2026-00002")

	movements, err := repo.FindByReference(ctx, "TO-2026-00001", shared.Filter{})
	require.NoError(t, err)
	assert.Len(t, movements, 2)

	// Movement type filter narrows within the reference
	movements, err = repo.FindByReference(ctx, "TO-2026-00001", shared.Filter{
		Filters: map[string]interface{}{"movement_type": inventory.MovementTypeReturn.String()},
	})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, inventory.MovementTypeReturn, movements[0].MovementType)
}

func TestGormStockMovementRepository_FindByItem(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormStockMovementRepository(db)
	ctx := context.Background()

	itemID, other := uuid.New(), uuid.New()
	origin, destination := uuid.New(), uuid.New()
	appendMovement(t, repo, inventory.MovementTypeTransfer, itemID, origin, destination, "A")
	appendMovement(t, repo, inventory.MovementTypeTransfer, other, origin, destination, "B")

	movements, err := repo.FindByItem(ctx, itemID, shared.Filter{})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, itemID, movements[0].ItemID)
}

func TestGormStockMovementRepository_FindByLocation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormStockMovementRepository(db)
	ctx := context.Background()

	warehouse, store, elsewhere := uuid.New(), uuid.New(), uuid.New()
	itemID := uuid.New()
	appendMovement(t, repo, inventory.MovementTypeTransfer, itemID, warehouse, store, "OUT")
	appendMovement(t, repo, inventory.MovementTypeTransfer, itemID, store, warehouse, "BACK")
	appendMovement(t, repo, inventory.MovementTypeTransfer, itemID, elsewhere, store, "OTHER")

	// Matches the location on either side of the movement
	movements, err := repo.FindByLocation(ctx, warehouse, shared.Filter{})
	require.NoError(t, err)
	assert.Len(t, movements, 2)
}
