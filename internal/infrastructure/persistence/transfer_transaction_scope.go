package persistence

import (
	"context"

	"gorm.io/gorm"

	apptransfer "github.com/wms/backend/internal/application/transfer"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/transfer"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// One Execute call is one database transaction: all repository operations
// inside commit or roll back atomically.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apptransfer.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// OrderRepo returns the transfer order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) OrderRepo() transfer.TransferOrderRepository {
	return NewGormTransferOrderRepository(r.tx)
}

// StockRepo returns the stock level repository scoped to the current transaction.
func (r *gormTransactionalRepositories) StockRepo() inventory.StockLevelRepository {
	return NewGormStockLevelRepository(r.tx)
}

// MovementRepo returns the stock movement repository scoped to the current transaction.
func (r *gormTransactionalRepositories) MovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ apptransfer.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ apptransfer.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
