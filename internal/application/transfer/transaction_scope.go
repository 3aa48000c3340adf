package transfer

import (
	"context"

	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/transfer"
)

// TransactionScope provides transactional access to the repositories a
// workflow operation needs. Every engine operation runs as exactly one
// Execute call: all repository writes inside the function share one database
// transaction and commit or roll back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories bound to the current
// transaction. OrderRepo owns the TransferOrder aggregate, StockRepo the
// stock ledger, MovementRepo the append-only movement log.
type TransactionalRepositories interface {
	OrderRepo() transfer.TransferOrderRepository
	StockRepo() inventory.StockLevelRepository
	MovementRepo() inventory.StockMovementRepository
}

// NoOpTransactionScope runs operations against fixed repositories without a
// real transaction. Useful in tests where atomicity is exercised elsewhere.
type NoOpTransactionScope struct {
	orderRepo    transfer.TransferOrderRepository
	stockRepo    inventory.StockLevelRepository
	movementRepo inventory.StockMovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	orderRepo transfer.TransferOrderRepository,
	stockRepo inventory.StockLevelRepository,
	movementRepo inventory.StockMovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:    orderRepo,
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the transfer order repository.
func (s *NoOpTransactionScope) OrderRepo() transfer.TransferOrderRepository {
	return s.orderRepo
}

// StockRepo returns the stock level repository.
func (s *NoOpTransactionScope) StockRepo() inventory.StockLevelRepository {
	return s.stockRepo
}

// MovementRepo returns the stock movement repository.
func (s *NoOpTransactionScope) MovementRepo() inventory.StockMovementRepository {
	return s.movementRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
