package persistence

import (
	"context"

	appcashier "github.com/hotelops/backend/internal/application/cashier"
	"github.com/hotelops/backend/internal/domain/cashier"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
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
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appcashier.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// DailyRepo returns the daily repository scoped to the current transaction.
func (r *gormTransactionalRepositories) DailyRepo() cashier.DailyRepository {
	return NewGormDailyRepository(r.tx)
}

// ShiftRepo returns the shift repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ShiftRepo() cashier.ShiftRepository {
	return NewGormShiftRepository(r.tx)
}

// VoucherRepo returns the voucher repository scoped to the current transaction.
func (r *gormTransactionalRepositories) VoucherRepo() cashier.VoucherRepository {
	return NewGormVoucherRepository(r.tx)
}

// HistoryRepo returns the history repository scoped to the current transaction.
func (r *gormTransactionalRepositories) HistoryRepo() cashier.HistoryRepository {
	return NewGormHistoryRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appcashier.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appcashier.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
