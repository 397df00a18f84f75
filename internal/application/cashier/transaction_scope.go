package cashier

import (
	"context"

	"github.com/hotelops/backend/internal/domain/cashier"
)

// TransactionScope provides transactional access to cashier repositories.
// Every mutating operation runs inside Execute so that the entity update, its
// derived totals and its history entries commit or roll back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all cashier repositories within a transaction.
// All repositories returned share the same underlying database transaction.
type TransactionalRepositories interface {
	// DailyRepo returns the daily aggregate repository scoped to the current transaction
	DailyRepo() cashier.DailyRepository
	// ShiftRepo returns the shift repository scoped to the current transaction
	ShiftRepo() cashier.ShiftRepository
	// VoucherRepo returns the voucher repository scoped to the current transaction
	VoucherRepo() cashier.VoucherRepository
	// HistoryRepo returns the append-only history repository scoped to the current transaction
	HistoryRepo() cashier.HistoryRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	dailyRepo   cashier.DailyRepository
	shiftRepo   cashier.ShiftRepository
	voucherRepo cashier.VoucherRepository
	historyRepo cashier.HistoryRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	dailyRepo cashier.DailyRepository,
	shiftRepo cashier.ShiftRepository,
	voucherRepo cashier.VoucherRepository,
	historyRepo cashier.HistoryRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		dailyRepo:   dailyRepo,
		shiftRepo:   shiftRepo,
		voucherRepo: voucherRepo,
		historyRepo: historyRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// DailyRepo returns the daily aggregate repository.
func (s *NoOpTransactionScope) DailyRepo() cashier.DailyRepository {
	return s.dailyRepo
}

// ShiftRepo returns the shift repository.
func (s *NoOpTransactionScope) ShiftRepo() cashier.ShiftRepository {
	return s.shiftRepo
}

// VoucherRepo returns the voucher repository.
func (s *NoOpTransactionScope) VoucherRepo() cashier.VoucherRepository {
	return s.voucherRepo
}

// HistoryRepo returns the history repository.
func (s *NoOpTransactionScope) HistoryRepo() cashier.HistoryRepository {
	return s.historyRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
