package cashier

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hotelops/backend/internal/domain/shared"
	"github.com/hotelops/backend/internal/domain/shared/valueobject"
)

// DailyRepository defines the interface for daily aggregate persistence
type DailyRepository interface {
	// FindByID finds a day by ID
	FindByID(ctx context.Context, id uuid.UUID) (*DailyAggregate, error)

	// FindByDate finds the day for a calendar date
	FindByDate(ctx context.Context, date time.Time) (*DailyAggregate, error)

	// FindByDateRange returns the days in [from, to], ordered by date
	FindByDateRange(ctx context.Context, from, to time.Time) ([]*DailyAggregate, error)

	// ExistsByDate checks whether a date has been initialized
	ExistsByDate(ctx context.Context, date time.Time) (bool, error)

	// Create inserts a new day; a second day for the same date fails with DUPLICATE_DAY
	Create(ctx context.Context, day *DailyAggregate) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, day *DailyAggregate) error
}

// ShiftRepository defines the interface for shift persistence.
// Denomination lines, payment lines and attributed users are stored and
// loaded together with their shift.
type ShiftRepository interface {
	// FindByID finds a shift by ID with its lines and users
	FindByID(ctx context.Context, id uuid.UUID) (*Shift, error)

	// FindByDailyID returns the shifts of a day in roster order
	FindByDailyID(ctx context.Context, dailyID uuid.UUID) ([]*Shift, error)

	// FindByDateRange returns the shifts dated in [from, to]
	FindByDateRange(ctx context.Context, from, to time.Time) ([]*Shift, error)

	// Create inserts a new shift and its child rows
	Create(ctx context.Context, shift *Shift) error

	// SaveWithLock saves with optimistic locking and replaces the child rows
	SaveWithLock(ctx context.Context, shift *Shift) error
}

// VoucherFilter defines filtering options for voucher queries
type VoucherFilter struct {
	shared.Filter
	Status  *VoucherStatus
	ShiftID *uuid.UUID
	From    *time.Time // created at or after
	To      *time.Time // created before
}

// VoucherSummary is the standing voucher position
type VoucherSummary struct {
	ActiveCount         int64             `json:"active_count"`
	ActiveAmount        valueobject.Money `json:"active_amount"`
	TotalRepaidLifetime valueobject.Money `json:"total_repaid_lifetime"`
}

// VoucherRepository defines the interface for voucher persistence
type VoucherRepository interface {
	// FindByID finds a voucher by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Voucher, error)

	// FindAll lists vouchers matching the filter, newest first, with the total count
	FindAll(ctx context.Context, filter VoucherFilter) ([]*Voucher, int64, error)

	// FindPending returns every pending voucher, oldest first
	FindPending(ctx context.Context) ([]*Voucher, error)

	// FindPendingByShiftIDs returns pending vouchers drawn against any of the shifts
	FindPendingByShiftIDs(ctx context.Context, shiftIDs []uuid.UUID) ([]*Voucher, error)

	// Summary computes active count/amount and the lifetime justified amount
	Summary(ctx context.Context) (VoucherSummary, error)

	// Create inserts a new voucher
	Create(ctx context.Context, voucher *Voucher) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, voucher *Voucher) error
}

// HistoryFilter defines filtering options for history queries
type HistoryFilter struct {
	shared.Filter
	ShiftID  *uuid.UUID
	RecordID *uuid.UUID
	Table    string
	Action   *HistoryAction
	From     *time.Time
	To       *time.Time
}

// HistoryRepository is append-only; it exposes no update or delete.
type HistoryRepository interface {
	// Append writes entries; it is always called inside the transaction of the
	// change the entries describe
	Append(ctx context.Context, entries ...*HistoryEntry) error

	// FindAll lists entries matching the filter, newest first, with the total count
	FindAll(ctx context.Context, filter HistoryFilter) ([]*HistoryEntry, int64, error)
}
