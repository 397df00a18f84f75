package cashier

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hotelops/backend/internal/domain/cashier"
	"github.com/hotelops/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// appendHistory writes the pending entries of the given aggregates in the
// current transaction. A failed append fails the whole operation.
func appendHistory(ctx context.Context, repos TransactionalRepositories, recorders ...cashier.HistoryRecorder) error {
	var entries []*cashier.HistoryEntry
	for _, r := range recorders {
		entries = append(entries, r.PendingHistory()...)
	}
	if len(entries) == 0 {
		return nil
	}
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	if err := repos.HistoryRepo().Append(ctx, entries...); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	for _, r := range recorders {
		r.ClearHistory()
	}
	return nil
}

// loadShiftOnOpenDay loads a shift together with its day and refuses to
// continue when the day is closed.
func loadShiftOnOpenDay(ctx context.Context, repos TransactionalRepositories, shiftID uuid.UUID) (*cashier.Shift, *cashier.DailyAggregate, error) {
	shift, err := repos.ShiftRepo().FindByID(ctx, shiftID)
	if err != nil {
		return nil, nil, err
	}
	day, err := repos.DailyRepo().FindByID(ctx, shift.DailyID)
	if err != nil {
		return nil, nil, err
	}
	if err := day.EnsureOpen(); err != nil {
		return nil, nil, err
	}
	return shift, day, nil
}

// saveShiftsAndTotals persists the changed shifts with their history, then
// recomputes the day's totals from all its shifts and saves the day. Saving
// the day bumps its version, which serializes concurrent work on one date.
func saveShiftsAndTotals(ctx context.Context, repos TransactionalRepositories, day *cashier.DailyAggregate, changed ...*cashier.Shift) error {
	for _, s := range changed {
		if err := repos.ShiftRepo().SaveWithLock(ctx, s); err != nil {
			return err
		}
		if err := appendHistory(ctx, repos, s); err != nil {
			return err
		}
	}
	return refreshDayTotals(ctx, repos, day, changed...)
}

// refreshDayTotals re-sums the day from its shifts, preferring the in-memory
// copies of shifts changed in this unit of work.
func refreshDayTotals(ctx context.Context, repos TransactionalRepositories, day *cashier.DailyAggregate, changed ...*cashier.Shift) error {
	shifts, err := repos.ShiftRepo().FindByDailyID(ctx, day.ID)
	if err != nil {
		return err
	}
	for i, s := range shifts {
		for _, c := range changed {
			if c.ID == s.ID {
				shifts[i] = c
			}
		}
	}
	day.ApplyShiftTotals(shifts)
	if err := repos.DailyRepo().SaveWithLock(ctx, day); err != nil {
		return err
	}
	return appendHistory(ctx, repos, day)
}

// dayState loads a day with its shifts and the pending vouchers drawn
// against them, which is everything the close gate looks at.
func dayState(ctx context.Context, repos TransactionalRepositories, date time.Time) (*cashier.DailyAggregate, []*cashier.Shift, []*cashier.Voucher, error) {
	day, err := repos.DailyRepo().FindByDate(ctx, date)
	if err != nil {
		return nil, nil, nil, err
	}
	shifts, err := repos.ShiftRepo().FindByDailyID(ctx, day.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	ids := make([]uuid.UUID, 0, len(shifts))
	for _, s := range shifts {
		ids = append(ids, s.ID)
	}
	pending, err := repos.VoucherRepo().FindPendingByShiftIDs(ctx, ids)
	if err != nil {
		return nil, nil, nil, err
	}
	return day, shifts, pending, nil
}

// parseOptionalUUID parses a query parameter that may be empty
func parseOptionalUUID(name, value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, shared.NewValidationError("invalid %s %q", name, value)
	}
	return &id, nil
}

// parseOptionalDate parses a YYYY-MM-DD query parameter that may be empty
func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := cashier.ParseBusinessDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// monthKey identifies the report cache entry a date belongs to
type monthKey struct {
	year  int
	month time.Month
}

func monthOf(t time.Time) monthKey {
	return monthKey{year: t.Year(), month: t.Month()}
}

// invalidator drops cached monthly reports after a committed mutation
type invalidator struct {
	cache  ReportCache
	logger *zap.Logger
}

func (i invalidator) invalidate(ctx context.Context, dates ...time.Time) {
	seen := make(map[monthKey]struct{}, len(dates))
	for _, d := range dates {
		if d.IsZero() {
			continue
		}
		k := monthOf(d)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		if err := i.cache.InvalidateMonth(ctx, k.year, int(k.month)); err != nil {
			i.logger.Warn("Failed to invalidate monthly report cache",
				zap.Int("year", k.year),
				zap.Int("month", int(k.month)),
				zap.Error(err))
		}
	}
}

// logRejected logs a failed mutation with its error code and counts lost races
func logRejected(ctx context.Context, logger *zap.Logger, metrics Metrics, resource, msg string, err error, fields ...zap.Field) {
	code := shared.CodeOf(err)
	if shared.IsRetryable(err) {
		metrics.ConcurrencyConflict(ctx, resource)
	}
	fields = append(fields, zap.String("error_code", code), zap.Error(err))
	logger.Warn(msg, fields...)
}
