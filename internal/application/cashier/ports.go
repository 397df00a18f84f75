package cashier

import (
	"context"
	"time"
)

// ReportCache stores computed monthly reports. Implementations must treat a
// miss and an unreachable backend the same way: the report is recomputed.
type ReportCache interface {
	// GetMonthly returns a cached report and whether it was found
	GetMonthly(ctx context.Context, year, month int) (*MonthlyReport, bool, error)
	// MonthGeneration returns the invalidation counter of a month
	MonthGeneration(ctx context.Context, year, month int) (int64, error)
	// SetMonthly stores a report for ttl unless the month was invalidated
	// since generation was read. It reports whether the report was stored.
	SetMonthly(ctx context.Context, report *MonthlyReport, generation int64, ttl time.Duration) (bool, error)
	// InvalidateMonth drops the cached report of a month and advances its generation
	InvalidateMonth(ctx context.Context, year, month int) error
}

// Metrics receives business counters from the cashier services
type Metrics interface {
	ShiftClosed(ctx context.Context, shiftType string, hasDiscrepancy bool)
	DayClosed(ctx context.Context)
	DayCloseRejected(ctx context.Context, reasons int)
	VoucherTransition(ctx context.Context, status string)
	ConcurrencyConflict(ctx context.Context, resource string)
}

// NopMetrics discards every measurement
type NopMetrics struct{}

func (NopMetrics) ShiftClosed(context.Context, string, bool)   {}
func (NopMetrics) DayClosed(context.Context)                   {}
func (NopMetrics) DayCloseRejected(context.Context, int)       {}
func (NopMetrics) VoucherTransition(context.Context, string)   {}
func (NopMetrics) ConcurrencyConflict(context.Context, string) {}

// nopReportCache never hits
type nopReportCache struct{}

func (nopReportCache) GetMonthly(context.Context, int, int) (*MonthlyReport, bool, error) {
	return nil, false, nil
}

func (nopReportCache) MonthGeneration(context.Context, int, int) (int64, error) {
	return 0, nil
}

func (nopReportCache) SetMonthly(context.Context, *MonthlyReport, int64, time.Duration) (bool, error) {
	return false, nil
}

func (nopReportCache) InvalidateMonth(context.Context, int, int) error {
	return nil
}
