package telemetry

import (
	"context"

	appcashier "github.com/hotelops/backend/internal/application/cashier"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Attribute keys shared by the cashier instruments.
var (
	AttrShiftType      = attribute.Key("shift_type")
	AttrHasDiscrepancy = attribute.Key("has_discrepancy")
	AttrVoucherStatus  = attribute.Key("voucher_status")
	AttrResource       = attribute.Key("resource")
)

// CashierMetrics records reconciliation activity as OpenTelemetry counters.
type CashierMetrics struct {
	shiftsClosed        *Counter
	daysClosed          *Counter
	dayCloseRejected    *Counter
	closeRejectReasons  *Histogram
	voucherTransitions  *Counter
	concurrencyConflict *Counter
}

// NewCashierMetrics creates the cashier instruments on the given meter.
func NewCashierMetrics(meter metric.Meter) (*CashierMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &CashierMetrics{}
	var err error
	if m.shiftsClosed, err = NewCounter(meter, "cashier_shift_closed_total",
		"Shifts closed, by shift type and discrepancy flag", "{shift}"); err != nil {
		return nil, err
	}
	if m.daysClosed, err = NewCounter(meter, "cashier_day_closed_total",
		"Business days closed", "{day}"); err != nil {
		return nil, err
	}
	if m.dayCloseRejected, err = NewCounter(meter, "cashier_day_close_rejected_total",
		"Day close attempts rejected because the day was not ready", "{attempt}"); err != nil {
		return nil, err
	}
	if m.closeRejectReasons, err = NewHistogram(meter, "cashier_day_close_reject_reasons",
		"Number of blocking reasons per rejected day close", "{reason}", 1, 2, 3, 4, 6, 8); err != nil {
		return nil, err
	}
	if m.voucherTransitions, err = NewCounter(meter, "cashier_voucher_transition_total",
		"Voucher lifecycle transitions, by resulting status", "{voucher}"); err != nil {
		return nil, err
	}
	if m.concurrencyConflict, err = NewCounter(meter, "cashier_concurrency_conflict_total",
		"Mutations rejected by optimistic locking", "{conflict}"); err != nil {
		return nil, err
	}
	return m, nil
}

// ShiftClosed implements appcashier.Metrics.
func (m *CashierMetrics) ShiftClosed(ctx context.Context, shiftType string, hasDiscrepancy bool) {
	m.shiftsClosed.Inc(ctx, AttrShiftType.String(shiftType), AttrHasDiscrepancy.Bool(hasDiscrepancy))
}

// DayClosed implements appcashier.Metrics.
func (m *CashierMetrics) DayClosed(ctx context.Context) {
	m.daysClosed.Inc(ctx)
}

// DayCloseRejected implements appcashier.Metrics.
func (m *CashierMetrics) DayCloseRejected(ctx context.Context, reasons int) {
	m.dayCloseRejected.Inc(ctx)
	m.closeRejectReasons.Record(ctx, int64(reasons))
}

// VoucherTransition implements appcashier.Metrics.
func (m *CashierMetrics) VoucherTransition(ctx context.Context, status string) {
	m.voucherTransitions.Inc(ctx, AttrVoucherStatus.String(status))
}

// ConcurrencyConflict implements appcashier.Metrics.
func (m *CashierMetrics) ConcurrencyConflict(ctx context.Context, resource string) {
	m.concurrencyConflict.Inc(ctx, AttrResource.String(resource))
}

var _ appcashier.Metrics = (*CashierMetrics)(nil)
