package cashier

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hotelops/backend/internal/domain/shared"
	"github.com/hotelops/backend/internal/domain/shared/valueobject"
)

// DailyTotals is the per-method roll-up of a day's shifts
type DailyTotals struct {
	Cash            valueobject.Money `json:"cash"`
	Card            valueobject.Money `json:"card"`
	BankDirectDebit valueobject.Money `json:"bank_direct_debit"`
	WebPayment      valueobject.Money `json:"web_payment"`
	Transfer        valueobject.Money `json:"transfer"`
	Other           valueobject.Money `json:"other"`
	GrandTotal      valueobject.Money `json:"grand_total"`
}

// ZeroTotals returns totals with every field at zero
func ZeroTotals() DailyTotals {
	z := valueobject.Zero()
	return DailyTotals{Cash: z, Card: z, BankDirectDebit: z, WebPayment: z, Transfer: z, Other: z, GrandTotal: z}
}

// ComputeTotals sums the shifts of a day. Cash is the counted cash of each
// drawer; every other field comes from the payment lines. It never mutates
// the shifts.
func ComputeTotals(shifts []*Shift) DailyTotals {
	t := ZeroTotals()
	for _, s := range shifts {
		t.Cash = t.Cash.Add(s.CashCounted)
		byMethod := s.PaymentTotals()
		t.Card = t.Card.Add(byMethod[PaymentMethodCard])
		t.BankDirectDebit = t.BankDirectDebit.Add(byMethod[PaymentMethodBankDirectDebit])
		t.WebPayment = t.WebPayment.Add(byMethod[PaymentMethodWebPayment])
		t.Transfer = t.Transfer.Add(byMethod[PaymentMethodTransfer])
		t.Other = t.Other.Add(byMethod[PaymentMethodOther])
	}
	t.GrandTotal = valueobject.Sum(t.Cash, t.Card, t.BankDirectDebit, t.WebPayment, t.Transfer, t.Other)
	return t
}

// Add returns the field-wise sum of two totals
func (t DailyTotals) Add(o DailyTotals) DailyTotals {
	return DailyTotals{
		Cash:            t.Cash.Add(o.Cash),
		Card:            t.Card.Add(o.Card),
		BankDirectDebit: t.BankDirectDebit.Add(o.BankDirectDebit),
		WebPayment:      t.WebPayment.Add(o.WebPayment),
		Transfer:        t.Transfer.Add(o.Transfer),
		Other:           t.Other.Add(o.Other),
		GrandTotal:      t.GrandTotal.Add(o.GrandTotal),
	}
}

type totalField struct {
	name  string
	value valueobject.Money
}

// fields lists the totals by column name, in a stable order
func (t DailyTotals) fields() []totalField {
	return []totalField{
		{"total_cash", t.Cash},
		{"total_card", t.Card},
		{"total_bank_direct_debit", t.BankDirectDebit},
		{"total_web_payment", t.WebPayment},
		{"total_transfer", t.Transfer},
		{"total_other", t.Other},
		{"grand_total", t.GrandTotal},
	}
}

// CloseCheck is the answer to "can this day be closed?"
type CloseCheck struct {
	CanClose         bool     `json:"can_close"`
	ValidationErrors []string `json:"validation_errors"`
}

// EvaluateClose checks whether a day may close. It has no side effects: every
// shift must be closed or audited and no voucher drawn against a shift of the
// day may still be pending.
func EvaluateClose(day *DailyAggregate, shifts []*Shift, pending []*Voucher) CloseCheck {
	reasons := []string{}
	if day.Status == DailyStatusClosed {
		reasons = append(reasons, fmt.Sprintf("day %s is already closed", FormatDate(day.Date)))
	}
	if len(shifts) == 0 {
		reasons = append(reasons, "day has no shifts")
	}
	for _, s := range shifts {
		if !s.Status.IsSettled() {
			reasons = append(reasons, fmt.Sprintf("shift %s (%s) is %s", s.ShiftType, s.ID, s.Status))
		}
	}
	for _, v := range pending {
		if v.Status == VoucherStatusPending {
			reasons = append(reasons, fmt.Sprintf("voucher %s of %s is pending", v.ID, v.Amount))
		}
	}
	return CloseCheck{
		CanClose:         len(reasons) == 0,
		ValidationErrors: reasons,
	}
}

// DailyAggregate is the roll-up of all shifts of one calendar date and owns
// the close/reopen workflow.
type DailyAggregate struct {
	shared.BaseAggregateRoot
	journal

	Date   time.Time
	Totals DailyTotals
	Status DailyStatus
	// Notes accumulates closing notes and reopen reasons
	Notes      string
	CreatedBy  uuid.UUID
	ClosedBy   *uuid.UUID
	ClosedAt   *time.Time
	ReopenedBy *uuid.UUID
	ReopenedAt *time.Time
}

// NewDailyAggregate creates an open day with zero totals
func NewDailyAggregate(date time.Time, createdBy uuid.UUID) (*DailyAggregate, error) {
	if date.IsZero() {
		return nil, shared.NewValidationError("date is required")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewValidationError("creating user is required")
	}

	d := &DailyAggregate{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Date:              NormalizeDate(date),
		Totals:            ZeroTotals(),
		Status:            DailyStatusOpen,
		CreatedBy:         createdBy,
	}
	d.record(NewHistoryEntry(HistoryActionCreated, TableDaily, d.ID, createdBy).
		Change("date", "", FormatDate(d.Date)))
	return d, nil
}

// DateKey returns the date as YYYY-MM-DD
func (d *DailyAggregate) DateKey() string {
	return FormatDate(d.Date)
}

// IsClosed reports whether the day is closed. A closed day locks its shifts.
func (d *DailyAggregate) IsClosed() bool {
	return d.Status == DailyStatusClosed
}

// EnsureOpen fails when the day is closed
func (d *DailyAggregate) EnsureOpen() error {
	if d.IsClosed() {
		return shared.NewInvalidStateTransitionError("day %s is closed, reopen it first", d.DateKey())
	}
	return nil
}

// ApplyShiftTotals recomputes totals from the day's shifts. The version is
// always bumped so that concurrent work on the same day is serialized, even
// when the totals happen not to change.
func (d *DailyAggregate) ApplyShiftTotals(shifts []*Shift) {
	d.Totals = ComputeTotals(shifts)
	d.touch()
}

// Repair recomputes the totals and records an adjustment for each stored
// total that had drifted. Returns the names of the corrected fields.
func (d *DailyAggregate) Repair(shifts []*Shift, changedBy uuid.UUID) ([]string, error) {
	if err := requireUser(changedBy); err != nil {
		return nil, err
	}
	computed := ComputeTotals(shifts)
	stored := d.Totals.fields()
	var changed []string
	for i, f := range computed.fields() {
		if stored[i].value.Equals(f.value) {
			continue
		}
		changed = append(changed, f.name)
		d.record(NewHistoryEntry(HistoryActionAdjustment, TableDaily, d.ID, changedBy).
			Change(f.name, stored[i].value.String(), f.value.String()).
			WithNotes("totals repaired from shifts"))
	}
	if len(changed) > 0 {
		d.Totals = computed
		d.touch()
	}
	return changed, nil
}

// Close closes the day when check allows it
func (d *DailyAggregate) Close(closedBy uuid.UUID, notes string, check CloseCheck) error {
	if d.IsClosed() {
		return shared.NewInvalidStateTransitionError("day %s is already closed", d.DateKey())
	}
	if err := requireUser(closedBy); err != nil {
		return err
	}
	if !check.CanClose {
		return shared.NewDailyNotReadyError(d.DateKey(), check.ValidationErrors)
	}

	now := time.Now()
	d.Status = DailyStatusClosed
	d.ClosedAt = &now
	d.ClosedBy = &closedBy
	notes = strings.TrimSpace(notes)
	if notes != "" {
		d.Notes = joinNonEmpty(d.Notes, notes)
	}
	d.touch()

	d.record(NewHistoryEntry(HistoryActionDailyClosed, TableDaily, d.ID, closedBy).
		Change("status", string(DailyStatusOpen), string(DailyStatusClosed)).
		WithNotes(notes))
	return nil
}

// Reopen reopens a closed day. Its shifts are not touched.
func (d *DailyAggregate) Reopen(reason string, changedBy uuid.UUID) error {
	if !d.IsClosed() {
		return shared.NewInvalidStateTransitionError("day %s is not closed", d.DateKey())
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewValidationError("a reason is required to reopen a day")
	}
	if err := requireUser(changedBy); err != nil {
		return err
	}

	now := time.Now()
	d.Status = DailyStatusOpen
	d.ClosedAt = nil
	d.ClosedBy = nil
	d.ReopenedAt = &now
	d.ReopenedBy = &changedBy
	d.Notes = joinNonEmpty(d.Notes, "reopened: "+reason)
	d.touch()

	d.record(NewHistoryEntry(HistoryActionDailyReopened, TableDaily, d.ID, changedBy).
		Change("status", string(DailyStatusClosed), string(DailyStatusOpen)).
		WithNotes(reason))
	return nil
}

func (d *DailyAggregate) touch() {
	d.MarkModified(time.Now())
}
