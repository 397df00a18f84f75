package cashier

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hotelops/backend/internal/domain/shared"
	"github.com/hotelops/backend/internal/domain/shared/valueobject"
)

// Shift is the atomic accounting unit: one work period of one cash drawer.
//
// Derived fields (CashCounted, CashExpected, Difference, PaymentsTotal,
// GrandTotal) are recomputed by every mutating method and are never set
// directly by callers.
type Shift struct {
	shared.BaseAggregateRoot
	journal

	DailyID         uuid.UUID
	ShiftDate       time.Time
	ShiftType       ShiftType
	Status          ShiftStatus
	InitialFund     valueobject.Money
	Income          valueobject.Money
	IncomeBreakdown IncomeBreakdown
	// VouchersDrawn is the amount of still-pending vouchers drawn from this drawer.
	VouchersDrawn  valueobject.Money
	CashCounted    valueobject.Money
	CashExpected   valueobject.Money
	Difference     valueobject.Money
	PaymentsTotal  valueobject.Money
	GrandTotal     valueobject.Money
	HasDiscrepancy bool
	// Tolerance is the policy tolerance in force when the shift was last closed.
	Tolerance     valueobject.Money
	Notes         string
	OpenedBy      uuid.UUID
	ClosedBy      *uuid.UUID
	ClosedAt      *time.Time
	AuditedBy     *uuid.UUID
	AuditedAt     *time.Time
	Users         []ShiftUser
	Denominations []DenominationLine
	Payments      []PaymentLine
}

// NewShift creates an open shift for one roster slot of a day
func NewShift(
	dailyID uuid.UUID,
	date time.Time,
	shiftType ShiftType,
	initialFund valueobject.Money,
	openedBy uuid.UUID,
	users []ShiftUser,
) (*Shift, error) {
	if dailyID == uuid.Nil {
		return nil, shared.NewValidationError("daily id is required")
	}
	if !shiftType.IsValid() {
		return nil, shared.NewValidationError("invalid shift type %q", shiftType)
	}
	if err := initialFund.RequireNonNegative(); err != nil {
		return nil, shared.NewValidationError("initial fund: %v", err)
	}
	if openedBy == uuid.Nil {
		return nil, shared.NewValidationError("opening user is required")
	}
	if err := validateShiftUsers(users); err != nil {
		return nil, err
	}

	s := &Shift{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DailyID:           dailyID,
		ShiftDate:         NormalizeDate(date),
		ShiftType:         shiftType,
		Status:            ShiftStatusOpen,
		InitialFund:       initialFund,
		Income:            valueobject.Zero(),
		IncomeBreakdown:   IncomeBreakdown{},
		VouchersDrawn:     valueobject.Zero(),
		Tolerance:         valueobject.Zero(),
		OpenedBy:          openedBy,
		Users:             slices.Clone(users),
		Denominations:     []DenominationLine{},
		Payments:          []PaymentLine{},
	}
	s.Recalculate()

	s.record(NewHistoryEntry(HistoryActionCreated, TableShift, s.ID, openedBy).
		ForShift(s.ID).
		Change("initial_fund", "", initialFund.String()).
		WithNotes(string(shiftType)))

	return s, nil
}

// Recalculate derives every computed field from the stored inputs:
//
//	cash_expected = initial_fund + income - vouchers_drawn
//	difference    = cash_counted - cash_expected
//	grand_total   = cash_counted + payments_total
func (s *Shift) Recalculate() {
	s.CashCounted = SumDenominations(s.Denominations)
	s.CashExpected = s.InitialFund.Add(s.Income).Subtract(s.VouchersDrawn)
	s.Difference = s.CashCounted.Subtract(s.CashExpected)
	s.PaymentsTotal = SumPayments(s.Payments)
	s.GrandTotal = s.CashCounted.Add(s.PaymentsTotal)
	if s.Status.IsSettled() {
		s.HasDiscrepancy = s.Difference.Abs().GreaterThan(s.Tolerance)
	}
}

// PaymentTotals groups the payment lines by method
func (s *Shift) PaymentTotals() map[PaymentMethod]valueobject.Money {
	return PaymentTotalsByMethod(s.Payments)
}

// PrimaryUser returns the primary attributed user
func (s *Shift) PrimaryUser() uuid.UUID {
	for _, u := range s.Users {
		if u.Primary {
			return u.UserID
		}
	}
	return uuid.Nil
}

// UpdateIncome stores the shift income and its per-category breakdown
func (s *Shift) UpdateIncome(income valueobject.Money, breakdown IncomeBreakdown, changedBy uuid.UUID) error {
	if !s.Status.CanUpdateIncome() {
		return shared.NewInvalidStateTransitionError("cannot update income of a %s shift", s.Status)
	}
	if err := requireUser(changedBy); err != nil {
		return err
	}
	if err := income.RequireNonNegative(); err != nil {
		return shared.NewValidationError("income: %v", err)
	}
	if breakdown == nil {
		breakdown = IncomeBreakdown{}
	}
	if err := breakdown.Validate(income); err != nil {
		return err
	}

	s.markInProgress(changedBy)

	oldIncome, oldExpected := s.Income, s.CashExpected
	oldBreakdown := snapshot(s.IncomeBreakdown)

	s.Income = income
	s.IncomeBreakdown = breakdown.Clone()
	s.Recalculate()
	s.touch()

	s.record(NewHistoryEntry(HistoryActionUpdated, TableShift, s.ID, changedBy).
		ForShift(s.ID).
		Change("income", oldIncome.String(), income.String()))
	if newBreakdown := snapshot(s.IncomeBreakdown); newBreakdown != oldBreakdown {
		s.record(NewHistoryEntry(HistoryActionUpdated, TableShift, s.ID, changedBy).
			ForShift(s.ID).
			Change("income_breakdown", oldBreakdown, newBreakdown))
	}
	if !oldExpected.Equals(s.CashExpected) {
		s.record(NewHistoryEntry(HistoryActionUpdated, TableShift, s.ID, changedBy).
			ForShift(s.ID).
			Change("cash_expected", oldExpected.String(), s.CashExpected.String()))
	}
	return nil
}

// SetDenominations replaces the whole denomination set and recounts the drawer.
// A closed shift may be recounted; the change is then logged as an adjustment.
func (s *Shift) SetDenominations(lines []DenominationLine, changedBy uuid.UUID) error {
	if !s.Status.CanRecount() {
		return shared.NewInvalidStateTransitionError("cannot change denominations of a %s shift", s.Status)
	}
	if err := requireUser(changedBy); err != nil {
		return err
	}
	if err := ValidateDenominations(lines); err != nil {
		return err
	}

	s.markInProgress(changedBy)

	before := snapshot(s.Denominations)
	s.Denominations = slices.Clone(lines)
	if s.Denominations == nil {
		s.Denominations = []DenominationLine{}
	}
	s.Recalculate()
	s.touch()

	s.record(NewHistoryEntry(s.editAction(), TableDenomination, s.ID, changedBy).
		ForShift(s.ID).
		Change("denominations", before, snapshot(s.Denominations)).
		WithNotes("cash_counted=" + s.CashCounted.String() + " difference=" + s.Difference.String()))
	return nil
}

// SetPayments replaces the whole non-cash payment breakdown
func (s *Shift) SetPayments(lines []PaymentLine, changedBy uuid.UUID) error {
	if !s.Status.CanRecount() {
		return shared.NewInvalidStateTransitionError("cannot change payments of a %s shift", s.Status)
	}
	if err := requireUser(changedBy); err != nil {
		return err
	}
	if err := ValidatePayments(lines); err != nil {
		return err
	}

	s.markInProgress(changedBy)

	before := snapshot(s.Payments)
	s.Payments = slices.Clone(lines)
	if s.Payments == nil {
		s.Payments = []PaymentLine{}
	}
	s.Recalculate()
	s.touch()

	s.record(NewHistoryEntry(s.editAction(), TablePayment, s.ID, changedBy).
		ForShift(s.ID).
		Change("payments", before, snapshot(s.Payments)).
		WithNotes("payments_total=" + s.PaymentsTotal.String()))
	return nil
}

// AssignUsers replaces the attributed users of an active shift
func (s *Shift) AssignUsers(primary uuid.UUID, secondary []uuid.UUID, changedBy uuid.UUID) error {
	if !s.Status.IsActive() {
		return shared.NewInvalidStateTransitionError("cannot reassign users of a %s shift", s.Status)
	}
	if err := requireUser(changedBy); err != nil {
		return err
	}
	users, err := BuildShiftUsers(primary, secondary)
	if err != nil {
		return err
	}

	before := snapshot(s.Users)
	s.Users = users
	s.touch()

	s.record(NewHistoryEntry(HistoryActionUpdated, TableShiftUser, s.ID, changedBy).
		ForShift(s.ID).
		Change("users", before, snapshot(s.Users)))
	return nil
}

// UpdateNotes replaces the free-text notes
func (s *Shift) UpdateNotes(notes string, changedBy uuid.UUID) error {
	if s.Status == ShiftStatusAudited {
		return shared.NewInvalidStateTransitionError("cannot edit notes of an audited shift")
	}
	if err := requireUser(changedBy); err != nil {
		return err
	}
	if len(notes) > 2000 {
		return shared.NewValidationError("notes cannot exceed 2000 characters")
	}

	old := s.Notes
	s.Notes = notes
	s.touch()

	s.record(NewHistoryEntry(HistoryActionUpdated, TableShift, s.ID, changedBy).
		ForShift(s.ID).
		Change("notes", old, notes))
	return nil
}

// DrawVoucher takes a voucher amount out of the drawer, lowering expected cash
func (s *Shift) DrawVoucher(voucherID uuid.UUID, amount valueobject.Money, changedBy uuid.UUID) error {
	if !s.Status.CanDrawVoucher() {
		return shared.NewInvalidStateTransitionError("cannot draw a voucher against a %s shift", s.Status)
	}
	if !amount.IsPositive() {
		return shared.NewValidationError("voucher amount must be positive")
	}

	s.markInProgress(changedBy)

	oldExpected := s.CashExpected
	s.VouchersDrawn = s.VouchersDrawn.Add(amount)
	s.Recalculate()
	s.touch()

	s.record(NewHistoryEntry(HistoryActionUpdated, TableShift, s.ID, changedBy).
		ForShift(s.ID).
		Change("cash_expected", oldExpected.String(), s.CashExpected.String()).
		WithNotes("voucher " + voucherID.String() + " drawn"))
	return nil
}

// ReleaseVoucher gives back a voucher amount that is no longer pending. It only
// has an effect while the shift is still active; a settled shift keeps its
// frozen expected cash. Reports whether the shift changed.
func (s *Shift) ReleaseVoucher(voucherID uuid.UUID, amount valueobject.Money, changedBy uuid.UUID) bool {
	if !s.Status.IsActive() {
		return false
	}

	oldExpected := s.CashExpected
	s.VouchersDrawn = s.VouchersDrawn.Subtract(amount)
	if s.VouchersDrawn.IsNegative() {
		s.VouchersDrawn = valueobject.Zero()
	}
	s.Recalculate()
	s.touch()

	s.record(NewHistoryEntry(HistoryActionUpdated, TableShift, s.ID, changedBy).
		ForShift(s.ID).
		Change("cash_expected", oldExpected.String(), s.CashExpected.String()).
		WithNotes("voucher " + voucherID.String() + " released"))
	return true
}

// Close settles the shift. A difference beyond policy tolerance does not block
// the close; it sets HasDiscrepancy and is logged as an adjustment.
func (s *Shift) Close(closedBy uuid.UUID, policy ClosePolicy, notes string) error {
	if !s.Status.CanClose() {
		return shared.NewInvalidStateTransitionError("cannot close a %s shift", s.Status)
	}
	if err := requireUser(closedBy); err != nil {
		return err
	}
	notes = strings.TrimSpace(notes)
	s.Recalculate()
	if policy.RequiresNotes(s.Difference) && notes == "" {
		return shared.NewValidationError("difference %s exceeds %s, notes are required to close", s.Difference, policy.BlockThreshold)
	}

	now := time.Now()
	oldStatus := s.Status
	s.Status = ShiftStatusClosed
	s.ClosedAt = &now
	s.ClosedBy = &closedBy
	s.Tolerance = policy.Tolerance
	s.HasDiscrepancy = policy.IsDiscrepancy(s.Difference)
	if notes != "" {
		s.Notes = joinNonEmpty(s.Notes, notes)
	}
	s.touch()

	s.record(NewHistoryEntry(HistoryActionStatusChanged, TableShift, s.ID, closedBy).
		ForShift(s.ID).
		Change("status", string(oldStatus), string(s.Status)).
		WithNotes(notes))
	if s.HasDiscrepancy {
		s.record(NewHistoryEntry(HistoryActionAdjustment, TableShift, s.ID, closedBy).
			ForShift(s.ID).
			Change("difference", "", s.Difference.String()).
			WithNotes("difference beyond tolerance " + policy.Tolerance.String()))
	}
	return nil
}

// Reopen moves a closed shift back to in_progress. Audited shifts cannot be reopened.
func (s *Shift) Reopen(reason string, changedBy uuid.UUID) error {
	if !s.Status.CanReopen() {
		return shared.NewInvalidStateTransitionError("cannot reopen a %s shift", s.Status)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewValidationError("a reason is required to reopen a shift")
	}
	if err := requireUser(changedBy); err != nil {
		return err
	}

	oldStatus := s.Status
	s.Status = ShiftStatusInProgress
	s.ClosedAt = nil
	s.ClosedBy = nil
	s.HasDiscrepancy = false
	s.touch()

	s.record(NewHistoryEntry(HistoryActionStatusChanged, TableShift, s.ID, changedBy).
		ForShift(s.ID).
		Change("status", string(oldStatus), string(s.Status)).
		WithNotes(reason))
	return nil
}

// Audit marks a closed shift as an immutable settlement checkpoint
func (s *Shift) Audit(auditedBy uuid.UUID) error {
	if !s.Status.CanAudit() {
		return shared.NewInvalidStateTransitionError("cannot audit a %s shift", s.Status)
	}
	if err := requireUser(auditedBy); err != nil {
		return err
	}

	now := time.Now()
	oldStatus := s.Status
	s.Status = ShiftStatusAudited
	s.AuditedAt = &now
	s.AuditedBy = &auditedBy
	s.touch()

	s.record(NewHistoryEntry(HistoryActionStatusChanged, TableShift, s.ID, auditedBy).
		ForShift(s.ID).
		Change("status", string(oldStatus), string(s.Status)))
	return nil
}

// markInProgress moves an open shift to in_progress on its first change
func (s *Shift) markInProgress(changedBy uuid.UUID) {
	if s.Status != ShiftStatusOpen {
		return
	}
	s.Status = ShiftStatusInProgress
	s.record(NewHistoryEntry(HistoryActionStatusChanged, TableShift, s.ID, changedBy).
		ForShift(s.ID).
		Change("status", string(ShiftStatusOpen), string(ShiftStatusInProgress)))
}

// editAction is the history action for a recount: corrections to a settled
// shift are adjustments.
func (s *Shift) editAction() HistoryAction {
	if s.Status.IsSettled() {
		return HistoryActionAdjustment
	}
	return HistoryActionUpdated
}

func (s *Shift) touch() {
	s.MarkModified(time.Now())
}

func requireUser(id uuid.UUID) error {
	if id == uuid.Nil {
		return shared.NewValidationError("acting user is required")
	}
	return nil
}
