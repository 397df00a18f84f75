package cashier

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hotelops/backend/internal/domain/shared"
	"github.com/hotelops/backend/internal/domain/shared/valueobject"
)

// Voucher is an IOU: cash taken from a drawer that still has to be justified.
// pending -> justified and pending -> cancelled are the only transitions and
// both end states are terminal. The amount never changes after creation.
type Voucher struct {
	shared.BaseAggregateRoot
	journal

	Amount    valueobject.Money
	Reason    string
	Status    VoucherStatus
	Notes     string
	CreatedBy uuid.UUID
	// ShiftID is the drawer the cash was taken from, when there is one.
	ShiftID *uuid.UUID
	// JustifiedShiftID is the shift the voucher was settled on; it may differ from ShiftID.
	JustifiedShiftID *uuid.UUID
	JustifiedBy      *uuid.UUID
	JustifiedAt      *time.Time
	CancelledBy      *uuid.UUID
	CancelledAt      *time.Time
	CancelReason     string
}

// NewVoucher creates a pending voucher
func NewVoucher(shiftID *uuid.UUID, amount valueobject.Money, reason, notes string, createdBy uuid.UUID) (*Voucher, error) {
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("voucher amount must be positive")
	}
	if !amount.HasValidScale() {
		return nil, shared.NewValidationError("voucher amount has more than two decimals")
	}
	if !amount.InRange() {
		return nil, shared.NewValidationError("voucher amount exceeds the maximum amount")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.NewValidationError("voucher reason is required")
	}
	if len(reason) > 500 {
		return nil, shared.NewValidationError("voucher reason cannot exceed 500 characters")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewValidationError("creating user is required")
	}
	if shiftID != nil && *shiftID == uuid.Nil {
		shiftID = nil
	}

	v := &Voucher{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Amount:            amount,
		Reason:            reason,
		Status:            VoucherStatusPending,
		Notes:             notes,
		CreatedBy:         createdBy,
		ShiftID:           shiftID,
	}

	entry := NewHistoryEntry(HistoryActionVoucherCreated, TableVoucher, v.ID, createdBy).
		Change("amount", "", amount.String()).
		WithNotes(reason)
	if shiftID != nil {
		entry.ForShift(*shiftID)
	}
	v.record(entry)

	return v, nil
}

// Justify settles the voucher against a shift, which need not be the one it
// was drawn from.
func (v *Voucher) Justify(targetShiftID, justifiedBy uuid.UUID, notes string) error {
	if !v.Status.CanJustify() {
		return shared.NewInvalidStateTransitionError("cannot justify a %s voucher", v.Status)
	}
	if targetShiftID == uuid.Nil {
		return shared.NewValidationError("target shift is required to justify a voucher")
	}
	if err := requireUser(justifiedBy); err != nil {
		return err
	}

	now := time.Now()
	v.Status = VoucherStatusJustified
	v.JustifiedShiftID = &targetShiftID
	v.JustifiedBy = &justifiedBy
	v.JustifiedAt = &now
	if notes = strings.TrimSpace(notes); notes != "" {
		v.Notes = joinNonEmpty(v.Notes, notes)
	}
	v.touch()

	v.record(NewHistoryEntry(HistoryActionVoucherRepaid, TableVoucher, v.ID, justifiedBy).
		ForShift(targetShiftID).
		Change("status", string(VoucherStatusPending), string(VoucherStatusJustified)).
		WithNotes(joinNonEmpty("amount "+v.Amount.String(), notes)))
	return nil
}

// Cancel voids a pending voucher
func (v *Voucher) Cancel(cancelledBy uuid.UUID, reason string) error {
	if !v.Status.CanCancel() {
		return shared.NewInvalidStateTransitionError("cannot cancel a %s voucher", v.Status)
	}
	if err := requireUser(cancelledBy); err != nil {
		return err
	}

	now := time.Now()
	v.Status = VoucherStatusCancelled
	v.CancelledBy = &cancelledBy
	v.CancelledAt = &now
	v.CancelReason = strings.TrimSpace(reason)
	v.touch()

	entry := NewHistoryEntry(HistoryActionStatusChanged, TableVoucher, v.ID, cancelledBy).
		Change("status", string(VoucherStatusPending), string(VoucherStatusCancelled)).
		WithNotes(v.CancelReason)
	if v.ShiftID != nil {
		entry.ForShift(*v.ShiftID)
	}
	v.record(entry)
	return nil
}

func (v *Voucher) touch() {
	v.MarkModified(time.Now())
}
