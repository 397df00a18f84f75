package cashier

// ShiftType identifies a work period in the daily roster
type ShiftType string

const (
	ShiftTypeNight     ShiftType = "night"
	ShiftTypeMorning   ShiftType = "morning"
	ShiftTypeAfternoon ShiftType = "afternoon"
	ShiftTypeClosing   ShiftType = "closing"
)

// DefaultRoster is the set of shifts created when a day is initialized, in
// chronological order.
var DefaultRoster = []ShiftType{
	ShiftTypeNight,
	ShiftTypeMorning,
	ShiftTypeAfternoon,
	ShiftTypeClosing,
}

// IsValid checks if the shift type is part of the roster vocabulary
func (t ShiftType) IsValid() bool {
	switch t {
	case ShiftTypeNight, ShiftTypeMorning, ShiftTypeAfternoon, ShiftTypeClosing:
		return true
	}
	return false
}

// String returns the string representation of ShiftType
func (t ShiftType) String() string {
	return string(t)
}

// ShiftStatus represents the state of a shift.
//
//	open -> in_progress -> closed -> audited
//	closed -> in_progress (reopen, reason required)
//
// audited is terminal.
type ShiftStatus string

const (
	ShiftStatusOpen       ShiftStatus = "open"
	ShiftStatusInProgress ShiftStatus = "in_progress"
	ShiftStatusClosed     ShiftStatus = "closed"
	ShiftStatusAudited    ShiftStatus = "audited"
)

// AllShiftStatuses lists every status, used for dashboard counts.
var AllShiftStatuses = []ShiftStatus{
	ShiftStatusOpen,
	ShiftStatusInProgress,
	ShiftStatusClosed,
	ShiftStatusAudited,
}

// IsValid checks if the status is a valid ShiftStatus
func (s ShiftStatus) IsValid() bool {
	switch s {
	case ShiftStatusOpen, ShiftStatusInProgress, ShiftStatusClosed, ShiftStatusAudited:
		return true
	}
	return false
}

// String returns the string representation of ShiftStatus
func (s ShiftStatus) String() string {
	return string(s)
}

// IsActive returns true while the shift is still being worked
func (s ShiftStatus) IsActive() bool {
	return s == ShiftStatusOpen || s == ShiftStatusInProgress
}

// IsSettled returns true for closed and audited shifts
func (s ShiftStatus) IsSettled() bool {
	return s == ShiftStatusClosed || s == ShiftStatusAudited
}

// CanUpdateIncome returns true if income may change in this status
func (s ShiftStatus) CanUpdateIncome() bool {
	return s.IsActive()
}

// CanRecount returns true if denominations or payments may be replaced
func (s ShiftStatus) CanRecount() bool {
	return s != ShiftStatusAudited
}

// CanClose returns true if the shift can be closed in this status
func (s ShiftStatus) CanClose() bool {
	return s.IsActive()
}

// CanReopen returns true if the shift can be reopened in this status
func (s ShiftStatus) CanReopen() bool {
	return s == ShiftStatusClosed
}

// CanAudit returns true if the shift can be audited in this status
func (s ShiftStatus) CanAudit() bool {
	return s == ShiftStatusClosed
}

// CanDrawVoucher returns true if a voucher may be drawn against the drawer
func (s ShiftStatus) CanDrawVoucher() bool {
	return s.IsActive()
}

// DailyStatus represents the state of a daily aggregate
type DailyStatus string

const (
	DailyStatusOpen   DailyStatus = "open"
	DailyStatusClosed DailyStatus = "closed"
)

// IsValid checks if the status is a valid DailyStatus
func (s DailyStatus) IsValid() bool {
	return s == DailyStatusOpen || s == DailyStatusClosed
}

// String returns the string representation of DailyStatus
func (s DailyStatus) String() string {
	return string(s)
}

// VoucherStatus represents the state of a voucher
type VoucherStatus string

const (
	VoucherStatusPending   VoucherStatus = "pending"
	VoucherStatusJustified VoucherStatus = "justified"
	VoucherStatusCancelled VoucherStatus = "cancelled"
)

// IsValid checks if the status is a valid VoucherStatus
func (s VoucherStatus) IsValid() bool {
	switch s {
	case VoucherStatusPending, VoucherStatusJustified, VoucherStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of VoucherStatus
func (s VoucherStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the voucher is in a terminal state
func (s VoucherStatus) IsTerminal() bool {
	return s == VoucherStatusJustified || s == VoucherStatusCancelled
}

// CanJustify returns true if the voucher can be justified in this status
func (s VoucherStatus) CanJustify() bool {
	return s == VoucherStatusPending
}

// CanCancel returns true if the voucher can be cancelled in this status
func (s VoucherStatus) CanCancel() bool {
	return s == VoucherStatusPending
}

// HistoryAction enumerates what a history entry records
type HistoryAction string

const (
	HistoryActionCreated        HistoryAction = "created"
	HistoryActionUpdated        HistoryAction = "updated"
	HistoryActionDeleted        HistoryAction = "deleted"
	HistoryActionStatusChanged  HistoryAction = "status_changed"
	HistoryActionAdjustment     HistoryAction = "adjustment"
	HistoryActionVoucherCreated HistoryAction = "voucher_created"
	HistoryActionVoucherRepaid  HistoryAction = "voucher_repaid"
	HistoryActionDailyClosed    HistoryAction = "daily_closed"
	HistoryActionDailyReopened  HistoryAction = "daily_reopened"
)

// IsValid checks if the action is a valid HistoryAction
func (a HistoryAction) IsValid() bool {
	switch a {
	case HistoryActionCreated, HistoryActionUpdated, HistoryActionDeleted,
		HistoryActionStatusChanged, HistoryActionAdjustment, HistoryActionVoucherCreated,
		HistoryActionVoucherRepaid, HistoryActionDailyClosed, HistoryActionDailyReopened:
		return true
	}
	return false
}

// String returns the string representation of HistoryAction
func (a HistoryAction) String() string {
	return string(a)
}
