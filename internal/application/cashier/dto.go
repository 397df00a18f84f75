package cashier

import (
	"time"

	"github.com/google/uuid"
	"github.com/hotelops/backend/internal/domain/cashier"
	"github.com/hotelops/backend/internal/domain/shared/valueobject"
)

// ===================== Requests =====================

// InitializeDayRequest represents a request to open a business day
type InitializeDayRequest struct {
	Date             string            `json:"date" binding:"required"`
	PrimaryUserID    uuid.UUID         `json:"primary_user_id" binding:"required"`
	SecondaryUserIDs []uuid.UUID       `json:"secondary_user_ids"`
	InitialFund      valueobject.Money `json:"initial_fund"`
	CreatedBy        uuid.UUID         `json:"-"` // Set from the X-User-ID header
}

// CloseDayRequest represents a request to close a business day
type CloseDayRequest struct {
	Notes    string    `json:"notes" binding:"max=2000"`
	ClosedBy uuid.UUID `json:"-"`
}

// ReopenRequest carries the mandatory reason of a day or shift reopen
type ReopenRequest struct {
	Reason    string    `json:"reason" binding:"required,max=500"`
	ChangedBy uuid.UUID `json:"-"`
}

// UpdateIncomeRequest represents a request to store a shift's income
type UpdateIncomeRequest struct {
	Income          valueobject.Money            `json:"income"`
	IncomeBreakdown map[string]valueobject.Money `json:"income_breakdown" binding:"omitempty,dive,keys,income_category,endkeys"`
	ChangedBy       uuid.UUID                    `json:"-"`
}

// DenominationLineInput is one counted denomination
type DenominationLineInput struct {
	Denomination valueobject.Money `json:"denomination"`
	Quantity     int64             `json:"quantity" binding:"gte=0"`
}

// SetDenominationsRequest replaces the denomination set of a shift
type SetDenominationsRequest struct {
	Lines     []DenominationLineInput `json:"lines" binding:"dive"`
	ChangedBy uuid.UUID               `json:"-"`
}

// PaymentLineInput is one non-cash payment amount
type PaymentLineInput struct {
	Method    string            `json:"method" binding:"required,payment_method"`
	Amount    valueobject.Money `json:"amount"`
	Reference string            `json:"reference" binding:"max=100"`
}

// SetPaymentsRequest replaces the payment breakdown of a shift
type SetPaymentsRequest struct {
	Lines     []PaymentLineInput `json:"lines" binding:"dive"`
	ChangedBy uuid.UUID          `json:"-"`
}

// AssignUsersRequest replaces the users attributed to a shift
type AssignUsersRequest struct {
	PrimaryUserID    uuid.UUID   `json:"primary_user_id" binding:"required"`
	SecondaryUserIDs []uuid.UUID `json:"secondary_user_ids"`
	ChangedBy        uuid.UUID   `json:"-"`
}

// UpdateNotesRequest replaces the notes of a shift
type UpdateNotesRequest struct {
	Notes     string    `json:"notes" binding:"max=2000"`
	ChangedBy uuid.UUID `json:"-"`
}

// CloseShiftRequest represents a request to close a shift
type CloseShiftRequest struct {
	Notes    string    `json:"notes" binding:"max=2000"`
	ClosedBy uuid.UUID `json:"-"`
}

// CreateVoucherRequest represents a request to draw a voucher
type CreateVoucherRequest struct {
	ShiftID   *uuid.UUID        `json:"shift_id"`
	Amount    valueobject.Money `json:"amount"`
	Reason    string            `json:"reason" binding:"required,max=500"`
	Notes     string            `json:"notes" binding:"max=2000"`
	CreatedBy uuid.UUID         `json:"-"`
}

// JustifyVoucherRequest settles a voucher against a shift
type JustifyVoucherRequest struct {
	TargetShiftID uuid.UUID `json:"target_shift_id" binding:"required"`
	Notes         string    `json:"notes" binding:"max=2000"`
	JustifiedBy   uuid.UUID `json:"-"`
}

// CancelVoucherRequest voids a voucher
type CancelVoucherRequest struct {
	Reason      string    `json:"reason" binding:"max=500"`
	CancelledBy uuid.UUID `json:"-"`
}

// VoucherListFilter defines filtering options for voucher list queries
type VoucherListFilter struct {
	Status   string `form:"status"`
	ShiftID  string `form:"shift_id"`
	FromDate string `form:"from_date"`
	ToDate   string `form:"to_date"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// HistoryListFilter defines filtering options for history queries
type HistoryListFilter struct {
	ShiftID  string `form:"shift_id"`
	RecordID string `form:"record_id"`
	Table    string `form:"table"`
	Action   string `form:"action"`
	FromDate string `form:"from_date"`
	ToDate   string `form:"to_date"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ===================== Responses =====================

// DayResponse represents a daily aggregate in API responses
type DayResponse struct {
	ID         uuid.UUID           `json:"id"`
	Date       string              `json:"date"`
	Status     string              `json:"status"`
	Totals     cashier.DailyTotals `json:"totals"`
	Notes      string              `json:"notes,omitempty"`
	CreatedBy  uuid.UUID           `json:"created_by"`
	ClosedBy   *uuid.UUID          `json:"closed_by,omitempty"`
	ClosedAt   *time.Time          `json:"closed_at,omitempty"`
	ReopenedBy *uuid.UUID          `json:"reopened_by,omitempty"`
	ReopenedAt *time.Time          `json:"reopened_at,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
	Version    int                 `json:"version"`
	Shifts     []ShiftResponse     `json:"shifts,omitempty"`
}

// ShiftUserResponse is one attributed user
type ShiftUserResponse struct {
	UserID  uuid.UUID `json:"user_id"`
	Primary bool      `json:"primary"`
}

// DenominationLineResponse is one counted denomination with its subtotal
type DenominationLineResponse struct {
	Denomination valueobject.Money `json:"denomination"`
	Quantity     int64             `json:"quantity"`
	Subtotal     valueobject.Money `json:"subtotal"`
}

// PaymentLineResponse is one non-cash payment amount
type PaymentLineResponse struct {
	Method    string            `json:"method"`
	Amount    valueobject.Money `json:"amount"`
	Reference string            `json:"reference,omitempty"`
}

// ShiftResponse represents a shift in API responses
type ShiftResponse struct {
	ID              uuid.UUID                    `json:"id"`
	DailyID         uuid.UUID                    `json:"daily_id"`
	ShiftDate       string                       `json:"shift_date"`
	ShiftType       string                       `json:"shift_type"`
	Status          string                       `json:"status"`
	InitialFund     valueobject.Money            `json:"initial_fund"`
	Income          valueobject.Money            `json:"income"`
	IncomeBreakdown map[string]valueobject.Money `json:"income_breakdown"`
	VouchersDrawn   valueobject.Money            `json:"vouchers_drawn"`
	CashCounted     valueobject.Money            `json:"cash_counted"`
	CashExpected    valueobject.Money            `json:"cash_expected"`
	Difference      valueobject.Money            `json:"difference"`
	PaymentsTotal   valueobject.Money            `json:"payments_total"`
	PaymentTotals   map[string]valueobject.Money `json:"payment_totals"`
	GrandTotal      valueobject.Money            `json:"grand_total"`
	HasDiscrepancy  bool                         `json:"has_discrepancy"`
	Tolerance       valueobject.Money            `json:"tolerance"`
	Notes           string                       `json:"notes,omitempty"`
	OpenedBy        uuid.UUID                    `json:"opened_by"`
	ClosedBy        *uuid.UUID                   `json:"closed_by,omitempty"`
	ClosedAt        *time.Time                   `json:"closed_at,omitempty"`
	AuditedBy       *uuid.UUID                   `json:"audited_by,omitempty"`
	AuditedAt       *time.Time                   `json:"audited_at,omitempty"`
	Users           []ShiftUserResponse          `json:"users"`
	Denominations   []DenominationLineResponse   `json:"denominations"`
	Payments        []PaymentLineResponse        `json:"payments"`
	CreatedAt       time.Time                    `json:"created_at"`
	UpdatedAt       time.Time                    `json:"updated_at"`
	Version         int                          `json:"version"`
}

// VoucherResponse represents a voucher in API responses
type VoucherResponse struct {
	ID               uuid.UUID         `json:"id"`
	ShiftID          *uuid.UUID        `json:"shift_id,omitempty"`
	Amount           valueobject.Money `json:"amount"`
	Reason           string            `json:"reason"`
	Status           string            `json:"status"`
	Notes            string            `json:"notes,omitempty"`
	CreatedBy        uuid.UUID         `json:"created_by"`
	JustifiedShiftID *uuid.UUID        `json:"justified_shift_id,omitempty"`
	JustifiedBy      *uuid.UUID        `json:"justified_by,omitempty"`
	JustifiedAt      *time.Time        `json:"justified_at,omitempty"`
	CancelledBy      *uuid.UUID        `json:"cancelled_by,omitempty"`
	CancelledAt      *time.Time        `json:"cancelled_at,omitempty"`
	CancelReason     string            `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	Version          int               `json:"version"`
}

// ActiveVouchersResponse lists pending vouchers with their running total
type ActiveVouchersResponse struct {
	Vouchers    []VoucherResponse `json:"vouchers"`
	Count       int               `json:"count"`
	TotalAmount valueobject.Money `json:"total_amount"`
}

// HistoryEntryResponse represents an audit entry in API responses
type HistoryEntryResponse struct {
	ID            uuid.UUID  `json:"id"`
	ShiftID       *uuid.UUID `json:"shift_id,omitempty"`
	Action        string     `json:"action"`
	TableAffected string     `json:"table_affected"`
	RecordID      uuid.UUID  `json:"record_id"`
	FieldChanged  string     `json:"field_changed,omitempty"`
	OldValue      string     `json:"old_value,omitempty"`
	NewValue      string     `json:"new_value,omitempty"`
	ChangedBy     uuid.UUID  `json:"changed_by"`
	ChangedAt     time.Time  `json:"changed_at"`
	Notes         string     `json:"notes,omitempty"`
}

// CanCloseResponse is the answer of the can-close check for a date
type CanCloseResponse struct {
	Date string `json:"date"`
	cashier.CloseCheck
}

// RepairResponse reports the outcome of a totals repair
type RepairResponse struct {
	Changed bool        `json:"changed"`
	Fields  []string    `json:"fields"`
	Day     DayResponse `json:"day"`
}

// ===================== Converters =====================

func toDayResponse(d *cashier.DailyAggregate) DayResponse {
	return DayResponse{
		ID:         d.ID,
		Date:       d.DateKey(),
		Status:     string(d.Status),
		Totals:     d.Totals,
		Notes:      d.Notes,
		CreatedBy:  d.CreatedBy,
		ClosedBy:   d.ClosedBy,
		ClosedAt:   d.ClosedAt,
		ReopenedBy: d.ReopenedBy,
		ReopenedAt: d.ReopenedAt,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
		Version:    d.Version,
	}
}

func toShiftResponse(s *cashier.Shift) ShiftResponse {
	breakdown := make(map[string]valueobject.Money, len(s.IncomeBreakdown))
	for k, v := range s.IncomeBreakdown {
		breakdown[string(k)] = v
	}
	byMethod := make(map[string]valueobject.Money)
	for k, v := range s.PaymentTotals() {
		byMethod[string(k)] = v
	}
	users := make([]ShiftUserResponse, 0, len(s.Users))
	for _, u := range s.Users {
		users = append(users, ShiftUserResponse{UserID: u.UserID, Primary: u.Primary})
	}
	denominations := make([]DenominationLineResponse, 0, len(s.Denominations))
	for _, l := range s.Denominations {
		denominations = append(denominations, DenominationLineResponse{
			Denomination: l.Denomination,
			Quantity:     l.Quantity,
			Subtotal:     l.Subtotal(),
		})
	}
	payments := make([]PaymentLineResponse, 0, len(s.Payments))
	for _, l := range s.Payments {
		payments = append(payments, PaymentLineResponse{
			Method:    string(l.Method),
			Amount:    l.Amount,
			Reference: l.Reference,
		})
	}

	return ShiftResponse{
		ID:              s.ID,
		DailyID:         s.DailyID,
		ShiftDate:       cashier.FormatDate(s.ShiftDate),
		ShiftType:       string(s.ShiftType),
		Status:          string(s.Status),
		InitialFund:     s.InitialFund,
		Income:          s.Income,
		IncomeBreakdown: breakdown,
		VouchersDrawn:   s.VouchersDrawn,
		CashCounted:     s.CashCounted,
		CashExpected:    s.CashExpected,
		Difference:      s.Difference,
		PaymentsTotal:   s.PaymentsTotal,
		PaymentTotals:   byMethod,
		GrandTotal:      s.GrandTotal,
		HasDiscrepancy:  s.HasDiscrepancy,
		Tolerance:       s.Tolerance,
		Notes:           s.Notes,
		OpenedBy:        s.OpenedBy,
		ClosedBy:        s.ClosedBy,
		ClosedAt:        s.ClosedAt,
		AuditedBy:       s.AuditedBy,
		AuditedAt:       s.AuditedAt,
		Users:           users,
		Denominations:   denominations,
		Payments:        payments,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
		Version:         s.Version,
	}
}

func toShiftResponses(shifts []*cashier.Shift) []ShiftResponse {
	out := make([]ShiftResponse, 0, len(shifts))
	for _, s := range shifts {
		out = append(out, toShiftResponse(s))
	}
	return out
}

func toVoucherResponse(v *cashier.Voucher) VoucherResponse {
	return VoucherResponse{
		ID:               v.ID,
		ShiftID:          v.ShiftID,
		Amount:           v.Amount,
		Reason:           v.Reason,
		Status:           string(v.Status),
		Notes:            v.Notes,
		CreatedBy:        v.CreatedBy,
		JustifiedShiftID: v.JustifiedShiftID,
		JustifiedBy:      v.JustifiedBy,
		JustifiedAt:      v.JustifiedAt,
		CancelledBy:      v.CancelledBy,
		CancelledAt:      v.CancelledAt,
		CancelReason:     v.CancelReason,
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
		Version:          v.Version,
	}
}

func toVoucherResponses(vouchers []*cashier.Voucher) []VoucherResponse {
	out := make([]VoucherResponse, 0, len(vouchers))
	for _, v := range vouchers {
		out = append(out, toVoucherResponse(v))
	}
	return out
}

func toHistoryEntryResponse(e *cashier.HistoryEntry) HistoryEntryResponse {
	return HistoryEntryResponse{
		ID:            e.ID,
		ShiftID:       e.ShiftID,
		Action:        string(e.Action),
		TableAffected: e.TableAffected,
		RecordID:      e.RecordID,
		FieldChanged:  e.FieldChanged,
		OldValue:      e.OldValue,
		NewValue:      e.NewValue,
		ChangedBy:     e.ChangedBy,
		ChangedAt:     e.ChangedAt,
		Notes:         e.Notes,
	}
}
