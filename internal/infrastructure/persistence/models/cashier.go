package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hotelops/backend/internal/domain/cashier"
	"github.com/hotelops/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DailyModel is the persistence model for the DailyAggregate aggregate root.
type DailyModel struct {
	AggregateModel
	Date                 time.Time           `gorm:"type:date;not null;uniqueIndex:idx_cashier_daily_date"`
	Status               cashier.DailyStatus `gorm:"type:varchar(20);not null;default:'open';index"`
	TotalCash            decimal.Decimal     `gorm:"type:decimal(14,2);not null"`
	TotalCard            decimal.Decimal     `gorm:"type:decimal(14,2);not null"`
	TotalBankDirectDebit decimal.Decimal     `gorm:"type:decimal(14,2);not null"`
	TotalWebPayment      decimal.Decimal     `gorm:"type:decimal(14,2);not null"`
	TotalTransfer        decimal.Decimal     `gorm:"type:decimal(14,2);not null"`
	TotalOther           decimal.Decimal     `gorm:"type:decimal(14,2);not null"`
	GrandTotal           decimal.Decimal     `gorm:"type:decimal(14,2);not null"`
	Notes                string              `gorm:"type:text"`
	CreatedBy            uuid.UUID           `gorm:"type:uuid;not null"`
	ClosedBy             *uuid.UUID          `gorm:"type:uuid"`
	ClosedAt             *time.Time
	ReopenedBy           *uuid.UUID `gorm:"type:uuid"`
	ReopenedAt           *time.Time
}

// TableName returns the table name for GORM
func (DailyModel) TableName() string {
	return "cashier_daily"
}

// ToDomain converts the persistence model to a domain DailyAggregate.
func (m *DailyModel) ToDomain() *cashier.DailyAggregate {
	return &cashier.DailyAggregate{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Date:              cashier.NormalizeDate(m.Date),
		Totals: cashier.DailyTotals{
			Cash:            valueobject.NewMoney(m.TotalCash),
			Card:            valueobject.NewMoney(m.TotalCard),
			BankDirectDebit: valueobject.NewMoney(m.TotalBankDirectDebit),
			WebPayment:      valueobject.NewMoney(m.TotalWebPayment),
			Transfer:        valueobject.NewMoney(m.TotalTransfer),
			Other:           valueobject.NewMoney(m.TotalOther),
			GrandTotal:      valueobject.NewMoney(m.GrandTotal),
		},
		Status:     m.Status,
		Notes:      m.Notes,
		CreatedBy:  m.CreatedBy,
		ClosedBy:   m.ClosedBy,
		ClosedAt:   m.ClosedAt,
		ReopenedBy: m.ReopenedBy,
		ReopenedAt: m.ReopenedAt,
	}
}

// FromDomain populates the persistence model from a domain DailyAggregate.
func (m *DailyModel) FromDomain(d *cashier.DailyAggregate) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.Date = cashier.NormalizeDate(d.Date)
	m.Status = d.Status
	m.TotalCash = d.Totals.Cash.Amount()
	m.TotalCard = d.Totals.Card.Amount()
	m.TotalBankDirectDebit = d.Totals.BankDirectDebit.Amount()
	m.TotalWebPayment = d.Totals.WebPayment.Amount()
	m.TotalTransfer = d.Totals.Transfer.Amount()
	m.TotalOther = d.Totals.Other.Amount()
	m.GrandTotal = d.Totals.GrandTotal.Amount()
	m.Notes = d.Notes
	m.CreatedBy = d.CreatedBy
	m.ClosedBy = d.ClosedBy
	m.ClosedAt = d.ClosedAt
	m.ReopenedBy = d.ReopenedBy
	m.ReopenedAt = d.ReopenedAt
}

// DailyModelFromDomain creates a new persistence model from a domain DailyAggregate.
func DailyModelFromDomain(d *cashier.DailyAggregate) *DailyModel {
	m := &DailyModel{}
	m.FromDomain(d)
	return m
}

// IncomeBreakdownJSON stores the per-category income as a JSON object
type IncomeBreakdownJSON map[string]decimal.Decimal

// Value implements driver.Valuer
func (b IncomeBreakdownJSON) Value() (driver.Value, error) {
	if b == nil {
		return "{}", nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (b *IncomeBreakdownJSON) Scan(value any) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*b = IncomeBreakdownJSON{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into IncomeBreakdownJSON", value)
	}
	out := IncomeBreakdownJSON{}
	if err := json.Unmarshal(data, &out); err != nil {
		return errors.Join(errors.New("invalid income breakdown"), err)
	}
	*b = out
	return nil
}

// ShiftModel is the persistence model for the Shift aggregate root.
type ShiftModel struct {
	AggregateModel
	DailyID         uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_cashier_shift_daily_type,priority:1"`
	ShiftDate       time.Time           `gorm:"type:date;not null;index"`
	ShiftType       cashier.ShiftType   `gorm:"type:varchar(20);not null;uniqueIndex:idx_cashier_shift_daily_type,priority:2"`
	Status          cashier.ShiftStatus `gorm:"type:varchar(20);not null;default:'open';index"`
	InitialFund     decimal.Decimal     `gorm:"type:decimal(14,2);not null"`
	Income          decimal.Decimal     `gorm:"type:decimal(14,2);not null"`
	IncomeBreakdown IncomeBreakdownJSON `gorm:"type:jsonb;not null;default:'{}'"`
	VouchersDrawn   decimal.Decimal     `gorm:"type:decimal(14,2);not null"`
	CashCounted     decimal.Decimal     `gorm:"type:decimal(14,2);not null"`
	CashExpected    decimal.Decimal     `gorm:"type:decimal(14,2);not null"`
	Difference      decimal.Decimal     `gorm:"type:decimal(14,2);not null"`
	PaymentsTotal   decimal.Decimal     `gorm:"type:decimal(14,2);not null"`
	GrandTotal      decimal.Decimal     `gorm:"type:decimal(14,2);not null"`
	HasDiscrepancy  bool                `gorm:"not null;default:false"`
	Tolerance       decimal.Decimal     `gorm:"type:decimal(14,2);not null"`
	Notes           string              `gorm:"type:text"`
	OpenedBy        uuid.UUID           `gorm:"type:uuid;not null"`
	ClosedBy        *uuid.UUID          `gorm:"type:uuid"`
	ClosedAt        *time.Time
	AuditedBy       *uuid.UUID `gorm:"type:uuid"`
	AuditedAt       *time.Time
	Users           []ShiftUserModel        `gorm:"foreignKey:ShiftID;references:ID"`
	Denominations   []DenominationLineModel `gorm:"foreignKey:ShiftID;references:ID"`
	Payments        []PaymentLineModel      `gorm:"foreignKey:ShiftID;references:ID"`
}

// TableName returns the table name for GORM
func (ShiftModel) TableName() string {
	return "cashier_shift"
}

// ToDomain converts the persistence model to a domain Shift.
func (m *ShiftModel) ToDomain() *cashier.Shift {
	breakdown := make(cashier.IncomeBreakdown, len(m.IncomeBreakdown))
	for k, v := range m.IncomeBreakdown {
		breakdown[cashier.IncomeCategory(k)] = valueobject.NewMoney(v)
	}
	users := make([]cashier.ShiftUser, 0, len(m.Users))
	for _, u := range m.Users {
		users = append(users, u.ToDomain())
	}
	denominations := make([]cashier.DenominationLine, 0, len(m.Denominations))
	for _, l := range m.Denominations {
		denominations = append(denominations, l.ToDomain())
	}
	payments := make([]cashier.PaymentLine, 0, len(m.Payments))
	for _, l := range m.Payments {
		payments = append(payments, l.ToDomain())
	}

	return &cashier.Shift{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		DailyID:           m.DailyID,
		ShiftDate:         cashier.NormalizeDate(m.ShiftDate),
		ShiftType:         m.ShiftType,
		Status:            m.Status,
		InitialFund:       valueobject.NewMoney(m.InitialFund),
		Income:            valueobject.NewMoney(m.Income),
		IncomeBreakdown:   breakdown,
		VouchersDrawn:     valueobject.NewMoney(m.VouchersDrawn),
		CashCounted:       valueobject.NewMoney(m.CashCounted),
		CashExpected:      valueobject.NewMoney(m.CashExpected),
		Difference:        valueobject.NewMoney(m.Difference),
		PaymentsTotal:     valueobject.NewMoney(m.PaymentsTotal),
		GrandTotal:        valueobject.NewMoney(m.GrandTotal),
		HasDiscrepancy:    m.HasDiscrepancy,
		Tolerance:         valueobject.NewMoney(m.Tolerance),
		Notes:             m.Notes,
		OpenedBy:          m.OpenedBy,
		ClosedBy:          m.ClosedBy,
		ClosedAt:          m.ClosedAt,
		AuditedBy:         m.AuditedBy,
		AuditedAt:         m.AuditedAt,
		Users:             users,
		Denominations:     denominations,
		Payments:          payments,
	}
}

// FromDomain populates the persistence model from a domain Shift, child rows included.
func (m *ShiftModel) FromDomain(s *cashier.Shift) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.DailyID = s.DailyID
	m.ShiftDate = cashier.NormalizeDate(s.ShiftDate)
	m.ShiftType = s.ShiftType
	m.Status = s.Status
	m.InitialFund = s.InitialFund.Amount()
	m.Income = s.Income.Amount()
	m.IncomeBreakdown = make(IncomeBreakdownJSON, len(s.IncomeBreakdown))
	for k, v := range s.IncomeBreakdown {
		m.IncomeBreakdown[string(k)] = v.Amount()
	}
	m.VouchersDrawn = s.VouchersDrawn.Amount()
	m.CashCounted = s.CashCounted.Amount()
	m.CashExpected = s.CashExpected.Amount()
	m.Difference = s.Difference.Amount()
	m.PaymentsTotal = s.PaymentsTotal.Amount()
	m.GrandTotal = s.GrandTotal.Amount()
	m.HasDiscrepancy = s.HasDiscrepancy
	m.Tolerance = s.Tolerance.Amount()
	m.Notes = s.Notes
	m.OpenedBy = s.OpenedBy
	m.ClosedBy = s.ClosedBy
	m.ClosedAt = s.ClosedAt
	m.AuditedBy = s.AuditedBy
	m.AuditedAt = s.AuditedAt

	m.Users = make([]ShiftUserModel, 0, len(s.Users))
	for _, u := range s.Users {
		m.Users = append(m.Users, ShiftUserModel{ID: uuid.New(), ShiftID: s.ID, UserID: u.UserID, IsPrimary: u.Primary})
	}
	m.Denominations = make([]DenominationLineModel, 0, len(s.Denominations))
	for i, l := range s.Denominations {
		m.Denominations = append(m.Denominations, DenominationLineModel{
			ID:           uuid.New(),
			ShiftID:      s.ID,
			Position:     i,
			Denomination: l.Denomination.Amount(),
			Quantity:     l.Quantity,
			Subtotal:     l.Subtotal().Amount(),
		})
	}
	m.Payments = make([]PaymentLineModel, 0, len(s.Payments))
	for i, l := range s.Payments {
		m.Payments = append(m.Payments, PaymentLineModel{
			ID:        uuid.New(),
			ShiftID:   s.ID,
			Position:  i,
			Method:    l.Method,
			Amount:    l.Amount.Amount(),
			Reference: l.Reference,
		})
	}
}

// ShiftModelFromDomain creates a new persistence model from a domain Shift.
func ShiftModelFromDomain(s *cashier.Shift) *ShiftModel {
	m := &ShiftModel{}
	m.FromDomain(s)
	return m
}

// ShiftUserModel attributes a user to a shift
type ShiftUserModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	ShiftID   uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	IsPrimary bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ShiftUserModel) TableName() string {
	return "cashier_shift_user"
}

// ToDomain converts the row to a domain ShiftUser
func (m ShiftUserModel) ToDomain() cashier.ShiftUser {
	return cashier.ShiftUser{UserID: m.UserID, Primary: m.IsPrimary}
}

// DenominationLineModel is one counted denomination of a shift
type DenominationLineModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	ShiftID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position     int             `gorm:"not null"`
	Denomination decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Quantity     int64           `gorm:"not null"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// TableName returns the table name for GORM
func (DenominationLineModel) TableName() string {
	return "cashier_denomination_line"
}

// ToDomain converts the row to a domain DenominationLine
func (m DenominationLineModel) ToDomain() cashier.DenominationLine {
	return cashier.DenominationLine{
		Denomination: valueobject.NewMoney(m.Denomination),
		Quantity:     m.Quantity,
	}
}

// PaymentLineModel is one non-cash payment of a shift
type PaymentLineModel struct {
	ID        uuid.UUID             `gorm:"type:uuid;primary_key"`
	ShiftID   uuid.UUID             `gorm:"type:uuid;not null;index"`
	Position  int                   `gorm:"not null"`
	Method    cashier.PaymentMethod `gorm:"type:varchar(30);not null"`
	Amount    decimal.Decimal       `gorm:"type:decimal(14,2);not null"`
	Reference string                `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (PaymentLineModel) TableName() string {
	return "cashier_payment_line"
}

// ToDomain converts the row to a domain PaymentLine
func (m PaymentLineModel) ToDomain() cashier.PaymentLine {
	return cashier.PaymentLine{
		Method:    m.Method,
		Amount:    valueobject.NewMoney(m.Amount),
		Reference: m.Reference,
	}
}

// VoucherModel is the persistence model for the Voucher aggregate root.
type VoucherModel struct {
	AggregateModel
	ShiftID          *uuid.UUID            `gorm:"type:uuid;index"`
	Amount           decimal.Decimal       `gorm:"type:decimal(14,2);not null"`
	Reason           string                `gorm:"type:varchar(500);not null"`
	Status           cashier.VoucherStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	Notes            string                `gorm:"type:text"`
	CreatedBy        uuid.UUID             `gorm:"type:uuid;not null"`
	JustifiedShiftID *uuid.UUID            `gorm:"type:uuid;index"`
	JustifiedBy      *uuid.UUID            `gorm:"type:uuid"`
	JustifiedAt      *time.Time
	CancelledBy      *uuid.UUID `gorm:"type:uuid"`
	CancelledAt      *time.Time
	CancelReason     string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (VoucherModel) TableName() string {
	return "cashier_voucher"
}

// ToDomain converts the persistence model to a domain Voucher.
func (m *VoucherModel) ToDomain() *cashier.Voucher {
	return &cashier.Voucher{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Amount:            valueobject.NewMoney(m.Amount),
		Reason:            m.Reason,
		Status:            m.Status,
		Notes:             m.Notes,
		CreatedBy:         m.CreatedBy,
		ShiftID:           m.ShiftID,
		JustifiedShiftID:  m.JustifiedShiftID,
		JustifiedBy:       m.JustifiedBy,
		JustifiedAt:       m.JustifiedAt,
		CancelledBy:       m.CancelledBy,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
	}
}

// FromDomain populates the persistence model from a domain Voucher.
func (m *VoucherModel) FromDomain(v *cashier.Voucher) {
	m.FromDomainAggregateRoot(v.BaseAggregateRoot)
	m.ShiftID = v.ShiftID
	m.Amount = v.Amount.Amount()
	m.Reason = v.Reason
	m.Status = v.Status
	m.Notes = v.Notes
	m.CreatedBy = v.CreatedBy
	m.JustifiedShiftID = v.JustifiedShiftID
	m.JustifiedBy = v.JustifiedBy
	m.JustifiedAt = v.JustifiedAt
	m.CancelledBy = v.CancelledBy
	m.CancelledAt = v.CancelledAt
	m.CancelReason = v.CancelReason
}

// VoucherModelFromDomain creates a new persistence model from a domain Voucher.
func VoucherModelFromDomain(v *cashier.Voucher) *VoucherModel {
	m := &VoucherModel{}
	m.FromDomain(v)
	return m
}

// HistoryModel is one row of the append-only audit log
type HistoryModel struct {
	ID            uuid.UUID             `gorm:"type:uuid;primary_key"`
	ShiftID       *uuid.UUID            `gorm:"type:uuid;index"`
	Action        cashier.HistoryAction `gorm:"type:varchar(30);not null;index"`
	TableAffected string                `gorm:"type:varchar(40);not null"`
	RecordID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	FieldChanged  string                `gorm:"type:varchar(100)"`
	OldValue      string                `gorm:"type:text"`
	NewValue      string                `gorm:"type:text"`
	ChangedBy     uuid.UUID             `gorm:"type:uuid;not null"`
	ChangedAt     time.Time             `gorm:"not null;index"`
	Notes         string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (HistoryModel) TableName() string {
	return "cashier_history"
}

// ToDomain converts the row to a domain HistoryEntry
func (m *HistoryModel) ToDomain() *cashier.HistoryEntry {
	return &cashier.HistoryEntry{
		ID:            m.ID,
		ShiftID:       m.ShiftID,
		Action:        m.Action,
		TableAffected: m.TableAffected,
		RecordID:      m.RecordID,
		FieldChanged:  m.FieldChanged,
		OldValue:      m.OldValue,
		NewValue:      m.NewValue,
		ChangedBy:     m.ChangedBy,
		ChangedAt:     m.ChangedAt,
		Notes:         m.Notes,
	}
}

// HistoryModelFromDomain creates a row from a domain HistoryEntry
func HistoryModelFromDomain(e *cashier.HistoryEntry) *HistoryModel {
	return &HistoryModel{
		ID:            e.ID,
		ShiftID:       e.ShiftID,
		Action:        e.Action,
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

// CashierModels lists every cashier model, in dependency order, for AutoMigrate
func CashierModels() []any {
	return []any{
		&DailyModel{},
		&ShiftModel{},
		&ShiftUserModel{},
		&DenominationLineModel{},
		&PaymentLineModel{},
		&VoucherModel{},
		&HistoryModel{},
	}
}
