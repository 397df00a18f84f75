package cashier

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/hotelops/backend/internal/domain/shared"
	"github.com/hotelops/backend/internal/domain/shared/valueobject"
)

// PaymentMethod is a non-cash settlement channel recorded on a shift.
// Physical cash is never a payment line; it is counted through denominations.
type PaymentMethod string

const (
	PaymentMethodCard            PaymentMethod = "card"
	PaymentMethodBankDirectDebit PaymentMethod = "bank_direct_debit"
	PaymentMethodWebPayment      PaymentMethod = "web_payment"
	PaymentMethodTransfer        PaymentMethod = "transfer"
	PaymentMethodOther           PaymentMethod = "other"
)

// AllPaymentMethods lists the methods in reporting order.
var AllPaymentMethods = []PaymentMethod{
	PaymentMethodCard,
	PaymentMethodBankDirectDebit,
	PaymentMethodWebPayment,
	PaymentMethodTransfer,
	PaymentMethodOther,
}

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodBankDirectDebit, PaymentMethodWebPayment,
		PaymentMethodTransfer, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// IncomeCategory is one of the fixed keys of a shift's income breakdown
type IncomeCategory string

const (
	IncomeCategoryAccommodation IncomeCategory = "accommodation"
	IncomeCategoryRestaurant    IncomeCategory = "restaurant"
	IncomeCategoryBar           IncomeCategory = "bar"
	IncomeCategoryMinibar       IncomeCategory = "minibar"
	IncomeCategoryParking       IncomeCategory = "parking"
	IncomeCategoryLaundry       IncomeCategory = "laundry"
	IncomeCategoryOther         IncomeCategory = "other"
)

// AllIncomeCategories lists the categories in display order.
var AllIncomeCategories = []IncomeCategory{
	IncomeCategoryAccommodation,
	IncomeCategoryRestaurant,
	IncomeCategoryBar,
	IncomeCategoryMinibar,
	IncomeCategoryParking,
	IncomeCategoryLaundry,
	IncomeCategoryOther,
}

// IsValid checks if the category is part of the fixed set
func (c IncomeCategory) IsValid() bool {
	for _, known := range AllIncomeCategories {
		if c == known {
			return true
		}
	}
	return false
}

// String returns the string representation of IncomeCategory
func (c IncomeCategory) String() string {
	return string(c)
}

// IncomeBreakdown maps each income category to its amount.
type IncomeBreakdown map[IncomeCategory]valueobject.Money

// Total sums every category.
func (b IncomeBreakdown) Total() valueobject.Money {
	total := valueobject.Zero()
	for _, amount := range b {
		total = total.Add(amount)
	}
	return total
}

// Validate checks keys and amounts. A non-empty breakdown must add up to income exactly.
func (b IncomeBreakdown) Validate(income valueobject.Money) error {
	for category, amount := range b {
		if !category.IsValid() {
			return shared.NewValidationError("unknown income category %q", category)
		}
		if err := amount.RequireNonNegative(); err != nil {
			return shared.NewValidationError("income category %s: %v", category, err)
		}
	}
	if len(b) > 0 && !b.Total().Equals(income) {
		return shared.NewValidationError("income breakdown totals %s but income is %s", b.Total(), income)
	}
	return nil
}

// Clone returns an independent copy
func (b IncomeBreakdown) Clone() IncomeBreakdown {
	out := make(IncomeBreakdown, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// DenominationLine is the count of one face value of physical currency.
type DenominationLine struct {
	Denomination valueobject.Money `json:"denomination"`
	Quantity     int64             `json:"quantity"`
}

// Subtotal returns denomination x quantity
func (l DenominationLine) Subtotal() valueobject.Money {
	return l.Denomination.MultiplyByInt(l.Quantity)
}

// ValidateDenominations checks a full denomination set. Face values must be
// positive and unique; quantities must not be negative.
func ValidateDenominations(lines []DenominationLine) error {
	seen := make(map[string]struct{}, len(lines))
	for i, l := range lines {
		if !l.Denomination.IsPositive() || !l.Denomination.HasValidScale() {
			return shared.NewValidationError("line %d: denomination must be a positive amount with at most two decimals", i+1)
		}
		if l.Quantity < 0 {
			return shared.NewValidationError("line %d: quantity cannot be negative", i+1)
		}
		if !l.Subtotal().InRange() {
			return shared.NewValidationError("line %d: %s x %d exceeds the maximum amount", i+1, l.Denomination, l.Quantity)
		}
		key := l.Denomination.String()
		if _, dup := seen[key]; dup {
			return shared.NewValidationError("denomination %s appears more than once", key)
		}
		seen[key] = struct{}{}
	}
	if !SumDenominations(lines).InRange() {
		return shared.NewValidationError("counted cash exceeds the maximum amount")
	}
	return nil
}

// SumDenominations returns the counted cash of a denomination set
func SumDenominations(lines []DenominationLine) valueobject.Money {
	total := valueobject.Zero()
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// PaymentLine is one non-cash settlement amount on a shift.
type PaymentLine struct {
	Method    PaymentMethod     `json:"method"`
	Amount    valueobject.Money `json:"amount"`
	Reference string            `json:"reference,omitempty"`
}

// ValidatePayments checks a full payment set
func ValidatePayments(lines []PaymentLine) error {
	for i, l := range lines {
		if !l.Method.IsValid() {
			return shared.NewValidationError("line %d: unknown payment method %q", i+1, l.Method)
		}
		if err := l.Amount.RequireNonNegative(); err != nil {
			return shared.NewValidationError("line %d: %v", i+1, err)
		}
		if len(l.Reference) > 100 {
			return shared.NewValidationError("line %d: reference cannot exceed 100 characters", i+1)
		}
	}
	if !SumPayments(lines).InRange() {
		return shared.NewValidationError("payments total exceeds the maximum amount")
	}
	return nil
}

// SumPayments returns the total of all payment lines
func SumPayments(lines []PaymentLine) valueobject.Money {
	total := valueobject.Zero()
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return total
}

// PaymentTotalsByMethod groups payment lines by method. Every method is present.
func PaymentTotalsByMethod(lines []PaymentLine) map[PaymentMethod]valueobject.Money {
	totals := make(map[PaymentMethod]valueobject.Money, len(AllPaymentMethods))
	for _, m := range AllPaymentMethods {
		totals[m] = valueobject.Zero()
	}
	for _, l := range lines {
		totals[l.Method] = totals[l.Method].Add(l.Amount)
	}
	return totals
}

// ShiftUser attributes a user to a shift. Exactly one per shift is primary.
type ShiftUser struct {
	UserID  uuid.UUID `json:"user_id"`
	Primary bool      `json:"primary"`
}

// BuildShiftUsers validates a primary/secondary split and returns the attribution list.
func BuildShiftUsers(primary uuid.UUID, secondary []uuid.UUID) ([]ShiftUser, error) {
	if primary == uuid.Nil {
		return nil, shared.NewValidationError("primary user is required")
	}
	users := []ShiftUser{{UserID: primary, Primary: true}}
	seen := map[uuid.UUID]struct{}{primary: {}}
	for _, id := range secondary {
		if id == uuid.Nil {
			return nil, shared.NewValidationError("secondary user id cannot be empty")
		}
		if _, dup := seen[id]; dup {
			return nil, shared.NewValidationError("user %s is attributed more than once", id)
		}
		seen[id] = struct{}{}
		users = append(users, ShiftUser{UserID: id})
	}
	return users, nil
}

// validateShiftUsers checks the exactly-one-primary rule on a stored list
func validateShiftUsers(users []ShiftUser) error {
	primaries := 0
	for _, u := range users {
		if u.Primary {
			primaries++
		}
	}
	if primaries != 1 {
		return shared.NewValidationError("shift must have exactly one primary user, has %d", primaries)
	}
	return nil
}

// snapshot renders a value as compact JSON for history old/new values.
func snapshot(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func joinNonEmpty(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "; ")
}
