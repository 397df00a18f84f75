package valueobject

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits an amount may carry.
const MoneyScale int32 = 2

// ErrMoneyScale is returned when an amount has more fractional digits than MoneyScale.
var ErrMoneyScale = fmt.Errorf("amount has more than %d decimal places", MoneyScale)

// MaxAmount is the exclusive magnitude bound of an amount. It matches the
// NUMERIC(14,2) columns amounts are stored in.
var MaxAmount = decimal.New(1, 12)

var (
	// ErrMoneyRange is returned when |amount| >= MaxAmount.
	ErrMoneyRange = fmt.Errorf("amount must be below %s in magnitude", MaxAmount.StringFixed(0))
	// ErrMoneyFormat is returned for amounts written in exponent notation.
	ErrMoneyFormat = errors.New("amount must be a plain decimal number")
)

// Money is a value object representing a monetary amount in the house currency.
// It is immutable - all operations return new Money instances. Arithmetic is
// exact decimal; binary floating point is never involved.
type Money struct {
	amount decimal.Decimal
}

// NewMoney creates Money from a decimal amount
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// NewMoneyFromInt creates Money from a whole amount
func NewMoneyFromInt(amount int64) Money {
	return Money{amount: decimal.NewFromInt(amount)}
}

// NewMoneyFromCents creates Money from an amount in minor units
func NewMoneyFromCents(cents int64) Money {
	return Money{amount: decimal.New(cents, -MoneyScale)}
}

// NewMoneyFromString parses an amount such as "200.00". Amounts with more than
// two fractional digits are rejected rather than rounded, and so are exponent
// forms and amounts outside MaxAmount.
func NewMoneyFromString(amount string) (Money, error) {
	if strings.ContainsAny(amount, "eE") {
		return Money{}, ErrMoneyFormat
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	m := Money{amount: d}
	if !m.InRange() {
		return Money{}, ErrMoneyRange
	}
	if !m.HasValidScale() {
		return Money{}, ErrMoneyScale
	}
	return m, nil
}

// MustMoney parses an amount and panics on error. Intended for constants and tests.
func MustMoney(amount string) Money {
	m, err := NewMoneyFromString(amount)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero amount
func Zero() Money {
	return Money{amount: decimal.Zero}
}

// Sum adds all values together.
func Sum(values ...Money) Money {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v.amount)
	}
	return Money{amount: total}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// HasValidScale reports whether the amount fits in MoneyScale fractional digits.
func (m Money) HasValidScale() bool {
	return m.amount.Equal(m.amount.Truncate(MoneyScale))
}

// InRange reports whether |amount| < MaxAmount.
func (m Money) InRange() bool {
	return m.amount.Abs().LessThan(MaxAmount)
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Add returns the sum of both amounts
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Subtract returns the difference m - other. The result may be negative.
func (m Money) Subtract(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

// MultiplyByInt returns the amount multiplied by an integer quantity
func (m Money) MultiplyByInt(factor int64) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(factor))}
}

// Negate returns the amount with the sign reversed
func (m Money) Negate() Money {
	return Money{amount: m.amount.Neg()}
}

// Abs returns the absolute value
func (m Money) Abs() Money {
	return Money{amount: m.amount.Abs()}
}

// Equals compares amounts numerically, so 1.5 equals 1.50.
func (m Money) Equals(other Money) bool {
	return m.amount.Equal(other.amount)
}

// LessThan returns true if this Money is less than the other
func (m Money) LessThan(other Money) bool {
	return m.amount.LessThan(other.amount)
}

// GreaterThan returns true if this Money is greater than the other
func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

// GreaterThanOrEqual returns true if this Money is greater than or equal to the other
func (m Money) GreaterThanOrEqual(other Money) bool {
	return m.amount.GreaterThanOrEqual(other.amount)
}

// Cmp compares two amounts and returns -1, 0 or +1.
func (m Money) Cmp(other Money) int {
	return m.amount.Cmp(other.amount)
}

// String renders the amount with two fixed decimals, e.g. "-20.00".
func (m Money) String() string {
	return m.amount.StringFixed(MoneyScale)
}

// MarshalJSON encodes the amount as a JSON string so clients never parse it as a float.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts both "12.50" and 12.50. Numbers are read from their
// literal text, never through float64.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		m.amount = decimal.Zero
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	parsed, err := NewMoneyFromString(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer for database storage
func (m Money) Value() (driver.Value, error) {
	return m.amount.StringFixed(MoneyScale), nil
}

// Scan implements sql.Scanner for database retrieval
func (m *Money) Scan(value any) error {
	if value == nil {
		m.amount = decimal.Zero
		return nil
	}

	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	case int64:
		m.amount = decimal.NewFromInt(v)
		return nil
	case float64:
		// Some drivers (sqlite) hand NUMERIC back as REAL; round back to cents.
		m.amount = decimal.NewFromFloat(v).Round(MoneyScale)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}

	amount, err := decimal.NewFromString(strVal)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	m.amount = amount
	return nil
}

// ErrNegativeAmount is returned by RequireNonNegative.
var ErrNegativeAmount = errors.New("amount cannot be negative")

// RequireNonNegative validates an amount that must not be below zero.
func (m Money) RequireNonNegative() error {
	if m.IsNegative() {
		return ErrNegativeAmount
	}
	if !m.InRange() {
		return ErrMoneyRange
	}
	if !m.HasValidScale() {
		return ErrMoneyScale
	}
	return nil
}
