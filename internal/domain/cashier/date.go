package cashier

import (
	"time"

	"github.com/hotelops/backend/internal/domain/shared"
)

// DateLayout is the wire format of a business date
const DateLayout = "2006-01-02"

// ParseBusinessDate parses YYYY-MM-DD into a UTC midnight time.
func ParseBusinessDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, shared.NewValidationError("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// NormalizeDate drops the clock part so a date compares equal regardless of
// how it was obtained.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a business date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// MonthRange returns the first and last day of a calendar month.
func MonthRange(year int, month time.Month) (time.Time, time.Time, error) {
	if year < 2000 || year > 2999 {
		return time.Time{}, time.Time{}, shared.NewValidationError("year %d is out of range", year)
	}
	if month < time.January || month > time.December {
		return time.Time{}, time.Time{}, shared.NewValidationError("month %d is out of range", month)
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last, nil
}
