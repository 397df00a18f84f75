package cashier

import (
	"github.com/hotelops/backend/internal/domain/shared"
	"github.com/hotelops/backend/internal/domain/shared/valueobject"
)

// ClosePolicy decides how a cash difference is treated when a shift closes.
//
// A difference whose absolute value exceeds Tolerance flags the shift with
// has_discrepancy but does not block the close. When BlockThreshold is positive
// and the difference exceeds it, the close requires explanatory notes.
type ClosePolicy struct {
	Tolerance      valueobject.Money
	BlockThreshold valueobject.Money
}

// DefaultClosePolicy has zero tolerance and no notes requirement
func DefaultClosePolicy() ClosePolicy {
	return ClosePolicy{
		Tolerance:      valueobject.Zero(),
		BlockThreshold: valueobject.Zero(),
	}
}

// Validate checks the policy values
func (p ClosePolicy) Validate() error {
	if err := p.Tolerance.RequireNonNegative(); err != nil {
		return shared.NewValidationError("tolerance: %v", err)
	}
	if err := p.BlockThreshold.RequireNonNegative(); err != nil {
		return shared.NewValidationError("block threshold: %v", err)
	}
	if p.BlockThreshold.IsPositive() && p.BlockThreshold.LessThan(p.Tolerance) {
		return shared.NewValidationError("block threshold %s is below tolerance %s", p.BlockThreshold, p.Tolerance)
	}
	return nil
}

// IsDiscrepancy reports whether a difference is beyond tolerance
func (p ClosePolicy) IsDiscrepancy(difference valueobject.Money) bool {
	return difference.Abs().GreaterThan(p.Tolerance)
}

// RequiresNotes reports whether closing with this difference needs an explanation
func (p ClosePolicy) RequiresNotes(difference valueobject.Money) bool {
	return p.BlockThreshold.IsPositive() && difference.Abs().GreaterThan(p.BlockThreshold)
}
