package cashier

import (
	"context"

	"github.com/google/uuid"
	"github.com/hotelops/backend/internal/domain/cashier"
	"go.uber.org/zap"
)

// ShiftService applies shift mutations. Each call runs in one transaction
// that saves the shift, its history and the recomputed day totals.
type ShiftService struct {
	scope   TransactionScope
	opts    Options
	logger  *zap.Logger
	metrics Metrics
	cache   invalidator
}

// NewShiftService creates a new ShiftService
func NewShiftService(scope TransactionScope, opts Options) *ShiftService {
	opts = opts.withDefaults()
	return &ShiftService{
		scope:   scope,
		opts:    opts,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		cache:   invalidator{cache: opts.ReportCache, logger: opts.Logger},
	}
}

// GetShift returns a shift with its lines and users
func (s *ShiftService) GetShift(ctx context.Context, id uuid.UUID) (*ShiftResponse, error) {
	var resp ShiftResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		shift, err := repos.ShiftRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = toShiftResponse(shift)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateIncome stores income and its per-category breakdown
func (s *ShiftService) UpdateIncome(ctx context.Context, id uuid.UUID, req UpdateIncomeRequest) (*ShiftResponse, error) {
	breakdown := make(cashier.IncomeBreakdown, len(req.IncomeBreakdown))
	for k, v := range req.IncomeBreakdown {
		breakdown[cashier.IncomeCategory(k)] = v
	}
	return s.mutate(ctx, id, "Shift income updated", func(shift *cashier.Shift) error {
		return shift.UpdateIncome(req.Income, breakdown, req.ChangedBy)
	})
}

// SetDenominations replaces the counted denominations of a shift
func (s *ShiftService) SetDenominations(ctx context.Context, id uuid.UUID, req SetDenominationsRequest) (*ShiftResponse, error) {
	lines := make([]cashier.DenominationLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, cashier.DenominationLine{Denomination: l.Denomination, Quantity: l.Quantity})
	}
	return s.mutate(ctx, id, "Shift denominations replaced", func(shift *cashier.Shift) error {
		return shift.SetDenominations(lines, req.ChangedBy)
	})
}

// SetPayments replaces the non-cash payment breakdown of a shift
func (s *ShiftService) SetPayments(ctx context.Context, id uuid.UUID, req SetPaymentsRequest) (*ShiftResponse, error) {
	lines := make([]cashier.PaymentLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, cashier.PaymentLine{
			Method:    cashier.PaymentMethod(l.Method),
			Amount:    l.Amount,
			Reference: l.Reference,
		})
	}
	return s.mutate(ctx, id, "Shift payments replaced", func(shift *cashier.Shift) error {
		return shift.SetPayments(lines, req.ChangedBy)
	})
}

// AssignUsers replaces the users attributed to a shift
func (s *ShiftService) AssignUsers(ctx context.Context, id uuid.UUID, req AssignUsersRequest) (*ShiftResponse, error) {
	return s.mutate(ctx, id, "Shift users assigned", func(shift *cashier.Shift) error {
		return shift.AssignUsers(req.PrimaryUserID, req.SecondaryUserIDs, req.ChangedBy)
	})
}

// UpdateNotes replaces the notes of a shift
func (s *ShiftService) UpdateNotes(ctx context.Context, id uuid.UUID, req UpdateNotesRequest) (*ShiftResponse, error) {
	return s.mutate(ctx, id, "Shift notes updated", func(shift *cashier.Shift) error {
		return shift.UpdateNotes(req.Notes, req.ChangedBy)
	})
}

// Close settles a shift under the configured close policy
func (s *ShiftService) Close(ctx context.Context, id uuid.UUID, req CloseShiftRequest) (*ShiftResponse, error) {
	resp, err := s.mutate(ctx, id, "Shift closed", func(shift *cashier.Shift) error {
		return shift.Close(req.ClosedBy, s.opts.Policy, req.Notes)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ShiftClosed(ctx, resp.ShiftType, resp.HasDiscrepancy)
	if resp.HasDiscrepancy {
		s.logger.Warn("Shift closed with discrepancy",
			zap.String("shift_id", resp.ID.String()),
			zap.String("difference", resp.Difference.String()),
			zap.String("tolerance", resp.Tolerance.String()))
	}
	return resp, nil
}

// Reopen moves a closed shift back to in_progress
func (s *ShiftService) Reopen(ctx context.Context, id uuid.UUID, req ReopenRequest) (*ShiftResponse, error) {
	return s.mutate(ctx, id, "Shift reopened", func(shift *cashier.Shift) error {
		return shift.Reopen(req.Reason, req.ChangedBy)
	})
}

// Audit freezes a closed shift for good
func (s *ShiftService) Audit(ctx context.Context, id uuid.UUID, auditedBy uuid.UUID) (*ShiftResponse, error) {
	return s.mutate(ctx, id, "Shift audited", func(shift *cashier.Shift) error {
		return shift.Audit(auditedBy)
	})
}

// mutate loads a shift on an open day, applies fn and commits the shift,
// its history and the day totals together.
func (s *ShiftService) mutate(ctx context.Context, id uuid.UUID, msg string, fn func(*cashier.Shift) error) (*ShiftResponse, error) {
	var shift *cashier.Shift
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		loaded, day, err := loadShiftOnOpenDay(ctx, repos, id)
		if err != nil {
			return err
		}
		if err := fn(loaded); err != nil {
			return err
		}
		if err := saveShiftsAndTotals(ctx, repos, day, loaded); err != nil {
			return err
		}
		shift = loaded
		return nil
	})
	if err != nil {
		logRejected(ctx, s.logger, s.metrics, "shift", msg+": rejected", err, zap.String("shift_id", id.String()))
		return nil, err
	}

	s.cache.invalidate(ctx, shift.ShiftDate)
	s.logger.Info(msg,
		zap.String("shift_id", shift.ID.String()),
		zap.String("date", cashier.FormatDate(shift.ShiftDate)),
		zap.String("status", string(shift.Status)),
		zap.Int("version", shift.Version))

	resp := toShiftResponse(shift)
	return &resp, nil
}
