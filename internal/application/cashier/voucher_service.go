package cashier

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hotelops/backend/internal/domain/cashier"
	"github.com/hotelops/backend/internal/domain/shared"
	"github.com/hotelops/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// VoucherService manages the voucher sub-ledger
type VoucherService struct {
	scope   TransactionScope
	logger  *zap.Logger
	metrics Metrics
	cache   invalidator
}

// NewVoucherService creates a new VoucherService
func NewVoucherService(scope TransactionScope, opts Options) *VoucherService {
	opts = opts.withDefaults()
	return &VoucherService{
		scope:   scope,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		cache:   invalidator{cache: opts.ReportCache, logger: opts.Logger},
	}
}

// Create draws a pending voucher. When a shift is given the amount leaves
// that drawer and its expected cash drops accordingly.
func (s *VoucherService) Create(ctx context.Context, req CreateVoucherRequest) (*VoucherResponse, error) {
	var (
		voucher *cashier.Voucher
		touched []time.Time
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		voucher, err = cashier.NewVoucher(req.ShiftID, req.Amount, req.Reason, req.Notes, req.CreatedBy)
		if err != nil {
			return err
		}
		if voucher.ShiftID == nil {
			if err := repos.VoucherRepo().Create(ctx, voucher); err != nil {
				return err
			}
			return appendHistory(ctx, repos, voucher)
		}

		shift, day, err := loadShiftOnOpenDay(ctx, repos, *voucher.ShiftID)
		if err != nil {
			return err
		}
		if err := shift.DrawVoucher(voucher.ID, voucher.Amount, req.CreatedBy); err != nil {
			return err
		}
		if err := repos.VoucherRepo().Create(ctx, voucher); err != nil {
			return err
		}
		if err := appendHistory(ctx, repos, voucher); err != nil {
			return err
		}
		touched = append(touched, shift.ShiftDate)
		return saveShiftsAndTotals(ctx, repos, day, shift)
	})
	if err != nil {
		logRejected(ctx, s.logger, s.metrics, "voucher", "Voucher creation rejected", err)
		return nil, err
	}

	s.metrics.VoucherTransition(ctx, string(voucher.Status))
	s.cache.invalidate(ctx, touched...)
	s.logger.Info("Voucher created",
		zap.String("voucher_id", voucher.ID.String()),
		zap.String("amount", voucher.Amount.String()),
		zap.Stringp("shift_id", shiftIDString(voucher.ShiftID)))

	resp := toVoucherResponse(voucher)
	return &resp, nil
}

// Justify settles a pending voucher against a shift, possibly not the one it
// was drawn from.
func (s *VoucherService) Justify(ctx context.Context, id uuid.UUID, req JustifyVoucherRequest) (*VoucherResponse, error) {
	var (
		voucher *cashier.Voucher
		touched []time.Time
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		voucher, err = repos.VoucherRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		target, _, err := loadShiftOnOpenDay(ctx, repos, req.TargetShiftID)
		if err != nil {
			return err
		}
		if err := voucher.Justify(target.ID, req.JustifiedBy, req.Notes); err != nil {
			return err
		}
		if err := repos.VoucherRepo().SaveWithLock(ctx, voucher); err != nil {
			return err
		}
		if err := appendHistory(ctx, repos, voucher); err != nil {
			return err
		}
		touched = append(touched, target.ShiftDate)

		date, err := s.releaseFromOrigin(ctx, repos, voucher, req.JustifiedBy)
		if err != nil {
			return err
		}
		touched = append(touched, date)
		return nil
	})
	if err != nil {
		logRejected(ctx, s.logger, s.metrics, "voucher", "Voucher justification rejected", err, zap.String("voucher_id", id.String()))
		return nil, err
	}

	s.metrics.VoucherTransition(ctx, string(voucher.Status))
	s.cache.invalidate(ctx, touched...)
	s.logger.Info("Voucher justified",
		zap.String("voucher_id", voucher.ID.String()),
		zap.String("target_shift_id", req.TargetShiftID.String()),
		zap.String("amount", voucher.Amount.String()))

	resp := toVoucherResponse(voucher)
	return &resp, nil
}

// Cancel voids a pending voucher
func (s *VoucherService) Cancel(ctx context.Context, id uuid.UUID, req CancelVoucherRequest) (*VoucherResponse, error) {
	var (
		voucher *cashier.Voucher
		touched time.Time
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		voucher, err = repos.VoucherRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := voucher.Cancel(req.CancelledBy, req.Reason); err != nil {
			return err
		}
		if err := repos.VoucherRepo().SaveWithLock(ctx, voucher); err != nil {
			return err
		}
		if err := appendHistory(ctx, repos, voucher); err != nil {
			return err
		}
		touched, err = s.releaseFromOrigin(ctx, repos, voucher, req.CancelledBy)
		return err
	})
	if err != nil {
		logRejected(ctx, s.logger, s.metrics, "voucher", "Voucher cancellation rejected", err, zap.String("voucher_id", id.String()))
		return nil, err
	}

	s.metrics.VoucherTransition(ctx, string(voucher.Status))
	s.cache.invalidate(ctx, touched)
	s.logger.Info("Voucher cancelled",
		zap.String("voucher_id", voucher.ID.String()),
		zap.String("reason", voucher.CancelReason))

	resp := toVoucherResponse(voucher)
	return &resp, nil
}

// releaseFromOrigin gives the voucher amount back to the drawer it came from
// while that shift is still active. Returns the date of the changed shift, or
// the zero time when nothing changed.
func (s *VoucherService) releaseFromOrigin(ctx context.Context, repos TransactionalRepositories, voucher *cashier.Voucher, changedBy uuid.UUID) (time.Time, error) {
	if voucher.ShiftID == nil {
		return time.Time{}, nil
	}
	origin, err := repos.ShiftRepo().FindByID(ctx, *voucher.ShiftID)
	if err != nil {
		return time.Time{}, err
	}
	if !origin.Status.IsActive() {
		return time.Time{}, nil
	}
	day, err := repos.DailyRepo().FindByID(ctx, origin.DailyID)
	if err != nil {
		return time.Time{}, err
	}
	if err := day.EnsureOpen(); err != nil {
		return time.Time{}, err
	}
	if !origin.ReleaseVoucher(voucher.ID, voucher.Amount, changedBy) {
		return time.Time{}, nil
	}
	if err := saveShiftsAndTotals(ctx, repos, day, origin); err != nil {
		return time.Time{}, err
	}
	return origin.ShiftDate, nil
}

// Get returns a voucher by ID
func (s *VoucherService) Get(ctx context.Context, id uuid.UUID) (*VoucherResponse, error) {
	var resp VoucherResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		v, err := repos.VoucherRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = toVoucherResponse(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListActive returns every pending voucher with the running total
func (s *VoucherService) ListActive(ctx context.Context) (*ActiveVouchersResponse, error) {
	var pending []*cashier.Voucher
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		pending, err = repos.VoucherRepo().FindPending(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	total := valueobject.Zero()
	for _, v := range pending {
		total = total.Add(v.Amount)
	}
	return &ActiveVouchersResponse{
		Vouchers:    toVoucherResponses(pending),
		Count:       len(pending),
		TotalAmount: total,
	}, nil
}

// List returns vouchers matching the filter, newest first
func (s *VoucherService) List(ctx context.Context, filter VoucherListFilter) (*shared.Paginated[VoucherResponse], error) {
	f := cashier.VoucherFilter{
		Filter: shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize(),
	}
	if filter.Status != "" {
		status := cashier.VoucherStatus(filter.Status)
		if !status.IsValid() {
			return nil, shared.NewValidationError("invalid voucher status %q", filter.Status)
		}
		f.Status = &status
	}
	var err error
	if f.ShiftID, err = parseOptionalUUID("shift_id", filter.ShiftID); err != nil {
		return nil, err
	}
	if f.From, err = parseOptionalDate(filter.FromDate); err != nil {
		return nil, err
	}
	if f.To, err = parseOptionalDate(filter.ToDate); err != nil {
		return nil, err
	}
	if f.To != nil {
		end := f.To.AddDate(0, 0, 1)
		f.To = &end
	}

	var (
		vouchers []*cashier.Voucher
		total    int64
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		vouchers, total, err = repos.VoucherRepo().FindAll(ctx, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(toVoucherResponses(vouchers), total, f.Page, f.PageSize)
	return &page, nil
}

func shiftIDString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
