package cashier

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hotelops/backend/internal/domain/cashier"
	"github.com/hotelops/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DayService runs the daily workflow: initialization, the close gate,
// close/reopen and totals repair.
type DayService struct {
	scope   TransactionScope
	opts    Options
	logger  *zap.Logger
	metrics Metrics
	cache   invalidator
}

// NewDayService creates a new DayService
func NewDayService(scope TransactionScope, opts Options) *DayService {
	opts = opts.withDefaults()
	return &DayService{
		scope:   scope,
		opts:    opts,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		cache:   invalidator{cache: opts.ReportCache, logger: opts.Logger},
	}
}

// InitializeDay creates the daily aggregate of a date and one open shift per
// roster slot, each seeded with the initial fund.
func (s *DayService) InitializeDay(ctx context.Context, req InitializeDayRequest) (*DayResponse, error) {
	date, err := cashier.ParseBusinessDate(req.Date)
	if err != nil {
		return nil, err
	}
	users, err := cashier.BuildShiftUsers(req.PrimaryUserID, req.SecondaryUserIDs)
	if err != nil {
		return nil, err
	}
	if err := req.InitialFund.RequireNonNegative(); err != nil {
		return nil, shared.NewValidationError("initial fund: %v", err)
	}

	var (
		day    *cashier.DailyAggregate
		shifts []*cashier.Shift
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		exists, err := repos.DailyRepo().ExistsByDate(ctx, date)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDuplicateDayError(cashier.FormatDate(date))
		}

		day, err = cashier.NewDailyAggregate(date, req.CreatedBy)
		if err != nil {
			return err
		}
		if err := repos.DailyRepo().Create(ctx, day); err != nil {
			return err
		}

		recorders := []cashier.HistoryRecorder{day}
		shifts = make([]*cashier.Shift, 0, len(s.opts.Roster))
		for _, shiftType := range s.opts.Roster {
			shift, err := cashier.NewShift(day.ID, date, shiftType, req.InitialFund, req.CreatedBy, users)
			if err != nil {
				return err
			}
			if err := repos.ShiftRepo().Create(ctx, shift); err != nil {
				return err
			}
			shifts = append(shifts, shift)
			recorders = append(recorders, shift)
		}
		return appendHistory(ctx, repos, recorders...)
	})
	if err != nil {
		logRejected(ctx, s.logger, s.metrics, "daily", "Day initialization rejected", err, zap.String("date", req.Date))
		return nil, err
	}

	s.cache.invalidate(ctx, day.Date)
	s.logger.Info("Day initialized",
		zap.String("date", day.DateKey()),
		zap.String("daily_id", day.ID.String()),
		zap.Int("shifts", len(shifts)),
		zap.String("initial_fund", req.InitialFund.String()))

	resp := toDayResponse(day)
	resp.Shifts = toShiftResponses(shifts)
	return &resp, nil
}

// GetDay returns a day with its shifts
func (s *DayService) GetDay(ctx context.Context, date string) (*DayResponse, error) {
	d, err := cashier.ParseBusinessDate(date)
	if err != nil {
		return nil, err
	}
	var resp DayResponse
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		day, err := repos.DailyRepo().FindByDate(ctx, d)
		if err != nil {
			return err
		}
		shifts, err := repos.ShiftRepo().FindByDailyID(ctx, day.ID)
		if err != nil {
			return err
		}
		resp = toDayResponse(day)
		resp.Shifts = toShiftResponses(shifts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListShifts returns the shifts of a day in roster order
func (s *DayService) ListShifts(ctx context.Context, date string) ([]ShiftResponse, error) {
	resp, err := s.GetDay(ctx, date)
	if err != nil {
		return nil, err
	}
	return resp.Shifts, nil
}

// CanClose evaluates the close gate without changing anything
func (s *DayService) CanClose(ctx context.Context, date string) (*CanCloseResponse, error) {
	d, err := cashier.ParseBusinessDate(date)
	if err != nil {
		return nil, err
	}
	var check cashier.CloseCheck
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		day, shifts, pending, err := dayState(ctx, repos, d)
		if err != nil {
			return err
		}
		check = cashier.EvaluateClose(day, shifts, pending)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &CanCloseResponse{Date: cashier.FormatDate(d), CloseCheck: check}, nil
}

// CloseDay closes a day once every shift is settled and no voucher drawn
// against it is pending.
func (s *DayService) CloseDay(ctx context.Context, date string, req CloseDayRequest) (*DayResponse, error) {
	d, err := cashier.ParseBusinessDate(date)
	if err != nil {
		return nil, err
	}
	var day *cashier.DailyAggregate
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var (
			shifts  []*cashier.Shift
			pending []*cashier.Voucher
			err     error
		)
		day, shifts, pending, err = dayState(ctx, repos, d)
		if err != nil {
			return err
		}
		if err := day.Close(req.ClosedBy, req.Notes, cashier.EvaluateClose(day, shifts, pending)); err != nil {
			return err
		}
		if err := repos.DailyRepo().SaveWithLock(ctx, day); err != nil {
			return err
		}
		return appendHistory(ctx, repos, day)
	})
	if err != nil {
		var de *shared.DomainError
		if errors.As(err, &de) && de.Code == shared.CodeDailyNotReady {
			s.metrics.DayCloseRejected(ctx, len(de.Details))
		}
		logRejected(ctx, s.logger, s.metrics, "daily", "Day close rejected", err, zap.String("date", date))
		return nil, err
	}

	s.metrics.DayClosed(ctx)
	s.cache.invalidate(ctx, day.Date)
	s.logger.Info("Day closed",
		zap.String("date", day.DateKey()),
		zap.String("grand_total", day.Totals.GrandTotal.String()),
		zap.String("closed_by", req.ClosedBy.String()))

	resp := toDayResponse(day)
	return &resp, nil
}

// ReopenDay reopens a closed day. Its shifts stay as they are.
func (s *DayService) ReopenDay(ctx context.Context, date string, req ReopenRequest) (*DayResponse, error) {
	d, err := cashier.ParseBusinessDate(date)
	if err != nil {
		return nil, err
	}
	var day *cashier.DailyAggregate
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		day, err = repos.DailyRepo().FindByDate(ctx, d)
		if err != nil {
			return err
		}
		if err := day.Reopen(req.Reason, req.ChangedBy); err != nil {
			return err
		}
		if err := repos.DailyRepo().SaveWithLock(ctx, day); err != nil {
			return err
		}
		return appendHistory(ctx, repos, day)
	})
	if err != nil {
		logRejected(ctx, s.logger, s.metrics, "daily", "Day reopen rejected", err, zap.String("date", date))
		return nil, err
	}

	s.cache.invalidate(ctx, day.Date)
	s.logger.Info("Day reopened",
		zap.String("date", day.DateKey()),
		zap.String("reason", req.Reason))

	resp := toDayResponse(day)
	return &resp, nil
}

// RepairTotals recomputes the stored totals of a day from its shifts and
// records an adjustment for every field that had drifted.
func (s *DayService) RepairTotals(ctx context.Context, date string, changedBy uuid.UUID) (*RepairResponse, error) {
	d, err := cashier.ParseBusinessDate(date)
	if err != nil {
		return nil, err
	}
	var (
		day     *cashier.DailyAggregate
		changed []string
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		day, err = repos.DailyRepo().FindByDate(ctx, d)
		if err != nil {
			return err
		}
		shifts, err := repos.ShiftRepo().FindByDailyID(ctx, day.ID)
		if err != nil {
			return err
		}
		changed, err = day.Repair(shifts, changedBy)
		if err != nil {
			return err
		}
		if len(changed) == 0 {
			return nil
		}
		if err := repos.DailyRepo().SaveWithLock(ctx, day); err != nil {
			return err
		}
		return appendHistory(ctx, repos, day)
	})
	if err != nil {
		logRejected(ctx, s.logger, s.metrics, "daily", "Totals repair rejected", err, zap.String("date", date))
		return nil, err
	}

	if len(changed) > 0 {
		s.cache.invalidate(ctx, day.Date)
		s.logger.Warn("Day totals repaired",
			zap.String("date", day.DateKey()),
			zap.Strings("fields", changed))
	}
	if changed == nil {
		changed = []string{}
	}
	return &RepairResponse{Changed: len(changed) > 0, Fields: changed, Day: toDayResponse(day)}, nil
}
