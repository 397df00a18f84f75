package cashier

import (
	"context"
	"fmt"
	"time"

	"github.com/hotelops/backend/internal/domain/cashier"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DayStatusUninitialized is the report status of a date that was never initialized
const DayStatusUninitialized = "uninitialized"

// MonthlyReportDay is one calendar day of a monthly report
type MonthlyReportDay struct {
	Date           string              `json:"date"`
	Status         string              `json:"status"`
	Totals         cashier.DailyTotals `json:"totals"`
	HasDiscrepancy bool                `json:"has_discrepancy"`
	ShiftCount     int                 `json:"shift_count"`
}

// MonthlyReport is the per-day breakdown of one month. Days without a daily
// aggregate appear zero-filled with status "uninitialized".
type MonthlyReport struct {
	Year              int                 `json:"year"`
	Month             int                 `json:"month"`
	Days              []MonthlyReportDay  `json:"days"`
	Totals            cashier.DailyTotals `json:"totals"`
	OpenDays          int                 `json:"open_days"`
	ClosedDays        int                 `json:"closed_days"`
	UninitializedDays int                 `json:"uninitialized_days"`
	DiscrepancyDays   int                 `json:"discrepancy_days"`
	GeneratedAt       time.Time           `json:"generated_at"`
}

// DashboardOverview is the operational picture of one date
type DashboardOverview struct {
	Date        string                 `json:"date"`
	Initialized bool                   `json:"initialized"`
	DayStatus   string                 `json:"day_status"`
	ShiftCounts map[string]int         `json:"shift_counts"`
	Totals      cashier.DailyTotals    `json:"totals"`
	Vouchers    cashier.VoucherSummary `json:"vouchers"`
}

// ReportService builds read-only reports from committed data
type ReportService struct {
	scope  TransactionScope
	cache  ReportCache
	ttl    time.Duration
	logger *zap.Logger
	group  singleflight.Group
}

// NewReportService creates a new ReportService
func NewReportService(scope TransactionScope, opts Options) *ReportService {
	opts = opts.withDefaults()
	return &ReportService{
		scope:  scope,
		cache:  opts.ReportCache,
		ttl:    opts.ReportCacheTTL,
		logger: opts.Logger,
	}
}

// MonthlyReport returns the report of a month, served from cache when
// possible. Concurrent requests for the same month share one computation.
func (s *ReportService) MonthlyReport(ctx context.Context, year, month int) (*MonthlyReport, error) {
	from, to, err := cashier.MonthRange(year, time.Month(month))
	if err != nil {
		return nil, err
	}

	if cached, ok, err := s.cache.GetMonthly(ctx, year, month); err != nil {
		s.logger.Warn("Monthly report cache read failed", zap.Int("year", year), zap.Int("month", month), zap.Error(err))
	} else if ok {
		return cached, nil
	}

	key := fmt.Sprintf("%04d-%02d", year, month)
	v, err, _ := s.group.Do(key, func() (any, error) {
		// Shared by every waiter, so one caller going away must not fail the rest
		buildCtx := context.WithoutCancel(ctx)

		// Read before the build so an invalidation that lands during it
		// keeps the possibly stale result out of the cache.
		gen, genErr := s.cache.MonthGeneration(buildCtx, year, month)
		if genErr != nil {
			s.logger.Warn("Monthly report cache generation read failed", zap.String("month", key), zap.Error(genErr))
		}

		report, err := s.buildMonthly(buildCtx, year, month, from, to)
		if err != nil {
			return nil, err
		}
		if s.ttl > 0 && genErr == nil {
			stored, err := s.cache.SetMonthly(buildCtx, report, gen, s.ttl)
			if err != nil {
				s.logger.Warn("Monthly report cache write failed", zap.String("month", key), zap.Error(err))
			} else if !stored {
				s.logger.Debug("Monthly report changed during build, not cached", zap.String("month", key))
			}
		}
		return report, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*MonthlyReport), nil
}

func (s *ReportService) buildMonthly(ctx context.Context, year, month int, from, to time.Time) (*MonthlyReport, error) {
	var (
		days   []*cashier.DailyAggregate
		shifts []*cashier.Shift
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		if days, err = repos.DailyRepo().FindByDateRange(ctx, from, to); err != nil {
			return err
		}
		shifts, err = repos.ShiftRepo().FindByDateRange(ctx, from, to)
		return err
	})
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]*cashier.DailyAggregate, len(days))
	for _, d := range days {
		byDate[d.DateKey()] = d
	}
	shiftCount := make(map[string]int)
	discrepancy := make(map[string]bool)
	for _, sh := range shifts {
		key := cashier.FormatDate(sh.ShiftDate)
		shiftCount[key]++
		if sh.Status.IsSettled() && sh.HasDiscrepancy {
			discrepancy[key] = true
		}
	}

	report := &MonthlyReport{
		Year:        year,
		Month:       month,
		Totals:      cashier.ZeroTotals(),
		GeneratedAt: time.Now(),
	}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := cashier.FormatDate(d)
		row := MonthlyReportDay{
			Date:           key,
			Status:         DayStatusUninitialized,
			Totals:         cashier.ZeroTotals(),
			HasDiscrepancy: discrepancy[key],
			ShiftCount:     shiftCount[key],
		}
		if day, ok := byDate[key]; ok {
			row.Status = string(day.Status)
			row.Totals = day.Totals
		}
		switch row.Status {
		case string(cashier.DailyStatusOpen):
			report.OpenDays++
		case string(cashier.DailyStatusClosed):
			report.ClosedDays++
		default:
			report.UninitializedDays++
		}
		if row.HasDiscrepancy {
			report.DiscrepancyDays++
		}
		report.Totals = report.Totals.Add(row.Totals)
		report.Days = append(report.Days, row)
	}
	return report, nil
}

// DashboardOverview returns shift counts, totals and the voucher position for
// a date. A date without a daily aggregate yields a zero state.
func (s *ReportService) DashboardOverview(ctx context.Context, date string) (*DashboardOverview, error) {
	d, err := cashier.ParseBusinessDate(date)
	if err != nil {
		return nil, err
	}

	overview := &DashboardOverview{
		Date:        cashier.FormatDate(d),
		DayStatus:   DayStatusUninitialized,
		ShiftCounts: make(map[string]int, len(cashier.AllShiftStatuses)),
		Totals:      cashier.ZeroTotals(),
	}
	for _, st := range cashier.AllShiftStatuses {
		overview.ShiftCounts[string(st)] = 0
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		summary, err := repos.VoucherRepo().Summary(ctx)
		if err != nil {
			return err
		}
		overview.Vouchers = summary

		exists, err := repos.DailyRepo().ExistsByDate(ctx, d)
		if err != nil || !exists {
			return err
		}
		day, err := repos.DailyRepo().FindByDate(ctx, d)
		if err != nil {
			return err
		}
		shifts, err := repos.ShiftRepo().FindByDailyID(ctx, day.ID)
		if err != nil {
			return err
		}
		overview.Initialized = true
		overview.DayStatus = string(day.Status)
		overview.Totals = day.Totals
		for _, sh := range shifts {
			overview.ShiftCounts[string(sh.Status)]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return overview, nil
}
