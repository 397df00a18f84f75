package cashier

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hotelops/backend/internal/domain/shared"
	"github.com/hotelops/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var money = valueobject.MustMoney

type fixture struct {
	store    *memStore
	cache    *memReportCache
	metrics  *recordingMetrics
	days     *DayService
	shifts   *ShiftService
	vouchers *VoucherService
	history  *HistoryService
	reports  *ReportService
	user     uuid.UUID
}

func newFixture(t *testing.T, configure ...func(*Options)) *fixture {
	t.Helper()
	store := newMemStore()
	cache := newMemReportCache()
	metrics := &recordingMetrics{}

	opts := DefaultOptions()
	opts.Logger = zaptest.NewLogger(t)
	opts.Metrics = metrics
	opts.ReportCache = cache
	for _, c := range configure {
		c(&opts)
	}

	return &fixture{
		store:    store,
		cache:    cache,
		metrics:  metrics,
		days:     NewDayService(store, opts),
		shifts:   NewShiftService(store, opts),
		vouchers: NewVoucherService(store, opts),
		history:  NewHistoryService(store),
		reports:  NewReportService(store, opts),
		user:     uuid.New(),
	}
}

func (f *fixture) initDay(t *testing.T, date, fund string) *DayResponse {
	t.Helper()
	day, err := f.days.InitializeDay(context.Background(), InitializeDayRequest{
		Date:          date,
		PrimaryUserID: f.user,
		InitialFund:   money(fund),
		CreatedBy:     f.user,
	})
	require.NoError(t, err)
	require.Len(t, day.Shifts, 4)
	return day
}

func (f *fixture) closeShift(t *testing.T, id uuid.UUID) *ShiftResponse {
	t.Helper()
	resp, err := f.shifts.Close(context.Background(), id, CloseShiftRequest{ClosedBy: f.user})
	require.NoError(t, err)
	return resp
}

func (f *fixture) closeAll(t *testing.T, day *DayResponse) {
	t.Helper()
	for _, s := range day.Shifts {
		f.closeShift(t, s.ID)
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, shared.CodeOf(err), err.Error())
}

// memReportCache is a ReportCache that counts its traffic
type memReportCache struct {
	mu          sync.Mutex
	reports     map[[2]int]*MonthlyReport
	generations map[[2]int]int64
	hits        int
	stored      int
	invalidated int
}

func newMemReportCache() *memReportCache {
	return &memReportCache{
		reports:     make(map[[2]int]*MonthlyReport),
		generations: make(map[[2]int]int64),
	}
}

func (c *memReportCache) GetMonthly(_ context.Context, year, month int) (*MonthlyReport, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.reports[[2]int{year, month}]
	if ok {
		c.hits++
	}
	return r, ok, nil
}

func (c *memReportCache) MonthGeneration(_ context.Context, year, month int) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[[2]int{year, month}], nil
}

func (c *memReportCache) SetMonthly(_ context.Context, report *MonthlyReport, generation int64, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := [2]int{report.Year, report.Month}
	if c.generations[k] != generation {
		return false, nil
	}
	c.reports[k] = report
	c.stored++
	return true, nil
}

func (c *memReportCache) InvalidateMonth(_ context.Context, year, month int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.reports, [2]int{year, month})
	c.generations[[2]int{year, month}]++
	c.invalidated++
	return nil
}

// recordingMetrics keeps counts of every business metric
type recordingMetrics struct {
	mu                  sync.Mutex
	shiftsClosed        int
	discrepancies       int
	daysClosed          int
	dayCloseRejections  int
	voucherTransitions  map[string]int
	concurrencyConflict int
}

func (m *recordingMetrics) ShiftClosed(_ context.Context, _ string, hasDiscrepancy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shiftsClosed++
	if hasDiscrepancy {
		m.discrepancies++
	}
}

func (m *recordingMetrics) DayClosed(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.daysClosed++
}

func (m *recordingMetrics) DayCloseRejected(context.Context, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dayCloseRejections++
}

func (m *recordingMetrics) VoucherTransition(_ context.Context, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.voucherTransitions == nil {
		m.voucherTransitions = make(map[string]int)
	}
	m.voucherTransitions[status]++
}

func (m *recordingMetrics) ConcurrencyConflict(context.Context, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.concurrencyConflict++
}
