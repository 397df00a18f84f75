package cashier

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hotelops/backend/internal/domain/cashier"
	"github.com/hotelops/backend/internal/domain/shared"
	"github.com/hotelops/backend/internal/domain/shared/valueobject"
)

// memStore is an in-memory TransactionScope. Writes are staged per
// transaction and applied at commit after an optimistic version check, so
// two overlapping transactions behave the way they would against a database.
type memStore struct {
	mu       sync.Mutex
	days     map[uuid.UUID]*cashier.DailyAggregate
	shifts   map[uuid.UUID]*cashier.Shift
	vouchers map[uuid.UUID]*cashier.Voucher
	history  []*cashier.HistoryEntry

	failHistory  bool
	onShiftFound func()
}

func newMemStore() *memStore {
	return &memStore{
		days:     make(map[uuid.UUID]*cashier.DailyAggregate),
		shifts:   make(map[uuid.UUID]*cashier.Shift),
		vouchers: make(map[uuid.UUID]*cashier.Voucher),
	}
}

var errHistoryUnavailable = errors.New("history store unavailable")

type staged[T any] struct {
	obj  T
	base int // committed version this write builds on, 0 for an insert
}

type memTx struct {
	store    *memStore
	days     map[uuid.UUID]staged[*cashier.DailyAggregate]
	shifts   map[uuid.UUID]staged[*cashier.Shift]
	vouchers map[uuid.UUID]staged[*cashier.Voucher]
	history  []*cashier.HistoryEntry
}

func (m *memStore) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	tx := &memTx{
		store:    m,
		days:     make(map[uuid.UUID]staged[*cashier.DailyAggregate]),
		shifts:   make(map[uuid.UUID]staged[*cashier.Shift]),
		vouchers: make(map[uuid.UUID]staged[*cashier.Voucher]),
	}
	if err := fn(tx); err != nil {
		return err
	}
	return m.commit(tx)
}

func (m *memStore) commit(tx *memTx) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, w := range tx.days {
		if cur, ok := m.days[id]; ok && cur.Version != w.base || !ok && w.base != 0 {
			return shared.NewConcurrentModificationError("daily", id.String())
		}
		if w.base == 0 {
			for _, d := range m.days {
				if d.DateKey() == w.obj.DateKey() {
					return shared.NewDuplicateDayError(d.DateKey())
				}
			}
		}
	}
	for id, w := range tx.shifts {
		if cur, ok := m.shifts[id]; ok && cur.Version != w.base || !ok && w.base != 0 {
			return shared.NewConcurrentModificationError("shift", id.String())
		}
	}
	for id, w := range tx.vouchers {
		if cur, ok := m.vouchers[id]; ok && cur.Version != w.base || !ok && w.base != 0 {
			return shared.NewConcurrentModificationError("voucher", id.String())
		}
	}

	for id, w := range tx.days {
		m.days[id] = w.obj
	}
	for id, w := range tx.shifts {
		m.shifts[id] = w.obj
	}
	for id, w := range tx.vouchers {
		m.vouchers[id] = w.obj
	}
	m.history = append(m.history, tx.history...)
	return nil
}

// committed snapshots, for assertions
func (m *memStore) shift(id uuid.UUID) *cashier.Shift {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneShift(m.shifts[id])
}

func (m *memStore) dayByDate(date string) *cashier.DailyAggregate {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.days {
		if d.DateKey() == date {
			return cloneDay(d)
		}
	}
	return nil
}

func (m *memStore) historyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.history)
}

func (m *memStore) historyFor(recordID uuid.UUID) []*cashier.HistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*cashier.HistoryEntry
	for _, e := range m.history {
		if e.RecordID == recordID {
			out = append(out, e)
		}
	}
	return out
}

func (tx *memTx) DailyRepo() cashier.DailyRepository     { return memDailyRepo{tx} }
func (tx *memTx) ShiftRepo() cashier.ShiftRepository     { return memShiftRepo{tx} }
func (tx *memTx) VoucherRepo() cashier.VoucherRepository { return memVoucherRepo{tx} }
func (tx *memTx) HistoryRepo() cashier.HistoryRepository { return memHistoryRepo{tx} }

// ---- cloning ----

func cloneDay(d *cashier.DailyAggregate) *cashier.DailyAggregate {
	if d == nil {
		return nil
	}
	c := *d
	c.ClearHistory()
	return &c
}

func cloneShift(s *cashier.Shift) *cashier.Shift {
	if s == nil {
		return nil
	}
	c := *s
	c.IncomeBreakdown = s.IncomeBreakdown.Clone()
	c.Users = slices.Clone(s.Users)
	c.Denominations = slices.Clone(s.Denominations)
	c.Payments = slices.Clone(s.Payments)
	c.ClearHistory()
	return &c
}

func cloneVoucher(v *cashier.Voucher) *cashier.Voucher {
	if v == nil {
		return nil
	}
	c := *v
	c.ClearHistory()
	return &c
}

// ---- daily ----

type memDailyRepo struct{ tx *memTx }

func (r memDailyRepo) visible() map[uuid.UUID]*cashier.DailyAggregate {
	r.tx.store.mu.Lock()
	defer r.tx.store.mu.Unlock()
	out := make(map[uuid.UUID]*cashier.DailyAggregate, len(r.tx.store.days))
	for id, d := range r.tx.store.days {
		out[id] = d
	}
	for id, w := range r.tx.days {
		out[id] = w.obj
	}
	return out
}

func loadDay(d *cashier.DailyAggregate) *cashier.DailyAggregate {
	c := cloneDay(d)
	c.RestoreVersion(d.Version)
	return c
}

func (r memDailyRepo) FindByID(_ context.Context, id uuid.UUID) (*cashier.DailyAggregate, error) {
	if d, ok := r.visible()[id]; ok {
		return loadDay(d), nil
	}
	return nil, shared.NewNotFoundError("daily", id.String())
}

func (r memDailyRepo) FindByDate(_ context.Context, date time.Time) (*cashier.DailyAggregate, error) {
	key := cashier.FormatDate(date)
	for _, d := range r.visible() {
		if d.DateKey() == key {
			return loadDay(d), nil
		}
	}
	return nil, shared.NewNotFoundError("daily", key)
}

func (r memDailyRepo) FindByDateRange(_ context.Context, from, to time.Time) ([]*cashier.DailyAggregate, error) {
	var out []*cashier.DailyAggregate
	for _, d := range r.visible() {
		if !d.Date.Before(from) && !d.Date.After(to) {
			out = append(out, loadDay(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r memDailyRepo) ExistsByDate(ctx context.Context, date time.Time) (bool, error) {
	_, err := r.FindByDate(ctx, date)
	if shared.CodeOf(err) == shared.CodeNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r memDailyRepo) Create(ctx context.Context, day *cashier.DailyAggregate) error {
	if exists, _ := r.ExistsByDate(ctx, day.Date); exists {
		return shared.NewDuplicateDayError(day.DateKey())
	}
	day.MarkPersisted()
	r.tx.days[day.ID] = staged[*cashier.DailyAggregate]{obj: cloneDay(day)}
	return nil
}

func (r memDailyRepo) SaveWithLock(_ context.Context, day *cashier.DailyAggregate) error {
	cur, ok := r.visible()[day.ID]
	if !ok {
		return shared.NewNotFoundError("daily", day.ID.String())
	}
	if cur.Version != day.PersistedVersion() {
		return shared.NewConcurrentModificationError("daily", day.DateKey())
	}
	base := cur.Version
	if w, ok := r.tx.days[day.ID]; ok {
		base = w.base
	}
	day.MarkPersisted()
	r.tx.days[day.ID] = staged[*cashier.DailyAggregate]{obj: cloneDay(day), base: base}
	return nil
}

// ---- shift ----

type memShiftRepo struct{ tx *memTx }

func (r memShiftRepo) visible() map[uuid.UUID]*cashier.Shift {
	r.tx.store.mu.Lock()
	defer r.tx.store.mu.Unlock()
	out := make(map[uuid.UUID]*cashier.Shift, len(r.tx.store.shifts))
	for id, s := range r.tx.store.shifts {
		out[id] = s
	}
	for id, w := range r.tx.shifts {
		out[id] = w.obj
	}
	return out
}

func loadShift(s *cashier.Shift) *cashier.Shift {
	c := cloneShift(s)
	c.RestoreVersion(s.Version)
	return c
}

func rosterOrder(shifts []*cashier.Shift) {
	sort.Slice(shifts, func(i, j int) bool {
		if !shifts[i].ShiftDate.Equal(shifts[j].ShiftDate) {
			return shifts[i].ShiftDate.Before(shifts[j].ShiftDate)
		}
		return slices.Index(cashier.DefaultRoster, shifts[i].ShiftType) < slices.Index(cashier.DefaultRoster, shifts[j].ShiftType)
	})
}

func (r memShiftRepo) FindByID(_ context.Context, id uuid.UUID) (*cashier.Shift, error) {
	s, ok := r.visible()[id]
	if !ok {
		return nil, shared.NewNotFoundError("shift", id.String())
	}
	if hook := r.tx.store.onShiftFound; hook != nil {
		hook()
	}
	return loadShift(s), nil
}

func (r memShiftRepo) FindByDailyID(_ context.Context, dailyID uuid.UUID) ([]*cashier.Shift, error) {
	var out []*cashier.Shift
	for _, s := range r.visible() {
		if s.DailyID == dailyID {
			out = append(out, loadShift(s))
		}
	}
	rosterOrder(out)
	return out, nil
}

func (r memShiftRepo) FindByDateRange(_ context.Context, from, to time.Time) ([]*cashier.Shift, error) {
	var out []*cashier.Shift
	for _, s := range r.visible() {
		if !s.ShiftDate.Before(from) && !s.ShiftDate.After(to) {
			out = append(out, loadShift(s))
		}
	}
	rosterOrder(out)
	return out, nil
}

func (r memShiftRepo) Create(_ context.Context, shift *cashier.Shift) error {
	shift.MarkPersisted()
	r.tx.shifts[shift.ID] = staged[*cashier.Shift]{obj: cloneShift(shift)}
	return nil
}

func (r memShiftRepo) SaveWithLock(_ context.Context, shift *cashier.Shift) error {
	cur, ok := r.visible()[shift.ID]
	if !ok {
		return shared.NewNotFoundError("shift", shift.ID.String())
	}
	if cur.Version != shift.PersistedVersion() {
		return shared.NewConcurrentModificationError("shift", shift.ID.String())
	}
	base := cur.Version
	if w, ok := r.tx.shifts[shift.ID]; ok {
		base = w.base
	}
	shift.MarkPersisted()
	r.tx.shifts[shift.ID] = staged[*cashier.Shift]{obj: cloneShift(shift), base: base}
	return nil
}

// ---- voucher ----

type memVoucherRepo struct{ tx *memTx }

func (r memVoucherRepo) visible() []*cashier.Voucher {
	r.tx.store.mu.Lock()
	defer r.tx.store.mu.Unlock()
	merged := make(map[uuid.UUID]*cashier.Voucher, len(r.tx.store.vouchers))
	for id, v := range r.tx.store.vouchers {
		merged[id] = v
	}
	for id, w := range r.tx.vouchers {
		merged[id] = w.obj
	}
	out := make([]*cashier.Voucher, 0, len(merged))
	for _, v := range merged {
		c := cloneVoucher(v)
		c.RestoreVersion(v.Version)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r memVoucherRepo) FindByID(_ context.Context, id uuid.UUID) (*cashier.Voucher, error) {
	for _, v := range r.visible() {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, shared.NewNotFoundError("voucher", id.String())
}

func (r memVoucherRepo) FindAll(_ context.Context, filter cashier.VoucherFilter) ([]*cashier.Voucher, int64, error) {
	var matched []*cashier.Voucher
	for _, v := range r.visible() {
		if filter.Status != nil && v.Status != *filter.Status {
			continue
		}
		if filter.ShiftID != nil && (v.ShiftID == nil || *v.ShiftID != *filter.ShiftID) {
			continue
		}
		matched = append(matched, v)
	}
	slices.Reverse(matched)
	total := int64(len(matched))
	start := min(filter.Offset(), len(matched))
	end := min(start+filter.PageSize, len(matched))
	return matched[start:end], total, nil
}

func (r memVoucherRepo) FindPending(_ context.Context) ([]*cashier.Voucher, error) {
	var out []*cashier.Voucher
	for _, v := range r.visible() {
		if v.Status == cashier.VoucherStatusPending {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r memVoucherRepo) FindPendingByShiftIDs(_ context.Context, shiftIDs []uuid.UUID) ([]*cashier.Voucher, error) {
	var out []*cashier.Voucher
	for _, v := range r.visible() {
		if v.Status == cashier.VoucherStatusPending && v.ShiftID != nil && slices.Contains(shiftIDs, *v.ShiftID) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r memVoucherRepo) Summary(_ context.Context) (cashier.VoucherSummary, error) {
	sum := cashier.VoucherSummary{ActiveAmount: valueobject.Zero(), TotalRepaidLifetime: valueobject.Zero()}
	for _, v := range r.visible() {
		switch v.Status {
		case cashier.VoucherStatusPending:
			sum.ActiveCount++
			sum.ActiveAmount = sum.ActiveAmount.Add(v.Amount)
		case cashier.VoucherStatusJustified:
			sum.TotalRepaidLifetime = sum.TotalRepaidLifetime.Add(v.Amount)
		}
	}
	return sum, nil
}

func (r memVoucherRepo) Create(_ context.Context, v *cashier.Voucher) error {
	v.MarkPersisted()
	r.tx.vouchers[v.ID] = staged[*cashier.Voucher]{obj: cloneVoucher(v)}
	return nil
}

func (r memVoucherRepo) SaveWithLock(ctx context.Context, v *cashier.Voucher) error {
	cur, err := r.FindByID(ctx, v.ID)
	if err != nil {
		return err
	}
	if cur.Version != v.PersistedVersion() {
		return shared.NewConcurrentModificationError("voucher", v.ID.String())
	}
	base := cur.Version
	if w, ok := r.tx.vouchers[v.ID]; ok {
		base = w.base
	}
	v.MarkPersisted()
	r.tx.vouchers[v.ID] = staged[*cashier.Voucher]{obj: cloneVoucher(v), base: base}
	return nil
}

// ---- history ----

type memHistoryRepo struct{ tx *memTx }

func (r memHistoryRepo) Append(_ context.Context, entries ...*cashier.HistoryEntry) error {
	if r.tx.store.failHistory {
		return errHistoryUnavailable
	}
	r.tx.history = append(r.tx.history, entries...)
	return nil
}

func (r memHistoryRepo) FindAll(_ context.Context, filter cashier.HistoryFilter) ([]*cashier.HistoryEntry, int64, error) {
	r.tx.store.mu.Lock()
	all := slices.Clone(r.tx.store.history)
	r.tx.store.mu.Unlock()

	var matched []*cashier.HistoryEntry
	for _, e := range all {
		if filter.ShiftID != nil && (e.ShiftID == nil || *e.ShiftID != *filter.ShiftID) {
			continue
		}
		if filter.RecordID != nil && e.RecordID != *filter.RecordID {
			continue
		}
		if filter.Action != nil && e.Action != *filter.Action {
			continue
		}
		if filter.Table != "" && e.TableAffected != filter.Table {
			continue
		}
		matched = append(matched, e)
	}
	slices.Reverse(matched)
	total := int64(len(matched))
	start := min(filter.Offset(), len(matched))
	end := min(start+filter.PageSize, len(matched))
	return matched[start:end], total, nil
}

var _ TransactionScope = (*memStore)(nil)
var _ TransactionalRepositories = (*memTx)(nil)
