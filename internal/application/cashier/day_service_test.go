package cashier

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hotelops/backend/internal/domain/cashier"
	"github.com/hotelops/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayService_InitializeDay(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an open day with the roster of open shifts", func(t *testing.T) {
		f := newFixture(t)
		day := f.initDay(t, "2025-01-10", "200.00")

		assert.Equal(t, "2025-01-10", day.Date)
		assert.Equal(t, string(cashier.DailyStatusOpen), day.Status)
		assert.Equal(t, "0.00", day.Totals.GrandTotal.String())
		for i, s := range day.Shifts {
			assert.Equal(t, string(cashier.DefaultRoster[i]), s.ShiftType)
			assert.Equal(t, string(cashier.ShiftStatusOpen), s.Status)
			assert.Equal(t, "200.00", s.InitialFund.String())
			assert.Equal(t, "200.00", s.CashExpected.String())
			require.Len(t, s.Users, 1)
			assert.Equal(t, f.user, s.Users[0].UserID)
		}
		// one created entry for the day and one per shift
		assert.Equal(t, 5, f.store.historyCount())
	})

	t.Run("uses the configured roster", func(t *testing.T) {
		f := newFixture(t, func(o *Options) {
			o.Roster = []cashier.ShiftType{cashier.ShiftTypeMorning, cashier.ShiftTypeAfternoon}
		})
		day, err := f.days.InitializeDay(ctx, InitializeDayRequest{
			Date: "2025-01-10", PrimaryUserID: f.user, InitialFund: money("100"), CreatedBy: f.user,
		})
		require.NoError(t, err)
		assert.Len(t, day.Shifts, 2)
	})

	t.Run("second initialization of a date fails with duplicate day", func(t *testing.T) {
		f := newFixture(t)
		f.initDay(t, "2025-01-10", "200.00")

		_, err := f.days.InitializeDay(ctx, InitializeDayRequest{
			Date: "2025-01-10", PrimaryUserID: f.user, InitialFund: money("50"), CreatedBy: f.user,
		})
		assertCode(t, err, shared.CodeDuplicateDay)
		assert.True(t, errors.Is(err, shared.ErrDuplicateDay))
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		f := newFixture(t)
		cases := []InitializeDayRequest{
			{Date: "10/01/2025", PrimaryUserID: f.user, InitialFund: money("1"), CreatedBy: f.user},
			{Date: "2025-01-10", InitialFund: money("1"), CreatedBy: f.user},
			{Date: "2025-01-10", PrimaryUserID: f.user, InitialFund: money("-1"), CreatedBy: f.user},
			{Date: "2025-01-10", PrimaryUserID: f.user, InitialFund: money("1")},
		}
		for _, req := range cases {
			_, err := f.days.InitializeDay(ctx, req)
			assertCode(t, err, shared.CodeValidation)
		}
		assert.Nil(t, f.store.dayByDate("2025-01-10"))
	})
}

func TestDayService_CloseGate(t *testing.T) {
	ctx := context.Background()

	t.Run("close fails while a shift is active", func(t *testing.T) {
		f := newFixture(t)
		day := f.initDay(t, "2025-01-10", "0")
		for _, s := range day.Shifts[1:] {
			f.closeShift(t, s.ID)
		}

		check, err := f.days.CanClose(ctx, "2025-01-10")
		require.NoError(t, err)
		assert.False(t, check.CanClose)
		require.Len(t, check.ValidationErrors, 1)
		assert.Contains(t, check.ValidationErrors[0], day.Shifts[0].ID.String())

		_, err = f.days.CloseDay(ctx, "2025-01-10", CloseDayRequest{ClosedBy: f.user})
		assertCode(t, err, shared.CodeDailyNotReady)
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, check.ValidationErrors, de.Details)
		assert.Equal(t, 1, f.metrics.dayCloseRejections)
	})

	t.Run("close succeeds exactly when can-close allows it", func(t *testing.T) {
		f := newFixture(t)
		day := f.initDay(t, "2025-01-10", "0")
		f.closeAll(t, day)

		check, err := f.days.CanClose(ctx, "2025-01-10")
		require.NoError(t, err)
		assert.True(t, check.CanClose)
		assert.Empty(t, check.ValidationErrors)

		closed, err := f.days.CloseDay(ctx, "2025-01-10", CloseDayRequest{ClosedBy: f.user, Notes: "all good"})
		require.NoError(t, err)
		assert.Equal(t, string(cashier.DailyStatusClosed), closed.Status)
		assert.Equal(t, f.user, *closed.ClosedBy)
		assert.Equal(t, 1, f.metrics.daysClosed)

		_, err = f.days.CloseDay(ctx, "2025-01-10", CloseDayRequest{ClosedBy: f.user})
		assertCode(t, err, shared.CodeInvalidStateTransition)
	})

	t.Run("can-close is idempotent and has no side effects", func(t *testing.T) {
		f := newFixture(t)
		f.initDay(t, "2025-01-10", "0")
		entries := f.store.historyCount()
		version := f.store.dayByDate("2025-01-10").Version

		first, err := f.days.CanClose(ctx, "2025-01-10")
		require.NoError(t, err)
		for range 5 {
			again, err := f.days.CanClose(ctx, "2025-01-10")
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
		assert.Equal(t, entries, f.store.historyCount())
		assert.Equal(t, version, f.store.dayByDate("2025-01-10").Version)
	})

	t.Run("unknown date is not found", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.days.CanClose(ctx, "2025-01-11")
		assertCode(t, err, shared.CodeNotFound)
		_, err = f.days.CloseDay(ctx, "2025-01-11", CloseDayRequest{ClosedBy: f.user})
		assertCode(t, err, shared.CodeNotFound)
	})
}

func TestDayService_ReopenDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	day := f.initDay(t, "2025-01-10", "0")
	f.closeAll(t, day)
	_, err := f.days.CloseDay(ctx, "2025-01-10", CloseDayRequest{ClosedBy: f.user})
	require.NoError(t, err)

	t.Run("closed day locks its shifts", func(t *testing.T) {
		_, err := f.shifts.UpdateNotes(ctx, day.Shifts[0].ID, UpdateNotesRequest{Notes: "late", ChangedBy: f.user})
		assertCode(t, err, shared.CodeInvalidStateTransition)
		_, err = f.shifts.Reopen(ctx, day.Shifts[0].ID, ReopenRequest{Reason: "recount", ChangedBy: f.user})
		assertCode(t, err, shared.CodeInvalidStateTransition)
	})

	t.Run("reason is required", func(t *testing.T) {
		_, err := f.days.ReopenDay(ctx, "2025-01-10", ReopenRequest{Reason: "  ", ChangedBy: f.user})
		assertCode(t, err, shared.CodeValidation)
	})

	t.Run("reopen does not cascade to shifts", func(t *testing.T) {
		reopened, err := f.days.ReopenDay(ctx, "2025-01-10", ReopenRequest{Reason: "late invoice", ChangedBy: f.user})
		require.NoError(t, err)
		assert.Equal(t, string(cashier.DailyStatusOpen), reopened.Status)
		assert.Contains(t, reopened.Notes, "late invoice")

		shifts, err := f.days.ListShifts(ctx, "2025-01-10")
		require.NoError(t, err)
		for _, s := range shifts {
			assert.Equal(t, string(cashier.ShiftStatusClosed), s.Status)
		}
	})

	t.Run("reopening an open day fails", func(t *testing.T) {
		_, err := f.days.ReopenDay(ctx, "2025-01-10", ReopenRequest{Reason: "again", ChangedBy: f.user})
		assertCode(t, err, shared.CodeInvalidStateTransition)
	})
}

func TestDayService_TotalsConsistency(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	day := f.initDay(t, "2025-01-10", "100.00")

	s1, s2 := day.Shifts[0].ID, day.Shifts[1].ID
	_, err := f.shifts.SetDenominations(ctx, s1, SetDenominationsRequest{
		Lines:     []DenominationLineInput{{Denomination: money("20"), Quantity: 5}, {Denomination: money("0.50"), Quantity: 3}},
		ChangedBy: f.user,
	})
	require.NoError(t, err)
	_, err = f.shifts.SetPayments(ctx, s1, SetPaymentsRequest{
		Lines:     []PaymentLineInput{{Method: "card", Amount: money("310.25")}, {Method: "transfer", Amount: money("90")}},
		ChangedBy: f.user,
	})
	require.NoError(t, err)
	_, err = f.shifts.SetPayments(ctx, s2, SetPaymentsRequest{
		Lines:     []PaymentLineInput{{Method: "card", Amount: money("9.75")}, {Method: "web_payment", Amount: money("12")}},
		ChangedBy: f.user,
	})
	require.NoError(t, err)

	got, err := f.days.GetDay(ctx, "2025-01-10")
	require.NoError(t, err)

	grand := money("0")
	for _, s := range got.Shifts {
		grand = grand.Add(s.GrandTotal)
	}
	assert.True(t, grand.Equals(got.Totals.GrandTotal), "%s != %s", grand, got.Totals.GrandTotal)
	assert.Equal(t, "101.50", got.Totals.Cash.String())
	assert.Equal(t, "320.00", got.Totals.Card.String())
	assert.Equal(t, "90.00", got.Totals.Transfer.String())
	assert.Equal(t, "12.00", got.Totals.WebPayment.String())
	assert.Equal(t, "523.50", got.Totals.GrandTotal.String())
}

func TestDayService_RepairTotals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	day := f.initDay(t, "2025-01-10", "0")
	_, err := f.shifts.SetPayments(ctx, day.Shifts[0].ID, SetPaymentsRequest{
		Lines:     []PaymentLineInput{{Method: "card", Amount: money("75")}},
		ChangedBy: f.user,
	})
	require.NoError(t, err)

	// simulate drift in the stored totals
	f.store.mu.Lock()
	for _, d := range f.store.days {
		d.Totals = cashier.ZeroTotals()
	}
	f.store.mu.Unlock()

	repaired, err := f.days.RepairTotals(ctx, "2025-01-10", f.user)
	require.NoError(t, err)
	assert.True(t, repaired.Changed)
	assert.ElementsMatch(t, []string{"total_card", "grand_total"}, repaired.Fields)
	assert.Equal(t, "75.00", repaired.Day.Totals.GrandTotal.String())

	adjustments := 0
	for _, e := range f.store.historyFor(day.ID) {
		if e.Action == cashier.HistoryActionAdjustment {
			adjustments++
		}
	}
	assert.Equal(t, 2, adjustments)

	again, err := f.days.RepairTotals(ctx, "2025-01-10", f.user)
	require.NoError(t, err)
	assert.False(t, again.Changed)
	assert.Empty(t, again.Fields)

	_, err = f.days.RepairTotals(ctx, "2025-01-10", uuid.Nil)
	assertCode(t, err, shared.CodeValidation)
}
