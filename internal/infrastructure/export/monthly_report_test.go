package export

import (
	"bytes"
	"testing"

	appcashier "github.com/hotelops/backend/internal/application/cashier"
	"github.com/hotelops/backend/internal/domain/cashier"
	"github.com/hotelops/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteMonthlyReport(t *testing.T) {
	closed := cashier.ZeroTotals()
	closed.Cash = valueobject.MustMoney("100.50")
	closed.Card = valueobject.MustMoney("200.00")
	closed.GrandTotal = valueobject.MustMoney("300.50")

	report := &appcashier.MonthlyReport{
		Year:  2024,
		Month: 2,
		Days: []appcashier.MonthlyReportDay{
			{Date: "2024-02-01", Status: "closed", Totals: closed, HasDiscrepancy: true, ShiftCount: 4},
			{Date: "2024-02-02", Status: appcashier.DayStatusUninitialized, Totals: cashier.ZeroTotals()},
		},
		Totals:          closed,
		DiscrepancyDays: 1,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMonthlyReport(&buf, report))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(monthlySheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "Grand total", rows[0][10])

	assert.Equal(t, []string{"2024-02-01", "closed", "4", "yes", "100.5", "200", "0", "0", "0", "0", "300.5"}, rows[1])
	assert.Equal(t, "uninitialized", rows[2][1])
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "1", rows[3][3])
	assert.Equal(t, "300.5", rows[3][10])
}

func TestMonthlyReportFilename(t *testing.T) {
	assert.Equal(t, "cashier-2024-02.xlsx", MonthlyReportFilename(2024, 2))
}
