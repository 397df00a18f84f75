// Package export renders reports into downloadable spreadsheet files.
package export

import (
	"fmt"
	"io"

	appcashier "github.com/hotelops/backend/internal/application/cashier"
	"github.com/hotelops/backend/internal/domain/cashier"
	"github.com/xuri/excelize/v2"
)

// XLSXContentType is the MIME type of the generated workbook
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const monthlySheet = "Monthly"

var monthlyHeader = []any{
	"Date", "Status", "Shifts", "Discrepancy",
	"Cash", "Card", "Bank direct debit", "Web payment", "Transfer", "Other", "Grand total",
}

// MonthlyReportFilename names the download of a monthly report
func MonthlyReportFilename(year, month int) string {
	return fmt.Sprintf("cashier-%04d-%02d.xlsx", year, month)
}

// WriteMonthlyReport writes one row per calendar day plus a totals row.
func WriteMonthlyReport(w io.Writer, report *appcashier.MonthlyReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", monthlySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	// 4 is the built-in "#,##0.00" format
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("create amount style: %w", err)
	}

	if err := f.SetSheetRow(monthlySheet, "A1", &monthlyHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetRowStyle(monthlySheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	row := 2
	for _, day := range report.Days {
		discrepancy := ""
		if day.HasDiscrepancy {
			discrepancy = "yes"
		}
		values := append([]any{day.Date, day.Status, day.ShiftCount, discrepancy}, totalsRow(day.Totals)...)
		if err := writeRow(f, row, values); err != nil {
			return err
		}
		row++
	}

	values := append([]any{"Total", "", "", report.DiscrepancyDays}, totalsRow(report.Totals)...)
	if err := writeRow(f, row, values); err != nil {
		return err
	}
	if err := f.SetRowStyle(monthlySheet, row, row, headerStyle); err != nil {
		return fmt.Errorf("style totals: %w", err)
	}

	first, _ := excelize.CoordinatesToCellName(5, 2)
	last, _ := excelize.CoordinatesToCellName(len(monthlyHeader), row)
	if err := f.SetCellStyle(monthlySheet, first, last, amountStyle); err != nil {
		return fmt.Errorf("style amounts: %w", err)
	}
	if err := f.SetColWidth(monthlySheet, "A", "K", 16); err != nil {
		return fmt.Errorf("set widths: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(monthlySheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

// totalsRow exports amounts as spreadsheet numbers
func totalsRow(t cashier.DailyTotals) []any {
	return []any{
		t.Cash.Amount().InexactFloat64(),
		t.Card.Amount().InexactFloat64(),
		t.BankDirectDebit.Amount().InexactFloat64(),
		t.WebPayment.Amount().InexactFloat64(),
		t.Transfer.Amount().InexactFloat64(),
		t.Other.Amount().InexactFloat64(),
		t.GrandTotal.Amount().InexactFloat64(),
	}
}
