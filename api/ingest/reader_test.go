package ingest

import (
	"bytes"
	"strings"
	"testing"

	"SalesPulse/api/constants"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, withDashboard bool) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(constants.SheetSales); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	mustSetRow(t, f, constants.SheetSales, "A1", []interface{}{"Month", "Products", "Qty-Actual"})
	mustSetRow(t, f, constants.SheetSales, "A2", []interface{}{"Jul'25", "Product A", 10})
	mustSetRow(t, f, constants.SheetSales, "A3", []interface{}{"Jul'25", "Product B"})

	if _, err := f.NewSheet(constants.SheetBudgetProjection); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	mustSetRow(t, f, constants.SheetBudgetProjection, "A1", []interface{}{"Banner row"})
	mustSetRow(t, f, constants.SheetBudgetProjection, "A2", []interface{}{"Products", "Jul'25"})
	mustSetRow(t, f, constants.SheetBudgetProjection, "A3", []interface{}{"Product A", 100})

	if withDashboard {
		if _, err := f.NewSheet(constants.SheetDashboard); err != nil {
			t.Fatalf("NewSheet: %v", err)
		}
		mustSetRow(t, f, constants.SheetDashboard, "A110", []interface{}{"Jul'25", 1200.5, 300})
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf
}

func mustSetRow(t *testing.T, f *excelize.File, sheet, cell string, values []interface{}) {
	t.Helper()
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		t.Fatalf("SetSheetRow(%s, %s): %v", sheet, cell, err)
	}
}

func TestReadWorkbookXLSX(t *testing.T) {
	t.Parallel()

	buf := buildWorkbook(t, true)
	wb, err := ReadWorkbook(buf, ".xlsx")
	if err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}

	sales, ok := wb.Sheets[constants.SheetSales]
	if !ok {
		t.Fatalf("sales sheet missing; got %v", sheetNames(wb))
	}
	if len(sales.Rows) != 2 {
		t.Fatalf("sales rows = %d, want 2", len(sales.Rows))
	}
	if got := sales.Rows[0]["Month"]; got != "Jul'25" {
		t.Fatalf("sales row 0 Month = %q, want Jul'25", got)
	}
	if got := sales.Rows[0]["Qty-Actual"]; got != "10" {
		t.Fatalf("sales row 0 Qty-Actual = %q, want 10", got)
	}
	// Short rows fill missing columns with empty strings.
	if got, ok := sales.Rows[1]["Qty-Actual"]; !ok || got != "" {
		t.Fatalf("sales row 1 Qty-Actual = (%q, %v), want empty present", got, ok)
	}

	// The projection sheet's headers come from its second row.
	proj, ok := wb.Sheets[constants.SheetBudgetProjection]
	if !ok {
		t.Fatal("projection sheet missing")
	}
	if len(proj.Rows) != 1 {
		t.Fatalf("projection rows = %d, want 1", len(proj.Rows))
	}
	if got := proj.Rows[0]["Products"]; got != "Product A" {
		t.Fatalf("projection Products = %q, want Product A", got)
	}

	if len(wb.CostRows) != 11 {
		t.Fatalf("cost rows = %d, want 11", len(wb.CostRows))
	}
	if wb.CostRows[0][0] != "Jul'25" {
		t.Fatalf("cost row 0 = %v, want Jul'25 first", wb.CostRows[0])
	}
}

func TestReadWorkbookSkipsMissingSheets(t *testing.T) {
	t.Parallel()

	buf := buildWorkbook(t, false)
	wb, err := ReadWorkbook(buf, ".xlsx")
	if err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}
	if _, ok := wb.Sheets[constants.SheetProduction]; ok {
		t.Fatal("production sheet present, want skipped")
	}
	if len(wb.CostRows) != 0 {
		t.Fatalf("cost rows = %d, want 0 without dashboard tab", len(wb.CostRows))
	}
}

func TestReadWorkbookRejectsUnknownExtension(t *testing.T) {
	t.Parallel()

	if _, err := ReadWorkbook(strings.NewReader("x"), ".csv"); err == nil {
		t.Fatal("ReadWorkbook(.csv) err = nil, want error")
	}
}

func sheetNames(wb *Workbook) []string {
	var names []string
	for name := range wb.Sheets {
		names = append(names, name)
	}
	return names
}
