package constants

const (
	DateFormat = "2006-01-02 15:04:05"

	KeyFile = "file"

	// Workbook tab names as exported by the business template.
	SheetWorkingDays      = "Day (in Month)"
	SheetBudgetProjection = "Sales Projection 2025"
	SheetSales            = "Data"
	SheetProduction       = "Production Data"
	SheetSalesByChannel   = "SALES BY FPR"
	SheetDashboard        = "Dashboard-1"
)
