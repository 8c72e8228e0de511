package reports

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"SalesPulse/api"
	"SalesPulse/api/constants"
	"SalesPulse/api/ingest"
	"SalesPulse/internal/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultReportYear  = 2025
	defaultReportMonth = "July"
)

type reportScope struct {
	uploadID int64
	year     int
	month    string
	yearID   int64
	monthID  int64
	days     int
}

// resolveScope pins a comparison report to one (upload, year, month) and
// the working-day count for that month.
func resolveScope(r *http.Request, pool *pgxpool.Pool) (*reportScope, int, string) {
	year := defaultReportYear
	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, http.StatusBadRequest, constants.ErrBadYearParam
		}
		year = n
	}
	month := defaultReportMonth
	if v := r.URL.Query().Get("month"); v != "" {
		month = v
	}

	uploadID, err := ingest.LatestUploadID(r.Context(), pool)
	if err != nil {
		return nil, http.StatusInternalServerError, constants.ErrInternalServer
	}
	if uploadID == 0 {
		return nil, http.StatusNotFound, constants.ErrNoData
	}

	yID, err := yearID(r.Context(), pool, year)
	if err != nil {
		if errors.Is(err, errYearNotFound) {
			return nil, http.StatusNotFound, fmt.Sprintf(constants.ErrYearNotFound, year)
		}
		return nil, http.StatusInternalServerError, constants.ErrInternalServer
	}
	mID, err := monthID(r.Context(), pool, month)
	if err != nil {
		if errors.Is(err, errMonthNotFound) {
			return nil, http.StatusNotFound, fmt.Sprintf(constants.ErrMonthNotFound, month)
		}
		return nil, http.StatusInternalServerError, constants.ErrInternalServer
	}

	days := config.FallbackWorkingDays
	err = pool.QueryRow(r.Context(), `
		SELECT days FROM working_days
		WHERE upload_id = $1 AND year_id = $2 AND month_id = $3`,
		uploadID, yID, mID).Scan(&days)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, http.StatusInternalServerError, constants.ErrInternalServer
	}

	return &reportScope{
		uploadID: uploadID,
		year:     year,
		month:    month,
		yearID:   yID,
		monthID:  mID,
		days:     days,
	}, 0, ""
}

// salesMetrics assembles the sales comparison block: case volumes against
// the projection sheet, amounts against the sales sheet's own budget
// columns, plus the actual-only collection figures.
func salesMetrics(budgetCases, qtyActual, amountBudget, amountActual, collection float64, days int) []Metric {
	efficiency := 0.0
	if amountActual != 0 {
		efficiency = collection / amountActual * 100
	}
	return []Metric{
		metric("Sales Cases", budgetCases, qtyActual),
		metric("Daily Case Avg",
			dailyAverage(budgetCases, days),
			dailyAverage(qtyActual, days)),
		metric("Sales Amount (US$)", amountBudget, amountActual),
		actualOnly("Collection (US$)", collection),
		actualOnly("Collection Efficiency Ratio (% of Sales)", efficiency),
	}
}

// productionMetrics assembles the production comparison block. Case budgets
// come from the projection sheet; the workbook carries no liter budget at
// the projection level, so the liter metrics are actual-only.
func productionMetrics(budgetCases, qtyActual, litersActual float64, days int) []Metric {
	return []Metric{
		metric("Production Cases", budgetCases, qtyActual),
		metric("Daily Case Avg",
			dailyAverage(budgetCases, days),
			dailyAverage(qtyActual, days)),
		actualOnly("Production in Liters", litersActual),
		actualOnly("Daily Liter Avg", dailyAverage(litersActual, days)),
	}
}

// ComparisonSales builds the monthly sales budget-vs-actual block.
func ComparisonSales(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, status, errMsg := resolveScope(r, pool)
		if scope == nil {
			api.RespondWithError(w, status, errMsg)
			return
		}

		var budgetCases float64
		err := pool.QueryRow(r.Context(), `
			SELECT COALESCE(SUM(quantity), 0) FROM budget_projection
			WHERE upload_id = $1 AND year_id = $2 AND month_id = $3`,
			scope.uploadID, scope.yearID, scope.monthID).Scan(&budgetCases)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}

		var qtyActual, amountBudget, amountActual float64
		err = pool.QueryRow(r.Context(), `
			SELECT COALESCE(SUM(qty_actual), 0),
			       COALESCE(SUM(amount_budget), 0),
			       COALESCE(SUM(amount_actual), 0)
			FROM sales_data
			WHERE upload_id = $1 AND year_id = $2 AND month_id = $3`,
			scope.uploadID, scope.yearID, scope.monthID).Scan(&qtyActual, &amountBudget, &amountActual)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}

		metrics := salesMetrics(budgetCases, qtyActual, amountBudget, amountActual,
			config.CollectionAmount(), scope.days)
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"year":          scope.year,
			"month":         scope.month,
			"days_in_month": scope.days,
			"upload_id":     scope.uploadID,
			"metrics":       metrics,
		})
	}
}

// ComparisonProduction is the production-side counterpart. Case budgets use
// the same projection figures the sales block does.
func ComparisonProduction(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, status, errMsg := resolveScope(r, pool)
		if scope == nil {
			api.RespondWithError(w, status, errMsg)
			return
		}

		var budgetCases float64
		err := pool.QueryRow(r.Context(), `
			SELECT COALESCE(SUM(quantity), 0) FROM budget_projection
			WHERE upload_id = $1 AND year_id = $2 AND month_id = $3`,
			scope.uploadID, scope.yearID, scope.monthID).Scan(&budgetCases)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}

		var qtyActual, litersActual float64
		err = pool.QueryRow(r.Context(), `
			SELECT COALESCE(SUM(qty_actual), 0),
			       COALESCE(SUM(qty_actual_liters), 0)
			FROM production_data
			WHERE upload_id = $1 AND year_id = $2 AND month_id = $3`,
			scope.uploadID, scope.yearID, scope.monthID).Scan(&qtyActual, &litersActual)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}

		metrics := productionMetrics(budgetCases, qtyActual, litersActual, scope.days)
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"year":          scope.year,
			"month":         scope.month,
			"days_in_month": scope.days,
			"upload_id":     scope.uploadID,
			"metrics":       metrics,
		})
	}
}
