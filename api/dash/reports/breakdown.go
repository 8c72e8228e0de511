package reports

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"SalesPulse/api"
	"SalesPulse/api/constants"
	"SalesPulse/api/ingest"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CategoryBreakdown aggregates actuals per product category for a set of
// years and months. metric selects the fact table: sales (default) or
// production.
func CategoryBreakdown(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uploadID, err := ingest.LatestUploadID(r.Context(), pool)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		if uploadID == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrNoData)
			return
		}

		metricName := r.URL.Query().Get("metric")
		if metricName == "" {
			metricName = "sales"
		}
		var table string
		switch metricName {
		case "sales":
			table = "sales_data"
		case "production":
			table = "production_data"
		default:
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrBadMetric)
			return
		}

		query := `
			SELECT pc.name,
			       COALESCE(SUM(f.qty_actual), 0),
			       COALESCE(SUM(f.qty_budget), 0)
			FROM ` + table + ` f
			JOIN products p ON p.id = f.product_id
			JOIN product_categories pc ON pc.id = p.category_id
			WHERE f.upload_id = $1`
		args := []interface{}{uploadID}

		if list := r.URL.Query().Get("years"); list != "" {
			ids, _, err := yearIDs(r.Context(), pool, list)
			if err != nil {
				api.RespondWithError(w, http.StatusNotFound, err.Error())
				return
			}
			args = append(args, ids)
			query += fmt.Sprintf(" AND f.year_id = ANY($%d)", len(args))
		}
		if list := r.URL.Query().Get("months"); list != "" {
			ids, _, err := monthIDs(r.Context(), pool, list)
			if err != nil {
				api.RespondWithError(w, http.StatusNotFound, err.Error())
				return
			}
			args = append(args, ids)
			query += fmt.Sprintf(" AND f.month_id = ANY($%d)", len(args))
		}
		query += ` GROUP BY pc.name ORDER BY pc.name`

		rows, err := pool.Query(r.Context(), query, args...)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		defer rows.Close()

		categories := []map[string]interface{}{}
		for rows.Next() {
			var name string
			var actual, budget float64
			if err := rows.Scan(&name, &actual, &budget); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
				return
			}
			categories = append(categories, map[string]interface{}{
				"category": name,
				"actual":   round2(actual),
				"budget":   round2(budget),
			})
		}
		if err := rows.Err(); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"metric":     metricName,
			"upload_id":  uploadID,
			"categories": categories,
		})
	}
}

// ByChannel breaks one month's channel sales down by salesman, location and
// type of sale.
func ByChannel(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uploadID, err := ingest.LatestUploadID(r.Context(), pool)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		if uploadID == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrNoData)
			return
		}

		year := defaultReportYear
		if v := r.URL.Query().Get("year"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				api.RespondWithError(w, http.StatusBadRequest, constants.ErrBadYearParam)
				return
			}
			year = n
		}
		month := defaultReportMonth
		if v := r.URL.Query().Get("month"); v != "" {
			month = v
		}

		yID, err := yearID(r.Context(), pool, year)
		if err != nil {
			if errors.Is(err, errYearNotFound) {
				api.RespondWithError(w, http.StatusNotFound, fmt.Sprintf(constants.ErrYearNotFound, year))
				return
			}
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		mID, err := monthID(r.Context(), pool, month)
		if err != nil {
			if errors.Is(err, errMonthNotFound) {
				api.RespondWithError(w, http.StatusNotFound, fmt.Sprintf(constants.ErrMonthNotFound, month))
				return
			}
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}

		rows, err := pool.Query(r.Context(), `
			SELECT salesman, location, type_of_sales, COALESCE(SUM(amount), 0)
			FROM sales_by_channel
			WHERE upload_id = $1 AND year_id = $2 AND month_id = $3
			GROUP BY salesman, location, type_of_sales
			ORDER BY salesman, location, type_of_sales`,
			uploadID, yID, mID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		defer rows.Close()

		channels := []map[string]interface{}{}
		var total float64
		for rows.Next() {
			var salesman, location, typeOfSales string
			var amount float64
			if err := rows.Scan(&salesman, &location, &typeOfSales, &amount); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
				return
			}
			total += amount
			channels = append(channels, map[string]interface{}{
				"salesman":      salesman,
				"location":      location,
				"type_of_sales": typeOfSales,
				"amount":        round2(amount),
			})
		}
		if err := rows.Err(); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"year":      year,
			"month":     month,
			"upload_id": uploadID,
			"total":     round2(total),
			"channels":  channels,
		})
	}
}
