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

// YoYGrowth compares each requested month across every year the store has
// data for. With no ?months= filter it covers every month present in the
// latest upload.
func YoYGrowth(pool *pgxpool.Pool) http.HandlerFunc {
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

		query := `
			SELECT m.name, m.month_number, y.year,
			       COALESCE(SUM(sd.qty_actual), 0),
			       COALESCE(SUM(sd.amount_actual), 0)
			FROM sales_data sd
			JOIN months m ON m.id = sd.month_id
			JOIN years y ON y.id = sd.year_id
			WHERE sd.upload_id = $1`
		args := []interface{}{uploadID}

		if list := r.URL.Query().Get("months"); list != "" {
			ids, _, err := monthIDs(r.Context(), pool, list)
			if err != nil {
				api.RespondWithError(w, http.StatusNotFound, err.Error())
				return
			}
			args = append(args, ids)
			query += fmt.Sprintf(" AND sd.month_id = ANY($%d)", len(args))
		}
		query += ` GROUP BY m.name, m.month_number, y.year
			ORDER BY m.month_number, y.year`

		rows, err := pool.Query(r.Context(), query, args...)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		defer rows.Close()

		type yearPoint struct {
			Year         int      `json:"year"`
			Cases        float64  `json:"cases"`
			Amount       float64  `json:"amount"`
			CaseGrowth   *float64 `json:"case_growth_pct"`
			AmountGrowth *float64 `json:"amount_growth_pct"`
		}
		type monthSeries struct {
			Month string      `json:"month"`
			Years []yearPoint `json:"years"`
		}

		var series []monthSeries
		var monthOrderSeen []int
		byMonth := map[int]*monthSeries{}
		for rows.Next() {
			var name string
			var monthNumber, year int
			var cases, amount float64
			if err := rows.Scan(&name, &monthNumber, &year, &cases, &amount); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
				return
			}
			ms := byMonth[monthNumber]
			if ms == nil {
				ms = &monthSeries{Month: name}
				byMonth[monthNumber] = ms
				monthOrderSeen = append(monthOrderSeen, monthNumber)
			}
			pt := yearPoint{Year: year, Cases: round2(cases), Amount: round2(amount)}
			if n := len(ms.Years); n > 0 {
				prev := ms.Years[n-1]
				pt.CaseGrowth = growthPct(cases, prev.Cases)
				pt.AmountGrowth = growthPct(amount, prev.Amount)
			}
			ms.Years = append(ms.Years, pt)
		}
		if err := rows.Err(); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		for _, n := range monthOrderSeen {
			series = append(series, *byMonth[n])
		}
		if series == nil {
			series = []monthSeries{}
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"upload_id": uploadID,
			"months":    series,
		})
	}
}

// MoMGrowth walks one year month by month, each point carrying its growth
// against the previous month. Defaults to the latest year with sales data.
func MoMGrowth(pool *pgxpool.Pool) http.HandlerFunc {
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

		var year int
		if v := r.URL.Query().Get("year"); v != "" {
			year, err = strconv.Atoi(v)
			if err != nil {
				api.RespondWithError(w, http.StatusBadRequest, constants.ErrBadYearParam)
				return
			}
			if _, err := yearID(r.Context(), pool, year); err != nil {
				if errors.Is(err, errYearNotFound) {
					api.RespondWithError(w, http.StatusNotFound, fmt.Sprintf(constants.ErrYearNotFound, year))
					return
				}
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
				return
			}
		} else {
			err = pool.QueryRow(r.Context(), `
				SELECT COALESCE(MAX(y.year), 0)
				FROM sales_data sd
				JOIN years y ON y.id = sd.year_id
				WHERE sd.upload_id = $1`, uploadID).Scan(&year)
			if err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
				return
			}
			if year == 0 {
				api.RespondWithError(w, http.StatusNotFound, constants.ErrNoData)
				return
			}
		}

		rows, err := pool.Query(r.Context(), `
			SELECT m.name, COALESCE(SUM(sd.qty_actual), 0), COALESCE(SUM(sd.amount_actual), 0)
			FROM sales_data sd
			JOIN months m ON m.id = sd.month_id
			JOIN years y ON y.id = sd.year_id
			WHERE sd.upload_id = $1 AND y.year = $2
			GROUP BY m.name, m.month_number
			ORDER BY m.month_number`, uploadID, year)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		defer rows.Close()

		type monthPoint struct {
			Month        string   `json:"month"`
			Cases        float64  `json:"cases"`
			Amount       float64  `json:"amount"`
			CaseGrowth   *float64 `json:"case_growth_pct"`
			AmountGrowth *float64 `json:"amount_growth_pct"`
		}
		points := []monthPoint{}
		var prevCases, prevAmount float64
		for rows.Next() {
			var name string
			var cases, amount float64
			if err := rows.Scan(&name, &cases, &amount); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
				return
			}
			pt := monthPoint{Month: name, Cases: round2(cases), Amount: round2(amount)}
			if len(points) > 0 {
				pt.CaseGrowth = growthPct(cases, prevCases)
				pt.AmountGrowth = growthPct(amount, prevAmount)
			}
			points = append(points, pt)
			prevCases, prevAmount = cases, amount
		}
		if err := rows.Err(); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"upload_id": uploadID,
			"year":      year,
			"months":    points,
		})
	}
}
