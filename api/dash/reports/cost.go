package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"SalesPulse/api"
	"SalesPulse/api/constants"
	"SalesPulse/api/ingest"

	"github.com/jackc/pgx/v5/pgxpool"
)

// GetCost returns the fuel and electricity cost rows for one year, ordered
// by calendar month.
func GetCost(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		yearParam := r.URL.Query().Get("year")
		if yearParam == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrYearRequired)
			return
		}
		year, err := strconv.Atoi(yearParam)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrBadYearParam)
			return
		}

		uploadID, err := ingest.LatestUploadID(r.Context(), pool)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		if uploadID == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrNoData)
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

		rows, err := pool.Query(r.Context(), `
			SELECT m.name, cd.fuel, cd.lec
			FROM cost_data cd
			JOIN months m ON m.id = cd.month_id
			JOIN years y ON y.id = cd.year_id
			WHERE cd.upload_id = $1 AND y.year = $2
			ORDER BY m.month_number`, uploadID, year)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		defer rows.Close()

		costs := []map[string]interface{}{}
		for rows.Next() {
			var month string
			var fuel, lec float64
			if err := rows.Scan(&month, &fuel, &lec); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
				return
			}
			costs = append(costs, map[string]interface{}{
				"month": month,
				"fuel":  round2(fuel),
				"lec":   round2(lec),
			})
		}
		if err := rows.Err(); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"year":      year,
			"upload_id": uploadID,
			"costs":     costs,
		})
	}
}

// UpsertCost writes or overwrites one month's fuel/lec figures against the
// latest successful upload, so a manual correction survives until the next
// file replaces it.
func UpsertCost(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Year  int     `json:"year"`
			Month string  `json:"month"`
			Fuel  float64 `json:"fuel"`
			Lec   float64 `json:"lec"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if req.Year == 0 || req.Month == "" {
			api.RespondWithError(w, http.StatusBadRequest, "year and month are required")
			return
		}

		uploadID, err := ingest.LatestUploadID(r.Context(), pool)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		if uploadID == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrNoData)
			return
		}

		mID, err := monthID(r.Context(), pool, req.Month)
		if err != nil {
			if errors.Is(err, errMonthNotFound) {
				api.RespondWithError(w, http.StatusNotFound, fmt.Sprintf(constants.ErrMonthNotFound, req.Month))
				return
			}
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}

		var yID int64
		err = pool.QueryRow(r.Context(), `
			INSERT INTO years (year) VALUES ($1)
			ON CONFLICT (year) DO UPDATE SET year = EXCLUDED.year
			RETURNING id`, req.Year).Scan(&yID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}

		_, err = pool.Exec(r.Context(), `
			INSERT INTO cost_data (upload_id, year_id, month_id, fuel, lec)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (upload_id, year_id, month_id)
			DO UPDATE SET fuel = EXCLUDED.fuel, lec = EXCLUDED.lec`,
			uploadID, yID, mID, req.Fuel, req.Lec)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}

		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Cost data saved",
			"year":    req.Year,
			"month":   req.Month,
			"fuel":    round2(req.Fuel),
			"lec":     round2(req.Lec),
		})
	}
}
