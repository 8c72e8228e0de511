package ingest

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"SalesPulse/api"
	"SalesPulse/api/constants"
	"SalesPulse/internal/config"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UploadWorkbook accepts a multipart spreadsheet upload and runs the full
// ingestion pipeline on it.
func UploadWorkbook(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)
		if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrFormParseFailed)
			return
		}
		file, header, err := r.FormFile(constants.KeyFile)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrNoFile)
			return
		}
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(header.Filename))
		if ext != ".xlsx" && ext != ".xls" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidFileType)
			return
		}

		api.LogInfo("Processing upload: " + header.Filename)
		res, err := NewProcessor(pool).ProcessWorkbook(r.Context(), header.Filename, file, ext)
		if err != nil {
			api.LogError("Upload failed: " + err.Error())
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		months, err := availableMonths(r.Context(), pool)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		years, err := availableYears(r.Context(), pool)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}

		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message":                "File processed successfully",
			"upload_id":              res.UploadID,
			"sheets_processed":       res.SheetsProcessed,
			"months_years_processed": res.Periods,
			"available_months":       months,
			"available_years":        years,
		})
	}
}

// GetUploadHistory lists every upload attempt, newest first, including
// failed ones with their recorded error.
func GetUploadHistory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := pool.Query(r.Context(), `
			SELECT id, upload_ref, filename, uploaded_at, sheets_processed,
			       periods_processed, is_successful, COALESCE(error_message, '')
			FROM file_uploads
			ORDER BY uploaded_at DESC`)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		defer rows.Close()

		uploads := []map[string]interface{}{}
		for rows.Next() {
			var (
				id           int64
				ref          string
				filename     string
				uploadedAt   time.Time
				sheets       []string
				periods      []string
				isSuccessful bool
				errMsg       string
			)
			if err := rows.Scan(&id, &ref, &filename, &uploadedAt, &sheets, &periods, &isSuccessful, &errMsg); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
				return
			}
			uploads = append(uploads, map[string]interface{}{
				"id":                     id,
				"upload_ref":             ref,
				"filename":               filename,
				"uploaded_at":            uploadedAt.Format(constants.DateFormat),
				"sheets_processed":       sheets,
				"months_years_processed": periods,
				"is_successful":          isSuccessful,
				"error_message":          errMsg,
			})
		}
		if err := rows.Err(); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"uploads": uploads})
	}
}

// DeleteUploadHandler removes one upload with full cascade and orphan
// cleanup.
func DeleteUploadHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidID)
			return
		}
		if err := DeleteUpload(r.Context(), pool, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				api.RespondWithError(w, http.StatusNotFound, constants.ErrUploadNotFound)
				return
			}
			api.LogError("Delete upload failed: " + err.Error())
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Upload deleted successfully",
			"id":      id,
		})
	}
}

// HealthCheck reports store connectivity plus a cheap sanity signal: the
// current fact-row count and the latest successful upload.
func HealthCheck(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var salesRows int64
		if err := pool.QueryRow(r.Context(), `SELECT COUNT(*) FROM sales_data`).Scan(&salesRows); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		latest, err := LatestUploadID(r.Context(), pool)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"status":           "healthy",
			"sales_rows":       salesRows,
			"latest_upload_id": latest,
		})
	}
}

// GetAvailableMonths lists the months the latest successful upload actually
// carries sales rows for; dashboards build their pickers from it.
func GetAvailableMonths(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		months, err := availableMonths(r.Context(), pool)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"months": months})
	}
}

func GetAvailableYears(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		years, err := availableYears(r.Context(), pool)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"years": years})
	}
}

// LatestUploadID returns the newest successful upload, or 0 when none
// exists yet.
func LatestUploadID(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	var id int64
	err := pool.QueryRow(ctx, `
		SELECT id FROM file_uploads
		WHERE is_successful = true
		ORDER BY uploaded_at DESC, id DESC
		LIMIT 1`).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func availableMonths(ctx context.Context, pool *pgxpool.Pool) ([]map[string]interface{}, error) {
	rows, err := pool.Query(ctx, `
		SELECT DISTINCT y.year, m.name, m.month_number
		FROM sales_data sd
		JOIN years y ON y.id = sd.year_id
		JOIN months m ON m.id = sd.month_id
		WHERE sd.upload_id = (
			SELECT id FROM file_uploads WHERE is_successful = true
			ORDER BY uploaded_at DESC, id DESC LIMIT 1
		)
		ORDER BY y.year DESC, m.month_number DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []map[string]interface{}{}
	for rows.Next() {
		var year, monthNumber int
		var name string
		if err := rows.Scan(&year, &name, &monthNumber); err != nil {
			return nil, err
		}
		out = append(out, map[string]interface{}{
			"year":         year,
			"month":        name,
			"month_number": monthNumber,
		})
	}
	return out, rows.Err()
}

func availableYears(ctx context.Context, pool *pgxpool.Pool) ([]int, error) {
	rows, err := pool.Query(ctx, `
		SELECT DISTINCT y.year
		FROM sales_data sd
		JOIN years y ON y.id = sd.year_id
		WHERE sd.upload_id = (
			SELECT id FROM file_uploads WHERE is_successful = true
			ORDER BY uploaded_at DESC, id DESC LIMIT 1
		)
		ORDER BY y.year DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []int{}
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, err
		}
		out = append(out, year)
	}
	return out, rows.Err()
}
