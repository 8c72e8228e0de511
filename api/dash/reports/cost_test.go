package reports

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"SalesPulse/internal/schema"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func costTestPool(t *testing.T) (*pgxpool.Pool, context.Context) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := schema.Init(ctx, pool); err != nil {
		t.Fatalf("schema init: %v", err)
	}
	return pool, ctx
}

func TestGetCostYearResolution(t *testing.T) {
	pool, ctx := costTestPool(t)

	var uploadID int64
	err := pool.QueryRow(ctx, `
		INSERT INTO file_uploads (upload_ref, filename, is_successful)
		VALUES ($1, $2, true) RETURNING id`,
		uuid.New().String(), "cost_year_test.xlsx").Scan(&uploadID)
	if err != nil {
		t.Fatalf("insert upload: %v", err)
	}
	t.Cleanup(func() {
		pool.Exec(ctx, `DELETE FROM file_uploads WHERE id = $1`, uploadID)
	})

	// A year the reference table does not carry is a 404, not an empty 200.
	req := httptest.NewRequest(http.MethodGet, "/api/reports/cost?year=1901", nil)
	rr := httptest.NewRecorder()
	GetCost(pool)(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown year status = %d, want %d", rr.Code, http.StatusNotFound)
	}

	var yID int64
	err = pool.QueryRow(ctx, `
		INSERT INTO years (year) VALUES (1902)
		ON CONFLICT (year) DO UPDATE SET year = EXCLUDED.year
		RETURNING id`).Scan(&yID)
	if err != nil {
		t.Fatalf("insert year: %v", err)
	}
	t.Cleanup(func() {
		pool.Exec(ctx, `DELETE FROM years WHERE id = $1`, yID)
	})

	req = httptest.NewRequest(http.MethodGet, "/api/reports/cost?year=1902", nil)
	rr = httptest.NewRecorder()
	GetCost(pool)(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("known year status = %d, want %d (body %s)", rr.Code, http.StatusOK, rr.Body.String())
	}
}
