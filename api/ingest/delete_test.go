package ingest

import (
	"context"
	"errors"
	"os"
	"testing"

	"SalesPulse/internal/schema"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func testPool(t *testing.T) (*pgxpool.Pool, context.Context) {
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

func insertUpload(t *testing.T, ctx context.Context, pool *pgxpool.Pool, filename string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(ctx, `
		INSERT INTO file_uploads (upload_ref, filename, is_successful)
		VALUES ($1, $2, true) RETURNING id`,
		uuid.New().String(), filename).Scan(&id)
	if err != nil {
		t.Fatalf("insert upload: %v", err)
	}
	return id
}

func insertSalesRow(t *testing.T, ctx context.Context, pool *pgxpool.Pool, uploadID, yearID, monthID, productID int64) {
	t.Helper()
	_, err := pool.Exec(ctx, `
		INSERT INTO sales_data (upload_id, year_id, month_id, product_id, qty_actual)
		VALUES ($1, $2, $3, $4, 10)`,
		uploadID, yearID, monthID, productID)
	if err != nil {
		t.Fatalf("insert sales row: %v", err)
	}
}

func countRows(t *testing.T, ctx context.Context, pool *pgxpool.Pool, query string, args ...interface{}) int {
	t.Helper()
	var n int
	if err := pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		t.Fatalf("count query: %v", err)
	}
	return n
}

func TestDeleteUploadCascadesAndPurgesOrphans(t *testing.T) {
	pool, ctx := testPool(t)

	cache := NewRefCache(pool)
	if err := cache.Preload(ctx); err != nil {
		t.Fatalf("preload: %v", err)
	}
	july := cache.MonthID("July")
	if july == 0 {
		t.Fatal("months table not seeded")
	}

	sharedYear, err := cache.YearID(ctx, 2090)
	if err != nil {
		t.Fatalf("shared year: %v", err)
	}
	soleYear, err := cache.YearID(ctx, 2091)
	if err != nil {
		t.Fatalf("sole year: %v", err)
	}
	sharedCat, err := cache.CategoryID(ctx, "Cascade Shared")
	if err != nil {
		t.Fatalf("shared category: %v", err)
	}
	soleCat, err := cache.CategoryID(ctx, "Cascade Sole")
	if err != nil {
		t.Fatalf("sole category: %v", err)
	}
	sharedProduct, err := cache.ProductID(ctx, "Cascade Shared Product", sharedCat, "", "")
	if err != nil {
		t.Fatalf("shared product: %v", err)
	}
	soleProduct, err := cache.ProductID(ctx, "Cascade Sole Product", soleCat, "", "")
	if err != nil {
		t.Fatalf("sole product: %v", err)
	}

	doomed := insertUpload(t, ctx, pool, "cascade_doomed.xlsx")
	survivor := insertUpload(t, ctx, pool, "cascade_survivor.xlsx")
	t.Cleanup(func() {
		DeleteUpload(ctx, pool, survivor)
	})

	// The doomed upload references both products; the survivor only the
	// shared one, so the sole product, its category and its year orphan.
	insertSalesRow(t, ctx, pool, doomed, sharedYear, july, sharedProduct)
	insertSalesRow(t, ctx, pool, doomed, soleYear, july, soleProduct)
	insertSalesRow(t, ctx, pool, survivor, sharedYear, july, sharedProduct)

	if err := DeleteUpload(ctx, pool, doomed); err != nil {
		t.Fatalf("DeleteUpload: %v", err)
	}

	if n := countRows(t, ctx, pool, `SELECT COUNT(*) FROM file_uploads WHERE id = $1`, doomed); n != 0 {
		t.Fatalf("deleted upload rows = %d, want 0", n)
	}
	if n := countRows(t, ctx, pool, `SELECT COUNT(*) FROM sales_data WHERE upload_id = $1`, doomed); n != 0 {
		t.Fatalf("deleted upload fact rows = %d, want 0", n)
	}
	if n := countRows(t, ctx, pool, `SELECT COUNT(*) FROM sales_data WHERE upload_id = $1`, survivor); n != 1 {
		t.Fatalf("surviving upload fact rows = %d, want 1", n)
	}

	if n := countRows(t, ctx, pool, `SELECT COUNT(*) FROM products WHERE id = $1`, soleProduct); n != 0 {
		t.Fatalf("orphaned product rows = %d, want 0", n)
	}
	if n := countRows(t, ctx, pool, `SELECT COUNT(*) FROM products WHERE id = $1`, sharedProduct); n != 1 {
		t.Fatalf("referenced product rows = %d, want 1", n)
	}
	if n := countRows(t, ctx, pool, `SELECT COUNT(*) FROM product_categories WHERE id = $1`, soleCat); n != 0 {
		t.Fatalf("orphaned category rows = %d, want 0", n)
	}
	if n := countRows(t, ctx, pool, `SELECT COUNT(*) FROM product_categories WHERE id = $1`, sharedCat); n != 1 {
		t.Fatalf("referenced category rows = %d, want 1", n)
	}
	if n := countRows(t, ctx, pool, `SELECT COUNT(*) FROM years WHERE id = $1`, soleYear); n != 0 {
		t.Fatalf("orphaned year rows = %d, want 0", n)
	}
	if n := countRows(t, ctx, pool, `SELECT COUNT(*) FROM years WHERE id = $1`, sharedYear); n != 1 {
		t.Fatalf("referenced year rows = %d, want 1", n)
	}

	if err := DeleteUpload(ctx, pool, doomed); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}
