package schema

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Reference tables are shared across uploads; every fact table carries an
// upload_id so each ingestion run stays a self-contained dataset.
var ddl = []string{
	`CREATE TABLE IF NOT EXISTS file_uploads (
		id BIGSERIAL PRIMARY KEY,
		upload_ref UUID NOT NULL,
		filename TEXT NOT NULL,
		uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		sheets_processed TEXT[],
		periods_processed TEXT[],
		is_successful BOOLEAN NOT NULL DEFAULT false,
		error_message TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS years (
		id BIGSERIAL PRIMARY KEY,
		year INT UNIQUE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS months (
		id BIGSERIAL PRIMARY KEY,
		name TEXT UNIQUE NOT NULL,
		short_name TEXT NOT NULL,
		month_number INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS product_categories (
		id BIGSERIAL PRIMARY KEY,
		name TEXT UNIQUE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		category_id BIGINT NOT NULL REFERENCES product_categories(id),
		sub_category TEXT,
		name TEXT NOT NULL,
		type_of_sales TEXT,
		UNIQUE (name, category_id)
	)`,
	`CREATE TABLE IF NOT EXISTS working_days (
		id BIGSERIAL PRIMARY KEY,
		upload_id BIGINT NOT NULL REFERENCES file_uploads(id),
		year_id BIGINT NOT NULL REFERENCES years(id),
		month_id BIGINT NOT NULL REFERENCES months(id),
		days INT NOT NULL,
		UNIQUE (upload_id, year_id, month_id)
	)`,
	`CREATE TABLE IF NOT EXISTS budget_projection (
		id BIGSERIAL PRIMARY KEY,
		upload_id BIGINT NOT NULL REFERENCES file_uploads(id),
		year_id BIGINT NOT NULL REFERENCES years(id),
		month_id BIGINT NOT NULL REFERENCES months(id),
		product_id BIGINT NOT NULL REFERENCES products(id),
		quantity DOUBLE PRECISION NOT NULL DEFAULT 0,
		UNIQUE (upload_id, year_id, month_id, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS sales_data (
		id BIGSERIAL PRIMARY KEY,
		upload_id BIGINT NOT NULL REFERENCES file_uploads(id),
		year_id BIGINT NOT NULL REFERENCES years(id),
		month_id BIGINT NOT NULL REFERENCES months(id),
		product_id BIGINT NOT NULL REFERENCES products(id),
		qty_budget DOUBLE PRECISION NOT NULL DEFAULT 0,
		amount_budget DOUBLE PRECISION NOT NULL DEFAULT 0,
		qty_actual DOUBLE PRECISION NOT NULL DEFAULT 0,
		amount_actual DOUBLE PRECISION NOT NULL DEFAULT 0,
		qty_liters_budget DOUBLE PRECISION NOT NULL DEFAULT 0,
		qty_liters_actual DOUBLE PRECISION NOT NULL DEFAULT 0,
		UNIQUE (upload_id, year_id, month_id, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS production_data (
		id BIGSERIAL PRIMARY KEY,
		upload_id BIGINT NOT NULL REFERENCES file_uploads(id),
		year_id BIGINT NOT NULL REFERENCES years(id),
		month_id BIGINT NOT NULL REFERENCES months(id),
		product_id BIGINT NOT NULL REFERENCES products(id),
		qty_budget DOUBLE PRECISION NOT NULL DEFAULT 0,
		qty_budget_liters DOUBLE PRECISION NOT NULL DEFAULT 0,
		qty_actual DOUBLE PRECISION NOT NULL DEFAULT 0,
		qty_actual_liters DOUBLE PRECISION NOT NULL DEFAULT 0,
		UNIQUE (upload_id, year_id, month_id, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS sales_by_channel (
		id BIGSERIAL PRIMARY KEY,
		upload_id BIGINT NOT NULL REFERENCES file_uploads(id),
		year_id BIGINT NOT NULL REFERENCES years(id),
		month_id BIGINT NOT NULL REFERENCES months(id),
		salesman TEXT NOT NULL,
		location TEXT NOT NULL,
		type_of_sales TEXT,
		amount DOUBLE PRECISION NOT NULL DEFAULT 0,
		UNIQUE (upload_id, year_id, month_id, salesman, location, type_of_sales)
	)`,
	`CREATE TABLE IF NOT EXISTS cost_data (
		id BIGSERIAL PRIMARY KEY,
		upload_id BIGINT NOT NULL REFERENCES file_uploads(id),
		year_id BIGINT NOT NULL REFERENCES years(id),
		month_id BIGINT NOT NULL REFERENCES months(id),
		fuel DOUBLE PRECISION NOT NULL DEFAULT 0,
		lec DOUBLE PRECISION NOT NULL DEFAULT 0,
		UNIQUE (upload_id, year_id, month_id)
	)`,
}

var monthSeed = [][3]interface{}{
	{"January", "Jan", 1}, {"February", "Feb", 2}, {"March", "Mar", 3},
	{"April", "Apr", 4}, {"May", "May", 5}, {"June", "Jun", 6},
	{"July", "Jul", 7}, {"August", "Aug", 8}, {"September", "Sep", 9},
	{"October", "Oct", 10}, {"November", "Nov", 11}, {"December", "Dec", 12},
}

// Init creates the schema if missing and seeds the static month table.
func Init(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range ddl {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema init: %w", err)
		}
	}
	for _, m := range monthSeed {
		_, err := pool.Exec(ctx,
			`INSERT INTO months (name, short_name, month_number) VALUES ($1, $2, $3)
			 ON CONFLICT (name) DO NOTHING`,
			m[0], m[1], m[2])
		if err != nil {
			return fmt.Errorf("seed months: %w", err)
		}
	}
	return nil
}
