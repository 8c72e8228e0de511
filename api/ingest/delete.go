package ingest

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("upload not found")

var factTables = []string{
	"working_days",
	"budget_projection",
	"sales_data",
	"production_data",
	"sales_by_channel",
	"cost_data",
}

// DeleteUpload removes one upload and all fact rows tied to it, then purges
// reference rows no remaining upload uses. Everything runs in a single
// transaction so a failed delete leaves the store untouched.
func DeleteUpload(ctx context.Context, pool *pgxpool.Pool, uploadID int64) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range factTables {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE upload_id = $1`, uploadID); err != nil {
			return err
		}
	}

	tag, err := tx.Exec(ctx, `DELETE FROM file_uploads WHERE id = $1`, uploadID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	// Orphan purge: products first, then the categories and years they held
	// alive.
	if _, err := tx.Exec(ctx, `
		DELETE FROM products WHERE id NOT IN (
			SELECT product_id FROM sales_data
			UNION SELECT product_id FROM budget_projection
			UNION SELECT product_id FROM production_data
		)`); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM product_categories WHERE id NOT IN (
			SELECT DISTINCT category_id FROM products
		)`); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM years WHERE id NOT IN (
			SELECT year_id FROM working_days
			UNION SELECT year_id FROM budget_projection
			UNION SELECT year_id FROM sales_data
			UNION SELECT year_id FROM production_data
			UNION SELECT year_id FROM sales_by_channel
			UNION SELECT year_id FROM cost_data
		)`); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
