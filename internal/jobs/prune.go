package jobs

import (
	"context"
	"fmt"
	"time"

	"SalesPulse/api/ingest"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PruneFailedUploads removes failed uploads older than retentionDays along
// with any partial fact rows they committed. Successful uploads are never
// touched; history for recent failures is kept so operators can inspect the
// recorded error messages.
func PruneFailedUploads(ctx context.Context, pool *pgxpool.Pool, retentionDays int) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	rows, err := pool.Query(ctx,
		`SELECT id FROM file_uploads WHERE is_successful = false AND uploaded_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list stale uploads: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	pruned := 0
	for _, id := range ids {
		if err := ingest.DeleteUpload(ctx, pool, id); err != nil {
			return pruned, fmt.Errorf("prune upload %d: %w", id, err)
		}
		pruned++
	}
	return pruned, nil
}
