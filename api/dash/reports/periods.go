package reports

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	errYearNotFound  = errors.New("year not found")
	errMonthNotFound = errors.New("month not found")
)

func yearID(ctx context.Context, pool *pgxpool.Pool, year int) (int64, error) {
	var id int64
	err := pool.QueryRow(ctx, `SELECT id FROM years WHERE year = $1`, year).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, errYearNotFound
	}
	return id, err
}

func monthID(ctx context.Context, pool *pgxpool.Pool, name string) (int64, error) {
	var id int64
	err := pool.QueryRow(ctx, `SELECT id FROM months WHERE name = $1`, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, errMonthNotFound
	}
	return id, err
}

// yearIDs resolves a comma list like "2024,2025"; unknown years are an
// error so a typo does not silently return an empty report.
func yearIDs(ctx context.Context, pool *pgxpool.Pool, list string) ([]int64, []int, error) {
	var ids []int64
	var years []int
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		year, err := strconv.Atoi(part)
		if err != nil {
			return nil, nil, errYearNotFound
		}
		id, err := yearID(ctx, pool, year)
		if err != nil {
			return nil, nil, err
		}
		ids = append(ids, id)
		years = append(years, year)
	}
	return ids, years, nil
}

func monthIDs(ctx context.Context, pool *pgxpool.Pool, list string) ([]int64, []string, error) {
	var ids []int64
	var names []string
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := monthID(ctx, pool, part)
		if err != nil {
			return nil, nil, err
		}
		ids = append(ids, id)
		names = append(names, part)
	}
	return ids, names, nil
}
