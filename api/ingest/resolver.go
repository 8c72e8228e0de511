package ingest

import (
	"context"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

const uncategorized = "Uncategorized"

type productCacheKey struct {
	name       string
	categoryID int64
}

// RefCache memoizes reference-data ids for a single ingestion run. Months
// are static and preloaded; years, categories and products are created
// lazily with an upsert-returning-id so two concurrent workers resolving
// the same key cannot race into a duplicate. Cache hits take only the read
// lock; the write lock guards the insert-or-fetch path.
type RefCache struct {
	pool *pgxpool.Pool

	mu         sync.RWMutex
	years      map[int]int64
	months     map[string]int64
	categories map[string]int64
	products   map[productCacheKey]int64
}

func NewRefCache(pool *pgxpool.Pool) *RefCache {
	return &RefCache{
		pool:       pool,
		years:      make(map[int]int64),
		months:     make(map[string]int64),
		categories: make(map[string]int64),
		products:   make(map[productCacheKey]int64),
	}
}

// Preload warms the cache with everything already in the store so a
// re-upload mostly avoids round trips.
func (c *RefCache) Preload(ctx context.Context) error {
	rows, err := c.pool.Query(ctx, `SELECT id, name FROM months`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			rows.Close()
			return err
		}
		c.months[name] = id
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = c.pool.Query(ctx, `SELECT id, year FROM years`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var id int64
		var year int
		if err := rows.Scan(&id, &year); err != nil {
			rows.Close()
			return err
		}
		c.years[year] = id
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = c.pool.Query(ctx, `SELECT id, name FROM product_categories`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			rows.Close()
			return err
		}
		c.categories[name] = id
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = c.pool.Query(ctx, `SELECT id, name, category_id FROM products`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var id, categoryID int64
		var name string
		if err := rows.Scan(&id, &name, &categoryID); err != nil {
			rows.Close()
			return err
		}
		c.products[productCacheKey{name, categoryID}] = id
	}
	rows.Close()
	return rows.Err()
}

// MonthID returns the static month id, 0 when the name is unknown.
func (c *RefCache) MonthID(name string) int64 {
	return c.months[name]
}

func (c *RefCache) YearID(ctx context.Context, year int) (int64, error) {
	c.mu.RLock()
	id, ok := c.years[year]
	c.mu.RUnlock()
	if ok {
		return id, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.years[year]; ok {
		return id, nil
	}
	err := c.pool.QueryRow(ctx,
		`INSERT INTO years (year) VALUES ($1)
		 ON CONFLICT (year) DO UPDATE SET year = EXCLUDED.year
		 RETURNING id`, year).Scan(&id)
	if err != nil {
		return 0, err
	}
	c.years[year] = id
	return id, nil
}

func (c *RefCache) CategoryID(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = uncategorized
	}

	c.mu.RLock()
	id, ok := c.categories[name]
	c.mu.RUnlock()
	if ok {
		return id, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.categories[name]; ok {
		return id, nil
	}
	err := c.pool.QueryRow(ctx,
		`INSERT INTO product_categories (name) VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`, name).Scan(&id)
	if err != nil {
		return 0, err
	}
	c.categories[name] = id
	return id, nil
}

// ProductID resolves a product within its category, creating it on first
// sight. A blank product name yields id 0 and no error: the row is skipped
// by the caller rather than failing the sheet.
func (c *RefCache) ProductID(ctx context.Context, name string, categoryID int64, subCategory, typeOfSales string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, nil
	}

	key := productCacheKey{name, categoryID}
	c.mu.RLock()
	id, ok := c.products[key]
	c.mu.RUnlock()
	if ok {
		return id, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.products[key]; ok {
		return id, nil
	}
	err := c.pool.QueryRow(ctx,
		`INSERT INTO products (name, category_id, sub_category, type_of_sales)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))
		 ON CONFLICT (name, category_id) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`,
		name, categoryID, strings.TrimSpace(subCategory), strings.TrimSpace(typeOfSales)).Scan(&id)
	if err != nil {
		return 0, err
	}
	c.products[key] = id
	return id, nil
}
