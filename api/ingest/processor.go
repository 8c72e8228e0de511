package ingest

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"SalesPulse/api"
	"SalesPulse/api/constants"
	"SalesPulse/internal/config"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Processor drives one ingestion run: reference sheets first (they build
// the entity cache the fact sheets rely on), then the independent fact
// sheets on a small worker pool, then the cost block. Each sheet's batch
// commits on its own; a failure later in the run does not roll back earlier
// sheets. Reports only ever read the latest successful upload, so partial
// rows from a failed run stay invisible.
type Processor struct {
	pool  *pgxpool.Pool
	cache *RefCache
}

func NewProcessor(pool *pgxpool.Pool) *Processor {
	return &Processor{pool: pool, cache: NewRefCache(pool)}
}

// Result is what the upload endpoint reports back for one ingestion run.
type Result struct {
	UploadID        int64    `json:"upload_id"`
	SheetsProcessed []string `json:"sheets_processed"`
	Periods         []string `json:"months_years_processed"`
}

func (p *Processor) ProcessWorkbook(ctx context.Context, filename string, r io.Reader, ext string) (*Result, error) {
	uploadID, err := p.createUploadRecord(ctx, filename)
	if err != nil {
		return nil, err
	}

	res, err := p.run(ctx, uploadID, r, ext)
	if err != nil {
		p.markFailed(ctx, uploadID, err)
		return nil, err
	}
	if err := p.markSucceeded(ctx, uploadID, res.SheetsProcessed, res.Periods); err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Processor) run(ctx context.Context, uploadID int64, r io.Reader, ext string) (*Result, error) {
	wb, err := ReadWorkbook(r, ext)
	if err != nil {
		return nil, err
	}
	if err := p.cache.Preload(ctx); err != nil {
		return nil, err
	}

	var sheets []string
	all := make(periodSet)

	// Reference phase: working days and the projection sheet create most of
	// the year/category/product rows the fact sheets will look up.
	if sd, ok := wb.Sheets[constants.SheetWorkingDays]; ok {
		days, periods, err := accumulateWorkingDays(ctx, p.cache, sd.Rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", constants.SheetWorkingDays, err)
		}
		if err := p.insertWorkingDays(ctx, uploadID, days); err != nil {
			return nil, fmt.Errorf("%s: %w", constants.SheetWorkingDays, err)
		}
		sheets = append(sheets, constants.SheetWorkingDays)
		all.merge(periods)
	}
	if sd, ok := wb.Sheets[constants.SheetBudgetProjection]; ok {
		quantities, periods, err := accumulateBudgetProjection(ctx, p.cache, sd)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", constants.SheetBudgetProjection, err)
		}
		if err := p.insertBudgetProjection(ctx, uploadID, quantities); err != nil {
			return nil, fmt.Errorf("%s: %w", constants.SheetBudgetProjection, err)
		}
		sheets = append(sheets, constants.SheetBudgetProjection)
		all.merge(periods)
	}

	// Fact phase: the remaining sheets are independent of each other.
	type sheetJob struct {
		name string
		run  func() (periodSet, error)
	}
	var jobs []sheetJob
	if sd, ok := wb.Sheets[constants.SheetSales]; ok {
		jobs = append(jobs, sheetJob{constants.SheetSales, func() (periodSet, error) {
			totals, periods, err := accumulateSales(ctx, p.cache, sd.Rows)
			if err != nil {
				return nil, err
			}
			return periods, p.insertSales(ctx, uploadID, totals)
		}})
	}
	if sd, ok := wb.Sheets[constants.SheetProduction]; ok {
		jobs = append(jobs, sheetJob{constants.SheetProduction, func() (periodSet, error) {
			totals, periods, err := accumulateProduction(ctx, p.cache, sd.Rows)
			if err != nil {
				return nil, err
			}
			return periods, p.insertProduction(ctx, uploadID, totals)
		}})
	}
	if sd, ok := wb.Sheets[constants.SheetSalesByChannel]; ok {
		jobs = append(jobs, sheetJob{constants.SheetSalesByChannel, func() (periodSet, error) {
			totals, periods, err := accumulateChannel(ctx, p.cache, sd.Rows)
			if err != nil {
				return nil, err
			}
			return periods, p.insertChannel(ctx, uploadID, totals)
		}})
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		sem      = make(chan struct{}, config.FactWorkers)
		failures []string
	)
	for _, job := range jobs {
		wg.Add(1)
		go func(job sheetJob) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			periods, err := job.run()
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, fmt.Sprintf("%s: %v", job.name, err))
				return
			}
			sheets = append(sheets, job.name)
			all.merge(periods)
		}(job)
	}
	wg.Wait()
	if len(failures) > 0 {
		sort.Strings(failures)
		return nil, fmt.Errorf("sheet processing failed: %s", strings.Join(failures, "; "))
	}

	// Cost phase.
	if len(wb.CostRows) > 0 {
		costs, periods, err := accumulateCost(ctx, p.cache, wb.CostRows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", constants.SheetDashboard, err)
		}
		if err := p.insertCost(ctx, uploadID, costs); err != nil {
			return nil, fmt.Errorf("%s: %w", constants.SheetDashboard, err)
		}
		if len(costs) > 0 {
			sheets = append(sheets, constants.SheetDashboard)
			all.merge(periods)
		}
	}

	return &Result{UploadID: uploadID, SheetsProcessed: sheets, Periods: all.sorted()}, nil
}

func (p *Processor) createUploadRecord(ctx context.Context, filename string) (int64, error) {
	var id int64
	err := p.pool.QueryRow(ctx,
		`INSERT INTO file_uploads (upload_ref, filename) VALUES ($1, $2) RETURNING id`,
		uuid.New().String(), filename).Scan(&id)
	return id, err
}

func (p *Processor) markSucceeded(ctx context.Context, uploadID int64, sheets, periods []string) error {
	_, err := p.pool.Exec(ctx,
		`UPDATE file_uploads
		 SET is_successful = true, sheets_processed = $1, periods_processed = $2
		 WHERE id = $3`,
		sheets, periods, uploadID)
	return err
}

func (p *Processor) markFailed(ctx context.Context, uploadID int64, cause error) {
	_, err := p.pool.Exec(ctx,
		`UPDATE file_uploads SET is_successful = false, error_message = $1 WHERE id = $2`,
		cause.Error(), uploadID)
	if err != nil {
		// The original failure is what the caller sees; this one only loses
		// the recorded history entry.
		api.LogError("failed to record upload error: %v", err)
	}
}

// copyInChunks bounds the size of each CopyFrom call so a very large file
// never turns into one giant transaction.
func (p *Processor) copyInChunks(ctx context.Context, table string, cols []string, rows [][]interface{}) error {
	for start := 0; start < len(rows); start += config.BatchSize {
		end := start + config.BatchSize
		if end > len(rows) {
			end = len(rows)
		}
		_, err := p.pool.CopyFrom(ctx, pgx.Identifier{table}, cols, pgx.CopyFromRows(rows[start:end]))
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) insertWorkingDays(ctx context.Context, uploadID int64, days map[factKey]int) error {
	rows := make([][]interface{}, 0, len(days))
	for k, v := range days {
		rows = append(rows, []interface{}{uploadID, k.yearID, k.monthID, v})
	}
	return p.copyInChunks(ctx, "working_days",
		[]string{"upload_id", "year_id", "month_id", "days"}, rows)
}

func (p *Processor) insertBudgetProjection(ctx context.Context, uploadID int64, quantities map[factKey]float64) error {
	rows := make([][]interface{}, 0, len(quantities))
	for k, v := range quantities {
		rows = append(rows, []interface{}{uploadID, k.yearID, k.monthID, k.productID, v})
	}
	return p.copyInChunks(ctx, "budget_projection",
		[]string{"upload_id", "year_id", "month_id", "product_id", "quantity"}, rows)
}

func (p *Processor) insertSales(ctx context.Context, uploadID int64, totals map[factKey]*salesTotals) error {
	rows := make([][]interface{}, 0, len(totals))
	for k, t := range totals {
		rows = append(rows, []interface{}{
			uploadID, k.yearID, k.monthID, k.productID,
			t.qtyBudget, t.amountBudget, t.qtyActual, t.amountActual,
			t.litersBudget, t.litersActual,
		})
	}
	return p.copyInChunks(ctx, "sales_data",
		[]string{"upload_id", "year_id", "month_id", "product_id",
			"qty_budget", "amount_budget", "qty_actual", "amount_actual",
			"qty_liters_budget", "qty_liters_actual"}, rows)
}

func (p *Processor) insertProduction(ctx context.Context, uploadID int64, totals map[factKey]*productionTotals) error {
	rows := make([][]interface{}, 0, len(totals))
	for k, t := range totals {
		rows = append(rows, []interface{}{
			uploadID, k.yearID, k.monthID, k.productID,
			t.qtyBudget, t.litersBudget, t.qtyActual, t.litersActual,
		})
	}
	return p.copyInChunks(ctx, "production_data",
		[]string{"upload_id", "year_id", "month_id", "product_id",
			"qty_budget", "qty_budget_liters", "qty_actual", "qty_actual_liters"}, rows)
}

func (p *Processor) insertChannel(ctx context.Context, uploadID int64, totals map[channelKey]float64) error {
	rows := make([][]interface{}, 0, len(totals))
	for k, amount := range totals {
		rows = append(rows, []interface{}{
			uploadID, k.yearID, k.monthID, k.salesman, k.location, k.typeOfSales, amount,
		})
	}
	return p.copyInChunks(ctx, "sales_by_channel",
		[]string{"upload_id", "year_id", "month_id", "salesman", "location", "type_of_sales", "amount"}, rows)
}

func (p *Processor) insertCost(ctx context.Context, uploadID int64, costs map[factKey]costTotals) error {
	rows := make([][]interface{}, 0, len(costs))
	for k, c := range costs {
		rows = append(rows, []interface{}{uploadID, k.yearID, k.monthID, c.fuel, c.lec})
	}
	return p.copyInChunks(ctx, "cost_data",
		[]string{"upload_id", "year_id", "month_id", "fuel", "lec"}, rows)
}
