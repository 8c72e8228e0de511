package jobs

import (
	"context"
	"log"
	"time"

	"SalesPulse/internal/config"
	"SalesPulse/internal/logger"
	"SalesPulse/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
)

// CronService runs the nightly failed-upload pruner. Failed ingestion runs
// can leave partial fact rows behind (sheet batches commit independently);
// reports never see them, but they still take up space until pruned.
type CronService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
	cron   *cron.Cron
}

func NewCronService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &CronService{config: cfg, pool: pool}
}

func (s *CronService) Name() string {
	return "jobs"
}

func (s *CronService) Start() error {
	schedule := config.DefaultPruneSchedule
	retentionDays := config.DefaultRetentionDays
	if s.config != nil {
		if v, ok := s.config["prune_schedule"].(string); ok && v != "" {
			schedule = v
		}
		if v := cfgInt(s.config, "retention_days"); v > 0 {
			retentionDays = v
		}
	}

	loc, err := time.LoadLocation(config.DefaultTimeZone)
	if err != nil {
		loc = time.UTC
	}
	s.cron = cron.New(cron.WithLocation(loc))
	_, err = s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		pruned, err := PruneFailedUploads(ctx, s.pool, retentionDays)
		if err != nil {
			log.Printf("[ERROR] upload prune failed: %v", err)
			return
		}
		if pruned > 0 && logger.GlobalLogger != nil {
			logger.GlobalLogger.LogAudit("pruned stale failed uploads")
		}
		log.Printf("[INFO] upload prune removed %d failed uploads", pruned)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("[INFO] jobs service started, prune schedule %q retention %dd", schedule, retentionDays)
	return nil
}

func (s *CronService) Stop() error {
	if s.cron != nil {
		s.cron.Stop()
	}
	return nil
}

func cfgInt(cfg map[string]interface{}, key string) int {
	switch v := cfg[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
