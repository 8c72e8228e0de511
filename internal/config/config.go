package config

import (
	"os"
	"strconv"
)

const (
	DefaultTimeZone = "UTC"

	// Ingestion tuning
	BatchSize      = 500
	FactWorkers    = 3
	MaxUploadBytes = 16 << 20

	// Reporting defaults
	FallbackWorkingDays = 27
	DefaultCollection   = 583286.95

	// Failed-upload pruning
	DefaultPruneSchedule = "30 2 * * *"
	DefaultRetentionDays = 14
)

// CollectionAmount is the collection dollar figure shown on the sales
// comparison report. It is not derivable from the workbook, so it stays a
// configuration value (COLLECTION_AMOUNT env var).
func CollectionAmount() float64 {
	if v := os.Getenv("COLLECTION_AMOUNT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return DefaultCollection
}
