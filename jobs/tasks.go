package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockScan reports items at or below their reorder threshold.
	TaskLowStockScan = "inventory:low_stock_scan"
	// TaskCacheWarmup reloads the item listing into the read cache.
	TaskCacheWarmup = "inventory:cache_warmup"
)

// LowStockScanPayload scopes a scan. An empty category scans everything.
type LowStockScanPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
	Category     string    `json:"category,omitempty"`
}

// NewLowStockScanTask constructs an Asynq task for the low stock scan.
func NewLowStockScanTask(at time.Time, category string) (*asynq.Task, error) {
	body, err := json.Marshal(LowStockScanPayload{ScheduledFor: at, Category: category})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, body, asynq.Queue(QueueDefault)), nil
}

// CacheWarmupPayload carries scheduling metadata.
type CacheWarmupPayload struct {
	Reason string `json:"reason,omitempty"`
}

// NewCacheWarmupTask constructs an Asynq task for cache warmup.
func NewCacheWarmupTask(reason string) (*asynq.Task, error) {
	body, err := json.Marshal(CacheWarmupPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCacheWarmup, body, asynq.Queue(QueueDefault), asynq.Unique(time.Minute)), nil
}
