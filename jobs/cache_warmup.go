package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/stockroom/internal/inventory"
	jobmetrics "github.com/odyssey-erp/stockroom/internal/jobs"
)

// CacheWarmupJob reads the full listing through the cached repository so the
// next API call is served from Redis.
type CacheWarmupJob struct {
	Presenter *inventory.Presenter
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewCacheWarmupJob wires dependencies for the warmup handler.
func NewCacheWarmupJob(presenter *inventory.Presenter, logger *slog.Logger, metrics *jobmetrics.Metrics) *CacheWarmupJob {
	return &CacheWarmupJob{Presenter: presenter, Logger: logger, Metrics: metrics}
}

// Handle processes cache warmup tasks.
func (j *CacheWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Presenter == nil {
		return errors.New("cache warmup: handler not configured")
	}
	var payload CacheWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	metrics := j.Metrics
	if metrics == nil {
		metrics = defaultJobMetrics()
	}
	tracker := metrics.Track(TaskCacheWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("job", TaskCacheWarmup), slog.String("reason", payload.Reason))

	start := time.Now()
	views, err := j.Presenter.GetAllItems(ctx, inventory.Query{})
	if err != nil {
		logger.Error("warm item listing", slog.Any("error", err))
		return err
	}
	logger.Info("completed cache warmup", slog.Int("items", len(views)), slog.Duration("duration", time.Since(start)))
	return nil
}
