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

// defaultJobMetrics backs jobs built without explicit metrics. It registers on
// the process-wide Prometheus registerer on first use.
func defaultJobMetrics() *jobmetrics.Metrics {
	return jobmetrics.NewMetrics(nil)
}

// maxReportedItems bounds how many individual SKUs one scan logs.
const maxReportedItems = 50

var stockStatuses = []string{
	string(inventory.StockStatusOutOfStock),
	string(inventory.StockStatusLowStock),
	string(inventory.StockStatusInStock),
}

// LowStockReport summarises one scan.
type LowStockReport struct {
	Summary    inventory.Summary
	OutOfStock []string
	LowStock   []string
}

// LowStockScanJob logs items that need reordering and publishes stock gauges.
type LowStockScanJob struct {
	Presenter *inventory.Presenter
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewLowStockScanJob wires dependencies for the scan handler.
func NewLowStockScanJob(presenter *inventory.Presenter, logger *slog.Logger, metrics *jobmetrics.Metrics) *LowStockScanJob {
	return &LowStockScanJob{
		Presenter: presenter,
		Logger:    logger,
		Metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes low stock scan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Presenter == nil {
		return errors.New("low stock scan: handler not configured")
	}
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	_, err := j.Scan(ctx, payload)
	return err
}

// Scan runs the scan directly. Invalid queries are not retried.
func (j *LowStockScanJob) Scan(ctx context.Context, payload LowStockScanPayload) (report LowStockReport, resultErr error) {
	tracker := j.metrics().Track(TaskLowStockScan)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	if payload.Category != "" {
		logger = logger.With(slog.String("category", payload.Category))
	}
	start := j.now()

	var criteria inventory.Criteria
	if payload.Category != "" {
		criteria.Category = &payload.Category
	}
	summary, err := j.Presenter.Summary(ctx, criteria)
	if err != nil {
		logger.Error("summarise stock", slog.Any("error", err))
		return LowStockReport{}, skipIfInvalid(err)
	}
	report.Summary = summary

	for _, status := range []inventory.StockStatus{inventory.StockStatusOutOfStock, inventory.StockStatusLowStock} {
		c := criteria
		c.StockStatus = &status
		views, err := j.Presenter.GetAllItems(ctx, inventory.Query{
			Criteria: c,
			Sort:     inventory.SortSpec{Field: inventory.SortByQuantity, Direction: inventory.SortAsc},
		})
		if err != nil {
			logger.Error("list flagged items", slog.String("status", string(status)), slog.Any("error", err))
			return LowStockReport{}, skipIfInvalid(err)
		}
		skus := make([]string, 0, len(views))
		for i, v := range views {
			skus = append(skus, v.SKU)
			if i < maxReportedItems {
				logger.Warn("reorder needed",
					slog.String("sku", v.SKU),
					slog.String("status", string(v.StockStatus)),
					slog.Int64("quantity", v.Quantity),
					slog.Int64("threshold", v.ReorderThreshold),
					slog.String("supplier", v.Supplier))
			}
		}
		if status == inventory.StockStatusOutOfStock {
			report.OutOfStock = skus
		} else {
			report.LowStock = skus
		}
	}

	counts := make(map[string]int, len(summary.ByStatus))
	for status, n := range summary.ByStatus {
		counts[string(status)] = n
	}
	j.metrics().SetStockLevels(counts, stockStatuses...)

	logger.Info("completed low stock scan",
		slog.Int("items", summary.Total),
		slog.Int("out_of_stock", len(report.OutOfStock)),
		slog.Int("low_stock", len(report.LowStock)),
		slog.Duration("duration", time.Since(start)))
	return report, nil
}

func skipIfInvalid(err error) error {
	if errors.Is(err, inventory.ErrInvalidQuery) {
		return errors.Join(err, asynq.SkipRetry)
	}
	return err
}

func (j *LowStockScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLowStockScan))
	}
	return slog.Default().With(slog.String("job", TaskLowStockScan))
}

func (j *LowStockScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics()
}

func (j *LowStockScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
