package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/urfave/cli/v2"

	jobscli "github.com/odyssey-erp/stockroom/cmd/stockroom/cli"
	"github.com/odyssey-erp/stockroom/internal/app"
	"github.com/odyssey-erp/stockroom/internal/inventory"
	"github.com/odyssey-erp/stockroom/internal/observability"
	"github.com/odyssey-erp/stockroom/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := &cli.App{
		Name:  "stockroom",
		Usage: "inventory query and presentation service",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: func(c *cli.Context) error { return serve(c.Context) },
			},
			{
				Name:  "jobs",
				Usage: "inspect and trigger background jobs",
				Subcommands: []*cli.Command{
					{
						Name:      "trigger",
						Usage:     "enqueue a job",
						ArgsUsage: fmt.Sprintf("<%s|%s> [category|reason]", jobs.TaskLowStockScan, jobs.TaskCacheWarmup),
						Action:    triggerJob,
					},
					{
						Name:   "stats",
						Usage:  "print default queue statistics",
						Action: queueStats,
					},
					{
						Name:  "scheduled",
						Usage: "list scheduled tasks",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "size", Value: 10, Usage: "page size"},
						},
						Action: listScheduled,
					},
				},
			},
		},
		DefaultCommand: "serve",
	}

	if err := runner.RunContext(ctx, os.Args); err != nil {
		slog.Default().Error("stockroom", slog.Any("error", err))
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := app.NewLogger(cfg)
	metrics := observability.NewMetrics()

	stack, err := app.NewInventoryStack(ctx, cfg, logger, metrics)
	if err != nil {
		return fmt.Errorf("init inventory: %w", err)
	}
	defer func() {
		if err := stack.Close(); err != nil {
			logger.Warn("close inventory stack", slog.Any("error", err))
		}
	}()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		InventoryHandler: inventory.NewHandler(logger, stack.Service, stack.Presenter),
		JobHandler:       jobs.NewHandler(inspector, logger),
		Metrics:          metrics,
		HealthChecks:     stack.Checks,
	})

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server",
			slog.String("addr", cfg.AppAddr),
			slog.String("store", cfg.StoreDriver),
			slog.Int64("reorder_threshold", cfg.ReorderThreshold))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func openJobsCLI() (*jobscli.JobsCLI, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return jobscli.NewJobsCLI(cfg.RedisAddr)
}

func triggerJob(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("job name required", 2)
	}
	helper, err := openJobsCLI()
	if err != nil {
		return err
	}
	defer helper.Close()

	info, err := helper.Trigger(c.Context, c.Args().Get(0), c.Args().Get(1))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
	return nil
}

func queueStats(c *cli.Context) error {
	helper, err := openJobsCLI()
	if err != nil {
		return err
	}
	defer helper.Close()

	stats, err := helper.InspectQueue(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "queue=%s pending=%d active=%d scheduled=%d retry=%d archived=%d\n",
		stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Archived)
	return nil
}

func listScheduled(c *cli.Context) error {
	helper, err := openJobsCLI()
	if err != nil {
		return err
	}
	defer helper.Close()

	tasks, err := helper.ListScheduled(c.Context, c.Int("size"))
	if err != nil {
		return err
	}
	for _, task := range tasks {
		fmt.Fprintf(c.App.Writer, "%s %s next=%s\n", task.ID, task.Type, task.NextProcessAt.Format(time.RFC3339))
	}
	return nil
}
