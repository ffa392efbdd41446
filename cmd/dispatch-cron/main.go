// Package main triggers one check-in dispatch run on the server. It exits non-zero when the
// server does not answer 2xx, so the cron runner surfaces the failure.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/popeskul/spinecheck/internal/config"
	"github.com/popeskul/spinecheck/internal/cron"
)

func main() {
	var (
		dryRun  bool
		limit   int
		timeout time.Duration
	)
	flag.BoolVar(&dryRun, "dry-run", false, "Preview the run without sending")
	flag.IntVar(&limit, "limit", 0, "Maximum events to process (0 uses the server default)")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Request timeout")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to load .env file", zap.Error(err))
	}

	cfg, err := config.LoadTriggerConfig(config.ResolvePath())
	if err != nil {
		logger.Error("Failed to load configuration", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	os.Exit(run(logger, cron.Config{
		BaseURL: cfg.App.BaseURL,
		Secret:  cfg.Security.CronSecret,
		DryRun:  dryRun,
		Limit:   limit,
		Timeout: timeout,
	}))
}

func run(logger *zap.Logger, cfg cron.Config) int {
	defer func() {
		_ = logger.Sync()
	}()

	trigger, err := cron.NewTrigger(cfg)
	if err != nil {
		logger.Error("Invalid dispatch trigger configuration", zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := trigger.Run(ctx)
	if err != nil {
		var statusErr *cron.StatusError
		if errors.As(err, &statusErr) {
			logger.Error("Dispatch trigger rejected",
				zap.Int("status", statusErr.StatusCode),
				zap.String("body", statusErr.Body))
		} else {
			logger.Error("Dispatch trigger failed", zap.Error(err))
		}
		return 1
	}

	logger.Info("Dispatch run complete",
		zap.Bool("dryRun", summary.DryRun),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", len(summary.Errors)))
	return 0
}
