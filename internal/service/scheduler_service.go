package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/popeskul/spinecheck/internal/config"
	"github.com/popeskul/spinecheck/internal/scheduler"
)

type schedulerService struct {
	scheduler       *scheduler.Scheduler
	dispatchService DispatchService
	batchSize       int
	logger          *zap.Logger
}

// NewSchedulerService drives dispatch from an in-process ticker. Runs share the claim step
// with the external cron trigger, so both may be active at once.
func NewSchedulerService(
	cfg *config.Config,
	dispatchService DispatchService,
	logger *zap.Logger,
) SchedulerService {
	interval := time.Duration(cfg.Scheduler.IntervalMinutes) * time.Minute

	svc := &schedulerService{
		dispatchService: dispatchService,
		batchSize:       cfg.Scheduler.BatchSize,
		logger:          logger,
	}

	svc.scheduler = scheduler.NewScheduler(logger, interval, svc.executeDispatchTask)
	return svc
}

func (s *schedulerService) Start() error {
	ctx := context.Background()
	return s.scheduler.Start(ctx)
}

func (s *schedulerService) Stop() error {
	return s.scheduler.Stop()
}

func (s *schedulerService) IsRunning() bool {
	return s.scheduler.IsRunning()
}

func (s *schedulerService) executeDispatchTask(ctx context.Context) error {
	summary, err := s.dispatchService.DispatchDue(ctx, DispatchOptions{Limit: s.batchSize})
	if err != nil {
		return err
	}
	s.logger.Info("Scheduled dispatch finished",
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped))
	return nil
}
