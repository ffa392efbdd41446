package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// minTaskTimeout bounds a run when the interval is too short to leave headroom.
const minTaskTimeout = time.Second

// Task is one scheduled unit of work. It must honor ctx cancellation.
type Task func(ctx context.Context) error

// Stats describes the runs since the scheduler was created.
type Stats struct {
	Runs                int
	Failures            int
	ConsecutiveFailures int
	LastRun             time.Time
	LastErr             error
}

// Scheduler runs a task immediately on start and then once per interval. Runs never
// overlap; ticks that land during a run are dropped.
type Scheduler struct {
	logger   *zap.Logger
	interval time.Duration
	task     Task

	mu        sync.RWMutex
	isRunning bool
	cancel    context.CancelFunc
	doneCh    chan struct{}
	stats     Stats
}

func NewScheduler(logger *zap.Logger, interval time.Duration, task Task) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		logger:   logger,
		interval: interval,
		task:     task,
	}
}

// Start launches the loop. The loop ends when ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return ErrSchedulerAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.isRunning = true
	s.cancel = cancel
	s.doneCh = make(chan struct{})

	go s.run(runCtx, s.doneCh)

	s.logger.Info("Scheduler started", zap.Duration("interval", s.interval))
	return nil
}

// Stop cancels an in-flight run and waits for the loop to exit.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	cancel, doneCh := s.cancel, s.doneCh
	s.mu.Unlock()

	cancel()
	<-doneCh

	s.logger.Info("Scheduler stopped")
	return nil
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *Scheduler) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *Scheduler) run(ctx context.Context, doneCh chan<- struct{}) {
	defer close(doneCh)
	defer func() {
		s.mu.Lock()
		s.isRunning = false
		s.cancel()
		s.mu.Unlock()
	}()

	s.executeTask(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.executeTask(ctx)
		}
	}
}

func (s *Scheduler) executeTask(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	timeout := s.interval - time.Second
	if timeout < minTaskTimeout {
		timeout = minTaskTimeout
	}
	taskCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := s.task(taskCtx)
	stats := s.record(start, err)

	if err != nil {
		s.logger.Error("Scheduled task failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
			zap.Int("consecutiveFailures", stats.ConsecutiveFailures))
		return
	}
	s.logger.Debug("Scheduled task completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("runs", stats.Runs))
}

func (s *Scheduler) record(start time.Time, err error) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.Runs++
	s.stats.LastRun = start
	s.stats.LastErr = err
	if err != nil {
		s.stats.Failures++
		s.stats.ConsecutiveFailures++
	} else {
		s.stats.ConsecutiveFailures = 0
	}
	return s.stats
}
