package service

import (
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/popeskul/spinecheck/internal/alert"
	"github.com/popeskul/spinecheck/internal/channel"
	"github.com/popeskul/spinecheck/internal/clock"
	"github.com/popeskul/spinecheck/internal/config"
	"github.com/popeskul/spinecheck/internal/metrics"
	"github.com/popeskul/spinecheck/internal/redflag"
	"github.com/popeskul/spinecheck/internal/render"
	"github.com/popeskul/spinecheck/internal/repository"
	"github.com/popeskul/spinecheck/internal/token"
)

// Dependencies are the collaborators built in main.
type Dependencies struct {
	Config   *config.Config
	Repo     repository.Repository
	Redis    *redis.Client
	Adapters channel.Set
	// Breaker is the SMS transport's breaker, nil when the transport has none.
	Breaker  BreakerReporter
	Codec    *token.Codec
	Scanner  *redflag.Scanner
	Renderer *render.Renderer
	Notifier alert.Notifier
	Clock    clock.Clock
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

type Service struct {
	Enqueue  EnqueueService
	Dispatch DispatchService
	Response ResponseService
	// Scheduler is nil unless scheduler.enabled is set.
	Scheduler SchedulerService
	Health    HealthService
}

func NewService(deps Dependencies) *Service {
	enqueueService := NewEnqueueService(deps.Repo, deps.Metrics, deps.Logger)
	dispatchService := NewDispatchService(
		deps.Config.CheckIn, deps.Repo, deps.Adapters, deps.Renderer,
		deps.Redis, deps.Clock, deps.Metrics, deps.Logger,
	)
	responseService := NewResponseService(
		deps.Repo, deps.Codec, deps.Scanner, deps.Renderer,
		deps.Notifier, deps.Clock, deps.Metrics, deps.Logger,
	)

	var schedulerService SchedulerService
	if deps.Config.Scheduler.Enabled {
		schedulerService = NewSchedulerService(deps.Config, dispatchService, deps.Logger)
	}
	healthService := NewHealthService(deps.Repo, deps.Redis, schedulerService, deps.Breaker)

	return &Service{
		Enqueue:   enqueueService,
		Dispatch:  dispatchService,
		Response:  responseService,
		Scheduler: schedulerService,
		Health:    healthService,
	}
}
