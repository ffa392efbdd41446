package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/popeskul/spinecheck/internal/channel"
	"github.com/popeskul/spinecheck/internal/repository"
)

// BreakerReporter exposes the SMS transport's circuit breaker.
type BreakerReporter interface {
	State() channel.BreakerState
	Counts() (requests, failures uint32)
}

type healthService struct {
	repo             repository.Repository
	redisClient      *redis.Client
	schedulerService SchedulerService
	breaker          BreakerReporter
}

// NewHealthService builds the health checker. schedulerService and breaker may be nil when the
// in-process scheduler is disabled or the SMS transport has no breaker.
func NewHealthService(
	repo repository.Repository,
	redisClient *redis.Client,
	schedulerService SchedulerService,
	breaker BreakerReporter,
) HealthService {
	return &healthService{
		repo:             repo,
		redisClient:      redisClient,
		schedulerService: schedulerService,
		breaker:          breaker,
	}
}

func (s *healthService) GetHealth(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:          Healthy,
		SchedulerStatus: StatusDisabled,
		DatabaseStatus:  s.checkDatabaseHealth(ctx),
		RedisStatus:     s.checkRedisHealth(ctx),
	}

	if s.schedulerService != nil {
		if s.schedulerService.IsRunning() {
			status.SchedulerStatus = StatusRunning
		} else {
			status.SchedulerStatus = StatusStopped
		}
	}

	var state channel.BreakerState
	if s.breaker != nil {
		state = s.breaker.State()
		requests, failures := s.breaker.Counts()
		status.CircuitBreakerState = string(state)
		if requests > 0 {
			failureRate := float64(failures) / float64(requests) * 100
			status.CircuitBreakerStatus = fmt.Sprintf("Requests: %d, Failures: %d (%.1f%%)", requests, failures, failureRate)
		} else {
			status.CircuitBreakerStatus = "No requests yet"
		}
	}

	if status.DatabaseStatus != StatusConnected || status.RedisStatus != StatusConnected {
		status.Status = Unhealthy
	} else if state == channel.BreakerOpen {
		status.Status = Degraded
	}

	return status
}

func (s *healthService) checkDatabaseHealth(ctx context.Context) string {
	if err := s.repo.Ping(ctx); err != nil {
		return StatusDisconnected
	}
	return StatusConnected
}

func (s *healthService) checkRedisHealth(ctx context.Context) string {
	if s.redisClient == nil {
		return StatusDisconnected
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		return StatusDisconnected
	}
	return StatusConnected
}
