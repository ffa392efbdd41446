// Package handler provides HTTP request handlers for the application.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/popeskul/spinecheck/internal/api"
	"github.com/popeskul/spinecheck/internal/middleware"
	"github.com/popeskul/spinecheck/internal/scheduler"
	"github.com/popeskul/spinecheck/internal/service"
)

const (
	schedulerMessageStarted = "Scheduler started successfully"
	schedulerMessageStopped = "Scheduler stopped successfully"
)

type Handler struct {
	service *service.Service
	logger  *zap.Logger
}

var _ api.ServerInterface = (*Handler)(nil)

func NewHandler(service *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// StartScheduler implements api.ServerInterface.
func (h *Handler) StartScheduler(w http.ResponseWriter, r *http.Request) {
	if h.service.Scheduler == nil {
		h.sendError(w, r, http.StatusConflict, errorCodeSchedulerDisabled, errorMessageSchedulerDisabled)
		return
	}

	err := h.service.Scheduler.Start()
	if err != nil {
		if errors.Is(err, scheduler.ErrSchedulerAlreadyRunning) {
			h.sendError(w, r, http.StatusConflict, errorCodeSchedulerAlreadyRunning, errorMessageSchedulerAlreadyRunning)
			return
		}

		h.logger.Error("Failed to start scheduler",
			zap.String("requestID", middleware.GetRequestID(r.Context())),
			zap.Error(err))
		h.sendError(w, r, http.StatusInternalServerError, middleware.ErrorCodeInternal, errorMessageFailedToStartScheduler)
		return
	}

	render.JSON(w, r, api.SchedulerResponse{
		Status:  api.SchedulerResponseStatusStarted,
		Message: schedulerMessageStarted,
	})
}

// StopScheduler implements api.ServerInterface.
func (h *Handler) StopScheduler(w http.ResponseWriter, r *http.Request) {
	if h.service.Scheduler == nil {
		h.sendError(w, r, http.StatusConflict, errorCodeSchedulerDisabled, errorMessageSchedulerDisabled)
		return
	}

	err := h.service.Scheduler.Stop()
	if err != nil {
		if errors.Is(err, scheduler.ErrSchedulerNotRunning) {
			h.sendError(w, r, http.StatusConflict, errorCodeSchedulerNotRunning, errorMessageSchedulerNotRunning)
			return
		}

		h.logger.Error("Failed to stop scheduler",
			zap.String("requestID", middleware.GetRequestID(r.Context())),
			zap.Error(err))
		h.sendError(w, r, http.StatusInternalServerError, middleware.ErrorCodeInternal, errorMessageFailedToStopScheduler)
		return
	}

	render.JSON(w, r, api.SchedulerResponse{
		Status:  api.SchedulerResponseStatusStopped,
		Message: schedulerMessageStopped,
	})
}

// HealthCheck implements api.ServerInterface.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := h.service.Health.GetHealth(r.Context())

	response := api.HealthResponse{
		Status:    api.HealthResponseStatus(health.Status),
		Timestamp: time.Now(),
	}

	if health.SchedulerStatus != "" {
		response.SchedulerStatus = &health.SchedulerStatus
	}

	if health.DatabaseStatus != "" {
		response.DatabaseStatus = &health.DatabaseStatus
	}

	if health.RedisStatus != "" {
		response.RedisStatus = &health.RedisStatus
	}

	if health.CircuitBreakerStatus != "" {
		response.CircuitBreakerStatus = &health.CircuitBreakerStatus
	}

	if health.CircuitBreakerState != "" {
		response.CircuitBreakerState = &health.CircuitBreakerState
	}

	// Degraded still answers 200 so the service stays in rotation.
	if health.Status == service.Unhealthy {
		render.Status(r, http.StatusServiceUnavailable)
	}

	render.JSON(w, r, response)
}

// InvalidParam answers query parameters the router could not parse.
func (h *Handler) InvalidParam(w http.ResponseWriter, r *http.Request, err error) {
	h.sendError(w, r, http.StatusBadRequest, errorCodeInvalidRequest, err.Error())
}

func (h *Handler) sendError(w http.ResponseWriter, r *http.Request, statusCode int, errorCode, message string) {
	render.Status(r, statusCode)
	render.JSON(w, r, api.ErrorResponse{
		Error:   errorCode,
		Message: message,
		Timestamp: func() *time.Time {
			t := time.Now()
			return &t
		}(),
	})
}
