// Package api holds the HTTP request and response shapes and the route table.
package api

import (
	"time"
)

// HealthResponseStatus mirrors service.HealthState on the wire.
type HealthResponseStatus string

const (
	Healthy   HealthResponseStatus = "healthy"
	Degraded  HealthResponseStatus = "degraded"
	Unhealthy HealthResponseStatus = "unhealthy"
)

type SchedulerResponseStatus string

const (
	SchedulerResponseStatusStarted SchedulerResponseStatus = "started"
	SchedulerResponseStatusStopped SchedulerResponseStatus = "stopped"
)

type ErrorResponse struct {
	Error     string     `json:"error"`
	Message   string     `json:"message"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type HealthResponse struct {
	Status               HealthResponseStatus `json:"status"`
	Timestamp            time.Time            `json:"timestamp"`
	DatabaseStatus       *string              `json:"database_status,omitempty"`
	RedisStatus          *string              `json:"redis_status,omitempty"`
	SchedulerStatus      *string              `json:"scheduler_status,omitempty"`
	CircuitBreakerState  *string              `json:"circuit_breaker_state,omitempty"`
	CircuitBreakerStatus *string              `json:"circuit_breaker_status,omitempty"`
}

type SchedulerResponse struct {
	Status  SchedulerResponseStatus `json:"status"`
	Message string                  `json:"message"`
}

// DispatchRequest is the body of an operator dispatch. A nil Limit selects the default.
// The snake_case dry_run spelling is still accepted.
type DispatchRequest struct {
	Limit        *int  `json:"limit,omitempty"`
	DryRun       *bool `json:"dryRun,omitempty"`
	LegacyDryRun *bool `json:"dry_run,omitempty"`
}

// IsDryRun reports the requested mode. dryRun wins when both spellings are present.
func (r DispatchRequest) IsDryRun() bool {
	if r.DryRun != nil {
		return *r.DryRun
	}
	return r.LegacyDryRun != nil && *r.LegacyDryRun
}

type EnqueueRequest struct {
	AssessmentID string `json:"assessment_id"`
}

// NoteRequest is a reply note. Only the token decides which assessment and day it belongs to.
type NoteRequest struct {
	Token string `json:"token"`
	Note  string `json:"note"`
}

type NoteResponse struct {
	Success bool `json:"success"`
}

type InboundSMSRequest struct {
	From string `json:"from"`
	Body string `json:"body"`
}

type InboundSMSResponse struct {
	OptedOut bool `json:"opted_out"`
}

type PreviewDispatchParams struct {
	Limit *int
}

type CronDispatchParams struct {
	DryRun *bool
	Limit  *int
}

type ReplyPageParams struct {
	Token string
}
