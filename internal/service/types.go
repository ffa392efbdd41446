package service

import (
	"time"

	"github.com/popeskul/spinecheck/internal/models"
)

// EnqueueResult counts check-in days queued and skipped for one assessment.
type EnqueueResult struct {
	Queued  int `json:"queued"`
	Skipped int `json:"skipped"`
}

type DispatchOptions struct {
	// Limit <= 0 selects the configured default.
	Limit  int
	DryRun bool
}

// DispatchSummary reports one dispatch run. In a dry run Sent counts events that would have
// been sent and nothing is written.
type DispatchSummary struct {
	Sent     int               `json:"sent"`
	Failed   int               `json:"failed"`
	Skipped  int               `json:"skipped"`
	DryRun   bool              `json:"dry_run"`
	Limit    int               `json:"limit"`
	Errors   []DispatchError   `json:"errors"`
	Previews []DispatchPreview `json:"previews,omitempty"`
}

type DispatchError struct {
	EventID      int64  `json:"event_id"`
	AssessmentID string `json:"assessment_id"`
	Error        string `json:"error"`
}

// DispatchPreview is what a dry run would have sent for one event.
type DispatchPreview struct {
	EventID      int64          `json:"event_id"`
	AssessmentID string         `json:"assessment_id"`
	Day          models.Day     `json:"day"`
	Channel      models.Channel `json:"channel"`
	DueAt        time.Time      `json:"due_at"`
	Action       string         `json:"action"`
	Reason       string         `json:"reason,omitempty"`
	Subject      string         `json:"subject,omitempty"`
	Text         string         `json:"text,omitempty"`
}

const (
	previewActionSend = "send"
	previewActionSkip = "skip"
	previewActionFail = "fail"
)

// CheckInHistory is the queue and reply trail of one assessment.
type CheckInHistory struct {
	AssessmentID string                    `json:"assessment_id"`
	Events       []*models.CheckInEvent    `json:"events"`
	Responses    []*models.CheckInResponse `json:"responses"`
}

type HealthState string

const (
	Healthy   HealthState = "healthy"
	Degraded  HealthState = "degraded"
	Unhealthy HealthState = "unhealthy"
)

const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
	StatusRunning      = "running"
	StatusStopped      = "stopped"
	StatusDisabled     = "disabled"
)

type HealthStatus struct {
	Status               HealthState `json:"status"`
	SchedulerStatus      string      `json:"scheduler_status"`
	DatabaseStatus       string      `json:"database_status"`
	RedisStatus          string      `json:"redis_status"`
	CircuitBreakerState  string      `json:"circuit_breaker_state,omitempty"`
	CircuitBreakerStatus string      `json:"circuit_breaker_status,omitempty"`
}
