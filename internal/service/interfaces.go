package service

import (
	"context"

	"github.com/popeskul/spinecheck/internal/models"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_service.go -package=mocks

// EnqueueService schedules check-ins for delivered assessments.
type EnqueueService interface {
	EnqueueForAssessment(ctx context.Context, assessmentID string) (*EnqueueResult, error)
	History(ctx context.Context, assessmentID string) (*CheckInHistory, error)
}

// DispatchService sends due check-ins.
type DispatchService interface {
	DispatchDue(ctx context.Context, opts DispatchOptions) (*DispatchSummary, error)
}

// ResponseService accepts replies from check-in recipients.
type ResponseService interface {
	SubmitNote(ctx context.Context, tok, note string) (*models.CheckInResponse, error)
	// ReplyPage renders the landing page for a reply link. Unusable tokens yield the generic
	// error page and token.ErrInvalidToken.
	ReplyPage(ctx context.Context, tok string) (string, error)
	HandleInboundSMS(ctx context.Context, from, body string) (bool, error)
}

type SchedulerService interface {
	Start() error
	Stop() error
	IsRunning() bool
}

type HealthService interface {
	GetHealth(ctx context.Context) *HealthStatus
}
