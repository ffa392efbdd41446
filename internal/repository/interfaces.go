package repository

import (
	"context"
	"time"

	"github.com/popeskul/spinecheck/internal/models"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_repository.go -package=mocks

// Repository interface defines all repository operations.
type Repository interface {
	// Ping checks database connectivity
	Ping(ctx context.Context) error

	CheckIn() CheckInRepository
	Assessment() AssessmentRepository
	Content() ContentRepository
	Response() ResponseRepository
	OptOut() OptOutRepository
	Settings() SettingsRepository
	Operator() OperatorRepository
}

// CheckInRepository is the check-in queue.
type CheckInRepository interface {
	// Enqueue inserts events in one transaction and returns the rows that were created.
	// Events that collide with a live row for the same assessment and day are skipped.
	Enqueue(ctx context.Context, events []*models.CheckInEvent) ([]*models.CheckInEvent, error)
	// Claim atomically moves up to limit due events to sending and returns them,
	// oldest-due first. Failed events stay eligible while attempts < maxAttempts.
	Claim(ctx context.Context, now time.Time, limit, maxAttempts int) ([]*models.CheckInEvent, error)
	// ListDue returns what Claim would return without changing any row.
	ListDue(ctx context.Context, now time.Time, limit, maxAttempts int) ([]*models.CheckInEvent, error)
	MarkSent(ctx context.Context, id int64, providerMessageID string, at time.Time) error
	MarkFailed(ctx context.Context, id int64, errMsg string, at time.Time) error
	MarkSkipped(ctx context.Context, id int64, reason string, at time.Time) error
	ListByAssessment(ctx context.Context, assessmentID string) ([]*models.CheckInEvent, error)
}

type AssessmentRepository interface {
	GetByID(ctx context.Context, id string) (*models.Assessment, error)
}

// ContentRepository reads editable message content.
type ContentRepository interface {
	GetTemplate(ctx context.Context, key string) (*models.MessageTemplate, error)
	GetInsert(ctx context.Context, diagnosisCode string, day models.Day, branch models.Branch) (*models.DiagnosisInsert, error)
}

type ResponseRepository interface {
	Create(ctx context.Context, resp *models.CheckInResponse) error
	ListByAssessment(ctx context.Context, assessmentID string) ([]*models.CheckInResponse, error)
}

// OptOutRepository holds channel suppression lists. Phones are E.164, emails lowercase.
type OptOutRepository interface {
	IsOptedOut(ctx context.Context, phone string) (bool, error)
	OptOut(ctx context.Context, phone, source string, at time.Time) error
	IsEmailSuppressed(ctx context.Context, email string) (bool, error)
}

type SettingsRepository interface {
	RedFlagTerms(ctx context.Context) ([]string, error)
}

type OperatorRepository interface {
	GetByKeyHash(ctx context.Context, keyHash string) (*models.Operator, error)
}
