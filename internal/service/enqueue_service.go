package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/popeskul/spinecheck/internal/metrics"
	"github.com/popeskul/spinecheck/internal/models"
	"github.com/popeskul/spinecheck/internal/repository"
)

type enqueueService struct {
	repo    repository.Repository
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewEnqueueService(repo repository.Repository, m *metrics.Metrics, logger *zap.Logger) EnqueueService {
	return &enqueueService{
		repo:    repo,
		metrics: m,
		logger:  logger,
	}
}

// EnqueueForAssessment queues one event per check-in day, due relative to guide delivery.
// Days that already have a live event are counted as skipped.
func (s *enqueueService) EnqueueForAssessment(ctx context.Context, assessmentID string) (*EnqueueResult, error) {
	assessmentID = strings.TrimSpace(assessmentID)
	if assessmentID == "" {
		return nil, fmt.Errorf("%w: assessment_id is required", ErrInvalidRequest)
	}

	assessment, err := s.loadAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if !assessment.DeliveredAt.Valid {
		return nil, fmt.Errorf("%w: %s", ErrAssessmentNotDelivered, assessmentID)
	}
	ch, err := contactChannel(assessment)
	if err != nil {
		return nil, err
	}

	events := make([]*models.CheckInEvent, 0, len(models.CheckInDays))
	for _, day := range models.CheckInDays {
		events = append(events, &models.CheckInEvent{
			AssessmentID: assessment.ID,
			Day:          day,
			DueAt:        assessment.DeliveredAt.Time.Add(day.Offset()).UTC(),
			Status:       models.EventStatusPending,
			Channel:      ch,
		})
	}

	created, err := s.repo.CheckIn().Enqueue(ctx, events)
	if err != nil {
		s.logger.Error("Failed to enqueue check-ins",
			zap.String("assessmentID", assessmentID),
			zap.Error(err))
		return nil, persistenceError("enqueue check-ins", err)
	}

	result := &EnqueueResult{Queued: len(created), Skipped: len(events) - len(created)}
	s.metrics.EnqueueDays(result.Queued, result.Skipped)
	s.logger.Info("Check-ins enqueued",
		zap.String("assessmentID", assessmentID),
		zap.String("channel", ch.String()),
		zap.Int("queued", result.Queued),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *enqueueService) History(ctx context.Context, assessmentID string) (*CheckInHistory, error) {
	assessmentID = strings.TrimSpace(assessmentID)
	if _, err := s.loadAssessment(ctx, assessmentID); err != nil {
		return nil, err
	}

	events, err := s.repo.CheckIn().ListByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	responses, err := s.repo.Response().ListByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	if events == nil {
		events = []*models.CheckInEvent{}
	}
	if responses == nil {
		responses = []*models.CheckInResponse{}
	}
	return &CheckInHistory{AssessmentID: assessmentID, Events: events, Responses: responses}, nil
}

func (s *enqueueService) loadAssessment(ctx context.Context, id string) (*models.Assessment, error) {
	assessment, err := s.repo.Assessment().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAssessmentNotFound, id)
	}
	if err != nil {
		return nil, persistenceError("load assessment", err)
	}
	return assessment, nil
}

// contactChannel prefers email; SMS needs both a phone number and consent.
func contactChannel(a *models.Assessment) (models.Channel, error) {
	if a.Email.Valid && strings.TrimSpace(a.Email.String) != "" {
		return models.ChannelEmail, nil
	}
	if a.Phone.Valid && strings.TrimSpace(a.Phone.String) != "" && a.SMSConsent {
		return models.ChannelSMS, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoContact, a.ID)
}

// recipient returns the address for ch, or "" when the assessment has none.
func recipient(a *models.Assessment, ch models.Channel) string {
	switch ch {
	case models.ChannelEmail:
		if a.Email.Valid {
			return strings.TrimSpace(a.Email.String)
		}
	case models.ChannelSMS:
		if a.Phone.Valid && a.SMSConsent {
			return strings.TrimSpace(a.Phone.String)
		}
	}
	return ""
}
