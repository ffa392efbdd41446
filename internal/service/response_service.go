package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/popeskul/spinecheck/internal/alert"
	"github.com/popeskul/spinecheck/internal/channel"
	"github.com/popeskul/spinecheck/internal/clock"
	"github.com/popeskul/spinecheck/internal/metrics"
	"github.com/popeskul/spinecheck/internal/models"
	"github.com/popeskul/spinecheck/internal/redflag"
	"github.com/popeskul/spinecheck/internal/render"
	"github.com/popeskul/spinecheck/internal/repository"
	"github.com/popeskul/spinecheck/internal/token"
)

const (
	maxNoteLength   = 5000
	optOutSourceSMS = "sms_keyword"
)

// stopKeywords are the carrier-standard SMS opt-out words.
var stopKeywords = map[string]struct{}{
	"STOP":        {},
	"STOPALL":     {},
	"UNSUBSCRIBE": {},
	"CANCEL":      {},
	"END":         {},
	"QUIT":        {},
}

type responseService struct {
	repo     repository.Repository
	codec    *token.Codec
	scanner  *redflag.Scanner
	renderer *render.Renderer
	notifier alert.Notifier
	clock    clock.Clock
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewResponseService(
	repo repository.Repository,
	codec *token.Codec,
	scanner *redflag.Scanner,
	renderer *render.Renderer,
	notifier alert.Notifier,
	clk clock.Clock,
	m *metrics.Metrics,
	logger *zap.Logger,
) ResponseService {
	if clk == nil {
		clk = clock.New()
	}
	return &responseService{
		repo:     repo,
		codec:    codec,
		scanner:  scanner,
		renderer: renderer,
		notifier: notifier,
		clock:    clk,
		metrics:  m,
		logger:   logger,
	}
}

// SubmitNote records a reply. Assessment, day and branch come only from the verified token.
// A red-flag match raises an urgent alert whose failure never fails the submission.
func (s *responseService) SubmitNote(ctx context.Context, tok, note string) (*models.CheckInResponse, error) {
	payload, err := s.codec.Verify(tok)
	if err != nil {
		s.logger.Info("Rejected check-in note", zap.Error(err))
		return nil, err
	}

	note = strings.TrimSpace(note)
	if runes := []rune(note); len(runes) > maxNoteLength {
		note = string(runes[:maxNoteLength])
	}
	matched := s.scanner.Scan(ctx, note)
	if matched == nil {
		matched = []string{}
	}

	resp := &models.CheckInResponse{
		AssessmentID:    payload.AssessmentID,
		Day:             payload.Day,
		Branch:          payload.Value,
		Note:            sql.NullString{String: note, Valid: note != ""},
		RedFlagsMatched: pq.StringArray(matched),
	}
	if err := s.repo.Response().Create(ctx, resp); err != nil {
		s.logger.Error("Failed to record check-in response",
			zap.String("assessmentID", payload.AssessmentID),
			zap.Int("day", int(payload.Day)),
			zap.Error(err))
		return nil, persistenceError("record response", err)
	}
	s.metrics.ResponseRecorded(resp.Branch.String(), matched)

	s.logger.Info("Check-in response recorded",
		zap.Int64("responseID", resp.ID),
		zap.String("assessmentID", resp.AssessmentID),
		zap.Int("day", int(resp.Day)),
		zap.String("branch", resp.Branch.String()),
		zap.Int("redFlags", len(matched)))

	if len(matched) > 0 {
		s.raiseAlert(ctx, resp)
	}
	return resp, nil
}

func (s *responseService) raiseAlert(ctx context.Context, resp *models.CheckInResponse) {
	if s.notifier == nil {
		s.metrics.AlertOutcome("disabled")
		s.logger.Warn("Red flags matched but no alert notifier configured",
			zap.Int64("responseID", resp.ID))
		return
	}

	// The response is already stored; the alert runs on its own timeout.
	err := s.notifier.Notify(context.WithoutCancel(ctx), alert.NewRedFlagEvent(resp, s.clock.Now()))
	fields := []zap.Field{
		zap.Int64("responseID", resp.ID),
		zap.String("assessmentID", resp.AssessmentID),
		zap.Strings("redFlags", resp.RedFlagsMatched),
	}

	var deliveryErr *alert.DeliveryError
	switch {
	case err == nil:
		s.metrics.AlertOutcome("sent")
		s.logger.Info("Urgent alert sent", fields...)
	case errors.Is(err, alert.ErrDuplicate):
		s.metrics.AlertOutcome("duplicate")
		s.logger.Info("Urgent alert already sent in window", fields...)
	case errors.Is(err, alert.ErrDisabled):
		s.metrics.AlertOutcome("disabled")
		s.logger.Warn("Red flags matched but alert webhook is not configured", fields...)
	case errors.Is(err, alert.ErrAlertTimeout):
		s.metrics.AlertOutcome("timeout")
		s.logger.Error("Urgent alert timed out", append(fields, zap.Error(err))...)
	case errors.As(err, &deliveryErr):
		s.metrics.AlertOutcome("failed")
		s.logger.Error("Urgent alert rejected",
			append(fields, zap.Int("statusCode", deliveryErr.StatusCode), zap.Error(err))...)
	default:
		s.metrics.AlertOutcome("failed")
		s.logger.Error("Urgent alert failed", append(fields, zap.Error(err))...)
	}
}

func (s *responseService) ReplyPage(ctx context.Context, tok string) (string, error) {
	payload, err := s.codec.Verify(tok)
	if err != nil {
		return s.renderer.ErrorPage(), err
	}

	rc := render.ReplyContext{}
	assessment, err := s.repo.Assessment().GetByID(ctx, payload.AssessmentID)
	switch {
	case err == nil:
		rc.FirstName = assessment.FirstName.String
		rc.Insert = s.replyInsert(ctx, assessment.DiagnosisCode, payload)
	case errors.Is(err, repository.ErrNotFound):
		s.logger.Warn("Reply for unknown assessment", zap.String("assessmentID", payload.AssessmentID))
	default:
		s.logger.Warn("Failed to load assessment for reply page",
			zap.String("assessmentID", payload.AssessmentID),
			zap.Error(err))
	}

	page, err := s.renderer.ReplyPage(payload.Value, payload.Day, payload.AssessmentID, rc)
	if err != nil {
		s.logger.Error("Failed to render reply page", zap.Error(err))
		return s.renderer.ErrorPage(), fmt.Errorf("failed to render reply page: %w", err)
	}
	return page.HTML, nil
}

func (s *responseService) replyInsert(ctx context.Context, diagnosisCode string, p token.Payload) string {
	if diagnosisCode == "" {
		return ""
	}
	ins, err := s.repo.Content().GetInsert(ctx, diagnosisCode, p.Day, p.Value)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Failed to load diagnosis insert", zap.Error(err))
		}
		return ""
	}
	return ins.InsertText
}

// HandleInboundSMS records an opt-out when body is a stop keyword. It reports whether the
// sender was opted out.
func (s *responseService) HandleInboundSMS(ctx context.Context, from, body string) (bool, error) {
	if !isStopKeyword(body) {
		return false, nil
	}
	phone, err := channel.NormalizePhone(from)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := s.repo.OptOut().OptOut(ctx, phone, optOutSourceSMS, s.clock.Now().UTC()); err != nil {
		s.logger.Error("Failed to record SMS opt-out", zap.Error(err))
		return false, persistenceError("record opt-out", err)
	}
	s.logger.Info("SMS opt-out recorded", zap.String("source", optOutSourceSMS))
	return true, nil
}

func isStopKeyword(body string) bool {
	fields := strings.Fields(strings.ToUpper(body))
	if len(fields) == 0 {
		return false
	}
	_, ok := stopKeywords[strings.Trim(fields[0], ".!")]
	return ok
}
