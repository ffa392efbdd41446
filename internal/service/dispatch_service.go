package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/popeskul/spinecheck/internal/channel"
	"github.com/popeskul/spinecheck/internal/clock"
	"github.com/popeskul/spinecheck/internal/config"
	"github.com/popeskul/spinecheck/internal/metrics"
	"github.com/popeskul/spinecheck/internal/models"
	"github.com/popeskul/spinecheck/internal/render"
	"github.com/popeskul/spinecheck/internal/repository"
)

const (
	providerIDCacheTTL = 24 * time.Hour

	outcomeSent    = "sent"
	outcomeFailed  = "failed"
	outcomeSkipped = "skipped"

	skipReasonAssessmentMissing = "assessment not found"
	skipReasonNoContact         = "no contact for channel"
	skipReasonSuppressed        = "recipient opted out"
	skipReasonInvalidRecipient  = "invalid recipient"
)

type dispatchService struct {
	cfg         config.CheckInConfig
	repo        repository.Repository
	adapters    channel.Set
	renderer    *render.Renderer
	redisClient *redis.Client
	clock       clock.Clock
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

func NewDispatchService(
	cfg config.CheckInConfig,
	repo repository.Repository,
	adapters channel.Set,
	renderer *render.Renderer,
	redisClient *redis.Client,
	clk clock.Clock,
	m *metrics.Metrics,
	logger *zap.Logger,
) DispatchService {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if clk == nil {
		clk = clock.New()
	}
	return &dispatchService{
		cfg:         cfg,
		repo:        repo,
		adapters:    adapters,
		renderer:    renderer,
		redisClient: redisClient,
		clock:       clk,
		metrics:     m,
		logger:      logger,
	}
}

// prepared is an event that passed the contact and suppression checks and has been rendered.
type prepared struct {
	adapter channel.Adapter
	to      string
	message *render.Message
}

// eventOutcome is the result of processing one claimed event.
type eventOutcome struct {
	status string
	err    string
}

// DispatchDue sends up to limit due events, oldest first. Events are claimed atomically
// before any send, so overlapping runs never deliver the same event twice.
func (s *dispatchService) DispatchDue(ctx context.Context, opts DispatchOptions) (*DispatchSummary, error) {
	start := s.clock.Now()
	limit := s.effectiveLimit(opts)
	defer func() {
		s.metrics.DispatchRun(opts.DryRun, s.clock.Now().Sub(start))
	}()

	summary := &DispatchSummary{DryRun: opts.DryRun, Limit: limit, Errors: []DispatchError{}}
	if opts.DryRun {
		return s.dryRun(ctx, start.UTC(), summary)
	}

	events, err := s.repo.CheckIn().Claim(ctx, start.UTC(), limit, s.cfg.MaxAttempts)
	if err != nil {
		s.logger.Error("Failed to claim due check-ins", zap.Error(err))
		return nil, persistenceError("claim check-ins", err)
	}
	if len(events) == 0 {
		s.logger.Info("No due check-ins")
		return summary, nil
	}
	s.logger.Info("Claimed due check-ins", zap.Int("count", len(events)), zap.Int("limit", limit))

	// Claimed rows must reach a terminal stamp even if the caller goes away.
	workCtx := context.WithoutCancel(ctx)
	outcomes := make([]eventOutcome, len(events))

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for i, ev := range events {
		g.Go(func() error {
			outcomes[i] = s.deliver(workCtx, ev)
			return nil
		})
	}
	_ = g.Wait()

	for i, out := range outcomes {
		switch out.status {
		case outcomeSent:
			summary.Sent++
		case outcomeFailed:
			summary.Failed++
		case outcomeSkipped:
			summary.Skipped++
		}
		if out.err != "" {
			summary.Errors = append(summary.Errors, DispatchError{
				EventID:      events[i].ID,
				AssessmentID: events[i].AssessmentID,
				Error:        out.err,
			})
		}
	}

	s.logger.Info("Dispatch run completed",
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Duration("duration", s.clock.Now().Sub(start)))
	return summary, nil
}

func (s *dispatchService) effectiveLimit(opts DispatchOptions) int {
	limit := opts.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
		if opts.DryRun && s.cfg.DryRunLimit > 0 {
			limit = s.cfg.DryRunLimit
		}
	}
	if s.cfg.MaxLimit > 0 && limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	return limit
}

func (s *dispatchService) dryRun(ctx context.Context, now time.Time, summary *DispatchSummary) (*DispatchSummary, error) {
	events, err := s.repo.CheckIn().ListDue(ctx, now, summary.Limit, s.cfg.MaxAttempts)
	if err != nil {
		s.logger.Error("Failed to list due check-ins", zap.Error(err))
		return nil, fmt.Errorf("failed to list due check-ins: %w", err)
	}

	summary.Previews = make([]DispatchPreview, 0, len(events))
	for _, ev := range events {
		preview := DispatchPreview{
			EventID:      ev.ID,
			AssessmentID: ev.AssessmentID,
			Day:          ev.Day,
			Channel:      ev.Channel,
			DueAt:        ev.DueAt,
		}

		p, skipReason, err := s.prepare(ctx, ev)
		switch {
		case err != nil:
			preview.Action = previewActionFail
			preview.Reason = err.Error()
			summary.Failed++
			summary.Errors = append(summary.Errors, DispatchError{
				EventID:      ev.ID,
				AssessmentID: ev.AssessmentID,
				Error:        err.Error(),
			})
		case skipReason != "":
			preview.Action = previewActionSkip
			preview.Reason = skipReason
			summary.Skipped++
		default:
			preview.Action = previewActionSend
			preview.Subject = p.message.Subject
			preview.Text = p.message.Text
			summary.Sent++
		}
		summary.Previews = append(summary.Previews, preview)
	}
	return summary, nil
}

// prepare resolves the recipient, checks suppression and renders the message. A non-empty
// skip reason means the event must not be sent.
func (s *dispatchService) prepare(ctx context.Context, ev *models.CheckInEvent) (*prepared, string, error) {
	assessment, err := s.repo.Assessment().GetByID(ctx, ev.AssessmentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, skipReasonAssessmentMissing, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load assessment: %w", err)
	}

	adapter, ok := s.adapters.For(ev.Channel)
	if !ok {
		return nil, "", fmt.Errorf("no adapter configured for channel %q", ev.Channel)
	}
	to := recipient(assessment, ev.Channel)
	if to == "" {
		return nil, skipReasonNoContact, nil
	}

	suppressed, err := adapter.Suppressed(ctx, to)
	if errors.Is(err, channel.ErrInvalidRecipient) {
		return nil, skipReasonInvalidRecipient, nil
	}
	if err != nil {
		return nil, "", err
	}
	if suppressed {
		return nil, skipReasonSuppressed, nil
	}

	msg, err := s.renderer.Outbound(render.OutboundInput{
		AssessmentID: ev.AssessmentID,
		Day:          ev.Day,
		Channel:      ev.Channel,
		FirstName:    assessment.FirstName.String,
		Template:     s.template(ctx, ev),
		Insert:       s.insert(ctx, assessment.DiagnosisCode, ev.Day),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to render check-in: %w", err)
	}
	return &prepared{adapter: adapter, to: to, message: msg}, "", nil
}

// template returns nil when the shell is missing or unreadable; the renderer falls back to
// its built-in shell.
func (s *dispatchService) template(ctx context.Context, ev *models.CheckInEvent) *models.MessageTemplate {
	key := models.TemplateKey(ev.Day, ev.Channel)
	tmpl, err := s.repo.Content().GetTemplate(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Failed to load message template, using default",
				zap.String("templateKey", key),
				zap.Error(err))
		}
		return nil
	}
	return tmpl
}

// insert returns the steady-state copy for the diagnosis, or "" when there is none.
func (s *dispatchService) insert(ctx context.Context, diagnosisCode string, day models.Day) string {
	if diagnosisCode == "" {
		return ""
	}
	ins, err := s.repo.Content().GetInsert(ctx, diagnosisCode, day, models.BranchSame)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Failed to load diagnosis insert, omitting",
				zap.String("diagnosisCode", diagnosisCode),
				zap.Int("day", int(day)),
				zap.Error(err))
		}
		return ""
	}
	return ins.InsertText
}

func (s *dispatchService) deliver(ctx context.Context, ev *models.CheckInEvent) eventOutcome {
	logger := s.logger.With(
		zap.Int64("eventID", ev.ID),
		zap.String("assessmentID", ev.AssessmentID),
		zap.Int("day", int(ev.Day)),
		zap.String("channel", ev.Channel.String()))

	p, skipReason, err := s.prepare(ctx, ev)
	if err != nil {
		return s.fail(ctx, logger, ev, err)
	}
	if skipReason != "" {
		return s.skip(ctx, logger, ev, skipReason)
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeoutDuration())
	res, err := p.adapter.Send(sendCtx, channel.Message{
		To:      p.to,
		Subject: p.message.Subject,
		HTML:    p.message.HTML,
		Text:    p.message.Text,
	})
	cancel()
	if errors.Is(err, channel.ErrSuppressed) {
		return s.skip(ctx, logger, ev, skipReasonSuppressed)
	}
	if errors.Is(err, channel.ErrInvalidRecipient) {
		return s.skip(ctx, logger, ev, skipReasonInvalidRecipient)
	}
	if err != nil {
		return s.fail(ctx, logger, ev, err)
	}

	providerID := ""
	if res != nil {
		providerID = res.ProviderMessageID
	}
	now := s.clock.Now().UTC()
	out := eventOutcome{status: outcomeSent}
	if err := s.repo.CheckIn().MarkSent(ctx, ev.ID, providerID, now); err != nil {
		logger.Error("Check-in sent but not recorded", zap.String("providerMessageID", providerID), zap.Error(err))
		out.err = fmt.Sprintf("sent but not recorded: %v", err)
	}
	s.cacheProviderID(ctx, logger, ev, providerID, now)
	s.metrics.DispatchEvent(ev.Channel.String(), outcomeSent)

	logger.Info("Check-in sent", zap.String("providerMessageID", providerID))
	return out
}

func (s *dispatchService) fail(ctx context.Context, logger *zap.Logger, ev *models.CheckInEvent, cause error) eventOutcome {
	logger.Error("Failed to send check-in",
		zap.Int("attempt", ev.Attempts+1),
		zap.Bool("transient", channel.IsTransient(cause)),
		zap.Error(cause))

	out := eventOutcome{status: outcomeFailed, err: cause.Error()}
	if err := s.repo.CheckIn().MarkFailed(ctx, ev.ID, cause.Error(), s.clock.Now().UTC()); err != nil {
		logger.Error("Failed to mark check-in failed", zap.Error(err))
		out.err = fmt.Sprintf("%s; failed to record: %v", out.err, err)
	}
	s.metrics.DispatchEvent(ev.Channel.String(), outcomeFailed)
	return out
}

func (s *dispatchService) skip(ctx context.Context, logger *zap.Logger, ev *models.CheckInEvent, reason string) eventOutcome {
	logger.Info("Check-in skipped", zap.String("reason", reason))

	out := eventOutcome{status: outcomeSkipped}
	if err := s.repo.CheckIn().MarkSkipped(ctx, ev.ID, reason, s.clock.Now().UTC()); err != nil {
		logger.Error("Failed to mark check-in skipped", zap.Error(err))
		out.err = fmt.Sprintf("failed to record skip: %v", err)
	}
	s.metrics.DispatchEvent(ev.Channel.String(), outcomeSkipped)
	return out
}

func (s *dispatchService) cacheProviderID(ctx context.Context, logger *zap.Logger, ev *models.CheckInEvent, providerID string, at time.Time) {
	if s.redisClient == nil || providerID == "" {
		return
	}
	key := fmt.Sprintf("checkin:message:%s", providerID)
	value := fmt.Sprintf("%d:%s", ev.ID, at.Format(time.RFC3339))
	if err := s.redisClient.Set(ctx, key, value, providerIDCacheTTL).Err(); err != nil {
		logger.Warn("Failed to cache provider message ID",
			zap.String("providerMessageID", providerID),
			zap.Error(err))
	}
}
