package service_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/popeskul/spinecheck/internal/channel"
	"github.com/popeskul/spinecheck/internal/clock"
	"github.com/popeskul/spinecheck/internal/config"
	"github.com/popeskul/spinecheck/internal/models"
	"github.com/popeskul/spinecheck/internal/service"
)

type dispatchFixture struct {
	repo  *memRepo
	email *fakeAdapter
	sms   *fakeAdapter
	redis *miniredis.Miniredis
	svc   service.DispatchService
}

func defaultCheckInConfig() config.CheckInConfig {
	return config.CheckInConfig{
		DefaultLimit: 50,
		MaxLimit:     1000,
		DryRunLimit:  20,
		MaxAttempts:  3,
		Workers:      4,
		SendTimeout:  5,
	}
}

func newDispatchFixture(t *testing.T, cfg config.CheckInConfig) *dispatchFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	codec := newTestCodec(t)
	f := &dispatchFixture{
		repo:  newMemRepo(),
		email: newFakeAdapter(models.ChannelEmail),
		sms:   newFakeAdapter(models.ChannelSMS),
		redis: mr,
	}
	f.svc = service.NewDispatchService(
		cfg,
		f.repo,
		channel.NewSet(f.email, f.sms),
		newTestRenderer(t, codec),
		redisClient,
		clock.NewManaged(testNow),
		nil,
		zap.NewNop(),
	)
	return f
}

func (f *dispatchFixture) queue(assessmentID string, ch models.Channel, dueAgo time.Duration) *models.CheckInEvent {
	return f.repo.addEvent(&models.CheckInEvent{
		AssessmentID: assessmentID,
		Day:          models.Day3,
		DueAt:        testNow.Add(-dueAgo),
		Channel:      ch,
	})
}

func TestDispatchService_SendsDueEventsOldestFirst(t *testing.T) {
	f := newDispatchFixture(t, config.CheckInConfig{DefaultLimit: 50, MaxLimit: 1000, MaxAttempts: 3, Workers: 1, SendTimeout: 5})
	for _, id := range []string{"a-1", "a-2", "a-3"} {
		f.repo.addAssessment(emailAssessment(id))
	}
	newer := f.queue("a-1", models.ChannelEmail, time.Hour)
	oldest := f.queue("a-2", models.ChannelEmail, 3*time.Hour)
	middle := f.queue("a-3", models.ChannelEmail, 2*time.Hour)
	future := f.repo.addEvent(&models.CheckInEvent{
		AssessmentID: "a-1", Day: models.Day7, DueAt: testNow.Add(time.Hour), Channel: models.ChannelEmail,
	})

	summary, err := f.svc.DispatchDue(context.Background(), service.DispatchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Sent)
	assert.Zero(t, summary.Failed)
	assert.Zero(t, summary.Skipped)
	assert.Empty(t, summary.Errors)
	assert.False(t, summary.DryRun)
	assert.Equal(t, 50, summary.Limit)

	sends := f.email.sends()
	require.Len(t, sends, 3)
	assert.Equal(t, "a-2@example.com", sends[0].To)
	assert.Equal(t, "a-3@example.com", sends[1].To)
	assert.Equal(t, "a-1@example.com", sends[2].To)

	for _, ev := range []*models.CheckInEvent{newer, oldest, middle} {
		row := f.repo.event(ev.ID)
		assert.Equal(t, models.EventStatusSent, row.Status)
		assert.Equal(t, "provider-"+ev.AssessmentID+"@example.com", row.ProviderMessageID.String)
		assert.True(t, row.SentAt.Valid)
	}
	assert.Equal(t, models.EventStatusPending, f.repo.event(future.ID).Status)

	cached, err := f.redis.Get("checkin:message:provider-a-2@example.com")
	require.NoError(t, err)
	assert.Contains(t, cached, fmt.Sprintf("%d:", oldest.ID))
}

func TestDispatchService_SkipsOptedOutRecipientWithoutSending(t *testing.T) {
	f := newDispatchFixture(t, defaultCheckInConfig())
	f.repo.addAssessment(smsAssessment("a-sms", "+15551234567"))
	f.sms.suppressed["+15551234567"] = true
	ev := f.queue("a-sms", models.ChannelSMS, time.Hour)

	summary, err := f.svc.DispatchDue(context.Background(), service.DispatchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Zero(t, summary.Sent)
	assert.Zero(t, summary.Failed)
	assert.Empty(t, f.sms.sends())

	row := f.repo.event(ev.ID)
	assert.Equal(t, models.EventStatusSkipped, row.Status)
	assert.Equal(t, "recipient opted out", row.LastError.String)
}

func TestDispatchService_SendReportsSuppressed(t *testing.T) {
	f := newDispatchFixture(t, defaultCheckInConfig())
	f.repo.addAssessment(smsAssessment("a-sms", "+15551234567"))
	f.sms.sendErr = channel.ErrSuppressed
	ev := f.queue("a-sms", models.ChannelSMS, time.Hour)

	summary, err := f.svc.DispatchDue(context.Background(), service.DispatchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, models.EventStatusSkipped, f.repo.event(ev.ID).Status)
}

func TestDispatchService_SkipsInvalidRecipient(t *testing.T) {
	f := newDispatchFixture(t, defaultCheckInConfig())
	f.repo.addAssessment(smsAssessment("a-bad", "555-12"))
	f.repo.addAssessment(smsAssessment("a-rejected", "+15550000000"))
	f.sms.suppressFn = func(_ context.Context, to string) (bool, error) {
		if to == "555-12" {
			return false, fmt.Errorf("%w: %q is not a valid phone number", channel.ErrInvalidRecipient, to)
		}
		return false, nil
	}
	f.sms.sendErr = &channel.DeliveryError{Provider: "sns", Message: "invalid recipient", Cause: channel.ErrInvalidRecipient}
	bad := f.queue("a-bad", models.ChannelSMS, 2*time.Hour)
	rejected := f.queue("a-rejected", models.ChannelSMS, time.Hour)

	preview, err := f.svc.DispatchDue(context.Background(), service.DispatchOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, preview.Skipped)

	summary, err := f.svc.DispatchDue(context.Background(), service.DispatchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Skipped)
	assert.Zero(t, summary.Failed)
	assert.Empty(t, summary.Errors)

	for _, ev := range []*models.CheckInEvent{bad, rejected} {
		row := f.repo.event(ev.ID)
		assert.Equal(t, models.EventStatusSkipped, row.Status)
		assert.Equal(t, "invalid recipient", row.LastError.String)
	}
}

func TestDispatchService_SkipsWithoutContact(t *testing.T) {
	f := newDispatchFixture(t, defaultCheckInConfig())
	a := smsAssessment("a-revoked", "+15551234567")
	a.SMSConsent = false
	f.repo.addAssessment(a)
	revoked := f.queue("a-revoked", models.ChannelSMS, time.Hour)
	missing := f.queue("a-missing", models.ChannelEmail, time.Hour)

	summary, err := f.svc.DispatchDue(context.Background(), service.DispatchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, "no contact for channel", f.repo.event(revoked.ID).LastError.String)
	assert.Equal(t, "assessment not found", f.repo.event(missing.ID).LastError.String)
}

func TestDispatchService_FallsBackToDefaultContent(t *testing.T) {
	f := newDispatchFixture(t, defaultCheckInConfig())
	f.repo.addAssessment(emailAssessment("a-1"))
	ev := f.queue("a-1", models.ChannelEmail, time.Hour)

	summary, err := f.svc.DispatchDue(context.Background(), service.DispatchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)

	sends := f.email.sends()
	require.Len(t, sends, 1)
	assert.Equal(t, "Day 3 check-in: how is your back?", sends[0].Subject)
	assert.Contains(t, sends[0].Text, "Hi Dana")
	assert.Equal(t, models.EventStatusSent, f.repo.event(ev.ID).Status)
}

func TestDispatchService_UsesTemplateAndSteadyStateInsert(t *testing.T) {
	f := newDispatchFixture(t, defaultCheckInConfig())
	f.repo.addAssessment(emailAssessment("a-1"))
	f.repo.addTemplate(&models.MessageTemplate{
		Key:       models.TemplateKey(models.Day3, models.ChannelEmail),
		Channel:   models.ChannelEmail,
		Subject:   sql.NullString{String: "Day {day} for {first_name}", Valid: true},
		ShellText: "Checking in on day {day}.\n\n{insert}",
	})
	f.repo.content.inserts[insertKey("disc", models.Day3, models.BranchSame)] = &models.DiagnosisInsert{
		DiagnosisCode: "disc", Day: models.Day3, Branch: models.BranchSame, InsertText: "Keep up the walking routine.",
	}
	f.repo.content.inserts[insertKey("disc", models.Day3, models.BranchWorse)] = &models.DiagnosisInsert{
		DiagnosisCode: "disc", Day: models.Day3, Branch: models.BranchWorse, InsertText: "Ease off the stretches.",
	}
	f.queue("a-1", models.ChannelEmail, time.Hour)

	_, err := f.svc.DispatchDue(context.Background(), service.DispatchOptions{})
	require.NoError(t, err)

	sends := f.email.sends()
	require.Len(t, sends, 1)
	assert.Equal(t, "Day 3 for Dana", sends[0].Subject)
	assert.Contains(t, sends[0].Text, "Keep up the walking routine.")
	assert.NotContains(t, sends[0].Text, "Ease off the stretches.")
	assert.Contains(t, sends[0].HTML, "/checkin/reply?token=")
}

func TestDispatchService_FailureIsRecordedAndRetriedUntilMaxAttempts(t *testing.T) {
	f := newDispatchFixture(t, defaultCheckInConfig())
	f.repo.addAssessment(emailAssessment("a-1"))
	f.repo.addAssessment(emailAssessment("a-2"))
	f.email.suppressFn = func(_ context.Context, to string) (bool, error) { return false, nil }
	f.email.sendErr = &channel.DeliveryError{Provider: "ses", Message: "throttled", Transient: true}
	ev := f.queue("a-1", models.ChannelEmail, time.Hour)

	for attempt := 1; attempt <= 3; attempt++ {
		summary, err := f.svc.DispatchDue(context.Background(), service.DispatchOptions{})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Failed, "attempt %d", attempt)
		require.Len(t, summary.Errors, 1)
		assert.Equal(t, ev.ID, summary.Errors[0].EventID)
		assert.Contains(t, summary.Errors[0].Error, "throttled")

		row := f.repo.event(ev.ID)
		assert.Equal(t, models.EventStatusFailed, row.Status)
		assert.Equal(t, attempt, row.Attempts)
	}

	summary, err := f.svc.DispatchDue(context.Background(), service.DispatchOptions{})
	require.NoError(t, err)
	assert.Zero(t, summary.Failed+summary.Sent+summary.Skipped)
}

func TestDispatchService_PartialFailureDoesNotAbortBatch(t *testing.T) {
	f := newDispatchFixture(t, defaultCheckInConfig())
	f.repo.addAssessment(emailAssessment("a-1"))
	f.repo.addAssessment(smsAssessment("a-2", "+15551234567"))
	f.sms.sendErr = errors.New("connection reset")
	f.queue("a-1", models.ChannelEmail, time.Hour)
	f.queue("a-2", models.ChannelSMS, time.Hour)

	summary, err := f.svc.DispatchDue(context.Background(), service.DispatchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "a-2", summary.Errors[0].AssessmentID)
}

func TestDispatchService_DryRunDoesNotMutate(t *testing.T) {
	f := newDispatchFixture(t, defaultCheckInConfig())
	f.repo.addAssessment(emailAssessment("a-1"))
	f.repo.addAssessment(smsAssessment("a-2", "+15551234567"))
	f.sms.suppressed["+15551234567"] = true
	send := f.queue("a-1", models.ChannelEmail, 2*time.Hour)
	skip := f.queue("a-2", models.ChannelSMS, time.Hour)

	summary, err := f.svc.DispatchDue(context.Background(), service.DispatchOptions{DryRun: true})
	require.NoError(t, err)
	assert.True(t, summary.DryRun)
	assert.Equal(t, 20, summary.Limit)
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 1, summary.Skipped)

	require.Len(t, summary.Previews, 2)
	assert.Equal(t, send.ID, summary.Previews[0].EventID)
	assert.Equal(t, "send", summary.Previews[0].Action)
	assert.Contains(t, summary.Previews[0].Subject, "Day 3")
	assert.Equal(t, "skip", summary.Previews[1].Action)
	assert.Equal(t, "recipient opted out", summary.Previews[1].Reason)

	assert.Empty(t, f.email.sends())
	assert.Empty(t, f.sms.sends())
	assert.Equal(t, models.EventStatusPending, f.repo.event(send.ID).Status)
	assert.Equal(t, models.EventStatusPending, f.repo.event(skip.ID).Status)
}

func TestDispatchService_LimitIsClamped(t *testing.T) {
	cfg := defaultCheckInConfig()
	cfg.MaxLimit = 2
	f := newDispatchFixture(t, cfg)
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("a-%d", i)
		f.repo.addAssessment(emailAssessment(id))
		f.queue(id, models.ChannelEmail, time.Duration(i+1)*time.Minute)
	}

	summary, err := f.svc.DispatchDue(context.Background(), service.DispatchOptions{Limit: 5000})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Limit)
	assert.Equal(t, 2, summary.Sent)
	assert.Len(t, f.email.sends(), 2)
}

func TestDispatchService_ConcurrentRunsSendEachEventOnce(t *testing.T) {
	f := newDispatchFixture(t, defaultCheckInConfig())
	const n = 60
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("a-%d", i)
		f.repo.addAssessment(emailAssessment(id))
		f.queue(id, models.ChannelEmail, time.Duration(i+1)*time.Minute)
	}

	var wg sync.WaitGroup
	summaries := make([]*service.DispatchSummary, 2)
	for i := range summaries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := f.svc.DispatchDue(context.Background(), service.DispatchOptions{Limit: n})
			assert.NoError(t, err)
			summaries[i] = s
		}()
	}
	wg.Wait()

	require.NotNil(t, summaries[0])
	require.NotNil(t, summaries[1])
	assert.Equal(t, n, summaries[0].Sent+summaries[1].Sent)

	sends := f.email.sends()
	assert.Len(t, sends, n)
	seen := map[string]bool{}
	for _, s := range sends {
		assert.False(t, seen[s.To], "duplicate send to %s", s.To)
		seen[s.To] = true
	}
}

func TestDispatchService_SuppressionLookupFailureFailsEvent(t *testing.T) {
	f := newDispatchFixture(t, defaultCheckInConfig())
	f.repo.addAssessment(emailAssessment("a-1"))
	f.email.suppressFn = func(context.Context, string) (bool, error) {
		return false, errors.New("failed to check suppression: db down")
	}
	ev := f.queue("a-1", models.ChannelEmail, time.Hour)

	summary, err := f.svc.DispatchDue(context.Background(), service.DispatchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Empty(t, f.email.sends())
	assert.Equal(t, models.EventStatusFailed, f.repo.event(ev.ID).Status)
}
