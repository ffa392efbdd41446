package alert

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/popeskul/spinecheck/internal/models"
)

type webhookRecorder struct {
	calls  int32
	events chan Event
}

func newWebhook(t *testing.T, status int, delay time.Duration) (*httptest.Server, *webhookRecorder) {
	t.Helper()
	rec := &webhookRecorder{events: make(chan Event, 10)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&rec.calls, 1)
		var ev Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err == nil {
			rec.events <- ev
		}
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func sampleEvent(day int) Event {
	resp := &models.CheckInResponse{
		ID:              7,
		AssessmentID:    "assessment-123",
		Day:             models.Day(day),
		Branch:          models.BranchWorse,
		Note:            sql.NullString{String: "  I have numbness in my leg ", Valid: true},
		RedFlagsMatched: pq.StringArray{"numbness"},
	}
	return NewRedFlagEvent(resp, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
}

func TestNewRedFlagEvent(t *testing.T) {
	ev := sampleEvent(7)
	assert.Equal(t, EventTypeRedFlag, ev.Type)
	assert.Equal(t, "assessment-123", ev.AssessmentID)
	assert.Equal(t, 7, ev.Day)
	assert.Equal(t, "worse", ev.Branch)
	assert.Equal(t, int64(7), ev.ResponseID)
	assert.Equal(t, []string{"numbness"}, ev.RedFlags)
	assert.Equal(t, "I have numbness in my leg", ev.Note)
}

func TestWebhookNotifier_Sends(t *testing.T) {
	srv, rec := newWebhook(t, http.StatusOK, 0)
	_, rdb := newRedis(t)
	n := NewWebhookNotifier(Config{URL: srv.URL}, rdb, zap.NewNop())

	require.NoError(t, n.Notify(context.Background(), sampleEvent(3)))

	got := <-rec.events
	assert.Equal(t, EventTypeRedFlag, got.Type)
	assert.Equal(t, "assessment-123", got.AssessmentID)
	assert.Equal(t, []string{"numbness"}, got.RedFlags)
	assert.False(t, got.OccurredAt.IsZero())
}

func TestWebhookNotifier_Dedupe(t *testing.T) {
	srv, rec := newWebhook(t, http.StatusOK, 0)
	mr, rdb := newRedis(t)
	n := NewWebhookNotifier(Config{URL: srv.URL, DedupeWindow: time.Hour}, rdb, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, n.Notify(ctx, sampleEvent(3)))
	assert.ErrorIs(t, n.Notify(ctx, sampleEvent(3)), ErrDuplicate)
	require.NoError(t, n.Notify(ctx, sampleEvent(7)), "other days are independent")
	assert.Equal(t, int32(2), atomic.LoadInt32(&rec.calls))

	mr.FastForward(61 * time.Minute)
	require.NoError(t, n.Notify(ctx, sampleEvent(3)))
	assert.Equal(t, int32(3), atomic.LoadInt32(&rec.calls))
}

func TestWebhookNotifier_DistinctResponsesAlertSeparately(t *testing.T) {
	srv, rec := newWebhook(t, http.StatusOK, 0)
	_, rdb := newRedis(t)
	n := NewWebhookNotifier(Config{URL: srv.URL, DedupeWindow: time.Hour}, rdb, zap.NewNop())
	ctx := context.Background()

	first := sampleEvent(7)
	second := NewRedFlagEvent(&models.CheckInResponse{
		ID:              8,
		AssessmentID:    "assessment-123",
		Day:             models.Day(7),
		Branch:          models.BranchWorse,
		Note:            sql.NullString{String: "now incontinence and a fever", Valid: true},
		RedFlagsMatched: pq.StringArray{"incontinence", "fever"},
	}, time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC))

	require.NoError(t, n.Notify(ctx, first))
	require.NoError(t, n.Notify(ctx, second))
	assert.Equal(t, int32(2), atomic.LoadInt32(&rec.calls))

	reordered := second
	reordered.RedFlags = []string{"fever", "incontinence"}
	assert.ErrorIs(t, n.Notify(ctx, reordered), ErrDuplicate)
	assert.Equal(t, int32(2), atomic.LoadInt32(&rec.calls))
}

func TestNewRedFlagEvent_TruncatesByRune(t *testing.T) {
	resp := &models.CheckInResponse{
		AssessmentID: "assessment-123",
		Day:          models.Day(3),
		Branch:       models.BranchWorse,
		Note:         sql.NullString{String: strings.Repeat("é", maxNoteLength+10), Valid: true},
	}

	ev := NewRedFlagEvent(resp, time.Now())
	assert.Equal(t, maxNoteLength, utf8.RuneCountInString(ev.Note))
	assert.True(t, utf8.ValidString(ev.Note))
}

func TestWebhookNotifier_Timeout(t *testing.T) {
	srv, rec := newWebhook(t, http.StatusOK, 500*time.Millisecond)
	mr, rdb := newRedis(t)
	n := NewWebhookNotifier(Config{URL: srv.URL, Timeout: 50 * time.Millisecond}, rdb, zap.NewNop())

	start := time.Now()
	err := n.Notify(context.Background(), sampleEvent(3))
	assert.ErrorIs(t, err, ErrAlertTimeout)
	assert.Less(t, time.Since(start), 400*time.Millisecond)

	var de *DeliveryError
	assert.False(t, errors.As(err, &de))
	assert.False(t, mr.Exists(dedupeKey(sampleEvent(3))), "failed alerts release their dedupe key")
	assert.Equal(t, int32(1), atomic.LoadInt32(&rec.calls))
}

func TestWebhookNotifier_CallerCancellation(t *testing.T) {
	srv, _ := newWebhook(t, http.StatusOK, 500*time.Millisecond)
	n := NewWebhookNotifier(Config{URL: srv.URL, Timeout: time.Second}, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := n.Notify(ctx, sampleEvent(3))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlertTimeout)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWebhookNotifier_ErrorStatus(t *testing.T) {
	srv, _ := newWebhook(t, http.StatusInternalServerError, 0)
	n := NewWebhookNotifier(Config{URL: srv.URL}, nil, zap.NewNop())

	err := n.Notify(context.Background(), sampleEvent(3))
	var de *DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, http.StatusInternalServerError, de.StatusCode)
	assert.NotErrorIs(t, err, ErrAlertTimeout)
}

func TestWebhookNotifier_RedisDownFailsOpen(t *testing.T) {
	srv, rec := newWebhook(t, http.StatusOK, 0)
	mr, rdb := newRedis(t)
	mr.Close()

	n := NewWebhookNotifier(Config{URL: srv.URL}, rdb, zap.NewNop())
	require.NoError(t, n.Notify(context.Background(), sampleEvent(3)))
	require.NoError(t, n.Notify(context.Background(), sampleEvent(3)))
	assert.Equal(t, int32(2), atomic.LoadInt32(&rec.calls))
}

func TestWebhookNotifier_Disabled(t *testing.T) {
	n := NewWebhookNotifier(Config{}, nil, zap.NewNop())
	assert.ErrorIs(t, n.Notify(context.Background(), sampleEvent(3)), ErrDisabled)
}
