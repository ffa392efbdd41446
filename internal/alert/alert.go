// Package alert delivers urgent red-flag notifications to an operator webhook.
package alert

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/popeskul/spinecheck/internal/models"
)

const (
	EventTypeRedFlag = "checkin_red_flag"

	defaultTimeout      = 2 * time.Second
	defaultDedupeWindow = 24 * time.Hour
	maxNoteLength       = 1000
)

var (
	// ErrAlertTimeout is returned when the webhook does not answer within the timeout.
	ErrAlertTimeout = errors.New("alert webhook timed out")
	// ErrDuplicate is returned when the same response was already alerted within the
	// dedupe window.
	ErrDuplicate = errors.New("duplicate alert suppressed")
	// ErrDisabled is returned when no webhook URL is configured.
	ErrDisabled = errors.New("alert webhook not configured")
)

// DeliveryError is a non-timeout webhook failure.
type DeliveryError struct {
	StatusCode int
	Cause      error
}

func (e *DeliveryError) Error() string {
	if e.Cause != nil {
		return "alert delivery failed: " + e.Cause.Error()
	}
	return fmt.Sprintf("alert delivery failed: webhook returned status %d", e.StatusCode)
}

func (e *DeliveryError) Unwrap() error { return e.Cause }

// Event is the JSON body posted to the webhook.
type Event struct {
	Type         string    `json:"type"`
	OccurredAt   time.Time `json:"occurred_at"`
	AssessmentID string    `json:"assessment_id"`
	Day          int       `json:"day"`
	Branch       string    `json:"branch"`
	ResponseID   int64     `json:"response_id"`
	RedFlags     []string  `json:"red_flags"`
	Note         string    `json:"note,omitempty"`
}

// NewRedFlagEvent builds the alert for a recorded response.
func NewRedFlagEvent(resp *models.CheckInResponse, now time.Time) Event {
	note := strings.TrimSpace(resp.Note.String)
	if runes := []rune(note); len(runes) > maxNoteLength {
		note = string(runes[:maxNoteLength])
	}
	return Event{
		Type:         EventTypeRedFlag,
		OccurredAt:   now.UTC(),
		AssessmentID: resp.AssessmentID,
		Day:          int(resp.Day),
		Branch:       resp.Branch.String(),
		ResponseID:   resp.ID,
		RedFlags:     []string(resp.RedFlagsMatched),
		Note:         note,
	}
}

// Notifier sends urgent alerts.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

type Config struct {
	URL          string
	Timeout      time.Duration
	DedupeWindow time.Duration
}

// WebhookNotifier posts alerts with a bounded timeout. Repeat deliveries of one response
// and term set are suppressed through Redis; Redis failures do not block the alert.
type WebhookNotifier struct {
	client *resty.Client
	cfg    Config
	redis  *redis.Client
	logger *zap.Logger
}

func NewWebhookNotifier(cfg Config, redisClient *redis.Client, logger *zap.Logger) *WebhookNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.DedupeWindow <= 0 {
		cfg.DedupeWindow = defaultDedupeWindow
	}
	client := resty.New()
	client.SetRetryCount(0)

	return &WebhookNotifier{
		client: client,
		cfg:    cfg,
		redis:  redisClient,
		logger: logger,
	}
}

// dedupeKey identifies one response's alert. Distinct responses for the same check-in, or
// a response whose matched terms differ, get distinct keys.
func dedupeKey(ev Event) string {
	terms := append([]string(nil), ev.RedFlags...)
	sort.Strings(terms)
	return fmt.Sprintf("alert:%s:%s:%d:%d:%s",
		ev.Type, ev.AssessmentID, ev.Day, ev.ResponseID, strings.Join(terms, ","))
}

func (n *WebhookNotifier) Notify(ctx context.Context, ev Event) error {
	if strings.TrimSpace(n.cfg.URL) == "" {
		return ErrDisabled
	}

	key := dedupeKey(ev)
	acquired := n.acquire(ctx, key)
	if !acquired {
		return ErrDuplicate
	}

	if err := n.post(ctx, ev); err != nil {
		n.release(key)
		return err
	}
	return nil
}

// acquire reserves the dedupe key. It reports true when Redis is unavailable.
func (n *WebhookNotifier) acquire(ctx context.Context, key string) bool {
	if n.redis == nil {
		return true
	}
	ok, err := n.redis.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), n.cfg.DedupeWindow).Result()
	if err != nil {
		n.logger.Warn("Alert dedupe unavailable, sending anyway", zap.String("key", key), zap.Error(err))
		return true
	}
	return ok
}

// release frees the dedupe key after a failed delivery so a later alert can go out.
func (n *WebhookNotifier) release(key string) {
	if n.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := n.redis.Del(ctx, key).Err(); err != nil {
		n.logger.Warn("Failed to release alert dedupe key", zap.String("key", key), zap.Error(err))
	}
}

func (n *WebhookNotifier) post(ctx context.Context, ev Event) error {
	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(ev).
		Post(n.cfg.URL)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w after %s", ErrAlertTimeout, n.cfg.Timeout)
		}
		return &DeliveryError{Cause: err}
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return &DeliveryError{StatusCode: resp.StatusCode()}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
