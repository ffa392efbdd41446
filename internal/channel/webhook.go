package channel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/popeskul/spinecheck/internal/config"
	"github.com/popeskul/spinecheck/internal/models"
)

const (
	defaultWebhookTimeout = 10 * time.Second
	webhookAuthHeader     = "x-ins-auth-key"
)

type webhookRequest struct {
	To      string `json:"to"`
	Content string `json:"content"`
}

type webhookResponse struct {
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
}

// WebhookSMS posts SMS bodies to an HTTP gateway guarded by a circuit breaker.
type WebhookSMS struct {
	client     *resty.Client
	endpoint   string
	authKey    string
	breaker    *CircuitBreaker
	suppressed SuppressionFunc
	logger     *zap.Logger
}

func NewWebhookSMS(cfg *config.WebhookConfig, suppressed SuppressionFunc, logger *zap.Logger) (*WebhookSMS, error) {
	client := resty.New()
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	client.SetTimeout(timeout)
	return NewWebhookSMSWithClient(cfg, client, suppressed, logger)
}

func NewWebhookSMSWithClient(cfg *config.WebhookConfig, client *resty.Client, suppressed SuppressionFunc, logger *zap.Logger) (*WebhookSMS, error) {
	endpoint := strings.TrimSpace(cfg.URL)
	if endpoint == "" {
		return nil, fmt.Errorf("sms webhook endpoint is required")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid sms webhook endpoint: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}
	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultWebhookTimeout)
	}
	client.SetRetryCount(0)

	return &WebhookSMS{
		client:     client,
		endpoint:   endpoint,
		authKey:    cfg.AuthKey,
		breaker:    NewCircuitBreaker("sms-webhook", &cfg.CircuitBreaker, logger),
		suppressed: suppressed,
		logger:     logger,
	}, nil
}

func (w *WebhookSMS) Channel() models.Channel { return models.ChannelSMS }

func (w *WebhookSMS) Breaker() *CircuitBreaker { return w.breaker }

func (w *WebhookSMS) Suppressed(ctx context.Context, recipient string) (bool, error) {
	phone, err := NormalizePhone(recipient)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidRecipient, err)
	}
	return w.suppressed.check(ctx, phone)
}

func (w *WebhookSMS) Send(ctx context.Context, msg Message) (*Result, error) {
	phone, err := NormalizePhone(msg.To)
	if err != nil {
		return nil, &DeliveryError{
			Provider: "sms-webhook",
			Message:  "invalid recipient",
			Cause:    fmt.Errorf("%w: %v", ErrInvalidRecipient, err),
		}
	}
	suppressed, err := w.suppressed.check(ctx, phone)
	if err != nil {
		return nil, err
	}
	if suppressed {
		return nil, ErrSuppressed
	}

	var result *Result
	err = w.breaker.Execute(ctx, func() error {
		r, err := w.post(ctx, phone, msg.Text)
		result = r
		return err
	})
	if err != nil {
		requests, failures := w.breaker.Counts()
		w.logger.Warn("SMS webhook delivery failed",
			zap.Error(err),
			zap.String("circuitBreakerState", string(w.breaker.State())),
			zap.Uint32("totalRequests", requests),
			zap.Uint32("totalFailures", failures))
		return nil, err
	}
	return result, nil
}

func (w *WebhookSMS) post(ctx context.Context, phone, content string) (*Result, error) {
	var body webhookResponse
	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader(webhookAuthHeader, w.authKey).
		SetBody(webhookRequest{To: phone, Content: content}).
		SetResult(&body).
		Post(w.endpoint)
	if err != nil {
		return nil, &DeliveryError{
			Provider:  "sms-webhook",
			Message:   "request failed",
			Transient: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}

	status := resp.StatusCode()
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, &DeliveryError{
			Provider:   "sms-webhook",
			StatusCode: status,
			Message:    statusMessage(status, strings.TrimSpace(resp.String())),
			Transient:  isTransientStatus(status),
		}
	}

	id := body.MessageID
	if id == "" {
		id = strings.TrimSpace(resp.Header().Get("X-Request-ID"))
	}
	return &Result{ProviderMessageID: id}, nil
}

func isTransientStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func statusMessage(status int, body string) string {
	msg := fmt.Sprintf("provider returned status %d", status)
	if body == "" {
		return msg
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return msg + ": " + body
}
