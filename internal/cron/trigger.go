// Package cron is the client side of the scheduled dispatch trigger.
package cron

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/popeskul/spinecheck/internal/middleware"
	"github.com/popeskul/spinecheck/internal/service"
)

const (
	dispatchPath   = "/api/cron/checkins/dispatch"
	defaultTimeout = 5 * time.Minute
)

// StatusError is returned when the server answers outside 2xx.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("dispatch trigger returned status %d: %s", e.StatusCode, e.Body)
}

type Config struct {
	BaseURL string
	Secret  string
	DryRun  bool
	// Limit <= 0 leaves the server default in place.
	Limit   int
	Timeout time.Duration
}

type Trigger struct {
	client *resty.Client
	cfg    Config
}

func NewTrigger(cfg Config) (*Trigger, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("base url is required")
	}
	if cfg.Secret == "" {
		return nil, errors.New("cron secret is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0)

	return &Trigger{client: client, cfg: cfg}, nil
}

// Run calls the dispatch endpoint once and returns the server's summary.
func (t *Trigger) Run(ctx context.Context) (*service.DispatchSummary, error) {
	var summary service.DispatchSummary

	req := t.client.R().
		SetContext(ctx).
		SetHeader(middleware.CronSecretHeader, t.cfg.Secret).
		SetQueryParam("dryRun", strconv.FormatBool(t.cfg.DryRun)).
		SetResult(&summary)
	if t.cfg.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(t.cfg.Limit))
	}

	resp, err := req.Post(dispatchPath)
	if err != nil {
		return nil, fmt.Errorf("failed to call dispatch trigger: %w", err)
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, &StatusError{StatusCode: resp.StatusCode(), Body: strings.TrimSpace(resp.String())}
	}
	return &summary, nil
}
