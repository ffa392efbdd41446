package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config holds the global middleware settings. Zero RateLimit or RequestTimeout disables
// that stage; a nil CORS skips CORS handling.
type Config struct {
	Logger *zap.Logger

	CORS *CORSConfig

	RateLimit      rate.Limit
	RateLimitBurst int

	RequestTimeout time.Duration
}

// Chain wraps a handler with the global stack. From the outside in:
// Logger, RequestID, Recovery, CORS, rate limiting, Timeout.
// Per-route authentication is applied by the router, inside this chain.
func Chain(config *Config) func(http.Handler) http.Handler {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var limiter *RateLimiter
	if config.RateLimit > 0 {
		burst := config.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = NewRateLimiter(config.RateLimit, burst)
	}

	return func(handler http.Handler) http.Handler {
		h := Timeout(config.RequestTimeout)(handler)

		if limiter != nil {
			h = limiter.Middleware()(h)
		}
		if config.CORS != nil {
			h = CORS(config.CORS)(h)
		}

		h = Recovery(logger)(h)
		h = RequestID(h)
		return Logger(logger)(h)
	}
}
