package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/popeskul/spinecheck/internal/api"
	"github.com/popeskul/spinecheck/internal/config"
	"github.com/popeskul/spinecheck/internal/handler"
	"github.com/popeskul/spinecheck/internal/metrics"
	"github.com/popeskul/spinecheck/internal/middleware"
)

func setupRouter(
	h *handler.Handler,
	operators middleware.OperatorLookup,
	security config.SecurityConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(m.HTTPMiddleware)

	r.Handle("/metrics", m.Handler())

	// Mount API routes
	return api.Handler(h, api.HandlerOptions{
		BaseRouter:       r,
		OperatorAuth:     middleware.OperatorAuth(operators, logger),
		CronAuth:         middleware.SharedSecret(middleware.CronSecretHeader, security.CronSecret),
		InboundAuth:      middleware.SharedSecret(middleware.InboundSecretHeader, security.InboundSMSSecret),
		ErrorHandlerFunc: h.InvalidParam,
	})
}
