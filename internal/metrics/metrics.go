// Package metrics holds the Prometheus collectors for the HTTP surface and the check-in
// pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "spinecheck"

// Metrics stores Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	dispatchEvents      *prometheus.CounterVec
	dispatchDuration    *prometheus.HistogramVec
	enqueueDays         *prometheus.CounterVec
	redFlagMatches      *prometheus.CounterVec
	alertOutcomes       *prometheus.CounterVec
	responsesTotal      *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		dispatchEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "dispatch",
				Name:      "events_total",
				Help:      "Check-in events processed by dispatch, by channel and outcome.",
			},
			[]string{"channel", "outcome"},
		),
		dispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "dispatch",
				Name:      "run_duration_seconds",
				Help:      "Duration of dispatch runs in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
			},
			[]string{"mode"},
		),
		enqueueDays: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "enqueue",
				Name:      "days_total",
				Help:      "Check-in days considered by enqueue, by result.",
			},
			[]string{"result"},
		),
		redFlagMatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "responses",
				Name:      "red_flag_matches_total",
				Help:      "Red-flag terms matched in check-in notes.",
			},
			[]string{"term"},
		),
		alertOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "alert",
				Name:      "deliveries_total",
				Help:      "Urgent alert webhook deliveries by outcome.",
			},
			[]string{"outcome"},
		),
		responsesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "responses",
				Name:      "recorded_total",
				Help:      "Check-in responses recorded, by branch.",
			},
			[]string{"branch"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.dispatchEvents,
		m.dispatchDuration,
		m.enqueueDays,
		m.redFlagMatches,
		m.alertOutcomes,
		m.responsesTotal,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// HTTPMiddleware records request counts and latency labelled by chi route pattern.
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) DispatchEvent(channel, outcome string) {
	if m == nil {
		return
	}
	m.dispatchEvents.WithLabelValues(channel, outcome).Inc()
}

func (m *Metrics) DispatchRun(dryRun bool, d time.Duration) {
	if m == nil {
		return
	}
	mode := "live"
	if dryRun {
		mode = "dry_run"
	}
	m.dispatchDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func (m *Metrics) EnqueueDays(queued, skipped int) {
	if m == nil {
		return
	}
	m.enqueueDays.WithLabelValues("queued").Add(float64(queued))
	m.enqueueDays.WithLabelValues("skipped").Add(float64(skipped))
}

func (m *Metrics) ResponseRecorded(branch string, redFlags []string) {
	if m == nil {
		return
	}
	m.responsesTotal.WithLabelValues(branch).Inc()
	for _, term := range redFlags {
		m.redFlagMatches.WithLabelValues(term).Inc()
	}
}

func (m *Metrics) AlertOutcome(outcome string) {
	if m == nil {
		return
	}
	m.alertOutcomes.WithLabelValues(outcome).Inc()
}
