// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Webhook metrics
	WebhookDurationSeconds *prometheus.HistogramVec
	WebhookRequestsTotal   *prometheus.CounterVec

	// Dispatch metrics
	ActionsTotal       *prometheus.CounterVec
	UnmatchedTotal     *prometheus.CounterVec
	MediaFallbackTotal *prometheus.CounterVec
	ReplyTotal         *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		// Webhook metrics
		WebhookDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jojo_webhook_duration_seconds",
				Help:    "Event processing duration in seconds by event type",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"event_type"}, // event_type: message, postback, follow
		),

		WebhookRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jojo_webhook_requests_total",
				Help: "Total number of webhook events by event type and status",
			},
			[]string{"event_type", "status"}, // status: replied, ignored, error
		),

		// Dispatch metrics
		ActionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jojo_actions_total",
				Help: "Total number of resolved actions by action kind",
			},
			[]string{"action"}, // action: help, menu, media, draw, food, script
		),

		UnmatchedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jojo_unmatched_total",
				Help: "Total number of events that resolved to no action",
			},
			[]string{"event_type"},
		),

		MediaFallbackTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jojo_media_fallback_total",
				Help: "Total number of image units replaced by a text fallback",
			},
			[]string{"key"}, // bounded by the catalog's media keys
		),

		ReplyTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jojo_reply_total",
				Help: "Total number of ReplyMessage calls by outcome",
			},
			[]string{"status"}, // status: success, error
		),

		// HTTP metrics
		HTTPErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jojo_http_errors_total",
				Help: "Total HTTP errors by type",
			},
			[]string{"error_type"}, // error_type: invalid_signature, parse_error, panic
		),

		// Rate limiter metrics
		RateLimiterDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jojo_rate_limiter_dropped_total",
				Help: "Total number of replies dropped by rate limiter",
			},
			[]string{"limiter_type"}, // limiter_type: chat, global
		),
	}
}

// RecordWebhook records a processed webhook event
func (m *Metrics) RecordWebhook(eventType, status string, duration float64) {
	m.WebhookRequestsTotal.WithLabelValues(eventType, status).Inc()
	m.WebhookDurationSeconds.WithLabelValues(eventType).Observe(duration)
}

// RecordAction records a resolved action
func (m *Metrics) RecordAction(action string) {
	m.ActionsTotal.WithLabelValues(action).Inc()
}

// RecordUnmatched records an event that produced no action
func (m *Metrics) RecordUnmatched(eventType string) {
	m.UnmatchedTotal.WithLabelValues(eventType).Inc()
}

// RecordMediaFallback records an image unit degraded to text
func (m *Metrics) RecordMediaFallback(key string) {
	m.MediaFallbackTotal.WithLabelValues(key).Inc()
}

// RecordReply records the outcome of a ReplyMessage call
func (m *Metrics) RecordReply(status string) {
	m.ReplyTotal.WithLabelValues(status).Inc()
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType).Inc()
}

// RecordRateLimiterDrop records a request dropped by rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}
