// Package config provides centralized timeout constants for the application.
//
// LINE expects the webhook to be acknowledged quickly, so the HTTP response
// is written before any event is processed. Reply tokens stay valid for a
// while, but a reply should go out within a few seconds for good UX.
package config

import "time"

// Webhook timeouts
const (
	// ReplyDispatch bounds a single ReplyMessage call to the LINE API.
	ReplyDispatch = 10 * time.Second

	// WebhookHTTPRead is the HTTP server read timeout for webhook requests.
	// Should be short since LINE sends small JSON payloads.
	WebhookHTTPRead = 10 * time.Second

	// WebhookHTTPWrite is the HTTP server write timeout.
	WebhookHTTPWrite = 15 * time.Second

	// WebhookHTTPIdle is the HTTP server idle timeout for keep-alive connections.
	WebhookHTTPIdle = 120 * time.Second

	// WebhookHTTPReadHeader guards against slow header attacks.
	WebhookHTTPReadHeader = 5 * time.Second
)

// Background job intervals
const (
	// RateLimiterCleanupInterval is how often idle per-chat limiters are evicted.
	RateLimiterCleanupInterval = 5 * time.Minute
)

// Graceful shutdown
const (
	// GracefulShutdown is the default budget for draining the server,
	// in-flight replies and log shipping.
	GracefulShutdown = 30 * time.Second
)
