// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Core (Required)
	EnvLineChannelAccessToken = "JOJO_LINE_CHANNEL_ACCESS_TOKEN"
	EnvLineChannelSecret      = "JOJO_LINE_CHANNEL_SECRET"

	// Legacy names, still honoured when the prefixed keys are unset.
	EnvLegacyLineToken  = "LINE_TOKEN"
	EnvLegacyLineSecret = "LINE_SECRET"
	EnvLegacyPort       = "PORT"

	// Server
	EnvPort            = "JOJO_PORT"
	EnvLogLevel        = "JOJO_LOG_LEVEL"
	EnvShutdownTimeout = "JOJO_SHUTDOWN_TIMEOUT"
	EnvPublicBaseURL   = "JOJO_PUBLIC_BASE_URL"

	// Content
	EnvMediaDir    = "JOJO_MEDIA_DIR"
	EnvCatalogPath = "JOJO_CATALOG_PATH"
	EnvBotName     = "JOJO_BOT_NAME"

	// Webhook
	EnvReplyTimeout        = "JOJO_REPLY_TIMEOUT"
	EnvMaxConcurrentEvents = "JOJO_MAX_CONCURRENT_EVENTS"

	// Rate Limits
	EnvGlobalRateRPS  = "JOJO_GLOBAL_RATE_RPS"
	EnvChatRateBurst  = "JOJO_CHAT_RATE_BURST"
	EnvChatRateRefill = "JOJO_CHAT_RATE_REFILL"

	// Sentry Feature
	EnvSentryEnabled     = "JOJO_SENTRY_ENABLED"
	EnvSentryDSN         = "JOJO_SENTRY_DSN"
	EnvSentryEnvironment = "JOJO_SENTRY_ENVIRONMENT"
	EnvSentrySampleRate  = "JOJO_SENTRY_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackEnabled  = "JOJO_BETTERSTACK_ENABLED"
	EnvBetterStackToken    = "JOJO_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "JOJO_BETTERSTACK_ENDPOINT"

	// Metrics Auth Feature
	EnvMetricsAuthEnabled = "JOJO_METRICS_AUTH_ENABLED"
	EnvMetricsUsername    = "JOJO_METRICS_USERNAME"
	EnvMetricsPassword    = "JOJO_METRICS_PASSWORD"
)
