// Package config provides application configuration management.
// It loads settings from environment variables (and an optional .env file)
// into an immutable Config that is passed explicitly to every component.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// LINE Bot Configuration
	LineChannelToken  string
	LineChannelSecret string

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration
	PublicBaseURL   string // Origin for media URLs; derived per request when empty

	// Content Configuration
	MediaDir    string // Directory served under /media
	CatalogPath string // Optional catalog file replacing the embedded one
	BotName     string // Sender name shown on replies

	// Sentry Configuration (Better Stack Errors)
	SentryEnabled     bool
	SentryDSN         string
	SentryEnvironment string
	SentrySampleRate  float64

	// Better Stack Logs
	BetterStackEnabled  bool
	BetterStackToken    string
	BetterStackEndpoint string

	// Metrics Authentication
	MetricsAuthEnabled bool
	MetricsUsername    string
	MetricsPassword    string

	// Bot Configuration
	Bot BotConfig
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// FromEnv builds a Config from the current environment without validating it.
func FromEnv() *Config {
	defaults := DefaultBotConfig()

	return &Config{
		LineChannelToken:  getEnv(EnvLineChannelAccessToken, getEnv(EnvLegacyLineToken, "")),
		LineChannelSecret: getEnv(EnvLineChannelSecret, getEnv(EnvLegacyLineSecret, "")),

		Port:            getEnv(EnvPort, getEnv(EnvLegacyPort, "3000")),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),
		PublicBaseURL:   strings.TrimSpace(getEnv(EnvPublicBaseURL, "")),

		MediaDir:    getEnv(EnvMediaDir, "./public/media"),
		CatalogPath: getEnv(EnvCatalogPath, ""),
		BotName:     getEnv(EnvBotName, "JOJO"),

		SentryEnabled:     getBoolEnv(EnvSentryEnabled, false),
		SentryDSN:         getEnv(EnvSentryDSN, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentrySampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),

		BetterStackEnabled:  getBoolEnv(EnvBetterStackEnabled, false),
		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),

		MetricsAuthEnabled: getBoolEnv(EnvMetricsAuthEnabled, false),
		MetricsUsername:    getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword:    getEnv(EnvMetricsPassword, ""),

		Bot: BotConfig{
			ReplyTimeout:        getDurationEnv(EnvReplyTimeout, defaults.ReplyTimeout),
			MaxMessagesPerReply: defaults.MaxMessagesPerReply,
			MaxEventsPerWebhook: defaults.MaxEventsPerWebhook,
			MinReplyTokenLength: defaults.MinReplyTokenLength,
			MaxPostbackDataSize: defaults.MaxPostbackDataSize,
			MaxConcurrentEvents: getIntEnv(EnvMaxConcurrentEvents, defaults.MaxConcurrentEvents),
			GlobalRateRPS:       getFloatEnv(EnvGlobalRateRPS, defaults.GlobalRateRPS),
			ChatRateBurst:       getFloatEnv(EnvChatRateBurst, defaults.ChatRateBurst),
			ChatRateRefill:      getFloatEnv(EnvChatRateRefill, defaults.ChatRateRefill),
		},
	}
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.LineChannelToken == "" {
		errs = append(errs, fmt.Errorf("%s (or %s) is required", EnvLineChannelAccessToken, EnvLegacyLineToken))
	}
	if c.LineChannelSecret == "" {
		errs = append(errs, fmt.Errorf("%s (or %s) is required", EnvLineChannelSecret, EnvLegacyLineSecret))
	}
	if c.Port == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvPort))
	} else if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		errs = append(errs, fmt.Errorf("%s must be a port number, got %q", EnvPort, c.Port))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvShutdownTimeout, c.ShutdownTimeout))
	}
	if c.PublicBaseURL != "" {
		if _, err := url.Parse(c.PublicBaseURL); err != nil {
			errs = append(errs, fmt.Errorf("%s is not a valid URL: %w", EnvPublicBaseURL, err))
		}
	}
	if c.MediaDir == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvMediaDir))
	}
	if c.SentryEnabled && c.SentryDSN == "" {
		errs = append(errs, fmt.Errorf("%s is required when %s=true", EnvSentryDSN, EnvSentryEnabled))
	}
	if c.SentrySampleRate < 0 || c.SentrySampleRate > 1 {
		errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %v", EnvSentrySampleRate, c.SentrySampleRate))
	}
	if c.BetterStackEnabled && c.BetterStackToken == "" {
		errs = append(errs, fmt.Errorf("%s is required when %s=true", EnvBetterStackToken, EnvBetterStackEnabled))
	}
	if c.MetricsAuthEnabled && c.MetricsPassword == "" {
		errs = append(errs, fmt.Errorf("%s is required when %s=true", EnvMetricsPassword, EnvMetricsAuthEnabled))
	}
	if err := c.Bot.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("bot config: %w", err))
	}

	return errors.Join(errs...)
}

// SentryActive reports whether errors should be shipped to Sentry.
func (c *Config) SentryActive() bool {
	return c.SentryEnabled && c.SentryDSN != ""
}

// BetterStackActive reports whether logs should be shipped to Better Stack.
func (c *Config) BetterStackActive() bool {
	return c.BetterStackEnabled && c.BetterStackToken != ""
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
