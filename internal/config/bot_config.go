package config

import (
	"errors"
	"fmt"
	"time"
)

// LINE Messaging API limits.
// https://developers.line.biz/en/reference/messaging-api/
const (
	LINEMaxMessagesPerReply   = 5
	LINEMaxPostbackDataLength = 300
)

// BotConfig holds limits applied while handling webhook events.
type BotConfig struct {
	// Timeouts
	ReplyTimeout time.Duration // Per ReplyMessage call (see config/timeouts.go)

	// LINE API Constraints
	MaxMessagesPerReply int // Per-reply message cap (LINE API limit: 5)
	MaxEventsPerWebhook int // Events beyond this in one delivery are ignored
	MinReplyTokenLength int // Shorter tokens are treated as invalid
	MaxPostbackDataSize int // Larger postback payloads are ignored (LINE API limit: 300)

	// Concurrency
	MaxConcurrentEvents int // Events of one delivery processed in parallel

	// Rate Limits (Token Bucket Algorithm)
	GlobalRateRPS  float64 // Reply API calls per second across all chats
	ChatRateBurst  float64 // Burst tokens per chat
	ChatRateRefill float64 // Tokens refilled per second per chat
}

// DefaultBotConfig returns the limits used when no overrides are set.
func DefaultBotConfig() BotConfig {
	return BotConfig{
		ReplyTimeout:        ReplyDispatch,
		MaxMessagesPerReply: LINEMaxMessagesPerReply,
		MaxEventsPerWebhook: 100,
		MinReplyTokenLength: 10,
		MaxPostbackDataSize: LINEMaxPostbackDataLength,
		MaxConcurrentEvents: 8,
		GlobalRateRPS:       80, // LINE allows 100 RPS on the reply endpoint
		ChatRateBurst:       10,
		ChatRateRefill:      0.5,
	}
}

// Validate reports every out-of-range limit at once.
func (c BotConfig) Validate() error {
	var errs []error

	if c.ReplyTimeout <= 0 {
		errs = append(errs, fmt.Errorf("reply timeout must be positive, got %v", c.ReplyTimeout))
	}
	if c.MaxMessagesPerReply < 1 || c.MaxMessagesPerReply > LINEMaxMessagesPerReply {
		errs = append(errs, fmt.Errorf("max messages per reply must be 1-%d (LINE API limit), got %d",
			LINEMaxMessagesPerReply, c.MaxMessagesPerReply))
	}
	if c.MaxEventsPerWebhook < 1 {
		errs = append(errs, fmt.Errorf("max events per webhook must be positive, got %d", c.MaxEventsPerWebhook))
	}
	if c.MinReplyTokenLength < 0 {
		errs = append(errs, fmt.Errorf("min reply token length cannot be negative, got %d", c.MinReplyTokenLength))
	}
	if c.MaxPostbackDataSize < 1 || c.MaxPostbackDataSize > LINEMaxPostbackDataLength {
		errs = append(errs, fmt.Errorf("max postback data size must be 1-%d, got %d",
			LINEMaxPostbackDataLength, c.MaxPostbackDataSize))
	}
	if c.MaxConcurrentEvents < 1 {
		errs = append(errs, fmt.Errorf("max concurrent events must be positive, got %d", c.MaxConcurrentEvents))
	}
	if c.GlobalRateRPS <= 0 {
		errs = append(errs, fmt.Errorf("global rate RPS must be positive, got %v", c.GlobalRateRPS))
	}
	if c.ChatRateBurst < 1 {
		errs = append(errs, fmt.Errorf("chat rate burst must be at least 1, got %v", c.ChatRateBurst))
	}
	if c.ChatRateRefill <= 0 {
		errs = append(errs, fmt.Errorf("chat rate refill must be positive, got %v", c.ChatRateRefill))
	}

	return errors.Join(errs...)
}
