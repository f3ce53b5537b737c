package config

import (
	"strings"
	"testing"
)

func TestDefaultBotConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultBotConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.MaxMessagesPerReply != 5 {
		t.Errorf("expected MaxMessagesPerReply 5, got %d", cfg.MaxMessagesPerReply)
	}
	if cfg.MaxPostbackDataSize != 300 {
		t.Errorf("expected MaxPostbackDataSize 300, got %d", cfg.MaxPostbackDataSize)
	}
	if cfg.ReplyTimeout != ReplyDispatch {
		t.Errorf("expected ReplyTimeout %v, got %v", ReplyDispatch, cfg.ReplyTimeout)
	}
}

func TestBotConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*BotConfig)
		wantErr string
	}{
		{"zero reply timeout", func(c *BotConfig) { c.ReplyTimeout = 0 }, "reply timeout"},
		{"zero messages", func(c *BotConfig) { c.MaxMessagesPerReply = 0 }, "max messages per reply"},
		{"too many messages", func(c *BotConfig) { c.MaxMessagesPerReply = 6 }, "max messages per reply"},
		{"zero events", func(c *BotConfig) { c.MaxEventsPerWebhook = 0 }, "max events per webhook"},
		{"negative token length", func(c *BotConfig) { c.MinReplyTokenLength = -1 }, "min reply token length"},
		{"postback too large", func(c *BotConfig) { c.MaxPostbackDataSize = 301 }, "max postback data size"},
		{"zero concurrency", func(c *BotConfig) { c.MaxConcurrentEvents = 0 }, "max concurrent events"},
		{"zero global rps", func(c *BotConfig) { c.GlobalRateRPS = 0 }, "global rate RPS"},
		{"burst below one", func(c *BotConfig) { c.ChatRateBurst = 0.5 }, "chat rate burst"},
		{"zero refill", func(c *BotConfig) { c.ChatRateRefill = 0 }, "chat rate refill"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultBotConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
