package sentry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInitialize_EmptyDSN(t *testing.T) {
	t.Parallel()

	if err := Initialize(Config{DSN: ""}); err != nil {
		t.Errorf("Expected nil error for empty DSN, got %v", err)
	}
}

func TestInitialize_InvalidDSN(t *testing.T) {
	// Cannot use t.Parallel() as Sentry uses global state
	if err := Initialize(Config{DSN: "not a dsn"}); err == nil {
		t.Error("Expected error for malformed DSN")
	}
}

func TestInitialize_ValidConfig(t *testing.T) {
	// Cannot use t.Parallel() as Sentry uses global state
	err := Initialize(Config{
		DSN:         "https://public@errors.example.com/1",
		Environment: "test",
		Release:     "jojo@test",
	})
	if err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}
	if !IsEnabled() {
		t.Error("Expected IsEnabled() to return true after initialization")
	}

	// Must not panic with or without a hub on the context.
	CaptureExceptionWithTags(context.Background(), errors.New("reply failed"), map[string]string{"event_type": "message"})
	CaptureExceptionWithTags(context.Background(), nil, nil)
	CaptureException(errors.New("plain"))

	Flush(time.Second)
}

func TestFlush(t *testing.T) {
	t.Parallel()

	// Flush should complete quickly when there are no events
	_ = Flush(100 * time.Millisecond)
}
