package ctxutil

import (
	"context"
	"testing"
	"time"
)

func TestValuesRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ctx = WithUserID(ctx, "U1234567890")
	ctx = WithChatID(ctx, "C0987654321")
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithEventID(ctx, "01HEVENT")

	if got := GetUserID(ctx); got != "U1234567890" {
		t.Errorf("GetUserID() = %q", got)
	}
	if got := GetChatID(ctx); got != "C0987654321" {
		t.Errorf("GetChatID() = %q", got)
	}
	if got, ok := GetRequestID(ctx); !ok || got != "req-1" {
		t.Errorf("GetRequestID() = %q, %v", got, ok)
	}
	if got := GetEventID(ctx); got != "01HEVENT" {
		t.Errorf("GetEventID() = %q", got)
	}
}

func TestEmptyContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if got := GetUserID(ctx); got != "" {
		t.Errorf("GetUserID() = %q, want empty", got)
	}
	if got := GetChatID(ctx); got != "" {
		t.Errorf("GetChatID() = %q, want empty", got)
	}
	if _, ok := GetRequestID(ctx); ok {
		t.Error("GetRequestID() reported ok on empty context")
	}
	if _, ok := GetRequestID(WithRequestID(ctx, "")); ok {
		t.Error("GetRequestID() reported ok for empty request ID")
	}
	if got := GetEventID(ctx); got != "" {
		t.Errorf("GetEventID() = %q, want empty", got)
	}
}

func TestPreserveTracing(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithTimeout(context.Background(), time.Minute)
	parent = WithUserID(parent, "U1")
	parent = WithChatID(parent, "C1")
	parent = WithRequestID(parent, "req-1")
	parent = WithEventID(parent, "E1")

	detached := PreserveTracing(parent)
	cancel()

	if detached.Err() != nil {
		t.Error("detached context should not inherit cancellation")
	}
	if _, ok := detached.Deadline(); ok {
		t.Error("detached context should not inherit deadline")
	}
	if GetUserID(detached) != "U1" || GetChatID(detached) != "C1" || GetEventID(detached) != "E1" {
		t.Error("tracing values were not preserved")
	}
	if id, _ := GetRequestID(detached); id != "req-1" {
		t.Errorf("request ID = %q, want req-1", id)
	}
}
