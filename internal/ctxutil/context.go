// Package ctxutil carries per-event tracing values through context.Context.
package ctxutil

import (
	"context"
)

type contextKey string

const (
	userIDKey    contextKey = "ctxutil.userID"
	chatIDKey    contextKey = "ctxutil.chatID"
	requestIDKey contextKey = "ctxutil.requestID"
	eventIDKey   contextKey = "ctxutil.eventID"
)

func withString(ctx context.Context, key contextKey, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

func getString(ctx context.Context, key contextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// WithUserID adds the LINE user ID of the event source.
func WithUserID(ctx context.Context, userID string) context.Context {
	return withString(ctx, userIDKey, userID)
}

// GetUserID returns the user ID, or "" when none is set.
func GetUserID(ctx context.Context) string {
	return getString(ctx, userIDKey)
}

// WithChatID adds the chat ID (user, group, or room) the reply goes to.
// The per-chat rate limiter keys on this value.
func WithChatID(ctx context.Context, chatID string) context.Context {
	return withString(ctx, chatIDKey, chatID)
}

// GetChatID returns the chat ID, or "" when none is set.
func GetChatID(ctx context.Context) string {
	return getString(ctx, chatIDKey)
}

// WithRequestID adds the webhook request ID used for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withString(ctx, requestIDKey, requestID)
}

// GetRequestID returns the request ID and whether a non-empty one was set.
func GetRequestID(ctx context.Context) (string, bool) {
	id := getString(ctx, requestIDKey)
	return id, id != ""
}

// WithEventID adds the LINE webhook event ID.
func WithEventID(ctx context.Context, eventID string) context.Context {
	return withString(ctx, eventIDKey, eventID)
}

// GetEventID returns the event ID, or "" when none is set.
func GetEventID(ctx context.Context) string {
	return getString(ctx, eventIDKey)
}

// PreserveTracing returns a fresh background context holding only the
// tracing values of ctx. Cancellation and deadlines are not inherited, so
// event processing can outlive the HTTP request that delivered it.
func PreserveTracing(ctx context.Context) context.Context {
	newCtx := context.Background()

	if userID := GetUserID(ctx); userID != "" {
		newCtx = WithUserID(newCtx, userID)
	}
	if chatID := GetChatID(ctx); chatID != "" {
		newCtx = WithChatID(newCtx, chatID)
	}
	if requestID, ok := GetRequestID(ctx); ok {
		newCtx = WithRequestID(newCtx, requestID)
	}
	if eventID := GetEventID(ctx); eventID != "" {
		newCtx = WithEventID(newCtx, eventID)
	}

	return newCtx
}
