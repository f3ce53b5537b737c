package webhook

import (
	"github.com/garyellow/jojo-linebot-go/internal/ratelimit"
)

// HandlerOption configures optional Handler behavior.
type HandlerOption func(*Handler)

// WithChatLimiter drops events from chats that exhaust their bucket.
func WithChatLimiter(limiter *ratelimit.KeyedLimiter) HandlerOption {
	return func(h *Handler) {
		h.chatLimiter = limiter
	}
}

// WithPublicBaseURL fixes the origin media URLs are built on instead of
// deriving it from each request.
func WithPublicBaseURL(baseURL string) HandlerOption {
	return func(h *Handler) {
		h.publicBaseURL = baseURL
	}
}

// WithBotName sets the sender name shown on every reply.
func WithBotName(name string) HandlerOption {
	return func(h *Handler) {
		h.botName = name
	}
}
