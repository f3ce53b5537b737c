// Package webhook receives LINE webhook deliveries and answers each event
// with a composed reply.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"golang.org/x/sync/errgroup"

	"github.com/garyellow/jojo-linebot-go/internal/catalog"
	"github.com/garyellow/jojo-linebot-go/internal/config"
	"github.com/garyellow/jojo-linebot-go/internal/ctxutil"
	domerrors "github.com/garyellow/jojo-linebot-go/internal/errors"
	"github.com/garyellow/jojo-linebot-go/internal/intent"
	"github.com/garyellow/jojo-linebot-go/internal/lineutil"
	"github.com/garyellow/jojo-linebot-go/internal/logger"
	"github.com/garyellow/jojo-linebot-go/internal/media"
	"github.com/garyellow/jojo-linebot-go/internal/metrics"
	"github.com/garyellow/jojo-linebot-go/internal/ratelimit"
	"github.com/garyellow/jojo-linebot-go/internal/reply"
	"github.com/garyellow/jojo-linebot-go/internal/sentry"
)

// Replier sends a reply. *messaging_api.MessagingApiAPI satisfies it.
type Replier interface {
	ReplyMessage(req *messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error)
}

// outcome is the per-event result counted in the batch summary and used as
// the webhook metric status.
type outcome string

const (
	outcomeReplied   outcome = "replied"
	outcomeIgnored   outcome = "ignored"
	outcomeUnmatched outcome = "unmatched"
	outcomeLimited   outcome = "rate_limited"
	outcomeFailed    outcome = "error"
)

// Handler handles LINE webhook events
type Handler struct {
	channelSecret string
	replier       Replier
	catalog       *catalog.Catalog
	resolver      *intent.Resolver
	composer      *reply.Composer
	metrics       *metrics.Metrics
	logger        *logger.Logger
	rateLimiter   *ratelimit.Limiter      // Global rate limiter for the reply API
	chatLimiter   *ratelimit.KeyedLimiter // Optional per-chat limiter
	publicBaseURL string
	botName       string
	wg            sync.WaitGroup // Tracks async batches for Shutdown

	// Limits (from config.BotConfig)
	replyTimeout        time.Duration
	maxEventsPerWebhook int
	minReplyTokenLength int
	maxConcurrentEvents int
}

// HandlerConfig holds the required dependencies of a Handler.
type HandlerConfig struct {
	ChannelSecret string
	Replier       Replier
	Catalog       *catalog.Catalog
	Resolver      *intent.Resolver
	Composer      *reply.Composer
	BotConfig     *config.BotConfig
	Metrics       *metrics.Metrics
	Logger        *logger.Logger
}

// NewHandler creates a new webhook handler.
func NewHandler(cfg HandlerConfig, opts ...HandlerOption) (*Handler, error) {
	var missing []string
	if cfg.ChannelSecret == "" {
		missing = append(missing, "channel secret")
	}
	if cfg.Replier == nil {
		missing = append(missing, "replier")
	}
	if cfg.Catalog == nil {
		missing = append(missing, "catalog")
	}
	if cfg.Resolver == nil {
		missing = append(missing, "resolver")
	}
	if cfg.Composer == nil {
		missing = append(missing, "composer")
	}
	if cfg.BotConfig == nil {
		missing = append(missing, "bot config")
	}
	if cfg.Metrics == nil {
		missing = append(missing, "metrics")
	}
	if cfg.Logger == nil {
		missing = append(missing, "logger")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: webhook handler missing %s", domerrors.ErrInvalidInput, strings.Join(missing, ", "))
	}

	h := &Handler{
		channelSecret:       cfg.ChannelSecret,
		replier:             cfg.Replier,
		catalog:             cfg.Catalog,
		resolver:            cfg.Resolver,
		composer:            cfg.Composer,
		metrics:             cfg.Metrics,
		logger:              cfg.Logger.WithModule("webhook"),
		rateLimiter:         ratelimit.New(cfg.BotConfig.GlobalRateRPS, cfg.BotConfig.GlobalRateRPS),
		replyTimeout:        cfg.BotConfig.ReplyTimeout,
		maxEventsPerWebhook: cfg.BotConfig.MaxEventsPerWebhook,
		minReplyTokenLength: cfg.BotConfig.MinReplyTokenLength,
		maxConcurrentEvents: max(cfg.BotConfig.MaxConcurrentEvents, 1),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Handle is the Gin handler for the webhook endpoint
func (h *Handler) Handle(c *gin.Context) {
	// 1. Parse request
	cb, err := webhook.ParseRequest(h.channelSecret, c.Request)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			h.logger.Warn("Invalid webhook signature")
			h.metrics.RecordHTTPError("invalid_signature")
			c.Status(http.StatusBadRequest)
		} else {
			h.logger.WithError(err).Error("Failed to parse webhook request")
			h.metrics.RecordHTTPError("parse_error")
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	// 2. Media URLs and sender are fixed for the whole delivery
	origin := media.ResolveOrigin(h.publicBaseURL, c.Request)
	table := media.BuildTable(origin+media.PathPrefix, h.catalog.Media)
	iconURL, _ := table.Lookup(h.catalog.SenderIcon)
	sender := lineutil.NewSender(h.botName, iconURL)
	baseCtx := ctxutil.PreserveTracing(c.Request.Context())

	// 3. Return 200 OK before processing (LINE requirement)
	c.Status(http.StatusOK)

	if len(cb.Events) > h.maxEventsPerWebhook {
		h.logger.WithField("event_count", len(cb.Events)).
			WithField("limit", h.maxEventsPerWebhook).
			Warn("Too many events in webhook batch; truncating")
		cb.Events = cb.Events[:h.maxEventsPerWebhook]
	}

	// Copy events so nothing references the request after the response
	events := make([]webhook.EventInterface, len(cb.Events))
	copy(events, cb.Events)

	h.wg.Go(func() {
		h.processBatch(baseCtx, events, table, sender)
	})
}

// processBatch runs every event of one delivery concurrently and logs a
// summary. A failing event never cancels the others.
func (h *Handler) processBatch(ctx context.Context, events []webhook.EventInterface, table media.Table, sender *messaging_api.Sender) {
	start := time.Now()
	var replied, ignored, failed atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(h.maxConcurrentEvents)
	for _, event := range events {
		g.Go(func() error {
			switch h.runEvent(ctx, event, table, sender) {
			case outcomeReplied:
				replied.Add(1)
			case outcomeFailed:
				failed.Add(1)
			default:
				ignored.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(events) == 0 {
		return
	}
	h.logger.WithFields(map[string]any{
		"events":      len(events),
		"replied":     replied.Load(),
		"ignored":     ignored.Load(),
		"failed":      failed.Load(),
		"duration_ms": time.Since(start).Milliseconds(),
	}).InfoContext(ctx, "Webhook batch processed")
}

// runEvent handles one event and converts a panic into a failed outcome.
func (h *Handler) runEvent(ctx context.Context, event webhook.EventInterface, table media.Table, sender *messaging_api.Sender) (result outcome) {
	start := time.Now()
	label := eventType(event)

	defer func() {
		if r := recover(); r != nil {
			perr := domerrors.NewPanicError(r)
			h.logger.WithError(perr).
				WithField("event_type", label).
				WithField("stack", string(perr.Stack)).
				ErrorContext(ctx, "Panic while handling event")
			sentry.CaptureExceptionWithTags(ctx, perr, map[string]string{"event_type": label})
			result = outcomeFailed
		}
		h.metrics.RecordWebhook(label, string(result), time.Since(start).Seconds())
	}()

	return h.processEvent(ctx, event, label, table, sender)
}

func (h *Handler) processEvent(ctx context.Context, event webhook.EventInterface, label string, table media.Table, sender *messaging_api.Sender) outcome {
	ev, meta, ok := toEvent(event)
	if !ok {
		h.logger.WithField("event_type", label).DebugContext(ctx, "Unsupported event type")
		return outcomeIgnored
	}

	if meta.id != "" {
		ctx = ctxutil.WithEventID(ctx, meta.id)
	}
	ctx = ctxutil.WithChatID(ctxutil.WithUserID(ctx, ev.UserID), ev.ChatID)

	log := h.logger.WithField("event_type", label)
	if meta.isRedelivery != nil {
		log = log.WithField("is_redelivery", *meta.isRedelivery)
	}
	if meta.timestamp > 0 {
		log = log.WithField("event_timestamp_ms", meta.timestamp)
	}

	action, ok := h.resolver.Resolve(ev)
	if !ok {
		h.metrics.RecordUnmatched(label)
		log.DebugContext(ctx, "No action for event")
		return outcomeUnmatched
	}
	log = log.WithField("action", action.String())

	if len(ev.ReplyToken) < h.minReplyTokenLength {
		log.WithField("token_length", len(ev.ReplyToken)).DebugContext(ctx, "Invalid reply token format")
		return outcomeIgnored
	}

	if h.chatLimiter != nil && !h.chatLimiter.Allow(ev.ChatID) {
		log.DebugContext(ctx, "Chat rate limit exceeded; dropping event")
		return outcomeLimited
	}

	seq := h.composer.Compose(action, table)
	h.metrics.RecordAction(action.Kind.String())
	for _, key := range seq.Fallbacks() {
		h.metrics.RecordMediaFallback(string(key))
		log.WithField("media_key", string(key)).WarnContext(ctx, "Media unavailable; sent fallback text")
	}

	if err := h.dispatch(ctx, ev.ReplyToken, lineutil.RenderSequence(seq, sender)); err != nil {
		h.metrics.RecordReply("error")
		h.logReplyError(ctx, log, err, ev.ReplyToken)
		sentry.CaptureExceptionWithTags(ctx, err, map[string]string{
			"event_type": label,
			"action":     action.Kind.String(),
			"operation":  domerrors.Operation(err),
		})
		return outcomeFailed
	}
	h.metrics.RecordReply("success")
	log.WithField("units", len(seq)).InfoContext(ctx, "Reply sent")
	return outcomeReplied
}

// dispatch sends messages with a single reply call. It is never retried:
// a reply token is single use.
func (h *Handler) dispatch(ctx context.Context, replyToken string, messages []messaging_api.MessageInterface) error {
	waitCtx, cancel := context.WithTimeout(ctx, h.replyTimeout)
	defer cancel()

	if !h.rateLimiter.Allow() {
		h.logger.WarnContext(ctx, "Global rate limit exceeded; waiting")
		h.metrics.RecordRateLimiterDrop("global")
		if err := h.rateLimiter.Wait(waitCtx); err != nil {
			return domerrors.Wrap("webhook", "rate_limit", fmt.Errorf("%w: %w", domerrors.ErrRateLimitExceeded, err))
		}
	}

	if _, err := h.replier.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	}); err != nil {
		return domerrors.Wrap("webhook", "reply", fmt.Errorf("%w: %w", domerrors.ErrReplyFailed, err))
	}
	return nil
}

func (h *Handler) logReplyError(ctx context.Context, log *logger.Logger, err error, replyToken string) {
	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "Invalid reply token"):
		log.WithError(err).DebugContext(ctx, "Reply token already used or invalid")
	case domerrors.IsRateLimitExceeded(err):
		log.WithError(err).ErrorContext(ctx, "Rate limit exceeded")
	case domerrors.IsReplyFailed(err):
		log.WithError(err).WithField("reply_token", tokenPrefix(replyToken)).ErrorContext(ctx, "Failed to send reply")
	default:
		log.WithError(err).WithField("operation", domerrors.Operation(err)).ErrorContext(ctx, "Unexpected dispatch error")
	}
}

func tokenPrefix(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8] + "..."
}

// Shutdown waits for all async event processing to complete.
// It returns an error if the context is canceled before completion.
func (h *Handler) Shutdown(ctx context.Context) error {
	c := make(chan struct{})
	go func() {
		defer close(c)
		h.wg.Wait()
	}()

	select {
	case <-c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
