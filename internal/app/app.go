// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garyellow/jojo-linebot-go/internal/buildinfo"
	"github.com/garyellow/jojo-linebot-go/internal/catalog"
	"github.com/garyellow/jojo-linebot-go/internal/config"
	domerrors "github.com/garyellow/jojo-linebot-go/internal/errors"
	"github.com/garyellow/jojo-linebot-go/internal/intent"
	"github.com/garyellow/jojo-linebot-go/internal/logger"
	"github.com/garyellow/jojo-linebot-go/internal/media"
	"github.com/garyellow/jojo-linebot-go/internal/metrics"
	"github.com/garyellow/jojo-linebot-go/internal/ratelimit"
	"github.com/garyellow/jojo-linebot-go/internal/reply"
	"github.com/garyellow/jojo-linebot-go/internal/sentry"
	"github.com/garyellow/jojo-linebot-go/internal/webhook"
)

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg            *config.Config
	logger         *logger.Logger
	metrics        *metrics.Metrics
	registry       *prometheus.Registry
	catalog        *catalog.Catalog
	webhookHandler *webhook.Handler
	chatLimiter    *ratelimit.KeyedLimiter
	router         *gin.Engine
	server         *http.Server
	sentryEnabled  bool
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	opts := logger.Options{}
	if cfg.BetterStackActive() {
		opts.BetterStackToken = cfg.BetterStackToken
		opts.BetterStackEndpoint = cfg.BetterStackEndpoint
	}
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, opts)

	log = log.WithField("service", "jojo-linebot-go")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Set as default logger so package-level slog.*Context() calls get
	// the context values added by ContextHandler.
	slog.SetDefault(log.Logger)

	log.InfoContext(ctx, "Initializing application...")
	if opts.BetterStackToken != "" {
		log.WithField("endpoint", cfg.BetterStackEndpoint).Info("Better Stack logging enabled")
	}

	sentryEnabled := false
	if cfg.SentryActive() {
		if err := sentry.Initialize(sentry.Config{
			DSN:         cfg.SentryDSN,
			Environment: cfg.SentryEnvironment,
			Release:     buildinfo.Release(),
			SampleRate:  cfg.SentrySampleRate,
		}); err != nil {
			log.WithError(err).Warn("Sentry initialization failed; error reporting disabled")
		} else {
			sentryEnabled = true
			log.WithField("environment", cfg.SentryEnvironment).Info("Sentry error reporting enabled")
		}
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		if domerrors.IsInvalidCatalog(err) {
			log.WithError(err).Error("Catalog failed validation")
		}
		return nil, err
	}
	stats := cat.Stats()
	log.WithField("phrases", stats.Phrases).
		WithField("media", stats.Media).
		WithField("scripts", stats.Scripts).
		WithField("draw_pool", stats.DrawPool).
		Info("Catalog loaded")

	if missing, err := media.Check(cfg.MediaDir, cat.Media); err != nil {
		log.WithError(err).WithField("media_dir", cfg.MediaDir).Warn("Media directory unavailable; images will fail to load")
	} else if len(missing) > 0 {
		log.WithField("missing", missing).WithField("media_dir", cfg.MediaDir).Warn("Media files missing")
	}

	resolver, err := intent.NewResolver(cat, cfg.Bot.MaxPostbackDataSize)
	if err != nil {
		return nil, fmt.Errorf("resolver: %w", err)
	}
	composer := reply.NewComposer(cat, reply.WithMaxUnits(cfg.Bot.MaxMessagesPerReply))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	client, err := messaging_api.NewMessagingApiAPI(cfg.LineChannelToken)
	if err != nil {
		return nil, fmt.Errorf("create messaging API client: %w", err)
	}

	chatLimiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "chat",
		Burst:         cfg.Bot.ChatRateBurst,
		RefillRate:    cfg.Bot.ChatRateRefill,
		CleanupPeriod: config.RateLimiterCleanupInterval,
		Metrics:       m,
	})

	webhookHandler, err := webhook.NewHandler(webhook.HandlerConfig{
		ChannelSecret: cfg.LineChannelSecret,
		Replier:       client,
		Catalog:       cat,
		Resolver:      resolver,
		Composer:      composer,
		BotConfig:     &cfg.Bot,
		Metrics:       m,
		Logger:        log,
	},
		webhook.WithChatLimiter(chatLimiter),
		webhook.WithPublicBaseURL(cfg.PublicBaseURL),
		webhook.WithBotName(cfg.BotName),
	)
	if err != nil {
		chatLimiter.Stop()
		return nil, fmt.Errorf("webhook: %w", err)
	}

	app := &Application{
		cfg:            cfg,
		logger:         log,
		metrics:        m,
		registry:       registry,
		catalog:        cat,
		webhookHandler: webhookHandler,
		chatLimiter:    chatLimiter,
		sentryEnabled:  sentryEnabled,
	}
	gin.SetMode(gin.ReleaseMode)
	app.router = app.setupRouter()

	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.router,
		ReadHeaderTimeout: config.WebhookHTTPReadHeader,
		ReadTimeout:       config.WebhookHTTPRead,
		WriteTimeout:      config.WebhookHTTPWrite,
		IdleTimeout:       config.WebhookHTTPIdle,
	}

	log.Info("Initialization complete")
	return app, nil
}

// setupRouter builds the HTTP routes. The webhook route is only added when
// a webhook handler exists.
func (a *Application) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if a.sentryEnabled {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(a.logger))

	router.GET("/", a.banner)
	router.GET("/livez", a.livenessCheck)
	router.HEAD("/livez", a.livenessCheck)
	router.GET("/readyz", a.readinessCheck)
	router.HEAD("/readyz", a.readinessCheck)
	if a.webhookHandler != nil {
		router.POST("/webhook", a.webhookHandler.Handle)
	}
	router.Static(media.PathPrefix, a.cfg.MediaDir)
	router.GET("/metrics",
		metricsAuthMiddleware(a.cfg.MetricsAuthEnabled, a.cfg.MetricsUsername, a.cfg.MetricsPassword, a.metrics),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	return router
}

func (a *Application) banner(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    a.cfg.BotName,
		"version": buildinfo.Release(),
	})
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (a *Application) readinessCheck(c *gin.Context) {
	if a.catalog == nil {
		a.logger.Warn("Readiness check failed: catalog not loaded")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "catalog not loaded",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"catalog": a.catalog.Stats(),
	})
}

// Run starts the HTTP server and blocks until SIGINT or SIGTERM, then
// shuts down gracefully.
func (a *Application) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var serveErr error
	select {
	case sig := <-quit:
		a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")
	case serveErr = <-errCh:
		a.logger.WithError(serveErr).Error("HTTP server error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	a.shutdown(ctx)

	if serveErr != nil {
		return fmt.Errorf("http server: %w", serveErr)
	}
	return nil
}

// shutdown stops accepting requests, drains in-flight replies and flushes
// remote sinks, in that order.
func (a *Application) shutdown(ctx context.Context) {
	start := time.Now()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	a.logger.Info("Waiting for webhook events to complete...")
	if a.webhookHandler != nil {
		if err := a.webhookHandler.Shutdown(ctx); err != nil {
			a.logger.WithError(err).Warn("Webhook handler shutdown timeout")
		}
	}

	if a.chatLimiter != nil {
		a.chatLimiter.Stop()
	}

	if a.sentryEnabled {
		flushTimeout := config.GracefulShutdown
		if deadline, ok := ctx.Deadline(); ok {
			flushTimeout = time.Until(deadline)
		}
		if !sentry.Flush(flushTimeout) {
			a.logger.Warn("Sentry flush timed out")
		}
	}

	a.logger.WithField("duration_ms", time.Since(start).Milliseconds()).Info("Shutdown complete")

	if err := a.logger.Shutdown(ctx); err != nil {
		a.logger.WithError(err).Warn("Logger shutdown timed out")
	}
}
