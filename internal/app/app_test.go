package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/jojo-linebot-go/internal/catalog"
	"github.com/garyellow/jojo-linebot-go/internal/config"
	domerrors "github.com/garyellow/jojo-linebot-go/internal/errors"
	"github.com/garyellow/jojo-linebot-go/internal/logger"
	"github.com/garyellow/jojo-linebot-go/internal/metrics"
)

// setupTestApp creates an Application without a LINE client for endpoint tests.
func setupTestApp(t *testing.T, withCatalog bool) *Application {
	t.Helper()

	mediaDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(mediaDir, "oraora.jpg"), []byte("jpeg"), 0o600))

	registry := prometheus.NewRegistry()
	var buf bytes.Buffer
	app := &Application{
		cfg: &config.Config{
			BotName:         "JOJO",
			MediaDir:        mediaDir,
			MetricsUsername: "prometheus",
			ShutdownTimeout: config.GracefulShutdown,
		},
		logger:   logger.NewWithWriter("error", &buf),
		metrics:  metrics.New(registry),
		registry: registry,
	}
	if withCatalog {
		cat, err := catalog.Default()
		require.NoError(t, err)
		app.catalog = cat
	}
	app.router = app.setupRouter()
	return app
}

func serve(app *Application, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestLivenessCheck(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, false)

	w := serve(app, http.MethodGet, "/livez")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alive", decode(t, w)["status"])

	assert.Equal(t, http.StatusOK, serve(app, http.MethodHead, "/livez").Code)
}

func TestReadinessCheck(t *testing.T) {
	t.Parallel()

	t.Run("ready", func(t *testing.T) {
		t.Parallel()
		app := setupTestApp(t, true)
		w := serve(app, http.MethodGet, "/readyz")
		assert.Equal(t, http.StatusOK, w.Code)

		body := decode(t, w)
		assert.Equal(t, "ready", body["status"])
		stats, ok := body["catalog"].(map[string]any)
		require.True(t, ok)
		assert.InDelta(t, float64(len(app.catalog.Media)), stats["media"], 0)
		assert.InDelta(t, float64(len(app.catalog.DrawPool())), stats["draw_pool"], 0)
	})

	t.Run("not ready", func(t *testing.T) {
		t.Parallel()
		app := setupTestApp(t, false)
		w := serve(app, http.MethodGet, "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "catalog not loaded", decode(t, w)["reason"])
	})
}

func TestBanner(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, true)

	w := serve(app, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "JOJO", body["name"])
	assert.NotEmpty(t, body["version"])
}

func TestMediaRoute(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, true)

	w := serve(app, http.MethodGet, "/media/oraora.jpg")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jpeg", w.Body.String())

	assert.Equal(t, http.StatusNotFound, serve(app, http.MethodGet, "/media/missing.jpg").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, true)
	app.metrics.RecordAction("draw")

	w := serve(app, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `jojo_actions_total{action="draw"} 1`)
}

func TestWebhookRouteRequiresHandler(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, true)
	w := serve(app, http.MethodPost, "/webhook")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, true)

	w := serve(app, http.MethodGet, "/livez")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Len(t, w.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	req.Header.Set(requestIDHeader, "req-123")
	w = httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(requestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/livez", nil)
	req.Header.Set(requestIDHeader, strings.Repeat("x", 200))
	w = httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get(requestIDHeader), 36)
}

func TestInitialize_CatalogErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	invalid := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("texts: {}\n"), 0o600))

	tests := []struct {
		name        string
		path        string
		wantInvalid bool
	}{
		{"missing file", filepath.Join(dir, "missing.yaml"), false},
		{"invalid catalog", invalid, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := &config.Config{LogLevel: "error", CatalogPath: tt.path, MediaDir: dir}
			_, err := Initialize(context.Background(), cfg)
			require.Error(t, err)
			assert.Equal(t, "catalog:load", domerrors.Operation(err))
			assert.Equal(t, tt.wantInvalid, domerrors.IsInvalidCatalog(err))
		})
	}
}

func TestShutdownWithoutServer(t *testing.T) {
	t.Parallel()
	app := setupTestApp(t, true)
	app.server = &http.Server{Handler: app.router}

	ctx, cancel := context.WithTimeout(context.Background(), config.GracefulShutdown)
	defer cancel()
	app.shutdown(ctx)
}
