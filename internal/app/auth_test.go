package app

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/garyellow/jojo-linebot-go/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func basicAuth(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestMetricsAuthMiddleware(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name          string
		enabled       bool
		authorization string
		wantStatus    int
	}{
		{"disabled passes through", false, "", http.StatusOK},
		{"valid credentials", true, basicAuth("prometheus", "secret123"), http.StatusOK},
		{"missing credentials", true, "", http.StatusUnauthorized},
		{"wrong password", true, basicAuth("prometheus", "wrong"), http.StatusUnauthorized},
		{"wrong username", true, basicAuth("admin", "secret123"), http.StatusUnauthorized},
		{"malformed header", true, "Basic !!!", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := metrics.New(prometheus.NewRegistry())
			router := gin.New()
			router.GET("/metrics", metricsAuthMiddleware(tt.enabled, "prometheus", "secret123", m), func(c *gin.Context) {
				c.String(http.StatusOK, "metrics")
			})

			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, metricsRealm, w.Header().Get("WWW-Authenticate"))
				assert.InDelta(t, 1, testutil.ToFloat64(m.HTTPErrorsTotal.WithLabelValues("metrics_unauthorized")), 0)
			} else {
				assert.Equal(t, "metrics", w.Body.String())
			}
		})
	}
}

func TestMetricsAuthMiddleware_NilMetrics(t *testing.T) {
	t.Parallel()
	router := gin.New()
	router.GET("/metrics", metricsAuthMiddleware(true, "prometheus", "secret123", nil), func(c *gin.Context) {
		c.String(http.StatusOK, "metrics")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
