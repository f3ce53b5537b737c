package app

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyellow/jojo-linebot-go/internal/metrics"
)

const metricsRealm = `Basic realm="metrics"`

// metricsAuthMiddleware enforces Basic Auth on /metrics when enabled.
// Rejections are counted as metrics_unauthorized HTTP errors.
func metricsAuthMiddleware(enabled bool, username, password string, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		user, pass, hasAuth := c.Request.BasicAuth()
		// Both comparisons always run so timing does not reveal which one failed
		userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
		passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1

		if !hasAuth || !userMatch || !passMatch {
			if m != nil {
				m.RecordHTTPError("metrics_unauthorized")
			}
			c.Header("WWW-Authenticate", metricsRealm)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Next()
	}
}
