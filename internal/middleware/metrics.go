package middleware

import (
	"time"

	"github.com/psholiveira/barber-system/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records latency and status per route template.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
