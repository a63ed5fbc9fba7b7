package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sojib-web/zap-shift-server/internal/metrics"
)

// Metrics records request counts and latency per route
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}

		duration := time.Since(startTime).Seconds()
		metrics.HTTPRequestDuration.WithLabelValues(handler, c.Request.Method).Observe(duration)
		metrics.HTTPRequestsTotal.WithLabelValues(handler, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
