package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"syncchat.backend/pkg/metrics"
)

// MetricsMiddleware records request counts and latency per route template.
// Unmatched paths are grouped under one label to bound cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
