package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aegisai/aegis/internal/infrastructure/monitoring"
	"github.com/aegisai/aegis/pkg/constants"
	"github.com/aegisai/aegis/pkg/logger"
)

const headerRequestID = "X-Request-ID"

// RequestID attaches an identifier to every request, honoring one supplied
// by the caller.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(headerRequestID, requestID)
		ctx := context.WithValue(c.Request.Context(), constants.ContextKeyRequestID, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Observability starts a trace span per request and records the HTTP request
// metrics with low-cardinality route labels.
func Observability(tracing *monitoring.TracingManager, metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		ctx, span := tracing.StartSpan(c.Request.Context(), c.Request.Method+" "+c.FullPath())
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "not_found"
		}
		status := c.Writer.Status()
		tracing.SpanAttributes(ctx, map[string]interface{}{
			"http.method":      c.Request.Method,
			"http.path":        path,
			"http.status_code": status,
		})
		if metrics != nil {
			metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
		}
	}
}

// AccessLog writes one structured line per request.
func AccessLog(log logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logger.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  time.Since(start).String(),
			"client_ip": c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		if c.Writer.Status() >= 500 {
			log.Error(c.Request.Context(), "request failed", nil, fields)
			return
		}
		log.Info(c.Request.Context(), "request completed", fields)
	}
}
