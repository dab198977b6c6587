// Package middleware provides HTTP middleware for the catalog API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength is the maximum length for request IDs copied into spans
const MaxRequestIDLength = 128

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	// ServiceName is the name of the service for trace identification.
	ServiceName string
	// Enabled controls whether tracing is active.
	Enabled bool
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "coupang-catalog",
		Enabled:     true,
	}
}

// Tracing returns OpenTelemetry tracing middleware with default configuration.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig returns otelgin middleware. Span names follow
// "METHOD route_pattern", e.g. "GET /api/v1/catalog/products/:id".
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return otelgin.Middleware(cfg.ServiceName)
}

// SpanEnricher adds request attributes to the active span and marks error
// responses. It must run inside Tracing.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			enrichSpanWithAttributes(c, span)
		}

		c.Next()

		if !span.IsRecording() {
			return
		}
		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			span.SetStatus(codes.Error, http.StatusText(status))
			span.SetAttributes(attribute.Int("http.status_code", status))
		}
	}
}

func enrichSpanWithAttributes(c *gin.Context, span trace.Span) {
	if requestID := getRequestID(c); requestID != "" {
		span.SetAttributes(attribute.String("request_id", requestID))
	}
	if sessionID := getSessionID(c); sessionID != "" {
		span.SetAttributes(attribute.String("session.id", sessionID))
	}
}

// getRequestID retrieves the request ID from the gin context or header.
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	headerID := c.GetHeader(RequestIDKey)
	if len(headerID) > MaxRequestIDLength {
		return headerID[:MaxRequestIDLength]
	}
	return headerID
}

// getSessionID returns the :id path parameter of session routes when it is a UUID
func getSessionID(c *gin.Context) string {
	if !strings.Contains(c.FullPath(), "/sessions/") {
		return ""
	}
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return ""
	}
	return id
}
