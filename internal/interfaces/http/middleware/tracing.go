package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// TracerProvider overrides the global provider when set.
	TracerProvider trace.TracerProvider
	// UntracedPaths are served without a span.
	UntracedPaths []string
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName:   "comanda-backend",
		Enabled:       true,
		UntracedPaths: []string{"/health"},
	}
}

// TracingWithConfig returns the otelgin middleware. Span names follow "METHOD /route/:param".
// Pair it with TracingAttributeInjector after SessionAuth to tag spans with the caller.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	opts := []otelgin.Option{}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	if len(cfg.UntracedPaths) > 0 {
		untraced := make(map[string]struct{}, len(cfg.UntracedPaths))
		for _, p := range cfg.UntracedPaths {
			untraced[p] = struct{}{}
		}
		opts = append(opts, otelgin.WithFilter(func(r *http.Request) bool {
			_, skip := untraced[r.URL.Path]
			return !skip
		}))
	}

	return otelgin.Middleware(cfg.ServiceName, opts...)
}

// TracingAttributeInjector tags the current span with the request ID and the
// authenticated subject. Place it after both the tracing and session middleware.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if id := GetRequestID(c); id != "" {
				span.SetAttributes(attribute.String("request_id", id))
			}
			if subject := GetSessionSubject(c); subject != "" {
				span.SetAttributes(attribute.String("session.subject", subject))
			}
		}
		c.Next()
	}
}

// SpanErrorMarker marks the request span as failed for 4xx and 5xx responses.
// otelgin alone leaves client errors unset.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}

		var description string
		switch {
		case status >= http.StatusInternalServerError:
			description = "Internal Server Error"
		case status == http.StatusUnauthorized:
			description = "Unauthorized"
		case status == http.StatusNotFound:
			description = "Not Found"
		case status == http.StatusConflict:
			description = "Conflict"
		default:
			description = "Client Error"
		}
		span.SetStatus(codes.Error, description)
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
}
