package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hotelops/backend/internal/infrastructure/logger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength caps the request id copied into span attributes.
const MaxRequestIDLength = 128

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	// ServiceName is the name of the service for trace identification.
	ServiceName string
	// Enabled controls whether tracing is active.
	Enabled bool
}

// TracingWithConfig returns the otelgin middleware, or a pass-through when
// tracing is disabled. The span is named "METHOD route".
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// SpanEnricher adds request_id and user_id attributes to the request span and
// marks 4xx/5xx responses as errors. otelgin ends its span when its own
// handler returns, so this must be registered after TracingWithConfig.
// Attributes are read once the chain has run, so Identity may come later.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		enrichSpanWithAttributes(c, span)
		markSpanError(span, c.Writer.Status())
	}
}

func enrichSpanWithAttributes(c *gin.Context, span trace.Span) {
	requestID := logger.GetRequestID(c.Request.Context())
	if requestID == "" {
		requestID = c.GetHeader(logger.RequestIDHeader)
	}
	if len(requestID) > MaxRequestIDLength {
		requestID = requestID[:MaxRequestIDLength]
	}
	if requestID != "" {
		span.SetAttributes(attribute.String("request_id", requestID))
	}

	if userID, ok := GetUserID(c); ok {
		span.SetAttributes(attribute.String("user_id", userID.String()))
	}
}

func markSpanError(span trace.Span, status int) {
	if status < http.StatusBadRequest {
		return
	}
	span.SetStatus(codes.Error, http.StatusText(status))
	span.SetAttributes(attribute.Int("http.status_code", status))
}
