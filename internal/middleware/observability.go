package middleware

import (
	"time"

	"kasir-system/internal/metrics"
	"kasir-system/internal/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

// InitPropagation installs the W3C trace-context and baggage propagators.
func InitPropagation() {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// Observability extracts the incoming trace context, starts a server span,
// attaches a request-scoped logger, echoes X-Request-ID and records HTTP
// metrics and one access log line per request.
func Observability(base *zap.Logger, m *metrics.Metrics, service string) gin.HandlerFunc {
	if base == nil {
		base = zap.L()
	}
	tracer := otel.Tracer(service)

	return func(c *gin.Context) {
		prop := otel.GetTextMapPropagator()
		ctx := prop.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+route, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(RequestIDHeader, rid)

		ctx = logging.WithRequest(ctx, base, rid)
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			ctx = logging.WithTrace(ctx, sc.TraceID().String(), sc.SpanID().String())
		}
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)
		status := c.Writer.Status()

		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		if status >= 500 {
			span.SetStatus(otelcodes.Error, c.Errors.String())
		}

		m.ObserveHTTP(c.Request.Method, c.FullPath(), status, elapsed)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.String("client_ip", c.ClientIP()),
		}
		// JWTAuth may have enriched the logger further down the chain.
		logger := logging.FromContext(c.Request.Context())
		switch {
		case status >= 500:
			logger.Error("request", fields...)
		case status >= 400:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}
