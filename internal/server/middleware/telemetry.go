// Package middleware holds HTTP middleware for the server.
package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry returns a middleware that records a span plus request count and
// duration metrics for each request. Best-effort: instrument creation failures
// are logged and the middleware degrades to a no-op. skipPaths is the set of
// route paths to not record (e.g. /healthz).
func Telemetry(tracer trace.Tracer, meter metric.Meter, skipPaths map[string]bool) gin.HandlerFunc {
	requests, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("Number of HTTP requests handled"))
	if err != nil {
		log.Printf("telemetry: request counter: %v", err)
	}
	duration, err := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("ms"))
	if err != nil {
		log.Printf("telemetry: duration histogram: %v", err)
	}

	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		if skipPaths[path] {
			c.Next()
			return
		}

		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+path)
		c.Request = c.Request.WithContext(ctx)
		start := time.Now()

		c.Next()

		attrs := []attribute.KeyValue{
			attribute.String("http.request.method", c.Request.Method),
			attribute.String("http.route", path),
			attribute.Int("http.response.status_code", c.Writer.Status()),
		}
		span.SetAttributes(attrs...)
		span.End()

		opt := metric.WithAttributes(attrs...)
		if requests != nil {
			requests.Add(ctx, 1, opt)
		}
		if duration != nil {
			duration.Record(ctx, float64(time.Since(start).Milliseconds()), opt)
		}
	}
}
