package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amansoomro062/codesign/internal/config"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const ServiceVersion = "0.1.0"

var (
	tracerProvider *sdktrace.TracerProvider
)

// Enabled reports whether telemetry export is configured.
func Enabled(cfg *config.Config) bool {
	return cfg.Telemetry.Enabled && cfg.Telemetry.OtlpEndpoint != ""
}

// otlpEndpoint strips a URL scheme; the grpc exporters expect host:port.
func otlpEndpoint(raw string) string {
	raw = strings.TrimPrefix(raw, "http://")
	return strings.TrimPrefix(raw, "https://")
}

func serviceResource(cfg *config.Config) (*resource.Resource, error) {
	return resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.App.Name),
			semconv.ServiceVersion(ServiceVersion),
			semconv.DeploymentEnvironment(cfg.App.Env),
		),
	)
}

// samplerFor clamps ratio into (0, 1]; a non-positive ratio samples everything.
func samplerFor(ratio float64) sdktrace.Sampler {
	if ratio <= 0 || ratio >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// SetupTracing installs the global tracer provider and propagator. It returns
// nil when telemetry is disabled.
func SetupTracing(cfg *config.Config) (*sdktrace.TracerProvider, error) {
	// Propagation is installed even without an exporter so activity
	// messages still carry incoming trace context.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	if !Enabled(cfg) {
		return nil, nil
	}

	res, err := serviceResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exporter, err := otlptracegrpc.New(
		ctx,
		otlptracegrpc.WithEndpoint(otlpEndpoint(cfg.Telemetry.OtlpEndpoint)),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(cfg.Telemetry.SampleRatio)),
	)
	otel.SetTracerProvider(tracerProvider)

	return tracerProvider, nil
}

// Shutdown flushes and stops the tracer provider.
func Shutdown(ctx context.Context) error {
	if tracerProvider != nil {
		return tracerProvider.Shutdown(ctx)
	}
	return nil
}

// GinMiddleware traces /api/ and /ws requests only; health checks and
// unknown routes are skipped.
func GinMiddleware(serviceName string) gin.HandlerFunc {
	otelMiddleware := otelgin.Middleware(serviceName)

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") || path == "/ws" {
			otelMiddleware(c)
			return
		}
		c.Next()
	}
}

// TraceIDMiddleware echoes the trace id in the X-Trace-Id response header.
func TraceIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := TraceID(c.Request.Context()); id != "" {
			c.Header("X-Trace-Id", id)
		}
		c.Next()
	}
}

// TraceID returns the current trace id, or "" outside a sampled span.
func TraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}
