package observability

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
)

const (
	ServiceNamespace   = "osteobridge"
	DefaultServiceName = "osteobridge-api"
	DefaultSampleRatio = 0.1
)

// TracingConfig is filled from OTEL_* variables by the app config loader.
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Environment string
	Version     string
	Endpoint    string
	// Headers holds raw "key=value" pairs from OTEL_EXPORTER_OTLP_HEADERS.
	Headers     []string
	Insecure    bool
	SampleRatio float64
}

func (c TracingConfig) serviceName() string {
	if name := strings.TrimSpace(c.ServiceName); name != "" {
		return name
	}
	return DefaultServiceName
}

// Sampler clamps SampleRatio into [0,1]. NaN falls back to the default.
func (c TracingConfig) Sampler() sdktrace.Sampler {
	ratio := c.SampleRatio
	switch {
	case math.IsNaN(ratio):
		ratio = DefaultSampleRatio
	case ratio < 0:
		ratio = 0
	case ratio > 1:
		ratio = 1
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// ResourceAttributes tags every span with the portal namespace so import and
// HTTP spans group together regardless of the deployed service name.
func (c TracingConfig) ResourceAttributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ServiceNameKey.String(c.serviceName()),
		semconv.ServiceNamespaceKey.String(ServiceNamespace),
	}
	if env := strings.TrimSpace(c.Environment); env != "" {
		attrs = append(attrs, attribute.String("deployment.environment", env))
	}
	if v := strings.TrimSpace(c.Version); v != "" {
		attrs = append(attrs, semconv.ServiceVersionKey.String(v))
	}
	return attrs
}

// ParseHeaders drops malformed or blank pairs and returns nil when nothing
// usable remains.
func ParseHeaders(pairs []string) map[string]string {
	headers := map[string]string{}
	for _, part := range pairs {
		key, val, ok := strings.Cut(part, "=")
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		if !ok || key == "" || val == "" {
			continue
		}
		headers[key] = val
	}
	if len(headers) == 0 {
		return nil
	}
	return headers
}

var (
	tracingOnce     sync.Once
	tracingShutdown = func(context.Context) error { return nil }
)

// InitTracing installs the global tracer provider once per process. The
// returned func flushes pending spans; it is a no-op when tracing is off.
func InitTracing(ctx context.Context, log *logger.Logger, cfg TracingConfig) func(context.Context) error {
	tracingOnce.Do(func() {
		if !cfg.Enabled {
			return
		}
		res, err := resource.New(ctx, resource.WithAttributes(cfg.ResourceAttributes()...))
		if err != nil && log != nil {
			log.Warn("Tracing resource init failed (continuing)", "error", err)
		}

		opts := []sdktrace.TracerProviderOption{
			sdktrace.WithSampler(cfg.Sampler()),
			sdktrace.WithResource(res),
		}
		exporter, err := newSpanExporter(ctx, log, cfg)
		if err != nil && log != nil {
			log.Warn("Tracing exporter init failed (continuing)", "error", err)
		}
		if exporter != nil {
			opts = append(opts, sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)))
		}

		tp := sdktrace.NewTracerProvider(opts...)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		tracingShutdown = tp.Shutdown
		if log != nil {
			log.Info("Tracing initialized", "service", cfg.serviceName(), "endpoint", cfg.Endpoint)
		}
	})
	return tracingShutdown
}

// newSpanExporter ships to OTLP/HTTP when an endpoint is set and pretty-prints
// to stdout otherwise.
func newSpanExporter(ctx context.Context, log *logger.Logger, cfg TracingConfig) (sdktrace.SpanExporter, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		if log != nil {
			log.Warn("Tracing to stdout (no OTLP endpoint configured)")
		}
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if headers := ParseHeaders(cfg.Headers); headers != nil {
		opts = append(opts, otlptracehttp.WithHeaders(headers))
	}
	return otlptracehttp.New(ctx, opts...)
}
