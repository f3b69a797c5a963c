package observability

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
)

func attrMap(kvs []attribute.KeyValue) map[attribute.Key]string {
	out := make(map[attribute.Key]string, len(kvs))
	for _, kv := range kvs {
		out[kv.Key] = kv.Value.AsString()
	}
	return out
}

func TestResourceAttributesCarryNamespace(t *testing.T) {
	got := attrMap(TracingConfig{Environment: "production", Version: "1.4.0"}.ResourceAttributes())
	assert.Equal(t, DefaultServiceName, got[semconv.ServiceNameKey])
	assert.Equal(t, ServiceNamespace, got[semconv.ServiceNamespaceKey])
	assert.Equal(t, "production", got["deployment.environment"])
	assert.Equal(t, "1.4.0", got[semconv.ServiceVersionKey])

	bare := attrMap(TracingConfig{ServiceName: "importer"}.ResourceAttributes())
	assert.Equal(t, "importer", bare[semconv.ServiceNameKey])
	assert.NotContains(t, bare, attribute.Key("deployment.environment"))
	assert.NotContains(t, bare, semconv.ServiceVersionKey)
}

func TestParseHeaders(t *testing.T) {
	assert.Equal(t, map[string]string{"api-key": "abc", "x-team": "bio=1"},
		ParseHeaders([]string{" api-key = abc ", "broken", "=novalue", "x-team=bio=1", "empty="}))
	assert.Nil(t, ParseHeaders(nil))
	assert.Nil(t, ParseHeaders([]string{"nope"}))
}

func TestSamplerClampsRatio(t *testing.T) {
	cases := []struct {
		ratio float64
		want  string
	}{
		{-1, "TraceIDRatioBased{0}"},
		{2, "AlwaysOnSampler"},
		{0.25, "TraceIDRatioBased{0.25}"},
		{math.NaN(), "TraceIDRatioBased{0.1}"},
	}
	for _, tc := range cases {
		assert.Contains(t, TracingConfig{SampleRatio: tc.ratio}.Sampler().Description(), tc.want)
	}
}

func TestInitTracingDisabledIsNoop(t *testing.T) {
	shutdown := InitTracing(context.Background(), nil, TracingConfig{})
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewSpanExporterFallsBackToStdout(t *testing.T) {
	exp, err := newSpanExporter(context.Background(), nil, TracingConfig{})
	require.NoError(t, err)
	require.NotNil(t, exp)
	assert.NoError(t, exp.Shutdown(context.Background()))
}
