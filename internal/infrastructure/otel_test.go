package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"finextract/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestOTelInitialization(t *testing.T) {
	cfg := config.Default().Telemetry

	providers, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.MeterProvider)
	assert.Nil(t, providers.TracerProvider, "tracing is off by default")
	assert.NotNil(t, providers.PrometheusHTTP)
}

func TestOTelDisabled(t *testing.T) {
	cfg := config.Default().Telemetry
	cfg.EnableMetrics = false
	cfg.EnableTracing = false

	providers, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)
	assert.Nil(t, providers.PrometheusHTTP)
	assert.Nil(t, providers.MeterProvider)

	metrics, err := NewMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordExtraction(context.Background(), "cli", 1, []string{"horizontal"}, 2, time.Second, nil)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestOTelUnsupportedExporters(t *testing.T) {
	cfg := config.Default().Telemetry
	cfg.EnableTracing = true
	cfg.TraceExporter = "jaeger"
	_, err := InitializeOTel(cfg, discardLogger())
	assert.ErrorContains(t, err, "unsupported trace exporter")

	cfg = config.Default().Telemetry
	cfg.MetricExporter = "statsd"
	_, err = InitializeOTel(cfg, discardLogger())
	assert.ErrorContains(t, err, "unsupported metric exporter")
}

func TestPrometheusEndpoint(t *testing.T) {
	providers, err := InitializeOTel(config.Default().Telemetry, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := NewMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordExtraction(ctx, "http", 2, []string{"horizontal", "", "vertical"}, 5, 250*time.Millisecond, nil)
	metrics.RecordExtraction(ctx, "http", 1, nil, 0, time.Millisecond, errors.New("bad file"))

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "extractions_total")
	assert.Contains(t, body, "extraction_failures_total")
	assert.Contains(t, body, "extraction_sheets_total")
	assert.Contains(t, body, `strategy="none"`)
	assert.Contains(t, body, "extraction_duration_seconds")
	assert.Contains(t, body, "go_goroutines")
}

func TestNewMetricsNilMeter(t *testing.T) {
	metrics, err := NewMetrics(nil)
	require.NoError(t, err)
	require.NotNil(t, metrics)
	metrics.RecordExtraction(context.Background(), "cli", 0, nil, 0, 0, nil)

	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.RecordExtraction(context.Background(), "cli", 0, nil, 0, 0, nil)
	})
}

func TestTraceIDFromContext(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
	assert.NotPanics(t, func() {
		RecordError(context.Background(), errors.New("boom"))
	})

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "work")
	assert.Equal(t, span.SpanContext().TraceID().String(), TraceIDFromContext(ctx))
	RecordError(ctx, errors.New("boom"))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "boom", spans[0].Status.Description)
}
