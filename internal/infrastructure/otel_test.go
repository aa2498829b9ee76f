package infrastructure

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (context.Context, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	metrics, err := CreateBusinessMetrics(meter)
	require.NoError(t, err)
	return ContextWithBusinessMetrics(context.Background(), metrics), reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func counterValue(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestBusinessMetricsFromContext(t *testing.T) {
	assert.Nil(t, BusinessMetricsFromContext(context.Background()))

	ctx, _ := newTestMetrics(t)
	assert.NotNil(t, BusinessMetricsFromContext(ctx))
}

func TestRecordUpload(t *testing.T) {
	ctx, reader := newTestMetrics(t)

	RecordUpload(ctx, "csv", 1024, 40, 25*time.Millisecond, nil)
	RecordUpload(ctx, "xlsx", 2048, 0, 5*time.Millisecond, errors.New("corrupt workbook"))

	got := collectMetrics(t, reader)
	assert.EqualValues(t, 2, counterValue(t, got["uploads_total"]))
	assert.EqualValues(t, 3072, counterValue(t, got["upload_bytes_received_total"]))
	assert.EqualValues(t, 40, counterValue(t, got["rows_parsed_total"]))
	assert.EqualValues(t, 1, counterValue(t, got["parse_errors_total"]))
}

func TestRecordAnalysis(t *testing.T) {
	ctx, reader := newTestMetrics(t)

	RecordAnalysis(ctx, "yandex", time.Second, nil)
	RecordAnalysis(ctx, "gigachat", time.Second, errors.New("status 502"))

	got := collectMetrics(t, reader)
	assert.EqualValues(t, 2, counterValue(t, got["analysis_requests_total"]))
	assert.EqualValues(t, 1, counterValue(t, got["analysis_errors_total"]))
}

func TestRecordReport(t *testing.T) {
	ctx, reader := newTestMetrics(t)

	RecordReport(ctx, 2, 80*time.Millisecond)

	got := collectMetrics(t, reader)
	assert.EqualValues(t, 1, counterValue(t, got["reports_generated_total"]))
	assert.EqualValues(t, 2, counterValue(t, got["charts_rendered_total"]))
}

func TestRecordWithoutMetricsInContext(t *testing.T) {
	// recording without instruments in the context is a no-op
	RecordUpload(context.Background(), "csv", 1, 1, time.Millisecond, nil)
	RecordAnalysis(context.Background(), "yandex", time.Millisecond, nil)
	RecordReport(context.Background(), 1, time.Millisecond)
}
