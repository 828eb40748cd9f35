package observability

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

func setupMetricsTest(t *testing.T) (*sdkmetric.ManualReader, MetricsRecorder) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	})
	recorder, err := NewMetricsRecorderWithMeter(provider.Meter("goexpr"))
	require.NoError(t, err)
	return reader, recorder
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumFor(t *testing.T, m *metricdata.Metrics, key, value string) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "Expected Sum type")
	var total int64
	for _, dp := range sum.DataPoints {
		for _, attr := range dp.Attributes.ToSlice() {
			if string(attr.Key) == key && attr.Value.Emit() == value {
				total += dp.Value
			}
		}
	}
	return total
}

func TestNewMetricsRecorder(t *testing.T) {
	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)
	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop)
}

func TestRecordEvaluation(t *testing.T) {
	reader, m := setupMetricsTest(t)
	ctx := context.Background()

	t.Run("counts evaluations", func(t *testing.T) {
		m.RecordEvaluation(ctx, "add", 2*time.Millisecond, nil)
		m.RecordEvaluation(ctx, "add", 3*time.Millisecond, nil)

		metric := findMetric(collectMetrics(t, reader), "goexpr.evaluations")
		require.NotNil(t, metric)
		assert.Equal(t, int64(2), sumFor(t, metric, "kind", "add"))
	})

	t.Run("records latency", func(t *testing.T) {
		metric := findMetric(collectMetrics(t, reader), "goexpr.evaluation.latency_ms")
		require.NotNil(t, metric)
		hist, ok := metric.Data.(metricdata.Histogram[float64])
		require.True(t, ok, "Expected Histogram type")
		require.NotEmpty(t, hist.DataPoints)
	})

	t.Run("counts errors only when present", func(t *testing.T) {
		m.RecordEvaluation(ctx, "divide", time.Millisecond, errors.New("Cannot divide by 0 from divide(1, 0)"))

		metric := findMetric(collectMetrics(t, reader), "goexpr.evaluation.errors")
		require.NotNil(t, metric)
		assert.Equal(t, int64(1), sumFor(t, metric, "kind", "divide"))
		assert.Equal(t, int64(0), sumFor(t, metric, "kind", "add"))
	})
}

func TestRecordCacheLookup(t *testing.T) {
	reader, m := setupMetricsTest(t)
	ctx := context.Background()

	m.RecordCacheLookup(ctx, true)
	m.RecordCacheLookup(ctx, false)
	m.RecordCacheLookup(ctx, true)

	metric := findMetric(collectMetrics(t, reader), "goexpr.cache.lookups")
	require.NotNil(t, metric)
	assert.Equal(t, int64(2), sumFor(t, metric, "hit", "true"))
	assert.Equal(t, int64(1), sumFor(t, metric, "hit", "false"))
}

func TestNoopMetrics(t *testing.T) {
	var m MetricsRecorder = NoopMetrics{}
	assert.NotPanics(t, func() {
		m.RecordEvaluation(context.Background(), "add", time.Second, errors.New("boom"))
		m.RecordCacheLookup(context.Background(), true)
	})
}
