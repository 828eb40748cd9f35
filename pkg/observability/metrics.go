package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records evaluation metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordEvaluation records one evaluation of an expression whose root
	// operator is kind.
	RecordEvaluation(ctx context.Context, kind string, duration time.Duration, err error)

	// RecordCacheLookup records a parsed expression cache lookup.
	RecordCacheLookup(ctx context.Context, hit bool)
}

type otelMetrics struct {
	evaluations  metric.Int64Counter
	errors       metric.Int64Counter
	latency      metric.Float64Histogram
	cacheLookups metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	return newMeterMetrics(otel.Meter("goexpr"))
}

func newMeterMetrics(meter metric.Meter) (*otelMetrics, error) {
	evaluations, err := meter.Int64Counter("goexpr.evaluations",
		metric.WithDescription("Number of expression evaluations"),
	)
	if err != nil {
		return nil, err
	}

	errs, err := meter.Int64Counter("goexpr.evaluation.errors",
		metric.WithDescription("Number of evaluations that returned an error"),
	)
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram("goexpr.evaluation.latency_ms",
		metric.WithDescription("Evaluation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheLookups, err := meter.Int64Counter("goexpr.cache.lookups",
		metric.WithDescription("Parsed expression cache lookups"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		evaluations:  evaluations,
		errors:       errs,
		latency:      latency,
		cacheLookups: cacheLookups,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder backed by the global OTel
// meter provider. If the instruments cannot be created it falls back to a
// no-op recorder.
//
//	otel.SetMeterProvider(yourProvider)
//	ev := evaluator.New(evaluator.WithMetrics(true))
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// NewMetricsRecorderWithMeter returns a MetricsRecorder bound to an
// explicit meter.
func NewMetricsRecorderWithMeter(meter metric.Meter) (MetricsRecorder, error) {
	m, err := newMeterMetrics(meter)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *otelMetrics) RecordEvaluation(ctx context.Context, kind string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("kind", kind))
	m.evaluations.Add(ctx, 1, attrs)
	m.latency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if err != nil {
		m.errors.Add(ctx, 1, attrs)
	}
}

func (m *otelMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.Bool("hit", hit)))
}
