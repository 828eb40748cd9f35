// Package observability provides logging, metrics and tracing hooks for
// expression evaluation.
//
//   - Structured logging via slog
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// Everything is opt-in; the no-op implementations cost nothing.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger returns logger annotated with the expression being evaluated.
func EnrichLogger(logger *slog.Logger, expression string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("expression", expression))
}

// LogEvaluationComplete logs a successful evaluation at debug level.
func LogEvaluationComplete(logger *slog.Logger, expression string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("expression evaluated",
		slog.String("expression", expression),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogEvaluationError logs a failed evaluation. Evaluation errors are data
// dependent, so they are warnings rather than errors.
func LogEvaluationError(logger *slog.Logger, expression string, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Warn("expression evaluation failed",
		slog.String("expression", expression),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogParseError logs text that failed to parse.
func LogParseError(logger *slog.Logger, text string, err error) {
	if logger == nil {
		return
	}
	logger.Debug("expression parse failed",
		slog.String("text", text),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// The returned function reports the elapsed time in milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
