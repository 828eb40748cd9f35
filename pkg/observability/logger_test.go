package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestEnrichLogger(t *testing.T) {
	assert.Nil(t, EnrichLogger(nil, "x"))

	var buf bytes.Buffer
	EnrichLogger(newTestLogger(&buf), "add(1, 2)").Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "add(1, 2)", entry["expression"])
}

func TestLogEvaluation(t *testing.T) {
	tests := []struct {
		name  string
		log   func(*slog.Logger)
		level string
		msg   string
	}{
		{
			name:  "complete",
			log:   func(l *slog.Logger) { LogEvaluationComplete(l, "x", 1.5) },
			level: "DEBUG",
			msg:   "expression evaluated",
		},
		{
			name:  "error",
			log:   func(l *slog.Logger) { LogEvaluationError(l, "x", errors.New("boom"), 1.5) },
			level: "WARN",
			msg:   "expression evaluation failed",
		},
		{
			name:  "parse error",
			log:   func(l *slog.Logger) { LogParseError(l, "1 +", errors.New("boom")) },
			level: "DEBUG",
			msg:   "expression parse failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(newTestLogger(&buf))

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, tt.msg, entry["msg"])
		})
	}
}

func TestLogHelpersNilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		LogEvaluationComplete(nil, "x", 1)
		LogEvaluationError(nil, "x", errors.New("boom"), 1)
		LogParseError(nil, "x", errors.New("boom"))
	})
}

func TestTimedOperation(t *testing.T) {
	done := TimedOperation()
	assert.GreaterOrEqual(t, done(), 0.0)
}
