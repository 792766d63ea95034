package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_LevelParsing(t *testing.T) {
	tests := []struct {
		level      string
		enabled    zapcore.Level
		blocked    zapcore.Level
		hasBlocked bool
	}{
		{level: "debug", enabled: zapcore.DebugLevel},
		{level: "warn", enabled: zapcore.WarnLevel, blocked: zapcore.InfoLevel, hasBlocked: true},
		{level: "error", enabled: zapcore.ErrorLevel, blocked: zapcore.WarnLevel, hasBlocked: true},
		{level: "bogus", enabled: zapcore.InfoLevel, blocked: zapcore.DebugLevel, hasBlocked: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := New(tt.level, "json")
			require.NotNil(t, l)
			assert.True(t, l.Core().Enabled(tt.enabled))
			if tt.hasBlocked {
				assert.False(t, l.Core().Enabled(tt.blocked))
			}
		})
	}
}

func TestZapWrapper_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	log.With(map[string]interface{}{"component": "transport"}).
		Warn("retrying request", map[string]interface{}{
			"attempt": 1,
			"cause":   errors.New("connection reset"),
		})

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "transport", ctx["component"])
	assert.EqualValues(t, 1, ctx["attempt"])
	assert.Equal(t, "connection reset", ctx["cause"])
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestZapWrapper_WithError(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZapAdapter(zap.New(core)).WithError(errors.New("boom"))

	log.Error("stage failed", nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "boom", logs.All()[0].ContextMap()["error"])
}

func TestNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	assert.NotPanics(t, func() {
		log.Debug("x", nil)
		log.WithFields(map[string]interface{}{"a": 1}).Info("y", nil)
	})
}
