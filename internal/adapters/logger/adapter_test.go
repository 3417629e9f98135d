package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedAdapter(t *testing.T) (*ZapAdapter, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return NewZapAdapter(zap.New(core)), logs
}

func TestZapAdapter_LevelsAndFields(t *testing.T) {
	adapter, logs := newObservedAdapter(t)
	ctx := context.Background()

	adapter.Info(ctx, "info message", map[string]any{"repository": "proj-a"})
	adapter.Debug(ctx, "debug message", nil)
	adapter.Warn(ctx, "warn message", map[string]any{"count": 3})

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "info message", entries[0].Message)
	assert.Equal(t, "proj-a", entries[0].ContextMap()["repository"])

	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.EqualValues(t, 3, entries[2].ContextMap()["count"])
}

func TestZapAdapter_ErrorIncludesError(t *testing.T) {
	adapter, logs := newObservedAdapter(t)

	adapter.Error(context.Background(), "boom", errors.New("disk on fire"), map[string]any{"path": "/x"})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "disk on fire", entries[0].ContextMap()["error"])
	assert.Equal(t, "/x", entries[0].ContextMap()["path"])
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	adapter := New("not-a-level")

	require.NotNil(t, adapter)
	assert.False(t, adapter.log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, adapter.log.Core().Enabled(zapcore.InfoLevel))
}

func TestNew_DebugLevel(t *testing.T) {
	adapter := New("debug")

	require.NotNil(t, adapter)
	assert.True(t, adapter.log.Core().Enabled(zapcore.DebugLevel))
}
