package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_WritesLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapLogger(zap.New(core))
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf")
	log.Warn(ctx, "wrn")
	log.With("request_id", "r-1").Error(ctx, "err", "status", 500)

	entries := logs.All()
	require.Len(t, entries, 4)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, int64(1), entries[0].ContextMap()["a"])
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)

	last := entries[3]
	assert.Equal(t, "err", last.Message)
	assert.Equal(t, zapcore.ErrorLevel, last.Level)
	assert.Equal(t, "r-1", last.ContextMap()["request_id"])
	assert.Equal(t, int64(500), last.ContextMap()["status"])
}

func TestNewServerLogger_WritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")

	log, closer := NewServerLogger("debug", FileOptions{Path: path, MaxSizeMB: 1, MaxBackups: 2})
	log.Debug(context.Background(), "document saved", "version", "20260101")
	require.NoError(t, log.Sync())
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"document saved"`)
	assert.Contains(t, string(b), `"version":"20260101"`)
}

func TestNewServerLogger_BadLevelFallsBackToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")

	log, closer := NewServerLogger("loud", FileOptions{Path: path})
	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "shown")
	require.NoError(t, log.Sync())
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "hidden")
	assert.Contains(t, string(b), "shown")
}
