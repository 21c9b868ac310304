package logger

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/whisperd/internal/env"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNew_LevelVarAdjustsLive(t *testing.T) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)

	log := New(env.Development, WithLevel(levelVar), WithNoColor(true))
	assert.False(t, log.Enabled(context.Background(), slog.LevelDebug))

	levelVar.Set(slog.LevelDebug)
	assert.True(t, log.Enabled(context.Background(), slog.LevelDebug))
}

func TestNew_ConsoleFormatOverride(t *testing.T) {
	log := New(env.Development, WithConsoleFormat("json"))
	_, ok := log.Handler().(*slog.JSONHandler)
	assert.True(t, ok)

	log = New(env.Production, WithConsoleFormat("text"))
	_, ok = log.Handler().(*slog.JSONHandler)
	assert.False(t, ok)
}

func TestNewNop_DiscardsEverything(t *testing.T) {
	log := NewNop()
	assert.False(t, log.Enabled(context.Background(), slog.LevelInfo))
}

func TestNew_RotatingFileSink(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "whisperd.log")

	log := New(env.Production,
		WithLogToFile(true),
		WithLogFile(logFile),
		WithRotation(10, 1, 1),
	)
	log.Info("sink check", "component", "logger")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"sink check"`)
	assert.Contains(t, string(data), `"component":"logger"`)
}
