package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/campusforge/timetable-engine/pkg/config"
)

func TestNewRespectsLevel(t *testing.T) {
	cfg := &config.Config{Env: config.EnvProduction}
	cfg.Log.Level = "debug"
	cfg.Log.Format = "json"

	log, err := New(cfg)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNewFallsBackOnBadLevel(t *testing.T) {
	cfg := &config.Config{Env: config.EnvProduction}
	cfg.Log.Level = "chatty"

	log, err := New(cfg)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestWithRunAddsRunField(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	WithRun(log, "run-9").Info("placed")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "run-9", entries[0].ContextMap()["run_id"])
}

func TestWithRunNilLogger(t *testing.T) {
	log := WithRun(nil, "run-9")
	require.NotNil(t, log)
	log.Info("must not panic")
}
