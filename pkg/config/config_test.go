package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, "info", cfg.Log.Level)

	assert.False(t, cfg.Scheduler.UltraFast)
	assert.InDelta(t, 0.7, cfg.Scheduler.GreedySuccessThreshold, 0.0001)
	assert.Equal(t, 3, cfg.Scheduler.MaxLabsPerDay)
	assert.Equal(t, 40, cfg.Scheduler.OverworkThresholdHours)
	assert.Equal(t, "split", cfg.Scheduler.OddLabPolicy)
	assert.Equal(t, time.Minute, cfg.Scheduler.SolverBudget)
	assert.Equal(t, 5*time.Minute, cfg.Scheduler.RunTimeout)

	assert.Equal(t, []string{"csv", "pdf"}, cfg.Export.Formats)
	assert.Equal(t, 24*time.Hour, cfg.Export.SignedURLTTL)
	assert.Equal(t, time.Hour, cfg.Queue.ResultTTL)
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("SCHEDULER_ULTRA_FAST", "true")
	t.Setenv("SCHEDULER_SOLVER_BUDGET", "90s")
	t.Setenv("SCHEDULER_ODD_LAB_POLICY", "drop")
	t.Setenv("EXPORT_FORMATS", " csv , pdf ,")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("QUEUE_WORKER_CONCURRENCY", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Scheduler.UltraFast)
	assert.Equal(t, 90*time.Second, cfg.Scheduler.SolverBudget)
	assert.Equal(t, "drop", cfg.Scheduler.OddLabPolicy)
	assert.Equal(t, []string{"csv", "pdf"}, cfg.Export.Formats)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 4, cfg.Queue.WorkerConcurrency)
}

func TestParseDurationFallsBack(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("not-a-duration", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("", 2*time.Second))
	assert.Equal(t, 90*time.Second, parseDuration("1m30s", time.Minute))
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"csv"}, splitAndTrim("csv"))
	assert.Equal(t, []string{"csv", "pdf"}, splitAndTrim(" csv ,, pdf "))
}
