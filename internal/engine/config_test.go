package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/campusforge/timetable-engine/pkg/errors"
)

func TestConfigNormalizeFillsDefaults(t *testing.T) {
	cfg := Config{}.Normalize()

	assert.Equal(t, 0.7, cfg.GreedySuccessThreshold)
	assert.Equal(t, 3, cfg.MaxLabsPerDay)
	assert.Equal(t, 40, cfg.OverworkThresholdHours)
	assert.Equal(t, OddLabSplit, cfg.OddLabPolicy)
	assert.Equal(t, time.Minute, cfg.SolverBudget)
	assert.Equal(t, 0.5, cfg.CategoryExitThreshold)
}

func TestConfigNormalizeKeepsExplicitValues(t *testing.T) {
	cfg := Config{
		GreedySuccessThreshold: 0.9,
		MaxLabsPerDay:          2,
		OddLabPolicy:           OddLabDrop,
		SolverBudget:           5 * time.Second,
	}.Normalize()

	assert.Equal(t, 0.9, cfg.GreedySuccessThreshold)
	assert.Equal(t, 2, cfg.MaxLabsPerDay)
	assert.Equal(t, OddLabDrop, cfg.OddLabPolicy)
	assert.Equal(t, 5*time.Second, cfg.SolverBudget)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.GreedySuccessThreshold = 1.5
	err := bad.Validate()
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConfig))

	bad = DefaultConfig()
	bad.MaxLabsPerDay = 0
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.OddLabPolicy = "halve"
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.SolverBudget = 0
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.CategoryExitThreshold = -0.1
	assert.Error(t, bad.Validate())
}
