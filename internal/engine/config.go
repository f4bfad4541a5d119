package engine

import (
	"fmt"
	"time"

	appErrors "github.com/campusforge/timetable-engine/pkg/errors"
)

// OddLabPolicy decides what happens to the leftover hour when a practical
// course has an odd hours_per_week.
type OddLabPolicy string

const (
	// OddLabSplit schedules the leftover hour as a separate single-period
	// session.
	OddLabSplit OddLabPolicy = "split"
	// OddLabDrop discards the leftover hour and records a warning.
	OddLabDrop OddLabPolicy = "drop"
)

// Config carries the tuning knobs for one generation run.
type Config struct {
	// UltraFast skips the ILP phase entirely when the greedy ratio meets
	// the success threshold.
	UltraFast bool
	// SkipFacultySchedules disables the per-faculty reporting artifact.
	SkipFacultySchedules bool
	// SkipOverworkCheck disables the faculty max-hours post check.
	SkipOverworkCheck bool
	// GreedySuccessThreshold is the placement ratio below which the ILP
	// phase receives the whole residual.
	GreedySuccessThreshold float64
	// MaxLabsPerDay caps lab sessions per group per day, enforced as hard
	// once reached.
	MaxLabsPerDay int
	// OverworkThresholdHours flags faculty schedules above this weekly load.
	OverworkThresholdHours int
	// OddLabPolicy selects the leftover-hour behaviour for odd lab loads.
	OddLabPolicy OddLabPolicy
	// SolverBudget bounds ILP wall-clock time; the best incumbent is
	// returned when it expires.
	SolverBudget time.Duration
	// CategoryEarlyExit stops greedily placing a category once its running
	// ratio drops below CategoryExitThreshold, routing the remainder to ILP.
	CategoryEarlyExit bool
	// CategoryExitThreshold is the per-category running ratio that triggers
	// the early exit. Only consulted when CategoryEarlyExit is set.
	CategoryExitThreshold float64
}

// DefaultConfig returns the documented defaults for a run.
func DefaultConfig() Config {
	return Config{
		GreedySuccessThreshold: 0.7,
		MaxLabsPerDay:          3,
		OverworkThresholdHours: 40,
		OddLabPolicy:           OddLabSplit,
		SolverBudget:           time.Minute,
		CategoryExitThreshold:  0.5,
	}
}

// Normalize fills zero values with defaults.
func (c Config) Normalize() Config {
	def := DefaultConfig()
	if c.GreedySuccessThreshold == 0 {
		c.GreedySuccessThreshold = def.GreedySuccessThreshold
	}
	if c.MaxLabsPerDay == 0 {
		c.MaxLabsPerDay = def.MaxLabsPerDay
	}
	if c.OverworkThresholdHours == 0 {
		c.OverworkThresholdHours = def.OverworkThresholdHours
	}
	if c.OddLabPolicy == "" {
		c.OddLabPolicy = def.OddLabPolicy
	}
	if c.SolverBudget == 0 {
		c.SolverBudget = def.SolverBudget
	}
	if c.CategoryExitThreshold == 0 {
		c.CategoryExitThreshold = def.CategoryExitThreshold
	}
	return c
}

// Validate rejects configurations a run cannot start from.
func (c Config) Validate() error {
	if c.GreedySuccessThreshold < 0 || c.GreedySuccessThreshold > 1 {
		return appErrors.Clone(appErrors.ErrConfig, fmt.Sprintf("greedy success threshold %.2f must be within [0,1]", c.GreedySuccessThreshold))
	}
	if c.MaxLabsPerDay < 1 {
		return appErrors.Clone(appErrors.ErrConfig, fmt.Sprintf("max labs per day %d must be at least 1", c.MaxLabsPerDay))
	}
	if c.OverworkThresholdHours < 1 {
		return appErrors.Clone(appErrors.ErrConfig, fmt.Sprintf("overwork threshold %d must be at least 1", c.OverworkThresholdHours))
	}
	if c.OddLabPolicy != OddLabSplit && c.OddLabPolicy != OddLabDrop {
		return appErrors.Clone(appErrors.ErrConfig, fmt.Sprintf("odd lab policy %q must be split or drop", c.OddLabPolicy))
	}
	if c.SolverBudget <= 0 {
		return appErrors.Clone(appErrors.ErrConfig, "solver budget must be positive")
	}
	if c.CategoryExitThreshold < 0 || c.CategoryExitThreshold > 1 {
		return appErrors.Clone(appErrors.ErrConfig, fmt.Sprintf("category exit threshold %.2f must be within [0,1]", c.CategoryExitThreshold))
	}
	return nil
}
