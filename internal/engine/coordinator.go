package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusforge/timetable-engine/internal/models"
	appErrors "github.com/campusforge/timetable-engine/pkg/errors"
	"github.com/campusforge/timetable-engine/pkg/logger"
)

// Coordinator owns the run lifecycle. It walks one snapshot through
// eligibility resolution, session planning, greedy placement, the optional
// solver phase and validation, then assembles the result. A Coordinator is
// safe for concurrent runs: all per-run state lives on the stack.
type Coordinator struct {
	cfg      Config
	logger   *zap.Logger
	metrics  *Metrics
	validate *validator.Validate
}

func NewCoordinator(cfg Config, log *zap.Logger, metrics *Metrics) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		cfg:      cfg,
		logger:   log,
		metrics:  metrics,
		validate: validator.New(),
	}
}

// Run executes one generation run over the snapshot. Cancellation via ctx
// yields a partial result marked truncated, not an error; only malformed
// input or a broken scheduling invariant aborts the run.
func (c *Coordinator) Run(ctx context.Context, snap *models.Snapshot) (*models.RunResult, error) {
	runID := uuid.NewString()
	log := logger.WithRun(c.logger, runID)
	started := time.Now()

	c.metrics.RunStarted()

	cfg := c.cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, c.abort(log, err)
	}
	if err := c.checkSnapshot(snap); err != nil {
		return nil, c.abort(log, err)
	}

	result := &models.RunResult{
		RunID:     runID,
		State:     models.RunStateIdle,
		Method:    models.PlacementMethodGreedy,
		CreatedAt: started,
	}

	ix := buildSnapshotIndex(snap)
	warnings := availabilityWarnings(ix)

	log.Info("run started",
		zap.Int("courses", len(snap.Courses)),
		zap.Int("faculty", len(snap.Faculty)),
		zap.Int("rooms", len(snap.Rooms)),
		zap.Int("groups", len(snap.Groups)),
		zap.Int("time_slots", len(snap.TimeSlots)))

	phaseStart := time.Now()
	eligible, eligibilityWarnings := NewEligibilityResolver(log).Resolve(snap.Courses, snap.Groups)
	result.Timings.Eligibility = time.Since(phaseStart)
	result.State = models.RunStateEligibilityResolved
	warnings = append(warnings, eligibilityWarnings...)
	c.metrics.ObservePhase("eligibility", result.Timings.Eligibility)

	phaseStart = time.Now()
	sessions, planWarnings := NewSessionPlanner(cfg.OddLabPolicy, log).Plan(snap.Courses, eligible)
	result.Timings.Planning = time.Since(phaseStart)
	result.State = models.RunStateSessionsPlanned
	result.TotalCount = len(sessions)
	warnings = append(warnings, planWarnings...)
	c.metrics.ObservePhase("planning", result.Timings.Planning)

	warnings = append(warnings, analyzeCapacity(ix, sessions)...)

	tracker := newConstraintTracker(ix, cfg.MaxLabsPerDay)

	phaseStart = time.Now()
	greedy := newGreedyPlacer(ix, tracker, cfg, log).Place(ctx, runID, sessions)
	result.Timings.Greedy = time.Since(phaseStart)
	result.State = models.RunStateGreedyComplete
	c.metrics.ObservePhase("greedy", result.Timings.Greedy)

	entries := greedy.entries
	placed := greedy.placed
	truncated := greedy.interrupted

	log.Info("greedy phase complete",
		zap.Int("placed", placed),
		zap.Int("total", result.TotalCount),
		zap.Duration("duration", result.Timings.Greedy))

	ilpPlaced := 0
	if !truncated {
		residual := residualSessions(sessions)
		if len(residual) > 0 && c.shouldSolve(cfg, placed, result.TotalCount) {
			solver := newILPSolver(ix, tracker, cfg, log)
			phaseStart = time.Now()
			solved, err := solver.Solve(ctx, runID, residual)
			result.Timings.ILP = time.Since(phaseStart)
			c.metrics.ObservePhase("ilp", result.Timings.ILP)
			if err != nil {
				return nil, c.abort(log, err)
			}
			result.State = models.RunStateILPComplete
			entries = append(entries, solved.entries...)
			ilpPlaced = solved.placed
			placed += solved.placed

			log.Info("solver phase complete",
				zap.Int("placed", solved.placed),
				zap.Int("residual", len(residual)),
				zap.Duration("duration", result.Timings.ILP))

			if solved.budgetExhausted {
				warnings = append(warnings, models.Warning{
					Code:    models.WarningSolverBudgetExhausted,
					Message: "solver stopped at its time budget; best assignment found so far was kept",
				})
			}
			if ctx.Err() != nil {
				truncated = true
			}
		}
	}

	switch {
	case ilpPlaced > 0 && greedy.placed > 0:
		result.Method = models.PlacementMethodHybrid
	case ilpPlaced > 0:
		result.Method = models.PlacementMethodILP
	}

	phaseStart = time.Now()
	validationWarnings, err := newValidator(ix, cfg, log).Validate(entries)
	result.Timings.Validation = time.Since(phaseStart)
	c.metrics.ObservePhase("validation", result.Timings.Validation)
	if err != nil {
		return nil, c.abort(log, err)
	}
	result.State = models.RunStateValidated
	warnings = append(warnings, validationWarnings...)

	if truncated {
		warnings = append(warnings, models.Warning{
			Code:    models.WarningRunTruncated,
			Message: "run was cancelled before all sessions were attempted; result is partial",
		})
	}

	if !cfg.SkipFacultySchedules {
		result.FacultySchedules = buildFacultySchedules(ix, entries, cfg.OverworkThresholdHours)
	}

	result.Entries = entries
	result.PlacedCount = placed
	result.Unplaced = unplacedSessions(sessions)
	result.Warnings = warnings
	result.Truncated = truncated
	result.Success = placed == result.TotalCount && !truncated
	result.State = models.RunStateDone
	result.Timings.Total = time.Since(started)

	c.metrics.ObserveRun(result)

	log.Info("run complete",
		zap.String("method", string(result.Method)),
		zap.Int("placed", result.PlacedCount),
		zap.Int("total", result.TotalCount),
		zap.Int("unplaced", len(result.Unplaced)),
		zap.Int("warnings", len(result.Warnings)),
		zap.Bool("success", result.Success),
		zap.Bool("truncated", result.Truncated),
		zap.Duration("duration", result.Timings.Total))

	return result, nil
}

// abort records the failed run and hands the error back unchanged.
func (c *Coordinator) abort(log *zap.Logger, err error) error {
	log.Error("run aborted", zap.Error(err))
	c.metrics.ObserveRun(nil)
	return err
}

// checkSnapshot rejects inputs a run cannot start from: a missing snapshot,
// an empty slot grid or room set, or records that fail field validation.
func (c *Coordinator) checkSnapshot(snap *models.Snapshot) error {
	if snap == nil {
		return appErrors.Clone(appErrors.ErrConfig, "snapshot is required")
	}
	if len(snap.TimeSlots) == 0 {
		return appErrors.Clone(appErrors.ErrConfig, "snapshot has no time slots")
	}
	if len(snap.Rooms) == 0 {
		return appErrors.Clone(appErrors.ErrConfig, "snapshot has no rooms")
	}
	if err := c.validate.Struct(snap); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, "snapshot failed validation")
	}
	return nil
}

// shouldSolve decides whether the residual goes to the solver. In ultra-fast
// mode a greedy result at or above the success threshold short-circuits it.
func (c *Coordinator) shouldSolve(cfg Config, placed, total int) bool {
	if !cfg.UltraFast {
		return true
	}
	if total == 0 {
		return false
	}
	return float64(placed)/float64(total) < cfg.GreedySuccessThreshold
}

// availabilityWarnings flags faculty whose resolved availability is empty;
// such members can never receive an assignment.
func availabilityWarnings(ix *snapshotIndex) []models.Warning {
	var warnings []models.Warning
	for _, id := range ix.facultyOrder {
		if len(ix.facultyFree[id]) == 0 {
			warnings = append(warnings, models.Warning{
				Code:      models.WarningFacultyNoAvailability,
				Message:   fmt.Sprintf("faculty %s has no available slots and cannot be scheduled", id),
				FacultyID: id,
			})
		}
	}
	return warnings
}

// residualSessions returns the sessions the greedy pass left unseated,
// including any it skipped without attempting.
func residualSessions(sessions []*models.Session) []*models.Session {
	var residual []*models.Session
	for _, session := range sessions {
		if session.Status != models.SessionStatusPlaced {
			residual = append(residual, session)
		}
	}
	return residual
}

// unplacedSessions converts every non-placed session into its reportable
// form. Sessions never attempted carry an empty reason.
func unplacedSessions(sessions []*models.Session) []models.UnplacedSession {
	var unplaced []models.UnplacedSession
	for _, session := range sessions {
		if session.Status == models.SessionStatusPlaced {
			continue
		}
		session.Status = models.SessionStatusUnplaced
		unplaced = append(unplaced, models.UnplacedSession{
			SessionID: session.ID,
			CourseID:  session.CourseID,
			GroupID:   session.GroupID,
			Duration:  session.Duration,
			Reason:    session.Reason,
		})
	}
	return unplaced
}
