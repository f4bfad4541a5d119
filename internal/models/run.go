package models

import "time"

// RunState tracks a generation run through its pipeline stages.
type RunState string

const (
	RunStateIdle                RunState = "IDLE"
	RunStateEligibilityResolved RunState = "ELIGIBILITY_RESOLVED"
	RunStateSessionsPlanned     RunState = "SESSIONS_PLANNED"
	RunStateGreedyComplete      RunState = "GREEDY_COMPLETE"
	RunStateILPComplete         RunState = "ILP_COMPLETE"
	RunStateValidated           RunState = "VALIDATED"
	RunStateDone                RunState = "DONE"
	RunStateAborted             RunState = "ABORTED"
)

// PlacementMethod records which phases produced the final assignment.
type PlacementMethod string

const (
	PlacementMethodGreedy PlacementMethod = "greedy"
	PlacementMethodILP    PlacementMethod = "ilp"
	PlacementMethodHybrid PlacementMethod = "hybrid"
)

// RunTimings captures per-phase wall-clock durations for one run.
type RunTimings struct {
	Eligibility time.Duration `json:"eligibility"`
	Planning    time.Duration `json:"planning"`
	Greedy      time.Duration `json:"greedy"`
	ILP         time.Duration `json:"ilp"`
	Validation  time.Duration `json:"validation"`
	Total       time.Duration `json:"total"`
}

// UnplacedSession describes a session neither phase could seat.
type UnplacedSession struct {
	SessionID int            `json:"session_id"`
	CourseID  string         `json:"course_id"`
	GroupID   string         `json:"group_id"`
	Duration  int            `json:"duration"`
	Reason    UnplacedReason `json:"reason,omitempty"`
}

// RunResult is the complete outcome of one generation run. Entries are the
// sole schedulable output; everything else is diagnostic.
type RunResult struct {
	RunID            string            `json:"run_id"`
	State            RunState          `json:"state"`
	Success          bool              `json:"success"`
	Method           PlacementMethod   `json:"method"`
	PlacedCount      int               `json:"placed_count"`
	TotalCount       int               `json:"total_count"`
	Entries          []TimetableEntry  `json:"entries"`
	Unplaced         []UnplacedSession `json:"unplaced,omitempty"`
	Warnings         []Warning         `json:"warnings,omitempty"`
	FacultySchedules []FacultySchedule `json:"faculty_schedules,omitempty"`
	Timings          RunTimings        `json:"timings"`
	Truncated        bool              `json:"truncated"`
	CreatedAt        time.Time         `json:"created_at"`
}

// PlacementRatio returns placed over total sessions, or 1 when the run had
// nothing to place.
func (r *RunResult) PlacementRatio() float64 {
	if r.TotalCount == 0 {
		return 1
	}
	return float64(r.PlacedCount) / float64(r.TotalCount)
}
