package models

import "time"

// RunJobStatus captures background run lifecycle states.
type RunJobStatus string

const (
	RunJobStatusQueued     RunJobStatus = "QUEUED"
	RunJobStatusProcessing RunJobStatus = "PROCESSING"
	RunJobStatusFinished   RunJobStatus = "FINISHED"
	RunJobStatusFailed     RunJobStatus = "FAILED"
)

// RunJob tracks one asynchronously dispatched generation run.
type RunJob struct {
	ID           string       `json:"id"`
	RunID        string       `json:"run_id"`
	Status       RunJobStatus `json:"status"`
	Result       *RunResult   `json:"result,omitempty"`
	ErrorMessage *string      `json:"error_message,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	StartedAt    *time.Time   `json:"started_at,omitempty"`
	FinishedAt   *time.Time   `json:"finished_at,omitempty"`
}
