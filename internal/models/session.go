package models

// SessionStatus tracks where a session is in the placement pipeline.
type SessionStatus string

const (
	SessionStatusPending  SessionStatus = "PENDING"
	SessionStatusPlaced   SessionStatus = "PLACED"
	SessionStatusUnplaced SessionStatus = "UNPLACED"
)

// UnplacedReason explains why neither placement phase could seat a session.
type UnplacedReason string

const (
	UnplacedNoCompatibleRoom   UnplacedReason = "no-compatible-room"
	UnplacedNoFacultyAvailable UnplacedReason = "no-faculty-available"
	UnplacedNoFreeSlot         UnplacedReason = "no-free-slot"
)

// Session is one atomic teaching unit of a course for one group, spanning
// Duration consecutive periods. Sessions are derived per run and never
// persisted.
type Session struct {
	ID       int             `json:"id"`
	CourseID string          `json:"course_id"`
	GroupID  string          `json:"group_id"`
	Duration int             `json:"duration"`
	Type     CourseType      `json:"type"`
	Category SubjectCategory `json:"category"`
	Status   SessionStatus   `json:"status"`
	Reason   UnplacedReason  `json:"reason,omitempty"`
}
