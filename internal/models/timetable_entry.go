package models

// TimetableEntry is one placed period of a session. Multi-period sessions
// produce one entry per period they span, each carrying its own slot id.
type TimetableEntry struct {
	ID        string `db:"id" json:"id"`
	RunID     string `db:"run_id" json:"run_id"`
	SessionID int    `db:"session_id" json:"session_id"`
	CourseID  string `db:"course_id" json:"course_id"`
	FacultyID string `db:"faculty_id" json:"faculty_id"`
	RoomID    string `db:"room_id" json:"room_id"`
	GroupID   string `db:"group_id" json:"group_id"`
	SlotID    string `db:"slot_id" json:"slot_id"`
	Day       Day    `db:"day" json:"day"`
	Period    int    `db:"period" json:"period"`
}
