package models

// FacultyScheduleCell is one taught period in a faculty member's week.
type FacultyScheduleCell struct {
	Day        Day    `json:"day"`
	Period     int    `json:"period"`
	CourseID   string `json:"course_id"`
	CourseCode string `json:"course_code"`
	RoomID     string `json:"room_id"`
	GroupID    string `json:"group_id"`
}

// FacultySchedule is the per-faculty view of a generated timetable,
// built for reporting after validation.
type FacultySchedule struct {
	FacultyID  string                `json:"faculty_id"`
	Name       string                `json:"name"`
	Cells      []FacultyScheduleCell `json:"cells"`
	TotalHours int                   `json:"total_hours"`
	Overworked bool                  `json:"overworked"`
}
