package models

// WarningCode identifies a class of non-fatal issue found during a run.
type WarningCode string

const (
	WarningCourseMissingFields     WarningCode = "course-missing-fields"
	WarningCourseNoGroups          WarningCode = "course-no-groups"
	WarningCourseOddLabHours       WarningCode = "course-odd-lab-hours"
	WarningFacultyNoAvailability   WarningCode = "faculty-no-availability"
	WarningFacultyCapacityExceeded WarningCode = "faculty-capacity-exceeded"
	WarningLabRoomShortage         WarningCode = "lab-room-shortage"
	WarningSameDayLab              WarningCode = "same-day-lab"
	WarningLabCapExceeded          WarningCode = "lab-cap-exceeded"
	WarningAdjacentSameCourse      WarningCode = "adjacent-same-course"
	WarningFacultyOverwork         WarningCode = "faculty-overwork"
	WarningFacultyUnderMin         WarningCode = "faculty-under-min"
	WarningSolverBudgetExhausted   WarningCode = "solver-budget-exhausted"
	WarningRunTruncated            WarningCode = "run-truncated"
)

// Warning is a structured, non-fatal diagnostic accumulated during a run.
// Context fields are populated when they apply and empty otherwise.
type Warning struct {
	Code      WarningCode `json:"code"`
	Message   string      `json:"message"`
	CourseID  string      `json:"course_id,omitempty"`
	FacultyID string      `json:"faculty_id,omitempty"`
	GroupID   string      `json:"group_id,omitempty"`
	Day       Day         `json:"day,omitempty"`
	Period    int         `json:"period,omitempty"`
}
