package models

import "strings"

// CourseType distinguishes single-period from block-taught courses.
type CourseType string

const (
	CourseTypeLecture   CourseType = "lecture"
	CourseTypePractical CourseType = "practical"
	CourseTypeTutorial  CourseType = "tutorial"
)

// SubjectCategory ranks courses for placement priority.
type SubjectCategory string

const (
	SubjectCategoryCore     SubjectCategory = "core"
	SubjectCategoryElective SubjectCategory = "elective"
	SubjectCategoryLab      SubjectCategory = "lab"
	SubjectCategoryProject  SubjectCategory = "project"
)

// CategoryPriority returns the placement weight for a category. Higher
// values are preferred when the solver has to choose which sessions to keep.
func CategoryPriority(c SubjectCategory) int {
	switch c {
	case SubjectCategoryCore:
		return 4
	case SubjectCategoryElective:
		return 3
	case SubjectCategoryLab:
		return 2
	case SubjectCategoryProject:
		return 1
	default:
		return 2
	}
}

// Course represents a teachable unit offered to matching student groups.
// Program, Branch and Semester are all required for eligibility; a course
// missing any of them matches zero groups and is reported, never scheduled.
type Course struct {
	ID                string          `db:"id" json:"id" validate:"required"`
	Code              string          `db:"code" json:"code" validate:"required"`
	Name              string          `db:"name" json:"name"`
	HoursPerWeek      int             `db:"hours_per_week" json:"hours_per_week" validate:"min=1"`
	CourseType        CourseType      `db:"course_type" json:"course_type" validate:"required,oneof=lecture practical tutorial"`
	Program           *string         `db:"program" json:"program,omitempty"`
	Branch            *string         `db:"branch" json:"branch,omitempty"`
	Semester          *int            `db:"semester" json:"semester,omitempty"`
	SubjectCategory   SubjectCategory `db:"subject_category" json:"subject_category" validate:"omitempty,oneof=core elective lab project"`
	RequiredRoomTags  []string        `db:"-" json:"required_room_tags,omitempty"`
	FacultyPreference []string        `db:"-" json:"faculty_preference,omitempty"`
}

// IsBlockTaught reports whether sessions for this course occupy two
// consecutive periods.
func (c *Course) IsBlockTaught() bool {
	return c.CourseType == CourseTypePractical
}

// HasSchedulingFields reports whether the course carries the full
// program/branch/semester triple needed for group matching. Blank or
// whitespace-only values count as missing.
func (c *Course) HasSchedulingFields() bool {
	return c.Program != nil && strings.TrimSpace(*c.Program) != "" &&
		c.Branch != nil && strings.TrimSpace(*c.Branch) != "" &&
		c.Semester != nil
}
