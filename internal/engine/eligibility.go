package engine

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/campusforge/timetable-engine/internal/models"
)

// EligibilityResolver maps each course onto the student groups it may be
// taught to. Matching is exact on normalized (program, branch, semester);
// there is no fuzzy fallback.
type EligibilityResolver struct {
	logger *zap.Logger
}

// NewEligibilityResolver builds a resolver. A nil logger is replaced with a
// no-op one.
func NewEligibilityResolver(logger *zap.Logger) *EligibilityResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EligibilityResolver{logger: logger}
}

// Resolve returns eligible group ids per course id, in group input order.
// Courses missing any of program, branch or semester match zero groups and
// produce a warning instead of an error.
func (r *EligibilityResolver) Resolve(courses []models.Course, groups []models.StudentGroup) (map[string][]string, []models.Warning) {
	eligible := make(map[string][]string, len(courses))
	var warnings []models.Warning

	for i := range courses {
		course := &courses[i]
		if !course.HasSchedulingFields() {
			warnings = append(warnings, models.Warning{
				Code:     models.WarningCourseMissingFields,
				Message:  fmt.Sprintf("course %s is missing program, branch or semester and cannot be matched", course.Code),
				CourseID: course.ID,
			})
			r.logger.Warn("course skipped: incomplete scheduling fields",
				zap.String("course_id", course.ID),
				zap.String("course_code", course.Code))
			continue
		}

		program := normalizeField(*course.Program)
		branch := normalizeField(*course.Branch)
		semester := *course.Semester

		var matched []string
		for j := range groups {
			group := &groups[j]
			if normalizeField(group.Program) != program {
				continue
			}
			if normalizeField(group.Branch) != branch {
				continue
			}
			if group.Semester != semester {
				continue
			}
			matched = append(matched, group.ID)
		}

		if len(matched) == 0 {
			warnings = append(warnings, models.Warning{
				Code:     models.WarningCourseNoGroups,
				Message:  fmt.Sprintf("course %s matched no groups (program=%s branch=%s semester=%d)", course.Code, program, branch, semester),
				CourseID: course.ID,
			})
			r.logger.Info("course matched no groups",
				zap.String("course_id", course.ID),
				zap.String("course_code", course.Code),
				zap.String("program", program),
				zap.String("branch", branch),
				zap.Int("semester", semester))
			continue
		}
		eligible[course.ID] = matched
	}

	return eligible, warnings
}

func normalizeField(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
