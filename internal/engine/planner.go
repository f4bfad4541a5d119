package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/campusforge/timetable-engine/internal/models"
)

// SessionPlanner expands each (course, eligible group) pair into atomic
// sessions whose total periods equal the course's hours_per_week.
type SessionPlanner struct {
	policy OddLabPolicy
	logger *zap.Logger
}

// NewSessionPlanner builds a planner for the given odd-lab policy.
func NewSessionPlanner(policy OddLabPolicy, logger *zap.Logger) *SessionPlanner {
	if policy == "" {
		policy = OddLabSplit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionPlanner{policy: policy, logger: logger}
}

// Plan emits sessions in course input order with sequential ids starting at
// 1. Practical courses are planned as 2-period blocks; an odd leftover hour
// becomes a single-period session or is dropped, depending on policy, and is
// warned about either way.
func (p *SessionPlanner) Plan(courses []models.Course, eligible map[string][]string) ([]*models.Session, []models.Warning) {
	var sessions []*models.Session
	var warnings []models.Warning
	nextID := 1

	emit := func(course *models.Course, groupID string, duration int) {
		sessions = append(sessions, &models.Session{
			ID:       nextID,
			CourseID: course.ID,
			GroupID:  groupID,
			Duration: duration,
			Type:     course.CourseType,
			Category: course.SubjectCategory,
			Status:   models.SessionStatusPending,
		})
		nextID++
	}

	for i := range courses {
		course := &courses[i]
		groupIDs := eligible[course.ID]
		if len(groupIDs) == 0 {
			continue
		}

		for _, groupID := range groupIDs {
			if !course.IsBlockTaught() {
				for h := 0; h < course.HoursPerWeek; h++ {
					emit(course, groupID, 1)
				}
				continue
			}

			blocks := course.HoursPerWeek / 2
			leftover := course.HoursPerWeek % 2
			for b := 0; b < blocks; b++ {
				emit(course, groupID, 2)
			}
			if leftover == 0 {
				continue
			}

			switch p.policy {
			case OddLabDrop:
				warnings = append(warnings, models.Warning{
					Code:     models.WarningCourseOddLabHours,
					Message:  fmt.Sprintf("course %s has odd weekly hours %d; leftover hour dropped", course.Code, course.HoursPerWeek),
					CourseID: course.ID,
					GroupID:  groupID,
				})
			default:
				emit(course, groupID, 1)
				warnings = append(warnings, models.Warning{
					Code:     models.WarningCourseOddLabHours,
					Message:  fmt.Sprintf("course %s has odd weekly hours %d; leftover hour planned as a single period", course.Code, course.HoursPerWeek),
					CourseID: course.ID,
					GroupID:  groupID,
				})
			}
			p.logger.Debug("odd lab hours",
				zap.String("course_id", course.ID),
				zap.String("group_id", groupID),
				zap.Int("hours_per_week", course.HoursPerWeek),
				zap.String("policy", string(p.policy)))
		}
	}

	return sessions, warnings
}
