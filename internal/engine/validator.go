package engine

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/campusforge/timetable-engine/internal/models"
	appErrors "github.com/campusforge/timetable-engine/pkg/errors"
)

// Validator re-checks the final entry set. Hard violations mean the placer
// or solver is defective and fail the run; soft violations are returned as
// structured warnings in a deterministic order.
type Validator struct {
	ix     *snapshotIndex
	cfg    Config
	logger *zap.Logger
}

func newValidator(ix *snapshotIndex, cfg Config, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{ix: ix, cfg: cfg, logger: logger}
}

type groupDay struct {
	groupID string
	day     models.Day
}

type placedPeriod struct {
	courseID  string
	sessionID int
}

// Validate walks the entries once. Any double-booking of a faculty member,
// room or group is fatal; everything else becomes a warning.
func (v *Validator) Validate(entries []models.TimetableEntry) ([]models.Warning, error) {
	facultySeen := make(map[string]bool)
	roomSeen := make(map[string]bool)
	groupSeen := make(map[string]bool)

	labSessions := make(map[groupDay]map[int]bool)
	labCourseSessions := make(map[groupDay]map[string]map[int]bool)
	periodOwner := make(map[groupDay]map[int]placedPeriod)
	facultyHours := make(map[string]int)

	for i := range entries {
		entry := &entries[i]

		for _, check := range []struct {
			seen map[string]bool
			key  string
			kind string
			id   string
		}{
			{facultySeen, entry.FacultyID + "|" + entry.SlotID, "faculty", entry.FacultyID},
			{roomSeen, entry.RoomID + "|" + entry.SlotID, "room", entry.RoomID},
			{groupSeen, entry.GroupID + "|" + entry.SlotID, "group", entry.GroupID},
		} {
			if check.seen[check.key] {
				v.logger.Error("double booking detected",
					zap.String("kind", check.kind),
					zap.String("id", check.id),
					zap.String("slot_id", entry.SlotID))
				return nil, appErrors.Clone(appErrors.ErrInvariant,
					fmt.Sprintf("%s %s double-booked at slot %s", check.kind, check.id, entry.SlotID))
			}
			check.seen[check.key] = true
		}

		facultyHours[entry.FacultyID]++

		gd := groupDay{groupID: entry.GroupID, day: entry.Day}
		if periodOwner[gd] == nil {
			periodOwner[gd] = make(map[int]placedPeriod)
		}
		periodOwner[gd][entry.Period] = placedPeriod{courseID: entry.CourseID, sessionID: entry.SessionID}

		course := v.ix.courses[entry.CourseID]
		if course != nil && course.CourseType == models.CourseTypePractical {
			if labSessions[gd] == nil {
				labSessions[gd] = make(map[int]bool)
			}
			labSessions[gd][entry.SessionID] = true

			if labCourseSessions[gd] == nil {
				labCourseSessions[gd] = make(map[string]map[int]bool)
			}
			if labCourseSessions[gd][entry.CourseID] == nil {
				labCourseSessions[gd][entry.CourseID] = make(map[int]bool)
			}
			labCourseSessions[gd][entry.CourseID][entry.SessionID] = true
		}
	}

	var warnings []models.Warning
	for _, groupID := range v.ix.groupOrder {
		for _, day := range models.Days() {
			gd := groupDay{groupID: groupID, day: day}

			if count := len(labSessions[gd]); count > v.cfg.MaxLabsPerDay {
				warnings = append(warnings, models.Warning{
					Code:    models.WarningLabCapExceeded,
					Message: fmt.Sprintf("group %s has %d lab sessions on %s, cap is %d", groupID, count, day, v.cfg.MaxLabsPerDay),
					GroupID: groupID,
					Day:     day,
				})
			}

			courseIDs := make([]string, 0, len(labCourseSessions[gd]))
			for courseID := range labCourseSessions[gd] {
				courseIDs = append(courseIDs, courseID)
			}
			sort.Strings(courseIDs)
			for _, courseID := range courseIDs {
				if len(labCourseSessions[gd][courseID]) >= 2 {
					warnings = append(warnings, models.Warning{
						Code:     models.WarningSameDayLab,
						Message:  fmt.Sprintf("lab %s scheduled more than once on %s for group %s", courseID, day, groupID),
						CourseID: courseID,
						GroupID:  groupID,
						Day:      day,
					})
				}
			}

			warnings = append(warnings, v.adjacencyWarnings(gd, periodOwner[gd])...)
		}
	}

	warnings = append(warnings, v.facultyLoadWarnings(facultyHours)...)
	return warnings, nil
}

// adjacencyWarnings flags the same course occupying neighbouring periods
// through two different sessions. A single multi-period session is fine.
func (v *Validator) adjacencyWarnings(gd groupDay, periods map[int]placedPeriod) []models.Warning {
	if len(periods) == 0 {
		return nil
	}
	ordered := make([]int, 0, len(periods))
	for period := range periods {
		ordered = append(ordered, period)
	}
	sort.Ints(ordered)

	var warnings []models.Warning
	for _, period := range ordered {
		current := periods[period]
		next, ok := periods[period+1]
		if !ok {
			continue
		}
		if current.courseID == next.courseID && current.sessionID != next.sessionID {
			warnings = append(warnings, models.Warning{
				Code:     models.WarningAdjacentSameCourse,
				Message:  fmt.Sprintf("course %s occupies consecutive periods %d and %d on %s for group %s", current.courseID, period, period+1, gd.day, gd.groupID),
				CourseID: current.courseID,
				GroupID:  gd.groupID,
				Day:      gd.day,
				Period:   period,
			})
		}
	}
	return warnings
}

// facultyLoadWarnings reports over- and under-loaded members against their
// declared weekly bounds. The overwork check can be switched off.
func (v *Validator) facultyLoadWarnings(facultyHours map[string]int) []models.Warning {
	var warnings []models.Warning
	for _, facultyID := range v.ix.facultyOrder {
		member := v.ix.faculty[facultyID]
		hours := facultyHours[facultyID]

		if !v.cfg.SkipOverworkCheck && member.MaxHoursPerWeek > 0 && hours > member.MaxHoursPerWeek {
			warnings = append(warnings, models.Warning{
				Code:      models.WarningFacultyOverwork,
				Message:   fmt.Sprintf("faculty %s assigned %d hours, above the %d hour maximum", facultyID, hours, member.MaxHoursPerWeek),
				FacultyID: facultyID,
			})
		}
		if member.MinHoursPerWeek > 0 && hours < member.MinHoursPerWeek {
			warnings = append(warnings, models.Warning{
				Code:      models.WarningFacultyUnderMin,
				Message:   fmt.Sprintf("faculty %s assigned %d hours, below the %d hour minimum", facultyID, hours, member.MinHoursPerWeek),
				FacultyID: facultyID,
			})
		}
	}
	return warnings
}
