package engine

import (
	"fmt"

	"github.com/campusforge/timetable-engine/internal/models"
)

// analyzeCapacity compares planned demand against the snapshot's gross
// supply before any placement happens. A shortfall found here cannot be
// fixed by a better search order, so it is reported up front; the run
// still places as much as it can.
func analyzeCapacity(ix *snapshotIndex, sessions []*models.Session) []models.Warning {
	var warnings []models.Warning

	demand := 0
	labDemand := 0
	labCourses := make(map[string]bool)
	for _, session := range sessions {
		demand += session.Duration
		if session.Type == models.CourseTypePractical {
			labDemand += session.Duration
			labCourses[session.CourseID] = true
		}
	}
	if demand == 0 {
		return nil
	}

	// A member without a weekly cap can absorb any load, so totals only
	// bind when every member is capped.
	capacity := 0
	capped := true
	for _, id := range ix.facultyOrder {
		member := ix.faculty[id]
		if member.MaxHoursPerWeek <= 0 {
			capped = false
			break
		}
		capacity += member.MaxHoursPerWeek
	}
	if capped && demand > capacity {
		warnings = append(warnings, models.Warning{
			Code:    models.WarningFacultyCapacityExceeded,
			Message: fmt.Sprintf("planned sessions need %d periods but faculty caps cover only %d", demand, capacity),
		})
	}

	if labDemand > 0 {
		labRooms := 0
		for _, id := range ix.roomOrder {
			room := ix.rooms[id]
			for courseID := range labCourses {
				if roomSatisfies(room, ix.courses[courseID], 0) {
					labRooms++
					break
				}
			}
		}
		supply := labRooms * len(ix.slots)
		if labDemand > supply {
			warnings = append(warnings, models.Warning{
				Code:    models.WarningLabRoomShortage,
				Message: fmt.Sprintf("lab sessions need %d periods but lab rooms offer at most %d", labDemand, supply),
			})
		}
	}

	return warnings
}
