package engine

import (
	"sort"

	"github.com/campusforge/timetable-engine/internal/models"
)

// buildFacultySchedules assembles the per-faculty weekly view from the final
// entry set. Pure reporting; placement correctness never depends on it.
// Only members with at least one taught period appear.
func buildFacultySchedules(ix *snapshotIndex, entries []models.TimetableEntry, overworkThreshold int) []models.FacultySchedule {
	cells := make(map[string][]models.FacultyScheduleCell)
	for i := range entries {
		entry := &entries[i]
		code := entry.CourseID
		if course := ix.courses[entry.CourseID]; course != nil {
			code = course.Code
		}
		cells[entry.FacultyID] = append(cells[entry.FacultyID], models.FacultyScheduleCell{
			Day:        entry.Day,
			Period:     entry.Period,
			CourseID:   entry.CourseID,
			CourseCode: code,
			RoomID:     entry.RoomID,
			GroupID:    entry.GroupID,
		})
	}

	var schedules []models.FacultySchedule
	for _, facultyID := range ix.facultyOrder {
		facultyCells := cells[facultyID]
		if len(facultyCells) == 0 {
			continue
		}
		sort.Slice(facultyCells, func(i, j int) bool {
			di, dj := models.DayIndex(facultyCells[i].Day), models.DayIndex(facultyCells[j].Day)
			if di != dj {
				return di < dj
			}
			return facultyCells[i].Period < facultyCells[j].Period
		})

		name := facultyID
		if member := ix.faculty[facultyID]; member != nil {
			name = member.Name
		}
		schedules = append(schedules, models.FacultySchedule{
			FacultyID:  facultyID,
			Name:       name,
			Cells:      facultyCells,
			TotalHours: len(facultyCells),
			Overworked: len(facultyCells) > overworkThreshold,
		})
	}
	return schedules
}
