package export

import (
	"fmt"
	"sort"

	"github.com/campusforge/timetable-engine/internal/models"
)

// Dataset is the tabular form every artifact renderer consumes. Rows index
// cell values by header name; missing keys render as empty cells.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// GroupGrid lays out one student group's placed entries as a week grid,
// days down the side and periods across the top. Cell text is the course
// code (falling back to the course id) plus the room.
func GroupGrid(group models.StudentGroup, slots []models.TimeSlot, entries []models.TimetableEntry, courseCodes map[string]string) Dataset {
	days, periods := gridAxes(slots)

	cells := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.GroupID != group.ID {
			continue
		}
		code := courseCodes[entry.CourseID]
		if code == "" {
			code = entry.CourseID
		}
		cells[cellKey(entry.Day, entry.Period)] = fmt.Sprintf("%s @ %s", code, entry.RoomID)
	}

	return buildGrid(days, periods, cells)
}

// FacultyGrid lays out one instructor's schedule as a week grid. Cells carry
// the course code, the attending group, and the room.
func FacultyGrid(schedule models.FacultySchedule, slots []models.TimeSlot) Dataset {
	days, periods := gridAxes(slots)

	cells := make(map[string]string, len(schedule.Cells))
	for _, cell := range schedule.Cells {
		code := cell.CourseCode
		if code == "" {
			code = cell.CourseID
		}
		cells[cellKey(cell.Day, cell.Period)] = fmt.Sprintf("%s %s @ %s", code, cell.GroupID, cell.RoomID)
	}

	return buildGrid(days, periods, cells)
}

func gridAxes(slots []models.TimeSlot) ([]models.Day, []int) {
	seenDays := make(map[models.Day]bool, len(slots))
	seenPeriods := make(map[int]bool, len(slots))
	for _, slot := range slots {
		seenDays[slot.Day] = true
		seenPeriods[slot.Period] = true
	}

	days := make([]models.Day, 0, len(seenDays))
	for _, day := range models.Days() {
		if seenDays[day] {
			days = append(days, day)
		}
	}

	periods := make([]int, 0, len(seenPeriods))
	for period := range seenPeriods {
		periods = append(periods, period)
	}
	sort.Ints(periods)

	return days, periods
}

func buildGrid(days []models.Day, periods []int, cells map[string]string) Dataset {
	headers := make([]string, 0, len(periods)+1)
	headers = append(headers, "Day")
	for _, period := range periods {
		headers = append(headers, fmt.Sprintf("Period %d", period))
	}

	rows := make([]map[string]string, 0, len(days))
	for _, day := range days {
		row := map[string]string{"Day": dayLabel(day)}
		for _, period := range periods {
			row[fmt.Sprintf("Period %d", period)] = cells[cellKey(day, period)]
		}
		rows = append(rows, row)
	}

	return Dataset{Headers: headers, Rows: rows}
}

func cellKey(day models.Day, period int) string {
	return fmt.Sprintf("%s#%d", day, period)
}

func dayLabel(day models.Day) string {
	switch day {
	case models.DayMonday:
		return "Monday"
	case models.DayTuesday:
		return "Tuesday"
	case models.DayWednesday:
		return "Wednesday"
	case models.DayThursday:
		return "Thursday"
	case models.DayFriday:
		return "Friday"
	case models.DaySaturday:
		return "Saturday"
	default:
		return string(day)
	}
}
