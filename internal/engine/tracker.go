package engine

import (
	"github.com/campusforge/timetable-engine/internal/models"
)

// ConstraintTracker records occupancy and soft-constraint counters for one
// run. All check methods are pure; Commit is the only mutating entry point.
// The tracker is not safe for concurrent use and is never shared across runs.
type ConstraintTracker struct {
	ix            *snapshotIndex
	maxLabsPerDay int

	facultyBusy          map[string]map[string]bool
	roomBusy             map[string]map[string]bool
	groupBusy            map[string]map[string]bool
	groupDayCourses      map[string]map[models.Day]map[string]bool
	groupDayPeriodCourse map[string]map[models.Day]map[int]string
	groupDayLabCount     map[string]map[models.Day]int
	facultyWeeklyHours   map[string]int
}

func newConstraintTracker(ix *snapshotIndex, maxLabsPerDay int) *ConstraintTracker {
	return &ConstraintTracker{
		ix:                   ix,
		maxLabsPerDay:        maxLabsPerDay,
		facultyBusy:          make(map[string]map[string]bool),
		roomBusy:             make(map[string]map[string]bool),
		groupBusy:            make(map[string]map[string]bool),
		groupDayCourses:      make(map[string]map[models.Day]map[string]bool),
		groupDayPeriodCourse: make(map[string]map[models.Day]map[int]string),
		groupDayLabCount:     make(map[string]map[models.Day]int),
		facultyWeeklyHours:   make(map[string]int),
	}
}

// CanPlace reports whether every hard constraint holds for seating the
// session on the given block with the given room and faculty: nobody is
// double-booked, the room fits the course and group, the faculty member is
// available for every spanned slot and has weekly budget left.
func (t *ConstraintTracker) CanPlace(session *models.Session, block []*models.TimeSlot, room *models.Room, facultyID string) bool {
	if len(block) == 0 {
		return false
	}
	course := t.ix.courses[session.CourseID]
	group := t.ix.groups[session.GroupID]
	if course == nil || group == nil {
		return false
	}
	if !roomSatisfies(room, course, group.Size) {
		return false
	}
	if !t.ix.facultyAvailable(facultyID, block) {
		return false
	}
	if !t.FacultyHasBudget(facultyID, session.Duration) {
		return false
	}
	for _, slot := range block {
		if t.facultyBusy[facultyID][slot.ID] {
			return false
		}
		if t.roomBusy[room.ID][slot.ID] {
			return false
		}
		if t.groupBusy[session.GroupID][slot.ID] {
			return false
		}
	}
	return true
}

// FacultyHasBudget reports whether the member can absorb duration more
// weekly hours. A zero max is treated as unbounded.
func (t *ConstraintTracker) FacultyHasBudget(facultyID string, duration int) bool {
	member := t.ix.faculty[facultyID]
	if member == nil {
		return false
	}
	if member.MaxHoursPerWeek <= 0 {
		return true
	}
	return t.facultyWeeklyHours[facultyID]+duration <= member.MaxHoursPerWeek
}

// ViolatesAdjacency reports whether the same course already occupies the
// period directly before or after the block for this group. Periods inside
// the block itself do not count.
func (t *ConstraintTracker) ViolatesAdjacency(session *models.Session, block []*models.TimeSlot) bool {
	if len(block) == 0 {
		return false
	}
	day := block[0].Day
	first := block[0].Period
	last := block[len(block)-1].Period
	periods := t.groupDayPeriodCourse[session.GroupID][day]
	if periods == nil {
		return false
	}
	if periods[first-1] == session.CourseID {
		return true
	}
	if periods[last+1] == session.CourseID {
		return true
	}
	return false
}

// WouldExceedLabCap reports whether placing a practical session on this day
// would push the group past the per-day lab cap.
func (t *ConstraintTracker) WouldExceedLabCap(session *models.Session, day models.Day) bool {
	if session.Type != models.CourseTypePractical {
		return false
	}
	return t.groupDayLabCount[session.GroupID][day]+1 > t.maxLabsPerDay
}

// HasSameLabToday reports whether this lab course already has a session on
// the given day for the group.
func (t *ConstraintTracker) HasSameLabToday(session *models.Session, day models.Day) bool {
	if session.Type != models.CourseTypePractical {
		return false
	}
	return t.groupDayCourses[session.GroupID][day][session.CourseID]
}

// Commit seats the session, mutating every counter in one step. Callers must
// have verified CanPlace first.
func (t *ConstraintTracker) Commit(session *models.Session, block []*models.TimeSlot, room *models.Room, facultyID string) {
	day := block[0].Day
	for _, slot := range block {
		setBusy(t.facultyBusy, facultyID, slot.ID)
		setBusy(t.roomBusy, room.ID, slot.ID)
		setBusy(t.groupBusy, session.GroupID, slot.ID)

		if t.groupDayPeriodCourse[session.GroupID] == nil {
			t.groupDayPeriodCourse[session.GroupID] = make(map[models.Day]map[int]string)
		}
		if t.groupDayPeriodCourse[session.GroupID][day] == nil {
			t.groupDayPeriodCourse[session.GroupID][day] = make(map[int]string)
		}
		t.groupDayPeriodCourse[session.GroupID][day][slot.Period] = session.CourseID
	}

	if t.groupDayCourses[session.GroupID] == nil {
		t.groupDayCourses[session.GroupID] = make(map[models.Day]map[string]bool)
	}
	if t.groupDayCourses[session.GroupID][day] == nil {
		t.groupDayCourses[session.GroupID][day] = make(map[string]bool)
	}
	t.groupDayCourses[session.GroupID][day][session.CourseID] = true

	if session.Type == models.CourseTypePractical {
		if t.groupDayLabCount[session.GroupID] == nil {
			t.groupDayLabCount[session.GroupID] = make(map[models.Day]int)
		}
		t.groupDayLabCount[session.GroupID][day]++
	}

	t.facultyWeeklyHours[facultyID] += session.Duration
}

// FacultyHours returns the weekly hours committed so far for a member.
func (t *ConstraintTracker) FacultyHours(facultyID string) int {
	return t.facultyWeeklyHours[facultyID]
}

func setBusy(busy map[string]map[string]bool, owner, slotID string) {
	if busy[owner] == nil {
		busy[owner] = make(map[string]bool)
	}
	busy[owner][slotID] = true
}
