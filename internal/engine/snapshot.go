package engine

import (
	"sort"
	"strings"

	"github.com/campusforge/timetable-engine/internal/models"
)

// snapshotIndex holds the immutable, pre-resolved view of one run's input.
// All iteration orders exposed here are deterministic for a fixed snapshot.
type snapshotIndex struct {
	courses map[string]*models.Course
	faculty map[string]*models.Faculty
	rooms   map[string]*models.Room
	groups  map[string]*models.StudentGroup
	slots   map[string]*models.TimeSlot

	courseOrder  []string
	facultyOrder []string
	roomOrder    []string
	groupOrder   []string

	// orderedSlots spreads placements across the week: all first periods
	// Monday through Saturday, then all second periods, and so on.
	orderedSlots    []*models.TimeSlot
	slotByDayPeriod map[models.Day]map[int]*models.TimeSlot

	// facultyFree maps faculty id to the slot ids the member may teach in.
	facultyFree map[string]map[string]bool
	// qualified maps course id to permitted faculty ids; a missing or empty
	// entry means every faculty member qualifies.
	qualified map[string]map[string]bool
}

func buildSnapshotIndex(snap *models.Snapshot) *snapshotIndex {
	ix := &snapshotIndex{
		courses:         make(map[string]*models.Course, len(snap.Courses)),
		faculty:         make(map[string]*models.Faculty, len(snap.Faculty)),
		rooms:           make(map[string]*models.Room, len(snap.Rooms)),
		groups:          make(map[string]*models.StudentGroup, len(snap.Groups)),
		slots:           make(map[string]*models.TimeSlot, len(snap.TimeSlots)),
		slotByDayPeriod: make(map[models.Day]map[int]*models.TimeSlot),
		facultyFree:     make(map[string]map[string]bool, len(snap.Faculty)),
		qualified:       make(map[string]map[string]bool, len(snap.QualifiedFaculty)),
	}

	for i := range snap.Courses {
		course := &snap.Courses[i]
		ix.courses[course.ID] = course
		ix.courseOrder = append(ix.courseOrder, course.ID)
	}
	for i := range snap.Faculty {
		member := &snap.Faculty[i]
		ix.faculty[member.ID] = member
		ix.facultyOrder = append(ix.facultyOrder, member.ID)
	}
	for i := range snap.Rooms {
		room := &snap.Rooms[i]
		ix.rooms[room.ID] = room
		ix.roomOrder = append(ix.roomOrder, room.ID)
	}
	for i := range snap.Groups {
		group := &snap.Groups[i]
		ix.groups[group.ID] = group
		ix.groupOrder = append(ix.groupOrder, group.ID)
	}
	for i := range snap.TimeSlots {
		slot := &snap.TimeSlots[i]
		ix.slots[slot.ID] = slot
		if ix.slotByDayPeriod[slot.Day] == nil {
			ix.slotByDayPeriod[slot.Day] = make(map[int]*models.TimeSlot)
		}
		ix.slotByDayPeriod[slot.Day][slot.Period] = slot
	}

	// Rooms in capacity order so small groups leave large rooms free.
	sort.SliceStable(ix.roomOrder, func(i, j int) bool {
		a, b := ix.rooms[ix.roomOrder[i]], ix.rooms[ix.roomOrder[j]]
		if a.Capacity == b.Capacity {
			return a.ID < b.ID
		}
		return a.Capacity < b.Capacity
	})

	ix.orderedSlots = orderSlots(snap.TimeSlots)

	for i := range snap.Faculty {
		member := &snap.Faculty[i]
		ix.facultyFree[member.ID] = resolveAvailability(member, ix.slots)
	}

	for courseID, facultyIDs := range snap.QualifiedFaculty {
		if len(facultyIDs) == 0 {
			continue
		}
		set := make(map[string]bool, len(facultyIDs))
		for _, id := range facultyIDs {
			set[id] = true
		}
		ix.qualified[courseID] = set
	}

	return ix
}

// orderSlots produces the deterministic placement order: period bands walk
// across the week before descending, so consecutive sessions of a course
// land on different days rather than stacking up on Monday.
func orderSlots(slots []models.TimeSlot) []*models.TimeSlot {
	byDay := make(map[models.Day][]*models.TimeSlot)
	maxPeriod := 0
	for i := range slots {
		slot := &slots[i]
		byDay[slot.Day] = append(byDay[slot.Day], slot)
		if slot.Period > maxPeriod {
			maxPeriod = slot.Period
		}
	}
	for _, daySlots := range byDay {
		sort.Slice(daySlots, func(i, j int) bool { return daySlots[i].Period < daySlots[j].Period })
	}

	ordered := make([]*models.TimeSlot, 0, len(slots))
	for period := 1; period <= maxPeriod; period++ {
		for _, day := range models.Days() {
			for _, slot := range byDay[day] {
				if slot.Period == period {
					ordered = append(ordered, slot)
				}
			}
		}
	}
	return ordered
}

// resolveAvailability computes the slot set a faculty member may teach in.
// A non-empty allow-list wins; otherwise all slots minus the block-list.
func resolveAvailability(member *models.Faculty, slots map[string]*models.TimeSlot) map[string]bool {
	free := make(map[string]bool, len(slots))
	if len(member.AvailableSlotIDs) > 0 {
		for _, id := range member.AvailableSlotIDs {
			if _, ok := slots[id]; ok {
				free[id] = true
			}
		}
		return free
	}
	blocked := make(map[string]bool, len(member.UnavailableSlotIDs))
	for _, id := range member.UnavailableSlotIDs {
		blocked[id] = true
	}
	for id := range slots {
		if !blocked[id] {
			free[id] = true
		}
	}
	return free
}

// roomSatisfies reports whether a room can host a course for a group of the
// given size: required tags are a subset of the room's tags and capacity
// covers the group.
func roomSatisfies(room *models.Room, course *models.Course, groupSize int) bool {
	if room.Capacity < groupSize {
		return false
	}
	if len(course.RequiredRoomTags) == 0 {
		return true
	}
	tags := make(map[string]bool, len(room.Tags))
	for _, tag := range room.Tags {
		tags[strings.ToLower(strings.TrimSpace(tag))] = true
	}
	for _, required := range course.RequiredRoomTags {
		if !tags[strings.ToLower(strings.TrimSpace(required))] {
			return false
		}
	}
	return true
}

// roomsFor returns the rooms compatible with a course and group size, in
// capacity order.
func (ix *snapshotIndex) roomsFor(course *models.Course, groupSize int) []*models.Room {
	var result []*models.Room
	for _, id := range ix.roomOrder {
		room := ix.rooms[id]
		if roomSatisfies(room, course, groupSize) {
			result = append(result, room)
		}
	}
	return result
}

// facultyFor returns candidate faculty ids for a course: the course's
// preference list first, then every other qualified member in input order.
func (ix *snapshotIndex) facultyFor(course *models.Course) []string {
	qualifiedSet := ix.qualified[course.ID]
	isQualified := func(id string) bool {
		if _, ok := ix.faculty[id]; !ok {
			return false
		}
		if len(qualifiedSet) == 0 {
			return true
		}
		return qualifiedSet[id]
	}

	seen := make(map[string]bool)
	var result []string
	for _, id := range course.FacultyPreference {
		if seen[id] || !isQualified(id) {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	for _, id := range ix.facultyOrder {
		if seen[id] || !isQualified(id) {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}

// blockSlots returns the consecutive slots a session occupies when anchored
// at start, or nil when the block would run past the day's configured slots.
func (ix *snapshotIndex) blockSlots(start *models.TimeSlot, duration int) []*models.TimeSlot {
	if duration <= 1 {
		return []*models.TimeSlot{start}
	}
	block := make([]*models.TimeSlot, 0, duration)
	block = append(block, start)
	for offset := 1; offset < duration; offset++ {
		next := ix.slotByDayPeriod[start.Day][start.Period+offset]
		if next == nil {
			return nil
		}
		block = append(block, next)
	}
	return block
}

// slotAt returns the slot at a (day, period) position, or nil.
func (ix *snapshotIndex) slotAt(day models.Day, period int) *models.TimeSlot {
	return ix.slotByDayPeriod[day][period]
}

// facultyAvailable reports whether the member may teach every slot in block.
func (ix *snapshotIndex) facultyAvailable(facultyID string, block []*models.TimeSlot) bool {
	free := ix.facultyFree[facultyID]
	if free == nil {
		return false
	}
	for _, slot := range block {
		if !free[slot.ID] {
			return false
		}
	}
	return true
}
