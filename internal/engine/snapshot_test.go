package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusforge/timetable-engine/internal/models"
)

func TestOrderSlotsWalksPeriodBands(t *testing.T) {
	ordered := orderSlots(weekSlots(3, 2))

	ids := make([]string, 0, len(ordered))
	for _, slot := range ordered {
		ids = append(ids, slot.ID)
	}
	assert.Equal(t, []string{
		"MONDAY-1", "TUESDAY-1", "WEDNESDAY-1",
		"MONDAY-2", "TUESDAY-2", "WEDNESDAY-2",
	}, ids, "all first periods come before any second period")
}

func TestRoomsForFiltersByCapacityAndTags(t *testing.T) {
	snap := &models.Snapshot{
		Courses: []models.Course{newLab("phys-lab", 2)},
		Rooms: []models.Room{
			newRoom("small-lab", 20, "lab"),
			newRoom("big-lab", 80, "LAB"),
			newRoom("hall", 200),
		},
		Groups:    []models.StudentGroup{newGroup("g1", 60)},
		TimeSlots: weekSlots(1, 1),
	}
	ix := buildSnapshotIndex(snap)

	rooms := ix.roomsFor(ix.courses["phys-lab"], 60)
	require.Len(t, rooms, 1)
	assert.Equal(t, "big-lab", rooms[0].ID, "tag matching ignores case; the hall lacks the tag and the small lab the capacity")
}

func TestRoomsForPrefersSmallerRooms(t *testing.T) {
	snap := &models.Snapshot{
		Courses:   []models.Course{newLecture("algo", 1)},
		Rooms:     []models.Room{newRoom("hall", 200), newRoom("r-small", 40), newRoom("r-mid", 90)},
		Groups:    []models.StudentGroup{newGroup("g1", 30)},
		TimeSlots: weekSlots(1, 1),
	}
	ix := buildSnapshotIndex(snap)

	rooms := ix.roomsFor(ix.courses["algo"], 30)
	require.Len(t, rooms, 3)
	assert.Equal(t, "r-small", rooms[0].ID)
	assert.Equal(t, "r-mid", rooms[1].ID)
	assert.Equal(t, "hall", rooms[2].ID)
}

func TestFacultyForPreferenceAndQualification(t *testing.T) {
	course := newLecture("algo", 1)
	course.FacultyPreference = []string{"f3", "ghost", "f3"}

	snap := &models.Snapshot{
		Courses:          []models.Course{course},
		Faculty:          []models.Faculty{newFaculty("f1", 0, 0), newFaculty("f2", 0, 0), newFaculty("f3", 0, 0)},
		Rooms:            []models.Room{newRoom("r1", 60)},
		Groups:           []models.StudentGroup{newGroup("g1", 30)},
		TimeSlots:        weekSlots(1, 1),
		QualifiedFaculty: map[string][]string{"algo": {"f1", "f3"}},
	}
	ix := buildSnapshotIndex(snap)

	candidates := ix.facultyFor(ix.courses["algo"])
	assert.Equal(t, []string{"f3", "f1"}, candidates,
		"preference first, unknown and duplicate ids dropped, unqualified members excluded")
}

func TestBlockSlotsRequireConsecutivePeriods(t *testing.T) {
	snap := &models.Snapshot{
		TimeSlots: []models.TimeSlot{
			{ID: "MONDAY-1", Day: models.DayMonday, Period: 1},
			{ID: "MONDAY-2", Day: models.DayMonday, Period: 2},
			{ID: "MONDAY-4", Day: models.DayMonday, Period: 4}, // gap at period 3
		},
		Rooms: []models.Room{newRoom("r1", 60)},
	}
	ix := buildSnapshotIndex(snap)

	block := ix.blockSlots(ix.slotAt(models.DayMonday, 1), 2)
	require.Len(t, block, 2)
	assert.Equal(t, "MONDAY-2", block[1].ID)

	assert.Nil(t, ix.blockSlots(ix.slotAt(models.DayMonday, 2), 2), "period 3 does not exist")
	assert.Nil(t, ix.blockSlots(ix.slotAt(models.DayMonday, 4), 2), "period 5 does not exist")
	assert.Len(t, ix.blockSlots(ix.slotAt(models.DayMonday, 4), 1), 1, "single periods never need a neighbour")
}

func TestResolveAvailabilityAllowListWins(t *testing.T) {
	snap := &models.Snapshot{
		Faculty: []models.Faculty{
			{ID: "allow", AvailableSlotIDs: []string{"MONDAY-1", "bogus"}, UnavailableSlotIDs: []string{"MONDAY-1"}},
			{ID: "block", UnavailableSlotIDs: []string{"MONDAY-2"}},
			{ID: "open"},
		},
		Rooms:     []models.Room{newRoom("r1", 60)},
		TimeSlots: weekSlots(1, 2),
	}
	ix := buildSnapshotIndex(snap)

	assert.Equal(t, map[string]bool{"MONDAY-1": true}, ix.facultyFree["allow"],
		"a non-empty allow-list wins and unknown slot ids are ignored")
	assert.Equal(t, map[string]bool{"MONDAY-1": true}, ix.facultyFree["block"])
	assert.Len(t, ix.facultyFree["open"], 2)
}
