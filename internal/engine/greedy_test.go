package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusforge/timetable-engine/internal/models"
)

func greedyFixture(snap *models.Snapshot, cfg Config) (*GreedyPlacer, *ConstraintTracker) {
	ix := buildSnapshotIndex(snap)
	tracker := newConstraintTracker(ix, cfg.MaxLabsPerDay)
	return newGreedyPlacer(ix, tracker, cfg, nil), tracker
}

func TestGreedyPlacerOrdersPracticalsFirst(t *testing.T) {
	snap := &models.Snapshot{
		Courses:   []models.Course{newLecture("algo", 1), newLab("phys-lab", 2)},
		Faculty:   []models.Faculty{newFaculty("f1", 0, 0)},
		Rooms:     []models.Room{newRoom("lab-1", 60, "lab")},
		Groups:    []models.StudentGroup{newGroup("g1", 30)},
		TimeSlots: weekSlots(2, 2),
	}
	placer, _ := greedyFixture(snap, DefaultConfig())

	sessions := []*models.Session{
		lectureSession(1, "g1"),
		labSession(2, "phys-lab", "g1"),
	}
	ordered := placer.orderSessions(sessions)
	require.Len(t, ordered, 2)
	assert.Equal(t, 2, ordered[0].ID, "the practical goes first")
	assert.Equal(t, 1, ordered[1].ID)
}

func TestGreedyPlacerAvoidsAdjacentRepeat(t *testing.T) {
	snap := &models.Snapshot{
		Courses:   []models.Course{newLecture("algo", 2)},
		Faculty:   []models.Faculty{newFaculty("f1", 0, 0)},
		Rooms:     []models.Room{newRoom("r1", 60)},
		Groups:    []models.StudentGroup{newGroup("g1", 30)},
		TimeSlots: daySlots(models.DayMonday, 4),
	}
	placer, _ := greedyFixture(snap, DefaultConfig())

	sessions := []*models.Session{lectureSession(1, "g1"), lectureSession(2, "g1")}
	outcome := placer.Place(context.Background(), "run-1", sessions)

	assert.Equal(t, 2, outcome.placed)
	require.Len(t, outcome.entries, 2)
	periods := []int{outcome.entries[0].Period, outcome.entries[1].Period}
	assert.Equal(t, []int{1, 3}, periods, "period 2 is skipped to avoid back-to-back repeats")
}

func TestGreedyPlacerReportsNoCompatibleRoom(t *testing.T) {
	snap := &models.Snapshot{
		Courses:   []models.Course{newLab("phys-lab", 2)},
		Faculty:   []models.Faculty{newFaculty("f1", 0, 0)},
		Rooms:     []models.Room{newRoom("r1", 60)}, // not a lab
		Groups:    []models.StudentGroup{newGroup("g1", 30)},
		TimeSlots: weekSlots(2, 2),
	}
	placer, _ := greedyFixture(snap, DefaultConfig())

	session := labSession(1, "phys-lab", "g1")
	outcome := placer.Place(context.Background(), "run-1", []*models.Session{session})
	assert.Zero(t, outcome.placed)
	assert.Equal(t, models.SessionStatusUnplaced, session.Status)
	assert.Equal(t, models.UnplacedNoCompatibleRoom, session.Reason)
}

func TestGreedyPlacerReportsNoFacultyAvailable(t *testing.T) {
	snap := &models.Snapshot{
		Courses:   []models.Course{newLab("phys-lab", 2)},
		Faculty:   []models.Faculty{newFaculty("f1", 0, 1)}, // one hour of budget
		Rooms:     []models.Room{newRoom("lab-1", 60, "lab")},
		Groups:    []models.StudentGroup{newGroup("g1", 30)},
		TimeSlots: weekSlots(2, 2),
	}
	placer, _ := greedyFixture(snap, DefaultConfig())

	session := labSession(1, "phys-lab", "g1")
	placer.Place(context.Background(), "run-1", []*models.Session{session})
	assert.Equal(t, models.UnplacedNoFacultyAvailable, session.Reason,
		"a two-period block does not fit a one-hour budget")
}

func TestGreedyPlacerReportsNoFreeSlot(t *testing.T) {
	snap := &models.Snapshot{
		Courses:   []models.Course{newLecture("algo", 2)},
		Faculty:   []models.Faculty{newFaculty("f1", 0, 0)},
		Rooms:     []models.Room{newRoom("r1", 60)},
		Groups:    []models.StudentGroup{newGroup("g1", 30)},
		TimeSlots: weekSlots(1, 1),
	}
	placer, _ := greedyFixture(snap, DefaultConfig())

	first := lectureSession(1, "g1")
	second := lectureSession(2, "g1")
	placer.Place(context.Background(), "run-1", []*models.Session{first, second})
	assert.Equal(t, models.SessionStatusPlaced, first.Status)
	assert.Equal(t, models.UnplacedNoFreeSlot, second.Reason, "the only slot is taken")
}

func TestGreedyPlacerHonoursFacultyPreference(t *testing.T) {
	course := newLecture("algo", 2)
	course.FacultyPreference = []string{"f2"}

	snap := &models.Snapshot{
		Courses:   []models.Course{course},
		Faculty:   []models.Faculty{newFaculty("f1", 0, 0), newFaculty("f2", 0, 0)},
		Rooms:     []models.Room{newRoom("r1", 60)},
		Groups:    []models.StudentGroup{newGroup("g1", 30)},
		TimeSlots: weekSlots(2, 2),
	}
	placer, _ := greedyFixture(snap, DefaultConfig())

	sessions := []*models.Session{lectureSession(1, "g1"), lectureSession(2, "g1")}
	outcome := placer.Place(context.Background(), "run-1", sessions)

	require.Len(t, outcome.entries, 2)
	for _, entry := range outcome.entries {
		assert.Equal(t, "f2", entry.FacultyID)
	}
}

func TestGreedyPlacerRespectsQualifiedFaculty(t *testing.T) {
	snap := &models.Snapshot{
		Courses:          []models.Course{newLecture("algo", 1)},
		Faculty:          []models.Faculty{newFaculty("f1", 0, 0), newFaculty("f2", 0, 0)},
		Rooms:            []models.Room{newRoom("r1", 60)},
		Groups:           []models.StudentGroup{newGroup("g1", 30)},
		TimeSlots:        weekSlots(1, 2),
		QualifiedFaculty: map[string][]string{"algo": {"f2"}},
	}
	placer, _ := greedyFixture(snap, DefaultConfig())

	outcome := placer.Place(context.Background(), "run-1", []*models.Session{lectureSession(1, "g1")})
	require.Len(t, outcome.entries, 1)
	assert.Equal(t, "f2", outcome.entries[0].FacultyID)
}

func TestGreedyPlacerCategoryEarlyExit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CategoryEarlyExit = true

	snap := &models.Snapshot{
		Courses:   []models.Course{newLecture("algo", 5)},
		Faculty:   []models.Faculty{newFaculty("f1", 0, 0)},
		Rooms:     []models.Room{newRoom("r1", 10)}, // too small for the group
		Groups:    []models.StudentGroup{newGroup("g1", 30)},
		TimeSlots: weekSlots(6, 4),
	}
	placer, _ := greedyFixture(snap, cfg)

	sessions := make([]*models.Session, 0, 5)
	for i := 1; i <= 5; i++ {
		sessions = append(sessions, lectureSession(i, "g1"))
	}
	outcome := placer.Place(context.Background(), "run-1", sessions)

	assert.Zero(t, outcome.placed)
	assert.Equal(t, 4, outcome.attempted, "the category is written off after four failures")
	assert.Equal(t, models.SessionStatusUnplaced, sessions[0].Status)
	assert.Equal(t, models.SessionStatusPending, sessions[4].Status, "skipped sessions stay pending for the solver")
}

func TestGreedyPlacerInterruptedByContext(t *testing.T) {
	snap := &models.Snapshot{
		Courses:   []models.Course{newLecture("algo", 2)},
		Faculty:   []models.Faculty{newFaculty("f1", 0, 0)},
		Rooms:     []models.Room{newRoom("r1", 60)},
		Groups:    []models.StudentGroup{newGroup("g1", 30)},
		TimeSlots: weekSlots(2, 2),
	}
	placer, _ := greedyFixture(snap, DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sessions := []*models.Session{lectureSession(1, "g1"), lectureSession(2, "g1")}
	outcome := placer.Place(ctx, "run-1", sessions)

	assert.True(t, outcome.interrupted)
	assert.Zero(t, outcome.placed)
	assert.Empty(t, outcome.entries)
	assert.Equal(t, models.SessionStatusPending, sessions[0].Status)
}

func TestGreedyPlacerCommitsThroughTracker(t *testing.T) {
	snap := &models.Snapshot{
		Courses:   []models.Course{newLecture("algo", 1)},
		Faculty:   []models.Faculty{newFaculty("f1", 0, 0)},
		Rooms:     []models.Room{newRoom("r1", 60)},
		Groups:    []models.StudentGroup{newGroup("g1", 30)},
		TimeSlots: weekSlots(1, 1),
	}
	placer, tracker := greedyFixture(snap, DefaultConfig())

	outcome := placer.Place(context.Background(), "run-1", []*models.Session{lectureSession(1, "g1")})
	require.Equal(t, 1, outcome.placed)
	assert.Equal(t, 1, tracker.FacultyHours("f1"))
}
