package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusforge/timetable-engine/internal/models"
)

func TestSessionPlannerExpandsLectureHours(t *testing.T) {
	planner := NewSessionPlanner(OddLabSplit, nil)

	sessions, warnings := planner.Plan(
		[]models.Course{newLecture("algo", 3)},
		map[string][]string{"algo": {"g1"}},
	)
	assert.Empty(t, warnings)
	require.Len(t, sessions, 3)
	for i, session := range sessions {
		assert.Equal(t, i+1, session.ID, "ids are sequential from 1")
		assert.Equal(t, 1, session.Duration)
		assert.Equal(t, models.SessionStatusPending, session.Status)
		assert.Equal(t, "g1", session.GroupID)
	}
}

func TestSessionPlannerExpandsPracticalBlocks(t *testing.T) {
	planner := NewSessionPlanner(OddLabSplit, nil)

	sessions, warnings := planner.Plan(
		[]models.Course{newLab("phys-lab", 4)},
		map[string][]string{"phys-lab": {"g1"}},
	)
	assert.Empty(t, warnings)
	require.Len(t, sessions, 2)
	for _, session := range sessions {
		assert.Equal(t, 2, session.Duration)
		assert.Equal(t, models.CourseTypePractical, session.Type)
	}
}

func TestSessionPlannerSplitsOddLabHours(t *testing.T) {
	planner := NewSessionPlanner(OddLabSplit, nil)

	sessions, warnings := planner.Plan(
		[]models.Course{newLab("phys-lab", 5)},
		map[string][]string{"phys-lab": {"g1"}},
	)
	require.Len(t, sessions, 3)
	assert.Equal(t, 2, sessions[0].Duration)
	assert.Equal(t, 2, sessions[1].Duration)
	assert.Equal(t, 1, sessions[2].Duration, "leftover hour becomes a single period")

	require.Len(t, warnings, 1)
	assert.Equal(t, models.WarningCourseOddLabHours, warnings[0].Code)
	assert.Equal(t, "phys-lab", warnings[0].CourseID)
}

func TestSessionPlannerDropsOddLabHours(t *testing.T) {
	planner := NewSessionPlanner(OddLabDrop, nil)

	sessions, warnings := planner.Plan(
		[]models.Course{newLab("phys-lab", 5)},
		map[string][]string{"phys-lab": {"g1"}},
	)
	require.Len(t, sessions, 2)
	total := 0
	for _, session := range sessions {
		total += session.Duration
	}
	assert.Equal(t, 4, total, "the odd hour is discarded")

	require.Len(t, warnings, 1)
	assert.Equal(t, models.WarningCourseOddLabHours, warnings[0].Code)
}

func TestSessionPlannerFansOutPerGroup(t *testing.T) {
	planner := NewSessionPlanner(OddLabSplit, nil)

	sessions, _ := planner.Plan(
		[]models.Course{newLecture("algo", 2)},
		map[string][]string{"algo": {"g1", "g2"}},
	)
	require.Len(t, sessions, 4)
	perGroup := make(map[string]int)
	for _, session := range sessions {
		perGroup[session.GroupID]++
	}
	assert.Equal(t, map[string]int{"g1": 2, "g2": 2}, perGroup)
}

func TestSessionPlannerSkipsIneligibleCourses(t *testing.T) {
	planner := NewSessionPlanner(OddLabSplit, nil)

	sessions, warnings := planner.Plan(
		[]models.Course{newLecture("algo", 3)},
		map[string][]string{},
	)
	assert.Empty(t, sessions)
	assert.Empty(t, warnings)
}
