package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campusforge/timetable-engine/internal/models"
)

// SnapshotRepository assembles a generation run's input set from Postgres.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository builds the repository.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

type courseRow struct {
	models.Course
	RoomTags   pq.StringArray `db:"required_room_tags"`
	Preference pq.StringArray `db:"faculty_preference"`
}

type facultyRow struct {
	models.Faculty
	Available   pq.StringArray `db:"available_slot_ids"`
	Unavailable pq.StringArray `db:"unavailable_slot_ids"`
}

type roomRow struct {
	models.Room
	TagList pq.StringArray `db:"tags"`
}

type qualifiedRow struct {
	CourseID  string `db:"course_id"`
	FacultyID string `db:"faculty_id"`
}

// LoadSnapshot reads every scheduling entity in one pass. The result is
// self-contained; the engine never goes back to the database mid-run.
func (r *SnapshotRepository) LoadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{}

	if err := r.loadCourses(ctx, snap); err != nil {
		return nil, err
	}
	if err := r.loadFaculty(ctx, snap); err != nil {
		return nil, err
	}
	if err := r.loadRooms(ctx, snap); err != nil {
		return nil, err
	}
	if err := r.loadGroups(ctx, snap); err != nil {
		return nil, err
	}
	if err := r.loadTimeSlots(ctx, snap); err != nil {
		return nil, err
	}
	if err := r.loadQualified(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *SnapshotRepository) loadCourses(ctx context.Context, snap *models.Snapshot) error {
	const query = `SELECT id, code, name, hours_per_week, course_type, program, branch, semester, subject_category, required_room_tags, faculty_preference
FROM courses ORDER BY code ASC`
	var rows []courseRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return fmt.Errorf("load courses: %w", err)
	}
	snap.Courses = make([]models.Course, 0, len(rows))
	for i := range rows {
		course := rows[i].Course
		course.RequiredRoomTags = rows[i].RoomTags
		course.FacultyPreference = rows[i].Preference
		snap.Courses = append(snap.Courses, course)
	}
	return nil
}

func (r *SnapshotRepository) loadFaculty(ctx context.Context, snap *models.Snapshot) error {
	const query = `SELECT id, name, min_hours_per_week, max_hours_per_week, available_slot_ids, unavailable_slot_ids
FROM faculty ORDER BY name ASC`
	var rows []facultyRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return fmt.Errorf("load faculty: %w", err)
	}
	snap.Faculty = make([]models.Faculty, 0, len(rows))
	for i := range rows {
		member := rows[i].Faculty
		member.AvailableSlotIDs = rows[i].Available
		member.UnavailableSlotIDs = rows[i].Unavailable
		snap.Faculty = append(snap.Faculty, member)
	}
	return nil
}

func (r *SnapshotRepository) loadRooms(ctx context.Context, snap *models.Snapshot) error {
	const query = `SELECT id, name, capacity, tags FROM rooms ORDER BY name ASC`
	var rows []roomRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return fmt.Errorf("load rooms: %w", err)
	}
	snap.Rooms = make([]models.Room, 0, len(rows))
	for i := range rows {
		room := rows[i].Room
		room.Tags = rows[i].TagList
		snap.Rooms = append(snap.Rooms, room)
	}
	return nil
}

func (r *SnapshotRepository) loadGroups(ctx context.Context, snap *models.Snapshot) error {
	const query = `SELECT id, name, program, branch, semester, size FROM student_groups ORDER BY name ASC`
	if err := r.db.SelectContext(ctx, &snap.Groups, query); err != nil {
		return fmt.Errorf("load student groups: %w", err)
	}
	return nil
}

func (r *SnapshotRepository) loadTimeSlots(ctx context.Context, snap *models.Snapshot) error {
	const query = `SELECT id, day, period FROM time_slots ORDER BY day ASC, period ASC`
	if err := r.db.SelectContext(ctx, &snap.TimeSlots, query); err != nil {
		return fmt.Errorf("load time slots: %w", err)
	}
	return nil
}

func (r *SnapshotRepository) loadQualified(ctx context.Context, snap *models.Snapshot) error {
	const query = `SELECT course_id, faculty_id FROM course_faculty ORDER BY course_id ASC, faculty_id ASC`
	var rows []qualifiedRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return fmt.Errorf("load qualified faculty: %w", err)
	}
	snap.QualifiedFaculty = make(map[string][]string, len(rows))
	for _, row := range rows {
		snap.QualifiedFaculty[row.CourseID] = append(snap.QualifiedFaculty[row.CourseID], row.FacultyID)
	}
	return nil
}
