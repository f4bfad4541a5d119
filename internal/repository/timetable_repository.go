package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campusforge/timetable-engine/internal/models"
)

// TimetableRepository persists placement results.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository builds the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// Replace swaps the stored timetable of the given groups for the new
// entries in one transaction, so readers never observe a half-written
// schedule.
func (r *TimetableRepository) Replace(ctx context.Context, groupIDs []string, entries []models.TimetableEntry) error {
	if len(groupIDs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin timetable replace: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM timetable_entries WHERE group_id = ANY($1)`, pq.Array(groupIDs)); err != nil {
		return fmt.Errorf("clear previous timetable: %w", err)
	}

	const insert = `
INSERT INTO timetable_entries (id, run_id, session_id, course_id, faculty_id, room_id, group_id, slot_id, day, period)
VALUES (:id, :run_id, :session_id, :course_id, :faculty_id, :room_id, :group_id, :slot_id, :day, :period)`

	for i := range entries {
		entry := entries[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		if _, err = sqlx.NamedExecContext(ctx, tx, insert, entry); err != nil {
			return fmt.Errorf("insert timetable entry: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit timetable replace: %w", err)
	}
	return nil
}

// ListByGroup returns a group's stored entries.
func (r *TimetableRepository) ListByGroup(ctx context.Context, groupID string) ([]models.TimetableEntry, error) {
	const query = `SELECT id, run_id, session_id, course_id, faculty_id, room_id, group_id, slot_id, day, period
FROM timetable_entries WHERE group_id = $1 ORDER BY day ASC, period ASC`
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, groupID); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}
