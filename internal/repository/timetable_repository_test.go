package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusforge/timetable-engine/internal/models"
)

func newTimetableRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTimetableRepositoryReplace(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	entries := []models.TimetableEntry{
		{ID: "e1", RunID: "run-1", SessionID: 1, CourseID: "c1", FacultyID: "f1", RoomID: "r1", GroupID: "g1", SlotID: "MONDAY-1", Day: models.DayMonday, Period: 1},
		{RunID: "run-1", SessionID: 2, CourseID: "c2", FacultyID: "f1", RoomID: "r1", GroupID: "g2", SlotID: "MONDAY-2", Day: models.DayMonday, Period: 2},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_entries")).
		WithArgs(pq.Array([]string{"g1", "g2"})).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_entries")).
		WithArgs("e1", "run-1", 1, "c1", "f1", "r1", "g1", "MONDAY-1", "MONDAY", 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_entries")).
		WithArgs(sqlmock.AnyArg(), "run-1", 2, "c2", "f1", "r1", "g2", "MONDAY-2", "MONDAY", 2).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Replace(context.Background(), []string{"g1", "g2"}, entries)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryReplaceRollsBackOnInsertError(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	entries := []models.TimetableEntry{
		{ID: "e1", RunID: "run-1", SessionID: 1, CourseID: "c1", FacultyID: "f1", RoomID: "r1", GroupID: "g1", SlotID: "MONDAY-1", Day: models.DayMonday, Period: 1},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_entries")).
		WithArgs(pq.Array([]string{"g1"})).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_entries")).
		WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	err := repo.Replace(context.Background(), []string{"g1"}, entries)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert timetable entry")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryReplaceSkipsEmptyScope(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	err := repo.Replace(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListByGroup(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	rows := sqlmock.NewRows([]string{"id", "run_id", "session_id", "course_id", "faculty_id", "room_id", "group_id", "slot_id", "day", "period"}).
		AddRow("e1", "run-1", 1, "c1", "f1", "r1", "g1", "MONDAY-1", "MONDAY", 1).
		AddRow("e2", "run-1", 2, "c1", "f1", "r1", "g1", "TUESDAY-1", "TUESDAY", 1)
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_entries WHERE group_id = $1")).
		WithArgs("g1").
		WillReturnRows(rows)

	entries, err := repo.ListByGroup(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.DayTuesday, entries[1].Day)
	assert.Equal(t, "MONDAY-1", entries[0].SlotID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
