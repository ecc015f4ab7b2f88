package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolcore/timetable-api/internal/models"
)

func newTimetableRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func timetableRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "class_id", "academic_year", "term", "status", "week_start", "created_at", "updated_at"})
}

func TestTimetableRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, class_id, academic_year, term, status, week_start, created_at, updated_at FROM timetables WHERE id = $1")).
		WithArgs("tt-1").
		WillReturnRows(timetableRows().AddRow("tt-1", "class-1", "2026", "1", string(models.TimetableStatusActive), now, now, now))

	timetable, err := repo.FindByID(context.Background(), "tt-1")
	require.NoError(t, err)
	assert.Equal(t, "class-1", timetable.ClassID)
	assert.Equal(t, models.TimetableStatusActive, timetable.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryFindActiveByClassNotFound(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM timetables WHERE class_id = $1 AND status = $2")).
		WithArgs("class-1", string(models.TimetableStatusActive)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindActiveByClass(context.Background(), "class-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListSlots(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	rows := sqlmock.NewRows([]string{"id", "timetable_id", "day", "period", "start_time", "end_time", "slot_type", "subject_id", "teacher_id", "created_at"}).
		AddRow("slot-1", "tt-1", "MONDAY", 1, "07:40", "08:20", "REGULAR", "subj-1", "teacher-1", time.Now()).
		AddRow("slot-2", "tt-1", "MONDAY", 2, "08:20", "09:00", "REGULAR", nil, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_slots WHERE timetable_id = $1")).
		WithArgs("tt-1").
		WillReturnRows(rows)

	slots, err := repo.ListSlots(context.Background(), "tt-1")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, models.Monday, slots[0].Day)
	assert.Nil(t, slots[1].SubjectID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func committedRefRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"slot_id", "timetable_id", "class_id", "class_name", "day", "period", "subject_id", "subject_name", "teacher_id"})
}

func TestTimetableRepositoryListActiveSlotRefs(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE t.status = $1")).
		WithArgs(string(models.TimetableStatusActive)).
		WillReturnRows(committedRefRows().
			AddRow("slot-1", "tt-1", "class-1", "Grade 10A", "MONDAY", 1, "subj-1", "Mathematics", "teacher-1"))

	refs, err := repo.ListActiveSlotRefs(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "Grade 10A", refs[0].ClassName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListActiveSlotRefsExcludesClass(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE t.status = $1 AND t.class_id <> $2")).
		WithArgs(string(models.TimetableStatusActive), "class-1").
		WillReturnRows(committedRefRows())

	refs, err := repo.ListActiveSlotRefs(context.Background(), "class-1")
	require.NoError(t, err)
	assert.Empty(t, refs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListActiveSlotRefsByTeacher(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE t.status = $1 AND s.teacher_id = $2")).
		WithArgs(string(models.TimetableStatusActive), "teacher-1").
		WillReturnRows(committedRefRows().
			AddRow("slot-1", "tt-1", "class-1", "Grade 10A", "WEDNESDAY", 3, "subj-1", "English", "teacher-1"))

	refs, err := repo.ListActiveSlotRefsByTeacher(context.Background(), "teacher-1")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, models.Wednesday, refs[0].Day)
	assert.Equal(t, 3, refs[0].Period)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryCommitFlowWithTx(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetables SET status =")).
		WithArgs(string(models.TimetableStatusSuperseded), sqlmock.AnyArg(), "class-1", string(models.TimetableStatusActive)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetables")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_slots")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)

	require.NoError(t, repo.SupersedeActiveWithTx(context.Background(), tx, "class-1"))

	timetable := &models.Timetable{ClassID: "class-1", AcademicYear: "2026", Term: "1", Status: models.TimetableStatusActive}
	require.NoError(t, repo.CreateWithTx(context.Background(), tx, timetable))
	assert.NotEmpty(t, timetable.ID, "missing id must be generated")
	assert.False(t, timetable.CreatedAt.IsZero())

	slots := []models.TimetableSlot{
		{TimetableID: timetable.ID, Day: models.Monday, Period: 1, StartTime: "07:40", EndTime: "08:20", SlotType: models.SlotTypeRegular},
	}
	require.NoError(t, repo.InsertSlotsWithTx(context.Background(), tx, slots))
	assert.NotEmpty(t, slots[0].ID)

	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryInsertSlotsWithTxEmpty(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)

	require.NoError(t, repo.InsertSlotsWithTx(context.Background(), tx, nil))
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}
