package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolcore/timetable-api/internal/models"
)

func classRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "grade_level", "capacity", "created_at", "updated_at"})
}

func TestClassRepositoryList(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, grade_level, capacity, created_at, updated_at FROM classes WHERE 1=1 ORDER BY name ASC LIMIT 20 OFFSET 0")).
		WillReturnRows(classRows().
			AddRow("class-1", "Grade 10A", 10, 40, now, now).
			AddRow("class-2", "Grade 10B", 10, 40, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM classes WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	classes, total, err := repo.List(context.Background(), models.ClassFilter{})
	require.NoError(t, err)
	assert.Len(t, classes, 2)
	assert.Equal(t, 2, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND grade_level = $1 AND (LOWER(name) LIKE $2) ORDER BY grade_level DESC LIMIT 10 OFFSET 10")).
		WithArgs(10, "%10a%").
		WillReturnRows(classRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(10, "%10a%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.ClassFilter{
		GradeLevel: 10,
		Search:     "10A",
		SortBy:     "grade_level",
		SortOrder:  "desc",
		Page:       2,
		PageSize:   10,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryListRejectsUnknownSortColumn(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY name ASC")).
		WillReturnRows(classRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.ClassFilter{SortBy: "capacity; DROP TABLE classes"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM classes WHERE id = $1")).
		WithArgs("class-1").
		WillReturnRows(classRows().AddRow("class-1", "Grade 10A", 10, 40, now, now))

	class, err := repo.FindByID(context.Background(), "class-1")
	require.NoError(t, err)
	assert.Equal(t, "Grade 10A", class.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM classes WHERE id = $1")).
		WithArgs("class-missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "class-missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
