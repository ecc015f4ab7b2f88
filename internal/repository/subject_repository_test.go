package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolcore/timetable-api/internal/models"
)

func subjectRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "code", "created_at", "updated_at"})
}

func TestSubjectRepositoryListSearchesNameAndCode(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("(LOWER(name) LIKE $1 OR LOWER(COALESCE(code, '')) LIKE $1)")).
		WithArgs("%math%").
		WillReturnRows(subjectRows().AddRow("subj-1", "Mathematics", "MATH", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("%math%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	subjects, total, err := repo.List(context.Background(), models.SubjectFilter{Search: "Math"})
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Mathematics", subjects[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryListWithTeachers(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM subjects ORDER BY name ASC")).
		WillReturnRows(subjectRows().
			AddRow("subj-art", "Art", "ART", now, now).
			AddRow("subj-math", "Mathematics", "MATH", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM subject_teachers st")).
		WillReturnRows(sqlmock.NewRows([]string{"subject_id", "teacher_id"}).
			AddRow("subj-math", "teacher-1").
			AddRow("subj-math", "teacher-2"))

	result, err := repo.ListWithTeachers(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, "Art", result[0].Subject.Name)
	assert.Empty(t, result[0].TeacherIDs, "teacherless subjects still appear")
	assert.Equal(t, "Mathematics", result[1].Subject.Name)
	assert.Equal(t, []string{"teacher-1", "teacher-2"}, result[1].TeacherIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
