package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/schoolcore/timetable-api/internal/models"
)

// SubjectRepository reads the subject roster and its teacher assignments.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a new subject repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns subjects matching filter criteria.
func (r *SubjectRepository) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error) {
	base := "FROM subjects WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(COALESCE(code, '')) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"name":       true,
		"code":       true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "name"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, name, code, created_at, updated_at %s ORDER BY %s %s LIMIT %d OFFSET %d", base, sortBy, order, size, offset)
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list subjects: %w", err)
	}

	var total int
	countQuery := "SELECT COUNT(*) " + base
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count subjects: %w", err)
	}
	return subjects, total, nil
}

// FindByID returns one subject by primary key.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	const query = `SELECT id, name, code, created_at, updated_at FROM subjects WHERE id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// ListWithTeachers returns every subject together with the IDs of teachers
// qualified to teach it. Subjects without any active teacher still appear,
// with an empty teacher list.
func (r *SubjectRepository) ListWithTeachers(ctx context.Context) ([]models.SubjectWithTeachers, error) {
	const subjectQuery = `SELECT id, name, code, created_at, updated_at FROM subjects ORDER BY name ASC`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, subjectQuery); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}

	const assignmentQuery = `
SELECT st.subject_id, st.teacher_id
FROM subject_teachers st
JOIN teachers t ON t.id = st.teacher_id
WHERE t.active = TRUE
ORDER BY st.subject_id ASC, st.teacher_id ASC`
	type assignment struct {
		SubjectID string `db:"subject_id"`
		TeacherID string `db:"teacher_id"`
	}
	var assignments []assignment
	if err := r.db.SelectContext(ctx, &assignments, assignmentQuery); err != nil {
		return nil, fmt.Errorf("list subject teachers: %w", err)
	}

	teachersBySubject := make(map[string][]string, len(subjects))
	for _, item := range assignments {
		teachersBySubject[item.SubjectID] = append(teachersBySubject[item.SubjectID], item.TeacherID)
	}

	result := make([]models.SubjectWithTeachers, 0, len(subjects))
	for _, subject := range subjects {
		result = append(result, models.SubjectWithTeachers{
			Subject:    subject,
			TeacherIDs: teachersBySubject[subject.ID],
		})
	}
	return result, nil
}
