package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolcore/timetable-api/internal/models"
)

// TimetableRepository persists timetables and their slot grids.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs a new timetable repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

const timetableColumns = "id, class_id, academic_year, term, status, week_start, created_at, updated_at"

// FindByID returns one timetable by primary key.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	query := fmt.Sprintf("SELECT %s FROM timetables WHERE id = $1", timetableColumns)
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, id); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// FindActiveByClass returns the single ACTIVE timetable for a class.
func (r *TimetableRepository) FindActiveByClass(ctx context.Context, classID string) (*models.Timetable, error) {
	query := fmt.Sprintf("SELECT %s FROM timetables WHERE class_id = $1 AND status = $2", timetableColumns)
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, classID, models.TimetableStatusActive); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// ListSlots returns a timetable's slots ordered by day and period.
func (r *TimetableRepository) ListSlots(ctx context.Context, timetableID string) ([]models.TimetableSlot, error) {
	const query = `SELECT id, timetable_id, day, period, start_time, end_time, slot_type, subject_id, teacher_id, created_at
FROM timetable_slots WHERE timetable_id = $1
ORDER BY CASE day
  WHEN 'MONDAY' THEN 1 WHEN 'TUESDAY' THEN 2 WHEN 'WEDNESDAY' THEN 3
  WHEN 'THURSDAY' THEN 4 WHEN 'FRIDAY' THEN 5 ELSE 6 END ASC, period ASC`
	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, query, timetableID); err != nil {
		return nil, fmt.Errorf("list timetable slots: %w", err)
	}
	return slots, nil
}

// ListActiveSlotRefs returns every slot of every ACTIVE timetable, joined
// with class and subject names for conflict reporting. When excludeClassID
// is set, that class's slots are omitted.
func (r *TimetableRepository) ListActiveSlotRefs(ctx context.Context, excludeClassID string) ([]models.CommittedSlotRef, error) {
	query := `
SELECT s.id AS slot_id, s.timetable_id, t.class_id, c.name AS class_name,
       s.day, s.period, s.subject_id, sub.name AS subject_name, s.teacher_id
FROM timetable_slots s
JOIN timetables t ON t.id = s.timetable_id
JOIN classes c ON c.id = t.class_id
LEFT JOIN subjects sub ON sub.id = s.subject_id
WHERE t.status = $1`
	args := []interface{}{models.TimetableStatusActive}
	if excludeClassID != "" {
		query += " AND t.class_id <> $2"
		args = append(args, excludeClassID)
	}
	query += " ORDER BY t.class_id ASC, s.period ASC"

	var refs []models.CommittedSlotRef
	if err := r.db.SelectContext(ctx, &refs, query, args...); err != nil {
		return nil, fmt.Errorf("list committed slots: %w", err)
	}
	return refs, nil
}

// ListActiveSlotRefsByTeacher returns a teacher's slots across every ACTIVE
// timetable.
func (r *TimetableRepository) ListActiveSlotRefsByTeacher(ctx context.Context, teacherID string) ([]models.CommittedSlotRef, error) {
	const query = `
SELECT s.id AS slot_id, s.timetable_id, t.class_id, c.name AS class_name,
       s.day, s.period, s.subject_id, sub.name AS subject_name, s.teacher_id
FROM timetable_slots s
JOIN timetables t ON t.id = s.timetable_id
JOIN classes c ON c.id = t.class_id
LEFT JOIN subjects sub ON sub.id = s.subject_id
WHERE t.status = $1 AND s.teacher_id = $2
ORDER BY CASE s.day
  WHEN 'MONDAY' THEN 1 WHEN 'TUESDAY' THEN 2 WHEN 'WEDNESDAY' THEN 3
  WHEN 'THURSDAY' THEN 4 WHEN 'FRIDAY' THEN 5 ELSE 6 END ASC, s.period ASC`
	var refs []models.CommittedSlotRef
	if err := r.db.SelectContext(ctx, &refs, query, models.TimetableStatusActive, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher slots: %w", err)
	}
	return refs, nil
}

// SupersedeActiveWithTx demotes the class's current ACTIVE timetable, if
// any, inside the caller's transaction.
func (r *TimetableRepository) SupersedeActiveWithTx(ctx context.Context, tx *sqlx.Tx, classID string) error {
	const query = `UPDATE timetables SET status = $1, updated_at = $2 WHERE class_id = $3 AND status = $4`
	if _, err := tx.ExecContext(ctx, query, models.TimetableStatusSuperseded, time.Now().UTC(), classID, models.TimetableStatusActive); err != nil {
		return fmt.Errorf("supersede active timetable: %w", err)
	}
	return nil
}

// CreateWithTx inserts a timetable header inside the caller's transaction.
func (r *TimetableRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, timetable *models.Timetable) error {
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if timetable.CreatedAt.IsZero() {
		timetable.CreatedAt = now
	}
	if timetable.UpdatedAt.IsZero() {
		timetable.UpdatedAt = now
	}

	const query = `
INSERT INTO timetables (id, class_id, academic_year, term, status, week_start, created_at, updated_at)
VALUES (:id, :class_id, :academic_year, :term, :status, :week_start, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, tx, query, timetable); err != nil {
		return fmt.Errorf("insert timetable: %w", err)
	}
	return nil
}

// InsertSlotsWithTx inserts the slot grid inside the caller's transaction.
// The (timetable_id, day, period) unique constraint backstops validation
// against concurrent writers.
func (r *TimetableRepository) InsertSlotsWithTx(ctx context.Context, tx *sqlx.Tx, slots []models.TimetableSlot) error {
	if len(slots) == 0 {
		return nil
	}
	now := time.Now().UTC()

	const query = `
INSERT INTO timetable_slots (id, timetable_id, day, period, start_time, end_time, slot_type, subject_id, teacher_id, created_at)
VALUES (:id, :timetable_id, :day, :period, :start_time, :end_time, :slot_type, :subject_id, :teacher_id, :created_at)`

	for i := range slots {
		slot := &slots[i]
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		if slot.CreatedAt.IsZero() {
			slot.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, tx, query, slot); err != nil {
			return fmt.Errorf("insert timetable slot: %w", err)
		}
	}
	return nil
}
