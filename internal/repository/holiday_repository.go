package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/schoolcore/timetable-api/internal/models"
)

// HolidayRepository reads the holiday calendar.
type HolidayRepository struct {
	db *sqlx.DB
}

// NewHolidayRepository constructs a new holiday repository.
func NewHolidayRepository(db *sqlx.DB) *HolidayRepository {
	return &HolidayRepository{db: db}
}

// ListBetween returns holidays with from <= date < to, ordered by date.
func (r *HolidayRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.Holiday, error) {
	const query = `SELECT id, name, date, blocks_scheduling, created_at
FROM holidays WHERE date >= $1 AND date < $2 ORDER BY date ASC`
	var holidays []models.Holiday
	if err := r.db.SelectContext(ctx, &holidays, query, from, to); err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	return holidays, nil
}
