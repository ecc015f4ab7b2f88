package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/schoolcore/timetable-api/internal/models"
	appErrors "github.com/schoolcore/timetable-api/pkg/errors"
)

// HolidayGate answers whether scheduling is blocked on a given day of one
// concrete week. It is anchored to a Monday date so that a holiday blocks
// only the weekday its date falls on, never every recurrence of that
// weekday.
type HolidayGate struct {
	weekStart time.Time
	blocked   map[models.WeekDay]models.Holiday
}

// NewHolidayGate builds a gate for the week beginning at weekStart from a
// snapshot of holiday records. Holidays outside the week, or with
// BlocksScheduling unset, are ignored.
func NewHolidayGate(weekStart time.Time, holidays []models.Holiday) *HolidayGate {
	weekStart = truncateToDay(weekStart)
	blocked := make(map[models.WeekDay]models.Holiday)
	for _, h := range holidays {
		if !h.BlocksScheduling {
			continue
		}
		offset := int(truncateToDay(h.Date).Sub(weekStart).Hours() / 24)
		if offset < 0 || offset >= len(models.SchoolDays) {
			continue
		}
		blocked[models.SchoolDays[offset]] = h
	}
	return &HolidayGate{weekStart: weekStart, blocked: blocked}
}

// IsBlocked reports whether the day is holiday-gated in the anchored week.
func (g *HolidayGate) IsBlocked(day models.WeekDay) bool {
	if g == nil {
		return false
	}
	_, ok := g.blocked[day]
	return ok
}

// HolidayFor returns the holiday blocking the day, if any.
func (g *HolidayGate) HolidayFor(day models.WeekDay) (models.Holiday, bool) {
	if g == nil {
		return models.Holiday{}, false
	}
	h, ok := g.blocked[day]
	return h, ok
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type holidayLister interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Holiday, error)
}

// HolidayService loads holiday records and builds week-anchored gates.
type HolidayService struct {
	holidays holidayLister
	logger   *zap.Logger
}

// NewHolidayService wires the holiday repository.
func NewHolidayService(holidays holidayLister, logger *zap.Logger) *HolidayService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HolidayService{holidays: holidays, logger: logger}
}

// GateForWeek returns the holiday gate covering the school week starting at
// weekStart. A zero weekStart yields an open gate: with no concrete week to
// compare dates against, no holiday can block a slot.
func (s *HolidayService) GateForWeek(ctx context.Context, weekStart time.Time) (*HolidayGate, error) {
	if weekStart.IsZero() {
		return NewHolidayGate(weekStart, nil), nil
	}
	from := truncateToDay(weekStart)
	to := from.AddDate(0, 0, len(models.SchoolDays))
	records, err := s.holidays.ListBetween(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load holidays")
	}
	return NewHolidayGate(from, records), nil
}

// List returns holiday records in the given range for roster consumers.
func (s *HolidayService) List(ctx context.Context, from, to time.Time) ([]models.Holiday, error) {
	records, err := s.holidays.ListBetween(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load holidays")
	}
	return records, nil
}
