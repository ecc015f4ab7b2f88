package service

import (
	"regexp"

	"github.com/schoolcore/timetable-api/internal/models"
)

const (
	// MinPeriod and MaxPeriod bound the daily teaching grid.
	MinPeriod = 1
	MaxPeriod = 8
)

var timeFormatPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// CalendarService supplies the fixed weekly structure: valid days, period
// time boundaries, and the permanently blocked windows. Static
// configuration, no I/O.
type CalendarService struct {
	periods map[int]models.PeriodDefinition
	ordered []models.PeriodDefinition
	blocked []models.BlockedWindow
}

// NewCalendarService builds the provider from explicit configuration.
func NewCalendarService(periods []models.PeriodDefinition, blocked []models.BlockedWindow) *CalendarService {
	byNumber := make(map[int]models.PeriodDefinition, len(periods))
	for _, p := range periods {
		byNumber[p.Period] = p
	}
	return &CalendarService{
		periods: byNumber,
		ordered: periods,
		blocked: blocked,
	}
}

// NewDefaultCalendarService returns the standing school configuration:
// eight 40-minute periods from 07:40 to 13:20 with assembly, interval and
// pack-up blocked on every school day.
func NewDefaultCalendarService() *CalendarService {
	periods := []models.PeriodDefinition{
		{Period: 1, StartTime: "07:40", EndTime: "08:20", SlotType: models.SlotTypeRegular},
		{Period: 2, StartTime: "08:20", EndTime: "09:00", SlotType: models.SlotTypeRegular},
		{Period: 3, StartTime: "09:00", EndTime: "09:40", SlotType: models.SlotTypeRegular},
		{Period: 4, StartTime: "09:40", EndTime: "10:20", SlotType: models.SlotTypeRegular},
		{Period: 5, StartTime: "10:40", EndTime: "11:20", SlotType: models.SlotTypeRegular},
		{Period: 6, StartTime: "11:20", EndTime: "12:00", SlotType: models.SlotTypeRegular},
		{Period: 7, StartTime: "12:00", EndTime: "12:40", SlotType: models.SlotTypeRegular},
		{Period: 8, StartTime: "12:40", EndTime: "13:20", SlotType: models.SlotTypeRegular},
	}
	blocked := []models.BlockedWindow{
		{Name: "Assembly", StartTime: "07:30", EndTime: "07:40", Days: models.SchoolDays},
		{Name: "Interval", StartTime: "10:20", EndTime: "10:40", Days: models.SchoolDays},
		{Name: "Pack-up", StartTime: "13:20", EndTime: "13:30", Days: models.SchoolDays},
	}
	return NewCalendarService(periods, blocked)
}

// IsValidDay reports whether the day is part of the school week.
func (s *CalendarService) IsValidDay(day models.WeekDay) bool {
	return day.IsSchoolDay()
}

// PeriodBounds returns the configured start and end time of a period.
func (s *CalendarService) PeriodBounds(period int) (start, end string, ok bool) {
	p, found := s.periods[period]
	if !found {
		return "", "", false
	}
	return p.StartTime, p.EndTime, true
}

// IsBlockedWindow reports whether (start, end) exactly matches a configured
// blocked window. Periods never intersect blocked windows by configuration,
// so exact matching is sufficient for well-formed candidates.
func (s *CalendarService) IsBlockedWindow(start, end string) bool {
	for _, w := range s.blocked {
		if start == w.StartTime && end == w.EndTime {
			return true
		}
	}
	return false
}

// Periods returns the ordered daily grid.
func (s *CalendarService) Periods() []models.PeriodDefinition {
	out := make([]models.PeriodDefinition, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// BlockedWindows returns the configured non-schedulable windows.
func (s *CalendarService) BlockedWindows() []models.BlockedWindow {
	out := make([]models.BlockedWindow, len(s.blocked))
	copy(out, s.blocked)
	return out
}

// IsValidTimeFormat checks the strict HH:MM 24-hour pattern.
func IsValidTimeFormat(t string) bool {
	return timeFormatPattern.MatchString(t)
}
