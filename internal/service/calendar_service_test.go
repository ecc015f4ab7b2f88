package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolcore/timetable-api/internal/models"
)

func TestDefaultCalendarPeriods(t *testing.T) {
	calendar := NewDefaultCalendarService()

	periods := calendar.Periods()
	require.Len(t, periods, 8)
	assert.Equal(t, "07:40", periods[0].StartTime)
	assert.Equal(t, "13:20", periods[7].EndTime)

	start, end, ok := calendar.PeriodBounds(5)
	require.True(t, ok)
	assert.Equal(t, "10:40", start)
	assert.Equal(t, "11:20", end)

	_, _, ok = calendar.PeriodBounds(9)
	assert.False(t, ok)
}

func TestDefaultCalendarBlockedWindows(t *testing.T) {
	calendar := NewDefaultCalendarService()

	assert.True(t, calendar.IsBlockedWindow("07:30", "07:40"))
	assert.True(t, calendar.IsBlockedWindow("10:20", "10:40"))
	assert.True(t, calendar.IsBlockedWindow("13:20", "13:30"))
	assert.False(t, calendar.IsBlockedWindow("07:40", "08:20"))

	windows := calendar.BlockedWindows()
	require.Len(t, windows, 3)
	for _, window := range windows {
		assert.Equal(t, models.SchoolDays, window.Days)
	}
}

func TestIsValidTimeFormat(t *testing.T) {
	valid := []string{"07:40", "7:40", "00:00", "23:59", "13:20"}
	for _, value := range valid {
		assert.True(t, IsValidTimeFormat(value), value)
	}

	invalid := []string{"24:00", "7:5", "0740", "13:60", "", "ab:cd", "7:40pm"}
	for _, value := range invalid {
		assert.False(t, IsValidTimeFormat(value), value)
	}
}

func TestIsValidDay(t *testing.T) {
	calendar := NewDefaultCalendarService()

	for _, day := range models.SchoolDays {
		assert.True(t, calendar.IsValidDay(day))
	}
	assert.False(t, calendar.IsValidDay(models.WeekDay("SATURDAY")))
}
