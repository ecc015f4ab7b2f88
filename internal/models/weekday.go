package models

import "strings"

// WeekDay identifies a school day. Scheduling never happens outside the
// Monday-Friday set.
type WeekDay string

const (
	Monday    WeekDay = "MONDAY"
	Tuesday   WeekDay = "TUESDAY"
	Wednesday WeekDay = "WEDNESDAY"
	Thursday  WeekDay = "THURSDAY"
	Friday    WeekDay = "FRIDAY"
)

// SchoolDays lists the valid scheduling days in order.
var SchoolDays = []WeekDay{Monday, Tuesday, Wednesday, Thursday, Friday}

var weekDayIndex = map[WeekDay]int{
	Monday:    0,
	Tuesday:   1,
	Wednesday: 2,
	Thursday:  3,
	Friday:    4,
}

// ParseWeekDay normalises a raw day string into a WeekDay.
func ParseWeekDay(raw string) (WeekDay, bool) {
	day := WeekDay(strings.ToUpper(strings.TrimSpace(raw)))
	_, ok := weekDayIndex[day]
	return day, ok
}

// IsSchoolDay reports whether the day belongs to the Monday-Friday set.
func (d WeekDay) IsSchoolDay() bool {
	_, ok := weekDayIndex[d]
	return ok
}

// Index returns the zero-based offset from Monday, or -1 for non-school days.
func (d WeekDay) Index() int {
	if i, ok := weekDayIndex[d]; ok {
		return i
	}
	return -1
}
