package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolcore/timetable-api/internal/dto"
	"github.com/schoolcore/timetable-api/internal/models"
)

func strPtr(s string) *string { return &s }

func regularSlot(day string, period int) dto.SlotCandidate {
	calendar := NewDefaultCalendarService()
	start, end, _ := calendar.PeriodBounds(period)
	return dto.SlotCandidate{
		Day:       day,
		Period:    period,
		StartTime: start,
		EndTime:   end,
		SlotType:  string(models.SlotTypeRegular),
		SubjectID: strPtr("subj-math"),
		TeacherID: strPtr("teacher-1"),
	}
}

func emptySnapshot() SlotSnapshot {
	return SlotSnapshot{ClassID: "class-10a"}
}

func TestValidateSlotAcceptsCleanCandidate(t *testing.T) {
	validator := NewSlotValidator(NewDefaultCalendarService())

	result := validator.ValidateSlot(regularSlot("MONDAY", 1), emptySnapshot())

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestValidateSlotRejectsInvalidDay(t *testing.T) {
	validator := NewSlotValidator(NewDefaultCalendarService())

	slot := regularSlot("MONDAY", 1)
	slot.Day = "SUNDAY"
	result := validator.ValidateSlot(slot, emptySnapshot())

	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "Invalid day: SUNDAY. Must be Monday-Friday.")
}

func TestValidateSlotRejectsPeriodOutOfRange(t *testing.T) {
	validator := NewSlotValidator(NewDefaultCalendarService())

	slot := regularSlot("MONDAY", 1)
	slot.Period = 9
	result := validator.ValidateSlot(slot, emptySnapshot())

	assert.Contains(t, result.Errors, "Invalid period: 9. Must be between 1 and 8.")
}

func TestValidateSlotRejectsBlockedWindow(t *testing.T) {
	validator := NewSlotValidator(NewDefaultCalendarService())

	slot := regularSlot("MONDAY", 1)
	slot.StartTime = "10:20"
	slot.EndTime = "10:40"
	result := validator.ValidateSlot(slot, emptySnapshot())

	assert.Contains(t, result.Errors, "Time slot 10:20-10:40 is blocked (Assembly, Interval, or Pack-up time).")
}

func TestValidateSlotRejectsHoliday(t *testing.T) {
	validator := NewSlotValidator(NewDefaultCalendarService())

	snap := emptySnapshot()
	snap.Gate = NewHolidayGate(testWeekStart, []models.Holiday{
		{Name: "Poya", Date: testWeekStart, BlocksScheduling: true},
	})
	result := validator.ValidateSlot(regularSlot("MONDAY", 1), snap)

	assert.Contains(t, result.Errors, "Cannot schedule on MONDAY - it's a holiday.")
}

func TestValidateSlotRejectsClassConflict(t *testing.T) {
	validator := NewSlotValidator(NewDefaultCalendarService())

	snap := emptySnapshot()
	snap.TimetableID = "tt-1"
	snap.ClassSlots = []models.TimetableSlot{
		{ID: "slot-1", TimetableID: "tt-1", Day: models.Monday, Period: 1, SubjectID: strPtr("subj-sci")},
	}
	result := validator.ValidateSlot(regularSlot("MONDAY", 1), snap)

	assert.Contains(t, result.Errors, "Class already has a subject scheduled for MONDAY Period 1.")
}

func TestValidateSlotSkipsClassConflictWhenNoTimetable(t *testing.T) {
	validator := NewSlotValidator(NewDefaultCalendarService())

	snap := emptySnapshot()
	snap.ClassSlots = []models.TimetableSlot{
		{ID: "slot-1", Day: models.Monday, Period: 1},
	}
	result := validator.ValidateSlot(regularSlot("MONDAY", 1), snap)

	assert.True(t, result.IsValid)
}

func TestValidateSlotRejectsTeacherConflict(t *testing.T) {
	validator := NewSlotValidator(NewDefaultCalendarService())

	snap := emptySnapshot()
	snap.ActiveSlots = []models.CommittedSlotRef{
		{
			SlotID:      "slot-9",
			ClassID:     "class-10b",
			ClassName:   "Grade 10B",
			Day:         models.Monday,
			Period:      1,
			SubjectName: strPtr("Science"),
			TeacherID:   strPtr("teacher-1"),
		},
	}
	result := validator.ValidateSlot(regularSlot("MONDAY", 1), snap)

	assert.Contains(t, result.Errors, "Teacher is already scheduled to teach Science in Grade 10B at MONDAY Period 1.")
}

func TestValidateSlotIgnoresTeacherConflictInOwnClass(t *testing.T) {
	validator := NewSlotValidator(NewDefaultCalendarService())

	snap := emptySnapshot()
	snap.ActiveSlots = []models.CommittedSlotRef{
		{SlotID: "slot-9", ClassID: "class-10a", Day: models.Monday, Period: 1, TeacherID: strPtr("teacher-1")},
	}
	result := validator.ValidateSlot(regularSlot("MONDAY", 1), snap)

	assert.True(t, result.IsValid)
}

func TestValidateSlotExcludesSelfWhenEditing(t *testing.T) {
	validator := NewSlotValidator(NewDefaultCalendarService())

	snap := emptySnapshot()
	snap.TimetableID = "tt-1"
	snap.ExcludeSlotID = "slot-1"
	snap.ClassSlots = []models.TimetableSlot{
		{ID: "slot-1", TimetableID: "tt-1", Day: models.Monday, Period: 1},
	}
	result := validator.ValidateSlot(regularSlot("MONDAY", 1), snap)

	assert.True(t, result.IsValid)
}

func TestValidateSlotIdempotentAgainstItself(t *testing.T) {
	validator := NewSlotValidator(NewDefaultCalendarService())

	slot := regularSlot("MONDAY", 1)
	slot.SlotID = "slot-1"

	snap := emptySnapshot()
	snap.TimetableID = "tt-1"
	snap.ClassSlots = []models.TimetableSlot{
		{ID: "slot-1", TimetableID: "tt-1", Day: models.Monday, Period: 1, SubjectID: slot.SubjectID, TeacherID: slot.TeacherID},
	}
	snap.ActiveSlots = []models.CommittedSlotRef{
		{SlotID: "slot-1", ClassID: "class-10a", Day: models.Monday, Period: 1, TeacherID: slot.TeacherID},
	}
	result := validator.ValidateSlot(slot, snap)

	assert.True(t, result.IsValid, "a committed slot must validate against its own timetable")
}

func TestValidateSlotRejectsBadTimeFormat(t *testing.T) {
	validator := NewSlotValidator(NewDefaultCalendarService())

	slot := regularSlot("MONDAY", 1)
	slot.StartTime = "7.40"
	result := validator.ValidateSlot(slot, emptySnapshot())

	assert.Contains(t, result.Errors, "Invalid time format. Use HH:MM format (e.g., 07:40).")
}

func TestValidateSlotAccumulatesAllViolations(t *testing.T) {
	validator := NewSlotValidator(NewDefaultCalendarService())

	slot := dto.SlotCandidate{
		Day:       "SUNDAY",
		Period:    0,
		StartTime: "25:00",
		EndTime:   "26:00",
	}
	result := validator.ValidateSlot(slot, emptySnapshot())

	require.False(t, result.IsValid)
	assert.GreaterOrEqual(t, len(result.Errors), 3)
}

func TestValidateDoublePeriod(t *testing.T) {
	validator := NewSlotValidator(NewDefaultCalendarService())

	first := regularSlot("TUESDAY", 2)
	second := regularSlot("TUESDAY", 3)

	result := validator.ValidateDoublePeriod(first, second)
	assert.True(t, result.IsValid)

	reversed := validator.ValidateDoublePeriod(second, first)
	assert.True(t, reversed.IsValid, "order of the pair must not matter")
}

func TestValidateDoublePeriodRejectsDifferentDays(t *testing.T) {
	validator := NewSlotValidator(NewDefaultCalendarService())

	result := validator.ValidateDoublePeriod(regularSlot("MONDAY", 2), regularSlot("TUESDAY", 3))
	assert.Contains(t, result.Errors, "Double period must be on the same day.")
}

func TestValidateDoublePeriodRejectsNonConsecutive(t *testing.T) {
	validator := NewSlotValidator(NewDefaultCalendarService())

	result := validator.ValidateDoublePeriod(regularSlot("MONDAY", 2), regularSlot("MONDAY", 4))
	assert.Contains(t, result.Errors, "Double period must use consecutive period numbers.")
}

func TestValidateDoublePeriodRejectsDifferentSubjectOrTeacher(t *testing.T) {
	validator := NewSlotValidator(NewDefaultCalendarService())

	second := regularSlot("MONDAY", 3)
	second.SubjectID = strPtr("subj-sci")
	result := validator.ValidateDoublePeriod(regularSlot("MONDAY", 2), second)
	assert.Contains(t, result.Errors, "Double period must be for the same subject.")

	second = regularSlot("MONDAY", 3)
	second.TeacherID = strPtr("teacher-2")
	result = validator.ValidateDoublePeriod(regularSlot("MONDAY", 2), second)
	assert.Contains(t, result.Errors, "Double period must have the same teacher.")
}

func TestValidateDoublePeriodRejectsIntervalSpan(t *testing.T) {
	validator := NewSlotValidator(NewDefaultCalendarService())

	result := validator.ValidateDoublePeriod(regularSlot("MONDAY", 4), regularSlot("MONDAY", 5))
	assert.Contains(t, result.Errors, "Double period cannot span across the interval (Period 4 to Period 5).")

	reversed := validator.ValidateDoublePeriod(regularSlot("MONDAY", 5), regularSlot("MONDAY", 4))
	assert.Contains(t, reversed.Errors, "Double period cannot span across the interval (Period 4 to Period 5).")
}
