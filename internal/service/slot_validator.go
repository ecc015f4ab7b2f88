package service

import (
	"fmt"

	"github.com/schoolcore/timetable-api/internal/dto"
	"github.com/schoolcore/timetable-api/internal/models"
)

// SlotSnapshot is the consistent state a validation run reasons over. It is
// assembled once per request and passed explicitly, so validation itself
// performs no I/O and concurrent calls never share mutable state.
type SlotSnapshot struct {
	ClassID       string
	TimetableID   string
	ExcludeSlotID string
	// ClassSlots are the committed slots of the target timetable.
	ClassSlots []models.TimetableSlot
	// ActiveSlots are committed slots across every active timetable,
	// joined with class and subject names for conflict reports.
	ActiveSlots []models.CommittedSlotRef
	Gate        *HolidayGate
}

// SlotValidator decides whether a single candidate slot may be committed.
// All checks run independently and accumulate, so callers see the complete
// violation set at once.
type SlotValidator struct {
	calendar *CalendarService
}

// NewSlotValidator builds a validator over the given calendar.
func NewSlotValidator(calendar *CalendarService) *SlotValidator {
	return &SlotValidator{calendar: calendar}
}

// ValidateSlot runs every feasibility check for one candidate against the
// snapshot. Errors are hard violations; warnings never block commit.
func (v *SlotValidator) ValidateSlot(slot dto.SlotCandidate, snap SlotSnapshot) dto.ValidationResult {
	errors := make([]string, 0)
	warnings := make([]string, 0)

	day, dayOK := models.ParseWeekDay(slot.Day)
	if !dayOK {
		errors = append(errors, fmt.Sprintf("Invalid day: %s. Must be Monday-Friday.", slot.Day))
	}

	if slot.Period < MinPeriod || slot.Period > MaxPeriod {
		errors = append(errors, fmt.Sprintf("Invalid period: %d. Must be between %d and %d.", slot.Period, MinPeriod, MaxPeriod))
	}

	if v.calendar.IsBlockedWindow(slot.StartTime, slot.EndTime) {
		errors = append(errors, fmt.Sprintf("Time slot %s-%s is blocked (Assembly, Interval, or Pack-up time).", slot.StartTime, slot.EndTime))
	}

	if dayOK && snap.Gate.IsBlocked(day) {
		errors = append(errors, fmt.Sprintf("Cannot schedule on %s - it's a holiday.", slot.Day))
	}

	if conflict := v.findClassConflict(slot, day, snap); conflict {
		errors = append(errors, fmt.Sprintf("Class already has a subject scheduled for %s Period %d.", slot.Day, slot.Period))
	}

	if slot.TeacherID != nil && *slot.TeacherID != "" {
		if ref, found := v.findTeacherConflict(slot, day, snap); found {
			errors = append(errors, fmt.Sprintf(
				"Teacher is already scheduled to teach %s in %s at %s Period %d.",
				refSubjectName(ref), ref.ClassName, slot.Day, slot.Period,
			))
		}
	}

	if !IsValidTimeFormat(slot.StartTime) || !IsValidTimeFormat(slot.EndTime) {
		errors = append(errors, "Invalid time format. Use HH:MM format (e.g., 07:40).")
	}

	return dto.ValidationResult{
		IsValid:  len(errors) == 0,
		Errors:   errors,
		Warnings: warnings,
	}
}

// ValidateDoublePeriod checks that two candidates form a legal continuous
// teaching block: same day, consecutive periods, identical subject and
// teacher, never straddling the interval between periods 4 and 5.
func (v *SlotValidator) ValidateDoublePeriod(first, second dto.SlotCandidate) dto.ValidationResult {
	errors := make([]string, 0)

	if first.Day != second.Day {
		errors = append(errors, "Double period must be on the same day.")
	}

	diff := first.Period - second.Period
	if diff != 1 && diff != -1 {
		errors = append(errors, "Double period must use consecutive period numbers.")
	}

	if !sameOptionalID(first.SubjectID, second.SubjectID) {
		errors = append(errors, "Double period must be for the same subject.")
	}

	if !sameOptionalID(first.TeacherID, second.TeacherID) {
		errors = append(errors, "Double period must have the same teacher.")
	}

	low, high := first.Period, second.Period
	if low > high {
		low, high = high, low
	}
	if low == 4 && high == 5 {
		errors = append(errors, "Double period cannot span across the interval (Period 4 to Period 5).")
	}

	return dto.ValidationResult{
		IsValid:  len(errors) == 0,
		Errors:   errors,
		Warnings: make([]string, 0),
	}
}

func (v *SlotValidator) findClassConflict(slot dto.SlotCandidate, day models.WeekDay, snap SlotSnapshot) bool {
	if snap.TimetableID == "" {
		return false
	}
	for _, existing := range snap.ClassSlots {
		if existing.Day != day || existing.Period != slot.Period {
			continue
		}
		if excluded(existing.ID, slot, snap) {
			continue
		}
		return true
	}
	return false
}

func (v *SlotValidator) findTeacherConflict(slot dto.SlotCandidate, day models.WeekDay, snap SlotSnapshot) (models.CommittedSlotRef, bool) {
	for _, ref := range snap.ActiveSlots {
		if ref.ClassID == snap.ClassID {
			continue
		}
		if ref.TeacherID == nil || *ref.TeacherID != *slot.TeacherID {
			continue
		}
		if ref.Day != day || ref.Period != slot.Period {
			continue
		}
		if excluded(ref.SlotID, slot, snap) {
			continue
		}
		return ref, true
	}
	return models.CommittedSlotRef{}, false
}

func excluded(slotID string, candidate dto.SlotCandidate, snap SlotSnapshot) bool {
	if slotID == "" {
		return false
	}
	if candidate.SlotID != "" && candidate.SlotID == slotID {
		return true
	}
	return snap.ExcludeSlotID != "" && snap.ExcludeSlotID == slotID
}

func sameOptionalID(a, b *string) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil || b == nil:
		return false
	default:
		return *a == *b
	}
}

func refSubjectName(ref models.CommittedSlotRef) string {
	if ref.SubjectName != nil && *ref.SubjectName != "" {
		return *ref.SubjectName
	}
	return "another subject"
}
