package service

import (
	"fmt"

	"github.com/schoolcore/timetable-api/internal/dto"
)

// ValidateWeek checks an entire proposed week against one snapshot. Every
// candidate is validated against the same committed state, the candidate
// set itself is scanned for duplicate (day, period) pairs, and declared
// double periods are checked pairwise. Each duplicated pair is reported
// exactly once no matter how many repeats exist.
func (v *SlotValidator) ValidateWeek(slots []dto.SlotCandidate, doubles []dto.DoublePeriodDeclaration, snap SlotSnapshot) dto.ValidationResult {
	result := dto.ValidationResult{
		IsValid:  true,
		Errors:   make([]string, 0),
		Warnings: make([]string, 0),
	}

	for _, slot := range slots {
		result.Merge(v.ValidateSlot(slot, snap))
	}

	seen := make(map[string]bool)
	reported := make(map[string]bool)
	for _, slot := range slots {
		key := fmt.Sprintf("%s-%d", slot.Day, slot.Period)
		if seen[key] && !reported[key] {
			result.Errors = append(result.Errors, fmt.Sprintf("Duplicate slot found: %s Period %d", slot.Day, slot.Period))
			reported[key] = true
		}
		seen[key] = true
	}

	for _, pair := range doubles {
		if pair.First < 0 || pair.First >= len(slots) || pair.Second < 0 || pair.Second >= len(slots) {
			result.Errors = append(result.Errors, fmt.Sprintf("Double period declaration references missing slots (%d, %d).", pair.First, pair.Second))
			continue
		}
		result.Merge(v.ValidateDoublePeriod(slots[pair.First], slots[pair.Second]))
	}

	result.Errors = dedupeStrings(result.Errors)
	result.Warnings = dedupeStrings(result.Warnings)
	result.IsValid = len(result.Errors) == 0
	return result
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
