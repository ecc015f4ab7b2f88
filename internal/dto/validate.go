package dto

// SlotCandidate is one proposed (day, period) cell for a class's weekly
// grid. Subject and teacher are optional: interval/assembly slots carry
// neither.
type SlotCandidate struct {
	SlotID    string  `json:"slotId,omitempty"`
	Day       string  `json:"day" validate:"required"`
	Period    int     `json:"period" validate:"required"`
	StartTime string  `json:"startTime" validate:"required"`
	EndTime   string  `json:"endTime" validate:"required"`
	SlotType  string  `json:"slotType" validate:"omitempty,oneof=REGULAR INTERVAL ASSEMBLY"`
	SubjectID *string `json:"subjectId,omitempty"`
	TeacherID *string `json:"teacherId,omitempty"`
}

// ValidateSlotRequest checks a single candidate against committed state.
// ExcludeSlotID skips self-conflicts when editing a slot in place.
type ValidateSlotRequest struct {
	ClassID       string        `json:"classId" validate:"required"`
	TimetableID   string        `json:"timetableId"`
	ExcludeSlotID string        `json:"excludeSlotId"`
	WeekStart     string        `json:"weekStart" validate:"omitempty,datetime=2006-01-02"`
	Slot          SlotCandidate `json:"slot" validate:"required"`
}

// DoublePeriodDeclaration marks two candidates as one continuous teaching
// block. Indices refer to positions in the candidate list.
type DoublePeriodDeclaration struct {
	First  int `json:"first" validate:"min=0"`
	Second int `json:"second" validate:"min=0"`
}

// ValidateWeekRequest checks a full proposed week for one class.
type ValidateWeekRequest struct {
	ClassID       string                    `json:"classId" validate:"required"`
	TimetableID   string                    `json:"timetableId"`
	WeekStart     string                    `json:"weekStart" validate:"omitempty,datetime=2006-01-02"`
	Slots         []SlotCandidate           `json:"slots" validate:"required,min=1,dive"`
	DoublePeriods []DoublePeriodDeclaration `json:"doublePeriods" validate:"omitempty,dive"`
}

// CommitWeekRequest validates and, when clean, activates a full week as the
// class's new timetable, superseding the previous active one.
type CommitWeekRequest struct {
	ClassID       string                    `json:"classId" validate:"required"`
	AcademicYear  string                    `json:"academicYear" validate:"required"`
	Term          string                    `json:"term" validate:"required"`
	WeekStart     string                    `json:"weekStart" validate:"omitempty,datetime=2006-01-02"`
	Slots         []SlotCandidate           `json:"slots" validate:"required,min=1,dive"`
	DoublePeriods []DoublePeriodDeclaration `json:"doublePeriods" validate:"omitempty,dive"`
}

// ValidationResult reports accumulated violations. Errors block commit;
// warnings never do.
type ValidationResult struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Merge folds another result into this one.
func (r *ValidationResult) Merge(other ValidationResult) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.IsValid = len(r.Errors) == 0
}

// TeacherAvailabilityResponse answers a free/busy probe for one teacher at
// one (day, period).
type TeacherAvailabilityResponse struct {
	IsAvailable        bool    `json:"isAvailable"`
	ConflictingClass   *string `json:"conflictingClass,omitempty"`
	ConflictingSubject *string `json:"conflictingSubject,omitempty"`
}
