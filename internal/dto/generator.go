package dto

// GenerateBatchRequest asks the generator for feasible timetables covering
// several classes in one run, sharing teacher occupancy across the batch.
type GenerateBatchRequest struct {
	ClassIDs     []string `json:"classIds" validate:"required,min=1,dive,required"`
	AcademicYear string   `json:"academicYear" validate:"required"`
	Term         string   `json:"term" validate:"required"`
	WeekStart    string   `json:"weekStart" validate:"omitempty,datetime=2006-01-02"`
	Commit       bool     `json:"commit"`
}

// UnresolvedSlot is a grid cell the generator could not fill without
// violating a hard constraint.
type UnresolvedSlot struct {
	ClassID string `json:"classId"`
	Day     string `json:"day"`
	Period  int    `json:"period"`
	Reason  string `json:"reason"`
}

// ClassGenerationResult holds one class's generated week.
type ClassGenerationResult struct {
	ClassID     string          `json:"classId"`
	ClassName   string          `json:"className"`
	TimetableID string          `json:"timetableId,omitempty"`
	Slots       []SlotCandidate `json:"slots"`
	Warnings    []string        `json:"warnings,omitempty"`
}

// GenerateBatchResponse is the outcome of one batch run. Unresolved slots
// are reported explicitly; a teacher is never silently double-booked.
type GenerateBatchResponse struct {
	TimetablesByClassID map[string]ClassGenerationResult `json:"timetablesByClassId"`
	UnresolvedSlots     []UnresolvedSlot                 `json:"unresolvedSlots"`
	Committed           bool                             `json:"committed"`
}
