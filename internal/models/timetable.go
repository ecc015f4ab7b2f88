package models

import "time"

// TimetableStatus represents lifecycle phases for a class timetable.
// A draft that fails validation is discarded, not transitioned.
type TimetableStatus string

const (
	TimetableStatusDraft      TimetableStatus = "DRAFT"
	TimetableStatusValidated  TimetableStatus = "VALIDATED"
	TimetableStatusActive     TimetableStatus = "ACTIVE"
	TimetableStatusSuperseded TimetableStatus = "SUPERSEDED"
)

// SlotType distinguishes teaching slots from fixed non-teaching ones.
type SlotType string

const (
	SlotTypeRegular  SlotType = "REGULAR"
	SlotTypeInterval SlotType = "INTERVAL"
	SlotTypeAssembly SlotType = "ASSEMBLY"
)

// Timetable is the full week of slots for one class and term. At most one
// timetable per class is ACTIVE at a time.
type Timetable struct {
	ID           string          `db:"id" json:"id"`
	ClassID      string          `db:"class_id" json:"class_id"`
	AcademicYear string          `db:"academic_year" json:"academic_year"`
	Term         string          `db:"term" json:"term"`
	Status       TimetableStatus `db:"status" json:"status"`
	WeekStart    time.Time       `db:"week_start" json:"week_start"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// IsActive reports whether this timetable is the class's committed one.
func (t Timetable) IsActive() bool {
	return t.Status == TimetableStatusActive
}

// TimetableSlot is one (day, period) cell of a class's weekly grid.
// (TimetableID, Day, Period) is unique within a timetable; (TeacherID, Day,
// Period) is unique across all active timetables.
type TimetableSlot struct {
	ID          string    `db:"id" json:"id"`
	TimetableID string    `db:"timetable_id" json:"timetable_id"`
	Day         WeekDay   `db:"day" json:"day"`
	Period      int       `db:"period" json:"period"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	SlotType    SlotType  `db:"slot_type" json:"slot_type"`
	SubjectID   *string   `db:"subject_id" json:"subject_id,omitempty"`
	TeacherID   *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CommittedSlotRef is a committed slot joined with the names needed for
// human-readable conflict reports.
type CommittedSlotRef struct {
	SlotID      string  `db:"slot_id" json:"slot_id"`
	TimetableID string  `db:"timetable_id" json:"timetable_id"`
	ClassID     string  `db:"class_id" json:"class_id"`
	ClassName   string  `db:"class_name" json:"class_name"`
	Day         WeekDay `db:"day" json:"day"`
	Period      int     `db:"period" json:"period"`
	SubjectID   *string `db:"subject_id" json:"subject_id,omitempty"`
	SubjectName *string `db:"subject_name" json:"subject_name,omitempty"`
	TeacherID   *string `db:"teacher_id" json:"teacher_id,omitempty"`
}
