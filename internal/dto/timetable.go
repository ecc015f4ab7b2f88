package dto

import "github.com/schoolcore/timetable-api/internal/models"

// TimetableDetail is a timetable header together with its full slot grid.
type TimetableDetail struct {
	Timetable models.Timetable       `json:"timetable"`
	Slots     []models.TimetableSlot `json:"slots"`
}

// TeacherWeekResponse is the cross-class weekly view for one teacher.
type TeacherWeekResponse struct {
	TeacherID string                    `json:"teacherId"`
	Slots     []models.CommittedSlotRef `json:"slots"`
}

// TeacherAvailabilityRequest probes a single (day, period) cell.
type TeacherAvailabilityRequest struct {
	TeacherID string `json:"teacherId" validate:"required"`
	Day       string `json:"day" validate:"required"`
	Period    int    `json:"period" validate:"required,min=1,max=8"`
}
