package models

import "time"

// Teacher represents a member of the teaching staff. Teachers are never
// owned by a class; committed slots reference them for conflict detection.
type Teacher struct {
	ID        string    `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Email     string    `db:"email" json:"email"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures supported filters for listing teachers.
type TeacherFilter struct {
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// TeacherDayConflict groups slots where one teacher is double-booked at the
// same (day, period) across active timetables.
type TeacherDayConflict struct {
	Day     WeekDay            `json:"day"`
	Period  int                `json:"period"`
	Entries []CommittedSlotRef `json:"entries"`
}
