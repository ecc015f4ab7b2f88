package models

import "time"

// Class represents an academic class or section.
type Class struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	GradeLevel int       `db:"grade_level" json:"grade_level"`
	Capacity   int       `db:"capacity" json:"capacity"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	GradeLevel int
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
