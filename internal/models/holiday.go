package models

import "time"

// Holiday is a calendar date on which scheduling may be blocked. Managed by
// administrators elsewhere; this service consumes it read-only.
type Holiday struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Date             time.Time `db:"date" json:"date"`
	BlocksScheduling bool      `db:"blocks_scheduling" json:"blocks_scheduling"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
