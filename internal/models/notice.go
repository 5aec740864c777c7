package models

import "time"

// Notice represents an announcement on the mess notice board. Notices with
// a ValidUntil in the past are excluded from the active listing.
type Notice struct {
	ID          string     `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Image       *string    `db:"image" json:"image,omitempty"`
	PostedBy    string     `db:"posted_by" json:"posted_by"`
	ValidUntil  *time.Time `db:"valid_until" json:"valid_until,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
