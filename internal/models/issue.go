package models

import "time"

// IssueStatus tracks the handling state of a reported issue.
type IssueStatus string

const (
	IssueOpen     IssueStatus = "Open"
	IssueProgress IssueStatus = "Progress"
	IssueHold     IssueStatus = "Hold"
	IssueResolved IssueStatus = "Resolved"
)

// Issue represents a problem reported by a student.
type Issue struct {
	ID          string      `db:"id" json:"id"`
	UserID      string      `db:"user_id" json:"user_id"`
	Title       string      `db:"title" json:"title"`
	Description string      `db:"description" json:"description"`
	Image       *string     `db:"image" json:"image,omitempty"`
	Status      IssueStatus `db:"status" json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// IssueFilter captures listing criteria for issues.
type IssueFilter struct {
	UserID string
	Status *IssueStatus
}
