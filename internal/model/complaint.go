// internal/model/complaint.go
package model

import "time"

const (
	ComplaintRegistered = "registered"
	ComplaintInReview   = "in_review"
	ComplaintSolved     = "solved"
	ComplaintUnsolved   = "unsolved"
)

type Complaint struct {
	ID        int        `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Phone     string     `db:"phone" json:"phone"`
	Body      string     `db:"body" json:"text"`
	Status    string     `db:"status" json:"status"` // registered, in_review, solved, unsolved
	MediaID   string     `db:"media_id" json:"media_id,omitempty"`
	MediaType string     `db:"media_type" json:"media_type,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"timestamp"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// ComplaintSummary backs the dashboard scoreboard.
type ComplaintSummary struct {
	Registered int `json:"registered"`
	Solved     int `json:"solved"`
}
