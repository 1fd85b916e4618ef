// internal/model/participant.go
package model

import "time"

// Participant is a contact enrolled in the prize drawing.
type Participant struct {
	Phone      string    `db:"phone" json:"phone"`
	Name       string    `db:"name" json:"name"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// ReplyJob asks the reply worker to confirm a drawing enrollment.
type ReplyJob struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
}
