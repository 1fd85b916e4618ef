// internal/model/message.go
package model

import "time"

// InboundMessage is a message received through the webhook.
type InboundMessage struct {
	ID         int       `db:"id" json:"id"`
	Phone      string    `db:"phone" json:"phone"`
	SenderName string    `db:"sender_name" json:"name"`
	Body       string    `db:"body" json:"text"`
	MediaID    string    `db:"media_id" json:"media_id,omitempty"`
	MediaType  string    `db:"media_type" json:"media_type,omitempty"`
	ReceivedAt time.Time `db:"received_at" json:"timestamp"`
}
