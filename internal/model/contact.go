// internal/model/contact.go
package model

import "time"

type Contact struct {
	ID            int       `db:"id" json:"id"`
	Phone         string    `db:"phone" json:"phone"`
	LastInboundAt time.Time `db:"last_inbound_at" json:"last_inbound_at"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
