// internal/repository/contact_repository.go
package repository

import (
	"context"
	"database/sql"
	"time"
)

// ContactRepositoryInterface is what the campaign scheduler reads
type ContactRepositoryInterface interface {
	ListAllContacts(ctx context.Context) ([]string, error)
	HasRecentInboundMessage(ctx context.Context, phone string, windowStart time.Time) (bool, error)
}

// ContactRepository is the concrete implementation
type ContactRepository struct {
	DB *sql.DB
}

// ListAllContacts returns every known phone number
func (r *ContactRepository) ListAllContacts(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT phone FROM contacts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	phones := []string{}
	for rows.Next() {
		var phone string
		if err := rows.Scan(&phone); err != nil {
			return nil, err
		}
		phones = append(phones, phone)
	}
	return phones, rows.Err()
}

// HasRecentInboundMessage reports whether the contact wrote to us at or after windowStart
func (r *ContactRepository) HasRecentInboundMessage(ctx context.Context, phone string, windowStart time.Time) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM contacts
            WHERE phone = $1 AND last_inbound_at >= $2
        )
    `
	var ok bool
	if err := r.DB.QueryRowContext(ctx, query, phone, windowStart).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
