// internal/repository/message_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	appErrors "github.com/unclebandit/promo-dashboard/internal/errors"
	"github.com/unclebandit/promo-dashboard/internal/model"
)

type MessageRepositoryInterface interface {
	RecordInbound(ctx context.Context, msg *model.InboundMessage) error
	ListRecent(ctx context.Context, limit int) ([]model.InboundMessage, error)
	GetByID(ctx context.Context, id int) (*model.InboundMessage, error)
}

type MessageRepository struct {
	DB *sql.DB
}

// RecordInbound stores the message and refreshes the sender's last inbound
// timestamp in one transaction. msg.ID and msg.ReceivedAt are filled in.
func (r *MessageRepository) RecordInbound(ctx context.Context, msg *model.InboundMessage) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	upsert := `
        INSERT INTO contacts (phone, last_inbound_at)
        VALUES ($1, NOW())
        ON CONFLICT (phone) DO UPDATE SET last_inbound_at = EXCLUDED.last_inbound_at
    `
	if _, err := tx.ExecContext(ctx, upsert, msg.Phone); err != nil {
		return fmt.Errorf("upsert contact: %w", err)
	}

	insert := `
        INSERT INTO messages (phone, sender_name, body, media_id, media_type)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, received_at
    `
	err = tx.QueryRowContext(ctx, insert, msg.Phone, msg.SenderName, msg.Body, msg.MediaID, msg.MediaType).
		Scan(&msg.ID, &msg.ReceivedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return tx.Commit()
}

// ListRecent returns the newest messages first
func (r *MessageRepository) ListRecent(ctx context.Context, limit int) ([]model.InboundMessage, error) {
	query := `
        SELECT id, phone, sender_name, body, media_id, media_type, received_at
        FROM messages
        ORDER BY received_at DESC, id DESC
        LIMIT $1
    `
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []model.InboundMessage{}
	for rows.Next() {
		var m model.InboundMessage
		if err := rows.Scan(&m.ID, &m.Phone, &m.SenderName, &m.Body, &m.MediaID, &m.MediaType, &m.ReceivedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *MessageRepository) GetByID(ctx context.Context, id int) (*model.InboundMessage, error) {
	query := `
        SELECT id, phone, sender_name, body, media_id, media_type, received_at
        FROM messages
        WHERE id = $1
    `
	var m model.InboundMessage
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&m.ID, &m.Phone, &m.SenderName, &m.Body, &m.MediaID, &m.MediaType, &m.ReceivedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.NewNotFound("message", id)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// DatabaseSizeBytes is Postgres specific.
func (r *MessageRepository) DatabaseSizeBytes(ctx context.Context) (int64, error) {
	var size int64
	err := r.DB.QueryRowContext(ctx, `SELECT pg_database_size(current_database())`).Scan(&size)
	return size, err
}

// DeleteOldest removes up to n of the oldest messages and returns how many went.
func (r *MessageRepository) DeleteOldest(ctx context.Context, n int) (int64, error) {
	query := `
        DELETE FROM messages
        WHERE id IN (
            SELECT id FROM messages ORDER BY received_at ASC, id ASC LIMIT $1
        )
    `
	res, err := r.DB.ExecContext(ctx, query, n)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
