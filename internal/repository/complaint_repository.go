// internal/repository/complaint_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	appErrors "github.com/unclebandit/promo-dashboard/internal/errors"
	"github.com/unclebandit/promo-dashboard/internal/model"
)

type ComplaintRepositoryInterface interface {
	PromoteMessage(ctx context.Context, messageID int) (*model.Complaint, error)
	List(ctx context.Context, filter ComplaintFilter) ([]model.Complaint, error)
	UpdateStatus(ctx context.Context, id int, status string) (*model.Complaint, error)
	Summary(ctx context.Context) (model.ComplaintSummary, error)
}

// ComplaintFilter narrows List. Zero values match everything.
type ComplaintFilter struct {
	Status string
	Day    *time.Time
}

type ComplaintRepository struct {
	DB *sql.DB
}

const complaintColumns = `id, name, phone, body, status, media_id, media_type, created_at, updated_at`

func scanComplaint(row interface{ Scan(...any) error }) (*model.Complaint, error) {
	var c model.Complaint
	var updated sql.NullTime
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Body, &c.Status, &c.MediaID, &c.MediaType, &c.CreatedAt, &updated); err != nil {
		return nil, err
	}
	if updated.Valid {
		c.UpdatedAt = &updated.Time
	}
	return &c, nil
}

// PromoteMessage turns an inbox message into a registered complaint and
// removes it from the inbox.
func (r *ComplaintRepository) PromoteMessage(ctx context.Context, messageID int) (*model.Complaint, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var msg model.InboundMessage
	err = tx.QueryRowContext(ctx, `
        DELETE FROM messages WHERE id = $1
        RETURNING phone, sender_name, body, media_id, media_type
    `, messageID).Scan(&msg.Phone, &msg.SenderName, &msg.Body, &msg.MediaID, &msg.MediaType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.NewNotFound("message", messageID)
	}
	if err != nil {
		return nil, fmt.Errorf("remove message: %w", err)
	}

	insert := `
        INSERT INTO complaints (name, phone, body, status, media_id, media_type)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING ` + complaintColumns
	c, err := scanComplaint(tx.QueryRowContext(ctx, insert,
		msg.SenderName, msg.Phone, msg.Body, model.ComplaintRegistered, msg.MediaID, msg.MediaType))
	if err != nil {
		return nil, fmt.Errorf("insert complaint: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ComplaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]model.Complaint, error) {
	where := []string{}
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Day != nil {
		start := time.Date(filter.Day.Year(), filter.Day.Month(), filter.Day.Day(), 0, 0, 0, 0, filter.Day.Location())
		args = append(args, start, start.AddDate(0, 0, 1))
		where = append(where, fmt.Sprintf("created_at >= $%d AND created_at < $%d", len(args)-1, len(args)))
	}

	query := `SELECT ` + complaintColumns + ` FROM complaints`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	complaints := []model.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		complaints = append(complaints, *c)
	}
	return complaints, rows.Err()
}

func (r *ComplaintRepository) UpdateStatus(ctx context.Context, id int, status string) (*model.Complaint, error) {
	query := `UPDATE complaints SET status=$1, updated_at=NOW() WHERE id=$2 RETURNING ` + complaintColumns
	c, err := scanComplaint(r.DB.QueryRowContext(ctx, query, status, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.NewNotFound("complaint", id)
	}
	return c, err
}

func (r *ComplaintRepository) Summary(ctx context.Context) (model.ComplaintSummary, error) {
	query := `
        SELECT
            COUNT(*),
            COUNT(*) FILTER (WHERE status = $1)
        FROM complaints
    `
	var s model.ComplaintSummary
	err := r.DB.QueryRowContext(ctx, query, model.ComplaintSolved).Scan(&s.Registered, &s.Solved)
	return s, err
}
