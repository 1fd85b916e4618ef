// internal/repository/participant_repository.go
package repository

import (
	"context"
	"database/sql"

	"github.com/unclebandit/promo-dashboard/internal/model"
)

type ParticipantRepositoryInterface interface {
	Enroll(ctx context.Context, phone, name string) (bool, error)
	ListAll(ctx context.Context) ([]model.Participant, error)
}

type ParticipantRepository struct {
	DB *sql.DB
}

// Enroll adds the phone to the drawing. It reports false when the phone
// was already enrolled; the stored name is never overwritten.
func (r *ParticipantRepository) Enroll(ctx context.Context, phone, name string) (bool, error) {
	query := `
        INSERT INTO participants (phone, name)
        VALUES ($1, $2)
        ON CONFLICT (phone) DO NOTHING
    `
	res, err := r.DB.ExecContext(ctx, query, phone, name)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *ParticipantRepository) ListAll(ctx context.Context) ([]model.Participant, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT phone, name, enrolled_at FROM participants ORDER BY enrolled_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := []model.Participant{}
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(&p.Phone, &p.Name, &p.EnrolledAt); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}
