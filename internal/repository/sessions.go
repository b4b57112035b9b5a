package repository

import (
	"context"
	"time"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
)

func (r *Repository) FindSession(ctx context.Context, staffID int64, date domain.Date) (*domain.ShiftSession, error) {
	query := `
		SELECT shift, created_at, updated_at
		FROM staff_sessions
		WHERE staff_id = $1 AND session_date = $2
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	sess := &domain.ShiftSession{StaffID: staffID, Date: date}
	if err := r.dbpool.QueryRowContext(ctx, query, staffID, date).Scan(&sess.Shift, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
		return nil, mapError(err)
	}

	return sess, nil
}

// UpsertSession replaces the shift of an existing (staff, date) session in place.
func (r *Repository) UpsertSession(ctx context.Context, sess *domain.ShiftSession) error {
	query := `
		INSERT INTO staff_sessions (staff_id, session_date, shift)
		VALUES ($1, $2, $3)
		ON CONFLICT (staff_id, session_date)
		DO UPDATE SET shift = EXCLUDED.shift, updated_at = NOW()
		RETURNING created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{sess.StaffID, sess.Date, sess.Shift}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&sess.CreatedAt, &sess.UpdatedAt); err != nil {
		return mapError(err)
	}

	return nil
}
