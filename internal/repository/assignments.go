package repository

import (
	"context"
	"time"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
)

func (r *Repository) FindAssignment(ctx context.Context, clientID int64) (*domain.Assignment, error) {
	query := `
		SELECT staff_id, client_id, created_at FROM assignments WHERE client_id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	a := &domain.Assignment{}
	if err := r.dbpool.QueryRowContext(ctx, query, clientID).Scan(&a.StaffID, &a.ClientID, &a.CreatedAt); err != nil {
		return nil, mapError(err)
	}

	return a, nil
}

// CreateAssignment relies on assignments_client_id_key to reject a second holder.
func (r *Repository) CreateAssignment(ctx context.Context, a *domain.Assignment) error {
	query := `
		INSERT INTO assignments (staff_id, client_id)
		VALUES ($1, $2)
		RETURNING created_at
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, a.StaffID, a.ClientID).Scan(&a.CreatedAt); err != nil {
		return mapError(err)
	}

	return nil
}

func (r *Repository) DeleteAssignment(ctx context.Context, staffID, clientID int64) error {
	query := `
		DELETE FROM assignments WHERE staff_id = $1 AND client_id = $2
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, query, staffID, clientID)
	if err != nil {
		return mapError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (r *Repository) GetAllAssignments(ctx context.Context) ([]*domain.Assignment, error) {
	query := `
		SELECT staff_id, client_id, created_at FROM assignments ORDER BY client_id
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	all := make([]*domain.Assignment, 0)
	for rows.Next() {
		a := &domain.Assignment{}
		if err := rows.Scan(&a.StaffID, &a.ClientID, &a.CreatedAt); err != nil {
			return nil, err
		}
		all = append(all, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return all, nil
}

func (r *Repository) FindClientsByStaff(ctx context.Context, staffID int64) ([]*domain.Client, error) {
	query := `
		SELECT ` + clientColumns + `
		FROM clients c
		JOIN assignments a ON a.client_id = c.id
		WHERE a.staff_id = $1
		ORDER BY c.id
	`
	return r.queryClients(ctx, query, staffID)
}

func (r *Repository) FindClientsByStaffAndShift(ctx context.Context, staffID int64, shift domain.Shift) ([]*domain.Client, error) {
	query := `
		SELECT ` + clientColumns + `
		FROM clients c
		JOIN assignments a ON a.client_id = c.id
		WHERE a.staff_id = $1 AND c.time_shift = $2
		ORDER BY c.id
	`
	return r.queryClients(ctx, query, staffID, shift)
}
