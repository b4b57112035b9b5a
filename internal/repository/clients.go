package repository

import (
	"context"
	"time"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
)

const clientColumns = `c.id, c.name, c.phone, c.email, c.location, c.time_shift, c.price_per_litre, c.quantity, c.priority_status, c.created_at, c.version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*domain.Client, error) {
	c := &domain.Client{}
	dst := []any{
		&c.ID,
		&c.Name,
		&c.Phone,
		&c.Email,
		&c.Location,
		&c.TimeShift,
		&c.PricePerLitre,
		&c.Quantity,
		&c.PriorityStatus,
		&c.CreatedAt,
		&c.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Repository) queryClients(ctx context.Context, query string, args ...any) ([]*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := make([]*domain.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return clients, nil
}

func (r *Repository) CreateClient(ctx context.Context, client *domain.Client) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO clients (name, phone, email, location, time_shift, price_per_litre, quantity, priority_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, version
	`

	args := []any{client.Name, client.Phone, client.Email, client.Location, client.TimeShift, client.PricePerLitre, client.Quantity, client.PriorityStatus}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&client.ID, &client.CreatedAt, &client.Version); err != nil {
		return mapError(err)
	}

	return nil
}

func (r *Repository) GetClientByID(ctx context.Context, id int64) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients c WHERE c.id = $1`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	c, err := scanClient(r.dbpool.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}

	return c, nil
}

func (r *Repository) GetAllClients(ctx context.Context) ([]*domain.Client, error) {
	return r.queryClients(ctx, `SELECT `+clientColumns+` FROM clients c ORDER BY c.id`)
}

func (r *Repository) UpdateClient(ctx context.Context, client *domain.Client) error {
	query := `
		UPDATE clients
		SET
			name = $1,
			phone = $2,
			email = $3,
			location = $4,
			time_shift = $5,
			price_per_litre = $6,
			quantity = $7,
			priority_status = $8,
			version = version + 1
		WHERE id = $9 AND version = $10
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{
		client.Name,
		client.Phone,
		client.Email,
		client.Location,
		client.TimeShift,
		client.PricePerLitre,
		client.Quantity,
		client.PriorityStatus,
		client.ID,
		client.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&client.Version); err != nil {
		return mapUpdateError(err)
	}

	return nil
}

// DeleteClient also drops the client's assignment, daily records and history through
// ON DELETE CASCADE.
func (r *Repository) DeleteClient(ctx context.Context, id int64) error {
	query := `
		DELETE FROM clients WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return mapError(err)
	}

	return nil
}
