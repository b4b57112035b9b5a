package repository

import (
	"context"
	"time"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
)

const staffColumns = `id, user_id, name, phone, location, is_available, created_at, version`

func scanStaff(row rowScanner) (*domain.Staff, error) {
	st := &domain.Staff{}
	dst := []any{&st.ID, &st.UserID, &st.Name, &st.Phone, &st.Location, &st.IsAvailable, &st.CreatedAt, &st.Version}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return st, nil
}

func (r *Repository) CreateStaff(ctx context.Context, st *domain.Staff) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO staff (user_id, name, phone, location, is_available)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	args := []any{st.UserID, st.Name, st.Phone, st.Location, st.IsAvailable}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&st.ID, &st.CreatedAt, &st.Version); err != nil {
		return mapError(err)
	}

	return nil
}

// CreateStaffAccount inserts the login user and the staff row linked to it in one
// transaction.
func (r *Repository) CreateStaffAccount(ctx context.Context, user *domain.User, st *domain.Staff) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO users (username, password_hash, full_name, email, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, version
	`
	args := []any{user.Username, user.PasswordHash, user.FullName, user.Email, user.Role}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.Version); err != nil {
		return mapError(err)
	}

	st.UserID = &user.ID
	query = `
		INSERT INTO staff (user_id, name, phone, location, is_available)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`
	args = []any{st.UserID, st.Name, st.Phone, st.Location, st.IsAvailable}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&st.ID, &st.CreatedAt, &st.Version); err != nil {
		return mapError(err)
	}

	return tx.Commit()
}

func (r *Repository) GetStaffByID(ctx context.Context, id int64) (*domain.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	st, err := scanStaff(r.dbpool.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}

	return st, nil
}

func (r *Repository) GetStaffByUserID(ctx context.Context, userID int64) (*domain.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE user_id = $1`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	st, err := scanStaff(r.dbpool.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, mapError(err)
	}

	return st, nil
}

func (r *Repository) GetAllStaff(ctx context.Context) ([]*domain.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff ORDER BY id`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	all := make([]*domain.Staff, 0)
	for rows.Next() {
		st, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, st)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return all, nil
}

func (r *Repository) UpdateStaff(ctx context.Context, st *domain.Staff) error {
	query := `
		UPDATE staff
		SET
			name = $1,
			phone = $2,
			location = $3,
			is_available = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{st.Name, st.Phone, st.Location, st.IsAvailable, st.ID, st.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&st.Version); err != nil {
		return mapUpdateError(err)
	}

	return nil
}

// DeleteStaff cascades to the staff member's assignments, sessions and daily records.
// Client history is kept for billing.
func (r *Repository) DeleteStaff(ctx context.Context, id int64) error {
	query := `
		DELETE FROM staff WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return mapError(err)
	}

	return nil
}
