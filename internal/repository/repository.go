package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gaushala-dev/milk-delivery/backend/internal/config"
	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
)

//go:embed schema.sql
var schema string

const (
	pgUniqueViolation = "23505"

	assignmentClientConstraint = "assignments_client_id_key"
)

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

// Migrate creates any missing table. Every statement in schema.sql is idempotent.
func (r *Repository) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// mapError translates driver errors into the domain errors the engine and the
// handlers switch on.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrRecordNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if pgErr.ConstraintName == assignmentClientConstraint {
			return domain.ErrAlreadyAssigned
		}
		return fmt.Errorf("%w: %s", domain.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

// mapUpdateError is mapError for optimistic updates, where a missing row means the
// version moved on.
func mapUpdateError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrEditConflict
	}
	return mapError(err)
}
