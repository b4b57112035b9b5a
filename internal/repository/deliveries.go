package repository

import (
	"context"
	"time"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
)

const deliveryColumns = `staff_id, client_id, delivery_date, shift, status, quantity, price_per_litre, reason, updated_at`

func scanDelivery(row rowScanner) (*domain.DeliveryRecord, error) {
	d := &domain.DeliveryRecord{}
	dst := []any{&d.StaffID, &d.ClientID, &d.Date, &d.Shift, &d.Status, &d.Quantity, &d.PricePerLitre, &d.Reason, &d.UpdatedAt}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *Repository) queryDeliveries(ctx context.Context, query string, args ...any) ([]*domain.DeliveryRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*domain.DeliveryRecord, 0)
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *Repository) FindDeliveryRecord(ctx context.Context, staffID, clientID int64, date domain.Date) (*domain.DeliveryRecord, error) {
	query := `
		SELECT ` + deliveryColumns + `
		FROM daily_deliveries
		WHERE staff_id = $1 AND client_id = $2 AND delivery_date = $3
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	d, err := scanDelivery(r.dbpool.QueryRowContext(ctx, query, staffID, clientID, date))
	if err != nil {
		return nil, mapError(err)
	}

	return d, nil
}

// UpsertDeliveryRecord writes the daily record and appends the matching history event
// in one transaction, so the bill and the ledger never disagree.
func (r *Repository) UpsertDeliveryRecord(ctx context.Context, d *domain.DeliveryRecord) error {
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
		INSERT INTO daily_deliveries (staff_id, client_id, delivery_date, shift, status, quantity, price_per_litre, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (staff_id, client_id, delivery_date)
		DO UPDATE SET
			shift = EXCLUDED.shift,
			status = EXCLUDED.status,
			quantity = EXCLUDED.quantity,
			price_per_litre = EXCLUDED.price_per_litre,
			reason = EXCLUDED.reason,
			updated_at = NOW()
		RETURNING updated_at
	`
	args := []any{d.StaffID, d.ClientID, d.Date, d.Shift, d.Status, d.Quantity, d.PricePerLitre, d.Reason}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&d.UpdatedAt); err != nil {
		return mapError(err)
	}

	ev := d.HistoryEvent()
	query = `
		INSERT INTO delivery_history (client_id, delivery_date, status, quantity, reason, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.ExecContext(ctx, query, d.ClientID, ev.Date, ev.Status, ev.Quantity, ev.Reason, ev.RecordedAt); err != nil {
		return mapError(err)
	}

	return tx.Commit()
}

func (r *Repository) ListDeliveryRecordsByStaffAndDate(ctx context.Context, staffID int64, date domain.Date) ([]*domain.DeliveryRecord, error) {
	query := `
		SELECT ` + deliveryColumns + `
		FROM daily_deliveries
		WHERE staff_id = $1 AND delivery_date = $2
		ORDER BY client_id
	`
	return r.queryDeliveries(ctx, query, staffID, date)
}

func (r *Repository) ListDeliveryRecordsByDate(ctx context.Context, date domain.Date) ([]*domain.DeliveryRecord, error) {
	query := `
		SELECT ` + deliveryColumns + `
		FROM daily_deliveries
		WHERE delivery_date = $1
		ORDER BY staff_id, client_id
	`
	return r.queryDeliveries(ctx, query, date)
}

func (r *Repository) ListDeliveryRecordsBetween(ctx context.Context, start, end domain.Date) ([]*domain.DeliveryRecord, error) {
	query := `
		SELECT ` + deliveryColumns + `
		FROM daily_deliveries
		WHERE delivery_date BETWEEN $1 AND $2
		ORDER BY delivery_date, staff_id, client_id
	`
	return r.queryDeliveries(ctx, query, start, end)
}

// AppendHistory adds a raw event without touching the daily ledger. Used by the seed
// tool to import past months.
func (r *Repository) AppendHistory(ctx context.Context, clientID int64, ev domain.HistoryEvent) error {
	query := `
		INSERT INTO delivery_history (client_id, delivery_date, status, quantity, reason, recorded_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var recordedAt *time.Time
	if !ev.RecordedAt.IsZero() {
		recordedAt = &ev.RecordedAt
	}
	if _, err := r.dbpool.ExecContext(ctx, query, clientID, ev.Date, ev.Status, ev.Quantity, ev.Reason, recordedAt); err != nil {
		return mapError(err)
	}

	return nil
}

func (r *Repository) GetClientHistory(ctx context.Context, clientID int64) ([]domain.HistoryEvent, error) {
	query := `
		SELECT delivery_date, status, quantity, reason, recorded_at
		FROM delivery_history
		WHERE client_id = $1
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]domain.HistoryEvent, 0)
	for rows.Next() {
		var ev domain.HistoryEvent
		if err := rows.Scan(&ev.Date, &ev.Status, &ev.Quantity, &ev.Reason, &ev.RecordedAt); err != nil {
			return nil, err
		}
		history = append(history, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return history, nil
}
