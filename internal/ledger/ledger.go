// Package ledger tracks per-day delivery status for the clients a staff member serves
// under their selected shift.
package ledger

import (
	"context"
	"errors"

	"github.com/gaushala-dev/milk-delivery/backend/internal/assignment"
	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
	"github.com/gaushala-dev/milk-delivery/backend/internal/lock"
	"github.com/gaushala-dev/milk-delivery/backend/internal/session"
)

type Store interface {
	// FindDeliveryRecord returns domain.ErrRecordNotFound for a pending client.
	FindDeliveryRecord(ctx context.Context, staffID, clientID int64, date domain.Date) (*domain.DeliveryRecord, error)
	ListDeliveryRecordsByStaffAndDate(ctx context.Context, staffID int64, date domain.Date) ([]*domain.DeliveryRecord, error)
	// UpsertDeliveryRecord overwrites the record for (StaffID, ClientID, Date) and
	// appends the matching event to the client's delivery history.
	UpsertDeliveryRecord(ctx context.Context, r *domain.DeliveryRecord) error
}

// Entry is one line of a working set. Record is nil while the client is pending.
type Entry struct {
	Client *domain.Client         `json:"client"`
	Status domain.DeliveryStatus  `json:"status"`
	Reason string                 `json:"reason,omitempty"`
	Record *domain.DeliveryRecord `json:"record,omitempty"`
}

type WorkingSet struct {
	Session *domain.ShiftSession `json:"session"`
	Entries []Entry              `json:"entries"`
}

type Ledger struct {
	store    Store
	index    *assignment.Index
	sessions *session.Manager
	locker   lock.Locker
}

func New(store Store, index *assignment.Index, sessions *session.Manager, locker lock.Locker) *Ledger {
	return &Ledger{store: store, index: index, sessions: sessions, locker: locker}
}

// GetWorkingSet lists the clients assigned to staffID whose shift matches the session
// for date, with their status for that date. Records for clients outside the current
// shift are kept in the store but not shown.
func (l *Ledger) GetWorkingSet(ctx context.Context, staffID int64, date domain.Date) (*WorkingSet, error) {
	sess, err := l.sessions.GetSession(ctx, staffID, date)
	if err != nil {
		return nil, err
	}

	clients, err := l.index.ListByStaffAndShift(ctx, staffID, sess.Shift)
	if err != nil {
		return nil, err
	}

	records, err := l.store.ListDeliveryRecordsByStaffAndDate(ctx, staffID, date)
	if err != nil {
		return nil, err
	}
	byClient := make(map[int64]*domain.DeliveryRecord, len(records))
	for _, r := range records {
		byClient[r.ClientID] = r
	}

	ws := &WorkingSet{Session: sess, Entries: make([]Entry, 0, len(clients))}
	for _, c := range clients {
		e := Entry{Client: c, Status: domain.StatusPending}
		if r, ok := byClient[c.ID]; ok {
			e.Status = r.Status
			e.Reason = r.Reason
			e.Record = r
		}
		ws.Entries = append(ws.Entries, e)
	}
	return ws, nil
}

// MarkDelivered sets the client's status for date to Delivered. Repeating the call is
// a no-op.
func (l *Ledger) MarkDelivered(ctx context.Context, staffID, clientID int64, date domain.Date) (*domain.DeliveryRecord, error) {
	return l.mark(ctx, staffID, clientID, date, domain.StatusDelivered, "")
}

// MarkNotDelivered sets the client's status for date to Not Delivered. The reason is
// stored as given; the last call wins.
func (l *Ledger) MarkNotDelivered(ctx context.Context, staffID, clientID int64, date domain.Date, reason string) (*domain.DeliveryRecord, error) {
	return l.mark(ctx, staffID, clientID, date, domain.StatusNotDelivered, reason)
}

func (l *Ledger) mark(ctx context.Context, staffID, clientID int64, date domain.Date, status domain.DeliveryStatus, reason string) (*domain.DeliveryRecord, error) {
	// same key as SelectShift, a shift change cannot interleave with a mark
	unlock, err := l.locker.Lock(ctx, lock.SessionKey(staffID, date))
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := l.sessions.GetSession(ctx, staffID, date)
	if err != nil {
		return nil, err
	}

	client, err := l.workingSetClient(ctx, staffID, clientID, sess.Shift)
	if err != nil {
		return nil, err
	}

	existing, err := l.store.FindDeliveryRecord(ctx, staffID, clientID, date)
	switch {
	case err == nil:
		if existing.Status == status && existing.Reason == reason {
			return existing, nil
		}
	case !errors.Is(err, domain.ErrRecordNotFound):
		return nil, err
	}

	r := &domain.DeliveryRecord{
		StaffID:       staffID,
		ClientID:      clientID,
		Date:          date,
		Shift:         sess.Shift,
		Status:        status,
		Quantity:      client.Quantity,
		PricePerLitre: client.PricePerLitre,
		Reason:        reason,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := l.store.UpsertDeliveryRecord(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (l *Ledger) workingSetClient(ctx context.Context, staffID, clientID int64, shift domain.Shift) (*domain.Client, error) {
	clients, err := l.index.ListByStaffAndShift(ctx, staffID, shift)
	if err != nil {
		return nil, err
	}
	for _, c := range clients {
		if c.ID == clientID {
			return c, nil
		}
	}
	return nil, domain.ErrNotInWorkingSet
}
