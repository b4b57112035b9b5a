// Package session records which shift (AM or PM) a staff member works on a given
// calendar date. No delivery can be recorded for a date until a shift is chosen.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
	"github.com/gaushala-dev/milk-delivery/backend/internal/lock"
)

type Store interface {
	GetStaffByID(ctx context.Context, id int64) (*domain.Staff, error)
	// FindSession returns domain.ErrRecordNotFound when no shift was chosen.
	FindSession(ctx context.Context, staffID int64, date domain.Date) (*domain.ShiftSession, error)
	UpsertSession(ctx context.Context, s *domain.ShiftSession) error
}

type Manager struct {
	store  Store
	locker lock.Locker
}

func NewManager(store Store, locker lock.Locker) *Manager {
	return &Manager{store: store, locker: locker}
}

// Selection is the outcome of SelectShift. Previous is empty for a first selection.
type Selection struct {
	Session  *domain.ShiftSession `json:"session"`
	Previous domain.Shift         `json:"previous,omitempty"`
}

func (s Selection) Changed() bool {
	return s.Previous != "" && s.Previous != s.Session.Shift
}

// SelectShift creates the session for (staffID, date) or replaces its shift. Daily
// records written under the previous shift are kept; they simply drop out of the
// working set until that shift is chosen again.
func (m *Manager) SelectShift(ctx context.Context, staffID int64, date domain.Date, shift domain.Shift) (*Selection, error) {
	sess, err := domain.NewShiftSession(staffID, date, shift)
	if err != nil {
		return nil, err
	}

	unlock, err := m.locker.Lock(ctx, lock.SessionKey(staffID, date))
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := m.store.GetStaffByID(ctx, staffID); err != nil {
		return nil, fmt.Errorf("staff %d: %w", staffID, err)
	}

	sel := &Selection{Session: sess}
	current, err := m.store.FindSession(ctx, staffID, date)
	switch {
	case err == nil:
		sel.Previous = current.Shift
	case !errors.Is(err, domain.ErrRecordNotFound):
		return nil, err
	}

	if err := m.store.UpsertSession(ctx, sess); err != nil {
		return nil, err
	}
	return sel, nil
}

// GetSession returns domain.ErrNoSession until a shift has been selected for the date.
func (m *Manager) GetSession(ctx context.Context, staffID int64, date domain.Date) (*domain.ShiftSession, error) {
	sess, err := m.store.FindSession(ctx, staffID, date)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrNoSession
		}
		return nil, err
	}
	return sess, nil
}

// Reconcile checks a shift remembered by the client against the stored session. The
// stored session always wins; matches reports whether the hint agreed with it. An
// empty hint always matches.
func (m *Manager) Reconcile(ctx context.Context, staffID int64, date domain.Date, hint domain.Shift) (sess *domain.ShiftSession, matches bool, err error) {
	sess, err = m.GetSession(ctx, staffID, date)
	if err != nil {
		return nil, false, err
	}
	return sess, hint == "" || hint == sess.Shift, nil
}
