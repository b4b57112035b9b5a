// Package assignment owns the staff to client edge. A client has at most one staff
// member at a time; the edge is not scoped to a shift or a date.
package assignment

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
	"github.com/gaushala-dev/milk-delivery/backend/internal/lock"
)

type Store interface {
	GetStaffByID(ctx context.Context, id int64) (*domain.Staff, error)
	GetClientByID(ctx context.Context, id int64) (*domain.Client, error)
	// FindAssignment returns domain.ErrRecordNotFound when the client is unassigned.
	FindAssignment(ctx context.Context, clientID int64) (*domain.Assignment, error)
	// CreateAssignment returns domain.ErrAlreadyAssigned if the client gained a holder
	// in the meantime.
	CreateAssignment(ctx context.Context, a *domain.Assignment) error
	// DeleteAssignment returns domain.ErrRecordNotFound when no such edge exists.
	DeleteAssignment(ctx context.Context, staffID, clientID int64) error
	FindClientsByStaff(ctx context.Context, staffID int64) ([]*domain.Client, error)
	FindClientsByStaffAndShift(ctx context.Context, staffID int64, shift domain.Shift) ([]*domain.Client, error)
}

type Index struct {
	store  Store
	locker lock.Locker
}

func NewIndex(store Store, locker lock.Locker) *Index {
	return &Index{store: store, locker: locker}
}

// Assign creates the (staff, client) edge. Assigning a client to the staff member
// who already holds it succeeds without change.
func (ix *Index) Assign(ctx context.Context, staffID, clientID int64) (*domain.Assignment, error) {
	unlock, err := ix.locker.Lock(ctx, lock.ClientKey(clientID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := ix.store.GetStaffByID(ctx, staffID); err != nil {
		return nil, fmt.Errorf("staff %d: %w", staffID, err)
	}
	if _, err := ix.store.GetClientByID(ctx, clientID); err != nil {
		return nil, fmt.Errorf("client %d: %w", clientID, err)
	}

	current, err := ix.store.FindAssignment(ctx, clientID)
	switch {
	case err == nil:
		if current.StaffID == staffID {
			return current, nil
		}
		return nil, ix.alreadyAssigned(ctx, current)
	case !errors.Is(err, domain.ErrRecordNotFound):
		return nil, err
	}

	a := &domain.Assignment{StaffID: staffID, ClientID: clientID}
	if err := ix.store.CreateAssignment(ctx, a); err != nil {
		if errors.Is(err, domain.ErrAlreadyAssigned) {
			// lost a race with a writer that bypassed our lock, report who won
			if current, findErr := ix.store.FindAssignment(ctx, clientID); findErr == nil {
				return nil, ix.alreadyAssigned(ctx, current)
			}
		}
		return nil, err
	}

	return a, nil
}

func (ix *Index) alreadyAssigned(ctx context.Context, current *domain.Assignment) error {
	aae := &domain.AlreadyAssignedError{ClientID: current.ClientID, HolderID: current.StaffID}
	holder, err := ix.store.GetStaffByID(ctx, current.StaffID)
	if err != nil {
		if !errors.Is(err, domain.ErrRecordNotFound) {
			return err
		}
		aae.HolderName = fmt.Sprintf("staff #%d", current.StaffID)
	} else {
		aae.HolderName = holder.Name
	}
	return aae
}

// Unassign removes the edge. Sessions and daily records already written for the pair
// are left alone; the client simply stops showing up in future working sets.
func (ix *Index) Unassign(ctx context.Context, staffID, clientID int64) error {
	unlock, err := ix.locker.Lock(ctx, lock.ClientKey(clientID))
	if err != nil {
		return err
	}
	defer unlock()

	if err := ix.store.DeleteAssignment(ctx, staffID, clientID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.ErrNotAssigned
		}
		return err
	}
	return nil
}

func (ix *Index) ListByStaff(ctx context.Context, staffID int64) ([]*domain.Client, error) {
	clients, err := ix.store.FindClientsByStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	SortClients(clients)
	return clients, nil
}

func (ix *Index) ListByStaffAndShift(ctx context.Context, staffID int64, shift domain.Shift) ([]*domain.Client, error) {
	if !shift.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidShift, shift)
	}
	clients, err := ix.store.FindClientsByStaffAndShift(ctx, staffID, shift)
	if err != nil {
		return nil, err
	}
	SortClients(clients)
	return clients, nil
}

// SortClients orders clients the way the staff portal lists them: priority clients
// first, then by name, then by id.
func SortClients(clients []*domain.Client) {
	slices.SortStableFunc(clients, func(a, b *domain.Client) int {
		if a.PriorityStatus != b.PriorityStatus {
			if a.PriorityStatus {
				return -1
			}
			return 1
		}
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
