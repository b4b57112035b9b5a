package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound  = errors.New("record not found")
	ErrEditConflict    = errors.New("edit conflict")
	ErrDuplicate       = errors.New("duplicate record")
	ErrAlreadyAssigned = errors.New("client already assigned")
	ErrNotAssigned     = errors.New("client not assigned to staff")
	ErrNoSession       = errors.New("no shift selected for this date")
	ErrNotInWorkingSet = errors.New("client not in working set")
	ErrInvalidShift    = errors.New("invalid shift")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidRecord   = errors.New("invalid record")
)

// AlreadyAssignedError names the staff member currently holding the client so the
// caller can tell the user who to unassign first.
type AlreadyAssignedError struct {
	ClientID   int64
	HolderID   int64
	HolderName string
}

func (e *AlreadyAssignedError) Error() string {
	return fmt.Sprintf("client %d is already assigned to %s", e.ClientID, e.HolderName)
}

func (e *AlreadyAssignedError) Is(target error) bool {
	return target == ErrAlreadyAssigned
}

func missingField(record, field string) error {
	return fmt.Errorf("%w: %s requires %s", ErrInvalidRecord, record, field)
}
