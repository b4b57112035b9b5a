package domain

import "time"

// ShiftSession is a staff member's chosen shift for one calendar date. There is at most
// one per (StaffID, Date); choosing again replaces Shift in place.
type ShiftSession struct {
	StaffID   int64     `json:"staffID"`
	Date      Date      `json:"date"`
	Shift     Shift     `json:"shift"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewShiftSession(staffID int64, date Date, shift Shift) (*ShiftSession, error) {
	switch {
	case staffID <= 0:
		return nil, missingField("session", "staffID")
	case date.IsZero():
		return nil, missingField("session", "date")
	case !shift.Valid():
		return nil, missingField("session", "shift AM or PM")
	}
	return &ShiftSession{StaffID: staffID, Date: date, Shift: shift}, nil
}
