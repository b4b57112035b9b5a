package domain

import "fmt"

type Shift string

const (
	ShiftAM Shift = "AM"
	ShiftPM Shift = "PM"
)

func ParseShift(s string) (Shift, error) {
	switch Shift(s) {
	case ShiftAM, ShiftPM:
		return Shift(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidShift, s)
	}
}

func (s Shift) Valid() bool {
	return s == ShiftAM || s == ShiftPM
}
