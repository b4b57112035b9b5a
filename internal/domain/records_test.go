package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRejectsMissingFields(t *testing.T) {
	price := decimal.NewFromInt(40)
	qty := decimal.NewFromInt(2)

	c, err := NewClient("Sharma", ShiftAM, price, qty)
	require.NoError(t, err)
	assert.Equal(t, ShiftAM, c.TimeShift)

	_, err = NewClient("", ShiftAM, price, qty)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = NewClient("Sharma", Shift("NOON"), price, qty)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = NewClient("Sharma", ShiftPM, price, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = NewClient("Sharma", ShiftPM, decimal.NewFromInt(-1), qty)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestNewShiftSession(t *testing.T) {
	d := Date{2024, time.March, 2}

	s, err := NewShiftSession(1, d, ShiftPM)
	require.NoError(t, err)
	assert.Equal(t, ShiftPM, s.Shift)

	_, err = NewShiftSession(0, d, ShiftPM)
	assert.ErrorIs(t, err, ErrInvalidRecord)
	_, err = NewShiftSession(1, Date{}, ShiftPM)
	assert.ErrorIs(t, err, ErrInvalidRecord)
	_, err = NewShiftSession(1, d, "")
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestParseShift(t *testing.T) {
	s, err := ParseShift("PM")
	require.NoError(t, err)
	assert.Equal(t, ShiftPM, s)

	_, err = ParseShift("pm")
	assert.ErrorIs(t, err, ErrInvalidShift)
}

func TestAlreadyAssignedErrorIs(t *testing.T) {
	var err error = &AlreadyAssignedError{ClientID: 7, HolderID: 3, HolderName: "Ravi"}

	assert.True(t, errors.Is(err, ErrAlreadyAssigned))
	assert.Contains(t, err.Error(), "Ravi")

	var aae *AlreadyAssignedError
	require.True(t, errors.As(err, &aae))
	assert.Equal(t, int64(3), aae.HolderID)
}

func TestDeliveryRecordRevenue(t *testing.T) {
	r := DeliveryRecord{
		Status:        StatusDelivered,
		Quantity:      decimal.RequireFromString("1.5"),
		PricePerLitre: decimal.NewFromInt(60),
	}
	assert.True(t, r.Revenue().Equal(decimal.NewFromInt(90)))

	r.Status = StatusNotDelivered
	assert.True(t, r.Revenue().IsZero())
}
