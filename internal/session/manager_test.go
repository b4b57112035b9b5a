package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
	"github.com/gaushala-dev/milk-delivery/backend/internal/lock"
	"github.com/gaushala-dev/milk-delivery/backend/internal/memstore"
	"github.com/gaushala-dev/milk-delivery/backend/internal/session"
)

var day = domain.Date{Year: 2024, Month: 3, Day: 2}

func setup(t *testing.T) (*session.Manager, int64) {
	t.Helper()
	store := memstore.New()
	st, err := domain.NewStaff("Ravi")
	require.NoError(t, err)
	require.NoError(t, store.CreateStaff(context.Background(), st))
	return session.NewManager(store, lock.NewKeyedMutex()), st.ID
}

func TestGetSessionBeforeSelection(t *testing.T) {
	m, staffID := setup(t)

	_, err := m.GetSession(context.Background(), staffID, day)
	assert.ErrorIs(t, err, domain.ErrNoSession)
}

func TestSelectShiftReplacesInPlace(t *testing.T) {
	m, staffID := setup(t)
	ctx := context.Background()

	first, err := m.SelectShift(ctx, staffID, day, domain.ShiftAM)
	require.NoError(t, err)
	assert.Empty(t, first.Previous)
	assert.False(t, first.Changed())

	second, err := m.SelectShift(ctx, staffID, day, domain.ShiftPM)
	require.NoError(t, err)
	assert.Equal(t, domain.ShiftAM, second.Previous)
	assert.True(t, second.Changed())

	sess, err := m.GetSession(ctx, staffID, day)
	require.NoError(t, err)
	assert.Equal(t, domain.ShiftPM, sess.Shift)

	// the next day is independent
	_, err = m.GetSession(ctx, staffID, day.AddDays(1))
	assert.ErrorIs(t, err, domain.ErrNoSession)
}

func TestSelectShiftSameShiftIsNotAChange(t *testing.T) {
	m, staffID := setup(t)
	ctx := context.Background()

	_, err := m.SelectShift(ctx, staffID, day, domain.ShiftAM)
	require.NoError(t, err)
	sel, err := m.SelectShift(ctx, staffID, day, domain.ShiftAM)
	require.NoError(t, err)
	assert.False(t, sel.Changed())
}

func TestSelectShiftValidation(t *testing.T) {
	m, staffID := setup(t)
	ctx := context.Background()

	_, err := m.SelectShift(ctx, staffID, day, domain.Shift("night"))
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)

	_, err = m.SelectShift(ctx, staffID, domain.Date{}, domain.ShiftAM)
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)

	_, err = m.SelectShift(ctx, staffID+100, day, domain.ShiftAM)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestReconcile(t *testing.T) {
	m, staffID := setup(t)
	ctx := context.Background()

	_, _, err := m.Reconcile(ctx, staffID, day, domain.ShiftAM)
	assert.ErrorIs(t, err, domain.ErrNoSession)

	_, err = m.SelectShift(ctx, staffID, day, domain.ShiftPM)
	require.NoError(t, err)

	tests := []struct {
		hint    domain.Shift
		matches bool
	}{
		{"", true},
		{domain.ShiftPM, true},
		{domain.ShiftAM, false},
	}
	for _, tt := range tests {
		t.Run("hint "+string(tt.hint), func(t *testing.T) {
			sess, matches, err := m.Reconcile(ctx, staffID, day, tt.hint)
			require.NoError(t, err)
			assert.Equal(t, domain.ShiftPM, sess.Shift)
			assert.Equal(t, tt.matches, matches)
		})
	}
}
