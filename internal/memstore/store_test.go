package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
)

var day = domain.Date{Year: 2024, Month: 3, Day: 2}

func seeded(t *testing.T) (*Store, *domain.Staff, *domain.Client) {
	t.Helper()
	ctx := context.Background()
	s := New()
	s.SetClock(func() time.Time { return time.Date(2024, 3, 2, 6, 0, 0, 0, time.UTC) })

	st := &domain.Staff{Name: "Ravi"}
	require.NoError(t, s.CreateStaff(ctx, st))
	c := &domain.Client{Name: "Sharma", TimeShift: domain.ShiftAM, Quantity: decimal.NewFromInt(1)}
	require.NoError(t, s.CreateClient(ctx, c))
	require.NoError(t, s.CreateAssignment(ctx, &domain.Assignment{StaffID: st.ID, ClientID: c.ID}))
	return s, st, c
}

func TestUsernamesAreUnique(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &domain.User{Username: "ravi"}))
	assert.ErrorIs(t, s.CreateUser(ctx, &domain.User{Username: "ravi"}), domain.ErrDuplicate)
}

func TestUpdateClientChecksVersion(t *testing.T) {
	s, _, c := seeded(t)
	ctx := context.Background()

	stale := *c
	c.Name = "Sharma ji"
	require.NoError(t, s.UpdateClient(ctx, c))
	assert.Equal(t, int32(2), c.Version)

	stale.Name = "lost update"
	assert.ErrorIs(t, s.UpdateClient(ctx, &stale), domain.ErrEditConflict)

	got, err := s.GetClientByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sharma ji", got.Name)
}

func TestCreateAssignmentKeepsOneHolder(t *testing.T) {
	s, _, c := seeded(t)
	ctx := context.Background()

	other := &domain.Staff{Name: "Meena"}
	require.NoError(t, s.CreateStaff(ctx, other))
	assert.ErrorIs(t, s.CreateAssignment(ctx, &domain.Assignment{StaffID: other.ID, ClientID: c.ID}), domain.ErrAlreadyAssigned)
	assert.ErrorIs(t, s.DeleteAssignment(ctx, other.ID, c.ID), domain.ErrRecordNotFound)
}

func TestUpsertSessionKeepsCreatedAt(t *testing.T) {
	s, st, _ := seeded(t)
	ctx := context.Background()

	first := &domain.ShiftSession{StaffID: st.ID, Date: day, Shift: domain.ShiftAM}
	require.NoError(t, s.UpsertSession(ctx, first))

	later := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return later })
	require.NoError(t, s.UpsertSession(ctx, &domain.ShiftSession{StaffID: st.ID, Date: day, Shift: domain.ShiftPM}))

	got, err := s.FindSession(ctx, st.ID, day)
	require.NoError(t, err)
	assert.Equal(t, domain.ShiftPM, got.Shift)
	assert.Equal(t, first.CreatedAt, got.CreatedAt)
	assert.Equal(t, later, got.UpdatedAt)
}

func TestUpsertDeliveryRecordAppendsHistory(t *testing.T) {
	s, st, c := seeded(t)
	ctx := context.Background()

	r := &domain.DeliveryRecord{StaffID: st.ID, ClientID: c.ID, Date: day, Shift: domain.ShiftAM, Status: domain.StatusNotDelivered, Reason: "away"}
	require.NoError(t, s.UpsertDeliveryRecord(ctx, r))
	r2 := *r
	r2.Status, r2.Reason = domain.StatusDelivered, ""
	require.NoError(t, s.UpsertDeliveryRecord(ctx, &r2))

	got, err := s.FindDeliveryRecord(ctx, st.ID, c.ID, day)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, got.Status)

	history, err := s.GetClientHistory(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.StatusNotDelivered, history[0].Status)
	assert.Equal(t, domain.StatusDelivered, history[1].Status)

	between, err := s.ListDeliveryRecordsBetween(ctx, day.AddDays(-1), day)
	require.NoError(t, err)
	assert.Len(t, between, 1)
	none, err := s.ListDeliveryRecordsByDate(ctx, day.AddDays(1))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteCascades(t *testing.T) {
	s, st, c := seeded(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertSession(ctx, &domain.ShiftSession{StaffID: st.ID, Date: day, Shift: domain.ShiftAM}))
	require.NoError(t, s.UpsertDeliveryRecord(ctx, &domain.DeliveryRecord{StaffID: st.ID, ClientID: c.ID, Date: day, Shift: domain.ShiftAM, Status: domain.StatusDelivered}))

	require.NoError(t, s.DeleteStaff(ctx, st.ID))

	_, err := s.FindAssignment(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	_, err = s.FindSession(ctx, st.ID, day)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	_, err = s.FindDeliveryRecord(ctx, st.ID, c.ID, day)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)

	// the client's billing history outlives the staff member
	history, err := s.GetClientHistory(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	require.NoError(t, s.DeleteClient(ctx, c.ID))
	history, err = s.GetClientHistory(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestCreateStaffAccountLinksUser(t *testing.T) {
	s := New()
	ctx := context.Background()

	u := &domain.User{Username: "ravi", Role: domain.RoleStaff}
	st := &domain.Staff{Name: "Ravi"}
	require.NoError(t, s.CreateStaffAccount(ctx, u, st))
	require.NotNil(t, st.UserID)
	assert.Equal(t, u.ID, *st.UserID)

	got, err := s.GetStaffByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, st.ID, got.ID)

	err = s.CreateStaffAccount(ctx, &domain.User{Username: "ravi"}, &domain.Staff{Name: "Ravi 2"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}
