package seed

import (
	"context"
	"math/rand"
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
	"github.com/gaushala-dev/milk-delivery/backend/internal/memstore"
)

type countingProgress struct{ n int }

func (p *countingProgress) Add(n int) error {
	p.n += n
	return nil
}

func newSeeder(t *testing.T, store *memstore.Store, opts ...Option) *Seeder {
	t.Helper()
	opts = append([]Option{WithRand(rand.New(rand.NewSource(1)))}, opts...)
	s, err := NewSeeder(store, "changeme", "example.com", bcrypt.MinCost, opts...)
	require.NoError(t, err)
	return s
}

func loadBundledFixture(t *testing.T) *Fixture {
	t.Helper()
	file, err := os.Open("data/fixture.yaml")
	require.NoError(t, err)
	defer file.Close()

	f, err := LoadFixture(file)
	require.NoError(t, err)
	return f
}

func TestApplyFixture(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	bars := map[string]*countingProgress{}
	s := newSeeder(t, store, WithProgress(func(_ int, desc string) Progress {
		bars[desc] = &countingProgress{}
		return bars[desc]
	}))

	f := loadBundledFixture(t)
	res, err := s.ApplyFixture(ctx, f)
	require.NoError(t, err)

	assert.Equal(t, &Result{Staff: 2, Clients: 4, Assignments: 3, History: 3}, res)
	assert.Equal(t, 6, bars["fixture"].n)

	user, err := store.GetUserByUsername(ctx, "ravi")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, user.Role)
	assert.Equal(t, "ravi@example.com", user.Email)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("changeme")))

	ravi, err := store.GetStaffByUserID(ctx, user.ID)
	require.NoError(t, err)
	am, err := store.FindClientsByStaffAndShift(ctx, ravi.ID, domain.ShiftAM)
	require.NoError(t, err)
	require.Len(t, am, 1)
	assert.Equal(t, "Sharma", am[0].Name)

	history, err := store.GetClientHistory(ctx, am[0].ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.True(t, history[0].Quantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, domain.StatusNotDelivered, history[1].Status)
	assert.Equal(t, "Door locked", history[1].Reason)
	assert.True(t, history[2].Quantity.Equal(decimal.RequireFromString("2.5")))
}

func TestApplyFixtureTwiceDoesNotDuplicate(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	s := newSeeder(t, store)
	f := loadBundledFixture(t)

	_, err := s.ApplyFixture(ctx, f)
	require.NoError(t, err)
	res, err := s.ApplyFixture(ctx, f)
	require.NoError(t, err)

	assert.Zero(t, res.Staff)
	assert.Zero(t, res.Clients)
	assert.Zero(t, res.History)

	clients, err := store.GetAllClients(ctx)
	require.NoError(t, err)
	assert.Len(t, clients, 4)
}

func TestLoadFixtureRejectsUnknownFields(t *testing.T) {
	_, err := LoadFixture(strings.NewReader("staff:\n  - username: ravi\n    nickname: r\n"))
	assert.Error(t, err)
}

func TestApplyFixtureErrors(t *testing.T) {
	tests := []struct {
		name    string
		fixture string
	}{
		{"bad shift", "clients:\n  - name: A\n    timeShift: NOON\n    pricePerLitre: '1'\n    quantity: '1'\n"},
		{"bad price", "clients:\n  - name: A\n    timeShift: AM\n    pricePerLitre: cheap\n    quantity: '1'\n"},
		{"unknown staff", "clients:\n  - name: A\n    timeShift: AM\n    pricePerLitre: '1'\n    quantity: '1'\n    staff: nobody\n"},
		{"bad history status", "clients:\n  - name: A\n    timeShift: AM\n    pricePerLitre: '1'\n    quantity: '1'\n    history:\n      - date: '2024-03-01'\n        status: Pending\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := LoadFixture(strings.NewReader(tt.fixture))
			require.NoError(t, err)

			_, err = newSeeder(t, memstore.New()).ApplyFixture(context.Background(), f)
			assert.Error(t, err)
		})
	}
}

func TestRandomStaffAndClients(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	s := newSeeder(t, store)

	n, err := s.RandomStaff(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = s.RandomClients(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	assignments, err := store.GetAllAssignments(ctx)
	require.NoError(t, err)
	assert.Len(t, assignments, 7)

	perStaff := map[int64]int{}
	for _, a := range assignments {
		perStaff[a.StaffID]++
	}
	assert.Len(t, perStaff, 3)
}

func TestSimulate(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	s := newSeeder(t, store)

	_, err := s.ApplyFixture(ctx, loadBundledFixture(t))
	require.NoError(t, err)

	start := domain.Date{Year: 2024, Month: 4, Day: 28}
	end := domain.Date{Year: 2024, Month: 5, Day: 2}
	n, err := s.Simulate(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, 15, n)

	records, err := store.ListDeliveryRecordsBetween(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, records, 15)
	for _, r := range records {
		switch r.Status {
		case domain.StatusDelivered:
			assert.True(t, r.Quantity.IsPositive())
		case domain.StatusNotDelivered:
			assert.True(t, r.Quantity.IsZero())
			assert.Contains(t, NonDeliveryReasons, r.Reason)
		default:
			t.Fatalf("unexpected status %q", r.Status)
		}
	}

	_, err = s.Simulate(ctx, end, start)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}
