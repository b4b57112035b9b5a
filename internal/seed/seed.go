// Package seed fills a store with staff, clients, assignments and past deliveries,
// either from a YAML fixture or from random data.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/gaushala-dev/milk-delivery/backend/internal/assignment"
	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
	"github.com/gaushala-dev/milk-delivery/backend/internal/lock"
	"github.com/gaushala-dev/milk-delivery/backend/internal/utils"
)

type Store interface {
	assignment.Store
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	CreateStaffAccount(ctx context.Context, user *domain.User, st *domain.Staff) error
	GetStaffByUserID(ctx context.Context, userID int64) (*domain.Staff, error)
	GetAllStaff(ctx context.Context) ([]*domain.Staff, error)
	CreateClient(ctx context.Context, client *domain.Client) error
	GetAllClients(ctx context.Context) ([]*domain.Client, error)
	GetAllAssignments(ctx context.Context) ([]*domain.Assignment, error)
	UpsertDeliveryRecord(ctx context.Context, r *domain.DeliveryRecord) error
	AppendHistory(ctx context.Context, clientID int64, ev domain.HistoryEvent) error
}

// Progress is satisfied by *progressbar.ProgressBar.
type Progress interface {
	Add(n int) error
}

type noProgress struct{}

func (noProgress) Add(int) error { return nil }

var NonDeliveryReasons = []string{
	"Door locked",
	"Customer out of town",
	"Customer asked to skip",
	"Payment pending",
	"Vehicle breakdown",
}

type Seeder struct {
	store        Store
	index        *assignment.Index
	passwordHash string
	emailDomain  string
	rng          *rand.Rand
	logger       *slog.Logger
	newProgress  func(total int, description string) Progress
}

type Option func(*Seeder)

func WithProgress(fn func(total int, description string) Progress) Option {
	return func(s *Seeder) { s.newProgress = fn }
}

func WithRand(rng *rand.Rand) Option {
	return func(s *Seeder) { s.rng = rng }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Seeder) { s.logger = logger }
}

// NewSeeder hashes password once; every seeded staff account logs in with it.
func NewSeeder(store Store, password, emailDomain string, cost int, opts ...Option) (*Seeder, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	s := &Seeder{
		store:        store,
		index:        assignment.NewIndex(store, lock.NewKeyedMutex()),
		passwordHash: string(hash),
		emailDomain:  emailDomain,
		rng:          rand.New(rand.NewSource(rand.Int63())),
		logger:       slog.Default(),
		newProgress:  func(int, string) Progress { return noProgress{} },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type Result struct {
	Staff       int
	Clients     int
	Assignments int
	History     int
}

/**********************************************
 * fixtures
 **********************************************/

type Fixture struct {
	Staff   []StaffFixture  `yaml:"staff"`
	Clients []ClientFixture `yaml:"clients"`
}

type StaffFixture struct {
	Username string `yaml:"username"`
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Phone    string `yaml:"phone"`
	Location string `yaml:"location"`
}

type ClientFixture struct {
	Name          string           `yaml:"name"`
	Phone         string           `yaml:"phone"`
	Email         string           `yaml:"email"`
	Location      string           `yaml:"location"`
	TimeShift     string           `yaml:"timeShift"`
	PricePerLitre string           `yaml:"pricePerLitre"`
	Quantity      string           `yaml:"quantity"`
	Priority      bool             `yaml:"priority"`
	Staff         string           `yaml:"staff"` // username of the assigned staff member
	History       []HistoryFixture `yaml:"history"`
}

type HistoryFixture struct {
	Date     string `yaml:"date"`
	Status   string `yaml:"status"`
	Quantity string `yaml:"quantity"`
	Reason   string `yaml:"reason"`
}

func LoadFixture(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	f := &Fixture{}
	if err := dec.Decode(f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return f, nil
}

func (f ClientFixture) client() (*domain.Client, error) {
	shift, err := domain.ParseShift(f.TimeShift)
	if err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(f.PricePerLitre)
	if err != nil {
		return nil, fmt.Errorf("pricePerLitre %q: %w", f.PricePerLitre, err)
	}
	qty, err := decimal.NewFromString(f.Quantity)
	if err != nil {
		return nil, fmt.Errorf("quantity %q: %w", f.Quantity, err)
	}

	c, err := domain.NewClient(f.Name, shift, price, qty)
	if err != nil {
		return nil, err
	}
	c.Phone = f.Phone
	c.Email = f.Email
	c.Location = f.Location
	c.PriorityStatus = f.Priority
	return c, nil
}

func (f HistoryFixture) event(defaultQty decimal.Decimal) (domain.HistoryEvent, error) {
	date, err := domain.ParseDate(f.Date)
	if err != nil {
		return domain.HistoryEvent{}, err
	}
	ev := domain.HistoryEvent{Date: date, Status: domain.DeliveryStatus(f.Status), Reason: f.Reason}
	switch ev.Status {
	case domain.StatusDelivered:
		ev.Quantity = defaultQty
		if f.Quantity != "" {
			if ev.Quantity, err = decimal.NewFromString(f.Quantity); err != nil {
				return domain.HistoryEvent{}, fmt.Errorf("quantity %q: %w", f.Quantity, err)
			}
		}
	case domain.StatusNotDelivered:
		ev.Quantity = decimal.Zero
	default:
		return domain.HistoryEvent{}, fmt.Errorf("%w: history status %q", domain.ErrInvalidRecord, f.Status)
	}
	return ev, nil
}

// ApplyFixture is safe to run more than once: existing usernames and clients with the
// same name and phone are reused instead of duplicated. History is only imported for
// clients created by this run.
func (s *Seeder) ApplyFixture(ctx context.Context, f *Fixture) (*Result, error) {
	res := &Result{}
	staffByUsername := make(map[string]*domain.Staff, len(f.Staff))

	bar := s.newProgress(len(f.Staff)+len(f.Clients), "fixture")

	for _, sf := range f.Staff {
		st, created, err := s.ensureStaff(ctx, sf)
		if err != nil {
			return res, fmt.Errorf("staff %q: %w", sf.Username, err)
		}
		if created {
			res.Staff++
		}
		staffByUsername[sf.Username] = st
		_ = bar.Add(1)
	}

	existing, err := s.store.GetAllClients(ctx)
	if err != nil {
		return res, err
	}

	for _, cf := range f.Clients {
		c, err := cf.client()
		if err != nil {
			return res, fmt.Errorf("client %q: %w", cf.Name, err)
		}

		if found := findClient(existing, c.Name, c.Phone); found != nil {
			c = found
		} else {
			if err := s.store.CreateClient(ctx, c); err != nil {
				return res, fmt.Errorf("client %q: %w", cf.Name, err)
			}
			res.Clients++

			for _, hf := range cf.History {
				ev, err := hf.event(c.Quantity)
				if err != nil {
					return res, fmt.Errorf("client %q history: %w", cf.Name, err)
				}
				if err := s.store.AppendHistory(ctx, c.ID, ev); err != nil {
					return res, err
				}
				res.History++
			}
		}

		if cf.Staff != "" {
			st, ok := staffByUsername[cf.Staff]
			if !ok {
				return res, fmt.Errorf("client %q: unknown staff %q", cf.Name, cf.Staff)
			}
			if _, err := s.index.Assign(ctx, st.ID, c.ID); err != nil {
				return res, fmt.Errorf("client %q: %w", cf.Name, err)
			}
			res.Assignments++
		}
		_ = bar.Add(1)
	}

	s.logger.Info("fixture applied",
		slog.Int("staff", res.Staff),
		slog.Int("clients", res.Clients),
		slog.Int("assignments", res.Assignments),
		slog.Int("history", res.History),
	)
	return res, nil
}

func findClient(clients []*domain.Client, name, phone string) *domain.Client {
	for _, c := range clients {
		if c.Name == name && c.Phone == phone {
			return c
		}
	}
	return nil
}

func (s *Seeder) ensureStaff(ctx context.Context, sf StaffFixture) (*domain.Staff, bool, error) {
	user, err := s.store.GetUserByUsername(ctx, sf.Username)
	switch {
	case err == nil:
		st, err := s.store.GetStaffByUserID(ctx, user.ID)
		return st, false, err
	case !errors.Is(err, domain.ErrRecordNotFound):
		return nil, false, err
	}

	st, err := domain.NewStaff(sf.Name)
	if err != nil {
		return nil, false, err
	}
	st.Phone = sf.Phone
	st.Location = sf.Location

	email := sf.Email
	if email == "" {
		email = sf.Username + "@" + s.emailDomain
	}
	user = &domain.User{
		Username:     sf.Username,
		PasswordHash: s.passwordHash,
		FullName:     sf.Name,
		Email:        email,
		Role:         domain.RoleStaff,
	}
	if err := s.store.CreateStaffAccount(ctx, user, st); err != nil {
		return nil, false, err
	}
	return st, true, nil
}

/**********************************************
 * random data
 **********************************************/

// RandomStaff creates n staff accounts. Username collisions are retried with a fresh
// name a few times before giving up on that account.
func (s *Seeder) RandomStaff(ctx context.Context, n int) (int, error) {
	bar := s.newProgress(n, "staff")
	created := 0
	for i := 0; i < n; i++ {
		for attempt := 0; attempt < 5; attempt++ {
			st := utils.GenerateRandomStaff()
			user := &domain.User{
				Username:     utils.GenerateUsernameFromName(st.Name),
				PasswordHash: s.passwordHash,
				FullName:     st.Name,
				Role:         domain.RoleStaff,
			}
			user.Email = user.Username + "@" + s.emailDomain

			err := s.store.CreateStaffAccount(ctx, user, st)
			if errors.Is(err, domain.ErrDuplicate) {
				continue
			}
			if err != nil {
				return created, err
			}
			created++
			break
		}
		_ = bar.Add(1)
	}
	s.logger.Info("random staff created", slog.Int("count", created))
	return created, nil
}

// RandomClients creates n clients and hands them out round-robin to available staff.
func (s *Seeder) RandomClients(ctx context.Context, n int) (int, error) {
	staff, err := s.store.GetAllStaff(ctx)
	if err != nil {
		return 0, err
	}
	available := make([]*domain.Staff, 0, len(staff))
	for _, st := range staff {
		if st.IsAvailable {
			available = append(available, st)
		}
	}

	bar := s.newProgress(n, "clients")
	for i := 0; i < n; i++ {
		c := utils.GenerateRandomClient()
		if err := s.store.CreateClient(ctx, c); err != nil {
			return i, err
		}
		if len(available) > 0 {
			st := available[i%len(available)]
			if _, err := s.index.Assign(ctx, st.ID, c.ID); err != nil {
				return i, err
			}
		}
		_ = bar.Add(1)
	}
	s.logger.Info("random clients created", slog.Int("count", n), slog.Int("staff", len(available)))
	return n, nil
}

// Simulate writes a daily record for every assignment on every day in [start, end], as
// if the assigned staff had worked the client's shift. Roughly one delivery in ten is
// missed with a random reason.
func (s *Seeder) Simulate(ctx context.Context, start, end domain.Date) (int, error) {
	if end.Before(start) {
		return 0, fmt.Errorf("%w: %s is before %s", domain.ErrInvalidDate, end, start)
	}

	assignments, err := s.store.GetAllAssignments(ctx)
	if err != nil {
		return 0, err
	}
	clients := make(map[int64]*domain.Client, len(assignments))
	for _, a := range assignments {
		c, err := s.store.GetClientByID(ctx, a.ClientID)
		if err != nil {
			return 0, err
		}
		clients[a.ClientID] = c
	}

	days := 0
	for d := start; !d.After(end); d = d.AddDays(1) {
		days++
	}

	bar := s.newProgress(days, "deliveries")
	written := 0
	for d := start; !d.After(end); d = d.AddDays(1) {
		for _, a := range assignments {
			c := clients[a.ClientID]
			r := &domain.DeliveryRecord{
				StaffID:       a.StaffID,
				ClientID:      a.ClientID,
				Date:          d,
				Shift:         c.TimeShift,
				Status:        domain.StatusDelivered,
				Quantity:      c.Quantity,
				PricePerLitre: c.PricePerLitre,
			}
			if s.rng.Intn(10) == 0 {
				r.Status = domain.StatusNotDelivered
				r.Quantity = decimal.Zero
				r.Reason = NonDeliveryReasons[s.rng.Intn(len(NonDeliveryReasons))]
			}
			if err := s.store.UpsertDeliveryRecord(ctx, r); err != nil {
				return written, fmt.Errorf("%s client %d: %w", d, a.ClientID, err)
			}
			written++
		}
		_ = bar.Add(1)
	}

	s.logger.Info("deliveries simulated",
		slog.String("start", start.String()),
		slog.String("end", end.String()),
		slog.Int("records", written),
	)
	return written, nil
}
