// Package memstore is an in-memory implementation of the delivery engine's storage
// collaborator, used by tests and by local runs without PostgreSQL.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
)

type sessionKey struct {
	staffID int64
	date    domain.Date
}

type recordKey struct {
	staffID  int64
	clientID int64
	date     domain.Date
}

type Store struct {
	mu sync.RWMutex

	nextID      int64
	users       map[int64]domain.User
	clients     map[int64]domain.Client
	staff       map[int64]domain.Staff
	assignments map[int64]domain.Assignment // clientID -> edge
	sessions    map[sessionKey]domain.ShiftSession
	records     map[recordKey]domain.DeliveryRecord
	history     map[int64][]domain.HistoryEvent

	now func() time.Time
}

func New() *Store {
	return &Store{
		users:       make(map[int64]domain.User),
		clients:     make(map[int64]domain.Client),
		staff:       make(map[int64]domain.Staff),
		assignments: make(map[int64]domain.Assignment),
		sessions:    make(map[sessionKey]domain.ShiftSession),
		records:     make(map[recordKey]domain.DeliveryRecord),
		history:     make(map[int64][]domain.HistoryEvent),
		now:         time.Now,
	}
}

// SetClock replaces the timestamp source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

/**********************************************
 * users
 **********************************************/

func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return domain.ErrDuplicate
		}
	}

	user.ID = s.id()
	user.IsActive = true
	user.CreatedAt = s.now()
	user.Version = 1
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (s *Store) UpdateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.users[user.ID]
	if !ok || cur.Version != user.Version {
		return domain.ErrEditConflict
	}
	user.Version++
	s.users[user.ID] = *user
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, id)
	for sid, st := range s.staff {
		if st.UserID != nil && *st.UserID == id {
			st.UserID = nil
			s.staff[sid] = st
		}
	}
	return nil
}

/**********************************************
 * clients
 **********************************************/

func (s *Store) CreateClient(_ context.Context, client *domain.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	client.ID = s.id()
	client.CreatedAt = s.now()
	client.Version = 1
	s.clients[client.ID] = *client
	return nil
}

func (s *Store) GetClientByID(_ context.Context, id int64) (*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &c, nil
}

func (s *Store) GetAllClients(_ context.Context) ([]*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients := make([]*domain.Client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, &c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].ID < clients[j].ID })
	return clients, nil
}

func (s *Store) UpdateClient(_ context.Context, client *domain.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.clients[client.ID]
	if !ok || cur.Version != client.Version {
		return domain.ErrEditConflict
	}
	client.Version++
	s.clients[client.ID] = *client
	return nil
}

// DeleteClient drops the client together with its edge, daily records and history,
// mirroring the ON DELETE CASCADE of the SQL schema.
func (s *Store) DeleteClient(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.clients, id)
	delete(s.assignments, id)
	delete(s.history, id)
	for k := range s.records {
		if k.clientID == id {
			delete(s.records, k)
		}
	}
	return nil
}

/**********************************************
 * staff
 **********************************************/

func (s *Store) CreateStaff(_ context.Context, st *domain.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.UserID != nil {
		for _, other := range s.staff {
			if other.UserID != nil && *other.UserID == *st.UserID {
				return domain.ErrDuplicate
			}
		}
	}

	st.ID = s.id()
	st.CreatedAt = s.now()
	st.Version = 1
	s.staff[st.ID] = *st
	return nil
}

// CreateStaffAccount creates the login user and the staff row linked to it together.
func (s *Store) CreateStaffAccount(_ context.Context, user *domain.User, st *domain.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return domain.ErrDuplicate
		}
	}

	now := s.now()
	user.ID = s.id()
	user.IsActive = true
	user.CreatedAt = now
	user.Version = 1
	s.users[user.ID] = *user

	uid := user.ID
	st.ID = s.id()
	st.UserID = &uid
	st.CreatedAt = now
	st.Version = 1
	s.staff[st.ID] = *st
	return nil
}

func (s *Store) GetStaffByID(_ context.Context, id int64) (*domain.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.staff[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &st, nil
}

func (s *Store) GetStaffByUserID(_ context.Context, userID int64) (*domain.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, st := range s.staff {
		if st.UserID != nil && *st.UserID == userID {
			return &st, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (s *Store) GetAllStaff(_ context.Context) ([]*domain.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.Staff, 0, len(s.staff))
	for _, st := range s.staff {
		all = append(all, &st)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (s *Store) UpdateStaff(_ context.Context, st *domain.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.staff[st.ID]
	if !ok || cur.Version != st.Version {
		return domain.ErrEditConflict
	}
	st.Version++
	s.staff[st.ID] = *st
	return nil
}

func (s *Store) DeleteStaff(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.staff, id)
	for cid, a := range s.assignments {
		if a.StaffID == id {
			delete(s.assignments, cid)
		}
	}
	for k := range s.sessions {
		if k.staffID == id {
			delete(s.sessions, k)
		}
	}
	for k := range s.records {
		if k.staffID == id {
			delete(s.records, k)
		}
	}
	return nil
}

/**********************************************
 * assignments
 **********************************************/

func (s *Store) FindAssignment(_ context.Context, clientID int64) (*domain.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assignments[clientID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &a, nil
}

func (s *Store) CreateAssignment(_ context.Context, a *domain.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assignments[a.ClientID]; ok {
		return domain.ErrAlreadyAssigned
	}
	a.CreatedAt = s.now()
	s.assignments[a.ClientID] = *a
	return nil
}

func (s *Store) DeleteAssignment(_ context.Context, staffID, clientID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.assignments[clientID]
	if !ok || a.StaffID != staffID {
		return domain.ErrRecordNotFound
	}
	delete(s.assignments, clientID)
	return nil
}

func (s *Store) GetAllAssignments(_ context.Context) ([]*domain.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.Assignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		all = append(all, &a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ClientID < all[j].ClientID })
	return all, nil
}

func (s *Store) FindClientsByStaff(_ context.Context, staffID int64) ([]*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.clientsOf(staffID, ""), nil
}

func (s *Store) FindClientsByStaffAndShift(_ context.Context, staffID int64, shift domain.Shift) ([]*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.clientsOf(staffID, shift), nil
}

// clientsOf must be called with s.mu held. An empty shift matches both.
func (s *Store) clientsOf(staffID int64, shift domain.Shift) []*domain.Client {
	clients := make([]*domain.Client, 0)
	for cid, a := range s.assignments {
		if a.StaffID != staffID {
			continue
		}
		c, ok := s.clients[cid]
		if !ok || (shift != "" && c.TimeShift != shift) {
			continue
		}
		clients = append(clients, &c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].ID < clients[j].ID })
	return clients
}

/**********************************************
 * sessions
 **********************************************/

func (s *Store) FindSession(_ context.Context, staffID int64, date domain.Date) (*domain.ShiftSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionKey{staffID, date}]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &sess, nil
}

func (s *Store) UpsertSession(_ context.Context, sess *domain.ShiftSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey{sess.StaffID, sess.Date}
	now := s.now()
	if cur, ok := s.sessions[key]; ok {
		sess.CreatedAt = cur.CreatedAt
	} else {
		sess.CreatedAt = now
	}
	sess.UpdatedAt = now
	s.sessions[key] = *sess
	return nil
}

/**********************************************
 * daily deliveries and history
 **********************************************/

func (s *Store) FindDeliveryRecord(_ context.Context, staffID, clientID int64, date domain.Date) (*domain.DeliveryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[recordKey{staffID, clientID, date}]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &r, nil
}

// UpsertDeliveryRecord overwrites the record for its key and appends the matching
// history event to the client, atomically.
func (s *Store) UpsertDeliveryRecord(_ context.Context, r *domain.DeliveryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.UpdatedAt = s.now()
	s.records[recordKey{r.StaffID, r.ClientID, r.Date}] = *r
	s.history[r.ClientID] = append(s.history[r.ClientID], r.HistoryEvent())
	return nil
}

func (s *Store) ListDeliveryRecordsByStaffAndDate(_ context.Context, staffID int64, date domain.Date) ([]*domain.DeliveryRecord, error) {
	return s.filterRecords(func(k recordKey) bool { return k.staffID == staffID && k.date == date }), nil
}

func (s *Store) ListDeliveryRecordsByDate(_ context.Context, date domain.Date) ([]*domain.DeliveryRecord, error) {
	return s.filterRecords(func(k recordKey) bool { return k.date == date }), nil
}

func (s *Store) ListDeliveryRecordsBetween(_ context.Context, start, end domain.Date) ([]*domain.DeliveryRecord, error) {
	return s.filterRecords(func(k recordKey) bool { return k.date.Within(start, end) }), nil
}

func (s *Store) filterRecords(keep func(recordKey) bool) []*domain.DeliveryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.DeliveryRecord, 0)
	for k, r := range s.records {
		if keep(k) {
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Date.Compare(out[j].Date); c != 0 {
			return c < 0
		}
		if out[i].StaffID != out[j].StaffID {
			return out[i].StaffID < out[j].StaffID
		}
		return out[i].ClientID < out[j].ClientID
	})
	return out
}

// AppendHistory adds a raw history event, bypassing the daily ledger. Used for
// imported history.
func (s *Store) AppendHistory(_ context.Context, clientID int64, ev domain.HistoryEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.RecordedAt.IsZero() {
		ev.RecordedAt = s.now()
	}
	s.history[clientID] = append(s.history[clientID], ev)
	return nil
}

func (s *Store) GetClientHistory(_ context.Context, clientID int64) ([]domain.HistoryEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]domain.HistoryEvent(nil), s.history[clientID]...), nil
}
