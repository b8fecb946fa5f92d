package booking

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/parking-bay-reservation/internal/model"
	"github.com/iliyamo/parking-bay-reservation/internal/repository"
)

// memTx is an in-memory repository.Tx used by the tests in this
// package.  It holds plain value maps and performs no locking of its
// own; memStore wraps it with a mutex and snapshot-based rollback so
// the service's Atomic sequences behave like real transactions.
type memTx struct {
	users        map[uint64]model.User
	bays         map[uint64]model.ParkingBay
	reservations map[uint64]model.Reservation
	transactions []model.Transaction
	adminActions []model.AdminAction
	slotLocks    map[uint64]model.SlotLock

	userSeq, baySeq, resSeq, txSeq, actSeq, lockSeq uint64
}

func newMemTx() memTx {
	return memTx{
		users:        make(map[uint64]model.User),
		bays:         make(map[uint64]model.ParkingBay),
		reservations: make(map[uint64]model.Reservation),
		slotLocks:    make(map[uint64]model.SlotLock),
	}
}

func (m *memTx) clone() memTx {
	c := *m
	c.users = make(map[uint64]model.User, len(m.users))
	for k, v := range m.users {
		c.users[k] = v
	}
	c.bays = make(map[uint64]model.ParkingBay, len(m.bays))
	for k, v := range m.bays {
		c.bays[k] = v
	}
	c.reservations = make(map[uint64]model.Reservation, len(m.reservations))
	for k, v := range m.reservations {
		c.reservations[k] = v
	}
	c.slotLocks = make(map[uint64]model.SlotLock, len(m.slotLocks))
	for k, v := range m.slotLocks {
		c.slotLocks[k] = v
	}
	c.transactions = append([]model.Transaction(nil), m.transactions...)
	c.adminActions = append([]model.AdminAction(nil), m.adminActions...)
	return c
}

// users

func (m *memTx) CreateUser(_ context.Context, u *model.User) error {
	email := strings.ToLower(strings.TrimSpace(u.Email))
	for _, ex := range m.users {
		if ex.Email == email {
			return repository.ErrDuplicateEmail
		}
	}
	m.userSeq++
	u.ID = m.userSeq
	u.Email = email
	m.users[u.ID] = *u
	return nil
}

func (m *memTx) UserByEmail(_ context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memTx) UserByID(_ context.Context, id uint64) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := u
	return &out, nil
}

func (m *memTx) AddLoyaltyPoints(_ context.Context, userID uint64, delta int64) error {
	u, ok := m.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	if u.LoyaltyPoints+delta < 0 {
		return repository.ErrInsufficientPoints
	}
	u.LoyaltyPoints += delta
	m.users[userID] = u
	return nil
}

// parking bays

func (m *memTx) CreateBay(_ context.Context, b *model.ParkingBay) error {
	m.baySeq++
	b.ID = m.baySeq
	m.bays[b.ID] = *b
	return nil
}

func (m *memTx) UpdateBay(_ context.Context, b *model.ParkingBay) error {
	if _, ok := m.bays[b.ID]; !ok {
		return repository.ErrNotFound
	}
	m.bays[b.ID] = *b
	return nil
}

func (m *memTx) DeleteBay(_ context.Context, id uint64) error {
	if _, ok := m.bays[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.bays, id)
	return nil
}

func (m *memTx) SetBayAvailability(_ context.Context, id uint64, available bool) error {
	b, ok := m.bays[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.Available = available
	m.bays[id] = b
	return nil
}

func (m *memTx) BayByID(_ context.Context, id uint64) (*model.ParkingBay, error) {
	b, ok := m.bays[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := b
	return &out, nil
}

func (m *memTx) ListBays(_ context.Context) ([]model.ParkingBay, error) {
	out := make([]model.ParkingBay, 0, len(m.bays))
	for _, b := range m.bays {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memTx) SearchBays(_ context.Context, query string) ([]model.ParkingBay, error) {
	query = strings.ToLower(query)
	out := make([]model.ParkingBay, 0)
	for _, b := range m.bays {
		if strings.Contains(strings.ToLower(b.Title), query) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// reservations

func (m *memTx) InsertReservation(_ context.Context, r *model.Reservation) error {
	m.resSeq++
	r.ID = m.resSeq
	m.reservations[r.ID] = *r
	return nil
}

func (m *memTx) ReservationByID(_ context.Context, id uint64) (*model.Reservation, error) {
	r, ok := m.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := r
	return &out, nil
}

func (m *memTx) UpdateReservationStatus(_ context.Context, id uint64, status string) error {
	r, ok := m.reservations[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.Status = status
	m.reservations[id] = r
	return nil
}

func (m *memTx) OverlappingReservations(_ context.Context, bayID uint64, start, end time.Time, occupyingOnly bool) (int, error) {
	n := 0
	for _, r := range m.reservations {
		if r.ParkingBayID != bayID {
			continue
		}
		if occupyingOnly && !model.Occupying(r.Status) {
			continue
		}
		if Overlaps(r.StartTime, r.EndTime, start, end) {
			n++
		}
	}
	return n, nil
}

func (m *memTx) ActiveReservationsOn(_ context.Context, bayID uint64, day time.Time) ([]model.Reservation, error) {
	wantDay := day.UTC().Format("2006-01-02")
	out := make([]model.Reservation, 0)
	for _, r := range m.reservations {
		if r.ParkingBayID != bayID || !model.Occupying(r.Status) {
			continue
		}
		if r.StartTime.UTC().Format("2006-01-02") != wantDay {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (m *memTx) RecentReservationsByUser(_ context.Context, userID uint64, limit int) ([]model.Reservation, error) {
	out := make([]model.Reservation, 0)
	for _, r := range m.reservations {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memTx) ActiveReservationByPlate(_ context.Context, plate string, at time.Time) (*model.Reservation, error) {
	for _, r := range m.reservations {
		if r.CarPlate != plate || !model.Occupying(r.Status) {
			continue
		}
		if !r.StartTime.After(at) && r.EndTime.After(at) {
			out := r
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ledger

func (m *memTx) InsertTransaction(_ context.Context, t *model.Transaction) error {
	m.txSeq++
	t.ID = m.txSeq
	m.transactions = append(m.transactions, *t)
	return nil
}

func (m *memTx) ChargeByReservation(_ context.Context, reservationID uint64) (*model.Transaction, error) {
	for _, t := range m.transactions {
		if t.ReservationID == reservationID && t.AmountCents > 0 && t.PaymentMethod != model.PaymentMethodRefund {
			out := t
			return &out, nil
		}
	}
	return nil, repository.ErrNoTransaction
}

func (m *memTx) AppendAdminAction(_ context.Context, a *model.AdminAction) error {
	m.actSeq++
	a.ID = m.actSeq
	m.adminActions = append(m.adminActions, *a)
	return nil
}

// slot locks

func (m *memTx) InsertSlotLock(_ context.Context, l *model.SlotLock) error {
	m.lockSeq++
	l.ID = m.lockSeq
	m.slotLocks[l.ID] = *l
	return nil
}

func (m *memTx) OverlappingSlotLocks(_ context.Context, bayID uint64, start, end, now time.Time) (int, error) {
	n := 0
	for _, l := range m.slotLocks {
		if l.ParkingBayID != bayID || !l.LockExpiration.After(now) {
			continue
		}
		if Overlaps(l.StartTime, l.EndTime, start, end) {
			n++
		}
	}
	return n, nil
}

func (m *memTx) PurgeExpiredSlotLocks(_ context.Context, bayID uint64, now time.Time) error {
	for id, l := range m.slotLocks {
		if l.ParkingBayID == bayID && !l.LockExpiration.After(now) {
			delete(m.slotLocks, id)
		}
	}
	return nil
}

// memStore wraps memTx with a mutex and gives Atomic real rollback
// semantics: the state is snapshotted before fn runs and restored
// when fn fails, so a mid-sequence error leaves no partial writes.
type memStore struct {
	mu sync.Mutex
	tx memTx
}

func newMemStore() *memStore {
	return &memStore{tx: newMemTx()}
}

func (s *memStore) Atomic(_ context.Context, fn func(tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.tx.clone()
	if err := fn(&s.tx); err != nil {
		s.tx = snap
		return err
	}
	return nil
}

func (s *memStore) CreateUser(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.CreateUser(ctx, u)
}

func (s *memStore) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.UserByEmail(ctx, email)
}

func (s *memStore) UserByID(ctx context.Context, id uint64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.UserByID(ctx, id)
}

func (s *memStore) AddLoyaltyPoints(ctx context.Context, userID uint64, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.AddLoyaltyPoints(ctx, userID, delta)
}

func (s *memStore) CreateBay(ctx context.Context, b *model.ParkingBay) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.CreateBay(ctx, b)
}

func (s *memStore) UpdateBay(ctx context.Context, b *model.ParkingBay) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.UpdateBay(ctx, b)
}

func (s *memStore) DeleteBay(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.DeleteBay(ctx, id)
}

func (s *memStore) SetBayAvailability(ctx context.Context, id uint64, available bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.SetBayAvailability(ctx, id, available)
}

func (s *memStore) BayByID(ctx context.Context, id uint64) (*model.ParkingBay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.BayByID(ctx, id)
}

func (s *memStore) ListBays(ctx context.Context) ([]model.ParkingBay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.ListBays(ctx)
}

func (s *memStore) SearchBays(ctx context.Context, query string) ([]model.ParkingBay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.SearchBays(ctx, query)
}

func (s *memStore) InsertReservation(ctx context.Context, r *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.InsertReservation(ctx, r)
}

func (s *memStore) ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.ReservationByID(ctx, id)
}

func (s *memStore) UpdateReservationStatus(ctx context.Context, id uint64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.UpdateReservationStatus(ctx, id, status)
}

func (s *memStore) OverlappingReservations(ctx context.Context, bayID uint64, start, end time.Time, occupyingOnly bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.OverlappingReservations(ctx, bayID, start, end, occupyingOnly)
}

func (s *memStore) ActiveReservationsOn(ctx context.Context, bayID uint64, day time.Time) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.ActiveReservationsOn(ctx, bayID, day)
}

func (s *memStore) RecentReservationsByUser(ctx context.Context, userID uint64, limit int) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.RecentReservationsByUser(ctx, userID, limit)
}

func (s *memStore) ActiveReservationByPlate(ctx context.Context, plate string, at time.Time) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.ActiveReservationByPlate(ctx, plate, at)
}

func (s *memStore) InsertTransaction(ctx context.Context, t *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.InsertTransaction(ctx, t)
}

func (s *memStore) ChargeByReservation(ctx context.Context, reservationID uint64) (*model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.ChargeByReservation(ctx, reservationID)
}

func (s *memStore) AppendAdminAction(ctx context.Context, a *model.AdminAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.AppendAdminAction(ctx, a)
}

func (s *memStore) InsertSlotLock(ctx context.Context, l *model.SlotLock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.InsertSlotLock(ctx, l)
}

func (s *memStore) OverlappingSlotLocks(ctx context.Context, bayID uint64, start, end, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.OverlappingSlotLocks(ctx, bayID, start, end, now)
}

func (s *memStore) PurgeExpiredSlotLocks(ctx context.Context, bayID uint64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.PurgeExpiredSlotLocks(ctx, bayID, now)
}

// snapshot helpers used in assertions

func (s *memStore) transactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tx.transactions)
}

func (s *memStore) adminActionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tx.adminActions)
}
