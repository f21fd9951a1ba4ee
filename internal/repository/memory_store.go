package repository

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/iliyamo/bowling-lane-reservation/internal/booking"
	"github.com/iliyamo/bowling-lane-reservation/internal/model"
)

// MemoryStore is a process-local booking.Store.  Admissions for the same
// (date, lane) are serialised by a per-key mutex that only lives while
// someone holds or waits for it; reads take the shared map lock only.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[uint64]model.Reservation
	seq   atomic.Uint64

	locksMu sync.Mutex
	locks   map[string]*laneLock // "date|lane"
}

type laneLock struct {
	mu   sync.Mutex
	refs int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[uint64]model.Reservation),
		locks: make(map[string]*laneLock),
	}
}

// lockLane blocks until the (date, lane) lock is held and returns its
// release func.  The entry is dropped once the last holder or waiter
// releases it.
func (s *MemoryStore) lockLane(date, lane string) func() {
	key := date + "|" + lane
	s.locksMu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &laneLock{}
		s.locks[key] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, key)
		}
		s.locksMu.Unlock()
	}
}

func (s *MemoryStore) WithLane(ctx context.Context, date, lane string, fn func(tx booking.LaneTx) error) error {
	unlock := s.lockLane(date, lane)
	defer unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(&memoryLaneTx{store: s, date: date, lane: lane})
}

func (s *MemoryStore) Get(_ context.Context, id uint64) (*model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.items[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	return &r, nil
}

func (s *MemoryStore) List(_ context.Context, f booking.Filter) ([]model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Reservation, 0, len(s.items))
	for _, r := range s.items {
		if f.Date != "" && r.Date != f.Date {
			continue
		}
		if f.CustomerEmail != "" && r.CustomerEmail != f.CustomerEmail {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *MemoryStore) ListLane(_ context.Context, date, lane string) ([]model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.laneLocked(date, lane), nil
}

// laneLocked expects s.mu to be held.
func (s *MemoryStore) laneLocked(date, lane string) []model.Reservation {
	var out []model.Reservation
	for _, r := range s.items {
		if r.Date == date && r.Lane == lane {
			out = append(out, r)
		}
	}
	return out
}

func (s *MemoryStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return booking.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *MemoryStore) Count(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}

type memoryLaneTx struct {
	store      *MemoryStore
	date, lane string
}

func (t *memoryLaneTx) Reservations(context.Context) ([]model.Reservation, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	return t.store.laneLocked(t.date, t.lane), nil
}

func (t *memoryLaneTx) NextID(context.Context) (uint64, error) {
	return t.store.seq.Add(1), nil
}

func (t *memoryLaneTx) Insert(_ context.Context, r *model.Reservation) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.items[r.ID] = *r
	return nil
}
