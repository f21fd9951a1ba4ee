package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bowling-lane-reservation/internal/booking"
	"github.com/iliyamo/bowling-lane-reservation/internal/model"
)

var _ booking.Store = (*MemoryStore)(nil)
var _ booking.Store = (*ReservationRepo)(nil)

func (s *MemoryStore) heldLocks() int {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	return len(s.locks)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	insert := func(r model.Reservation) {
		t.Helper()
		require.NoError(t, s.WithLane(ctx, r.Date, r.Lane, func(tx booking.LaneTx) error {
			id, err := tx.NextID(ctx)
			if err != nil {
				return err
			}
			r.ID = id
			return tx.Insert(ctx, &r)
		}))
	}
	insert(model.Reservation{Date: "2024-03-10", Lane: "Lane 1", StartTime: "10:00", CustomerEmail: "a@x.io"})
	insert(model.Reservation{Date: "2024-03-10", Lane: "Lane 2", StartTime: "10:00", CustomerEmail: "b@x.io"})
	insert(model.Reservation{Date: "2024-03-11", Lane: "Lane 1", StartTime: "12:00", CustomerEmail: "a@x.io"})

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	lane, err := s.ListLane(ctx, "2024-03-10", "Lane 1")
	require.NoError(t, err)
	require.Len(t, lane, 1)
	assert.Equal(t, uint64(1), lane[0].ID)

	mine, err := s.List(ctx, booking.Filter{CustomerEmail: "a@x.io"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	day, err := s.List(ctx, booking.Filter{Date: "2024-03-10", CustomerEmail: "b@x.io"})
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, "Lane 2", day[0].Lane)

	require.NoError(t, s.Delete(ctx, 2))
	assert.ErrorIs(t, s.Delete(ctx, 2), booking.ErrNotFound)
	_, err = s.Get(ctx, 2)
	assert.ErrorIs(t, err, booking.ErrNotFound)

	insert(model.Reservation{Date: "2024-03-12", Lane: "Lane 1", StartTime: "10:00"})
	last, err := s.ListLane(ctx, "2024-03-12", "Lane 1")
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, uint64(4), last[0].ID)
}

func TestMemoryStoreWithLaneCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemoryStore()
	err := s.WithLane(ctx, "2024-03-10", "Lane 1", func(booking.LaneTx) error {
		t.Fatal("callback must not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, s.heldLocks())
}

func TestMemoryStoreLaneLocksAreReleased(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for day := 1; day <= 20; day++ {
		for lane := 1; lane <= 4; lane++ {
			wg.Add(1)
			go func(date, lane string) {
				defer wg.Done()
				for i := 0; i < 3; i++ {
					assert.NoError(t, s.WithLane(ctx, date, lane, func(booking.LaneTx) error { return nil }))
				}
			}(fmt.Sprintf("2024-03-%02d", day), fmt.Sprintf("Lane %d", lane))
		}
	}
	wg.Wait()
	assert.Zero(t, s.heldLocks())

	// a held lock is still visible and still excludes others
	release := s.lockLane("2024-03-10", "Lane 1")
	assert.Equal(t, 1, s.heldLocks())
	acquired := make(chan struct{})
	go func() {
		unlock := s.lockLane("2024-03-10", "Lane 1")
		close(acquired)
		unlock()
	}()
	select {
	case <-acquired:
		t.Fatal("second holder acquired a held lane lock")
	default:
	}
	release()
	<-acquired
}
