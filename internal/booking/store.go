package booking

import (
	"context"

	"github.com/iliyamo/bowling-lane-reservation/internal/model"
)

// Store persists reservations.  WithLane is the only way to add a
// reservation: implementations must run fn while holding an exclusive
// lock for (date, lane) so that the availability check and the insert
// performed inside fn cannot interleave with another admission for the
// same lane and date.
type Store interface {
	WithLane(ctx context.Context, date, lane string, fn func(tx LaneTx) error) error
	Get(ctx context.Context, id uint64) (*model.Reservation, error)
	List(ctx context.Context, f Filter) ([]model.Reservation, error)
	ListLane(ctx context.Context, date, lane string) ([]model.Reservation, error)
	Delete(ctx context.Context, id uint64) error
	Count(ctx context.Context) (int, error)
}

// LaneTx is the view of the store available inside WithLane.
type LaneTx interface {
	// Reservations returns every reservation on the locked (date, lane).
	Reservations(ctx context.Context) ([]model.Reservation, error)
	// NextID returns a fresh identifier within the lane's unit of work.
	// Identifiers are strictly increasing and never handed out twice.
	NextID(ctx context.Context) (uint64, error)
	Insert(ctx context.Context, r *model.Reservation) error
}

// Filter narrows List.  Empty fields match everything.
type Filter struct {
	Date          string
	CustomerEmail string
}
