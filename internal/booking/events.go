package booking

import (
	"context"

	"github.com/iliyamo/bowling-lane-reservation/internal/model"
)

// Event kinds emitted after a reservation has been persisted or removed.
const (
	EventCreated   = "reservation.created"
	EventCancelled = "reservation.cancelled"
)

// Publisher receives reservation events.  Publishing happens after the
// change is stored and a failure never undoes it.
type Publisher interface {
	Publish(ctx context.Context, kind string, r model.Reservation) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, model.Reservation) error { return nil }
