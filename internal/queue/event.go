// Package queue carries reservation events over RabbitMQ: a publisher used
// by the booking service and a consumer that keeps an append-only log of
// every booking change.
package queue

import (
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/bowling-lane-reservation/internal/model"
)

// QueueName is the durable queue every reservation event is routed to.
const QueueName = "reservation.events"

// ReservationEvent is the message body.  It is self-contained so consumers
// never need to query the primary database.
type ReservationEvent struct {
    EventID       string `json:"event_id"`
    Kind          string `json:"kind"`
    ReservationID uint64 `json:"reservation_id"`
    CustomerEmail string `json:"customer_email"`
    Name          string `json:"name"`
    Date          string `json:"date"`
    StartTime     string `json:"start_time"`
    EndTime       string `json:"end_time"`
    Lane          string `json:"lane"`
    Players       int    `json:"players"`
    TotalCost     int64  `json:"total_cost"`
    OccurredAt    string `json:"occurred_at"`
}

// NewReservationEvent snapshots r for the given kind.
func NewReservationEvent(kind string, r model.Reservation, at time.Time) ReservationEvent {
    return ReservationEvent{
        EventID:       uuid.NewString(),
        Kind:          kind,
        ReservationID: r.ID,
        CustomerEmail: r.CustomerEmail,
        Name:          r.Name,
        Date:          r.Date,
        StartTime:     r.StartTime,
        EndTime:       r.EndTime,
        Lane:          r.Lane,
        Players:       r.Players,
        TotalCost:     r.TotalCost,
        OccurredAt:    at.UTC().Format(time.RFC3339),
    }
}
