package model

import "time"

// Reservation is a booked lane-time slot.  A reservation is created
// once by the admission flow and is never updated afterwards; the
// only transition it goes through is deletion.  EndTime and
// TotalCost are derived at admission time and stored alongside the
// request fields so that listings never need to recompute them.
//
// Fields:
//  ID            – counter-assigned identifier, never reused.
//  Name          – name the booking was made under.
//  Phone         – contact number (E.164 when it could be parsed).
//  Date          – calendar date in YYYY-MM-DD form.
//  StartTime     – one of the venue slots, HH:MM.
//  EndTime       – StartTime + DurationHours, HH:MM.
//  DurationHours – 1, 2 or 3.
//  Lane          – one of the venue lanes (e.g. "Lane 1").
//  Players       – number of bowlers, always positive.
//  Notes         – free text supplied by the customer.
//  TotalCost     – price computed by the pricing calculator.
//  CustomerEmail – owner of the reservation.
//  CreatedAt     – UTC admission timestamp.
type Reservation struct {
    ID            uint64    `json:"id"`             // reservations.id
    Name          string    `json:"name"`           // reservations.name
    Phone         string    `json:"phone"`          // reservations.phone
    Date          string    `json:"date"`           // reservations.reservation_date
    StartTime     string    `json:"start_time"`     // reservations.start_time
    EndTime       string    `json:"end_time"`       // reservations.end_time
    DurationHours int       `json:"duration_hours"` // reservations.duration_hours
    Lane          string    `json:"lane"`           // reservations.lane
    Players       int       `json:"players"`        // reservations.players
    Notes         string    `json:"notes"`          // reservations.notes
    TotalCost     int64     `json:"total_cost"`     // reservations.total_cost
    CustomerEmail string    `json:"customer_email"` // reservations.customer_email
    CreatedAt     time.Time `json:"created_at"`     // reservations.created_at
}
