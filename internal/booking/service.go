package booking

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/bowling-lane-reservation/internal/model"
	"github.com/iliyamo/bowling-lane-reservation/internal/utils"
)

// Listing scopes.
const (
	ScopeMine = "mine"
	ScopeAll  = "all"
)

// ListQuery selects which reservations ListReservations returns.  Scope
// defaults to "all" for staff and "mine" for customers.
type ListQuery struct {
	Date  string
	Scope string
}

// Service is the reservation admission engine.  It owns validation,
// availability checking, pricing and the ownership rules; persistence is
// delegated to a Store.
type Service struct {
	store   Store
	catalog Catalog
	events  Publisher
	now     func() time.Time
}

// NewService wires a Service.  A nil publisher disables events.
func NewService(store Store, catalog Catalog, events Publisher) *Service {
	if events == nil {
		events = nopPublisher{}
	}
	return &Service{
		store:   store,
		catalog: catalog,
		events:  events,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// GetMeta describes the bookable lanes, slots and prices.
func (s *Service) GetMeta() Meta { return s.catalog.Meta() }

// CreateReservation validates req, checks the lane is free and stores the
// reservation.  Customers always book under the name and email of their
// token; staff may book on behalf of another email.
func (s *Service) CreateReservation(ctx context.Context, req CreateRequest, actor Actor) (*model.Reservation, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	if !actor.IsStaff() {
		if actor.Name != "" {
			req.Name = actor.Name
		}
		req.CustomerEmail = ""
	}
	if err := req.Validate(s.catalog); err != nil {
		return nil, err
	}
	// the token email is trusted as is; only a caller-supplied
	// customer_email goes through the email rule
	if req.CustomerEmail == "" {
		req.CustomerEmail = actor.Email
	}

	iv, err := NewInterval(req.StartTime, req.DurationHours)
	if err != nil {
		return nil, invalid("start_time", err.Error())
	}
	endTime := FormatClock(iv.End)

	var created model.Reservation
	err = s.store.WithLane(ctx, req.Date, req.Lane, func(tx LaneTx) error {
		existing, err := tx.Reservations(ctx)
		if err != nil {
			return err
		}
		if !Available(existing, req.Date, req.Lane, iv, 0) {
			return &ConflictError{Date: req.Date, Lane: req.Lane, StartTime: req.StartTime, EndTime: endTime}
		}
		id, err := tx.NextID(ctx)
		if err != nil {
			return err
		}
		created = model.Reservation{
			ID:            id,
			Name:          req.Name,
			Phone:         utils.NormalizePhone(req.Phone, s.catalog.PhoneRegion),
			Date:          req.Date,
			StartTime:     req.StartTime,
			EndTime:       endTime,
			DurationHours: req.DurationHours,
			Lane:          req.Lane,
			Players:       req.Players,
			Notes:         req.Notes,
			TotalCost:     s.catalog.Pricing.ComputeCost(req.DurationHours, req.Players),
			CustomerEmail: strings.ToLower(req.CustomerEmail),
			CreatedAt:     s.now(),
		}
		return tx.Insert(ctx, &created)
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			log.Debug().Str("date", req.Date).Str("lane", req.Lane).Str("start_time", req.StartTime).Msg("reservation rejected: lane taken")
			return nil, err
		}
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	log.Info().Uint64("reservation_id", created.ID).Str("lane", created.Lane).Str("date", created.Date).Msg("reservation created")
	s.publish(ctx, EventCreated, created)
	return &created, nil
}

// IsAvailable reports whether the given slot is free.  excludeID, when
// non-zero, ignores that reservation.
func (s *Service) IsAvailable(ctx context.Context, date, lane, startTime string, durationHours int, excludeID uint64) (bool, error) {
	if err := ValidateDate(date); err != nil {
		return false, err
	}
	if !s.catalog.HasLane(lane) {
		return false, invalid("lane", "unknown lane")
	}
	if !s.catalog.HasSlot(startTime) {
		return false, invalid("start_time", "not a bookable start time")
	}
	if durationHours < 1 || durationHours > 3 {
		return false, invalid("duration_hours", "must be one of 1, 2, 3")
	}
	iv, err := NewInterval(startTime, durationHours)
	if err != nil {
		return false, invalid("start_time", err.Error())
	}
	existing, err := s.store.ListLane(ctx, date, lane)
	if err != nil {
		return false, fmt.Errorf("load lane reservations: %w", err)
	}
	return Available(existing, date, lane, iv, excludeID), nil
}

// ListReservations returns reservations visible to actor ordered by date,
// start time and lane.  Customers only ever see their own bookings and
// asking for every booking requires the staff role.
func (s *Service) ListReservations(ctx context.Context, q ListQuery, actor Actor) ([]model.Reservation, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	q.Date = strings.TrimSpace(q.Date)
	if q.Date != "" {
		if err := ValidateDate(q.Date); err != nil {
			return nil, err
		}
	}

	scope := strings.ToLower(strings.TrimSpace(q.Scope))
	if scope == "" {
		scope = ScopeMine
		if actor.IsStaff() {
			scope = ScopeAll
		}
	}

	f := Filter{Date: q.Date}
	switch scope {
	case ScopeAll:
		if !actor.IsStaff() {
			return nil, ErrForbidden
		}
	case ScopeMine:
		f.CustomerEmail = strings.ToLower(actor.Email)
	default:
		return nil, invalid("scope", "must be one of mine, all")
	}

	out, err := s.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	slices.SortFunc(out, func(a, b model.Reservation) int {
		return cmp.Or(
			cmp.Compare(a.Date, b.Date),
			cmp.Compare(a.StartTime, b.StartTime),
			cmp.Compare(a.Lane, b.Lane),
		)
	})
	return out, nil
}

// DeleteReservation removes a reservation.  Only staff and the owner of
// the reservation may delete it.
func (s *Service) DeleteReservation(ctx context.Context, id uint64, actor Actor) error {
	if !actor.Authenticated() {
		return ErrUnauthorized
	}
	r, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("get reservation: %w", err)
	}
	if !actor.IsStaff() && !actor.owns(*r) {
		return ErrForbidden
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete reservation: %w", err)
	}
	log.Info().Uint64("reservation_id", id).Str("by", actor.Email).Msg("reservation cancelled")
	s.publish(ctx, EventCancelled, *r)
	return nil
}

// Count returns the number of stored reservations.
func (s *Service) Count(ctx context.Context) (int, error) { return s.store.Count(ctx) }

func (s *Service) publish(ctx context.Context, kind string, r model.Reservation) {
	if err := s.events.Publish(ctx, kind, r); err != nil {
		log.Warn().Err(err).Str("event", kind).Uint64("reservation_id", r.ID).Msg("publish reservation event")
	}
}
