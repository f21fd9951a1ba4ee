package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bowling-lane-reservation/internal/booking"
	"github.com/iliyamo/bowling-lane-reservation/internal/model"
)

// ReservationService is the part of booking.Service the HTTP layer uses.
type ReservationService interface {
	CreateReservation(ctx context.Context, req booking.CreateRequest, actor booking.Actor) (*model.Reservation, error)
	ListReservations(ctx context.Context, q booking.ListQuery, actor booking.Actor) ([]model.Reservation, error)
	DeleteReservation(ctx context.Context, id uint64, actor booking.Actor) error
	IsAvailable(ctx context.Context, date, lane, startTime string, durationHours int, excludeID uint64) (bool, error)
	GetMeta() booking.Meta
}

// ReservationHandler serves the reservation, availability and meta endpoints.
type ReservationHandler struct {
	Svc     ReservationService
	Timeout time.Duration
}

func NewReservationHandler(svc ReservationService) *ReservationHandler {
	return &ReservationHandler{Svc: svc, Timeout: 5 * time.Second}
}

func (h *ReservationHandler) ctx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), h.Timeout)
}

// Meta handles GET /api/meta.
func (h *ReservationHandler) Meta(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Svc.GetMeta())
}

// Create handles POST /api/reservations.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req booking.CreateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	r, err := h.Svc.CreateReservation(ctx, req, actorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"status": "success", "reservation": r})
}

// List handles GET /api/reservations?date=&scope=.  The body is a bare
// array of reservations.
func (h *ReservationHandler) List(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	out, err := h.Svc.ListReservations(ctx, booking.ListQuery{
		Date:  c.QueryParam("date"),
		Scope: c.QueryParam("scope"),
	}, actorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Delete handles DELETE /api/reservations/:id.
func (h *ReservationHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return fail(c, http.StatusBadRequest, "invalid reservation id")
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.Svc.DeleteReservation(ctx, id, actorFrom(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

// Availability handles GET /api/availability.  start_time may also be
// passed as time; duration_hours defaults to 1.
func (h *ReservationHandler) Availability(c echo.Context) error {
	date := strings.TrimSpace(c.QueryParam("date"))
	lane := strings.TrimSpace(c.QueryParam("lane"))
	start := strings.TrimSpace(c.QueryParam("start_time"))
	if start == "" {
		start = strings.TrimSpace(c.QueryParam("time"))
	}
	duration := 1
	if v := c.QueryParam("duration_hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fail(c, http.StatusBadRequest, "duration_hours: must be a number")
		}
		duration = n
	}
	var exclude uint64
	if v := c.QueryParam("exclude_id"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "exclude_id: must be a number")
		}
		exclude = n
	}

	ctx, cancel := h.ctx(c)
	defer cancel()
	ok, err := h.Svc.IsAvailable(ctx, date, lane, start, duration, exclude)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"available":      ok,
		"date":           date,
		"lane":           lane,
		"start_time":     start,
		"duration_hours": duration,
	})
}
