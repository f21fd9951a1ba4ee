package handler // handler translates HTTP requests into calls on the booking service and auth stores

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/bowling-lane-reservation/internal/booking"
	"github.com/iliyamo/bowling-lane-reservation/internal/middleware"
)

// validate checks auth request bodies; reservation payloads are validated
// by the booking package.
var validate = validator.New()

// actorFrom builds the booking actor from the identity JWTAuth stored in
// the context.  Routes without JWTAuth yield the unauthenticated actor.
func actorFrom(c echo.Context) booking.Actor {
	name, _ := c.Get(middleware.CtxName).(string)
	email, _ := c.Get(middleware.CtxEmail).(string)
	role, _ := c.Get(middleware.CtxRole).(string)
	return booking.Actor{Name: name, Email: email, Role: role}
}

// fail writes the API's standard error body.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"status": "error", "message": msg})
}

// writeError maps booking errors to HTTP statuses.  Anything unrecognised
// is logged and reported as a 500 without leaking details.
func writeError(c echo.Context, err error) error {
	var (
		verr *booking.ValidationError
		cerr *booking.ConflictError
	)
	switch {
	case errors.As(err, &verr):
		return fail(c, http.StatusBadRequest, verr.Error())
	case errors.As(err, &cerr):
		return fail(c, http.StatusConflict, "slot already booked, choose another time or lane")
	case errors.Is(err, booking.ErrUnauthorized):
		return fail(c, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, booking.ErrForbidden):
		return fail(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, booking.ErrNotFound):
		return fail(c, http.StatusNotFound, "reservation not found")
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return fail(c, http.StatusInternalServerError, "internal error")
}
