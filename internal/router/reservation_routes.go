package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bowling-lane-reservation/internal/handler"
	"github.com/iliyamo/bowling-lane-reservation/internal/middleware"
	"github.com/iliyamo/bowling-lane-reservation/internal/model"
)

// RegisterReservations registers the booking endpoints.  Every route needs
// a valid JWT carrying a known role; ownership and staff-only listing are
// enforced by the booking service.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/api/reservations",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStaff, model.RoleCustomer),
		limiter,
	)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.DELETE("/:id", h.Delete)
}
