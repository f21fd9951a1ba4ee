package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/bowling-lane-reservation/internal/handler"
	"github.com/iliyamo/bowling-lane-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Only the venue metadata goes through the response cache; availability
// changes with every booking and is served live.
func RegisterRoutes(e *echo.Echo, health echo.HandlerFunc, r *handler.ReservationHandler, cache echo.MiddlewareFunc) {
	e.GET("/healthz", health)
	e.GET("/api/meta", r.Meta, cache)
	e.GET("/api/availability", r.Availability)
}

// RegisterAuth registers the authentication endpoints.  Register, login,
// refresh and logout need no session; /api/me requires a valid access
// token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/api")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// logout validates the bearer itself so a refresh token alone is enough
	g.POST("/logout", a.Logout)

	g.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))
}
