package middleware // middleware holds the echo middleware shared by all route groups

import (
    "net/http" // HTTP status codes for responses
    "strings"  // prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/bowling-lane-reservation/internal/utils"
)

// Context keys written by JWTAuth.
const (
    CtxUserID = "user_id"
    CtxName   = "name"
    CtxEmail  = "email"
    CtxRole   = "role"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// copies the identity it carries into the request context.  Handlers read
// it back with c.Get(CtxEmail) and friends.  Requests without a valid
// token are answered with 401 before reaching the handler.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return deny(c, http.StatusUnauthorized, "missing bearer token")
            }
            raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

            id, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return deny(c, http.StatusUnauthorized, "invalid token")
            }

            c.Set(CtxUserID, id.UserID)
            c.Set(CtxName, id.Name)
            c.Set(CtxEmail, id.Email)
            c.Set(CtxRole, id.Role)
            return next(c)
        }
    }
}

// deny writes the API's standard error body.
func deny(c echo.Context, status int, msg string) error {
    return c.JSON(status, echo.Map{"status": "error", "message": msg})
}
