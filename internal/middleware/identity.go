package middleware

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// subject returns the authenticated user id as stored by JWTAuth, or
// "anon" when the request carries no identity.  It keys per-user rate
// limiting.
func subject(c echo.Context) string {
    switch v := c.Get(CtxUserID).(type) {
    case uint64:
        if v != 0 {
            return strconv.FormatUint(v, 10)
        }
    case string:
        if v != "" {
            return v
        }
    }
    if email, ok := c.Get(CtxEmail).(string); ok && email != "" {
        return email
    }
    return "anon"
}
