package middleware

// identity.go holds helpers shared across middleware and handlers for
// reading the caller that JWTAuth stored in the Echo context.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
    ctxUserID = "user_id"
    ctxRole   = "role"
)

// UserID returns the authenticated user's id.  JSON numbers decode as
// float64, so the sub claim arrives in that form; strings are accepted
// for tokens minted by other tools.
func UserID(c echo.Context) (uint64, bool) {
    switch v := c.Get(ctxUserID).(type) {
    case float64:
        if v <= 0 {
            return 0, false
        }
        return uint64(v), true
    case uint64:
        return v, v > 0
    case string:
        n, err := strconv.ParseUint(v, 10, 64)
        return n, err == nil && n > 0
    }
    return 0, false
}

// Role returns the authenticated user's role claim, or "".
func Role(c echo.Context) string {
    r, _ := c.Get(ctxRole).(string)
    return r
}

// userID returns the caller id as a string for keys and logs, or
// "guest" when no user is authenticated.
func userID(c echo.Context) string {
    if id, ok := UserID(c); ok {
        return strconv.FormatUint(id, 10)
    }
    return "guest"
}
