package middleware

import (
    "net/http"
    "slices"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/room-booking/internal/model"
)

// RequireRole lets a request through only when the caller's role claim
// is one of roles.  It must run after JWTAuth.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !slices.Contains(roles, model.Role(Role(c))) {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
