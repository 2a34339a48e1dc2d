package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// Pinger is anything whose reachability can be checked, such as
// *sql.DB.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// HealthHandler answers liveness and readiness probes.
type HealthHandler struct {
    db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
    return &HealthHandler{db: db}
}

// Live reports that the process is serving HTTP.
func (h *HealthHandler) Live(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Ready reports whether the database answers within two seconds.
func (h *HealthHandler) Ready(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
    defer cancel()
    if h.db == nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "no database"})
    }
    if err := h.db.PingContext(ctx); err != nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "database unreachable"})
    }
    return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
}
