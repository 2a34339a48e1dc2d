package middleware

import (
    "strconv"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/room-booking/internal/metrics"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestLogger assigns each request an id, logs one line when it
// completes and records its latency.  Routes are labelled by their
// pattern so metrics cardinality stays bounded.
func RequestLogger(log *logrus.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            rid := c.Request().Header.Get(RequestIDHeader)
            if rid == "" {
                rid = uuid.NewString()
            }
            c.Response().Header().Set(RequestIDHeader, rid)

            err := next(c)
            if err != nil {
                c.Error(err)
            }

            status := c.Response().Status
            elapsed := time.Since(start)
            path := c.Path()
            if path == "" {
                path = "unmatched"
            }
            metrics.ObserveHTTPRequest(c.Request().Method, path, strconv.Itoa(status), elapsed)

            entry := log.WithFields(logrus.Fields{
                "request_id": rid,
                "method":     c.Request().Method,
                "path":       c.Request().URL.Path,
                "route":      path,
                "status":     status,
                "latency_ms": elapsed.Milliseconds(),
                "ip":         c.RealIP(),
                "user":       userID(c),
            })
            switch {
            case status >= 500:
                entry.Error("request failed")
            case status >= 400:
                entry.Warn("request rejected")
            default:
                entry.Info("request served")
            }
            return nil
        }
    }
}
