// Package router registers the HTTP routes and their middleware.
package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/room-booking/internal/handler"
    "github.com/iliyamo/room-booking/internal/metrics"
    "github.com/iliyamo/room-booking/internal/middleware"
    "github.com/iliyamo/room-booking/internal/model"
)

// Handlers bundles everything the routes dispatch to.
type Handlers struct {
    Health    *handler.HealthHandler
    Auth      *handler.AuthHandler
    Catalog   *handler.CatalogHandler
    Bookings  *handler.BookingHandler
    Approvals *handler.ApprovalHandler
    Admin     *handler.AdminHandler
}

// Options carries the cross-cutting middleware built by main.  Nil
// entries are skipped.
type Options struct {
    JWTSecret string
    Cache     echo.MiddlewareFunc
    RateLimit echo.MiddlewareFunc
}

func (o Options) cache() []echo.MiddlewareFunc {
    if o.Cache == nil {
        return nil
    }
    return []echo.MiddlewareFunc{o.Cache}
}

// RegisterRoutes registers probes and the Prometheus endpoint.
func RegisterRoutes(e *echo.Echo, h Handlers) {
    e.GET("/healthz", h.Health.Live)
    e.GET("/readyz", h.Health.Ready)
    e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}

// RegisterAuth registers sign-up and login, plus the caller's profile.
func RegisterAuth(e *echo.Echo, h Handlers, o Options) {
    g := e.Group("/v1/auth")
    if o.RateLimit != nil {
        g.Use(o.RateLimit)
    }
    g.POST("/signup", h.Auth.Signup)
    g.POST("/login", h.Auth.Login)

    me := authenticated(e, "/v1", o)
    me.GET("/me", h.Auth.Me)
    me.PUT("/me", h.Auth.UpdateMe)
}

// RegisterPublic registers the cached catalogue reads.
func RegisterPublic(e *echo.Echo, h Handlers, o Options) {
    mw := o.cache()
    e.GET("/v1/rooms", h.Catalog.ListRooms, mw...)
    e.GET("/v1/rooms/:id", h.Catalog.GetRoom, mw...)
    e.GET("/v1/facilities", h.Catalog.ListFacilities, mw...)
    e.GET("/v1/facilities/:id", h.Catalog.GetFacility, mw...)
}

// RegisterBookings registers the customer booking routes.
func RegisterBookings(e *echo.Echo, h Handlers, o Options) {
    g := authenticated(e, "/v1", o, model.RoleCustomer, model.RoleStaff, model.RoleAdmin)
    g.POST("/bookings", h.Bookings.Create)
    g.GET("/my-bookings", h.Bookings.Mine)
    g.GET("/bookings/:id", h.Bookings.Get)
    g.POST("/bookings/:id/cancel", h.Bookings.Cancel)
}

// RegisterStaff registers the desk routes: booking status changes and
// the regular approval queue.
func RegisterStaff(e *echo.Echo, h Handlers, o Options) {
    g := authenticated(e, "/v1/staff", o, model.RoleStaff, model.RoleAdmin)
    g.GET("/bookings", h.Bookings.ListAll)
    g.PUT("/bookings/:id/status", h.Bookings.UpdateStatus)
    g.GET("/approvals", h.Approvals.RegularQueue)
    g.POST("/approvals/:id/approve", h.Approvals.Approve)
    g.POST("/approvals/:id/reject", h.Approvals.Reject)
}

// RegisterAdmin registers inventory, user management, the VIP queue and
// the dashboard.
func RegisterAdmin(e *echo.Echo, h Handlers, o Options) {
    g := authenticated(e, "/v1/admin", o, model.RoleAdmin)

    g.POST("/rooms", h.Catalog.CreateRoom)
    g.PUT("/rooms/:id", h.Catalog.UpdateRoom)
    g.DELETE("/rooms/:id", h.Catalog.DeleteRoom)

    g.POST("/facilities", h.Catalog.CreateFacility)
    g.PUT("/facilities/:id", h.Catalog.UpdateFacility)
    g.DELETE("/facilities/:id", h.Catalog.DeleteFacility)

    g.GET("/users", h.Admin.ListUsers)
    g.POST("/users", h.Admin.CreateUser)
    g.PUT("/users/:id", h.Admin.UpdateUser)
    g.PUT("/users/:id/role", h.Admin.ChangeRole)
    g.DELETE("/users/:id", h.Admin.DeleteUser)

    g.GET("/approvals", h.Approvals.VIPQueue)
    g.GET("/stats", h.Admin.Stats)
}

// authenticated returns a group behind JWTAuth, the rate limiter and,
// when roles are given, RequireRole.  Without roles any valid token
// passes.
func authenticated(e *echo.Echo, prefix string, o Options, roles ...model.Role) *echo.Group {
    g := e.Group(prefix, middleware.JWTAuth(o.JWTSecret))
    if o.RateLimit != nil {
        g.Use(o.RateLimit)
    }
    if len(roles) > 0 {
        g.Use(middleware.RequireRole(roles...))
    }
    return g
}

// Register wires every route group.
func Register(e *echo.Echo, h Handlers, o Options) {
    RegisterRoutes(e, h)
    RegisterAuth(e, h, o)
    RegisterPublic(e, h, o)
    RegisterBookings(e, h, o)
    RegisterStaff(e, h, o)
    RegisterAdmin(e, h, o)
}
