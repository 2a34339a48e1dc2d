package service

import (
    "context"

    "github.com/iliyamo/room-booking/internal/model"
    "github.com/iliyamo/room-booking/internal/queue"
)

// EventPublisher delivers booking events after commit.
type EventPublisher interface {
    Publish(ctx context.Context, ev queue.BookingEvent) error
}

// CacheInvalidator drops cached responses of a route.
type CacheInvalidator interface {
    PurgeRoute(ctx context.Context, route string) error
}

// Routes whose cached responses depend on room or facility rows.
const (
    RouteRooms      = "/v1/rooms"
    RouteRoom       = "/v1/rooms/:id"
    RouteFacilities = "/v1/facilities"
    RouteFacility   = "/v1/facilities/:id"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
    UserID uint64
    Role   model.Role
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, queue.BookingEvent) error { return nil }

type nopInvalidator struct{}

func (nopInvalidator) PurgeRoute(context.Context, string) error { return nil }
