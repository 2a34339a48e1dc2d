// Package queue defines message payloads exchanged over the message broker.
package queue

import (
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/room-booking/internal/model"
)

// Event kinds published on the booking queue.
const (
    KindBookingCreated       = "booking.created"
    KindBookingStatusChanged = "booking.status_changed"
)

// BookingEvent is published after a booking is created or changes
// status.  It carries enough for downstream consumers to log, notify or
// run analytics without querying the primary database.
type BookingEvent struct {
    EventID        string  `json:"event_id"`
    Kind           string  `json:"kind"`
    BookingID      uint64  `json:"booking_id"`
    UserID         uint64  `json:"user_id"`
    Type           string  `json:"type"`
    RoomID         *uint64 `json:"room_id,omitempty"`
    FacilityName   string  `json:"facility_name,omitempty"`
    Status         string  `json:"status"`
    PreviousStatus string  `json:"previous_status,omitempty"`
    ActorID        uint64  `json:"actor_id,omitempty"`
    TotalAmount    float64 `json:"total_amount"`
    OccurredAt     string  `json:"occurred_at"`
}

// NewBookingEvent builds an event for b.  previous is empty for
// booking.created.
func NewBookingEvent(kind string, b model.Booking, previous model.BookingStatus, actorID uint64, at time.Time) BookingEvent {
    ev := BookingEvent{
        EventID:        uuid.NewString(),
        Kind:           kind,
        BookingID:      b.ID,
        UserID:         b.UserID,
        Type:           string(b.Type),
        RoomID:         b.RoomID,
        Status:         string(b.Status),
        PreviousStatus: string(previous),
        ActorID:        actorID,
        TotalAmount:    b.TotalAmount,
        OccurredAt:     at.UTC().Format(time.RFC3339),
    }
    if b.FacilityEvent != nil {
        ev.FacilityName = b.FacilityName
    }
    return ev
}
