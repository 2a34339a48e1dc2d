package service

import (
    "context"
    "errors"

    "github.com/iliyamo/room-booking/internal/metrics"
    "github.com/iliyamo/room-booking/internal/model"
    "github.com/iliyamo/room-booking/internal/repository"
)

// Reservation is what Reserve took from a room and what Release gives
// back.
type Reservation struct {
    RoomID uint64
    Guests int
    Shared bool
}

// Reserve admits guests into a room through one guarded UPDATE.  The
// shared path applies only when the room is shared and the request asks
// for a shared booking; anything else takes the whole room and counts
// as a single guest.  On refusal the room is re-read to tell the caller
// why: NotFoundError, UnavailableError or CapacityExceededError.
func Reserve(ctx context.Context, rooms repository.RoomRepository, roomID uint64, guests int, sharedRequest bool) (Reservation, error) {
    room, err := rooms.GetByID(ctx, roomID)
    if errors.Is(err, repository.ErrNotFound) {
        return Reservation{}, &NotFoundError{Resource: "room", ID: roomID}
    }
    if err != nil {
        return Reservation{}, err
    }

    res := Reservation{RoomID: roomID, Guests: 1, Shared: room.IsShared && sharedRequest}
    var ok bool
    if res.Shared {
        if guests < 1 {
            return Reservation{}, invalid("guestCount", "must be at least 1")
        }
        res.Guests = guests
        ok, err = rooms.ReserveShared(ctx, roomID, guests)
    } else {
        ok, err = rooms.ReservePrivate(ctx, roomID)
    }
    if err != nil {
        return Reservation{}, err
    }
    if ok {
        return res, nil
    }
    return Reservation{}, classifyRefusal(ctx, rooms, roomID, res)
}

// classifyRefusal explains a failed guard from the room's current row.
func classifyRefusal(ctx context.Context, rooms repository.RoomRepository, roomID uint64, res Reservation) error {
    room, err := rooms.GetByID(ctx, roomID)
    if errors.Is(err, repository.ErrNotFound) {
        metrics.ObserveReservationRejected("not_found")
        return &NotFoundError{Resource: "room", ID: roomID}
    }
    if err != nil {
        return err
    }
    // A shared room filled by occupancy refuses on capacity; maintenance
    // and occupied rooms refuse as unavailable whatever their beds.
    counting := room.Status == model.RoomAvailable || room.Status == model.RoomPartiallyBooked ||
        room.Status == model.RoomFullyBooked
    if res.Shared && counting && room.RemainingBeds() < res.Guests {
        metrics.ObserveReservationRejected("capacity")
        return &CapacityExceededError{RoomID: roomID, Requested: res.Guests, Remaining: room.RemainingBeds()}
    }
    metrics.ObserveReservationRejected("unavailable")
    return &UnavailableError{Resource: "room", ID: roomID, Status: string(room.Status)}
}

// Release returns what a reservation took.  Shared rooms drop the
// guests from their occupancy; whole-room stays free the room.
func Release(ctx context.Context, rooms repository.RoomRepository, res Reservation) error {
    if res.Shared {
        return rooms.ReleaseShared(ctx, res.RoomID, res.Guests)
    }
    return rooms.ReleasePrivate(ctx, res.RoomID)
}

// reservationOf rebuilds the reservation a room booking holds.
func reservationOf(b model.Booking) (Reservation, bool) {
    if b.Type != model.BookingRoom || b.RoomID == nil || b.RoomStay == nil {
        return Reservation{}, false
    }
    res := Reservation{RoomID: *b.RoomID, Guests: 1, Shared: b.IsSharedBooking}
    if res.Shared {
        res.Guests = b.GuestCount
    }
    return res, true
}
