package model

import (
    "errors"
    "time"
)

// RoomStatus is the availability state of a room.
type RoomStatus string

const (
    RoomAvailable       RoomStatus = "available"
    RoomPartiallyBooked RoomStatus = "partially_booked"
    RoomFullyBooked     RoomStatus = "fully_booked"
    RoomMaintenance     RoomStatus = "maintenance"
    RoomOccupied        RoomStatus = "occupied"
)

// Valid reports whether s is a known room status.
func (s RoomStatus) Valid() bool {
    switch s {
    case RoomAvailable, RoomPartiallyBooked, RoomFullyBooked, RoomMaintenance, RoomOccupied:
        return true
    }
    return false
}

// Room mirrors the `rooms` table.  Price is the nightly rate of a
// private room; BasePricePerPerson is the per-guest nightly rate of a
// shared room.  At least one of them is set and positive.
type Room struct {
    ID                 uint64     `json:"id"`
    RoomNumber         string     `json:"roomNumber"`
    Type               string     `json:"type"`
    Description        string     `json:"description"`
    Image              string     `json:"image"`
    Status             RoomStatus `json:"status"`
    Price              *float64   `json:"price,omitempty"`
    BasePricePerPerson *float64   `json:"basePricePerPerson,omitempty"`
    IsShared           bool       `json:"isShared"`
    MaxOccupancy       int        `json:"maxOccupancy"`
    CurrentOccupancy   int        `json:"currentOccupancy"`
    CreatedAt          time.Time  `json:"createdAt"`
}

// RoomSummary is the subset of a room attached to booking listings.
type RoomSummary struct {
    ID         uint64 `json:"id"`
    RoomNumber string `json:"roomNumber"`
    Type       string `json:"type"`
}

// RemainingBeds is the number of guests a shared room can still take.
func (r Room) RemainingBeds() int {
    if n := r.MaxOccupancy - r.CurrentOccupancy; n > 0 {
        return n
    }
    return 0
}

// ErrNoPrice is returned by Pricing when neither rate is usable.
var ErrNoPrice = errors.New("room has no usable price")

// RoomPricing is the pricing variant of a room: PrivatePricing or
// SharedPricing.  The interface is sealed to this package.
type RoomPricing interface {
    isRoomPricing()
}

// PrivatePricing charges a flat nightly rate for the whole room.
type PrivatePricing struct{ Price float64 }

// SharedPricing charges per guest per night.
type SharedPricing struct{ PerPerson float64 }

func (PrivatePricing) isRoomPricing() {}
func (SharedPricing) isRoomPricing()  {}

// Pricing derives the pricing variant from the flat record.  Shared
// rooms fall back to Price when BasePricePerPerson is missing.
func (r Room) Pricing() (RoomPricing, error) {
    if r.IsShared {
        if positive(r.BasePricePerPerson) {
            return SharedPricing{PerPerson: *r.BasePricePerPerson}, nil
        }
        if positive(r.Price) {
            return SharedPricing{PerPerson: *r.Price}, nil
        }
        return nil, ErrNoPrice
    }
    if positive(r.Price) {
        return PrivatePricing{Price: *r.Price}, nil
    }
    return nil, ErrNoPrice
}

// DeriveSharedStatus is the occupancy-derived status of a shared room.
func DeriveSharedStatus(current, max int) RoomStatus {
    switch {
    case current <= 0:
        return RoomAvailable
    case current >= max:
        return RoomFullyBooked
    default:
        return RoomPartiallyBooked
    }
}

func positive(p *float64) bool { return p != nil && *p > 0 }
