package model

import "time"

// BookingType selects which details variant a booking carries.
type BookingType string

const (
    BookingRoom     BookingType = "room"
    BookingFacility BookingType = "facility"
)

// BookingStatus is a state of the booking lifecycle.
type BookingStatus string

const (
    StatusPending         BookingStatus = "pending"
    StatusPendingApproval BookingStatus = "pending_approval"
    StatusConfirmed       BookingStatus = "confirmed"
    StatusCheckedIn       BookingStatus = "checked_in"
    StatusCheckedOut      BookingStatus = "checked_out"
    StatusCancelled       BookingStatus = "cancelled"
    StatusRejected        BookingStatus = "rejected"
)

// Valid reports whether s is a known booking status.
func (s BookingStatus) Valid() bool {
    switch s {
    case StatusPending, StatusPendingApproval, StatusConfirmed, StatusCheckedIn,
        StatusCheckedOut, StatusCancelled, StatusRejected:
        return true
    }
    return false
}

// IsTerminal reports whether no further transition leaves s.
func (s BookingStatus) IsTerminal() bool {
    return s == StatusCheckedOut || s == StatusCancelled || s == StatusRejected
}

// Customer is a guest listed on a booking.  Exactly one entry is
// primary: the booker.
type Customer struct {
    UserID    *uint64 `json:"userId,omitempty"`
    Name      string  `json:"name"`
    Email     string  `json:"email"`
    IsPrimary bool    `json:"isPrimary"`
}

// RoomStay holds the details of a room booking.
type RoomStay struct {
    CheckInDate     time.Time `json:"checkInDate"`
    CheckOutDate    time.Time `json:"checkOutDate"`
    GuestCount      int       `json:"guestCount"`
    IsSharedBooking bool      `json:"isSharedBooking"`
}

// FacilityEvent holds the details of a facility booking.  StartTime
// and EndTime are "HH:MM" wall-clock strings on EventDate.
type FacilityEvent struct {
    FacilityIDs    []uint64  `json:"facilityIds"`
    FacilityName   string    `json:"facilityName"`
    Title          string    `json:"title"`
    Occasion       string    `json:"occasion"`
    NumberOfPeople int       `json:"numberOfPeople"`
    EventDate      time.Time `json:"eventDate"`
    StartTime      string    `json:"startTime,omitempty"`
    EndTime        string    `json:"endTime,omitempty"`
    Notes          string    `json:"notes,omitempty"`
    IsVIP          bool      `json:"isVIP"`
}

// Booking mirrors the `bookings` table.  Exactly one of RoomStay and
// FacilityEvent is non-nil, matching Type; their fields are promoted
// into the JSON object.  User and Room are filled by listing queries.
type Booking struct {
    ID              uint64        `json:"id"`
    UserID          uint64        `json:"userId"`
    RoomID          *uint64       `json:"roomId,omitempty"`
    Type            BookingType   `json:"type"`
    TotalAmount     float64       `json:"totalAmount"`
    Status          BookingStatus `json:"status"`
    Customers       []Customer    `json:"customers"`
    RejectionReason string        `json:"rejectionReason,omitempty"`
    CreatedAt       time.Time     `json:"createdAt"`
    UpdatedAt       time.Time     `json:"updatedAt"`

    *RoomStay
    *FacilityEvent

    User *UserSummary `json:"user,omitempty"`
    Room *RoomSummary `json:"room,omitempty"`
}
