package service

import (
    "fmt"
    "net/http"
    "time"

    "github.com/iliyamo/room-booking/internal/model"
)

// Every domain error carries the HTTP status the handlers answer with.

// ValidationError reports a malformed or incomplete request.
type ValidationError struct {
    Field string
    Msg   string
}

func (e *ValidationError) Error() string {
    if e.Field == "" {
        return e.Msg
    }
    return e.Field + ": " + e.Msg
}
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

func invalid(field, format string, args ...any) *ValidationError {
    return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// InvalidDateRangeError means check-out is not after check-in.
type InvalidDateRangeError struct {
    CheckIn, CheckOut time.Time
}

func (e *InvalidDateRangeError) Error() string {
    return fmt.Sprintf("check-out %s must be after check-in %s",
        e.CheckOut.Format(time.DateOnly), e.CheckIn.Format(time.DateOnly))
}
func (e *InvalidDateRangeError) StatusCode() int { return http.StatusBadRequest }

// NotFoundError reports a missing user, room, facility or booking.
type NotFoundError struct {
    Resource string
    ID       uint64
}

func (e *NotFoundError) Error() string   { return fmt.Sprintf("%s %d not found", e.Resource, e.ID) }
func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

// UnavailableError means the room or facility is in a state that does
// not admit the request.
type UnavailableError struct {
    Resource string
    ID       uint64
    Status   string
}

func (e *UnavailableError) Error() string {
    return fmt.Sprintf("%s %d is not available (status %s)", e.Resource, e.ID, e.Status)
}
func (e *UnavailableError) StatusCode() int { return http.StatusConflict }

// CapacityExceededError means a shared room has fewer free beds than
// requested guests.
type CapacityExceededError struct {
    RoomID    uint64
    Requested int
    Remaining int
}

func (e *CapacityExceededError) Error() string {
    return fmt.Sprintf("room %d has %d bed(s) left, %d requested", e.RoomID, e.Remaining, e.Requested)
}
func (e *CapacityExceededError) StatusCode() int { return http.StatusConflict }

// InvalidTransitionError reports a lifecycle action that is not allowed
// from the current status, or not allowed for the acting role.
type InvalidTransitionError struct {
    From      model.BookingStatus
    To        model.BookingStatus
    Forbidden bool
    Reason    string
}

func (e *InvalidTransitionError) Error() string {
    msg := fmt.Sprintf("cannot move booking from %s to %s", e.From, e.To)
    if e.Reason != "" {
        msg += ": " + e.Reason
    }
    return msg
}

func (e *InvalidTransitionError) StatusCode() int {
    if e.Forbidden {
        return http.StatusForbidden
    }
    return http.StatusConflict
}

// ConflictError reports a unique-key clash such as a reused email.
type ConflictError struct{ Msg string }

func (e *ConflictError) Error() string   { return e.Msg }
func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// UnauthorizedError reports bad credentials.
type UnauthorizedError struct{ Msg string }

func (e *UnauthorizedError) Error() string   { return e.Msg }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }

// ForbiddenError reports an actor acting outside their rights on a
// resource other than a booking transition.
type ForbiddenError struct{ Msg string }

func (e *ForbiddenError) Error() string   { return e.Msg }
func (e *ForbiddenError) StatusCode() int { return http.StatusForbidden }
