package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/room-booking/internal/model"
    "github.com/iliyamo/room-booking/internal/service"
)

// BookingHandler serves booking creation, the caller's bookings and the
// staff status actions.
type BookingHandler struct {
    bookings BookingService
    log      *logrus.Logger
}

func NewBookingHandler(bookings BookingService, log *logrus.Logger) *BookingHandler {
    return &BookingHandler{bookings: bookings, log: log}
}

type customerReq struct {
    Name  string `json:"name" validate:"required"`
    Email string `json:"email" validate:"omitempty,email"`
}

// createBookingReq is the flat booking request.  Room fields apply to
// type "room" and facility fields to type "facility".
type createBookingReq struct {
    Type      model.BookingType `json:"type" validate:"required,oneof=room facility"`
    Customers []customerReq     `json:"customers" validate:"dive"`

    RoomID          uint64   `json:"roomId" validate:"required_if=Type room"`
    CheckInDate     jsonDate `json:"checkInDate"`
    CheckOutDate    jsonDate `json:"checkOutDate"`
    CheckIn         jsonDate `json:"checkIn"`
    CheckOut        jsonDate `json:"checkOut"`
    GuestCount      int      `json:"guestCount" validate:"gte=0"`
    IsSharedBooking bool     `json:"isSharedBooking"`

    FacilityIDs    []uint64 `json:"facilityIds" validate:"required_if=Type facility,max=3"`
    Title          string   `json:"title" validate:"max=255"`
    Occasion       string   `json:"occasion" validate:"max=255"`
    NumberOfPeople int      `json:"numberOfPeople" validate:"gte=0"`
    EventDate      jsonDate `json:"eventDate"`
    StartTime      string   `json:"startTime"`
    EndTime        string   `json:"endTime"`
    Notes          string   `json:"notes"`
}

func (r createBookingReq) input(userID uint64) service.CreateBookingInput {
    in := service.CreateBookingInput{UserID: userID, Type: r.Type}
    for _, c := range r.Customers {
        in.Customers = append(in.Customers, service.CustomerInput{Name: c.Name, Email: c.Email})
    }
    switch r.Type {
    case model.BookingRoom:
        in.Room = &service.RoomBookingInput{
            RoomID:          r.RoomID,
            CheckInDate:     firstDate(r.CheckInDate, r.CheckIn),
            CheckOutDate:    firstDate(r.CheckOutDate, r.CheckOut),
            GuestCount:      r.GuestCount,
            IsSharedBooking: r.IsSharedBooking,
        }
    case model.BookingFacility:
        in.Facility = &service.FacilityBookingInput{
            FacilityIDs:    r.FacilityIDs,
            Title:          r.Title,
            Occasion:       r.Occasion,
            NumberOfPeople: r.NumberOfPeople,
            EventDate:      r.EventDate.Time,
            StartTime:      r.StartTime,
            EndTime:        r.EndTime,
            Notes:          r.Notes,
        }
    }
    return in
}

// firstDate prefers the long field name; older clients send checkIn and
// checkOut.
func firstDate(long, short jsonDate) time.Time {
    if long.IsZero() {
        return short.Time
    }
    return long.Time
}

type statusReq struct {
    Status model.BookingStatus `json:"status" validate:"required"`
    Reason string              `json:"reason" validate:"max=512"`
}

// Create handles POST /v1/bookings.  The booker is always the caller.
func (h *BookingHandler) Create(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return fail(c, h.log, err)
    }
    var req createBookingReq
    if err := bindAndValidate(c, &req); err != nil {
        return fail(c, h.log, err)
    }
    b, err := h.bookings.CreateBooking(c.Request().Context(), req.input(userID))
    if err != nil {
        return fail(c, h.log, err)
    }
    return c.JSON(http.StatusCreated, b)
}

// Mine handles GET /v1/my-bookings.
func (h *BookingHandler) Mine(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return fail(c, h.log, err)
    }
    list, err := h.bookings.ListForUser(c.Request().Context(), userID)
    if err != nil {
        return fail(c, h.log, err)
    }
    return c.JSON(http.StatusOK, list)
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
    who, err := actor(c)
    if err != nil {
        return fail(c, h.log, err)
    }
    id, err := parseID(c, "id")
    if err != nil {
        return fail(c, h.log, err)
    }
    b, err := h.bookings.Get(c.Request().Context(), id, who)
    if err != nil {
        return fail(c, h.log, err)
    }
    return c.JSON(http.StatusOK, b)
}

// Cancel handles POST /v1/bookings/:id/cancel.
func (h *BookingHandler) Cancel(c echo.Context) error {
    return h.move(c, model.StatusCancelled, "")
}

// ListAll handles GET /v1/staff/bookings.
func (h *BookingHandler) ListAll(c echo.Context) error {
    list, err := h.bookings.ListAll(c.Request().Context())
    if err != nil {
        return fail(c, h.log, err)
    }
    return c.JSON(http.StatusOK, list)
}

// UpdateStatus handles PUT /v1/staff/bookings/:id/status.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
    var req statusReq
    if err := bindAndValidate(c, &req); err != nil {
        return fail(c, h.log, err)
    }
    if !req.Status.Valid() {
        return fail(c, h.log, &service.ValidationError{Field: "status", Msg: "unknown booking status"})
    }
    return h.move(c, req.Status, req.Reason)
}

func (h *BookingHandler) move(c echo.Context, target model.BookingStatus, reason string) error {
    who, err := actor(c)
    if err != nil {
        return fail(c, h.log, err)
    }
    id, err := parseID(c, "id")
    if err != nil {
        return fail(c, h.log, err)
    }
    b, err := h.bookings.Transition(c.Request().Context(), id, target, who, reason)
    if err != nil {
        return fail(c, h.log, err)
    }
    return c.JSON(http.StatusOK, b)
}
