// Package handler holds the echo handlers.  Handlers bind and validate
// the request, call a service and map typed service errors onto HTTP.
package handler

import (
    "context"
    "errors"
    "net/http"
    "reflect"
    "strconv"
    "strings"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/room-booking/internal/middleware"
    "github.com/iliyamo/room-booking/internal/model"
    "github.com/iliyamo/room-booking/internal/repository"
    "github.com/iliyamo/room-booking/internal/service"
)

// BookingService is the booking lifecycle used by BookingHandler.
type BookingService interface {
    CreateBooking(ctx context.Context, in service.CreateBookingInput) (model.Booking, error)
    Transition(ctx context.Context, id uint64, target model.BookingStatus, actor service.Actor, reason string) (model.Booking, error)
    Get(ctx context.Context, id uint64, actor service.Actor) (model.Booking, error)
    ListForUser(ctx context.Context, userID uint64) ([]model.Booking, error)
    ListAll(ctx context.Context) ([]model.Booking, error)
}

// ApprovalService is the facility review queue.
type ApprovalService interface {
    PendingQueue(ctx context.Context, vip *bool) ([]model.Booking, error)
    Approve(ctx context.Context, id uint64, actor service.Actor) (model.Booking, error)
    Reject(ctx context.Context, id uint64, actor service.Actor, reason string) (model.Booking, error)
}

// CatalogService manages rooms and facilities.
type CatalogService interface {
    CreateRoom(ctx context.Context, in service.RoomInput) (model.Room, error)
    UpdateRoom(ctx context.Context, id uint64, p service.RoomPatch) (model.Room, error)
    DeleteRoom(ctx context.Context, id uint64) error
    GetRoom(ctx context.Context, id uint64) (model.Room, error)
    ListRooms(ctx context.Context, f repository.RoomFilter) ([]model.Room, error)
    CreateFacility(ctx context.Context, in service.FacilityInput) (model.Facility, error)
    UpdateFacility(ctx context.Context, id uint64, p service.FacilityPatch) (model.Facility, error)
    DeleteFacility(ctx context.Context, id uint64) error
    GetFacility(ctx context.Context, id uint64) (model.Facility, error)
    ListFacilities(ctx context.Context, f repository.FacilityFilter) ([]model.Facility, error)
}

// AccountService manages users and sessions.
type AccountService interface {
    Signup(ctx context.Context, in service.SignupInput, creator *service.Actor) (service.Session, error)
    Login(ctx context.Context, email, password string) (service.Session, error)
    Profile(ctx context.Context, id uint64) (model.User, error)
    UpdateProfile(ctx context.Context, id uint64, p service.ProfilePatch, actor service.Actor) (model.User, error)
    ChangeRole(ctx context.Context, id uint64, role model.Role) (model.User, error)
    ListUsers(ctx context.Context) ([]model.User, error)
    DeleteUser(ctx context.Context, id uint64, actor service.Actor) error
}

// ReportService computes dashboard figures.
type ReportService interface {
    Stats(ctx context.Context) (service.Stats, error)
}

// CustomValidator plugs validator/v10 into echo.  Field names in errors
// are the JSON names.
type CustomValidator struct {
    validator *validator.Validate
}

func NewValidator() *CustomValidator {
    v := validator.New()
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
        if name == "-" {
            return ""
        }
        return name
    })
    return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
    return cv.validator.Struct(i)
}

// bindAndValidate decodes the body into req and validates it, turning
// failures into a *service.ValidationError.
func bindAndValidate(c echo.Context, req interface{}) error {
    if err := c.Bind(req); err != nil {
        return &service.ValidationError{Field: "body", Msg: "invalid request body"}
    }
    if err := c.Validate(req); err != nil {
        var verrs validator.ValidationErrors
        if errors.As(err, &verrs) && len(verrs) > 0 {
            fe := verrs[0]
            return &service.ValidationError{Field: fe.Field(), Msg: describe(fe)}
        }
        return &service.ValidationError{Field: "body", Msg: err.Error()}
    }
    return nil
}

func describe(fe validator.FieldError) string {
    switch fe.Tag() {
    case "required":
        return "is required"
    case "email":
        return "must be a valid address"
    case "min", "gte":
        return "must be at least " + fe.Param()
    case "max", "lte":
        return "must be at most " + fe.Param()
    case "oneof":
        return "must be one of " + fe.Param()
    }
    return "is invalid"
}

// getUserID returns the authenticated caller's id.
func getUserID(c echo.Context) (uint64, error) {
    id, ok := middleware.UserID(c)
    if !ok {
        return 0, &service.UnauthorizedError{Msg: "unauthorized"}
    }
    return id, nil
}

// actor returns the authenticated caller with their role.
func actor(c echo.Context) (service.Actor, error) {
    id, err := getUserID(c)
    if err != nil {
        return service.Actor{}, err
    }
    return service.Actor{UserID: id, Role: model.Role(middleware.Role(c))}, nil
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, &service.ValidationError{Field: name, Msg: "must be a positive integer"}
    }
    return id, nil
}

// optionalBool parses a query flag; empty means unset.
func optionalBool(c echo.Context, name string) (*bool, error) {
    raw := c.QueryParam(name)
    if raw == "" {
        return nil, nil
    }
    v, err := strconv.ParseBool(raw)
    if err != nil {
        return nil, &service.ValidationError{Field: name, Msg: "must be true or false"}
    }
    return &v, nil
}

// fail writes err as {"error": ...}.  Errors carrying a status code map
// onto it; anything else is logged and reported as 500.
func fail(c echo.Context, log *logrus.Logger, err error) error {
    var coded interface{ StatusCode() int }
    if !errors.As(err, &coded) {
        log.WithError(err).WithFields(logrus.Fields{
            "method": c.Request().Method, "path": c.Path(),
        }).Error("request failed")
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }

    body := echo.Map{"error": err.Error()}
    var capErr *service.CapacityExceededError
    var valErr *service.ValidationError
    var dateErr *service.InvalidDateRangeError
    switch {
    case errors.As(err, &capErr):
        body["remaining"] = capErr.Remaining
    case errors.As(err, &valErr):
        body["field"] = valErr.Field
    case errors.As(err, &dateErr):
        body["field"] = "checkOutDate"
    }
    return c.JSON(coded.StatusCode(), body)
}
