package handler

import (
    "context"
    "encoding/json"
    "errors"
    "io"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/mock"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/room-booking/internal/model"
    "github.com/iliyamo/room-booking/internal/service"
)

type bookingsMock struct{ mock.Mock }

func (m *bookingsMock) CreateBooking(ctx context.Context, in service.CreateBookingInput) (model.Booking, error) {
    args := m.Called(ctx, in)
    return args.Get(0).(model.Booking), args.Error(1)
}

func (m *bookingsMock) Transition(ctx context.Context, id uint64, target model.BookingStatus, actor service.Actor, reason string) (model.Booking, error) {
    args := m.Called(ctx, id, target, actor, reason)
    return args.Get(0).(model.Booking), args.Error(1)
}

func (m *bookingsMock) Get(ctx context.Context, id uint64, actor service.Actor) (model.Booking, error) {
    args := m.Called(ctx, id, actor)
    return args.Get(0).(model.Booking), args.Error(1)
}

func (m *bookingsMock) ListForUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
    args := m.Called(ctx, userID)
    return args.Get(0).([]model.Booking), args.Error(1)
}

func (m *bookingsMock) ListAll(ctx context.Context) ([]model.Booking, error) {
    args := m.Called(ctx)
    return args.Get(0).([]model.Booking), args.Error(1)
}

type approvalsMock struct{ mock.Mock }

func (m *approvalsMock) PendingQueue(ctx context.Context, vip *bool) ([]model.Booking, error) {
    args := m.Called(ctx, vip)
    return args.Get(0).([]model.Booking), args.Error(1)
}

func (m *approvalsMock) Approve(ctx context.Context, id uint64, actor service.Actor) (model.Booking, error) {
    args := m.Called(ctx, id, actor)
    return args.Get(0).(model.Booking), args.Error(1)
}

func (m *approvalsMock) Reject(ctx context.Context, id uint64, actor service.Actor, reason string) (model.Booking, error) {
    args := m.Called(ctx, id, actor, reason)
    return args.Get(0).(model.Booking), args.Error(1)
}

type statsMock struct{ mock.Mock }

func (m *statsMock) Stats(ctx context.Context) (service.Stats, error) {
    args := m.Called(ctx)
    return args.Get(0).(service.Stats), args.Error(1)
}

func quietLogger() *logrus.Logger {
    l := logrus.New()
    l.SetOutput(io.Discard)
    return l
}

// call runs h against a request routed as route.  A non-zero uid marks
// the request authenticated with role.
func call(t *testing.T, h echo.HandlerFunc, method, route, target, body string, uid uint64, role string) *httptest.ResponseRecorder {
    t.Helper()
    e := echo.New()
    e.Validator = NewValidator()
    var rdr io.Reader
    if body != "" {
        rdr = strings.NewReader(body)
    }
    req := httptest.NewRequest(method, target, rdr)
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    rec := httptest.NewRecorder()
    e.Add(method, route, h, func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if uid != 0 {
                c.Set("user_id", float64(uid))
                c.Set("role", role)
            }
            return next(c)
        }
    })
    e.ServeHTTP(rec, req)
    return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
    t.Helper()
    var m map[string]any
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
    return m
}

func TestCreateRoomBooking(t *testing.T) {
    svc := new(bookingsMock)
    h := NewBookingHandler(svc, quietLogger())

    checkIn := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
    checkOut := time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC)
    want := service.CreateBookingInput{
        UserID: 5,
        Type:   model.BookingRoom,
        Room: &service.RoomBookingInput{
            RoomID: 9, CheckInDate: checkIn, CheckOutDate: checkOut, GuestCount: 2, IsSharedBooking: true,
        },
    }
    svc.On("CreateBooking", mock.Anything, want).
        Return(model.Booking{ID: 70, UserID: 5, Type: model.BookingRoom, Status: model.StatusConfirmed, TotalAmount: 100}, nil)

    body := `{"type":"room","roomId":9,"checkInDate":"2026-11-01","checkOutDate":"2026-11-03T00:00:00Z","guestCount":2,"isSharedBooking":true}`
    rec := call(t, h.Create, http.MethodPost, "/v1/bookings", "/v1/bookings", body, 5, "customer")

    assert.Equal(t, http.StatusCreated, rec.Code)
    got := decode(t, rec)
    assert.EqualValues(t, 70, got["id"])
    assert.Equal(t, "confirmed", got["status"])
    svc.AssertExpectations(t)
}

func TestCreateRoomBookingShortDateNames(t *testing.T) {
    svc := new(bookingsMock)
    h := NewBookingHandler(svc, quietLogger())

    want := service.CreateBookingInput{
        UserID: 5,
        Type:   model.BookingRoom,
        Room: &service.RoomBookingInput{
            RoomID:       9,
            CheckInDate:  time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
            CheckOutDate: time.Date(2026, 11, 4, 0, 0, 0, 0, time.UTC),
            GuestCount:   1,
        },
    }
    svc.On("CreateBooking", mock.Anything, want).
        Return(model.Booking{ID: 71, UserID: 5, Type: model.BookingRoom, Status: model.StatusConfirmed}, nil)

    body := `{"type":"room","roomId":9,"checkIn":"2026-11-01","checkOut":"2026-11-04","guestCount":1}`
    rec := call(t, h.Create, http.MethodPost, "/v1/bookings", "/v1/bookings", body, 5, "customer")

    assert.Equal(t, http.StatusCreated, rec.Code)
    svc.AssertExpectations(t)
}

func TestCreateBookingErrors(t *testing.T) {
    tests := []struct {
        name      string
        body      string
        uid       uint64
        svcErr    error
        wantCode  int
        wantField string
        wantKey   string
        wantValue any
    }{
        {
            name:     "unauthenticated",
            body:     `{"type":"room","roomId":1}`,
            wantCode: http.StatusUnauthorized,
        },
        {
            name:      "unknown type",
            body:      `{"type":"suite"}`,
            uid:       5,
            wantCode:  http.StatusBadRequest,
            wantField: "type",
        },
        {
            name:      "room id missing",
            body:      `{"type":"room","checkInDate":"2026-11-01","checkOutDate":"2026-11-02"}`,
            uid:       5,
            wantCode:  http.StatusBadRequest,
            wantField: "roomId",
        },
        {
            name:      "too many facilities",
            body:      `{"type":"facility","facilityIds":[1,2,3,4]}`,
            uid:       5,
            wantCode:  http.StatusBadRequest,
            wantField: "facilityIds",
        },
        {
            name:      "bad date",
            body:      `{"type":"room","roomId":1,"checkInDate":"01/11/2026"}`,
            uid:       5,
            wantCode:  http.StatusBadRequest,
            wantField: "body",
        },
        {
            name:      "capacity",
            body:      `{"type":"room","roomId":1,"checkInDate":"2026-11-01","checkOutDate":"2026-11-02","guestCount":4,"isSharedBooking":true}`,
            uid:       5,
            svcErr:    &service.CapacityExceededError{RoomID: 1, Requested: 4, Remaining: 2},
            wantCode:  http.StatusConflict,
            wantKey:   "remaining",
            wantValue: float64(2),
        },
        {
            name:      "date range",
            body:      `{"type":"room","roomId":1,"checkInDate":"2026-11-02","checkOutDate":"2026-11-01"}`,
            uid:       5,
            svcErr:    &service.InvalidDateRangeError{},
            wantCode:  http.StatusBadRequest,
            wantField: "checkOutDate",
        },
        {
            name:     "unavailable",
            body:     `{"type":"room","roomId":1,"checkInDate":"2026-11-01","checkOutDate":"2026-11-02"}`,
            uid:      5,
            svcErr:   &service.UnavailableError{Resource: "room", ID: 1, Status: "maintenance"},
            wantCode: http.StatusConflict,
        },
        {
            name:     "unexpected",
            body:     `{"type":"room","roomId":1,"checkInDate":"2026-11-01","checkOutDate":"2026-11-02"}`,
            uid:      5,
            svcErr:   errors.New("db down"),
            wantCode: http.StatusInternalServerError,
        },
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            svc := new(bookingsMock)
            if tt.svcErr != nil {
                svc.On("CreateBooking", mock.Anything, mock.Anything).Return(model.Booking{}, tt.svcErr)
            }
            h := NewBookingHandler(svc, quietLogger())
            rec := call(t, h.Create, http.MethodPost, "/v1/bookings", "/v1/bookings", tt.body, tt.uid, "customer")

            assert.Equal(t, tt.wantCode, rec.Code)
            got := decode(t, rec)
            assert.NotEmpty(t, got["error"])
            if tt.wantField != "" {
                assert.Equal(t, tt.wantField, got["field"])
            }
            if tt.wantKey != "" {
                assert.Equal(t, tt.wantValue, got[tt.wantKey])
            }
            if tt.wantCode == http.StatusInternalServerError {
                assert.Equal(t, "internal error", got["error"])
            }
            svc.AssertExpectations(t)
        })
    }
}

func TestCreateFacilityBookingMapsEvent(t *testing.T) {
    svc := new(bookingsMock)
    h := NewBookingHandler(svc, quietLogger())

    svc.On("CreateBooking", mock.Anything, mock.MatchedBy(func(in service.CreateBookingInput) bool {
        return in.Type == model.BookingFacility && in.Room == nil && in.Facility != nil &&
            len(in.Facility.FacilityIDs) == 2 && in.Facility.NumberOfPeople == 40 &&
            in.Facility.StartTime == "09:00" && in.Facility.EventDate.Equal(time.Date(2026, 12, 5, 0, 0, 0, 0, time.UTC)) &&
            len(in.Customers) == 1 && in.Customers[0].Name == "Ada"
    })).Return(model.Booking{ID: 3, Type: model.BookingFacility, Status: model.StatusPendingApproval}, nil)

    body := `{"type":"facility","facilityIds":[1,2],"title":"Offsite","numberOfPeople":40,
        "eventDate":"2026-12-05","startTime":"09:00","endTime":"17:00","customers":[{"name":"Ada"}]}`
    rec := call(t, h.Create, http.MethodPost, "/v1/bookings", "/v1/bookings", body, 5, "customer")

    assert.Equal(t, http.StatusCreated, rec.Code)
    assert.Equal(t, "pending_approval", decode(t, rec)["status"])
    svc.AssertExpectations(t)
}

func TestCancelPassesCaller(t *testing.T) {
    svc := new(bookingsMock)
    h := NewBookingHandler(svc, quietLogger())
    who := service.Actor{UserID: 5, Role: model.RoleCustomer}
    svc.On("Transition", mock.Anything, uint64(12), model.StatusCancelled, who, "").
        Return(model.Booking{ID: 12, Status: model.StatusCancelled}, nil)

    rec := call(t, h.Cancel, http.MethodPost, "/v1/bookings/:id/cancel", "/v1/bookings/12/cancel", "", 5, "customer")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "cancelled", decode(t, rec)["status"])
    svc.AssertExpectations(t)

    rec = call(t, h.Cancel, http.MethodPost, "/v1/bookings/:id/cancel", "/v1/bookings/zero/cancel", "", 5, "customer")
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Equal(t, "id", decode(t, rec)["field"])
}

func TestUpdateStatus(t *testing.T) {
    svc := new(bookingsMock)
    h := NewBookingHandler(svc, quietLogger())
    staff := service.Actor{UserID: 2, Role: model.RoleStaff}
    svc.On("Transition", mock.Anything, uint64(4), model.StatusCheckedIn, staff, "").
        Return(model.Booking{ID: 4, Status: model.StatusCheckedIn}, nil)
    svc.On("Transition", mock.Anything, uint64(5), model.StatusCheckedOut, staff, "").
        Return(model.Booking{}, &service.InvalidTransitionError{From: model.StatusCancelled, To: model.StatusCheckedOut})

    rec := call(t, h.UpdateStatus, http.MethodPut, "/v1/staff/bookings/:id/status", "/v1/staff/bookings/4/status",
        `{"status":"checked_in"}`, 2, "staff")
    assert.Equal(t, http.StatusOK, rec.Code)

    rec = call(t, h.UpdateStatus, http.MethodPut, "/v1/staff/bookings/:id/status", "/v1/staff/bookings/5/status",
        `{"status":"checked_out"}`, 2, "staff")
    assert.Equal(t, http.StatusConflict, rec.Code)

    rec = call(t, h.UpdateStatus, http.MethodPut, "/v1/staff/bookings/:id/status", "/v1/staff/bookings/4/status",
        `{"status":"teleported"}`, 2, "staff")
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Equal(t, "status", decode(t, rec)["field"])
    svc.AssertExpectations(t)
}

func TestGetAndListBookings(t *testing.T) {
    svc := new(bookingsMock)
    h := NewBookingHandler(svc, quietLogger())
    svc.On("ListForUser", mock.Anything, uint64(5)).Return([]model.Booking{{ID: 1}, {ID: 2}}, nil)
    svc.On("Get", mock.Anything, uint64(9), service.Actor{UserID: 5, Role: model.RoleCustomer}).
        Return(model.Booking{}, &service.NotFoundError{Resource: "booking", ID: 9})

    rec := call(t, h.Mine, http.MethodGet, "/v1/my-bookings", "/v1/my-bookings", "", 5, "customer")
    assert.Equal(t, http.StatusOK, rec.Code)
    var list []model.Booking
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
    assert.Len(t, list, 2)

    rec = call(t, h.Get, http.MethodGet, "/v1/bookings/:id", "/v1/bookings/9", "", 5, "customer")
    assert.Equal(t, http.StatusNotFound, rec.Code)
    svc.AssertExpectations(t)
}

func TestApprovalQueues(t *testing.T) {
    svc := new(approvalsMock)
    h := NewApprovalHandler(svc, quietLogger())
    svc.On("PendingQueue", mock.Anything, mock.MatchedBy(func(v *bool) bool { return v != nil && !*v })).
        Return([]model.Booking{{ID: 1}}, nil)
    svc.On("PendingQueue", mock.Anything, mock.MatchedBy(func(v *bool) bool { return v != nil && *v })).
        Return([]model.Booking{{ID: 2}, {ID: 3}}, nil)

    rec := call(t, h.RegularQueue, http.MethodGet, "/v1/staff/approvals", "/v1/staff/approvals", "", 2, "staff")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, "1", jsonLen(t, rec))

    rec = call(t, h.VIPQueue, http.MethodGet, "/v1/admin/approvals", "/v1/admin/approvals", "", 1, "admin")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, "2", jsonLen(t, rec))
    svc.AssertExpectations(t)
}

func jsonLen(t *testing.T, rec *httptest.ResponseRecorder) string {
    t.Helper()
    var list []json.RawMessage
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
    b, _ := json.Marshal(len(list))
    return string(b)
}

func TestApproveAndReject(t *testing.T) {
    svc := new(approvalsMock)
    h := NewApprovalHandler(svc, quietLogger())
    staff := service.Actor{UserID: 2, Role: model.RoleStaff}
    svc.On("Approve", mock.Anything, uint64(8), staff).
        Return(model.Booking{}, &service.ForbiddenError{Msg: "VIP bookings are reviewed by admins"})
    svc.On("Reject", mock.Anything, uint64(6), staff, "double booked").
        Return(model.Booking{ID: 6, Status: model.StatusRejected, RejectionReason: "double booked"}, nil)
    svc.On("Reject", mock.Anything, uint64(7), staff, "").
        Return(model.Booking{ID: 7, Status: model.StatusRejected}, nil)

    rec := call(t, h.Approve, http.MethodPost, "/v1/staff/approvals/:id/approve", "/v1/staff/approvals/8/approve", "", 2, "staff")
    assert.Equal(t, http.StatusForbidden, rec.Code)

    rec = call(t, h.Reject, http.MethodPost, "/v1/staff/approvals/:id/reject", "/v1/staff/approvals/6/reject",
        `{"reason":"double booked"}`, 2, "staff")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "double booked", decode(t, rec)["rejectionReason"])

    rec = call(t, h.Reject, http.MethodPost, "/v1/staff/approvals/:id/reject", "/v1/staff/approvals/7/reject", "", 2, "staff")
    assert.Equal(t, http.StatusOK, rec.Code)
    svc.AssertExpectations(t)
}

func TestAdminStats(t *testing.T) {
    reports := new(statsMock)
    reports.On("Stats", mock.Anything).Return(service.Stats{TotalUsers: 3, TotalRevenue: 700, OccupancyRate: 0.5}, nil)
    h := NewAdminHandler(nil, reports, quietLogger())

    rec := call(t, h.Stats, http.MethodGet, "/v1/admin/stats", "/v1/admin/stats", "", 1, "admin")
    assert.Equal(t, http.StatusOK, rec.Code)
    got := decode(t, rec)
    assert.EqualValues(t, 3, got["totalUsers"])
    assert.EqualValues(t, 700, got["totalRevenue"])
    assert.EqualValues(t, 0.5, got["occupancyRate"])
}

func TestJSONDate(t *testing.T) {
    var d jsonDate
    require.NoError(t, json.Unmarshal([]byte(`"2026-03-04"`), &d))
    assert.True(t, d.Equal(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)))
    require.NoError(t, json.Unmarshal([]byte(`"2026-03-04T10:00:00+02:00"`), &d))
    assert.True(t, d.Equal(time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC)))
    assert.Error(t, json.Unmarshal([]byte(`"March 4"`), &d))
}
