package service

import (
    "context"
    "errors"
    "strings"
    "time"

    "github.com/sirupsen/logrus"

    "github.com/iliyamo/room-booking/internal/metrics"
    "github.com/iliyamo/room-booking/internal/model"
    "github.com/iliyamo/room-booking/internal/queue"
    "github.com/iliyamo/room-booking/internal/repository"
)

// Lifecycle creates bookings and moves them through their statuses.
// Room occupancy and booking status change in the same transaction, so
// a failed step leaves both as they were.
type Lifecycle struct {
    store  repository.Store
    events EventPublisher
    cache  CacheInvalidator
    log    *logrus.Logger
    now    func() time.Time
}

// NewLifecycle wires a Lifecycle.  Nil events or cache disable
// publishing or purging.
func NewLifecycle(store repository.Store, events EventPublisher, cache CacheInvalidator, log *logrus.Logger) *Lifecycle {
    if events == nil {
        events = nopPublisher{}
    }
    if cache == nil {
        cache = nopInvalidator{}
    }
    return &Lifecycle{store: store, events: events, cache: cache, log: log, now: time.Now}
}

// CustomerInput is an extra guest listed on a booking.
type CustomerInput struct {
    Name  string
    Email string
}

// RoomBookingInput is the room-stay part of a booking request.
type RoomBookingInput struct {
    RoomID          uint64
    CheckInDate     time.Time
    CheckOutDate    time.Time
    GuestCount      int
    IsSharedBooking bool
}

// FacilityBookingInput is the event part of a booking request.
type FacilityBookingInput struct {
    FacilityIDs    []uint64
    Title          string
    Occasion       string
    NumberOfPeople int
    EventDate      time.Time
    StartTime      string
    EndTime        string
    Notes          string
}

// CreateBookingInput is a booking request.  Exactly one of Room and
// Facility is set, matching Type.
type CreateBookingInput struct {
    UserID    uint64
    Type      model.BookingType
    Customers []CustomerInput
    Room      *RoomBookingInput
    Facility  *FacilityBookingInput
}

// CreateBooking admits, prices and persists a booking.  Room bookings
// start confirmed; facility bookings wait for approval.
func (l *Lifecycle) CreateBooking(ctx context.Context, in CreateBookingInput) (model.Booking, error) {
    switch in.Type {
    case model.BookingRoom:
        if in.Room == nil {
            return model.Booking{}, invalid("roomId", "room details are required")
        }
    case model.BookingFacility:
        if in.Facility == nil {
            return model.Booking{}, invalid("facilityIds", "facility details are required")
        }
    default:
        return model.Booking{}, invalid("type", "must be room or facility")
    }

    var b model.Booking
    err := l.store.InTx(ctx, func(r repository.Repos) error {
        user, err := r.Users().GetByID(ctx, in.UserID)
        if errors.Is(err, repository.ErrNotFound) {
            return &NotFoundError{Resource: "user", ID: in.UserID}
        }
        if err != nil {
            return err
        }
        customers, err := buildCustomers(user, in.Customers)
        if err != nil {
            return err
        }
        if in.Type == model.BookingRoom {
            b, err = l.prepareRoomBooking(ctx, r, in.Room)
        } else {
            b, err = prepareFacilityBooking(ctx, r, user, in.Facility)
        }
        if err != nil {
            return err
        }
        b.UserID = user.ID
        b.Customers = customers
        return r.Bookings().Create(ctx, &b)
    })
    if err != nil {
        return model.Booking{}, err
    }

    metrics.ObserveBookingCreated(string(b.Type))
    l.log.WithFields(logrus.Fields{
        "booking_id": b.ID, "user_id": b.UserID, "type": b.Type, "total": b.TotalAmount,
    }).Info("booking created")
    l.publish(ctx, queue.NewBookingEvent(queue.KindBookingCreated, b, "", b.UserID, l.now()))
    if b.Type == model.BookingRoom {
        purgeRoutes(ctx, l.cache, l.log, RouteRooms, RouteRoom)
    }
    return b, nil
}

func (l *Lifecycle) prepareRoomBooking(ctx context.Context, r repository.Repos, in *RoomBookingInput) (model.Booking, error) {
    if in.CheckInDate.IsZero() {
        return model.Booking{}, invalid("checkInDate", "is required")
    }
    if in.CheckOutDate.IsZero() {
        return model.Booking{}, invalid("checkOutDate", "is required")
    }
    guests := in.GuestCount
    if guests == 0 {
        guests = 1
    }
    if guests < 0 {
        return model.Booking{}, invalid("guestCount", "must be at least 1")
    }
    room, err := r.Rooms().GetByID(ctx, in.RoomID)
    if errors.Is(err, repository.ErrNotFound) {
        return model.Booking{}, &NotFoundError{Resource: "room", ID: in.RoomID}
    }
    if err != nil {
        return model.Booking{}, err
    }

    shared := room.IsShared && in.IsSharedBooking
    total, err := QuoteRoom(room, in.CheckInDate, in.CheckOutDate, guests, shared)
    if err != nil {
        return model.Booking{}, err
    }
    res, err := Reserve(ctx, r.Rooms(), room.ID, guests, in.IsSharedBooking)
    if err != nil {
        return model.Booking{}, err
    }

    roomID := room.ID
    return model.Booking{
        RoomID:      &roomID,
        Type:        model.BookingRoom,
        TotalAmount: total,
        Status:      model.StatusConfirmed,
        RoomStay: &model.RoomStay{
            CheckInDate:     in.CheckInDate.UTC(),
            CheckOutDate:    in.CheckOutDate.UTC(),
            GuestCount:      res.Guests,
            IsSharedBooking: res.Shared,
        },
    }, nil
}

func prepareFacilityBooking(ctx context.Context, r repository.Repos, user model.User, in *FacilityBookingInput) (model.Booking, error) {
    if err := validateEvent(in); err != nil {
        return model.Booking{}, err
    }
    facilities, err := r.Facilities().ListByIDs(ctx, in.FacilityIDs)
    if err != nil {
        return model.Booking{}, err
    }
    if missing := missingFacility(in.FacilityIDs, facilities); missing != 0 {
        return model.Booking{}, &NotFoundError{Resource: "facility", ID: missing}
    }
    if err := checkFacilitySelection(user, facilities, in.NumberOfPeople); err != nil {
        return model.Booking{}, err
    }

    names := make([]string, len(facilities))
    ids := make([]uint64, len(facilities))
    for i, f := range facilities {
        names[i] = f.Name
        ids[i] = f.ID
    }
    return model.Booking{
        Type:        model.BookingFacility,
        TotalAmount: QuoteFacilities(facilities),
        Status:      model.StatusPendingApproval,
        FacilityEvent: &model.FacilityEvent{
            FacilityIDs:    ids,
            FacilityName:   strings.Join(names, ", "),
            Title:          strings.TrimSpace(in.Title),
            Occasion:       strings.TrimSpace(in.Occasion),
            NumberOfPeople: in.NumberOfPeople,
            EventDate:      in.EventDate.UTC(),
            StartTime:      in.StartTime,
            EndTime:        in.EndTime,
            Notes:          in.Notes,
            IsVIP:          user.IsVIP,
        },
    }, nil
}

func validateEvent(in *FacilityBookingInput) error {
    if len(in.FacilityIDs) == 0 {
        return invalid("facilityIds", "select at least one facility")
    }
    seen := make(map[uint64]struct{}, len(in.FacilityIDs))
    for _, id := range in.FacilityIDs {
        if _, dup := seen[id]; dup {
            return invalid("facilityIds", "facility %d selected twice", id)
        }
        seen[id] = struct{}{}
    }
    if in.NumberOfPeople < 1 {
        return invalid("numberOfPeople", "must be at least 1")
    }
    if in.EventDate.IsZero() {
        return invalid("eventDate", "is required")
    }
    var start, end time.Time
    var err error
    if in.StartTime != "" {
        if start, err = time.Parse("15:04", in.StartTime); err != nil {
            return invalid("startTime", "must be HH:MM")
        }
    }
    if in.EndTime != "" {
        if end, err = time.Parse("15:04", in.EndTime); err != nil {
            return invalid("endTime", "must be HH:MM")
        }
    }
    if in.StartTime != "" && in.EndTime != "" && !end.After(start) {
        return invalid("endTime", "must be after startTime")
    }
    return nil
}

// checkFacilitySelection enforces the catalog rules: a regular customer
// books exactly one regular facility; a VIP customer books a bundle of
// up to two conference rooms and one hall.
func checkFacilitySelection(user model.User, facilities []model.Facility, people int) error {
    var conference, halls int
    for _, f := range facilities {
        if f.Status != model.FacilityAvailable {
            return &UnavailableError{Resource: "facility", ID: f.ID, Status: string(f.Status)}
        }
        if f.Capacity < people {
            return invalid("numberOfPeople", "%d exceeds the capacity %d of %s", people, f.Capacity, f.Name)
        }
        if f.IsVIP && !user.IsVIP {
            return &ForbiddenError{Msg: f.Name + " is reserved for VIP customers"}
        }
        switch f.Kind {
        case model.KindConferenceRoom:
            conference++
        case model.KindHall:
            halls++
        }
    }
    if !user.IsVIP {
        if len(facilities) != 1 {
            return invalid("facilityIds", "select exactly one facility")
        }
        return nil
    }
    if conference > 2 {
        return invalid("facilityIds", "at most 2 conference rooms per booking")
    }
    if halls > 1 {
        return invalid("facilityIds", "at most 1 hall per booking")
    }
    return nil
}

func missingFacility(ids []uint64, found []model.Facility) uint64 {
    have := make(map[uint64]bool, len(found))
    for _, f := range found {
        have[f.ID] = true
    }
    for _, id := range ids {
        if !have[id] {
            return id
        }
    }
    return 0
}

func buildCustomers(user model.User, extra []CustomerInput) ([]model.Customer, error) {
    uid := user.ID
    out := []model.Customer{{UserID: &uid, Name: user.Name, Email: user.Email, IsPrimary: true}}
    for i, c := range extra {
        name := strings.TrimSpace(c.Name)
        if name == "" {
            return nil, invalid("customers", "entry %d has no name", i)
        }
        out = append(out, model.Customer{Name: name, Email: strings.ToLower(strings.TrimSpace(c.Email))})
    }
    return out, nil
}

// transitionRule lists the statuses a target may be reached from and
// whether the booking owner may trigger it; staff and admins always may.
type transitionRule struct {
    from         []model.BookingStatus
    ownerAllowed bool
}

var transitionRules = map[model.BookingStatus]transitionRule{
    model.StatusConfirmed:  {from: []model.BookingStatus{model.StatusPendingApproval}},
    model.StatusRejected:   {from: []model.BookingStatus{model.StatusPendingApproval}},
    model.StatusCheckedIn:  {from: []model.BookingStatus{model.StatusConfirmed}},
    model.StatusCheckedOut: {from: []model.BookingStatus{model.StatusCheckedIn}},
    model.StatusCancelled: {
        from:         []model.BookingStatus{model.StatusPending, model.StatusPendingApproval, model.StatusConfirmed},
        ownerAllowed: true,
    },
}

// Transition moves booking id to target on behalf of actor.  reason is
// stored for rejections.
func (l *Lifecycle) Transition(ctx context.Context, id uint64, target model.BookingStatus, actor Actor, reason string) (model.Booking, error) {
    return l.transition(ctx, id, target, actor, reason, nil)
}

// transition is Transition with an extra check run on the loaded
// booking before anything is written.
func (l *Lifecycle) transition(ctx context.Context, id uint64, target model.BookingStatus, actor Actor, reason string,
    check func(model.Booking) error) (model.Booking, error) {
    rule, ok := transitionRules[target]
    if !ok {
        return model.Booking{}, &InvalidTransitionError{To: target, Reason: "not a reachable status"}
    }

    var b model.Booking
    var from model.BookingStatus
    roomTouched := false
    err := l.store.InTx(ctx, func(r repository.Repos) error {
        var err error
        b, err = r.Bookings().GetByID(ctx, id)
        if errors.Is(err, repository.ErrNotFound) {
            return &NotFoundError{Resource: "booking", ID: id}
        }
        if err != nil {
            return err
        }
        from = b.Status

        if !actor.Role.IsStaff() && !(rule.ownerAllowed && b.UserID == actor.UserID) {
            return &InvalidTransitionError{From: from, To: target, Forbidden: true, Reason: "not permitted for role " + string(actor.Role)}
        }
        if !containsStatus(rule.from, from) {
            why := ""
            if from.IsTerminal() {
                why = "booking is " + string(from)
            }
            return &InvalidTransitionError{From: from, To: target, Reason: why}
        }
        if check != nil {
            if err := check(b); err != nil {
                return err
            }
        }
        if (target == model.StatusConfirmed || target == model.StatusRejected) &&
            b.FacilityEvent != nil && b.IsVIP && actor.Role != model.RoleAdmin {
            return &InvalidTransitionError{From: from, To: target, Forbidden: true, Reason: "VIP requests are reviewed by an admin"}
        }
        if target == model.StatusCheckedIn {
            if b.RoomStay == nil {
                return &InvalidTransitionError{From: from, To: target, Reason: "only room bookings check in"}
            }
            if dateOnly(b.CheckInDate).After(dateOnly(l.now())) {
                return &InvalidTransitionError{From: from, To: target, Reason: "check-in date not reached"}
            }
        }

        swapped, err := r.Bookings().CompareAndSetStatus(ctx, id, from, target, reason)
        if err != nil {
            return err
        }
        if !swapped {
            return &InvalidTransitionError{From: from, To: target, Reason: "booking changed concurrently"}
        }

        if res, isRoom := reservationOf(b); isRoom {
            switch target {
            case model.StatusCheckedIn:
                if !res.Shared {
                    roomTouched = true
                    return r.Rooms().MarkOccupied(ctx, res.RoomID)
                }
            case model.StatusCheckedOut, model.StatusCancelled:
                roomTouched = true
                return Release(ctx, r.Rooms(), res)
            }
        }
        return nil
    })
    if err != nil {
        return model.Booking{}, err
    }

    b.Status = target
    if reason != "" && target == model.StatusRejected {
        b.RejectionReason = reason
    }
    metrics.ObserveTransition(string(target))
    l.log.WithFields(logrus.Fields{
        "booking_id": id, "from": from, "to": target, "actor_id": actor.UserID, "actor_role": actor.Role,
    }).Info("booking status changed")
    l.publish(ctx, queue.NewBookingEvent(queue.KindBookingStatusChanged, b, from, actor.UserID, l.now()))
    if roomTouched {
        purgeRoutes(ctx, l.cache, l.log, RouteRooms, RouteRoom)
    }
    return b, nil
}

// Get returns one booking.  Customers only see their own bookings.
func (l *Lifecycle) Get(ctx context.Context, id uint64, actor Actor) (model.Booking, error) {
    b, err := l.store.Bookings().GetByID(ctx, id)
    if errors.Is(err, repository.ErrNotFound) || (err == nil && !actor.Role.IsStaff() && b.UserID != actor.UserID) {
        return model.Booking{}, &NotFoundError{Resource: "booking", ID: id}
    }
    return b, err
}

// ListForUser returns the bookings of userID with their rooms attached.
func (l *Lifecycle) ListForUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
    return l.store.Bookings().ListByUser(ctx, userID)
}

// ListAll returns every booking with user and room attached.
func (l *Lifecycle) ListAll(ctx context.Context) ([]model.Booking, error) {
    return l.store.Bookings().ListAll(ctx)
}

// publish sends ev after commit.  A broker failure is logged and
// counted; the booking itself already succeeded.
func (l *Lifecycle) publish(ctx context.Context, ev queue.BookingEvent) {
    if err := l.events.Publish(ctx, ev); err != nil {
        metrics.ObservePublishFailure()
        l.log.WithError(err).WithFields(logrus.Fields{"booking_id": ev.BookingID, "kind": ev.Kind}).
            Warn("booking event not published")
    }
}

func containsStatus(list []model.BookingStatus, s model.BookingStatus) bool {
    for _, v := range list {
        if v == s {
            return true
        }
    }
    return false
}

func dateOnly(t time.Time) time.Time {
    y, m, d := t.UTC().Date()
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
