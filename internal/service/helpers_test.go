package service

import (
    "context"
    "errors"
    "io"
    "sync"
    "testing"
    "time"

    "github.com/sirupsen/logrus"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/room-booking/internal/model"
    "github.com/iliyamo/room-booking/internal/queue"
)

var testNow = time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

func quietLogger() *logrus.Logger {
    l := logrus.New()
    l.SetOutput(io.Discard)
    return l
}

type recordingPublisher struct {
    mu     sync.Mutex
    events []queue.BookingEvent
    err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.BookingEvent) error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.events = append(p.events, ev)
    return p.err
}

func (p *recordingPublisher) kinds() []string {
    p.mu.Lock()
    defer p.mu.Unlock()
    out := make([]string, len(p.events))
    for i, ev := range p.events {
        out[i] = ev.Kind
    }
    return out
}

type recordingCache struct {
    mu     sync.Mutex
    routes []string
}

func (c *recordingCache) PurgeRoute(_ context.Context, route string) error {
    c.mu.Lock()
    defer c.mu.Unlock()
    c.routes = append(c.routes, route)
    return nil
}

type fixture struct {
    store     *memStore
    events    *recordingPublisher
    cache     *recordingCache
    lifecycle *Lifecycle
    approval  *FacilityApproval
    catalog   *Catalog
}

func newFixture(t *testing.T) *fixture {
    t.Helper()
    f := &fixture{store: newMemStore(), events: &recordingPublisher{}, cache: &recordingCache{}}
    log := quietLogger()
    f.lifecycle = NewLifecycle(f.store, f.events, f.cache, log)
    f.lifecycle.now = func() time.Time { return testNow }
    f.approval = NewFacilityApproval(f.store, f.lifecycle)
    f.catalog = NewCatalog(f.store, f.cache, log)
    return f
}

func (f *fixture) user(t *testing.T, name string, role model.Role, wealth float64) model.User {
    t.Helper()
    u := model.User{Name: name, Email: name + "@example.com", Role: role, Wealth: wealth, IsVIP: model.IsVIPWealth(wealth)}
    require.NoError(t, f.store.Users().Create(context.Background(), &u))
    return u
}

func (f *fixture) privateRoom(t *testing.T, number string, price float64) model.Room {
    t.Helper()
    r, err := f.catalog.CreateRoom(context.Background(), RoomInput{RoomNumber: number, Type: "double", Price: &price})
    require.NoError(t, err)
    return r
}

func (f *fixture) sharedRoom(t *testing.T, number string, perPerson float64, beds int) model.Room {
    t.Helper()
    r, err := f.catalog.CreateRoom(context.Background(), RoomInput{
        RoomNumber: number, Type: "dorm", BasePricePerPerson: &perPerson, IsShared: true, MaxOccupancy: beds,
    })
    require.NoError(t, err)
    return r
}

func (f *fixture) facility(t *testing.T, name string, kind model.FacilityKind, capacity int, price float64, vip bool) model.Facility {
    t.Helper()
    fac, err := f.catalog.CreateFacility(context.Background(), FacilityInput{
        Name: name, Kind: kind, Capacity: capacity, Price: price, IsVIP: vip,
    })
    require.NoError(t, err)
    return fac
}

func day(offset int) time.Time {
    return time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func roomRequest(userID, roomID uint64, in, out time.Time, guests int, shared bool) CreateBookingInput {
    return CreateBookingInput{
        UserID: userID,
        Type:   model.BookingRoom,
        Room: &RoomBookingInput{
            RoomID: roomID, CheckInDate: in, CheckOutDate: out, GuestCount: guests, IsSharedBooking: shared,
        },
    }
}

func facilityRequest(userID uint64, people int, ids ...uint64) CreateBookingInput {
    return CreateBookingInput{
        UserID: userID,
        Type:   model.BookingFacility,
        Facility: &FacilityBookingInput{
            FacilityIDs: ids, Title: "Launch", Occasion: "corporate", NumberOfPeople: people,
            EventDate: day(14), StartTime: "09:00", EndTime: "17:00",
        },
    }
}

func asError[T error](t *testing.T, err error) T {
    t.Helper()
    var target T
    require.Truef(t, errors.As(err, &target), "expected %T, got %v", target, err)
    return target
}
