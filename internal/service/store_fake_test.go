package service

import (
    "context"
    "sort"
    "sync"
    "time"

    "github.com/iliyamo/room-booking/internal/model"
    "github.com/iliyamo/room-booking/internal/repository"
)

// memStore is an in-memory repository.Store.  Transactions are
// serialized and roll back by restoring a snapshot, which is enough to
// observe the atomicity the MySQL store gets from InnoDB.
type memStore struct {
    txMu sync.Mutex
    mu   sync.Mutex

    nextID     uint64
    users      map[uint64]model.User
    rooms      map[uint64]model.Room
    facilities map[uint64]model.Facility
    bookings   map[uint64]model.Booking
}

func newMemStore() *memStore {
    return &memStore{
        users:      map[uint64]model.User{},
        rooms:      map[uint64]model.Room{},
        facilities: map[uint64]model.Facility{},
        bookings:   map[uint64]model.Booking{},
    }
}

func (s *memStore) Users() repository.UserRepository           { return memUsers{s} }
func (s *memStore) Rooms() repository.RoomRepository           { return memRooms{s} }
func (s *memStore) Facilities() repository.FacilityRepository { return memFacilities{s} }
func (s *memStore) Bookings() repository.BookingRepository     { return memBookings{s} }

func (s *memStore) InTx(ctx context.Context, fn func(repository.Repos) error) error {
    s.txMu.Lock()
    defer s.txMu.Unlock()
    snap := s.snapshot()
    if err := fn(s); err != nil {
        s.restore(snap)
        return err
    }
    return nil
}

type memSnapshot struct {
    nextID     uint64
    users      map[uint64]model.User
    rooms      map[uint64]model.Room
    facilities map[uint64]model.Facility
    bookings   map[uint64]model.Booking
}

func (s *memStore) snapshot() memSnapshot {
    s.mu.Lock()
    defer s.mu.Unlock()
    return memSnapshot{s.nextID, cloneMap(s.users), cloneMap(s.rooms), cloneMap(s.facilities), cloneMap(s.bookings)}
}

func (s *memStore) restore(m memSnapshot) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.nextID, s.users, s.rooms, s.facilities, s.bookings = m.nextID, m.users, m.rooms, m.facilities, m.bookings
}

func cloneMap[V any](m map[uint64]V) map[uint64]V {
    out := make(map[uint64]V, len(m))
    for k, v := range m {
        out[k] = v
    }
    return out
}

func (s *memStore) id() uint64 { s.nextID++; return s.nextID }

// room returns a copy of the stored room for assertions.
func (s *memStore) room(id uint64) model.Room {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.rooms[id]
}

func (s *memStore) booking(id uint64) model.Booking {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.bookings[id]
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *model.User) error {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    for _, x := range r.s.users {
        if x.Email == u.Email {
            return repository.ErrDuplicate
        }
    }
    u.ID = r.s.id()
    u.CreatedAt = time.Now().UTC()
    r.s.users[u.ID] = *u
    return nil
}

func (r memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    u, ok := r.s.users[id]
    if !ok {
        return u, repository.ErrNotFound
    }
    return u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    for _, u := range r.s.users {
        if u.Email == email {
            return u, nil
        }
    }
    return model.User{}, repository.ErrNotFound
}

func (r memUsers) Update(_ context.Context, u *model.User) error {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    if _, ok := r.s.users[u.ID]; !ok {
        return repository.ErrNotFound
    }
    for _, x := range r.s.users {
        if x.Email == u.Email && x.ID != u.ID {
            return repository.ErrDuplicate
        }
    }
    r.s.users[u.ID] = *u
    return nil
}

func (r memUsers) UpdateRole(_ context.Context, id uint64, role model.Role) error {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    u, ok := r.s.users[id]
    if !ok {
        return repository.ErrNotFound
    }
    u.Role = role
    r.s.users[id] = u
    return nil
}

func (r memUsers) Delete(_ context.Context, id uint64) error {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    if _, ok := r.s.users[id]; !ok {
        return repository.ErrNotFound
    }
    delete(r.s.users, id)
    return nil
}

func (r memUsers) List(_ context.Context) ([]model.User, error) {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    return sortedValues(r.s.users, func(u model.User) uint64 { return u.ID }), nil
}

func (r memUsers) Count(_ context.Context) (int, error) {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    return len(r.s.users), nil
}

type memRooms struct{ s *memStore }

func (r memRooms) Create(_ context.Context, room *model.Room) error {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    for _, x := range r.s.rooms {
        if x.RoomNumber == room.RoomNumber {
            return repository.ErrDuplicate
        }
    }
    room.ID = r.s.id()
    r.s.rooms[room.ID] = *room
    return nil
}

func (r memRooms) GetByID(_ context.Context, id uint64) (model.Room, error) {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    room, ok := r.s.rooms[id]
    if !ok {
        return room, repository.ErrNotFound
    }
    return room, nil
}

func (r memRooms) GetByIDForUpdate(ctx context.Context, id uint64) (model.Room, error) {
    return r.GetByID(ctx, id)
}

func (r memRooms) List(_ context.Context, f repository.RoomFilter) ([]model.Room, error) {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    out := []model.Room{}
    for _, room := range sortedValues(r.s.rooms, func(x model.Room) uint64 { return x.ID }) {
        if f.IsShared != nil && room.IsShared != *f.IsShared {
            continue
        }
        if f.Status != nil && room.Status != *f.Status {
            continue
        }
        out = append(out, room)
    }
    return out, nil
}

func (r memRooms) Update(_ context.Context, room *model.Room) error {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    r.s.rooms[room.ID] = *room
    return nil
}

func (r memRooms) Delete(_ context.Context, id uint64) error {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    if _, ok := r.s.rooms[id]; !ok {
        return repository.ErrNotFound
    }
    delete(r.s.rooms, id)
    return nil
}

func (r memRooms) Count(_ context.Context) (int, int, error) {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    busy := 0
    for _, room := range r.s.rooms {
        if room.Status == model.RoomFullyBooked || room.Status == model.RoomOccupied {
            busy++
        }
    }
    return len(r.s.rooms), busy, nil
}

func (r memRooms) ReserveShared(_ context.Context, id uint64, guests int) (bool, error) {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    room, ok := r.s.rooms[id]
    if !ok || !room.IsShared ||
        (room.Status != model.RoomAvailable && room.Status != model.RoomPartiallyBooked) ||
        room.CurrentOccupancy+guests > room.MaxOccupancy {
        return false, nil
    }
    room.CurrentOccupancy += guests
    room.Status = model.DeriveSharedStatus(room.CurrentOccupancy, room.MaxOccupancy)
    r.s.rooms[id] = room
    return true, nil
}

func (r memRooms) ReservePrivate(_ context.Context, id uint64) (bool, error) {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    room, ok := r.s.rooms[id]
    if !ok || room.Status != model.RoomAvailable || room.CurrentOccupancy != 0 {
        return false, nil
    }
    room.Status = model.RoomFullyBooked
    room.CurrentOccupancy = room.MaxOccupancy
    r.s.rooms[id] = room
    return true, nil
}

func (r memRooms) ReleaseShared(_ context.Context, id uint64, guests int) error {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    room, ok := r.s.rooms[id]
    if !ok {
        return nil
    }
    room.CurrentOccupancy -= guests
    if room.CurrentOccupancy < 0 {
        room.CurrentOccupancy = 0
    }
    if room.Status != model.RoomMaintenance {
        if room.CurrentOccupancy == 0 {
            room.Status = model.RoomAvailable
        } else {
            room.Status = model.RoomPartiallyBooked
        }
    }
    r.s.rooms[id] = room
    return nil
}

func (r memRooms) ReleasePrivate(_ context.Context, id uint64) error {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    room, ok := r.s.rooms[id]
    if !ok {
        return nil
    }
    room.CurrentOccupancy = 0
    if room.Status != model.RoomMaintenance {
        room.Status = model.RoomAvailable
    }
    r.s.rooms[id] = room
    return nil
}

func (r memRooms) MarkOccupied(_ context.Context, id uint64) error {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    room, ok := r.s.rooms[id]
    if ok && room.Status != model.RoomMaintenance {
        room.Status = model.RoomOccupied
        r.s.rooms[id] = room
    }
    return nil
}

type memFacilities struct{ s *memStore }

func (r memFacilities) Create(_ context.Context, f *model.Facility) error {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    f.ID = r.s.id()
    r.s.facilities[f.ID] = *f
    return nil
}

func (r memFacilities) GetByID(_ context.Context, id uint64) (model.Facility, error) {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    f, ok := r.s.facilities[id]
    if !ok {
        return f, repository.ErrNotFound
    }
    return f, nil
}

func (r memFacilities) ListByIDs(_ context.Context, ids []uint64) ([]model.Facility, error) {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    var out []model.Facility
    for _, id := range ids {
        if f, ok := r.s.facilities[id]; ok {
            out = append(out, f)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
    return out, nil
}

func (r memFacilities) List(_ context.Context, f repository.FacilityFilter) ([]model.Facility, error) {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    out := []model.Facility{}
    for _, x := range sortedValues(r.s.facilities, func(x model.Facility) uint64 { return x.ID }) {
        if f.VIP != nil && x.IsVIP != *f.VIP {
            continue
        }
        if f.Kind != nil && x.Kind != *f.Kind {
            continue
        }
        out = append(out, x)
    }
    return out, nil
}

func (r memFacilities) Update(_ context.Context, f *model.Facility) error {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    r.s.facilities[f.ID] = *f
    return nil
}

func (r memFacilities) Delete(_ context.Context, id uint64) error {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    if _, ok := r.s.facilities[id]; !ok {
        return repository.ErrNotFound
    }
    delete(r.s.facilities, id)
    return nil
}

type memBookings struct{ s *memStore }

func (r memBookings) Create(_ context.Context, b *model.Booking) error {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    b.ID = r.s.id()
    b.CreatedAt = time.Now().UTC()
    b.UpdatedAt = b.CreatedAt
    r.s.bookings[b.ID] = *b
    return nil
}

func (r memBookings) GetByID(_ context.Context, id uint64) (model.Booking, error) {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    b, ok := r.s.bookings[id]
    if !ok {
        return b, repository.ErrNotFound
    }
    return b, nil
}

func (r memBookings) ListByUser(_ context.Context, userID uint64) ([]model.Booking, error) {
    return r.filter(func(b model.Booking) bool { return b.UserID == userID }), nil
}

func (r memBookings) ListAll(_ context.Context) ([]model.Booking, error) {
    return r.filter(func(model.Booking) bool { return true }), nil
}

func (r memBookings) ListPendingFacility(_ context.Context, vip *bool) ([]model.Booking, error) {
    return r.filter(func(b model.Booking) bool {
        return b.Type == model.BookingFacility && b.Status == model.StatusPendingApproval &&
            (vip == nil || b.IsVIP == *vip)
    }), nil
}

func (r memBookings) filter(keep func(model.Booking) bool) []model.Booking {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    out := []model.Booking{}
    for _, b := range sortedValues(r.s.bookings, func(b model.Booking) uint64 { return b.ID }) {
        if keep(b) {
            out = append(out, b)
        }
    }
    return out
}

func (r memBookings) CompareAndSetStatus(_ context.Context, id uint64, from, to model.BookingStatus, reason string) (bool, error) {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    b, ok := r.s.bookings[id]
    if !ok || b.Status != from {
        return false, nil
    }
    b.Status = to
    if reason != "" {
        b.RejectionReason = reason
    }
    r.s.bookings[id] = b
    return true, nil
}

func (r memBookings) Totals(_ context.Context) (repository.BookingTotals, error) {
    r.s.mu.Lock()
    defer r.s.mu.Unlock()
    var t repository.BookingTotals
    for _, b := range r.s.bookings {
        t.Count++
        if b.Status != model.StatusCancelled && b.Status != model.StatusRejected {
            t.Revenue += b.TotalAmount
        }
        switch b.Status {
        case model.StatusConfirmed, model.StatusCheckedIn, model.StatusCheckedOut:
            t.ConfirmedRevenue += b.TotalAmount
        }
    }
    return t, nil
}

func sortedValues[V any](m map[uint64]V, key func(V) uint64) []V {
    out := make([]V, 0, len(m))
    for _, v := range m {
        out = append(out, v)
    }
    sort.Slice(out, func(i, j int) bool { return key(out[i]) < key(out[j]) })
    return out
}
