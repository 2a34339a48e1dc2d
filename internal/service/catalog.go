package service

import (
    "context"
    "errors"
    "strings"

    "github.com/sirupsen/logrus"

    "github.com/iliyamo/room-booking/internal/model"
    "github.com/iliyamo/room-booking/internal/repository"
)

// Catalog manages the room and facility inventory.
type Catalog struct {
    store repository.Store
    cache CacheInvalidator
    log   *logrus.Logger
}

// NewCatalog wires a Catalog.  A nil cache disables purging.
func NewCatalog(store repository.Store, cache CacheInvalidator, log *logrus.Logger) *Catalog {
    if cache == nil {
        cache = nopInvalidator{}
    }
    return &Catalog{store: store, cache: cache, log: log}
}

// RoomInput carries the fields of a new room.
type RoomInput struct {
    RoomNumber         string
    Type               string
    Description        string
    Image              string
    Status             model.RoomStatus
    Price              *float64
    BasePricePerPerson *float64
    IsShared           bool
    MaxOccupancy       int
    CurrentOccupancy   int
}

// RoomPatch carries the fields to change on a room; nil means keep.
type RoomPatch struct {
    RoomNumber         *string
    Type               *string
    Description        *string
    Image              *string
    Status             *model.RoomStatus
    Price              *float64
    BasePricePerPerson *float64
    IsShared           *bool
    MaxOccupancy       *int
    CurrentOccupancy   *int
}

func (c *Catalog) CreateRoom(ctx context.Context, in RoomInput) (model.Room, error) {
    room := model.Room{
        RoomNumber:         strings.TrimSpace(in.RoomNumber),
        Type:               strings.TrimSpace(in.Type),
        Description:        in.Description,
        Image:              in.Image,
        Status:             in.Status,
        Price:              in.Price,
        BasePricePerPerson: in.BasePricePerPerson,
        IsShared:           in.IsShared,
        MaxOccupancy:       in.MaxOccupancy,
        CurrentOccupancy:   in.CurrentOccupancy,
    }
    if room.MaxOccupancy == 0 {
        room.MaxOccupancy = 1
    }
    if err := normalizeRoom(&room, in.Status == ""); err != nil {
        return model.Room{}, err
    }
    if err := c.store.Rooms().Create(ctx, &room); err != nil {
        if errors.Is(err, repository.ErrDuplicate) {
            return model.Room{}, &ConflictError{Msg: "room number " + room.RoomNumber + " already exists"}
        }
        return model.Room{}, err
    }
    c.purgeRooms(ctx)
    c.log.WithFields(logrus.Fields{"room_id": room.ID, "room_number": room.RoomNumber}).Info("room created")
    return room, nil
}

// UpdateRoom applies p to room id.  An explicit status always wins, so
// admins can override any state; otherwise a shared room's status is
// re-derived from its occupancy.
func (c *Catalog) UpdateRoom(ctx context.Context, id uint64, p RoomPatch) (model.Room, error) {
    var room model.Room
    err := c.store.InTx(ctx, func(r repository.Repos) error {
        var err error
        room, err = r.Rooms().GetByIDForUpdate(ctx, id)
        if errors.Is(err, repository.ErrNotFound) {
            return &NotFoundError{Resource: "room", ID: id}
        }
        if err != nil {
            return err
        }
        applyRoomPatch(&room, p)
        derive := p.Status == nil && room.Status != model.RoomMaintenance && room.Status != model.RoomOccupied
        if err := normalizeRoom(&room, derive); err != nil {
            return err
        }
        if err := r.Rooms().Update(ctx, &room); err != nil {
            if errors.Is(err, repository.ErrDuplicate) {
                return &ConflictError{Msg: "room number " + room.RoomNumber + " already exists"}
            }
            return err
        }
        return nil
    })
    if err != nil {
        return model.Room{}, err
    }
    c.purgeRooms(ctx)
    return room, nil
}

func (c *Catalog) DeleteRoom(ctx context.Context, id uint64) error {
    if err := c.store.Rooms().Delete(ctx, id); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return &NotFoundError{Resource: "room", ID: id}
        }
        return err
    }
    c.purgeRooms(ctx)
    c.log.WithField("room_id", id).Info("room deleted")
    return nil
}

func (c *Catalog) GetRoom(ctx context.Context, id uint64) (model.Room, error) {
    room, err := c.store.Rooms().GetByID(ctx, id)
    if errors.Is(err, repository.ErrNotFound) {
        return model.Room{}, &NotFoundError{Resource: "room", ID: id}
    }
    return room, err
}

func (c *Catalog) ListRooms(ctx context.Context, f repository.RoomFilter) ([]model.Room, error) {
    if f.Status != nil && !f.Status.Valid() {
        return nil, invalid("status", "unknown room status %q", *f.Status)
    }
    return c.store.Rooms().List(ctx, f)
}

func applyRoomPatch(room *model.Room, p RoomPatch) {
    if p.RoomNumber != nil {
        room.RoomNumber = strings.TrimSpace(*p.RoomNumber)
    }
    if p.Type != nil {
        room.Type = strings.TrimSpace(*p.Type)
    }
    if p.Description != nil {
        room.Description = *p.Description
    }
    if p.Image != nil {
        room.Image = *p.Image
    }
    if p.Status != nil {
        room.Status = *p.Status
    }
    if p.Price != nil {
        room.Price = p.Price
    }
    if p.BasePricePerPerson != nil {
        room.BasePricePerPerson = p.BasePricePerPerson
    }
    if p.IsShared != nil {
        room.IsShared = *p.IsShared
    }
    if p.MaxOccupancy != nil {
        room.MaxOccupancy = *p.MaxOccupancy
    }
    if p.CurrentOccupancy != nil {
        room.CurrentOccupancy = *p.CurrentOccupancy
    }
}

// normalizeRoom validates room and fills defaults.  With deriveStatus a
// shared room's status follows its occupancy; a private room's occupancy
// always follows its status.
func normalizeRoom(room *model.Room, deriveStatus bool) error {
    if room.RoomNumber == "" {
        return invalid("roomNumber", "is required")
    }
    if room.Type == "" {
        return invalid("type", "is required")
    }
    if (room.Price != nil && *room.Price < 0) || (room.BasePricePerPerson != nil && *room.BasePricePerPerson < 0) {
        return invalid("price", "must not be negative")
    }
    if _, err := room.Pricing(); err != nil {
        if room.IsShared {
            return invalid("basePricePerPerson", "price or basePricePerPerson is required")
        }
        return invalid("price", "is required for private rooms")
    }
    if !room.IsShared {
        room.MaxOccupancy = 1
    }
    if room.MaxOccupancy < 1 {
        return invalid("maxOccupancy", "must be at least 1")
    }
    if room.CurrentOccupancy < 0 || room.CurrentOccupancy > room.MaxOccupancy {
        return invalid("currentOccupancy", "must be between 0 and %d", room.MaxOccupancy)
    }
    if room.Status == "" {
        room.Status = model.RoomAvailable
    }
    if !room.Status.Valid() {
        return invalid("status", "unknown room status %q", room.Status)
    }
    if !room.IsShared {
        switch room.Status {
        case model.RoomAvailable, model.RoomMaintenance:
            room.CurrentOccupancy = 0
        case model.RoomPartiallyBooked:
            room.Status = model.RoomFullyBooked
            room.CurrentOccupancy = room.MaxOccupancy
        default:
            room.CurrentOccupancy = room.MaxOccupancy
        }
        return nil
    }
    if deriveStatus {
        room.Status = model.DeriveSharedStatus(room.CurrentOccupancy, room.MaxOccupancy)
    }
    return nil
}

func (c *Catalog) purgeRooms(ctx context.Context) {
    purgeRoutes(ctx, c.cache, c.log, RouteRooms, RouteRoom)
}

func purgeRoutes(ctx context.Context, cache CacheInvalidator, log *logrus.Logger, routes ...string) {
    for _, route := range routes {
        if err := cache.PurgeRoute(ctx, route); err != nil {
            log.WithError(err).WithField("route", route).Warn("cache purge failed")
        }
    }
}

// FacilityInput carries the fields of a new facility.
type FacilityInput struct {
    Name      string
    Kind      model.FacilityKind
    Capacity  int
    Price     float64
    Status    model.FacilityStatus
    IsVIP     bool
    Amenities []string
}

// FacilityPatch carries the fields to change on a facility.
type FacilityPatch struct {
    Name      *string
    Kind      *model.FacilityKind
    Capacity  *int
    Price     *float64
    Status    *model.FacilityStatus
    IsVIP     *bool
    Amenities []string
}

func (c *Catalog) CreateFacility(ctx context.Context, in FacilityInput) (model.Facility, error) {
    f := model.Facility{
        Name:      strings.TrimSpace(in.Name),
        Kind:      in.Kind,
        Capacity:  in.Capacity,
        Price:     in.Price,
        Status:    in.Status,
        IsVIP:     in.IsVIP,
        Amenities: in.Amenities,
    }
    if err := normalizeFacility(&f); err != nil {
        return model.Facility{}, err
    }
    if err := c.store.Facilities().Create(ctx, &f); err != nil {
        if errors.Is(err, repository.ErrDuplicate) {
            return model.Facility{}, &ConflictError{Msg: "facility " + f.Name + " already exists"}
        }
        return model.Facility{}, err
    }
    purgeRoutes(ctx, c.cache, c.log, RouteFacilities, RouteFacility)
    return f, nil
}

func (c *Catalog) UpdateFacility(ctx context.Context, id uint64, p FacilityPatch) (model.Facility, error) {
    f, err := c.GetFacility(ctx, id)
    if err != nil {
        return model.Facility{}, err
    }
    if p.Name != nil {
        f.Name = strings.TrimSpace(*p.Name)
    }
    if p.Kind != nil {
        f.Kind = *p.Kind
    }
    if p.Capacity != nil {
        f.Capacity = *p.Capacity
    }
    if p.Price != nil {
        f.Price = *p.Price
    }
    if p.Status != nil {
        f.Status = *p.Status
    }
    if p.IsVIP != nil {
        f.IsVIP = *p.IsVIP
    }
    if p.Amenities != nil {
        f.Amenities = p.Amenities
    }
    if err := normalizeFacility(&f); err != nil {
        return model.Facility{}, err
    }
    if err := c.store.Facilities().Update(ctx, &f); err != nil {
        if errors.Is(err, repository.ErrDuplicate) {
            return model.Facility{}, &ConflictError{Msg: "facility " + f.Name + " already exists"}
        }
        return model.Facility{}, err
    }
    purgeRoutes(ctx, c.cache, c.log, RouteFacilities, RouteFacility)
    return f, nil
}

func (c *Catalog) DeleteFacility(ctx context.Context, id uint64) error {
    if err := c.store.Facilities().Delete(ctx, id); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return &NotFoundError{Resource: "facility", ID: id}
        }
        return err
    }
    purgeRoutes(ctx, c.cache, c.log, RouteFacilities, RouteFacility)
    return nil
}

func (c *Catalog) GetFacility(ctx context.Context, id uint64) (model.Facility, error) {
    f, err := c.store.Facilities().GetByID(ctx, id)
    if errors.Is(err, repository.ErrNotFound) {
        return model.Facility{}, &NotFoundError{Resource: "facility", ID: id}
    }
    return f, err
}

func (c *Catalog) ListFacilities(ctx context.Context, f repository.FacilityFilter) ([]model.Facility, error) {
    if f.Kind != nil && !f.Kind.Valid() {
        return nil, invalid("kind", "unknown facility kind %q", *f.Kind)
    }
    return c.store.Facilities().List(ctx, f)
}

func normalizeFacility(f *model.Facility) error {
    if f.Name == "" {
        return invalid("name", "is required")
    }
    if !f.Kind.Valid() {
        return invalid("type", "must be conference_room or hall")
    }
    if f.Capacity < 1 {
        return invalid("capacity", "must be at least 1")
    }
    if f.Price <= 0 {
        return invalid("price", "must be positive")
    }
    if f.Status == "" {
        f.Status = model.FacilityAvailable
    }
    if f.Status != model.FacilityAvailable && f.Status != model.FacilityMaintenance {
        return invalid("status", "unknown facility status %q", f.Status)
    }
    if f.Amenities == nil {
        f.Amenities = []string{}
    }
    return nil
}
