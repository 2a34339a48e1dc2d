package service

import (
    "context"
    "math"

    "github.com/iliyamo/room-booking/internal/repository"
)

// Stats is the admin dashboard summary.
type Stats struct {
    TotalUsers       int     `json:"totalUsers"`
    TotalRooms       int     `json:"totalRooms"`
    TotalBookings    int     `json:"totalBookings"`
    TotalRevenue     float64 `json:"totalRevenue"`
    ConfirmedRevenue float64 `json:"confirmedRevenue"`
    OccupancyRate    float64 `json:"occupancyRate"`
}

type Reports struct{ store repository.Store }

func NewReports(store repository.Store) *Reports { return &Reports{store: store} }

// Stats aggregates users, rooms and bookings.  OccupancyRate is the
// share of rooms that are fully booked or occupied, rounded to 4 places.
func (r *Reports) Stats(ctx context.Context) (Stats, error) {
    var s Stats
    var err error
    if s.TotalUsers, err = r.store.Users().Count(ctx); err != nil {
        return s, err
    }
    total, busy, err := r.store.Rooms().Count(ctx)
    if err != nil {
        return s, err
    }
    s.TotalRooms = total
    if total > 0 {
        s.OccupancyRate = math.Round(float64(busy)/float64(total)*10000) / 10000
    }
    t, err := r.store.Bookings().Totals(ctx)
    if err != nil {
        return s, err
    }
    s.TotalBookings = t.Count
    s.TotalRevenue = roundCents(t.Revenue)
    s.ConfirmedRevenue = roundCents(t.ConfirmedRevenue)
    return s, nil
}
