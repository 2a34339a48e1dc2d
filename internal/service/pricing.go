package service

import (
    "math"
    "time"

    "github.com/iliyamo/room-booking/internal/model"
)

// Nights is the number of billable nights between check-in and
// check-out.  A partial day counts as a full night.
func Nights(checkIn, checkOut time.Time) (int, error) {
    d := checkOut.Sub(checkIn)
    nights := int(math.Ceil(d.Hours() / 24))
    if nights <= 0 {
        return 0, &InvalidDateRangeError{CheckIn: checkIn, CheckOut: checkOut}
    }
    return nights, nil
}

// QuoteRoom prices a room stay.  A shared room booked as shared is
// charged per guest per night; every other stay is charged per night.
// A shared room taken whole costs its Price, or every bed when it has
// only a per-person rate.
func QuoteRoom(room model.Room, checkIn, checkOut time.Time, guests int, sharedRequest bool) (float64, error) {
    nights, err := Nights(checkIn, checkOut)
    if err != nil {
        return 0, err
    }
    pricing, err := room.Pricing()
    if err != nil {
        return 0, invalid("roomId", "room %d has no usable price", room.ID)
    }
    switch p := pricing.(type) {
    case model.SharedPricing:
        if !sharedRequest {
            if room.Price != nil && *room.Price > 0 {
                return roundCents(*room.Price * float64(nights)), nil
            }
            return roundCents(p.PerPerson * float64(room.MaxOccupancy) * float64(nights)), nil
        }
        if guests < 1 {
            return 0, invalid("guestCount", "must be at least 1")
        }
        return roundCents(p.PerPerson * float64(guests) * float64(nights)), nil
    case model.PrivatePricing:
        return roundCents(p.Price * float64(nights)), nil
    }
    return 0, invalid("roomId", "room %d has no usable price", room.ID)
}

// QuoteFacilities prices an event over the selected facilities: the sum
// of their flat prices.
func QuoteFacilities(facilities []model.Facility) float64 {
    var total float64
    for _, f := range facilities {
        total += f.Price
    }
    return roundCents(total)
}

func roundCents(v float64) float64 { return math.Round(v*100) / 100 }
