package model

import "time"

// FacilityKind distinguishes conference rooms from event halls.
type FacilityKind string

const (
    KindConferenceRoom FacilityKind = "conference_room"
    KindHall           FacilityKind = "hall"
)

// Valid reports whether k is a known facility kind.
func (k FacilityKind) Valid() bool { return k == KindConferenceRoom || k == KindHall }

// FacilityStatus is the bookability of a facility.
type FacilityStatus string

const (
    FacilityAvailable   FacilityStatus = "available"
    FacilityMaintenance FacilityStatus = "maintenance"
)

// Facility is an event space rented at a flat price per event.  VIP
// facilities are reserved for VIP customers.
type Facility struct {
    ID        uint64         `json:"id"`
    Name      string         `json:"name"`
    Kind      FacilityKind   `json:"type"`
    Capacity  int            `json:"capacity"`
    Price     float64        `json:"price"`
    Status    FacilityStatus `json:"status"`
    IsVIP     bool           `json:"isVIP"`
    Amenities []string       `json:"amenities"`
    CreatedAt time.Time      `json:"createdAt"`
}
