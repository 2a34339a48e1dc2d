package model

import "time"

// Role is the authorization role carried in the JWT "role" claim.
type Role string

const (
    RoleAdmin    Role = "admin"
    RoleStaff    Role = "staff"
    RoleCustomer Role = "customer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
    switch r {
    case RoleAdmin, RoleStaff, RoleCustomer:
        return true
    }
    return false
}

// IsStaff reports whether the role may operate on other users' bookings.
func (r Role) IsStaff() bool { return r == RoleAdmin || r == RoleStaff }

// VIPWealthThreshold is the wealth at which a customer becomes VIP.
const VIPWealthThreshold = 10000.0

// IsVIPWealth derives the VIP flag from a wealth amount.
func IsVIPWealth(wealth float64) bool { return wealth >= VIPWealthThreshold }

// User represents an application user record as stored in the
// `users` table.  PasswordHash never leaves the server; handlers
// serialize the struct directly and rely on the "-" tag.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – admin, staff or customer.
//  Wealth       – declared wealth, non-negative.
//  IsVIP        – derived from Wealth on every write.
//  CreatedAt    – timestamp of creation.
type User struct {
    ID           uint64    `json:"id"`
    Name         string    `json:"name"`
    Email        string    `json:"email"`
    PasswordHash string    `json:"-"`
    Role         Role      `json:"role"`
    Wealth       float64   `json:"wealth"`
    IsVIP        bool      `json:"isVIP"`
    CreatedAt    time.Time `json:"createdAt"`
}

// UserSummary is the subset of a user attached to booking listings.
type UserSummary struct {
    ID    uint64 `json:"id"`
    Name  string `json:"name"`
    Email string `json:"email"`
}
