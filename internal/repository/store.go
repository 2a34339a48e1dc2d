package repository

import (
    "context"
    "database/sql"
    "fmt"

    "github.com/iliyamo/room-booking/internal/model"
)

// RoomFilter narrows ListRooms.  Nil fields are not applied.
type RoomFilter struct {
    IsShared *bool
    Status   *model.RoomStatus
}

// FacilityFilter narrows ListFacilities.  Nil fields are not applied.
type FacilityFilter struct {
    VIP  *bool
    Kind *model.FacilityKind
}

// BookingTotals aggregates the bookings table for the admin report.
type BookingTotals struct {
    Count            int
    Revenue          float64 // all bookings except cancelled and rejected
    ConfirmedRevenue float64 // confirmed, checked in or checked out
}

// UserRepository persists users.
type UserRepository interface {
    Create(ctx context.Context, u *model.User) error
    GetByID(ctx context.Context, id uint64) (model.User, error)
    GetByEmail(ctx context.Context, email string) (model.User, error)
    Update(ctx context.Context, u *model.User) error
    UpdateRole(ctx context.Context, id uint64, role model.Role) error
    Delete(ctx context.Context, id uint64) error
    List(ctx context.Context) ([]model.User, error)
    Count(ctx context.Context) (int, error)
}

// RoomRepository persists rooms.  The Reserve and Release methods are
// single conditional UPDATEs: a false result means the guard did not
// hold and nothing was written.
type RoomRepository interface {
    Create(ctx context.Context, r *model.Room) error
    GetByID(ctx context.Context, id uint64) (model.Room, error)
    GetByIDForUpdate(ctx context.Context, id uint64) (model.Room, error)
    List(ctx context.Context, f RoomFilter) ([]model.Room, error)
    Update(ctx context.Context, r *model.Room) error
    Delete(ctx context.Context, id uint64) error
    Count(ctx context.Context) (total, busy int, err error)

    ReserveShared(ctx context.Context, id uint64, guests int) (bool, error)
    ReservePrivate(ctx context.Context, id uint64) (bool, error)
    ReleaseShared(ctx context.Context, id uint64, guests int) error
    ReleasePrivate(ctx context.Context, id uint64) error
    MarkOccupied(ctx context.Context, id uint64) error
}

// FacilityRepository persists facilities.
type FacilityRepository interface {
    Create(ctx context.Context, f *model.Facility) error
    GetByID(ctx context.Context, id uint64) (model.Facility, error)
    ListByIDs(ctx context.Context, ids []uint64) ([]model.Facility, error)
    List(ctx context.Context, f FacilityFilter) ([]model.Facility, error)
    Update(ctx context.Context, f *model.Facility) error
    Delete(ctx context.Context, id uint64) error
}

// BookingRepository persists bookings.  CompareAndSetStatus writes the
// new status only when the stored status still equals from.
type BookingRepository interface {
    Create(ctx context.Context, b *model.Booking) error
    GetByID(ctx context.Context, id uint64) (model.Booking, error)
    ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
    ListAll(ctx context.Context) ([]model.Booking, error)
    ListPendingFacility(ctx context.Context, vip *bool) ([]model.Booking, error)
    CompareAndSetStatus(ctx context.Context, id uint64, from, to model.BookingStatus, reason string) (bool, error)
    Totals(ctx context.Context) (BookingTotals, error)
}

// Repos is the set of repositories bound to one connection or transaction.
type Repos interface {
    Users() UserRepository
    Rooms() RoomRepository
    Facilities() FacilityRepository
    Bookings() BookingRepository
}

// Store is a Repos that can open a transaction.  Every repository handed
// to fn runs on the same *sql.Tx; fn returning an error rolls it back.
type Store interface {
    Repos
    InTx(ctx context.Context, fn func(Repos) error) error
}

// dbtx is the subset shared by *sql.DB and *sql.Tx.
type dbtx interface {
    ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
    QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
    QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLStore implements Store on MySQL.
type SQLStore struct {
    db *sql.DB
    q  dbtx
}

// NewSQLStore returns a Store bound to db.
func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db, q: db} }

func (s *SQLStore) Users() UserRepository           { return &UserRepo{q: s.q} }
func (s *SQLStore) Rooms() RoomRepository           { return &RoomRepo{q: s.q} }
func (s *SQLStore) Facilities() FacilityRepository { return &FacilityRepo{q: s.q} }
func (s *SQLStore) Bookings() BookingRepository     { return &BookingRepo{q: s.q} }

// InTx runs fn inside a transaction and commits when fn returns nil.
func (s *SQLStore) InTx(ctx context.Context, fn func(Repos) error) error {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return fmt.Errorf("begin tx: %w", err)
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := fn(&SQLStore{db: s.db, q: tx}); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return fmt.Errorf("commit tx: %w", err)
    }
    committed = true
    return nil
}

// rowsAffected reports whether res touched at least one row.
func rowsAffected(res sql.Result) (bool, error) {
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n > 0, nil
}

// placeholders returns "?,?,...,?" with n marks.
func placeholders(n int) string {
    if n <= 0 {
        return ""
    }
    b := make([]byte, 0, 2*n-1)
    for i := 0; i < n; i++ {
        if i > 0 {
            b = append(b, ',')
        }
        b = append(b, '?')
    }
    return string(b)
}
