package repository

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "strings"

    "github.com/iliyamo/room-booking/internal/model"
)

// RoomRepo provides data access to the rooms table.  Occupancy changes
// are guarded UPDATEs so that two concurrent bookings cannot both take
// the last bed: the row lock taken by the first UPDATE makes the second
// one re-evaluate its WHERE clause against the committed value.
type RoomRepo struct{ q dbtx }

const roomColumns = "id,room_number,type,description,image,status,price,base_price_per_person,is_shared,max_occupancy,current_occupancy,created_at"

const (
    // Status is assigned before occupancy: MySQL evaluates SET left to
    // right, so the CASE still sees the old occupancy.
    reserveSharedSQL = `UPDATE rooms
   SET status = CASE WHEN current_occupancy + ? >= max_occupancy THEN 'fully_booked' ELSE 'partially_booked' END,
       current_occupancy = current_occupancy + ?
 WHERE id = ? AND is_shared = 1
   AND status IN ('available','partially_booked')
   AND current_occupancy + ? <= max_occupancy`

    reservePrivateSQL = `UPDATE rooms
   SET status = 'fully_booked', current_occupancy = max_occupancy
 WHERE id = ? AND status = 'available' AND current_occupancy = 0`

    releaseSharedSQL = `UPDATE rooms
   SET status = CASE WHEN status = 'maintenance' THEN status
                     WHEN current_occupancy <= ? THEN 'available'
                     ELSE 'partially_booked' END,
       current_occupancy = GREATEST(current_occupancy - ?, 0)
 WHERE id = ?`

    releasePrivateSQL = `UPDATE rooms
   SET status = CASE WHEN status = 'maintenance' THEN status ELSE 'available' END,
       current_occupancy = 0
 WHERE id = ?`

    markOccupiedSQL = `UPDATE rooms SET status = 'occupied' WHERE id = ? AND status <> 'maintenance'`
)

// Create inserts r and fills its ID and CreatedAt.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
    res, err := r.q.ExecContext(ctx,
        `INSERT INTO rooms (room_number, type, description, image, status, price, base_price_per_person, is_shared, max_occupancy, current_occupancy)
         VALUES (?,?,?,?,?,?,?,?,?,?)`,
        room.RoomNumber, room.Type, room.Description, room.Image, string(room.Status),
        nullFloat(room.Price), nullFloat(room.BasePricePerPerson),
        room.IsShared, room.MaxOccupancy, room.CurrentOccupancy)
    if err != nil {
        if isDuplicate(err) {
            return ErrDuplicate
        }
        return fmt.Errorf("insert room: %w", err)
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    room.ID = uint64(id)
    return r.q.QueryRowContext(ctx, "SELECT created_at FROM rooms WHERE id=?", room.ID).Scan(&room.CreatedAt)
}

// GetByID returns ErrNotFound when no room has the id.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
    return scanRoom(r.q.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE id=?", id))
}

// GetByIDForUpdate is GetByID with a row lock held until the enclosing
// transaction ends.
func (r *RoomRepo) GetByIDForUpdate(ctx context.Context, id uint64) (model.Room, error) {
    return scanRoom(r.q.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE id=? FOR UPDATE", id))
}

// List returns rooms ordered by room number.
func (r *RoomRepo) List(ctx context.Context, f RoomFilter) ([]model.Room, error) {
    var where []string
    var args []any
    if f.IsShared != nil {
        where = append(where, "is_shared = ?")
        args = append(args, *f.IsShared)
    }
    if f.Status != nil {
        where = append(where, "status = ?")
        args = append(args, string(*f.Status))
    }
    q := "SELECT " + roomColumns + " FROM rooms"
    if len(where) > 0 {
        q += " WHERE " + strings.Join(where, " AND ")
    }
    q += " ORDER BY room_number"

    rows, err := r.q.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, fmt.Errorf("list rooms: %w", err)
    }
    defer rows.Close()
    out := []model.Room{}
    for rows.Next() {
        room, err := scanRoom(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, room)
    }
    return out, rows.Err()
}

// Update overwrites every mutable column of room.
func (r *RoomRepo) Update(ctx context.Context, room *model.Room) error {
    _, err := r.q.ExecContext(ctx,
        `UPDATE rooms SET room_number=?, type=?, description=?, image=?, status=?, price=?,
                base_price_per_person=?, is_shared=?, max_occupancy=?, current_occupancy=?
          WHERE id=?`,
        room.RoomNumber, room.Type, room.Description, room.Image, string(room.Status),
        nullFloat(room.Price), nullFloat(room.BasePricePerPerson),
        room.IsShared, room.MaxOccupancy, room.CurrentOccupancy, room.ID)
    if err != nil {
        if isDuplicate(err) {
            return ErrDuplicate
        }
        return fmt.Errorf("update room: %w", err)
    }
    return nil
}

func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
    res, err := r.q.ExecContext(ctx, "DELETE FROM rooms WHERE id=?", id)
    if err != nil {
        return fmt.Errorf("delete room: %w", err)
    }
    ok, err := rowsAffected(res)
    if err != nil {
        return err
    }
    if !ok {
        return ErrNotFound
    }
    return nil
}

// Count returns the number of rooms and how many of them are fully
// booked or occupied.
func (r *RoomRepo) Count(ctx context.Context) (int, int, error) {
    var total, busy int
    err := r.q.QueryRowContext(ctx,
        "SELECT COUNT(*), COALESCE(SUM(status IN ('fully_booked','occupied')),0) FROM rooms").Scan(&total, &busy)
    return total, busy, err
}

// ReserveShared adds guests to a shared room if they fit.
func (r *RoomRepo) ReserveShared(ctx context.Context, id uint64, guests int) (bool, error) {
    res, err := r.q.ExecContext(ctx, reserveSharedSQL, guests, guests, id, guests)
    if err != nil {
        return false, fmt.Errorf("reserve shared room %d: %w", id, err)
    }
    return rowsAffected(res)
}

// ReservePrivate takes a whole, currently empty room.
func (r *RoomRepo) ReservePrivate(ctx context.Context, id uint64) (bool, error) {
    res, err := r.q.ExecContext(ctx, reservePrivateSQL, id)
    if err != nil {
        return false, fmt.Errorf("reserve room %d: %w", id, err)
    }
    return rowsAffected(res)
}

func (r *RoomRepo) ReleaseShared(ctx context.Context, id uint64, guests int) error {
    if _, err := r.q.ExecContext(ctx, releaseSharedSQL, guests, guests, id); err != nil {
        return fmt.Errorf("release shared room %d: %w", id, err)
    }
    return nil
}

func (r *RoomRepo) ReleasePrivate(ctx context.Context, id uint64) error {
    if _, err := r.q.ExecContext(ctx, releasePrivateSQL, id); err != nil {
        return fmt.Errorf("release room %d: %w", id, err)
    }
    return nil
}

func (r *RoomRepo) MarkOccupied(ctx context.Context, id uint64) error {
    if _, err := r.q.ExecContext(ctx, markOccupiedSQL, id); err != nil {
        return fmt.Errorf("mark room %d occupied: %w", id, err)
    }
    return nil
}

func scanRoom(s rowScanner) (model.Room, error) {
    var room model.Room
    var status string
    var price, perPerson sql.NullFloat64
    err := s.Scan(&room.ID, &room.RoomNumber, &room.Type, &room.Description, &room.Image, &status,
        &price, &perPerson, &room.IsShared, &room.MaxOccupancy, &room.CurrentOccupancy, &room.CreatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return room, ErrNotFound
    }
    if err != nil {
        return room, err
    }
    room.Status = model.RoomStatus(status)
    if price.Valid {
        v := price.Float64
        room.Price = &v
    }
    if perPerson.Valid {
        v := perPerson.Float64
        room.BasePricePerPerson = &v
    }
    return room, nil
}

func nullFloat(p *float64) sql.NullFloat64 {
    if p == nil {
        return sql.NullFloat64{}
    }
    return sql.NullFloat64{Float64: *p, Valid: true}
}
