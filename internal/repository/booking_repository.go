package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    "github.com/iliyamo/room-booking/internal/model"
)

// BookingRepo provides data access to the bookings table.  Room stays
// and facility events share one table; the columns of the variant that
// does not apply are NULL.  Customers and facility ids are JSON arrays.
type BookingRepo struct{ q dbtx }

const bookingSelect = `SELECT b.id, b.user_id, b.room_id, b.type, b.total_amount, b.status, b.customers,
       b.rejection_reason, b.check_in_date, b.check_out_date, b.guest_count, b.is_shared_booking,
       b.facility_ids, b.facility_name, b.title, b.occasion, b.number_of_people, b.event_date,
       b.start_time, b.end_time, b.notes, b.is_vip, b.created_at, b.updated_at,
       u.name, u.email, r.room_number, r.type
  FROM bookings b
  LEFT JOIN users u ON u.id = b.user_id
  LEFT JOIN rooms r ON r.id = b.room_id`

const casStatusSQL = `UPDATE bookings SET status = ?, rejection_reason = COALESCE(NULLIF(?, ''), rejection_reason)
 WHERE id = ? AND status = ?`

// Create inserts b within the caller's connection or transaction and
// fills ID, CreatedAt and UpdatedAt.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
    customers, err := json.Marshal(b.Customers)
    if err != nil {
        return fmt.Errorf("encode customers: %w", err)
    }
    var (
        checkIn, checkOut, eventDate sql.NullTime
        guestCount, people           sql.NullInt64
        shared, vip                  sql.NullBool
        facilityIDs, facilityName    sql.NullString
        title, occasion, start, end  sql.NullString
        notes                        sql.NullString
    )
    if s := b.RoomStay; s != nil {
        checkIn = sql.NullTime{Time: s.CheckInDate, Valid: true}
        checkOut = sql.NullTime{Time: s.CheckOutDate, Valid: true}
        guestCount = sql.NullInt64{Int64: int64(s.GuestCount), Valid: true}
        shared = sql.NullBool{Bool: s.IsSharedBooking, Valid: true}
    }
    if e := b.FacilityEvent; e != nil {
        ids, err := json.Marshal(e.FacilityIDs)
        if err != nil {
            return fmt.Errorf("encode facility ids: %w", err)
        }
        facilityIDs = sql.NullString{String: string(ids), Valid: true}
        facilityName = sql.NullString{String: e.FacilityName, Valid: true}
        title = sql.NullString{String: e.Title, Valid: true}
        occasion = sql.NullString{String: e.Occasion, Valid: true}
        people = sql.NullInt64{Int64: int64(e.NumberOfPeople), Valid: true}
        eventDate = sql.NullTime{Time: e.EventDate, Valid: true}
        start = sql.NullString{String: e.StartTime, Valid: e.StartTime != ""}
        end = sql.NullString{String: e.EndTime, Valid: e.EndTime != ""}
        notes = sql.NullString{String: e.Notes, Valid: e.Notes != ""}
        vip = sql.NullBool{Bool: e.IsVIP, Valid: true}
    }
    var roomID sql.NullInt64
    if b.RoomID != nil {
        roomID = sql.NullInt64{Int64: int64(*b.RoomID), Valid: true}
    }

    res, err := r.q.ExecContext(ctx,
        `INSERT INTO bookings (user_id, room_id, type, total_amount, status, customers,
                check_in_date, check_out_date, guest_count, is_shared_booking,
                facility_ids, facility_name, title, occasion, number_of_people, event_date,
                start_time, end_time, notes, is_vip)
         VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
        b.UserID, roomID, string(b.Type), b.TotalAmount, string(b.Status), string(customers),
        checkIn, checkOut, guestCount, shared,
        facilityIDs, facilityName, title, occasion, people, eventDate,
        start, end, notes, vip)
    if err != nil {
        return fmt.Errorf("insert booking: %w", err)
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    return r.q.QueryRowContext(ctx, "SELECT created_at, updated_at FROM bookings WHERE id=?", b.ID).
        Scan(&b.CreatedAt, &b.UpdatedAt)
}

// GetByID returns ErrNotFound when no booking has the id.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
    return scanBooking(r.q.QueryRowContext(ctx, bookingSelect+" WHERE b.id = ?", id))
}

// ListByUser returns the bookings of one user, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
    return r.query(ctx, bookingSelect+" WHERE b.user_id = ? ORDER BY b.created_at DESC, b.id DESC", userID)
}

// ListAll returns every booking, newest first.
func (r *BookingRepo) ListAll(ctx context.Context) ([]model.Booking, error) {
    return r.query(ctx, bookingSelect+" ORDER BY b.created_at DESC, b.id DESC")
}

// ListPendingFacility returns facility bookings awaiting approval, oldest
// first.  A non-nil vip restricts the queue to VIP or regular requests.
func (r *BookingRepo) ListPendingFacility(ctx context.Context, vip *bool) ([]model.Booking, error) {
    q := bookingSelect + " WHERE b.type = 'facility' AND b.status = 'pending_approval'"
    var args []any
    if vip != nil {
        q += " AND b.is_vip = ?"
        args = append(args, *vip)
    }
    return r.query(ctx, q+" ORDER BY b.created_at, b.id", args...)
}

// CompareAndSetStatus moves booking id from one status to another.  It
// reports false when the booking is missing or no longer in from.  A
// non-empty reason is stored as the rejection reason.
func (r *BookingRepo) CompareAndSetStatus(ctx context.Context, id uint64, from, to model.BookingStatus, reason string) (bool, error) {
    res, err := r.q.ExecContext(ctx, casStatusSQL, string(to), reason, id, string(from))
    if err != nil {
        return false, fmt.Errorf("update booking %d status: %w", id, err)
    }
    return rowsAffected(res)
}

func (r *BookingRepo) Totals(ctx context.Context) (BookingTotals, error) {
    var t BookingTotals
    err := r.q.QueryRowContext(ctx, `SELECT COUNT(*),
       COALESCE(SUM(CASE WHEN status NOT IN ('cancelled','rejected') THEN total_amount END), 0),
       COALESCE(SUM(CASE WHEN status IN ('confirmed','checked_in','checked_out') THEN total_amount END), 0)
  FROM bookings`).Scan(&t.Count, &t.Revenue, &t.ConfirmedRevenue)
    if err != nil {
        return t, fmt.Errorf("booking totals: %w", err)
    }
    return t, nil
}

func (r *BookingRepo) query(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
    rows, err := r.q.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, fmt.Errorf("list bookings: %w", err)
    }
    defer rows.Close()
    out := []model.Booking{}
    for rows.Next() {
        b, err := scanBooking(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, b)
    }
    return out, rows.Err()
}

func scanBooking(s rowScanner) (model.Booking, error) {
    var (
        b                                          model.Booking
        roomID                                     sql.NullInt64
        typ, status, customers                     string
        reason                                     sql.NullString
        checkIn, checkOut, eventDate               sql.NullTime
        guestCount, people                         sql.NullInt64
        shared, vip                                sql.NullBool
        facilityIDs, facilityName, title, occasion sql.NullString
        start, end, notes                          sql.NullString
        userName, userEmail, roomNumber, roomType  sql.NullString
    )
    err := s.Scan(&b.ID, &b.UserID, &roomID, &typ, &b.TotalAmount, &status, &customers,
        &reason, &checkIn, &checkOut, &guestCount, &shared,
        &facilityIDs, &facilityName, &title, &occasion, &people, &eventDate,
        &start, &end, &notes, &vip, &b.CreatedAt, &b.UpdatedAt,
        &userName, &userEmail, &roomNumber, &roomType)
    if errors.Is(err, sql.ErrNoRows) {
        return b, ErrNotFound
    }
    if err != nil {
        return b, err
    }
    b.Type = model.BookingType(typ)
    b.Status = model.BookingStatus(status)
    b.RejectionReason = reason.String
    if err := json.Unmarshal([]byte(customers), &b.Customers); err != nil {
        return b, fmt.Errorf("decode customers of booking %d: %w", b.ID, err)
    }
    if roomID.Valid {
        id := uint64(roomID.Int64)
        b.RoomID = &id
    }

    switch b.Type {
    case model.BookingRoom:
        b.RoomStay = &model.RoomStay{
            CheckInDate:     utcTime(checkIn),
            CheckOutDate:    utcTime(checkOut),
            GuestCount:      int(guestCount.Int64),
            IsSharedBooking: shared.Bool,
        }
    case model.BookingFacility:
        ev := &model.FacilityEvent{
            FacilityName:   facilityName.String,
            Title:          title.String,
            Occasion:       occasion.String,
            NumberOfPeople: int(people.Int64),
            EventDate:      utcTime(eventDate),
            StartTime:      start.String,
            EndTime:        end.String,
            Notes:          notes.String,
            IsVIP:          vip.Bool,
        }
        if facilityIDs.Valid && facilityIDs.String != "" {
            if err := json.Unmarshal([]byte(facilityIDs.String), &ev.FacilityIDs); err != nil {
                return b, fmt.Errorf("decode facility ids of booking %d: %w", b.ID, err)
            }
        }
        b.FacilityEvent = ev
    }

    if userName.Valid {
        b.User = &model.UserSummary{ID: b.UserID, Name: userName.String, Email: userEmail.String}
    }
    if roomNumber.Valid && b.RoomID != nil {
        b.Room = &model.RoomSummary{ID: *b.RoomID, RoomNumber: roomNumber.String, Type: roomType.String}
    }
    return b, nil
}

func utcTime(t sql.NullTime) time.Time {
    if !t.Valid {
        return time.Time{}
    }
    return t.Time.UTC()
}
