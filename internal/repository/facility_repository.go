package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "fmt"
    "strings"

    "github.com/iliyamo/room-booking/internal/model"
)

// FacilityRepo provides data access to the facilities table.  Amenities
// are stored as a JSON array in a TEXT column.
type FacilityRepo struct{ q dbtx }

const facilityColumns = "id,name,kind,capacity,price,status,is_vip,amenities,created_at"

func (r *FacilityRepo) Create(ctx context.Context, f *model.Facility) error {
    amenities, err := encodeStrings(f.Amenities)
    if err != nil {
        return err
    }
    res, err := r.q.ExecContext(ctx,
        "INSERT INTO facilities (name, kind, capacity, price, status, is_vip, amenities) VALUES (?,?,?,?,?,?,?)",
        f.Name, string(f.Kind), f.Capacity, f.Price, string(f.Status), f.IsVIP, amenities)
    if err != nil {
        if isDuplicate(err) {
            return ErrDuplicate
        }
        return fmt.Errorf("insert facility: %w", err)
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    f.ID = uint64(id)
    return r.q.QueryRowContext(ctx, "SELECT created_at FROM facilities WHERE id=?", f.ID).Scan(&f.CreatedAt)
}

func (r *FacilityRepo) GetByID(ctx context.Context, id uint64) (model.Facility, error) {
    return scanFacility(r.q.QueryRowContext(ctx, "SELECT "+facilityColumns+" FROM facilities WHERE id=?", id))
}

// ListByIDs returns the facilities whose ids are in ids, ordered by id.
// Missing ids are silently absent from the result.
func (r *FacilityRepo) ListByIDs(ctx context.Context, ids []uint64) ([]model.Facility, error) {
    if len(ids) == 0 {
        return nil, nil
    }
    args := make([]any, len(ids))
    for i, id := range ids {
        args[i] = id
    }
    return r.query(ctx,
        "SELECT "+facilityColumns+" FROM facilities WHERE id IN ("+placeholders(len(ids))+") ORDER BY id", args...)
}

func (r *FacilityRepo) List(ctx context.Context, f FacilityFilter) ([]model.Facility, error) {
    var where []string
    var args []any
    if f.VIP != nil {
        where = append(where, "is_vip = ?")
        args = append(args, *f.VIP)
    }
    if f.Kind != nil {
        where = append(where, "kind = ?")
        args = append(args, string(*f.Kind))
    }
    q := "SELECT " + facilityColumns + " FROM facilities"
    if len(where) > 0 {
        q += " WHERE " + strings.Join(where, " AND ")
    }
    return r.query(ctx, q+" ORDER BY id", args...)
}

func (r *FacilityRepo) Update(ctx context.Context, f *model.Facility) error {
    amenities, err := encodeStrings(f.Amenities)
    if err != nil {
        return err
    }
    _, err = r.q.ExecContext(ctx,
        "UPDATE facilities SET name=?, kind=?, capacity=?, price=?, status=?, is_vip=?, amenities=? WHERE id=?",
        f.Name, string(f.Kind), f.Capacity, f.Price, string(f.Status), f.IsVIP, amenities, f.ID)
    if err != nil {
        if isDuplicate(err) {
            return ErrDuplicate
        }
        return fmt.Errorf("update facility: %w", err)
    }
    return nil
}

func (r *FacilityRepo) Delete(ctx context.Context, id uint64) error {
    res, err := r.q.ExecContext(ctx, "DELETE FROM facilities WHERE id=?", id)
    if err != nil {
        return fmt.Errorf("delete facility: %w", err)
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

func (r *FacilityRepo) query(ctx context.Context, q string, args ...any) ([]model.Facility, error) {
    rows, err := r.q.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, fmt.Errorf("list facilities: %w", err)
    }
    defer rows.Close()
    out := []model.Facility{}
    for rows.Next() {
        f, err := scanFacility(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, f)
    }
    return out, rows.Err()
}

func scanFacility(s rowScanner) (model.Facility, error) {
    var f model.Facility
    var kind, status string
    var amenities sql.NullString
    err := s.Scan(&f.ID, &f.Name, &kind, &f.Capacity, &f.Price, &status, &f.IsVIP, &amenities, &f.CreatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return f, ErrNotFound
    }
    if err != nil {
        return f, err
    }
    f.Kind = model.FacilityKind(kind)
    f.Status = model.FacilityStatus(status)
    f.Amenities = []string{}
    if amenities.Valid && amenities.String != "" {
        if err := json.Unmarshal([]byte(amenities.String), &f.Amenities); err != nil {
            return f, fmt.Errorf("decode amenities of facility %d: %w", f.ID, err)
        }
    }
    return f, nil
}

func encodeStrings(v []string) (string, error) {
    if v == nil {
        v = []string{}
    }
    b, err := json.Marshal(v)
    if err != nil {
        return "", err
    }
    return string(b), nil
}
