package repository

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "strings"

    "github.com/iliyamo/room-booking/internal/model"
)

// UserRepo mirrors the 'users' table.
type UserRepo struct{ q dbtx }

const userColumns = "id,name,email,password_hash,role,wealth,is_vip,created_at"

// Create inserts u and fills its ID and CreatedAt.  Email is normalized.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
    u.Email = strings.ToLower(strings.TrimSpace(u.Email))
    res, err := r.q.ExecContext(ctx,
        "INSERT INTO users (name, email, password_hash, role, wealth, is_vip) VALUES (?,?,?,?,?,?)",
        u.Name, u.Email, u.PasswordHash, string(u.Role), u.Wealth, u.IsVIP)
    if err != nil {
        if isDuplicate(err) {
            return ErrDuplicate
        }
        return fmt.Errorf("insert user: %w", err)
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    u.ID = uint64(id)
    return r.q.QueryRowContext(ctx, "SELECT created_at FROM users WHERE id=?", u.ID).Scan(&u.CreatedAt)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    return scanUser(r.q.QueryRowContext(ctx,
        "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
    return scanUser(r.q.QueryRowContext(ctx,
        "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// Update writes the profile columns of u.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
    u.Email = strings.ToLower(strings.TrimSpace(u.Email))
    res, err := r.q.ExecContext(ctx,
        "UPDATE users SET name=?, email=?, password_hash=?, wealth=?, is_vip=? WHERE id=?",
        u.Name, u.Email, u.PasswordHash, u.Wealth, u.IsVIP, u.ID)
    if err != nil {
        if isDuplicate(err) {
            return ErrDuplicate
        }
        return fmt.Errorf("update user: %w", err)
    }
    return r.mustExist(ctx, res, u.ID)
}

func (r *UserRepo) UpdateRole(ctx context.Context, id uint64, role model.Role) error {
    res, err := r.q.ExecContext(ctx, "UPDATE users SET role=? WHERE id=?", string(role), id)
    if err != nil {
        return fmt.Errorf("update role: %w", err)
    }
    return r.mustExist(ctx, res, id)
}

func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
    res, err := r.q.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
    if err != nil {
        return fmt.Errorf("delete user: %w", err)
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

// List returns all users ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
    rows, err := r.q.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
    if err != nil {
        return nil, fmt.Errorf("list users: %w", err)
    }
    defer rows.Close()
    var out []model.User
    for rows.Next() {
        u, err := scanUser(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, u)
    }
    return out, rows.Err()
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
    var n int
    err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
    return n, err
}

// mustExist turns a zero-row UPDATE into ErrNotFound.  MySQL reports
// zero affected rows when the values are unchanged, so existence is
// confirmed with a lookup before giving up.
func (r *UserRepo) mustExist(ctx context.Context, res sql.Result, id uint64) error {
    ok, err := rowsAffected(res)
    if err != nil || ok {
        return err
    }
    var one int
    err = r.q.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id=?", id).Scan(&one)
    if errors.Is(err, sql.ErrNoRows) {
        return ErrNotFound
    }
    return err
}

type rowScanner interface {
    Scan(dest ...any) error
}

func scanUser(s rowScanner) (model.User, error) {
    var u model.User
    var role string
    err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.Wealth, &u.IsVIP, &u.CreatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return u, ErrNotFound
    }
    u.Role = model.Role(role)
    return u, err
}
