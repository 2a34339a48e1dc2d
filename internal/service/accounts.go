package service

import (
    "context"
    "errors"
    "strings"

    "github.com/sirupsen/logrus"

    "github.com/iliyamo/room-booking/internal/model"
    "github.com/iliyamo/room-booking/internal/repository"
    "github.com/iliyamo/room-booking/internal/utils"
)

// Accounts handles sign-up, login and user administration.  The VIP
// flag is always recomputed from wealth; clients cannot set it.
type Accounts struct {
    store      repository.Store
    jwtSecret  string
    accessTTL  int
    bcryptCost int
    log        *logrus.Logger
}

func NewAccounts(store repository.Store, jwtSecret string, accessTTLMin, bcryptCost int, log *logrus.Logger) *Accounts {
    return &Accounts{store: store, jwtSecret: jwtSecret, accessTTL: accessTTLMin, bcryptCost: bcryptCost, log: log}
}

// SignupInput carries a new account.  Role is honoured only when an
// admin creates the account.
type SignupInput struct {
    Name     string
    Email    string
    Password string
    Wealth   float64
    Role     model.Role
}

// Session is the result of a successful login or sign-up.
type Session struct {
    User   model.User
    Access utils.AccessToken
}

// Signup creates an account and returns a session for it.  creator is
// nil for self-service sign-up.
func (a *Accounts) Signup(ctx context.Context, in SignupInput, creator *Actor) (Session, error) {
    u := model.User{
        Name:   strings.TrimSpace(in.Name),
        Email:  strings.ToLower(strings.TrimSpace(in.Email)),
        Role:   model.RoleCustomer,
        Wealth: in.Wealth,
        IsVIP:  model.IsVIPWealth(in.Wealth),
    }
    if creator != nil && creator.Role == model.RoleAdmin && in.Role != "" {
        if !in.Role.Valid() {
            return Session{}, invalid("role", "unknown role %q", in.Role)
        }
        u.Role = in.Role
    }
    if err := validateProfile(u.Name, u.Email, u.Wealth); err != nil {
        return Session{}, err
    }
    if err := validatePassword(in.Password); err != nil {
        return Session{}, err
    }
    hash, err := utils.HashPassword(in.Password, a.bcryptCost)
    if err != nil {
        return Session{}, err
    }
    u.PasswordHash = hash
    if err := a.store.Users().Create(ctx, &u); err != nil {
        if errors.Is(err, repository.ErrDuplicate) {
            return Session{}, &ConflictError{Msg: "email already exists"}
        }
        return Session{}, err
    }
    a.log.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role, "vip": u.IsVIP}).Info("user signed up")
    return a.session(u)
}

// Login verifies credentials.  Unknown email and wrong password give
// the same error.
func (a *Accounts) Login(ctx context.Context, email, password string) (Session, error) {
    u, err := a.store.Users().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
    if errors.Is(err, repository.ErrNotFound) {
        return Session{}, &UnauthorizedError{Msg: "invalid credentials"}
    }
    if err != nil {
        return Session{}, err
    }
    if !utils.VerifyPassword(u.PasswordHash, password) {
        return Session{}, &UnauthorizedError{Msg: "invalid credentials"}
    }
    return a.session(u)
}

func (a *Accounts) session(u model.User) (Session, error) {
    tok, err := utils.NewAccessToken(a.jwtSecret, u.ID, string(u.Role), a.accessTTL)
    if err != nil {
        return Session{}, err
    }
    return Session{User: u, Access: tok}, nil
}

func (a *Accounts) Profile(ctx context.Context, id uint64) (model.User, error) {
    u, err := a.store.Users().GetByID(ctx, id)
    if errors.Is(err, repository.ErrNotFound) {
        return model.User{}, &NotFoundError{Resource: "user", ID: id}
    }
    return u, err
}

// ProfilePatch carries the profile fields to change; nil means keep.
type ProfilePatch struct {
    Name     *string
    Email    *string
    Password *string
    Wealth   *float64
}

// UpdateProfile changes user id.  Users edit themselves; admins edit
// anyone.
func (a *Accounts) UpdateProfile(ctx context.Context, id uint64, p ProfilePatch, actor Actor) (model.User, error) {
    if actor.UserID != id && actor.Role != model.RoleAdmin {
        return model.User{}, &ForbiddenError{Msg: "cannot edit another user's profile"}
    }
    u, err := a.Profile(ctx, id)
    if err != nil {
        return model.User{}, err
    }
    if p.Name != nil {
        u.Name = strings.TrimSpace(*p.Name)
    }
    if p.Email != nil {
        u.Email = strings.ToLower(strings.TrimSpace(*p.Email))
    }
    if p.Wealth != nil {
        u.Wealth = *p.Wealth
    }
    u.IsVIP = model.IsVIPWealth(u.Wealth)
    if err := validateProfile(u.Name, u.Email, u.Wealth); err != nil {
        return model.User{}, err
    }
    if p.Password != nil {
        if err := validatePassword(*p.Password); err != nil {
            return model.User{}, err
        }
        if u.PasswordHash, err = utils.HashPassword(*p.Password, a.bcryptCost); err != nil {
            return model.User{}, err
        }
    }
    if err := a.store.Users().Update(ctx, &u); err != nil {
        if errors.Is(err, repository.ErrDuplicate) {
            return model.User{}, &ConflictError{Msg: "email already exists"}
        }
        if errors.Is(err, repository.ErrNotFound) {
            return model.User{}, &NotFoundError{Resource: "user", ID: id}
        }
        return model.User{}, err
    }
    return u, nil
}

func (a *Accounts) ChangeRole(ctx context.Context, id uint64, role model.Role) (model.User, error) {
    if !role.Valid() {
        return model.User{}, invalid("role", "unknown role %q", role)
    }
    if err := a.store.Users().UpdateRole(ctx, id, role); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return model.User{}, &NotFoundError{Resource: "user", ID: id}
        }
        return model.User{}, err
    }
    a.log.WithFields(logrus.Fields{"user_id": id, "role": role}).Info("user role changed")
    return a.Profile(ctx, id)
}

func (a *Accounts) ListUsers(ctx context.Context) ([]model.User, error) {
    return a.store.Users().List(ctx)
}

// DeleteUser removes an account.  Admins cannot remove themselves so
// the system always keeps at least the acting admin.
func (a *Accounts) DeleteUser(ctx context.Context, id uint64, actor Actor) error {
    if id == actor.UserID {
        return invalid("id", "cannot delete your own account")
    }
    if err := a.store.Users().Delete(ctx, id); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return &NotFoundError{Resource: "user", ID: id}
        }
        return err
    }
    a.log.WithField("user_id", id).Info("user deleted")
    return nil
}

func validateProfile(name, email string, wealth float64) error {
    if name == "" {
        return invalid("name", "is required")
    }
    if email == "" || !strings.Contains(email, "@") {
        return invalid("email", "must be a valid address")
    }
    if wealth < 0 {
        return invalid("wealth", "must not be negative")
    }
    return nil
}

func validatePassword(p string) error {
    if len(p) < 6 {
        return invalid("password", "must be at least 6 characters")
    }
    return nil
}
