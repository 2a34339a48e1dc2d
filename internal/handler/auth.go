package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/room-booking/internal/model"
    "github.com/iliyamo/room-booking/internal/service"
    "github.com/iliyamo/room-booking/internal/utils"
)

// AuthHandler serves sign-up, login and the caller's own profile.
type AuthHandler struct {
    accounts AccountService
    log      *logrus.Logger
}

func NewAuthHandler(accounts AccountService, log *logrus.Logger) *AuthHandler {
    return &AuthHandler{accounts: accounts, log: log}
}

type signupReq struct {
    Name     string  `json:"name" validate:"required,max=120"`
    Email    string  `json:"email" validate:"required,email"`
    Password string  `json:"password" validate:"required,min=6"`
    Wealth   float64 `json:"wealth" validate:"gte=0"`
}

type loginReq struct {
    Email    string `json:"email" validate:"required"`
    Password string `json:"password" validate:"required"`
}

type profileReq struct {
    Name     *string  `json:"name" validate:"omitempty,max=120"`
    Email    *string  `json:"email" validate:"omitempty,email"`
    Password *string  `json:"password" validate:"omitempty,min=6"`
    Wealth   *float64 `json:"wealth" validate:"omitempty,gte=0"`
}

func (r profileReq) patch() service.ProfilePatch {
    return service.ProfilePatch{Name: r.Name, Email: r.Email, Password: r.Password, Wealth: r.Wealth}
}

type authResp struct {
    User   model.User        `json:"user"`
    Access utils.AccessToken `json:"access"`
}

// Signup handles POST /v1/auth/signup.
func (h *AuthHandler) Signup(c echo.Context) error {
    var req signupReq
    if err := bindAndValidate(c, &req); err != nil {
        return fail(c, h.log, err)
    }
    s, err := h.accounts.Signup(c.Request().Context(), service.SignupInput{
        Name: req.Name, Email: req.Email, Password: req.Password, Wealth: req.Wealth,
    }, nil)
    if err != nil {
        return fail(c, h.log, err)
    }
    return c.JSON(http.StatusCreated, authResp{User: s.User, Access: s.Access})
}

// Login handles POST /v1/auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := bindAndValidate(c, &req); err != nil {
        return fail(c, h.log, err)
    }
    s, err := h.accounts.Login(c.Request().Context(), req.Email, req.Password)
    if err != nil {
        return fail(c, h.log, err)
    }
    return c.JSON(http.StatusOK, authResp{User: s.User, Access: s.Access})
}

// Me handles GET /v1/me.
func (h *AuthHandler) Me(c echo.Context) error {
    id, err := getUserID(c)
    if err != nil {
        return fail(c, h.log, err)
    }
    u, err := h.accounts.Profile(c.Request().Context(), id)
    if err != nil {
        return fail(c, h.log, err)
    }
    return c.JSON(http.StatusOK, u)
}

// UpdateMe handles PUT /v1/me.
func (h *AuthHandler) UpdateMe(c echo.Context) error {
    who, err := actor(c)
    if err != nil {
        return fail(c, h.log, err)
    }
    var req profileReq
    if err := bindAndValidate(c, &req); err != nil {
        return fail(c, h.log, err)
    }
    u, err := h.accounts.UpdateProfile(c.Request().Context(), who.UserID, req.patch(), who)
    if err != nil {
        return fail(c, h.log, err)
    }
    return c.JSON(http.StatusOK, u)
}
