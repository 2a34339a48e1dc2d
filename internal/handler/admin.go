package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/room-booking/internal/model"
    "github.com/iliyamo/room-booking/internal/service"
)

// AdminHandler serves user administration and the dashboard.
type AdminHandler struct {
    accounts AccountService
    reports  ReportService
    log      *logrus.Logger
}

func NewAdminHandler(accounts AccountService, reports ReportService, log *logrus.Logger) *AdminHandler {
    return &AdminHandler{accounts: accounts, reports: reports, log: log}
}

type createUserReq struct {
    signupReq
    Role model.Role `json:"role" validate:"omitempty,oneof=admin staff customer"`
}

type roleReq struct {
    Role model.Role `json:"role" validate:"required,oneof=admin staff customer"`
}

// ListUsers handles GET /v1/admin/users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
    users, err := h.accounts.ListUsers(c.Request().Context())
    if err != nil {
        return fail(c, h.log, err)
    }
    return c.JSON(http.StatusOK, users)
}

// CreateUser handles POST /v1/admin/users; the admin may pick the role.
func (h *AdminHandler) CreateUser(c echo.Context) error {
    who, err := actor(c)
    if err != nil {
        return fail(c, h.log, err)
    }
    var req createUserReq
    if err := bindAndValidate(c, &req); err != nil {
        return fail(c, h.log, err)
    }
    s, err := h.accounts.Signup(c.Request().Context(), service.SignupInput{
        Name: req.Name, Email: req.Email, Password: req.Password, Wealth: req.Wealth, Role: req.Role,
    }, &who)
    if err != nil {
        return fail(c, h.log, err)
    }
    return c.JSON(http.StatusCreated, s.User)
}

// UpdateUser handles PUT /v1/admin/users/:id.
func (h *AdminHandler) UpdateUser(c echo.Context) error {
    who, err := actor(c)
    if err != nil {
        return fail(c, h.log, err)
    }
    id, err := parseID(c, "id")
    if err != nil {
        return fail(c, h.log, err)
    }
    var req profileReq
    if err := bindAndValidate(c, &req); err != nil {
        return fail(c, h.log, err)
    }
    u, err := h.accounts.UpdateProfile(c.Request().Context(), id, req.patch(), who)
    if err != nil {
        return fail(c, h.log, err)
    }
    return c.JSON(http.StatusOK, u)
}

// ChangeRole handles PUT /v1/admin/users/:id/role.
func (h *AdminHandler) ChangeRole(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return fail(c, h.log, err)
    }
    var req roleReq
    if err := bindAndValidate(c, &req); err != nil {
        return fail(c, h.log, err)
    }
    u, err := h.accounts.ChangeRole(c.Request().Context(), id, req.Role)
    if err != nil {
        return fail(c, h.log, err)
    }
    return c.JSON(http.StatusOK, u)
}

// DeleteUser handles DELETE /v1/admin/users/:id.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
    who, err := actor(c)
    if err != nil {
        return fail(c, h.log, err)
    }
    id, err := parseID(c, "id")
    if err != nil {
        return fail(c, h.log, err)
    }
    if err := h.accounts.DeleteUser(c.Request().Context(), id, who); err != nil {
        return fail(c, h.log, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// Stats handles GET /v1/admin/stats.
func (h *AdminHandler) Stats(c echo.Context) error {
    s, err := h.reports.Stats(c.Request().Context())
    if err != nil {
        return fail(c, h.log, err)
    }
    return c.JSON(http.StatusOK, s)
}
