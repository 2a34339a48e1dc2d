package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"
)

// ApprovalHandler serves the facility review queues.  Staff see the
// regular queue; admins also see the VIP queue.
type ApprovalHandler struct {
    approvals ApprovalService
    log       *logrus.Logger
}

func NewApprovalHandler(approvals ApprovalService, log *logrus.Logger) *ApprovalHandler {
    return &ApprovalHandler{approvals: approvals, log: log}
}

type rejectReq struct {
    Reason string `json:"reason" validate:"max=512"`
}

// RegularQueue handles GET /v1/staff/approvals.
func (h *ApprovalHandler) RegularQueue(c echo.Context) error {
    return h.queue(c, false)
}

// VIPQueue handles GET /v1/admin/approvals.
func (h *ApprovalHandler) VIPQueue(c echo.Context) error {
    return h.queue(c, true)
}

func (h *ApprovalHandler) queue(c echo.Context, vip bool) error {
    list, err := h.approvals.PendingQueue(c.Request().Context(), &vip)
    if err != nil {
        return fail(c, h.log, err)
    }
    return c.JSON(http.StatusOK, list)
}

// Approve handles POST /v1/staff/approvals/:id/approve.
func (h *ApprovalHandler) Approve(c echo.Context) error {
    who, err := actor(c)
    if err != nil {
        return fail(c, h.log, err)
    }
    id, err := parseID(c, "id")
    if err != nil {
        return fail(c, h.log, err)
    }
    b, err := h.approvals.Approve(c.Request().Context(), id, who)
    if err != nil {
        return fail(c, h.log, err)
    }
    return c.JSON(http.StatusOK, b)
}

// Reject handles POST /v1/staff/approvals/:id/reject.  The body and its
// reason are optional.
func (h *ApprovalHandler) Reject(c echo.Context) error {
    who, err := actor(c)
    if err != nil {
        return fail(c, h.log, err)
    }
    id, err := parseID(c, "id")
    if err != nil {
        return fail(c, h.log, err)
    }
    var req rejectReq
    if c.Request().ContentLength != 0 {
        if err := bindAndValidate(c, &req); err != nil {
            return fail(c, h.log, err)
        }
    }
    b, err := h.approvals.Reject(c.Request().Context(), id, who, req.Reason)
    if err != nil {
        return fail(c, h.log, err)
    }
    return c.JSON(http.StatusOK, b)
}
