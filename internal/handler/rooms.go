package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/room-booking/internal/model"
    "github.com/iliyamo/room-booking/internal/repository"
    "github.com/iliyamo/room-booking/internal/service"
)

// CatalogHandler serves the public room and facility listings and the
// admin catalog endpoints.
type CatalogHandler struct {
    catalog CatalogService
    log     *logrus.Logger
}

func NewCatalogHandler(catalog CatalogService, log *logrus.Logger) *CatalogHandler {
    return &CatalogHandler{catalog: catalog, log: log}
}

type roomReq struct {
    RoomNumber         string           `json:"roomNumber" validate:"required,max=32"`
    Type               string           `json:"type" validate:"required,max=64"`
    Description        string           `json:"description"`
    Image              string           `json:"image" validate:"omitempty,url"`
    Status             model.RoomStatus `json:"status"`
    Price              *float64         `json:"price" validate:"omitempty,gte=0"`
    BasePricePerPerson *float64         `json:"basePricePerPerson" validate:"omitempty,gte=0"`
    IsShared           bool             `json:"isShared"`
    MaxOccupancy       int              `json:"maxOccupancy" validate:"gte=0"`
    CurrentOccupancy   int              `json:"currentOccupancy" validate:"gte=0"`
}

type roomPatchReq struct {
    RoomNumber         *string           `json:"roomNumber" validate:"omitempty,max=32"`
    Type               *string           `json:"type" validate:"omitempty,max=64"`
    Description        *string           `json:"description"`
    Image              *string           `json:"image"`
    Status             *model.RoomStatus `json:"status"`
    Price              *float64          `json:"price" validate:"omitempty,gte=0"`
    BasePricePerPerson *float64          `json:"basePricePerPerson" validate:"omitempty,gte=0"`
    IsShared           *bool             `json:"isShared"`
    MaxOccupancy       *int              `json:"maxOccupancy" validate:"omitempty,gte=1"`
    CurrentOccupancy   *int              `json:"currentOccupancy" validate:"omitempty,gte=0"`
}

// ListRooms handles GET /v1/rooms?isShared=&status=.
func (h *CatalogHandler) ListRooms(c echo.Context) error {
    var f repository.RoomFilter
    shared, err := optionalBool(c, "isShared")
    if err != nil {
        return fail(c, h.log, err)
    }
    f.IsShared = shared
    if s := c.QueryParam("status"); s != "" {
        status := model.RoomStatus(s)
        f.Status = &status
    }
    rooms, err := h.catalog.ListRooms(c.Request().Context(), f)
    if err != nil {
        return fail(c, h.log, err)
    }
    return c.JSON(http.StatusOK, rooms)
}

// GetRoom handles GET /v1/rooms/:id.
func (h *CatalogHandler) GetRoom(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return fail(c, h.log, err)
    }
    room, err := h.catalog.GetRoom(c.Request().Context(), id)
    if err != nil {
        return fail(c, h.log, err)
    }
    return c.JSON(http.StatusOK, room)
}

// CreateRoom handles POST /v1/admin/rooms.
func (h *CatalogHandler) CreateRoom(c echo.Context) error {
    var req roomReq
    if err := bindAndValidate(c, &req); err != nil {
        return fail(c, h.log, err)
    }
    room, err := h.catalog.CreateRoom(c.Request().Context(), service.RoomInput{
        RoomNumber:         req.RoomNumber,
        Type:               req.Type,
        Description:        req.Description,
        Image:              req.Image,
        Status:             req.Status,
        Price:              req.Price,
        BasePricePerPerson: req.BasePricePerPerson,
        IsShared:           req.IsShared,
        MaxOccupancy:       req.MaxOccupancy,
        CurrentOccupancy:   req.CurrentOccupancy,
    })
    if err != nil {
        return fail(c, h.log, err)
    }
    return c.JSON(http.StatusCreated, room)
}

// UpdateRoom handles PUT /v1/admin/rooms/:id.
func (h *CatalogHandler) UpdateRoom(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return fail(c, h.log, err)
    }
    var req roomPatchReq
    if err := bindAndValidate(c, &req); err != nil {
        return fail(c, h.log, err)
    }
    room, err := h.catalog.UpdateRoom(c.Request().Context(), id, service.RoomPatch{
        RoomNumber:         req.RoomNumber,
        Type:               req.Type,
        Description:        req.Description,
        Image:              req.Image,
        Status:             req.Status,
        Price:              req.Price,
        BasePricePerPerson: req.BasePricePerPerson,
        IsShared:           req.IsShared,
        MaxOccupancy:       req.MaxOccupancy,
        CurrentOccupancy:   req.CurrentOccupancy,
    })
    if err != nil {
        return fail(c, h.log, err)
    }
    return c.JSON(http.StatusOK, room)
}

// DeleteRoom handles DELETE /v1/admin/rooms/:id.
func (h *CatalogHandler) DeleteRoom(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return fail(c, h.log, err)
    }
    if err := h.catalog.DeleteRoom(c.Request().Context(), id); err != nil {
        return fail(c, h.log, err)
    }
    return c.NoContent(http.StatusNoContent)
}
