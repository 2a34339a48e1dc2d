package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/room-booking/internal/model"
    "github.com/iliyamo/room-booking/internal/repository"
    "github.com/iliyamo/room-booking/internal/service"
)

type facilityReq struct {
    Name      string               `json:"name" validate:"required,max=120"`
    Kind      model.FacilityKind   `json:"type" validate:"required,oneof=conference_room hall"`
    Capacity  int                  `json:"capacity" validate:"required,gte=1"`
    Price     float64              `json:"price" validate:"required,gt=0"`
    Status    model.FacilityStatus `json:"status" validate:"omitempty,oneof=available maintenance"`
    IsVIP     bool                 `json:"isVIP"`
    Amenities []string             `json:"amenities"`
}

type facilityPatchReq struct {
    Name      *string               `json:"name" validate:"omitempty,max=120"`
    Kind      *model.FacilityKind   `json:"type" validate:"omitempty,oneof=conference_room hall"`
    Capacity  *int                  `json:"capacity" validate:"omitempty,gte=1"`
    Price     *float64              `json:"price" validate:"omitempty,gt=0"`
    Status    *model.FacilityStatus `json:"status" validate:"omitempty,oneof=available maintenance"`
    IsVIP     *bool                 `json:"isVIP"`
    Amenities []string              `json:"amenities"`
}

// ListFacilities handles GET /v1/facilities?vip=&kind=.
func (h *CatalogHandler) ListFacilities(c echo.Context) error {
    var f repository.FacilityFilter
    vip, err := optionalBool(c, "vip")
    if err != nil {
        return fail(c, h.log, err)
    }
    f.VIP = vip
    if k := c.QueryParam("kind"); k != "" {
        kind := model.FacilityKind(k)
        f.Kind = &kind
    }
    list, err := h.catalog.ListFacilities(c.Request().Context(), f)
    if err != nil {
        return fail(c, h.log, err)
    }
    return c.JSON(http.StatusOK, list)
}

// GetFacility handles GET /v1/facilities/:id.
func (h *CatalogHandler) GetFacility(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return fail(c, h.log, err)
    }
    f, err := h.catalog.GetFacility(c.Request().Context(), id)
    if err != nil {
        return fail(c, h.log, err)
    }
    return c.JSON(http.StatusOK, f)
}

// CreateFacility handles POST /v1/admin/facilities.
func (h *CatalogHandler) CreateFacility(c echo.Context) error {
    var req facilityReq
    if err := bindAndValidate(c, &req); err != nil {
        return fail(c, h.log, err)
    }
    f, err := h.catalog.CreateFacility(c.Request().Context(), service.FacilityInput{
        Name: req.Name, Kind: req.Kind, Capacity: req.Capacity, Price: req.Price,
        Status: req.Status, IsVIP: req.IsVIP, Amenities: req.Amenities,
    })
    if err != nil {
        return fail(c, h.log, err)
    }
    return c.JSON(http.StatusCreated, f)
}

// UpdateFacility handles PUT /v1/admin/facilities/:id.
func (h *CatalogHandler) UpdateFacility(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return fail(c, h.log, err)
    }
    var req facilityPatchReq
    if err := bindAndValidate(c, &req); err != nil {
        return fail(c, h.log, err)
    }
    f, err := h.catalog.UpdateFacility(c.Request().Context(), id, service.FacilityPatch{
        Name: req.Name, Kind: req.Kind, Capacity: req.Capacity, Price: req.Price,
        Status: req.Status, IsVIP: req.IsVIP, Amenities: req.Amenities,
    })
    if err != nil {
        return fail(c, h.log, err)
    }
    return c.JSON(http.StatusOK, f)
}

// DeleteFacility handles DELETE /v1/admin/facilities/:id.
func (h *CatalogHandler) DeleteFacility(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return fail(c, h.log, err)
    }
    if err := h.catalog.DeleteFacility(c.Request().Context(), id); err != nil {
        return fail(c, h.log, err)
    }
    return c.NoContent(http.StatusNoContent)
}
