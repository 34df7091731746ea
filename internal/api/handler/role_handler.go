package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adoptafacil/adoption-api/internal/core/ports"
)

type RoleHandler struct {
	service ports.RoleService
}

func NewRoleHandler(service ports.RoleService) *RoleHandler {
	return &RoleHandler{service: service}
}

// List handles GET /api/roles.
//
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.RoleRecord
// @Router       /api/roles [get]
func (h *RoleHandler) List(c echo.Context) error {
	roles, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roles)
}

// Get handles GET /api/roles/:id.
//
// @Summary      Get a role
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Role ID"
// @Success      200  {object}  domain.RoleRecord
// @Failure      404  {object}  errorResponse
// @Router       /api/roles/{id} [get]
func (h *RoleHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	role, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, role)
}

// GetByType handles GET /api/roles/type/:type.
//
// @Summary      Get a role by its type
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        type  path      string  true  "ADMIN, CLIENT or PARTNER"
// @Success      200   {object}  domain.RoleRecord
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/roles/type/{type} [get]
func (h *RoleHandler) GetByType(c echo.Context) error {
	role, err := h.service.GetByType(c.Request().Context(), c.Param("type"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, role)
}

// Create handles POST /api/roles.
//
// @Summary      Create a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      roleRequest  true  "Role"
// @Success      201   {object}  domain.RoleRecord
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/roles [post]
func (h *RoleHandler) Create(c echo.Context) error {
	var req roleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	role, err := h.service.Create(c.Request().Context(), req.Type)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, role)
}

// Update handles PUT /api/roles/:id.
//
// @Summary      Change a role's type
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int          true  "Role ID"
// @Param        body  body      roleRequest  true  "Role"
// @Success      200   {object}  domain.RoleRecord
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/roles/{id} [put]
func (h *RoleHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req roleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	role, err := h.service.Update(c.Request().Context(), id, req.Type)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, role)
}
