package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adoptafacil/adoption-api/internal/core/ports"
)

type PersonHandler struct {
	service ports.PersonService
}

func NewPersonHandler(service ports.PersonService) *PersonHandler {
	return &PersonHandler{service: service}
}

// List handles GET /api/persons.
//
// @Summary      List persons
// @Tags         persons
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.User
// @Router       /api/persons [get]
func (h *PersonHandler) List(c echo.Context) error {
	users, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Get handles GET /api/persons/:id.
//
// @Summary      Get a person
// @Tags         persons
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Person ID"
// @Success      200  {object}  domain.User
// @Failure      404  {object}  errorResponse
// @Router       /api/persons/{id} [get]
func (h *PersonHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// GetByEmail handles GET /api/persons/email/:email.
//
// @Summary      Find a person by email
// @Tags         persons
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "Email"
// @Success      200    {object}  domain.User
// @Failure      404    {object}  errorResponse
// @Router       /api/persons/email/{email} [get]
func (h *PersonHandler) GetByEmail(c echo.Context) error {
	user, err := h.service.GetByEmail(c.Request().Context(), c.Param("email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ListByRole handles GET /api/persons/role/:role.
//
// @Summary      List persons holding a role
// @Tags         persons
// @Produce      json
// @Security     BearerAuth
// @Param        role  path      string  true  "ADMIN, CLIENT or PARTNER"
// @Success      200   {array}   domain.User
// @Failure      400   {object}  errorResponse
// @Router       /api/persons/role/{role} [get]
func (h *PersonHandler) ListByRole(c echo.Context) error {
	users, err := h.service.ListByRole(c.Request().Context(), c.Param("role"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Create handles POST /api/persons.
//
// @Summary      Create a person
// @Tags         persons
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      personRequest  true  "Person"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/persons [post]
func (h *PersonHandler) Create(c echo.Context) error {
	var req personRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.service.Create(c.Request().Context(), toPersonInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// Update handles PUT /api/persons/:id.
//
// @Summary      Update a person's profile
// @Tags         persons
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int            true  "Person ID"
// @Param        body  body      personRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/persons/{id} [put]
func (h *PersonHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req personRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.service.Update(c.Request().Context(), id, toPersonInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /api/persons/:id. Mounted behind RequireRole(ADMIN).
//
// @Summary      Delete a person (admin)
// @Tags         persons
// @Security     BearerAuth
// @Param        id   path  int  true  "Person ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/persons/{id} [delete]
func (h *PersonHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
