package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adoptafacil/adoption-api/internal/core/ports"
)

// AdoptionHandler serves adoption requests ("solicitudes").
type AdoptionHandler struct {
	service ports.AdoptionService
}

func NewAdoptionHandler(service ports.AdoptionService) *AdoptionHandler {
	return &AdoptionHandler{service: service}
}

// Create handles POST /api/solicitudes.
//
// @Summary      File an adoption request
// @Tags         solicitudes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      adoptionRequest  true  "Request"
// @Success      201   {object}  adoptionResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/solicitudes [post]
func (h *AdoptionHandler) Create(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	var req adoptionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	r, err := h.service.Create(c.Request().Context(), caller, ports.AdoptionInput{
		RequesterID: req.RequesterID,
		PetID:       req.PetID,
		Comment:     req.Comment,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toAdoptionResponse(r))
}

// Get handles GET /api/solicitudes/:id.
//
// @Summary      Get an adoption request
// @Tags         solicitudes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Request ID"
// @Success      200  {object}  adoptionResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/solicitudes/{id} [get]
func (h *AdoptionHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	r, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAdoptionResponse(r))
}

// List handles GET /api/solicitudes.
//
// @Summary      List adoption requests
// @Tags         solicitudes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  adoptionResponse
// @Router       /api/solicitudes [get]
func (h *AdoptionHandler) List(c echo.Context) error {
	rs, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAdoptionResponses(rs))
}

// SetStatus handles PUT /api/solicitudes/:id/estado?estado=APPROVED&comentario=...
// The comment is only replaced when comentario is present.
//
// @Summary      Change the status of an adoption request
// @Tags         solicitudes
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      int     true  "Request ID"
// @Param        estado  query     string  true  "PENDING, APPROVED or REJECTED"
// @Param        comentario  query  string  false  "Reviewer comment"
// @Success      200     {object}  adoptionResponse
// @Failure      400     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /api/solicitudes/{id}/estado [put]
func (h *AdoptionHandler) SetStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var comment *string
	if q := c.QueryParams(); q.Has("comentario") {
		v := q.Get("comentario")
		comment = &v
	}
	r, err := h.service.SetStatus(c.Request().Context(), id, c.QueryParam("estado"), comment)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAdoptionResponse(r))
}
