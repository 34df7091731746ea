package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/adoptafacil/adoption-api/internal/api/metrics"
	"github.com/adoptafacil/adoption-api/internal/core/ports"
)

// headerIdempotencyKey lets clients retry a donation without recording it twice.
const headerIdempotencyKey = "Idempotency-Key"

type DonationHandler struct {
	service ports.DonationService
}

func NewDonationHandler(service ports.DonationService) *DonationHandler {
	return &DonationHandler{service: service}
}

// Create handles POST /api/donaciones. A replayed Idempotency-Key returns the
// original donation with 200 instead of 201.
//
// @Summary      Record a donation
// @Tags         donaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string           false  "Idempotency key to prevent duplicate donations"
// @Param        body             body      donationRequest  true   "Donation"
// @Success      201              {object}  donationResponse
// @Success      200              {object}  donationResponse
// @Failure      400              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Router       /api/donaciones [post]
func (h *DonationHandler) Create(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	var req donationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	key := c.Request().Header.Get(headerIdempotencyKey)
	donation, replayed, err := h.service.Create(c.Request().Context(), caller, toDonationInput(req, key))
	if err != nil {
		return err
	}

	metrics.DonationsTotal.WithLabelValues(strconv.FormatBool(replayed)).Inc()
	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	return c.JSON(status, toDonationResponse(donation))
}

// Get handles GET /api/donaciones/:id.
//
// @Summary      Get a donation
// @Tags         donaciones
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Donation ID"
// @Success      200  {object}  donationResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/donaciones/{id} [get]
func (h *DonationHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	d, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDonationResponse(d))
}

// List handles GET /api/donaciones.
//
// @Summary      List donations
// @Tags         donaciones
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  donationResponse
// @Router       /api/donaciones [get]
func (h *DonationHandler) List(c echo.Context) error {
	ds, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDonationResponses(ds))
}

// ListByDonor handles GET /api/donaciones/donante/:id.
//
// @Summary      List donations made by one person
// @Tags         donaciones
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     int  true  "Donor ID"
// @Success      200  {array}  donationResponse
// @Router       /api/donaciones/donante/{id} [get]
func (h *DonationHandler) ListByDonor(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ds, err := h.service.ListByDonor(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDonationResponses(ds))
}

// Delete handles DELETE /api/donaciones/:id.
//
// @Summary      Delete a donation
// @Tags         donaciones
// @Security     BearerAuth
// @Param        id   path  int  true  "Donation ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/donaciones/{id} [delete]
func (h *DonationHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
