package handler

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adoptafacil/adoption-api/internal/api/metrics"
	"github.com/adoptafacil/adoption-api/internal/core/domain"
	"github.com/adoptafacil/adoption-api/internal/core/ports"
)

const (
	listingPart = "mascota"
	imagesPart  = "imagenes"
)

// PetHandler serves adoption listings and their images.
type PetHandler struct {
	service ports.PetService
}

func NewPetHandler(service ports.PetService) *PetHandler {
	return &PetHandler{service: service}
}

// Create handles POST /api/mascotas.
//
// @Summary      Publish an adoption listing
// @Tags         mascotas
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        mascota   formData  string  true   "Listing JSON (nombre, especie, raza, edad, fechaNacimiento, sexo, ciudad, descripcion)"
// @Param        imagenes  formData  file    false  "Up to 3 images"
// @Success      201       {object}  petResponse
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  errorResponse
// @Router       /api/mascotas [post]
func (h *PetHandler) Create(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	in, images, closeAll, err := h.readListingForm(c)
	if err != nil {
		return err
	}
	defer closeAll()

	pet, err := h.service.Create(c.Request().Context(), caller, in, images)
	if err != nil {
		return err
	}

	metrics.PetsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, toPetResponse(pet, h.service.ImageURL))
}

// Get handles GET /api/mascotas/:id.
//
// @Summary      Get a listing with its images and owner
// @Tags         mascotas
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Listing ID"
// @Success      200  {object}  petResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/mascotas/{id} [get]
func (h *PetHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	pet, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPetResponse(pet, h.service.ImageURL))
}

// List handles GET /api/mascotas. Non-admin callers only see their own listings.
//
// @Summary      List listings
// @Tags         mascotas
// @Produce      json
// @Security     BearerAuth
// @Param        nombre  query     string  false  "Case-insensitive name filter"
// @Success      200     {array}   petResponse
// @Failure      401     {object}  errorResponse
// @Router       /api/mascotas [get]
func (h *PetHandler) List(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	pets, err := h.service.List(c.Request().Context(), caller, c.QueryParam("nombre"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPetResponses(pets, h.service.ImageURL))
}

// ListAll handles GET /api/mascotas/admin/all.
//
// @Summary      List every listing with its owner (admin)
// @Tags         mascotas
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   petResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/mascotas/admin/all [get]
func (h *PetHandler) ListAll(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	pets, err := h.service.ListAll(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPetResponses(pets, h.service.ImageURL))
}

// Update handles PUT /api/mascotas/:id. Ownership is checked before the
// multipart body is read.
//
// @Summary      Update a listing and append images
// @Tags         mascotas
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      int     true   "Listing ID"
// @Param        mascota   formData  string  true   "Listing JSON"
// @Param        imagenes  formData  file    false  "Images to append"
// @Success      200       {object}  petResponse
// @Failure      400       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /api/mascotas/{id} [put]
func (h *PetHandler) Update(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.service.CheckOwnership(ctx, caller, id); err != nil {
		return err
	}

	in, images, closeAll, err := h.readListingForm(c)
	if err != nil {
		return err
	}
	defer closeAll()

	pet, err := h.service.Update(ctx, caller, id, in, images)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPetResponse(pet, h.service.ImageURL))
}

// Delete handles DELETE /api/mascotas/:id.
//
// @Summary      Delete a listing and its images
// @Tags         mascotas
// @Security     BearerAuth
// @Param        id   path  int  true  "Listing ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/mascotas/{id} [delete]
func (h *PetHandler) Delete(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), caller, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteImage handles DELETE /api/mascotas/:mascotaId/imagenes/:imagenId.
//
// @Summary      Remove one image from a listing
// @Tags         mascotas
// @Produce      json
// @Security     BearerAuth
// @Param        mascotaId  path      int  true  "Listing ID"
// @Param        imagenId   path      int  true  "Image ID"
// @Success      200        {object}  petResponse
// @Failure      400        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /api/mascotas/{mascotaId}/imagenes/{imagenId} [delete]
func (h *PetHandler) DeleteImage(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}
	petID, err := pathID(c, "mascotaId")
	if err != nil {
		return err
	}
	imageID, err := pathID(c, "imagenId")
	if err != nil {
		return err
	}
	pet, err := h.service.DeleteImage(c.Request().Context(), caller, petID, imageID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPetResponse(pet, h.service.ImageURL))
}

// readListingForm decodes the "mascota" JSON part and opens every "imagenes"
// file. The returned func closes the opened files.
func (h *PetHandler) readListingForm(c echo.Context) (ports.PetInput, []ports.ImageUpload, func(), error) {
	noop := func() {}

	form, err := c.MultipartForm()
	if err != nil {
		return ports.PetInput{}, nil, noop, echo.NewHTTPError(http.StatusBadRequest, "expected multipart/form-data payload")
	}

	raw, err := listingJSON(form)
	if err != nil {
		return ports.PetInput{}, nil, noop, err
	}
	var req petRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return ports.PetInput{}, nil, noop, echo.NewHTTPError(http.StatusBadRequest, "invalid "+listingPart+" payload")
	}
	if err := c.Validate(&req); err != nil {
		return ports.PetInput{}, nil, noop, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in, err := toPetInput(req)
	if err != nil {
		return ports.PetInput{}, nil, noop, err
	}

	files := form.File[imagesPart]
	if len(files) > domain.MaxPetImages {
		return ports.PetInput{}, nil, noop, domain.ErrTooManyImages
	}

	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	images := make([]ports.ImageUpload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return ports.PetInput{}, nil, noop, echo.NewHTTPError(http.StatusBadRequest, "unreadable image "+fh.Filename)
		}
		opened = append(opened, f)
		images = append(images, ports.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(echo.HeaderContentType),
			Content:     f,
		})
	}
	return in, images, closeAll, nil
}

// listingJSON returns the "mascota" part, sent either as a plain field or as
// a file part with an application/json content type.
func listingJSON(form *multipart.Form) ([]byte, error) {
	if v := form.Value[listingPart]; len(v) > 0 {
		return []byte(v[0]), nil
	}
	if fhs := form.File[listingPart]; len(fhs) > 0 {
		f, err := fhs[0].Open()
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "unreadable "+listingPart+" part")
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	return nil, domain.NewValidationError(listingPart, "is required")
}
