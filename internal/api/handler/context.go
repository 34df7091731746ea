package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/adoptafacil/adoption-api/internal/api/middleware"
	"github.com/adoptafacil/adoption-api/internal/core/domain"
)

// ctxCaller returns the identity resolved by the Authenticate middleware.
// Routes behind RequireIdentity always have one; the check here keeps
// handlers safe when mounted without the guard.
func ctxCaller(c echo.Context) (*domain.User, error) {
	user := middleware.Identity(c)
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// bindAndValidate decodes the JSON body into req and runs the struct validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
