package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_hub/internal/service"
)

const (
	msgInternal    = "Internal server error"
	msgInvalidBody = "Invalid request body"
	msgNotFound    = "Not found."
)

func internalError() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusInternalServerError, msgInternal)
}

// validationError exposes the field message of a service.FieldError.
func validationError(err error) *echo.HTTPError {
	var fe *service.FieldError
	if errors.As(err, &fe) {
		return echo.NewHTTPError(http.StatusBadRequest, fe.Error())
	}
	return echo.NewHTTPError(http.StatusBadRequest, "Invalid input")
}

// parseID treats anything that is not a positive integer as a missing resource.
func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, msgNotFound)
	}
	return uint(id), nil
}
