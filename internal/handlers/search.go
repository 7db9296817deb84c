package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_hub/internal/service"
	"github.com/Skotchmaster/product_hub/internal/transport"
	"github.com/Skotchmaster/product_hub/internal/util"
)

type SearchHandler struct {
	Svc *service.CatalogService
}

func (h *SearchHandler) Search(c echo.Context) error {
	page := util.ParsePage(c.QueryParam("page"), c.QueryParam("size"))

	total, products, err := h.Svc.Search(c.Request().Context(), c.QueryParam("q"), page)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return validationError(err)
		}
		return internalError()
	}
	return c.JSON(http.StatusOK, transport.SearchResponse{
		Total:    total,
		Products: transport.NewProductList(products),
	})
}
