package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_hub/internal/guard"
	"github.com/Skotchmaster/product_hub/internal/logging"
	"github.com/Skotchmaster/product_hub/internal/service"
	"github.com/Skotchmaster/product_hub/internal/transport"
)

type ProductHandler struct {
	Svc *service.CatalogService
}

// productError maps catalog errors; forbidden carries the operation-specific message.
func productError(err error, forbidden string) *echo.HTTPError {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, msgNotFound)
	case errors.Is(err, guard.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, forbidden)
	case errors.Is(err, service.ErrValidation):
		return validationError(err)
	default:
		return internalError()
	}
}

func toInput(req transport.ProductRequest) service.ProductInput {
	return service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	items, err := h.Svc.List(ctx)
	if err != nil {
		l.Error("get_products_error", "status", 500, "reason", "cannot list products", "error", err)
		return internalError()
	}
	return c.JSON(http.StatusOK, transport.NewProductList(items))
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	product, err := h.Svc.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			l.Error("get_product_error", "status", 500, "reason", "cannot load product", "error", err)
		}
		return productError(err, "")
	}
	return c.JSON(http.StatusOK, transport.NewProductResponse(product))
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	product, err := h.Svc.Create(ctx, guard.CurrentUser(c), toInput(req))
	if err != nil {
		return productError(err, "")
	}
	return c.JSON(http.StatusCreated, transport.NewProductResponse(product))
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update_product")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_product_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	product, err := h.Svc.Update(ctx, guard.CurrentUser(c), id, toInput(req))
	if err != nil {
		return productError(err, "You can only update your own products")
	}
	return c.JSON(http.StatusOK, transport.NewProductResponse(product))
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(ctx, guard.CurrentUser(c), id); err != nil {
		return productError(err, "You can only delete your own products")
	}
	return c.NoContent(http.StatusNoContent)
}
