package handlers

import (
	"net/http"

	"github.com/agamariel/storefront/internal/services"
	"github.com/labstack/echo/v4"
)

// ProductHandler отдаёт каталог. Маршруты публичные.
type ProductHandler struct {
	catalog services.CatalogService
}

func NewProductHandler(catalog services.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// List обрабатывает GET /api/products.
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.catalog.List(c.Request().Context())
	if err != nil {
		return serviceError(c, err, "list products")
	}
	return c.JSON(http.StatusOK, products)
}

// Featured обрабатывает GET /api/products/featured.
func (h *ProductHandler) Featured(c echo.Context) error {
	products, err := h.catalog.Featured(c.Request().Context())
	if err != nil {
		return serviceError(c, err, "list featured products")
	}
	return c.JSON(http.StatusOK, products)
}

// Get обрабатывает GET /api/products/:id.
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	product, err := h.catalog.Get(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err, "get product")
	}
	return c.JSON(http.StatusOK, product)
}
