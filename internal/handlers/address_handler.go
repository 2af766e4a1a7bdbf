package handlers

import (
	"net/http"

	"github.com/agamariel/storefront/internal/auth"
	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/services"
	"github.com/labstack/echo/v4"
)

// AddressHandler - адресная книга текущего пользователя.
type AddressHandler struct {
	addresses services.AddressService
}

func NewAddressHandler(addresses services.AddressService) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

// List обрабатывает GET /api/user/addresses.
func (h *AddressHandler) List(c echo.Context) error {
	caller, err := auth.GetCallerFromContext(c)
	if err != nil {
		return err
	}
	addrs, err := h.addresses.List(c.Request().Context(), caller)
	if err != nil {
		return serviceError(c, err, "list addresses")
	}
	return c.JSON(http.StatusOK, addrs)
}

// Create обрабатывает POST /api/user/addresses.
func (h *AddressHandler) Create(c echo.Context) error {
	caller, err := auth.GetCallerFromContext(c)
	if err != nil {
		return err
	}

	var req models.AddressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	addr, err := h.addresses.Create(c.Request().Context(), caller, req)
	if err != nil {
		return serviceError(c, err, "create address")
	}
	return c.JSON(http.StatusCreated, addr)
}
