package handlers

import (
	"errors"
	"net/http"

	"github.com/agamariel/storefront/internal/auth"
	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/services"
	"github.com/labstack/echo/v4"
)

// OrderHandler обрабатывает запросы покупателя: оформление и просмотр заказов.
type OrderHandler struct {
	orderService    services.OrderService
	checkoutService services.CheckoutService
}

func NewOrderHandler(orderService services.OrderService, checkoutService services.CheckoutService) *OrderHandler {
	return &OrderHandler{orderService: orderService, checkoutService: checkoutService}
}

// Checkout обрабатывает POST /api/user/checkout.
func (h *OrderHandler) Checkout(c echo.Context) error {
	caller, err := auth.GetCallerFromContext(c)
	if err != nil {
		return err
	}

	var req models.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	resp, err := h.checkoutService.CreateCheckoutSession(c.Request().Context(), caller, req)
	if err != nil {
		// Некорректная корзина при синтаксически верном запросе.
		if errors.Is(err, services.ErrValidation) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return serviceError(c, err, "create checkout session")
	}

	return c.JSON(http.StatusOK, resp)
}

// GetOrders обрабатывает GET /api/user/orders.
func (h *OrderHandler) GetOrders(c echo.Context) error {
	caller, err := auth.GetCallerFromContext(c)
	if err != nil {
		return err
	}

	orders, err := h.orderService.GetUserOrders(c.Request().Context(), caller)
	if err != nil {
		return serviceError(c, err, "list user orders")
	}

	return c.JSON(http.StatusOK, orders)
}

// GetOrder обрабатывает GET /api/user/orders/:id.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	caller, err := auth.GetCallerFromContext(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	details, err := h.orderService.GetOrderDetails(c.Request().Context(), caller, id)
	if err != nil {
		return serviceError(c, err, "get order")
	}
	return c.JSON(http.StatusOK, details)
}
