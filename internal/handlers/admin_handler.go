package handlers

import (
	"net/http"

	"github.com/agamariel/storefront/internal/auth"
	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/services"
	"github.com/labstack/echo/v4"
)

// AdminHandler - операции оператора магазина над заказами.
// Маршруты закрыты auth.RequireRole(models.RoleAdmin).
type AdminHandler struct {
	orderService services.OrderService
}

func NewAdminHandler(orderService services.OrderService) *AdminHandler {
	return &AdminHandler{orderService: orderService}
}

// ListOrders обрабатывает GET /api/admin/orders.
func (h *AdminHandler) ListOrders(c echo.Context) error {
	caller, err := auth.GetCallerFromContext(c)
	if err != nil {
		return err
	}
	orders, err := h.orderService.ListAllOrders(c.Request().Context(), caller)
	if err != nil {
		return serviceError(c, err, "list orders")
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder обрабатывает GET /api/admin/orders/:id.
func (h *AdminHandler) GetOrder(c echo.Context) error {
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

// TransitionStatus обрабатывает PATCH /api/admin/orders/:id/status.
func (h *AdminHandler) TransitionStatus(c echo.Context) error {
	caller, err := auth.GetCallerFromContext(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req models.TransitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	order, err := h.orderService.TransitionStatus(c.Request().Context(), caller, id, req)
	if err != nil {
		return serviceError(c, err, "change order status")
	}
	return c.JSON(http.StatusOK, models.NewOrderResponse(order))
}
