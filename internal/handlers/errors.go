package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/agamariel/storefront/internal/services"
	"github.com/labstack/echo/v4"
)

// serviceError переводит ошибку сервиса в HTTP-ошибку. Неизвестные ошибки
// логируются и отдаются клиенту как 500 без подробностей.
func serviceError(c echo.Context, err error, action string) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrAuthentication):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrAuthorization):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrUpstream):
		c.Logger().Errorf("failed to %s: %v", action, err)
		return echo.NewHTTPError(http.StatusBadGateway, "payment provider unavailable")
	default:
		c.Logger().Errorf("failed to %s: %v", action, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

// paramID разбирает числовой идентификатор из пути.
func paramID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
