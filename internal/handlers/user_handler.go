package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/agamariel/storefront/internal/auth"
	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler обрабатывает HTTP-запросы для работы с пользователями.
type UserHandler struct {
	userService services.UserService
	tokenTTL    time.Duration
}

// NewUserHandler создаёт новый экземпляр UserHandler.
// tokenTTL задаёт время жизни cookie с токеном.
func NewUserHandler(userService services.UserService, tokenTTL time.Duration) *UserHandler {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &UserHandler{
		userService: userService,
		tokenTTL:    tokenTTL,
	}
}

// Register обрабатывает POST /api/user/register.
func (h *UserHandler) Register(c echo.Context) error {
	var req models.RegisterRequest

	// Парсинг JSON body
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	user, token, err := h.userService.Register(c.Request().Context(), req)
	if err != nil {
		return serviceError(c, err, "register user")
	}

	h.setAuthToken(c, token)

	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Login обрабатывает POST /api/user/login.
func (h *UserHandler) Login(c echo.Context) error {
	var req models.LoginRequest

	// Парсинг JSON body
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	user, token, err := h.userService.Login(c.Request().Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid login or password")
		}
		return serviceError(c, err, "login user")
	}

	h.setAuthToken(c, token)

	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Logout обрабатывает POST /api/user/logout. Токены без состояния,
// поэтому достаточно стереть cookie.
func (h *UserHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
	return c.NoContent(http.StatusNoContent)
}

// Me обрабатывает GET /api/user/me.
func (h *UserHandler) Me(c echo.Context) error {
	// Получение ID пользователя из контекста (установлен middleware)
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return err // Уже HTTP-ошибка
	}

	user, err := h.userService.GetProfile(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "user not found")
		}
		return serviceError(c, err, "get profile")
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}

// setAuthToken устанавливает токен в cookie и заголовок ответа.
func (h *UserHandler) setAuthToken(c echo.Context, token string) {
	cookie := &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.tokenTTL.Seconds()),
	}
	c.SetCookie(cookie)

	// Также устанавливаем в заголовок для удобства
	c.Response().Header().Set("Authorization", "Bearer "+token)
}

func toUserResponse(u *models.User) models.UserResponse {
	return models.UserResponse{
		ID:    u.ID,
		Login: u.Login,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}
