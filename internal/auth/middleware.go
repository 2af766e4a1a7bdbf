package auth

import (
	"net/http"
	"strings"

	"github.com/agamariel/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ContextKey - тип для ключей контекста.
type ContextKey string

const (
	// UserIDKey - ключ для хранения ID пользователя в контексте.
	UserIDKey ContextKey = "user_id"
	// UserLoginKey - ключ для хранения логина пользователя в контексте.
	UserLoginKey ContextKey = "user_login"
	// UserRoleKey - ключ для хранения роли пользователя в контексте.
	UserRoleKey ContextKey = "user_role"

	// CookieName - имя cookie с токеном.
	CookieName = "Authorization"
)

// JWTMiddleware создаёт middleware для проверки JWT токена.
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractTokenFromHeader(c)
			if token == "" {
				token = extractTokenFromCookie(c)
			}
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid token")
			}

			claims, err := ValidateToken(token, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			SetCaller(c, claims.Caller())
			return next(c)
		}
	}
}

// RequireRole пропускает дальше только вызывающих с указанной ролью.
// Ставится после JWTMiddleware.
func RequireRole(role models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, err := GetCallerFromContext(c)
			if err != nil {
				return err
			}
			if caller.Role != role {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}

// RequireAdminLogin сверяет логин вызывающего с текущим списком администраторов.
// Роль в токене живёт до его истечения, список же может измениться раньше.
func RequireAdminLogin(isAdmin func(login string) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, err := GetCallerFromContext(c)
			if err != nil {
				return err
			}
			if !isAdmin(caller.Login) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}

// SetCaller сохраняет данные вызывающего в контексте запроса.
func SetCaller(c echo.Context, caller models.Caller) {
	c.Set(string(UserIDKey), caller.UserID)
	c.Set(string(UserLoginKey), caller.Login)
	c.Set(string(UserRoleKey), caller.Role)
}

// extractTokenFromHeader извлекает токен из заголовка Authorization.
func extractTokenFromHeader(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	// Формат "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return parts[1]
	}

	return ""
}

// extractTokenFromCookie извлекает токен из cookie.
func extractTokenFromCookie(c echo.Context) string {
	cookie, err := c.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// GetUserIDFromContext извлекает ID пользователя из контекста.
func GetUserIDFromContext(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get(string(UserIDKey)).(uuid.UUID)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}
	return userID, nil
}

// GetCallerFromContext собирает идентичность вызывающего из контекста.
// Отсутствие роли трактуется как обычный пользователь.
func GetCallerFromContext(c echo.Context) (models.Caller, error) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		return models.Caller{}, err
	}
	login, _ := c.Get(string(UserLoginKey)).(string)
	role, ok := c.Get(string(UserRoleKey)).(models.Role)
	if !ok || role == "" {
		role = models.RoleUser
	}
	return models.Caller{UserID: userID, Login: login, Role: role}, nil
}
