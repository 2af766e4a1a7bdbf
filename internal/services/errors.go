package services

import (
	"errors"
	"fmt"
)

// Виды ошибок сервисного слоя. Каждая конкретная ошибка оборачивает
// ровно один вид, обработчики сопоставляют их с HTTP-кодами через errors.Is.
var (
	ErrValidation     = errors.New("validation failed")
	ErrAuthentication = errors.New("authentication failed")
	ErrAuthorization  = errors.New("not authorized")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrUpstream       = errors.New("upstream failure")
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrAuthentication)
	ErrEmptyCredentials   = fmt.Errorf("%w: login and password are required", ErrValidation)
	ErrLoginTaken         = fmt.Errorf("%w: login already exists", ErrConflict)
	ErrAdminRequired      = fmt.Errorf("%w: admin role required", ErrAuthorization)
	ErrOrderNotFound      = fmt.Errorf("%w: order", ErrNotFound)
	ErrProductNotFound    = fmt.Errorf("%w: product", ErrNotFound)
	ErrAddressNotFound    = fmt.Errorf("%w: address", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("%w: user", ErrNotFound)
	ErrStatusChanged      = fmt.Errorf("%w: order status changed concurrently", ErrConflict)
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
