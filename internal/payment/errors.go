package payment

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidSignature возвращается, если подпись вебхука не сошлась.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrInvalidMetadata возвращается при невалидных метаданных сессии.
	ErrInvalidMetadata = errors.New("invalid checkout metadata")
)

// UpstreamError - ошибка обращения к платёжному провайдеру.
type UpstreamError struct {
	Op         string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("payment provider %s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("payment provider %s failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// RateLimited сообщает, что провайдер ответил 429.
func (e *UpstreamError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// retryableStatus - сетевые ошибки (код 0), 429 и 5xx можно повторять.
func retryableStatus(code int) bool {
	return code == 0 || code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
