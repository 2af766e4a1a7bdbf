package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/agamariel/storefront/internal/services"
	"github.com/labstack/echo/v4"
)

// maxWebhookBody ограничивает размер тела события.
const maxWebhookBody = 1 << 20

// WebhookHandler принимает события платёжного провайдера.
type WebhookHandler struct {
	webhookService  services.WebhookService
	signatureHeader string
}

func NewWebhookHandler(webhookService services.WebhookService, signatureHeader string) *WebhookHandler {
	if signatureHeader == "" {
		signatureHeader = "Stripe-Signature"
	}
	return &WebhookHandler{webhookService: webhookService, signatureHeader: signatureHeader}
}

// Handle обрабатывает POST /api/webhooks/stripe.
// Подпись проверяется по сырому телу, поэтому оно читается до любого разбора.
func (h *WebhookHandler) Handle(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unable to read body")
	}

	signature := c.Request().Header.Get(h.signatureHeader)
	if signature == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing signature")
	}

	ack, err := h.webhookService.HandleEvent(c.Request().Context(), body, signature)
	if err != nil {
		if errors.Is(err, services.ErrAuthentication) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid signature")
		}
		c.Logger().Errorf("failed to process webhook: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "webhook processing failed")
	}

	if ack.Verified {
		return c.JSON(http.StatusOK, map[string]bool{"verified": true})
	}
	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
