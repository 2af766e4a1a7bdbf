package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/agamariel/storefront/internal/metrics"
	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/notify"
	"github.com/agamariel/storefront/internal/payment"
	"github.com/agamariel/storefront/internal/storage"
	"github.com/agamariel/storefront/internal/utils"
	"github.com/labstack/gommon/log"
)

// Результаты подтверждения оплаты.
const (
	OutcomeConfirmed        = "confirmed"
	OutcomeOrderNotFound    = "order_not_found"
	OutcomeAlreadyProcessed = "already_processed"
	OutcomeAmountMismatch   = "amount_mismatch"
)

// PaymentConfirmer переводит заказ из pending_payment в payment_confirmed.
// Операция идемпотентна: повтор для уже подтверждённого заказа ничего не меняет.
type PaymentConfirmer struct {
	orders   OrderStorage
	notifier *orderNotifier
	metrics  *metrics.Metrics
	logger   *log.Logger
}

func NewPaymentConfirmer(stores Stores, notifier Notifier, m *metrics.Metrics, logger *log.Logger) *PaymentConfirmer {
	if logger == nil {
		logger = log.New("payments")
	}
	return &PaymentConfirmer{
		orders:   stores.Orders,
		notifier: &orderNotifier{stores: stores, notifier: notifier, logger: logger},
		metrics:  m,
		logger:   logger,
	}
}

// Confirm подтверждает оплату заказа по данным сессии. origin попадает в лог и метрики.
// Ошибка возвращается только при сбое хранилища.
func (c *PaymentConfirmer) Confirm(ctx context.Context, orderID int64, session *payment.Session, origin string) (string, error) {
	order, err := c.orders.GetByID(ctx, orderID)
	if errors.Is(err, storage.ErrOrderNotFound) {
		c.logger.Warnj(log.JSON{"message": "payment for unknown order", "order_id": orderID, "origin": origin})
		return OutcomeOrderNotFound, nil
	}
	if err != nil {
		return "", fmt.Errorf("load order %d: %w", orderID, err)
	}

	if order.Status != models.OrderStatusPendingPayment {
		c.logger.Infoj(log.JSON{"message": "payment already processed", "order_id": orderID, "status": order.Status, "origin": origin})
		return OutcomeAlreadyProcessed, nil
	}

	if session != nil && !c.amountMatches(order, session) {
		c.logger.Errorj(log.JSON{
			"message":      "payment amount does not match order total",
			"order_id":     orderID,
			"order_total":  order.Total.StringFixed(2),
			"session_id":   session.ID,
			"amount_total": session.AmountTotal,
			"origin":       origin,
		})
		return OutcomeAmountMismatch, nil
	}

	notes := "Pagamento confirmado"
	if session != nil && session.ID != "" {
		notes = fmt.Sprintf("Pagamento confirmado (sessão %s)", session.ID)
	}
	updated, err := c.orders.TransitionStatus(ctx, storage.TransitionParams{
		OrderID: orderID,
		From:    models.OrderStatusPendingPayment,
		To:      models.OrderStatusPaymentConfirmed,
		Notes:   notes,
	})
	switch {
	case errors.Is(err, storage.ErrStatusConflict):
		c.logger.Infoj(log.JSON{"message": "payment confirmed concurrently", "order_id": orderID, "origin": origin})
		return OutcomeAlreadyProcessed, nil
	case errors.Is(err, storage.ErrOrderNotFound):
		return OutcomeOrderNotFound, nil
	case err != nil:
		return "", fmt.Errorf("confirm order %d: %w", orderID, err)
	}

	if session != nil && session.ID != "" && order.PaymentSessionID == nil {
		if err := c.orders.SetPaymentSession(ctx, orderID, session.ID); err != nil {
			c.logger.Warnf("failed to store payment session %s for order %d: %v", session.ID, orderID, err)
		} else {
			updated.PaymentSessionID = &session.ID
		}
	}

	c.metrics.Transition(string(models.OrderStatusPendingPayment), string(models.OrderStatusPaymentConfirmed), origin)
	c.logger.Infoj(log.JSON{"message": "payment confirmed", "order_id": orderID, "status": updated.Status, "origin": origin})

	c.notifier.notify(ctx, notify.KindConfirmation, updated)
	return OutcomeConfirmed, nil
}

// amountMatches сверяет сумму из метаданных и сумму сессии с суммой заказа.
// Отсутствующие значения не проверяются.
func (c *PaymentConfirmer) amountMatches(order *models.Order, session *payment.Session) bool {
	if payment.HasTotal(session.Metadata) {
		meta, err := payment.DecodeCheckoutMetadata(session.Metadata)
		if err != nil || !meta.Total.Equal(order.Total) {
			return false
		}
	}
	if session.AmountTotal > 0 {
		cents, err := utils.ToMinorUnits(order.Total)
		if err != nil || cents != session.AmountTotal {
			return false
		}
	}
	return true
}
