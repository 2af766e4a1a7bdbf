package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agamariel/storefront/internal/metrics"
	"github.com/agamariel/storefront/internal/payment"
	"github.com/agamariel/storefront/internal/storage"
	"github.com/labstack/gommon/log"
)

// WebhookConfig - настройки приёма событий провайдера.
type WebhookConfig struct {
	// TestEventPrefix - префикс идентификатора тестовых событий.
	TestEventPrefix string
}

// WebhookAck - ответ провайдеру. Verified выставляется для тестовых событий.
type WebhookAck struct {
	Verified bool
}

// WebhookService обрабатывает события платёжного провайдера.
type WebhookService interface {
	HandleEvent(ctx context.Context, payload []byte, signature string) (WebhookAck, error)
}

// WebhookServiceImpl реализует WebhookService.
type WebhookServiceImpl struct {
	verifier  EventVerifier
	orders    OrderStorage
	confirmer *PaymentConfirmer
	cfg       WebhookConfig
	metrics   *metrics.Metrics
	logger    *log.Logger
}

func NewWebhookService(verifier EventVerifier, orders OrderStorage, confirmer *PaymentConfirmer, cfg WebhookConfig, m *metrics.Metrics, logger *log.Logger) *WebhookServiceImpl {
	if logger == nil {
		logger = log.New("webhook")
	}
	return &WebhookServiceImpl{
		verifier:  verifier,
		orders:    orders,
		confirmer: confirmer,
		cfg:       cfg,
		metrics:   m,
		logger:    logger,
	}
}

// HandleEvent проверяет подпись по сырому телу и применяет событие.
// Ошибка с ErrAuthentication означает, что состояние не трогалось.
// Любая другая ошибка означает сбой обработки, и провайдер должен повторить доставку.
func (s *WebhookServiceImpl) HandleEvent(ctx context.Context, payload []byte, signature string) (WebhookAck, error) {
	ev, err := s.verifier.VerifyEvent(payload, signature)
	if err != nil {
		s.metrics.WebhookEvent("unknown", "rejected")
		s.logger.Warnf("webhook signature verification failed: %v", err)
		return WebhookAck{}, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	if s.cfg.TestEventPrefix != "" && strings.HasPrefix(ev.ID, s.cfg.TestEventPrefix) {
		s.metrics.WebhookEvent(ev.Type, "test")
		s.logger.Infoj(log.JSON{"message": "test webhook event verified", "event_id": ev.ID, "event_type": ev.Type})
		return WebhookAck{Verified: true}, nil
	}

	outcome, err := s.dispatch(ctx, ev)
	if err != nil {
		s.metrics.WebhookEvent(ev.Type, "failed")
		s.logger.Errorj(log.JSON{"message": "webhook processing failed", "event_id": ev.ID, "event_type": ev.Type, "error": err.Error()})
		return WebhookAck{}, err
	}

	s.metrics.WebhookEvent(ev.Type, outcome)
	return WebhookAck{}, nil
}

func (s *WebhookServiceImpl) dispatch(ctx context.Context, ev *payment.Event) (string, error) {
	fields := log.JSON{"event_id": ev.ID, "event_type": ev.Type}

	switch ev.Type {
	case payment.EventCheckoutCompleted:
		if ev.Session == nil {
			return "ignored", nil
		}
		if ev.Session.PaymentStatus == payment.PaymentStatusUnpaid {
			fields["message"] = "checkout completed, payment pending"
			fields["session_id"] = ev.Session.ID
			s.logger.Infoj(fields)
			return "awaiting_payment", nil
		}
		return s.confirm(ctx, ev)

	case payment.EventCheckoutAsyncSucceeded:
		if ev.Session == nil {
			return "ignored", nil
		}
		return s.confirm(ctx, ev)

	case payment.EventCheckoutAsyncFailed:
		fields["message"] = "async payment failed"
		if ev.Session != nil {
			fields["session_id"] = ev.Session.ID
			fields["order_id"] = ev.Session.Metadata["order_id"]
		}
		s.logger.Warnj(fields)
		return "payment_failed", nil

	case payment.EventPaymentIntentPaymentFailed:
		fields["message"] = "payment failed"
		if ev.PaymentIntent != nil {
			fields["payment_intent"] = ev.PaymentIntent.ID
			fields["error"] = ev.PaymentIntent.LastError
		}
		s.logger.Warnj(fields)
		return "payment_failed", nil

	case payment.EventCheckoutExpired, payment.EventPaymentIntentSucceeded, payment.EventCustomerCreated:
		fields["message"] = "webhook event acknowledged"
		s.logger.Infoj(fields)
		return "ignored", nil

	default:
		fields["message"] = "unhandled webhook event type"
		s.logger.Debugj(fields)
		return "ignored", nil
	}
}

// confirm находит заказ по метаданным сессии (или по её идентификатору) и подтверждает оплату.
func (s *WebhookServiceImpl) confirm(ctx context.Context, ev *payment.Event) (string, error) {
	session := ev.Session

	var orderID int64
	meta, err := payment.DecodeCheckoutMetadata(session.Metadata)
	if err == nil {
		orderID = meta.OrderID
	} else {
		order, lookupErr := s.orders.GetByPaymentSession(ctx, session.ID)
		if errors.Is(lookupErr, storage.ErrOrderNotFound) {
			s.logger.Errorj(log.JSON{"message": "cannot correlate payment to order", "event_id": ev.ID, "session_id": session.ID, "error": err.Error()})
			return OutcomeOrderNotFound, nil
		}
		if lookupErr != nil {
			return "", fmt.Errorf("find order by session %s: %w", session.ID, lookupErr)
		}
		orderID = order.ID
	}

	return s.confirmer.Confirm(ctx, orderID, session, "webhook")
}
